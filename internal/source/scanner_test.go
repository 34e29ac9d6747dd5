package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jovezhong/claude-code-history-viewer/internal/transcript"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScanDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "projects", "-Users-jove-projects-gitlore", "sess-1.jsonl"), "{}\n")
	writeFile(t, filepath.Join(dir, "projects", "-Users-jove-projects-gitlore", "sess-2.jsonl"), "{}\n")
	writeFile(t, filepath.Join(dir, "projects", "-home-dev-code-webapp", "sess-3.jsonl"), "{}\n")
	writeFile(t, filepath.Join(dir, "projects", "-home-dev-code-webapp", "notes.txt"), "ignored")

	files, err := ScanDir(dir)
	if err != nil {
		t.Fatalf("ScanDir: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("expected 3 files, got %d", len(files))
	}
	if got := CountProjects(files); got != 2 {
		t.Errorf("expected 2 projects, got %d", got)
	}

	byID := make(map[string]DiscoveredFile)
	for _, f := range files {
		byID[f.SessionID] = f
	}

	f, ok := byID["sess-1"]
	if !ok {
		t.Fatal("sess-1 not discovered")
	}
	if f.Project != "gitlore" {
		t.Errorf("expected project gitlore, got %q", f.Project)
	}
	if f.ProjectDir != "-Users-jove-projects-gitlore" {
		t.Errorf("unexpected project dir %q", f.ProjectDir)
	}
	if f.LastModified.IsZero() {
		t.Error("expected non-zero mtime")
	}
}

func TestScanDirMissing(t *testing.T) {
	files, err := ScanDir(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("ScanDir: %v", err)
	}
	if files != nil {
		t.Errorf("expected nil files, got %v", files)
	}
}

func TestDecodeProjectName(t *testing.T) {
	cases := []struct {
		dir  string
		want string
	}{
		{"-Users-jove-projects-gitlore", "gitlore"},
		{"-Users-jove-projects-my-cool-project", "my-cool-project"},
		{"-home-dev-code-webapp", "webapp"},
		{"-tmp-scratch", "scratch"},
		{"standalone", "standalone"},
	}

	for _, tc := range cases {
		if got := decodeProjectName(tc.dir); got != tc.want {
			t.Errorf("decodeProjectName(%q) = %q, want %q", tc.dir, got, tc.want)
		}
	}
}

func TestReadSessionMissingFile(t *testing.T) {
	df := DiscoveredFile{
		Path:      filepath.Join(t.TempDir(), "gone.jsonl"),
		Project:   "p",
		SessionID: "gone",
	}

	res, err := ReadSession(df, transcript.Options{})
	if err != nil {
		t.Fatalf("ReadSession: %v", err)
	}
	if res.Session.MessageCount != 0 {
		t.Errorf("expected empty session, got %d messages", res.Session.MessageCount)
	}
	if res.Session.SessionID != "gone" {
		t.Errorf("expected session id preserved, got %q", res.Session.SessionID)
	}
}

func TestReadSessionParsesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sess.jsonl")
	writeFile(t, path, `{"type":"user","uuid":"u1","sessionId":"s1","timestamp":"2025-03-01T10:00:00Z"}
{"type":"assistant","uuid":"u2","sessionId":"s1","timestamp":"2025-03-01T10:00:05Z","message":{"role":"assistant","usage":{"input_tokens":10,"output_tokens":5}}}
`)

	df := DiscoveredFile{Path: path, Project: "p", SessionID: "sess"}
	res, err := ReadSession(df, transcript.Options{})
	if err != nil {
		t.Fatalf("ReadSession: %v", err)
	}
	if res.Session.MessageCount != 2 {
		t.Errorf("expected 2 messages, got %d", res.Session.MessageCount)
	}
	if res.Stats.TotalTokens != 15 {
		t.Errorf("expected 15 tokens, got %d", res.Stats.TotalTokens)
	}
	if res.Session.LastModified == "" {
		t.Error("expected last_modified from file mtime")
	}
}
