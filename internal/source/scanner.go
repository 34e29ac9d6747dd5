// Package source discovers Claude Code JSONL session files and feeds their
// contents to the transcript engine. It owns all file I/O; the engine only
// ever sees already-opened readers.
package source

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DiscoveredFile represents a JSONL session file found during scanning.
type DiscoveredFile struct {
	Path         string
	Project      string // decoded display name (e.g., "gitlore")
	ProjectDir   string // raw directory name
	SessionID    string // derived from the file path
	LastModified time.Time
}

// ScanDir walks the Claude projects directory and discovers all JSONL
// session files. A missing directory yields no files, not an error.
func ScanDir(claudeDir string) ([]DiscoveredFile, error) {
	projectsDir := filepath.Join(claudeDir, "projects")

	info, err := os.Stat(projectsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, nil
	}

	var files []DiscoveredFile

	err = filepath.WalkDir(projectsDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // intentionally skip unreadable entries
		}
		if d.IsDir() || filepath.Ext(path) != ".jsonl" {
			return nil
		}

		rel, _ := filepath.Rel(projectsDir, path)
		parts := strings.Split(rel, string(filepath.Separator))
		if len(parts) < 2 {
			return nil
		}

		df := DiscoveredFile{
			Path:       path,
			Project:    decodeProjectName(parts[0]),
			ProjectDir: parts[0],
			SessionID:  strings.TrimSuffix(d.Name(), ".jsonl"),
		}
		if fi, err := d.Info(); err == nil {
			df.LastModified = fi.ModTime()
		}

		files = append(files, df)
		return nil
	})

	return files, err
}

// decodeProjectName extracts a human-readable project name from the encoded
// directory name. Claude Code encodes absolute paths by replacing "/" with
// "-", so:
//
//	"-Users-jove-projects-gitlore" -> "gitlore"
//	"-Users-jove-projects-my-cool-project" -> "my-cool-project"
//
// We find the last known parent component ("projects", "repos", ...) and
// take everything after it, falling back to the last non-empty segment.
func decodeProjectName(dirName string) string {
	parts := strings.Split(dirName, "-")

	knownParents := map[string]bool{
		"projects": true, "repos": true, "src": true,
		"code": true, "workspace": true, "dev": true,
	}

	for i := len(parts) - 2; i >= 0; i-- {
		if knownParents[strings.ToLower(parts[i])] {
			name := strings.Join(parts[i+1:], "-")
			if name != "" {
				return name
			}
		}
	}

	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] != "" {
			return parts[i]
		}
	}

	return dirName
}

// CountProjects returns the number of unique projects in a set of
// discovered files.
func CountProjects(files []DiscoveredFile) int {
	seen := make(map[string]struct{})
	for _, f := range files {
		seen[f.Project] = struct{}{}
	}
	return len(seen)
}
