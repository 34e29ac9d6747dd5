package transcript

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/jovezhong/claude-code-history-viewer/internal/model"
)

// toolEditResult is the subset of Edit/Write tool-result payloads needed to
// recover a file change. The payload shape is owned by the tool system;
// anything that doesn't fit simply yields no edit.
type toolEditResult struct {
	FilePath     string `json:"filePath"`
	OldString    string `json:"oldString"`
	NewString    string `json:"newString"`
	Content      string `json:"content"`
	OriginalFile string `json:"originalFile"`
}

// RecentEdits recovers file modifications from the tool results of the given
// reconstructed sessions, newest first, capped at limit (0 means no cap).
// ProjectCwd is the most common working directory across the sessions.
func RecentEdits(results []*Result, limit int) model.RecentEditsResult {
	var edits []model.RecentFileEdit
	files := make(map[string]struct{})
	cwdVotes := make(map[string]int)

	for _, res := range results {
		if res.ProjectPath != "" {
			cwdVotes[res.ProjectPath]++
		}
		for i := range res.Messages {
			m := &res.Messages[i]
			edit, ok := editFromMessage(m, res.ProjectPath)
			if !ok {
				continue
			}
			files[edit.FilePath] = struct{}{}
			edits = append(edits, edit)
		}
	}

	// Newest first. Compared as parsed instants: second-precision and
	// fractional-precision stamps do not order lexicographically within
	// the same second.
	sort.SliceStable(edits, func(i, j int) bool {
		return timestampAfter(edits[i].Timestamp, edits[j].Timestamp)
	})

	out := model.RecentEditsResult{
		TotalEditsCount:  len(edits),
		UniqueFilesCount: len(files),
	}
	if limit > 0 && len(edits) > limit {
		edits = edits[:limit]
	}
	out.Files = edits

	best := ""
	for cwd, n := range cwdVotes {
		if n > cwdVotes[best] || (n == cwdVotes[best] && best == "") {
			best = cwd
		}
	}
	if best != "" {
		out.ProjectCwd = &best
	}

	return out
}

func editFromMessage(m *model.Message, cwd string) (model.RecentFileEdit, bool) {
	if !model.RawSet(m.ToolUseResult) {
		return model.RecentFileEdit{}, false
	}

	var tr toolEditResult
	if err := json.Unmarshal(m.ToolUseResult, &tr); err != nil || tr.FilePath == "" {
		return model.RecentFileEdit{}, false
	}

	edit := model.RecentFileEdit{
		FilePath:  tr.FilePath,
		Timestamp: m.Timestamp,
		SessionID: m.SessionID,
	}
	if cwd != "" {
		c := cwd
		edit.Cwd = &c
	}

	switch {
	case tr.NewString != "" || tr.OldString != "":
		edit.OperationType = "edit"
		edit.ContentAfterChange = tr.NewString
		if tr.OldString != "" {
			old := tr.OldString
			edit.OriginalContent = &old
		}
		edit.LinesAdded = lineCount(tr.NewString)
		edit.LinesRemoved = lineCount(tr.OldString)
	case tr.Content != "":
		edit.OperationType = "write"
		edit.ContentAfterChange = tr.Content
		if tr.OriginalFile != "" {
			old := tr.OriginalFile
			edit.OriginalContent = &old
			edit.LinesRemoved = lineCount(tr.OriginalFile)
		}
		edit.LinesAdded = lineCount(tr.Content)
	default:
		return model.RecentFileEdit{}, false
	}

	return edit, true
}

// timestampAfter reports whether a is chronologically after b, falling back
// to string order when either stamp does not parse.
func timestampAfter(a, b string) bool {
	ta, errA := time.Parse(time.RFC3339Nano, a)
	tb, errB := time.Parse(time.RFC3339Nano, b)
	if errA == nil && errB == nil && !ta.Equal(tb) {
		return ta.After(tb)
	}
	return a > b
}

func lineCount(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}
