package transcript

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecentEditsClassifiesEditAndWrite(t *testing.T) {
	log := `{"type":"user","uuid":"u1","sessionId":"s1","timestamp":"2025-03-01T10:00:00Z","cwd":"/home/dev/proj","toolUseResult":{"filePath":"/home/dev/proj/main.go","oldString":"a\nb","newString":"a\nb\nc"}}
{"type":"user","uuid":"u2","sessionId":"s1","timestamp":"2025-03-01T10:05:00Z","toolUseResult":{"filePath":"/home/dev/proj/new.go","content":"package main\n"}}
{"type":"user","uuid":"u3","sessionId":"s1","timestamp":"2025-03-01T10:06:00Z","toolUseResult":{"output":"not an edit"}}
`
	res := reconstruct(t, log, Options{})
	edits := RecentEdits([]*Result{res}, 0)

	assert.Equal(t, 2, edits.TotalEditsCount)
	assert.Equal(t, 2, edits.UniqueFilesCount)
	require.Len(t, edits.Files, 2)

	// Newest first.
	write := edits.Files[0]
	assert.Equal(t, "/home/dev/proj/new.go", write.FilePath)
	assert.Equal(t, "write", write.OperationType)
	assert.Equal(t, 2, write.LinesAdded)
	assert.Equal(t, 0, write.LinesRemoved)

	edit := edits.Files[1]
	assert.Equal(t, "/home/dev/proj/main.go", edit.FilePath)
	assert.Equal(t, "edit", edit.OperationType)
	assert.Equal(t, 3, edit.LinesAdded)
	assert.Equal(t, 2, edit.LinesRemoved)
	require.NotNil(t, edit.OriginalContent)
	assert.Equal(t, "a\nb", *edit.OriginalContent)

	require.NotNil(t, edits.ProjectCwd)
	assert.Equal(t, "/home/dev/proj", *edits.ProjectCwd)
}

func TestRecentEditsLimitAfterCounting(t *testing.T) {
	var lines []string
	for _, ts := range []string{"10:00:00", "10:01:00", "10:02:00"} {
		lines = append(lines,
			`{"type":"user","uuid":"u-`+ts+`","sessionId":"s1","timestamp":"2025-03-01T`+ts+`Z","toolUseResult":{"filePath":"/p/f-`+ts+`.go","content":"x"}}`)
	}
	res := reconstruct(t, strings.Join(lines, "\n")+"\n", Options{})

	edits := RecentEdits([]*Result{res}, 2)
	assert.Equal(t, 3, edits.TotalEditsCount)
	assert.Equal(t, 3, edits.UniqueFilesCount)
	require.Len(t, edits.Files, 2)
	assert.Equal(t, "/p/f-10:02:00.go", edits.Files[0].FilePath)
}

func TestRecentEditsOrdersMixedPrecisionTimestamps(t *testing.T) {
	log := `{"type":"user","uuid":"u1","sessionId":"s1","timestamp":"2025-03-01T10:00:00Z","toolUseResult":{"filePath":"/p/a.go","content":"x"}}
{"type":"user","uuid":"u2","sessionId":"s1","timestamp":"2025-03-01T10:00:00.500Z","toolUseResult":{"filePath":"/p/b.go","content":"y"}}
`
	res := reconstruct(t, log, Options{})
	edits := RecentEdits([]*Result{res}, 0)
	require.Len(t, edits.Files, 2)

	// The fractional stamp is half a second later even though it sorts
	// earlier as a string.
	assert.Equal(t, "/p/b.go", edits.Files[0].FilePath)
	assert.Equal(t, "/p/a.go", edits.Files[1].FilePath)
}

func TestRecentEditsEmpty(t *testing.T) {
	edits := RecentEdits(nil, 10)
	assert.Zero(t, edits.TotalEditsCount)
	assert.Zero(t, edits.UniqueFilesCount)
	assert.Nil(t, edits.ProjectCwd)
	assert.Empty(t, edits.Files)
}
