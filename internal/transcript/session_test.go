package transcript

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSource() Source {
	return Source{
		SessionID:    "sess-1",
		ProjectName:  "my-project",
		FilePath:     "/data/projects/my-project/sess-1.jsonl",
		LastModified: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func reconstruct(t *testing.T, lines string, opts Options) *Result {
	t.Helper()
	res, err := Reconstruct(testSource(), strings.NewReader(lines), opts)
	require.NoError(t, err)
	return res
}

const basicLog = `{"type":"summary","summary":"Fixing the build","leafUuid":"u2"}
{"type":"user","uuid":"u1","sessionId":"s-abc","timestamp":"2025-03-01T10:00:00Z","message":{"role":"user","content":"hello"}}
{"type":"assistant","uuid":"u2","parentUuid":"u1","sessionId":"s-abc","timestamp":"2025-03-01T10:00:05Z","message":{"role":"assistant","model":"m1","content":[{"type":"text","text":"hi"}],"usage":{"input_tokens":10,"output_tokens":5}}}
`

func TestReconstructBasicSession(t *testing.T) {
	res := reconstruct(t, basicLog, Options{})

	s := res.Session
	assert.Equal(t, "sess-1", s.SessionID)
	assert.Equal(t, "s-abc", s.ActualSessionID)
	assert.Equal(t, "my-project", s.ProjectName)
	assert.Equal(t, 3, s.MessageCount)
	assert.Equal(t, "2025-03-01T10:00:00Z", s.FirstMessageTime)
	assert.Equal(t, "2025-03-01T10:00:05Z", s.LastMessageTime)
	assert.False(t, s.HasToolUse)
	assert.False(t, s.HasErrors)
	require.NotNil(t, s.Summary)
	assert.Equal(t, "Fixing the build", *s.Summary)

	assert.EqualValues(t, 10, res.Stats.TotalInputTokens)
	assert.EqualValues(t, 5, res.Stats.TotalOutputTokens)
	assert.EqualValues(t, 15, res.Stats.TotalTokens)
	assert.Equal(t, 3, res.Stats.MessageCount)

	// The summary record has no identity fields.
	assert.Equal(t, 1, res.MissingIdentity)
	assert.Empty(t, res.SkippedLines)
}

func TestReconstructSkipsMalformedLines(t *testing.T) {
	log := `{"type":"user","uuid":"u1","sessionId":"s1","timestamp":"2025-03-01T10:00:00Z"}
{broken json!!!
{"type":"assistant","uuid":"u2","sessionId":"s1","timestamp":"2025-03-01T10:00:05Z"}
`
	res := reconstruct(t, log, Options{})

	assert.Equal(t, 2, res.Session.MessageCount)
	assert.Equal(t, []int{2}, res.SkippedLines)
	assert.Equal(t, "2025-03-01T10:00:05Z", res.Session.LastMessageTime)
}

func TestReconstructEmptyAndBlankInput(t *testing.T) {
	res := reconstruct(t, "", Options{})
	assert.Equal(t, 0, res.Session.MessageCount)
	assert.Empty(t, res.SkippedLines)

	res = reconstruct(t, "\n\n   \n", Options{})
	assert.Equal(t, 0, res.Session.MessageCount)
	assert.Empty(t, res.SkippedLines)
}

func TestReconstructSummaryLastWins(t *testing.T) {
	log := `{"type":"summary","summary":"first","leafUuid":"u1"}
{"type":"summary","summary":"second","leafUuid":"u2"}
{"type":"user","uuid":"u1","sessionId":"s1","timestamp":"2025-03-01T10:00:00Z"}
`
	res := reconstruct(t, log, Options{})
	require.NotNil(t, res.Session.Summary)
	assert.Equal(t, "second", *res.Session.Summary)
}

func TestReconstructActualSessionIDMajority(t *testing.T) {
	log := `{"type":"user","uuid":"u1","sessionId":"s-a","timestamp":"2025-03-01T10:00:00Z"}
{"type":"user","uuid":"u2","sessionId":"s-b","timestamp":"2025-03-01T10:00:01Z"}
{"type":"user","uuid":"u3","sessionId":"s-b","timestamp":"2025-03-01T10:00:02Z"}
`
	res := reconstruct(t, log, Options{})
	assert.Equal(t, "s-b", res.Session.ActualSessionID)
}

func TestReconstructActualSessionIDTieFirstSeen(t *testing.T) {
	log := `{"type":"user","uuid":"u1","sessionId":"s-a","timestamp":"2025-03-01T10:00:00Z"}
{"type":"user","uuid":"u2","sessionId":"s-b","timestamp":"2025-03-01T10:00:01Z"}
`
	res := reconstruct(t, log, Options{})
	assert.Equal(t, "s-a", res.Session.ActualSessionID)
}

func TestReconstructToolUseAndErrors(t *testing.T) {
	log := `{"type":"user","uuid":"u1","sessionId":"s1","timestamp":"2025-03-01T10:00:00Z","toolUse":{"name":"Bash"},"toolUseResult":{"is_error":true,"output":"boom"}}
`
	res := reconstruct(t, log, Options{})
	assert.True(t, res.Session.HasToolUse)
	assert.True(t, res.Session.HasErrors)
}

func TestReconstructErrorsFromContentBlocks(t *testing.T) {
	log := `{"type":"user","uuid":"u1","sessionId":"s1","timestamp":"2025-03-01T10:00:00Z","message":{"role":"user","content":[{"type":"tool_result","is_error":true,"content":"failed"}]}}
`
	res := reconstruct(t, log, Options{})
	assert.True(t, res.Session.HasErrors)
}

func TestReconstructCustomErrorPredicate(t *testing.T) {
	log := `{"type":"user","uuid":"u1","sessionId":"s1","timestamp":"2025-03-01T10:00:00Z","toolUseResult":{"status":"failed"}}
`
	res := reconstruct(t, log, Options{})
	assert.False(t, res.Session.HasErrors)

	matchFailed := func(raw json.RawMessage) bool {
		return strings.Contains(string(raw), `"failed"`)
	}
	res = reconstruct(t, log, Options{ToolError: matchFailed})
	assert.True(t, res.Session.HasErrors)
}

func TestReconstructTimestampPolicy(t *testing.T) {
	log := `{"type":"user","uuid":"u1","sessionId":"s1","timestamp":"2025-03-01T10:00:00Z"}
{"type":"user","uuid":"u2","sessionId":"s1"}
`
	res := reconstruct(t, log, Options{Timestamps: KeepUntimestamped})
	assert.Equal(t, 2, res.Session.MessageCount)
	assert.Equal(t, "2025-03-01T10:00:00Z", res.Session.LastMessageTime)

	res = reconstruct(t, log, Options{Timestamps: DropUntimestamped})
	assert.Equal(t, 1, res.Session.MessageCount)
}

func TestReconstructProjectPathFirstCwd(t *testing.T) {
	log := `{"type":"user","uuid":"u1","sessionId":"s1","timestamp":"2025-03-01T10:00:00Z","cwd":"/home/dev/proj"}
{"type":"user","uuid":"u2","sessionId":"s1","timestamp":"2025-03-01T10:00:01Z","cwd":"/elsewhere"}
`
	res := reconstruct(t, log, Options{})
	assert.Equal(t, "/home/dev/proj", res.ProjectPath)
}

func TestPageCoversAllMessagesExactlyOnce(t *testing.T) {
	res := reconstruct(t, pagedLog(7), Options{})
	require.Equal(t, 7, len(res.Messages))

	seen := make(map[string]int)
	offset := 0
	for {
		page := Page(res.Messages, offset, 3)
		assert.Equal(t, 7, page.TotalCount)
		for _, m := range page.Messages {
			seen[m.UUID]++
		}
		if !page.HasMore {
			assert.Equal(t, 7, page.NextOffset)
			break
		}
		offset = page.NextOffset
	}

	assert.Len(t, seen, 7)
	for uuid, n := range seen {
		assert.Equalf(t, 1, n, "message %s paged %d times", uuid, n)
	}
}

func TestPageClamping(t *testing.T) {
	res := reconstruct(t, pagedLog(5), Options{})

	page := Page(res.Messages, -10, 2)
	assert.Equal(t, "m0", page.Messages[0].UUID)

	page = Page(res.Messages, 100, 2)
	assert.Empty(t, page.Messages)
	assert.False(t, page.HasMore)
	assert.Equal(t, 5, page.NextOffset)

	page = Page(res.Messages, 0, 0)
	assert.Len(t, page.Messages, 5) // default page size is larger than 5
	assert.False(t, page.HasMore)
}

func TestIndexLookup(t *testing.T) {
	log := `{"type":"user","uuid":"u1","sessionId":"s1","timestamp":"2025-03-01T10:00:00Z"}
{"type":"assistant","uuid":"u2","parentUuid":"u1","sessionId":"s1","timestamp":"2025-03-01T10:00:01Z"}
{"type":"summary","summary":"s","leafUuid":"u2"}
`
	res := reconstruct(t, log, Options{})
	idx := Index(res.Messages)

	assert.Len(t, idx, 2) // summary has no uuid

	child, ok := idx["u2"]
	require.True(t, ok)
	require.NotNil(t, child.ParentUUID)
	parent, ok := idx[*child.ParentUUID]
	require.True(t, ok)
	assert.Equal(t, "u1", parent.UUID)
}

func TestDefaultToolError(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		want    bool
	}{
		{"object is_error true", `{"is_error":true}`, true},
		{"object is_error false", `{"is_error":false}`, false},
		{"object error key", `{"error":"something broke"}`, true},
		{"object error null", `{"error":null}`, false},
		{"plain object", `{"output":"fine"}`, false},
		{"string error prefix", `"Error: file not found"`, true},
		{"plain string", `"all good"`, false},
		{"empty", ``, false},
		{"null", `null`, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DefaultToolError(json.RawMessage(tc.payload)))
		})
	}
}

func pagedLog(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString(`{"type":"user","uuid":"m`)
		b.WriteString(string(rune('0' + i)))
		b.WriteString(`","sessionId":"s1","timestamp":"2025-03-01T10:00:0`)
		b.WriteString(string(rune('0' + i)))
		b.WriteString(`Z"}` + "\n")
	}
	return b.String()
}
