package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jovezhong/claude-code-history-viewer/internal/model"
	"github.com/jovezhong/claude-code-history-viewer/internal/transcript"
)

func testService(t *testing.T) (*Service, *httptest.Server) {
	t.Helper()

	mkResult := func(sessionID, project, log string) *transcript.Result {
		src := transcript.Source{
			SessionID:    sessionID,
			ProjectName:  project,
			FilePath:     "/data/" + sessionID + ".jsonl",
			LastModified: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		}
		res, err := transcript.Reconstruct(src, strings.NewReader(log), transcript.Options{})
		require.NoError(t, err)
		return res
	}

	results := []*transcript.Result{
		mkResult("sess-a", "alpha", `{"type":"user","uuid":"u1","sessionId":"sa","timestamp":"2025-03-01T10:00:00Z","cwd":"/home/dev/alpha","toolUseResult":{"filePath":"/home/dev/alpha/main.go","content":"package main\n"}}
{"type":"assistant","uuid":"u2","sessionId":"sa","timestamp":"2025-03-01T10:00:05Z","message":{"role":"assistant","model":"m1","usage":{"input_tokens":100,"output_tokens":50}}}
`),
		mkResult("sess-b", "beta", `{"type":"user","uuid":"u1","sessionId":"sb","timestamp":"2025-03-02T09:00:00Z"}
`),
	}

	svc := New(Config{DataDir: t.TempDir()})
	svc.snap = buildSnapshot(results, svc.cfg)

	ts := httptest.NewServer(svc.routes())
	t.Cleanup(ts.Close)
	return svc, ts
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestHealthz(t *testing.T) {
	_, ts := testService(t)
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGlobalStatsEndpoint(t *testing.T) {
	_, ts := testService(t)

	var stats model.GlobalStatsSummary
	resp := getJSON(t, ts.URL+"/api/stats", &stats)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, stats.TotalProjects)
	assert.Equal(t, 2, stats.TotalSessions)
	assert.EqualValues(t, 150, stats.TotalTokens)
}

func TestProjectsEndpoint(t *testing.T) {
	_, ts := testService(t)

	var projects []model.Project
	getJSON(t, ts.URL+"/api/projects", &projects)
	require.Len(t, projects, 2)
	assert.Equal(t, "alpha", projects[0].Name)
	assert.Equal(t, "/home/dev/alpha", projects[0].Path)
	assert.Equal(t, 2, projects[0].MessageCount)
}

func TestProjectStatsEndpoint(t *testing.T) {
	_, ts := testService(t)

	var summary model.ProjectStatsSummary
	resp := getJSON(t, ts.URL+"/api/projects/alpha/stats", &summary)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alpha", summary.ProjectName)
	assert.EqualValues(t, 150, summary.TotalTokens)

	resp = getJSON(t, ts.URL+"/api/projects/nope/stats", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSessionsEndpoints(t *testing.T) {
	_, ts := testService(t)

	var sessions []model.Session
	getJSON(t, ts.URL+"/api/sessions", &sessions)
	require.Len(t, sessions, 2)
	// Newest last activity first.
	assert.Equal(t, "sess-b", sessions[0].SessionID)

	getJSON(t, ts.URL+"/api/sessions?project=alpha", &sessions)
	require.Len(t, sessions, 1)
	assert.Equal(t, "sess-a", sessions[0].SessionID)

	var sess model.Session
	resp := getJSON(t, ts.URL+"/api/sessions/sess-a", &sess)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "sa", sess.ActualSessionID)

	resp = getJSON(t, ts.URL+"/api/sessions/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMessagesEndpointPaging(t *testing.T) {
	_, ts := testService(t)

	var page model.MessagePage
	getJSON(t, ts.URL+"/api/sessions/sess-a/messages?offset=0&limit=1", &page)
	assert.Equal(t, 2, page.TotalCount)
	assert.Len(t, page.Messages, 1)
	assert.True(t, page.HasMore)
	assert.Equal(t, 1, page.NextOffset)

	getJSON(t, ts.URL+"/api/sessions/sess-a/messages?offset=1&limit=1", &page)
	assert.False(t, page.HasMore)
	assert.Equal(t, 2, page.NextOffset)
}

func TestTokensEndpoint(t *testing.T) {
	_, ts := testService(t)

	var stats model.SessionTokenStats
	getJSON(t, ts.URL+"/api/sessions/sess-a/tokens", &stats)
	assert.EqualValues(t, 100, stats.TotalInputTokens)
	assert.EqualValues(t, 50, stats.TotalOutputTokens)
	assert.EqualValues(t, 150, stats.TotalTokens)
}

func TestComparisonEndpoint(t *testing.T) {
	_, ts := testService(t)

	var cmp model.SessionComparison
	resp := getJSON(t, ts.URL+"/api/sessions/sess-a/comparison", &cmp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "sess-a", cmp.SessionID)
	// Only session in its project.
	assert.InDelta(t, 100.0, cmp.PercentageOfProjectTokens, 1e-9)
	assert.Equal(t, 1, cmp.RankByTokens)
	assert.Equal(t, 1, cmp.RankByDuration)

	resp = getJSON(t, ts.URL+"/api/sessions/nope/comparison", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEditsEndpoint(t *testing.T) {
	_, ts := testService(t)

	var edits model.RecentEditsResult
	getJSON(t, ts.URL+"/api/edits", &edits)
	assert.Equal(t, 1, edits.TotalEditsCount)
	require.Len(t, edits.Files, 1)
	assert.Equal(t, "/home/dev/alpha/main.go", edits.Files[0].FilePath)
	assert.Equal(t, "write", edits.Files[0].OperationType)
}

func TestNotLoadedYet(t *testing.T) {
	svc := New(Config{DataDir: t.TempDir()})
	ts := httptest.NewServer(svc.routes())
	defer ts.Close()

	resp := getJSON(t, ts.URL+"/api/stats", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
