// Package server provides the local HTTP API over the session history.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/jovezhong/claude-code-history-viewer/internal/model"
	"github.com/jovezhong/claude-code-history-viewer/internal/pipeline"
	"github.com/jovezhong/claude-code-history-viewer/internal/transcript"
)

// Config controls the server runtime behavior.
type Config struct {
	DataDir     string
	Addr        string
	Interval    time.Duration
	TopTools    int
	TopProjects int
	Options     transcript.Options
	Logger      *log.Logger
}

// snapshot is the immutable view the handlers serve from. It is replaced
// wholesale on each refresh.
type snapshot struct {
	at       time.Time
	results  []*transcript.Result
	byID     map[string]*transcript.Result
	sessions []model.Session
	rollups  map[string]*pipeline.Rollup
	global   model.GlobalStatsSummary
}

// Service serves the HTTP API and refreshes its data on an interval.
type Service struct {
	cfg Config

	mu        sync.RWMutex
	startedAt time.Time
	lastError string
	snap      *snapshot
}

// New returns a new API service with the provided config.
func New(cfg Config) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 30 * time.Second
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8315"
	}
	if cfg.TopTools < 1 {
		cfg.TopTools = 10
	}
	if cfg.TopProjects < 1 {
		cfg.TopProjects = 10
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}

	return &Service{
		cfg:       cfg,
		startedAt: time.Now(),
	}
}

func (s *Service) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/stats", s.handleGlobalStats)
	mux.HandleFunc("GET /api/projects", s.handleProjects)
	mux.HandleFunc("GET /api/projects/{name}/stats", s.handleProjectStats)
	mux.HandleFunc("GET /api/sessions", s.handleSessions)
	mux.HandleFunc("GET /api/sessions/{id}", s.handleSession)
	mux.HandleFunc("GET /api/sessions/{id}/messages", s.handleMessages)
	mux.HandleFunc("GET /api/sessions/{id}/tokens", s.handleTokens)
	mux.HandleFunc("GET /api/sessions/{id}/comparison", s.handleComparison)
	mux.HandleFunc("GET /api/edits", s.handleEdits)
	return mux
}

// Run starts HTTP endpoints and periodic refresh until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Seed initial data so the API is useful immediately.
	s.refresh()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.refresh()
		case err := <-errCh:
			return fmt.Errorf("api http server: %w", err)
		}
	}
}

func (s *Service) refresh() {
	start := time.Now()

	loaded, err := pipeline.Load(s.cfg.DataDir, s.cfg.Options, nil)
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.mu.Unlock()
		s.cfg.Logger.Error("refresh failed", "err", err)
		return
	}

	snap := buildSnapshot(loaded.Sessions, s.cfg)

	s.mu.Lock()
	s.snap = snap
	s.lastError = ""
	s.mu.Unlock()

	s.cfg.Logger.Info("refreshed",
		"files", loaded.TotalFiles,
		"sessions", len(loaded.Sessions),
		"elapsed", time.Since(start).Round(time.Millisecond))
}

func buildSnapshot(results []*transcript.Result, cfg Config) *snapshot {
	snap := &snapshot{
		at:      time.Now(),
		results: results,
		byID:    make(map[string]*transcript.Result, len(results)),
	}

	for _, r := range results {
		snap.byID[r.Session.SessionID] = r
		snap.sessions = append(snap.sessions, r.Session)
	}
	sort.Slice(snap.sessions, func(i, j int) bool {
		return snap.sessions[i].LastMessageTime > snap.sessions[j].LastMessageTime
	})

	snap.rollups = pipeline.ProjectRollups(results, cfg.Options.ToolError)
	snap.global = pipeline.GlobalSummary(snap.rollups, cfg.TopTools, cfg.TopProjects)
	return snap
}

func (s *Service) current() *snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleGlobalStats(w http.ResponseWriter, _ *http.Request) {
	snap := s.current()
	if snap == nil {
		writeError(w, http.StatusServiceUnavailable, "data not loaded yet")
		return
	}
	writeJSON(w, http.StatusOK, snap.global)
}

func (s *Service) handleProjects(w http.ResponseWriter, _ *http.Request) {
	snap := s.current()
	if snap == nil {
		writeError(w, http.StatusServiceUnavailable, "data not loaded yet")
		return
	}

	grouped := pipeline.GroupByProject(snap.results)
	projects := make([]model.Project, 0, len(grouped))
	for name, results := range grouped {
		p := model.Project{Name: name, SessionCount: len(results)}
		for _, r := range results {
			p.MessageCount += r.Session.MessageCount
			if p.Path == "" && r.ProjectPath != "" {
				p.Path = r.ProjectPath
			}
			if r.Session.LastModified > p.LastModified {
				p.LastModified = r.Session.LastModified
			}
		}
		projects = append(projects, p)
	}
	sort.Slice(projects, func(i, j int) bool {
		return projects[i].Name < projects[j].Name
	})
	writeJSON(w, http.StatusOK, projects)
}

func (s *Service) handleProjectStats(w http.ResponseWriter, r *http.Request) {
	snap := s.current()
	if snap == nil {
		writeError(w, http.StatusServiceUnavailable, "data not loaded yet")
		return
	}

	name := r.PathValue("name")
	rollup, ok := snap.rollups[name]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown project: "+name)
		return
	}
	writeJSON(w, http.StatusOK, rollup.ProjectSummary(name, s.cfg.TopTools))
}

func (s *Service) handleSessions(w http.ResponseWriter, r *http.Request) {
	snap := s.current()
	if snap == nil {
		writeError(w, http.StatusServiceUnavailable, "data not loaded yet")
		return
	}

	sessions := snap.sessions
	if project := r.URL.Query().Get("project"); project != "" {
		filtered := make([]model.Session, 0)
		for _, sess := range sessions {
			if sess.ProjectName == project {
				filtered = append(filtered, sess)
			}
		}
		sessions = filtered
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Service) handleSession(w http.ResponseWriter, r *http.Request) {
	snap := s.current()
	if snap == nil {
		writeError(w, http.StatusServiceUnavailable, "data not loaded yet")
		return
	}

	res, ok := snap.byID[r.PathValue("id")]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}
	writeJSON(w, http.StatusOK, res.Session)
}

func (s *Service) handleMessages(w http.ResponseWriter, r *http.Request) {
	snap := s.current()
	if snap == nil {
		writeError(w, http.StatusServiceUnavailable, "data not loaded yet")
		return
	}

	res, ok := snap.byID[r.PathValue("id")]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}

	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", transcript.DefaultPageSize)
	writeJSON(w, http.StatusOK, transcript.Page(res.Messages, offset, limit))
}

func (s *Service) handleTokens(w http.ResponseWriter, r *http.Request) {
	snap := s.current()
	if snap == nil {
		writeError(w, http.StatusServiceUnavailable, "data not loaded yet")
		return
	}

	res, ok := snap.byID[r.PathValue("id")]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}
	writeJSON(w, http.StatusOK, res.Stats)
}

func (s *Service) handleComparison(w http.ResponseWriter, r *http.Request) {
	snap := s.current()
	if snap == nil {
		writeError(w, http.StatusServiceUnavailable, "data not loaded yet")
		return
	}

	res, ok := snap.byID[r.PathValue("id")]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}

	var peers []model.SessionTokenStats
	for _, other := range snap.results {
		if other.Session.ProjectName == res.Session.ProjectName {
			peers = append(peers, other.Stats)
		}
	}
	cmp, ok := pipeline.CompareSession(res.Session.SessionID, peers)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

func (s *Service) handleEdits(w http.ResponseWriter, r *http.Request) {
	snap := s.current()
	if snap == nil {
		writeError(w, http.StatusServiceUnavailable, "data not loaded yet")
		return
	}

	limit := queryInt(r, "limit", 20)
	writeJSON(w, http.StatusOK, transcript.RecentEdits(snap.results, limit))
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	var n int
	if _, err := fmt.Sscanf(v, "%d", &n); err != nil {
		return def
	}
	return n
}
