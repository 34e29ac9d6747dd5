// Package pipeline orchestrates session loading, caching, and rollup
// aggregation across projects.
package pipeline

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/jovezhong/claude-code-history-viewer/internal/model"
	"github.com/jovezhong/claude-code-history-viewer/internal/transcript"
)

// Rollup accumulates reconstructed sessions into the aggregate views.
//
// Add and Merge are associative and commutative for every additive field, so
// workers can fold sessions in any order into local rollups and merge them
// serially afterwards. A project summary is the fold of its sessions and the
// global summary is the fold of the project rollups, exactly.
type Rollup struct {
	// ToolError overrides the error detector used for tool success rates.
	// nil means transcript.DefaultToolError.
	ToolError transcript.ErrorPredicate

	sessions     int
	messages     int
	durationSecs int64
	tokens       model.TokenDistribution
	firstTS      string
	lastTS       string
	firstAt      time.Time
	lastAt       time.Time

	daily  map[string]*dailyBucket
	heat   map[heatKey]*heatBucket
	tools  map[string]*toolBucket
	models map[string]*modelBucket
}

type dailyBucket struct {
	tokens   model.TokenDistribution
	messages int
	sessions map[string]struct{}
	hours    map[int]struct{}
}

type heatKey struct {
	hour int
	day  int
}

type heatBucket struct {
	count  int64
	tokens int64
}

type toolBucket struct {
	uses     int64
	failures int64
	durMs    int64
	durN     int64
}

type modelBucket struct {
	messages int
	tokens   model.TokenDistribution
}

// NewRollup returns an empty accumulator.
func NewRollup() *Rollup {
	return &Rollup{
		daily:  make(map[string]*dailyBucket),
		heat:   make(map[heatKey]*heatBucket),
		tools:  make(map[string]*toolBucket),
		models: make(map[string]*modelBucket),
	}
}

// AddSession folds one reconstructed session into the accumulator.
func (r *Rollup) AddSession(res *transcript.Result) {
	toolError := r.ToolError
	if toolError == nil {
		toolError = transcript.DefaultToolError
	}

	r.sessions++
	r.messages += len(res.Messages)
	r.durationSecs += sessionSeconds(res.Stats)

	r.tokens.Add(model.TokenDistribution{
		Input:         res.Stats.TotalInputTokens,
		Output:        res.Stats.TotalOutputTokens,
		CacheCreation: res.Stats.TotalCacheCreationTokens,
		CacheRead:     res.Stats.TotalCacheReadTokens,
	})

	for i := range res.Messages {
		m := &res.Messages[i]
		usage := transcript.Usage(m)

		if ts, ok := parseTimestamp(m.Timestamp); ok {
			r.observeTime(m.Timestamp)

			date := ts.Format("2006-01-02")
			db := r.daily[date]
			if db == nil {
				db = &dailyBucket{
					sessions: make(map[string]struct{}),
					hours:    make(map[int]struct{}),
				}
				r.daily[date] = db
			}
			db.messages++
			db.tokens.Add(usage)
			db.sessions[res.Session.SessionID] = struct{}{}
			db.hours[ts.Hour()] = struct{}{}

			hk := heatKey{hour: ts.Hour(), day: int(ts.Weekday())}
			hb := r.heat[hk]
			if hb == nil {
				hb = &heatBucket{}
				r.heat[hk] = hb
			}
			hb.count++
			hb.tokens += usage.Total()
		}

		name := toolName(m.ToolUse)
		if name == "" {
			// Some records carry only a named result payload.
			name = toolName(m.ToolUseResult)
		}
		if name != "" {
			tb := r.tools[name]
			if tb == nil {
				tb = &toolBucket{}
				r.tools[name] = tb
			}
			tb.uses++
			if model.RawSet(m.ToolUseResult) && toolError(m.ToolUseResult) {
				tb.failures++
			}
			if m.DurationMs != nil && model.RawSet(m.ToolUseResult) {
				tb.durMs += *m.DurationMs
				tb.durN++
			}
		}

		if m.Type == transcript.TypeAssistant && m.Model != nil && *m.Model != "" {
			mb := r.models[*m.Model]
			if mb == nil {
				mb = &modelBucket{}
				r.models[*m.Model] = mb
			}
			mb.messages++
			mb.tokens.Add(usage)
		}
	}
}

// Merge folds another rollup into this one. The other rollup is not modified.
func (r *Rollup) Merge(o *Rollup) {
	r.sessions += o.sessions
	r.messages += o.messages
	r.durationSecs += o.durationSecs
	r.tokens.Add(o.tokens)
	r.observeTime(o.firstTS)
	r.observeTime(o.lastTS)

	for date, ob := range o.daily {
		db := r.daily[date]
		if db == nil {
			db = &dailyBucket{
				sessions: make(map[string]struct{}),
				hours:    make(map[int]struct{}),
			}
			r.daily[date] = db
		}
		db.messages += ob.messages
		db.tokens.Add(ob.tokens)
		for id := range ob.sessions {
			db.sessions[id] = struct{}{}
		}
		for h := range ob.hours {
			db.hours[h] = struct{}{}
		}
	}
	for k, ob := range o.heat {
		hb := r.heat[k]
		if hb == nil {
			hb = &heatBucket{}
			r.heat[k] = hb
		}
		hb.count += ob.count
		hb.tokens += ob.tokens
	}
	for name, ob := range o.tools {
		tb := r.tools[name]
		if tb == nil {
			tb = &toolBucket{}
			r.tools[name] = tb
		}
		tb.uses += ob.uses
		tb.failures += ob.failures
		tb.durMs += ob.durMs
		tb.durN += ob.durN
	}
	for name, ob := range o.models {
		mb := r.models[name]
		if mb == nil {
			mb = &modelBucket{}
			r.models[name] = mb
		}
		mb.messages += ob.messages
		mb.tokens.Add(ob.tokens)
	}
}

// Sessions returns the number of sessions folded in.
func (r *Rollup) Sessions() int { return r.sessions }

// Messages returns the number of messages folded in.
func (r *Rollup) Messages() int { return r.messages }

// Tokens returns the accumulated token distribution.
func (r *Rollup) Tokens() model.TokenDistribution { return r.tokens }

// ProjectSummary renders the accumulator as a project-scope summary.
// topTools caps most_used_tools; <= 0 means all.
func (r *Rollup) ProjectSummary(projectName string, topTools int) model.ProjectStatsSummary {
	s := model.ProjectStatsSummary{
		ProjectName:          projectName,
		TotalSessions:        r.sessions,
		TotalMessages:        r.messages,
		TotalTokens:          r.tokens.Total(),
		TotalSessionDuration: r.durationSecs,
		MostUsedTools:        r.toolStats(topTools),
		DailyStats:           r.dailyStats(),
		ActivityHeatmap:      r.heatmap(),
		TokenDistribution:    r.tokens,
	}
	if r.sessions > 0 {
		s.AvgTokensPerSession = s.TotalTokens / int64(r.sessions)
		s.AvgSessionDuration = r.durationSecs / int64(r.sessions)
	}
	s.MostActiveHour = r.mostActiveHour()
	return s
}

// GlobalSummary folds per-project rollups into the all-projects summary.
// topTools and topProjects cap the ranked lists; <= 0 means all.
func GlobalSummary(projects map[string]*Rollup, topTools, topProjects int) model.GlobalStatsSummary {
	merged := NewRollup()
	rankings := make([]model.ProjectRanking, 0, len(projects))
	for name, pr := range projects {
		merged.Merge(pr)
		rankings = append(rankings, model.ProjectRanking{
			ProjectName: name,
			Sessions:    pr.sessions,
			Messages:    pr.messages,
			Tokens:      pr.tokens.Total(),
		})
	}

	// Tokens desc, messages desc, then name asc for determinism.
	sort.Slice(rankings, func(i, j int) bool {
		if rankings[i].Tokens != rankings[j].Tokens {
			return rankings[i].Tokens > rankings[j].Tokens
		}
		if rankings[i].Messages != rankings[j].Messages {
			return rankings[i].Messages > rankings[j].Messages
		}
		return rankings[i].ProjectName < rankings[j].ProjectName
	})
	if topProjects > 0 && len(rankings) > topProjects {
		rankings = rankings[:topProjects]
	}

	return model.GlobalStatsSummary{
		TotalProjects:               len(projects),
		TotalSessions:               merged.sessions,
		TotalMessages:               merged.messages,
		TotalTokens:                 merged.tokens.Total(),
		TotalSessionDurationMinutes: merged.durationSecs / 60,
		DateRange:                   merged.dateRange(),
		TokenDistribution:           merged.tokens,
		DailyStats:                  merged.dailyStats(),
		ActivityHeatmap:             merged.heatmap(),
		MostUsedTools:               merged.toolStats(topTools),
		ModelDistribution:           merged.modelStats(),
		TopProjects:                 rankings,
	}
}

func (r *Rollup) dailyStats() []model.DailyStats {
	out := make([]model.DailyStats, 0, len(r.daily))
	for date, db := range r.daily {
		out = append(out, model.DailyStats{
			Date:         date,
			TotalTokens:  db.tokens.Total(),
			InputTokens:  db.tokens.Input,
			OutputTokens: db.tokens.Output,
			MessageCount: db.messages,
			SessionCount: len(db.sessions),
			ActiveHours:  len(db.hours),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func (r *Rollup) heatmap() []model.ActivityHeatmap {
	out := make([]model.ActivityHeatmap, 0, len(r.heat))
	for k, hb := range r.heat {
		out = append(out, model.ActivityHeatmap{
			Hour:          k.hour,
			Day:           k.day,
			ActivityCount: hb.count,
			TokensUsed:    hb.tokens,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Day != out[j].Day {
			return out[i].Day < out[j].Day
		}
		return out[i].Hour < out[j].Hour
	})
	return out
}

func (r *Rollup) toolStats(top int) []model.ToolUsageStats {
	out := make([]model.ToolUsageStats, 0, len(r.tools))
	for name, tb := range r.tools {
		ts := model.ToolUsageStats{
			ToolName:   name,
			UsageCount: tb.uses,
		}
		if tb.uses > 0 {
			ts.SuccessRate = float64(tb.uses-tb.failures) / float64(tb.uses)
		}
		if tb.durN > 0 {
			avg := float64(tb.durMs) / float64(tb.durN)
			ts.AvgExecutionTime = &avg
		}
		out = append(out, ts)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UsageCount != out[j].UsageCount {
			return out[i].UsageCount > out[j].UsageCount
		}
		return out[i].ToolName < out[j].ToolName
	})
	if top > 0 && len(out) > top {
		out = out[:top]
	}
	return out
}

func (r *Rollup) modelStats() []model.ModelStats {
	out := make([]model.ModelStats, 0, len(r.models))
	for name, mb := range r.models {
		out = append(out, model.ModelStats{
			ModelName:           name,
			MessageCount:        mb.messages,
			TokenCount:          mb.tokens.Total(),
			InputTokens:         mb.tokens.Input,
			OutputTokens:        mb.tokens.Output,
			CacheCreationTokens: mb.tokens.CacheCreation,
			CacheReadTokens:     mb.tokens.CacheRead,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TokenCount != out[j].TokenCount {
			return out[i].TokenCount > out[j].TokenCount
		}
		return out[i].ModelName < out[j].ModelName
	})
	return out
}

func (r *Rollup) dateRange() model.DateRange {
	dr := model.DateRange{}
	if r.firstTS == "" {
		return dr
	}
	first, last := r.firstTS, r.lastTS
	dr.FirstMessage = &first
	dr.LastMessage = &last

	ft, okF := parseTimestamp(first)
	lt, okL := parseTimestamp(last)
	if okF && okL {
		firstDay := ft.Truncate(24 * time.Hour)
		lastDay := lt.Truncate(24 * time.Hour)
		dr.DaysSpan = int(lastDay.Sub(firstDay).Hours()/24) + 1
	}
	return dr
}

func (r *Rollup) mostActiveHour() int {
	best, bestCount := 0, int64(-1)
	for hour := 0; hour < 24; hour++ {
		var n int64
		for day := 0; day < 7; day++ {
			if hb := r.heat[heatKey{hour: hour, day: day}]; hb != nil {
				n += hb.count
			}
		}
		if n > bestCount {
			best, bestCount = hour, n
		}
	}
	return best
}

// observeTime widens the first/last timestamp range. Comparison is on the
// parsed instant, not the string: second-precision and fractional-precision
// stamps do not order lexicographically within the same second. Equal
// instants tie-break on the string so Merge stays commutative.
func (r *Rollup) observeTime(ts string) {
	t, ok := parseTimestamp(ts)
	if !ok {
		return
	}
	if r.firstTS == "" || t.Before(r.firstAt) || (t.Equal(r.firstAt) && ts < r.firstTS) {
		r.firstTS, r.firstAt = ts, t
	}
	if r.lastTS == "" || t.After(r.lastAt) || (t.Equal(r.lastAt) && ts > r.lastTS) {
		r.lastTS, r.lastAt = ts, t
	}
}

func parseTimestamp(ts string) (time.Time, bool) {
	if ts == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

func sessionSeconds(stats model.SessionTokenStats) int64 {
	first, okF := parseTimestamp(stats.FirstMessageTime)
	last, okL := parseTimestamp(stats.LastMessageTime)
	if !okF || !okL || last.Before(first) {
		return 0
	}
	return int64(last.Sub(first).Seconds())
}

func toolName(payload json.RawMessage) string {
	if !model.RawSet(payload) {
		return ""
	}
	var tu struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(payload, &tu); err != nil {
		return ""
	}
	return tu.Name
}
