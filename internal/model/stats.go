package model

// Session is one log file's worth of messages, reconstructed fresh on every
// query. SessionID derives from the file location; ActualSessionID is the
// majority sessionId embedded in the messages themselves. The two diverge
// when a file has been renamed or moved.
type Session struct {
	SessionID        string  `json:"session_id"`
	ActualSessionID  string  `json:"actual_session_id"`
	FilePath         string  `json:"file_path"`
	ProjectName      string  `json:"project_name"`
	MessageCount     int     `json:"message_count"`
	FirstMessageTime string  `json:"first_message_time"`
	LastMessageTime  string  `json:"last_message_time"`
	LastModified     string  `json:"last_modified"`
	HasToolUse       bool    `json:"has_tool_use"`
	HasErrors        bool    `json:"has_errors"`
	Summary          *string `json:"summary,omitempty"`
}

// Project describes one project directory under the Claude data dir.
type Project struct {
	Name         string `json:"name"`
	Path         string `json:"path"`
	SessionCount int    `json:"session_count"`
	MessageCount int    `json:"message_count"`
	LastModified string `json:"last_modified"`
}

// MessagePage is one page of a session's canonical messages.
type MessagePage struct {
	Messages   []Message `json:"messages"`
	TotalCount int       `json:"total_count"`
	HasMore    bool      `json:"has_more"`
	NextOffset int       `json:"next_offset"`
}

// SessionTokenStats holds per-session token totals. All token sums use
// 64-bit accumulation; MessageCount counts every message, with or without
// usage data.
type SessionTokenStats struct {
	SessionID                string  `json:"session_id"`
	ProjectName              string  `json:"project_name"`
	TotalInputTokens         int64   `json:"total_input_tokens"`
	TotalOutputTokens        int64   `json:"total_output_tokens"`
	TotalCacheCreationTokens int64   `json:"total_cache_creation_tokens"`
	TotalCacheReadTokens     int64   `json:"total_cache_read_tokens"`
	TotalTokens              int64   `json:"total_tokens"`
	MessageCount             int     `json:"message_count"`
	FirstMessageTime         string  `json:"first_message_time"`
	LastMessageTime          string  `json:"last_message_time"`
	TotalCostUSD             float64 `json:"total_cost_usd,omitempty"`
	TotalDurationMs          int64   `json:"total_duration_ms,omitempty"`
}

// TokenDistribution splits a token total into the four usage categories.
type TokenDistribution struct {
	Input         int64 `json:"input"`
	Output        int64 `json:"output"`
	CacheCreation int64 `json:"cache_creation"`
	CacheRead     int64 `json:"cache_read"`
}

// Add accumulates another distribution into this one.
func (d *TokenDistribution) Add(o TokenDistribution) {
	d.Input += o.Input
	d.Output += o.Output
	d.CacheCreation += o.CacheCreation
	d.CacheRead += o.CacheRead
}

// Total returns the sum across all four categories.
func (d TokenDistribution) Total() int64 {
	return d.Input + d.Output + d.CacheCreation + d.CacheRead
}

// SessionComparison positions one session against the rest of its project:
// its share of the project's tokens and messages, its 1-based rank by tokens
// and by wall-clock duration, and whether its token usage is above the
// project's per-session average.
type SessionComparison struct {
	SessionID                   string  `json:"session_id"`
	PercentageOfProjectTokens   float64 `json:"percentage_of_project_tokens"`
	PercentageOfProjectMessages float64 `json:"percentage_of_project_messages"`
	RankByTokens                int     `json:"rank_by_tokens"`
	RankByDuration              int     `json:"rank_by_duration"`
	IsAboveAverage              bool    `json:"is_above_average"`
}

// DailyStats holds activity for one UTC calendar date.
type DailyStats struct {
	Date         string `json:"date"`
	TotalTokens  int64  `json:"total_tokens"`
	InputTokens  int64  `json:"input_tokens"`
	OutputTokens int64  `json:"output_tokens"`
	MessageCount int    `json:"message_count"`
	SessionCount int    `json:"session_count"`
	ActiveHours  int    `json:"active_hours"`
}

// ActivityHeatmap is one (hour-of-day, day-of-week) activity cell.
// Day follows time.Weekday numbering: 0 is Sunday.
type ActivityHeatmap struct {
	Hour          int   `json:"hour"`
	Day           int   `json:"day"`
	ActivityCount int64 `json:"activity_count"`
	TokensUsed    int64 `json:"tokens_used"`
}

// ToolUsageStats aggregates invocations of one tool.
// AvgExecutionTime is in milliseconds and omitted when no invocation
// reported a duration.
type ToolUsageStats struct {
	ToolName         string   `json:"tool_name"`
	UsageCount       int64    `json:"usage_count"`
	SuccessRate      float64  `json:"success_rate"`
	AvgExecutionTime *float64 `json:"avg_execution_time,omitempty"`
}

// ModelStats aggregates assistant messages per model.
type ModelStats struct {
	ModelName           string `json:"model_name"`
	MessageCount        int    `json:"message_count"`
	TokenCount          int64  `json:"token_count"`
	InputTokens         int64  `json:"input_tokens"`
	OutputTokens        int64  `json:"output_tokens"`
	CacheCreationTokens int64  `json:"cache_creation_tokens"`
	CacheReadTokens     int64  `json:"cache_read_tokens"`
}

// ProjectRanking is one entry in the global top-projects view.
type ProjectRanking struct {
	ProjectName string `json:"project_name"`
	Sessions    int    `json:"sessions"`
	Messages    int    `json:"messages"`
	Tokens      int64  `json:"tokens"`
}

// DateRange spans the earliest to latest message timestamp, with the
// inclusive day span between them.
type DateRange struct {
	FirstMessage *string `json:"first_message,omitempty"`
	LastMessage  *string `json:"last_message,omitempty"`
	DaysSpan     int     `json:"days_span"`
}

// ProjectStatsSummary is the project-scope rollup.
// Session durations are in seconds.
type ProjectStatsSummary struct {
	ProjectName          string            `json:"project_name"`
	TotalSessions        int               `json:"total_sessions"`
	TotalMessages        int               `json:"total_messages"`
	TotalTokens          int64             `json:"total_tokens"`
	AvgTokensPerSession  int64             `json:"avg_tokens_per_session"`
	AvgSessionDuration   int64             `json:"avg_session_duration"`
	TotalSessionDuration int64             `json:"total_session_duration"`
	MostActiveHour       int               `json:"most_active_hour"`
	MostUsedTools        []ToolUsageStats  `json:"most_used_tools"`
	DailyStats           []DailyStats      `json:"daily_stats"`
	ActivityHeatmap      []ActivityHeatmap `json:"activity_heatmap"`
	TokenDistribution    TokenDistribution `json:"token_distribution"`
}

// GlobalStatsSummary is the all-projects rollup.
type GlobalStatsSummary struct {
	TotalProjects               int               `json:"total_projects"`
	TotalSessions               int               `json:"total_sessions"`
	TotalMessages               int               `json:"total_messages"`
	TotalTokens                 int64             `json:"total_tokens"`
	TotalSessionDurationMinutes int64             `json:"total_session_duration_minutes"`
	DateRange                   DateRange         `json:"date_range"`
	TokenDistribution           TokenDistribution `json:"token_distribution"`
	DailyStats                  []DailyStats      `json:"daily_stats"`
	ActivityHeatmap             []ActivityHeatmap `json:"activity_heatmap"`
	MostUsedTools               []ToolUsageStats  `json:"most_used_tools"`
	ModelDistribution           []ModelStats      `json:"model_distribution"`
	TopProjects                 []ProjectRanking  `json:"top_projects"`
}

// RecentFileEdit is one file modification recovered from a tool result.
type RecentFileEdit struct {
	FilePath           string  `json:"file_path"`
	Timestamp          string  `json:"timestamp"`
	SessionID          string  `json:"session_id"`
	OperationType      string  `json:"operation_type"` // "edit" or "write"
	ContentAfterChange string  `json:"content_after_change"`
	OriginalContent    *string `json:"original_content,omitempty"`
	LinesAdded         int     `json:"lines_added"`
	LinesRemoved       int     `json:"lines_removed"`
	Cwd                *string `json:"cwd,omitempty"`
}

// RecentEditsResult is the answer to a recent-edits query.
type RecentEditsResult struct {
	Files            []RecentFileEdit `json:"files"`
	TotalEditsCount  int              `json:"total_edits_count"`
	UniqueFilesCount int              `json:"unique_files_count"`
	ProjectCwd       *string          `json:"project_cwd,omitempty"`
}
