package transcript

import "github.com/jovezhong/claude-code-history-viewer/internal/model"

// SessionTokens folds a session's canonical messages into token totals.
//
// Each category sums over the messages that carry a usage block; a missing
// count contributes zero, never an error. MessageCount counts every message
// regardless of usage data. Cost and duration sum when present.
func SessionTokens(sess model.Session, messages []model.Message) model.SessionTokenStats {
	stats := model.SessionTokenStats{
		SessionID:        sess.SessionID,
		ProjectName:      sess.ProjectName,
		MessageCount:     len(messages),
		FirstMessageTime: sess.FirstMessageTime,
		LastMessageTime:  sess.LastMessageTime,
	}

	for i := range messages {
		m := &messages[i]
		if u := m.Usage; u != nil {
			stats.TotalInputTokens += tokenCount(u.InputTokens)
			stats.TotalOutputTokens += tokenCount(u.OutputTokens)
			stats.TotalCacheCreationTokens += tokenCount(u.CacheCreationInputTokens)
			stats.TotalCacheReadTokens += tokenCount(u.CacheReadInputTokens)
		}
		if m.CostUSD != nil {
			stats.TotalCostUSD += *m.CostUSD
		}
		if m.DurationMs != nil {
			stats.TotalDurationMs += *m.DurationMs
		}
	}

	stats.TotalTokens = stats.TotalInputTokens + stats.TotalOutputTokens +
		stats.TotalCacheCreationTokens + stats.TotalCacheReadTokens

	return stats
}

// Usage returns a message's token usage as a distribution, treating missing
// counts as zero contribution.
func Usage(m *model.Message) model.TokenDistribution {
	var d model.TokenDistribution
	if u := m.Usage; u != nil {
		d.Input = tokenCount(u.InputTokens)
		d.Output = tokenCount(u.OutputTokens)
		d.CacheCreation = tokenCount(u.CacheCreationInputTokens)
		d.CacheRead = tokenCount(u.CacheReadInputTokens)
	}
	return d
}

func tokenCount(n *int64) int64 {
	if n == nil || *n < 0 {
		return 0
	}
	return *n
}
