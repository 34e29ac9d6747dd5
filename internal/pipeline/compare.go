package pipeline

import (
	"github.com/jovezhong/claude-code-history-viewer/internal/model"
)

// CompareSession positions the session with the given id against its project
// peers. peers must include the session itself; ok is false when it does not.
//
// Ranks are 1-based and dense at ties: a session's rank is one plus the
// number of peers strictly ahead of it, so two equal sessions share a rank.
func CompareSession(sessionID string, peers []model.SessionTokenStats) (model.SessionComparison, bool) {
	var target *model.SessionTokenStats
	var totalTokens int64
	var totalMessages int
	for i := range peers {
		if peers[i].SessionID == sessionID {
			target = &peers[i]
		}
		totalTokens += peers[i].TotalTokens
		totalMessages += peers[i].MessageCount
	}
	if target == nil {
		return model.SessionComparison{}, false
	}

	cmp := model.SessionComparison{
		SessionID:      sessionID,
		RankByTokens:   1,
		RankByDuration: 1,
	}
	if totalTokens > 0 {
		cmp.PercentageOfProjectTokens = 100 * float64(target.TotalTokens) / float64(totalTokens)
	}
	if totalMessages > 0 {
		cmp.PercentageOfProjectMessages = 100 * float64(target.MessageCount) / float64(totalMessages)
	}

	targetDur := sessionSeconds(*target)
	for i := range peers {
		if peers[i].SessionID == sessionID {
			continue
		}
		if peers[i].TotalTokens > target.TotalTokens {
			cmp.RankByTokens++
		}
		if sessionSeconds(peers[i]) > targetDur {
			cmp.RankByDuration++
		}
	}

	// Above average iff tokens * n > total, kept in integers for exactness.
	cmp.IsAboveAverage = target.TotalTokens*int64(len(peers)) > totalTokens
	return cmp, true
}
