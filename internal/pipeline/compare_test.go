package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jovezhong/claude-code-history-viewer/internal/model"
)

func sessionStats(id string, tokens int64, messages int, first, last string) model.SessionTokenStats {
	return model.SessionTokenStats{
		SessionID:        id,
		TotalTokens:      tokens,
		MessageCount:     messages,
		FirstMessageTime: first,
		LastMessageTime:  last,
	}
}

func TestCompareSessionRanksAndShares(t *testing.T) {
	peers := []model.SessionTokenStats{
		sessionStats("s1", 600, 30, "2025-03-01T10:00:00Z", "2025-03-01T11:00:00Z"),
		sessionStats("s2", 300, 50, "2025-03-01T10:00:00Z", "2025-03-01T10:10:00Z"),
		sessionStats("s3", 100, 20, "2025-03-01T10:00:00Z", "2025-03-01T10:30:00Z"),
	}

	cmp, ok := CompareSession("s2", peers)
	require.True(t, ok)
	assert.Equal(t, "s2", cmp.SessionID)
	assert.InDelta(t, 30.0, cmp.PercentageOfProjectTokens, 1e-9)
	assert.InDelta(t, 50.0, cmp.PercentageOfProjectMessages, 1e-9)
	assert.Equal(t, 2, cmp.RankByTokens)
	// s1 ran an hour, s3 half an hour, s2 ten minutes.
	assert.Equal(t, 3, cmp.RankByDuration)
	assert.False(t, cmp.IsAboveAverage)

	top, ok := CompareSession("s1", peers)
	require.True(t, ok)
	assert.Equal(t, 1, top.RankByTokens)
	assert.Equal(t, 1, top.RankByDuration)
	assert.True(t, top.IsAboveAverage)
}

func TestCompareSessionSinglePeer(t *testing.T) {
	cmp, ok := CompareSession("s1", []model.SessionTokenStats{
		sessionStats("s1", 10, 1, "", ""),
	})
	require.True(t, ok)
	assert.InDelta(t, 100.0, cmp.PercentageOfProjectTokens, 1e-9)
	assert.Equal(t, 1, cmp.RankByTokens)
	assert.Equal(t, 1, cmp.RankByDuration)
	// Exactly average is not above average.
	assert.False(t, cmp.IsAboveAverage)
}

func TestCompareSessionUnknown(t *testing.T) {
	_, ok := CompareSession("nope", []model.SessionTokenStats{
		sessionStats("s1", 10, 1, "", ""),
	})
	assert.False(t, ok)
}
