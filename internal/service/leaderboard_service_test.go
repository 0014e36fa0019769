package service

import (
	"context"
	"fmt"
	"formations_backend/internal/repository"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLeaderboardSource struct {
	rows        []repository.LeaderboardRow
	err         error
	askedLimits []int
	askedSince  []time.Time
}

func (f *fakeLeaderboardSource) TopAllTime(limit int) ([]repository.LeaderboardRow, error) {
	f.askedLimits = append(f.askedLimits, limit)
	return f.rows, f.err
}

func (f *fakeLeaderboardSource) TopSince(since time.Time, limit int) ([]repository.LeaderboardRow, error) {
	f.askedLimits = append(f.askedLimits, limit)
	f.askedSince = append(f.askedSince, since)
	return f.rows, f.err
}

func leaderboardRows(n int) []repository.LeaderboardRow {
	rows := make([]repository.LeaderboardRow, n)
	for i := range rows {
		rows[i] = repository.LeaderboardRow{
			UserID:      uint(i + 1),
			DisplayName: fmt.Sprintf("joueur%d", i+1),
			XPTotal:     (n - i) * 10,
		}
	}
	return rows
}

func TestGetLeaderboardQueriesMaxAndTruncates(t *testing.T) {
	// la source est toujours interrogée au plafond pour que le cache
	// puisse servir toutes les tailles demandées
	source := &fakeLeaderboardSource{rows: leaderboardRows(maxLeaderboardLimit)}
	svc := NewLeaderboardService(source, nil)

	rows, err := svc.GetLeaderboard(context.Background(), TimeframeAll, 20)
	require.NoError(t, err)
	assert.Len(t, rows, 20)

	require.Len(t, source.askedLimits, 1)
	assert.Equal(t, maxLeaderboardLimit, source.askedLimits[0])

	rows, err = svc.GetLeaderboard(context.Background(), TimeframeAll, 100)
	require.NoError(t, err)
	assert.Len(t, rows, 100)
}

func TestGetLeaderboardNormalizesInputs(t *testing.T) {
	source := &fakeLeaderboardSource{rows: leaderboardRows(maxLeaderboardLimit)}
	svc := NewLeaderboardService(source, nil)

	// limit hors bornes retombe sur la valeur par défaut
	rows, err := svc.GetLeaderboard(context.Background(), "bogus", 1000)
	require.NoError(t, err)
	assert.Len(t, rows, defaultLeaderboardLimit)

	rows, err = svc.GetLeaderboard(context.Background(), TimeframeAll, 0)
	require.NoError(t, err)
	assert.Len(t, rows, defaultLeaderboardLimit)
}

func TestGetLeaderboardTimeframeWindow(t *testing.T) {
	source := &fakeLeaderboardSource{rows: leaderboardRows(3)}
	svc := NewLeaderboardService(source, nil)

	rows, err := svc.GetLeaderboard(context.Background(), Timeframe7Days, 10)
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	require.Len(t, source.askedSince, 1)
	elapsed := time.Since(source.askedSince[0])
	assert.InDelta(t, (7 * 24 * time.Hour).Hours(), elapsed.Hours(), 1)
}
