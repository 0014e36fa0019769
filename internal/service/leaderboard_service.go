package service

import (
	"context"
	"encoding/json"
	"formations_backend/internal/repository"
	"formations_backend/pkg/logger"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Timeframes du front: leaderboard_all, leaderboard_30, leaderboard_7.
const (
	TimeframeAll    = "all"
	Timeframe30Days = "30"
	Timeframe7Days  = "7"
)

const (
	leaderboardCacheTTL     = 60 * time.Second
	defaultLeaderboardLimit = 20
	maxLeaderboardLimit     = 100
)

// LeaderboardSource fournit les classements agrégés.
type LeaderboardSource interface {
	TopAllTime(limit int) ([]repository.LeaderboardRow, error)
	TopSince(since time.Time, limit int) ([]repository.LeaderboardRow, error)
}

type LeaderboardService struct {
	Source LeaderboardSource
	RDB    *redis.Client
}

func NewLeaderboardService(source LeaderboardSource, rdb *redis.Client) *LeaderboardService {
	return &LeaderboardService{
		Source: source,
		RDB:    rdb,
	}
}

// GetLeaderboard sert le classement demandé. La requête et le cache portent
// toujours sur maxLeaderboardLimit lignes par timeframe, tronquées à limit
// au retour: une entrée de cache sert ainsi toutes les tailles demandées.
func (s *LeaderboardService) GetLeaderboard(ctx context.Context, timeframe string, limit int) ([]repository.LeaderboardRow, error) {
	if timeframe != Timeframe30Days && timeframe != Timeframe7Days {
		timeframe = TimeframeAll
	}
	if limit <= 0 || limit > maxLeaderboardLimit {
		limit = defaultLeaderboardLimit
	}

	cacheKey := "leaderboard:" + timeframe

	if s.RDB != nil {
		cached, err := s.RDB.Get(ctx, cacheKey).Result()
		if err == nil {
			var rows []repository.LeaderboardRow
			if json.Unmarshal([]byte(cached), &rows) == nil {
				if len(rows) > limit {
					rows = rows[:limit]
				}
				return rows, nil
			}
		}
	}

	var rows []repository.LeaderboardRow
	var err error
	switch timeframe {
	case Timeframe30Days:
		rows, err = s.Source.TopSince(time.Now().AddDate(0, 0, -30), maxLeaderboardLimit)
	case Timeframe7Days:
		rows, err = s.Source.TopSince(time.Now().AddDate(0, 0, -7), maxLeaderboardLimit)
	default:
		rows, err = s.Source.TopAllTime(maxLeaderboardLimit)
	}
	if err != nil {
		return nil, err
	}

	if s.RDB != nil {
		payload, err := json.Marshal(rows)
		if err == nil {
			if err := s.RDB.Set(ctx, cacheKey, payload, leaderboardCacheTTL).Err(); err != nil {
				logger.Log.Warn("leaderboard cache write failed", zap.Error(err))
			}
		}
	}

	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}
