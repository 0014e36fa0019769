package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisRunLock sérialise les commits d'un même utilisateur via SETNX.
// Best-effort: une erreur Redis est remontée à l'appelant qui décide de
// continuer en mode dégradé (fenêtre anti-doublon seule).
type RedisRunLock struct {
	RDB *redis.Client
	TTL time.Duration
}

func NewRedisRunLock(rdb *redis.Client) *RedisRunLock {
	return &RedisRunLock{RDB: rdb, TTL: 5 * time.Second}
}

func (l *RedisRunLock) Acquire(ctx context.Context, userID uint) (func(), bool, error) {
	key := fmt.Sprintf("commit_run:lock:%d", userID)

	ok, err := l.RDB.SetNX(ctx, key, 1, l.TTL).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		l.RDB.Del(context.Background(), key)
	}
	return release, true, nil
}
