package engine

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLocker implementa o mutex por evento com SET NX + TTL.
// O TTL evita lock órfão se o processo morrer no meio da liquidação.
type RedisLocker struct {
	Rdb *redis.Client
}

func NewRedisLocker(rdb *redis.Client) *RedisLocker { return &RedisLocker{Rdb: rdb} }

func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return l.Rdb.SetNX(ctx, key, "1", ttl).Result()
}

func (l *RedisLocker) Unlock(ctx context.Context, key string) error {
	return l.Rdb.Del(ctx, key).Err()
}
