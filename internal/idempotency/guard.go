package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Guard reserves Idempotency-Key values so a request is applied at most once per key.
type Guard interface {
	// Reserve returns false when the key is already reserved.
	Reserve(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

type RedisGuard struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisGuard creates a Guard whose reservations expire after ttl.
func NewRedisGuard(rdb *redis.Client, ttl time.Duration) *RedisGuard {
	return &RedisGuard{rdb: rdb, ttl: ttl}
}

func (g *RedisGuard) Reserve(ctx context.Context, key string) (bool, error) {
	return g.rdb.SetNX(ctx, redisKey(key), "exists", g.ttl).Result()
}

func (g *RedisGuard) Release(ctx context.Context, key string) error {
	return g.rdb.Del(ctx, redisKey(key)).Err()
}

func redisKey(key string) string {
	return fmt.Sprintf("idempotency-key:%s", key)
}

// Nop accepts every key.
type Nop struct{}

func (Nop) Reserve(context.Context, string) (bool, error) { return true, nil }
func (Nop) Release(context.Context, string) error         { return nil }
