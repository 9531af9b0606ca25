package storage

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultIdempotencyTTL = 24 * time.Hour

// RedisIdempotency claims idempotency keys with SET NX and a TTL.
type RedisIdempotency struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisIdempotency(client *redis.Client, ttl time.Duration) *RedisIdempotency {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &RedisIdempotency{client: client, ttl: ttl}
}

func (r *RedisIdempotency) SetIdempotency(ctx context.Context, key string) (bool, error) {
	return r.client.SetNX(ctx, key, 1, r.ttl).Result()
}

func (r *RedisIdempotency) ReleaseIdempotency(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}
