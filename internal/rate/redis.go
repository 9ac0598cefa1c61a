package rate

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "blogd:rl:"

// RedisLimiter хранит счетчики в Redis, поэтому лимит общий для всех экземпляров.
type RedisLimiter struct {
	client redis.Cmdable
}

func NewRedis(client redis.Cmdable) *RedisLimiter {
	return &RedisLimiter{client: client}
}

// Connect создает клиента и проверяет соединение.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// Allow увеличивает счетчик окна; TTL ставится только на первый инкремент.
func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error) {
	k := keyPrefix + key

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, window)
	ttl := pipe.PTTL(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("rate limit %s: %w", key, err)
	}

	retry := ttl.Val()
	if retry < 0 {
		retry = window
	}
	return incr.Val() <= int64(limit), retry, nil
}
