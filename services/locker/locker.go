package locker

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Locker is an advisory lock keyed by search keyword. It keeps two callers
// from scraping the same keyword at the same time; it is best-effort, the
// store's primary keys stay the last line of defense.
type Locker interface {
	// Acquire takes the lock for key, returning false when it is already held
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release drops the lock for key
	Release(ctx context.Context, key string) error

	// Close closes the underlying connection
	Close() error
}

// RedisLocker implements Locker with SETNX and a TTL so a crashed scrape
// cannot hold a keyword forever
type RedisLocker struct {
	client *redis.Client
	prefix string
}

// NewRedisLocker creates a new Redis-backed locker
func NewRedisLocker(addr string, db int) *RedisLocker {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	return &RedisLocker{
		client: client,
		prefix: "scrape_lock:",
	}
}

// Acquire takes the lock for key
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return l.client.SetNX(ctx, l.prefix+key, "1", ttl).Result()
}

// Release drops the lock for key
func (l *RedisLocker) Release(ctx context.Context, key string) error {
	return l.client.Del(ctx, l.prefix+key).Err()
}

// Close closes the Redis connection
func (l *RedisLocker) Close() error {
	return l.client.Close()
}
