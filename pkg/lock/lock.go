package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Locker serializes batch runs that must not interleave, such as outcome
// processing for a selection process or generation of a convocation list.
type Locker struct {
	client *redis.Client
	prefix string
}

// NewLocker builds a Locker with the given key prefix.
func NewLocker(client *redis.Client, prefix string) *Locker {
	return &Locker{client: client, prefix: prefix}
}

// Acquire takes the lock for key. It returns false when another holder
// already owns it. The TTL bounds the damage of a crashed run.
func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.redisKey(key), time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	return ok, nil
}

// Release drops the lock for key. Releasing an unheld lock is a no-op.
func (l *Locker) Release(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, l.redisKey(key)).Err(); err != nil {
		return fmt.Errorf("release lock %s: %w", key, err)
	}
	return nil
}

func (l *Locker) redisKey(key string) string {
	return fmt.Sprintf("%s:lock:%s", l.prefix, key)
}
