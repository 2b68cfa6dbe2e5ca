package guard

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Locker holds at most one in-flight action per key. Every hold expires after
// a TTL so a lost release cannot lock an actor out for good.
type Locker interface {
	Held(ctx context.Context, key string) (bool, error)
	TryAcquire(ctx context.Context, key string) (bool, error)
	// ReleaseAfter frees the key d from now; d <= 0 frees it immediately.
	ReleaseAfter(ctx context.Context, key string, d time.Duration) error
}

type MemoryLock struct {
	TTL time.Duration
	Now func() time.Time

	mu      sync.Mutex
	expires map[string]time.Time
}

func NewMemoryLock(ttl time.Duration) *MemoryLock {
	return &MemoryLock{TTL: ttl, expires: map[string]time.Time{}}
}

func (l *MemoryLock) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

func (l *MemoryLock) heldLocked(key string, now time.Time) bool {
	exp, ok := l.expires[key]
	if !ok {
		return false
	}
	if !now.Before(exp) {
		delete(l.expires, key)
		return false
	}
	return true
}

func (l *MemoryLock) Held(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.heldLocked(key, l.now()), nil
}

func (l *MemoryLock) TryAcquire(_ context.Context, key string) (bool, error) {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.expires == nil {
		l.expires = map[string]time.Time{}
	}
	if l.heldLocked(key, now) {
		return false, nil
	}
	l.expires[key] = now.Add(l.TTL)
	return true, nil
}

func (l *MemoryLock) ReleaseAfter(_ context.Context, key string, d time.Duration) error {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.heldLocked(key, now) {
		return nil
	}
	if d <= 0 {
		delete(l.expires, key)
		return nil
	}
	l.expires[key] = now.Add(d)
	return nil
}

type RedisLock struct {
	Client *redis.Client
	TTL    time.Duration
	Prefix string
}

func (l RedisLock) key(k string) string { return l.Prefix + "lock:" + k }

func (l RedisLock) Held(ctx context.Context, key string) (bool, error) {
	n, err := l.Client.Exists(ctx, l.key(key)).Result()
	return n > 0, err
}

func (l RedisLock) TryAcquire(ctx context.Context, key string) (bool, error) {
	return l.Client.SetNX(ctx, l.key(key), 1, l.TTL).Result()
}

func (l RedisLock) ReleaseAfter(ctx context.Context, key string, d time.Duration) error {
	if d <= 0 {
		return l.Client.Del(ctx, l.key(key)).Err()
	}
	return l.Client.PExpire(ctx, l.key(key), d).Err()
}
