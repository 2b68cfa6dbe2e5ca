package guard

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Confirmations tracks the two-press confirmation of irreversible actions.
// Press reports true only for a second press on the same key within the
// window; the first press only arms the key.
type Confirmations interface {
	Press(ctx context.Context, key string) (bool, error)
}

// Key identifies one control: an actor pressing one action on one booking.
func Key(actor, bookingID, action string) string {
	return strings.Join([]string{actor, bookingID, action}, ":")
}

type MemoryConfirmer struct {
	Window time.Duration
	Now    func() time.Time

	mu    sync.Mutex
	armed map[string]time.Time
}

func NewMemoryConfirmer(window time.Duration) *MemoryConfirmer {
	return &MemoryConfirmer{Window: window, armed: map[string]time.Time{}}
}

func (c *MemoryConfirmer) Press(_ context.Context, key string) (bool, error) {
	now := time.Now()
	if c.Now != nil {
		now = c.Now()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.armed == nil {
		c.armed = map[string]time.Time{}
	}

	for k, at := range c.armed {
		if now.Sub(at) > c.Window {
			delete(c.armed, k)
		}
	}

	if _, ok := c.armed[key]; ok {
		delete(c.armed, key)
		return true, nil
	}
	c.armed[key] = now
	return false, nil
}

// RedisConfirmer shares armed keys between instances. SET NX arms; a DEL that
// removes the key is the confirming press, so only one concurrent second
// press wins.
type RedisConfirmer struct {
	Client *redis.Client
	Window time.Duration
	Prefix string
}

func (c RedisConfirmer) Press(ctx context.Context, key string) (bool, error) {
	k := c.Prefix + "confirm:" + key
	armed, err := c.Client.SetNX(ctx, k, 1, c.Window).Result()
	if err != nil {
		return false, err
	}
	if armed {
		return false, nil
	}
	n, err := c.Client.Del(ctx, k).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
