package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"ruleta-service/internal/app"
	"ruleta-service/internal/domain"
)

// ActiveIDCache caches the wheel's active ids per mode with TTL to avoid
// re-reading the repository on every spin.
type ActiveIDCache struct {
	ttl   time.Duration
	clock func() time.Time
	sf    singleflight.Group
	rnd   *rand.Rand

	mu    sync.RWMutex
	cache map[domain.Mode]cachedIDs
	// generation is bumped on Invalidate so in-flight loads don't store stale lists.
	generation map[domain.Mode]uint64
}

type cachedIDs struct {
	ids       []int64
	expiresAt time.Time
}

func NewActiveIDCache(ttl time.Duration) *ActiveIDCache {
	return &ActiveIDCache{
		ttl:        ttl,
		clock:      time.Now,
		rnd:        rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:      make(map[domain.Mode]cachedIDs),
		generation: make(map[domain.Mode]uint64),
	}
}

func (c *ActiveIDCache) ActiveIDs(ctx context.Context, mode domain.Mode, load app.ActiveIDLoader) ([]int64, error) {
	if ids, ok := c.lookup(mode); ok {
		return ids, nil
	}

	result, err, _ := c.sf.Do(string(mode), func() (interface{}, error) {
		if ids, ok := c.lookup(mode); ok {
			return ids, nil
		}

		c.mu.RLock()
		gen := c.generation[mode]
		c.mu.RUnlock()

		ids, err := load(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.generation[mode] == gen && c.ttl > 0 {
			c.cache[mode] = cachedIDs{
				ids:       ids,
				expiresAt: c.clock().Add(c.ttlWithJitter()),
			}
		}
		c.mu.Unlock()
		return ids, nil
	})
	if err != nil {
		return nil, err
	}
	return copyIDs(result.([]int64)), nil
}

func (c *ActiveIDCache) Invalidate(_ context.Context, mode domain.Mode) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cache, mode)
	c.generation[mode]++
	return nil
}

func (c *ActiveIDCache) lookup(mode domain.Mode) ([]int64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[mode]
	if !ok || !entry.expiresAt.After(c.clock()) {
		return nil, false
	}
	return copyIDs(entry.ids), true
}

func (c *ActiveIDCache) ttlWithJitter() time.Duration {
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

func copyIDs(ids []int64) []int64 {
	out := make([]int64, len(ids))
	copy(out, ids)
	return out
}
