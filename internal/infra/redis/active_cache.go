package redis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"ruleta-service/internal/app"
	"ruleta-service/internal/domain"
)

// ActiveIDCache keeps the wheel's active ids in Redis so every instance sees
// the same list and an invalidation on one instance reaches all of them.
// Stored as: SET ruleta:activas:{mode} <json array> EX ttl
// Invalidate bumps ruleta:activas:{mode}:gen; a load only writes back when the
// generation it started under is still current.
type ActiveIDCache struct {
	client *redis.Client
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewActiveIDCache(client *redis.Client, ttl time.Duration) *ActiveIDCache {
	return &ActiveIDCache{
		client: client,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *ActiveIDCache) ActiveIDs(ctx context.Context, mode domain.Mode, load app.ActiveIDLoader) ([]int64, error) {
	if ids, ok := c.lookup(ctx, mode); ok {
		return ids, nil
	}

	result, err, _ := c.sf.Do(string(mode), func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if ids, ok := c.lookup(ctx, mode); ok {
			return ids, nil
		}

		gen, err := c.generation(ctx, c.client, mode)
		if err != nil {
			return nil, err
		}
		ids, err := load(ctx)
		if err != nil {
			return nil, err
		}
		c.store(ctx, mode, gen, ids)
		return ids, nil
	})
	if err != nil {
		return nil, err
	}
	ids := result.([]int64)
	out := make([]int64, len(ids))
	copy(out, ids)
	return out, nil
}

func (c *ActiveIDCache) Invalidate(ctx context.Context, mode domain.Mode) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.genKey(mode))
		pipe.Del(ctx, c.key(mode))
		return nil
	})
	return err
}

// store caches ids unless an invalidation happened since gen was read.
func (c *ActiveIDCache) store(ctx context.Context, mode domain.Mode, gen int64, ids []int64) {
	ttl := c.ttlWithJitter()
	if ttl <= 0 {
		return
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return
	}
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := c.generation(ctx, tx, mode)
		if err != nil {
			return err
		}
		if current != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, c.key(mode), data, ttl)
			return nil
		})
		return err
	}, c.genKey(mode))
	if err != nil && !errors.Is(err, redis.TxFailedErr) {
		log.Warn().Err(err).Str("modo", string(mode)).Msg("active id cache write failed")
	}
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (c *ActiveIDCache) generation(ctx context.Context, r getter, mode domain.Mode) (int64, error) {
	gen, err := r.Get(ctx, c.genKey(mode)).Int64()
	if isMiss(err) {
		return 0, nil
	}
	return gen, err
}

func (c *ActiveIDCache) lookup(ctx context.Context, mode domain.Mode) ([]int64, bool) {
	data, err := c.client.Get(ctx, c.key(mode)).Bytes()
	if err != nil {
		return nil, false
	}
	var ids []int64
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, false
	}
	return ids, true
}

func (c *ActiveIDCache) key(mode domain.Mode) string {
	return "ruleta:activas:" + string(mode)
}

func (c *ActiveIDCache) genKey(mode domain.Mode) string {
	return c.key(mode) + ":gen"
}

func (c *ActiveIDCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

// isMiss reports whether err only means the key does not exist.
func isMiss(err error) bool {
	return errors.Is(err, redis.Nil)
}
