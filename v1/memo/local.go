package memo

import (
	"time"

	"github.com/dgraph-io/ristretto"
)

// localCache is a small ristretto wrapper used as an optional read-through
// layer in front of the coordinator's value store.
type localCache struct {
	c *ristretto.Cache
}

func newLocalCache(maxCost int64) *localCache {
	if maxCost <= 0 {
		maxCost = 1 << 20
	}
	rc, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e4,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		panic(err)
	}
	return &localCache{c: rc}
}

func (l *localCache) get(key string) (any, bool) {
	return l.c.Get(key)
}

func (l *localCache) set(key string, v any, ttl time.Duration) {
	l.c.SetWithTTL(key, v, 1, ttl)
	l.c.Wait()
}

func (l *localCache) del(key string) {
	l.c.Del(key)
}
