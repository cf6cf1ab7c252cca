package inmemory

import (
	"sync"

	"github.com/admin/tg-bots/figurine-bot/internal/ports/cache"
)

const defaultDedupSize = 1024

// DedupCache помнит последние size ключей, старые вытесняются по кругу
type DedupCache struct {
	mu   sync.Mutex
	seen map[string]struct{}
	ring []string
	pos  int
}

// NewDedupCache создаёт кэш повторов. size <= 0 - размер по умолчанию.
func NewDedupCache(size int) cache.IDedupCache {
	if size <= 0 {
		size = defaultDedupSize
	}
	return &DedupCache{
		seen: make(map[string]struct{}, size),
		ring: make([]string, size),
	}
}

func (c *DedupCache) Seen(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.seen[key]; ok {
		return true
	}

	if old := c.ring[c.pos]; old != "" {
		delete(c.seen, old)
	}
	c.ring[c.pos] = key
	c.pos = (c.pos + 1) % len(c.ring)
	c.seen[key] = struct{}{}

	return false
}
