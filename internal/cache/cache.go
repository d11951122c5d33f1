package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Media references a document Telegram already stores, so it can be sent
// again without another upload.
type Media struct {
	ID            int64
	AccessHash    int64
	FileReference []byte
	Title         string
	Size          int64
}

// MediaCache maps a source key (URL plus rendition) to an uploaded document.
// Entries expire after ttl because file references go stale.
type MediaCache struct {
	items *gocache.Cache
}

func New(ttl time.Duration) *MediaCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &MediaCache{items: gocache.New(ttl, ttl/2)}
}

func (c *MediaCache) Get(key string) (*Media, bool) {
	v, ok := c.items.Get(key)
	if !ok {
		return nil, false
	}
	return v.(*Media), true
}

func (c *MediaCache) Set(key string, m *Media) {
	if key == "" || m == nil {
		return
	}
	c.items.SetDefault(key, m)
}

// Forget drops key, typically after Telegram rejected a stale reference.
func (c *MediaCache) Forget(key string) {
	c.items.Delete(key)
}

func (c *MediaCache) Len() int {
	return c.items.ItemCount()
}
