package utils

import (
	"hash/fnv"
	"html/template"
	"log"
	"strconv"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// RenderCache holds rendered Markdown. Keys are derived from the source text,
// so an edited post or comment never hits a stale entry.
type RenderCache struct {
	lruCache *lru.Cache[string, template.HTML]
}

var (
	cacheInstance *RenderCache
	cacheOnce     sync.Once
)

const renderCacheSize = 500

// GetCache returns the process-wide cache.
func GetCache() *RenderCache {
	cacheOnce.Do(func() {
		l, err := lru.New[string, template.HTML](renderCacheSize)
		if err != nil {
			log.Fatalf("Failed to create LRU cache: %v", err)
		}
		cacheInstance = &RenderCache{lruCache: l}
	})
	return cacheInstance
}

func (c *RenderCache) Add(key string, html template.HTML) {
	c.lruCache.Add(key, html)
}

func (c *RenderCache) Get(key string) (template.HTML, bool) {
	return c.lruCache.Get(key)
}

func (c *RenderCache) Len() int {
	return c.lruCache.Len()
}

func (c *RenderCache) Purge() {
	c.lruCache.Purge()
}

func markdownKey(source string) string {
	h := fnv.New64a()
	h.Write([]byte(source))
	return "md:" + strconv.Itoa(len(source)) + ":" + strconv.FormatUint(h.Sum64(), 16)
}
