package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/bryanwahyu/truesight/internal/domain/ai"
)

const defaultTTL = 15 * time.Minute

// ResponseCache keeps raw model outputs in memory, keyed by the content
// they were produced for.
type ResponseCache struct {
	cache *gocache.Cache
}

// NewResponseCache creates a cache whose entries expire after ttl. A zero
// ttl uses the default of 15 minutes.
func NewResponseCache(ttl time.Duration) *ResponseCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &ResponseCache{cache: gocache.New(ttl, 2*ttl)}
}

// Key hashes the request fields into a fixed-size cache key.
func Key(source, fileType, content string) string {
	h := sha256.New()
	h.Write([]byte(source))
	h.Write([]byte{0})
	h.Write([]byte(fileType))
	h.Write([]byte{0})
	h.Write([]byte(content))
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached model output for req.
func (c *ResponseCache) Get(req ai.Request) (string, bool) {
	if val, found := c.cache.Get(requestKey(req)); found {
		s, ok := val.(string)
		return s, ok
	}
	return "", false
}

func (c *ResponseCache) Set(req ai.Request, raw string) {
	c.cache.SetDefault(requestKey(req), raw)
}

func requestKey(req ai.Request) string {
	return Key(req.Source, req.FileType, req.Content)
}

// Len counts entries, expired ones included until the janitor runs.
func (c *ResponseCache) Len() int {
	return c.cache.ItemCount()
}

func (c *ResponseCache) Flush() {
	c.cache.Flush()
}
