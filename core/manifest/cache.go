package manifest

import (
	"context"
	"sync"
	"time"

	"site-cleaner/core/cleaner"

	"golang.org/x/sync/singleflight"
)

// cacheEntry holds a loaded file list.
type cacheEntry struct {
	files []cleaner.SiteFile
	built time.Time
}

// Cache keeps loaded file lists per source name.
type Cache struct {
	ttl     time.Duration
	now     func() time.Time
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	sf      singleflight.Group
}

// NewCache creates a cache. If ttl is zero, lists are never retained, but concurrent
// loads of one source are still shared.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]*cacheEntry),
	}
}

// Load returns the cached list of src, loading it if missing or expired.
func (c *Cache) Load(ctx context.Context, src Source) ([]cleaner.SiteFile, error) {
	key := src.Name()

	// Fast path: check if entry exists and is fresh
	if files, ok := c.fresh(key); ok {
		return files, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Double-check after acquiring singleflight lock
		if files, ok := c.fresh(key); ok {
			return files, nil
		}

		files, err := src.Load(ctx)
		if err != nil {
			return nil, err
		}

		if c.ttl > 0 {
			c.mu.Lock()
			c.entries[key] = &cacheEntry{files: files, built: c.now()}
			c.mu.Unlock()
		}
		return files, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]cleaner.SiteFile), nil
}

// Invalidate drops the cached list of the named source.
func (c *Cache) Invalidate(name string) {
	c.mu.Lock()
	delete(c.entries, name)
	c.mu.Unlock()
}

func (c *Cache) fresh(key string) ([]cleaner.SiteFile, bool) {
	if c.ttl == 0 {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.now().Sub(entry.built) > c.ttl {
		return nil, false
	}
	return entry.files, true
}
