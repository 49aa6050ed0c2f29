package source

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/justin4957/seclab-dashboard/pkg/models"
)

// LoadFunc produces the table to cache for a path. It normally chains
// Loader.Load with enrichment.
type LoadFunc func(path string) (*models.EventTable, error)

type cacheKey struct {
	modTime time.Time
	size    int64
}

func (k cacheKey) equal(o cacheKey) bool {
	return k.size == o.size && k.modTime.Equal(o.modTime)
}

type cacheEntry struct {
	key   cacheKey
	table *models.EventTable
	stale bool

	// failedKey and failErr remember the last failed load so an unchanged
	// broken file is not parsed again
	failedKey *cacheKey
	failErr   error
}

// Cache keeps one loaded table per path, keyed by the file's modification
// time and size. A changed file, or an explicit Invalidate, triggers a
// reload on the next Get.
type Cache struct {
	load LoadFunc

	mu      sync.Mutex
	entries map[string]*cacheEntry
}

// NewCache creates a cache backed by load
func NewCache(load LoadFunc) *Cache {
	return &Cache{
		load:    load,
		entries: make(map[string]*cacheEntry),
	}
}

// Get returns the table for path, reloading it if the file changed. When a
// reload fails after an earlier success, the previous table is returned
// together with the error. A failed load is not retried until the file
// changes again or Invalidate is called.
func (c *Cache) Get(path string) (*models.EventTable, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := c.entries[path]

	info, err := os.Stat(path)
	if err != nil {
		return tableOf(entry), &DataLoadError{Path: path, Err: err}
	}
	key := cacheKey{modTime: info.ModTime(), size: info.Size()}

	if entry != nil {
		if entry.failedKey != nil && entry.failedKey.equal(key) {
			return entry.table, entry.failErr
		}
		if !entry.stale && entry.table != nil && entry.key.equal(key) {
			return entry.table, nil
		}
	}

	table, err := c.load(path)
	if err == nil && table == nil {
		err = &DataLoadError{Path: path, Err: fmt.Errorf("loader returned no table")}
	}
	if err != nil {
		if entry == nil {
			entry = &cacheEntry{}
			c.entries[path] = entry
		}
		entry.failedKey = &key
		entry.failErr = err
		return entry.table, err
	}

	c.entries[path] = &cacheEntry{key: key, table: table}
	return table, nil
}

// Peek returns the cached table without touching the file system
func (c *Cache) Peek(path string) (*models.EventTable, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[path]
	if !ok || entry.table == nil {
		return nil, false
	}
	return entry.table, true
}

// Invalidate forces the next Get to reload path. The current table stays
// available as a fallback.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[path]; ok {
		entry.stale = true
		entry.failedKey = nil
		entry.failErr = nil
	}
}

func tableOf(entry *cacheEntry) *models.EventTable {
	if entry == nil {
		return nil
	}
	return entry.table
}

// PathSource binds a cache to one path
type PathSource struct {
	cache *Cache
	path  string
}

// Bind returns a source that always reads path through the cache
func (c *Cache) Bind(path string) *PathSource {
	return &PathSource{cache: c, path: path}
}

// Table returns the current table for the bound path, with Get semantics
func (p *PathSource) Table() (*models.EventTable, error) {
	return p.cache.Get(p.path)
}

// Path returns the bound path
func (p *PathSource) Path() string {
	return p.path
}
