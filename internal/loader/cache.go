package loader

import (
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/standardbeagle/idlunify/internal/debug"
	"github.com/standardbeagle/idlunify/internal/parser"
)

// DefaultCacheSize is the number of parsed documents kept by a default cache
const DefaultCacheSize = 512

// DocumentCache keeps parsed documents by logical path across parse calls.
//
// A hit returns the stored document even when the content supplied for the
// lookup differs from the content it was parsed from; such hits are counted
// as stale. Safe for concurrent use.
type DocumentCache struct {
	entries *lru.Cache[string, cacheEntry]

	hits      atomic.Int64
	misses    atomic.Int64
	staleHits atomic.Int64
}

type cacheEntry struct {
	doc  parser.Document
	hash uint64
}

// CacheStats is a snapshot of cache counters
type CacheStats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	StaleHits int64 `json:"staleHits"`
}

// NewDocumentCache creates a cache holding at most size documents
func NewDocumentCache(size int) (*DocumentCache, error) {
	entries, err := lru.New[string, cacheEntry](size)
	if err != nil {
		return nil, err
	}
	return &DocumentCache{entries: entries}, nil
}

// ContentHash hashes source text for stale-hit detection
func ContentHash(content string) uint64 {
	return xxhash.Sum64String(content)
}

// Get returns the document stored under key. hash is the hash of the
// content the caller is about to parse.
func (c *DocumentCache) Get(key string, hash uint64) (parser.Document, bool) {
	entry, ok := c.entries.Get(key)
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	if entry.hash != hash {
		c.staleHits.Add(1)
		debug.LogLoader("stale cache hit for %s", key)
	}
	return entry.doc, true
}

// Put stores doc under key
func (c *DocumentCache) Put(key string, hash uint64, doc parser.Document) {
	c.entries.Add(key, cacheEntry{doc: doc, hash: hash})
}

// Len returns the number of cached documents
func (c *DocumentCache) Len() int {
	return c.entries.Len()
}

// Purge drops every document and resets the counters
func (c *DocumentCache) Purge() {
	c.entries.Purge()
	c.hits.Store(0)
	c.misses.Store(0)
	c.staleHits.Store(0)
}

// Stats returns the current counters
func (c *DocumentCache) Stats() CacheStats {
	return CacheStats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		StaleHits: c.staleHits.Load(),
	}
}
