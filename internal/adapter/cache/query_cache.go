package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"docqa/internal/domain"
	"docqa/internal/port"
)

// QueryCache memoizes retrieval results per (question, k). Entries expire
// by TTL and by generation: every document ingest bumps the generation so
// stale rankings never survive a corpus change. Eviction is LRU.
type QueryCache struct {
	mu        sync.RWMutex
	entries   map[string]*cacheEntry
	order     []string
	maxSize   int
	ttl       time.Duration
	corpusGen uint64
}

type cacheEntry struct {
	results   []domain.ScoredPassage
	timestamp time.Time
	corpusGen uint64
}

func NewQueryCache(maxSize int, ttl time.Duration) *QueryCache {
	if maxSize <= 0 {
		maxSize = 128
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &QueryCache{
		entries: make(map[string]*cacheEntry),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

func cacheKey(question string, k int) string {
	data := []byte(question)
	data = append(data, byte(k>>8), byte(k))
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:16])
}

func (c *QueryCache) Get(question string, k int) ([]domain.ScoredPassage, bool) {
	c.mu.RLock()
	key := cacheKey(question, k)
	entry, exists := c.entries[key]
	currentGen := c.corpusGen
	c.mu.RUnlock()

	if !exists {
		return nil, false
	}

	if time.Since(entry.timestamp) > c.ttl || entry.corpusGen != currentGen {
		c.mu.Lock()
		delete(c.entries, key)
		c.removeFromOrder(key)
		c.mu.Unlock()
		return nil, false
	}

	c.mu.Lock()
	c.moveToEnd(key)
	c.mu.Unlock()

	return clonePassages(entry.results), true
}

func (c *QueryCache) Put(question string, k int, results []domain.ScoredPassage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(question, k)

	if _, exists := c.entries[key]; !exists {
		if len(c.entries) >= c.maxSize {
			c.evictOldest()
		}
		c.order = append(c.order, key)
	} else {
		c.moveToEnd(key)
	}

	c.entries[key] = &cacheEntry{
		results:   clonePassages(results),
		timestamp: time.Now(),
		corpusGen: c.corpusGen,
	}
}

// clonePassages keeps cached entries isolated from caller mutation; copies
// are made both on store and on read.
func clonePassages(results []domain.ScoredPassage) []domain.ScoredPassage {
	if results == nil {
		return nil
	}
	out := make([]domain.ScoredPassage, len(results))
	copy(out, results)
	return out
}

// Invalidate marks everything stale. Called whenever a document is added.
func (c *QueryCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*cacheEntry)
	c.order = c.order[:0]
	c.corpusGen++
}

func (c *QueryCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *QueryCache) evictOldest() {
	if len(c.order) == 0 {
		return
	}
	oldest := c.order[0]
	c.order = c.order[1:]
	delete(c.entries, oldest)
}

func (c *QueryCache) moveToEnd(key string) {
	c.removeFromOrder(key)
	c.order = append(c.order, key)
}

func (c *QueryCache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

// CachedRetriever decorates a retriever with the query cache.
type CachedRetriever struct {
	retriever port.Retriever
	cache     *QueryCache
}

func NewCachedRetriever(retriever port.Retriever, cache *QueryCache) *CachedRetriever {
	return &CachedRetriever{
		retriever: retriever,
		cache:     cache,
	}
}

func (r *CachedRetriever) Retrieve(ctx context.Context, question string, k int) ([]domain.ScoredPassage, error) {
	if results, hit := r.cache.Get(question, k); hit {
		return results, nil
	}

	results, err := r.retriever.Retrieve(ctx, question, k)
	if err != nil {
		return nil, err
	}

	r.cache.Put(question, k, results)
	return results, nil
}
