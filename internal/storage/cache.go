// cache.go - In-memory result cache keyed by upload content hash

package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"sync"
	"time"

	"github.com/bosocmputer/credit_analyzer_gemini/internal/analysis"
)

const cacheTTL = 15 * time.Minute

type cacheEntry struct {
	result    analysis.AnalysisResult
	expiresAt time.Time
}

// ResultCache holds recent analysis results so an identical re-upload skips
// the model calls entirely.
type ResultCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewResultCache creates an empty result cache
func NewResultCache() *ResultCache {
	return &ResultCache{entries: make(map[string]cacheEntry)}
}

// Global cache instance shared by all requests
var Cache = NewResultCache()

// CacheKey derives a stable key from the uploaded file contents. Order of
// upload does not matter: per-file hashes are sorted before combining.
func CacheKey(files [][]byte) string {
	hashes := make([]string, len(files))
	for i, data := range files {
		sum := sha256.Sum256(data)
		hashes[i] = hex.EncodeToString(sum[:])
	}
	sort.Strings(hashes)

	combined := sha256.New()
	for _, h := range hashes {
		combined.Write([]byte(h))
	}
	return hex.EncodeToString(combined.Sum(nil))
}

// Get returns a cached result when present and not expired
func (c *ResultCache) Get(key string) (analysis.AnalysisResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return analysis.AnalysisResult{}, false
	}
	if time.Now().After(entry.expiresAt) {
		delete(c.entries, key)
		return analysis.AnalysisResult{}, false
	}
	return entry.result, true
}

// Put stores a result, evicting expired entries opportunistically
func (c *ResultCache) Put(key string, result analysis.AnalysisResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for k, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, k)
		}
	}

	c.entries[key] = cacheEntry{result: result, expiresAt: now.Add(cacheTTL)}
}
