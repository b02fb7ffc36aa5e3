// Manages the persistent product summary cache stored in summary_cache.json.

package storage

import (
	"bytes"
	"crypto/md5" //nolint:gosec // G501: cache key format, not a security boundary
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sync"
)

// SummaryCacheFile is the cache file name in the data directory.
const SummaryCacheFile = "summary_cache.json"

// CachedSummary is one cache entry.
type CachedSummary struct {
	Blocks []string `json:"blocks"`
}

// CacheKey returns the cache key of a product: the hex MD5 of its name.
func CacheKey(product string) string {
	sum := md5.Sum([]byte(product)) //nolint:gosec // G401: see import
	return hex.EncodeToString(sum[:])
}

// SummaryCache maps cache keys to rendered summaries. It is safe for
// concurrent use.
type SummaryCache struct {
	path string

	mu      sync.RWMutex
	entries map[string]CachedSummary
}

// LoadSummaryCache reads the cache at path. A missing or unreadable file
// yields an empty cache; it is only created on the first Put.
func LoadSummaryCache(path string) *SummaryCache {
	c := &SummaryCache{path: path, entries: map[string]CachedSummary{}}
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is under the data directory
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Failed to read summary cache, starting empty", "path", path, "err", err)
		}
		return c
	}
	var entries map[string]CachedSummary
	if err := json.Unmarshal(data, &entries); err != nil {
		slog.Warn("Corrupt summary cache, starting empty", "path", path, "err", err)
		return c
	}
	if entries != nil {
		c.entries = entries
	}
	return c
}

// Len returns the number of cached summaries.
func (c *SummaryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Get returns the cached blocks of a product.
func (c *SummaryCache) Get(product string) ([]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[CacheKey(product)]
	if !ok {
		return nil, false
	}
	return slices.Clone(e.Blocks), true
}

// Put stores the blocks of a product and saves the cache.
func (c *SummaryCache) Put(product string, blocks []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[CacheKey(product)] = CachedSummary{Blocks: slices.Clone(blocks)}
	return c.saveLocked()
}

func (c *SummaryCache) saveLocked() error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c.entries); err != nil {
		return fmt.Errorf("failed to marshal summary cache: %w", err)
	}
	if err := writeFileAtomic(c.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to save summary cache: %w", err)
	}
	return nil
}
