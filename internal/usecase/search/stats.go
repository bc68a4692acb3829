package search

import (
	"sync"

	"github.com/kailas-cloud/lexdex/internal/metrics"
	"github.com/kailas-cloud/lexdex/internal/usecase/scoring"
)

// StatsCache holds one immutable corpus snapshot per collection.
// Snapshots are replaced whole, never mutated. Invalidate bumps a generation so a rebuild
// that started before the invalidation cannot publish stale numbers.
type StatsCache struct {
	mu      sync.RWMutex
	entries map[string]statsEntry
}

type statsEntry struct {
	gen   uint64
	stats *scoring.DocumentStats
}

// NewStatsCache creates an empty cache.
func NewStatsCache() *StatsCache {
	return &StatsCache{entries: make(map[string]statsEntry)}
}

// Get returns the cached snapshot (nil when absent) and the generation it was read at.
func (c *StatsCache) Get(collection string) (*scoring.DocumentStats, uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e := c.entries[collection]
	return e.stats, e.gen
}

// Put publishes stats if no invalidation happened since gen was read.
func (c *StatsCache) Put(collection string, gen uint64, stats *scoring.DocumentStats) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entries[collection]
	if e.gen != gen {
		return false
	}
	c.entries[collection] = statsEntry{gen: gen, stats: stats}
	metrics.StatsRebuildsTotal.Inc()
	return true
}

// Invalidate drops the snapshot of collection.
func (c *StatsCache) Invalidate(collection string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entries[collection]
	c.entries[collection] = statsEntry{gen: e.gen + 1}
}
