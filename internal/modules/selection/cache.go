package selection

import (
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/pumplab/pumpselect/internal/modules/selection/domain"
)

// defaultCacheCapacity bounds the memo cache; past it the cache is dropped
// wholesale, which is cheaper than tracking recency for entries this small.
const defaultCacheCapacity = 16384

// SolveCache memoizes per-curve solver outcomes as a read-through layer.
// Entries are keyed by catalog generation, pump, curve, the rounded duty
// point, and a fingerprint of the evaluation config, so a catalog refresh or
// a config change can never serve a stale solution. The cache is optional:
// disabling it changes nothing but latency.
type SolveCache struct {
	mu       sync.RWMutex
	gen      uint64
	entries  map[string]cacheEntry
	capacity int
}

type cacheEntry struct {
	solution domain.Solution
	solved   bool
}

// NewSolveCache creates a cache with the default capacity.
func NewSolveCache() *SolveCache {
	return &SolveCache{
		entries:  make(map[string]cacheEntry),
		capacity: defaultCacheCapacity,
	}
}

// SolveKey builds the cache key for one curve solve. Flow and head are
// rounded to 3 decimals so nearby duty points share entries.
func SolveKey(pumpID, curveID string, duty *domain.DutyRequirement, cfgHash uint64) string {
	return fmt.Sprintf("%s|%s|%.3f|%.3f|%x", pumpID, curveID, duty.FlowM3H, duty.HeadM, cfgHash)
}

// ConfigHash fingerprints an evaluation config for cache keying.
func ConfigHash(cfg *domain.EvaluationConfig) (uint64, error) {
	raw, err := msgpack.Marshal(cfg)
	if err != nil {
		return 0, fmt.Errorf("failed to encode config for hashing: %w", err)
	}
	h := fnv.New64a()
	h.Write(raw)
	return h.Sum64(), nil
}

// Get returns the cached outcome for the key at the given catalog
// generation. The second return reports whether the solve succeeded, the
// third whether the entry was present at all.
func (c *SolveCache) Get(gen uint64, key string) (domain.Solution, bool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if gen != c.gen {
		return domain.Solution{}, false, false
	}
	entry, found := c.entries[key]
	if !found {
		return domain.Solution{}, false, false
	}
	return entry.solution, entry.solved, true
}

// Put stores an outcome. A newer generation invalidates everything held; a
// write from an older generation is dropped so an in-flight stale request
// cannot churn entries a fresher one just stored.
func (c *SolveCache) Put(gen uint64, key string, sol domain.Solution, solved bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen < c.gen {
		return
	}
	if gen > c.gen {
		c.entries = make(map[string]cacheEntry)
		c.gen = gen
	}
	if len(c.entries) >= c.capacity {
		c.entries = make(map[string]cacheEntry)
	}
	c.entries[key] = cacheEntry{solution: sol, solved: solved}
}

// Len returns the number of live entries.
func (c *SolveCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
