package triangulate

import "sync"

// Result is a cached triangulation: the triangle list plus the convex
// partition Check validates against future vertex positions.
type Result struct {
	Triangles []Triangle
	partition *Partition
}

type cacheEntry struct {
	result   Result
	atime    int64
	keyframe bool
}

// Cache is a bounded triangulation cache keyed by subpath identity. It
// follows the same access-tick eviction style as the module's generic
// soft-limit cache, extended with keyframe pinning: an entry marked as
// a keyframe (the shape at a named animation waypoint, say) is never
// evicted by soft-limit pressure, only by an explicit Forget or
// Clear. Every Get first calls the cached Partition's Check against
// the caller-supplied current vertex positions, so a shape whose
// topology hasn't changed since it was cached reuses its triangulation
// even though its vertex coordinates have moved (an in-place edit or
// an animation tween).
type Cache[K comparable] struct {
	mu        sync.Mutex
	entries   map[K]*cacheEntry
	softLimit int
	tick      int64
}

// NewCache creates a triangulation cache with the given soft limit (0
// means unlimited).
func NewCache[K comparable](softLimit int) *Cache[K] {
	return &Cache[K]{entries: make(map[K]*cacheEntry), softLimit: softLimit}
}

// Get returns the cached triangulation for key if present and still
// valid for the given vertex positions (the partition check passes).
// An invalid cached entry is treated as a miss and removed.
func (c *Cache[K]) Get(key K, vertices []Point) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return Result{}, false
	}
	if e.result.partition != nil && !e.result.partition.Check(vertices) {
		delete(c.entries, key)
		return Result{}, false
	}
	c.tick++
	e.atime = c.tick
	return e.result, true
}

// Put stores a triangulation for key, built from vertices and its
// convex partition for future validation. keyframe pins the entry
// against soft-limit eviction.
func (c *Cache[K]) Put(key K, triangles []Triangle, parts [][]int, keyframe bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tick++
	c.entries[key] = &cacheEntry{
		result:   Result{Triangles: triangles, partition: NewPartition(parts)},
		atime:    c.tick,
		keyframe: keyframe,
	}

	if c.softLimit > 0 && len(c.entries) > c.softLimit {
		c.evictOldest()
	}
}

// SetKeyframe changes the keyframe pin on an existing entry; it is a
// no-op if key isn't cached.
func (c *Cache[K]) SetKeyframe(key K, keyframe bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		e.keyframe = keyframe
	}
}

// Forget removes key regardless of its keyframe pin.
func (c *Cache[K]) Forget(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len returns the number of cached entries.
func (c *Cache[K]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictOldest drops the least-recently-used 25% of non-keyframe
// entries, or as many as exist if fewer. Caller must hold c.mu.
func (c *Cache[K]) evictOldest() {
	targetSize := c.softLimit * 3 / 4
	if targetSize < 1 {
		targetSize = 1
	}
	toEvict := len(c.entries) - targetSize
	if toEvict <= 0 {
		return
	}

	type candidate struct {
		key   K
		atime int64
	}
	candidates := make([]candidate, 0, len(c.entries))
	for k, e := range c.entries {
		if e.keyframe {
			continue
		}
		candidates = append(candidates, candidate{key: k, atime: e.atime})
	}

	for i := 0; i < toEvict && i < len(candidates); i++ {
		minIdx := i
		for j := i + 1; j < len(candidates); j++ {
			if candidates[j].atime < candidates[minIdx].atime {
				minIdx = j
			}
		}
		if minIdx != i {
			candidates[i], candidates[minIdx] = candidates[minIdx], candidates[i]
		}
		delete(c.entries, candidates[i].key)
	}
}
