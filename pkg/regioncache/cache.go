package regioncache

import (
	"container/list"
	"sync"
	"sync/atomic"

	"geotagger/pkg/grid"
	"geotagger/pkg/worddist"
)

// DefaultCapacity is the cache size used when configuration does not
// override it.
const DefaultCapacity = 10000

// Stats holds hit/miss counters for a Cache, accessed atomically.
type Stats struct {
	Hits   int64
	Misses int64
}

// entry is the value stored at each LRU list element.
type entry struct {
	word string
	dist *RegionDist
}

// Cache is a single-producer-single-consumer LRU cache of per-word
// RegionDists over a fixed, immutable list of nonempty regions.
// Eviction is least-recently inserted-or-touched: Get promotes its
// word to the front.
type Cache struct {
	mu       sync.Mutex
	capacity int
	idx      *regionIndex
	items    map[string]*list.Element
	order    *list.List

	hits, misses int64
}

// New creates a Cache of the given capacity over regions. regions is
// treated as a fixed snapshot: callers should build the cache only
// after the grid's region set has stabilized (typically after
// Grid.GenerateAll).
func New(capacity int, regions []*grid.StatRegion) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		capacity: capacity,
		idx:      newRegionIndex(regions),
		items:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Get returns the RegionDist for a single word, building and caching
// it on a miss.
func (c *Cache) Get(word string) *RegionDist {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[word]; ok {
		c.order.MoveToFront(el)
		atomic.AddInt64(&c.hits, 1)
		return el.Value.(*entry).dist
	}

	atomic.AddInt64(&c.misses, 1)
	dist := c.build(word)
	el := c.order.PushFront(&entry{word: word, dist: dist})
	c.items[word] = el

	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*entry).word)
		}
	}
	return dist
}

// build computes the region distribution for word: probability in
// each region is proportional to that region's smoothed word
// probability, renormalised to sum 1.
func (c *Cache) build(word string) *RegionDist {
	rd := newRegionDist(c.idx)
	for i, r := range c.idx.regions {
		p := r.WordDist.LookupWord(word)
		if p > 0 {
			rd.set(i, p)
		}
	}
	rd.normalize()
	return rd
}

// GetForDist produces a RegionDist for an entire query word
// distribution: per-word RegionDists (each served from, and
// contributing to, the same cache) are summed weighted by the query's
// word counts, then renormalised.
func (c *Cache) GetForDist(d *worddist.WordDist) *RegionDist {
	combined := newRegionDist(c.idx)
	for _, w := range d.Words() {
		count := d.Count(w)
		if count <= 0 {
			continue
		}
		weight := float64(count)
		c.Get(w).Each(func(r *grid.StatRegion, p float64) {
			combined.add(c.idx.pos[r], p*weight)
		})
	}
	combined.normalize()
	return combined
}

// Stats returns a snapshot of hit/miss counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:   atomic.LoadInt64(&c.hits),
		Misses: atomic.LoadInt64(&c.misses),
	}
}

// Len returns the number of words currently cached.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
