// Package grid implements the regional grid: training articles are
// bucketed into coordinate tiles, and W×W blocks of tiles are lazily
// pooled into statistical regions, each carrying an aggregate word
// distribution used as the unit of comparison during scoring.
package grid

import (
	"math"
	"sync"

	"geotagger/pkg/article"
	"geotagger/pkg/geo"
	"geotagger/pkg/worddist"
)

// StatRegion is a W×W block of tiles identified by its southwest
// corner, carrying the combined word distribution of every training
// article whose tile falls inside the block.
type StatRegion struct {
	SWTile   geo.TileIndex
	WordDist *worddist.WordDist
	NumArts  int
}

// Grid buckets training articles by tile and lazily builds
// StatRegions on demand.
type Grid struct {
	mu sync.RWMutex

	params geo.Params
	global *worddist.WordDist

	tileArticles map[geo.TileIndex][]*article.Article
	regions      map[geo.TileIndex]*StatRegion
	order        []geo.TileIndex // insertion order of nonempty regions

	emptyRegionCount int
	allComputed      bool
	sentinelEmpty    *StatRegion

	iMin, iMax, jMin, jMax int
}

// New creates a Grid over the given tiling parameters. global is the
// corpus-wide word distribution (already finished) that every region's
// WordDist is finished against.
func New(params geo.Params, global *worddist.WordDist) *Grid {
	delta := params.DegreesPerRegion
	iMin := int(math.Floor(-90 / delta))
	iMax := int(math.Floor(90 / delta))
	jMin := int(math.Floor(-180 / delta))
	jMax := int(math.Floor((180 - 1e-9) / delta))

	return &Grid{
		params:       params,
		global:       global,
		tileArticles: make(map[geo.TileIndex][]*article.Article),
		regions:      make(map[geo.TileIndex]*StatRegion),
		sentinelEmpty: &StatRegion{
			WordDist: emptyFinishedDist(global),
		},
		iMin: iMin, iMax: iMax, jMin: jMin, jMax: jMax,
	}
}

func emptyFinishedDist(global *worddist.WordDist) *worddist.WordDist {
	d := worddist.New()
	_ = d.Finish(global)
	return d
}

// AddTrainingArticle buckets a into the tile list at
// coord_to_tile(a.Coord). Callers are expected to only add articles
// with a non-nil Coord and Dist.
func (g *Grid) AddTrainingArticle(a *article.Article) {
	g.mu.Lock()
	defer g.mu.Unlock()
	tile := g.params.CoordToTile(*a.Coord)
	g.tileArticles[tile] = append(g.tileArticles[tile], a)
}

// StatRegionFor returns (constructing if necessary) the region
// covering coord.
func (g *Grid) StatRegionFor(coord geo.Coord) *StatRegion {
	sw := g.params.CoordToStatRegion(coord)
	return g.StatRegionForIndices(sw.I, sw.J)
}

// StatRegionForIndices returns (constructing if necessary) the region
// whose southwest tile is (i, j).
func (g *Grid) StatRegionForIndices(i, j int) *StatRegion {
	sw := geo.TileIndex{I: i, J: j}

	g.mu.Lock()
	defer g.mu.Unlock()

	if r, ok := g.regions[sw]; ok {
		return r
	}
	if g.allComputed {
		return g.sentinelEmpty
	}

	r := g.computeRegion(sw)
	if r.NumArts == 0 {
		g.emptyRegionCount++
	} else {
		g.order = append(g.order, sw)
	}
	g.regions[sw] = r
	return r
}

// computeRegion scans the W×W tile block starting at sw (wrapping
// longitude at the antimeridian, clamping latitude at the grid's
// bounds) and accumulates every training article with a non-nil dist
// into the region's word distribution. Must be called with g.mu held.
func (g *Grid) computeRegion(sw geo.TileIndex) *StatRegion {
	w := g.params.WidthOfStatRegion
	d := worddist.New()
	numArts := 0

	jRange := g.jMax - g.jMin + 1

	for di := 0; di < w; di++ {
		i := sw.I + di
		if i > g.iMax {
			i = g.iMax
		}
		if i < g.iMin {
			i = g.iMin
		}
		for dj := 0; dj < w; dj++ {
			j := wrapIndex(sw.J+dj, g.jMin, jRange)
			for _, a := range g.tileArticles[geo.TileIndex{I: i, J: j}] {
				if a.Dist == nil || a.Split != article.SplitTraining {
					continue
				}
				_ = d.AddWordDistribution(a.Dist)
				numArts++
			}
		}
	}

	_ = d.Finish(g.global)
	return &StatRegion{SWTile: sw, WordDist: d, NumArts: numArts}
}

func wrapIndex(v, min, rangeLen int) int {
	if rangeLen <= 0 {
		return min
	}
	offset := ((v-min)%rangeLen + rangeLen) % rangeLen
	return min + offset
}

// GenerateAll eagerly constructs every nonempty region by scanning the
// whole valid (i, j) range. After this call, StatRegionFor(Indices)
// only ever returns an already-cached region or the shared sentinel
// empty region -- it never constructs a new one.
func (g *Grid) GenerateAll() {
	g.mu.Lock()
	defer g.mu.Unlock()

	for i := g.iMin; i <= g.iMax; i++ {
		for j := g.jMin; j <= g.jMax; j++ {
			sw := geo.TileIndex{I: i, J: j}
			if _, ok := g.regions[sw]; ok {
				continue
			}
			r := g.computeRegion(sw)
			if r.NumArts == 0 {
				g.emptyRegionCount++
				continue
			}
			g.regions[sw] = r
			g.order = append(g.order, sw)
		}
	}
	g.allComputed = true
}

// NonemptyRegions enumerates every region with at least one article.
// Order is unspecified by the data model but is stable across calls
// within this Grid's lifetime (insertion order).
func (g *Grid) NonemptyRegions() []*StatRegion {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]*StatRegion, 0, len(g.order))
	for _, sw := range g.order {
		out = append(out, g.regions[sw])
	}
	return out
}

// EmptyRegionCount returns the number of empty-region constructions
// observed so far.
func (g *Grid) EmptyRegionCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.emptyRegionCount
}

// AllComputed reports whether GenerateAll has run.
func (g *Grid) AllComputed() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.allComputed
}
