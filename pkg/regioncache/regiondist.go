// Package regioncache builds, on demand, the probability distribution
// over statistical regions induced by a single word (or a whole word
// distribution), and caches the per-word result with an LRU policy.
package regioncache

import (
	"github.com/james-bowman/sparse"

	"geotagger/pkg/grid"
)

// regionIndex fixes the column ordering shared by every RegionDist a
// Cache produces, and gives O(1) region-to-column lookup.
type regionIndex struct {
	regions []*grid.StatRegion
	pos     map[*grid.StatRegion]int
}

func newRegionIndex(regions []*grid.StatRegion) *regionIndex {
	pos := make(map[*grid.StatRegion]int, len(regions))
	for i, r := range regions {
		pos[r] = i
	}
	return &regionIndex{regions: regions, pos: pos}
}

// RegionDist is a sparse map from region to probability, normalised to
// sum to 1, stored as a 1xN sparse row vector over a shared region
// ordering.
type RegionDist struct {
	idx *regionIndex
	vec *sparse.CSR
}

func newRegionDist(idx *regionIndex) *RegionDist {
	return &RegionDist{
		idx: idx,
		vec: sparse.NewCSR(1, len(idx.regions), []int{}, []int{}, []float64{}),
	}
}

func (rd *RegionDist) set(idx int, p float64) {
	rd.vec.Set(0, idx, p)
}

func (rd *RegionDist) add(idx int, delta float64) {
	rd.vec.Set(0, idx, rd.vec.At(0, idx)+delta)
}

// normalize rescales every nonzero entry so the total sums to 1. A
// dist with no nonzero mass (no region ever saw the word) is left as
// all zeroes.
func (rd *RegionDist) normalize() {
	var sum float64
	type cell struct {
		idx int
		v   float64
	}
	var cells []cell
	rd.vec.DoNonZero(func(_, j int, v float64) {
		sum += v
		cells = append(cells, cell{j, v})
	})
	if sum <= 0 {
		return
	}
	for _, c := range cells {
		rd.vec.Set(0, c.idx, c.v/sum)
	}
}

// Prob returns the probability mass assigned to region r, 0 if r is
// not part of this RegionDist's region list or carries no mass.
func (rd *RegionDist) Prob(r *grid.StatRegion) float64 {
	idx, ok := rd.idx.pos[r]
	if !ok {
		return 0
	}
	return rd.vec.At(0, idx)
}

// Each calls f once per region carrying nonzero probability mass.
func (rd *RegionDist) Each(f func(r *grid.StatRegion, p float64)) {
	rd.vec.DoNonZero(func(_, j int, v float64) {
		f(rd.idx.regions[j], v)
	})
}
