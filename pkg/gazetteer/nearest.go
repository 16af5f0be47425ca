package gazetteer

import (
	"sort"

	"github.com/uber/h3-go/v4"

	"geotagger/pkg/geo"
)

// maxRingSteps bounds how far NearestLocalities will ring-expand
// before giving up, regardless of how few results it has found.
const maxRingSteps = 12

// NearestLocalities returns up to maxResults localities near c, sorted
// by great-circle distance, none farther than maxRadiusMiles. It
// ring-expands outward from c's H3 cell (github.com/uber/h3-go/v4,
// generalizing the single-ring neighbor lookup used elsewhere in this
// codebase to a growing k) over a cell-bucketed locality index built
// at load time. This is a debug/export convenience, not part of the
// locality-to-article match algorithm.
func (g *Gazetteer) NearestLocalities(c geo.Coord, maxResults int, maxRadiusMiles float64) []*Locality {
	if maxResults <= 0 {
		return nil
	}
	ll := h3.NewLatLng(c.Lat, c.Long)
	origin, err := h3.LatLngToCell(ll, h3Resolution)
	if err != nil {
		return nil
	}

	seen := make(map[*Locality]bool)
	var candidates []*Locality
	for k := 0; k <= maxRingSteps; k++ {
		disk, err := h3.GridDisk(origin, k)
		if err != nil {
			break
		}
		for _, cell := range disk {
			for _, loc := range g.cellIndex[cell] {
				if seen[loc] {
					continue
				}
				seen[loc] = true
				candidates = append(candidates, loc)
			}
		}
		if len(candidates) >= maxResults*3 {
			break
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		return geo.SphereDist(c, candidates[i].Coord) < geo.SphereDist(c, candidates[j].Coord)
	})

	out := make([]*Locality, 0, maxResults)
	for _, loc := range candidates {
		if geo.SphereDist(c, loc.Coord) > maxRadiusMiles {
			continue
		}
		out = append(out, loc)
		if len(out) == maxResults {
			break
		}
	}
	return out
}
