package regioncache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geotagger/pkg/grid"
	"geotagger/pkg/worddist"
)

func finishedDist(t *testing.T, counts map[string]int) *worddist.WordDist {
	t.Helper()
	d := worddist.New()
	for w, c := range counts {
		require.NoError(t, d.AddWord(w, c))
	}
	require.NoError(t, d.Finish(nil))
	return d
}

func testRegions(t *testing.T) []*grid.StatRegion {
	t.Helper()
	return []*grid.StatRegion{
		{WordDist: finishedDist(t, map[string]int{"paris": 10}), NumArts: 2},
		{WordDist: finishedDist(t, map[string]int{"tokyo": 10}), NumArts: 2},
	}
}

func TestGetBuildsNormalizedDist(t *testing.T) {
	regions := testRegions(t)
	c := New(10, regions)

	rd := c.Get("paris")
	var total float64
	rd.Each(func(r *grid.StatRegion, p float64) {
		total += p
	})
	assert.InDelta(t, 1.0, total, 1e-9)
	assert.Greater(t, rd.Prob(regions[0]), rd.Prob(regions[1]))
}

func TestGetPromotesAndTracksHitsMisses(t *testing.T) {
	regions := testRegions(t)
	c := New(10, regions)

	c.Get("paris")
	stats := c.Stats()
	assert.Equal(t, int64(0), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)

	c.Get("paris")
	stats = c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestEvictsLeastRecentlyTouched(t *testing.T) {
	regions := testRegions(t)
	c := New(2, regions)

	c.Get("paris")
	c.Get("tokyo")
	c.Get("paris") // touch paris again, making tokyo the oldest
	c.Get("london") // evicts tokyo, not paris

	assert.Equal(t, 2, c.Len())
	stats := c.Stats()
	assert.Equal(t, int64(3), stats.Misses)

	// Re-requesting tokyo is a miss (it was evicted); paris is still cached.
	before := c.Stats().Misses
	c.Get("paris")
	assert.Equal(t, before, c.Stats().Misses, "paris should still be a hit")
	c.Get("tokyo")
	assert.Equal(t, before+1, c.Stats().Misses, "tokyo was evicted")
}

func TestGetForDistWeightsByCount(t *testing.T) {
	regions := testRegions(t)
	c := New(10, regions)

	query := finishedDist(t, map[string]int{"paris": 9, "tokyo": 1})
	combined := c.GetForDist(query)

	assert.Greater(t, combined.Prob(regions[0]), combined.Prob(regions[1]))

	var total float64
	combined.Each(func(r *grid.StatRegion, p float64) {
		total += p
	})
	assert.InDelta(t, 1.0, total, 1e-9)
}
