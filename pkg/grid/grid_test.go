package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geotagger/pkg/article"
	"geotagger/pkg/geo"
	"geotagger/pkg/worddist"
)

func newTrainingArticle(lat, long float64, words map[string]int) *article.Article {
	d := worddist.New()
	for w, c := range words {
		_ = d.AddWord(w, c)
	}
	return &article.Article{
		Coord: &geo.Coord{Lat: lat, Long: long},
		Split: article.SplitTraining,
		Dist:  d,
	}
}

func testGlobal(t *testing.T) *worddist.WordDist {
	t.Helper()
	g := worddist.New()
	require.NoError(t, g.AddWord("paris", 10))
	require.NoError(t, g.AddWord("tokyo", 5))
	require.NoError(t, g.Finish(nil))
	return g
}

func TestStatRegionForMatchesCoordToStatRegion(t *testing.T) {
	params := geo.Params{DegreesPerRegion: 1, WidthOfStatRegion: 1}
	g := New(params, testGlobal(t))
	c := geo.Coord{Lat: 12.7, Long: -45.2}

	r := g.StatRegionFor(c)
	assert.Equal(t, params.CoordToStatRegion(c), r.SWTile)
}

func TestAddTrainingArticleAccumulatesIntoRegion(t *testing.T) {
	params := geo.Params{DegreesPerRegion: 1, WidthOfStatRegion: 1}
	g := New(params, testGlobal(t))

	a := newTrainingArticle(12.5, -45.5, map[string]int{"paris": 3})
	g.AddTrainingArticle(a)

	r := g.StatRegionFor(geo.Coord{Lat: 12.5, Long: -45.5})
	assert.Equal(t, 1, r.NumArts)
	assert.True(t, r.WordDist.Finished())
	assert.Equal(t, 3, r.WordDist.Count("paris"))
}

func TestNonTrainingArticlesAreSkipped(t *testing.T) {
	params := geo.Params{DegreesPerRegion: 1, WidthOfStatRegion: 1}
	g := New(params, testGlobal(t))

	a := newTrainingArticle(12.5, -45.5, map[string]int{"paris": 3})
	a.Split = article.SplitTest
	g.AddTrainingArticle(a)

	r := g.StatRegionFor(geo.Coord{Lat: 12.5, Long: -45.5})
	assert.Equal(t, 0, r.NumArts)
}

func TestEmptyRegionIncrementsCounter(t *testing.T) {
	params := geo.Params{DegreesPerRegion: 1, WidthOfStatRegion: 1}
	g := New(params, testGlobal(t))

	_ = g.StatRegionFor(geo.Coord{Lat: 1, Long: 1})
	assert.Equal(t, 1, g.EmptyRegionCount())
}

func TestGenerateAllThenSentinelForMiss(t *testing.T) {
	params := geo.Params{DegreesPerRegion: 30, WidthOfStatRegion: 1}
	g := New(params, testGlobal(t))
	g.AddTrainingArticle(newTrainingArticle(10, 10, map[string]int{"paris": 1}))

	g.GenerateAll()
	assert.True(t, g.AllComputed())

	nonempty := g.NonemptyRegions()
	require.Len(t, nonempty, 1)

	// A coordinate far from any training article: after generate_all,
	// stat_region_for must not construct a new region.
	before := g.EmptyRegionCount()
	sentinel := g.StatRegionFor(geo.Coord{Lat: -80, Long: -170})
	assert.Equal(t, 0, sentinel.NumArts)
	assert.Equal(t, before, g.EmptyRegionCount(), "sentinel lookups must not recompute or recount")
}

func TestNonemptyRegionsStableAcrossCalls(t *testing.T) {
	params := geo.Params{DegreesPerRegion: 10, WidthOfStatRegion: 1}
	g := New(params, testGlobal(t))
	g.AddTrainingArticle(newTrainingArticle(5, 5, map[string]int{"paris": 1}))
	g.AddTrainingArticle(newTrainingArticle(25, 25, map[string]int{"tokyo": 1}))
	g.GenerateAll()

	first := g.NonemptyRegions()
	second := g.NonemptyRegions()
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].SWTile, second[i].SWTile)
	}
}

func TestWidthGreaterThanOneAccumulatesNeighboringTiles(t *testing.T) {
	params := geo.Params{DegreesPerRegion: 10, WidthOfStatRegion: 2}
	g := New(params, testGlobal(t))

	// Two articles one tile apart (10 degrees), both inside a 2x2 block.
	g.AddTrainingArticle(newTrainingArticle(1, 1, map[string]int{"paris": 1}))
	g.AddTrainingArticle(newTrainingArticle(11, 11, map[string]int{"tokyo": 1}))

	r := g.StatRegionForIndices(0, 0)
	assert.Equal(t, 2, r.NumArts)
}
