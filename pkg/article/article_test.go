package article

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geotagger/pkg/worddist"
)

func newTestArticle(title string, split Split) *Article {
	return &Article{Title: title, Split: split, Dist: worddist.New()}
}

func TestRecordAndLookupExact(t *testing.T) {
	tbl := New()
	paris := newTestArticle("Paris", SplitTraining)
	tbl.AddArticle(paris)

	got, ok := tbl.Lookup("Paris")
	require.True(t, ok)
	assert.Same(t, paris, got)
}

func TestLookupCaseInsensitiveFirstLetterOnly(t *testing.T) {
	tbl := New()
	paris := newTestArticle("Paris", SplitTraining)
	tbl.AddArticle(paris)

	got, ok := tbl.Lookup("paris")
	require.True(t, ok)
	assert.Same(t, paris, got)

	// Rest of the title is still case-sensitive.
	_, ok = tbl.Lookup("pARIS")
	assert.False(t, ok)
}

func TestShortFormAndDivIndexing(t *testing.T) {
	tbl := New()
	springfieldIL := newTestArticle("Springfield, Illinois", SplitTraining)
	tbl.AddArticle(springfieldIL)

	byShort := tbl.LookupByShortForm("springfield")
	require.Len(t, byShort, 1)
	assert.Same(t, springfieldIL, byShort[0])

	got, ok := tbl.LookupByShortDiv("Springfield", "Illinois")
	require.True(t, ok)
	assert.Same(t, springfieldIL, got)
}

func TestShortFormFromParentheticalQualifier(t *testing.T) {
	tbl := New()
	parisTX := newTestArticle("Paris (Texas)", SplitTraining)
	tbl.AddArticle(parisTX)

	byShort := tbl.LookupByShortForm("paris")
	require.Len(t, byShort, 1)
	assert.Same(t, parisTX, byShort[0])

	_, ok := tbl.LookupByShortDiv("paris", "texas")
	assert.False(t, ok, "parenthetical qualifiers do not populate the div key")
}

func TestRedirectFlatteningResolvesAndAbsorbsAlias(t *testing.T) {
	tbl := New()
	target := newTestArticle("New York City", SplitTraining)
	tbl.AddArticle(target)
	tbl.AddRedirect("NYC", "New York City")

	warnings := tbl.FinishLoad()
	assert.Empty(t, warnings)

	got, ok := tbl.Lookup("NYC")
	require.True(t, ok)
	assert.Same(t, target, got)
}

func TestRedirectFlatteningExcludesRedirectsFromSplits(t *testing.T) {
	tbl := New()
	target := newTestArticle("New York City", SplitTraining)
	tbl.AddArticle(target)
	tbl.AddRedirect("NYC", "New York City")
	tbl.FinishLoad()

	splitArticles := tbl.BySplit(SplitTraining)
	require.Len(t, splitArticles, 1)
	assert.Same(t, target, splitArticles[0])

	for _, a := range splitArticles {
		assert.Empty(t, a.Redirect)
	}
}

func TestRedirectFlatteningIsIdempotent(t *testing.T) {
	tbl := New()
	target := newTestArticle("New York City", SplitTraining)
	tbl.AddArticle(target)
	tbl.AddRedirect("NYC", "New York City")

	tbl.FinishLoad()
	warningsAgain := tbl.FinishLoad()
	assert.Empty(t, warningsAgain)

	got, ok := tbl.Lookup("NYC")
	require.True(t, ok)
	assert.Same(t, target, got)
}

func TestUnresolvedRedirectReportedAsWarning(t *testing.T) {
	tbl := New()
	tbl.AddRedirect("Ghost Town", "Nonexistent Article")

	warnings := tbl.FinishLoad()
	require.Len(t, warnings, 1)
	assert.Equal(t, "Ghost Town", warnings[0].From)

	_, ok := tbl.Lookup("Ghost Town")
	assert.False(t, ok)
}

func TestBySplitPartitioning(t *testing.T) {
	tbl := New()
	tbl.AddArticle(newTestArticle("A", SplitTraining))
	tbl.AddArticle(newTestArticle("B", SplitDev))
	tbl.AddArticle(newTestArticle("C", SplitTest))
	tbl.AddArticle(newTestArticle("D", SplitTraining))

	assert.Len(t, tbl.BySplit(SplitTraining), 2)
	assert.Len(t, tbl.BySplit(SplitDev), 1)
	assert.Len(t, tbl.BySplit(SplitTest), 1)
	assert.Len(t, tbl.BySplit(SplitNone), 0)
}

func TestStats(t *testing.T) {
	tbl := New()
	tbl.AddArticle(newTestArticle("A", SplitTraining))
	tbl.AddArticle(newTestArticle("B", SplitDev))

	s := tbl.Stats()
	assert.Equal(t, 1, s.Training)
	assert.Equal(t, 1, s.Dev)
	assert.Equal(t, 0, s.Test)
}

func TestFinishDistributionsBuildsGlobalAndFinishesArticles(t *testing.T) {
	tbl := New()
	a := newTestArticle("A", SplitTraining)
	require.NoError(t, a.Dist.AddWord("paris", 10))
	b := newTestArticle("B", SplitTraining)
	require.NoError(t, b.Dist.AddWord("tokyo", 5))
	tbl.AddArticle(a)
	tbl.AddArticle(b)

	require.NoError(t, tbl.FinishDistributions())

	assert.True(t, a.Dist.Finished())
	assert.True(t, b.Dist.Finished())
	require.NotNil(t, tbl.GlobalDist())
	assert.Equal(t, 15, tbl.GlobalDist().TotalTokens())

	// Every seen-word probability plus unseen mass sums to ~1.
	sum := a.Dist.LookupWord("paris") + a.Dist.UnseenMass()
	assert.InDelta(t, 1.0, sum, 1e-9)
}
