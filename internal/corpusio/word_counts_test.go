package corpusio

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geotagger/internal/logging"
	"geotagger/pkg/article"
)

func newLookupTable(titles ...string) *article.Table {
	tbl := article.New()
	for _, title := range titles {
		tbl.AddArticle(&article.Article{Title: title, Namespace: "Main"})
	}
	return tbl
}

func TestReadWordCountsBuildsDistributionForKnownArticle(t *testing.T) {
	data := "Article title: Paris\n" +
		"Article ID: 1\n" +
		"city = 4\n" +
		"Eiffel = 2\n"

	tbl := newLookupTable("Paris")
	report := logging.NewLoadReport()
	opts := WordCountsOptions{PreserveCaseWords: false}
	require.NoError(t, ReadWordCounts(strings.NewReader(data), tbl, opts, report))

	a, ok := tbl.Lookup("Paris")
	require.True(t, ok)
	require.NotNil(t, a.Dist)
	assert.Equal(t, 0, report.Count())
}

func TestReadWordCountsWarnsOnUnknownArticle(t *testing.T) {
	data := "Article title: Nowhere\n" +
		"city = 1\n"

	tbl := newLookupTable("Paris")
	report := logging.NewLoadReport()
	require.NoError(t, ReadWordCounts(strings.NewReader(data), tbl, WordCountsOptions{}, report))

	assert.Equal(t, 1, report.Count())
	assert.Contains(t, report.Warnings()[0].Detail, "Nowhere")
}

func TestReadWordCountsLowercasesWordsUnlessPreserveCase(t *testing.T) {
	data := "Article title: Paris\n" +
		"Eiffel = 2\n"

	tbl := newLookupTable("Paris")
	report := logging.NewLoadReport()
	require.NoError(t, ReadWordCounts(strings.NewReader(data), tbl, WordCountsOptions{PreserveCaseWords: false}, report))

	a, _ := tbl.Lookup("Paris")
	require.NotNil(t, a.Dist)
	assert.Equal(t, 2, a.Dist.Count("eiffel"))
	assert.Equal(t, 0, a.Dist.Count("Eiffel"))
}

func TestReadWordCountsSkipsStopwordsWhenConfigured(t *testing.T) {
	data := "Article title: Paris\n" +
		"the = 10\n" +
		"city = 4\n"

	tbl := newLookupTable("Paris")
	report := logging.NewLoadReport()
	opts := WordCountsOptions{
		IgnoreStopwordsInArticleDists: true,
		IsStopword:                    func(w string) bool { return w == "the" },
	}
	require.NoError(t, ReadWordCounts(strings.NewReader(data), tbl, opts, report))

	a, _ := tbl.Lookup("Paris")
	require.NotNil(t, a.Dist)
	assert.Equal(t, 0, a.Dist.Count("the"))
	assert.Equal(t, 4, a.Dist.Count("city"))
}

func TestReadWordCountsWarnsOnUnparseableLine(t *testing.T) {
	data := "Article title: Paris\n" +
		"not a valid count line\n" +
		"city = 4\n"

	tbl := newLookupTable("Paris")
	report := logging.NewLoadReport()
	require.NoError(t, ReadWordCounts(strings.NewReader(data), tbl, WordCountsOptions{}, report))

	assert.Equal(t, 1, report.Count())
	a, _ := tbl.Lookup("Paris")
	require.NotNil(t, a.Dist)
}
