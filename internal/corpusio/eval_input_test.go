package corpusio

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geotagger/internal/logging"
	"geotagger/pkg/article"
	"geotagger/pkg/geo"
)

func TestReadTRConllDocumentParsesGoldCandidateOnly(t *testing.T) {
	data := "The\tO\n" +
		"Paris\tLOC\n" +
		"\tc1\tgaz\t40.71\t-74.00\ttopolist\n" +
		"\t>c2\tgaz\t48.85\t2.35\ttopolist\n" +
		"\tc3\tgaz\t51.50\t-0.12\ttopolist\n" +
		"is\tO\n" +
		"nice\tO\n"

	report := logging.NewLoadReport()
	doc, err := ReadTRConllDocument(strings.NewReader(data), "doc1", report)
	require.NoError(t, err)

	assert.Equal(t, "doc1", doc.Name)
	require.Len(t, doc.Words, 4)

	toponym := doc.Words[1]
	assert.Equal(t, "Paris", toponym.Text)
	assert.True(t, toponym.IsToponym)
	require.NotNil(t, toponym.Coord)
	assert.InDelta(t, 48.85, toponym.Coord.Lat, 1e-9)
	assert.InDelta(t, 2.35, toponym.Coord.Long, 1e-9)

	assert.Equal(t, 0, report.Count())
}

func TestReadTRConllDocumentToponymWithoutGoldCandidateHasNilCoord(t *testing.T) {
	data := "Atlantis\tLOC\n" +
		"\tc1\tgaz\t40.71\t-74.00\ttopolist\n"

	report := logging.NewLoadReport()
	doc, err := ReadTRConllDocument(strings.NewReader(data), "doc2", report)
	require.NoError(t, err)

	require.Len(t, doc.Words, 1)
	assert.True(t, doc.Words[0].IsToponym)
	assert.Nil(t, doc.Words[0].Coord)
}

func TestReadTRConllDocumentWarnsOnMalformedCandidateLine(t *testing.T) {
	data := "Paris\tLOC\n" +
		"\t>bad candidate line\n"

	report := logging.NewLoadReport()
	_, err := ReadTRConllDocument(strings.NewReader(data), "doc3", report)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Count())
}

func TestReadEncyclopediaDocumentsSplitsOnArticleTitleBlocks(t *testing.T) {
	data := "Article title: Travelogue\n" +
		"We visited the city and saw the tower.\n" +
		"Link: Paris|the French capital\n" +
		"It was lovely.\n" +
		"Article title: Second\n" +
		"Another short piece.\n"

	tbl := article.New()
	coord := &geo.Coord{Lat: 48.85, Long: 2.35}
	tbl.AddArticle(&article.Article{Title: "Paris", Namespace: "Main", Coord: coord})

	report := logging.NewLoadReport()
	docs, err := ReadEncyclopediaDocuments(strings.NewReader(data), tbl, report)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	first := docs[0]
	assert.Equal(t, "Travelogue", first.Name)

	var foundLink bool
	for _, w := range first.Words {
		if w.IsToponym {
			foundLink = true
			assert.Equal(t, "the French capital", w.Text)
			require.NotNil(t, w.Coord)
			assert.InDelta(t, 48.85, w.Coord.Lat, 1e-9)
		}
	}
	assert.True(t, foundLink)
	assert.Equal(t, "Second", docs[1].Name)
}

func TestReadEncyclopediaDocumentsWarnsOnLinkBeforeTitle(t *testing.T) {
	data := "Link: Paris|capital\n" +
		"Article title: Real\n" +
		"text here\n"

	tbl := article.New()
	report := logging.NewLoadReport()
	docs, err := ReadEncyclopediaDocuments(strings.NewReader(data), tbl, report)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Count())
	require.Len(t, docs, 1)
}

func TestReadEncyclopediaDocumentsUnresolvedLinkHasNilCoord(t *testing.T) {
	data := "Article title: Travelogue\n" +
		"Link: Atlantis|the lost city\n"

	tbl := article.New()
	report := logging.NewLoadReport()
	docs, err := ReadEncyclopediaDocuments(strings.NewReader(data), tbl, report)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Len(t, docs[0].Words, 1)
	assert.Nil(t, docs[0].Words[0].Coord)
}
