package evaluator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geotagger/pkg/article"
	"geotagger/pkg/gazetteer"
	"geotagger/pkg/geo"
	"geotagger/pkg/scoring"
)

func intRef(n int) *int { return &n }

type recordingStrategy struct {
	scores map[*article.Article]float64
	calls  [][]scoring.ContextWord
}

func (r *recordingStrategy) Score(context []scoring.ContextWord, candidate *article.Article) float64 {
	r.calls = append(r.calls, context)
	return r.scores[candidate]
}

func TestToponymEvaluatorNoCandidatesReason(t *testing.T) {
	tbl := article.New()
	g := gazetteer.New(tbl, 0)

	ev := &ToponymEvaluator{Gazetteer: g, Strategy: &recordingStrategy{scores: map[*article.Article]float64{}}, ContextLen: 2}
	doc := Document{Name: "doc1", Words: []Word{
		{Text: "Nonexistentville", IsToponym: true, Coord: &geo.Coord{Lat: 10, Long: 10}},
	}}

	results := ev.EvaluateDocument(doc)
	require.Len(t, results, 1)
	assert.False(t, results[0].Correct)
	assert.Equal(t, ReasonNoCandidates, results[0].Reason)
}

func TestToponymEvaluatorCorrectWhenBestScoredCandidateMatchesCoord(t *testing.T) {
	tbl := article.New()
	close := &article.Article{Title: "Springfield", Coord: &geo.Coord{Lat: 40.0, Long: -89.5}, IncomingLinks: intRef(5)}
	far := &article.Article{Title: "Springfield", Coord: &geo.Coord{Lat: 39.9, Long: -83.8}, IncomingLinks: intRef(900)}
	tbl.AddArticle(close)
	tbl.AddArticle(far)

	g := gazetteer.New(tbl, 80)

	strategy := &recordingStrategy{scores: map[*article.Article]float64{close: 10, far: 1}}
	ev := &ToponymEvaluator{Gazetteer: g, Strategy: strategy, MaxDistForCloseMatch: 80, ContextLen: 2}

	doc := Document{Name: "doc1", Words: []Word{
		{Text: "capital"}, {Text: "Springfield", IsToponym: true, Coord: &geo.Coord{Lat: 40.0, Long: -89.5}}, {Text: "city"},
	}}

	results := ev.EvaluateDocument(doc)
	require.Len(t, results, 1)
	assert.True(t, results[0].Correct)
	assert.Same(t, close, results[0].Best)
	assert.Equal(t, 2, results[0].NumCandidates)
}

func TestToponymEvaluatorReasonsForIncorrectGuesses(t *testing.T) {
	tbl := article.New()
	correct := &article.Article{Title: "Springfield", Coord: &geo.Coord{Lat: 40.0, Long: -89.5}}
	wrong := &article.Article{Title: "Springfield", Coord: &geo.Coord{Lat: 39.9, Long: -83.8}, IncomingLinks: intRef(900)}
	tbl.AddArticle(correct)
	tbl.AddArticle(wrong)

	g := gazetteer.New(tbl, 80)

	// Strategy always prefers "wrong" -- and "correct" has no incoming
	// link info, so the reason should be one_correct_missing_link_info.
	strategy := &recordingStrategy{scores: map[*article.Article]float64{correct: 1, wrong: 10}}
	ev := &ToponymEvaluator{Gazetteer: g, Strategy: strategy, MaxDistForCloseMatch: 80, ContextLen: 2}

	doc := Document{Name: "doc1", Words: []Word{
		{Text: "Springfield", IsToponym: true, Coord: &geo.Coord{Lat: 40.0, Long: -89.5}},
	}}

	results := ev.EvaluateDocument(doc)
	require.Len(t, results, 1)
	assert.False(t, results[0].Correct)
	assert.Equal(t, ReasonOneCorrectMissingLinkInfo, results[0].Reason)
}

func TestToponymEvaluatorBuildContextSkipsStopwordsAndCarriesOffsets(t *testing.T) {
	tbl := article.New()
	g := gazetteer.New(tbl, 0)
	stop := map[string]bool{"the": true, "a": true}

	strategy := &recordingStrategy{scores: map[*article.Article]float64{}}
	ev := &ToponymEvaluator{
		Gazetteer:  g,
		Strategy:   strategy,
		ContextLen: 2,
		IsStopword: func(w string) bool { return stop[w] },
	}

	doc := Document{Name: "doc1", Words: []Word{
		{Text: "the"}, {Text: "great"}, {Text: "Springfield", IsToponym: true, Coord: &geo.Coord{Lat: 1, Long: 1}}, {Text: "a"}, {Text: "city"},
	}}

	ev.EvaluateDocument(doc)
	require.Len(t, strategy.calls, 1)
	context := strategy.calls[0]

	for _, cw := range context {
		assert.NotEqual(t, "the", cw.Word)
		assert.NotEqual(t, "a", cw.Word)
	}
	var sawCity bool
	for _, cw := range context {
		if cw.Word == "city" {
			sawCity = true
			assert.Equal(t, 2, cw.Dist)
		}
	}
	assert.True(t, sawCity)
}

func TestToponymAccumulatorReportTalliesReasons(t *testing.T) {
	acc := NewToponymAccumulator()
	acc.AddAll([]ToponymResult{
		{Correct: true, NumCandidates: 1},
		{Correct: false, Reason: ReasonNoCandidates, NumCandidates: 0},
		{Correct: false, Reason: ReasonMultipleCorrectCandidates, NumCandidates: 3},
	})

	report := acc.Report()
	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 1, report.Correct)
	assert.Equal(t, 1, report.ByReason[ReasonNoCandidates])
	assert.Equal(t, 1, report.ByReason[ReasonMultipleCorrectCandidates])
	assert.Equal(t, 1, report.ByNumCandidates[0])
}
