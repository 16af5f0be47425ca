package evaluator

import (
	"math"
	"sync"

	"geotagger/pkg/article"
	"geotagger/pkg/gazetteer"
	"geotagger/pkg/geo"
	"geotagger/pkg/scoring"
)

// Word is one token of a document fed to the toponym evaluator.
// Tokenization, stopword classification, and toponym annotation are
// external collaborators; this package only consumes the
// resulting sequence.
type Word struct {
	Text      string
	IsToponym bool
	Coord     *geo.Coord // ground truth; only set (and only meaningful) when IsToponym
}

// Document is one grouped unit of Words, matching yield_documents'
// group-by-document behavior.
type Document struct {
	Name  string
	Words []Word
}

// ToponymReason names why a disambiguation was scored incorrect (five
// five reasons). The zero value means "correct" -- callers should
// check ToponymResult.Correct rather than comparing Reason directly.
type ToponymReason string

const (
	ReasonNoCandidates              ToponymReason = "no_candidates"
	ReasonNoCorrectCandidates       ToponymReason = "no_correct_candidates"
	ReasonMultipleCorrectCandidates ToponymReason = "multiple_correct_candidates"
	ReasonOneCorrectMissingLinkInfo ToponymReason = "one_correct_missing_link_info"
	ReasonOneCorrectCandidate       ToponymReason = "one_correct_candidate"
)

// ToponymResult is the outcome of disambiguating one toponym mention.
type ToponymResult struct {
	Document      string
	Word          string
	TrueCoord     geo.Coord
	Correct       bool
	Reason        ToponymReason
	NumCandidates int
	Best          *article.Article
}

// ToponymEvaluator groups a document's words, builds a context window
// around each toponym mention, scores every name-matched candidate
// article with Strategy, and records the result (see
// GeotagToponymEvaluator).
type ToponymEvaluator struct {
	Gazetteer             *gazetteer.Gazetteer
	Strategy              scoring.ToponymStrategy
	MaxDistForCloseMatch  float64
	ContextLen            int
	IsStopword            func(string) bool
}

// EvaluateDocument disambiguates every toponym mention in doc, in
// order, skipping mentions without ground-truth coordinates.
func (e *ToponymEvaluator) EvaluateDocument(doc Document) []ToponymResult {
	var out []ToponymResult
	for i, w := range doc.Words {
		if !w.IsToponym || w.Coord == nil {
			continue
		}
		context := e.buildContext(doc.Words, i)
		out = append(out, e.evaluateMention(doc.Name, w, context))
	}
	return out
}

// buildContext selects up to ContextLen non-stopword words on either
// side of index i, each tagged with its signed word-offset distance,
// mirroring yield_documents' context construction.
func (e *ToponymEvaluator) buildContext(words []Word, i int) []scoring.ContextWord {
	minIdx := i - e.ContextLen
	if minIdx < 0 {
		minIdx = 0
	}
	maxIdx := i + e.ContextLen + 1
	if maxIdx > len(words) {
		maxIdx = len(words)
	}

	var out []scoring.ContextWord
	for j := minIdx; j < maxIdx; j++ {
		if e.IsStopword != nil && e.IsStopword(words[j].Text) {
			continue
		}
		out = append(out, scoring.ContextWord{Word: words[j].Text, Dist: j - i})
	}
	return out
}

func (e *ToponymEvaluator) evaluateMention(doc string, w Word, context []scoring.ContextWord) ToponymResult {
	candidates := e.Gazetteer.ArticleCandidates(w.Text)
	result := ToponymResult{Document: doc, Word: w.Text, TrueCoord: *w.Coord, NumCandidates: len(candidates)}

	if len(candidates) == 0 {
		result.Reason = ReasonNoCandidates
		return result
	}

	bestScore := math.Inf(-1)
	var best *article.Article
	for _, cand := range candidates {
		score := e.Strategy.Score(context, cand)
		if score > bestScore {
			bestScore = score
			best = cand
		}
	}
	result.Best = best

	if best != nil && e.matchesCoord(best, *w.Coord) {
		result.Correct = true
		return result
	}

	var goodArts []*article.Article
	for _, cand := range candidates {
		if e.matchesCoord(cand, *w.Coord) {
			goodArts = append(goodArts, cand)
		}
	}

	switch {
	case len(goodArts) == 0:
		result.Reason = ReasonNoCorrectCandidates
	case len(goodArts) > 1:
		result.Reason = ReasonMultipleCorrectCandidates
	case goodArts[0].IncomingLinks == nil:
		result.Reason = ReasonOneCorrectMissingLinkInfo
	default:
		result.Reason = ReasonOneCorrectCandidate
	}
	return result
}

// matchesCoord mirrors StatArticle.matches_coord: within
// MaxDistForCloseMatch of the candidate's own coordinate, or inside
// the candidate's matched division's boundary.
func (e *ToponymEvaluator) matchesCoord(a *article.Article, coord geo.Coord) bool {
	if a.Coord != nil && geo.SphereDist(*a.Coord, coord) <= e.MaxDistForCloseMatch {
		return true
	}
	if div, ok := a.Location.(*gazetteer.Division); ok {
		return div.Boundary.Contains(coord)
	}
	return false
}

// ToponymReport tallies correct/incorrect counts and per-reason
// breakdowns, plus a breakdown by candidate count (the "toponyms by
// number of candidates available" table the original tracks
// alongside the five reasons).
type ToponymReport struct {
	Total             int
	Correct           int
	ByReason          map[ToponymReason]int
	ByNumCandidates   map[int]int
}

// ToponymAccumulator collects ToponymResults and reduces them to a
// ToponymReport.
type ToponymAccumulator struct {
	mu      sync.Mutex
	results []ToponymResult
}

func NewToponymAccumulator() *ToponymAccumulator {
	return &ToponymAccumulator{}
}

func (a *ToponymAccumulator) Add(r ToponymResult) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.results = append(a.results, r)
}

func (a *ToponymAccumulator) AddAll(rs []ToponymResult) {
	for _, r := range rs {
		a.Add(r)
	}
}

func (a *ToponymAccumulator) Report() ToponymReport {
	a.mu.Lock()
	results := append([]ToponymResult(nil), a.results...)
	a.mu.Unlock()

	report := ToponymReport{
		ByReason:        make(map[ToponymReason]int),
		ByNumCandidates: make(map[int]int),
	}
	for _, r := range results {
		report.Total++
		report.ByNumCandidates[r.NumCandidates]++
		if r.Correct {
			report.Correct++
			continue
		}
		report.ByReason[r.Reason]++
	}
	return report
}
