package scoring

import (
	"math"

	"geotagger/pkg/article"
	"geotagger/pkg/gazetteer"
	"geotagger/pkg/grid"
	"geotagger/pkg/worddist"
)

// ContextWord is one word drawn from the window around a toponym
// mention, tagged with its signed word-offset distance from the
// toponym (0 for the toponym itself, negative for preceding words).
type ContextWord struct {
	Word string
	Dist int
}

// ToponymStrategy scores how well a candidate article matches a
// toponym mention's context. Highest score wins; ties are broken by
// first-encountered candidate.
type ToponymStrategy interface {
	Score(context []ContextWord, candidate *article.Article) float64
}

// LinkBaseline picks the candidate with the most incoming links,
// independent of context.
type LinkBaseline struct{}

func (LinkBaseline) Score(_ []ContextWord, candidate *article.Article) float64 {
	return adjustedIncomingLinks(candidate)
}

// Weighting controls how NaiveBayes trades off context-word evidence
// against the incoming-link baseline, and how it weighs individual
// context words by distance from the toponym.
type Weighting int

const (
	// WeightingEqual gives every word equal weight and weighs the
	// baseline the same as the combined word evidence.
	WeightingEqual Weighting = iota
	// WeightingEqualWords gives every word equal weight, but weighs the
	// baseline by BaselineWeight.
	WeightingEqualWords
	// WeightingDistanceWeighted weighs each word by 1/(1+|distance|)
	// and the baseline by BaselineWeight.
	WeightingDistanceWeighted
)

// NaiveBayesType selects which word distribution a candidate is
// scored against. Round-region and square-region are not
// distinguished here: both resolve through findRegWordDist, since the
// two region shapes were never given distinct scoring code paths.
type NaiveBayesType int

const (
	// NaiveBayesArticle scores against the candidate's own article word
	// distribution.
	NaiveBayesArticle NaiveBayesType = iota
	// NaiveBayesRegion scores against the candidate's resolved region
	// (Division, if the candidate's Location is one, else its
	// StatRegion) word distribution.
	NaiveBayesRegion
)

// NaiveBayes scores a candidate by the log-probability its region (or
// article) word distribution assigns to the context words around the
// toponym, optionally blended with the LinkBaseline score.
type NaiveBayes struct {
	UseBaseline    bool
	Weighting      Weighting
	BaselineWeight float64
	Type           NaiveBayesType

	Grid   *grid.Grid
	Global *worddist.WordDist // corpus-wide distribution, for Division.WordDist
}

func (nb *NaiveBayes) Score(context []ContextWord, candidate *article.Article) float64 {
	thisLinks := adjustedIncomingLinks(candidate)
	distobj := nb.findRegWordDist(candidate)
	if distobj == nil {
		return math.Log(thisLinks)
	}

	wordWeight, baselineWeight := nb.weights()

	var totalProb, totalWordWeight float64
	for _, cw := range context {
		wordProb := distobj.LookupWord(cw.Word)

		var thisWeight float64
		if nb.Weighting == WeightingEqual || nb.Weighting == WeightingEqualWords {
			thisWeight = 1.0
		} else {
			thisWeight = 1.0 / (1.0 + math.Abs(float64(cw.Dist)))
		}

		totalWordWeight += thisWeight
		totalProb += thisWeight * math.Log(wordProb)
	}
	if totalWordWeight > 0 {
		totalProb /= totalWordWeight
	}

	totalProb *= wordWeight
	totalProb += baselineWeight * math.Log(thisLinks)
	return totalProb
}

func (nb *NaiveBayes) weights() (wordWeight, baselineWeight float64) {
	switch {
	case !nb.UseBaseline:
		return 1.0, 0.0
	case nb.Weighting == WeightingEqual:
		return 1.0, 1.0
	default:
		return 1 - nb.BaselineWeight, nb.BaselineWeight
	}
}

// findRegWordDist resolves the word distribution a candidate is
// scored against: the candidate's own dist for NaiveBayesArticle;
// otherwise its matched Division's word distribution if its Location
// resolved to one, falling back to its coordinate's StatRegion.
func (nb *NaiveBayes) findRegWordDist(candidate *article.Article) *worddist.WordDist {
	if nb.Type == NaiveBayesArticle {
		return candidate.Dist
	}
	if div, ok := candidate.Location.(*gazetteer.Division); ok {
		return div.WordDist(nb.Global)
	}
	if candidate.Coord != nil && nb.Grid != nil {
		return nb.Grid.StatRegionFor(*candidate.Coord).WordDist
	}
	return candidate.Dist
}
