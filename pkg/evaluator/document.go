// Package evaluator implements rank- and distance-stratified accuracy
// accounting for both document geotagging and toponym disambiguation:
// a stateful, Mutex-guarded accumulator fed by a batch-processing
// loop, one pass per scored item.
package evaluator

import (
	"sort"
	"sync"

	"gonum.org/v1/gonum/stat"

	"geotagger/pkg/article"
	"geotagger/pkg/geo"
	"geotagger/pkg/grid"
	"geotagger/pkg/scoring"
)

// DocumentResult is one scored dev/test article ("rank,
// true-miles-error, true-degrees-error").
type DocumentResult struct {
	Article *article.Article

	// Rank is the 1-based position of the article's own statistical
	// region in the strategy's ranking; 0 if it never appears (can only
	// happen if the region is empty, which RankRegions never returns).
	Rank int

	TrueRegionNumArts int

	// TrueCoordToPredictedCenterMiles/Degrees is the distance from the
	// article's real coordinate to the center of the top-ranked
	// (predicted) region -- the primary error metric.
	TrueCoordToPredictedCenterMiles   float64
	TrueCoordToPredictedCenterDegrees float64

	// TrueCoordToTrueCenterMiles is the distance from the article's real
	// coordinate to the center of its own (true) statistical region,
	// used for the "distance from true coordinate to region center"
	// breakdown.
	TrueCoordToTrueCenterMiles float64

	// PredictedCenterToTrueCenterMiles/Degrees is the distance between
	// the predicted and true region centers, used for the
	// "predicted-vs-true centre distance" breakdown.
	PredictedCenterToTrueCenterMiles   float64
	PredictedCenterToTrueCenterDegrees float64
}

// DocumentEvaluator scores every article in a split against a
// DocumentStrategy and records a DocumentResult per article.
type DocumentEvaluator struct {
	Grid     *grid.Grid
	Params   geo.Params
	Strategy scoring.DocumentStrategy
}

// EvaluateSplit scores every coord-and-dist-bearing article in
// articles, skipping the rest (an article without a finished dist
// cannot be queried against a region ranking).
func (e *DocumentEvaluator) EvaluateSplit(articles []*article.Article) []DocumentResult {
	out := make([]DocumentResult, 0, len(articles))
	for _, a := range articles {
		if a.Coord == nil || a.Dist == nil {
			continue
		}
		out = append(out, e.evaluateOne(a))
	}
	return out
}

func (e *DocumentEvaluator) evaluateOne(a *article.Article) DocumentResult {
	trueRegion := e.Grid.StatRegionFor(*a.Coord)
	ranked := e.Strategy.RankRegions(a.Dist)

	rank := 0
	for i, r := range ranked {
		if r == trueRegion {
			rank = i + 1
			break
		}
	}

	predicted := trueRegion
	if len(ranked) > 0 {
		predicted = ranked[0]
	}

	trueCenter := e.Params.StatRegionCenter(trueRegion.SWTile)
	predictedCenter := e.Params.StatRegionCenter(predicted.SWTile)

	return DocumentResult{
		Article:                           a,
		Rank:                              rank,
		TrueRegionNumArts:                 trueRegion.NumArts,
		TrueCoordToPredictedCenterMiles:   geo.SphereDist(*a.Coord, predictedCenter),
		TrueCoordToPredictedCenterDegrees: geo.DegreesDist(*a.Coord, predictedCenter),
		TrueCoordToTrueCenterMiles:        geo.SphereDist(*a.Coord, trueCenter),
		PredictedCenterToTrueCenterMiles:  geo.SphereDist(predictedCenter, trueCenter),
		PredictedCenterToTrueCenterDegrees: geo.DegreesDist(predictedCenter, trueCenter),
	}
}

// numArtsBucket labels the standard buckets exactly: {1, 2-9, 10-24, 25-99,
// 100+}.
func numArtsBucket(n int) string {
	switch {
	case n <= 1:
		return "1"
	case n <= 9:
		return "2-9"
	case n <= 24:
		return "10-24"
	case n <= 99:
		return "25-99"
	default:
		return "100+"
	}
}

// distanceBucketEdgesMiles groups results by distance from the true
// coordinate to the centre of its statistical region: a standard
// log-scale histogram, chosen so a handful of buckets span the range
// from a same-tile hit to antipodal.
var distanceBucketEdgesMiles = []float64{10, 100, 1000}

func distanceBucket(miles float64) string {
	for _, edge := range distanceBucketEdgesMiles {
		if miles < edge {
			return bucketLabel(edge)
		}
	}
	return bucketLabel(-1)
}

func bucketLabel(edge float64) string {
	switch edge {
	case 10:
		return "<10mi"
	case 100:
		return "10-100mi"
	case 1000:
		return "100-1000mi"
	default:
		return "1000mi+"
	}
}

// BucketStats summarizes one stratified slice of results.
type BucketStats struct {
	Count            int
	MeanMilesError   float64
	MedianMilesError float64
}

// RankReport is the output of a RankAccumulator: the full rank
// distribution plus every breakdown tracked alongside rank.
type RankReport struct {
	Count               int
	RankHistogram       map[int]int // rank -> count; rank 0 means "never found"
	MeanMilesError      float64
	MedianMilesError    float64
	MeanDegreesError    float64
	ByTrueRegionNumArts map[string]BucketStats
	ByTrueCenterDist    map[string]BucketStats
	PredictedVsTrueCenter BucketStats
}

// RankAccumulator collects DocumentResults and reduces them to a
// RankReport. Safe for concurrent Add calls, matching
// pkg/poi/manager.go's RWMutex-guarded accumulation habit, even though
// current callers only require single-threaded use today.
type RankAccumulator struct {
	mu      sync.Mutex
	results []DocumentResult
}

func NewRankAccumulator() *RankAccumulator {
	return &RankAccumulator{}
}

func (a *RankAccumulator) Add(r DocumentResult) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.results = append(a.results, r)
}

func (a *RankAccumulator) AddAll(rs []DocumentResult) {
	for _, r := range rs {
		a.Add(r)
	}
}

func (a *RankAccumulator) Report() RankReport {
	a.mu.Lock()
	results := append([]DocumentResult(nil), a.results...)
	a.mu.Unlock()

	report := RankReport{
		Count:               len(results),
		RankHistogram:       make(map[int]int),
		ByTrueRegionNumArts: make(map[string]BucketStats),
		ByTrueCenterDist:    make(map[string]BucketStats),
	}
	if len(results) == 0 {
		return report
	}

	milesErrors := make([]float64, len(results))
	degreesErrors := make([]float64, len(results))
	byNumArts := make(map[string][]float64)
	byCenterDist := make(map[string][]float64)
	predVsTrue := make([]float64, len(results))

	for i, r := range results {
		report.RankHistogram[r.Rank]++
		milesErrors[i] = r.TrueCoordToPredictedCenterMiles
		degreesErrors[i] = r.TrueCoordToPredictedCenterDegrees
		predVsTrue[i] = r.PredictedCenterToTrueCenterMiles

		bNumArts := numArtsBucket(r.TrueRegionNumArts)
		byNumArts[bNumArts] = append(byNumArts[bNumArts], r.TrueCoordToPredictedCenterMiles)

		bDist := distanceBucket(r.TrueCoordToTrueCenterMiles)
		byCenterDist[bDist] = append(byCenterDist[bDist], r.TrueCoordToPredictedCenterMiles)
	}

	report.MeanMilesError = stat.Mean(milesErrors, nil)
	report.MedianMilesError = median(milesErrors)
	report.MeanDegreesError = stat.Mean(degreesErrors, nil)
	report.PredictedVsTrueCenter = BucketStats{
		Count:            len(predVsTrue),
		MeanMilesError:   stat.Mean(predVsTrue, nil),
		MedianMilesError: median(predVsTrue),
	}

	for bucket, vals := range byNumArts {
		report.ByTrueRegionNumArts[bucket] = BucketStats{
			Count:            len(vals),
			MeanMilesError:   stat.Mean(vals, nil),
			MedianMilesError: median(vals),
		}
	}
	for bucket, vals := range byCenterDist {
		report.ByTrueCenterDist[bucket] = BucketStats{
			Count:            len(vals),
			MeanMilesError:   stat.Mean(vals, nil),
			MedianMilesError: median(vals),
		}
	}

	return report
}

func median(vals []float64) float64 {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	return stat.Quantile(0.5, stat.Empirical, sorted, nil)
}
