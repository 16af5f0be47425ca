// Package scoring implements the document- and toponym-ranking
// strategies: KL-divergence and per-word region-distribution ranking
// of statistical regions against a query word distribution, baseline
// region scorers, and link-baseline / Naive-Bayes toponym
// disambiguation. Each strategy is a struct holding its dependencies
// up front and performing its ranking in one pass, behind a small
// interface for testability.
package scoring

import (
	"math/rand"
	"sort"

	"geotagger/pkg/article"
	"geotagger/pkg/grid"
	"geotagger/pkg/regioncache"
	"geotagger/pkg/worddist"
)

// DocumentStrategy ranks a Grid's nonempty regions against a query
// word distribution, best match first.
type DocumentStrategy interface {
	RankRegions(query *worddist.WordDist) []*grid.StatRegion
}

// KLDivergenceStrategy ranks regions by ascending KL-divergence
// between query and each region's word distribution (smaller is
// better: the region's vocabulary explains the query more closely).
type KLDivergenceStrategy struct {
	Grid    *grid.Grid
	Partial bool
}

func (s *KLDivergenceStrategy) RankRegions(query *worddist.WordDist) []*grid.StatRegion {
	regions := s.Grid.NonemptyRegions()
	scores := make([]float64, len(regions))
	for i, r := range regions {
		if s.Partial {
			scores[i] = worddist.PartialKLDivergence(query, r.WordDist)
		} else {
			scores[i] = worddist.KLDivergence(query, r.WordDist)
		}
	}
	idx := sortIndices(len(regions), func(i, j int) bool { return scores[i] < scores[j] })
	return reorder(regions, idx)
}

// PerWordRegionStrategy builds a RegionDist for the query (summing the
// per-word inverted distributions of every word in it, weighted by
// count) and ranks regions by descending probability under it.
type PerWordRegionStrategy struct {
	Cache *regioncache.Cache
}

func (s *PerWordRegionStrategy) RankRegions(query *worddist.WordDist) []*grid.StatRegion {
	rd := s.Cache.GetForDist(query)
	var regions []*grid.StatRegion
	var probs []float64
	rd.Each(func(r *grid.StatRegion, p float64) {
		regions = append(regions, r)
		probs = append(probs, p)
	})
	idx := sortIndices(len(regions), func(i, j int) bool { return probs[i] > probs[j] })
	return reorder(regions, idx)
}

// BaselineVariant selects which query-independent region score
// Baseline computes.
type BaselineVariant int

const (
	// BaselineInternalLink scores a region by the adjusted incoming-link
	// count of its proxy toponym article (see internalLinkScore); it is
	// not a sum over the region's training articles.
	BaselineInternalLink BaselineVariant = iota
	// BaselineNumArticles scores a region by its article count.
	BaselineNumArticles
	// BaselineRandom assigns an arbitrary score, for establishing a
	// chance-performance floor.
	BaselineRandom
	// BaselineLinkMostCommonToponym scores a region by the adjusted
	// incoming-link count of the article matching the region's most
	// frequent word-distribution word (taken as a proxy toponym, since
	// StatRegion does not retain its contributing articles' titles
	// individually).
	BaselineLinkMostCommonToponym
	// BaselineRegdistMostCommonToponym scores a region by that same
	// proxy toponym's per-word region-distribution probability under
	// this specific region.
	BaselineRegdistMostCommonToponym
)

// BaselineStrategy computes one of five query-independent region
// rankings: none of these consult the query word distribution
// at all, which is the point -- they establish a baseline against
// which the distribution-aware strategies are compared.
type BaselineStrategy struct {
	Grid     *grid.Grid
	Variant  BaselineVariant
	Articles *article.Table
	Cache    *regioncache.Cache // required for BaselineRegdistMostCommonToponym
	Rand     *rand.Rand         // required for BaselineRandom; nil uses a process-default source
}

func (s *BaselineStrategy) RankRegions(query *worddist.WordDist) []*grid.StatRegion {
	regions := s.Grid.NonemptyRegions()
	scores := make([]float64, len(regions))
	for i, r := range regions {
		scores[i] = s.score(r)
	}
	idx := sortIndices(len(regions), func(i, j int) bool { return scores[i] > scores[j] })
	return reorder(regions, idx)
}

func (s *BaselineStrategy) score(r *grid.StatRegion) float64 {
	switch s.Variant {
	case BaselineNumArticles:
		return float64(r.NumArts)
	case BaselineRandom:
		if s.Rand != nil {
			return s.Rand.Float64()
		}
		return rand.Float64()
	case BaselineLinkMostCommonToponym:
		if art := s.mostCommonToponymArticle(r); art != nil {
			return adjustedIncomingLinks(art)
		}
		return 0.01
	case BaselineRegdistMostCommonToponym:
		word := mostCommonWord(r.WordDist)
		if word == "" || s.Cache == nil {
			return 0
		}
		return s.Cache.Get(word).Prob(r)
	default: // BaselineInternalLink
		return s.internalLinkScore(r)
	}
}

// internalLinkScore approximates "sum of incoming links of articles in
// this region": the region itself retains only an aggregate word
// distribution, so this is computed as the adjusted link count of the
// region's proxy toponym article, the same candidate used for
// BaselineLinkMostCommonToponym -- a single representative rather
// than a true sum, since no per-region article list survives region
// construction (regions are built from word distributions alone).
func (s *BaselineStrategy) internalLinkScore(r *grid.StatRegion) float64 {
	if art := s.mostCommonToponymArticle(r); art != nil {
		return adjustedIncomingLinks(art)
	}
	return 0.01
}

func (s *BaselineStrategy) mostCommonToponymArticle(r *grid.StatRegion) *article.Article {
	word := mostCommonWord(r.WordDist)
	if word == "" || s.Articles == nil {
		return nil
	}
	if cands := s.Articles.LookupByLowerName(word); len(cands) > 0 {
		return cands[0]
	}
	if cands := s.Articles.LookupByShortForm(word); len(cands) > 0 {
		return cands[0]
	}
	return nil
}

// mostCommonWord returns the highest-count word in d, breaking ties
// lexicographically so results are deterministic.
func mostCommonWord(d *worddist.WordDist) string {
	best := ""
	bestCount := 0
	for _, w := range d.Words() {
		c := d.Count(w)
		if c > bestCount || (c == bestCount && w < best) {
			best = w
			bestCount = c
		}
	}
	return best
}

func adjustedIncomingLinks(a *article.Article) float64 {
	if a.IncomingLinks == nil || *a.IncomingLinks == 0 {
		return 0.01
	}
	return float64(*a.IncomingLinks)
}

// sortIndices returns 0..n-1 stably sorted by less.
func sortIndices(n int, less func(i, j int) bool) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return less(idx[a], idx[b]) })
	return idx
}

func reorder[T any](items []T, idx []int) []T {
	out := make([]T, len(items))
	for i, j := range idx {
		out[i] = items[j]
	}
	return out
}
