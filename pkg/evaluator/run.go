package evaluator

import (
	"context"

	"geotagger/pkg/article"
)

// ShardIndices returns, in ascending order, the zero-based indices
// into a total-length slice that survive "skip the first skipInitial
// items, then keep every skipN-th item thereafter" -- a pure function
// of index that lets independent processes divide one evaluation
// split between them by running with different skipInitial values.
// This is index arithmetic only; no cross-process coordination is
// implemented or assumed.
func ShardIndices(total, skipInitial, skipN int) []int {
	if skipN < 1 {
		skipN = 1
	}
	if skipInitial < 0 {
		skipInitial = 0
	}
	var out []int
	for i := skipInitial; i < total; i += skipN {
		out = append(out, i)
	}
	return out
}

// ProgressFunc is called after each scored item with the count
// processed so far and the shard's total item count.
type ProgressFunc func(processed, total int)

// RunDocuments scores the sharded subset of articles (per
// ShardIndices) and accumulates a RankReport, honoring ctx
// cancellation between items and reporting progress via onProgress
// (which may be nil).
func (e *DocumentEvaluator) RunDocuments(ctx context.Context, articles []*article.Article, skipInitial, skipN int, onProgress ProgressFunc) (RankReport, error) {
	idxs := ShardIndices(len(articles), skipInitial, skipN)
	acc := NewRankAccumulator()

	for i, idx := range idxs {
		if err := ctx.Err(); err != nil {
			return acc.Report(), err
		}
		a := articles[idx]
		if a.Coord != nil && a.Dist != nil {
			acc.Add(e.evaluateOne(a))
		}
		if onProgress != nil {
			onProgress(i+1, len(idxs))
		}
	}
	return acc.Report(), nil
}

// RunDocumentSet scores the sharded subset of docs and accumulates a
// ToponymReport, under the same cancellation and progress contract as
// RunDocuments.
func (e *ToponymEvaluator) RunDocumentSet(ctx context.Context, docs []Document, skipInitial, skipN int, onProgress ProgressFunc) (ToponymReport, error) {
	idxs := ShardIndices(len(docs), skipInitial, skipN)
	acc := NewToponymAccumulator()

	for i, idx := range idxs {
		if err := ctx.Err(); err != nil {
			return acc.Report(), err
		}
		acc.AddAll(e.EvaluateDocument(docs[idx]))
		if onProgress != nil {
			onProgress(i+1, len(idxs))
		}
	}
	return acc.Report(), nil
}
