package main

import (
	"testing"

	"geotagger/internal/config"
	"geotagger/pkg/grid"
	"geotagger/pkg/scoring"
)

func TestBuildToponymStrategyMapsArticleType(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.NaiveBayes.Type = config.NaiveBayesTypeArticle

	strategy := buildToponymStrategy(cfg, nil, nil)

	nb, ok := strategy.(*scoring.NaiveBayes)
	if !ok {
		t.Fatalf("expected *scoring.NaiveBayes, got %T", strategy)
	}
	if nb.Type != scoring.NaiveBayesArticle {
		t.Errorf("expected NaiveBayesArticle, got %v", nb.Type)
	}
}

func TestBuildToponymStrategyMapsRoundAndSquareRegionToSameType(t *testing.T) {
	for _, rt := range []config.NaiveBayesType{config.NaiveBayesTypeRoundRegion, config.NaiveBayesTypeSquareRegion} {
		cfg := config.DefaultConfig()
		cfg.NaiveBayes.Type = rt

		nb := buildToponymStrategy(cfg, nil, nil).(*scoring.NaiveBayes)
		if nb.Type != scoring.NaiveBayesRegion {
			t.Errorf("expected NaiveBayesRegion for config type %v, got %v", rt, nb.Type)
		}
	}
}

func TestBuildToponymStrategyMapsWeighting(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.NaiveBayes.Weighting = config.WeightingDistanceWeighted

	nb := buildToponymStrategy(cfg, nil, nil).(*scoring.NaiveBayes)
	if nb.Weighting != scoring.WeightingDistanceWeighted {
		t.Errorf("expected WeightingDistanceWeighted, got %v", nb.Weighting)
	}
}

func TestBuildToponymStrategyOnlyUsesBaselineForInternalLink(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Baseline.Strategy = config.BaselineNumArticles

	nb := buildToponymStrategy(cfg, nil, nil).(*scoring.NaiveBayes)
	if nb.UseBaseline {
		t.Errorf("expected UseBaseline false for num-articles baseline strategy")
	}

	cfg.Baseline.Strategy = config.BaselineInternalLink
	nb = buildToponymStrategy(cfg, nil, nil).(*scoring.NaiveBayes)
	if !nb.UseBaseline {
		t.Errorf("expected UseBaseline true for internal-link baseline strategy")
	}
}

func TestBuildDocumentStrategyUsesKLDivergenceWhenCacheDisabled(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Cache.LRU = 0

	strategy := buildDocumentStrategy(cfg, &grid.Grid{})
	if _, ok := strategy.(*scoring.KLDivergenceStrategy); !ok {
		t.Fatalf("expected *scoring.KLDivergenceStrategy, got %T", strategy)
	}
}

func TestBuildDocumentStrategyUsesPerWordRegionCacheWhenSized(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Cache.LRU = 100

	strategy := buildDocumentStrategy(cfg, &grid.Grid{})
	if _, ok := strategy.(*scoring.PerWordRegionStrategy); !ok {
		t.Fatalf("expected *scoring.PerWordRegionStrategy, got %T", strategy)
	}
}
