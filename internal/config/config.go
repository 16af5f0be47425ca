// Package config loads and validates the resolver's configuration:
// grid sizing, gazetteer matching tolerances, scoring strategy
// selection, cache capacity, and evaluation sharding. Structured as
// nested per-concern structs with yaml tags and a Load/Save/DefaultConfig
// shape, deriving degrees_per_region from miles_per_region and
// rejecting unknown enum values at load time instead of at first use.
package config

import (
	"fmt"
	"math"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// milesPerDegree is the equatorial miles-per-degree-of-latitude
// conversion used solely to derive DegreesPerRegion from
// MilesPerRegion; the resolver's own distance arithmetic (pkg/geo)
// keeps its own copy of the Earth-radius constant.
const milesPerDegree = 3963.191 * math.Pi / 180

// Config is the resolver's full configuration tree.
type Config struct {
	Grid       GridConfig       `yaml:"grid"`
	Gazetteer  GazetteerConfig  `yaml:"gazetteer"`
	WordDist   WordDistConfig   `yaml:"word_dist"`
	NaiveBayes NaiveBayesConfig `yaml:"naive_bayes"`
	Baseline   BaselineConfig   `yaml:"baseline"`
	Cache      CacheConfig      `yaml:"cache"`
	Loader     LoaderConfig     `yaml:"loader"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
	Log        LogConfig        `yaml:"log"`
	EvalRun    EvalRunConfig    `yaml:"eval_run"`
	Monitor    MonitorConfig    `yaml:"monitor"`
}

// GridConfig sizes the statistical-region grid.
type GridConfig struct {
	// DegreesPerRegion, if zero, is derived from MilesPerRegion.
	DegreesPerRegion  float64 `yaml:"degrees_per_region"`
	MilesPerRegion    float64 `yaml:"miles_per_region"`
	WidthOfStatRegion int     `yaml:"width_of_stat_region"`
}

// GazetteerConfig sets the locality/division match tolerances.
type GazetteerConfig struct {
	MaxDistForCloseMatch float64 `yaml:"max_dist_for_close_match"`
	MaxDistForOutliers   float64 `yaml:"max_dist_for_outliers"`
}

// WordDistConfig controls word-distribution construction.
type WordDistConfig struct {
	PreserveCaseWords             bool `yaml:"preserve_case_words"`
	IgnoreStopwordsInArticleDists bool `yaml:"ignore_stopwords_in_article_dists"`
}

// NaiveBayesType enumerates the naive_bayes_type config option.
type NaiveBayesType string

const (
	NaiveBayesTypeArticle      NaiveBayesType = "article"
	NaiveBayesTypeRoundRegion  NaiveBayesType = "round-region"
	NaiveBayesTypeSquareRegion NaiveBayesType = "square-region"
)

// NaiveBayesWeighting enumerates the naive_bayes_weighting config option.
type NaiveBayesWeighting string

const (
	WeightingEqual             NaiveBayesWeighting = "equal"
	WeightingEqualWords        NaiveBayesWeighting = "equal-words"
	WeightingDistanceWeighted  NaiveBayesWeighting = "distance-weighted"
)

// NaiveBayesConfig configures the toponym Naive Bayes strategy.
type NaiveBayesConfig struct {
	ContextLen int                 `yaml:"context_len"`
	Type       NaiveBayesType      `yaml:"type"`
	Weighting  NaiveBayesWeighting `yaml:"weighting"`
}

// BaselineVariant enumerates the baseline_strategy config option.
type BaselineVariant string

const (
	BaselineInternalLink            BaselineVariant = "internal-link"
	BaselineRandom                  BaselineVariant = "random"
	BaselineNumArticles             BaselineVariant = "num-articles"
	BaselineLinkMostCommonToponym   BaselineVariant = "link-most-common-toponym"
	BaselineRegdistMostCommonTopo   BaselineVariant = "regdist-most-common-toponym"
)

// BaselineConfig configures the document baseline strategy.
type BaselineConfig struct {
	Strategy BaselineVariant `yaml:"strategy"`
	Weight   float64         `yaml:"weight"`
}

// CacheConfig sizes the per-word region-distribution LRU.
type CacheConfig struct {
	LRU int `yaml:"lru"`
}

// LoaderConfig holds the per-stage loading time budget. The value is
// parsed and validated here, but no loader reads it: loading stages run
// to completion regardless of how long they take.
type LoaderConfig struct {
	MaxTimePerStage Duration `yaml:"max_time_per_stage"`
}

// EvaluationConfig controls evaluation-run sharding.
type EvaluationConfig struct {
	SkipInitial int `yaml:"skip_initial"`
	SkipN       int `yaml:"skip_n"`
}

// LogSettings configures one logger sink.
type LogSettings struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// LogConfig configures every logger sink the resolver writes to.
type LogConfig struct {
	App LogSettings `yaml:"app"`
}

// EvalRunConfig configures the evaluation-run summary store.
type EvalRunConfig struct {
	Path string `yaml:"path"`
}

// MonitorConfig configures the live progress websocket server.
type MonitorConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
}

// DefaultConfig returns the configuration with every documented
// default applied.
func DefaultConfig() *Config {
	return &Config{
		Grid: GridConfig{
			MilesPerRegion:    100,
			WidthOfStatRegion: 1,
		},
		Gazetteer: GazetteerConfig{
			MaxDistForCloseMatch: 80,
			MaxDistForOutliers:   200,
		},
		NaiveBayes: NaiveBayesConfig{
			ContextLen: 10,
			Type:       NaiveBayesTypeSquareRegion,
			Weighting:  WeightingEqual,
		},
		Baseline: BaselineConfig{
			Strategy: BaselineInternalLink,
			Weight:   0.5,
		},
		Cache: CacheConfig{
			LRU: 10000,
		},
		Loader: LoaderConfig{
			MaxTimePerStage: Duration(0),
		},
		Evaluation: EvaluationConfig{
			SkipInitial: 0,
			SkipN:       1,
		},
		Log: LogConfig{
			App: LogSettings{Path: "./logs/geotagger.log", Level: "INFO"},
		},
		EvalRun: EvalRunConfig{
			Path: "./data/geotagger-runs.db",
		},
		Monitor: MonitorConfig{
			Enabled: false,
			Address: "localhost:8420",
		},
	}
}

// Load reads path as YAML over the defaults, then loads .env.local and
// .env (if present) into the process environment (no Config field is
// read from the environment), derives
// DegreesPerRegion when the operator left it zero, and validates every
// enum field. A structural mismatch is fatal: the process refuses to
// start rather than falling back silently.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	_ = godotenv.Load(".env.local", ".env")

	if cfg.Grid.DegreesPerRegion == 0 {
		milesPerRegion := cfg.Grid.MilesPerRegion
		if milesPerRegion == 0 {
			milesPerRegion = 100
		}
		cfg.Grid.DegreesPerRegion = milesPerRegion / milesPerDegree
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration mismatch: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.NaiveBayes.Type {
	case NaiveBayesTypeArticle, NaiveBayesTypeRoundRegion, NaiveBayesTypeSquareRegion:
	default:
		return fmt.Errorf("naive_bayes.type: unrecognized value %q", c.NaiveBayes.Type)
	}

	switch c.NaiveBayes.Weighting {
	case WeightingEqual, WeightingEqualWords, WeightingDistanceWeighted:
	default:
		return fmt.Errorf("naive_bayes.weighting: unrecognized value %q", c.NaiveBayes.Weighting)
	}

	switch c.Baseline.Strategy {
	case BaselineInternalLink, BaselineRandom, BaselineNumArticles,
		BaselineLinkMostCommonToponym, BaselineRegdistMostCommonTopo:
	default:
		return fmt.Errorf("baseline.strategy: unrecognized value %q", c.Baseline.Strategy)
	}

	if c.Grid.WidthOfStatRegion < 1 {
		return fmt.Errorf("grid.width_of_stat_region: must be >= 1, got %d", c.Grid.WidthOfStatRegion)
	}
	if c.Grid.DegreesPerRegion <= 0 {
		return fmt.Errorf("grid.degrees_per_region: must be > 0, got %v", c.Grid.DegreesPerRegion)
	}
	if c.Cache.LRU < 0 {
		return fmt.Errorf("cache.lru: must be >= 0, got %d", c.Cache.LRU)
	}
	if c.Evaluation.SkipN < 1 {
		return fmt.Errorf("evaluation.skip_n: must be >= 1, got %d", c.Evaluation.SkipN)
	}

	return nil
}

// Save writes cfg to path as YAML, for GenerateDefault and any
// operator tooling that wants to persist a derived config.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// GenerateDefault writes a default config file at path unless one
// already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return Save(path, DefaultConfig())
}
