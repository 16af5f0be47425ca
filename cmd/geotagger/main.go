// Command geotagger runs exactly one configured evaluation pass over
// a loaded corpus: it loads article data, word counts, and a
// gazetteer, builds the regional grid, runs the toponym and/or
// document evaluator against a chosen scoring strategy, and records
// the resulting report to the eval-run store. It is not the
// experiment driver that enumerates parameter sweeps -- that remains
// an external collaborator: one process, one configured run.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"geotagger/internal/config"
	"geotagger/internal/corpusio"
	"geotagger/internal/evalrun"
	"geotagger/internal/logging"
	"geotagger/internal/monitor"
	"geotagger/pkg/article"
	"geotagger/pkg/evaluator"
	"geotagger/pkg/gazetteer"
	"geotagger/pkg/geo"
	"geotagger/pkg/grid"
	"geotagger/pkg/regioncache"
	"geotagger/pkg/scoring"
)

var (
	configPath   = flag.String("config", "configs/geotagger.yaml", "path to config file")
	initConfig   = flag.Bool("init-config", false, "generate default config file and exit")
	articleData  = flag.String("article-data", "", "path to article-data file")
	wordCounts   = flag.String("word-counts", "", "path to word-counts file")
	gazetteerPth = flag.String("gazetteer", "", "path to gazetteer file")
	stopwordsPth = flag.String("stopwords", "", "path to stopwords file")
	evalInput    = flag.String("eval-input", "", "path to a TR-CONLL (.tr) or encyclopedia-style evaluation input file")
	evalFormat   = flag.String("eval-format", "tr", `evaluation input format: "tr" or "encyclopedia"`)
	runLabel     = flag.String("label", "", "label recorded with this run's summary")
)

func main() {
	flag.Parse()

	if *initConfig {
		if err := config.GenerateDefault(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("config file generated: %s\n", *configPath)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "geotagger: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	cleanupLog, err := logging.Init(cfg.Log.App)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer cleanupLog()

	slog.Info("geotagger starting")

	hub := monitor.NewHub()
	if cfg.Monitor.Enabled {
		srv := monitor.NewServer(cfg.Monitor.Address, hub)
		go serveMonitor(srv)
		defer shutdownMonitor(srv)
	}

	tbl, g, regionGrid, params, loadReport, err := loadCorpus(ctx, cfg, hub)
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}
	slog.Info("corpus loaded", "warnings", loadReport.Count())

	store, err := openRunStore(cfg.EvalRun.Path)
	if err != nil {
		return fmt.Errorf("open eval run store: %w", err)
	}
	defer store.Close()

	runRecord := &evalrun.Run{Label: *runLabel, StartedAt: time.Now()}

	if *evalInput != "" {
		if err := runEvaluation(ctx, cfg, tbl, g, regionGrid, params, hub, runRecord); err != nil {
			return fmt.Errorf("run evaluation: %w", err)
		}
	}

	runRecord.FinishedAt = time.Now()
	if err := store.SaveRun(ctx, runRecord); err != nil {
		return fmt.Errorf("save run summary: %w", err)
	}
	slog.Info("run complete", "run_id", runRecord.ID)

	hub.Broadcast(monitor.Event{Stage: monitor.StageDone})
	return nil
}

func serveMonitor(srv *http.Server) {
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("monitor server failed", "error", err)
	}
}

func shutdownMonitor(srv *http.Server) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("monitor server shutdown error", "error", err)
	}
}

// loadCorpus builds the Article Table, Gazetteer, and Grid from the
// configured input files, in the order the original build requires:
// article data and word counts before the grid is generated, the
// gazetteer independently (it only depends on the Article Table for
// match resolution).
func loadCorpus(ctx context.Context, cfg *config.Config, hub *monitor.Hub) (*article.Table, *gazetteer.Gazetteer, *grid.Grid, geo.Params, *logging.LoadReport, error) {
	report := logging.NewLoadReport()
	tbl := article.New()

	var stopwords map[string]bool
	if *stopwordsPth != "" {
		f, err := os.Open(*stopwordsPth)
		if err != nil {
			return nil, nil, nil, geo.Params{}, nil, fmt.Errorf("open stopwords file: %w", err)
		}
		stopwords, err = corpusio.ReadStopwords(f)
		f.Close()
		if err != nil {
			return nil, nil, nil, geo.Params{}, nil, fmt.Errorf("read stopwords: %w", err)
		}
	}

	if *articleData != "" {
		hub.Broadcast(monitor.Event{Stage: monitor.StageLoadingArticles})
		if err := ctx.Err(); err != nil {
			return nil, nil, nil, geo.Params{}, nil, err
		}
		f, err := os.Open(*articleData)
		if err != nil {
			return nil, nil, nil, geo.Params{}, nil, fmt.Errorf("open article-data file: %w", err)
		}
		err = corpusio.ReadArticleData(f, tbl, report)
		f.Close()
		if err != nil {
			return nil, nil, nil, geo.Params{}, nil, fmt.Errorf("read article data: %w", err)
		}
		for _, w := range tbl.FinishLoad() {
			report.Warn(logging.LoadWarning{Source: "article-data", Detail: fmt.Sprintf("unresolved redirect %q -> %q", w.From, w.To)})
		}
	}

	if *wordCounts != "" {
		hub.Broadcast(monitor.Event{Stage: monitor.StageLoadingWordDists})
		if err := ctx.Err(); err != nil {
			return nil, nil, nil, geo.Params{}, nil, err
		}
		f, err := os.Open(*wordCounts)
		if err != nil {
			return nil, nil, nil, geo.Params{}, nil, fmt.Errorf("open word-counts file: %w", err)
		}
		opts := corpusio.WordCountsOptions{
			PreserveCaseWords:             cfg.WordDist.PreserveCaseWords,
			IgnoreStopwordsInArticleDists: cfg.WordDist.IgnoreStopwordsInArticleDists,
			IsStopword:                    func(w string) bool { return stopwords[w] },
		}
		err = corpusio.ReadWordCounts(f, tbl, opts, report)
		f.Close()
		if err != nil {
			return nil, nil, nil, geo.Params{}, nil, fmt.Errorf("read word counts: %w", err)
		}
		if err := tbl.FinishDistributions(); err != nil {
			return nil, nil, nil, geo.Params{}, nil, fmt.Errorf("finish article distributions: %w", err)
		}
	}

	g := gazetteer.New(tbl, cfg.Gazetteer.MaxDistForCloseMatch)
	if *gazetteerPth != "" {
		hub.Broadcast(monitor.Event{Stage: monitor.StageLoadingGazetteer})
		if err := ctx.Err(); err != nil {
			return nil, nil, nil, geo.Params{}, nil, err
		}
		f, err := os.Open(*gazetteerPth)
		if err != nil {
			return nil, nil, nil, geo.Params{}, nil, fmt.Errorf("open gazetteer file: %w", err)
		}
		err = corpusio.ReadGazetteer(f, g, report)
		f.Close()
		if err != nil {
			return nil, nil, nil, geo.Params{}, nil, fmt.Errorf("read gazetteer: %w", err)
		}
		g.FinishLoad()
	}

	hub.Broadcast(monitor.Event{Stage: monitor.StageBuildingGrid})
	params := geo.Params{
		DegreesPerRegion:  cfg.Grid.DegreesPerRegion,
		WidthOfStatRegion: cfg.Grid.WidthOfStatRegion,
	}
	regionGrid := grid.New(params, tbl.GlobalDist())
	for _, a := range tbl.BySplit(article.SplitTraining) {
		regionGrid.AddTrainingArticle(a)
	}
	regionGrid.GenerateAll()

	return tbl, g, regionGrid, params, report, nil
}

// buildDocumentStrategy picks the per-word region cache strategy when
// the config sizes one (cache.lru > 0), falling back to scoring every
// region's distribution directly by partial KL-divergence.
func buildDocumentStrategy(cfg *config.Config, g *grid.Grid) scoring.DocumentStrategy {
	if cfg.Cache.LRU > 0 {
		return &scoring.PerWordRegionStrategy{Cache: regioncache.New(cfg.Cache.LRU, g.NonemptyRegions())}
	}
	return &scoring.KLDivergenceStrategy{Grid: g, Partial: true}
}

func buildToponymStrategy(cfg *config.Config, g *grid.Grid, tbl *article.Table) scoring.ToponymStrategy {
	var nbType scoring.NaiveBayesType
	if cfg.NaiveBayes.Type == config.NaiveBayesTypeArticle {
		nbType = scoring.NaiveBayesArticle
	} else {
		nbType = scoring.NaiveBayesRegion
	}

	var weighting scoring.Weighting
	switch cfg.NaiveBayes.Weighting {
	case config.WeightingEqualWords:
		weighting = scoring.WeightingEqualWords
	case config.WeightingDistanceWeighted:
		weighting = scoring.WeightingDistanceWeighted
	default:
		weighting = scoring.WeightingEqual
	}

	return &scoring.NaiveBayes{
		UseBaseline:    cfg.Baseline.Strategy == config.BaselineInternalLink,
		Weighting:      weighting,
		BaselineWeight: cfg.Baseline.Weight,
		Type:           nbType,
		Grid:           g,
		Global:         tbl.GlobalDist(),
	}
}

func runEvaluation(ctx context.Context, cfg *config.Config, tbl *article.Table, g *gazetteer.Gazetteer, regionGrid *grid.Grid, params geo.Params, hub *monitor.Hub, runRecord *evalrun.Run) error {
	f, err := os.Open(*evalInput)
	if err != nil {
		return fmt.Errorf("open eval input file: %w", err)
	}
	defer f.Close()

	report := logging.NewLoadReport()
	hub.Broadcast(monitor.Event{Stage: monitor.StageEvaluating})

	toponymStrategy := buildToponymStrategy(cfg, regionGrid, tbl)

	var docs []evaluator.Document
	switch *evalFormat {
	case "tr":
		doc, err := corpusio.ReadTRConllDocument(f, *evalInput, report)
		if err != nil {
			return fmt.Errorf("read TR-CONLL input: %w", err)
		}
		docs = []evaluator.Document{doc}
	case "encyclopedia":
		docs, err = corpusio.ReadEncyclopediaDocuments(f, tbl, report)
		if err != nil {
			return fmt.Errorf("read encyclopedia-style input: %w", err)
		}
	default:
		return fmt.Errorf("unrecognized eval-format %q", *evalFormat)
	}

	ev := &evaluator.ToponymEvaluator{
		Gazetteer:            g,
		Strategy:             toponymStrategy,
		MaxDistForCloseMatch: cfg.Gazetteer.MaxDistForCloseMatch,
		ContextLen:           cfg.NaiveBayes.ContextLen,
	}
	topReport, err := ev.RunDocumentSet(ctx, docs, cfg.Evaluation.SkipInitial, cfg.Evaluation.SkipN, progressBroadcaster(hub, monitor.StageEvaluating))
	if err != nil {
		return err
	}
	slog.Info("toponym evaluation complete", "total", topReport.Total, "correct", topReport.Correct)
	runRecord.ToponymReport = &topReport

	docEv := &evaluator.DocumentEvaluator{Grid: regionGrid, Params: params, Strategy: buildDocumentStrategy(cfg, regionGrid)}
	devArticles := tbl.BySplit(article.SplitDev)
	docReport, err := docEv.RunDocuments(ctx, devArticles, cfg.Evaluation.SkipInitial, cfg.Evaluation.SkipN, progressBroadcaster(hub, monitor.StageEvaluating))
	if err != nil {
		return err
	}
	slog.Info("document evaluation complete", "count", docReport.Count, "mean_miles_error", docReport.MeanMilesError)
	runRecord.DocumentReport = &docReport

	return nil
}

func progressBroadcaster(hub *monitor.Hub, stage monitor.Stage) evaluator.ProgressFunc {
	return func(processed, total int) {
		hub.Broadcast(monitor.Event{Stage: stage, Processed: processed, Total: total})
	}
}

func openRunStore(path string) (*evalrun.Store, error) {
	db, err := evalrun.Open(path)
	if err != nil {
		return nil, err
	}
	return evalrun.NewStore(db), nil
}
