// Command gridexport renders a built regional grid and gazetteer
// division set as GeoJSON (and, optionally, a Shapefile) so the
// regions a run actually produced can be inspected on a map. It
// shares no process lifecycle with cmd/geotagger -- it loads the same
// corpus inputs standalone, builds just enough to have boundaries to
// draw, and writes files.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"geotagger/internal/config"
	"geotagger/internal/corpusio"
	"geotagger/internal/logging"
	"geotagger/pkg/article"
	"geotagger/pkg/gazetteer"
	"geotagger/pkg/geo"
	"geotagger/pkg/grid"
)

var (
	configPath      = flag.String("config", "configs/geotagger.yaml", "path to config file")
	articleData     = flag.String("article-data", "", "path to article-data file")
	wordCounts      = flag.String("word-counts", "", "path to word-counts file")
	gazetteerPth    = flag.String("gazetteer", "", "path to gazetteer file")
	regionsOutput   = flag.String("regions-output", "", "write nonempty stat regions as GeoJSON to this path")
	divisionsOutput = flag.String("divisions-output", "", "write gazetteer divisions' boundaries as GeoJSON to this path")
	regionsShp      = flag.String("regions-shp", "", "write nonempty stat regions as a Shapefile (.shp) at this path")
)

func main() {
	flag.Parse()

	if *regionsOutput == "" && *divisionsOutput == "" && *regionsShp == "" {
		flag.Usage()
		log.Fatal("at least one of -regions-output, -divisions-output, -regions-shp is required")
	}

	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	tbl, g, regionGrid, params, err := loadCorpus(cfg)
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}
	_ = tbl

	if *regionsOutput != "" {
		if err := writeRegionsGeoJSON(regionGrid, params, *regionsOutput); err != nil {
			return fmt.Errorf("write regions geojson: %w", err)
		}
	}
	if *divisionsOutput != "" {
		if err := writeDivisionsGeoJSON(g, *divisionsOutput); err != nil {
			return fmt.Errorf("write divisions geojson: %w", err)
		}
	}
	if *regionsShp != "" {
		if err := writeRegionsShapefile(regionGrid, params, *regionsShp); err != nil {
			return fmt.Errorf("write regions shapefile: %w", err)
		}
	}
	return nil
}

func loadCorpus(cfg *config.Config) (*article.Table, *gazetteer.Gazetteer, *grid.Grid, geo.Params, error) {
	report := logging.NewLoadReport()
	tbl := article.New()

	if *articleData != "" {
		f, err := os.Open(*articleData)
		if err != nil {
			return nil, nil, nil, geo.Params{}, fmt.Errorf("open article-data file: %w", err)
		}
		err = corpusio.ReadArticleData(f, tbl, report)
		f.Close()
		if err != nil {
			return nil, nil, nil, geo.Params{}, fmt.Errorf("read article data: %w", err)
		}
		tbl.FinishLoad()
	}

	if *wordCounts != "" {
		f, err := os.Open(*wordCounts)
		if err != nil {
			return nil, nil, nil, geo.Params{}, fmt.Errorf("open word-counts file: %w", err)
		}
		err = corpusio.ReadWordCounts(f, tbl, corpusio.WordCountsOptions{}, report)
		f.Close()
		if err != nil {
			return nil, nil, nil, geo.Params{}, fmt.Errorf("read word counts: %w", err)
		}
		if err := tbl.FinishDistributions(); err != nil {
			return nil, nil, nil, geo.Params{}, fmt.Errorf("finish article distributions: %w", err)
		}
	}

	g := gazetteer.New(tbl, cfg.Gazetteer.MaxDistForCloseMatch)
	if *gazetteerPth != "" {
		f, err := os.Open(*gazetteerPth)
		if err != nil {
			return nil, nil, nil, geo.Params{}, fmt.Errorf("open gazetteer file: %w", err)
		}
		err = corpusio.ReadGazetteer(f, g, report)
		f.Close()
		if err != nil {
			return nil, nil, nil, geo.Params{}, fmt.Errorf("read gazetteer: %w", err)
		}
		g.FinishLoad()
	}

	for _, w := range report.Warnings() {
		log.Printf("%s: %s", w.Source, w.Detail)
	}

	params := geo.Params{DegreesPerRegion: cfg.Grid.DegreesPerRegion, WidthOfStatRegion: cfg.Grid.WidthOfStatRegion}
	regionGrid := grid.New(params, tbl.GlobalDist())
	for _, a := range tbl.BySplit(article.SplitTraining) {
		regionGrid.AddTrainingArticle(a)
	}
	regionGrid.GenerateAll()

	return tbl, g, regionGrid, params, nil
}

// regionRing returns the four lat/long corners of the stat region
// whose south-west tile is sw, as a closed orb.Ring in (long, lat)
// order (GeoJSON's coordinate order).
func regionRing(params geo.Params, sw geo.TileIndex) orb.Ring {
	minLat := float64(sw.I) * params.DegreesPerRegion
	minLong := float64(sw.J) * params.DegreesPerRegion
	span := float64(params.WidthOfStatRegion) * params.DegreesPerRegion
	maxLat := minLat + span
	maxLong := minLong + span

	return orb.Ring{
		{minLong, minLat},
		{maxLong, minLat},
		{maxLong, maxLat},
		{minLong, maxLat},
		{minLong, minLat},
	}
}

func boundaryRing(b geo.BoundingBox) orb.Ring {
	min, max := b.Min(), b.Max()
	return orb.Ring{
		{min.Long, min.Lat},
		{max.Long, min.Lat},
		{max.Long, max.Lat},
		{min.Long, max.Lat},
		{min.Long, min.Lat},
	}
}

func writeRegionsGeoJSON(g *grid.Grid, params geo.Params, path string) error {
	fc := geojson.NewFeatureCollection()
	for _, r := range g.NonemptyRegions() {
		feature := geojson.NewFeature(orb.Polygon{regionRing(params, r.SWTile)})
		feature.Properties["tile_i"] = r.SWTile.I
		feature.Properties["tile_j"] = r.SWTile.J
		feature.Properties["num_articles"] = r.NumArts
		fc.Append(feature)
	}
	return writeGeoJSON(fc, path)
}

func writeDivisionsGeoJSON(g *gazetteer.Gazetteer, path string) error {
	fc := geojson.NewFeatureCollection()
	for _, div := range g.Divisions() {
		if div.Boundary.IsEmpty() {
			continue
		}
		feature := geojson.NewFeature(orb.Polygon{boundaryRing(div.Boundary)})
		feature.Properties["path"] = div.Name()
		feature.Properties["num_localities"] = len(div.Locs)
		fc.Append(feature)
	}
	return writeGeoJSON(fc, path)
}

func writeGeoJSON(fc *geojson.FeatureCollection, path string) error {
	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal geojson: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func writeRegionsShapefile(g *grid.Grid, params geo.Params, path string) error {
	regions := g.NonemptyRegions()

	w, err := shp.Create(path, shp.POLYGON)
	if err != nil {
		return fmt.Errorf("create shapefile: %w", err)
	}
	defer w.Close()

	w.SetFields([]shp.Field{
		shp.NumberField("TILE_I", 10),
		shp.NumberField("TILE_J", 10),
		shp.NumberField("NUM_ARTS", 10),
	})

	for i, r := range regions {
		ring := regionRing(params, r.SWTile)
		pts := make([]shp.Point, len(ring))
		for j, p := range ring {
			pts[j] = shp.Point{X: p[0], Y: p[1]}
		}
		poly := &shp.Polygon{
			Box:       shp.Box{MinX: pts[0].X, MinY: pts[0].Y, MaxX: pts[2].X, MaxY: pts[2].Y},
			NumParts:  1,
			NumPoints: int32(len(pts)),
			Parts:     []int32{0},
			Points:    pts,
		}
		w.Write(poly)
		w.WriteAttribute(i, 0, r.SWTile.I)
		w.WriteAttribute(i, 1, r.SWTile.J)
		w.WriteAttribute(i, 2, r.NumArts)
	}

	fmt.Printf("wrote %s (%d regions)\n", path, len(regions))
	return nil
}
