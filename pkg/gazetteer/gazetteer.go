// Package gazetteer implements the Locality/Division model: loading
// tab-separated gazetteer records, indexing them by toponym, matching
// localities and divisions to Article Table entries, and a
// supplemental H3-backed nearest-locality query.
package gazetteer

import (
	"strconv"
	"strings"

	"github.com/uber/h3-go/v4"

	"geotagger/pkg/article"
	"geotagger/pkg/geo"
	"geotagger/pkg/worddist"
)

// DefaultMaxDistForCloseMatch is the outer bound (miles) of the
// locality-to-article ring expansion search.
const DefaultMaxDistForCloseMatch = 80.0

// startRadius is the first ring radius tried; it doubles each round.
const startRadius = 5.0

// h3Resolution governs the cell granularity backing NearestLocalities.
// Resolution 4 cells are roughly 1,770 sq km (about 680 sq mi), coarse enough that most
// localities within a county share a handful of cells.
const h3Resolution = 4

// Locality is a single gazetteer entry.
type Locality struct {
	Name     string
	Altnames []string
	Type     string
	Coord    geo.Coord
	Div      *Division
	Match    *article.Article
}

// Division is a hierarchical areal region (e.g. country/state/county),
// identified by a path of names from coarsest to finest.
type Division struct {
	Path     []string
	Locs     []*Locality
	GoodLocs []*Locality
	Boundary geo.BoundingBox
	Match    *article.Article

	worddist *worddist.WordDist
}

// Name returns the division's own (finest) name.
func (d *Division) Name() string {
	if len(d.Path) == 0 {
		return ""
	}
	return d.Path[len(d.Path)-1]
}

// Gazetteer owns every Locality and Division loaded, and holds weak
// (non-owning) references into an Article Table for match resolution.
type Gazetteer struct {
	articles *article.Table

	maxDistForCloseMatch float64

	divisions     map[string]*Division
	divisionIndex map[string][]*Division
	localityIndex map[string][]*Locality
	localities    []*Locality
	cellIndex     map[h3.Cell][]*Locality
}

// New creates an empty Gazetteer bound to articles for match
// resolution. maxDistForCloseMatch <= 0 selects the default (80mi).
func New(articles *article.Table, maxDistForCloseMatch float64) *Gazetteer {
	if maxDistForCloseMatch <= 0 {
		maxDistForCloseMatch = DefaultMaxDistForCloseMatch
	}
	return &Gazetteer{
		articles:             articles,
		maxDistForCloseMatch: maxDistForCloseMatch,
		divisions:            make(map[string]*Division),
		divisionIndex:        make(map[string][]*Division),
		localityIndex:        make(map[string][]*Locality),
		cellIndex:            make(map[h3.Cell][]*Locality),
	}
}

// Divisions returns every Division, keyed by its path joined with "/".
func (g *Gazetteer) Divisions() map[string]*Division {
	out := make(map[string]*Division, len(g.divisions))
	for k, v := range g.divisions {
		out[strings.ReplaceAll(k, "\x1f", "/")] = v
	}
	return out
}

// Localities returns every loaded locality, in load order.
func (g *Gazetteer) Localities() []*Locality {
	out := make([]*Locality, len(g.localities))
	copy(out, g.localities)
	return out
}

// LoadLine parses one tab-separated gazetteer record (eleven fields:
// id, name, altnames, original-script name, type, population, lat,
// long, div1, div2, div3; lat/long are integers scaled by 100) and
// registers it. Records without coordinates are skipped; a skip is not
// an error.
func (g *Gazetteer) LoadLine(line string) error {
	fields := strings.Split(line, "\t")
	if len(fields) < 11 {
		return errFieldCount(len(fields))
	}

	latRaw, longRaw := strings.TrimSpace(fields[6]), strings.TrimSpace(fields[7])
	if latRaw == "" || longRaw == "" {
		return nil
	}
	latInt, err := strconv.Atoi(latRaw)
	if err != nil {
		return nil
	}
	longInt, err := strconv.Atoi(longRaw)
	if err != nil {
		return nil
	}

	name := fields[1]
	var altnames []string
	if raw := strings.TrimSpace(fields[2]); raw != "" {
		for _, a := range strings.Split(raw, ", ") {
			if a != "" {
				altnames = append(altnames, a)
			}
		}
	}
	typ := fields[4]
	path := trimTrailingEmpty([]string{fields[8], fields[9], fields[10]})

	loc := &Locality{
		Name:     name,
		Altnames: altnames,
		Type:     typ,
		Coord:    geo.Coord{Lat: float64(latInt) / 100.0, Long: float64(longInt) / 100.0},
	}
	g.addLocality(loc, path)
	return nil
}

type errFieldCount int

func (e errFieldCount) Error() string {
	return "gazetteer: expected 11 tab-separated fields, got " + strconv.Itoa(int(e))
}

func trimTrailingEmpty(path []string) []string {
	end := len(path)
	for end > 0 && strings.TrimSpace(path[end-1]) == "" {
		end--
	}
	return path[:end]
}

func (g *Gazetteer) addLocality(loc *Locality, path []string) {
	loc.Div = g.ensureDivision(path)
	loc.Div.Locs = append(loc.Div.Locs, loc)
	// Outlier filtering is a disabled no-op: every loc is "good".
	loc.Div.GoodLocs = append(loc.Div.GoodLocs, loc)

	for _, n := range append([]string{loc.Name}, loc.Altnames...) {
		key := strings.ToLower(n)
		g.localityIndex[key] = append(g.localityIndex[key], loc)
	}

	g.localities = append(g.localities, loc)
	g.indexCell(loc)
	g.matchLocality(loc)
}

// ensureDivision creates (if needed) a Division for every prefix of
// path, registering each prefix's own name in the lowercase
// toponym→division index, and returns the full-path Division.
func (g *Gazetteer) ensureDivision(path []string) *Division {
	var d *Division
	for k := 1; k <= len(path); k++ {
		prefix := path[:k]
		key := strings.Join(prefix, "\x1f")
		existing, ok := g.divisions[key]
		if !ok {
			existing = &Division{Path: append([]string(nil), prefix...)}
			g.divisions[key] = existing
			nameKey := strings.ToLower(prefix[len(prefix)-1])
			g.divisionIndex[nameKey] = append(g.divisionIndex[nameKey], existing)
		}
		d = existing
	}
	if d == nil {
		// Empty path: every locality still belongs to some (possibly
		// nameless) division so downstream boundary/match logic has a
		// home for it.
		key := ""
		existing, ok := g.divisions[key]
		if !ok {
			existing = &Division{}
			g.divisions[key] = existing
		}
		d = existing
	}
	return d
}

func (g *Gazetteer) indexCell(loc *Locality) {
	ll := h3.NewLatLng(loc.Coord.Lat, loc.Coord.Long)
	cell, err := h3.LatLngToCell(ll, h3Resolution)
	if err != nil {
		return
	}
	g.cellIndex[cell] = append(g.cellIndex[cell], loc)
}

// FinishLoad computes every Division's bounding box (the hull of its
// GoodLocs) and resolves its best-matching article, once every
// gazetteer record has been loaded.
func (g *Gazetteer) FinishLoad() {
	for _, d := range g.divisions {
		coords := make([]geo.Coord, 0, len(d.GoodLocs))
		for _, loc := range d.GoodLocs {
			coords = append(coords, loc.Coord)
		}
		d.Boundary = geo.HullOf(coords)
		d.Match = g.matchDivisionToArticle(d)
		if d.Match != nil {
			d.Match.Location = d
		}
	}
}

// WordDist lazily builds and caches the division-wide word
// distribution used by the region-based Naive Bayes toponym scorer: the
// combined, training-split-only distribution of the division's own
// matched article plus every one of its localities' matched articles.
// global is the corpus-wide distribution to finish against.
func (d *Division) WordDist(global *worddist.WordDist) *worddist.WordDist {
	if d.worddist != nil {
		return d.worddist
	}
	agg := worddist.New()
	add := func(a *article.Article) {
		if a == nil || a.Dist == nil || !a.Dist.Finished() || a.Split != article.SplitTraining {
			return
		}
		_ = agg.AddWordDistribution(a.Dist)
	}
	add(d.Match)
	for _, loc := range d.GoodLocs {
		add(loc.Match)
	}
	_ = agg.Finish(global)
	d.worddist = agg
	return d.worddist
}

// matchDivisionToArticle scans every coordinate-bearing article for
// one inside d's boundary, preferring the one with more incoming
// links. Exact containment is required, so this is a brute
// scan rather than an H3-approximated one.
func (g *Gazetteer) matchDivisionToArticle(d *Division) *article.Article {
	if d.Boundary.IsEmpty() {
		return nil
	}
	var best *article.Article
	bestLinks := -1
	for _, a := range g.articles.All() {
		if a.Coord == nil || !d.Boundary.Contains(*a.Coord) {
			continue
		}
		links := 0
		if a.IncomingLinks != nil {
			links = *a.IncomingLinks
		}
		if links > bestLinks {
			bestLinks = links
			best = a
		}
	}
	return best
}
