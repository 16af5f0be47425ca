// Package article implements the Article Table: name/alias indexing,
// redirect flattening, and training/dev/test partitioning over the
// corpus of encyclopedia articles.
package article

import (
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"geotagger/pkg/geo"
	"geotagger/pkg/worddist"
)

// Split identifies which partition an article belongs to.
type Split int

const (
	SplitNone Split = iota
	SplitTraining
	SplitDev
	SplitTest
)

func (s Split) String() string {
	switch s {
	case SplitTraining:
		return "training"
	case SplitDev:
		return "dev"
	case SplitTest:
		return "test"
	default:
		return "none"
	}
}

// Article is one encyclopedia record. Redirect records are flattened
// away after load: a non-empty Redirect on a record returned from the
// Table means the caller is holding a stale reference, never a live
// one (the table itself never hands one back, see Table.FinishLoad).
type Article struct {
	ID            int64
	Title         string
	Namespace     string
	Redirect      string
	Coord         *geo.Coord
	Split         Split
	IncomingLinks *int
	Dist          *worddist.WordDist
	StatRegion    *geo.TileIndex

	// Location is set by pkg/gazetteer when a gazetteer Locality or
	// Division resolves to this article (a Division match overwrites an
	// earlier Locality match, since divisions are resolved last). Left
	// untyped here to avoid an import cycle (gazetteer depends on
	// article, not the reverse); callers in pkg/scoring type-switch it
	// back to *gazetteer.Locality or *gazetteer.Division.
	Location any
}

var lowerCaser = cases.Lower(language.Und)

// shortDivKey is the compound (short-form, disambiguator) index key
// used for "Short, Div" style titles (e.g. "Springfield, Illinois").
type shortDivKey struct {
	short string
	div   string
}

// Table owns all Article records loaded from the corpus.
type Table struct {
	mu sync.RWMutex

	canonical map[string]*Article   // canonicalizeFirstLetter(title) -> article
	lowerName map[string][]*Article // strings.ToLower(title-or-alias) -> articles
	shortForm map[string][]*Article // strings.ToLower(short form) -> articles
	shortDiv  map[shortDivKey]*Article

	bySplit map[Split][]*Article
	all     []*Article

	pendingRedirects []redirectEdge
	globalDist       *worddist.WordDist
}

type redirectEdge struct {
	from string
	to   string
}

// New creates an empty Table.
func New() *Table {
	return &Table{
		canonical: make(map[string]*Article),
		lowerName: make(map[string][]*Article),
		shortForm: make(map[string][]*Article),
		shortDiv:  make(map[shortDivKey]*Article),
		bySplit:   make(map[Split][]*Article),
	}
}

// canonicalizeFirstLetter upper-cases only the first rune of a title,
// implementing the "case-insensitive on first letter only" lookup
// rule: the rest of the title is matched byte-for-byte.
func canonicalizeFirstLetter(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}

// AddArticle registers a non-redirect article under its title.
func (t *Table) AddArticle(a *Article) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.index(a.Title, a)
	t.bySplit[a.Split] = append(t.bySplit[a.Split], a)
	t.all = append(t.all, a)
}

// index registers name as an alias of a (canonical index, lowercase
// full-name index, short-form index, and (short,div) compound index).
func (t *Table) index(name string, a *Article) {
	canon := canonicalizeFirstLetter(name)
	if _, exists := t.canonical[canon]; !exists {
		t.canonical[canon] = a
	}

	lower := lowerCaser.String(name)
	t.lowerName[lower] = append(t.lowerName[lower], a)

	short, div := shortFormOf(name)
	shortLower := lowerCaser.String(short)
	t.shortForm[shortLower] = append(t.shortForm[shortLower], a)
	if div != "" {
		key := shortDivKey{short: shortLower, div: lowerCaser.String(div)}
		if _, exists := t.shortDiv[key]; !exists {
			t.shortDiv[key] = a
		}
	}
}

// shortFormOf splits a title into its short form (text before the
// first comma, or before a parenthesised qualifier) and, for the
// comma form only, the disambiguator that follows the comma.
func shortFormOf(title string) (short, div string) {
	if idx := strings.Index(title, ","); idx >= 0 {
		return strings.TrimSpace(title[:idx]), strings.TrimSpace(title[idx+1:])
	}
	if idx := strings.Index(title, "("); idx >= 0 {
		return strings.TrimSpace(title[:idx]), ""
	}
	return title, ""
}

// AddRedirect queues a redirect from "from" to "to" for resolution by
// FinishLoad. Redirects are never added to a split enumeration.
func (t *Table) AddRedirect(from, to string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pendingRedirects = append(t.pendingRedirects, redirectEdge{from: from, to: to})
}

// RedirectWarning describes a redirect whose target could not be
// resolved (an unknown article title reference).
type RedirectWarning struct {
	From string
	To   string
}

// FinishLoad flattens queued redirects: each redirect's target is
// looked up (chasing through already-resolved redirects, bounded, to
// tolerate redirect chains) and, on success, the redirect's name is
// registered as an alias of the target -- the target absorbs it, per
// the Article invariant. Unresolved redirects are returned as
// warnings and dropped, never added to any index.
func (t *Table) FinishLoad() []RedirectWarning {
	t.mu.Lock()
	defer t.mu.Unlock()

	var warnings []RedirectWarning
	const maxChainDepth = 8

	for _, e := range t.pendingRedirects {
		target := e.to
		var art *Article
		for depth := 0; depth < maxChainDepth; depth++ {
			if a, ok := t.canonical[canonicalizeFirstLetter(target)]; ok {
				art = a
				break
			}
			// No further chain information is tracked beyond the
			// canonical index, so a miss here is terminal.
			break
		}
		if art == nil {
			warnings = append(warnings, RedirectWarning{From: e.from, To: e.to})
			continue
		}
		t.index(e.from, art)
	}
	t.pendingRedirects = nil
	return warnings
}

// Lookup resolves a title to its article, case-insensitive on the
// first letter only.
func (t *Table) Lookup(name string) (*Article, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	a, ok := t.canonical[canonicalizeFirstLetter(name)]
	return a, ok
}

// LookupByLowerName returns every article (or redirect-absorbed alias
// target) whose full name, lowercased, equals name.
func (t *Table) LookupByLowerName(name string) []*Article {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lowerName[lowerCaser.String(name)]
}

// LookupByShortForm returns every article whose short form, lowercased,
// equals name.
func (t *Table) LookupByShortForm(name string) []*Article {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.shortForm[lowerCaser.String(name)]
}

// LookupByShortDiv returns the article indexed under (short, div),
// both lowercased, e.g. ("springfield", "illinois").
func (t *Table) LookupByShortDiv(short, div string) (*Article, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	a, ok := t.shortDiv[shortDivKey{short: lowerCaser.String(short), div: lowerCaser.String(div)}]
	return a, ok
}

// BySplit enumerates articles in the given partition.
func (t *Table) BySplit(s Split) []*Article {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*Article, len(t.bySplit[s]))
	copy(out, t.bySplit[s])
	return out
}

// All returns every non-redirect article in insertion order.
func (t *Table) All() []*Article {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*Article, len(t.all))
	copy(out, t.all)
	return out
}

// GlobalDist returns the corpus-wide word distribution computed by
// FinishDistributions, or nil before it has run.
func (t *Table) GlobalDist() *worddist.WordDist {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.globalDist
}

// FinishDistributions builds the corpus-wide global distribution from
// every article's (still-open) dist, finishes it, then finishes every
// article's own dist against it. Articles without a Dist are skipped.
func (t *Table) FinishDistributions() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	global := worddist.New()
	for _, a := range t.all {
		if a.Dist == nil {
			continue
		}
		if err := global.AddWordDistribution(a.Dist); err != nil {
			return err
		}
	}
	if err := global.Finish(nil); err != nil {
		return err
	}
	t.globalDist = global

	for _, a := range t.all {
		if a.Dist == nil {
			continue
		}
		if err := a.Dist.Finish(global); err != nil {
			return err
		}
	}
	return nil
}

// Stats summarizes per-split article counts, logged after a load pass.
type Stats struct {
	Training, Dev, Test, None int
}

// Stats returns per-split article counts.
func (t *Table) Stats() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return Stats{
		Training: len(t.bySplit[SplitTraining]),
		Dev:      len(t.bySplit[SplitDev]),
		Test:     len(t.bySplit[SplitTest]),
		None:     len(t.bySplit[SplitNone]),
	}
}
