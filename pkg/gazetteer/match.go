package gazetteer

import (
	"geotagger/pkg/article"
	"geotagger/pkg/geo"
)

// matchLocality attempts to resolve loc to an Article Table entry by
// expanding a distance ring: radius 5 miles, then doubling, until
// maxDistForCloseMatch is exceeded. The first radius that yields any
// passing candidate wins; ties within a radius go to the closer
// candidate.
func (g *Gazetteer) matchLocality(loc *Locality) {
	candidates := g.candidatesFor(loc)
	if len(candidates) == 0 {
		return
	}

	for radius := startRadius; radius <= g.maxDistForCloseMatch; radius *= 2 {
		if best := bestCandidate(loc, candidates, radius); best != nil {
			loc.Match = best
			best.Location = loc
			return
		}
	}
}

// candidatesFor gathers, in order, every distinct coordinate-bearing
// article reachable through the three name-based candidate lists
// exact lowercased name, (name, enclosing-division) compound
// key for every division in loc's path, and short form, falling back
// to the same three lookups against each of loc's altnames in turn
// when the canonical name finds nothing.
func (g *Gazetteer) candidatesFor(loc *Locality) []*article.Article {
	var out []*article.Article
	seen := make(map[*article.Article]bool)
	add := func(a *article.Article) {
		if a == nil || a.Coord == nil || seen[a] {
			return
		}
		seen[a] = true
		out = append(out, a)
	}

	candidatesForName := func(name string) {
		for _, a := range g.articles.LookupByLowerName(name) {
			add(a)
		}
		if loc.Div != nil {
			for _, divName := range loc.Div.Path {
				if a, ok := g.articles.LookupByShortDiv(name, divName); ok {
					add(a)
				}
			}
		}
		for _, a := range g.articles.LookupByShortForm(name) {
			add(a)
		}
	}

	candidatesForName(loc.Name)
	if len(out) == 0 {
		for _, altname := range loc.Altnames {
			candidatesForName(altname)
		}
	}
	return out
}

// bestCandidate returns the candidate that passes check_match (its
// distance to loc is within radius) and wins prefer_match (the
// smallest such distance), or nil if none pass.
func bestCandidate(loc *Locality, candidates []*article.Article, radius float64) *article.Article {
	var best *article.Article
	var bestDist float64
	for _, a := range candidates {
		d := geo.SphereDist(loc.Coord, *a.Coord)
		if d > radius {
			continue
		}
		if best == nil || d < bestDist {
			best = a
			bestDist = d
		}
	}
	return best
}
