package gazetteer

import (
	"strings"

	"geotagger/pkg/article"
)

// ArticleCandidates gathers every article a toponym string could
// plausibly refer to: every article whose full name matches toponym
// case-insensitively, falling back to a short-form match (so
// "Springfield" reaches "Springfield, Illinois") when the full-name
// lookup is empty, plus the matched article (if any) of every
// locality or division registered under that same lowercased name,
// deduplicated.
func (g *Gazetteer) ArticleCandidates(toponym string) []*article.Article {
	key := strings.ToLower(toponym)

	out := append([]*article.Article(nil), g.articles.LookupByLowerName(toponym)...)
	if len(out) == 0 {
		out = append(out, g.articles.LookupByShortForm(toponym)...)
	}
	seen := make(map[*article.Article]bool, len(out))
	for _, a := range out {
		seen[a] = true
	}
	add := func(a *article.Article) {
		if a == nil || seen[a] {
			return
		}
		seen[a] = true
		out = append(out, a)
	}

	for _, loc := range g.localityIndex[key] {
		add(loc.Match)
	}
	for _, div := range g.divisionIndex[key] {
		add(div.Match)
	}
	return out
}
