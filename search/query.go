package search

import (
	"strings"

	"github.com/poiesic/haystack/core"
	"github.com/poiesic/haystack/storage"
)

// Options refine a search. At most one of All, Any and In takes effect,
// in that order of precedence.
type Options struct {
	// All requires every token of its text to be present.
	All string
	// Any requires at least one token of its text to be present.
	Any string
	// In is a membership search; it matches like Any.
	In string
	// Facets restricts results to postings with a facet element containing every pair.
	Facets core.Facet
	// Types restricts results to the given model types.
	Types []string
}

// operator returns the matching operator and the text it contributes to the search string.
func (o Options) operator() (storage.Operator, string) {
	switch {
	case o.All != "":
		return storage.OpAll, o.All
	case o.Any != "":
		return storage.OpAny, o.Any
	case o.In != "":
		return storage.OpAny, o.In
	default:
		return storage.OpAny, ""
	}
}

// Query is a fully built search ready for execution.
type Query struct {
	// ID correlates log lines and metrics for one query.
	ID       string
	Text     string
	Operator storage.Operator
	// Tokens are the resolved tokens, rarest first.
	Tokens []*core.Token
	Spec   storage.QuerySpec
}

// Empty reports whether no query token resolved against the index.
// An empty query matches nothing.
func (q *Query) Empty() bool {
	return len(q.Tokens) == 0
}

// combine joins positional terms and operator text into one search string.
func combine(terms []string, extra string) string {
	parts := make([]string, 0, len(terms)+1)
	for _, term := range terms {
		if term = strings.TrimSpace(term); term != "" {
			parts = append(parts, term)
		}
	}
	if extra = strings.TrimSpace(extra); extra != "" {
		parts = append(parts, extra)
	}
	return strings.Join(parts, " ")
}

// buildSpec turns a ranking into the filter, order and projection of a query.
// Order is score, then keyword score of each ranked token, then fulltext
// score of each ranked token, all descending.
func buildSpec(op storage.Operator, ranking *Ranking, opts Options) storage.QuerySpec {
	order := make(storage.Order, 0, 1+2*len(ranking.IDs))
	order = append(order, storage.SortKey{Field: storage.SortScore, Descending: true})
	for _, id := range ranking.IDs {
		order = append(order, storage.SortKey{Field: storage.SortKeywordScore, Token: id, Descending: true})
	}
	for _, id := range ranking.IDs {
		order = append(order, storage.SortKey{Field: storage.SortFulltextScore, Token: id, Descending: true})
	}

	var facets core.Facet
	if len(opts.Facets) > 0 {
		facets = make(core.Facet, len(opts.Facets))
		for k, v := range opts.Facets {
			facets[k] = v
		}
	}

	var types []string
	for _, t := range opts.Types {
		if t != "" {
			types = append(types, t)
		}
	}

	return storage.QuerySpec{
		Filter: storage.Filter{
			Operator:   op,
			TokenIDs:   append([]core.ID(nil), ranking.IDs...),
			Facets:     facets,
			ModelTypes: types,
		},
		Order:      order,
		Projection: storage.IdentityProjection,
	}
}
