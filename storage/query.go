package storage

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/poiesic/haystack/core"
)

// Operator selects how a filter's token set is matched against a posting.
type Operator int

const (
	// OpAny matches postings containing at least one of the tokens.
	OpAny Operator = iota
	// OpAll matches postings containing every token.
	OpAll
)

func (o Operator) String() string {
	switch o {
	case OpAny:
		return "any"
	case OpAll:
		return "all"
	default:
		return fmt.Sprintf("Operator(%d)", int(o))
	}
}

// Filter selects postings.
// An empty TokenIDs set matches nothing, regardless of operator.
type Filter struct {
	Operator   Operator
	TokenIDs   []core.ID
	Facets     core.Facet // Matched against a single facet element of the posting
	ModelTypes []string   // Posting type must be one of these; empty means any type
}

// Matches reports whether the posting satisfies every clause of the filter.
func (f Filter) Matches(p *core.Posting) bool {
	if p == nil || len(f.TokenIDs) == 0 {
		return false
	}

	switch f.Operator {
	case OpAll:
		for _, id := range f.TokenIDs {
			if !p.HasToken(id) {
				return false
			}
		}
	default:
		if !slices.ContainsFunc(f.TokenIDs, p.HasToken) {
			return false
		}
	}

	if len(f.Facets) > 0 && !p.HasAnyFacet(f.Facets) {
		return false
	}

	if len(f.ModelTypes) > 0 && !slices.Contains(f.ModelTypes, p.ModelType) {
		return false
	}

	return true
}

// SortField names a sortable posting field.
type SortField int

const (
	SortScore SortField = iota
	SortKeywordScore
	SortFulltextScore
)

// SortKey orders postings by one field. Token selects the map entry for
// SortKeywordScore and SortFulltextScore.
type SortKey struct {
	Field      SortField
	Token      core.ID
	Descending bool
}

func (k SortKey) String() string {
	dir := "asc"
	if k.Descending {
		dir = "desc"
	}
	switch k.Field {
	case SortKeywordScore:
		return fmt.Sprintf("keyword_scores.%d %s", k.Token, dir)
	case SortFulltextScore:
		return fmt.Sprintf("fulltext_scores.%d %s", k.Token, dir)
	default:
		return "score " + dir
	}
}

func (k SortKey) value(p *core.Posting) float64 {
	switch k.Field {
	case SortKeywordScore:
		return p.KeywordScores[k.Token]
	case SortFulltextScore:
		return p.FulltextScores[k.Token]
	default:
		return p.Score
	}
}

// Order is an ordered list of sort keys, most significant first.
type Order []SortKey

// Compare orders two postings by the sort keys, then by (ModelType, ModelID)
// ascending so that the result is a total order.
func (o Order) Compare(a, b *core.Posting) int {
	for _, key := range o {
		c := cmp.Compare(key.value(a), key.value(b))
		if key.Descending {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	if c := strings.Compare(a.ModelType, b.ModelType); c != 0 {
		return c
	}
	return strings.Compare(a.ModelID, b.ModelID)
}

func (o Order) String() string {
	parts := make([]string, len(o))
	for i, key := range o {
		parts[i] = key.String()
	}
	return strings.Join(parts, ", ")
}

// IdentityProjection is the only projection supported by the executor.
var IdentityProjection = []string{"model_type", "model_id"}

// QuerySpec is everything an executor needs to run a query.
type QuerySpec struct {
	Filter     Filter
	Order      Order
	Projection []string
}
