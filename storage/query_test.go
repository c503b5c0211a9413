package storage

import (
	"slices"
	"testing"

	"github.com/poiesic/haystack/core"
	"github.com/stretchr/testify/assert"
)

func TestFilter_Matches(t *testing.T) {
	const a, b, c core.ID = 1, 2, 3

	both := &core.Posting{ModelType: "article", ModelID: "1", TokenIDs: []core.ID{a, b}}
	onlyA := &core.Posting{ModelType: "article", ModelID: "2", TokenIDs: []core.ID{a}}
	onlyC := &core.Posting{ModelType: "article", ModelID: "3", TokenIDs: []core.ID{c}}
	all3 := &core.Posting{ModelType: "note", ModelID: "4", TokenIDs: []core.ID{a, b, c}}

	tests := []struct {
		name    string
		filter  Filter
		posting *core.Posting
		want    bool
	}{
		{"all: superset matches", Filter{Operator: OpAll, TokenIDs: []core.ID{a, b}}, both, true},
		{"all: strict superset matches", Filter{Operator: OpAll, TokenIDs: []core.ID{a, b}}, all3, true},
		{"all: subset does not match", Filter{Operator: OpAll, TokenIDs: []core.ID{a, b}}, onlyA, false},
		{"any: intersecting matches", Filter{Operator: OpAny, TokenIDs: []core.ID{a, b}}, onlyA, true},
		{"any: disjoint does not match", Filter{Operator: OpAny, TokenIDs: []core.ID{a, b}}, onlyC, false},
		{"empty token set under any", Filter{Operator: OpAny}, all3, false},
		{"empty token set under all", Filter{Operator: OpAll}, all3, false},
		{"nil posting", Filter{Operator: OpAny, TokenIDs: []core.ID{a}}, nil, false},
		{"model type included", Filter{TokenIDs: []core.ID{a}, ModelTypes: []string{"note", "article"}}, onlyA, true},
		{"model type excluded", Filter{TokenIDs: []core.ID{a}, ModelTypes: []string{"note"}}, onlyA, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(tt.posting))
		})
	}
}

func TestFilter_MatchesFacets(t *testing.T) {
	posting := &core.Posting{
		ModelType: "product",
		ModelID:   "1",
		TokenIDs:  []core.ID{1},
		Facets:    []core.Facet{{"color": "red", "size": "s"}, {"color": "blue", "size": "xl"}},
	}

	filter := Filter{TokenIDs: []core.ID{1}, Facets: core.Facet{"color": "blue", "size": "xl"}}
	assert.True(t, filter.Matches(posting))

	filter.Facets = core.Facet{"color": "red", "size": "xl"}
	assert.False(t, filter.Matches(posting), "criteria must be satisfied by a single element")
}

func TestOrder_Compare(t *testing.T) {
	const t1, t2 core.ID = 10, 20

	order := Order{
		{Field: SortScore, Descending: true},
		{Field: SortKeywordScore, Token: t1, Descending: true},
		{Field: SortKeywordScore, Token: t2, Descending: true},
		{Field: SortFulltextScore, Token: t1, Descending: true},
	}

	postings := []*core.Posting{
		{ModelType: "a", ModelID: "low-score", Score: 0, KeywordScores: map[core.ID]float64{t1: 9}},
		{ModelType: "a", ModelID: "fulltext", Score: 1, FulltextScores: map[core.ID]float64{t1: 5}},
		{ModelType: "a", ModelID: "kw-t2", Score: 1, KeywordScores: map[core.ID]float64{t2: 1}},
		{ModelType: "a", ModelID: "kw-t1", Score: 1, KeywordScores: map[core.ID]float64{t1: 1}},
		{ModelType: "a", ModelID: "tie-b", Score: 1},
		{ModelType: "a", ModelID: "tie-a", Score: 1},
		{ModelType: "a", ModelID: "high-score", Score: 2},
	}

	slices.SortFunc(postings, order.Compare)

	var ids []string
	for _, p := range postings {
		ids = append(ids, p.ModelID)
	}
	assert.Equal(t, []string{"high-score", "kw-t1", "kw-t2", "fulltext", "tie-a", "tie-b", "low-score"}, ids)
}

func TestOrder_String(t *testing.T) {
	order := Order{
		{Field: SortScore, Descending: true},
		{Field: SortKeywordScore, Token: 7, Descending: true},
		{Field: SortFulltextScore, Token: 7},
	}
	assert.Equal(t, "score desc, keyword_scores.7 desc, fulltext_scores.7 asc", order.String())
	assert.Equal(t, "all", OpAll.String())
	assert.Equal(t, "any", OpAny.String())
}
