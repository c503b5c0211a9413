package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantSame bool
	}{
		{
			name:     "same content produces same ID",
			content:  "search",
			wantSame: true,
		},
		{
			name:     "empty string",
			content:  "",
			wantSame: true,
		},
		{
			name:     "long content",
			content:  "This is a much longer piece of content that should still hash consistently",
			wantSame: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if tt.wantSame && id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("dog")
	id2 := IDFromContent("cat")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestFacet_Matches(t *testing.T) {
	facet := Facet{"color": "red", "size": "xl"}

	tests := []struct {
		name     string
		criteria Facet
		want     bool
	}{
		{"empty criteria", Facet{}, true},
		{"nil criteria", nil, true},
		{"single pair", Facet{"color": "red"}, true},
		{"all pairs", Facet{"color": "red", "size": "xl"}, true},
		{"wrong value", Facet{"color": "blue"}, false},
		{"missing key", Facet{"shape": "round"}, false},
		{"one pair wrong", Facet{"color": "red", "size": "s"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := facet.Matches(tt.criteria); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPosting_HasAnyFacet(t *testing.T) {
	posting := &Posting{
		ModelType: "article",
		ModelID:   "1",
		Facets: []Facet{
			{"color": "red", "size": "s"},
			{"color": "blue", "size": "xl"},
		},
	}

	// Both pairs must come from the same element.
	if posting.HasAnyFacet(Facet{"color": "red", "size": "xl"}) {
		t.Errorf("HasAnyFacet() matched pairs spread across elements")
	}
	if !posting.HasAnyFacet(Facet{"color": "blue", "size": "xl"}) {
		t.Errorf("HasAnyFacet() did not match a single element")
	}
	if (&Posting{}).HasAnyFacet(Facet{"color": "red"}) {
		t.Errorf("HasAnyFacet() matched a posting without facets")
	}
}

func TestPosting_HasToken(t *testing.T) {
	posting := &Posting{TokenIDs: []ID{3, 7, 11}}

	for _, id := range []ID{3, 7, 11} {
		if !posting.HasToken(id) {
			t.Errorf("HasToken(%d) = false, want true", id)
		}
	}
	if posting.HasToken(5) {
		t.Errorf("HasToken(5) = true, want false")
	}
}

func TestNewHit(t *testing.T) {
	identity := IdentityHit{ModelType: "article", ModelID: "1"}

	hit, err := NewHit(identity, "record")
	if err != nil {
		t.Fatalf("NewHit() error = %v", err)
	}
	if hit.Identity() != identity {
		t.Errorf("Identity() = %v, want %v", hit.Identity(), identity)
	}
	if hit.ModelType() != "article" || hit.ModelID() != "1" {
		t.Errorf("accessors returned %q/%q", hit.ModelType(), hit.ModelID())
	}
	if hit.Record() != "record" {
		t.Errorf("Record() = %v", hit.Record())
	}

	if _, err := NewHit(identity, nil); err != ErrMissingRecord {
		t.Errorf("NewHit(nil) error = %v, want %v", err, ErrMissingRecord)
	}
}

func TestAsIdentifiable(t *testing.T) {
	hits := []IdentityHit{{ModelType: "a", ModelID: "1"}, {ModelType: "b", ModelID: "2"}}

	items := AsIdentifiable(hits)
	if len(items) != 2 {
		t.Fatalf("AsIdentifiable() returned %d items", len(items))
	}
	for i, item := range items {
		if item.Identity() != hits[i] {
			t.Errorf("item %d = %v, want %v", i, item.Identity(), hits[i])
		}
	}
}

func TestDocument_Indexable(t *testing.T) {
	doc := &Document{
		Type:  "article",
		Id:    "42",
		Title: "Haystack",
		Body:  "needle in a haystack",
		Tags:  []string{"search"},
		Boost: 2,
	}

	keywords := doc.SearchKeywords()
	if len(keywords) != 2 || keywords[0] != "Haystack" || keywords[1] != "search" {
		t.Errorf("SearchKeywords() = %v", keywords)
	}
	if fulltext := doc.SearchFulltext(); len(fulltext) != 1 {
		t.Errorf("SearchFulltext() = %v", fulltext)
	}
	if (&Document{}).SearchFulltext() != nil {
		t.Errorf("SearchFulltext() on empty body should be nil")
	}
	if doc.SearchScore() != 2 {
		t.Errorf("SearchScore() = %v", doc.SearchScore())
	}
}
