package core

import (
	"encoding/binary"
	"slices"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for index entities.
// Token IDs are derived from the token value with content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// The same content always produces the same ID.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Token is a normalized, stemmed search unit known to the index.
// Tokens are owned by the index store and are read-only to search.
type Token struct {
	Id                ID
	Value             string // Normalized value, unique across the index
	DocumentFrequency int64  // Number of postings containing this token
	CorpusTotal       int64  // Number of postings in the index when the token was read
}

// Facet is one categorical element attached to an indexed document,
// e.g. {"color": "red", "size": "xl"}.
type Facet map[string]string

// Matches reports whether every key/value pair in criteria is present in f.
// An empty criteria matches any facet.
func (f Facet) Matches(criteria Facet) bool {
	for k, v := range criteria {
		got, ok := f[k]
		if !ok || got != v {
			return false
		}
	}
	return true
}

// Posting is the index entry for one domain record.
// There is at most one posting per (ModelType, ModelID).
type Posting struct {
	ModelType      string
	ModelID        string
	TokenIDs       []ID           // Sorted ascending, no duplicates
	KeywordScores  map[ID]float64 // Token ID -> keyword relevance
	FulltextScores map[ID]float64 // Token ID -> fulltext relevance
	Facets         []Facet
	Score          float64
}

// Identity returns the identity projection of the posting.
func (p *Posting) Identity() IdentityHit {
	return IdentityHit{ModelType: p.ModelType, ModelID: p.ModelID}
}

// HasToken reports whether the posting contains the token.
func (p *Posting) HasToken(id ID) bool {
	_, found := slices.BinarySearch(p.TokenIDs, id)
	return found
}

// HasAnyFacet reports whether at least one facet element matches criteria.
func (p *Posting) HasAnyFacet(criteria Facet) bool {
	for _, f := range p.Facets {
		if f.Matches(criteria) {
			return true
		}
	}
	return false
}

// IdentityHit is the minimal projection returned by a query.
type IdentityHit struct {
	ModelType string
	ModelID   string
}

// Identity implements Identifiable.
func (h IdentityHit) Identity() IdentityHit {
	return h
}

// IsZero reports whether the hit carries no identity.
func (h IdentityHit) IsZero() bool {
	return h.ModelType == "" && h.ModelID == ""
}

// Identifiable is implemented by anything that can be traced back to an index entry.
type Identifiable interface {
	Identity() IdentityHit
}

// AsIdentifiable converts a slice of concrete identifiables for use with APIs
// that accept []Identifiable.
func AsIdentifiable[T Identifiable](items []T) []Identifiable {
	out := make([]Identifiable, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}

// Hit is an identity hit with its resolved domain record.
// Its fields are only reachable through accessors, so a Hit cannot change once built.
type Hit struct {
	identity IdentityHit
	record   any
}

// NewHit pairs an identity with its resolved record.
// Returns ErrMissingRecord if record is nil.
func NewHit(identity IdentityHit, record any) (Hit, error) {
	if record == nil {
		return Hit{}, ErrMissingRecord
	}
	return Hit{identity: identity, record: record}, nil
}

// Identity implements Identifiable.
func (h Hit) Identity() IdentityHit {
	return h.identity
}

// ModelType returns the model type of the hit.
func (h Hit) ModelType() string {
	return h.identity.ModelType
}

// ModelID returns the model ID of the hit.
func (h Hit) ModelID() string {
	return h.identity.ModelID
}

// Record returns the resolved domain record.
func (h Hit) Record() any {
	return h.record
}

// Indexable is implemented by domain records that can be added to the search index.
type Indexable interface {
	SearchModelType() string
	SearchModelID() string
	// SearchKeywords returns short, high-signal strings such as titles or tags.
	SearchKeywords() []string
	// SearchFulltext returns the body text to index.
	SearchFulltext() []string
	SearchFacets() []Facet
	// SearchScore returns a static boost applied before any token score.
	SearchScore() float64
}

// Document is a general purpose domain record usable with the bundled document store.
type Document struct {
	Type   string
	Id     string
	Title  string
	Body   string
	Tags   []string
	Facets []Facet
	Boost  float64
}

var _ Indexable = (*Document)(nil)

func (d *Document) SearchModelType() string { return d.Type }
func (d *Document) SearchModelID() string   { return d.Id }
func (d *Document) SearchFacets() []Facet   { return d.Facets }
func (d *Document) SearchScore() float64    { return d.Boost }

func (d *Document) SearchKeywords() []string {
	keywords := make([]string, 0, len(d.Tags)+1)
	if d.Title != "" {
		keywords = append(keywords, d.Title)
	}
	return append(keywords, d.Tags...)
}

func (d *Document) SearchFulltext() []string {
	if d.Body == "" {
		return nil
	}
	return []string{d.Body}
}
