package core

import (
	"fmt"
	"math"
	"slices"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the records persisted by the index store.
// Each serializer exposes Size, Marshal and Unmarshal with the mus-go calling convention.
var (
	IDMUS       = idMUS{}
	CountMUS    = countMUS{}
	TokenMUS    = tokenMUS{}
	PostingMUS  = postingMUS{}
	DocumentMUS = documentMUS{}
)

type idMUS struct{}

func (idMUS) Size(v ID) int {
	return varint.Uint64.Size(uint64(v))
}

func (idMUS) Marshal(v ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (idMUS) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

type countMUS struct{}

func (countMUS) Size(v int64) int {
	return varint.Int64.Size(v)
}

func (countMUS) Marshal(v int64, bs []byte) int {
	return varint.Int64.Marshal(v, bs)
}

func (countMUS) Unmarshal(bs []byte) (int64, int, error) {
	return varint.Int64.Unmarshal(bs)
}

type tokenMUS struct{}

func (tokenMUS) Size(v Token) int {
	return IDMUS.Size(v.Id) +
		ord.String.Size(v.Value) +
		varint.Int64.Size(v.DocumentFrequency)
}

func (tokenMUS) Marshal(v Token, bs []byte) int {
	n := IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Value, bs[n:])
	n += varint.Int64.Marshal(v.DocumentFrequency, bs[n:])
	return n
}

// Unmarshal decodes a token. CorpusTotal is not persisted with the token and
// is left zero.
func (tokenMUS) Unmarshal(bs []byte) (v Token, n int, err error) {
	var n1 int
	if v.Id, n1, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	n += n1
	if v.Value, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	v.DocumentFrequency, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	return
}

type postingMUS struct{}

func (postingMUS) Size(v Posting) int {
	size := ord.String.Size(v.ModelType) + ord.String.Size(v.ModelID)
	size += varint.Int.Size(len(v.TokenIDs))
	for _, id := range v.TokenIDs {
		size += IDMUS.Size(id)
	}
	size += scoresSize(v.KeywordScores)
	size += scoresSize(v.FulltextScores)
	size += facetsSize(v.Facets)
	size += float64Size(v.Score)
	return size
}

func (postingMUS) Marshal(v Posting, bs []byte) int {
	n := ord.String.Marshal(v.ModelType, bs)
	n += ord.String.Marshal(v.ModelID, bs[n:])
	n += varint.Int.Marshal(len(v.TokenIDs), bs[n:])
	for _, id := range v.TokenIDs {
		n += IDMUS.Marshal(id, bs[n:])
	}
	n += marshalScores(v.KeywordScores, bs[n:])
	n += marshalScores(v.FulltextScores, bs[n:])
	n += marshalFacets(v.Facets, bs[n:])
	n += marshalFloat64(v.Score, bs[n:])
	return n
}

func (postingMUS) Unmarshal(bs []byte) (v Posting, n int, err error) {
	var n1 int
	if v.ModelType, n1, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	n += n1
	if v.ModelID, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	var count int
	if count, n1, err = unmarshalLength(bs[n:]); err != nil {
		return
	}
	n += n1
	if count > 0 {
		v.TokenIDs = make([]ID, count)
		for i := range count {
			if v.TokenIDs[i], n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
				return
			}
			n += n1
		}
	}
	if v.KeywordScores, n1, err = unmarshalScores(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.FulltextScores, n1, err = unmarshalScores(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Facets, n1, err = unmarshalFacets(bs[n:]); err != nil {
		return
	}
	n += n1
	v.Score, n1, err = unmarshalFloat64(bs[n:])
	n += n1
	return
}

type documentMUS struct{}

func (documentMUS) Size(v Document) int {
	size := ord.String.Size(v.Type) + ord.String.Size(v.Id)
	size += ord.String.Size(v.Title) + ord.String.Size(v.Body)
	size += stringsSize(v.Tags)
	size += facetsSize(v.Facets)
	size += float64Size(v.Boost)
	return size
}

func (documentMUS) Marshal(v Document, bs []byte) int {
	n := ord.String.Marshal(v.Type, bs)
	n += ord.String.Marshal(v.Id, bs[n:])
	n += ord.String.Marshal(v.Title, bs[n:])
	n += ord.String.Marshal(v.Body, bs[n:])
	n += marshalStrings(v.Tags, bs[n:])
	n += marshalFacets(v.Facets, bs[n:])
	n += marshalFloat64(v.Boost, bs[n:])
	return n
}

func (documentMUS) Unmarshal(bs []byte) (v Document, n int, err error) {
	var n1 int
	for _, field := range []*string{&v.Type, &v.Id, &v.Title, &v.Body} {
		if *field, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
			return
		}
		n += n1
	}
	if v.Tags, n1, err = unmarshalStrings(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Facets, n1, err = unmarshalFacets(bs[n:]); err != nil {
		return
	}
	n += n1
	v.Boost, n1, err = unmarshalFloat64(bs[n:])
	n += n1
	return
}

func unmarshalLength(bs []byte) (int, int, error) {
	count, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return 0, n, err
	}
	if count < 0 {
		return 0, n, fmt.Errorf("%w: negative length %d", ErrCorruptRecord, count)
	}
	return count, n, nil
}

func float64Size(v float64) int {
	return varint.Uint64.Size(math.Float64bits(v))
}

func marshalFloat64(v float64, bs []byte) int {
	return varint.Uint64.Marshal(math.Float64bits(v), bs)
}

func unmarshalFloat64(bs []byte) (float64, int, error) {
	bits, n, err := varint.Uint64.Unmarshal(bs)
	return math.Float64frombits(bits), n, err
}

// Score maps are written in ascending key order so equal maps encode identically.
func scoresSize(m map[ID]float64) int {
	size := varint.Int.Size(len(m))
	for id, score := range m {
		size += IDMUS.Size(id) + float64Size(score)
	}
	return size
}

func marshalScores(m map[ID]float64, bs []byte) int {
	n := varint.Int.Marshal(len(m), bs)
	keys := make([]ID, 0, len(m))
	for id := range m {
		keys = append(keys, id)
	}
	slices.Sort(keys)
	for _, id := range keys {
		n += IDMUS.Marshal(id, bs[n:])
		n += marshalFloat64(m[id], bs[n:])
	}
	return n
}

func unmarshalScores(bs []byte) (map[ID]float64, int, error) {
	count, n, err := unmarshalLength(bs)
	if err != nil || count == 0 {
		return nil, n, err
	}
	m := make(map[ID]float64, count)
	for range count {
		id, n1, err := IDMUS.Unmarshal(bs[n:])
		if err != nil {
			return nil, n, err
		}
		n += n1
		score, n1, err := unmarshalFloat64(bs[n:])
		if err != nil {
			return nil, n, err
		}
		n += n1
		m[id] = score
	}
	return m, n, nil
}

func stringsSize(s []string) int {
	size := varint.Int.Size(len(s))
	for _, str := range s {
		size += ord.String.Size(str)
	}
	return size
}

func marshalStrings(s []string, bs []byte) int {
	n := varint.Int.Marshal(len(s), bs)
	for _, str := range s {
		n += ord.String.Marshal(str, bs[n:])
	}
	return n
}

func unmarshalStrings(bs []byte) ([]string, int, error) {
	count, n, err := unmarshalLength(bs)
	if err != nil || count == 0 {
		return nil, n, err
	}
	s := make([]string, count)
	for i := range count {
		str, n1, err := ord.String.Unmarshal(bs[n:])
		if err != nil {
			return nil, n, err
		}
		n += n1
		s[i] = str
	}
	return s, n, nil
}

func facetSize(f Facet) int {
	size := varint.Int.Size(len(f))
	for k, v := range f {
		size += ord.String.Size(k) + ord.String.Size(v)
	}
	return size
}

func marshalFacet(f Facet, bs []byte) int {
	n := varint.Int.Marshal(len(f), bs)
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		n += ord.String.Marshal(k, bs[n:])
		n += ord.String.Marshal(f[k], bs[n:])
	}
	return n
}

func unmarshalFacet(bs []byte) (Facet, int, error) {
	count, n, err := unmarshalLength(bs)
	if err != nil {
		return nil, n, err
	}
	f := make(Facet, count)
	for range count {
		k, n1, err := ord.String.Unmarshal(bs[n:])
		if err != nil {
			return nil, n, err
		}
		n += n1
		v, n1, err := ord.String.Unmarshal(bs[n:])
		if err != nil {
			return nil, n, err
		}
		n += n1
		f[k] = v
	}
	return f, n, nil
}

func facetsSize(facets []Facet) int {
	size := varint.Int.Size(len(facets))
	for _, f := range facets {
		size += facetSize(f)
	}
	return size
}

func marshalFacets(facets []Facet, bs []byte) int {
	n := varint.Int.Marshal(len(facets), bs)
	for _, f := range facets {
		n += marshalFacet(f, bs[n:])
	}
	return n
}

func unmarshalFacets(bs []byte) ([]Facet, int, error) {
	count, n, err := unmarshalLength(bs)
	if err != nil || count == 0 {
		return nil, n, err
	}
	facets := make([]Facet, count)
	for i := range count {
		f, n1, err := unmarshalFacet(bs[n:])
		if err != nil {
			return nil, n, err
		}
		n += n1
		facets[i] = f
	}
	return facets, n, nil
}
