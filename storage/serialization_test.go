package storage

import (
	"testing"

	"github.com/poiesic/haystack/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"content-based ID", core.IDFromContent("haystack")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestMarshalUnmarshalCount(t *testing.T) {
	for _, count := range []int64{0, 1, 1000, -3} {
		decoded, err := UnmarshalCount(MarshalCount(count))
		require.NoError(t, err)
		assert.Equal(t, count, decoded)
	}
}

func TestUnmarshal_Invalid(t *testing.T) {
	_, err := UnmarshalID([]byte{})
	assert.ErrorIs(t, err, ErrSerializationFailed)

	_, err = UnmarshalToken([]byte{})
	assert.ErrorIs(t, err, ErrSerializationFailed)

	_, err = UnmarshalPosting([]byte{})
	assert.ErrorIs(t, err, ErrSerializationFailed)

	_, err = UnmarshalDocument([]byte{})
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestMarshalUnmarshalToken(t *testing.T) {
	token := &core.Token{
		Id:                core.IDFromContent("needl"),
		Value:             "needl",
		DocumentFrequency: 17,
		CorpusTotal:       1000,
	}

	decoded, err := UnmarshalToken(MarshalToken(token))
	require.NoError(t, err)

	assert.Equal(t, token.Id, decoded.Id)
	assert.Equal(t, token.Value, decoded.Value)
	assert.Equal(t, token.DocumentFrequency, decoded.DocumentFrequency)
	// Corpus total is read from the stats provider, not stored with the token.
	assert.Zero(t, decoded.CorpusTotal)
}

func TestMarshalUnmarshalPosting(t *testing.T) {
	t.Run("full posting", func(t *testing.T) {
		posting := &core.Posting{
			ModelType:      "article",
			ModelID:        "a-1",
			TokenIDs:       []core.ID{1, 5, 9},
			KeywordScores:  map[core.ID]float64{1: 2, 5: 1},
			FulltextScores: map[core.ID]float64{9: 3.5},
			Facets: []core.Facet{
				{"color": "red", "size": "xl"},
				{"color": "blue"},
			},
			Score: -1.25,
		}

		decoded, err := UnmarshalPosting(MarshalPosting(posting))
		require.NoError(t, err)
		assert.Equal(t, posting, decoded)
	})

	t.Run("empty collections decode as nil", func(t *testing.T) {
		posting := &core.Posting{ModelType: "article", ModelID: "a-2"}

		decoded, err := UnmarshalPosting(MarshalPosting(posting))
		require.NoError(t, err)
		assert.Equal(t, posting, decoded)
	})

	t.Run("encoding is deterministic", func(t *testing.T) {
		posting := &core.Posting{
			ModelType:     "article",
			ModelID:       "a-3",
			KeywordScores: map[core.ID]float64{3: 1, 1: 1, 2: 1, 7: 1},
			Facets:        []core.Facet{{"b": "2", "a": "1", "c": "3"}},
		}
		assert.Equal(t, MarshalPosting(posting), MarshalPosting(posting))
	})
}

func TestMarshalUnmarshalDocument(t *testing.T) {
	doc := &core.Document{
		Type:   "article",
		Id:     "42",
		Title:  "Finding needles",
		Body:   "A needle in a haystack is hard to find.",
		Tags:   []string{"search", "needle"},
		Facets: []core.Facet{{"lang": "en"}},
		Boost:  1.5,
	}

	decoded, err := UnmarshalDocument(MarshalDocument(doc))
	require.NoError(t, err)
	assert.Equal(t, doc, decoded)
}
