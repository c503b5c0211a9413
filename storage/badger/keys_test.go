package badger

import (
	"bytes"
	"testing"

	"github.com/poiesic/haystack/core"
	"github.com/stretchr/testify/assert"
)

func TestTokenPostingKey_RoundTrip(t *testing.T) {
	ref := core.IdentityHit{ModelType: "article", ModelID: "a:1/with\x00nul-in-id"}
	key := makeTokenPostingKey(core.ID(42), ref)

	assert.True(t, bytes.HasPrefix(key, makePartialTokenPostingKey(core.ID(42))))

	parsed, ok := parseTokenPostingKey(key)
	assert.True(t, ok)
	assert.Equal(t, ref, parsed)
}

func TestParseTokenPostingKey_Malformed(t *testing.T) {
	_, ok := parseTokenPostingKey([]byte("tpost:"))
	assert.False(t, ok)

	_, ok = parseTokenPostingKey(makePartialTokenPostingKey(1))
	assert.False(t, ok)
}

func TestTokenKeys_SortByID(t *testing.T) {
	// BigEndian keeps inverted lists of different tokens apart and ordered.
	low := makePartialTokenPostingKey(core.ID(1))
	high := makePartialTokenPostingKey(core.ID(256))
	assert.Negative(t, bytes.Compare(low, high))
	assert.Negative(t, bytes.Compare(makeTokenKey(1), makeTokenKey(256)))
}

func TestDocumentTypePrefix(t *testing.T) {
	key := makeDocumentKey(core.IdentityHit{ModelType: "article", ModelID: "1"})

	assert.True(t, bytes.HasPrefix(key, makeDocumentTypePrefix("article")))
	assert.False(t, bytes.HasPrefix(key, makeDocumentTypePrefix("art")))
	assert.True(t, bytes.HasPrefix(key, makeDocumentTypePrefix("")))
}
