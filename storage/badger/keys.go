package badger

import (
	"bytes"
	"encoding/binary"

	"github.com/poiesic/haystack/core"
)

// Key prefixes for different data types
const (
	tokenPrefix        = "tok:"
	postingPrefix      = "post:"
	tokenPostingPrefix = "tpost:"
	documentPrefix     = "doc:"
	corpusTotalKey     = "stat:corpus"
)

// identitySeparator splits model type from model ID inside keys.
// Model types are validated to never contain it.
const identitySeparator = 0x00

// makeTokenKey generates a key for a token by ID.
// Format: prefix + tokenID (8 bytes BigEndian)
func makeTokenKey(id core.ID) []byte {
	buf := make([]byte, len(tokenPrefix)+8)
	offset := copy(buf, tokenPrefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// appendIdentity appends modelType NUL modelID to buf.
func appendIdentity(buf []byte, ref core.IdentityHit) []byte {
	buf = append(buf, ref.ModelType...)
	buf = append(buf, identitySeparator)
	return append(buf, ref.ModelID...)
}

// makePostingKey generates the primary key for a posting.
// Format: prefix + modelType + NUL + modelID
func makePostingKey(ref core.IdentityHit) []byte {
	buf := make([]byte, 0, len(postingPrefix)+len(ref.ModelType)+1+len(ref.ModelID))
	buf = append(buf, postingPrefix...)
	return appendIdentity(buf, ref)
}

// makeTokenPostingKey generates an inverted-list key linking a token to a posting.
// Format: prefix + tokenID (8 bytes BigEndian) + modelType + NUL + modelID
func makeTokenPostingKey(tokenID core.ID, ref core.IdentityHit) []byte {
	buf := makePartialTokenPostingKey(tokenID)
	return appendIdentity(buf, ref)
}

// makePartialTokenPostingKey generates the prefix of every inverted-list key for a token.
// Format: prefix + tokenID (8 bytes BigEndian)
func makePartialTokenPostingKey(tokenID core.ID) []byte {
	buf := make([]byte, len(tokenPostingPrefix)+8, len(tokenPostingPrefix)+8+32)
	offset := copy(buf, tokenPostingPrefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(tokenID))
	return buf
}

// parseTokenPostingKey extracts the posting identity from an inverted-list key.
func parseTokenPostingKey(key []byte) (core.IdentityHit, bool) {
	offset := len(tokenPostingPrefix) + 8
	if len(key) < offset {
		return core.IdentityHit{}, false
	}
	modelType, modelID, found := bytes.Cut(key[offset:], []byte{identitySeparator})
	if !found {
		return core.IdentityHit{}, false
	}
	return core.IdentityHit{ModelType: string(modelType), ModelID: string(modelID)}, true
}

// makeDocumentKey generates the key for a sample domain document.
// Format: prefix + modelType + NUL + modelID
func makeDocumentKey(ref core.IdentityHit) []byte {
	buf := make([]byte, 0, len(documentPrefix)+len(ref.ModelType)+1+len(ref.ModelID))
	buf = append(buf, documentPrefix...)
	return appendIdentity(buf, ref)
}

// makeDocumentTypePrefix generates the prefix of every document key of one model type.
// An empty modelType yields the prefix of all documents.
func makeDocumentTypePrefix(modelType string) []byte {
	if modelType == "" {
		return []byte(documentPrefix)
	}
	buf := make([]byte, 0, len(documentPrefix)+len(modelType)+1)
	buf = append(buf, documentPrefix...)
	buf = append(buf, modelType...)
	return append(buf, identitySeparator)
}
