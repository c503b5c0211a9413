package search

import "math"

// RarityFunc scores how rare a token is given its document frequency and the
// corpus total. Larger values mean rarer tokens. Only the ordering it induces
// matters; its scale is never interpreted.
type RarityFunc func(documentFrequency, corpusTotal int64) float64

// InverseDocumentFrequency returns ln(corpusTotal/documentFrequency).
// A token with no recorded postings is treated as maximally rare.
func InverseDocumentFrequency(documentFrequency, corpusTotal int64) float64 {
	if documentFrequency <= 0 {
		return math.Inf(1)
	}
	if corpusTotal < documentFrequency {
		corpusTotal = documentFrequency
	}
	return math.Log(float64(corpusTotal) / float64(documentFrequency))
}
