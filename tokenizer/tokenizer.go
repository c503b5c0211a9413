// Package tokenizer turns free text into the normalized values stored in the index.
//
// Text is split on Unicode word boundaries (UAX #29), case folded, and Latin
// words are reduced with the Porter stemmer, so "Needles" and "needle" produce
// the same value. The same Tokenizer must be used for indexing and searching.
package tokenizer

import (
	"fmt"
	"strings"

	porterstemmer "github.com/blevesearch/go-porterstemmer"
	"github.com/blevesearch/segment"
	"golang.org/x/text/cases"
)

// Tokenizer splits text into normalized values.
type Tokenizer struct {
	stem      bool
	minLength int
	stopWords map[string]struct{}
}

// Option configures a Tokenizer.
type Option func(*Tokenizer)

// WithoutStemming disables Porter stemming.
func WithoutStemming() Option {
	return func(t *Tokenizer) {
		t.stem = false
	}
}

// WithMinLength drops values shorter than n runes after normalization.
func WithMinLength(n int) Option {
	return func(t *Tokenizer) {
		t.minLength = n
	}
}

// WithStopWords drops the given words. Words are matched after case folding
// and before stemming.
func WithStopWords(words ...string) Option {
	return func(t *Tokenizer) {
		for _, w := range words {
			t.stopWords[cases.Fold().String(w)] = struct{}{}
		}
	}
}

// New creates a Tokenizer. Stemming is enabled by default.
func New(opts ...Option) *Tokenizer {
	t := &Tokenizer{
		stem:      true,
		minLength: 1,
		stopWords: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Terms returns every normalized value in text in order, repeats included.
func (t *Tokenizer) Terms(text string) ([]string, error) {
	// Casers keep state and are not safe for concurrent use.
	fold := cases.Fold()

	var terms []string
	segmenter := segment.NewWordSegmenter(strings.NewReader(text))
	for segmenter.Segment() {
		kind := segmenter.Type()
		if kind == segment.None {
			continue
		}

		word := fold.String(string(segmenter.Bytes()))
		if _, stop := t.stopWords[word]; stop {
			continue
		}
		if t.stem && kind == segment.Letter {
			word = porterstemmer.StemString(word)
		}
		if len([]rune(word)) < t.minLength {
			continue
		}
		terms = append(terms, word)
	}
	if err := segmenter.Err(); err != nil {
		return nil, fmt.Errorf("segmenting text: %w", err)
	}
	return terms, nil
}

// Tokenize returns the distinct normalized values in text in first-seen order.
func (t *Tokenizer) Tokenize(text string) ([]string, error) {
	terms, err := t.Terms(text)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(terms))
	values := terms[:0]
	for _, term := range terms {
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		values = append(values, term)
	}
	return values, nil
}
