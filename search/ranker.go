package search

import (
	"cmp"
	"context"
	"slices"

	"github.com/poiesic/haystack/core"
	"github.com/poiesic/haystack/storage"
)

// Tokenizer splits free text into the normalized values stored in the index.
type Tokenizer interface {
	Tokenize(text string) ([]string, error)
}

// Ranking is the result of resolving free text against the index.
type Ranking struct {
	// Values are the distinct tokenized values in first-seen order.
	Values []string
	// Tokens are the resolved tokens, rarest first.
	Tokens []*core.Token
	// IDs holds the IDs of Tokens in the same order.
	IDs []core.ID
}

// Unresolved returns how many tokenized values are unknown to the index.
func (r *Ranking) Unresolved() int {
	return len(r.Values) - len(r.Tokens)
}

// Ranker resolves free text to known tokens and orders them by rarity.
type Ranker struct {
	tokenizer Tokenizer
	tokens    storage.TokenRepository
	stats     storage.StatsProvider
	rarity    RarityFunc
}

// RankerOption configures a Ranker.
type RankerOption func(*Ranker) error

// WithRarity sets the rarity function.
// Default is InverseDocumentFrequency; nil restores the default.
func WithRarity(fn RarityFunc) RankerOption {
	return func(r *Ranker) error {
		if fn == nil {
			fn = InverseDocumentFrequency
		}
		r.rarity = fn
		return nil
	}
}

// NewRanker creates a new ranker.
func NewRanker(
	tokenizer Tokenizer,
	tokens storage.TokenRepository,
	stats storage.StatsProvider,
	opts ...RankerOption,
) (*Ranker, error) {
	if tokenizer == nil {
		return nil, ErrTokenizerRequired
	}
	if tokens == nil {
		return nil, ErrTokenRepositoryRequired
	}
	if stats == nil {
		return nil, ErrStatsProviderRequired
	}

	r := &Ranker{
		tokenizer: tokenizer,
		tokens:    tokens,
		stats:     stats,
		rarity:    InverseDocumentFrequency,
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Rank tokenizes text, resolves the values against the index and orders the
// resolved tokens by descending rarity. Tokens of equal rarity are ordered by
// descending query position, so a later token comes first.
// Values unknown to the index are dropped without error.
func (r *Ranker) Rank(ctx context.Context, text string) (*Ranking, error) {
	values, err := r.tokenizer.Tokenize(text)
	if err != nil {
		return nil, err
	}
	values = distinct(values)

	ranking := &Ranking{Values: values}
	if len(values) == 0 {
		return ranking, nil
	}

	found, err := r.tokens.LookupTokens(ctx, values...)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return ranking, nil
	}

	total, err := r.stats.CorpusTotal(ctx)
	if err != nil {
		return nil, err
	}

	byValue := make(map[string]*core.Token, len(found))
	for _, token := range found {
		byValue[token.Value] = token
	}

	type rankedToken struct {
		token    *core.Token
		rarity   float64
		position int
	}
	ranked := make([]rankedToken, 0, len(found))
	for _, value := range values {
		token, ok := byValue[value]
		if !ok {
			continue
		}
		stamped := *token
		stamped.CorpusTotal = total
		ranked = append(ranked, rankedToken{
			token:    &stamped,
			rarity:   r.rarity(stamped.DocumentFrequency, total),
			position: len(ranked) + 1,
		})
	}

	slices.SortStableFunc(ranked, func(a, b rankedToken) int {
		if c := cmp.Compare(b.rarity, a.rarity); c != 0 {
			return c
		}
		return cmp.Compare(b.position, a.position)
	})

	ranking.Tokens = make([]*core.Token, len(ranked))
	ranking.IDs = make([]core.ID, len(ranked))
	for i, rt := range ranked {
		ranking.Tokens[i] = rt.token
		ranking.IDs[i] = rt.token.Id
	}
	return ranking, nil
}

func distinct(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
