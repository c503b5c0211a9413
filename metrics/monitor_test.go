package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/haystack/core"
	"github.com/poiesic/haystack/indexing"
	"github.com/poiesic/haystack/search"
	"github.com/poiesic/haystack/storage"
	"github.com/poiesic/haystack/storage/badger"
	"github.com/poiesic/haystack/tokenizer"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMonitor_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMonitor(reg)
	require.NoError(t, err)
	require.NotNil(t, m)

	// Registering the same names twice fails.
	_, err = NewMonitor(reg)
	assert.Error(t, err)
}

func TestMonitor_Finish(t *testing.T) {
	m, err := NewMonitor(prometheus.NewRegistry())
	require.NoError(t, err)

	m.Finish(&search.Query{Operator: storage.OpAll, Tokens: []*core.Token{{Value: "x"}}})
	m.Finish(&search.Query{Operator: storage.OpAny})
	m.Finish(&search.Query{Operator: storage.OpAny})
	m.Finish(nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.queries.WithLabelValues("all")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.queries.WithLabelValues("any")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.empty))
}

func TestMonitor_AfterRank(t *testing.T) {
	m, err := NewMonitor(prometheus.NewRegistry())
	require.NoError(t, err)

	m.AfterRank(&search.Ranking{Values: []string{"a", "b", "c"}, Tokens: []*core.Token{{Value: "a"}}}, 2*time.Millisecond)
	m.AfterRank(nil, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.unresolved))
	assert.Equal(t, 1, testutil.CollectAndCount(m.rankLatency))
}

func TestMonitor_ObserveReindex(t *testing.T) {
	m, err := NewMonitor(prometheus.NewRegistry())
	require.NoError(t, err)

	m.ObserveReindex(&indexing.Report{Indexed: 5, Failures: make([]indexing.Failure, 2)})
	m.ObserveReindex(nil)

	assert.Equal(t, 5.0, testutil.ToFloat64(m.indexed))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.indexFailures))
}

func TestMonitor_WithSearcher(t *testing.T) {
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()
	tok := tokenizer.New()

	ix, err := indexing.NewIndexer(repos.Index, tok)
	require.NoError(t, err)
	defer ix.Release()
	require.NoError(t, ix.Add(ctx, &core.Document{Type: "article", Id: "1", Title: "needle"}))

	m, err := NewMonitor(prometheus.NewRegistry())
	require.NoError(t, err)

	ranker, err := search.NewRanker(tok, repos.Tokens, repos.Tokens)
	require.NoError(t, err)
	searcher, err := search.NewSearcher(ranker, repos.Index, search.WithMonitor(m))
	require.NoError(t, err)

	_, _, err = searcher.Search(ctx, search.Options{}, "needle", "unknown")
	require.NoError(t, err)
	_, _, err = searcher.Search(ctx, search.Options{All: "missing"})
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.queries.WithLabelValues("any")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.queries.WithLabelValues("all")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.empty))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.unresolved))
}
