// Package metrics exports search and indexing activity as Prometheus metrics.
package metrics

import (
	"time"

	"github.com/poiesic/haystack/indexing"
	"github.com/poiesic/haystack/search"
	"github.com/prometheus/client_golang/prometheus"
)

// Monitor implements search.Monitor with Prometheus collectors.
type Monitor struct {
	queries       *prometheus.CounterVec
	empty         prometheus.Counter
	unresolved    prometheus.Counter
	rankLatency   prometheus.Histogram
	indexed       prometheus.Counter
	indexFailures prometheus.Counter
}

var _ search.Monitor = (*Monitor)(nil)

// NewMonitor creates a Monitor and registers its collectors with reg.
// A nil reg registers with prometheus.DefaultRegisterer.
func NewMonitor(reg prometheus.Registerer) (*Monitor, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Monitor{
		queries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "haystack",
				Name:      "search_queries_total",
				Help:      "Total built queries by operator.",
			},
			[]string{"operator"},
		),
		empty: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "haystack",
				Name:      "search_empty_queries_total",
				Help:      "Queries in which no term resolved to an indexed token.",
			},
		),
		unresolved: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "haystack",
				Name:      "search_unresolved_terms_total",
				Help:      "Query terms not found in the index.",
			},
		),
		rankLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "haystack",
				Name:      "search_rank_duration_seconds",
				Help:      "Time spent resolving and ranking query tokens.",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
			},
		),
		indexed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "haystack",
				Name:      "documents_indexed_total",
				Help:      "Documents indexed by bulk reindex runs.",
			},
		),
		indexFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "haystack",
				Name:      "index_failures_total",
				Help:      "Documents that bulk reindex runs could not index.",
			},
		),
	}

	for _, c := range []prometheus.Collector{m.queries, m.empty, m.unresolved, m.rankLatency, m.indexed, m.indexFailures} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Start is a no-op; queries are counted once built.
func (m *Monitor) Start(_ string) {}

// AfterRank records ranking latency and unknown terms.
func (m *Monitor) AfterRank(ranking *search.Ranking, elapsed time.Duration) {
	m.rankLatency.Observe(elapsed.Seconds())
	if ranking != nil {
		m.unresolved.Add(float64(ranking.Unresolved()))
	}
}

// Finish counts a built query.
func (m *Monitor) Finish(query *search.Query) {
	if query == nil {
		return
	}
	m.queries.WithLabelValues(query.Operator.String()).Inc()
	if query.Empty() {
		m.empty.Inc()
	}
}

// ObserveReindex records the outcome of a bulk reindex.
func (m *Monitor) ObserveReindex(report *indexing.Report) {
	if report == nil {
		return
	}
	m.indexed.Add(float64(report.Indexed))
	m.indexFailures.Add(float64(len(report.Failures)))
}
