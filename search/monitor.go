package search

import (
	"time"
)

// Monitor provides hooks to observe query building.
// Implement this interface to collect metrics or trace individual queries.
type Monitor interface {
	Start(text string)
	AfterRank(ranking *Ranking, elapsed time.Duration)
	Finish(query *Query)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                        {}
func (n *noopMonitor) AfterRank(_ *Ranking, _ time.Duration) {}
func (n *noopMonitor) Finish(_ *Query)                       {}
