package indexing

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Progress writes a single updating status line for a bulk operation.
type Progress struct {
	mu       sync.Mutex
	w        io.Writer
	total    int
	done     int
	every    int
	reported int
	started  time.Time
	running  bool
}

// NewProgress creates a tracker for total items that prints every `every` items.
func NewProgress(w io.Writer, total, every int) *Progress {
	if every < 1 {
		every = 1
	}
	return &Progress{w: w, total: total, every: every}
}

// Start resets the counters and the clock.
func (p *Progress) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.started = time.Now()
	p.running = true
	p.done = 0
	p.reported = 0
}

// Add records n more processed items. The count never exceeds the total.
func (p *Progress) Add(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}
	p.done = min(p.done+n, p.total)
	if p.done-p.reported >= p.every {
		p.print()
		p.reported = p.done
	}
}

// Finish prints the final line. Items that were never added count as done.
func (p *Progress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}
	p.done = p.total
	p.print()
	fmt.Fprintln(p.w)
	p.running = false
}

// Elapsed returns the time since Start.
func (p *Progress) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started.IsZero() {
		return 0
	}
	return time.Since(p.started)
}

// print must be called with the lock held.
func (p *Progress) print() {
	rate := 0.0
	if secs := time.Since(p.started).Seconds(); secs > 0 {
		rate = float64(p.done) / secs
	}
	percent := 0.0
	if p.total > 0 {
		percent = float64(p.done) / float64(p.total) * 100
	}
	fmt.Fprintf(p.w, "\rIndexed %d/%d (%.1f%%) - %.1f docs/s", p.done, p.total, percent, rate)
}

// add tolerates a nil tracker so callers need not check.
func (p *Progress) add(n int) {
	if p != nil {
		p.Add(n)
	}
}
