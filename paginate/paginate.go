// Package paginate windows ordered result sets into pages.
//
// Slice pages an in-memory slice; Cursor pages a lazy source with one count
// and one ranged fetch. Both compute totals from the count taken when the
// window is built, so totals can go stale if the source changes afterwards.
package paginate

import (
	"context"
)

const (
	// DefaultPage is the page returned when none is requested.
	DefaultPage = 1
	// DefaultSize is the number of items per page when none is requested.
	DefaultSize = 42
)

// Window is one page of an ordered result set together with its position.
type Window[T any] struct {
	Items       []T
	CurrentPage int
	TotalPages  int
	// NumPages always equals TotalPages.
	NumPages   int
	TotalCount int
	Size       int
}

// HasNext reports whether a page follows this one.
func (w *Window[T]) HasNext() bool {
	return w.CurrentPage < w.TotalPages
}

// HasPrevious reports whether a page precedes this one.
func (w *Window[T]) HasPrevious() bool {
	return w.CurrentPage > 1
}

// Offset returns the index of the first item of this page in the full result set.
func (w *Window[T]) Offset() int {
	return (w.CurrentPage - 1) * w.Size
}

// Source is a lazily evaluated, ordered result set.
type Source[T any] interface {
	Count(ctx context.Context) (int, error)
	Fetch(ctx context.Context, skip, limit int) ([]T, error)
}

type settings struct {
	page int
	size int
}

// Option configures pagination.
type Option func(*settings)

// Page selects the 1-based page number.
func Page(n int) Option {
	return func(s *settings) {
		s.page = n
	}
}

// Size sets the number of items per page.
func Size(n int) Option {
	return func(s *settings) {
		s.size = n
	}
}

func newSettings(opts []Option) (settings, error) {
	s := settings{page: DefaultPage, size: DefaultSize}
	for _, opt := range opts {
		opt(&s)
	}
	if s.size <= 0 {
		return s, &ConfigError{Field: "size", Value: s.size, Err: ErrInvalidSize}
	}
	if s.page <= 0 {
		return s, &ConfigError{Field: "page", Value: s.page, Err: ErrInvalidPage}
	}
	return s, nil
}

func newWindow[T any](s settings, total int) *Window[T] {
	pages := total / s.size
	if total%s.size != 0 {
		pages++
	}
	return &Window[T]{
		Items:       []T{},
		CurrentPage: s.page,
		TotalPages:  pages,
		NumPages:    pages,
		TotalCount:  total,
		Size:        s.size,
	}
}

// beyond reports whether the window's page starts past the last item.
func (w *Window[T]) beyond() bool {
	return w.CurrentPage > w.TotalPages
}

// Slice returns one page of items.
// A page past the end yields no items with totals computed from len(items).
func Slice[T any](items []T, opts ...Option) (*Window[T], error) {
	s, err := newSettings(opts)
	if err != nil {
		return nil, err
	}

	w := newWindow[T](s, len(items))
	if w.beyond() {
		return w, nil
	}

	lo := w.Offset()
	hi := lo + min(s.size, len(items)-lo)
	w.Items = append(w.Items, items[lo:hi]...)
	return w, nil
}

// Cursor returns one page of a lazy source, issuing one Count and at most one Fetch.
// A page past the end yields no items with totals computed from the count.
func Cursor[T any](ctx context.Context, src Source[T], opts ...Option) (*Window[T], error) {
	s, err := newSettings(opts)
	if err != nil {
		return nil, err
	}

	total, err := src.Count(ctx)
	if err != nil {
		return nil, err
	}

	w := newWindow[T](s, total)
	if w.beyond() {
		return w, nil
	}

	items, err := src.Fetch(ctx, w.Offset(), s.size)
	if err != nil {
		return nil, err
	}
	if items != nil {
		w.Items = items
	}
	return w, nil
}
