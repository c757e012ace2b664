// Package listing implements the list-view controller shared by every
// paginated resource screen: filter and page state, atomic refresh, and
// last-request-wins ordering for overlapping searches.
package listing

import (
	"context"
	"errors"
	"sync"

	"github.com/gemdesk/gemdesk/internal/platform/backend"
	"github.com/gemdesk/gemdesk/internal/shared"
)

// ErrStale marks a search response that lost the race against a newer
// request on the same controller. The table state was not touched.
var ErrStale = errors.New("listing: stale response discarded")

// Searcher provides one page of results for a filter set.
type Searcher[T any] interface {
	Search(ctx context.Context, page, size int, filters backend.Filters) (backend.Page[T], error)
}

// Snapshot is the formalized page envelope handed to the UI.
type Snapshot[T any] struct {
	Content       []T    `json:"content"`
	Page          int    `json:"page"`
	Size          int    `json:"size"`
	TotalElements int    `json:"totalElements"`
	TotalPages    int    `json:"totalPages"`
	HasNext       bool   `json:"hasNext"`
	HasPrevious   bool   `json:"hasPrevious"`
	Label         string `json:"label"`

	filters backend.Filters
}

// Filters returns the filter set the snapshot was produced with.
func (s Snapshot[T]) Filters() backend.Filters {
	return s.filters
}

// Controller owns the list state for one resource view. All methods are
// safe for concurrent use; a response only replaces the table when no newer
// search has been issued in the meantime.
type Controller[T any] struct {
	mu      sync.Mutex
	source  Searcher[T]
	seq     uint64
	filters backend.Filters
	pager   shared.Pager
	items   []T
	loaded  bool
}

// NewController constructs a Controller over the given source.
func NewController[T any](source Searcher[T]) *Controller[T] {
	return &Controller[T]{source: source, pager: shared.NewPager(0, shared.DefaultPageSize, 0)}
}

// Search loads a page and replaces the current state atomically. On
// failure, and for stale responses, the prior state stays untouched.
func (c *Controller[T]) Search(ctx context.Context, page, size int, filters backend.Filters) (Snapshot[T], error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = shared.DefaultPageSize
	}

	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.mu.Unlock()

	result, err := c.source.Search(ctx, page, size, filters)

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		return c.snapshotLocked(), ErrStale
	}
	if err != nil {
		return c.snapshotLocked(), err
	}

	c.items = result.Content
	c.pager = shared.NewPager(result.Number, result.Size, result.TotalElements)
	c.filters = cloneFilters(filters)
	c.loaded = true
	return c.snapshotLocked(), nil
}

// Refresh re-runs the search at the current filter and page state. It is
// the post-mutation contract: create and update land the user back on the
// page they were looking at.
func (c *Controller[T]) Refresh(ctx context.Context) (Snapshot[T], error) {
	c.mu.Lock()
	page, size, filters := c.pager.Page, c.pager.Size, cloneFilters(c.filters)
	c.mu.Unlock()
	return c.Search(ctx, page, size, filters)
}

// RefreshAfterDelete refreshes and, when the current page came back empty
// on a non-first page, steps back to the last page that still has rows.
func (c *Controller[T]) RefreshAfterDelete(ctx context.Context) (Snapshot[T], error) {
	snap, err := c.Refresh(ctx)
	if err != nil {
		return snap, err
	}
	if len(snap.Content) == 0 && snap.Page > 0 {
		pager := shared.NewPager(snap.Page, snap.Size, snap.TotalElements)
		if last := pager.LastPage(); last < snap.Page {
			return c.Search(ctx, last, snap.Size, snap.filters)
		}
	}
	return snap, nil
}

// Snapshot returns the current state without touching the source.
func (c *Controller[T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Loaded reports whether a search has completed at least once.
func (c *Controller[T]) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

func (c *Controller[T]) snapshotLocked() Snapshot[T] {
	content := c.items
	if content == nil {
		content = []T{}
	}
	return Snapshot[T]{
		Content:       content,
		Page:          c.pager.Page,
		Size:          c.pager.Size,
		TotalElements: c.pager.TotalElements,
		TotalPages:    c.pager.TotalPages(),
		HasNext:       c.pager.HasNext(),
		HasPrevious:   c.pager.HasPrevious(),
		Label:         c.pager.Label(),
		filters:       cloneFilters(c.filters),
	}
}

func cloneFilters(filters backend.Filters) backend.Filters {
	if filters == nil {
		return nil
	}
	clone := make(backend.Filters, len(filters))
	for k, v := range filters {
		clone[k] = v
	}
	return clone
}
