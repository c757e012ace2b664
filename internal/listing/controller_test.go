package listing

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gemdesk/gemdesk/internal/platform/backend"
)

// sliceSource pages over an in-memory dataset the way the upstream would.
type sliceSource struct {
	mu    sync.Mutex
	items []string
}

func (s *sliceSource) Search(_ context.Context, page, size int, _ backend.Filters) (backend.Page[string], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := page * size
	end := start + size
	if start > len(s.items) {
		start = len(s.items)
	}
	if end > len(s.items) {
		end = len(s.items)
	}
	return backend.Page[string]{
		Content:       append([]string{}, s.items[start:end]...),
		Number:        page,
		Size:          size,
		TotalElements: len(s.items),
	}, nil
}

func (s *sliceSource) remove(item string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, v := range s.items {
		if v == item {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

func dataset(n int) []string {
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf("item-%02d", i)
	}
	return items
}

func TestControllerSearchSnapshot(t *testing.T) {
	controller := NewController[string](&sliceSource{items: dataset(25)})

	snap, err := controller.Search(context.Background(), 0, 10, backend.Filters{"name": "ring"})
	require.NoError(t, err)
	require.Len(t, snap.Content, 10)
	require.Equal(t, 25, snap.TotalElements)
	require.Equal(t, 3, snap.TotalPages)
	require.Equal(t, "Page 1 of 3", snap.Label)
	require.False(t, snap.HasPrevious)
	require.True(t, snap.HasNext)
	require.Equal(t, "ring", snap.Filters()["name"])
	require.True(t, controller.Loaded())
}

// blockingSource lets the test hold one response hostage while a newer
// search overtakes it.
type blockingSource struct {
	inner   Searcher[string]
	release chan struct{}
	arm     chan struct{}
	armed   bool
	mu      sync.Mutex
}

func (s *blockingSource) Search(ctx context.Context, page, size int, filters backend.Filters) (backend.Page[string], error) {
	s.mu.Lock()
	shouldBlock := !s.armed
	s.armed = true
	s.mu.Unlock()
	if shouldBlock {
		close(s.arm)
		<-s.release
	}
	return s.inner.Search(ctx, page, size, filters)
}

func TestControllerDiscardsStaleResponse(t *testing.T) {
	source := &blockingSource{
		inner:   &sliceSource{items: dataset(30)},
		release: make(chan struct{}),
		arm:     make(chan struct{}),
	}
	controller := NewController[string](source)

	type result struct {
		snap Snapshot[string]
		err  error
	}
	first := make(chan result, 1)
	go func() {
		snap, err := controller.Search(context.Background(), 0, 10, nil)
		first <- result{snap, err}
	}()

	<-source.arm
	snap, err := controller.Search(context.Background(), 2, 10, nil)
	require.NoError(t, err)
	require.Equal(t, 2, snap.Page)

	close(source.release)
	got := <-first
	require.ErrorIs(t, got.err, ErrStale)

	// The table still shows the newer request's page.
	current := controller.Snapshot()
	require.Equal(t, 2, current.Page)
	require.Equal(t, "item-20", current.Content[0])
}

func TestControllerRefreshKeepsFilterAndPage(t *testing.T) {
	source := &sliceSource{items: dataset(25)}
	controller := NewController[string](source)

	_, err := controller.Search(context.Background(), 1, 10, backend.Filters{"status": "ACTIVE"})
	require.NoError(t, err)

	snap, err := controller.Refresh(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, snap.Page)
	require.Equal(t, "ACTIVE", snap.Filters()["status"])
}

func TestControllerDeleteLastRowStepsBackAPage(t *testing.T) {
	// 11 items at size 10: page 1 holds a single row. Deleting it must
	// land the operator on page 0 with a full page, not an empty table.
	source := &sliceSource{items: dataset(11)}
	controller := NewController[string](source)

	snap, err := controller.Search(context.Background(), 1, 10, nil)
	require.NoError(t, err)
	require.Len(t, snap.Content, 1)

	source.remove("item-10")

	snap, err = controller.RefreshAfterDelete(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, snap.Page)
	require.Len(t, snap.Content, 10)
	require.Equal(t, 10, snap.TotalElements)
	require.Equal(t, "Page 1 of 1", snap.Label)
}

func TestControllerDeleteOnFirstPageStaysPut(t *testing.T) {
	source := &sliceSource{items: dataset(3)}
	controller := NewController[string](source)

	_, err := controller.Search(context.Background(), 0, 10, nil)
	require.NoError(t, err)

	source.remove("item-02")

	snap, err := controller.RefreshAfterDelete(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, snap.Page)
	require.Len(t, snap.Content, 2)
}
