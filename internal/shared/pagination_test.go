package shared

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPagerTwentyFiveItemsPageSizeTen(t *testing.T) {
	pager := NewPager(0, 10, 25)

	require.Equal(t, 3, pager.TotalPages())
	require.Equal(t, "Page 1 of 3", pager.Label())
	require.False(t, pager.HasPrevious())
	require.True(t, pager.HasNext())

	last := NewPager(2, 10, 25)
	require.True(t, last.HasPrevious())
	require.False(t, last.HasNext())
	require.Equal(t, "Page 3 of 3", last.Label())
}

func TestPagerExactPageBoundary(t *testing.T) {
	// 20 items at size 10: page 1 is the last page, no next.
	pager := NewPager(1, 10, 20)
	require.Equal(t, 2, pager.TotalPages())
	require.False(t, pager.HasNext())
	require.True(t, pager.HasPrevious())
}

func TestPagerEmptyResultSet(t *testing.T) {
	pager := NewPager(0, 10, 0)
	require.Equal(t, 0, pager.TotalPages())
	require.Equal(t, 0, pager.LastPage())
	require.False(t, pager.HasNext())
	require.False(t, pager.HasPrevious())
	require.Equal(t, "Page 1 of 0", pager.Label())
}

func TestPagerNormalizesInvalidInputs(t *testing.T) {
	pager := NewPager(-3, 0, -1)
	require.Equal(t, 0, pager.Page)
	require.Equal(t, DefaultPageSize, pager.Size)
	require.Equal(t, 0, pager.TotalElements)
}

func TestPagerLastPage(t *testing.T) {
	require.Equal(t, 1, NewPager(1, 10, 11).LastPage())
	require.Equal(t, 0, NewPager(1, 10, 10).LastPage())
	require.Equal(t, 2, NewPager(0, 10, 25).LastPage())
}
