package shared

import "fmt"

// DefaultPageSize applies when a list request carries no size.
const DefaultPageSize = 10

// Pager captures 0-based pagination state for a list view.
type Pager struct {
	Page          int `json:"page"`
	Size          int `json:"size"`
	TotalElements int `json:"totalElements"`
}

// NewPager normalizes the inputs into a valid Pager.
func NewPager(page, size, totalElements int) Pager {
	if size <= 0 {
		size = DefaultPageSize
	}
	if page < 0 {
		page = 0
	}
	if totalElements < 0 {
		totalElements = 0
	}
	return Pager{Page: page, Size: size, TotalElements: totalElements}
}

// HasPrevious reports whether an earlier page exists.
func (p Pager) HasPrevious() bool {
	return p.Page > 0
}

// HasNext reports whether a later page exists.
func (p Pager) HasNext() bool {
	return (p.Page+1)*p.Size < p.TotalElements
}

// TotalPages returns the number of pages covering the result set.
func (p Pager) TotalPages() int {
	if p.Size <= 0 || p.TotalElements <= 0 {
		return 0
	}
	return (p.TotalElements + p.Size - 1) / p.Size
}

// LastPage returns the index of the last non-empty page, or 0 when the
// result set is empty.
func (p Pager) LastPage() int {
	pages := p.TotalPages()
	if pages == 0 {
		return 0
	}
	return pages - 1
}

// Label renders the pager for display, 1-based as users expect.
func (p Pager) Label() string {
	return fmt.Sprintf("Page %d of %d", p.Page+1, p.TotalPages())
}
