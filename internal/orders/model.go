// Package orders exposes read-only views over rental and sale orders,
// including the message thread attached to each order. Order mutations
// happen in the upstream platform; the dashboard only observes them.
package orders

import "time"

// Order types.
const (
	TypeRent = "RENT"
	TypeSale = "SALE"
)

// Order statuses as reported by the upstream platform.
const (
	StatusNew       = "NEW"
	StatusConfirmed = "CONFIRMED"
	StatusActive    = "ACTIVE"
	StatusReturned  = "RETURNED"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
)

// Order is one rental or sale order.
type Order struct {
	ID           int64     `json:"id"`
	Number       string    `json:"number,omitempty"`
	Type         string    `json:"type,omitempty"`
	Status       string    `json:"status,omitempty"`
	PartnerID    int64     `json:"partnerId,omitempty"`
	CustomerName string    `json:"customerName,omitempty"`
	Total        float64   `json:"total,omitempty"`
	Currency     string    `json:"currency,omitempty"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
}

// Message is one entry in an order's message thread.
type Message struct {
	ID        int64     `json:"id"`
	Author    string    `json:"author,omitempty"`
	Body      string    `json:"body,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// ListFilters narrow the order search.
type ListFilters struct {
	Number    string
	Type      string
	Status    string
	PartnerID *int64
}
