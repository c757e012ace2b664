// Package inventory tracks the physical jewelry units behind the product
// catalog: where each piece is, whether it can be rented or sold, and the
// code engraved on its tag.
package inventory

// Item statuses follow a unit through its rental life.
const (
	StatusInStock  = "IN_STOCK"
	StatusReserved = "RESERVED"
	StatusRented   = "RENTED"
	StatusSold     = "SOLD"
	StatusRetired  = "RETIRED"
)

// Item is one physical jewelry unit.
type Item struct {
	ID        int64   `json:"id"`
	Code      string  `json:"code,omitempty"`
	ProductID int64   `json:"productId,omitempty"`
	Status    string  `json:"status,omitempty"`
	Location  string  `json:"location,omitempty"`
	Condition string  `json:"condition,omitempty"`
	CostPrice float64 `json:"costPrice,omitempty"`
	Notes     string  `json:"notes,omitempty"`
}

// CreateItemRequest registers a new unit.
type CreateItemRequest struct {
	Code      string  `json:"code" validate:"required,min=3,max=64"`
	ProductID int64   `json:"productId" validate:"required,gt=0"`
	Location  string  `json:"location,omitempty" validate:"max=100"`
	Condition string  `json:"condition,omitempty" validate:"max=100"`
	CostPrice float64 `json:"costPrice,omitempty" validate:"gte=0"`
	Notes     string  `json:"notes,omitempty" validate:"max=1000"`
}

// UpdateItemRequest patches a unit. Nil fields are left untouched.
type UpdateItemRequest struct {
	Status    *string  `json:"status,omitempty" validate:"omitempty,oneof=IN_STOCK RESERVED RENTED SOLD RETIRED"`
	Location  *string  `json:"location,omitempty" validate:"omitempty,max=100"`
	Condition *string  `json:"condition,omitempty" validate:"omitempty,max=100"`
	CostPrice *float64 `json:"costPrice,omitempty" validate:"omitempty,gte=0"`
	Notes     *string  `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// ListFilters narrow the inventory search.
type ListFilters struct {
	Code      string
	Status    string
	Location  string
	ProductID *int64
}
