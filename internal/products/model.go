package products

// Product statuses as exposed by the upstream catalog.
const (
	StatusDraft    = "DRAFT"
	StatusActive   = "ACTIVE"
	StatusRented   = "RENTED"
	StatusSold     = "SOLD"
	StatusArchived = "ARCHIVED"
)

// Product is a jewelry item offered for rent or sale. The record is
// round-tripped to the upstream API; fields the dashboard does not edit
// pass through unmodified.
type Product struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	SKU         string   `json:"sku,omitempty"`
	Status      string   `json:"status,omitempty"`
	CategoryID  int64    `json:"categoryId,omitempty"`
	DesignerID  int64    `json:"designerId,omitempty"`
	CaratID     int64    `json:"caratId,omitempty"`
	PartnerID   int64    `json:"partnerId,omitempty"`
	ColorIDs    []int64  `json:"colorIds,omitempty"`
	MaterialIDs []int64  `json:"materialIds,omitempty"`
	OccasionIDs []int64  `json:"occasionIds,omitempty"`
	RentPrice   float64  `json:"rentPrice,omitempty"`
	SalePrice   float64  `json:"salePrice,omitempty"`
	Weight      float64  `json:"weight,omitempty"`
	Description string   `json:"description,omitempty"`
	ImageURLs   []string `json:"imageUrls,omitempty"`
}
