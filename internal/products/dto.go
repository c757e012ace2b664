package products

// CreateProductRequest is the draft submitted from the product form.
type CreateProductRequest struct {
	Name        string   `json:"name" validate:"required,max=200"`
	SKU         string   `json:"sku,omitempty" validate:"max=64"`
	CategoryID  int64    `json:"categoryId" validate:"required,gt=0"`
	DesignerID  int64    `json:"designerId,omitempty" validate:"omitempty,gt=0"`
	CaratID     int64    `json:"caratId,omitempty" validate:"omitempty,gt=0"`
	PartnerID   int64    `json:"partnerId" validate:"required,gt=0"`
	ColorIDs    []int64  `json:"colorIds,omitempty" validate:"omitempty,dive,gt=0"`
	MaterialIDs []int64  `json:"materialIds,omitempty" validate:"omitempty,dive,gt=0"`
	OccasionIDs []int64  `json:"occasionIds,omitempty" validate:"omitempty,dive,gt=0"`
	RentPrice   float64  `json:"rentPrice,omitempty" validate:"gte=0"`
	SalePrice   float64  `json:"salePrice,omitempty" validate:"gte=0"`
	Weight      float64  `json:"weight,omitempty" validate:"gte=0"`
	Description string   `json:"description,omitempty" validate:"max=2000"`
	ImageURLs   []string `json:"imageUrls,omitempty" validate:"omitempty,dive,url"`
}

// UpdateProductRequest patches an existing product. Nil fields are left
// untouched upstream.
type UpdateProductRequest struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,max=200"`
	Status      *string  `json:"status,omitempty" validate:"omitempty,oneof=DRAFT ACTIVE RENTED SOLD ARCHIVED"`
	CategoryID  *int64   `json:"categoryId,omitempty" validate:"omitempty,gt=0"`
	DesignerID  *int64   `json:"designerId,omitempty" validate:"omitempty,gt=0"`
	CaratID     *int64   `json:"caratId,omitempty" validate:"omitempty,gt=0"`
	ColorIDs    []int64  `json:"colorIds,omitempty" validate:"omitempty,dive,gt=0"`
	MaterialIDs []int64  `json:"materialIds,omitempty" validate:"omitempty,dive,gt=0"`
	OccasionIDs []int64  `json:"occasionIds,omitempty" validate:"omitempty,dive,gt=0"`
	RentPrice   *float64 `json:"rentPrice,omitempty" validate:"omitempty,gte=0"`
	SalePrice   *float64 `json:"salePrice,omitempty" validate:"omitempty,gte=0"`
	Weight      *float64 `json:"weight,omitempty" validate:"omitempty,gte=0"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=2000"`
	ImageURLs   []string `json:"imageUrls,omitempty" validate:"omitempty,dive,url"`
}

// ListFilters carries the product list filter set.
type ListFilters struct {
	Name        string
	Status      string
	CategoryIDs []int64
	PartnerID   *int64
	PriceMin    *float64
	PriceMax    *float64
}
