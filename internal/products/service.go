package products

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/gemdesk/gemdesk/internal/listing"
	"github.com/gemdesk/gemdesk/internal/platform/backend"
)

// The product API lives under its own upstream service prefix.
const basePath = "/product/api/v1/products"

// ErrInvalidID rejects non-positive product ids.
var ErrInvalidID = errors.New("products: invalid product id")

// Service is the product resource service backed by the upstream catalog.
type Service struct {
	resource *backend.Resource[Product]
	views    *listing.Registry[Product]
	validate *validator.Validate
}

// NewService constructs the product service.
func NewService(client *backend.Client, validate *validator.Validate) *Service {
	resource := backend.NewResource[Product](client, basePath)
	return &Service{
		resource: resource,
		views:    listing.NewRegistry(func() *listing.Controller[Product] { return listing.NewController(resource) }, time.Hour),
		validate: validate,
	}
}

// View returns the session-bound list controller.
func (s *Service) View(sessionKey string) *listing.Controller[Product] {
	return s.views.Get(sessionKey)
}

// Search loads a product page for the session's view.
func (s *Service) Search(ctx context.Context, sessionKey string, page, size int, filters ListFilters) (listing.Snapshot[Product], error) {
	return s.View(sessionKey).Search(ctx, page, size, backend.Filters{
		"name":        filters.Name,
		"status":      filters.Status,
		"categoryIds": filters.CategoryIDs,
		"partnerId":   filters.PartnerID,
		"priceMin":    filters.PriceMin,
		"priceMax":    filters.PriceMax,
	})
}

// Get fetches one product by id.
func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, ErrInvalidID
	}
	return s.resource.Get(ctx, id)
}

// Create submits a new product and refreshes the session's view.
func (s *Service) Create(ctx context.Context, sessionKey string, draft CreateProductRequest) (Product, listing.Snapshot[Product], error) {
	if err := s.validate.Struct(draft); err != nil {
		return Product{}, s.View(sessionKey).Snapshot(), err
	}
	created, err := s.resource.Create(ctx, draft)
	if err != nil {
		return Product{}, s.View(sessionKey).Snapshot(), err
	}
	snap, _ := s.View(sessionKey).Refresh(ctx)
	return created, snap, nil
}

// Update patches a product and refreshes the session's view.
func (s *Service) Update(ctx context.Context, sessionKey string, id int64, patch UpdateProductRequest) (Product, listing.Snapshot[Product], error) {
	if id <= 0 {
		return Product{}, s.View(sessionKey).Snapshot(), ErrInvalidID
	}
	if err := s.validate.Struct(patch); err != nil {
		return Product{}, s.View(sessionKey).Snapshot(), err
	}
	updated, err := s.resource.Update(ctx, id, patch)
	if err != nil {
		return Product{}, s.View(sessionKey).Snapshot(), err
	}
	snap, _ := s.View(sessionKey).Refresh(ctx)
	return updated, snap, nil
}

// Delete removes a product and refreshes the session's view, stepping back
// a page when the deleted row was the last one on it.
func (s *Service) Delete(ctx context.Context, sessionKey string, id int64) (listing.Snapshot[Product], error) {
	if id <= 0 {
		return s.View(sessionKey).Snapshot(), ErrInvalidID
	}
	if err := s.resource.Delete(ctx, id); err != nil {
		return s.View(sessionKey).Snapshot(), err
	}
	snap, _ := s.View(sessionKey).RefreshAfterDelete(ctx)
	return snap, nil
}
