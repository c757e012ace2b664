package inventory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/gemdesk/gemdesk/internal/listing"
	"github.com/gemdesk/gemdesk/internal/platform/backend"
)

const basePath = "/inventory/items"

var (
	// ErrInvalidID rejects non-positive item ids.
	ErrInvalidID = errors.New("inventory: invalid item id")
	// ErrEmptyCode rejects blank code lookups.
	ErrEmptyCode = errors.New("inventory: empty code")
)

// Service is the inventory resource service.
type Service struct {
	client   *backend.Client
	resource *backend.Resource[Item]
	views    *listing.Registry[Item]
	validate *validator.Validate
}

// NewService constructs the inventory service.
func NewService(client *backend.Client, validate *validator.Validate) *Service {
	resource := backend.NewResource[Item](client, basePath)
	return &Service{
		client:   client,
		resource: resource,
		views:    listing.NewRegistry(func() *listing.Controller[Item] { return listing.NewController(resource) }, time.Hour),
		validate: validate,
	}
}

// View returns the session-bound list controller.
func (s *Service) View(sessionKey string) *listing.Controller[Item] {
	return s.views.Get(sessionKey)
}

// Search loads an inventory page for the session's view.
func (s *Service) Search(ctx context.Context, sessionKey string, page, size int, filters ListFilters) (listing.Snapshot[Item], error) {
	return s.View(sessionKey).Search(ctx, page, size, backend.Filters{
		"code":      filters.Code,
		"status":    filters.Status,
		"location":  filters.Location,
		"productId": filters.ProductID,
	})
}

// Get fetches one item by id.
func (s *Service) Get(ctx context.Context, id int64) (Item, error) {
	if id <= 0 {
		return Item{}, ErrInvalidID
	}
	return s.resource.Get(ctx, id)
}

// LookupByCode resolves the code engraved on a unit's tag, used by the
// counter scanner flow.
func (s *Service) LookupByCode(ctx context.Context, code string) (Item, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return Item{}, ErrEmptyCode
	}
	raw, err := s.client.Get(ctx, basePath+"/by-code/"+code, nil)
	if err != nil {
		return Item{}, err
	}
	return backend.DecodeEntity[Item](raw)
}

// Create registers a new unit and refreshes the session's view.
func (s *Service) Create(ctx context.Context, sessionKey string, draft CreateItemRequest) (Item, listing.Snapshot[Item], error) {
	if err := s.validate.Struct(draft); err != nil {
		return Item{}, s.View(sessionKey).Snapshot(), err
	}
	created, err := s.resource.Create(ctx, draft)
	if err != nil {
		return Item{}, s.View(sessionKey).Snapshot(), err
	}
	snap, _ := s.View(sessionKey).Refresh(ctx)
	return created, snap, nil
}

// Update patches a unit and refreshes the session's view.
func (s *Service) Update(ctx context.Context, sessionKey string, id int64, patch UpdateItemRequest) (Item, listing.Snapshot[Item], error) {
	if id <= 0 {
		return Item{}, s.View(sessionKey).Snapshot(), ErrInvalidID
	}
	if err := s.validate.Struct(patch); err != nil {
		return Item{}, s.View(sessionKey).Snapshot(), err
	}
	updated, err := s.resource.Update(ctx, id, patch)
	if err != nil {
		return Item{}, s.View(sessionKey).Snapshot(), err
	}
	snap, _ := s.View(sessionKey).Refresh(ctx)
	return updated, snap, nil
}

// Delete removes a unit and refreshes the session's view, stepping back a
// page when the deleted row was the last one on it.
func (s *Service) Delete(ctx context.Context, sessionKey string, id int64) (listing.Snapshot[Item], error) {
	if id <= 0 {
		return s.View(sessionKey).Snapshot(), ErrInvalidID
	}
	if err := s.resource.Delete(ctx, id); err != nil {
		return s.View(sessionKey).Snapshot(), err
	}
	snap, _ := s.View(sessionKey).RefreshAfterDelete(ctx)
	return snap, nil
}
