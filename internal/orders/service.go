package orders

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gemdesk/gemdesk/internal/listing"
	"github.com/gemdesk/gemdesk/internal/platform/backend"
)

const basePath = "/orders"

// ErrInvalidID rejects non-positive order ids.
var ErrInvalidID = errors.New("orders: invalid order id")

// Service is the read-only order view service.
type Service struct {
	client   *backend.Client
	resource *backend.Resource[Order]
	views    *listing.Registry[Order]
}

// NewService constructs the order service.
func NewService(client *backend.Client) *Service {
	resource := backend.NewResource[Order](client, basePath)
	return &Service{
		client:   client,
		resource: resource,
		views:    listing.NewRegistry(func() *listing.Controller[Order] { return listing.NewController(resource) }, time.Hour),
	}
}

// View returns the session-bound list controller.
func (s *Service) View(sessionKey string) *listing.Controller[Order] {
	return s.views.Get(sessionKey)
}

// Search loads an order page for the session's view.
func (s *Service) Search(ctx context.Context, sessionKey string, page, size int, filters ListFilters) (listing.Snapshot[Order], error) {
	return s.View(sessionKey).Search(ctx, page, size, backend.Filters{
		"number":    filters.Number,
		"type":      filters.Type,
		"status":    filters.Status,
		"partnerId": filters.PartnerID,
	})
}

// Get fetches one order by id.
func (s *Service) Get(ctx context.Context, id int64) (Order, error) {
	if id <= 0 {
		return Order{}, ErrInvalidID
	}
	return s.resource.Get(ctx, id)
}

// Messages loads the order's message thread, oldest first. The thread is
// small in practice; the upstream returns it unpaginated.
func (s *Service) Messages(ctx context.Context, orderID int64) ([]Message, error) {
	if orderID <= 0 {
		return nil, ErrInvalidID
	}
	raw, err := s.client.Get(ctx, basePath+"/"+strconv.FormatInt(orderID, 10)+"/messages", nil)
	if err != nil {
		return nil, err
	}
	page, err := backend.DecodePage[Message](raw, 0)
	if err != nil {
		return nil, err
	}
	return page.Content, nil
}
