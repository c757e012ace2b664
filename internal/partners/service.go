package partners

import (
	"context"
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/gemdesk/gemdesk/internal/listing"
	"github.com/gemdesk/gemdesk/internal/platform/backend"
)

const basePath = "/partners"

// ErrInvalidID rejects non-positive partner ids.
var ErrInvalidID = errors.New("partners: invalid partner id")

// Service is the partner resource service. Partner creation goes through
// the onboarding workflow; this service covers the list and detail
// screens plus document upload.
type Service struct {
	client   *backend.Client
	resource *backend.Resource[Partner]
	views    *listing.Registry[Partner]
}

// NewService constructs the partner service.
func NewService(client *backend.Client) *Service {
	resource := backend.NewResource[Partner](client, basePath)
	return &Service{
		client:   client,
		resource: resource,
		views:    listing.NewRegistry(func() *listing.Controller[Partner] { return listing.NewController(resource) }, time.Hour),
	}
}

// View returns the session-bound list controller.
func (s *Service) View(sessionKey string) *listing.Controller[Partner] {
	return s.views.Get(sessionKey)
}

// Search loads a partner page for the session's view.
func (s *Service) Search(ctx context.Context, sessionKey string, page, size int, name, status string) (listing.Snapshot[Partner], error) {
	return s.View(sessionKey).Search(ctx, page, size, backend.Filters{
		"name":   name,
		"status": status,
	})
}

// Get fetches one partner by id.
func (s *Service) Get(ctx context.Context, id int64) (Partner, error) {
	if id <= 0 {
		return Partner{}, ErrInvalidID
	}
	return s.resource.Get(ctx, id)
}

// UploadDocument forwards a signed agreement or identity document to the
// upstream partner record.
func (s *Service) UploadDocument(ctx context.Context, partnerID int64, fileName string, content io.Reader) error {
	if partnerID <= 0 {
		return ErrInvalidID
	}
	_, err := s.client.Upload(ctx, basePath+"/"+strconv.FormatInt(partnerID, 10)+"/documents", "file", fileName, content)
	return err
}

// Delete removes a partner and refreshes the session's view.
func (s *Service) Delete(ctx context.Context, sessionKey string, id int64) (listing.Snapshot[Partner], error) {
	if id <= 0 {
		return s.View(sessionKey).Snapshot(), ErrInvalidID
	}
	if err := s.resource.Delete(ctx, id); err != nil {
		return s.View(sessionKey).Snapshot(), err
	}
	snap, _ := s.View(sessionKey).RefreshAfterDelete(ctx)
	return snap, nil
}
