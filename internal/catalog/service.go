package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/gemdesk/gemdesk/internal/listing"
	"github.com/gemdesk/gemdesk/internal/platform/backend"
)

// ErrInvalidID rejects non-positive entity ids before they reach upstream.
var ErrInvalidID = errors.New("catalog: invalid entity id")

// Service is the generic resource service for one catalog entity. It wraps
// the upstream REST resource and keeps one list controller per dashboard
// session, so mutations refresh the exact filter and page the operator is
// looking at.
type Service[T any] struct {
	resource *backend.Resource[T]
	views    *listing.Registry[T]
	validate *validator.Validate
}

// NewService constructs a Service for the given upstream base path.
func NewService[T any](client *backend.Client, basePath string, validate *validator.Validate) *Service[T] {
	resource := backend.NewResource[T](client, basePath)
	return &Service[T]{
		resource: resource,
		views:    listing.NewRegistry(func() *listing.Controller[T] { return listing.NewController[T](resource) }, time.Hour),
		validate: validate,
	}
}

// View returns the session-bound list controller.
func (s *Service[T]) View(sessionKey string) *listing.Controller[T] {
	return s.views.Get(sessionKey)
}

// DropView discards the session-bound list state, typically on logout.
func (s *Service[T]) DropView(sessionKey string) {
	s.views.Drop(sessionKey)
}

// Get fetches one entity by id.
func (s *Service[T]) Get(ctx context.Context, id int64) (T, error) {
	var zero T
	if id <= 0 {
		return zero, ErrInvalidID
	}
	return s.resource.Get(ctx, id)
}

// Create validates the draft, submits it and refreshes the caller's view
// at its current filter and page state.
func (s *Service[T]) Create(ctx context.Context, sessionKey string, draft T) (T, listing.Snapshot[T], error) {
	var zero T
	if err := s.validate.Struct(draft); err != nil {
		return zero, s.View(sessionKey).Snapshot(), err
	}
	created, err := s.resource.Create(ctx, draft)
	if err != nil {
		return zero, s.View(sessionKey).Snapshot(), err
	}
	// The write landed; a failed refresh keeps the prior table state and
	// must not mask the successful create.
	snap, _ := s.View(sessionKey).Refresh(ctx)
	return created, snap, nil
}

// Update validates the patch, submits it and refreshes the caller's view.
func (s *Service[T]) Update(ctx context.Context, sessionKey string, id int64, patch T) (T, listing.Snapshot[T], error) {
	var zero T
	if id <= 0 {
		return zero, s.View(sessionKey).Snapshot(), ErrInvalidID
	}
	if err := s.validate.Struct(patch); err != nil {
		return zero, s.View(sessionKey).Snapshot(), err
	}
	updated, err := s.resource.Update(ctx, id, patch)
	if err != nil {
		return zero, s.View(sessionKey).Snapshot(), err
	}
	snap, _ := s.View(sessionKey).Refresh(ctx)
	return updated, snap, nil
}

// Delete removes the entity and refreshes the caller's view, stepping back
// a page when the deleted row was the last one on it.
func (s *Service[T]) Delete(ctx context.Context, sessionKey string, id int64) (listing.Snapshot[T], error) {
	if id <= 0 {
		return s.View(sessionKey).Snapshot(), ErrInvalidID
	}
	if err := s.resource.Delete(ctx, id); err != nil {
		return s.View(sessionKey).Snapshot(), err
	}
	snap, _ := s.View(sessionKey).RefreshAfterDelete(ctx)
	return snap, nil
}
