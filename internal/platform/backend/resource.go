package backend

import (
	"context"
	"fmt"
	"strconv"
)

// Resource is a typed REST resource rooted at a base path. Per-entity
// service modules wrap it instead of repeating the request and envelope
// plumbing.
type Resource[T any] struct {
	client *Client
	base   string
}

// NewResource constructs a Resource for the given base path.
func NewResource[T any](client *Client, base string) *Resource[T] {
	return &Resource[T]{client: client, base: base}
}

// Search lists a page of entities matching the filters.
func (r *Resource[T]) Search(ctx context.Context, page, size int, filters Filters) (Page[T], error) {
	if page < 0 {
		return Page[T]{}, fmt.Errorf("backend: page must not be negative")
	}
	if size <= 0 {
		return Page[T]{}, fmt.Errorf("backend: size must be positive")
	}
	raw, err := r.client.Get(ctx, r.base, filters.Query(page, size))
	if err != nil {
		return Page[T]{}, err
	}
	return DecodePage[T](raw, size)
}

// Get fetches a single entity by id.
func (r *Resource[T]) Get(ctx context.Context, id int64) (T, error) {
	var entity T
	raw, err := r.client.Get(ctx, r.base+"/"+strconv.FormatInt(id, 10), nil)
	if err != nil {
		return entity, err
	}
	return DecodeEntity[T](raw)
}

// Create submits a new entity draft.
func (r *Resource[T]) Create(ctx context.Context, draft any) (T, error) {
	var entity T
	raw, err := r.client.Post(ctx, r.base, draft)
	if err != nil {
		return entity, err
	}
	return DecodeEntity[T](raw)
}

// Update replaces an entity by id.
func (r *Resource[T]) Update(ctx context.Context, id int64, patch any) (T, error) {
	var entity T
	raw, err := r.client.Put(ctx, r.base+"/"+strconv.FormatInt(id, 10), patch)
	if err != nil {
		return entity, err
	}
	return DecodeEntity[T](raw)
}

// Delete removes an entity by id.
func (r *Resource[T]) Delete(ctx context.Context, id int64) error {
	return r.client.Delete(ctx, r.base+"/"+strconv.FormatInt(id, 10))
}
