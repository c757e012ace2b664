package listing

import (
	"sync"
	"time"
)

// Registry hands out one controller per dashboard session so the current
// filter and page state of a view survives across requests. Entries expire
// after idleTTL of inactivity.
type Registry[T any] struct {
	mu      sync.Mutex
	factory func() *Controller[T]
	idleTTL time.Duration
	entries map[string]*registryEntry[T]
	now     func() time.Time
}

type registryEntry[T any] struct {
	controller *Controller[T]
	lastSeen   time.Time
}

// NewRegistry constructs a Registry using factory for new sessions.
func NewRegistry[T any](factory func() *Controller[T], idleTTL time.Duration) *Registry[T] {
	if idleTTL <= 0 {
		idleTTL = 30 * time.Minute
	}
	return &Registry[T]{
		factory: factory,
		idleTTL: idleTTL,
		entries: make(map[string]*registryEntry[T]),
		now:     time.Now,
	}
}

// Get returns the controller bound to key, creating it when absent.
func (r *Registry[T]) Get(key string) *Controller[T] {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.sweepLocked(now)

	if entry, ok := r.entries[key]; ok {
		entry.lastSeen = now
		return entry.controller
	}
	controller := r.factory()
	r.entries[key] = &registryEntry[T]{controller: controller, lastSeen: now}
	return controller
}

// Drop removes the controller bound to key, typically on logout.
func (r *Registry[T]) Drop(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, key)
}

func (r *Registry[T]) sweepLocked(now time.Time) {
	for key, entry := range r.entries {
		if now.Sub(entry.lastSeen) > r.idleTTL {
			delete(r.entries, key)
		}
	}
}
