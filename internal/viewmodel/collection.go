// Package viewmodel holds the client-side state of the dashboard: one
// collection per entity, the stats view and the provider filters.
package viewmodel

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// FetchFunc loads a collection for the given filter.
type FetchFunc[T any, F any] func(ctx context.Context, filter F) ([]T, error)

// Snapshot is a copy of a collection's state.
type Snapshot[T any] struct {
	Items   []T
	Loading bool
	Err     string
}

// Collection keeps the items of one entity in server order. Every fetch is
// numbered; a response is applied only if no later fetch was issued.
type Collection[T any, F any] struct {
	fetch FetchFunc[T, F]
	idOf  func(T) uuid.UUID

	mu         sync.Mutex
	filter     F
	items      []T
	loading    bool
	err        string
	generation uint64
}

func NewCollection[T any, F any](fetch FetchFunc[T, F], idOf func(T) uuid.UUID, filter F) *Collection[T, F] {
	return &Collection[T, F]{fetch: fetch, idOf: idOf, filter: filter, items: []T{}}
}

// Load fetches with the current filter. A failed fetch keeps the previous
// items. The returned error is nil when the response was superseded.
func (c *Collection[T, F]) Load(ctx context.Context) error {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	filter := c.filter
	c.loading = true
	c.mu.Unlock()

	items, err := c.fetch(ctx, filter)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return nil
	}
	c.loading = false
	if err != nil {
		c.err = err.Error()
		return err
	}
	if items == nil {
		items = []T{}
	}
	c.items = items
	c.err = ""
	return nil
}

// Refetch reloads unconditionally.
func (c *Collection[T, F]) Refetch(ctx context.Context) error {
	return c.Load(ctx)
}

// SetFilter replaces the filter and reloads.
func (c *Collection[T, F]) SetFilter(ctx context.Context, filter F) error {
	c.mu.Lock()
	c.filter = filter
	c.mu.Unlock()
	return c.Load(ctx)
}

func (c *Collection[T, F]) Filter() F {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

func (c *Collection[T, F]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := make([]T, len(c.items))
	copy(items, c.items)
	return Snapshot[T]{Items: items, Loading: c.loading, Err: c.err}
}

// Items returns a copy of the current items.
func (c *Collection[T, F]) Items() []T {
	return c.Snapshot().Items
}

// Create runs write and appends its result to the end of the items.
func (c *Collection[T, F]) Create(ctx context.Context, write func(ctx context.Context) (T, error)) (T, error) {
	created, err := write(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.err = err.Error()
		return created, err
	}
	c.items = append(c.items, created)
	return created, nil
}

// Update runs write and replaces the item with the given id in place.
func (c *Collection[T, F]) Update(ctx context.Context, id uuid.UUID, write func(ctx context.Context) (T, error)) (T, error) {
	updated, err := write(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.err = err.Error()
		return updated, err
	}
	for i, item := range c.items {
		if c.idOf(item) == id {
			c.items[i] = updated
		}
	}
	return updated, nil
}
