// Package store holds the durable collections behind the review board:
// the pending and approved review partitions and the reports log.
package store

import (
	"context"
	"sync"
)

// Collection is an ordered collection that is always read and replaced as a
// whole. ReadAll on a collection that was never written returns no items.
type Collection[T any] interface {
	ReadAll(ctx context.Context) ([]T, error)
	WriteAll(ctx context.Context, items []T) error
}

// Names of the collections used by the application.
const (
	PendingReviews  = "pending-reviews"
	ApprovedReviews = "reviews"
	Reports         = "reports"
)

// MemoryCollection keeps items in process memory. It is used in tests and
// when durability is not needed.
type MemoryCollection[T any] struct {
	mu    sync.RWMutex
	items []T
}

func NewMemoryCollection[T any](items ...T) *MemoryCollection[T] {
	return &MemoryCollection[T]{items: items}
}

func (m *MemoryCollection[T]) ReadAll(_ context.Context) ([]T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]T, len(m.items))
	copy(out, m.items)
	return out, nil
}

func (m *MemoryCollection[T]) WriteAll(_ context.Context, items []T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = make([]T, len(items))
	copy(m.items, items)
	return nil
}
