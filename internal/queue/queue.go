// Package queue collects values produced by concurrent workers.
package queue

import (
	"slices"
	"sync"
)

// Queue gathers items from many goroutines and hands them back in one batch.
type Queue[T any] struct {
	mu    sync.Mutex
	items []T
}

// New creates a new empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Push appends items to the queue.
func (q *Queue[T]) Push(items ...T) {
	q.mu.Lock()
	q.items = append(q.items, items...)
	q.mu.Unlock()
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Drain empties the queue and returns its items in push order.
func (q *Queue[T]) Drain() []T {
	q.mu.Lock()
	out := q.items
	q.items = nil
	q.mu.Unlock()
	return out
}

// DrainSorted empties the queue and returns its items ordered by cmp.
// Items that compare equal keep their push order.
func (q *Queue[T]) DrainSorted(cmp func(a, b T) int) []T {
	out := q.Drain()
	slices.SortStableFunc(out, cmp)
	return out
}
