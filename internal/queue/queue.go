// Package queue buffers simulation records between storage flushes.
package queue

import (
	"sync"
)

// Queue is a generic thread-safe FIFO buffer. A bounded queue drops the
// newest items once full so a slow backend cannot grow memory without limit.
type Queue[T any] struct {
	mu      sync.Mutex
	items   []T
	limit   int // 0 means unbounded
	dropped uint64
}

// New creates a new empty unbounded queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{
		items: make([]T, 0),
	}
}

// NewBounded creates a queue holding at most limit items.
func NewBounded[T any](limit int) *Queue[T] {
	q := New[T]()
	if limit > 0 {
		q.limit = limit
	}
	return q
}

// Push appends items and returns how many were dropped because the queue was full.
func (q *Queue[T]) Push(items ...T) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	accepted := items
	if q.limit > 0 {
		room := q.limit - len(q.items)
		if room < 0 {
			room = 0
		}
		if len(items) > room {
			accepted = items[:room]
		}
	}
	q.items = append(q.items, accepted...)

	dropped := len(items) - len(accepted)
	q.dropped += uint64(dropped)
	return dropped
}

// Drain returns all items in order and empties the queue.
func (q *Queue[T]) Drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	result := q.items
	q.items = make([]T, 0, cap(q.items))
	return result
}

// DrainN returns up to n items from the front of the queue.
func (q *Queue[T]) DrainN(n int) []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	if n <= 0 {
		return nil
	}
	if n > len(q.items) {
		n = len(q.items)
	}
	result := make([]T, n)
	copy(result, q.items[:n])
	q.items = q.items[n:]
	return result
}

// Empty returns true if the queue has no items.
func (q *Queue[T]) Empty() bool {
	return q.Len() == 0
}

// Len returns the number of items in the queue.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Dropped returns the total number of items rejected since creation.
func (q *Queue[T]) Dropped() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}
