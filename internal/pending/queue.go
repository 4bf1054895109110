// Package pending holds asked-but-not-yet-told trials and releases them in
// FIFO order once the queue grows past a fixed lag.
package pending

import "fmt"

// Queue is a bounded FIFO. Pushing past the lag releases the oldest entry.
// A Queue belongs to one run and is not safe for concurrent use.
type Queue[T any] struct {
	lag     int
	items   []T
	maxSeen int
}

// New creates a queue that holds at most lag entries between pushes
func New[T any](lag int) (*Queue[T], error) {
	if lag < 0 {
		return nil, fmt.Errorf("tell lag must be non-negative, got %d", lag)
	}
	return &Queue[T]{
		lag:   lag,
		items: make([]T, 0, lag+1),
	}, nil
}

// Lag returns the configured bound
func (q *Queue[T]) Lag() int {
	return q.lag
}

// Len returns the number of held entries
func (q *Queue[T]) Len() int {
	return len(q.items)
}

// MaxDepth is the largest depth observed right after a push
func (q *Queue[T]) MaxDepth() int {
	return q.maxSeen
}

// Push appends item. If the depth then exceeds the lag, the oldest entry is
// removed and returned with ok set.
func (q *Queue[T]) Push(item T) (released T, ok bool) {
	q.items = append(q.items, item)
	if len(q.items) > q.maxSeen {
		q.maxSeen = len(q.items)
	}
	if len(q.items) > q.lag {
		return q.PopOldest()
	}
	return released, false
}

// PopOldest removes and returns the oldest entry
func (q *Queue[T]) PopOldest() (T, bool) {
	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	item := q.items[0]
	q.items[0] = zero
	q.items = q.items[1:]
	return item, true
}

// Drain removes every held entry, oldest first
func (q *Queue[T]) Drain() []T {
	out := make([]T, len(q.items))
	copy(out, q.items)
	var zero T
	for i := range q.items {
		q.items[i] = zero
	}
	q.items = q.items[:0]
	return out
}
