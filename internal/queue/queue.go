// Package queue provides the in-memory dispatch work queue and the background
// consumer that drains it. Producers (the intake handlers) enqueue deferred
// work items without blocking; consumers execute them one at a time.
package queue

import (
	"context"
	"errors"
	"sync"
)

// WorkItem is an opaque unit of deferred execution. The context passed in is
// the consumer's run context; a work item that performs I/O should honor it.
type WorkItem func(ctx context.Context)

// ErrNilWorkItem is returned by Enqueue when the item is nil.
var ErrNilWorkItem = errors.New("nil work item")

// Queue is an unbounded, thread-safe FIFO of work items. Enqueue never
// blocks; Dequeue blocks until an item is available or the context is done.
type Queue struct {
	mu    sync.Mutex
	items []WorkItem

	// wake holds at most one token. It is topped up on every enqueue and
	// whenever a dequeue leaves items behind, so a blocked Dequeue never
	// sleeps while the queue is non-empty.
	wake chan struct{}
}

// New creates an empty Queue.
func New() *Queue {
	return &Queue{wake: make(chan struct{}, 1)}
}

// Enqueue appends item to the queue. It never blocks and fails only for a
// nil item.
func (q *Queue) Enqueue(item WorkItem) error {
	if item == nil {
		return ErrNilWorkItem
	}
	q.mu.Lock()
	q.items = append(q.items, item)
	q.mu.Unlock()
	q.signal()
	return nil
}

// Dequeue removes and returns the oldest item. It blocks until an item is
// available or ctx is done, in which case it returns ctx.Err() and removes
// nothing. Each item is delivered to exactly one caller.
func (q *Queue) Dequeue(ctx context.Context) (WorkItem, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		q.mu.Lock()
		if len(q.items) > 0 {
			item := q.items[0]
			q.items[0] = nil
			q.items = q.items[1:]
			remaining := len(q.items)
			q.mu.Unlock()
			if remaining > 0 {
				q.signal()
			}
			return item, nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-q.wake:
		}
	}
}

// Len returns the current queue depth.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// signal tops up the wake token without blocking.
func (q *Queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}
