package daemon

import (
	"container/list"
	"context"
	"sync"
)

// Queue is an unbounded FIFO with any number of producers and a single
// consumer. Send never blocks and never drops.
type Queue[T any] struct {
	mu     sync.Mutex
	items  *list.List
	notify chan struct{}
}

// NewQueue creates an empty queue.
func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{
		items:  list.New(),
		notify: make(chan struct{}, 1),
	}
}

// Send appends v to the queue.
func (q *Queue[T]) Send(v T) {
	q.mu.Lock()
	q.items.PushBack(v)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Receive removes and returns the oldest item, blocking until one is
// available or ctx is done.
func (q *Queue[T]) Receive(ctx context.Context) (T, error) {
	for {
		q.mu.Lock()
		if front := q.items.Front(); front != nil {
			q.items.Remove(front)
			q.mu.Unlock()
			return front.Value.(T), nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		case <-q.notify:
		}
	}
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Len()
}

// RequestQueue carries overlay text from event ingestion to the display worker.
type RequestQueue = Queue[string]

// NewRequestQueue creates an empty request queue.
func NewRequestQueue() *RequestQueue {
	return NewQueue[string]()
}
