package pool

import "sync"

// fifo is an unbounded first-in first-out queue. It is not safe for concurrent
// use; owners guard it with their own lock.
type fifo[T any] struct {
	items []T
}

func (q *fifo[T]) push(v T) {
	q.items = append(q.items, v)
}

func (q *fifo[T]) pop() (T, bool) {
	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	v := q.items[0]
	q.items[0] = zero
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	return v, true
}

func (q *fifo[T]) len() int {
	return len(q.items)
}

// clear drops every queued item and returns how many were dropped.
func (q *fifo[T]) clear() int {
	n := len(q.items)
	q.items = nil
	return n
}

// signalQueue records identities of tasks that raised a signal and have not been
// handed to a waiter yet.
type signalQueue struct {
	mu  sync.Mutex
	ids fifo[ID]
}

func (q *signalQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.ids.len()
}
