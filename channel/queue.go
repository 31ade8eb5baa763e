//go:build !solution

package channel

import (
	"gitlab.com/slon/atomsync/condvar"
	"gitlab.com/slon/atomsync/drop"
	"gitlab.com/slon/atomsync/mutex"
)

// Queue is an unbounded FIFO of values guarded by a mutex, with receivers
// waiting on a condition variable. The zero value is an empty queue.
type Queue[T any] struct {
	items mutex.Mutex[[]T]
	ready condvar.Condvar
}

// NewQueue creates an empty Queue.
func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Send appends v and wakes one waiting receiver.
func (q *Queue[T]) Send(v T) {
	g := q.items.Lock()
	*g.Value() = append(*g.Value(), v)
	g.Unlock()
	q.ready.NotifyOne()
}

// Receive removes and returns the oldest value, blocking while the queue
// is empty.
func (q *Queue[T]) Receive() T {
	g := q.items.Lock()
	g = condvar.WaitWhile(&q.ready, g, func(items *[]T) bool {
		return len(*items) == 0
	})
	v := pop(g.Value())
	g.Unlock()
	return v
}

// TryReceive is like Receive but reports false instead of blocking.
func (q *Queue[T]) TryReceive() (T, bool) {
	g := q.items.Lock()
	defer g.Unlock()

	if len(*g.Value()) == 0 {
		var zero T
		return zero, false
	}
	return pop(g.Value()), true
}

// Len returns the number of queued values.
func (q *Queue[T]) Len() int {
	g := q.items.Lock()
	defer g.Unlock()
	return len(*g.Value())
}

// Close destroys the values nobody received.
func (q *Queue[T]) Close() {
	g := q.items.Lock()
	items := *g.Value()
	*g.Value() = nil
	g.Unlock()

	for i := range items {
		drop.Value(&items[i])
	}
}

func pop[T any](items *[]T) T {
	s := *items
	v := s[0]
	var zero T
	s[0] = zero
	*items = s[1:]
	return v
}
