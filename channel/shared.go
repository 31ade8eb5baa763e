//go:build !solution

package channel

import (
	"sync/atomic"

	"gitlab.com/slon/atomsync/arc"
	"gitlab.com/slon/atomsync/drop"
	"gitlab.com/slon/atomsync/fatal"
	"gitlab.com/slon/atomsync/parker"
)

type slot[T any] struct {
	ready atomic.Bool
	value T
}

// Drop is run by the last handle and destroys an unread value.
func (s *slot[T]) Drop() {
	if s.ready.Swap(false) {
		drop.Value(&s.value)
	}
}

// SharedSender is the sending half of a pair made by NewShared.
type SharedSender[T any] struct {
	a *arc.Arc[slot[T]]
}

// SharedReceiver is the receiving half of a pair made by NewShared.
type SharedReceiver[T any] struct {
	a *arc.Arc[slot[T]]
}

// NewShared creates a single-use sender/receiver pair. Each half holds its
// own reference to the slot, so either can outlive the other; the last one
// dropped destroys an unread value.
//
// Receive does not block: the receiver polls IsReady and waits on its own,
// for example on a parker.Parker passed to SendAndUnpark.
func NewShared[T any]() (*SharedSender[T], *SharedReceiver[T]) {
	a := arc.New(slot[T]{})
	return &SharedSender[T]{a: a.Clone()}, &SharedReceiver[T]{a: a}
}

// Send stores v and releases the sender. A sender can send only once.
func (s *SharedSender[T]) Send(v T) {
	a := s.a
	if a == nil {
		fatal.Violation("channel: send on used sender")
	}
	s.a = nil

	sl := a.Value()
	sl.value = v
	sl.ready.Store(true)
	a.Drop()
}

// SendAndUnpark sends v and then unparks p.
func (s *SharedSender[T]) SendAndUnpark(v T, p *parker.Parker) {
	s.Send(v)
	p.Unpark()
}

// Drop releases a sender that has not sent. It does nothing after Send.
func (s *SharedSender[T]) Drop() {
	if a := s.a; a != nil {
		s.a = nil
		a.Drop()
	}
}

// IsReady reports whether the value was sent.
func (r *SharedReceiver[T]) IsReady() bool {
	if r.a == nil {
		fatal.Violation("channel: use of used receiver")
	}
	return r.a.Value().ready.Load()
}

// Receive takes the sent value and releases the receiver. It is a contract
// violation to receive before IsReady reports true, or to receive twice.
func (r *SharedReceiver[T]) Receive() T {
	a := r.a
	if a == nil {
		fatal.Violation("channel: receive on used receiver")
	}

	sl := a.Value()
	if !sl.ready.Swap(false) {
		fatal.Violation("channel: receive before value is ready")
	}
	r.a = nil

	v := sl.value
	var zero T
	sl.value = zero
	a.Drop()
	return v
}

// Drop releases a receiver that has not received. It does nothing after
// Receive.
func (r *SharedReceiver[T]) Drop() {
	if a := r.a; a != nil {
		r.a = nil
		a.Drop()
	}
}
