//go:build !solution

// Package channel implements one-value handoffs between goroutines.
//
// Channel is a reusable rendezvous split into a sender and a receiver that
// borrow it. Queue is an unbounded multi-value queue. OneShot is a single-use
// slot with explicit states. NewShared creates a single-use pair that share
// ownership of the slot instead of borrowing it.
//
// Misuse (a second send, a receive before the value is ready) is a contract
// violation reported through package fatal.
package channel

import (
	"sync/atomic"

	"gitlab.com/slon/atomsync/drop"
	"gitlab.com/slon/atomsync/fatal"
	"gitlab.com/slon/atomsync/parker"
)

// Bits of Channel.state.
const (
	senderOut   = 1 << iota // Sender ещё не отправил и не отброшен
	receiverOut             // Receiver ещё не получил и не отброшен
	ready                   // значение записано и не прочитано
)

// Channel carries one value at a time from a Sender to a Receiver obtained
// from Split. The zero value is ready to use. A Channel must not be copied
// after first use.
type Channel[T any] struct {
	_     noCopy
	state atomic.Uint32
	value T
}

// Split resets the channel and returns a fresh sender/receiver pair.
// An unread value left by the previous pair is destroyed.
//
// Both handles borrow the channel: it is a contract violation to Split or
// Close the channel while either of them is still in use.
func (c *Channel[T]) Split() (*Sender[T], *Receiver[T]) {
	s := c.state.Load()
	if s&(senderOut|receiverOut) != 0 {
		fatal.Violation("channel: split while the previous pair is in use")
	}
	if s&ready != 0 {
		drop.Value(&c.value)
	}
	if !c.state.CompareAndSwap(s, senderOut|receiverOut) {
		fatal.Violation("channel: concurrent split")
	}

	p := parker.New()
	return &Sender[T]{c: c, p: p}, &Receiver[T]{c: c, p: p}
}

// Close destroys an unread value. It is a contract violation to Close the
// channel while a sender or receiver is in use.
func (c *Channel[T]) Close() {
	s := c.state.Load()
	if s&(senderOut|receiverOut) != 0 {
		fatal.Violation("channel: close while a pair is in use")
	}
	if s&ready != 0 && c.state.CompareAndSwap(s, 0) {
		drop.Value(&c.value)
	}
}

// Sender is the sending half of a split Channel.
type Sender[T any] struct {
	c *Channel[T]
	p *parker.Parker
}

// Send stores v and wakes the receiver. A sender can send only once.
func (s *Sender[T]) Send(v T) {
	c := s.c
	if c == nil {
		fatal.Violation("channel: send on used sender")
	}
	s.c = nil

	c.value = v
	// Одной операцией публикуем значение и отпускаем канал со стороны Sender.
	c.state.Add(ready - senderOut)
	s.p.Unpark()
}

// Drop abandons a sender that has not sent. It does nothing after Send.
func (s *Sender[T]) Drop() {
	if c := s.c; c != nil {
		s.c = nil
		c.state.And(^uint32(senderOut))
	}
}

// Receiver is the receiving half of a split Channel. It is owned by the
// goroutine that receives.
type Receiver[T any] struct {
	c *Channel[T]
	p *parker.Parker
}

// IsReady reports whether Receive would return without blocking.
func (r *Receiver[T]) IsReady() bool {
	if r.c == nil {
		fatal.Violation("channel: use of used receiver")
	}
	return r.c.state.Load()&ready != 0
}

// Receive blocks until the value is sent and returns it.
// A receiver can receive only once.
func (r *Receiver[T]) Receive() T {
	c := r.c
	if c == nil {
		fatal.Violation("channel: receive on used receiver")
	}
	r.c = nil

	for c.state.Load()&ready == 0 {
		r.p.Park()
	}

	v := c.value
	var zero T
	c.value = zero
	c.state.And(^uint32(ready | receiverOut))
	return v
}

// Drop abandons a receiver that has not received. An unread value stays in
// the channel until the next Split or Close.
func (r *Receiver[T]) Drop() {
	if c := r.c; c != nil {
		r.c = nil
		c.state.And(^uint32(receiverOut))
	}
}

// noCopy may be embedded into structs which must not be copied
// after the first use. See go vet -copylocks.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
