//go:build !solution

package channel

import (
	"sync/atomic"

	"go.uber.org/zap"

	"gitlab.com/slon/atomsync/drop"
	"gitlab.com/slon/atomsync/fatal"
)

// States of a OneShot. They only ever move forward.
const (
	empty uint32 = iota
	writing
	filled
	reading
)

// OneShot is a single-use slot: one Send, then one Receive.
// The zero value is an empty slot.
type OneShot[T any] struct {
	_     noCopy
	state atomic.Uint32
	value T
}

// NewOneShot creates an empty OneShot.
func NewOneShot[T any]() *OneShot[T] {
	return &OneShot[T]{}
}

// Send stores v. It is a contract violation to send more than once.
func (c *OneShot[T]) Send(v T) {
	if !c.state.CompareAndSwap(empty, writing) {
		fatal.Violation("channel: send on used one-shot channel", zap.Uint32("state", c.state.Load()))
	}
	c.value = v
	c.state.Store(filled)
}

// IsReady reports whether a value was sent and not yet received.
func (c *OneShot[T]) IsReady() bool {
	return c.state.Load() == filled
}

// Receive returns the sent value. It is a contract violation to receive
// before IsReady reports true, or to receive more than once.
func (c *OneShot[T]) Receive() T {
	if !c.state.CompareAndSwap(filled, reading) {
		fatal.Violation("channel: receive on one-shot channel that is not ready", zap.Uint32("state", c.state.Load()))
	}
	v := c.value
	var zero T
	c.value = zero
	return v
}

// Close destroys a value that was sent but never received.
// Closing an empty slot does nothing.
func (c *OneShot[T]) Close() {
	if c.state.CompareAndSwap(filled, reading) {
		drop.Value(&c.value)
	}
}
