//go:build !solution

// Package arc implements an atomically reference-counted shared pointer.
//
// Every handle owns one unit of the strong count. The handle that takes the
// count from one to zero is the only one that destroys the payload, so the
// payload is destroyed exactly once no matter how clones and drops of other
// handles interleave.
package arc

import (
	"math"
	"sync/atomic"

	"go.uber.org/zap"

	"gitlab.com/slon/atomsync/drop"
	"gitlab.com/slon/atomsync/fatal"
)

// maxRefs bounds the strong count. Reaching it means handles are leaked
// in a loop, and wrapping the counter would free a live payload.
const maxRefs = math.MaxInt64

type block[T any] struct {
	refs  atomic.Uint64
	freed atomic.Bool
	value T
}

// Arc is a handle to a shared payload of type T.
type Arc[T any] struct {
	b *block[T]
}

// New allocates a block holding v and returns its first handle.
func New[T any](v T) *Arc[T] {
	b := &block[T]{value: v}
	b.refs.Store(1)
	return &Arc[T]{b: b}
}

func (a *Arc[T]) block() *block[T] {
	b := a.b
	if b == nil {
		fatal.Violation("arc: use of dropped handle")
	}
	if b.freed.Load() {
		fatal.Violation("arc: use of freed block")
	}
	return b
}

// Clone returns a new handle to the same payload.
//
// The process is aborted if the strong count reaches its maximum.
func (a *Arc[T]) Clone() *Arc[T] {
	b := a.block()
	// Существующий handle уже держит блок живым, так что упорядочивание
	// тут не нужно, но переполнение проверяем.
	if n := b.refs.Add(1) - 1; n >= maxRefs {
		fatal.Abort("arc: reference count overflow", zap.Uint64("refs", n))
	}
	return &Arc[T]{b: b}
}

// Value returns the payload. Other handles may read it concurrently, so it
// must not be modified. The pointer is valid until a is dropped.
func (a *Arc[T]) Value() *T {
	return &a.block().value
}

// GetMut returns the payload for modification if a is the only handle.
func (a *Arc[T]) GetMut() (*T, bool) {
	b := a.block()
	if b.refs.Load() != 1 {
		return nil, false
	}
	return &b.value, true
}

// Count returns the current number of handles. It is only a snapshot.
func (a *Arc[T]) Count() uint64 {
	return a.block().refs.Load()
}

// Drop releases the handle. Dropping the last handle destroys the payload.
// A handle can be dropped only once.
func (a *Arc[T]) Drop() {
	b := a.b
	if b == nil {
		fatal.Violation("arc: drop of dropped handle")
	}
	a.b = nil

	if b.refs.Add(^uint64(0)) == 0 {
		drop.Value(&b.value)
		b.freed.Store(true)
	}
}

// Same reports whether a and b are handles to the same payload.
func Same[T any](a, b *Arc[T]) bool {
	return a.block() == b.block()
}
