//go:build !solution

// Package optarc implements a reference-counted shared pointer with weak
// references where the weak handle owns the block.
//
// Every Arc embeds a Weak, so the weak count covers all handles and alone
// decides when the block is released. The strong count only decides the
// lifetime of the payload, which is kept in an optional cell: the last strong
// handle empties the cell and destroys the payload in place.
package optarc

import (
	"math"
	"sync/atomic"

	"go.uber.org/zap"

	"gitlab.com/slon/atomsync/drop"
	"gitlab.com/slon/atomsync/fatal"
)

const maxRefs = math.MaxInt64

type block[T any] struct {
	strong atomic.Uint64
	weak   atomic.Uint64
	freed  atomic.Bool
	value  atomic.Pointer[T]
}

// Weak is a weak handle. It keeps the block allocated but not the payload.
type Weak[T any] struct {
	b *block[T]
}

// Arc is a strong handle: a Weak that additionally keeps the payload alive.
type Arc[T any] struct {
	w *Weak[T]
}

// New allocates a block holding v and returns its first strong handle.
func New[T any](v T) *Arc[T] {
	b := &block[T]{}
	b.strong.Store(1)
	b.weak.Store(1)
	b.value.Store(&v)
	return &Arc[T]{w: &Weak[T]{b: b}}
}

func (w *Weak[T]) block() *block[T] {
	if w.b == nil {
		fatal.Violation("optarc: use of dropped weak handle")
	}
	if w.b.freed.Load() {
		fatal.Violation("optarc: use of freed block")
	}
	return w.b
}

func (a *Arc[T]) block() *block[T] {
	if a.w == nil {
		fatal.Violation("optarc: use of dropped handle")
	}
	return a.w.block()
}

// Clone returns a new strong handle to the same payload.
func (a *Arc[T]) Clone() *Arc[T] {
	w := a.w
	if w == nil {
		fatal.Violation("optarc: use of dropped handle")
	}
	weak := w.Clone()

	b := weak.b
	if n := b.strong.Add(1) - 1; n >= maxRefs {
		fatal.Abort("optarc: strong count overflow", zap.Uint64("strong", n))
	}
	return &Arc[T]{w: weak}
}

// Value returns the payload for reading. The pointer is valid until a is
// dropped.
func (a *Arc[T]) Value() *T {
	return a.block().value.Load()
}

// GetMut returns the payload for modification if a is the only handle,
// strong or weak.
func (a *Arc[T]) GetMut() (*T, bool) {
	b := a.block()
	// weak == 1 значит, что кроме a нет ни Arc, ни Weak: новый handle
	// можно получить только из a.
	if b.weak.Load() != 1 {
		return nil, false
	}
	return b.value.Load(), true
}

// Downgrade returns a weak handle to the payload of a.
func (a *Arc[T]) Downgrade() *Weak[T] {
	if a.w == nil {
		fatal.Violation("optarc: use of dropped handle")
	}
	return a.w.Clone()
}

// StrongCount returns the number of strong handles.
func (a *Arc[T]) StrongCount() uint64 {
	return a.block().strong.Load()
}

// WeakCount returns the number of weak handles, not counting the ones
// embedded in strong handles.
func (a *Arc[T]) WeakCount() uint64 {
	b := a.block()
	w, s := b.weak.Load(), b.strong.Load()
	if w < s {
		return 0
	}
	return w - s
}

// Drop releases the strong handle. Dropping the last strong handle destroys
// the payload; the block survives while weak handles exist.
func (a *Arc[T]) Drop() {
	w := a.w
	if w == nil {
		fatal.Violation("optarc: drop of dropped handle")
	}
	a.w = nil

	b := w.block()
	if b.strong.Add(^uint64(0)) == 0 {
		if p := b.value.Swap(nil); p != nil {
			drop.Value(p)
		}
	}
	w.Drop()
}

// Upgrade returns a strong handle if the payload is still alive.
// Once the last strong handle is dropped, Upgrade never succeeds again.
func (w *Weak[T]) Upgrade() (*Arc[T], bool) {
	b := w.block()
	n := b.strong.Load()
	for {
		if n == 0 {
			return nil, false
		}
		if n >= maxRefs {
			fatal.Abort("optarc: strong count overflow", zap.Uint64("strong", n))
		}
		if b.strong.CompareAndSwap(n, n+1) {
			return &Arc[T]{w: w.Clone()}, true
		}
		n = b.strong.Load()
	}
}

// Clone returns a new weak handle to the same block.
func (w *Weak[T]) Clone() *Weak[T] {
	b := w.block()
	if n := b.weak.Add(1) - 1; n >= maxRefs {
		fatal.Abort("optarc: weak count overflow", zap.Uint64("weak", n))
	}
	return &Weak[T]{b: b}
}

// Drop releases the weak handle. Dropping the last handle of any kind
// releases the block. A handle can be dropped only once.
func (w *Weak[T]) Drop() {
	b := w.b
	if b == nil {
		fatal.Violation("optarc: drop of dropped weak handle")
	}
	w.b = nil

	if b.weak.Add(^uint64(0)) == 0 {
		b.freed.Store(true)
	}
}
