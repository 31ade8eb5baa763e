//go:build !solution

// Package weakarc implements a reference-counted shared pointer with weak
// references, counting both kinds in one block.
//
// The block keeps two counts. strong counts Arc handles. alloc counts Weak
// handles plus one shared by all Arc handles together, so the block stays
// allocated while either kind of handle exists. The payload is destroyed when
// strong reaches zero; the block is released when alloc reaches zero.
package weakarc

import (
	"math"
	"runtime"
	"sync/atomic"

	"go.uber.org/zap"

	"gitlab.com/slon/atomsync/drop"
	"gitlab.com/slon/atomsync/fatal"
)

const (
	maxRefs = math.MaxInt64

	// claimed is stored into alloc by GetMut while it checks strong.
	// Downgrade waits it out, so no Weak appears between the two checks.
	claimed = math.MaxUint64
)

type block[T any] struct {
	strong atomic.Uint64
	alloc  atomic.Uint64
	freed  atomic.Bool
	value  T
}

func (b *block[T]) releaseWeak() {
	if b.alloc.Add(^uint64(0)) == 0 {
		b.freed.Store(true)
	}
}

// Arc is a strong handle: it keeps the payload alive.
type Arc[T any] struct {
	b *block[T]
}

// Weak is a weak handle: it keeps the block allocated but not the payload.
type Weak[T any] struct {
	b *block[T]
}

// New allocates a block holding v and returns its first strong handle.
func New[T any](v T) *Arc[T] {
	b := &block[T]{value: v}
	b.strong.Store(1)
	b.alloc.Store(1)
	return &Arc[T]{b: b}
}

func (a *Arc[T]) block() *block[T] {
	if a.b == nil {
		fatal.Violation("weakarc: use of dropped handle")
	}
	if a.b.freed.Load() {
		fatal.Violation("weakarc: use of freed block")
	}
	return a.b
}

// Clone returns a new strong handle to the same payload.
func (a *Arc[T]) Clone() *Arc[T] {
	b := a.block()
	if n := b.strong.Add(1) - 1; n >= maxRefs {
		fatal.Abort("weakarc: strong count overflow", zap.Uint64("strong", n))
	}
	return &Arc[T]{b: b}
}

// Value returns the payload for reading. The pointer is valid until a is
// dropped.
func (a *Arc[T]) Value() *T {
	return &a.block().value
}

// GetMut returns the payload for modification if a is the only handle,
// strong or weak.
func (a *Arc[T]) GetMut() (*T, bool) {
	b := a.block()

	// Захватываем alloc: пока там claimed, Downgrade не создаст новый Weak,
	// а значит strong == 1 не изменится за время проверки.
	if !b.alloc.CompareAndSwap(1, claimed) {
		return nil, false
	}
	unique := b.strong.Load() == 1
	b.alloc.Store(1)

	if !unique {
		return nil, false
	}
	return &b.value, true
}

// Downgrade returns a weak handle to the payload of a.
func (a *Arc[T]) Downgrade() *Weak[T] {
	b := a.block()
	n := b.alloc.Load()
	for {
		if n == claimed {
			runtime.Gosched()
			n = b.alloc.Load()
			continue
		}
		if n >= maxRefs {
			fatal.Abort("weakarc: weak count overflow", zap.Uint64("alloc", n))
		}
		if b.alloc.CompareAndSwap(n, n+1) {
			return &Weak[T]{b: b}
		}
		n = b.alloc.Load()
	}
}

// StrongCount returns the number of strong handles.
func (a *Arc[T]) StrongCount() uint64 {
	return a.block().strong.Load()
}

// WeakCount returns the number of weak handles.
func (a *Arc[T]) WeakCount() uint64 {
	b := a.block()
	n := b.alloc.Load()
	if n == claimed {
		return 0
	}
	if b.strong.Load() > 0 {
		n--
	}
	return n
}

// Drop releases the strong handle. Dropping the last strong handle destroys
// the payload; the block survives while weak handles exist.
func (a *Arc[T]) Drop() {
	b := a.b
	if b == nil {
		fatal.Violation("weakarc: drop of dropped handle")
	}
	a.b = nil

	if b.strong.Add(^uint64(0)) == 0 {
		drop.Value(&b.value)
		// Общая слабая ссылка всех Arc
		b.releaseWeak()
	}
}

func (w *Weak[T]) block() *block[T] {
	if w.b == nil {
		fatal.Violation("weakarc: use of dropped weak handle")
	}
	return w.b
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
			fatal.Abort("weakarc: strong count overflow", zap.Uint64("strong", n))
		}
		if b.strong.CompareAndSwap(n, n+1) {
			return &Arc[T]{b: b}, true
		}
		n = b.strong.Load()
	}
}

// Clone returns a new weak handle to the same block.
func (w *Weak[T]) Clone() *Weak[T] {
	b := w.block()
	if n := b.alloc.Add(1) - 1; n >= maxRefs {
		fatal.Abort("weakarc: weak count overflow", zap.Uint64("alloc", n))
	}
	return &Weak[T]{b: b}
}

// Drop releases the weak handle. A handle can be dropped only once.
func (w *Weak[T]) Drop() {
	b := w.b
	if b == nil {
		fatal.Violation("weakarc: drop of dropped weak handle")
	}
	w.b = nil
	b.releaseWeak()
}
