//go:build !solution

// Package mutex implements a blocking mutual exclusion lock over a value.
//
// The lock is a single futex word with three states. An uncontended
// Lock/Unlock pair costs one compare-and-swap and one swap; a contended Lock
// spins briefly and then sleeps on the word until Unlock wakes it.
package mutex

import (
	"gitlab.com/slon/atomsync/fatal"
	"gitlab.com/slon/atomsync/futex"
	"gitlab.com/slon/atomsync/lockstat"
	"gitlab.com/slon/atomsync/tuning"
)

// Possible lock states.
// locked means the lock is held and nobody sleeps on it;
// contended means there is presumably at least one sleeping goroutine.
const (
	unlocked  = 0
	locked    = 1
	contended = 2
)

// A Mutex is a mutual exclusion lock protecting a value of type T.
// The zero value for a Mutex is an unlocked mutex holding the zero T.
//
// A Mutex must not be copied after first use.
//
// The lock is not reentrant: a goroutine that calls Lock while already
// holding the lock deadlocks.
type Mutex[T any] struct {
	_     noCopy
	state futex.Futex
	value T
}

// New creates a Mutex holding v.
func New[T any](v T) *Mutex[T] {
	return &Mutex[T]{value: v}
}

// Lock locks m and returns the guard giving access to the value.
// If the lock is already in use, the calling goroutine blocks until
// the mutex is available.
func (m *Mutex[T]) Lock() *Guard[T] {
	if !m.state.CompareAndSwap(unlocked, locked) {
		m.lockContended()
	}
	return &Guard[T]{m: m}
}

// TryLock tries to lock m without blocking.
func (m *Mutex[T]) TryLock() (*Guard[T], bool) {
	if !m.state.CompareAndSwap(unlocked, locked) {
		return nil, false
	}
	return &Guard[T]{m: m}, true
}

func (m *Mutex[T]) lockContended() {
	lockstat.Default.Contended(lockstat.Mutex)

	// Короткая критическая секция могла вот-вот закончиться:
	// опрашиваем слово, пока его держат без ожидающих.
	spin := tuning.Get().MutexSpin
	for i := 0; i < spin && m.state.Load() == locked; i++ {
	}
	if m.state.CompareAndSwap(unlocked, locked) {
		return
	}

	// Swap в contended: даже если мы возьмём замок, кто-то ещё мог
	// уснуть, и Unlock должен будет его разбудить.
	for m.state.Swap(contended) != unlocked {
		sp := lockstat.Default.BeginWait(lockstat.Mutex)
		m.state.Wait(contended)
		sp.End()
	}
}

func (m *Mutex[T]) unlock() {
	if old := m.state.Swap(unlocked); old == contended {
		lockstat.Default.Wake(lockstat.Mutex)
		m.state.Wake()
	} else if old == unlocked {
		fatal.Violation("mutex: unlock of unlocked mutex")
	}
}

// Guard is the proof of holding a Mutex. Releasing the guard is the only
// way to unlock the mutex.
type Guard[T any] struct {
	m *Mutex[T]
}

// Value returns the protected value. The pointer must not be used after
// Unlock.
func (g *Guard[T]) Value() *T {
	if g.m == nil {
		fatal.Violation("mutex: use of released guard")
	}
	return &g.m.value
}

// Mutex returns the mutex the guard belongs to.
func (g *Guard[T]) Mutex() *Mutex[T] {
	if g.m == nil {
		fatal.Violation("mutex: use of released guard")
	}
	return g.m
}

// Unlock releases the mutex. A guard can be released only once.
func (g *Guard[T]) Unlock() {
	m := g.m
	if m == nil {
		fatal.Violation("mutex: unlock of released guard")
	}
	g.m = nil
	m.unlock()
}

// noCopy may be embedded into structs which must not be copied
// after the first use. See go vet -copylocks.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
