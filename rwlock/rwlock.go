//go:build !solution

// Package rwlock implements a reader/writer lock over a value.
package rwlock

import (
	"math"

	"go.uber.org/zap"

	"gitlab.com/slon/atomsync/fatal"
	"gitlab.com/slon/atomsync/futex"
	"gitlab.com/slon/atomsync/lockstat"
)

// writeLocked is the state of a write-locked RwLock. Any smaller state is
// the number of readers holding the lock.
const writeLocked = math.MaxUint32

// A RwLock is a reader/writer mutual exclusion lock over a value of type T.
// The lock can be held by an arbitrary number of readers or a single writer.
// The zero value for a RwLock is an unlocked lock holding the zero T.
//
// A RwLock must not be copied after first use.
//
// Readers are not blocked by waiting writers, so a steady stream of
// overlapping readers can delay a writer indefinitely. The writer-wait
// counter only guarantees that a writer is woken whenever the lock becomes
// free.
type RwLock[T any] struct {
	_ noCopy
	// Число читателей или writeLocked
	state futex.Futex
	// Увеличивается, чтобы разбудить писателей
	writerWake futex.Futex
	value      T
}

// New creates RwLock holding v.
func New[T any](v T) *RwLock[T] {
	return &RwLock[T]{value: v}
}

// Read locks l for reading. It blocks while the lock is held by a writer.
//
// It is a fatal error to have math.MaxUint32-1 concurrent readers.
func (l *RwLock[T]) Read() *ReadGuard[T] {
	s := l.state.Load()
	for {
		if s < writeLocked {
			if s == writeLocked-1 {
				fatal.Violation("rwlock: too many readers", zap.Uint32("readers", s))
			}
			if l.state.CompareAndSwap(s, s+1) {
				return &ReadGuard[T]{l: l}
			}
			s = l.state.Load()
			continue
		}

		lockstat.Default.Contended(lockstat.RwLockRead)
		sp := lockstat.Default.BeginWait(lockstat.RwLockRead)
		l.state.Wait(writeLocked)
		sp.End()
		s = l.state.Load()
	}
}

// TryRead locks l for reading if no writer holds it.
func (l *RwLock[T]) TryRead() (*ReadGuard[T], bool) {
	s := l.state.Load()
	for s < writeLocked-1 {
		if l.state.CompareAndSwap(s, s+1) {
			return &ReadGuard[T]{l: l}, true
		}
		s = l.state.Load()
	}
	return nil, false
}

// Write locks l for writing. If the lock is already locked for reading or
// writing, Write blocks until the lock is available.
func (l *RwLock[T]) Write() *WriteGuard[T] {
	for !l.state.CompareAndSwap(0, writeLocked) {
		lockstat.Default.Contended(lockstat.RwLockWrite)

		w := l.writerWake.Load()
		// Замок мог освободиться между неудачным CAS и чтением w:
		// засыпаем, только если он всё ещё занят.
		if l.state.Load() != 0 {
			sp := lockstat.Default.BeginWait(lockstat.RwLockWrite)
			l.writerWake.Wait(w)
			sp.End()
		}
	}
	return &WriteGuard[T]{l: l}
}

// TryWrite locks l for writing if it is free.
func (l *RwLock[T]) TryWrite() (*WriteGuard[T], bool) {
	if !l.state.CompareAndSwap(0, writeLocked) {
		return nil, false
	}
	return &WriteGuard[T]{l: l}, true
}

func (l *RwLock[T]) readUnlock() {
	if l.state.Add(^uint32(0)) == 0 {
		// Последний читатель: писатель мог ждать, пока мы все уйдём
		l.wakeWriter()
	}
}

func (l *RwLock[T]) writeUnlock() {
	l.state.Store(0)
	l.wakeWriter()
	lockstat.Default.Wake(lockstat.RwLockRead)
	l.state.WakeAll()
}

func (l *RwLock[T]) wakeWriter() {
	l.writerWake.Add(1)
	lockstat.Default.Wake(lockstat.RwLockWrite)
	l.writerWake.Wake()
}

// ReadGuard is a shared hold of a RwLock.
type ReadGuard[T any] struct {
	l *RwLock[T]
}

// Value returns the protected value. Readers share it, so it must not be
// modified through the returned pointer, nor used after Unlock.
func (g *ReadGuard[T]) Value() *T {
	if g.l == nil {
		fatal.Violation("rwlock: use of released read guard")
	}
	return &g.l.value
}

// Unlock releases the read lock. It does not affect other readers.
// A guard can be released only once.
func (g *ReadGuard[T]) Unlock() {
	l := g.l
	if l == nil {
		fatal.Violation("rwlock: unlock of released read guard")
	}
	g.l = nil
	l.readUnlock()
}

// WriteGuard is an exclusive hold of a RwLock.
type WriteGuard[T any] struct {
	l *RwLock[T]
}

// Value returns the protected value. The pointer must not be used after
// Unlock.
func (g *WriteGuard[T]) Value() *T {
	if g.l == nil {
		fatal.Violation("rwlock: use of released write guard")
	}
	return &g.l.value
}

// Unlock releases the write lock and wakes all waiting readers and one
// waiting writer. A guard can be released only once.
func (g *WriteGuard[T]) Unlock() {
	l := g.l
	if l == nil {
		fatal.Violation("rwlock: unlock of released write guard")
	}
	g.l = nil
	l.writeUnlock()
}

// noCopy may be embedded into structs which must not be copied
// after the first use. See go vet -copylocks.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
