//go:build !solution

package spinlock

import (
	"gitlab.com/slon/atomsync/fatal"
)

// Locked is a value protected by a SpinLock. Access goes through a Guard.
type Locked[T any] struct {
	lock  SpinLock
	value T
}

// NewLocked creates Locked holding v.
func NewLocked[T any](v T) *Locked[T] {
	return &Locked[T]{value: v}
}

// Lock spins until the lock is acquired and returns the guard.
func (l *Locked[T]) Lock() *Guard[T] {
	l.lock.Lock()
	return &Guard[T]{l: l}
}

// Guard grants exclusive access to the value until Unlock.
type Guard[T any] struct {
	l *Locked[T]
}

// Value returns the protected value. The pointer must not be used after
// Unlock.
func (g *Guard[T]) Value() *T {
	if g.l == nil {
		fatal.Violation("spinlock: use of released guard")
	}
	return &g.l.value
}

// Unlock releases the lock. A guard can be released only once.
func (g *Guard[T]) Unlock() {
	l := g.l
	if l == nil {
		fatal.Violation("spinlock: unlock of released guard")
	}
	g.l = nil
	l.lock.Unlock()
}
