//go:build !solution

// Package condvar implements a condition variable for mutex.Mutex.
//
// A waiter captures the notification counter while it still holds the
// mutex and then sleeps on that counter value. Any notification issued after
// the capture changes the counter, so the futex wait returns immediately and
// the wakeup is never lost. Spurious wakeups are possible; callers re-check
// their condition in a loop, or use WaitWhile.
package condvar

import (
	"sync/atomic"
	"time"

	"gitlab.com/slon/atomsync/futex"
	"gitlab.com/slon/atomsync/lockstat"
	"gitlab.com/slon/atomsync/mutex"
)

// Condvar is a condition variable. The zero value is ready to use.
// A Condvar must not be copied after first use.
type Condvar struct {
	counter futex.Futex
	waiters atomic.Uint32
}

// New creates a Condvar.
func New() *Condvar {
	return &Condvar{}
}

// Wait atomically unlocks the mutex held by g and suspends the calling
// goroutine until a notification. Before returning, Wait locks the same
// mutex again and returns the new guard; g must not be used afterwards.
func Wait[T any](c *Condvar, g *mutex.Guard[T]) *mutex.Guard[T] {
	g, _ = wait(c, g, -1)
	return g
}

// WaitTimeout is like Wait but gives up after d. It reports whether the
// wait timed out. The mutex is locked again in both cases.
func WaitTimeout[T any](c *Condvar, g *mutex.Guard[T], d time.Duration) (*mutex.Guard[T], bool) {
	if d < 0 {
		d = 0
	}
	return wait(c, g, d)
}

// WaitWhile waits as long as cond returns true for the protected value.
func WaitWhile[T any](c *Condvar, g *mutex.Guard[T], cond func(*T) bool) *mutex.Guard[T] {
	for cond(g.Value()) {
		g = Wait(c, g)
	}
	return g
}

func wait[T any](c *Condvar, g *mutex.Guard[T], d time.Duration) (*mutex.Guard[T], bool) {
	c.waiters.Add(1)
	// Значение счётчика запоминаем, пока мьютекс ещё у нас
	seq := c.counter.Load()

	m := g.Mutex()
	g.Unlock()

	sp := lockstat.Default.BeginWait(lockstat.Condvar)
	timedOut := false
	if d < 0 {
		c.counter.Wait(seq)
	} else {
		timedOut = !c.counter.WaitTimeout(seq, d)
	}
	sp.End()

	c.waiters.Add(^uint32(0))
	return m.Lock(), timedOut
}

// NotifyOne wakes one goroutine waiting on c, if there is any.
func (c *Condvar) NotifyOne() {
	if c.waiters.Load() > 0 {
		c.counter.Add(1)
		lockstat.Default.Wake(lockstat.Condvar)
		c.counter.Wake()
	}
}

// NotifyAll wakes all goroutines waiting on c.
func (c *Condvar) NotifyAll() {
	if c.waiters.Load() > 0 {
		c.counter.Add(1)
		lockstat.Default.Wake(lockstat.Condvar)
		c.counter.WakeAll()
	}
}
