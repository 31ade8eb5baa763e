//go:build !solution

// Package spinlock implements busy-wait mutual exclusion on a single flag.
//
// A SpinLock never blocks the goroutine in the kernel, so it only pays off
// for critical sections that are shorter than a futex round trip.
package spinlock

import (
	"runtime"
	"sync/atomic"

	"gitlab.com/slon/atomsync/tuning"
)

// A SpinLock is a mutual exclusion lock that busy-waits.
// The zero value for a SpinLock is an unlocked lock.
//
// Any attempt to re-acquire a lock already held by the same goroutine
// spins forever.
type SpinLock struct {
	_      noCopy
	locked atomic.Bool
}

// Lock spins until the lock is acquired.
func (l *SpinLock) Lock() {
	if !l.locked.Swap(true) {
		return
	}
	l.lockSlow()
}

func (l *SpinLock) lockSlow() {
	yield := tuning.Get().SpinYield
	spins := 0
	for {
		// Крутимся на чтении, а не на Swap, чтобы не гонять кэш-линию
		for l.locked.Load() {
			spins++
			if yield > 0 && spins%yield == 0 {
				runtime.Gosched()
			}
		}
		if !l.locked.Swap(true) {
			return
		}
	}
}

// TryLock acquires the lock if it is free and reports whether it did.
func (l *SpinLock) TryLock() bool {
	return !l.locked.Swap(true)
}

// Unlock releases the lock. Calling Unlock on a free lock has no effect.
func (l *SpinLock) Unlock() {
	l.locked.Store(false)
}

// noCopy may be embedded into structs which must not be copied
// after the first use. See go vet -copylocks.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
