//go:build !solution

// Package futex provides futex-style blocking on a 32-bit atomic word:
// a goroutine sleeps only while the word still holds the value it expects,
// and is woken by a goroutine that changed the word.
//
// On Linux the futex(2) system call is used directly. Other platforms use a
// table of waiter queues hashed by word address.
//
// Wakeups may be spurious; callers must re-check the condition they are
// waiting for.
package futex

import (
	"math"
	"sync/atomic"
	"time"
)

// Futex is an atomic word that goroutines can wait on.
// The zero value holds 0 and has no waiters.
type Futex struct {
	atomic.Uint32
}

// Wait blocks while the word equals cmp. It returns at once if the word
// holds another value, and may return spuriously.
func (f *Futex) Wait(cmp uint32) {
	wait(&f.Uint32, cmp, -1)
}

// WaitTimeout is like Wait but gives up after d. It reports false if the
// timeout elapsed, true if it returned for any other reason.
func (f *Futex) WaitTimeout(cmp uint32, d time.Duration) bool {
	if d < 0 {
		d = 0
	}
	return wait(&f.Uint32, cmp, d)
}

// Wake wakes at most one goroutine blocked on the word.
func (f *Futex) Wake() {
	wake(&f.Uint32, 1)
}

// WakeAll wakes every goroutine blocked on the word.
func (f *Futex) WakeAll() {
	wake(&f.Uint32, math.MaxInt32)
}
