//go:build !solution

// Package waitgroup implements a WaitGroup on a futex word.
package waitgroup

import (
	"math"

	"go.uber.org/zap"

	"gitlab.com/slon/atomsync/fatal"
	"gitlab.com/slon/atomsync/futex"
)

// A WaitGroup waits for a collection of goroutines to finish.
// The main goroutine calls Add to set the number of
// goroutines to wait for. Then each of the goroutines
// runs and calls Done when finished. At the same time,
// Wait can be used to block until all goroutines have finished.
//
// The zero value is ready to use. A WaitGroup must not be copied after
// first use.
type WaitGroup struct {
	// Счётчик хранится прямо в слове futex: Wait спит на его текущем
	// значении и просыпается при любом изменении.
	count futex.Futex
}

// New creates WaitGroup.
func New() *WaitGroup {
	return &WaitGroup{}
}

// Add adds delta, which may be negative, to the WaitGroup counter.
// If the counter becomes zero, all goroutines blocked on Wait are released.
// If the counter goes negative, Add reports a contract violation.
//
// Calls with a positive delta that occur when the counter is zero
// must happen before a Wait.
func (wg *WaitGroup) Add(delta int) {
	if delta == 0 {
		return
	}
	if delta > math.MaxInt32 || delta < math.MinInt32 {
		fatal.Violation("waitgroup: delta out of range", zap.Int("delta", delta))
	}

	n := int32(wg.count.Add(uint32(int32(delta))))
	if n < 0 {
		fatal.Violation("waitgroup: negative counter", zap.Int32("counter", n))
	}
	if n == 0 {
		wg.count.WakeAll()
	}
}

// Done decrements the WaitGroup counter by one.
func (wg *WaitGroup) Done() {
	wg.Add(-1)
}

// Wait blocks until the WaitGroup counter is zero.
func (wg *WaitGroup) Wait() {
	for {
		n := wg.count.Load()
		if n == 0 {
			return
		}
		wg.count.Wait(n)
	}
}
