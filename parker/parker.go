//go:build !solution

// Package parker implements a park/unpark token for blocking one goroutine
// until another one signals it.
//
// A Parker holds at most one token. Unpark stores the token, Park consumes
// it, blocking until it is available. An Unpark that happens before the
// matching Park is not lost: the next Park returns immediately.
package parker

import (
	"math"
	"time"

	"gitlab.com/slon/atomsync/futex"
	"gitlab.com/slon/atomsync/lockstat"
)

// Token states. Park moves the word down by one, so notified becomes
// empty and empty becomes parked.
const (
	empty    = 0
	notified = 1
	parked   = math.MaxUint32
)

// Parker is owned by the goroutine that parks on it; any goroutine may
// unpark it. The zero value holds no token.
//
// Only one goroutine may call Park or ParkTimeout at a time.
type Parker struct {
	state futex.Futex
}

// New creates a Parker without a token.
func New() *Parker {
	return &Parker{}
}

// Park blocks until the token is available and consumes it.
func (p *Parker) Park() {
	if p.state.Add(^uint32(0)) == empty {
		return
	}

	sp := lockstat.Default.BeginWait(lockstat.Parker)
	defer sp.End()
	for {
		p.state.Wait(parked)
		// Пробуждение могло быть ложным: токен должен реально появиться
		if p.state.CompareAndSwap(notified, empty) {
			return
		}
	}
}

// ParkTimeout is like Park but gives up after d. It reports whether the
// token was consumed.
func (p *Parker) ParkTimeout(d time.Duration) bool {
	if p.state.Add(^uint32(0)) == empty {
		return true
	}

	sp := lockstat.Default.BeginWait(lockstat.Parker)
	p.state.WaitTimeout(parked, d)
	sp.End()
	return p.state.Swap(empty) == notified
}

// Unpark makes the token available, waking the parked goroutine if there
// is one. Tokens do not accumulate.
func (p *Parker) Unpark() {
	if p.state.Swap(notified) == parked {
		lockstat.Default.Wake(lockstat.Parker)
		p.state.Wake()
	}
}
