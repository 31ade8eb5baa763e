//go:build !solution

package futex

import (
	"slices"
	"sync/atomic"
	"time"
	"unsafe"

	"gitlab.com/slon/atomsync/spinlock"
)

// Prime to not correlate with any user patterns.
const tableSize = 251

type waiter struct {
	addr *atomic.Uint32
	// Буфер на одно пробуждение: wake никогда не блокируется
	ch chan struct{}
}

type bucket struct {
	lock    spinlock.SpinLock
	waiters []*waiter
}

// table emulates futex(2) with per-address FIFO queues of parked
// goroutines. The word is re-checked under the bucket lock, and wakers
// take the same lock after changing the word, so a wakeup can not slip
// between the check and the enqueue.
type table [tableSize]bucket

func (t *table) bucketFor(addr *atomic.Uint32) *bucket {
	return &t[(uintptr(unsafe.Pointer(addr))>>3)%tableSize]
}

func (t *table) wait(addr *atomic.Uint32, cmp uint32, timeout time.Duration) bool {
	b := t.bucketFor(addr)

	b.lock.Lock()
	if addr.Load() != cmp {
		b.lock.Unlock()
		return true
	}
	w := &waiter{addr: addr, ch: make(chan struct{}, 1)}
	b.waiters = append(b.waiters, w)
	b.lock.Unlock()

	if timeout < 0 {
		<-w.ch
		return true
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-w.ch:
		return true
	case <-timer.C:
	}

	b.lock.Lock()
	removed := b.remove(w)
	b.lock.Unlock()
	if !removed {
		// Нас уже достали из очереди, пробуждение в пути
		<-w.ch
		return true
	}
	return false
}

func (t *table) wake(addr *atomic.Uint32, n int) int {
	b := t.bucketFor(addr)

	var woken []*waiter
	b.lock.Lock()
	kept := b.waiters[:0]
	for _, w := range b.waiters {
		if w.addr == addr && len(woken) < n {
			woken = append(woken, w)
			continue
		}
		kept = append(kept, w)
	}
	clear(b.waiters[len(kept):])
	b.waiters = kept
	b.lock.Unlock()

	for _, w := range woken {
		w.ch <- struct{}{}
	}
	return len(woken)
}

// waiting returns the number of goroutines queued on addr.
func (t *table) waiting(addr *atomic.Uint32) int {
	b := t.bucketFor(addr)
	b.lock.Lock()
	defer b.lock.Unlock()

	n := 0
	for _, w := range b.waiters {
		if w.addr == addr {
			n++
		}
	}
	return n
}

func (b *bucket) remove(w *waiter) bool {
	for i, other := range b.waiters {
		if other == w {
			b.waiters = slices.Delete(b.waiters, i, i+1)
			return true
		}
	}
	return false
}
