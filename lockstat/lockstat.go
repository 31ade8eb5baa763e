//go:build !solution

// Package lockstat counts contention events of the blocking primitives:
// how often a lock was found taken, how often a goroutine actually went to
// sleep on a futex word, how many wakeups were issued and how long sleepers
// were blocked. Only slow paths record anything.
package lockstat

import (
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"gitlab.com/slon/atomsync/tuning"
)

// Kind identifies the primitive an event belongs to.
type Kind int

const (
	Mutex Kind = iota
	RwLockRead
	RwLockWrite
	Condvar
	Parker
	numKinds
)

func (k Kind) String() string {
	switch k {
	case Mutex:
		return "mutex"
	case RwLockRead:
		return "rwlock_read"
	case RwLockWrite:
		return "rwlock_write"
	case Condvar:
		return "condvar"
	case Parker:
		return "parker"
	default:
		return "unknown"
	}
}

type counters struct {
	contended atomic.Uint64
	sleeps    atomic.Uint64
	wakes     atomic.Uint64
	waitNanos atomic.Uint64
}

// Snapshot is a point-in-time copy of the counters of one Kind.
type Snapshot struct {
	Contended uint64
	Sleeps    uint64
	Wakes     uint64
	Waited    time.Duration
}

// Stats is a set of counters, one per Kind.
type Stats struct {
	clock clockwork.Clock
	kinds [numKinds]counters
}

// New creates Stats measuring time with clock.
func New(clock clockwork.Clock) *Stats {
	return &Stats{clock: clock}
}

// Default receives the events of every primitive in this module.
var Default = New(clockwork.NewRealClock())

func enabled() bool {
	return tuning.Get().Stats
}

// Contended records that a lock of kind k was found taken.
func (s *Stats) Contended(k Kind) {
	if !enabled() {
		return
	}
	s.kinds[k].contended.Add(1)
}

// Wake records a wakeup issued on a futex word of kind k.
func (s *Stats) Wake(k Kind) {
	if !enabled() {
		return
	}
	s.kinds[k].wakes.Add(1)
}

// Span measures one sleep. The zero Span records nothing.
type Span struct {
	s     *Stats
	k     Kind
	start time.Time
}

// BeginWait records a sleep of kind k. The returned Span must be ended
// when the sleeper wakes up.
func (s *Stats) BeginWait(k Kind) Span {
	if !enabled() {
		return Span{}
	}
	s.kinds[k].sleeps.Add(1)
	return Span{s: s, k: k, start: s.clock.Now()}
}

// End adds the time since BeginWait to the waited total.
func (sp Span) End() {
	if sp.s == nil {
		return
	}
	d := sp.s.clock.Since(sp.start)
	if d > 0 {
		sp.s.kinds[sp.k].waitNanos.Add(uint64(d))
	}
}

// Snapshot returns the counters of kind k.
func (s *Stats) Snapshot(k Kind) Snapshot {
	c := &s.kinds[k]
	return Snapshot{
		Contended: c.contended.Load(),
		Sleeps:    c.sleeps.Load(),
		Wakes:     c.wakes.Load(),
		Waited:    time.Duration(c.waitNanos.Load()),
	}
}

// Kinds lists every Kind in export order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, numKinds)
	for k := Kind(0); k < numKinds; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}
