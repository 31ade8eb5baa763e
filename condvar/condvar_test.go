package condvar

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"

	"gitlab.com/slon/atomsync/mutex"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestCondvar(t *testing.T) {
	m := mutex.New(0)
	c := New()

	done := make(chan struct{})
	go func() {
		defer close(done)
		time.Sleep(20 * time.Millisecond)
		g := m.Lock()
		*g.Value() = 123
		g.Unlock()
		c.NotifyOne()

		// Лишние уведомления никого не должны задерживать
		for range 10000 {
			c.NotifyOne()
		}
	}()

	wakeups := 0
	g := m.Lock()
	for *g.Value() < 100 {
		g = Wait(c, g)
		wakeups++
	}
	require.Equal(t, 123, *g.Value())
	g.Unlock()
	<-done

	require.GreaterOrEqual(t, wakeups, 1)
	require.Less(t, wakeups, 100)
}

func TestNotifyBetweenCaptureAndSleep(t *testing.T) {
	c := New()

	// Ожидающий уже запомнил счётчик, но ещё не уснул
	c.waiters.Add(1)
	seq := c.counter.Load()

	c.NotifyOne()

	done := make(chan struct{})
	go func() {
		c.counter.Wait(seq)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("notification issued after capture was lost")
	}
	c.waiters.Add(^uint32(0))
}

func TestNotifyWithoutWaiters(t *testing.T) {
	c := New()
	c.NotifyOne()
	c.NotifyAll()
	require.Zero(t, c.counter.Load())
}

func TestNotifyAll(t *testing.T) {
	const waiters = 6

	type state struct {
		open    bool
		waiting int
	}

	m := mutex.New(state{})
	c := New()

	var (
		g     errgroup.Group
		woken atomic.Int32
	)
	for range waiters {
		g.Go(func() error {
			guard := m.Lock()
			guard.Value().waiting++
			guard = WaitWhile(c, guard, func(s *state) bool { return !s.open })
			guard.Unlock()
			woken.Add(1)
			return nil
		})
	}

	require.Eventually(t, func() bool {
		guard := m.Lock()
		defer guard.Unlock()
		return guard.Value().waiting == waiters
	}, 5*time.Second, time.Millisecond)

	guard := m.Lock()
	guard.Value().open = true
	guard.Unlock()
	c.NotifyAll()

	require.NoError(t, g.Wait())
	require.Equal(t, int32(waiters), woken.Load())
}

func TestWaitTimeout(t *testing.T) {
	m := mutex.New(false)
	c := New()

	g := m.Lock()
	start := time.Now()
	timedOut := false
	for !timedOut && !*g.Value() {
		g, timedOut = WaitTimeout(c, g, 20*time.Millisecond)
	}
	require.True(t, timedOut)
	require.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	// Мьютекс снова захвачен
	_, ok := m.TryLock()
	require.False(t, ok)
	g.Unlock()
	require.Zero(t, c.waiters.Load())
}

func TestPingPong(t *testing.T) {
	const rounds = 200

	m := mutex.New(0)
	c := New()

	var g errgroup.Group
	for parity := range 2 {
		g.Go(func() error {
			for i := parity; i < 2*rounds; i += 2 {
				guard := m.Lock()
				guard = WaitWhile(c, guard, func(turn *int) bool { return *turn != i })
				*guard.Value()++
				guard.Unlock()
				c.NotifyAll()
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	guard := m.Lock()
	defer guard.Unlock()
	require.Equal(t, 2*rounds, *guard.Value())
}
