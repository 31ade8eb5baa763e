package weakarc

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"

	"gitlab.com/slon/atomsync/fatal"
	"gitlab.com/slon/atomsync/fatal/fataltest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type detectDrop struct {
	drops *atomic.Int32
	name  string
}

func (d detectDrop) Drop() { d.drops.Add(1) }

func TestArc(t *testing.T) {
	var drops atomic.Int32

	x := New(detectDrop{drops: &drops, name: "hello"})
	y := x.Clone()

	var g errgroup.Group
	g.Go(func() error {
		assert.Equal(t, "hello", x.Value().name)
		x.Drop()
		return nil
	})

	require.Equal(t, "hello", y.Value().name)
	require.NoError(t, g.Wait())

	require.Zero(t, drops.Load())
	y.Drop()
	require.Equal(t, int32(1), drops.Load())
}

func TestWeak(t *testing.T) {
	var drops atomic.Int32

	x := New(detectDrop{drops: &drops, name: "hello"})
	y := x.Downgrade()
	z := x.Downgrade()
	require.Equal(t, uint64(1), x.StrongCount())
	require.Equal(t, uint64(2), x.WeakCount())

	var g errgroup.Group
	g.Go(func() error {
		y2, ok := y.Upgrade()
		if assert.True(t, ok) {
			assert.Equal(t, "hello", y2.Value().name)
			y2.Drop()
		}
		y.Drop()
		return nil
	})

	require.Equal(t, "hello", x.Value().name)
	require.NoError(t, g.Wait())

	require.Zero(t, drops.Load())
	z2, ok := z.Upgrade()
	require.True(t, ok)
	require.Equal(t, uint64(2), x.StrongCount())
	require.Equal(t, uint64(1), x.WeakCount())

	x.Drop()
	require.Zero(t, drops.Load())
	z2.Drop()
	require.Equal(t, int32(1), drops.Load())

	_, ok = z.Upgrade()
	require.False(t, ok)
	z.Drop()
}

func TestUpgradeNeverResurrects(t *testing.T) {
	var drops atomic.Int32

	x := New(detectDrop{drops: &drops})
	b := x.b
	w := x.Downgrade()

	x.Drop()
	require.Equal(t, int32(1), drops.Load())

	for range 10 {
		_, ok := w.Upgrade()
		require.False(t, ok)
	}

	w2 := w.Clone()
	w.Drop()
	require.False(t, b.freed.Load())
	w2.Drop()
	require.True(t, b.freed.Load())
}

func TestConcurrentUpgradeAndDrop(t *testing.T) {
	const (
		goroutines = 8
		rounds     = 200
	)

	for range rounds {
		var (
			drops    atomic.Int32
			upgraded atomic.Int32
			g        errgroup.Group
		)

		x := New(detectDrop{drops: &drops})
		weaks := make([]*Weak[detectDrop], goroutines)
		for i := range weaks {
			weaks[i] = x.Downgrade()
		}

		for _, w := range weaks {
			g.Go(func() error {
				defer w.Drop()
				for {
					a, ok := w.Upgrade()
					if !ok {
						return nil
					}
					// Пока мы держим Arc, payload жив
					assert.Zero(t, drops.Load())
					upgraded.Add(1)
					a.Drop()
				}
			})
		}

		for upgraded.Load() == 0 {
			time.Sleep(time.Microsecond)
		}
		b := x.b
		x.Drop()
		require.NoError(t, g.Wait())
		require.Equal(t, int32(1), drops.Load())
		require.True(t, b.freed.Load())
	}
}

func TestConcurrentDowngradeAndDrop(t *testing.T) {
	const goroutines = 8

	var drops atomic.Int32
	x := New(detectDrop{drops: &drops})
	b := x.b

	var g errgroup.Group
	for range goroutines {
		a := x.Clone()
		g.Go(func() error {
			w := a.Downgrade()
			a.Drop()
			w.Drop()
			return nil
		})
	}
	x.Drop()
	require.NoError(t, g.Wait())

	require.Equal(t, int32(1), drops.Load())
	require.Zero(t, b.alloc.Load())
	require.True(t, b.freed.Load())
}

func TestGetMut(t *testing.T) {
	x := New(1)

	v, ok := x.GetMut()
	require.True(t, ok)
	*v = 2

	w := x.Downgrade()
	_, ok = x.GetMut()
	require.False(t, ok)
	w.Drop()

	y := x.Clone()
	_, ok = x.GetMut()
	require.False(t, ok)
	y.Drop()

	v, ok = x.GetMut()
	require.True(t, ok)
	require.Equal(t, 2, *v)
	require.Equal(t, uint64(1), x.b.alloc.Load())
	x.Drop()
}

func TestDowngradeWaitsForClaim(t *testing.T) {
	x := New(0)
	x.b.alloc.Store(claimed)
	require.Zero(t, x.WeakCount())

	done := make(chan *Weak[int])
	go func() {
		done <- x.Downgrade()
	}()

	select {
	case <-done:
		t.Fatal("Downgrade went past a claimed count")
	case <-time.After(20 * time.Millisecond):
	}

	x.b.alloc.Store(1)
	w := <-done
	require.Equal(t, uint64(1), x.WeakCount())
	w.Drop()
	x.Drop()
}

func TestOverflowAborts(t *testing.T) {
	logs := fataltest.Observe(t)

	x := New(0)
	x.b.strong.Store(maxRefs)
	require.Panics(t, func() { x.Clone() })

	w := x.Downgrade()
	require.Panics(t, func() { w.Upgrade() })

	x.b.alloc.Store(maxRefs)
	require.Panics(t, func() { x.Downgrade() })
	require.Panics(t, func() { w.Clone() })

	require.Equal(t, 2, logs.FilterMessage("weakarc: strong count overflow").Len())
	require.Equal(t, 2, logs.FilterMessage("weakarc: weak count overflow").Len())
}

func TestUseAfterDrop(t *testing.T) {
	logs := fataltest.Observe(t)

	x := New(0)
	w := x.Downgrade()
	w.Drop()
	require.PanicsWithError(t, fatal.ErrContract.Error()+": weakarc: drop of dropped weak handle", w.Drop)
	require.PanicsWithError(t, fatal.ErrContract.Error()+": weakarc: use of dropped weak handle", func() { w.Upgrade() })

	x.Drop()
	require.PanicsWithError(t, fatal.ErrContract.Error()+": weakarc: drop of dropped handle", x.Drop)
	require.PanicsWithError(t, fatal.ErrContract.Error()+": weakarc: use of dropped handle", func() { x.Value() })
	require.Equal(t, 4, logs.Len())
}
