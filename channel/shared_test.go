package channel

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"gitlab.com/slon/atomsync/fatal"
	"gitlab.com/slon/atomsync/fatal/fataltest"
	"gitlab.com/slon/atomsync/parker"
)

func TestShared(t *testing.T) {
	s, r := NewShared[string]()
	p := parker.New()

	go s.SendAndUnpark("hello world!", p)

	for !r.IsReady() {
		p.Park()
	}
	require.Equal(t, "hello world!", r.Receive())
}

func TestSharedUnreadIsDestroyed(t *testing.T) {
	var drops atomic.Int32

	t.Run("receiver dropped last", func(t *testing.T) {
		drops.Store(0)
		s, r := NewShared[detectDrop]()
		s.Send(detectDrop{drops: &drops})
		require.Zero(t, drops.Load())
		r.Drop()
		require.Equal(t, int32(1), drops.Load())
	})

	t.Run("sender dropped last", func(t *testing.T) {
		drops.Store(0)
		s, r := NewShared[detectDrop]()
		r.Drop()
		s.Send(detectDrop{drops: &drops})
		require.Equal(t, int32(1), drops.Load())
	})

	t.Run("received", func(t *testing.T) {
		drops.Store(0)
		s, r := NewShared[detectDrop]()
		s.Send(detectDrop{drops: &drops})
		r.Receive()
		require.Zero(t, drops.Load())
	})

	t.Run("never sent", func(t *testing.T) {
		drops.Store(0)
		s, r := NewShared[detectDrop]()
		s.Drop()
		r.Drop()
		s.Drop()
		require.Zero(t, drops.Load())
	})
}

func TestSharedMisuse(t *testing.T) {
	logs := fataltest.Observe(t)

	s, r := NewShared[int]()
	require.PanicsWithError(t, fatal.ErrContract.Error()+": channel: receive before value is ready", func() { r.Receive() })

	s.Send(1)
	require.PanicsWithError(t, fatal.ErrContract.Error()+": channel: send on used sender", func() { s.Send(2) })

	require.Equal(t, 1, r.Receive())
	require.PanicsWithError(t, fatal.ErrContract.Error()+": channel: receive on used receiver", func() { r.Receive() })
	require.Equal(t, 3, logs.Len())
}
