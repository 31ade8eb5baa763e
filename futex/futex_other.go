//go:build !solution && !linux

package futex

import (
	"sync/atomic"
	"time"
)

var global table

func wait(addr *atomic.Uint32, cmp uint32, timeout time.Duration) bool {
	return global.wait(addr, cmp, timeout)
}

func wake(addr *atomic.Uint32, n int) {
	global.wake(addr, n)
}
