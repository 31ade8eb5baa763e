//go:build !solution && linux

package futex

import (
	"sync/atomic"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	futexWait    = 0
	futexWake    = 1
	futexPrivate = 128
)

func wait(addr *atomic.Uint32, cmp uint32, timeout time.Duration) bool {
	var ts *unix.Timespec
	if timeout >= 0 {
		t := unix.NsecToTimespec(int64(timeout))
		ts = &t
	}
	_, _, errno := unix.Syscall6(
		unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)),
		futexWait|futexPrivate,
		uintptr(cmp),
		uintptr(unsafe.Pointer(ts)),
		0, 0,
	)
	// EAGAIN - слово уже не равно cmp, EINTR - прервали сигналом.
	// И то и другое для вызывающего выглядит как ложное пробуждение.
	return errno != unix.ETIMEDOUT
}

func wake(addr *atomic.Uint32, n int) {
	_, _, _ = unix.Syscall6(
		unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)),
		futexWake|futexPrivate,
		uintptr(n),
		0, 0, 0,
	)
}
