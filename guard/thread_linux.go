package guard

import "golang.org/x/sys/unix"

// CurrentThread returns the kernel id of the calling OS thread.
func CurrentThread() uint64 {
	return uint64(unix.Gettid())
}
