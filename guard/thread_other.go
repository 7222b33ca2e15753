//go:build !linux

package guard

/*
#include <pthread.h>
#include <stdint.h>

static uint64_t guard_thread_id(void) {
	return (uint64_t)(uintptr_t)pthread_self();
}
*/
import "C"

// CurrentThread returns an id for the calling OS thread.
func CurrentThread() uint64 {
	return uint64(C.guard_thread_id())
}
