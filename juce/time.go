package juce

/*
#include "juce_native.h"
*/
import "C"

import (
	"time"
	"unsafe"
)

// Time mirrors juce::Time, milliseconds since the Unix epoch. It holds no
// foreign resources and may be copied freely.
type Time struct {
	_    [0]uint64
	data [8]byte
}

// Now asks the foreign side for the current time.
func Now() Time {
	var t Time
	C.juce_time_now(t.c())
	return t
}

// TimeFromMillis constructs a Time from milliseconds since the epoch.
func TimeFromMillis(ms int64) Time {
	var t Time
	C.juce_time_construct(t.c(), C.int64_t(ms))
	return t
}

// TimeOf converts a Go time, truncating to milliseconds.
func TimeOf(t time.Time) Time {
	return TimeFromMillis(t.UnixMilli())
}

func (t *Time) c() *C.juce_Time {
	return (*C.juce_Time)(unsafe.Pointer(t))
}

func (t Time) Millis() int64 {
	return int64(C.juce_time_to_millis(t.c()))
}

// Go converts to a time.Time in the local zone.
func (t Time) Go() time.Time {
	return time.UnixMilli(t.Millis())
}
