package juce

/*
#cgo CFLAGS: -pthread -O2
#cgo LDFLAGS: -lpthread -lm
#include "juce_native.h"
*/
import "C"

import (
	"fmt"
	"io"
	"unsafe"

	"go.uber.org/zap"

	"github.com/wippyai/juce-runtime/bridge"
	"github.com/wippyai/juce-runtime/errors"
)

// noCopy lets go vet report mirrors that are copied by value. A byte copy
// of a mirror shares its foreign allocations without a foreign clone.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Go names for foreign objects that are only reached through pointers.
// cgo gives incomplete C structs a type that cannot be a type argument, so
// lent and pinned references are kept as these and converted at the call.
type (
	bufferRef   struct{}
	deviceRef   struct{}
	typeRef     struct{}
	callbackRef struct{}
	formatRef   struct{}
)

func (r *bufferRef) c() *C.juce_AudioSampleBuffer {
	return (*C.juce_AudioSampleBuffer)(unsafe.Pointer(r))
}

func (r *deviceRef) c() *C.juce_AudioIODevice {
	return (*C.juce_AudioIODevice)(unsafe.Pointer(r))
}

func (r *typeRef) c() *C.juce_AudioIODeviceType {
	return (*C.juce_AudioIODeviceType)(unsafe.Pointer(r))
}

func (r *callbackRef) c() *C.juce_AudioIODeviceCallback {
	return (*C.juce_AudioIODeviceCallback)(unsafe.Pointer(r))
}

func (r *formatRef) c() *C.juce_AudioPluginFormat {
	return (*C.juce_AudioPluginFormat)(unsafe.Pointer(r))
}

func registry() *bridge.Registry {
	return bridge.Default()
}

// cText returns s as a pointer/length pair that C reads during the call only.
func cText(s string) (*C.char, C.int32_t) {
	if len(s) == 0 {
		return nil, 0
	}
	return (*C.char)(unsafe.Pointer(unsafe.StringData(s))), C.int32_t(len(s))
}

func goString(s *C.juce_String) string {
	return C.GoString(C.juce_string_utf8(s))
}

func setString(out *C.juce_String, s string) {
	p, n := cText(s)
	C.juce_string_assign_utf8(out, p, n)
}

// appendStrings adds every element of values to a constructed StringArray.
func appendStrings(out *C.juce_Array, values []string) {
	for _, v := range values {
		p, n := cText(v)
		C.juce_stringarray_add_utf8(out, p, n)
	}
}

func collectStrings(a *C.juce_Array) []string {
	n := int(C.juce_array_size(a))
	out := make([]string, 0, n)
	for i := range n {
		out = append(out, goString(C.juce_stringarray_get(a, C.int32_t(i))))
	}
	return out
}

// foreignMessage is the text handed back to the foreign side for err. The
// foreign runtime wraps it again, so its own failures travel unchanged.
func foreignMessage(err error) string {
	if e, ok := err.(*errors.Error); ok && e.Phase == errors.PhaseForeign && e.Detail != "" {
		return e.Detail
	}
	return err.Error()
}

// dropImpl ends a boxed capability: Drop when it has one, else Close.
func dropImpl(impl any) {
	switch v := impl.(type) {
	case interface{ Drop() }:
		v.Drop()
	case io.Closer:
		if err := v.Close(); err != nil {
			Logger().Warn("close capability", zap.String("type", fmt.Sprintf("%T", impl)), zap.Error(err))
		}
	}
}

// register boxes a capability for the foreign side. A full handle table is
// reported as a foreign failure of op.
func register[T any](op string, box T) (C.uintptr_t, error) {
	tok, err := bridge.Register(registry(), box)
	if err != nil {
		return 0, errors.Wrap(errors.PhaseBridge, errors.KindInvalidInput, err, op)
	}
	return C.uintptr_t(tok), nil
}
