package juce

/*
#include "juce_native.h"
*/
import "C"

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/juce-runtime/bridge"
	"github.com/wippyai/juce-runtime/errors"
	"github.com/wippyai/juce-runtime/guard"
	"github.com/wippyai/juce-runtime/layout"
)

var (
	runtimeGuard = guard.New("JUCE", guard.LifecycleFuncs{
		OnStartup:  startup,
		OnShutdown: shutdown,
	})

	layoutOnce sync.Once
	layoutErr  error
)

func startup() error {
	layoutOnce.Do(func() { layoutErr = layout.Default.Verify() })
	if layoutErr != nil {
		return layoutErr
	}
	if !C.juce_initialise_gui() {
		return errors.Foreign("initialise", "message manager is already running")
	}
	return nil
}

func shutdown() {
	C.juce_shutdown_gui()
}

// JUCE is one reference to the initialised runtime. The runtime stays up
// until every reference has been closed.
type JUCE struct {
	h *guard.Handle
}

// Initialise starts the runtime on the calling thread, or returns another
// reference to it when this thread already started it. The goroutine stays
// locked to its OS thread until Close.
//
// On any other thread it fails with an error matching
// errors.ErrInitialisedOnAnotherThread.
func Initialise() (*JUCE, error) {
	h, err := runtimeGuard.Initialise()
	if err != nil {
		return nil, err
	}
	return &JUCE{h: h}, nil
}

// Close releases this reference. The last Close shuts the runtime down,
// discarding closures still queued with CallAsync.
func (j *JUCE) Close() error {
	return j.h.Release()
}

// MessageManager returns the dispatcher of the runtime's message thread.
func (j *JUCE) MessageManager() *MessageManager {
	return &MessageManager{}
}

// IsThisTheMessageThread reports whether the caller runs on the thread the
// runtime was initialised on.
func IsThisTheMessageThread() bool {
	return bool(C.juce_is_this_the_message_thread())
}

// IsInitialised reports whether any thread holds the runtime.
func IsInitialised() bool {
	return runtimeGuard.Phase() == guard.Initialized
}

func requireMessageThread(op string) error {
	return runtimeGuard.Require(op)
}

// SystemStats reports facts about the foreign runtime.
type SystemStats struct{}

// Version returns the foreign runtime's version string.
func (SystemStats) Version() string {
	var s String
	C.juce_system_version(s.c())
	defer s.Drop()
	return s.String()
}

// MessageManager runs the event loop of the message thread.
type MessageManager struct{}

type asyncCall struct {
	fn func()
}

// CallAsync queues fn for the message thread and returns immediately.
// Closures run in the order they were posted. It may be called from any
// thread, including an audio callback.
func (*MessageManager) CallAsync(fn func()) bool {
	return CallAsync(fn)
}

// CallAsync queues fn to run on the message thread. It reports false when
// the runtime is not initialised; fn is then never run.
func CallAsync(fn func()) bool {
	tok, err := bridge.Register(registry(), &asyncCall{fn: fn})
	if err != nil {
		Logger().Error("box async call", zap.Error(err))
		return false
	}
	if !C.juce_message_manager_call_async(C.uintptr_t(tok)) {
		bridge.Release(registry(), tok)
		return false
	}
	return true
}

// DispatchPending runs the closures and timers that are due and returns the
// number of closures run. Like the dispatch loops it only runs on the
// message thread; elsewhere the queue is left untouched.
func (*MessageManager) DispatchPending() (int, error) {
	if err := requireMessageThread("DispatchPending"); err != nil {
		return 0, err
	}
	return int(C.juce_message_manager_dispatch_pending()), nil
}

// RunDispatchLoop blocks dispatching until StopDispatchLoop is called.
func (*MessageManager) RunDispatchLoop() error {
	if err := requireMessageThread("RunDispatchLoop"); err != nil {
		return err
	}
	C.juce_message_manager_run_dispatch_loop()
	return nil
}

// RunDispatchLoopUntil dispatches for at most millis milliseconds. It
// reports whether the loop is still running, that is, StopDispatchLoop has
// not been called.
func (*MessageManager) RunDispatchLoopUntil(millis int) (bool, error) {
	if err := requireMessageThread("RunDispatchLoopUntil"); err != nil {
		return false, err
	}
	return bool(C.juce_message_manager_run_dispatch_loop_until(C.int32_t(millis))), nil
}

// StopDispatchLoop makes RunDispatchLoop return. Safe from any thread.
func (*MessageManager) StopDispatchLoop() {
	C.juce_message_manager_stop_dispatch_loop()
}

func (*MessageManager) HasStopMessageBeenSent() bool {
	return bool(C.juce_message_manager_has_stop_message_been_sent())
}

//export juceGoAsyncCall
func juceGoAsyncCall(h C.uintptr_t) {
	bridge.Invoke(registry(), bridge.Token(h), func(c *asyncCall) {
		c.fn()
	})
}

//export juceGoAsyncDrop
func juceGoAsyncDrop(h C.uintptr_t) {
	bridge.Release(registry(), bridge.Token(h))
}
