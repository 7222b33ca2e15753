package juce

/*
#include "juce_native.h"
*/
import "C"

import (
	"math"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/juce-runtime/bridge"
	"github.com/wippyai/juce-runtime/errors"
)

// App is an application driven by the message loop. RunApp calls
// Initialise, dispatches until the handle's Quit, then calls Shutdown.
type App interface {
	Name() string
	Version() string
	Initialise(h *AppHandle, commandLine string) error
	Shutdown()
}

// TimerCallback receives the ticks of timers started with
// AppHandle.StartTimer.
type TimerCallback interface {
	TimerCallback(id int)
}

// QuitRequestHandler replaces the default reaction to a system quit
// request, which is to quit.
type QuitRequestHandler interface {
	SystemRequestedQuit()
}

type SuspendHandler interface {
	Suspended()
}

type ResumeHandler interface {
	Resumed()
}

type AnotherInstanceHandler interface {
	AnotherInstanceStarted(commandLine string)
}

// On is implemented by apps that accept messages of type M through Send.
type On[M any] interface {
	On(message M)
}

// AppEvent is a system notification delivered to the running app.
type AppEvent int32

const (
	QuitRequested          AppEvent = C.JUCE_APP_EVENT_QUIT_REQUESTED
	Suspended              AppEvent = C.JUCE_APP_EVENT_SUSPENDED
	Resumed                AppEvent = C.JUCE_APP_EVENT_RESUMED
	AnotherInstanceStarted AppEvent = C.JUCE_APP_EVENT_ANOTHER_INSTANCE
)

func (e AppEvent) String() string {
	switch e {
	case QuitRequested:
		return "quit requested"
	case Suspended:
		return "suspended"
	case Resumed:
		return "resumed"
	case AnotherInstanceStarted:
		return "another instance started"
	default:
		return "unknown"
	}
}

type appBox struct {
	impl    App
	handle  *AppHandle
	started bool
	initErr error
}

func (b *appBox) Drop() { dropImpl(b.impl) }

// AppHandle controls the running app. Its methods may be called from any
// thread.
type AppHandle struct {
	tok bridge.Token
}

// RunApp initialises the runtime on the calling thread, runs the app built
// by factory with the process arguments as its command line and returns its
// exit code. The app is dropped before RunApp returns.
func RunApp(factory func() App) (int, error) {
	return RunAppWithCommandLine(factory, strings.Join(os.Args[1:], " "))
}

// RunAppWithCommandLine is RunApp with an explicit command line.
func RunAppWithCommandLine(factory func() App, commandLine string) (int, error) {
	j, err := Initialise()
	if err != nil {
		return -1, err
	}
	defer func() {
		if err := j.Close(); err != nil {
			Logger().Warn("close runtime after app", zap.Error(err))
		}
	}()

	app := factory()
	box := &appBox{impl: app, handle: &AppHandle{}}
	tok, err := register("app", box)
	if err != nil {
		return -1, err
	}
	box.handle.tok = bridge.Token(tok)

	Logger().Info("application starting",
		zap.String("name", app.Name()), zap.String("version", app.Version()))

	p, n := cText(commandLine)
	code := int(C.juce_run_app(tok, p, n))
	if !box.started {
		return code, errors.New(errors.PhaseLifecycle, errors.KindAlreadyInitialised).
			Detail("another app is already running").
			Build()
	}
	if box.initErr != nil {
		return code, box.initErr
	}
	return code, nil
}

// Quit stops the message loop after the current message. Shutdown follows.
func (h *AppHandle) Quit() {
	C.juce_app_quit()
}

// QuitWithCode is Quit returning code from RunApp.
func (h *AppHandle) QuitWithCode(code int) {
	C.juce_app_set_exit_code(C.int32_t(code))
	C.juce_app_quit()
}

// StartTimer calls the app's TimerCallback with id every interval, or
// restarts the timer id. Intervals below a millisecond are rounded up.
func (h *AppHandle) StartTimer(id int, interval time.Duration) error {
	if !C.juce_app_start_timer(C.int32_t(id), C.int32_t(timerMillis(interval))) {
		return errors.New(errors.PhaseForeign, errors.KindForeignFailure).
			Detail("cannot start timer %d: too many timers", id).
			Build()
	}
	return nil
}

// timerMillis converts a timer interval to whole milliseconds, saturating at
// the range the native timer accepts.
func timerMillis(d time.Duration) int32 {
	return int32(min(max(d.Milliseconds(), 0), math.MaxInt32))
}

// StopTimer reports whether timer id was running.
func (h *AppHandle) StopTimer(id int) bool {
	return bool(C.juce_app_stop_timer(C.int32_t(id)))
}

// Signal delivers a system event to the app through the message queue.
func (h *AppHandle) Signal(ev AppEvent, arg string) bool {
	p, n := cText(arg)
	return bool(C.juce_app_post_event(C.int32_t(ev), p, n))
}

// Post runs fn with the app on the message thread. fn has the app to itself
// for the call. It reports false when the runtime is gone; fn then never
// runs.
func (h *AppHandle) Post(fn func(App)) bool {
	tok := h.tok
	return CallAsync(func() {
		err := bridge.With(registry(), tok, func(b *appBox) { fn(b.impl) })
		if err != nil {
			Logger().Warn("posted app call skipped", zap.Error(err))
		}
	})
}

// Send posts message to the app when it implements On[M].
func Send[M any](h *AppHandle, message M) bool {
	return h.Post(func(a App) {
		r, ok := a.(On[M])
		if !ok {
			Logger().Warn("app does not accept message", zap.String("type", typeName[M]()))
			return
		}
		r.On(message)
	})
}

//export juceGoAppInitialise
func juceGoAppInitialise(h C.uintptr_t, commandLine *C.juce_String) {
	cmd := goString(commandLine)
	bridge.Invoke(registry(), bridge.Token(h), func(b *appBox) {
		b.started = true
		if err := b.impl.Initialise(b.handle, cmd); err != nil {
			b.initErr = err
			Logger().Error("app initialise failed", zap.Error(err))
			b.handle.QuitWithCode(1)
		}
	})
}

//export juceGoAppShutdown
func juceGoAppShutdown(h C.uintptr_t) {
	bridge.Invoke(registry(), bridge.Token(h), func(b *appBox) {
		b.impl.Shutdown()
	})
}

//export juceGoAppEvent
func juceGoAppEvent(h C.uintptr_t, kind C.int32_t, arg *C.juce_String) {
	text := goString(arg)
	bridge.Invoke(registry(), bridge.Token(h), func(b *appBox) {
		switch AppEvent(kind) {
		case QuitRequested:
			if q, ok := b.impl.(QuitRequestHandler); ok {
				q.SystemRequestedQuit()
				return
			}
			b.handle.Quit()
		case Suspended:
			if s, ok := b.impl.(SuspendHandler); ok {
				s.Suspended()
			}
		case Resumed:
			if r, ok := b.impl.(ResumeHandler); ok {
				r.Resumed()
			}
		case AnotherInstanceStarted:
			if a, ok := b.impl.(AnotherInstanceHandler); ok {
				a.AnotherInstanceStarted(text)
			}
		default:
			Logger().Warn("unknown app event", zap.Int32("kind", int32(kind)))
		}
	})
}

//export juceGoAppTimer
func juceGoAppTimer(h C.uintptr_t, id C.int32_t) {
	bridge.Invoke(registry(), bridge.Token(h), func(b *appBox) {
		if t, ok := b.impl.(TimerCallback); ok {
			t.TimerCallback(int(id))
		}
	})
}

//export juceGoAppDrop
func juceGoAppDrop(h C.uintptr_t) {
	bridge.Release(registry(), bridge.Token(h))
}
