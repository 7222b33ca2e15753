package guard

import (
	"runtime"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/juce-runtime/errors"
)

// Phase is the state of the guarded runtime.
type Phase uint32

const (
	Uninitialized Phase = iota
	Starting
	Initialized
	ShuttingDown
)

func (p Phase) String() string {
	switch p {
	case Uninitialized:
		return "uninitialized"
	case Starting:
		return "starting"
	case Initialized:
		return "initialized"
	case ShuttingDown:
		return "shutting down"
	default:
		return "unknown"
	}
}

// Lifecycle is the foreign runtime's global startup and teardown.
type Lifecycle interface {
	Startup() error
	Shutdown()
}

// LifecycleFuncs adapts two functions to Lifecycle. Nil functions are no-ops.
type LifecycleFuncs struct {
	OnStartup  func() error
	OnShutdown func()
}

func (f LifecycleFuncs) Startup() error {
	if f.OnStartup == nil {
		return nil
	}
	return f.OnStartup()
}

func (f LifecycleFuncs) Shutdown() {
	if f.OnShutdown != nil {
		f.OnShutdown()
	}
}

// Guard ensures a foreign runtime is started at most once per process, that
// every use happens on the thread that started it, and that teardown runs
// when the last handle is released.
//
// The zero value is not usable; create guards with New.
type Guard struct {
	lc    Lifecycle
	name  string
	owner atomic.Uint64 // affine thread id, 0 while uninitialised
	refs  atomic.Int64
	phase atomic.Uint32
}

// New creates a guard for the runtime described by lc. The name appears in
// errors and log lines.
func New(name string, lc Lifecycle) *Guard {
	return &Guard{name: name, lc: lc}
}

// Handle is one reference to an initialised runtime. It must be released on
// the affine thread, exactly once.
type Handle struct {
	g        *Guard
	released atomic.Bool
}

// Initialise starts the runtime on the calling thread, or returns another
// handle to it when this thread already owns it. The calling goroutine stays
// locked to its OS thread until the handle is released.
//
// When a different thread owns the runtime the call fails with an error
// matching errors.ErrInitialisedOnAnotherThread and leaves the runtime alone;
// the caller may retry after the owner releases it.
func (g *Guard) Initialise() (*Handle, error) {
	runtime.LockOSThread()
	tid := CurrentThread()

	for {
		owner := g.owner.Load()
		switch {
		case owner == tid:
			if Phase(g.phase.Load()) == ShuttingDown {
				runtime.UnlockOSThread()
				return nil, errors.New(errors.PhaseLifecycle, errors.KindNotInitialized).
					Detail("%s is shutting down", g.name).Build()
			}
			n := g.refs.Add(1)
			Logger().Debug("runtime reference acquired",
				zap.String("runtime", g.name), zap.Int64("refs", n))
			return &Handle{g: g}, nil

		case owner == 0:
			if !g.owner.CompareAndSwap(0, tid) {
				continue
			}
			g.phase.Store(uint32(Starting))
			if err := g.lc.Startup(); err != nil {
				g.phase.Store(uint32(Uninitialized))
				g.owner.Store(0)
				runtime.UnlockOSThread()
				return nil, err
			}
			g.refs.Add(1)
			g.phase.Store(uint32(Initialized))
			Logger().Info("runtime initialised",
				zap.String("runtime", g.name), zap.Uint64("thread", tid))
			return &Handle{g: g}, nil

		default:
			runtime.UnlockOSThread()
			return nil, errors.AlreadyInitialised(owner, tid)
		}
	}
}

// Release drops this reference. The last release shuts the runtime down and
// returns the guard to its uninitialised state, so a later Initialise may
// happen on any thread.
func (h *Handle) Release() error {
	if h.released.Load() {
		return errors.Released(h.g.name + " handle")
	}
	g := h.g
	tid := CurrentThread()
	if owner := g.owner.Load(); owner != tid {
		return errors.WrongThread(g.name+" release", owner, tid)
	}
	if !h.released.CompareAndSwap(false, true) {
		return errors.Released(g.name + " handle")
	}

	if g.refs.Add(-1) == 0 {
		g.phase.Store(uint32(ShuttingDown))
		g.lc.Shutdown()
		g.phase.Store(uint32(Uninitialized))
		g.owner.Store(0)
		Logger().Info("runtime shut down",
			zap.String("runtime", g.name), zap.Uint64("thread", tid))
	}
	runtime.UnlockOSThread()
	return nil
}

// Released reports whether Release has succeeded on this handle.
func (h *Handle) Released() bool {
	return h.released.Load()
}

// Guard returns the guard this handle belongs to.
func (h *Handle) Guard() *Guard {
	return h.g
}

// Phase returns the current phase.
func (g *Guard) Phase() Phase {
	return Phase(g.phase.Load())
}

// Refs returns the number of unreleased handles.
func (g *Guard) Refs() int {
	return int(g.refs.Load())
}

// AffineThread returns the id of the owning thread.
func (g *Guard) AffineThread() (uint64, bool) {
	tid := g.owner.Load()
	return tid, tid != 0
}

// IsAffineThread reports whether the caller runs on the owning thread.
// It never changes state.
func (g *Guard) IsAffineThread() bool {
	tid := g.owner.Load()
	return tid != 0 && tid == CurrentThread()
}

// Require returns nil when the runtime is initialised and the caller is on
// the affine thread.
func (g *Guard) Require(op string) error {
	if Phase(g.phase.Load()) != Initialized {
		return errors.NotInitialized(errors.PhaseLifecycle, g.name)
	}
	owner, tid := g.owner.Load(), CurrentThread()
	if owner != tid {
		return errors.WrongThread(op, owner, tid)
	}
	return nil
}
