// Package guard enforces the process-wide lifecycle of a native runtime.
//
// Native runtimes of this kind have global state that must be created once,
// used from the thread that created it and torn down on that same thread. A
// Guard makes those rules explicit:
//
//	g := guard.New("juce", lifecycle)
//	h, err := g.Initialise()  // starts the runtime, pins this goroutine's thread
//	...
//	err = h.Release()         // last release shuts it down
//
// Initialise is reentrant on the owning thread: each call returns a new
// handle to the same runtime and bumps a reference count. A call from any
// other thread fails with errors.ErrInitialisedOnAnotherThread without
// touching the runtime. Once every handle is released the guard is back to
// Uninitialized and another thread may take ownership.
package guard
