// Package errors provides structured error types for the juce-runtime library.
//
// Errors are categorized by Phase (which part of the boundary failed) and Kind
// (error category). The Error type carries a path, the Go and foreign type
// names involved, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseBridge, errors.KindReentrantBorrow).
//		GoType("*myCallback").
//		Detail("process block re-entered").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Foreign("AudioDeviceManager.initialise", message)
//	err := errors.AlreadyInitialised(owner, current)
//
// Lifecycle violations that can be recovered from are returned. Violations
// that would corrupt memory if execution continued (double drop, use after
// drop) are raised as panics carrying an *Error. Matching with errors.Is
// compares Phase and Kind only, so the exported sentinels work as targets:
//
//	if errors.Is(err, errors.ErrInitialisedOnAnotherThread) { ... }
package errors
