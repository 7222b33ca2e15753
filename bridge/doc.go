// Package bridge turns Go implementations of callback contracts into boxes
// the native runtime can own and invoke, and wraps native polymorphic objects
// for use from Go.
//
// # Host to native
//
// A capability is any Go value satisfying a contract interface such as an
// audio device callback. Register erases its type and stores it in the
// registry's handle table; native code keeps only the returned Token. Each
// entry point of the native vtable is a fixed trampoline that resolves the
// token and calls one method through Invoke:
//
//	tok := bridge.MustRegister[AudioCallback](reg, cb)
//	// ... native code later calls back with tok ...
//	bridge.Invoke(reg, tok, func(cb AudioCallback) { cb.Stopped() })
//	// ... and finally drops it, exactly once
//	bridge.Release(reg, tok)
//
// Lifecycle: constructed, registered, invoked any number of times in an order
// chosen by the native side, released. Every invocation holds an exclusive
// borrow, so a method that loops back into its own capability through the
// native runtime is refused instead of aliasing mutable state. Release of an
// already released token and invocation after release panic.
//
// # Native to host
//
// Scoped wraps a native pointer lent for the duration of one call (a device
// passed to "about to start", the buffers passed to "process block"). Pinned
// wraps a native pointer whose lifetime is tied to an owning container; it
// stops resolving once that owner's Lifetime ends.
package bridge
