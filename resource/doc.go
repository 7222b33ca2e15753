// Package resource provides the handle table behind boxed capabilities.
//
// Native code cannot hold Go pointers, so every Go value handed to the
// foreign runtime is stored in a Table and represented on the native side by
// an integer Handle. This package implements that table and the lifecycle
// rules each entry follows.
//
// # Lifecycle
//
// A slot moves through these states:
//
//	free -> idle        Insert
//	idle -> borrowed    Borrow (exclusive; one caller at a time)
//	borrowed -> idle    Return
//	idle -> dropped     Drop (exactly once)
//
// A second Borrow while one is outstanding fails with a reentrant-borrow
// error. Borrow of a dropped handle fails with use-after-drop, and a second
// Drop fails with double-drop. Handles carry a generation, so a handle whose
// slot has since been reused is recognised as stale rather than resolving to
// the new value.
//
// # Real-time use
//
// Borrow, Return, Get and State only load and compare-and-swap one atomic
// word, and slot storage is allocated in fixed chunks that never move, so
// callbacks running on an audio thread can resolve their handle without
// locking or allocating. Insert and Drop take a mutex and belong on
// non-real-time paths.
//
// # Observers
//
//	unsubscribe := table.Subscribe(resource.ObserverFunc(func(e resource.Event) {
//		if e.Type == resource.EventRejected {
//			log.Printf("handle %#x: %v", e.Handle, e.Err)
//		}
//	}))
//
// # Cleanup
//
// Values implementing Dropper have Drop called when their handle is dropped.
// Close drops everything still live.
package resource
