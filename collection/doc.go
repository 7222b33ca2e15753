// Package collection adapts homogeneous foreign arrays to Go.
//
// Foreign arrays publish their element count and element access through
// native accessors. A View wraps such a Source and adds bounds-checked
// access, lazy iteration and copying:
//
//	v := collection.Over[string](names)
//	if s, ok := v.Get(0); ok { ... }
//	for s := range v.Values() { ... }
//
// The length is never cached: every Len, Get and iteration step asks the
// foreign side again, since appends may reallocate the backing store. For the
// same reason, slices returned by Borrow alias foreign memory and are only
// valid until the next mutation of that collection.
package collection
