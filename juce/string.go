package juce

/*
#include "juce_native.h"
*/
import "C"

import "unsafe"

// String mirrors juce::String. The zero value is the empty string.
//
// A String owns a foreign allocation: release it with Drop, duplicate it
// with Clone, and hand it to the foreign side with MoveFrom or
// StringArray.AddString. Copying the struct is a bug go vet reports.
type String struct {
	_    noCopy
	_    [0]uintptr
	data [8]byte
}

// NewString constructs a foreign string holding s.
func NewString(s string) *String {
	out := new(String)
	out.Set(s)
	return out
}

func (s *String) c() *C.juce_String {
	return (*C.juce_String)(unsafe.Pointer(s))
}

// Set replaces the contents with s.
func (s *String) Set(v string) {
	setString(s.c(), v)
}

// String converts to a Go string.
func (s *String) String() string {
	return goString(s.c())
}

// Len returns the length in bytes of the UTF-8 encoding.
func (s *String) Len() int {
	return int(C.juce_string_length(s.c()))
}

func (s *String) IsEmpty() bool {
	return s.Len() == 0
}

// Equal compares the contents of two strings.
func (s *String) Equal(other *String) bool {
	return bool(C.juce_string_equals(s.c(), other.c()))
}

// HashCode returns juce::String::hashCode.
func (s *String) HashCode() int32 {
	return int32(C.juce_string_hash_code(s.c()))
}

// Clone constructs an independent copy through the foreign copy constructor.
func (s *String) Clone() *String {
	out := new(String)
	C.juce_string_clone(out.c(), s.c())
	return out
}

// MoveFrom drops the current contents and takes over other's allocation.
// other is left empty.
func (s *String) MoveFrom(other *String) {
	if s == other {
		return
	}
	C.juce_string_destroy(s.c())
	s.data = other.data
	other.data = [8]byte{}
}

// Drop releases the foreign allocation. The string is empty afterwards, so
// a second Drop does nothing.
func (s *String) Drop() {
	C.juce_string_destroy(s.c())
}
