package juce

/*
#include "juce_native.h"
*/
import "C"

import (
	"iter"
	"unsafe"

	"github.com/wippyai/juce-runtime/collection"
	"github.com/wippyai/juce-runtime/errors"
)

// Element is a value type juce::Array stores inline.
type Element interface {
	~int32 | ~float32 | ~float64
}

// Array mirrors juce::Array for plain values. The zero value is empty.
type Array[T Element] struct {
	_    noCopy
	_    [0]uintptr
	data [16]byte
}

type (
	IntArray    = Array[int32]
	FloatArray  = Array[float32]
	DoubleArray = Array[float64]
)

// NewArrayFrom builds a foreign array holding a copy of values, in order.
func NewArrayFrom[T Element](values []T) *Array[T] {
	a := new(Array[T])
	a.AddSlice(values)
	return a
}

func NewIntArrayFrom(values []int32) *IntArray       { return NewArrayFrom(values) }
func NewFloatArrayFrom(values []float32) *FloatArray { return NewArrayFrom(values) }
func NewDoubleArrayFrom(values []float64) *DoubleArray {
	return NewArrayFrom(values)
}

func (a *Array[T]) c() *C.juce_Array {
	return (*C.juce_Array)(unsafe.Pointer(a))
}

// Len asks the foreign side for the element count.
func (a *Array[T]) Len() int {
	return int(C.juce_array_size(a.c()))
}

// Data returns the first element of the foreign storage, nil when empty.
func (a *Array[T]) Data() *T {
	return (*T)(C.juce_array_data(a.c()))
}

// At returns element i. It panics with an out_of_bounds error when i is
// not below Len.
func (a *Array[T]) At(i int) T {
	n := a.Len()
	if i < 0 || i >= n {
		panic(errors.OutOfBounds(errors.PhaseCollection, []string{"Array"}, i, n))
	}
	return unsafe.Slice(a.Data(), n)[i]
}

// Add appends v. Slices previously returned by Slice may no longer point at
// the storage afterwards.
func (a *Array[T]) Add(v T) {
	C.juce_array_add_raw(a.c(), unsafe.Pointer(&v), 1, C.size_t(unsafe.Sizeof(v)))
}

// AddSlice appends all of values in one foreign call.
func (a *Array[T]) AddSlice(values []T) {
	if len(values) == 0 {
		return
	}
	var zero T
	C.juce_array_add_raw(a.c(), unsafe.Pointer(&values[0]), C.int32_t(len(values)), C.size_t(unsafe.Sizeof(zero)))
}

// Slice borrows the foreign storage. The slice is valid until the array is
// next modified or dropped.
func (a *Array[T]) Slice() []T {
	return collection.Borrow[T](a)
}

// View returns a read-only collection view.
func (a *Array[T]) View() collection.View[T] {
	return collection.Over[T](a)
}

// Values yields the elements in order.
func (a *Array[T]) Values() iter.Seq[T] {
	return a.View().Values()
}

// Collect copies the elements into a Go slice.
func (a *Array[T]) Collect() []T {
	return a.View().Collect()
}

// Clear removes all elements.
func (a *Array[T]) Clear() {
	C.juce_array_clear(a.c())
}

// Drop frees the storage. The array is empty and reusable afterwards.
func (a *Array[T]) Drop() {
	C.juce_array_destroy(a.c())
}

// StringArray mirrors juce::StringArray. The zero value is empty.
type StringArray struct {
	_    noCopy
	_    [0]uintptr
	data [16]byte
}

// NewStringArrayFrom builds a foreign string array from values, in order.
func NewStringArrayFrom(values []string) *StringArray {
	a := new(StringArray)
	appendStrings(a.c(), values)
	return a
}

func (a *StringArray) c() *C.juce_Array {
	return (*C.juce_Array)(unsafe.Pointer(a))
}

func (a *StringArray) Len() int {
	return int(C.juce_array_size(a.c()))
}

// At converts element i to a Go string.
func (a *StringArray) At(i int) string {
	return a.Get(i).String()
}

// Get returns a reference to element i inside the foreign storage. It stays
// valid until the array is next modified or dropped.
func (a *StringArray) Get(i int) *String {
	p := C.juce_stringarray_get(a.c(), C.int32_t(i))
	if p == nil {
		panic(errors.OutOfBounds(errors.PhaseCollection, []string{"StringArray"}, i, a.Len()))
	}
	return (*String)(unsafe.Pointer(p))
}

// Add appends a copy of s.
func (a *StringArray) Add(s string) {
	p, n := cText(s)
	C.juce_stringarray_add_utf8(a.c(), p, n)
}

// AddString moves s into the array. s is left empty.
func (a *StringArray) AddString(s *String) {
	C.juce_stringarray_add(a.c(), s.c())
}

func (a *StringArray) Contains(s string) bool {
	return a.IndexOf(s) >= 0
}

// IndexOf returns the index of the first element equal to s, or -1.
func (a *StringArray) IndexOf(s string) int {
	tmp := NewString(s)
	defer tmp.Drop()
	return int(C.juce_stringarray_index_of(a.c(), tmp.c()))
}

func (a *StringArray) View() collection.View[string] {
	return collection.Over[string](a)
}

func (a *StringArray) Values() iter.Seq[string] {
	return a.View().Values()
}

func (a *StringArray) Collect() []string {
	return a.View().Collect()
}

// Clone copies every element through the foreign copy constructor.
func (a *StringArray) Clone() *StringArray {
	out := new(StringArray)
	C.juce_stringarray_clone(out.c(), a.c())
	return out
}

// Drop destroys every element and frees the storage.
func (a *StringArray) Drop() {
	C.juce_stringarray_destroy(a.c())
}
