package collection

import (
	"iter"
	"unsafe"
)

// Source is an array-like foreign value. Len is asked again on every use
// because the foreign side may resize the backing store between calls.
type Source[T any] interface {
	Len() int
	At(i int) T
}

// Raw exposes the contiguous storage of a foreign array of plain values.
type Raw[T any] interface {
	Data() *T
	Len() int
}

// Appender is implemented by host-owned collections that may grow.
type Appender[T any] interface {
	Add(T)
}

// View is a read-only window onto a Source.
type View[T any] struct {
	src Source[T]
}

// Over creates a view of src.
func Over[T any](src Source[T]) View[T] {
	return View[T]{src: src}
}

// Len returns the current foreign element count.
func (v View[T]) Len() int {
	if v.src == nil {
		return 0
	}
	return v.src.Len()
}

// Get returns the element at i, or false when i is outside the collection.
func (v View[T]) Get(i int) (T, bool) {
	if i < 0 || i >= v.Len() {
		var zero T
		return zero, false
	}
	return v.src.At(i), true
}

// All yields index/element pairs. Each call of the returned sequence starts
// again from the first element.
func (v View[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := 0; i < v.Len(); i++ {
			if !yield(i, v.src.At(i)) {
				return
			}
		}
	}
}

// Values yields the elements in order.
func (v View[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := 0; i < v.Len(); i++ {
			if !yield(v.src.At(i)) {
				return
			}
		}
	}
}

// Iter returns a consuming cursor positioned before the first element.
func (v View[T]) Iter() *Iterator[T] {
	return &Iterator[T]{src: v.src}
}

// Collect copies the elements into a new slice.
func (v View[T]) Collect() []T {
	n := v.Len()
	out := make([]T, 0, n)
	for i := 0; i < v.Len(); i++ {
		out = append(out, v.src.At(i))
	}
	return out
}

// Iterator walks a Source once. It cannot be rewound.
type Iterator[T any] struct {
	src  Source[T]
	next int
}

// Next returns the next element, or false once the collection is exhausted.
func (it *Iterator[T]) Next() (T, bool) {
	var zero T
	if it.src == nil || it.next >= it.src.Len() {
		return zero, false
	}
	v := it.src.At(it.next)
	it.next++
	return v, true
}

// Remaining returns how many elements are left at the current length.
func (it *Iterator[T]) Remaining() int {
	if it.src == nil {
		return 0
	}
	return max(it.src.Len()-it.next, 0)
}

// Borrow returns a slice aliasing the foreign storage. It is valid until the
// collection is next mutated or destroyed. Empty collections give nil.
func Borrow[T any](raw Raw[T]) []T {
	n := raw.Len()
	if n == 0 {
		return nil
	}
	data := raw.Data()
	if data == nil {
		return nil
	}
	return unsafe.Slice(data, n)
}

// AddAll appends every element of seq.
func AddAll[T any](dst Appender[T], seq iter.Seq[T]) {
	for v := range seq {
		dst.Add(v)
	}
}

// SliceSource adapts a Go slice to Source.
type SliceSource[T any] []T

func (s SliceSource[T]) Len() int   { return len(s) }
func (s SliceSource[T]) At(i int) T { return s[i] }
