package juce

/*
#include "juce_native.h"
*/
import "C"

import "unsafe"

// BigInteger mirrors juce::BigInteger as used for channel masks. The zero
// value is a valid empty set.
type BigInteger struct {
	_    noCopy
	_    [0]uintptr
	data [40]byte
}

// NewBigIntegerRange returns a set with bits [start, start+count) set.
func NewBigIntegerRange(start, count int) *BigInteger {
	b := new(BigInteger)
	b.SetRange(start, count, true)
	return b
}

func (b *BigInteger) c() *C.juce_BigInteger {
	p := (*C.juce_BigInteger)(unsafe.Pointer(b))
	if p.allocatedSize == 0 {
		C.juce_biginteger_construct(p)
	}
	return p
}

func (b *BigInteger) SetBit(bit int, value bool) {
	C.juce_biginteger_set_bit(b.c(), C.int32_t(bit), C.bool(value))
}

func (b *BigInteger) SetRange(start, count int, value bool) {
	C.juce_biginteger_set_range(b.c(), C.int32_t(start), C.int32_t(count), C.bool(value))
}

func (b *BigInteger) Bit(bit int) bool {
	return bool(C.juce_biginteger_get_bit(b.c(), C.int32_t(bit)))
}

// CountSetBits returns the number of set bits.
func (b *BigInteger) CountSetBits() int {
	return int(C.juce_biginteger_count_set_bits(b.c()))
}

// HighestBit returns the index of the highest set bit, or -1.
func (b *BigInteger) HighestBit() int {
	return int(C.juce_biginteger_highest_bit(b.c()))
}

func (b *BigInteger) Clear() {
	C.juce_biginteger_clear(b.c())
}

func (b *BigInteger) Equal(other *BigInteger) bool {
	return bool(C.juce_biginteger_equals(b.c(), other.c()))
}

func (b *BigInteger) Clone() *BigInteger {
	out := new(BigInteger)
	C.juce_biginteger_clone(out.c(), b.c())
	return out
}

// Drop frees heap storage used by large sets.
func (b *BigInteger) Drop() {
	C.juce_biginteger_destroy(b.c())
}
