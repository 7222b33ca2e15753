package layout

import (
	"unsafe"
)

// Info describes the geometry of a type on one side of the boundary.
type Info struct {
	FieldOffs map[string]uintptr
	Size      uintptr
	Align     uintptr
}

// Type is anything whose C geometry can be computed.
type Type interface {
	Layout() Info
}

// AlignTo rounds offset up to the next multiple of align.
func AlignTo(offset, align uintptr) uintptr {
	if align == 0 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}

// Scalar is a primitive C type.
type Scalar struct {
	Size  uintptr
	Align uintptr
}

func (s Scalar) Layout() Info {
	return Info{Size: s.Size, Align: s.Align}
}

// Primitive C types as laid out by the platform C compiler.
var (
	Bool    = Scalar{Size: 1, Align: 1}
	Uint8   = Scalar{Size: 1, Align: 1}
	Uint16  = Scalar{Size: 2, Align: 2}
	Int32   = Scalar{Size: 4, Align: 4}
	Uint32  = Scalar{Size: 4, Align: 4}
	Int64   = Scalar{Size: 8, Align: 8}
	Float32 = Scalar{Size: 4, Align: 4}
	Float64 = Scalar{Size: 8, Align: 8}
	Pointer = Scalar{Size: unsafe.Sizeof(uintptr(0)), Align: unsafe.Alignof(uintptr(0))}
	SizeT   = Pointer
)

// ArrayOf is a fixed-length C array.
type ArrayOf struct {
	Elem Type
	Len  int
}

func (a ArrayOf) Layout() Info {
	elem := a.Elem.Layout()
	return Info{
		Size:  AlignTo(elem.Size, elem.Align) * uintptr(a.Len),
		Align: elem.Align,
	}
}

// Array returns a fixed-length array type.
func Array(elem Type, n int) ArrayOf {
	return ArrayOf{Elem: elem, Len: n}
}

// Field is one named member of a StructOf.
type Field struct {
	Type Type
	Name string
}

// F is shorthand for a Field.
func F(name string, t Type) Field {
	return Field{Name: name, Type: t}
}

// StructOf is a C struct with natural alignment and no packing.
type StructOf struct {
	Name   string
	Fields []Field
}

// Struct declares a C struct layout.
func Struct(name string, fields ...Field) StructOf {
	return StructOf{Name: name, Fields: fields}
}

// Layout computes member offsets, interior padding and trailing padding
// the way a C compiler does for a non-packed struct.
func (s StructOf) Layout() Info {
	if len(s.Fields) == 0 {
		return Info{Size: 0, Align: 1}
	}

	fieldOffs := make(map[string]uintptr, len(s.Fields))
	maxAlign := uintptr(1)
	offset := uintptr(0)

	for _, field := range s.Fields {
		fieldLayout := field.Type.Layout()

		offset = AlignTo(offset, fieldLayout.Align)
		fieldOffs[field.Name] = offset

		if fieldLayout.Align > maxAlign {
			maxAlign = fieldLayout.Align
		}

		offset += fieldLayout.Size
	}

	return Info{
		Size:      AlignTo(offset, maxAlign),
		Align:     maxAlign,
		FieldOffs: fieldOffs,
	}
}

// Blob is a type known only by its declared size and alignment.
type Blob struct {
	Size  uintptr
	Align uintptr
}

func (o Blob) Layout() Info {
	return Info{Size: o.Size, Align: o.Align}
}

// Of captures the Go geometry of T. Field offsets are supplied by the
// caller because Go can only take them from a selector expression.
func Of[T any](fieldOffs map[string]uintptr) Info {
	var v T
	return Info{
		Size:      unsafe.Sizeof(v),
		Align:     unsafe.Alignof(v),
		FieldOffs: fieldOffs,
	}
}
