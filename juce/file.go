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

// File mirrors juce::File, an absolute path. The zero value is the empty
// path.
type File struct {
	_    noCopy
	_    [0]uintptr
	data [8]byte
}

// NewFile constructs a File for path. A trailing separator is removed.
func NewFile(path string) *File {
	f := new(File)
	p, n := cText(path)
	C.juce_file_construct(f.c(), p, n)
	return f
}

func (f *File) c() *C.juce_File {
	return (*C.juce_File)(unsafe.Pointer(f))
}

// Path returns the full path.
func (f *File) Path() string {
	return goString(C.juce_file_full_path(f.c()))
}

func (f *File) String() string {
	return f.Path()
}

// Name returns the last path component.
func (f *File) Name() string {
	var s String
	C.juce_file_name(f.c(), s.c())
	defer s.Drop()
	return s.String()
}

// Parent returns the containing directory.
func (f *File) Parent() *File {
	out := new(File)
	C.juce_file_parent(f.c(), out.c())
	return out
}

// Child returns the file called name inside f.
func (f *File) Child(name string) *File {
	out := new(File)
	p, n := cText(name)
	C.juce_file_child(f.c(), p, n, out.c())
	return out
}

func (f *File) Exists() bool {
	return bool(C.juce_file_exists(f.c()))
}

func (f *File) IsDirectory() bool {
	return bool(C.juce_file_is_directory(f.c()))
}

func (f *File) Equal(other *File) bool {
	return bool(C.juce_file_equals(f.c(), other.c()))
}

func (f *File) Clone() *File {
	out := new(File)
	C.juce_file_clone(out.c(), f.c())
	return out
}

func (f *File) Drop() {
	C.juce_file_destroy(f.c())
}

// FileSearchPath mirrors juce::FileSearchPath, an ordered set of
// directories. The zero value is empty.
type FileSearchPath struct {
	_    noCopy
	_    [0]uintptr
	data [16]byte
}

// NewFileSearchPath builds a search path from directories, skipping
// duplicates.
func NewFileSearchPath(dirs ...string) *FileSearchPath {
	sp := new(FileSearchPath)
	for _, d := range dirs {
		sp.AddPath(d)
	}
	return sp
}

func (sp *FileSearchPath) c() *C.juce_FileSearchPath {
	return (*C.juce_FileSearchPath)(unsafe.Pointer(sp))
}

// Add appends a copy of dir unless it is already present.
func (sp *FileSearchPath) Add(dir *File) bool {
	return bool(C.juce_filesearchpath_add_if_not_already_in(sp.c(), dir.c()))
}

// AddPath is Add for a path string.
func (sp *FileSearchPath) AddPath(dir string) bool {
	f := NewFile(dir)
	defer f.Drop()
	return sp.Add(f)
}

func (sp *FileSearchPath) Len() int {
	return int(C.juce_filesearchpath_size(sp.c()))
}

// Get returns a reference to directory i, valid until the path is modified.
func (sp *FileSearchPath) Get(i int) *File {
	p := C.juce_filesearchpath_get(sp.c(), C.int32_t(i))
	if p == nil {
		panic(errors.OutOfBounds(errors.PhaseCollection, []string{"FileSearchPath"}, i, sp.Len()))
	}
	return (*File)(unsafe.Pointer(p))
}

// At returns directory i as a path string.
func (sp *FileSearchPath) At(i int) string {
	return sp.Get(i).Path()
}

func (sp *FileSearchPath) View() collection.View[string] {
	return collection.Over[string](sp)
}

func (sp *FileSearchPath) Values() iter.Seq[string] {
	return sp.View().Values()
}

// String joins the directories with ';'.
func (sp *FileSearchPath) String() string {
	var s String
	C.juce_filesearchpath_to_string(sp.c(), s.c())
	defer s.Drop()
	return s.String()
}

func (sp *FileSearchPath) Drop() {
	C.juce_filesearchpath_destroy(sp.c())
}
