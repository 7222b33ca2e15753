// Package layout describes the memory geometry of types mirrored across the
// native boundary.
//
// A mirrored foreign type exists twice: once as a C declaration compiled by
// the native toolchain and once as a Go placeholder of the same size and
// alignment. The binding check is done by the compiler in the package that
// declares the mirror. This package keeps a runtime record of both sides so
// the geometry can be listed, compared against an independent C layout
// computation, and reported.
//
// # Computing C layouts
//
//	setup := layout.Struct("AudioDeviceSetup",
//		layout.F("outputDeviceName", str),
//		layout.F("sampleRate", layout.Float64),
//		...
//	)
//	info := setup.Layout() // Size, Align, FieldOffs
//
// # Registry
//
// Mirrors register themselves in Default at init time:
//
//	layout.Default.Register(layout.Entry{
//		Name:    "String",
//		Host:    layout.Of[String](nil),
//		Foreign: layout.Info{Size: C.juce_String_size, Align: C.juce_String_align},
//	})
//
// Verify returns every disagreement combined into one error.
package layout
