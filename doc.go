// Package juceruntime is a Go host for a native audio runtime modelled on
// JUCE. Go code and the native side share values, collections and callbacks
// across a C boundary without copying or leaking.
//
// # Architecture Overview
//
// The module is organized into packages with distinct responsibilities:
//
//	juceruntime/         Module documentation
//	├── layout/          Size, alignment and field offset checks for mirrored types
//	├── collection/      Read-only views and iteration over foreign collections
//	├── resource/        Generation-checked handle table for boxed Go values
//	├── bridge/          Capability boxes, callback trampolines and drop scopes
//	├── guard/           Process-wide runtime lifecycle bound to one thread
//	├── juce/            The runtime binding: strings, arrays, MIDI, audio devices, plugins
//	├── wasmplugin/      WebAssembly audio plugin format hosted on wazero
//	├── config/          YAML configuration, validation and JSON Schema
//	├── errors/          Structured error types
//	└── cmd/juce/        Command line tool and device browser
//
// # Quick Start
//
// Initialise the runtime on the thread that will dispatch messages, then
// open the default audio device:
//
//	j, err := juce.Initialise()
//	if err != nil {
//	    return err
//	}
//	defer j.Close()
//
//	m, err := juce.NewAudioDeviceManager()
//	if err != nil {
//	    return err
//	}
//	defer m.Close()
//	m.AddDefaultDeviceTypes()
//	if err := m.Initialise(0, 2); err != nil {
//	    return err
//	}
//
// Hosting WebAssembly plugins:
//
//	format, err := wasmplugin.NewFormat(ctx, wasmplugin.Config{})
//	if err != nil {
//	    return err
//	}
//	formats := juce.NewPluginFormatManager()
//	defer formats.Drop()
//	if err := formats.AddFormat(format); err != nil {
//	    return err
//	}
//
// # Ownership
//
// Values created by the native side are owned by exactly one Go value and
// released by its Drop or Close method. Go values handed to the native side
// are boxed in a handle table; the native side drops the box when it is
// done, which calls the value's Drop or Close if it has one.
//
// # Threading
//
// The runtime belongs to the thread that called juce.Initialise. Message
// thread operations fail with an error on any other thread. Audio callbacks
// run on the device thread and may post work back with juce.CallAsync.
package juceruntime
