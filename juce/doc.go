// Package juce binds Go to a JUCE-style native multimedia runtime through
// cgo. The runtime itself is the C code in this directory; the Go side
// mirrors its value types and lets Go implement its abstract classes.
//
// # Value types
//
// String, StringArray, the numeric arrays, BigInteger, File, MidiMessage and
// the other mirrors have exactly the size and alignment of their foreign
// counterparts, so a Go value can be passed to the runtime by address and
// a foreign pointer can be read as a Go value. AudioDeviceSetup,
// MidiDeviceInfo and PluginDescription are mirrored field by field. The
// build fails when a mirror drifts, and Initialise checks the layout
// registry again before the runtime starts.
//
// Mirrors own foreign allocations. Release them with Drop, copy them with
// Clone, and never copy the Go struct.
//
// # Implementing runtime classes in Go
//
// AudioIODeviceType, AudioIODevice, AudioIODeviceCallback, MidiInputCallback,
// AudioPluginFormat, AudioPlugin and App are Go interfaces the runtime calls
// back into. Passing one to the runtime boxes it in the bridge registry;
// the runtime holds an integer handle and drops the box exactly once when it
// is done with it, calling the value's Drop or Close method. A callback that
// re-enters the same object is refused and logged instead of run.
//
// Buffers and devices the runtime passes to a callback are lent for that
// call only. Using them after the callback returns panics.
//
// # Threads
//
// Initialise pins the calling goroutine to its OS thread, which becomes the
// message thread. AudioDeviceManager and the dispatch loop must be used from
// that thread; other threads get errors matching errors.ErrWrongThread.
// CallAsync is the way back to the message thread from anywhere else:
//
//	j, err := juce.Initialise()
//	if err != nil {
//		return err
//	}
//	defer j.Close()
//
//	m, err := juce.NewAudioDeviceManager()
//	if err != nil {
//		return err
//	}
//	defer m.Close()
//	m.AddDefaultDeviceTypes()
//	if err := m.Initialise(0, 2); err != nil {
//		return err
//	}
package juce
