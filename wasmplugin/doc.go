// Package wasmplugin loads audio plugins compiled to core WebAssembly and
// hosts them in wazero behind the juce.AudioPluginFormat interface.
//
// # Module ABI
//
// A plugin module imports nothing and exports:
//
//	memory                                   linear memory
//	process(ptr i32, channels i32, frames i32)  in-place planar float32 block
//	prepare(sample_rate f64, block i32)      optional
//	reset()                                  optional
//	input_channels, output_channels  i32     optional globals, default 2
//	tail_ms                          i32     optional global, default 0
//
// Samples are laid out channel after channel starting at ptr, frames
// float32 values each, little endian. The host owns the region at ptr: it
// grows guest memory once when an instance is created or its block size
// increases, and reuses that region for every block.
//
// Metadata comes from a custom section named "juce-plugin" holding
// name=value lines. Recognised keys are name, manufacturer, version,
// category and instrument. A missing name falls back to the file name.
//
// # Usage
//
//	format, err := wasmplugin.NewFormat(ctx, wasmplugin.Config{MemoryLimitPages: 256})
//	if err != nil {
//		return err
//	}
//	manager := juce.NewPluginFormatManager()
//	defer manager.Drop()
//	if err := manager.AddFormat(format); err != nil {
//		return err
//	}
//
// The manager owns the format from then on and closes the wazero runtime
// when it is dropped.
package wasmplugin
