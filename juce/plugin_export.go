package juce

/*
#include "juce_native.h"
*/
import "C"

import (
	"unsafe"

	"go.uber.org/zap"

	"github.com/wippyai/juce-runtime/bridge"
)

type formatBox struct {
	impl AudioPluginFormat
}

func (b *formatBox) Drop() { dropImpl(b.impl) }

type instanceBox struct {
	impl   AudioPlugin
	lent   *bridge.Scoped[bufferRef]
	buffer *AudioSampleBuffer
}

func newInstanceBox(impl AudioPlugin) *instanceBox {
	lent := bridge.NewScoped[bufferRef]("AudioSampleBuffer")
	return &instanceBox{impl: impl, lent: lent, buffer: lentAudioSampleBuffer(lent)}
}

func (b *instanceBox) Drop() { dropImpl(b.impl) }

// wrapPlugin gives the foreign side ownership of p.
func wrapPlugin(p AudioPlugin) *C.juce_AudioPluginInstance {
	if owned, ok := p.(*PluginInstance); ok {
		return owned.release()
	}
	tok, err := register("plugin instance", newInstanceBox(p))
	if err != nil {
		Logger().Error("box plugin instance", zap.Error(err))
		return nil
	}
	return C.juce_plugin_instance_wrap(tok)
}

//export juceGoFormatName
func juceGoFormatName(h C.uintptr_t, out *C.juce_String) {
	C.juce_string_construct(out)
	bridge.Invoke(registry(), bridge.Token(h), func(b *formatBox) {
		setString(out, b.impl.Name())
	})
}

//export juceGoFormatFindAllTypes
func juceGoFormatFindAllTypes(h C.uintptr_t, results *C.juce_OwnedPluginDescriptions, fileOrIdentifier *C.juce_String) {
	path := goString(fileOrIdentifier)
	out := (*OwnedPluginDescriptions)(unsafe.Pointer(results))
	bridge.Invoke(registry(), bridge.Token(h), func(b *formatBox) {
		b.impl.FindAllTypesForFile(out, path)
	})
}

//export juceGoFormatMightContain
func juceGoFormatMightContain(h C.uintptr_t, fileOrIdentifier *C.juce_String) C.bool {
	path := goString(fileOrIdentifier)
	return bridge.InvokeR(registry(), bridge.Token(h), C.bool(false), func(b *formatBox) C.bool {
		s, ok := b.impl.(PluginScanner)
		return C.bool(ok && s.FileMightContainThisPluginType(path))
	})
}

//export juceGoFormatCanScan
func juceGoFormatCanScan(h C.uintptr_t) C.bool {
	return bridge.InvokeR(registry(), bridge.Token(h), C.bool(false), func(b *formatBox) C.bool {
		s, ok := b.impl.(PluginScanner)
		return C.bool(ok && s.CanScanForPlugins())
	})
}

//export juceGoFormatSearchPaths
func juceGoFormatSearchPaths(h C.uintptr_t, paths *C.juce_FileSearchPath, recursive C.bool, out *C.juce_Array) {
	sp := (*FileSearchPath)(unsafe.Pointer(paths))
	bridge.Invoke(registry(), bridge.Token(h), func(b *formatBox) {
		if s, ok := b.impl.(PluginScanner); ok {
			appendStrings(out, s.SearchPathsForPlugins(sp, bool(recursive)))
		}
	})
}

//export juceGoFormatDefaultLocations
func juceGoFormatDefaultLocations(h C.uintptr_t, out *C.juce_FileSearchPath) {
	sp := (*FileSearchPath)(unsafe.Pointer(out))
	bridge.Invoke(registry(), bridge.Token(h), func(b *formatBox) {
		if s, ok := b.impl.(PluginScanner); ok {
			s.DefaultLocationsToSearch(sp)
		}
	})
}

//export juceGoFormatCreateInstance
func juceGoFormatCreateInstance(h C.uintptr_t, description *C.juce_PluginDescription, sampleRate C.double, blockSize C.int32_t, msg *C.juce_String) *C.juce_AudioPluginInstance {
	desc := (*PluginDescription)(unsafe.Pointer(description))
	return bridge.InvokeR(registry(), bridge.Token(h), (*C.juce_AudioPluginInstance)(nil), func(b *formatBox) *C.juce_AudioPluginInstance {
		p, err := b.impl.CreateInstance(desc, float64(sampleRate), int(blockSize))
		if err != nil {
			setString(msg, foreignMessage(err))
			return nil
		}
		if p == nil {
			setString(msg, "plugin could not be created")
			return nil
		}
		return wrapPlugin(p)
	})
}

//export juceGoFormatDrop
func juceGoFormatDrop(h C.uintptr_t) {
	bridge.Release(registry(), bridge.Token(h))
}

//export juceGoInstanceName
func juceGoInstanceName(h C.uintptr_t, out *C.juce_String) {
	C.juce_string_construct(out)
	bridge.Invoke(registry(), bridge.Token(h), func(b *instanceBox) {
		setString(out, b.impl.Name())
	})
}

//export juceGoInstancePrepare
func juceGoInstancePrepare(h C.uintptr_t, sampleRate C.double, blockSize C.int32_t) {
	bridge.Invoke(registry(), bridge.Token(h), func(b *instanceBox) {
		b.impl.PrepareToPlay(float64(sampleRate), int(blockSize))
	})
}

//export juceGoInstanceRelease
func juceGoInstanceRelease(h C.uintptr_t) {
	bridge.Invoke(registry(), bridge.Token(h), func(b *instanceBox) {
		b.impl.ReleaseResources()
	})
}

//export juceGoInstanceProcess
func juceGoInstanceProcess(h C.uintptr_t, buffer *C.juce_AudioSampleBuffer, midi *C.juce_MidiBuffer) {
	bridge.Invoke(registry(), bridge.Token(h), func(b *instanceBox) {
		b.lent.Enter((*bufferRef)(unsafe.Pointer(buffer)))
		defer b.lent.Exit()
		b.impl.ProcessBlock(b.buffer, (*MidiBuffer)(unsafe.Pointer(midi)))
	})
}

//export juceGoInstanceTailSeconds
func juceGoInstanceTailSeconds(h C.uintptr_t) C.double {
	return bridge.InvokeR(registry(), bridge.Token(h), C.double(0), func(b *instanceBox) C.double {
		return C.double(b.impl.TailLengthSeconds())
	})
}

//export juceGoInstanceAcceptsMidi
func juceGoInstanceAcceptsMidi(h C.uintptr_t) C.bool {
	return bridge.InvokeR(registry(), bridge.Token(h), C.bool(false), func(b *instanceBox) C.bool {
		return C.bool(b.impl.AcceptsMidi())
	})
}

//export juceGoInstanceProducesMidi
func juceGoInstanceProducesMidi(h C.uintptr_t) C.bool {
	return bridge.InvokeR(registry(), bridge.Token(h), C.bool(false), func(b *instanceBox) C.bool {
		return C.bool(b.impl.ProducesMidi())
	})
}

//export juceGoInstanceNumPrograms
func juceGoInstanceNumPrograms(h C.uintptr_t) C.int32_t {
	return bridge.InvokeR(registry(), bridge.Token(h), C.int32_t(1), func(b *instanceBox) C.int32_t {
		if p, ok := b.impl.(ProgramHandler); ok {
			return C.int32_t(p.NumPrograms())
		}
		return 1
	})
}

//export juceGoInstanceCurrentProgram
func juceGoInstanceCurrentProgram(h C.uintptr_t) C.int32_t {
	return bridge.InvokeR(registry(), bridge.Token(h), C.int32_t(0), func(b *instanceBox) C.int32_t {
		if p, ok := b.impl.(ProgramHandler); ok {
			return C.int32_t(p.CurrentProgram())
		}
		return 0
	})
}

//export juceGoInstanceSetCurrentProgram
func juceGoInstanceSetCurrentProgram(h C.uintptr_t, index C.int32_t) {
	bridge.Invoke(registry(), bridge.Token(h), func(b *instanceBox) {
		if p, ok := b.impl.(ProgramHandler); ok {
			p.SetCurrentProgram(int(index))
		}
	})
}

//export juceGoInstanceProgramName
func juceGoInstanceProgramName(h C.uintptr_t, index C.int32_t, out *C.juce_String) {
	C.juce_string_construct(out)
	bridge.Invoke(registry(), bridge.Token(h), func(b *instanceBox) {
		if p, ok := b.impl.(ProgramHandler); ok {
			setString(out, p.ProgramName(int(index)))
		}
	})
}

//export juceGoInstanceFillDescription
func juceGoInstanceFillDescription(h C.uintptr_t, out *C.juce_PluginDescription) {
	d := (*PluginDescription)(unsafe.Pointer(out))
	bridge.Invoke(registry(), bridge.Token(h), func(b *instanceBox) {
		b.impl.FillInPluginDescription(d)
	})
}

//export juceGoInstanceDrop
func juceGoInstanceDrop(h C.uintptr_t) {
	bridge.Release(registry(), bridge.Token(h))
}
