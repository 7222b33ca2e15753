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

type deviceTypeBox struct {
	impl AudioIODeviceType
}

func (b *deviceTypeBox) Drop() { dropImpl(b.impl) }

type deviceBox struct {
	impl    AudioIODevice
	open    bool
	running *DeviceCallback
	life    *bridge.Lifetime
}

func (b *deviceBox) Drop() { dropImpl(b.impl) }

// callbackBox keeps everything a process call needs, so the audio thread
// does not allocate.
type callbackBox struct {
	impl     AudioIODeviceCallback
	lent     *bridge.Scoped[deviceRef]
	device   Device
	in, out  *bridge.Scoped[blockBuffer]
	inBlock  blockBuffer
	outBlock blockBuffer
}

func newCallbackBox(impl AudioIODeviceCallback) *callbackBox {
	b := &callbackBox{
		impl: impl,
		lent: bridge.NewScoped[deviceRef]("AudioIODevice"),
		in:   bridge.NewScoped[blockBuffer]("input buffer"),
		out:  bridge.NewScoped[blockBuffer]("output buffer"),
	}
	b.device.scoped = b.lent
	return b
}

func (b *callbackBox) Drop() { dropImpl(b.impl) }

// wrapDevice gives the foreign side ownership of d.
func wrapDevice(d AudioIODevice) *C.juce_AudioIODevice {
	switch v := d.(type) {
	case nil:
		return nil
	case *OwnedDevice:
		return v.release()
	}
	tok, err := register("device", &deviceBox{impl: d})
	if err != nil {
		Logger().Error("box audio device", zap.Error(err))
		return nil
	}
	return C.juce_device_wrap(tok)
}

//export juceGoDeviceTypeName
func juceGoDeviceTypeName(h C.uintptr_t, out *C.juce_String) {
	C.juce_string_construct(out)
	bridge.Invoke(registry(), bridge.Token(h), func(b *deviceTypeBox) {
		setString(out, b.impl.Name())
	})
}

//export juceGoDeviceTypeScan
func juceGoDeviceTypeScan(h C.uintptr_t) {
	bridge.Invoke(registry(), bridge.Token(h), func(b *deviceTypeBox) {
		b.impl.ScanForDevices()
	})
}

//export juceGoDeviceTypeDeviceNames
func juceGoDeviceTypeDeviceNames(h C.uintptr_t, input C.bool, out *C.juce_Array) {
	bridge.Invoke(registry(), bridge.Token(h), func(b *deviceTypeBox) {
		if input {
			appendStrings(out, b.impl.InputDeviceNames())
		} else {
			appendStrings(out, b.impl.OutputDeviceNames())
		}
	})
}

//export juceGoDeviceTypeDefaultIndex
func juceGoDeviceTypeDefaultIndex(h C.uintptr_t, input C.bool) C.int32_t {
	return bridge.InvokeR(registry(), bridge.Token(h), C.int32_t(0), func(b *deviceTypeBox) C.int32_t {
		if d, ok := b.impl.(DefaultDeviceIndexer); ok {
			return C.int32_t(d.DefaultDeviceIndex(bool(input)))
		}
		return 0
	})
}

//export juceGoDeviceTypeSeparateIO
func juceGoDeviceTypeSeparateIO(h C.uintptr_t) C.bool {
	return bridge.InvokeR(registry(), bridge.Token(h), C.bool(true), func(b *deviceTypeBox) C.bool {
		if s, ok := b.impl.(SeparateInputsAndOutputs); ok {
			return C.bool(s.HasSeparateInputsAndOutputs())
		}
		return true
	})
}

//export juceGoDeviceTypeCreateDevice
func juceGoDeviceTypeCreateDevice(h C.uintptr_t, outputName, inputName *C.juce_String) *C.juce_AudioIODevice {
	return bridge.InvokeR(registry(), bridge.Token(h), (*C.juce_AudioIODevice)(nil), func(b *deviceTypeBox) *C.juce_AudioIODevice {
		return wrapDevice(b.impl.CreateDevice(goString(outputName), goString(inputName)))
	})
}

//export juceGoDeviceTypeDrop
func juceGoDeviceTypeDrop(h C.uintptr_t) {
	bridge.Release(registry(), bridge.Token(h))
}

//export juceGoDeviceName
func juceGoDeviceName(h C.uintptr_t, out *C.juce_String) {
	C.juce_string_construct(out)
	bridge.Invoke(registry(), bridge.Token(h), func(b *deviceBox) {
		setString(out, b.impl.Name())
	})
}

//export juceGoDeviceTypeNameOf
func juceGoDeviceTypeNameOf(h C.uintptr_t, out *C.juce_String) {
	C.juce_string_construct(out)
	bridge.Invoke(registry(), bridge.Token(h), func(b *deviceBox) {
		setString(out, b.impl.TypeName())
	})
}

//export juceGoDeviceSampleRate
func juceGoDeviceSampleRate(h C.uintptr_t) C.double {
	return bridge.InvokeR(registry(), bridge.Token(h), C.double(0), func(b *deviceBox) C.double {
		return C.double(b.impl.CurrentSampleRate())
	})
}

//export juceGoDeviceBufferSize
func juceGoDeviceBufferSize(h C.uintptr_t) C.int32_t {
	return bridge.InvokeR(registry(), bridge.Token(h), C.int32_t(0), func(b *deviceBox) C.int32_t {
		return C.int32_t(b.impl.CurrentBufferSize())
	})
}

//export juceGoDeviceDefaultBufferSize
func juceGoDeviceDefaultBufferSize(h C.uintptr_t) C.int32_t {
	return bridge.InvokeR(registry(), bridge.Token(h), C.int32_t(0), func(b *deviceBox) C.int32_t {
		if d, ok := b.impl.(DefaultBufferSizer); ok {
			return C.int32_t(d.DefaultBufferSize())
		}
		return 0
	})
}

//export juceGoDeviceSampleRates
func juceGoDeviceSampleRates(h C.uintptr_t, out *C.juce_Array) {
	bridge.Invoke(registry(), bridge.Token(h), func(b *deviceBox) {
		rates := b.impl.AvailableSampleRates()
		if len(rates) > 0 {
			C.juce_array_add_raw(out, unsafe.Pointer(&rates[0]), C.int32_t(len(rates)), C.size_t(unsafe.Sizeof(rates[0])))
		}
	})
}

//export juceGoDeviceBufferSizes
func juceGoDeviceBufferSizes(h C.uintptr_t, out *C.juce_Array) {
	bridge.Invoke(registry(), bridge.Token(h), func(b *deviceBox) {
		for _, n := range b.impl.AvailableBufferSizes() {
			v := C.int32_t(n)
			C.juce_array_add_raw(out, unsafe.Pointer(&v), 1, C.size_t(unsafe.Sizeof(v)))
		}
	})
}

//export juceGoDeviceOpen
func juceGoDeviceOpen(h C.uintptr_t, inputs, outputs *C.juce_BigInteger, sampleRate C.double, bufferSize C.int32_t, msg *C.juce_String) C.bool {
	return bridge.InvokeR(registry(), bridge.Token(h), C.bool(false), func(b *deviceBox) C.bool {
		ins := (*BigInteger)(unsafe.Pointer(inputs))
		outs := (*BigInteger)(unsafe.Pointer(outputs))
		if err := b.impl.Open(ins, outs, float64(sampleRate), int(bufferSize)); err != nil {
			setString(msg, foreignMessage(err))
			return false
		}
		b.open = true
		return true
	})
}

//export juceGoDeviceClose
func juceGoDeviceClose(h C.uintptr_t) {
	bridge.Invoke(registry(), bridge.Token(h), func(b *deviceBox) {
		if b.open {
			b.impl.Close()
			b.open = false
		}
	})
}

//export juceGoDeviceIsOpen
func juceGoDeviceIsOpen(h C.uintptr_t) C.bool {
	return bridge.InvokeR(registry(), bridge.Token(h), C.bool(false), func(b *deviceBox) C.bool {
		return C.bool(b.open)
	})
}

//export juceGoDeviceStart
func juceGoDeviceStart(h C.uintptr_t, callback *C.juce_AudioIODeviceCallback) {
	bridge.Invoke(registry(), bridge.Token(h), func(b *deviceBox) {
		s, ok := b.impl.(DeviceStarter)
		if !ok {
			return
		}
		b.life = bridge.NewLifetime("device start")
		b.running = &DeviceCallback{ref: bridge.Pin((*callbackRef)(unsafe.Pointer(callback)), b.life)}
		s.Start(b.running)
	})
}

//export juceGoDeviceStop
func juceGoDeviceStop(h C.uintptr_t) {
	bridge.Invoke(registry(), bridge.Token(h), func(b *deviceBox) {
		s, ok := b.impl.(DeviceStarter)
		if !ok || b.running == nil {
			return
		}
		s.Stop()
		b.life.End()
		b.running, b.life = nil, nil
	})
}

//export juceGoDeviceInputChannels
func juceGoDeviceInputChannels(h C.uintptr_t) C.int32_t {
	return bridge.InvokeR(registry(), bridge.Token(h), C.int32_t(0), func(b *deviceBox) C.int32_t {
		return C.int32_t(b.impl.InputChannels())
	})
}

//export juceGoDeviceOutputChannels
func juceGoDeviceOutputChannels(h C.uintptr_t) C.int32_t {
	return bridge.InvokeR(registry(), bridge.Token(h), C.int32_t(0), func(b *deviceBox) C.int32_t {
		return C.int32_t(b.impl.OutputChannels())
	})
}

//export juceGoDeviceDrop
func juceGoDeviceDrop(h C.uintptr_t) {
	bridge.Release(registry(), bridge.Token(h))
}

//export juceGoCallbackAboutToStart
func juceGoCallbackAboutToStart(h C.uintptr_t, device *C.juce_AudioIODevice) {
	bridge.Invoke(registry(), bridge.Token(h), func(b *callbackBox) {
		b.lent.Enter((*deviceRef)(unsafe.Pointer(device)))
		defer b.lent.Exit()
		b.impl.AboutToStart(&b.device)
	})
}

//export juceGoCallbackProcess
func juceGoCallbackProcess(h C.uintptr_t, ins **C.float, numIns C.int32_t, outs **C.float, numOuts C.int32_t, numSamples C.int32_t) {
	bridge.Invoke(registry(), bridge.Token(h), func(b *callbackBox) {
		b.inBlock = blockBuffer{channels: ins, numChannels: int(numIns), numSamples: int(numSamples)}
		b.outBlock = blockBuffer{channels: outs, numChannels: int(numOuts), numSamples: int(numSamples)}
		b.in.Enter(&b.inBlock)
		b.out.Enter(&b.outBlock)
		defer b.in.Exit()
		defer b.out.Exit()
		b.impl.ProcessBlock(InputBuffer{s: b.in}, OutputBuffer{s: b.out})
	})
}

//export juceGoCallbackStopped
func juceGoCallbackStopped(h C.uintptr_t) {
	bridge.Invoke(registry(), bridge.Token(h), func(b *callbackBox) {
		b.impl.Stopped()
	})
}

//export juceGoCallbackError
func juceGoCallbackError(h C.uintptr_t, msg *C.juce_String) {
	text := goString(msg)
	bridge.Invoke(registry(), bridge.Token(h), func(b *callbackBox) {
		if e, ok := b.impl.(AudioDeviceErrorHandler); ok {
			e.DeviceError(text)
			return
		}
		Logger().Error("audio device error", zap.String("message", text))
	})
}

//export juceGoCallbackDrop
func juceGoCallbackDrop(h C.uintptr_t) {
	bridge.Release(registry(), bridge.Token(h))
}
