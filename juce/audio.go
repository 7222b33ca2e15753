package juce

/*
#include "juce_native.h"
*/
import "C"

import (
	"unsafe"

	"github.com/wippyai/juce-runtime/bridge"
	"github.com/wippyai/juce-runtime/errors"
)

// AudioSampleBuffer is a foreign heap buffer of planar float samples. It is
// either owned by Go (NewAudioSampleBuffer, released with Free) or lent by
// the foreign side for the duration of one callback.
type AudioSampleBuffer struct {
	owned *C.juce_AudioSampleBuffer
	lent  *bridge.Scoped[bufferRef]
}

// NewAudioSampleBuffer allocates a zeroed buffer.
func NewAudioSampleBuffer(channels, samples int) *AudioSampleBuffer {
	return &AudioSampleBuffer{owned: C.juce_audio_buffer_new(C.int32_t(channels), C.int32_t(samples))}
}

func lentAudioSampleBuffer(s *bridge.Scoped[bufferRef]) *AudioSampleBuffer {
	return &AudioSampleBuffer{lent: s}
}

func (b *AudioSampleBuffer) c() *C.juce_AudioSampleBuffer {
	if b.lent != nil {
		return b.lent.Ptr().c()
	}
	if b.owned == nil {
		panic(errors.New(errors.PhaseBridge, errors.KindUseAfterDrop).
			ForeignType("AudioSampleBuffer").Detail("buffer used after Free").Build())
	}
	return b.owned
}

func (b *AudioSampleBuffer) Channels() int {
	return int(C.juce_audio_buffer_channels(b.c()))
}

func (b *AudioSampleBuffer) Samples() int {
	return int(C.juce_audio_buffer_samples(b.c()))
}

// Channel returns the samples of channel ch, aliasing foreign memory. Out of
// range channels give nil.
func (b *AudioSampleBuffer) Channel(ch int) []float32 {
	p := b.c()
	data := C.juce_audio_buffer_write_pointer(p, C.int32_t(ch))
	if data == nil {
		return nil
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(data)), int(C.juce_audio_buffer_samples(p)))
}

func (b *AudioSampleBuffer) Clear() {
	C.juce_audio_buffer_clear(b.c())
}

// SetSize reallocates when the shape changes. Contents are zeroed.
func (b *AudioSampleBuffer) SetSize(channels, samples int) {
	C.juce_audio_buffer_set_size(b.c(), C.int32_t(channels), C.int32_t(samples))
}

// Free releases an owned buffer. Lent buffers are left to their owner.
func (b *AudioSampleBuffer) Free() {
	if b.owned != nil {
		C.juce_audio_buffer_free(b.owned)
		b.owned = nil
	}
}

// blockBuffer is the channel array the device passes to a process call.
type blockBuffer struct {
	channels    **C.float
	numChannels int
	numSamples  int
}

func (b *blockBuffer) channel(ch int) []float32 {
	if ch < 0 || ch >= b.numChannels || b.channels == nil {
		return nil
	}
	p := unsafe.Slice(b.channels, b.numChannels)[ch]
	if p == nil {
		return nil
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(p)), b.numSamples)
}

// InputBuffer is the device input of one process call. It must not be used
// after ProcessBlock returns.
type InputBuffer struct {
	s *bridge.Scoped[blockBuffer]
}

func (b InputBuffer) Channels() int { return b.s.Ptr().numChannels }
func (b InputBuffer) Samples() int  { return b.s.Ptr().numSamples }

// Channel returns the samples of channel ch. Callers must not write to it.
func (b InputBuffer) Channel(ch int) []float32 {
	return b.s.Ptr().channel(ch)
}

// OutputBuffer is the device output of one process call. It must not be
// used after ProcessBlock returns.
type OutputBuffer struct {
	s *bridge.Scoped[blockBuffer]
}

func (b OutputBuffer) Channels() int { return b.s.Ptr().numChannels }
func (b OutputBuffer) Samples() int  { return b.s.Ptr().numSamples }

// Channel returns the writable samples of channel ch.
func (b OutputBuffer) Channel(ch int) []float32 {
	return b.s.Ptr().channel(ch)
}

// Clear zeroes every output channel.
func (b OutputBuffer) Clear() {
	blk := b.s.Ptr()
	for ch := range blk.numChannels {
		clear(blk.channel(ch))
	}
}

// IIRCoefficients mirrors juce::IIRCoefficients. It is a plain value.
type IIRCoefficients struct {
	_    [0]float32
	data [20]byte
}

func (c *IIRCoefficients) c() *C.juce_IIRCoefficients {
	return (*C.juce_IIRCoefficients)(unsafe.Pointer(c))
}

// LowPass returns second order low-pass coefficients.
func LowPass(sampleRate, frequency, q float64) IIRCoefficients {
	var c IIRCoefficients
	C.juce_iir_coefficients_low_pass(c.c(), C.double(sampleRate), C.double(frequency), C.double(q))
	return c
}

// HighPass returns second order high-pass coefficients.
func HighPass(sampleRate, frequency, q float64) IIRCoefficients {
	var c IIRCoefficients
	C.juce_iir_coefficients_high_pass(c.c(), C.double(sampleRate), C.double(frequency), C.double(q))
	return c
}

// Notch returns notch filter coefficients.
func Notch(sampleRate, frequency, q float64) IIRCoefficients {
	var c IIRCoefficients
	C.juce_iir_coefficients_notch(c.c(), C.double(sampleRate), C.double(frequency), C.double(q))
	return c
}

// Raw returns the normalised b0, b1, b2, a1, a2 coefficients.
func (c IIRCoefficients) Raw() [5]float32 {
	return *(*[5]float32)(unsafe.Pointer(&c.data))
}

// SingleThreadedIIRFilter mirrors juce::SingleThreadedIIRFilter. The zero
// value is an inactive filter that passes samples through.
type SingleThreadedIIRFilter struct {
	_    [0]uint32
	data [36]byte
}

func (f *SingleThreadedIIRFilter) c() *C.juce_SingleThreadedIIRFilter {
	return (*C.juce_SingleThreadedIIRFilter)(unsafe.Pointer(f))
}

// SetCoefficients activates the filter with c. The filter state is kept.
func (f *SingleThreadedIIRFilter) SetCoefficients(c IIRCoefficients) {
	C.juce_iir_filter_set_coefficients(f.c(), c.c())
}

func (f *SingleThreadedIIRFilter) MakeInactive() {
	C.juce_iir_filter_make_inactive(f.c())
}

// Reset clears the filter state.
func (f *SingleThreadedIIRFilter) Reset() {
	C.juce_iir_filter_reset(f.c())
}

// Process filters samples in place.
func (f *SingleThreadedIIRFilter) Process(samples []float32) {
	if len(samples) == 0 {
		return
	}
	C.juce_iir_filter_process(f.c(), (*C.float)(unsafe.Pointer(&samples[0])), C.int32_t(len(samples)))
}

// SystemAudioVolume controls the output gain of the host system.
type SystemAudioVolume struct{}

// Gain returns the system gain between 0 and 1.
func (SystemAudioVolume) Gain() float32 {
	return float32(C.juce_system_volume_get_gain())
}

// SetGain clamps gain into 0..1. It reports false when the system refused.
func (SystemAudioVolume) SetGain(gain float32) bool {
	return bool(C.juce_system_volume_set_gain(C.float(gain)))
}

func (SystemAudioVolume) IsMuted() bool {
	return bool(C.juce_system_volume_is_muted())
}

func (SystemAudioVolume) SetMuted(muted bool) bool {
	return bool(C.juce_system_volume_set_muted(C.bool(muted)))
}
