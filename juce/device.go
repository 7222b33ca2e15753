package juce

/*
#include "juce_native.h"
*/
import "C"

import (
	"strconv"
	"unsafe"

	"github.com/wippyai/juce-runtime/bridge"
	"github.com/wippyai/juce-runtime/errors"
)

// AudioIODeviceType is a family of devices, such as one driver API,
// implemented in Go and added to an AudioDeviceManager.
type AudioIODeviceType interface {
	Name() string
	ScanForDevices()
	InputDeviceNames() []string
	OutputDeviceNames() []string
	// CreateDevice returns nil when no device matches the names. An empty
	// name means the direction is unused.
	CreateDevice(outputName, inputName string) AudioIODevice
}

// DefaultDeviceIndexer picks the default device in InputDeviceNames or
// OutputDeviceNames. Without it the first name is the default.
type DefaultDeviceIndexer interface {
	DefaultDeviceIndex(input bool) int
}

// SeparateInputsAndOutputs tells whether inputs and outputs are opened by
// separate names. Types that do not implement it have separate names.
type SeparateInputsAndOutputs interface {
	HasSeparateInputsAndOutputs() bool
}

// AudioIODevice is one opened or openable device. Devices implemented in Go
// are owned by the foreign side once CreateDevice returns them and are
// dropped when it destroys them.
type AudioIODevice interface {
	Name() string
	TypeName() string
	CurrentSampleRate() float64
	CurrentBufferSize() int
	AvailableSampleRates() []float64
	AvailableBufferSizes() []int
	// Open prepares the device. The channel masks are borrowed for the
	// duration of the call.
	Open(inputs, outputs *BigInteger, sampleRate float64, bufferSize int) error
	Close()
	InputChannels() int
	OutputChannels() int
}

// DefaultBufferSizer reports the preferred buffer size of a device.
type DefaultBufferSizer interface {
	DefaultBufferSize() int
}

// DeviceStarter is implemented by Go devices that produce audio. Start gets
// the callback to drive, usually from a goroutine, until Stop returns.
type DeviceStarter interface {
	Start(callback *DeviceCallback)
	Stop()
}

// AudioIODeviceCallback receives audio from the device a manager runs.
//
// ProcessBlock runs on the device's audio thread. It must not block, and
// the buffers it gets are only valid until it returns.
type AudioIODeviceCallback interface {
	AboutToStart(device *Device)
	ProcessBlock(in InputBuffer, out OutputBuffer)
	Stopped()
}

// AudioDeviceErrorHandler is told about failures of a running device.
type AudioDeviceErrorHandler interface {
	DeviceError(message string)
}

// DeviceType is a device type held by an AudioDeviceManager. It stays valid
// until the manager is closed.
type DeviceType struct {
	ref bridge.Pinned[typeRef]
}

func (t *DeviceType) c() *C.juce_AudioIODeviceType {
	return t.ref.Ptr().c()
}

func (t *DeviceType) Name() string {
	var s String
	defer s.Drop()
	C.juce_device_type_name(t.c(), s.c())
	return s.String()
}

// ScanForDevices refreshes the device name lists.
func (t *DeviceType) ScanForDevices() {
	C.juce_device_type_scan(t.c())
}

func (t *DeviceType) deviceNames(input bool) []string {
	var names StringArray
	defer names.Drop()
	C.juce_device_type_device_names(t.c(), C.bool(input), names.c())
	return names.Collect()
}

func (t *DeviceType) InputDeviceNames() []string  { return t.deviceNames(true) }
func (t *DeviceType) OutputDeviceNames() []string { return t.deviceNames(false) }

func (t *DeviceType) DefaultDeviceIndex(input bool) int {
	return int(C.juce_device_type_default_device_index(t.c(), C.bool(input)))
}

func (t *DeviceType) HasSeparateInputsAndOutputs() bool {
	return bool(C.juce_device_type_has_separate_inputs_and_outputs(t.c()))
}

// CreateDevice creates an unopened device owned by the caller.
func (t *DeviceType) CreateDevice(outputName, inputName string) (*OwnedDevice, error) {
	out, in := NewString(outputName), NewString(inputName)
	defer out.Drop()
	defer in.Drop()
	p := C.juce_device_type_create_device(t.c(), out.c(), in.c())
	if p == nil {
		return nil, errors.NotFound(errors.PhaseForeign, "audio device", outputName+inputName)
	}
	return &OwnedDevice{Device: Device{owned: p}}, nil
}

// Device is a non-owning reference to a foreign audio device. It is either
// lent for one callback, as in AboutToStart, or pinned to the manager that
// owns the device, in which case it is valid until the manager changes
// device.
type Device struct {
	owned  *C.juce_AudioIODevice
	scoped *bridge.Scoped[deviceRef]
	pinned bridge.Pinned[deviceRef]
}

func (d *Device) c() *C.juce_AudioIODevice {
	switch {
	case d.scoped != nil:
		return d.scoped.Ptr().c()
	case d.owned != nil:
		return d.owned
	default:
		return d.pinned.Ptr().c()
	}
}

func (d *Device) Name() string {
	var s String
	defer s.Drop()
	C.juce_device_name(d.c(), s.c())
	return s.String()
}

func (d *Device) TypeName() string {
	var s String
	defer s.Drop()
	C.juce_device_type_name_of(d.c(), s.c())
	return s.String()
}

func (d *Device) CurrentSampleRate() float64 {
	return float64(C.juce_device_current_sample_rate(d.c()))
}

func (d *Device) CurrentBufferSize() int {
	return int(C.juce_device_current_buffer_size(d.c()))
}

func (d *Device) DefaultBufferSize() int {
	return int(C.juce_device_default_buffer_size(d.c()))
}

func (d *Device) AvailableSampleRates() []float64 {
	var rates DoubleArray
	defer rates.Drop()
	C.juce_device_available_sample_rates(d.c(), rates.c())
	return rates.Collect()
}

func (d *Device) AvailableBufferSizes() []int {
	var sizes IntArray
	defer sizes.Drop()
	C.juce_device_available_buffer_sizes(d.c(), sizes.c())
	out := make([]int, 0, sizes.Len())
	for v := range sizes.Values() {
		out = append(out, int(v))
	}
	return out
}

// Open opens the device with the given channel masks. A nil mask selects no
// channels.
func (d *Device) Open(inputs, outputs *BigInteger, sampleRate float64, bufferSize int) error {
	var none BigInteger
	if inputs == nil {
		inputs = &none
	}
	if outputs == nil {
		outputs = &none
	}
	var msg String
	defer msg.Drop()
	if !C.juce_device_open(d.c(), inputs.c(), outputs.c(), C.double(sampleRate), C.int32_t(bufferSize), msg.c()) {
		return errors.Foreign("open", msg.String())
	}
	return nil
}

func (d *Device) Close() {
	C.juce_device_close(d.c())
}

func (d *Device) IsOpen() bool {
	return bool(C.juce_device_is_open(d.c()))
}

func (d *Device) IsPlaying() bool {
	return bool(C.juce_device_is_playing(d.c()))
}

// Start runs callback on the device's audio thread. Devices owned by a
// manager are started by the manager; this is for devices created directly.
func (d *Device) Start(callback *DeviceCallback) {
	C.juce_device_start(d.c(), callback.c())
}

func (d *Device) Stop() {
	C.juce_device_stop(d.c())
}

// ActiveInputChannels returns the open input channels. The caller drops it.
func (d *Device) ActiveInputChannels() *BigInteger {
	out := new(BigInteger)
	C.juce_device_active_input_channels(d.c(), out.c())
	return out
}

// ActiveOutputChannels returns the open output channels. The caller drops it.
func (d *Device) ActiveOutputChannels() *BigInteger {
	out := new(BigInteger)
	C.juce_device_active_output_channels(d.c(), out.c())
	return out
}

func (d *Device) InputChannels() int {
	b := d.ActiveInputChannels()
	defer b.Drop()
	return b.CountSetBits()
}

func (d *Device) OutputChannels() int {
	b := d.ActiveOutputChannels()
	defer b.Drop()
	return b.CountSetBits()
}

// OwnedDevice is a device created by DeviceType.CreateDevice. Drop destroys
// it, unless it was handed to the foreign side by returning it from a Go
// AudioIODeviceType.
type OwnedDevice struct {
	Device
}

// Drop stops, closes and destroys the device.
func (d *OwnedDevice) Drop() {
	if d.owned == nil {
		return
	}
	C.juce_device_destroy(d.owned)
	d.owned = nil
}

func (d *OwnedDevice) release() *C.juce_AudioIODevice {
	p := d.owned
	d.owned = nil
	return p
}

// DeviceCallback is the foreign callback a Go device drives between
// DeviceStarter.Start and Stop.
type DeviceCallback struct {
	ref bridge.Pinned[callbackRef]
}

// NewDeviceCallback wraps cb so it can drive a device directly. Close the
// returned callback when it is no longer used.
func NewDeviceCallback(cb AudioIODeviceCallback) (*DeviceCallback, error) {
	tok, err := register("callback", newCallbackBox(cb))
	if err != nil {
		return nil, err
	}
	p := C.juce_device_callback_wrap(tok)
	return &DeviceCallback{ref: bridge.Pin((*callbackRef)(unsafe.Pointer(p)), nil)}, nil
}

func (cb *DeviceCallback) c() *C.juce_AudioIODeviceCallback {
	return cb.ref.Ptr().c()
}

// Process hands one block to the callback. in may be nil for output-only
// devices.
func (cb *DeviceCallback) Process(in, out *AudioSampleBuffer) {
	var ip *C.juce_AudioSampleBuffer
	if in != nil {
		ip = in.c()
	}
	C.juce_device_callback_process(cb.c(), ip, out.c())
}

// Close destroys a callback made by NewDeviceCallback. Stop any device
// driving it first.
func (cb *DeviceCallback) Close() {
	p := cb.c()
	cb.ref = bridge.Pinned[callbackRef]{}
	C.juce_device_callback_destroy(p)
}

// ChannelCount selects channels for one direction of a setup: the
// manager's default channels, or the first n channels.
type ChannelCount struct {
	n      int
	custom bool
}

// DefaultChannels lets the manager pick the channels it was initialised
// with.
func DefaultChannels() ChannelCount { return ChannelCount{} }

// Channels selects the first n channels.
func Channels(n int) ChannelCount { return ChannelCount{n: max(n, 0), custom: true} }

func (c ChannelCount) IsDefault() bool { return !c.custom }

// Count returns n for Channels(n) and -1 for the default.
func (c ChannelCount) Count() int {
	if !c.custom {
		return -1
	}
	return c.n
}

func (c ChannelCount) String() string {
	if !c.custom {
		return "default"
	}
	return strconv.Itoa(c.n)
}

// AudioDeviceSetup mirrors juce::AudioDeviceManager::AudioDeviceSetup field
// for field. Create one with NewAudioDeviceSetup or
// AudioDeviceManager.DeviceSetup and release it with Drop.
//
// An empty device name leaves that direction closed; a zero sample rate or
// buffer size lets the manager choose.
type AudioDeviceSetup struct {
	_                        noCopy
	OutputDeviceName         String
	InputDeviceName          String
	SampleRate               float64
	BufferSize               int32
	InputChannels            BigInteger
	UseDefaultInputChannels  bool
	OutputChannels           BigInteger
	UseDefaultOutputChannels bool
}

// NewAudioDeviceSetup returns an empty setup using default channels.
func NewAudioDeviceSetup() *AudioDeviceSetup {
	s := new(AudioDeviceSetup)
	C.juce_setup_construct(s.c())
	return s
}

func (s *AudioDeviceSetup) c() *C.juce_AudioDeviceSetup {
	return (*C.juce_AudioDeviceSetup)(unsafe.Pointer(s))
}

func channelCount(useDefault bool, mask *BigInteger) ChannelCount {
	if useDefault {
		return DefaultChannels()
	}
	return Channels(mask.CountSetBits())
}

func setChannelCount(c ChannelCount, useDefault *bool, mask *BigInteger) {
	*useDefault = c.IsDefault()
	mask.Clear()
	if !c.IsDefault() {
		mask.SetRange(0, c.n, true)
	}
}

func (s *AudioDeviceSetup) InputChannelCount() ChannelCount {
	return channelCount(s.UseDefaultInputChannels, &s.InputChannels)
}

func (s *AudioDeviceSetup) OutputChannelCount() ChannelCount {
	return channelCount(s.UseDefaultOutputChannels, &s.OutputChannels)
}

func (s *AudioDeviceSetup) SetInputChannelCount(c ChannelCount) {
	setChannelCount(c, &s.UseDefaultInputChannels, &s.InputChannels)
}

func (s *AudioDeviceSetup) SetOutputChannelCount(c ChannelCount) {
	setChannelCount(c, &s.UseDefaultOutputChannels, &s.OutputChannels)
}

// Clone copies the setup through the foreign copy constructor.
func (s *AudioDeviceSetup) Clone() *AudioDeviceSetup {
	out := new(AudioDeviceSetup)
	C.juce_setup_clone(out.c(), s.c())
	return out
}

// Drop releases the names and channel masks.
func (s *AudioDeviceSetup) Drop() {
	C.juce_setup_destroy(s.c())
}
