package juce

/*
#include "juce_native.h"
*/
import "C"

import (
	"unsafe"

	"go.uber.org/zap"

	"github.com/wippyai/juce-runtime/bridge"
	"github.com/wippyai/juce-runtime/collection"
	"github.com/wippyai/juce-runtime/errors"
)

// AudioDeviceManager owns the device types, the open device and the
// callbacks that receive its audio. It lives on the message thread: every
// method must be called on the thread that initialised the runtime, and
// calls from elsewhere return or panic with errors.ErrWrongThread.
type AudioDeviceManager struct {
	ptr        *C.juce_AudioDeviceManager
	life       *bridge.Lifetime
	deviceLife *bridge.Lifetime
	callbacks  map[*AudioCallbackHandle]struct{}
}

// NewAudioDeviceManager creates a manager with no device types. The runtime
// must stay initialised until Close.
func NewAudioDeviceManager() (*AudioDeviceManager, error) {
	if err := requireMessageThread("NewAudioDeviceManager"); err != nil {
		return nil, err
	}
	return &AudioDeviceManager{
		ptr:        C.juce_device_manager_new(),
		life:       bridge.NewLifetime("AudioDeviceManager"),
		deviceLife: bridge.NewLifetime("AudioDeviceManager device"),
		callbacks:  make(map[*AudioCallbackHandle]struct{}),
	}, nil
}

func (m *AudioDeviceManager) check(op string) error {
	if m.ptr == nil {
		return errors.Closed(errors.PhaseForeign, "AudioDeviceManager")
	}
	return requireMessageThread(op)
}

func (m *AudioDeviceManager) must(op string) {
	if err := m.check(op); err != nil {
		panic(err)
	}
}

// deviceMayChange invalidates Device references handed out so far.
func (m *AudioDeviceManager) deviceMayChange() {
	m.deviceLife.End()
	m.deviceLife = bridge.NewLifetime("AudioDeviceManager device")
}

// Initialise adds the default device types when none were added, then
// opens the default devices of the first type with numInputs and numOutputs
// default channels.
func (m *AudioDeviceManager) Initialise(numInputs, numOutputs int) error {
	return m.initialise(numInputs, numOutputs, nil)
}

// InitialiseWithSetup is Initialise preferring the devices, rate and buffer
// size in preferred.
func (m *AudioDeviceManager) InitialiseWithSetup(numInputs, numOutputs int, preferred *AudioDeviceSetup) error {
	return m.initialise(numInputs, numOutputs, preferred)
}

func (m *AudioDeviceManager) initialise(numInputs, numOutputs int, preferred *AudioDeviceSetup) error {
	if err := m.check("AudioDeviceManager.Initialise"); err != nil {
		return err
	}
	m.deviceMayChange()

	var pref *C.juce_AudioDeviceSetup
	if preferred != nil {
		pref = preferred.c()
	}
	var msg String
	defer msg.Drop()
	if !C.juce_device_manager_initialise(m.ptr, C.int32_t(numInputs), C.int32_t(numOutputs), pref, msg.c()) {
		return errors.Foreign("initialise", msg.String())
	}
	Logger().Debug("audio device manager initialised",
		zap.Int("inputs", numInputs), zap.Int("outputs", numOutputs))
	return nil
}

// DeviceSetup returns a copy of the current setup. The caller drops it.
func (m *AudioDeviceManager) DeviceSetup() *AudioDeviceSetup {
	m.must("AudioDeviceManager.DeviceSetup")
	out := new(AudioDeviceSetup)
	C.juce_device_manager_setup(m.ptr, out.c())
	return out
}

// SetDeviceSetup reopens the device to match setup. On failure the device
// is closed and the foreign diagnostic is returned.
func (m *AudioDeviceManager) SetDeviceSetup(setup *AudioDeviceSetup) error {
	if err := m.check("AudioDeviceManager.SetDeviceSetup"); err != nil {
		return err
	}
	m.deviceMayChange()
	var msg String
	defer msg.Drop()
	if !C.juce_device_manager_set_setup(m.ptr, setup.c(), true, msg.c()) {
		return errors.Foreign("set audio device setup", msg.String())
	}
	return nil
}

type deviceTypes struct {
	m *AudioDeviceManager
}

func (s deviceTypes) Len() int {
	return int(C.juce_device_manager_num_device_types(s.m.ptr))
}

func (s deviceTypes) At(i int) *DeviceType {
	return s.m.pinType(C.juce_device_manager_device_type(s.m.ptr, C.int32_t(i)))
}

func (m *AudioDeviceManager) pinType(p *C.juce_AudioIODeviceType) *DeviceType {
	return &DeviceType{ref: bridge.Pin((*typeRef)(unsafe.Pointer(p)), m.life)}
}

// AvailableDeviceTypes lists the device types in the order they were
// added. The types are valid until Close.
func (m *AudioDeviceManager) AvailableDeviceTypes() collection.View[*DeviceType] {
	m.must("AudioDeviceManager.AvailableDeviceTypes")
	return collection.Over[*DeviceType](deviceTypes{m: m})
}

// CurrentDeviceType returns the selected type, if any.
func (m *AudioDeviceManager) CurrentDeviceType() (*DeviceType, bool) {
	m.must("AudioDeviceManager.CurrentDeviceType")
	p := C.juce_device_manager_current_device_type(m.ptr)
	if p == nil {
		return nil, false
	}
	return m.pinType(p), true
}

// SetCurrentDeviceType selects the type called name, closes the device and
// rescans. Selecting the current type leaves the manager unchanged; an
// unknown name is a NotFound error.
func (m *AudioDeviceManager) SetCurrentDeviceType(name string) error {
	if err := m.check("AudioDeviceManager.SetCurrentDeviceType"); err != nil {
		return err
	}
	known := false
	for dt := range m.AvailableDeviceTypes().Values() {
		if dt.Name() == name {
			known = true
			break
		}
	}
	if !known {
		return errors.NotFound(errors.PhaseForeign, "audio device type", name)
	}
	m.deviceMayChange()
	p, n := cText(name)
	C.juce_device_manager_set_current_device_type(m.ptr, p, n, true)
	return nil
}

// CurrentDevice returns the open device. The reference is valid until the
// manager changes or closes the device.
func (m *AudioDeviceManager) CurrentDevice() (*Device, bool) {
	m.must("AudioDeviceManager.CurrentDevice")
	p := C.juce_device_manager_current_device(m.ptr)
	if p == nil {
		return nil, false
	}
	return &Device{pinned: bridge.Pin((*deviceRef)(unsafe.Pointer(p)), m.deviceLife)}, true
}

// AddDeviceType hands t to the manager, which drops it on Close.
func (m *AudioDeviceManager) AddDeviceType(t AudioIODeviceType) error {
	if err := m.check("AudioDeviceManager.AddDeviceType"); err != nil {
		return err
	}
	tok, err := register("device type", &deviceTypeBox{impl: t})
	if err != nil {
		return err
	}
	C.juce_device_manager_add_device_type(m.ptr, C.juce_device_type_wrap(tok))
	return nil
}

// AddDefaultDeviceTypes adds the built-in "Dummy Audio" type, whose device
// runs an audio thread that paces blocks in real time.
func (m *AudioDeviceManager) AddDefaultDeviceTypes() {
	m.must("AudioDeviceManager.AddDefaultDeviceTypes")
	C.juce_device_manager_add_default_device_types(m.ptr)
}

// AddAudioCallback starts delivering audio to cb. When a device is running
// cb.AboutToStart is called first. The returned handle removes cb again.
func (m *AudioDeviceManager) AddAudioCallback(cb AudioIODeviceCallback) (*AudioCallbackHandle, error) {
	if err := m.check("AudioDeviceManager.AddAudioCallback"); err != nil {
		return nil, err
	}
	tok, err := register("audio callback", newCallbackBox(cb))
	if err != nil {
		return nil, err
	}
	h := &AudioCallbackHandle{m: m, ptr: C.juce_device_callback_wrap(tok)}
	C.juce_device_manager_add_callback(m.ptr, h.ptr)
	m.callbacks[h] = struct{}{}
	return h, nil
}

// RemoveAudioCallback is h.Remove.
func (m *AudioDeviceManager) RemoveAudioCallback(h *AudioCallbackHandle) error {
	return h.Remove()
}

// PlayTestSound mixes a one second 440 Hz tone into the output.
func (m *AudioDeviceManager) PlayTestSound() {
	m.must("AudioDeviceManager.PlayTestSound")
	C.juce_device_manager_play_test_sound(m.ptr)
}

// CloseAudioDevice stops and destroys the open device. Callbacks stay
// registered.
func (m *AudioDeviceManager) CloseAudioDevice() {
	m.must("AudioDeviceManager.CloseAudioDevice")
	m.deviceMayChange()
	C.juce_device_manager_close_device(m.ptr)
}

// Close removes every callback still registered, closes the device and
// drops the device types.
func (m *AudioDeviceManager) Close() error {
	if m.ptr == nil {
		return nil
	}
	if err := requireMessageThread("AudioDeviceManager.Close"); err != nil {
		return err
	}
	for h := range m.callbacks {
		if err := h.Remove(); err != nil {
			Logger().Warn("remove audio callback", zap.Error(err))
		}
	}
	m.deviceLife.End()
	m.life.End()
	C.juce_device_manager_free(m.ptr)
	m.ptr = nil
	return nil
}

// AudioCallbackHandle is the registration of one callback with a manager.
type AudioCallbackHandle struct {
	m   *AudioDeviceManager
	ptr *C.juce_AudioIODeviceCallback
}

// Remove stops delivering audio to the callback and drops it. A running
// callback gets Stopped first.
func (h *AudioCallbackHandle) Remove() error {
	if h.ptr == nil {
		return errors.Released("audio callback")
	}
	if err := h.m.check("AudioCallbackHandle.Remove"); err != nil {
		return err
	}
	C.juce_device_manager_remove_callback(h.m.ptr, h.ptr)
	C.juce_device_callback_destroy(h.ptr)
	h.ptr = nil
	delete(h.m.callbacks, h)
	return nil
}
