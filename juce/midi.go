package juce

/*
#include "juce_native.h"
*/
import "C"

import (
	"iter"
	"unsafe"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wippyai/juce-runtime/bridge"
	"github.com/wippyai/juce-runtime/errors"
)

// MidiDeviceInfo mirrors juce::MidiDeviceInfo field for field.
type MidiDeviceInfo struct {
	_          noCopy
	name       String
	identifier String
}

// NewMidiDeviceInfo constructs an info record. Drop releases it.
func NewMidiDeviceInfo(name, identifier string) *MidiDeviceInfo {
	info := new(MidiDeviceInfo)
	np, nn := cText(name)
	ip, in := cText(identifier)
	C.juce_midi_device_info_construct(info.c(), np, nn, ip, in)
	return info
}

func (i *MidiDeviceInfo) c() *C.juce_MidiDeviceInfo {
	return (*C.juce_MidiDeviceInfo)(unsafe.Pointer(i))
}

func (i *MidiDeviceInfo) Name() string       { return i.name.String() }
func (i *MidiDeviceInfo) Identifier() string { return i.identifier.String() }

func (i *MidiDeviceInfo) Clone() *MidiDeviceInfo {
	out := new(MidiDeviceInfo)
	C.juce_midi_device_info_clone(out.c(), i.c())
	return out
}

func (i *MidiDeviceInfo) Drop() {
	C.juce_midi_device_info_destroy(i.c())
}

// AvailableMidiDevices yields the MIDI ports that inputs and outputs can
// open. Each info is only valid during its iteration step; Clone keeps it.
func AvailableMidiDevices() iter.Seq[*MidiDeviceInfo] {
	return func(yield func(*MidiDeviceInfo) bool) {
		var arr C.juce_Array
		C.juce_array_construct(&arr)
		defer C.juce_midi_device_info_array_destroy(&arr)
		C.juce_midi_available_devices(&arr)

		n := int(C.juce_array_size(&arr))
		if n == 0 {
			return
		}
		infos := unsafe.Slice((*MidiDeviceInfo)(C.juce_array_data(&arr)), n)
		for i := range infos {
			if !yield(&infos[i]) {
				return
			}
		}
	}
}

// DefaultMidiDevice returns the first port, or an empty info when there is
// none. The caller drops it.
func DefaultMidiDevice() *MidiDeviceInfo {
	out := new(MidiDeviceInfo)
	C.juce_midi_default_device(out.c())
	return out
}

// MidiInputCallback receives the messages of an open MidiInput. It runs on
// the sending thread. The message is lent for the call; Clone keeps it.
type MidiInputCallback interface {
	HandleIncomingMidiMessage(source *MidiInput, message *MidiMessage)
}

type midiInputBox struct {
	impl  MidiInputCallback
	input *MidiInput
}

func (b *midiInputBox) Drop() { dropImpl(b.impl) }

// MidiInput is an open MIDI input. It owns its callback.
type MidiInput struct {
	ptr *C.juce_MidiInput
}

// OpenMidiInput opens the port called identifier. The callback is dropped
// when the input is closed, or right away when the port does not exist.
func OpenMidiInput(identifier string, callback MidiInputCallback) (*MidiInput, error) {
	box := &midiInputBox{impl: callback}
	tok, err := register("MIDI input callback", box)
	if err != nil {
		return nil, err
	}
	p, n := cText(identifier)
	ptr := C.juce_midi_input_open(p, n, C.juce_midi_input_callback_wrap(tok))
	if ptr == nil {
		return nil, errors.NotFound(errors.PhaseForeign, "MIDI input", identifier)
	}
	in := &MidiInput{ptr: ptr}
	box.input = in
	return in, nil
}

func (in *MidiInput) c() *C.juce_MidiInput {
	if in.ptr == nil {
		panic(errors.Closed(errors.PhaseForeign, "MidiInput"))
	}
	return in.ptr
}

// Start begins delivering messages.
func (in *MidiInput) Start() { C.juce_midi_input_start(in.c()) }

func (in *MidiInput) Stop() { C.juce_midi_input_stop(in.c()) }

// Info describes the port. It is valid until Close.
func (in *MidiInput) Info() *MidiDeviceInfo {
	return (*MidiDeviceInfo)(unsafe.Pointer(C.juce_midi_input_info(in.c())))
}

func (in *MidiInput) Identifier() string { return in.Info().Identifier() }

// Close stops the input and drops its callback.
func (in *MidiInput) Close() {
	if in.ptr == nil {
		return
	}
	C.juce_midi_input_free(in.ptr)
	in.ptr = nil
}

// MidiOutput sends to a MIDI port. Every started input on the same port
// receives what it sends.
type MidiOutput struct {
	ptr *C.juce_MidiOutput
}

// CreateVirtualMidiOutput publishes a new port called name under a fresh
// identifier.
func CreateVirtualMidiOutput(name string) (*MidiOutput, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, errors.Wrap(errors.PhaseForeign, errors.KindForeignFailure, err, "create MIDI port identifier")
	}
	return CreateVirtualMidiOutputWithIdentifier(name, id.String())
}

// CreateVirtualMidiOutputWithIdentifier publishes a port under identifier.
// It fails when the identifier is taken.
func CreateVirtualMidiOutputWithIdentifier(name, identifier string) (*MidiOutput, error) {
	np, nn := cText(name)
	ip, in := cText(identifier)
	ptr := C.juce_midi_output_create_virtual(np, nn, ip, in)
	if ptr == nil {
		return nil, errors.Foreign("create virtual MIDI output", "identifier "+identifier+" is already in use")
	}
	Logger().Debug("virtual MIDI port created", zap.String("name", name), zap.String("identifier", identifier))
	return &MidiOutput{ptr: ptr}, nil
}

// OpenMidiOutput opens an existing port for sending.
func OpenMidiOutput(identifier string) (*MidiOutput, error) {
	p, n := cText(identifier)
	ptr := C.juce_midi_output_open(p, n)
	if ptr == nil {
		return nil, errors.NotFound(errors.PhaseForeign, "MIDI output", identifier)
	}
	return &MidiOutput{ptr: ptr}, nil
}

func (o *MidiOutput) c() *C.juce_MidiOutput {
	if o.ptr == nil {
		panic(errors.Closed(errors.PhaseForeign, "MidiOutput"))
	}
	return o.ptr
}

// Info describes the port. It is valid until Close.
func (o *MidiOutput) Info() *MidiDeviceInfo {
	return (*MidiDeviceInfo)(unsafe.Pointer(C.juce_midi_output_info(o.c())))
}

func (o *MidiOutput) Identifier() string { return o.Info().Identifier() }

// Send delivers m to the started inputs of the port before returning.
func (o *MidiOutput) Send(m *MidiMessage) {
	C.juce_midi_output_send(o.c(), m.c())
}

// SendBuffer sends every event of b in order. The sample position becomes
// the message time stamp.
func (o *MidiOutput) SendBuffer(b *MidiBuffer) {
	C.juce_midi_output_send_buffer(o.c(), b.c())
}

// Close releases the output. A virtual output also removes its port.
func (o *MidiOutput) Close() {
	if o.ptr == nil {
		return
	}
	C.juce_midi_output_free(o.ptr)
	o.ptr = nil
}

//export juceGoMidiMessage
func juceGoMidiMessage(h C.uintptr_t, _ *C.juce_MidiInput, message *C.juce_MidiMessage) {
	bridge.Invoke(registry(), bridge.Token(h), func(b *midiInputBox) {
		b.impl.HandleIncomingMidiMessage(b.input, (*MidiMessage)(unsafe.Pointer(message)))
	})
}

//export juceGoMidiInputDrop
func juceGoMidiInputDrop(h C.uintptr_t) {
	bridge.Release(registry(), bridge.Token(h))
}
