package juce

/*
#include "juce_native.h"
*/
import "C"

import (
	"iter"
	"unsafe"

	"github.com/wippyai/juce-runtime/errors"
)

// MidiMessage mirrors juce::MidiMessage. Messages up to eight bytes are
// stored inline; longer ones own a foreign allocation released by Drop.
type MidiMessage struct {
	_    noCopy
	_    [0]uint64
	data [24]byte
}

// NewMidiMessage copies raw into a new message.
func NewMidiMessage(raw []byte, timeStamp float64) *MidiMessage {
	m := new(MidiMessage)
	m.construct(raw, timeStamp)
	return m
}

// NoteOn builds a note-on message. channel is 1 based.
func NoteOn(channel, note int, velocity uint8) *MidiMessage {
	return NewMidiMessage([]byte{0x90 | byte(channel-1)&0x0f, byte(note) & 0x7f, velocity & 0x7f}, 0)
}

// NoteOff builds a note-off message. channel is 1 based.
func NoteOff(channel, note int, velocity uint8) *MidiMessage {
	return NewMidiMessage([]byte{0x80 | byte(channel-1)&0x0f, byte(note) & 0x7f, velocity & 0x7f}, 0)
}

func (m *MidiMessage) c() *C.juce_MidiMessage {
	return (*C.juce_MidiMessage)(unsafe.Pointer(m))
}

func (m *MidiMessage) construct(raw []byte, timeStamp float64) {
	var p *C.uint8_t
	if len(raw) > 0 {
		p = (*C.uint8_t)(unsafe.Pointer(&raw[0]))
	}
	C.juce_midi_message_construct(m.c(), p, C.int32_t(len(raw)), C.double(timeStamp))
}

// RawData borrows the message bytes. The slice is valid until the message
// is modified or dropped.
func (m *MidiMessage) RawData() []byte {
	n := int(C.juce_midi_message_size(m.c()))
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(C.juce_midi_message_data(m.c()))), n)
}

// Bytes copies the message bytes.
func (m *MidiMessage) Bytes() []byte {
	return append([]byte(nil), m.RawData()...)
}

func (m *MidiMessage) Len() int {
	return int(C.juce_midi_message_size(m.c()))
}

func (m *MidiMessage) TimeStamp() float64 {
	return float64(C.juce_midi_message_time_stamp(m.c()))
}

func (m *MidiMessage) SetTimeStamp(t float64) {
	C.juce_midi_message_set_time_stamp(m.c(), C.double(t))
}

// IsNoteOn reports a note-on with non-zero velocity.
func (m *MidiMessage) IsNoteOn() bool {
	raw := m.RawData()
	return len(raw) >= 3 && raw[0]&0xf0 == 0x90 && raw[2] != 0
}

// IsNoteOff reports a note-off, including note-on with zero velocity.
func (m *MidiMessage) IsNoteOff() bool {
	raw := m.RawData()
	if len(raw) < 3 {
		return false
	}
	return raw[0]&0xf0 == 0x80 || (raw[0]&0xf0 == 0x90 && raw[2] == 0)
}

// Channel returns the 1 based channel of a channel message, or 0.
func (m *MidiMessage) Channel() int {
	raw := m.RawData()
	if len(raw) == 0 || raw[0] < 0x80 || raw[0] >= 0xf0 {
		return 0
	}
	return int(raw[0]&0x0f) + 1
}

// NoteNumber returns the key of a note message.
func (m *MidiMessage) NoteNumber() int {
	raw := m.RawData()
	if len(raw) < 2 {
		return 0
	}
	return int(raw[1])
}

func (m *MidiMessage) Clone() *MidiMessage {
	out := new(MidiMessage)
	C.juce_midi_message_clone(out.c(), m.c())
	return out
}

func (m *MidiMessage) Drop() {
	C.juce_midi_message_destroy(m.c())
}

// MidiBuffer mirrors juce::MidiBuffer: events sorted by sample position.
// The zero value is empty.
type MidiBuffer struct {
	_    noCopy
	_    [0]uintptr
	data [16]byte
}

func (b *MidiBuffer) c() *C.juce_MidiBuffer {
	return (*C.juce_MidiBuffer)(unsafe.Pointer(b))
}

// AddEvent inserts raw at samplePosition after any events already at that
// position.
func (b *MidiBuffer) AddEvent(raw []byte, samplePosition int) error {
	if len(raw) == 0 {
		return errors.InvalidInput(errors.PhaseForeign, "empty MIDI event")
	}
	if !C.juce_midi_buffer_add_event(b.c(), (*C.uint8_t)(unsafe.Pointer(&raw[0])), C.int32_t(len(raw)), C.int32_t(samplePosition)) {
		return errors.InvalidInput(errors.PhaseForeign, "MIDI event too large")
	}
	return nil
}

// AddMessage copies m into the buffer.
func (b *MidiBuffer) AddMessage(m *MidiMessage, samplePosition int) error {
	return b.AddEvent(m.RawData(), samplePosition)
}

func (b *MidiBuffer) NumEvents() int {
	return int(C.juce_midi_buffer_num_events(b.c()))
}

func (b *MidiBuffer) IsEmpty() bool {
	return b.NumEvents() == 0
}

// Events yields sample position and borrowed bytes of each event in order.
// The buffer must not be modified while iterating.
func (b *MidiBuffer) Events() iter.Seq2[int, []byte] {
	return func(yield func(int, []byte) bool) {
		var (
			offset, size, pos C.int32_t
			data              *C.uint8_t
		)
		for C.juce_midi_buffer_next(b.c(), &offset, &data, &size, &pos) {
			if !yield(int(pos), unsafe.Slice((*byte)(unsafe.Pointer(data)), int(size))) {
				return
			}
		}
	}
}

func (b *MidiBuffer) Clear() {
	C.juce_midi_buffer_clear(b.c())
}

func (b *MidiBuffer) Drop() {
	C.juce_midi_buffer_destroy(b.c())
}
