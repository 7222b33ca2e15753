package juce

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/juce-runtime/errors"
)

type midiRecorder struct {
	messages []*MidiMessage
	sources  []string
	drops    int
}

func (r *midiRecorder) HandleIncomingMidiMessage(source *MidiInput, message *MidiMessage) {
	r.sources = append(r.sources, source.Identifier())
	r.messages = append(r.messages, message.Clone())
}

func (r *midiRecorder) Drop() {
	r.drops++
	for _, m := range r.messages {
		m.Drop()
	}
}

func TestMidiDeviceInfo(t *testing.T) {
	info := NewMidiDeviceInfo("Keys", "keys-1")
	defer info.Drop()
	assert.Equal(t, "Keys", info.Name())
	assert.Equal(t, "keys-1", info.Identifier())

	c := info.Clone()
	defer c.Drop()
	assert.Equal(t, "keys-1", c.Identifier())
}

func TestVirtualMidiLoopback(t *testing.T) {
	out, err := CreateVirtualMidiOutput("Loopback")
	require.NoError(t, err)
	defer out.Close()
	id := out.Identifier()
	assert.Equal(t, "Loopback", out.Info().Name())

	var listed []string
	for info := range AvailableMidiDevices() {
		listed = append(listed, info.Identifier())
	}
	assert.True(t, slices.Contains(listed, id))

	rec := &midiRecorder{}
	in, err := OpenMidiInput(id, rec)
	require.NoError(t, err)

	note := NoteOn(1, 60, 100)
	defer note.Drop()
	out.Send(note)
	assert.Empty(t, rec.messages, "inputs receive nothing before Start")

	in.Start()
	out.Send(note)

	var buf MidiBuffer
	defer buf.Drop()
	require.NoError(t, buf.AddEvent([]byte{0x80, 60, 0}, 128))
	require.NoError(t, buf.AddEvent([]byte{0xb0, 7, 90}, 0))
	out.SendBuffer(&buf)

	require.Len(t, rec.messages, 3)
	assert.Equal(t, []byte{0x90, 60, 100}, rec.messages[0].Bytes())
	assert.True(t, rec.messages[0].IsNoteOn())
	assert.Equal(t, []byte{0xb0, 7, 90}, rec.messages[1].Bytes())
	assert.Equal(t, 0.0, rec.messages[1].TimeStamp())
	assert.True(t, rec.messages[2].IsNoteOff())
	assert.Equal(t, 128.0, rec.messages[2].TimeStamp())
	assert.Equal(t, []string{id, id, id}, rec.sources)

	in.Stop()
	out.Send(note)
	assert.Len(t, rec.messages, 3)

	in.Close()
	assert.Equal(t, 1, rec.drops)
	in.Close()
	assert.Equal(t, 1, rec.drops)
	assert.Panics(t, func() { in.Start() })
}

func TestOpenedMidiOutputSharesPort(t *testing.T) {
	port, err := CreateVirtualMidiOutputWithIdentifier("Shared", "shared-port")
	require.NoError(t, err)
	defer port.Close()

	sender, err := OpenMidiOutput("shared-port")
	require.NoError(t, err)
	defer sender.Close()

	rec := &midiRecorder{}
	in, err := OpenMidiInput("shared-port", rec)
	require.NoError(t, err)
	defer in.Close()
	in.Start()

	msg := NoteOff(2, 40, 0)
	defer msg.Drop()
	sender.Send(msg)
	require.Len(t, rec.messages, 1)
	assert.Equal(t, 2, rec.messages[0].Channel())
}

func TestDuplicateMidiIdentifier(t *testing.T) {
	first, err := CreateVirtualMidiOutputWithIdentifier("One", "dup-port")
	require.NoError(t, err)

	_, err = CreateVirtualMidiOutputWithIdentifier("Two", "dup-port")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrForeignFailure)

	first.Close()
	second, err := CreateVirtualMidiOutputWithIdentifier("Two", "dup-port")
	require.NoError(t, err, "closing a virtual port frees its identifier")
	second.Close()
}

func TestOpenMissingMidiPort(t *testing.T) {
	rec := &midiRecorder{}
	before := registry().Len()

	_, err := OpenMidiInput("no-such-port", rec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no-such-port")
	assert.Equal(t, 1, rec.drops, "callback is dropped when the port is missing")
	assert.Equal(t, before, registry().Len())

	_, err = OpenMidiOutput("no-such-port")
	assert.Error(t, err)
}
