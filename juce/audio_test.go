package juce

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAudioSampleBuffer(t *testing.T) {
	b := NewAudioSampleBuffer(2, 256)
	defer b.Free()

	require.Equal(t, 2, b.Channels())
	require.Equal(t, 256, b.Samples())
	assert.Nil(t, b.Channel(2))

	left := b.Channel(0)
	require.Len(t, left, 256)
	for i := range left {
		assert.Zero(t, left[i])
		left[i] = float32(i)
	}
	assert.Equal(t, float32(255), b.Channel(0)[255])

	b.Clear()
	assert.Zero(t, b.Channel(0)[255])

	b.SetSize(1, 32)
	assert.Equal(t, 1, b.Channels())
	assert.Len(t, b.Channel(0), 32)

	b.Free()
	assert.Panics(t, func() { b.Channels() })
	b.Free()
}

func dc(n int) []float32 {
	s := make([]float32, n)
	for i := range s {
		s[i] = 1
	}
	return s
}

func TestIIRFilter(t *testing.T) {
	t.Run("low pass keeps DC", func(t *testing.T) {
		var f SingleThreadedIIRFilter
		f.SetCoefficients(LowPass(44100, 1000, 1/math.Sqrt2))
		s := dc(4096)
		f.Process(s)
		assert.InDelta(t, 1.0, s[len(s)-1], 1e-3)
	})

	t.Run("high pass removes DC", func(t *testing.T) {
		var f SingleThreadedIIRFilter
		f.SetCoefficients(HighPass(44100, 1000, 1/math.Sqrt2))
		s := dc(4096)
		f.Process(s)
		assert.InDelta(t, 0.0, s[len(s)-1], 1e-3)
	})

	t.Run("inactive passes through", func(t *testing.T) {
		var f SingleThreadedIIRFilter
		s := []float32{0.5, -0.25, 1}
		f.Process(s)
		assert.Equal(t, []float32{0.5, -0.25, 1}, s)

		f.SetCoefficients(Notch(48000, 50, 10))
		f.MakeInactive()
		f.Process(s)
		assert.Equal(t, []float32{0.5, -0.25, 1}, s)
	})

	t.Run("coefficients are normalised", func(t *testing.T) {
		raw := LowPass(48000, 440, 0.7).Raw()
		var gain float32
		for _, b := range raw[:3] {
			gain += b
		}
		// b0+b1+b2 over 1+a1+a2 is the DC gain of a low pass.
		assert.InDelta(t, 1.0, gain/(1+raw[3]+raw[4]), 1e-4)
	})
}

func TestMidiMessage(t *testing.T) {
	m := NoteOn(10, 64, 100)
	defer m.Drop()

	assert.Equal(t, []byte{0x99, 64, 100}, m.Bytes())
	assert.True(t, m.IsNoteOn())
	assert.False(t, m.IsNoteOff())
	assert.Equal(t, 10, m.Channel())
	assert.Equal(t, 64, m.NoteNumber())

	m.SetTimeStamp(1.5)
	c := m.Clone()
	defer c.Drop()
	assert.Equal(t, 1.5, c.TimeStamp())
	assert.Equal(t, m.Bytes(), c.Bytes())

	silent := NewMidiMessage([]byte{0x90, 60, 0}, 0)
	defer silent.Drop()
	assert.True(t, silent.IsNoteOff())

	sysex := make([]byte, 64)
	sysex[0], sysex[63] = 0xf0, 0xf7
	big := NewMidiMessage(sysex, 0)
	defer big.Drop()
	assert.Equal(t, sysex, big.Bytes())
	assert.Zero(t, big.Channel())
}

func TestMidiBufferOrdering(t *testing.T) {
	var b MidiBuffer
	defer b.Drop()

	assert.True(t, b.IsEmpty())
	require.NoError(t, b.AddEvent([]byte{0x90, 60, 100}, 32))
	require.NoError(t, b.AddEvent([]byte{0x80, 60, 0}, 64))
	require.NoError(t, b.AddEvent([]byte{0x90, 62, 100}, 32))
	on := NoteOn(1, 48, 90)
	defer on.Drop()
	require.NoError(t, b.AddMessage(on, 0))
	require.Error(t, b.AddEvent(nil, 0))

	type event struct {
		pos  int
		note byte
	}
	var got []event
	for pos, raw := range b.Events() {
		got = append(got, event{pos, raw[1]})
	}
	assert.Equal(t, []event{{0, 48}, {32, 60}, {32, 62}, {64, 60}}, got)
	assert.Equal(t, 4, b.NumEvents())

	b.Clear()
	assert.True(t, b.IsEmpty())
}
