package juce

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/juce-runtime/bridge"
	"github.com/wippyai/juce-runtime/errors"
)

type mockDeviceType struct {
	scanned bool
	onScan  func()
	drops   int
	devices []*mockDevice
}

func (t *mockDeviceType) Name() string { return "Test" }

func (t *mockDeviceType) ScanForDevices() {
	t.scanned = true
	if t.onScan != nil {
		t.onScan()
	}
}

func (t *mockDeviceType) InputDeviceNames() []string {
	if !t.scanned {
		return nil
	}
	return []string{"Microphone", "Headset"}
}

func (t *mockDeviceType) OutputDeviceNames() []string {
	return []string{"Speakers"}
}

func (t *mockDeviceType) CreateDevice(outputName, inputName string) AudioIODevice {
	if outputName != "Speakers" {
		return nil
	}
	d := &mockDevice{name: outputName, input: inputName}
	t.devices = append(t.devices, d)
	return d
}

func (t *mockDeviceType) Drop() { t.drops++ }

type mockDevice struct {
	name, input  string
	rate         float64
	size         int
	inputs       int
	outputs      int
	opens        int
	closed       bool
	callback     *DeviceCallback
	starts       int
	stops        int
	drops        int
	failNextOpen string
}

func (d *mockDevice) Name() string                    { return d.name }
func (d *mockDevice) TypeName() string                { return "Test" }
func (d *mockDevice) CurrentSampleRate() float64      { return d.rate }
func (d *mockDevice) CurrentBufferSize() int          { return d.size }
func (d *mockDevice) AvailableSampleRates() []float64 { return []float64{44100, 48000} }
func (d *mockDevice) AvailableBufferSizes() []int     { return []int{256, 512, 1024} }
func (d *mockDevice) DefaultBufferSize() int          { return 512 }
func (d *mockDevice) InputChannels() int              { return 1 }
func (d *mockDevice) OutputChannels() int             { return 2 }

func (d *mockDevice) Open(inputs, outputs *BigInteger, sampleRate float64, bufferSize int) error {
	if d.failNextOpen != "" {
		msg := d.failNextOpen
		d.failNextOpen = ""
		return fmt.Errorf("%s", msg)
	}
	d.inputs, d.outputs = inputs.CountSetBits(), outputs.CountSetBits()
	d.rate, d.size = sampleRate, bufferSize
	d.opens++
	d.closed = false
	return nil
}

func (d *mockDevice) Close() { d.closed = true }

func (d *mockDevice) Start(cb *DeviceCallback) {
	d.callback = cb
	d.starts++
}

func (d *mockDevice) Stop() {
	d.callback = nil
	d.stops++
}

func (d *mockDevice) Drop() { d.drops++ }

// render drives one block through the running callback.
func (d *mockDevice) render(t *testing.T, samples int) *AudioSampleBuffer {
	t.Helper()
	require.NotNil(t, d.callback, "device is not running")
	out := NewAudioSampleBuffer(d.OutputChannels(), samples)
	t.Cleanup(out.Free)
	d.callback.Process(nil, out)
	return out
}

type recordingCallback struct {
	started     []string
	startRate   float64
	blocks      atomic.Int32
	stopped     int
	drops       int
	value       float32
	errors      []string
	lastSamples int
}

func (c *recordingCallback) AboutToStart(device *Device) {
	c.started = append(c.started, device.Name())
	c.startRate = device.CurrentSampleRate()
}

func (c *recordingCallback) ProcessBlock(in InputBuffer, out OutputBuffer) {
	c.blocks.Add(1)
	c.lastSamples = out.Samples()
	for ch := range out.Channels() {
		s := out.Channel(ch)
		for i := range s {
			s[i] = c.value
		}
	}
}

func (c *recordingCallback) Stopped() { c.stopped++ }

func (c *recordingCallback) DeviceError(message string) {
	c.errors = append(c.errors, message)
}

func (c *recordingCallback) Drop() { c.drops++ }

func newTestManager(t *testing.T) (*AudioDeviceManager, *mockDeviceType) {
	t.Helper()
	startRuntime(t)
	m, err := NewAudioDeviceManager()
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, m.Close()) })

	typ := &mockDeviceType{}
	require.NoError(t, m.AddDeviceType(typ))
	return m, typ
}

func TestDeviceManagerInitialise(t *testing.T) {
	m, typ := newTestManager(t)

	types := m.AvailableDeviceTypes()
	require.Equal(t, 1, types.Len())
	tt, _ := types.Get(0)
	assert.Equal(t, "Test", tt.Name())
	assert.Empty(t, tt.InputDeviceNames(), "inputs appear after a scan")

	require.NoError(t, m.Initialise(1, 2))
	assert.True(t, typ.scanned)
	assert.Equal(t, []string{"Microphone", "Headset"}, tt.InputDeviceNames())
	assert.Equal(t, []string{"Speakers"}, tt.OutputDeviceNames())

	require.Len(t, typ.devices, 1)
	dev := typ.devices[0]
	assert.Equal(t, "Microphone", dev.input)
	assert.Equal(t, 44100.0, dev.rate)
	assert.Equal(t, 512, dev.size)
	assert.Equal(t, 1, dev.inputs)
	assert.Equal(t, 2, dev.outputs)
	assert.Equal(t, 1, dev.starts)

	cur, ok := m.CurrentDevice()
	require.True(t, ok)
	assert.Equal(t, "Speakers", cur.Name())
	assert.Equal(t, "Test", cur.TypeName())
	assert.True(t, cur.IsPlaying())

	ct, ok := m.CurrentDeviceType()
	require.True(t, ok)
	assert.Equal(t, "Test", ct.Name())
}

func TestDeviceManagerSetupRoundTrip(t *testing.T) {
	m, typ := newTestManager(t)
	require.NoError(t, m.Initialise(0, 2))

	setup := m.DeviceSetup()
	defer setup.Drop()
	assert.Equal(t, "Speakers", setup.OutputDeviceName.String())
	assert.Equal(t, 44100.0, setup.SampleRate)

	setup.SampleRate = 48000
	setup.BufferSize = 512
	setup.SetOutputChannelCount(Channels(1))
	require.NoError(t, m.SetDeviceSetup(setup))

	got := m.DeviceSetup()
	defer got.Drop()
	assert.Equal(t, 48000.0, got.SampleRate)
	assert.Equal(t, int32(512), got.BufferSize)
	assert.Equal(t, "Speakers", got.OutputDeviceName.String())
	assert.Equal(t, Channels(1), got.OutputChannelCount())
	assert.Equal(t, DefaultChannels(), got.InputChannelCount())

	require.Len(t, typ.devices, 1, "same names reuse the open device")
	dev := typ.devices[0]
	assert.Equal(t, 2, dev.opens)
	assert.Equal(t, 1, dev.stops)
	assert.Equal(t, 2, dev.starts)
	assert.Equal(t, 1, dev.outputs)
}

func TestDeviceManagerSetupErrors(t *testing.T) {
	m, typ := newTestManager(t)
	require.NoError(t, m.Initialise(0, 2))

	setup := NewAudioDeviceSetup()
	defer setup.Drop()
	setup.OutputDeviceName.Set("Headphones")
	err := m.SetDeviceSetup(setup)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrForeignFailure)
	assert.Contains(t, err.Error(), "No such device: Headphones")

	_, ok := m.CurrentDevice()
	assert.False(t, ok)
	assert.Equal(t, 1, typ.devices[0].drops, "closed device is dropped once")

	setup.OutputDeviceName.Set("Speakers")
	require.NoError(t, m.SetDeviceSetup(setup))
	require.Len(t, typ.devices, 2)

	typ.devices[1].failNextOpen = "device is busy"
	setup.SampleRate = 48000
	err = m.SetDeviceSetup(setup)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "device is busy")
	assert.Equal(t, 1, typ.devices[1].drops)
}

func TestDeviceManagerStaleDeviceReference(t *testing.T) {
	m, _ := newTestManager(t)
	require.NoError(t, m.Initialise(0, 2))

	cur, ok := m.CurrentDevice()
	require.True(t, ok)
	m.CloseAudioDevice()

	assert.Panics(t, func() { cur.Name() }, "device references end when the device closes")
}

func TestAudioCallbackRegistration(t *testing.T) {
	m, typ := newTestManager(t)
	require.NoError(t, m.Initialise(0, 2))
	dev := typ.devices[0]

	first := &recordingCallback{value: 0.25}
	second := &recordingCallback{value: 0.5}
	h1, err := m.AddAudioCallback(first)
	require.NoError(t, err)
	_, err = m.AddAudioCallback(second)
	require.NoError(t, err)

	assert.Equal(t, []string{"Speakers"}, first.started, "running device starts a new callback")
	assert.Equal(t, 44100.0, first.startRate)

	out := dev.render(t, 64)
	assert.Equal(t, int32(1), first.blocks.Load())
	assert.Equal(t, int32(1), second.blocks.Load())
	assert.Equal(t, 64, first.lastSamples)
	assert.InDelta(t, 0.75, out.Channel(1)[63], 1e-6, "callback outputs are mixed")

	require.NoError(t, h1.Remove())
	assert.Equal(t, 1, first.stopped)
	assert.Equal(t, 1, first.drops)
	assert.Zero(t, second.drops)
	assert.ErrorIs(t, h1.Remove(), errors.ErrReleased)
	assert.Equal(t, 1, first.drops, "removed callback is not dropped again")

	out = dev.render(t, 16)
	assert.Equal(t, int32(1), first.blocks.Load())
	assert.InDelta(t, 0.5, out.Channel(0)[0], 1e-6)

	require.NoError(t, m.Close())
	assert.Equal(t, 1, second.drops, "Close drops callbacks still registered")
	assert.Equal(t, 1, typ.drops)
	assert.Equal(t, 1, dev.drops)
	require.NoError(t, m.Close())
	assert.Equal(t, 1, typ.drops)
}

func TestDeviceManagerSilenceWithoutCallbacks(t *testing.T) {
	m, typ := newTestManager(t)
	require.NoError(t, m.Initialise(0, 2))

	out := NewAudioSampleBuffer(2, 32)
	defer out.Free()
	out.Channel(0)[5] = 1
	typ.devices[0].callback.Process(nil, out)
	assert.Zero(t, out.Channel(0)[5])

	m.PlayTestSound()
	out = typ.devices[0].render(t, 4410)
	var peak float32
	for _, v := range out.Channel(0) {
		peak = max(peak, v)
	}
	assert.Greater(t, peak, float32(0), "test tone is mixed in")
}

func TestReentrantCallIsRefused(t *testing.T) {
	m, typ := newTestManager(t)

	var refused []error
	registry().SetViolationHandler(func(_ bridge.Token, err error) {
		refused = append(refused, err)
	})
	t.Cleanup(func() { registry().SetViolationHandler(nil) })

	var nameDuringScan string
	typ.onScan = func() {
		tt, _ := m.AvailableDeviceTypes().Get(0)
		nameDuringScan = tt.Name()
	}
	require.NoError(t, m.Initialise(0, 2))

	require.Len(t, refused, 1)
	assert.ErrorIs(t, refused[0], errors.ErrReentrantBorrow)
	assert.Empty(t, nameDuringScan)

	typ.onScan = nil
	tt, _ := m.AvailableDeviceTypes().Get(0)
	assert.Equal(t, "Test", tt.Name(), "the type works again once the outer call returns")
}

func TestDeviceTypeReferencesEndWithManager(t *testing.T) {
	startRuntime(t)
	m, err := NewAudioDeviceManager()
	require.NoError(t, err)
	m.AddDefaultDeviceTypes()

	tt, ok := m.AvailableDeviceTypes().Get(0)
	require.True(t, ok)
	assert.Equal(t, "Dummy Audio", tt.Name())

	require.NoError(t, m.Close())
	assert.Panics(t, func() { tt.Name() })

	err = m.AddDeviceType(&mockDeviceType{})
	assert.Error(t, err)
}

func TestDummyDeviceDeliversBlocks(t *testing.T) {
	startRuntime(t)
	m, err := NewAudioDeviceManager()
	require.NoError(t, err)
	defer func() { require.NoError(t, m.Close()) }()

	require.NoError(t, m.Initialise(0, 2), "no types falls back to the dummy type")

	setup := m.DeviceSetup()
	defer setup.Drop()
	assert.Equal(t, "Dummy Output", setup.OutputDeviceName.String())
	assert.Equal(t, 44100.0, setup.SampleRate)

	cb := &recordingCallback{}
	h, err := m.AddAudioCallback(cb)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return cb.blocks.Load() >= 3 }, 5*time.Second, 5*time.Millisecond)

	require.NoError(t, h.Remove())
	assert.Equal(t, 1, cb.stopped)
	assert.Equal(t, 1, cb.drops)
	n := cb.blocks.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, n, cb.blocks.Load(), "removed callback gets no more blocks")
}

func TestSetCurrentDeviceType(t *testing.T) {
	m, typ := newTestManager(t)
	m.AddDefaultDeviceTypes()
	require.NoError(t, m.Initialise(0, 2))
	require.Len(t, typ.devices, 1)

	err := m.SetCurrentDeviceType("No Such Type")
	assert.ErrorIs(t, err, errors.NotFound(errors.PhaseForeign, "audio device type", ""))
	ct, _ := m.CurrentDeviceType()
	assert.Equal(t, "Test", ct.Name())
	assert.Zero(t, typ.devices[0].drops, "an unknown type keeps the open device")

	require.NoError(t, m.SetCurrentDeviceType("Dummy Audio"))
	ct, _ = m.CurrentDeviceType()
	assert.Equal(t, "Dummy Audio", ct.Name())
	assert.Equal(t, 1, typ.devices[0].drops)
	_, ok := m.CurrentDevice()
	assert.False(t, ok, "switching type starts with no device chosen")
}

func TestDeviceCallbackDirect(t *testing.T) {
	cb := &recordingCallback{value: 1}
	dc, err := NewDeviceCallback(cb)
	require.NoError(t, err)

	out := NewAudioSampleBuffer(1, 8)
	defer out.Free()
	dc.Process(nil, out)
	assert.Equal(t, float32(1), out.Channel(0)[7])

	dc.Close()
	assert.Equal(t, 1, cb.drops)
	assert.Panics(t, func() { dc.Process(nil, out) })
}

func TestDeviceCallbackProcessDoesNotAllocate(t *testing.T) {
	if raceEnabled {
		t.Skip("race detector instrumentation allocates")
	}
	cb := &recordingCallback{value: 0.5}
	dc, err := NewDeviceCallback(cb)
	require.NoError(t, err)
	defer dc.Close()

	out := NewAudioSampleBuffer(2, 64)
	defer out.Free()
	allocs := testing.AllocsPerRun(100, func() {
		dc.Process(nil, out)
	})
	assert.Zero(t, allocs, "Process allocated on the audio path")
	assert.Equal(t, int32(101), cb.blocks.Load())
	assert.Equal(t, float32(0.5), out.Channel(1)[63])
}
