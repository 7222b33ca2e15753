package juce

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/juce-runtime/errors"
)

type gainPlugin struct {
	gain     float32
	prepared float64
	released int
	drops    int
	notes    int
}

func (p *gainPlugin) Name() string { return "Gain" }

func (p *gainPlugin) PrepareToPlay(sampleRate float64, blockSize int) { p.prepared = sampleRate }
func (p *gainPlugin) ReleaseResources()                              { p.released++ }
func (p *gainPlugin) TailLengthSeconds() float64                     { return 0.25 }
func (p *gainPlugin) AcceptsMidi() bool                              { return true }
func (p *gainPlugin) ProducesMidi() bool                             { return false }

func (p *gainPlugin) ProcessBlock(buffer *AudioSampleBuffer, midi *MidiBuffer) {
	for range midi.Events() {
		p.notes++
	}
	for ch := range buffer.Channels() {
		s := buffer.Channel(ch)
		for i := range s {
			s[i] *= p.gain
		}
	}
}

func (p *gainPlugin) FillInPluginDescription(d *PluginDescription) {
	d.SetName(p.Name())
	d.SetPluginFormatName("Test")
	d.SetNumInputChannels(2)
	d.SetNumOutputChannels(2)
}

func (p *gainPlugin) Drop() { p.drops++ }

type programPlugin struct {
	gainPlugin
	current int
}

func (p *programPlugin) NumPrograms() int        { return 3 }
func (p *programPlugin) CurrentProgram() int     { return p.current }
func (p *programPlugin) SetCurrentProgram(i int) { p.current = i }
func (p *programPlugin) ProgramName(i int) string {
	return fmt.Sprintf("Preset %d", i+1)
}

type testFormat struct {
	instances []*gainPlugin
	drops     int
	createErr error
}

func (f *testFormat) Name() string { return "Test" }

func (f *testFormat) FindAllTypesForFile(results *OwnedPluginDescriptions, fileOrIdentifier string) {
	for i, name := range []string{"Gain", "Programs"} {
		d := NewPluginDescription()
		d.SetName(name)
		d.SetPluginFormatName(f.Name())
		d.SetFileOrIdentifier(fileOrIdentifier)
		d.SetUniqueID(int32(i + 1))
		results.Add(d)
	}
}

func (f *testFormat) CreateInstance(desc *PluginDescription, sampleRate float64, blockSize int) (AudioPlugin, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	switch desc.Name() {
	case "Gain":
		p := &gainPlugin{gain: 0.5}
		f.instances = append(f.instances, p)
		return p, nil
	case "Programs":
		p := &programPlugin{gainPlugin: gainPlugin{gain: 1}}
		f.instances = append(f.instances, &p.gainPlugin)
		return p, nil
	}
	return nil, nil
}

func (f *testFormat) FileMightContainThisPluginType(fileOrIdentifier string) bool {
	return strings.HasSuffix(fileOrIdentifier, ".test")
}

func (f *testFormat) CanScanForPlugins() bool { return true }

func (f *testFormat) SearchPathsForPlugins(paths *FileSearchPath, recursive bool) []string {
	var out []string
	for dir := range paths.Values() {
		out = append(out, filepath.Join(dir, "gain.test"))
	}
	return out
}

func (f *testFormat) DefaultLocationsToSearch(out *FileSearchPath) {
	out.AddPath("/usr/lib/test-plugins")
}

func (f *testFormat) Drop() { f.drops++ }

// bareFormat implements only the required methods.
type bareFormat struct{}

func (bareFormat) Name() string { return "Bare" }

func (bareFormat) FindAllTypesForFile(*OwnedPluginDescriptions, string) {}

func (bareFormat) CreateInstance(*PluginDescription, float64, int) (AudioPlugin, error) {
	return nil, nil
}

func newFormatManager(t *testing.T) (*PluginFormatManager, *testFormat) {
	t.Helper()
	m := NewPluginFormatManager()
	t.Cleanup(m.Drop)
	f := &testFormat{}
	require.NoError(t, m.AddFormat(f))
	require.NoError(t, m.AddFormat(bareFormat{}))
	return m, f
}

func TestPluginDescription(t *testing.T) {
	d := NewPluginDescription()
	defer d.Drop()

	d.SetName("Reverb")
	d.SetPluginFormatName("WASM")
	d.SetFileOrIdentifier("/plugins/reverb.wasm")
	d.SetUniqueID(0x1234)
	d.SetIsInstrument(true)
	d.SetLastFileModTime(TimeFromMillis(42))

	file := NewString("/plugins/reverb.wasm")
	defer file.Drop()
	want := fmt.Sprintf("WASM-Reverb-%x-%x", uint32(file.HashCode()), 0x1234)
	assert.Equal(t, want, d.IdentifierString())

	c := d.Clone()
	defer c.Drop()
	assert.Equal(t, d.IdentifierString(), c.IdentifierString())
	assert.True(t, c.IsInstrument())
	assert.Equal(t, int64(42), c.LastFileModTime().Millis())

	d.SetName("Delay")
	assert.Equal(t, "Reverb", c.Name())
}

func TestOwnedPluginDescriptions(t *testing.T) {
	o := NewOwnedPluginDescriptions()
	defer o.Drop()

	d := NewPluginDescription()
	defer d.Drop()
	d.SetName("First")
	o.Add(d)
	assert.Empty(t, d.Name(), "Add moves the description")
	d.SetName("Second")
	o.Add(d)

	require.Equal(t, 2, o.Len())
	var names []string
	for desc := range o.View().Values() {
		names = append(names, desc.Name())
	}
	assert.Equal(t, []string{"First", "Second"}, names)
	assert.Panics(t, func() { o.At(2) })
}

func TestPluginFormatManagerScan(t *testing.T) {
	m, _ := newFormatManager(t)

	require.Equal(t, 2, m.Len())
	var names []string
	for f := range m.Formats().Values() {
		names = append(names, f.Name())
	}
	assert.Equal(t, []string{"Test", "Bare"}, names)

	format := m.At(0)
	assert.True(t, format.CanScanForPlugins())
	assert.False(t, m.At(1).CanScanForPlugins())
	assert.False(t, m.At(1).FileMightContainThisPluginType("gain.test"))

	paths := NewFileSearchPath("/a", "/b")
	defer paths.Drop()
	assert.Equal(t, []string{"/a/gain.test", "/b/gain.test"}, format.SearchPathsForPlugins(paths, true))
	assert.Empty(t, m.At(1).SearchPathsForPlugins(paths, true))

	locations := format.DefaultLocationsToSearch()
	defer locations.Drop()
	assert.Equal(t, "/usr/lib/test-plugins", locations.String())

	results := NewOwnedPluginDescriptions()
	defer results.Drop()
	assert.Zero(t, m.FindAllTypesForFile(results, "gain.vst3"))
	assert.Equal(t, 2, m.FindAllTypesForFile(results, "/a/gain.test"))
	assert.Equal(t, "Programs", results.At(1).Name())
	assert.Equal(t, "/a/gain.test", results.At(1).FileOrIdentifier())
}

func TestPluginInstanceLifecycle(t *testing.T) {
	m, f := newFormatManager(t)

	desc := NewPluginDescription()
	defer desc.Drop()
	desc.SetName("Gain")
	desc.SetPluginFormatName("Test")

	inst, err := m.CreatePluginInstance(desc, 48000, 256)
	require.NoError(t, err)
	require.Len(t, f.instances, 1)
	impl := f.instances[0]

	assert.Equal(t, "Gain", inst.Name())
	inst.PrepareToPlay(48000, 256)
	assert.Equal(t, 48000.0, impl.prepared)
	assert.Equal(t, 0.25, inst.TailLengthSeconds())
	assert.True(t, inst.AcceptsMidi())
	assert.False(t, inst.ProducesMidi())

	assert.Equal(t, 1, inst.NumPrograms(), "plugins without programs have one")
	assert.Zero(t, inst.CurrentProgram())
	assert.Empty(t, inst.ProgramName(0))

	buf := NewAudioSampleBuffer(2, 64)
	defer buf.Free()
	for ch := range 2 {
		for i := range buf.Channel(ch) {
			buf.Channel(ch)[i] = 1
		}
	}
	var midi MidiBuffer
	defer midi.Drop()
	require.NoError(t, midi.AddEvent([]byte{0x90, 60, 100}, 0))
	inst.ProcessBlock(buf, &midi)
	assert.Equal(t, float32(0.5), buf.Channel(1)[63])
	assert.Equal(t, 1, impl.notes)

	inst.ProcessBlock(buf, nil)
	assert.Equal(t, float32(0.25), buf.Channel(0)[0])

	d := inst.Description()
	defer d.Drop()
	assert.Equal(t, "Gain", d.Name())
	assert.Equal(t, 2, d.NumOutputChannels())

	inst.ReleaseResources()
	assert.Equal(t, 1, impl.released)

	inst.Drop()
	assert.Equal(t, 1, impl.drops)
	inst.Drop()
	assert.Equal(t, 1, impl.drops)
	assert.Panics(t, func() { inst.Name() })
}

func TestPluginPrograms(t *testing.T) {
	m, _ := newFormatManager(t)

	desc := NewPluginDescription()
	defer desc.Drop()
	desc.SetName("Programs")
	desc.SetPluginFormatName("Test")

	inst, err := m.At(0).CreateInstance(desc, 44100, 512)
	require.NoError(t, err)
	defer inst.Drop()

	assert.Equal(t, 3, inst.NumPrograms())
	inst.SetCurrentProgram(2)
	assert.Equal(t, 2, inst.CurrentProgram())
	assert.Equal(t, "Preset 3", inst.ProgramName(2))
}

func TestPluginInstanceErrors(t *testing.T) {
	m, f := newFormatManager(t)

	desc := NewPluginDescription()
	defer desc.Drop()
	desc.SetName("Gain")
	desc.SetPluginFormatName("VST3")

	_, err := m.CreatePluginInstance(desc, 44100, 512)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrForeignFailure)
	assert.Contains(t, err.Error(), "No compatible plug-in format exists for this plug-in")

	desc.SetPluginFormatName("Test")
	f.createErr = errors.Foreign("load", "missing license")
	_, err = m.CreatePluginInstance(desc, 44100, 512)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing license")

	f.createErr = nil
	desc.SetName("Unknown")
	_, err = m.CreatePluginInstance(desc, 44100, 512)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plugin could not be created")
}

func TestPluginFormatManagerDropsFormats(t *testing.T) {
	m := NewPluginFormatManager()
	f := &testFormat{}
	require.NoError(t, m.AddFormat(f))

	before := registry().Len()
	m.Drop()
	assert.Equal(t, 1, f.drops)
	assert.Equal(t, before-1, registry().Len())
	assert.Zero(t, m.Len())
	m.Drop()
	assert.Equal(t, 1, f.drops)
}
