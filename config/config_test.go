package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/juce-runtime/errors"
	"github.com/wippyai/juce-runtime/juce"
)

const sample = `
logging:
  level: debug
  development: true
audio:
  device_type: Dummy
  output_device: Dummy Output
  sample_rate: 48000
  buffer_size: 256
  input_channels: 0
  output_channels: 2
midi:
  virtual_port: Sequencer
plugins:
  search_paths: [/opt/plugins, /home/me/plugins]
  recursive: true
  memory_limit_pages: 1024
`

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, uint32(256), cfg.Plugins.MemoryLimitPages)
	assert.Nil(t, cfg.Audio.OutputChannels)
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, "Dummy", cfg.Audio.DeviceType)
	assert.Equal(t, 48000.0, cfg.Audio.SampleRate)
	require.NotNil(t, cfg.Audio.InputChannels)
	assert.Zero(t, *cfg.Audio.InputChannels)
	assert.Equal(t, "Sequencer", cfg.MIDI.VirtualPort)
	assert.Equal(t, []string{"/opt/plugins", "/home/me/plugins"}, cfg.Plugins.SearchPaths)

	pf := cfg.PluginFormat()
	assert.Equal(t, uint32(1024), pf.MemoryLimitPages)
	assert.Equal(t, cfg.Plugins.SearchPaths, pf.DefaultLocations)
}

func TestParseKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte("audio:\n  buffer_size: 128\n"))
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "juce-runtime", cfg.MIDI.VirtualPort)
	assert.Equal(t, 128, cfg.Audio.BufferSize)

	cfg, err = Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		field string
	}{
		{"level", "logging:\n  level: loud\n", "level"},
		{"sample rate", "audio:\n  sample_rate: 100\n", "sample_rate"},
		{"buffer size", "audio:\n  buffer_size: 100000\n", "buffer_size"},
		{"channels", "audio:\n  output_channels: -1\n", "output_channels"},
		{"empty path", "plugins:\n  search_paths: ['']\n", "search_paths[0]"},
		{"memory", "plugins:\n  memory_limit_pages: 70000\n", "memory_limit_pages"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.InvalidInput(errors.PhaseConfig, ""))

			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			require.Len(t, verrs, 1)
			assert.Equal(t, tt.field, verrs[0].Field())
		})
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("audio:\n  samplerate: 44100\n"))
	require.Error(t, err)
	var e *errors.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errors.KindInvalidData, e.Kind)
	assert.Contains(t, err.Error(), "samplerate")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "juce.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 256, cfg.Audio.BufferSize)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, errors.NotFound(errors.PhaseConfig, "", ""))
}

func TestAudioSetup(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	s := cfg.AudioSetup()
	defer s.Drop()
	assert.Equal(t, "Dummy Output", s.OutputDeviceName.String())
	assert.Empty(t, s.InputDeviceName.String())
	assert.Equal(t, 48000.0, s.SampleRate)
	assert.Equal(t, int32(256), s.BufferSize)
	assert.Equal(t, juce.Channels(0), s.InputChannelCount())
	assert.Equal(t, juce.Channels(2), s.OutputChannelCount())

	d := Default().AudioSetup()
	defer d.Drop()
	assert.True(t, d.OutputChannelCount().IsDefault())
	assert.Zero(t, d.SampleRate)
}

func TestNewLogger(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "warn"
	l, err := cfg.NewLogger()
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
}

func TestSchema(t *testing.T) {
	data, err := Schema()
	require.NoError(t, err)

	var doc struct {
		Properties map[string]json.RawMessage `json:"properties"`
		Defs       map[string]struct {
			Properties map[string]json.RawMessage `json:"properties"`
		} `json:"$defs"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Contains(t, doc.Properties, "audio")
	assert.Contains(t, doc.Properties, "plugins")
	assert.Contains(t, doc.Defs["Audio"].Properties, "sample_rate")
	assert.Contains(t, doc.Defs["Plugins"].Properties, "memory_limit_pages")
}
