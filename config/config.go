// Package config loads the YAML configuration shared by the juce command
// and embedding hosts.
package config

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/juce-runtime/errors"
	"github.com/wippyai/juce-runtime/juce"
	"github.com/wippyai/juce-runtime/wasmplugin"
)

// Config is the root of a configuration file.
type Config struct {
	Logging Logging `yaml:"logging" json:"logging,omitempty"`
	Audio   Audio   `yaml:"audio" json:"audio,omitempty"`
	MIDI    MIDI    `yaml:"midi" json:"midi,omitempty"`
	Plugins Plugins `yaml:"plugins" json:"plugins,omitempty"`
}

type Logging struct {
	Level       string `yaml:"level" json:"level,omitempty" validate:"oneof=debug info warn error" jsonschema:"enum=debug,enum=info,enum=warn,enum=error,default=info"`
	Development bool   `yaml:"development" json:"development,omitempty" jsonschema:"description=Human readable console output"`
}

// Audio selects the device the manager opens. Empty device names and zero
// rate or buffer size leave the choice to the manager; nil channel counts
// use its defaults.
type Audio struct {
	DeviceType     string  `yaml:"device_type" json:"device_type,omitempty" jsonschema:"description=Audio device type name"`
	InputDevice    string  `yaml:"input_device" json:"input_device,omitempty"`
	OutputDevice   string  `yaml:"output_device" json:"output_device,omitempty"`
	SampleRate     float64 `yaml:"sample_rate" json:"sample_rate,omitempty" validate:"omitempty,gte=8000,lte=384000" jsonschema:"minimum=0,maximum=384000"`
	BufferSize     int     `yaml:"buffer_size" json:"buffer_size,omitempty" validate:"omitempty,gte=16,lte=8192" jsonschema:"minimum=0,maximum=8192"`
	InputChannels  *int    `yaml:"input_channels" json:"input_channels,omitempty" validate:"omitempty,gte=0,lte=64" jsonschema:"minimum=0,maximum=64"`
	OutputChannels *int    `yaml:"output_channels" json:"output_channels,omitempty" validate:"omitempty,gte=0,lte=64" jsonschema:"minimum=0,maximum=64"`
}

type MIDI struct {
	VirtualPort string `yaml:"virtual_port" json:"virtual_port,omitempty" validate:"max=64" jsonschema:"maxLength=64,description=Name of the virtual output the midi command creates"`
}

type Plugins struct {
	SearchPaths      []string `yaml:"search_paths" json:"search_paths,omitempty" validate:"dive,required" jsonschema:"description=Directories scanned for .wasm plugins"`
	Recursive        bool     `yaml:"recursive" json:"recursive,omitempty"`
	MemoryLimitPages uint32   `yaml:"memory_limit_pages" json:"memory_limit_pages,omitempty" validate:"lte=65536" jsonschema:"maximum=65536,description=Guest memory limit in 64KiB pages"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Logging: Logging{Level: "info"},
		MIDI:    MIDI{VirtualPort: "juce-runtime"},
		Plugins: Plugins{MemoryLimitPages: 256},
	}
}

// Load reads and validates the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindNotFound, err, "read "+path)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result. Unknown
// keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "validate config")
	}
	return nil
}

// Schema returns the JSON Schema of the configuration file.
func Schema() ([]byte, error) {
	r := jsonschema.Reflector{ExpandedStruct: true}
	s := r.Reflect(&Config{})
	out, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "marshal schema")
	}
	return out, nil
}

// AudioSetup converts the audio section into a device setup. The caller
// drops it.
func (c *Config) AudioSetup() *juce.AudioDeviceSetup {
	s := juce.NewAudioDeviceSetup()
	s.InputDeviceName.Set(c.Audio.InputDevice)
	s.OutputDeviceName.Set(c.Audio.OutputDevice)
	s.SampleRate = c.Audio.SampleRate
	s.BufferSize = int32(c.Audio.BufferSize)
	if n := c.Audio.InputChannels; n != nil {
		s.SetInputChannelCount(juce.Channels(*n))
	}
	if n := c.Audio.OutputChannels; n != nil {
		s.SetOutputChannelCount(juce.Channels(*n))
	}
	return s
}

// PluginFormat returns the wasmplugin configuration of the plugins section.
func (c *Config) PluginFormat() wasmplugin.Config {
	return wasmplugin.Config{
		MemoryLimitPages: c.Plugins.MemoryLimitPages,
		DefaultLocations: c.Plugins.SearchPaths,
	}
}

// NewLogger builds the zap logger the logging section describes.
func (c *Config) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Logging.Level)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "logging level")
	}
	zc := zap.NewProductionConfig()
	if c.Logging.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
