package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/juce-runtime/bridge"
	"github.com/wippyai/juce-runtime/config"
	"github.com/wippyai/juce-runtime/guard"
	"github.com/wippyai/juce-runtime/juce"
	"github.com/wippyai/juce-runtime/wasmplugin"
)

// rootOptions holds the global flags and what PersistentPreRunE derives
// from them.
type rootOptions struct {
	configPath string
	logLevel   string

	cfg *config.Config
	log *zap.Logger
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "juce",
		Short:         "Drive the native audio runtime",
		Long:          "Lists audio and MIDI devices, plays test signals and hosts WebAssembly audio plugins.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.log != nil {
				_ = opts.log.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to a YAML config file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override the configured log level (debug|info|warn|error)")

	cmd.AddCommand(newDevicesCommand(opts))
	cmd.AddCommand(newToneCommand(opts))
	cmd.AddCommand(newMidiCommand(opts))
	cmd.AddCommand(newPluginsCommand(opts))
	cmd.AddCommand(newLayoutsCommand(opts))
	cmd.AddCommand(newSchemaCommand(opts))
	cmd.AddCommand(newBrowseCommand(opts))

	return cmd
}

// load reads the config file, applies flag overrides and installs the
// logger in every package that logs.
func (o *rootOptions) load() error {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return err
		}
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	log, err := cfg.NewLogger()
	if err != nil {
		return err
	}
	o.cfg = cfg
	o.log = log

	juce.SetLogger(log.Named("juce"))
	bridge.SetLogger(log.Named("bridge"))
	guard.SetLogger(log.Named("guard"))
	wasmplugin.SetLogger(log.Named("wasmplugin"))
	return nil
}

// withRuntime initialises the runtime on the calling thread for the
// duration of fn.
func withRuntime(fn func(j *juce.JUCE) error) (err error) {
	j, err := juce.Initialise()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := j.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(j)
}

// openManager creates a device manager with the built-in types and selects
// the configured type when one is set.
func (o *rootOptions) openManager() (*juce.AudioDeviceManager, error) {
	m, err := juce.NewAudioDeviceManager()
	if err != nil {
		return nil, err
	}
	m.AddDefaultDeviceTypes()
	if name := o.cfg.Audio.DeviceType; name != "" {
		if err := m.SetCurrentDeviceType(name); err != nil {
			_ = m.Close()
			return nil, err
		}
	}
	return m, nil
}
