package main

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/juce-runtime/errors"
	"github.com/wippyai/juce-runtime/juce"
	"github.com/wippyai/juce-runtime/wasmplugin"
)

func newPluginsCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plugins",
		Short: "Scan for and run WebAssembly plugins",
	}
	cmd.AddCommand(newPluginsScanCommand(opts))
	cmd.AddCommand(newPluginsRunCommand(opts))
	return cmd
}

func newPluginsScanCommand(opts *rootOptions) *cobra.Command {
	var recursive bool
	cmd := &cobra.Command{
		Use:   "scan [dir...]",
		Short: "List plugins found in dirs, or in the configured search paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withFormat(cmd.Context(), func(m *juce.PluginFormatManager) error {
				return scanPlugins(cmd.OutOrStdout(), m, args, recursive || opts.cfg.Plugins.Recursive)
			})
		},
	}
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "descend into subdirectories")
	return cmd
}

type runOptions struct {
	channels   int
	frames     int
	sampleRate float64
	frequency  float64
}

func newPluginsRunCommand(opts *rootOptions) *cobra.Command {
	ro := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run <file.wasm>",
		Short: "Process one block of a sine through a plugin and print levels",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withFormat(cmd.Context(), func(m *juce.PluginFormatManager) error {
				return runPlugin(cmd.OutOrStdout(), m, args[0], ro)
			})
		},
	}
	cmd.Flags().IntVar(&ro.channels, "channels", 2, "channels in the test block")
	cmd.Flags().IntVar(&ro.frames, "frames", 512, "frames in the test block")
	cmd.Flags().Float64Var(&ro.sampleRate, "sample-rate", 48000, "sample rate passed to the plugin")
	cmd.Flags().Float64Var(&ro.frequency, "frequency", 1000, "test sine frequency in Hz")
	return cmd
}

// withFormat runs fn with a manager holding the WASM format.
func (o *rootOptions) withFormat(ctx context.Context, fn func(m *juce.PluginFormatManager) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	format, err := wasmplugin.NewFormat(ctx, o.cfg.PluginFormat())
	if err != nil {
		return err
	}
	m := juce.NewPluginFormatManager()
	defer m.Drop()
	if err := m.AddFormat(format); err != nil {
		_ = format.Close()
		return err
	}
	return fn(m)
}

func scanPlugins(w io.Writer, m *juce.PluginFormatManager, dirs []string, recursive bool) error {
	format := m.At(0)
	paths := juce.NewFileSearchPath(dirs...)
	defer paths.Drop()
	if len(dirs) == 0 {
		defaults := format.DefaultLocationsToSearch()
		defer defaults.Drop()
		for dir := range defaults.Values() {
			paths.AddPath(dir)
		}
	}

	results := juce.NewOwnedPluginDescriptions()
	defer results.Drop()
	for _, file := range format.SearchPathsForPlugins(paths, recursive) {
		m.FindAllTypesForFile(results, file)
	}

	for d := range results.View().Values() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d in / %d out\t%s\n",
			d.Name(), d.ManufacturerName(), d.Version(),
			d.NumInputChannels(), d.NumOutputChannels(), d.FileOrIdentifier())
	}
	fmt.Fprintf(w, "%d plugin(s) in %s\n", results.Len(), paths.String())
	return nil
}

func runPlugin(w io.Writer, m *juce.PluginFormatManager, path string, ro *runOptions) error {
	results := juce.NewOwnedPluginDescriptions()
	defer results.Drop()
	if m.FindAllTypesForFile(results, path) == 0 {
		return errors.NotFound(errors.PhasePlugin, "plugin", path)
	}

	inst, err := m.CreatePluginInstance(results.At(0), ro.sampleRate, ro.frames)
	if err != nil {
		return err
	}
	defer inst.Drop()
	inst.PrepareToPlay(ro.sampleRate, ro.frames)
	defer inst.ReleaseResources()

	buf := juce.NewAudioSampleBuffer(ro.channels, ro.frames)
	defer buf.Free()
	step := 2 * math.Pi * ro.frequency / ro.sampleRate
	for ch := range ro.channels {
		s := buf.Channel(ch)
		for i := range s {
			s[i] = float32(0.5 * math.Sin(step*float64(i)))
		}
	}
	before := levels(buf)
	inst.ProcessBlock(buf, nil)
	after := levels(buf)

	fmt.Fprintf(w, "%s: %d channel(s) x %d frames at %g Hz\n", inst.Name(), ro.channels, ro.frames, ro.sampleRate)
	for ch := range ro.channels {
		fmt.Fprintf(w, "  channel %d: peak %.4f -> %.4f, rms %.4f -> %.4f\n",
			ch, before[ch].peak, after[ch].peak, before[ch].rms, after[ch].rms)
	}
	wasmplugin.Logger().Debug("plugin run", zap.String("path", path), zap.Float64("tail", inst.TailLengthSeconds()))
	return nil
}

type level struct {
	peak float64
	rms  float64
}

func levels(buf *juce.AudioSampleBuffer) []level {
	out := make([]level, buf.Channels())
	for ch := range out {
		var sum float64
		s := buf.Channel(ch)
		for _, v := range s {
			a := math.Abs(float64(v))
			out[ch].peak = max(out[ch].peak, a)
			sum += a * a
		}
		if len(s) > 0 {
			out[ch].rms = math.Sqrt(sum / float64(len(s)))
		}
	}
	return out
}
