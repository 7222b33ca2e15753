package main

import (
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/juce-runtime/errors"
	"github.com/wippyai/juce-runtime/juce"
)

type toneOptions struct {
	frequency   float64
	gain        float64
	cutoff      float64
	duration    time.Duration
	reportEvery int64
}

func newToneCommand(opts *rootOptions) *cobra.Command {
	to := &toneOptions{}
	cmd := &cobra.Command{
		Use:   "tone",
		Short: "Play a filtered sine tone on the configured device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(func(j *juce.JUCE) error {
				return opts.playTone(cmd, j, to)
			})
		},
	}
	cmd.Flags().Float64Var(&to.frequency, "frequency", 440, "tone frequency in Hz")
	cmd.Flags().Float64Var(&to.gain, "gain", 0.2, "linear output gain")
	cmd.Flags().Float64Var(&to.cutoff, "cutoff", 2000, "low-pass cutoff in Hz")
	cmd.Flags().DurationVarP(&to.duration, "duration", "d", time.Second, "how long to play")
	cmd.Flags().Int64Var(&to.reportEvery, "report-every", 8, "blocks between progress reports")
	return cmd
}

// toneCallback renders a sine through a low-pass filter. ProcessBlock runs
// on the audio thread; progress is posted back to the message thread.
type toneCallback struct {
	frequency   float64
	gain        float64
	cutoff      float64
	reportEvery int64
	log         *zap.Logger

	phase  float64
	step   float64
	filter juce.SingleThreadedIIRFilter
	blocks atomic.Int64

	// message thread only
	reported int64
	posts    int
}

func (c *toneCallback) AboutToStart(device *juce.Device) {
	rate := device.CurrentSampleRate()
	c.step = 2 * math.Pi * c.frequency / rate
	c.phase = 0
	c.filter.SetCoefficients(juce.LowPass(rate, c.cutoff, math.Sqrt2/2))
	c.filter.Reset()
	c.log.Debug("tone starting",
		zap.String("device", device.Name()),
		zap.Float64("sample_rate", rate),
		zap.Int("buffer_size", device.CurrentBufferSize()))
}

func (c *toneCallback) ProcessBlock(_ juce.InputBuffer, out juce.OutputBuffer) {
	if out.Channels() == 0 {
		return
	}
	first := out.Channel(0)
	for i := range first {
		first[i] = float32(c.gain * math.Sin(c.phase))
		c.phase += c.step
		if c.phase >= 2*math.Pi {
			c.phase -= 2 * math.Pi
		}
	}
	c.filter.Process(first)
	for ch := 1; ch < out.Channels(); ch++ {
		copy(out.Channel(ch), first)
	}

	n := c.blocks.Add(1)
	if c.reportEvery > 0 && n%c.reportEvery == 0 {
		juce.CallAsync(func() {
			c.reported = n
			c.posts++
			c.log.Debug("tone progress", zap.Int64("blocks", n))
		})
	}
}

func (c *toneCallback) Stopped() {
	c.log.Debug("tone stopped", zap.Int64("blocks", c.blocks.Load()))
}

func (o *rootOptions) playTone(cmd *cobra.Command, j *juce.JUCE, to *toneOptions) error {
	m, err := o.openManager()
	if err != nil {
		return err
	}
	defer m.Close()

	setup := o.cfg.AudioSetup()
	defer setup.Drop()
	if err := m.InitialiseWithSetup(0, 2, setup); err != nil {
		return err
	}
	device, ok := m.CurrentDevice()
	if !ok {
		return errors.NotFound(errors.PhaseForeign, "audio device", setup.OutputDeviceName.String())
	}
	name, rate := device.Name(), device.CurrentSampleRate()

	tone := &toneCallback{
		frequency:   to.frequency,
		gain:        to.gain,
		cutoff:      to.cutoff,
		reportEvery: to.reportEvery,
		log:         o.log,
	}
	h, err := m.AddAudioCallback(tone)
	if err != nil {
		return err
	}

	mm := j.MessageManager()
	deadline := time.Now().Add(to.duration)
	for left := time.Until(deadline); left > 0; left = time.Until(deadline) {
		if _, err := mm.RunDispatchLoopUntil(int(left.Milliseconds()) + 1); err != nil {
			_ = h.Remove()
			return err
		}
	}
	if err := h.Remove(); err != nil {
		return err
	}
	if _, err := mm.DispatchPending(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "played %d blocks on %s at %g Hz\n", tone.blocks.Load(), name, rate)
	fmt.Fprintf(cmd.OutOrStdout(), "message thread saw %d reports, last at block %d\n", tone.posts, tone.reported)
	return nil
}
