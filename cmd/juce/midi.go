package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wippyai/juce-runtime/juce"
)

type midiOptions struct {
	channel  int
	note     int
	velocity uint8
}

func newMidiCommand(opts *rootOptions) *cobra.Command {
	mo := &midiOptions{}
	cmd := &cobra.Command{
		Use:   "midi",
		Short: "Send a note through a virtual MIDI port and print what arrives",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.loopMidi(cmd.OutOrStdout(), mo)
		},
	}
	cmd.Flags().IntVar(&mo.channel, "channel", 1, "MIDI channel (1-16)")
	cmd.Flags().IntVar(&mo.note, "note", 60, "note number")
	cmd.Flags().Uint8Var(&mo.velocity, "velocity", 100, "note-on velocity")
	return cmd
}

// midiPrinter prints incoming messages. Delivery is synchronous with Send,
// so output interleaves with what the sender prints.
type midiPrinter struct {
	w io.Writer
}

func (p midiPrinter) HandleIncomingMidiMessage(_ *juce.MidiInput, m *juce.MidiMessage) {
	fmt.Fprintf(p.w, "received: % x %s\n", m.Bytes(), describeMidi(m))
}

func describeMidi(m *juce.MidiMessage) string {
	switch {
	case m.IsNoteOn():
		return fmt.Sprintf("(note on, channel %d, note %d)", m.Channel(), m.NoteNumber())
	case m.IsNoteOff():
		return fmt.Sprintf("(note off, channel %d, note %d)", m.Channel(), m.NoteNumber())
	}
	return fmt.Sprintf("(channel %d)", m.Channel())
}

func (o *rootOptions) loopMidi(w io.Writer, mo *midiOptions) error {
	out, err := juce.CreateVirtualMidiOutput(o.cfg.MIDI.VirtualPort)
	if err != nil {
		return err
	}
	defer out.Close()
	fmt.Fprintf(w, "virtual output %q\n", out.Info().Name())

	in, err := juce.OpenMidiInput(out.Identifier(), midiPrinter{w: w})
	if err != nil {
		return err
	}
	defer in.Close()
	in.Start()
	defer in.Stop()

	for _, m := range []*juce.MidiMessage{
		juce.NoteOn(mo.channel, mo.note, mo.velocity),
		juce.NoteOff(mo.channel, mo.note, 0),
	} {
		fmt.Fprintf(w, "sent: % x\n", m.Bytes())
		out.Send(m)
		m.Drop()
	}
	return nil
}
