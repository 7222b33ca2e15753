package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wippyai/juce-runtime/juce"
)

type deviceTypeInfo struct {
	name    string
	inputs  []string
	outputs []string
}

func newDevicesCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List audio device types and their devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(func(*juce.JUCE) error {
				types, err := opts.scanDevices()
				if err != nil {
					return err
				}
				printDevices(cmd.OutOrStdout(), types)
				return nil
			})
		},
	}
}

// scanDevices rescans every available device type. It runs on the message
// thread.
func (o *rootOptions) scanDevices() ([]deviceTypeInfo, error) {
	m, err := o.openManager()
	if err != nil {
		return nil, err
	}
	defer m.Close()

	var out []deviceTypeInfo
	for t := range m.AvailableDeviceTypes().Values() {
		t.ScanForDevices()
		out = append(out, deviceTypeInfo{
			name:    t.Name(),
			inputs:  t.InputDeviceNames(),
			outputs: t.OutputDeviceNames(),
		})
	}
	return out, nil
}

func printDevices(w io.Writer, types []deviceTypeInfo) {
	for _, t := range types {
		fmt.Fprintln(w, t.name)
		fmt.Fprintf(w, "  inputs: %s\n", joinOrNone(t.inputs))
		fmt.Fprintf(w, "  outputs: %s\n", joinOrNone(t.outputs))
	}
}

func joinOrNone(names []string) string {
	if len(names) == 0 {
		return "(none)"
	}
	return strings.Join(names, ", ")
}
