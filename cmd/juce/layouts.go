package main

import (
	"cmp"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wippyai/juce-runtime/layout"
)

func newLayoutsCommand(_ *rootOptions) *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "layouts",
		Short: "Print the mirrored foreign types and whether they match",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printLayouts(cmd.OutOrStdout(), layout.Default, verbose)
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "include sizes and field offsets")
	return cmd
}

// printLayouts writes one line per mirror. It returns the combined
// mismatches after printing all of them.
func printLayouts(w io.Writer, r *layout.Registry, verbose bool) error {
	for _, e := range r.Entries() {
		status := "ok"
		if e.Verify() != nil {
			status = "mismatch"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Name, e.Kind, e.GoType, status)
		if !verbose {
			continue
		}
		fmt.Fprintf(w, "  host: size %d align %d\n", e.Host.Size, e.Host.Align)
		fmt.Fprintf(w, "  foreign: size %d align %d\n", e.Foreign.Size, e.Foreign.Align)
		for _, name := range sortedFields(e.Foreign.FieldOffs) {
			fmt.Fprintf(w, "  %s: %d\n", name, e.Foreign.FieldOffs[name])
		}
	}
	return r.Verify()
}

// sortedFields orders field names by offset.
func sortedFields(offs map[string]uintptr) []string {
	names := slices.Collect(maps.Keys(offs))
	slices.SortFunc(names, func(a, b string) int {
		if c := cmp.Compare(offs[a], offs[b]); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	return names
}
