// Command juce drives the native runtime from the command line: it lists
// audio devices, plays a test tone, loops MIDI through a virtual port, scans
// and runs WebAssembly plugins and prints the mirrored type layouts.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
