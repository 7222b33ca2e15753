package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/juce-runtime/errors"
)

const halvePlugin = "testdata/plugins/halve.wasm"

func TestPluginsScan(t *testing.T) {
	out, err := execute(t, "plugins", "scan", "testdata/plugins")
	require.NoError(t, err)
	assert.Contains(t, out, "Half\tWippy\t1.0.0\t2 in / 2 out\t"+halvePlugin+"\n")
	assert.Contains(t, out, "1 plugin(s) in testdata/plugins\n")
}

func TestPluginsScanConfiguredPaths(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "nested")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	data, err := os.ReadFile(halvePlugin)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(nested, "copy.wasm"), data, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.wasm"), []byte("nope"), 0o644))

	path := writeConfig(t, "plugins:\n  search_paths: ["+dir+"]\n")
	out, err := execute(t, "-c", path, "plugins", "scan")
	require.NoError(t, err)
	assert.Contains(t, out, "0 plugin(s) in "+dir+"\n", "broken modules are skipped and subdirectories ignored")

	out, err = execute(t, "-c", path, "plugins", "scan", "--recursive")
	require.NoError(t, err)
	assert.Contains(t, out, "Half\tWippy")
	assert.Contains(t, out, "1 plugin(s) in "+dir+"\n")
}

func TestPluginsRun(t *testing.T) {
	out, err := execute(t, "plugins", "run", halvePlugin)
	require.NoError(t, err)
	assert.Contains(t, out, "Half: 2 channel(s) x 512 frames at 48000 Hz\n")
	assert.Contains(t, out, "  channel 0: peak 0.5000 -> 0.2500")
	assert.Contains(t, out, "  channel 1: peak 0.5000 -> 0.2500")
}

func TestPluginsRunFlags(t *testing.T) {
	out, err := execute(t, "plugins", "run", halvePlugin, "--channels", "1", "--frames", "64", "--sample-rate", "44100")
	require.NoError(t, err)
	assert.Contains(t, out, "Half: 1 channel(s) x 64 frames at 44100 Hz\n")
	assert.NotContains(t, out, "channel 1:")
}

func TestPluginsRunMissing(t *testing.T) {
	_, err := execute(t, "plugins", "run", filepath.Join(t.TempDir(), "absent.wasm"))
	assert.ErrorIs(t, err, errors.NotFound(errors.PhasePlugin, "plugin", ""))

	_, err = execute(t, "plugins", "run")
	assert.Error(t, err, "a path is required")
}
