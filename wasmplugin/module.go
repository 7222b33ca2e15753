package wasmplugin

import (
	"bufio"
	"bytes"
	"context"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/juce-runtime/errors"
)

// MetadataSection is the custom section carrying plugin metadata.
const MetadataSection = "juce-plugin"

const (
	exportMemory         = "memory"
	exportProcess        = "process"
	exportPrepare        = "prepare"
	exportReset          = "reset"
	exportInputChannels  = "input_channels"
	exportOutputChannels = "output_channels"
	exportTailMs         = "tail_ms"

	defaultChannels = 2
)

// Info describes a plugin module.
type Info struct {
	Name           string
	Manufacturer   string
	Version        string
	Category       string
	Instrument     bool
	InputChannels  int
	OutputChannels int
	TailMs         int
}

var (
	processSignature = signature{
		params: []api.ValueType{api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32},
	}
	prepareSignature = signature{
		params: []api.ValueType{api.ValueTypeF64, api.ValueTypeI32},
	}
	resetSignature = signature{}
)

type signature struct {
	params  []api.ValueType
	results []api.ValueType
}

func (s signature) matches(def api.FunctionDefinition) bool {
	return slices.Equal(def.ParamTypes(), s.params) && slices.Equal(def.ResultTypes(), s.results)
}

// checkExports validates the import and export surface of a compiled module.
func checkExports(path string, compiled wazero.CompiledModule) error {
	if imports := compiled.ImportedFunctions(); len(imports) > 0 {
		mod, name, _ := imports[0].Import()
		return errors.Unsupported(errors.PhasePlugin,
			"plugin "+filepath.Base(path)+" imports "+mod+"."+name)
	}
	if _, ok := compiled.ExportedMemories()[exportMemory]; !ok {
		return errors.NotFound(errors.PhasePlugin, "export", exportMemory)
	}

	funcs := compiled.ExportedFunctions()
	def, ok := funcs[exportProcess]
	if !ok {
		return errors.NotFound(errors.PhasePlugin, "export", exportProcess)
	}
	if !processSignature.matches(def) {
		return errors.InvalidData(errors.PhasePlugin, []string{exportProcess},
			"process must take (i32, i32, i32) and return nothing")
	}
	if def, ok := funcs[exportPrepare]; ok && !prepareSignature.matches(def) {
		return errors.InvalidData(errors.PhasePlugin, []string{exportPrepare},
			"prepare must take (f64, i32) and return nothing")
	}
	if def, ok := funcs[exportReset]; ok && !resetSignature.matches(def) {
		return errors.InvalidData(errors.PhasePlugin, []string{exportReset},
			"reset must take no arguments and return nothing")
	}
	return nil
}

// parseMetadata reads name=value lines. Blank lines and lines starting
// with '#' are skipped; later keys win.
func parseMetadata(data []byte) map[string]string {
	out := make(map[string]string)
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		out[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}
	return out
}

func moduleInfo(path string, compiled wazero.CompiledModule) Info {
	meta := map[string]string{}
	for _, s := range compiled.CustomSections() {
		if s.Name() == MetadataSection {
			for k, v := range parseMetadata(s.Data()) {
				meta[k] = v
			}
		}
	}

	info := Info{
		Name:           meta["name"],
		Manufacturer:   meta["manufacturer"],
		Version:        meta["version"],
		Category:       meta["category"],
		InputChannels:  defaultChannels,
		OutputChannels: defaultChannels,
	}
	if info.Name == "" {
		info.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if v, err := strconv.ParseBool(meta["instrument"]); err == nil {
		info.Instrument = v
	}
	return info
}

// readGlobals fills channel counts and tail length from exported globals
// of an instance.
func readGlobals(mod api.Module, info *Info) {
	read := func(name string, dst *int) {
		g := mod.ExportedGlobal(name)
		if g == nil || g.Type() != api.ValueTypeI32 {
			return
		}
		if v := api.DecodeI32(g.Get()); v >= 0 {
			*dst = int(v)
		}
	}
	read(exportInputChannels, &info.InputChannels)
	read(exportOutputChannels, &info.OutputChannels)
	read(exportTailMs, &info.TailMs)
}

// inspect instantiates a compiled module once to read its globals.
func (f *Format) inspect(ctx context.Context, path string, compiled wazero.CompiledModule) (Info, error) {
	if err := checkExports(path, compiled); err != nil {
		return Info{}, err
	}
	info := moduleInfo(path, compiled)

	mod, err := f.runtime.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(""))
	if err != nil {
		return Info{}, errors.Wrap(errors.PhasePlugin, errors.KindInvalidData, err, "instantiate "+filepath.Base(path))
	}
	defer mod.Close(ctx)
	readGlobals(mod, &info)
	return info, nil
}
