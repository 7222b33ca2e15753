package wasmplugin

import (
	"context"
	"hash/fnv"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tetratelabs/wazero"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/juce-runtime/errors"
	"github.com/wippyai/juce-runtime/juce"
)

// FormatName is the plugin format name reported to the host.
const FormatName = "WASM"

// Extension is the file extension of plugin modules.
const Extension = ".wasm"

// Config holds configuration for a Format.
type Config struct {
	// MemoryLimitPages caps the linear memory of every plugin instance in
	// 64KiB pages. 0 keeps the wazero default.
	MemoryLimitPages uint32

	// DefaultLocations are the directories DefaultLocationsToSearch reports.
	// Empty means DefaultSearchPaths().
	DefaultLocations []string
}

// DefaultSearchPaths returns the conventional plugin directories.
func DefaultSearchPaths() []string {
	paths := []string{"/usr/local/lib/wasm-plugins", "/usr/lib/wasm-plugins"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append([]string{filepath.Join(home, ".wasm-plugins")}, paths...)
	}
	return paths
}

// Format is a juce.AudioPluginFormat for WebAssembly modules. All plugins
// created by a format share its wazero runtime.
type Format struct {
	ctx      context.Context
	runtime  wazero.Runtime
	cfg      Config
	compiled map[string]wazero.CompiledModule
	mu       sync.Mutex
	closed   bool
}

// NewFormat creates a format with its own wazero runtime.
func NewFormat(ctx context.Context, cfg Config) (*Format, error) {
	runtimeCfg := wazero.NewRuntimeConfig().WithCustomSections(true)
	if cfg.MemoryLimitPages > 0 {
		if cfg.MemoryLimitPages > 65536 {
			return nil, errors.InvalidInput(errors.PhaseConfig, "memory limit exceeds 65536 pages")
		}
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}
	if len(cfg.DefaultLocations) == 0 {
		cfg.DefaultLocations = DefaultSearchPaths()
	}
	return &Format{
		ctx:      ctx,
		runtime:  wazero.NewRuntimeWithConfig(ctx, runtimeCfg),
		cfg:      cfg,
		compiled: make(map[string]wazero.CompiledModule),
	}, nil
}

func (f *Format) Name() string { return FormatName }

// UniqueID hashes a plugin path with 32-bit FNV-1a.
func UniqueID(path string) int32 {
	h := fnv.New32a()
	h.Write([]byte(path))
	return int32(h.Sum32())
}

// compile returns the compiled module for path, compiling it on first use.
func (f *Format) compile(path string) (wazero.CompiledModule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, errors.Closed(errors.PhasePlugin, "plugin format")
	}
	if c, ok := f.compiled[path]; ok {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Load("read "+path, err)
	}
	c, err := f.runtime.CompileModule(f.ctx, data)
	if err != nil {
		return nil, errors.Load("compile "+filepath.Base(path), err)
	}
	f.compiled[path] = c
	return c, nil
}

// Describe compiles and inspects the module at path.
func (f *Format) Describe(path string) (Info, error) {
	compiled, err := f.compile(path)
	if err != nil {
		return Info{}, err
	}
	return f.inspect(f.ctx, path, compiled)
}

// FindAllTypesForFile adds one description for a valid module at path.
// Invalid modules are logged and skipped.
func (f *Format) FindAllTypesForFile(results *juce.OwnedPluginDescriptions, path string) {
	info, err := f.Describe(path)
	if err != nil {
		Logger().Warn("skip plugin", zap.String("path", path), zap.Error(err))
		return
	}

	d := juce.NewPluginDescription()
	defer d.Drop()
	fillDescription(d, path, info)
	if st, err := os.Stat(path); err == nil {
		d.SetLastFileModTime(juce.TimeOf(st.ModTime()))
	}
	d.SetLastInfoUpdateTime(juce.Now())
	results.Add(d)
	Logger().Debug("found plugin", zap.String("path", path), zap.String("name", info.Name))
}

func fillDescription(d *juce.PluginDescription, path string, info Info) {
	d.SetName(info.Name)
	d.SetDescriptiveName(info.Name)
	d.SetPluginFormatName(FormatName)
	d.SetCategory(info.Category)
	d.SetManufacturerName(info.Manufacturer)
	d.SetVersion(info.Version)
	d.SetFileOrIdentifier(path)
	d.SetUniqueID(UniqueID(path))
	d.SetIsInstrument(info.Instrument)
	d.SetNumInputChannels(info.InputChannels)
	d.SetNumOutputChannels(info.OutputChannels)
}

// CreateInstance instantiates the module named by description and sizes
// its scratch region for blockSize frames.
func (f *Format) CreateInstance(description *juce.PluginDescription, sampleRate float64, blockSize int) (juce.AudioPlugin, error) {
	path := description.FileOrIdentifier()
	compiled, err := f.compile(path)
	if err != nil {
		return nil, err
	}
	p, err := newPlugin(f.ctx, f.runtime, path, compiled, blockSize)
	if err != nil {
		return nil, err
	}
	Logger().Info("plugin instance created",
		zap.String("path", path),
		zap.String("instance", p.instance),
		zap.Float64("sample_rate", sampleRate),
		zap.Int("block_size", blockSize))
	return p, nil
}

func (f *Format) FileMightContainThisPluginType(path string) bool {
	return strings.EqualFold(filepath.Ext(path), Extension)
}

func (f *Format) CanScanForPlugins() bool { return true }

// SearchPathsForPlugins lists the module files under paths in directory
// order. Unreadable directories are skipped.
func (f *Format) SearchPathsForPlugins(paths *juce.FileSearchPath, recursive bool) []string {
	var out []string
	for dir := range paths.Values() {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == dir {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				if path != dir && !recursive {
					return fs.SkipDir
				}
				return nil
			}
			if f.FileMightContainThisPluginType(path) {
				out = append(out, path)
			}
			return nil
		})
		if err != nil {
			Logger().Warn("walk plugin directory", zap.String("dir", dir), zap.Error(err))
		}
	}
	return out
}

func (f *Format) DefaultLocationsToSearch(out *juce.FileSearchPath) {
	for _, dir := range f.cfg.DefaultLocations {
		out.AddPath(dir)
	}
}

// Close releases compiled modules and closes the runtime with every
// instance created from it.
func (f *Format) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true

	var err error
	for path, c := range f.compiled {
		if cerr := c.Close(f.ctx); cerr != nil {
			err = multierr.Append(err, errors.Wrap(errors.PhasePlugin, errors.KindClosed, cerr, "close "+path))
		}
	}
	clear(f.compiled)
	return multierr.Append(err, f.runtime.Close(f.ctx))
}

// Drop is called when a PluginFormatManager releases the format.
func (f *Format) Drop() {
	if err := f.Close(); err != nil {
		Logger().Warn("close plugin format", zap.Error(err))
	}
}
