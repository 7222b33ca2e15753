package wasmplugin

import (
	"context"
	"encoding/binary"
	"math"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/juce-runtime/errors"
	"github.com/wippyai/juce-runtime/juce"
)

const pageSize = 65536

// Plugin is one instance of a plugin module. It implements juce.AudioPlugin
// and must be driven from one thread at a time.
type Plugin struct {
	ctx      context.Context
	mod      api.Module
	memory   api.Memory
	process  api.Function
	prepare  api.Function
	reset    api.Function
	path     string
	instance string
	info     Info

	stack        []uint64
	scratch      uint32
	scratchBytes uint32
	faulted      bool
}

var _ juce.AudioPlugin = (*Plugin)(nil)

func newPlugin(ctx context.Context, rt wazero.Runtime, path string, compiled wazero.CompiledModule, blockSize int) (*Plugin, error) {
	if err := checkExports(path, compiled); err != nil {
		return nil, err
	}

	instance := uuid.NewString()
	mod, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(instance))
	if err != nil {
		return nil, errors.Wrap(errors.PhasePlugin, errors.KindInvalidData, err, "instantiate "+filepath.Base(path))
	}

	p := &Plugin{
		ctx:      ctx,
		mod:      mod,
		memory:   mod.ExportedMemory(exportMemory),
		process:  mod.ExportedFunction(exportProcess),
		prepare:  mod.ExportedFunction(exportPrepare),
		reset:    mod.ExportedFunction(exportReset),
		path:     path,
		instance: instance,
		info:     moduleInfo(path, compiled),
		stack:    make([]uint64, 3),
	}
	readGlobals(mod, &p.info)

	if err := p.reserve(max(p.info.InputChannels, p.info.OutputChannels), blockSize); err != nil {
		mod.Close(ctx)
		return nil, err
	}
	return p, nil
}

// Info returns the metadata the instance was created with.
func (p *Plugin) Info() Info { return p.info }

// reserve makes the scratch region large enough for a block. Growing moves
// the region to the new end of memory.
func (p *Plugin) reserve(channels, frames int) error {
	need := uint64(max(channels, 1)) * uint64(max(frames, 1)) * 4
	if need <= uint64(p.scratchBytes) {
		return nil
	}
	if need > math.MaxUint32 {
		return errors.InvalidInput(errors.PhasePlugin, "block does not fit in guest memory")
	}
	pages := uint32((need + pageSize - 1) / pageSize)
	prev, ok := p.memory.Grow(pages)
	if !ok {
		return errors.New(errors.PhasePlugin, errors.KindOutOfBounds).
			Path(p.path).
			Detail("cannot grow guest memory by %d pages", pages).
			Build()
	}
	p.scratch = prev * pageSize
	p.scratchBytes = pages * pageSize
	Logger().Debug("plugin scratch reserved",
		zap.String("instance", p.instance),
		zap.Uint32("offset", p.scratch),
		zap.Uint32("bytes", p.scratchBytes))
	return nil
}

func (p *Plugin) Name() string { return p.info.Name }

func (p *Plugin) PrepareToPlay(sampleRate float64, blockSize int) {
	if err := p.reserve(max(p.info.InputChannels, p.info.OutputChannels), blockSize); err != nil {
		p.fault("prepare", err)
		return
	}
	if p.prepare == nil {
		return
	}
	if _, err := p.prepare.Call(p.ctx, api.EncodeF64(sampleRate), api.EncodeI32(int32(blockSize))); err != nil {
		p.fault("prepare", err)
	}
}

func (p *Plugin) ReleaseResources() {
	if p.reset == nil || p.faulted {
		return
	}
	if _, err := p.reset.Call(p.ctx); err != nil {
		p.fault("reset", err)
	}
}

// ProcessBlock copies buffer into guest memory, runs process and copies the
// result back. A faulted instance outputs silence.
func (p *Plugin) ProcessBlock(buffer *juce.AudioSampleBuffer, _ *juce.MidiBuffer) {
	if p.faulted {
		buffer.Clear()
		return
	}
	channels, frames := buffer.Channels(), buffer.Samples()
	if channels == 0 || frames == 0 {
		return
	}
	if err := p.reserve(channels, frames); err != nil {
		p.fault("process", err)
		buffer.Clear()
		return
	}

	size := uint32(channels * frames * 4)
	view, ok := p.memory.Read(p.scratch, size)
	if !ok {
		p.fault("process", errors.OutOfBounds(errors.PhasePlugin, []string{p.path}, int(p.scratch), int(p.memory.Size())))
		buffer.Clear()
		return
	}
	for ch := range channels {
		base := ch * frames * 4
		for i, s := range buffer.Channel(ch) {
			binary.LittleEndian.PutUint32(view[base+i*4:], math.Float32bits(s))
		}
	}

	p.stack[0] = api.EncodeU32(p.scratch)
	p.stack[1] = api.EncodeI32(int32(channels))
	p.stack[2] = api.EncodeI32(int32(frames))
	if err := p.process.CallWithStack(p.ctx, p.stack); err != nil {
		p.fault("process", err)
		buffer.Clear()
		return
	}

	// process may grow memory, which invalidates view.
	view, ok = p.memory.Read(p.scratch, size)
	if !ok {
		buffer.Clear()
		return
	}
	for ch := range channels {
		base := ch * frames * 4
		out := buffer.Channel(ch)
		for i := range out {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(view[base+i*4:]))
		}
	}
}

func (p *Plugin) fault(op string, err error) {
	if p.faulted {
		return
	}
	p.faulted = true
	Logger().Error("plugin faulted",
		zap.String("instance", p.instance),
		zap.String("path", p.path),
		zap.String("op", op),
		zap.Error(err))
}

// Faulted reports whether a call into the guest failed. Faulted instances
// output silence until dropped.
func (p *Plugin) Faulted() bool { return p.faulted }

func (p *Plugin) TailLengthSeconds() float64 { return float64(p.info.TailMs) / 1000 }

func (p *Plugin) AcceptsMidi() bool { return false }

func (p *Plugin) ProducesMidi() bool { return false }

func (p *Plugin) FillInPluginDescription(d *juce.PluginDescription) {
	fillDescription(d, p.path, p.info)
}

// Close closes the guest instance.
func (p *Plugin) Close() error {
	return p.mod.Close(p.ctx)
}

// Drop is called when the host releases the instance.
func (p *Plugin) Drop() {
	if err := p.Close(); err != nil {
		Logger().Warn("close plugin instance", zap.String("instance", p.instance), zap.Error(err))
	}
}
