package wasmplugin

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// Hand-assembled core modules for tests.

const (
	secCustom   = 0
	secType     = 1
	secImport   = 2
	secFunction = 3
	secMemory   = 5
	secGlobal   = 6
	secExport   = 7
	secCode     = 10

	kindFunc   = 0x00
	kindMemory = 0x02
	kindGlobal = 0x03

	valI32 = 0x7f
	valF64 = 0x7c
)

func uleb(v uint32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			out = append(out, b|0x80)
			continue
		}
		return append(out, b)
	}
}

func sleb(v int32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}

func wname(s string) []byte {
	return append(uleb(uint32(len(s))), s...)
}

func vec(items ...[]byte) []byte {
	out := uleb(uint32(len(items)))
	for _, it := range items {
		out = append(out, it...)
	}
	return out
}

func section(id byte, content []byte) []byte {
	out := append([]byte{id}, uleb(uint32(len(content)))...)
	return append(out, content...)
}

func cat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func funcType(params, results []byte) []byte {
	return cat([]byte{0x60}, uleb(uint32(len(params))), params, uleb(uint32(len(results))), results)
}

func body(locals []byte, code ...byte) []byte {
	b := cat(locals, code)
	return cat(uleb(uint32(len(b))), b)
}

func export(name string, kind byte, idx uint32) []byte {
	return cat(wname(name), []byte{kind}, uleb(idx))
}

func i32Global(v int32) []byte {
	return cat([]byte{valI32, 0x00, 0x41}, sleb(v), []byte{0x0b})
}

// halveProcess scales every sample in place by 0.5.
var halveProcess = body([]byte{0x01, 0x02, valI32},
	0x20, 0x01, 0x20, 0x02, 0x6c, // channels * frames
	0x41, 0x02, 0x74, // << 2
	0x20, 0x00, 0x6a, 0x21, 0x04, // end = ptr + bytes
	0x20, 0x00, 0x21, 0x03, // i = ptr
	0x02, 0x40,
	0x03, 0x40,
	0x20, 0x03, 0x20, 0x04, 0x4f, 0x0d, 0x01, // i >= end: break
	0x20, 0x03,
	0x20, 0x03, 0x2a, 0x02, 0x00, // f32.load i
	0x43, 0x00, 0x00, 0x00, 0x3f, 0x94, // * 0.5
	0x38, 0x02, 0x00, // f32.store
	0x20, 0x03, 0x41, 0x04, 0x6a, 0x21, 0x03, // i += 4
	0x0c, 0x00,
	0x0b,
	0x0b,
	0x0b,
)

// trapProcess executes unreachable.
var trapProcess = body([]byte{0x00}, 0x00, 0x0b)

type moduleOpts struct {
	process  []byte
	meta     string
	channels [2]int32
	tailMs   int32
	memMin   uint32
}

// pluginModule builds a plugin exporting memory, process, prepare and
// reset, channel and tail globals, and a mutable f64 global "rate" that
// prepare sets and reset clears.
func pluginModule(o moduleOpts) []byte {
	if o.process == nil {
		o.process = halveProcess
	}
	if o.channels == [2]int32{} {
		o.channels = [2]int32{2, 2}
	}
	if o.memMin == 0 {
		o.memMin = 1
	}

	f64Zero := []byte{0x44, 0, 0, 0, 0, 0, 0, 0, 0}
	out := cat(
		[]byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00},
		section(secType, vec(
			funcType([]byte{valI32, valI32, valI32}, nil),
			funcType([]byte{valF64, valI32}, nil),
			funcType(nil, nil),
		)),
		section(secFunction, vec([]byte{0}, []byte{1}, []byte{2})),
		section(secMemory, vec(cat([]byte{0x00}, uleb(o.memMin)))),
		section(secGlobal, vec(
			i32Global(o.channels[0]),
			i32Global(o.channels[1]),
			i32Global(o.tailMs),
			cat([]byte{valF64, 0x01}, f64Zero, []byte{0x0b}),
		)),
		section(secExport, vec(
			export("memory", kindMemory, 0),
			export("process", kindFunc, 0),
			export("prepare", kindFunc, 1),
			export("reset", kindFunc, 2),
			export("input_channels", kindGlobal, 0),
			export("output_channels", kindGlobal, 1),
			export("tail_ms", kindGlobal, 2),
			export("rate", kindGlobal, 3),
		)),
		section(secCode, vec(
			o.process,
			body([]byte{0x00}, 0x20, 0x00, 0x24, 0x03, 0x0b),
			body([]byte{0x00}, cat(f64Zero, []byte{0x24, 0x03, 0x0b})...),
		)),
	)
	if o.meta != "" {
		out = append(out, section(secCustom, cat(wname(MetadataSection), []byte(o.meta)))...)
	}
	return out
}

// memoryOnlyModule exports memory and nothing else.
func memoryOnlyModule() []byte {
	return cat(
		[]byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00},
		section(secMemory, vec([]byte{0x00, 0x01})),
		section(secExport, vec(export("memory", kindMemory, 0))),
	)
}

// importingModule imports env.host.
func importingModule() []byte {
	return cat(
		[]byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00},
		section(secType, vec(funcType(nil, nil))),
		section(secImport, vec(cat(wname("env"), wname("host"), []byte{kindFunc, 0x00}))),
	)
}

// badProcessModule exports process with the wrong signature.
func badProcessModule() []byte {
	return cat(
		[]byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00},
		section(secType, vec(funcType(nil, []byte{valI32}))),
		section(secFunction, vec([]byte{0})),
		section(secMemory, vec([]byte{0x00, 0x01})),
		section(secExport, vec(
			export("memory", kindMemory, 0),
			export("process", kindFunc, 0),
		)),
		section(secCode, vec(body([]byte{0x00}, 0x41, 0x00, 0x0b))),
	)
}

func writeModule(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLEB128(t *testing.T) {
	require.Equal(t, []byte{0xe5, 0x8e, 0x26}, uleb(624485))
	require.Equal(t, []byte{0xfa, 0x01}, sleb(250))
	require.Equal(t, []byte{0x7f}, sleb(-1))
	require.Equal(t, []byte{0xc0, 0xbb, 0x78}, sleb(-123456))
}
