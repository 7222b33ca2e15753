package layout

import (
	"slices"
	"sort"
	"sync"

	"go.uber.org/multierr"

	"github.com/wippyai/juce-runtime/errors"
)

// Kind tells how much of a foreign type the host may see.
type Kind uint8

const (
	// Opaque mirrors expose only size and alignment.
	Opaque Kind = iota
	// Structural mirrors also fix the byte offset of named fields.
	Structural
)

func (k Kind) String() string {
	if k == Structural {
		return "structural"
	}
	return "opaque"
}

// Entry records both sides of one mirrored type.
type Entry struct {
	// Expected is an independent description of the foreign type. When set
	// it is checked against the foreign geometry as well.
	Expected Type
	Name     string
	GoType   string
	Host     Info
	Foreign  Info
	Kind     Kind
}

// Registry collects mirrored types so they can be listed and re-verified.
type Registry struct {
	entries map[string]Entry
	mu      sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Default is populated by packages that declare mirrors.
var Default = NewRegistry()

// Register adds or replaces an entry.
func (r *Registry) Register(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[e.Name] = e
}

// Lookup returns the entry for a foreign type name.
func (r *Registry) Lookup(name string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e, ok
}

// Entries returns all entries sorted by name.
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of registered mirrors.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Verify compares every entry and returns all mismatches combined.
func (r *Registry) Verify() error {
	var err error
	for _, e := range r.Entries() {
		err = multierr.Append(err, e.Verify())
	}
	return err
}

// Verify compares host and foreign geometry, and the expected layout when
// one was declared. Expected field offsets are only checked for fields the
// foreign side publishes.
func (e Entry) Verify() error {
	err := Compare(e.Name, e.Host, e.Foreign)
	if e.Expected != nil {
		exp := e.Expected.Layout()
		offs := make(map[string]uintptr, len(e.Foreign.FieldOffs))
		for name := range e.Foreign.FieldOffs {
			if off, ok := exp.FieldOffs[name]; ok {
				offs[name] = off
			}
		}
		exp.FieldOffs = offs
		err = multierr.Append(err, Compare(e.Name, exp, e.Foreign))
	}
	return err
}

// Compare reports every property where host and foreign disagree. Offsets
// are compared for the union of field names present on either side.
func Compare(name string, host, foreign Info) error {
	var err error

	if host.Size != foreign.Size {
		err = multierr.Append(err, errors.LayoutMismatch(name, "size", host.Size, foreign.Size))
	}
	if host.Align != foreign.Align {
		err = multierr.Append(err, errors.LayoutMismatch(name, "align", host.Align, foreign.Align))
	}

	for _, field := range fieldNames(host, foreign) {
		h, hok := host.FieldOffs[field]
		f, fok := foreign.FieldOffs[field]
		switch {
		case !hok:
			err = multierr.Append(err, errors.New(errors.PhaseLayout, errors.KindLayoutMismatch).
				Path(name, field).ForeignType(name).Detail("field missing on host side").Build())
		case !fok:
			err = multierr.Append(err, errors.New(errors.PhaseLayout, errors.KindLayoutMismatch).
				Path(name, field).ForeignType(name).Detail("field missing on foreign side").Build())
		case h != f:
			err = multierr.Append(err, errors.LayoutMismatch(name, field, h, f))
		}
	}

	return err
}

func fieldNames(a, b Info) []string {
	names := make([]string, 0, len(a.FieldOffs)+len(b.FieldOffs))
	for n := range a.FieldOffs {
		names = append(names, n)
	}
	for n := range b.FieldOffs {
		if _, ok := a.FieldOffs[n]; !ok {
			names = append(names, n)
		}
	}
	slices.Sort(names)
	return names
}
