package juce

/*
#include "juce_native.h"
*/
import "C"

import (
	"unsafe"

	"github.com/wippyai/juce-runtime/bridge"
	"github.com/wippyai/juce-runtime/collection"
	"github.com/wippyai/juce-runtime/errors"
)

// PluginDescription mirrors juce::PluginDescription field for field. The
// zero value is an empty description; Drop releases its strings.
type PluginDescription struct {
	_                  noCopy
	name               String
	descriptiveName    String
	pluginFormatName   String
	category           String
	manufacturerName   String
	version            String
	fileOrIdentifier   String
	lastFileModTime    Time
	lastInfoUpdateTime Time
	deprecatedUid      int32
	uniqueId           int32
	isInstrument       bool
	numInputChannels   int32
	numOutputChannels  int32
	hasSharedContainer bool
	hasAraExtension    bool
}

func NewPluginDescription() *PluginDescription {
	d := new(PluginDescription)
	C.juce_plugin_description_construct(d.c())
	return d
}

func (d *PluginDescription) c() *C.juce_PluginDescription {
	return (*C.juce_PluginDescription)(unsafe.Pointer(d))
}

func (d *PluginDescription) Name() string             { return d.name.String() }
func (d *PluginDescription) DescriptiveName() string  { return d.descriptiveName.String() }
func (d *PluginDescription) PluginFormatName() string { return d.pluginFormatName.String() }
func (d *PluginDescription) Category() string         { return d.category.String() }
func (d *PluginDescription) ManufacturerName() string { return d.manufacturerName.String() }
func (d *PluginDescription) Version() string          { return d.version.String() }
func (d *PluginDescription) FileOrIdentifier() string { return d.fileOrIdentifier.String() }
func (d *PluginDescription) LastFileModTime() Time    { return d.lastFileModTime }
func (d *PluginDescription) LastInfoUpdateTime() Time { return d.lastInfoUpdateTime }
func (d *PluginDescription) DeprecatedUID() int32     { return d.deprecatedUid }
func (d *PluginDescription) UniqueID() int32          { return d.uniqueId }
func (d *PluginDescription) IsInstrument() bool       { return d.isInstrument }
func (d *PluginDescription) NumInputChannels() int    { return int(d.numInputChannels) }
func (d *PluginDescription) NumOutputChannels() int   { return int(d.numOutputChannels) }
func (d *PluginDescription) HasSharedContainer() bool { return d.hasSharedContainer }
func (d *PluginDescription) HasARAExtension() bool    { return d.hasAraExtension }

func (d *PluginDescription) SetName(v string)             { d.name.Set(v) }
func (d *PluginDescription) SetDescriptiveName(v string)  { d.descriptiveName.Set(v) }
func (d *PluginDescription) SetPluginFormatName(v string) { d.pluginFormatName.Set(v) }
func (d *PluginDescription) SetCategory(v string)         { d.category.Set(v) }
func (d *PluginDescription) SetManufacturerName(v string) { d.manufacturerName.Set(v) }
func (d *PluginDescription) SetVersion(v string)          { d.version.Set(v) }
func (d *PluginDescription) SetFileOrIdentifier(v string) { d.fileOrIdentifier.Set(v) }
func (d *PluginDescription) SetLastFileModTime(t Time)    { d.lastFileModTime = t }
func (d *PluginDescription) SetLastInfoUpdateTime(t Time) { d.lastInfoUpdateTime = t }
func (d *PluginDescription) SetDeprecatedUID(v int32)     { d.deprecatedUid = v }
func (d *PluginDescription) SetUniqueID(v int32)          { d.uniqueId = v }
func (d *PluginDescription) SetIsInstrument(v bool)       { d.isInstrument = v }
func (d *PluginDescription) SetNumInputChannels(n int)    { d.numInputChannels = int32(n) }
func (d *PluginDescription) SetNumOutputChannels(n int)   { d.numOutputChannels = int32(n) }
func (d *PluginDescription) SetHasSharedContainer(v bool) { d.hasSharedContainer = v }
func (d *PluginDescription) SetHasARAExtension(v bool)    { d.hasAraExtension = v }

// IdentifierString names the plugin uniquely across formats and files:
// format, name, hash of the file and unique id, dash separated.
func (d *PluginDescription) IdentifierString() string {
	var s String
	C.juce_plugin_description_identifier(d.c(), s.c())
	defer s.Drop()
	return s.String()
}

func (d *PluginDescription) Clone() *PluginDescription {
	out := new(PluginDescription)
	C.juce_plugin_description_clone(out.c(), d.c())
	return out
}

func (d *PluginDescription) Drop() {
	C.juce_plugin_description_destroy(d.c())
	C.juce_plugin_description_construct(d.c())
}

// OwnedPluginDescriptions mirrors juce::OwnedArray<PluginDescription>. The
// array owns its elements; At lends them until the next Add or Drop.
type OwnedPluginDescriptions struct {
	_    noCopy
	_    [0]uintptr
	data [16]byte
}

func NewOwnedPluginDescriptions() *OwnedPluginDescriptions {
	o := new(OwnedPluginDescriptions)
	C.juce_owned_descriptions_construct(o.c())
	return o
}

func (o *OwnedPluginDescriptions) c() *C.juce_OwnedPluginDescriptions {
	return (*C.juce_OwnedPluginDescriptions)(unsafe.Pointer(o))
}

// Add moves d into the array. d is left empty and may be reused.
func (o *OwnedPluginDescriptions) Add(d *PluginDescription) {
	C.juce_owned_descriptions_add(o.c(), d.c())
}

func (o *OwnedPluginDescriptions) Len() int {
	return int(C.juce_owned_descriptions_size(o.c()))
}

func (o *OwnedPluginDescriptions) At(i int) *PluginDescription {
	p := C.juce_owned_descriptions_get(o.c(), C.int32_t(i))
	if p == nil {
		panic(errors.OutOfBounds(errors.PhaseForeign, []string{"OwnedPluginDescriptions"}, i, o.Len()))
	}
	return (*PluginDescription)(unsafe.Pointer(p))
}

func (o *OwnedPluginDescriptions) View() collection.View[*PluginDescription] {
	return collection.Over[*PluginDescription](o)
}

func (o *OwnedPluginDescriptions) Drop() {
	C.juce_owned_descriptions_destroy(o.c())
	C.juce_owned_descriptions_construct(o.c())
}

// AudioPluginFormat finds and instantiates plugins of one kind.
type AudioPluginFormat interface {
	Name() string
	// FindAllTypesForFile adds a description for every plugin in
	// fileOrIdentifier to results.
	FindAllTypesForFile(results *OwnedPluginDescriptions, fileOrIdentifier string)
	// CreateInstance returns a plugin for description, or an error whose
	// text is handed to the host.
	CreateInstance(description *PluginDescription, sampleRate float64, blockSize int) (AudioPlugin, error)
}

// PluginScanner is implemented by formats that locate plugins on disk.
// Formats without it can not scan and contain nothing.
type PluginScanner interface {
	FileMightContainThisPluginType(fileOrIdentifier string) bool
	CanScanForPlugins() bool
	SearchPathsForPlugins(paths *FileSearchPath, recursive bool) []string
	DefaultLocationsToSearch(out *FileSearchPath)
}

// AudioPlugin is a loaded plugin. ProcessBlock runs on the audio thread with
// a buffer and MIDI buffer lent for the call.
type AudioPlugin interface {
	Name() string
	PrepareToPlay(sampleRate float64, blockSize int)
	ReleaseResources()
	ProcessBlock(buffer *AudioSampleBuffer, midi *MidiBuffer)
	TailLengthSeconds() float64
	AcceptsMidi() bool
	ProducesMidi() bool
	FillInPluginDescription(d *PluginDescription)
}

// ProgramHandler is implemented by plugins with programs. Others have one
// unnamed program.
type ProgramHandler interface {
	NumPrograms() int
	CurrentProgram() int
	SetCurrentProgram(index int)
	ProgramName(index int) string
}

// PluginFormat is a format held by a PluginFormatManager. It is valid until
// the manager is dropped.
type PluginFormat struct {
	ref bridge.Pinned[formatRef]
}

func (f *PluginFormat) c() *C.juce_AudioPluginFormat { return f.ref.Ptr().c() }

func (f *PluginFormat) Name() string {
	var s String
	C.juce_plugin_format_name(f.c(), s.c())
	defer s.Drop()
	return s.String()
}

func (f *PluginFormat) FindAllTypesForFile(results *OwnedPluginDescriptions, fileOrIdentifier string) {
	path := NewString(fileOrIdentifier)
	defer path.Drop()
	C.juce_plugin_format_find_all_types(f.c(), results.c(), path.c())
}

func (f *PluginFormat) FileMightContainThisPluginType(fileOrIdentifier string) bool {
	path := NewString(fileOrIdentifier)
	defer path.Drop()
	return bool(C.juce_plugin_format_might_contain(f.c(), path.c()))
}

func (f *PluginFormat) CanScanForPlugins() bool {
	return bool(C.juce_plugin_format_can_scan(f.c()))
}

func (f *PluginFormat) SearchPathsForPlugins(paths *FileSearchPath, recursive bool) []string {
	var out StringArray
	defer out.Drop()
	C.juce_plugin_format_search_paths(f.c(), paths.c(), C.bool(recursive), out.c())
	return out.Collect()
}

// DefaultLocationsToSearch returns a new search path. The caller drops it.
func (f *PluginFormat) DefaultLocationsToSearch() *FileSearchPath {
	out := NewFileSearchPath()
	C.juce_plugin_format_default_locations(f.c(), out.c())
	return out
}

func (f *PluginFormat) CreateInstance(description *PluginDescription, sampleRate float64, blockSize int) (*PluginInstance, error) {
	var msg String
	defer msg.Drop()
	p := C.juce_plugin_format_create_instance(f.c(), description.c(), C.double(sampleRate), C.int32_t(blockSize), msg.c())
	return newPluginInstance(p, &msg)
}

// PluginFormatManager mirrors juce::AudioPluginFormatManager. It owns the
// formats added to it and drops them in Drop.
type PluginFormatManager struct {
	_    noCopy
	_    [0]uintptr
	data [16]byte
}

func NewPluginFormatManager() *PluginFormatManager {
	m := new(PluginFormatManager)
	C.juce_format_manager_construct(m.c())
	return m
}

func (m *PluginFormatManager) c() *C.juce_PluginFormatManager {
	return (*C.juce_PluginFormatManager)(unsafe.Pointer(m))
}

// AddFormat hands f to the manager.
func (m *PluginFormatManager) AddFormat(f AudioPluginFormat) error {
	tok, err := register("plugin format", &formatBox{impl: f})
	if err != nil {
		return err
	}
	C.juce_format_manager_add_format(m.c(), C.juce_plugin_format_wrap(tok))
	return nil
}

func (m *PluginFormatManager) Len() int {
	return int(C.juce_format_manager_num_formats(m.c()))
}

func (m *PluginFormatManager) At(i int) *PluginFormat {
	p := C.juce_format_manager_format(m.c(), C.int32_t(i))
	if p == nil {
		panic(errors.OutOfBounds(errors.PhaseForeign, []string{"PluginFormatManager", "formats"}, i, m.Len()))
	}
	return &PluginFormat{ref: bridge.Pin((*formatRef)(unsafe.Pointer(p)), nil)}
}

// Formats lists the formats in the order they were added.
func (m *PluginFormatManager) Formats() collection.View[*PluginFormat] {
	return collection.Over[*PluginFormat](m)
}

// FindAllTypesForFile asks every format that might contain fileOrIdentifier
// for its plugins and returns how many were added to results.
func (m *PluginFormatManager) FindAllTypesForFile(results *OwnedPluginDescriptions, fileOrIdentifier string) int {
	before := results.Len()
	for f := range m.Formats().Values() {
		if f.FileMightContainThisPluginType(fileOrIdentifier) {
			f.FindAllTypesForFile(results, fileOrIdentifier)
		}
	}
	return results.Len() - before
}

// CreatePluginInstance instantiates description with the format named in
// it.
func (m *PluginFormatManager) CreatePluginInstance(description *PluginDescription, sampleRate float64, blockSize int) (*PluginInstance, error) {
	var msg String
	defer msg.Drop()
	p := C.juce_format_manager_create_instance(m.c(), description.c(), C.double(sampleRate), C.int32_t(blockSize), msg.c())
	return newPluginInstance(p, &msg)
}

func (m *PluginFormatManager) Drop() {
	C.juce_format_manager_destroy(m.c())
	C.juce_format_manager_construct(m.c())
}

// PluginInstance is a plugin owned by the caller. Drop releases it once;
// later calls to Drop do nothing.
type PluginInstance struct {
	ptr *C.juce_AudioPluginInstance
}

func newPluginInstance(p *C.juce_AudioPluginInstance, msg *String) (*PluginInstance, error) {
	if p == nil {
		text := msg.String()
		if text == "" {
			text = "plugin could not be created"
		}
		return nil, errors.Foreign("create plugin instance", text)
	}
	return &PluginInstance{ptr: p}, nil
}

func (p *PluginInstance) c() *C.juce_AudioPluginInstance {
	if p.ptr == nil {
		panic(errors.Released("PluginInstance"))
	}
	return p.ptr
}

func (p *PluginInstance) Name() string {
	var s String
	C.juce_plugin_instance_name(p.c(), s.c())
	defer s.Drop()
	return s.String()
}

func (p *PluginInstance) PrepareToPlay(sampleRate float64, blockSize int) {
	C.juce_plugin_instance_prepare(p.c(), C.double(sampleRate), C.int32_t(blockSize))
}

func (p *PluginInstance) ReleaseResources() {
	C.juce_plugin_instance_release(p.c())
}

// ProcessBlock processes buffer in place. midi may be nil.
func (p *PluginInstance) ProcessBlock(buffer *AudioSampleBuffer, midi *MidiBuffer) {
	var mb *C.juce_MidiBuffer
	if midi != nil {
		mb = midi.c()
	} else {
		var empty MidiBuffer
		defer empty.Drop()
		mb = empty.c()
	}
	C.juce_plugin_instance_process(p.c(), buffer.c(), mb)
}

func (p *PluginInstance) TailLengthSeconds() float64 {
	return float64(C.juce_plugin_instance_tail_seconds(p.c()))
}

func (p *PluginInstance) AcceptsMidi() bool {
	return bool(C.juce_plugin_instance_accepts_midi(p.c()))
}

func (p *PluginInstance) ProducesMidi() bool {
	return bool(C.juce_plugin_instance_produces_midi(p.c()))
}

func (p *PluginInstance) NumPrograms() int {
	return int(C.juce_plugin_instance_num_programs(p.c()))
}

func (p *PluginInstance) CurrentProgram() int {
	return int(C.juce_plugin_instance_current_program(p.c()))
}

func (p *PluginInstance) SetCurrentProgram(index int) {
	C.juce_plugin_instance_set_current_program(p.c(), C.int32_t(index))
}

func (p *PluginInstance) ProgramName(index int) string {
	var s String
	C.juce_plugin_instance_program_name(p.c(), C.int32_t(index), s.c())
	defer s.Drop()
	return s.String()
}

// FillInPluginDescription overwrites d with the plugin's description.
func (p *PluginInstance) FillInPluginDescription(d *PluginDescription) {
	C.juce_plugin_instance_fill_description(p.c(), d.c())
}

// Description returns a new description of the plugin. The caller drops it.
func (p *PluginInstance) Description() *PluginDescription {
	d := NewPluginDescription()
	p.FillInPluginDescription(d)
	return d
}

func (p *PluginInstance) Drop() {
	if p.ptr == nil {
		return
	}
	C.juce_plugin_instance_destroy(p.ptr)
	p.ptr = nil
}

func (p *PluginInstance) release() *C.juce_AudioPluginInstance {
	ptr := p.c()
	p.ptr = nil
	return ptr
}
