package juce

/*
#include "juce_native.h"
*/
import "C"

import (
	"reflect"
	"unsafe"

	"github.com/wippyai/juce-runtime/layout"
)

// Every mirror is checked twice. The array expressions below stop the
// build when Go and the C compiler disagree on a size, alignment or field
// offset; the registry entries repeat the check at Initialise and let tools
// list the contract.

var (
	_ = [1]struct{}{}[unsafe.Sizeof(String{})^C.JUCE_STRING_SIZE]
	_ = [1]struct{}{}[unsafe.Alignof(String{})^C.JUCE_STRING_ALIGN]
	_ = [1]struct{}{}[unsafe.Sizeof(IntArray{})^C.JUCE_ARRAY_SIZE]
	_ = [1]struct{}{}[unsafe.Alignof(IntArray{})^C.JUCE_ARRAY_ALIGN]
	_ = [1]struct{}{}[unsafe.Sizeof(StringArray{})^C.JUCE_ARRAY_SIZE]
	_ = [1]struct{}{}[unsafe.Alignof(StringArray{})^C.JUCE_ARRAY_ALIGN]
	_ = [1]struct{}{}[unsafe.Sizeof(BigInteger{})^C.JUCE_BIGINTEGER_SIZE]
	_ = [1]struct{}{}[unsafe.Alignof(BigInteger{})^C.JUCE_BIGINTEGER_ALIGN]
	_ = [1]struct{}{}[unsafe.Sizeof(Time{})^C.JUCE_TIME_SIZE]
	_ = [1]struct{}{}[unsafe.Alignof(Time{})^C.JUCE_TIME_ALIGN]
	_ = [1]struct{}{}[unsafe.Sizeof(File{})^C.JUCE_FILE_SIZE]
	_ = [1]struct{}{}[unsafe.Alignof(File{})^C.JUCE_FILE_ALIGN]
	_ = [1]struct{}{}[unsafe.Sizeof(FileSearchPath{})^C.JUCE_FILESEARCHPATH_SIZE]
	_ = [1]struct{}{}[unsafe.Alignof(FileSearchPath{})^C.JUCE_FILESEARCHPATH_ALIGN]
	_ = [1]struct{}{}[unsafe.Sizeof(MidiMessage{})^C.JUCE_MIDIMESSAGE_SIZE]
	_ = [1]struct{}{}[unsafe.Alignof(MidiMessage{})^C.JUCE_MIDIMESSAGE_ALIGN]
	_ = [1]struct{}{}[unsafe.Sizeof(MidiBuffer{})^C.JUCE_MIDIBUFFER_SIZE]
	_ = [1]struct{}{}[unsafe.Alignof(MidiBuffer{})^C.JUCE_MIDIBUFFER_ALIGN]
	_ = [1]struct{}{}[unsafe.Sizeof(IIRCoefficients{})^C.JUCE_IIRCOEFFICIENTS_SIZE]
	_ = [1]struct{}{}[unsafe.Alignof(IIRCoefficients{})^C.JUCE_IIRCOEFFICIENTS_ALIGN]
	_ = [1]struct{}{}[unsafe.Sizeof(SingleThreadedIIRFilter{})^C.JUCE_IIRFILTER_SIZE]
	_ = [1]struct{}{}[unsafe.Alignof(SingleThreadedIIRFilter{})^C.JUCE_IIRFILTER_ALIGN]
	_ = [1]struct{}{}[unsafe.Sizeof(OwnedPluginDescriptions{})^C.JUCE_OWNEDARRAY_SIZE]
	_ = [1]struct{}{}[unsafe.Alignof(OwnedPluginDescriptions{})^C.JUCE_OWNEDARRAY_ALIGN]
	_ = [1]struct{}{}[unsafe.Sizeof(PluginFormatManager{})^C.JUCE_FORMATMANAGER_SIZE]
	_ = [1]struct{}{}[unsafe.Alignof(PluginFormatManager{})^C.JUCE_FORMATMANAGER_ALIGN]
)

var (
	_ = [1]struct{}{}[unsafe.Sizeof(MidiDeviceInfo{})^C.JUCE_MIDIDEVICEINFO_SIZE]
	_ = [1]struct{}{}[unsafe.Alignof(MidiDeviceInfo{})^C.JUCE_MIDIDEVICEINFO_ALIGN]
	_ = [1]struct{}{}[unsafe.Offsetof(MidiDeviceInfo{}.name)^C.JUCE_MIDIDEVICEINFO_OFF_NAME]
	_ = [1]struct{}{}[unsafe.Offsetof(MidiDeviceInfo{}.identifier)^C.JUCE_MIDIDEVICEINFO_OFF_IDENTIFIER]
)

var (
	_ = [1]struct{}{}[unsafe.Sizeof(AudioDeviceSetup{})^C.JUCE_SETUP_SIZE]
	_ = [1]struct{}{}[unsafe.Alignof(AudioDeviceSetup{})^C.JUCE_SETUP_ALIGN]
	_ = [1]struct{}{}[unsafe.Offsetof(AudioDeviceSetup{}.OutputDeviceName)^C.JUCE_SETUP_OFF_OUTPUTDEVICENAME]
	_ = [1]struct{}{}[unsafe.Offsetof(AudioDeviceSetup{}.InputDeviceName)^C.JUCE_SETUP_OFF_INPUTDEVICENAME]
	_ = [1]struct{}{}[unsafe.Offsetof(AudioDeviceSetup{}.SampleRate)^C.JUCE_SETUP_OFF_SAMPLERATE]
	_ = [1]struct{}{}[unsafe.Offsetof(AudioDeviceSetup{}.BufferSize)^C.JUCE_SETUP_OFF_BUFFERSIZE]
	_ = [1]struct{}{}[unsafe.Offsetof(AudioDeviceSetup{}.InputChannels)^C.JUCE_SETUP_OFF_INPUTCHANNELS]
	_ = [1]struct{}{}[unsafe.Offsetof(AudioDeviceSetup{}.UseDefaultInputChannels)^C.JUCE_SETUP_OFF_USEDEFAULTINPUTCHANNELS]
	_ = [1]struct{}{}[unsafe.Offsetof(AudioDeviceSetup{}.OutputChannels)^C.JUCE_SETUP_OFF_OUTPUTCHANNELS]
	_ = [1]struct{}{}[unsafe.Offsetof(AudioDeviceSetup{}.UseDefaultOutputChannels)^C.JUCE_SETUP_OFF_USEDEFAULTOUTPUTCHANNELS]
)

var (
	_ = [1]struct{}{}[unsafe.Sizeof(PluginDescription{})^C.JUCE_PLUGINDESCRIPTION_SIZE]
	_ = [1]struct{}{}[unsafe.Alignof(PluginDescription{})^C.JUCE_PLUGINDESCRIPTION_ALIGN]
	_ = [1]struct{}{}[unsafe.Offsetof(PluginDescription{}.name)^C.JUCE_PD_OFF_NAME]
	_ = [1]struct{}{}[unsafe.Offsetof(PluginDescription{}.descriptiveName)^C.JUCE_PD_OFF_DESCRIPTIVENAME]
	_ = [1]struct{}{}[unsafe.Offsetof(PluginDescription{}.pluginFormatName)^C.JUCE_PD_OFF_PLUGINFORMATNAME]
	_ = [1]struct{}{}[unsafe.Offsetof(PluginDescription{}.category)^C.JUCE_PD_OFF_CATEGORY]
	_ = [1]struct{}{}[unsafe.Offsetof(PluginDescription{}.manufacturerName)^C.JUCE_PD_OFF_MANUFACTURERNAME]
	_ = [1]struct{}{}[unsafe.Offsetof(PluginDescription{}.version)^C.JUCE_PD_OFF_VERSION]
	_ = [1]struct{}{}[unsafe.Offsetof(PluginDescription{}.fileOrIdentifier)^C.JUCE_PD_OFF_FILEORIDENTIFIER]
	_ = [1]struct{}{}[unsafe.Offsetof(PluginDescription{}.lastFileModTime)^C.JUCE_PD_OFF_LASTFILEMODTIME]
	_ = [1]struct{}{}[unsafe.Offsetof(PluginDescription{}.lastInfoUpdateTime)^C.JUCE_PD_OFF_LASTINFOUPDATETIME]
	_ = [1]struct{}{}[unsafe.Offsetof(PluginDescription{}.deprecatedUid)^C.JUCE_PD_OFF_DEPRECATEDUID]
	_ = [1]struct{}{}[unsafe.Offsetof(PluginDescription{}.uniqueId)^C.JUCE_PD_OFF_UNIQUEID]
	_ = [1]struct{}{}[unsafe.Offsetof(PluginDescription{}.isInstrument)^C.JUCE_PD_OFF_ISINSTRUMENT]
	_ = [1]struct{}{}[unsafe.Offsetof(PluginDescription{}.numInputChannels)^C.JUCE_PD_OFF_NUMINPUTCHANNELS]
	_ = [1]struct{}{}[unsafe.Offsetof(PluginDescription{}.numOutputChannels)^C.JUCE_PD_OFF_NUMOUTPUTCHANNELS]
	_ = [1]struct{}{}[unsafe.Offsetof(PluginDescription{}.hasSharedContainer)^C.JUCE_PD_OFF_HASSHAREDCONTAINER]
	_ = [1]struct{}{}[unsafe.Offsetof(PluginDescription{}.hasAraExtension)^C.JUCE_PD_OFF_HASARAEXTENSION]
)

// Foreign-side descriptions, written from the C declarations independently
// of both compilers.
var (
	stringLayout = layout.Struct("juce_String", layout.F("text", layout.Pointer))
	arrayLayout  = layout.Struct("juce_Array",
		layout.F("data", layout.Pointer),
		layout.F("numUsed", layout.Int32),
		layout.F("numAllocated", layout.Int32))
	bigIntegerLayout = layout.Struct("juce_BigInteger",
		layout.F("heapAllocation", layout.Pointer),
		layout.F("preallocated", layout.Array(layout.Uint32, 4)),
		layout.F("allocatedSize", layout.SizeT),
		layout.F("highestBit", layout.Int32),
		layout.F("negative", layout.Bool))
	timeLayout = layout.Struct("juce_Time", layout.F("millisSinceEpoch", layout.Int64))
	iirLayout  = layout.Struct("juce_IIRCoefficients", layout.F("coefficients", layout.Array(layout.Float32, 5)))
)

func sizeAlign(size, align C.int) layout.Info {
	return layout.Info{Size: uintptr(size), Align: uintptr(align)}
}

func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}

func opaque[T any](name string, foreign layout.Info, expected layout.Type) layout.Entry {
	return layout.Entry{
		Name:     name,
		GoType:   typeName[T](),
		Host:     layout.Of[T](nil),
		Foreign:  foreign,
		Expected: expected,
		Kind:     layout.Opaque,
	}
}

func init() {
	for _, e := range []layout.Entry{
		opaque[String]("juce::String", sizeAlign(C.JUCE_STRING_SIZE, C.JUCE_STRING_ALIGN), stringLayout),
		opaque[IntArray]("juce::Array<int>", sizeAlign(C.JUCE_ARRAY_SIZE, C.JUCE_ARRAY_ALIGN), arrayLayout),
		opaque[FloatArray]("juce::Array<float>", sizeAlign(C.JUCE_ARRAY_SIZE, C.JUCE_ARRAY_ALIGN), arrayLayout),
		opaque[DoubleArray]("juce::Array<double>", sizeAlign(C.JUCE_ARRAY_SIZE, C.JUCE_ARRAY_ALIGN), arrayLayout),
		opaque[StringArray]("juce::StringArray", sizeAlign(C.JUCE_ARRAY_SIZE, C.JUCE_ARRAY_ALIGN), arrayLayout),
		opaque[BigInteger]("juce::BigInteger", sizeAlign(C.JUCE_BIGINTEGER_SIZE, C.JUCE_BIGINTEGER_ALIGN), bigIntegerLayout),
		opaque[Time]("juce::Time", sizeAlign(C.JUCE_TIME_SIZE, C.JUCE_TIME_ALIGN), timeLayout),
		opaque[File]("juce::File", sizeAlign(C.JUCE_FILE_SIZE, C.JUCE_FILE_ALIGN),
			layout.Struct("juce_File", layout.F("fullPath", stringLayout))),
		opaque[FileSearchPath]("juce::FileSearchPath", sizeAlign(C.JUCE_FILESEARCHPATH_SIZE, C.JUCE_FILESEARCHPATH_ALIGN),
			layout.Struct("juce_FileSearchPath", layout.F("directories", arrayLayout))),
		opaque[MidiMessage]("juce::MidiMessage", sizeAlign(C.JUCE_MIDIMESSAGE_SIZE, C.JUCE_MIDIMESSAGE_ALIGN),
			layout.Struct("juce_MidiMessage",
				layout.F("packedData", layout.Blob{Size: 8, Align: 8}),
				layout.F("timeStamp", layout.Float64),
				layout.F("size", layout.Int32))),
		opaque[MidiBuffer]("juce::MidiBuffer", sizeAlign(C.JUCE_MIDIBUFFER_SIZE, C.JUCE_MIDIBUFFER_ALIGN),
			layout.Struct("juce_MidiBuffer", layout.F("data", arrayLayout))),
		opaque[IIRCoefficients]("juce::IIRCoefficients", sizeAlign(C.JUCE_IIRCOEFFICIENTS_SIZE, C.JUCE_IIRCOEFFICIENTS_ALIGN), iirLayout),
		opaque[SingleThreadedIIRFilter]("juce::SingleThreadedIIRFilter", sizeAlign(C.JUCE_IIRFILTER_SIZE, C.JUCE_IIRFILTER_ALIGN),
			layout.Struct("juce_SingleThreadedIIRFilter",
				layout.F("coefficients", iirLayout),
				layout.F("v1", layout.Float32),
				layout.F("v2", layout.Float32),
				layout.F("processLock", layout.Int32),
				layout.F("active", layout.Bool))),
		opaque[OwnedPluginDescriptions]("juce::OwnedArray<juce::PluginDescription>", sizeAlign(C.JUCE_OWNEDARRAY_SIZE, C.JUCE_OWNEDARRAY_ALIGN),
			layout.Struct("juce_OwnedPluginDescriptions", layout.F("items", arrayLayout))),
		opaque[PluginFormatManager]("juce::AudioPluginFormatManager", sizeAlign(C.JUCE_FORMATMANAGER_SIZE, C.JUCE_FORMATMANAGER_ALIGN),
			layout.Struct("juce_PluginFormatManager", layout.F("formats", arrayLayout))),
		midiDeviceInfoEntry(),
		audioDeviceSetupEntry(),
		pluginDescriptionEntry(),
	} {
		layout.Default.Register(e)
	}
}

func midiDeviceInfoEntry() layout.Entry {
	var v MidiDeviceInfo
	return layout.Entry{
		Name:   "juce::MidiDeviceInfo",
		GoType: typeName[MidiDeviceInfo](),
		Host: layout.Of[MidiDeviceInfo](map[string]uintptr{
			"name":       unsafe.Offsetof(v.name),
			"identifier": unsafe.Offsetof(v.identifier),
		}),
		Foreign: layout.Info{
			Size:  C.JUCE_MIDIDEVICEINFO_SIZE,
			Align: C.JUCE_MIDIDEVICEINFO_ALIGN,
			FieldOffs: map[string]uintptr{
				"name":       C.JUCE_MIDIDEVICEINFO_OFF_NAME,
				"identifier": C.JUCE_MIDIDEVICEINFO_OFF_IDENTIFIER,
			},
		},
		Expected: layout.Struct("juce_MidiDeviceInfo",
			layout.F("name", stringLayout),
			layout.F("identifier", stringLayout)),
		Kind: layout.Structural,
	}
}

func audioDeviceSetupEntry() layout.Entry {
	var v AudioDeviceSetup
	return layout.Entry{
		Name:   "juce::AudioDeviceManager::AudioDeviceSetup",
		GoType: typeName[AudioDeviceSetup](),
		Host: layout.Of[AudioDeviceSetup](map[string]uintptr{
			"outputDeviceName":         unsafe.Offsetof(v.OutputDeviceName),
			"inputDeviceName":          unsafe.Offsetof(v.InputDeviceName),
			"sampleRate":               unsafe.Offsetof(v.SampleRate),
			"bufferSize":               unsafe.Offsetof(v.BufferSize),
			"inputChannels":            unsafe.Offsetof(v.InputChannels),
			"useDefaultInputChannels":  unsafe.Offsetof(v.UseDefaultInputChannels),
			"outputChannels":           unsafe.Offsetof(v.OutputChannels),
			"useDefaultOutputChannels": unsafe.Offsetof(v.UseDefaultOutputChannels),
		}),
		Foreign: layout.Info{
			Size:  C.JUCE_SETUP_SIZE,
			Align: C.JUCE_SETUP_ALIGN,
			FieldOffs: map[string]uintptr{
				"outputDeviceName":         C.JUCE_SETUP_OFF_OUTPUTDEVICENAME,
				"inputDeviceName":          C.JUCE_SETUP_OFF_INPUTDEVICENAME,
				"sampleRate":               C.JUCE_SETUP_OFF_SAMPLERATE,
				"bufferSize":               C.JUCE_SETUP_OFF_BUFFERSIZE,
				"inputChannels":            C.JUCE_SETUP_OFF_INPUTCHANNELS,
				"useDefaultInputChannels":  C.JUCE_SETUP_OFF_USEDEFAULTINPUTCHANNELS,
				"outputChannels":           C.JUCE_SETUP_OFF_OUTPUTCHANNELS,
				"useDefaultOutputChannels": C.JUCE_SETUP_OFF_USEDEFAULTOUTPUTCHANNELS,
			},
		},
		Expected: layout.Struct("juce_AudioDeviceSetup",
			layout.F("outputDeviceName", stringLayout),
			layout.F("inputDeviceName", stringLayout),
			layout.F("sampleRate", layout.Float64),
			layout.F("bufferSize", layout.Int32),
			layout.F("inputChannels", bigIntegerLayout),
			layout.F("useDefaultInputChannels", layout.Bool),
			layout.F("outputChannels", bigIntegerLayout),
			layout.F("useDefaultOutputChannels", layout.Bool)),
		Kind: layout.Structural,
	}
}

func pluginDescriptionEntry() layout.Entry {
	var v PluginDescription
	return layout.Entry{
		Name:   "juce::PluginDescription",
		GoType: typeName[PluginDescription](),
		Host: layout.Of[PluginDescription](map[string]uintptr{
			"name":               unsafe.Offsetof(v.name),
			"descriptiveName":    unsafe.Offsetof(v.descriptiveName),
			"pluginFormatName":   unsafe.Offsetof(v.pluginFormatName),
			"category":           unsafe.Offsetof(v.category),
			"manufacturerName":   unsafe.Offsetof(v.manufacturerName),
			"version":            unsafe.Offsetof(v.version),
			"fileOrIdentifier":   unsafe.Offsetof(v.fileOrIdentifier),
			"lastFileModTime":    unsafe.Offsetof(v.lastFileModTime),
			"lastInfoUpdateTime": unsafe.Offsetof(v.lastInfoUpdateTime),
			"deprecatedUid":      unsafe.Offsetof(v.deprecatedUid),
			"uniqueId":           unsafe.Offsetof(v.uniqueId),
			"isInstrument":       unsafe.Offsetof(v.isInstrument),
			"numInputChannels":   unsafe.Offsetof(v.numInputChannels),
			"numOutputChannels":  unsafe.Offsetof(v.numOutputChannels),
			"hasSharedContainer": unsafe.Offsetof(v.hasSharedContainer),
			"hasAraExtension":    unsafe.Offsetof(v.hasAraExtension),
		}),
		Foreign: layout.Info{
			Size:  C.JUCE_PLUGINDESCRIPTION_SIZE,
			Align: C.JUCE_PLUGINDESCRIPTION_ALIGN,
			FieldOffs: map[string]uintptr{
				"name":               C.JUCE_PD_OFF_NAME,
				"descriptiveName":    C.JUCE_PD_OFF_DESCRIPTIVENAME,
				"pluginFormatName":   C.JUCE_PD_OFF_PLUGINFORMATNAME,
				"category":           C.JUCE_PD_OFF_CATEGORY,
				"manufacturerName":   C.JUCE_PD_OFF_MANUFACTURERNAME,
				"version":            C.JUCE_PD_OFF_VERSION,
				"fileOrIdentifier":   C.JUCE_PD_OFF_FILEORIDENTIFIER,
				"lastFileModTime":    C.JUCE_PD_OFF_LASTFILEMODTIME,
				"lastInfoUpdateTime": C.JUCE_PD_OFF_LASTINFOUPDATETIME,
				"deprecatedUid":      C.JUCE_PD_OFF_DEPRECATEDUID,
				"uniqueId":           C.JUCE_PD_OFF_UNIQUEID,
				"isInstrument":       C.JUCE_PD_OFF_ISINSTRUMENT,
				"numInputChannels":   C.JUCE_PD_OFF_NUMINPUTCHANNELS,
				"numOutputChannels":  C.JUCE_PD_OFF_NUMOUTPUTCHANNELS,
				"hasSharedContainer": C.JUCE_PD_OFF_HASSHAREDCONTAINER,
				"hasAraExtension":    C.JUCE_PD_OFF_HASARAEXTENSION,
			},
		},
		Expected: layout.Struct("juce_PluginDescription",
			layout.F("name", stringLayout),
			layout.F("descriptiveName", stringLayout),
			layout.F("pluginFormatName", stringLayout),
			layout.F("category", stringLayout),
			layout.F("manufacturerName", stringLayout),
			layout.F("version", stringLayout),
			layout.F("fileOrIdentifier", stringLayout),
			layout.F("lastFileModTime", timeLayout),
			layout.F("lastInfoUpdateTime", timeLayout),
			layout.F("deprecatedUid", layout.Int32),
			layout.F("uniqueId", layout.Int32),
			layout.F("isInstrument", layout.Bool),
			layout.F("numInputChannels", layout.Int32),
			layout.F("numOutputChannels", layout.Int32),
			layout.F("hasSharedContainer", layout.Bool),
			layout.F("hasAraExtension", layout.Bool)),
		Kind: layout.Structural,
	}
}
