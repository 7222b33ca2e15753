//go:build race

package juce

const raceEnabled = true
