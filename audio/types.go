// Package audio synthesizes the short cues played by interactive hosts
package audio

import (
	"errors"
	"time"
)

// SoundType represents different sound effects
type SoundType int

const (
	SoundChime   SoundType = iota // Boost on key press
	SoundWhisper                  // Subliminal phrase surfacing
	soundTypeCount
)

// String returns the config name of the sound
func (s SoundType) String() string {
	switch s {
	case SoundChime:
		return "chime"
	case SoundWhisper:
		return "whisper"
	default:
		return "unknown"
	}
}

// Config controls synthesis and playback
type Config struct {
	Enabled      bool
	MasterVolume float64
	SampleRate   int
	// MinInterval drops repeats of the same sound inside the window
	MinInterval   time.Duration
	EffectVolumes map[SoundType]float64
}

// DefaultConfig returns a quiet mix with playback disabled
func DefaultConfig() *Config {
	return &Config{
		Enabled:      false,
		MasterVolume: 0.5,
		SampleRate:   48000,
		MinInterval:  120 * time.Millisecond,
		EffectVolumes: map[SoundType]float64{
			SoundChime:   0.6,
			SoundWhisper: 0.25,
		},
	}
}

// Sentinel errors
var (
	ErrDisabled = errors.New("audio: playback disabled")
)
