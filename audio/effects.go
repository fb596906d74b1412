package audio

import (
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

const (
	chimeDuration        = 420 * time.Millisecond
	chimeAttack          = 4 * time.Millisecond
	chimeFundamentalTail = 380 * time.Millisecond
	chimeOvertoneTail    = 220 * time.Millisecond

	whisperDuration = 700 * time.Millisecond
	whisperAttack   = 250 * time.Millisecond
	whisperRelease  = 400 * time.Millisecond
)

// chimeScale is a major pentatonic run starting at E5
var chimeScale = [...]float64{659.25, 739.99, 880.00, 987.77, 1108.73}

// WaveType defines oscillator wave shapes
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveSaw
	WaveNoise
)

// oscillator generates raw audio waves
type oscillator struct {
	freq     float64
	phase    float64
	duration int
	position int
	wave     WaveType
	rate     beep.SampleRate
}

// NewOscillator creates a new oscillator for wave generation
func NewOscillator(freq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		freq:     freq,
		duration: rate.N(duration),
		wave:     wave,
		rate:     rate,
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			if o.phase < 0.5 {
				val = 1.0
			} else {
				val = -1.0
			}
		case WaveSaw:
			val = 2.0 * (o.phase - 0.5)
		case WaveNoise:
			val = rand.Float64()*2 - 1
		}

		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope applies linear attack/release shaping to a stream
type envelope struct {
	streamer       beep.Streamer
	position       int
	attackSamples  int
	releaseSamples int
	sustainSamples int
	totalSamples   int
}

// NewEnvelope wraps s with an attack ramp and a release tail inside duration
func NewEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	total := rate.N(duration)
	att := rate.N(attack)
	rel := rate.N(release)

	return &envelope{
		streamer:       s,
		attackSamples:  att,
		releaseSamples: rel,
		sustainSamples: max(0, total-att-rel),
		totalSamples:   total,
	}
}

// gain returns the envelope multiplier at the current position
func (e *envelope) gain() float64 {
	vol := 1.0
	if e.position < e.attackSamples && e.attackSamples > 0 {
		vol = float64(e.position) / float64(e.attackSamples)
	}
	releaseStart := e.attackSamples + e.sustainSamples
	if e.position >= releaseStart && e.releaseSamples > 0 {
		vol = max(0, float64(e.totalSamples-e.position)/float64(e.releaseSamples))
	}
	return vol
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)

	for i := 0; i < n; i++ {
		if e.position >= e.totalSamples {
			return i, i > 0
		}
		vol := e.gain()
		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// newVolume wraps s in a volume effect, 0 volume is silent since log2(0) is -Inf
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}

// effectVolume resolves the mixed gain of one sound
func effectVolume(cfg *Config, sound SoundType) float64 {
	return cfg.EffectVolumes[sound] * cfg.MasterVolume
}

// CreateChimeSound generates a bell tone on the given pentatonic step
func CreateChimeSound(cfg *Config, step int) beep.Streamer {
	rate := beep.SampleRate(cfg.SampleRate)
	freq := chimeScale[((step%len(chimeScale))+len(chimeScale))%len(chimeScale)]

	fund := NewOscillator(freq, chimeDuration, WaveSine, rate)
	fundShaped := NewEnvelope(fund, chimeDuration, chimeAttack, chimeFundamentalTail, rate)

	// Octave overtone decays faster for the struck-bell timbre
	over := NewOscillator(freq*2, chimeDuration, WaveSine, rate)
	overShaped := NewEnvelope(over, chimeDuration, chimeAttack, chimeOvertoneTail, rate)

	mixed := beep.Mix(
		newVolume(fundShaped, 0.7),
		newVolume(overShaped, 0.3),
	)
	return newVolume(mixed, effectVolume(cfg, SoundChime))
}

// CreateWhisperSound generates a soft swell of noise
func CreateWhisperSound(cfg *Config) beep.Streamer {
	rate := beep.SampleRate(cfg.SampleRate)

	noise := NewOscillator(0, whisperDuration, WaveNoise, rate)
	shaped := NewEnvelope(noise, whisperDuration, whisperAttack, whisperRelease, rate)

	return newVolume(shaped, effectVolume(cfg, SoundWhisper)*0.3)
}

// GetSoundEffect returns the streamer for soundType, nil for unknown types
func GetSoundEffect(soundType SoundType, cfg *Config, step int) beep.Streamer {
	switch soundType {
	case SoundChime:
		return CreateChimeSound(cfg, step)
	case SoundWhisper:
		return CreateWhisperSound(cfg)
	default:
		return nil
	}
}
