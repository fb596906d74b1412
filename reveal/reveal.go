// Package reveal maps elapsed time to a per-line reveal phase and strength
package reveal

import (
	"math"
	"time"
	"unicode/utf8"

	"github.com/lixenwraith/rainfield/vmath"
)

// Phase is a line's position in the reveal cycle
type Phase int

const (
	Idle Phase = iota
	Revealing
	Holding
	FadingOut
)

var phaseNames = [...]string{"idle", "revealing", "holding", "fading"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// minPhase keeps every phase observable so the cycle never skips one
const minPhase = 10 * time.Millisecond

// Config holds the reveal timings
type Config struct {
	StartDelay time.Duration // Idle lead-in before the first line
	PerRune    time.Duration // Reveal time contributed by each rune
	MinReveal  time.Duration
	MaxReveal  time.Duration
	Hold       time.Duration
	Fade       time.Duration
	LeadGap    time.Duration // Pause between a line's hold end and the next line's reveal
	Gap        time.Duration // Idle gap after the last fade before the cycle restarts

	BreathAmplitude float64 // Peak dip of the cosmetic breathing during hold
	BreathPeriod    time.Duration
}

// DefaultConfig returns the stock timings
func DefaultConfig() Config {
	return Config{
		StartDelay:      1200 * time.Millisecond,
		PerRune:         90 * time.Millisecond,
		MinReveal:       1200 * time.Millisecond,
		MaxReveal:       4500 * time.Millisecond,
		Hold:            3500 * time.Millisecond,
		Fade:            1600 * time.Millisecond,
		LeadGap:         400 * time.Millisecond,
		Gap:             2500 * time.Millisecond,
		BreathAmplitude: 0.04,
		BreathPeriod:    3200 * time.Millisecond,
	}
}

// State is a line's phase and strength at an instant
type State struct {
	Phase    Phase
	Strength float64
}

// window is one line's schedule within a cycle, seconds
type window struct {
	start  float64
	reveal float64
	hold   float64
	fade   float64
}

// Timeline is the precomputed schedule for a set of lines, immutable and safe to share
type Timeline struct {
	windows      []window
	cycle        float64
	breathAmp    float64
	breathPeriod float64
	reduced      bool
}

// New builds the schedule for lines, reducedMotion pins every line to Idle
func New(cfg Config, lines []string, reducedMotion bool) *Timeline {
	cfg = sanitize(cfg)

	tl := &Timeline{
		windows:      make([]window, len(lines)),
		breathAmp:    vmath.Clamp01(cfg.BreathAmplitude),
		breathPeriod: cfg.BreathPeriod.Seconds(),
		reduced:      reducedMotion,
	}

	start := cfg.StartDelay.Seconds()
	end := start
	for i, line := range lines {
		w := window{
			start:  start,
			reveal: RevealDuration(cfg, utf8.RuneCountInString(line)).Seconds(),
			hold:   cfg.Hold.Seconds(),
			fade:   cfg.Fade.Seconds(),
		}
		tl.windows[i] = w
		end = math.Max(end, w.start+w.reveal+w.hold+w.fade)
		start = w.start + w.reveal + w.hold + cfg.LeadGap.Seconds()
	}
	tl.cycle = end + cfg.Gap.Seconds()
	return tl
}

func sanitize(cfg Config) Config {
	cfg.StartDelay = max(0, cfg.StartDelay)
	cfg.LeadGap = max(0, cfg.LeadGap)
	cfg.PerRune = max(0, cfg.PerRune)
	cfg.MinReveal = max(minPhase, cfg.MinReveal)
	cfg.MaxReveal = max(cfg.MinReveal, cfg.MaxReveal)
	cfg.Hold = max(minPhase, cfg.Hold)
	cfg.Fade = max(minPhase, cfg.Fade)
	cfg.Gap = max(minPhase, cfg.Gap)
	if cfg.BreathPeriod <= 0 {
		cfg.BreathPeriod = DefaultConfig().BreathPeriod
	}
	return cfg
}

// RevealDuration is proportional to rune count, clamped to [MinReveal, MaxReveal]
func RevealDuration(cfg Config, runes int) time.Duration {
	d := time.Duration(runes) * cfg.PerRune
	return min(max(d, cfg.MinReveal), max(cfg.MinReveal, cfg.MaxReveal))
}

// Lines returns the number of scheduled lines
func (tl *Timeline) Lines() int {
	return len(tl.windows)
}

// Cycle returns the length of one full sequence in seconds
func (tl *Timeline) Cycle() float64 {
	return tl.cycle
}

// Start returns the offset of a line's reveal within each cycle, seconds
func (tl *Timeline) Start(line int) float64 {
	if line < 0 || line >= len(tl.windows) {
		return 0
	}
	return tl.windows[line].start
}

// Reveal returns a line's reveal duration in seconds
func (tl *Timeline) Reveal(line int) float64 {
	if line < 0 || line >= len(tl.windows) {
		return 0
	}
	return tl.windows[line].reveal
}

// ReducedMotion reports whether the timeline is pinned to Idle
func (tl *Timeline) ReducedMotion() bool {
	return tl.reduced
}

// StateAt returns a line's phase and strength t seconds after start, pure
func (tl *Timeline) StateAt(line int, t float64) State {
	if tl.reduced || line < 0 || line >= len(tl.windows) || t < 0 || math.IsNaN(t) || math.IsInf(t, 0) {
		return State{Phase: Idle}
	}
	w := tl.windows[line]
	local := math.Mod(t, tl.cycle) - w.start

	switch {
	case local < 0:
		return State{Phase: Idle}
	case local < w.reveal:
		return State{Phase: Revealing, Strength: vmath.EaseOutCubic(local / w.reveal)}
	case local < w.reveal+w.hold:
		return State{Phase: Holding, Strength: 1}
	case local < w.reveal+w.hold+w.fade:
		p := (local - w.reveal - w.hold) / w.fade
		return State{Phase: FadingOut, Strength: 1 - vmath.EaseInOutCubic(p)}
	default:
		return State{Phase: Idle}
	}
}

// StrengthAt returns the reveal strength in [0,1], monotonic within each phase
func (tl *Timeline) StrengthAt(line int, t float64) float64 {
	return tl.StateAt(line, t).Strength
}

// BreathAt returns a cosmetic multiplier in [1-amplitude, 1], below 1 only while holding
func (tl *Timeline) BreathAt(line int, t float64) float64 {
	if tl.StateAt(line, t).Phase != Holding {
		return 1
	}
	dip := 0.5 + 0.5*math.Sin(2*math.Pi*t/tl.breathPeriod)
	return 1 - tl.breathAmp*dip
}
