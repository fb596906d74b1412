// Package palette is the shared color model: per-column tones with slow hue drift
package palette

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/lixenwraith/rainfield/render"
	"github.com/lixenwraith/rainfield/vmath"
)

// BaseHues is the curated neon set columns draw from, in degrees
var BaseHues = []float64{130, 145, 165, 190, 210, 300, 330, 40}

// Tone parameters
const (
	DefaultSaturation = 0.95
	DefaultLightness  = 0.70

	// DriftAmplitude is the peak hue excursion in degrees
	DriftAmplitude = 18.0

	// Drift rate range in radians per second, a full swing takes 30-120s
	DriftRateMin = 2 * math.Pi / 120
	DriftRateMax = 2 * math.Pi / 30

	// Per-column jitter so neighbors sharing a base hue do not look banded
	saturationJitter = 0.05
	lightnessJitter  = 0.06
)

// HSL is a color in hue degrees [0,360), saturation and lightness [0,1]
type HSL struct {
	H, S, L float64
}

// Tone is the immutable color identity of a column, assigned once at creation
type Tone struct {
	Hue        float64 // Base hue, degrees
	DriftRate  float64 // Radians per second
	Saturation float64
	Lightness  float64
	Phase      float64 // Drift phase offset, radians
}

// Assign picks a fresh tone from the curated palette
func Assign(src vmath.Source) Tone {
	return Tone{
		Hue:        BaseHues[src.Intn(len(BaseHues))],
		DriftRate:  vmath.Range(src, DriftRateMin, DriftRateMax),
		Saturation: vmath.Clamp01(DefaultSaturation + vmath.Range(src, -saturationJitter, saturationJitter)),
		Lightness:  vmath.Clamp01(DefaultLightness + vmath.Range(src, -lightnessJitter, lightnessJitter)),
		Phase:      vmath.Range(src, 0, 2*math.Pi),
	}
}

// ColorFor returns the tone's color at time t seconds, pure and side effect free
func ColorFor(tone Tone, t float64) HSL {
	h := tone.Hue + DriftAmplitude*math.Sin(t*tone.DriftRate+tone.Phase)
	return HSL{H: wrapHue(h), S: tone.Saturation, L: tone.Lightness}
}

// wrapHue folds h into [0, 360)
func wrapHue(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return h
}

// RGB converts through go-colorful, clamping out-of-gamut results
func (c HSL) RGB() render.RGB {
	r, g, b := colorful.Hsl(c.H, vmath.Clamp01(c.S), vmath.Clamp01(c.L)).Clamped().RGB255()
	return render.RGB{R: r, G: g, B: b}
}

// Highlight moves the color toward a near-white tint of itself by amount [0,1]
// Used for glyphs inside the revealed text silhouette
func (c HSL) Highlight(amount float64) HSL {
	amount = vmath.Clamp01(amount)
	return HSL{
		H: c.H,
		S: vmath.Lerp(c.S, c.S*0.55, amount),
		L: vmath.Lerp(c.L, 0.94, amount),
	}
}

// Brighten scales lightness by factor, clamped to [0,1]
func (c HSL) Brighten(factor float64) HSL {
	return HSL{H: c.H, S: c.S, L: vmath.Clamp01(c.L * factor)}
}
