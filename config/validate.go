package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/lixenwraith/rainfield/engine"
	"github.com/lixenwraith/rainfield/field"
	"github.com/lixenwraith/rainfield/terminal"
)

// Bounds applied by Validate
const (
	MinFPS = 1
	MaxFPS = 240
)

var logLevels = []string{"debug", "info", "warn", "error"}

// Validate clamps out-of-range values and rejects values that cannot be repaired
func (c *Config) Validate() error {
	c.Field.Spacing = math.Max(field.MinSpacing, c.Field.Spacing)
	c.Field.TrailLength = max(1, c.Field.TrailLength)
	c.Field.SpeedMin = math.Max(0, c.Field.SpeedMin)
	if c.Field.SpeedMax < c.Field.SpeedMin {
		c.Field.SpeedMax = c.Field.SpeedMin
	}
	c.Field.Margin = math.Max(0, c.Field.Margin)
	c.Field.FlickerRate = math.Max(0, c.Field.FlickerRate)
	if strings.TrimSpace(c.Field.Alphabet) == "" {
		c.Field.Alphabet = field.DefaultAlphabet
	}

	if c.Reveal.MaxReveal < c.Reveal.MinReveal {
		c.Reveal.MaxReveal = c.Reveal.MinReveal
	}
	c.Reveal.BreathAmplitude = clamp01(c.Reveal.BreathAmplitude)

	c.Subliminal.Cap = max(0, c.Subliminal.Cap)
	c.Subliminal.SideBias = clamp01(c.Subliminal.SideBias)
	c.Subliminal.BaseAlpha = clamp01(c.Subliminal.BaseAlpha)
	c.Subliminal.PulseAlpha = clamp01(c.Subliminal.PulseAlpha)

	c.Render.FadeAlpha = clamp01(c.Render.FadeAlpha)
	c.Render.HiddenDim = clamp01(c.Render.HiddenDim)
	c.Render.BoostPeak = math.Max(1, c.Render.BoostPeak)
	c.Render.BoostBrightness = math.Max(0, c.Render.BoostBrightness)
	if _, err := colorful.Hex(c.Render.Background); err != nil {
		return fmt.Errorf("config: render.background %q: %w", c.Render.Background, err)
	}

	c.Run.FPS = min(MaxFPS, max(MinFPS, c.Run.FPS))
	c.Run.Scale = engine.ClampScale(c.Run.Scale)
	c.Run.BoostMs = math.Max(0, c.Run.BoostMs)
	if _, err := terminal.ParseColorMode(c.Run.ColorMode); err != nil {
		return fmt.Errorf("config: run.color_mode: %w", err)
	}

	c.Audio.Volume = clamp01(c.Audio.Volume)

	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Log.Level == "" {
		c.Log.Level = "debug"
	}
	valid := false
	for _, l := range logLevels {
		valid = valid || l == c.Log.Level
	}
	if !valid {
		return fmt.Errorf("config: log.level %q: want one of %s", c.Log.Level, strings.Join(logLevels, ", "))
	}
	return nil
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(1, math.Max(0, v))
}
