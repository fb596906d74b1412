package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/lixenwraith/rainfield/audio"
	"github.com/lixenwraith/rainfield/engine"
	"github.com/lixenwraith/rainfield/field"
	"github.com/lixenwraith/rainfield/render"
	"github.com/lixenwraith/rainfield/reveal"
	"github.com/lixenwraith/rainfield/subliminal"
	"github.com/lixenwraith/rainfield/terminal"
)

// fieldConfig converts to the field package tuning
func (c *Config) fieldConfig() field.Config {
	return field.Config{
		Spacing:     c.Field.Spacing,
		TrailLength: c.Field.TrailLength,
		SpeedMin:    c.Field.SpeedMin,
		SpeedMax:    c.Field.SpeedMax,
		Margin:      c.Field.Margin,
		FlickerRate: c.Field.FlickerRate,
		Alphabet:    []rune(c.Field.Alphabet),
	}
}

func (c *Config) revealConfig() reveal.Config {
	return reveal.Config{
		StartDelay:      c.Reveal.StartDelay,
		PerRune:         c.Reveal.PerRune,
		MinReveal:       c.Reveal.MinReveal,
		MaxReveal:       c.Reveal.MaxReveal,
		Hold:            c.Reveal.Hold,
		Fade:            c.Reveal.Fade,
		LeadGap:         c.Reveal.LeadGap,
		Gap:             c.Reveal.Gap,
		BreathAmplitude: c.Reveal.BreathAmplitude,
		BreathPeriod:    c.Reveal.BreathPeriod,
	}
}

func (c *Config) subliminalConfig() subliminal.Config {
	sc := subliminal.DefaultConfig()
	sc.Cap = c.Subliminal.Cap
	sc.IdleThreshold = c.Subliminal.IdleThreshold
	sc.SideBias = c.Subliminal.SideBias
	sc.EarlyWindow = c.Subliminal.EarlyWindow
	sc.EarlyIntervalMin = c.Subliminal.EarlyIntervalMin
	sc.EarlyIntervalMax = c.Subliminal.EarlyIntervalMax
	sc.IntervalMin = c.Subliminal.IntervalMin
	sc.IntervalMax = c.Subliminal.IntervalMax
	sc.BaseAlpha = c.Subliminal.BaseAlpha
	sc.PulseAlpha = c.Subliminal.PulseAlpha
	sc.PulseWidth = c.Subliminal.PulseWidth
	sc.RowPitch = c.Field.Spacing
	return sc
}

// Catalog loads the configured phrase catalog, the built-in tiers when unset
func (c *Config) Catalog() (subliminal.Catalog, error) {
	if c.Subliminal.Catalog == "" {
		return subliminal.DefaultCatalog(), nil
	}
	cat, err := subliminal.LoadCatalogFile(c.Subliminal.Catalog)
	if err != nil {
		return subliminal.Catalog{}, fmt.Errorf("config: subliminal.catalog: %w", err)
	}
	return cat, nil
}

// BackgroundRGB parses render.background, Validate guarantees it is well formed
func (c *Config) BackgroundRGB() render.RGB {
	col, err := colorful.Hex(c.Render.Background)
	if err != nil {
		return render.Background
	}
	r, g, b := col.RGB255()
	return render.RGB{R: r, G: g, B: b}
}

// EngineOptions assembles engine options, Canvas is left for the host to supply
func (c *Config) EngineOptions() (engine.Options, error) {
	cat, err := c.Catalog()
	if err != nil {
		return engine.Options{}, err
	}

	opts := engine.DefaultOptions()
	opts.Field = c.fieldConfig()
	opts.Reveal = c.revealConfig()
	opts.Subliminal = c.subliminalConfig()
	opts.Catalog = cat
	opts.Background = c.BackgroundRGB()
	opts.FadeAlpha = c.Render.FadeAlpha
	opts.HiddenDim = c.Render.HiddenDim
	opts.BoostPeak = c.Render.BoostPeak
	opts.BoostBrightness = c.Render.BoostBrightness
	opts.MaskDebounce = c.Render.MaskDebounce
	if c.Run.Seed != 0 {
		opts.Seed = c.Run.Seed
	}
	return opts, nil
}

// HostConfig assembles the terminal host settings
func (c *Config) HostConfig() terminal.HostConfig {
	mode, _ := terminal.ParseColorMode(c.Run.ColorMode)
	return terminal.HostConfig{
		FPS:           c.Run.FPS,
		CellSize:      c.Field.Spacing,
		ColorMode:     mode,
		ReducedMotion: c.Run.ReducedMotion,
		Mouse:         c.Run.Mouse,
		BoostMs:       c.Run.BoostMs,
		IdleInterval:  250 * time.Millisecond,
		Lines:         c.Text.Lines,
	}
}

// AudioConfig assembles the cue player settings
func (c *Config) AudioConfig() *audio.Config {
	ac := audio.DefaultConfig()
	ac.Enabled = c.Audio.Enabled
	ac.MasterVolume = c.Audio.Volume
	return ac
}

// LogLevel maps log.level to a slog level
func (c *Config) LogLevel() slog.Level {
	switch c.Log.Level {
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}
