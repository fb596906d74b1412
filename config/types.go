// Package config loads rainfield settings from defaults, a YAML file, the environment and flags
package config

import "time"

// Config is the complete runtime configuration
type Config struct {
	Text       TextConfig       `koanf:"text"`
	Field      FieldConfig      `koanf:"field"`
	Reveal     RevealConfig     `koanf:"reveal"`
	Subliminal SubliminalConfig `koanf:"subliminal"`
	Render     RenderConfig     `koanf:"render"`
	Run        RunConfig        `koanf:"run"`
	Audio      AudioConfig      `koanf:"audio"`
	Log        LogConfig        `koanf:"log"`
}

// TextConfig holds the revealed lines
type TextConfig struct {
	Lines []string `koanf:"lines"`
}

// FieldConfig tunes the column field
type FieldConfig struct {
	Spacing     float64 `koanf:"spacing"`
	TrailLength int     `koanf:"trail_length"`
	SpeedMin    float64 `koanf:"speed_min"`
	SpeedMax    float64 `koanf:"speed_max"`
	Margin      float64 `koanf:"margin"`
	FlickerRate float64 `koanf:"flicker_rate"`
	Alphabet    string  `koanf:"alphabet"`
}

// RevealConfig holds the reveal timings
type RevealConfig struct {
	StartDelay      time.Duration `koanf:"start_delay"`
	PerRune         time.Duration `koanf:"per_rune"`
	MinReveal       time.Duration `koanf:"min_reveal"`
	MaxReveal       time.Duration `koanf:"max_reveal"`
	Hold            time.Duration `koanf:"hold"`
	Fade            time.Duration `koanf:"fade"`
	LeadGap         time.Duration `koanf:"lead_gap"`
	Gap             time.Duration `koanf:"gap"`
	BreathAmplitude float64       `koanf:"breath_amplitude"`
	BreathPeriod    time.Duration `koanf:"breath_period"`
}

// SubliminalConfig tunes the phrase scheduler
type SubliminalConfig struct {
	Cap              int           `koanf:"cap"`
	IdleThreshold    time.Duration `koanf:"idle_threshold"`
	SideBias         float64       `koanf:"side_bias"`
	EarlyWindow      time.Duration `koanf:"early_window"`
	EarlyIntervalMin time.Duration `koanf:"early_interval_min"`
	EarlyIntervalMax time.Duration `koanf:"early_interval_max"`
	IntervalMin      time.Duration `koanf:"interval_min"`
	IntervalMax      time.Duration `koanf:"interval_max"`
	BaseAlpha        float64       `koanf:"base_alpha"`
	PulseAlpha       float64       `koanf:"pulse_alpha"`
	PulseWidth       time.Duration `koanf:"pulse_width"`
	Catalog          string        `koanf:"catalog"` // YAML phrase catalog, empty uses the built-in tiers
}

// RenderConfig tunes compositing and fonts
type RenderConfig struct {
	Background      string        `koanf:"background"` // Hex color
	FadeAlpha       float64       `koanf:"fade_alpha"`
	HiddenDim       float64       `koanf:"hidden_dim"`
	BoostPeak       float64       `koanf:"boost_peak"`
	BoostBrightness float64       `koanf:"boost_brightness"`
	MaskDebounce    time.Duration `koanf:"mask_debounce"`
	GlyphFont       string        `koanf:"glyph_font"` // TTF/OTF path, empty uses Go Mono
	MaskFont        string        `koanf:"mask_font"`  // TTF/OTF path, empty uses Go Bold
}

// RunConfig controls the host session
type RunConfig struct {
	FPS           int     `koanf:"fps"`
	ReducedMotion bool    `koanf:"reduced_motion"`
	Scale         float64 `koanf:"scale"`
	BoostMs       float64 `koanf:"boost_ms"`
	ColorMode     string  `koanf:"color_mode"`
	Mouse         bool    `koanf:"mouse"`
	Seed          uint64  `koanf:"seed"` // 0 seeds from the clock
	Watch         bool    `koanf:"watch"`
}

// AudioConfig controls interaction cues
type AudioConfig struct {
	Enabled bool    `koanf:"enabled"`
	Volume  float64 `koanf:"volume"`
}

// LogConfig controls the debug log
type LogConfig struct {
	Debug bool   `koanf:"debug"`
	File  string `koanf:"file"`
	Level string `koanf:"level"`
}
