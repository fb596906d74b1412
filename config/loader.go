package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/lixenwraith/rainfield/engine"
	"github.com/lixenwraith/rainfield/field"
	"github.com/lixenwraith/rainfield/reveal"
	"github.com/lixenwraith/rainfield/subliminal"
)

// EnvPrefix marks environment overrides, nested keys use a double underscore
// RAINFIELD_RUN__FPS -> run.fps
const EnvPrefix = "RAINFIELD_"

// DefaultFile is searched in the working directory when no file is given
const DefaultFile = "rainfield.yaml"

// loggerKey stores the run logger in a command context
type loggerKey struct{}

// flagKeys maps CLI flag names to config keys, unlisted flags are not config
var flagKeys = map[string]string{
	"text":           "text.lines",
	"spacing":        "field.spacing",
	"fps":            "run.fps",
	"reduced-motion": "run.reduced_motion",
	"scale":          "run.scale",
	"boost-ms":       "run.boost_ms",
	"color-mode":     "run.color_mode",
	"mouse":          "run.mouse",
	"seed":           "run.seed",
	"watch":          "run.watch",
	"catalog":        "subliminal.catalog",
	"sound":          "audio.enabled",
	"volume":         "audio.volume",
	"debug":          "log.debug",
	"log-file":       "log.file",
	"log-level":      "log.level",
}

// Defaults returns the built-in configuration as flat koanf keys
func Defaults() map[string]any {
	opts := engine.DefaultOptions()
	fc := field.DefaultConfig()
	rc := reveal.DefaultConfig()
	sc := subliminal.DefaultConfig()

	return map[string]any{
		"text.lines": append([]string(nil), engine.DefaultLines...),

		"field.spacing":      fc.Spacing,
		"field.trail_length": fc.TrailLength,
		"field.speed_min":    fc.SpeedMin,
		"field.speed_max":    fc.SpeedMax,
		"field.margin":       fc.Margin,
		"field.flicker_rate": fc.FlickerRate,
		"field.alphabet":     field.DefaultAlphabet,

		"reveal.start_delay":      rc.StartDelay,
		"reveal.per_rune":         rc.PerRune,
		"reveal.min_reveal":       rc.MinReveal,
		"reveal.max_reveal":       rc.MaxReveal,
		"reveal.hold":             rc.Hold,
		"reveal.fade":             rc.Fade,
		"reveal.lead_gap":         rc.LeadGap,
		"reveal.gap":              rc.Gap,
		"reveal.breath_amplitude": rc.BreathAmplitude,
		"reveal.breath_period":    rc.BreathPeriod,

		"subliminal.cap":                sc.Cap,
		"subliminal.idle_threshold":     sc.IdleThreshold,
		"subliminal.side_bias":          sc.SideBias,
		"subliminal.early_window":       sc.EarlyWindow,
		"subliminal.early_interval_min": sc.EarlyIntervalMin,
		"subliminal.early_interval_max": sc.EarlyIntervalMax,
		"subliminal.interval_min":       sc.IntervalMin,
		"subliminal.interval_max":       sc.IntervalMax,
		"subliminal.base_alpha":         sc.BaseAlpha,
		"subliminal.pulse_alpha":        sc.PulseAlpha,
		"subliminal.pulse_width":        sc.PulseWidth,
		"subliminal.catalog":            "",

		"render.background":       "#050507",
		"render.fade_alpha":       opts.FadeAlpha,
		"render.hidden_dim":       opts.HiddenDim,
		"render.boost_peak":       opts.BoostPeak,
		"render.boost_brightness": opts.BoostBrightness,
		"render.mask_debounce":    opts.MaskDebounce,
		"render.glyph_font":       "",
		"render.mask_font":        "",

		"run.fps":            30,
		"run.reduced_motion": false,
		"run.scale":          engine.MinScale,
		"run.boost_ms":       500.0,
		"run.color_mode":     "auto",
		"run.mouse":          false,
		"run.seed":           uint64(0),
		"run.watch":          false,

		"audio.enabled": false,
		"audio.volume":  0.5,

		"log.debug": false,
		"log.file":  "logs/rainfield.log",
		"log.level": "debug",
	}
}

// Loader layers configuration sources, later sources win
// defaults < file < environment < changed flags
type Loader struct {
	k        *koanf.Koanf
	fileUsed string
}

// NewLoader creates an empty loader
func NewLoader() *Loader {
	return &Loader{k: koanf.New(".")}
}

// findConfigFile resolves the file to read, empty when none exists
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat(DefaultFile); err == nil {
		return DefaultFile
	}
	return ""
}

// envKey transforms RAINFIELD_FIELD__TRAIL_LENGTH into field.trail_length
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Load reads every source and decodes the result, the config is validated
func (l *Loader) Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	l.k = koanf.New(".")

	// 1. Defaults
	if err := l.k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}

	// 2. YAML file
	l.fileUsed = findConfigFile(cfgFile)
	if l.fileUsed != "" {
		if err := l.k.Load(file.Provider(l.fileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", l.fileUsed, err)
		}
	}

	// 3. Environment
	if err := l.k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("config: load env: %w", err)
	}

	// 4. Flags, only those set explicitly
	if flags != nil {
		if err := l.k.Load(posflag.ProviderWithFlag(flags, ".", l.k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("config: load flags: %w", err)
		}
	}

	cfg, err := l.decode()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode unmarshals the merged tree with duration and pipe-separated list hooks
func (l *Loader) decode() (*Config, error) {
	var cfg Config
	err := l.k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc("|"),
			),
			Result:           &cfg,
			WeaklyTypedInput: true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	return &cfg, nil
}

// FileUsed returns the config file read by the last Load, empty when none
func (l *Loader) FileUsed() string {
	return l.fileUsed
}

// Keys returns every merged key with its value, for diagnostics
func (l *Loader) Keys() map[string]any {
	return l.k.All()
}

// Load is a convenience wrapper around a fresh Loader
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	return NewLoader().Load(cfgFile, flags)
}

// WithLogger stores l in ctx for commands
func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// LoggerFrom returns the logger stored in ctx, or a discarding logger
func LoggerFrom(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
			return l
		}
	}
	return slog.New(slog.DiscardHandler)
}
