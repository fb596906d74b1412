package engine

import (
	"time"

	"github.com/lixenwraith/rainfield/field"
	"github.com/lixenwraith/rainfield/mask"
	"github.com/lixenwraith/rainfield/render"
	"github.com/lixenwraith/rainfield/reveal"
	"github.com/lixenwraith/rainfield/subliminal"
)

// DefaultLines is used when the host supplies no usable text
var DefaultLines = []string{"COLOR ARRIVES BEFORE WORDS.", "SAIREN COLOR ARCHIVE."}

// Scale bounds for the device pixel ratio
const (
	MinScale = 1.0
	MaxScale = 2.0
)

// Options wires the component configurations into an Engine
type Options struct {
	Field      field.Config
	Reveal     reveal.Config
	Subliminal subliminal.Config
	Catalog    subliminal.Catalog
	Layout     mask.Layout

	// Canvas allocates text canvases for mask builds, nil disables the reveal
	Canvas render.CanvasFactory

	Seed uint64

	Background render.RGB
	FadeAlpha  float64 // Per-frame trail fade toward the background
	HiddenDim  float64 // Fade applied to the single frame painted on visibility loss

	BoostPeak       float64 // Fall speed multiplier at the start of a boost
	BoostBrightness float64 // Extra lightness factor at the start of a boost

	MaskDebounce time.Duration // Delay between the last resize and the mask rebuild
	MaxDelta     time.Duration // Upper bound on a single tick's dt
}

// DefaultOptions returns the stock tuning, Canvas is left nil for the host to supply
func DefaultOptions() Options {
	return Options{
		Field:           field.DefaultConfig(),
		Reveal:          reveal.DefaultConfig(),
		Subliminal:      subliminal.DefaultConfig(),
		Catalog:         subliminal.DefaultCatalog(),
		Layout:          mask.DefaultLayout(),
		Seed:            uint64(time.Now().UnixNano()),
		Background:      render.Background,
		FadeAlpha:       0.10,
		HiddenDim:       0.55,
		BoostPeak:       2.4,
		BoostBrightness: 0.25,
		MaskDebounce:    150 * time.Millisecond,
		MaxDelta:        33 * time.Millisecond,
	}
}

// Viewport is the logical drawable size reported by the host
type Viewport struct {
	Width  int
	Height int
}

// valid reports whether both dimensions are positive
func (v Viewport) valid() bool {
	return v.Width > 0 && v.Height > 0
}

// clamped returns the viewport with each dimension raised to at least 1
func (v Viewport) clamped() Viewport {
	return Viewport{Width: max(1, v.Width), Height: max(1, v.Height)}
}
