// Package mask rasterizes text lines into device-pixel alpha silhouettes
package mask

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/lixenwraith/rainfield/render"
)

var (
	// ErrReadbackDenied is reported when the canvas refuses pixel readback, masks are disabled
	ErrReadbackDenied = render.ErrReadbackDenied

	// ErrInvalidViewport is returned for a zero or negative device size
	ErrInvalidViewport = errors.New("mask: invalid viewport")

	// ErrSizeMismatch is returned when a canvas yields an alpha buffer of the wrong length
	ErrSizeMismatch = errors.New("mask: alpha buffer size mismatch")
)

// TextMask is an immutable per-line alpha grid in device pixels
type TextMask struct {
	Width  int
	Height int
	Alpha  []uint8 // Row-major, Width*Height
}

// At returns the alpha at integer device coordinates, 0 outside
func (m *TextMask) At(x, y int) uint8 {
	if m == nil || x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return 0
	}
	return m.Alpha[y*m.Width+x]
}

// Coverage returns the fraction of non-zero pixels
func (m *TextMask) Coverage() float64 {
	if m == nil || len(m.Alpha) == 0 {
		return 0
	}
	n := 0
	for _, a := range m.Alpha {
		if a > 0 {
			n++
		}
	}
	return float64(n) / float64(len(m.Alpha))
}

// Sample is the bounds-checked point lookup, nil masks and NaN coordinates read 0
func Sample(m *TextMask, x, y float64) uint8 {
	if m == nil || math.IsNaN(x) || math.IsNaN(y) {
		return 0
	}
	return m.At(int(math.Floor(x)), int(math.Floor(y)))
}

// Disabled returns a set of n masks whose samples are always 0
func Disabled(n int) []*TextMask {
	return make([]*TextMask, n)
}

// Layout controls font sizing and vertical placement, fractions of the device viewport
type Layout struct {
	WidthFraction float64 // Maximum line width relative to viewport width
	Anchor        float64 // Vertical center of the first line relative to viewport height
	PrimarySize   float64 // First line font size relative to min(width, height)
	SecondarySize float64 // Font size for following lines
	LineGap       float64 // Gap between lines relative to the following line's font size
	Shrink        float64 // Multiplier applied per fitting iteration
	MinFontPx     float64 // Fitting stops at this size
}

// DefaultLayout matches the stock two-line composition
func DefaultLayout() Layout {
	return Layout{
		WidthFraction: 0.86,
		Anchor:        0.47,
		PrimarySize:   0.12,
		SecondarySize: 0.06,
		LineGap:       0.35,
		Shrink:        0.92,
		MinFontPx:     8,
	}
}

// Builder produces masks through an injected canvas factory
type Builder struct {
	newCanvas render.CanvasFactory
	layout    Layout
}

// NewBuilder creates a mask builder
func NewBuilder(factory render.CanvasFactory, layout Layout) *Builder {
	if layout.Shrink <= 0 || layout.Shrink >= 1 {
		layout.Shrink = DefaultLayout().Shrink
	}
	if layout.MinFontPx < 1 {
		layout.MinFontPx = 1
	}
	if layout.WidthFraction <= 0 || layout.WidthFraction > 1 {
		layout.WidthFraction = DefaultLayout().WidthFraction
	}
	return &Builder{newCanvas: factory, layout: layout}
}

// DeviceSize converts a logical viewport to device pixels
func DeviceSize(width, height int, scale float64) (int, int) {
	return int(math.Round(float64(width) * scale)), int(math.Round(float64(height) * scale))
}

// Build rasterizes every line into a fresh mask sized to the device viewport
// On ErrReadbackDenied a disabled set is returned alongside the error
func (b *Builder) Build(lines []string, width, height int, scale float64) ([]*TextMask, error) {
	if scale <= 0 || math.IsNaN(scale) {
		scale = 1
	}
	dw, dh := DeviceSize(width, height, scale)
	if dw <= 0 || dh <= 0 {
		return Disabled(len(lines)), fmt.Errorf("%w: %dx%d", ErrInvalidViewport, dw, dh)
	}

	start := time.Now()
	sizes := b.fontSizes(lines, dw, dh)
	centers := b.lineCenters(sizes, dh)

	masks := make([]*TextMask, len(lines))
	for i, line := range lines {
		m, err := b.buildLine(line, dw, dh, sizes[i], centers[i])
		if err != nil {
			if errors.Is(err, ErrReadbackDenied) {
				return Disabled(len(lines)), err
			}
			return Disabled(len(lines)), fmt.Errorf("mask: line %d: %w", i, err)
		}
		masks[i] = m
	}

	Logger().Debug("masks built",
		"lines", len(lines),
		"width", dw,
		"height", dh,
		"elapsed", time.Since(start))
	return masks, nil
}

// fontSizes picks a size per line, shrinking until the line fits the width fraction
func (b *Builder) fontSizes(lines []string, dw, dh int) []float64 {
	sizes := make([]float64, len(lines))
	if len(lines) == 0 {
		return sizes
	}

	probe, err := b.newCanvas(1, 1)
	minDim := float64(min(dw, dh))
	limit := b.layout.WidthFraction * float64(dw)

	for i, line := range lines {
		frac := b.layout.SecondarySize
		if i == 0 {
			frac = b.layout.PrimarySize
		}
		size := math.Max(b.layout.MinFontPx, frac*minDim)
		if err == nil {
			for size > b.layout.MinFontPx && probe.MeasureText(line, render.Font{Size: size}) > limit {
				size = math.Max(b.layout.MinFontPx, size*b.layout.Shrink)
			}
		}
		sizes[i] = size
	}
	return sizes
}

// lineCenters stacks lines downward from the anchor with a size-proportional gap
func (b *Builder) lineCenters(sizes []float64, dh int) []float64 {
	centers := make([]float64, len(sizes))
	y := b.layout.Anchor * float64(dh)
	for i, s := range sizes {
		if i > 0 {
			y += sizes[i-1]/2 + b.layout.LineGap*s + s/2
		}
		centers[i] = y
	}
	return centers
}

func (b *Builder) buildLine(line string, dw, dh int, size, cy float64) (*TextMask, error) {
	canvas, err := b.newCanvas(dw, dh)
	if err != nil {
		return nil, err
	}
	canvas.FillText(line, float64(dw)/2, cy, render.Font{Size: size})

	alpha, err := canvas.ReadAlphaChannel()
	if err != nil {
		return nil, err
	}
	if len(alpha) != dw*dh {
		return nil, fmt.Errorf("%w: got %d want %d", ErrSizeMismatch, len(alpha), dw*dh)
	}
	return &TextMask{Width: dw, Height: dh, Alpha: alpha}, nil
}
