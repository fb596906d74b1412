package render

import "errors"

// ErrReadbackDenied is returned by a TextCanvas whose host forbids reading pixels back
var ErrReadbackDenied = errors.New("render: pixel readback denied")

// Glyph is a single character draw in device pixel space
// X, Y address the glyph cell center
type Glyph struct {
	Rune  rune
	X, Y  float64
	Size  float64 // Cell height in device pixels
	Color RGB
	Alpha float64
}

// Surface is the raster target the frame scheduler paints onto
// Implementations are driven from a single goroutine
type Surface interface {
	// Size reports the drawable area in device pixels
	Size() (width, height int)

	// Resize reallocates backing storage, contents are cleared to bg
	Resize(width, height int, bg RGB)

	// Fade darkens the surface toward bg by alpha, leaving trails of prior frames
	Fade(bg RGB, alpha float64)

	// DrawGlyph composites one glyph
	DrawGlyph(g Glyph)

	// Present flushes the composed frame to the host
	Present() error
}

// Font describes a text face for off-field rasterization
type Font struct {
	Size float64 // Pixel size
}

// TextCanvas is an off-field raster used to build text silhouettes
type TextCanvas interface {
	// FillText draws text centered horizontally at x with its vertical middle at y
	FillText(text string, x, y float64, font Font)

	// MeasureText returns the advance width of text in pixels
	MeasureText(text string, font Font) float64

	// ReadAlphaChannel returns width*height alpha bytes in row-major order
	ReadAlphaChannel() ([]byte, error)
}

// CanvasFactory allocates a fresh TextCanvas of the given size
type CanvasFactory func(width, height int) (TextCanvas, error)
