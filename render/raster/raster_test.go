package raster

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/rainfield/render"
)

func newSurface(t *testing.T, w, h int) *Surface {
	t.Helper()
	s, err := NewSurface(w, h, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// brightness sums the RGB channels of the pixel at x, y
func brightness(s *Surface, x, y int) uint32 {
	r, g, b, _ := s.Image().At(x, y).RGBA()
	return (r + g + b) >> 8
}

func totalBrightness(s *Surface) uint64 {
	var sum uint64
	w, h := s.Size()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum += uint64(brightness(s, x, y))
		}
	}
	return sum
}

func TestSurfaceSizeAndResize(t *testing.T) {
	s := newSurface(t, 64, 32)
	w, h := s.Size()
	assert.Equal(t, 64, w)
	assert.Equal(t, 32, h)

	s.Resize(100, 50, render.Background)
	w, h = s.Size()
	assert.Equal(t, 100, w)
	assert.Equal(t, 50, h)

	// Non-positive sizes clamp to one pixel
	s.Resize(0, -3, render.Background)
	w, h = s.Size()
	assert.Equal(t, 1, w)
	assert.Equal(t, 1, h)
}

func TestSurfaceStartsAtBackground(t *testing.T) {
	s := newSurface(t, 8, 8)
	r, g, b, a := s.Image().At(3, 3).RGBA()
	assert.InDelta(t, render.Background.R, r>>8, 1)
	assert.InDelta(t, render.Background.G, g>>8, 1)
	assert.InDelta(t, render.Background.B, b>>8, 1)
	assert.Equal(t, uint32(0xffff), a)
}

// TestSurfaceDrawGlyphAndFade verifies glyphs light pixels and fading pulls them back toward bg
func TestSurfaceDrawGlyphAndFade(t *testing.T) {
	s := newSurface(t, 48, 48)
	base := totalBrightness(s)

	s.DrawGlyph(render.Glyph{Rune: 'W', X: 24, Y: 24, Size: 28, Color: render.RGBWhite, Alpha: 1})
	require.NoError(t, s.Present())
	lit := totalBrightness(s)
	assert.Greater(t, lit, base)

	s.Fade(render.Background, 0.5)
	faded := totalBrightness(s)
	assert.Less(t, faded, lit)
	assert.Greater(t, faded, base)

	s.Fade(render.Background, 1)
	assert.Equal(t, base, totalBrightness(s))
	assert.Equal(t, 1, s.Frames())
}

func TestSurfaceSkipsInvisibleGlyphs(t *testing.T) {
	s := newSurface(t, 32, 32)
	base := totalBrightness(s)

	s.DrawGlyph(render.Glyph{Rune: 'A', X: 16, Y: 16, Size: 20, Color: render.RGBWhite, Alpha: 0})
	s.DrawGlyph(render.Glyph{Rune: 'A', X: 16, Y: 16, Size: 0, Color: render.RGBWhite, Alpha: 1})
	s.Fade(render.RGBWhite, 0)
	assert.Equal(t, base, totalBrightness(s))
}

// TestSurfaceFallbackRune verifies runes missing from the font still paint
func TestSurfaceFallbackRune(t *testing.T) {
	s := newSurface(t, 48, 48)
	base := totalBrightness(s)

	s.DrawGlyph(render.Glyph{Rune: 'ア', X: 24, Y: 24, Size: 28, Color: render.RGBWhite, Alpha: 1})
	assert.Greater(t, totalBrightness(s), base)
}

func TestDrawableSubstitution(t *testing.T) {
	src, err := MonoFont()
	require.NoError(t, err)
	face := newFaceCache(src).face(16)

	assert.Equal(t, 'Q', drawable(face, 'Q'))
	sub := drawable(face, 'ア')
	assert.Contains(t, fallbackGlyphs, string(sub))
	assert.Equal(t, sub, drawable(face, 'ア'), "substitution is stable")
}

func TestFaceCacheRoundsSizes(t *testing.T) {
	src, err := MonoFont()
	require.NoError(t, err)
	c := newFaceCache(src)

	c.face(12.1)
	c.face(11.9)
	c.face(12.6)
	c.face(-4)
	assert.Len(t, c.faces, 3)
}

func TestSurfacePNGOutput(t *testing.T) {
	s := newSurface(t, 40, 30)
	s.DrawGlyph(render.Glyph{Rune: '7', X: 20, Y: 15, Size: 20, Color: render.RGB{R: 90, G: 255, B: 140}, Alpha: 1})

	var buf bytes.Buffer
	require.NoError(t, s.EncodePNG(&buf))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 40, img.Bounds().Dx())
	assert.Equal(t, 30, img.Bounds().Dy())

	path := filepath.Join(t.TempDir(), "frame.png")
	require.NoError(t, s.SavePNG(path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestCanvasFillTextAlpha(t *testing.T) {
	c, err := NewCanvasFactory(nil)(120, 60)
	require.NoError(t, err)

	empty, err := c.ReadAlphaChannel()
	require.NoError(t, err)
	require.Len(t, empty, 120*60)
	assert.Equal(t, len(empty), bytes.Count(empty, []byte{0}), "fresh canvas is transparent")

	c.FillText("HI", 60, 30, render.Font{Size: 40})
	alpha, err := c.ReadAlphaChannel()
	require.NoError(t, err)
	require.Len(t, alpha, 120*60)

	covered := 0
	for _, a := range alpha {
		if a > 0 {
			covered++
		}
	}
	assert.Positive(t, covered)

	// Text is centered, the corners stay clear
	assert.Zero(t, alpha[0])
	assert.Zero(t, alpha[len(alpha)-1])
}

func TestCanvasMeasureText(t *testing.T) {
	c, err := NewCanvasFactory(nil)(10, 10)
	require.NoError(t, err)

	small := c.MeasureText("SAIREN", render.Font{Size: 12})
	large := c.MeasureText("SAIREN", render.Font{Size: 48})
	longer := c.MeasureText("SAIREN COLOR", render.Font{Size: 12})

	assert.Positive(t, small)
	assert.Greater(t, large, small)
	assert.Greater(t, longer, small)
	assert.Zero(t, c.MeasureText("", render.Font{Size: 12}))
}
