package terminal

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/rainfield/render"
)

// newSimScreen returns an initialized simulation screen of cols x rows
func newSimScreen(t *testing.T, cols, rows int) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(cols, rows)
	t.Cleanup(screen.Fini)
	return screen
}

// cellAt returns the rune and foreground shown at x, y
func cellAt(t *testing.T, screen tcell.SimulationScreen, x, y int) (rune, tcell.Color) {
	t.Helper()
	cells, w, _ := screen.GetContents()
	c := cells[y*w+x]
	require.NotEmpty(t, c.Runes)
	fg, _, _ := c.Style.Decompose()
	return c.Runes[0], fg
}

func TestSurfaceGeometry(t *testing.T) {
	screen := newSimScreen(t, 10, 5)
	s := NewSurface(screen, 14, ColorModeTrueColor)

	cols, rows := s.Grid()
	assert.Equal(t, 10, cols)
	assert.Equal(t, 5, rows)
	w, h := s.Size()
	assert.Equal(t, 140, w)
	assert.Equal(t, 70, h)

	s.Resize(141, 56, render.Background)
	cols, rows = s.Grid()
	assert.Equal(t, 11, cols, "partial cells round up")
	assert.Equal(t, 4, rows)

	s.Resize(0, 0, render.Background)
	cols, rows = s.Grid()
	assert.Equal(t, 1, cols)
	assert.Equal(t, 1, rows)
}

func TestSurfaceCellSizeClamp(t *testing.T) {
	screen := newSimScreen(t, 4, 4)
	s := NewSurface(screen, 0, ColorModeTrueColor)
	assert.Equal(t, 1.0, s.CellSize())
}

// TestSurfaceDrawAndPresent verifies a glyph lands in the cell containing its center
func TestSurfaceDrawAndPresent(t *testing.T) {
	screen := newSimScreen(t, 10, 5)
	s := NewSurface(screen, 14, ColorModeTrueColor)

	green := render.RGB{R: 40, G: 220, B: 90}
	s.DrawGlyph(render.Glyph{Rune: 'K', X: 2*14 + 7, Y: 1*14 + 7, Size: 14, Color: green, Alpha: 1})
	require.NoError(t, s.Present())
	assert.Equal(t, 1, s.Frames())

	r, fg := cellAt(t, screen, 2, 1)
	assert.Equal(t, 'K', r)
	assert.Equal(t, tcell.NewRGBColor(40, 220, 90), fg)

	r, _ = cellAt(t, screen, 0, 0)
	assert.Equal(t, ' ', r)
}

func TestSurfaceIgnoresOffGridGlyphs(t *testing.T) {
	screen := newSimScreen(t, 4, 3)
	s := NewSurface(screen, 10, ColorModeTrueColor)

	for _, g := range []render.Glyph{
		{Rune: 'A', X: -1, Y: 5, Alpha: 1},
		{Rune: 'A', X: 5, Y: -0.5, Alpha: 1},
		{Rune: 'A', X: 40, Y: 5, Alpha: 1},
		{Rune: 'A', X: 5, Y: 30, Alpha: 1},
		{Rune: 'A', X: 5, Y: 5, Alpha: 0},
	} {
		s.DrawGlyph(g)
	}
	require.NoError(t, s.Present())

	cells, _, _ := screen.GetContents()
	for i, c := range cells {
		assert.Equal(t, []rune{' '}, c.Runes, "cell %d", i)
	}
}

// TestSurfaceFadeBlanksCells verifies repeated fades decay a glyph to an empty cell
func TestSurfaceFadeBlanksCells(t *testing.T) {
	screen := newSimScreen(t, 3, 3)
	s := NewSurface(screen, 10, ColorModeTrueColor)

	s.DrawGlyph(render.Glyph{Rune: 'Z', X: 15, Y: 15, Color: render.RGBWhite, Alpha: 1})
	s.Fade(render.Background, 0.5)
	require.NoError(t, s.Present())
	r, fg := cellAt(t, screen, 1, 1)
	assert.Equal(t, 'Z', r)
	assert.Equal(t, tcell.NewRGBColor(130, 130, 131), fg)

	for i := 0; i < 8; i++ {
		s.Fade(render.Background, 0.5)
	}
	require.NoError(t, s.Present())
	r, _ = cellAt(t, screen, 1, 1)
	assert.Equal(t, ' ', r)
}

func TestSurfaceFullFadeClears(t *testing.T) {
	screen := newSimScreen(t, 3, 3)
	s := NewSurface(screen, 10, ColorModeTrueColor)
	s.DrawGlyph(render.Glyph{Rune: 'Z', X: 5, Y: 5, Color: render.RGBWhite, Alpha: 1})

	s.Fade(render.Background, 0)
	require.NoError(t, s.Present())
	r, _ := cellAt(t, screen, 0, 0)
	assert.Equal(t, 'Z', r, "zero fade keeps the frame")

	s.Fade(render.Background, 1)
	require.NoError(t, s.Present())
	r, _ = cellAt(t, screen, 0, 0)
	assert.Equal(t, ' ', r)
}

func TestSurfacePaletteMode(t *testing.T) {
	screen := newSimScreen(t, 2, 2)
	s := NewSurface(screen, 10, ColorMode256)
	assert.Equal(t, ColorMode256, s.Mode())

	s.DrawGlyph(render.Glyph{Rune: '1', X: 5, Y: 5, Color: render.RGB{R: 255}, Alpha: 1})
	require.NoError(t, s.Present())
	_, fg := cellAt(t, screen, 0, 0)
	assert.Equal(t, tcell.PaletteColor(196), fg)
}

// TestSurfaceNarrowsWideGlyphs verifies katakana become half-width forms
func TestSurfaceNarrowsWideGlyphs(t *testing.T) {
	screen := newSimScreen(t, 2, 2)
	s := NewSurface(screen, 10, ColorModeTrueColor)

	s.DrawGlyph(render.Glyph{Rune: 'ア', X: 5, Y: 5, Color: render.RGBWhite, Alpha: 1})
	require.NoError(t, s.Present())
	r, _ := cellAt(t, screen, 0, 0)
	assert.Equal(t, 'ｱ', r)
}

func TestNarrow(t *testing.T) {
	assert.Equal(t, 'A', Narrow('A'))
	assert.Equal(t, '7', Narrow('7'))
	assert.Equal(t, 'ｶ', Narrow('カ'))
	assert.Equal(t, 'A', Narrow('Ａ'), "fullwidth latin")

	// Wide ideographs have no narrow form and fall back to ASCII
	n := Narrow('漢')
	assert.Contains(t, fallbackGlyphs, string(n))
}
