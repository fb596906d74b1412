// Package terminal hosts the rain field on a tcell screen
package terminal

import (
	"math"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/text/width"

	"github.com/lixenwraith/rainfield/render"
)

// fallbackGlyphs replace runes that stay double width after narrowing
const fallbackGlyphs = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// minIntensity is the level below which a faded cell is blanked
const minIntensity = 0.03

// cell is one terminal character of the composed frame
type cell struct {
	r         rune
	fg        render.RGB
	intensity float64
}

// Surface maps device pixels onto a grid of terminal cells
// One cell covers CellSize x CellSize device pixels
type Surface struct {
	screen   tcell.Screen
	cellSize float64
	mode     ColorMode

	cols, rows int
	bg         render.RGB
	cells      []cell
	frames     int
}

// NewSurface creates a surface drawing on screen, cellSize is clamped to at least 1
func NewSurface(screen tcell.Screen, cellSize float64, mode ColorMode) *Surface {
	if math.IsNaN(cellSize) || cellSize < 1 {
		cellSize = 1
	}
	s := &Surface{
		screen:   screen,
		cellSize: cellSize,
		mode:     mode.resolve(),
		bg:       render.Background,
	}
	cols, rows := screen.Size()
	s.allocate(cols, rows)
	return s
}

func (s *Surface) allocate(cols, rows int) {
	s.cols, s.rows = max(1, cols), max(1, rows)
	s.cells = make([]cell, s.cols*s.rows)
}

// CellSize returns the device pixels covered by one cell
func (s *Surface) CellSize() float64 {
	return s.cellSize
}

// Grid returns the cell dimensions
func (s *Surface) Grid() (cols, rows int) {
	return s.cols, s.rows
}

// Mode returns the resolved color mode
func (s *Surface) Mode() ColorMode {
	return s.mode
}

// Size returns the grid extent in device pixels
func (s *Surface) Size() (int, int) {
	return int(float64(s.cols) * s.cellSize), int(float64(s.rows) * s.cellSize)
}

// Resize reallocates the grid to cover width x height device pixels
func (s *Surface) Resize(width, height int, bg render.RGB) {
	s.bg = bg
	s.allocate(
		int(math.Ceil(float64(width)/s.cellSize)),
		int(math.Ceil(float64(height)/s.cellSize)),
	)
}

// Fade pulls every cell toward bg, dim cells are blanked
func (s *Surface) Fade(bg render.RGB, alpha float64) {
	if alpha <= 0 {
		return
	}
	s.bg = bg
	if alpha >= 1 {
		clear(s.cells)
		return
	}
	keep := 1 - alpha
	for i := range s.cells {
		c := &s.cells[i]
		if c.r == 0 {
			continue
		}
		c.intensity *= keep
		if c.intensity < minIntensity {
			*c = cell{}
			continue
		}
		c.fg = render.Blend(c.fg, bg, alpha)
	}
}

// DrawGlyph composites g into the cell containing its center
func (s *Surface) DrawGlyph(g render.Glyph) {
	if g.Alpha <= 0 || math.IsNaN(g.X) || math.IsNaN(g.Y) {
		return
	}
	col := int(math.Floor(g.X / s.cellSize))
	row := int(math.Floor(g.Y / s.cellSize))
	if col < 0 || row < 0 || col >= s.cols || row >= s.rows {
		return
	}

	alpha := min(1, g.Alpha)
	c := &s.cells[row*s.cols+col]
	base := c.fg
	if c.r == 0 {
		base = s.bg
	}
	c.r = Narrow(g.Rune)
	c.fg = render.Blend(base, g.Color, alpha)
	c.intensity = max(c.intensity, alpha)
}

// Present writes the grid to the screen and shows it
func (s *Surface) Present() error {
	bg := toColor(s.bg, s.mode)
	blank := tcell.StyleDefault.Background(bg)
	cols, rows := s.screen.Size()

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			if x >= s.cols || y >= s.rows {
				s.screen.SetContent(x, y, ' ', nil, blank)
				continue
			}
			c := s.cells[y*s.cols+x]
			if c.r == 0 {
				s.screen.SetContent(x, y, ' ', nil, blank)
				continue
			}
			s.screen.SetContent(x, y, c.r, nil, blank.Foreground(toColor(c.fg, s.mode)))
		}
	}
	s.screen.Show()
	s.frames++
	return nil
}

// Frames returns the number of presented frames
func (s *Surface) Frames() int {
	return s.frames
}

// Narrow maps r to a single-cell rune, full-width forms use their half-width counterparts
func Narrow(r rune) rune {
	p := width.LookupRune(r)
	switch p.Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		if n := p.Narrow(); n != 0 {
			return n
		}
		return rune(fallbackGlyphs[uint32(r)%uint32(len(fallbackGlyphs))])
	}
	return r
}

var _ render.Surface = (*Surface)(nil)
