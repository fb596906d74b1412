package raster

import (
	"fmt"
	"image"
	"io"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"

	"github.com/lixenwraith/rainfield/render"
)

// Surface paints glyphs into an in-memory gg context
type Surface struct {
	ctx    *gg.Context
	faces  *faceCache
	frames int
}

// NewSurface creates a surface drawing rain glyphs with source, nil uses the bundled mono font
func NewSurface(width, height int, source *text.FontSource) (*Surface, error) {
	if source == nil {
		var err error
		if source, err = MonoFont(); err != nil {
			return nil, err
		}
	}
	s := &Surface{
		ctx:   gg.NewContext(max(1, width), max(1, height)),
		faces: newFaceCache(source),
	}
	s.ctx.ClearWithColor(toGG(render.Background, 1))
	return s, nil
}

func toGG(c render.RGB, alpha float64) gg.RGBA {
	return gg.RGBA2(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255, alpha)
}

func setColor(ctx *gg.Context, c render.RGB, alpha float64) {
	ctx.SetRGBA(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255, alpha)
}

// Size returns the pixel dimensions
func (s *Surface) Size() (int, int) {
	return s.ctx.Width(), s.ctx.Height()
}

// Resize reallocates the pixel buffer and clears it to bg
func (s *Surface) Resize(width, height int, bg render.RGB) {
	if err := s.ctx.Resize(max(1, width), max(1, height)); err != nil {
		s.ctx = gg.NewContext(max(1, width), max(1, height))
	}
	s.ctx.ClearWithColor(toGG(bg, 1))
}

// Fade composites a translucent bg rectangle over the frame
func (s *Surface) Fade(bg render.RGB, alpha float64) {
	if alpha <= 0 {
		return
	}
	if alpha >= 1 {
		s.ctx.ClearWithColor(toGG(bg, 1))
		return
	}
	setColor(s.ctx, bg, alpha)
	s.ctx.DrawRectangle(0, 0, float64(s.ctx.Width()), float64(s.ctx.Height()))
	_ = s.ctx.Fill()
}

// DrawGlyph draws one glyph centered on its cell
func (s *Surface) DrawGlyph(g render.Glyph) {
	if g.Alpha <= 0 || g.Size <= 0 {
		return
	}
	face := s.faces.face(g.Size)
	str := string(drawable(face, g.Rune))
	m := face.Metrics()

	s.ctx.SetFont(face)
	setColor(s.ctx, g.Color, min(1, g.Alpha))
	w := face.Advance(str)
	s.ctx.DrawString(str, g.X-w/2, g.Y+m.CapHeight/2)
}

// Present flushes pending accelerator work into the pixel buffer
func (s *Surface) Present() error {
	s.frames++
	if err := s.ctx.FlushGPU(); err != nil {
		return fmt.Errorf("raster: flush: %w", err)
	}
	return nil
}

// Frames returns the number of presented frames
func (s *Surface) Frames() int {
	return s.frames
}

// Image returns the current frame
func (s *Surface) Image() image.Image {
	return s.ctx.Image()
}

// SavePNG writes the current frame to path
func (s *Surface) SavePNG(path string) error {
	if err := s.ctx.SavePNG(path); err != nil {
		return fmt.Errorf("raster: save %s: %w", path, err)
	}
	return nil
}

// EncodePNG writes the current frame as PNG to w
func (s *Surface) EncodePNG(w io.Writer) error {
	return s.ctx.EncodePNG(w)
}

// Close releases the context
func (s *Surface) Close() error {
	return s.ctx.Close()
}

var _ render.Surface = (*Surface)(nil)
