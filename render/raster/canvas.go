package raster

import (
	"image"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"

	"github.com/lixenwraith/rainfield/render"
)

// Canvas is an off-screen text raster whose alpha channel feeds the mask builder
type Canvas struct {
	ctx   *gg.Context
	faces *faceCache
}

// NewCanvasFactory returns a factory drawing with source, nil uses the bundled bold font
func NewCanvasFactory(source *text.FontSource) render.CanvasFactory {
	return func(width, height int) (render.TextCanvas, error) {
		src := source
		if src == nil {
			var err error
			if src, err = BoldFont(); err != nil {
				return nil, err
			}
		}
		return &Canvas{
			ctx:   gg.NewContext(max(1, width), max(1, height)),
			faces: newFaceCache(src),
		}, nil
	}
}

// FillText draws text in opaque white, centered at x with cap-height middle at y
func (c *Canvas) FillText(s string, x, y float64, font render.Font) {
	face := c.faces.face(font.Size)
	c.ctx.SetFont(face)
	c.ctx.SetRGBA(1, 1, 1, 1)
	w := face.Advance(s)
	c.ctx.DrawString(s, x-w/2, y+face.Metrics().CapHeight/2)
}

// MeasureText returns the advance width in pixels
func (c *Canvas) MeasureText(s string, font render.Font) float64 {
	return c.faces.face(font.Size).Advance(s)
}

// ReadAlphaChannel copies the alpha plane in row-major order
func (c *Canvas) ReadAlphaChannel() ([]byte, error) {
	_ = c.ctx.FlushGPU()
	img := c.ctx.Image()
	b := img.Bounds()
	out := make([]byte, b.Dx()*b.Dy())

	if rgba, ok := img.(*image.RGBA); ok {
		for y := 0; y < b.Dy(); y++ {
			row := rgba.Pix[y*rgba.Stride:]
			for x := 0; x < b.Dx(); x++ {
				out[y*b.Dx()+x] = row[x*4+3]
			}
		}
		return out, nil
	}

	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			_, _, _, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			out[y*b.Dx()+x] = uint8(a >> 8)
		}
	}
	return out, nil
}

var _ render.TextCanvas = (*Canvas)(nil)
