// Package raster implements the render capabilities on a gg software canvas
package raster

import (
	"fmt"
	"math"
	"sync"

	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
)

// fallbackGlyphs replace runes the loaded font cannot draw
const fallbackGlyphs = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

var (
	monoSource = sync.OnceValues(func() (*text.FontSource, error) {
		return text.NewFontSource(gomono.TTF)
	})
	boldSource = sync.OnceValues(func() (*text.FontSource, error) {
		return text.NewFontSource(gobold.TTF)
	})
)

// MonoFont returns the bundled monospace source used for rain glyphs
func MonoFont() (*text.FontSource, error) {
	src, err := monoSource()
	if err != nil {
		return nil, fmt.Errorf("raster: load mono font: %w", err)
	}
	return src, nil
}

// BoldFont returns the bundled bold source used for mask text
func BoldFont() (*text.FontSource, error) {
	src, err := boldSource()
	if err != nil {
		return nil, fmt.Errorf("raster: load bold font: %w", err)
	}
	return src, nil
}

// LoadFont reads a TrueType or OpenType file
func LoadFont(path string) (*text.FontSource, error) {
	src, err := text.NewFontSourceFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("raster: load font %s: %w", path, err)
	}
	return src, nil
}

// faceCache memoizes faces per half-pixel size
type faceCache struct {
	source *text.FontSource
	faces  map[float64]text.Face
}

func newFaceCache(source *text.FontSource) *faceCache {
	return &faceCache{source: source, faces: make(map[float64]text.Face)}
}

func (c *faceCache) face(size float64) text.Face {
	key := math.Max(1, math.Round(size*2)/2)
	f, ok := c.faces[key]
	if !ok {
		f = c.source.Face(key)
		c.faces[key] = f
	}
	return f
}

// drawable maps r to a rune the face can render
func drawable(face text.Face, r rune) rune {
	if face.HasGlyph(r) {
		return r
	}
	return rune(fallbackGlyphs[uint32(r)%uint32(len(fallbackGlyphs))])
}
