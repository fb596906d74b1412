// Package field owns the arena of falling glyph columns
package field

import (
	"math"

	"github.com/lixenwraith/rainfield/palette"
	"github.com/lixenwraith/rainfield/vmath"
)

// DefaultAlphabet mixes katakana, digits and Latin capitals
const DefaultAlphabet = "アァカサタナハマヤャラワン0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// MinSpacing is the floor applied to a non-positive or tiny column spacing
const MinSpacing = 4.0

// ticksPerSecond normalizes speeds so they read as "pixels per 60Hz frame"
const ticksPerSecond = 60.0

// Config tunes the field, all lengths are logical pixels
type Config struct {
	Spacing     float64 // Column width and vertical glyph pitch
	TrailLength int     // Glyphs per stream including the head
	SpeedMin    float64 // Fall speed range, pixels per normalized tick
	SpeedMax    float64
	Margin      float64 // Distance past the bottom edge before a column wraps, 0 = trail length
	FlickerRate float64 // Glyph swaps per second per slot
	Alphabet    []rune
}

// DefaultConfig returns the stock rain tuning
func DefaultConfig() Config {
	return Config{
		Spacing:     14,
		TrailLength: 14,
		SpeedMin:    1.6,
		SpeedMax:    5.2,
		FlickerRate: 6,
		Alphabet:    []rune(DefaultAlphabet),
	}
}

// Column is one vertical glyph stream, stored by value in the field arena
type Column struct {
	X            float64 // Center of the column slot
	Y            float64 // Head position
	FallSpeed    float64
	Hue          float64
	HueDriftRate float64
	Saturation   float64
	Lightness    float64
	Phase        float64
}

// Tone returns the column's color identity
func (c Column) Tone() palette.Tone {
	return palette.Tone{
		Hue:        c.Hue,
		DriftRate:  c.HueDriftRate,
		Saturation: c.Saturation,
		Lightness:  c.Lightness,
		Phase:      c.Phase,
	}
}

// Slot is one glyph draw position produced for a column
type Slot struct {
	X, Y  float64
	Row   int // Grid row, floor(Y / spacing)
	Trail int // 0 is the head
	Alpha float64
	Glyph rune
}

// Field is the column arena, not safe for concurrent use
type Field struct {
	cfg     Config
	rng     vmath.Source
	columns []Column
	width   float64
	height  float64
}

// New creates an empty field, call Rebuild before use
func New(cfg Config, rng vmath.Source) *Field {
	if cfg.TrailLength < 1 {
		cfg.TrailLength = 1
	}
	if cfg.SpeedMax < cfg.SpeedMin {
		cfg.SpeedMin, cfg.SpeedMax = cfg.SpeedMax, cfg.SpeedMin
	}
	if len(cfg.Alphabet) == 0 {
		cfg.Alphabet = []rune(DefaultAlphabet)
	}
	cfg.Spacing = sanitizeSpacing(cfg.Spacing)
	return &Field{cfg: cfg, rng: rng}
}

// sanitizeSpacing guards against zero, negative and NaN spacing
func sanitizeSpacing(s float64) float64 {
	if math.IsNaN(s) || s < MinSpacing {
		return MinSpacing
	}
	return s
}

// ColumnCount returns ceil(width/spacing)+1, never less than 1
func ColumnCount(width, spacing float64) int {
	spacing = sanitizeSpacing(spacing)
	if width < 1 || math.IsNaN(width) {
		width = 1
	}
	return max(1, vmath.CeilDiv(width, spacing)+1)
}

// Rebuild discards every column and reinitializes for the new geometry
func (f *Field) Rebuild(width, height, spacing float64) {
	f.cfg.Spacing = sanitizeSpacing(spacing)
	f.width = math.Max(1, width)
	f.height = math.Max(1, height)

	n := ColumnCount(f.width, f.cfg.Spacing)
	f.columns = make([]Column, n)
	for i := range f.columns {
		tone := palette.Assign(f.rng)
		f.columns[i] = Column{
			X:            float64(i)*f.cfg.Spacing + f.cfg.Spacing/2,
			Y:            vmath.Range(f.rng, -0.8*f.height, f.height),
			FallSpeed:    f.randomSpeed(),
			Hue:          tone.Hue,
			HueDriftRate: tone.DriftRate,
			Saturation:   tone.Saturation,
			Lightness:    tone.Lightness,
			Phase:        tone.Phase,
		}
	}
}

func (f *Field) randomSpeed() float64 {
	return vmath.Range(f.rng, f.cfg.SpeedMin, f.cfg.SpeedMax)
}

// margin is the overshoot allowed past the bottom edge, long enough for the trail to clear
func (f *Field) margin() float64 {
	if f.cfg.Margin > 0 {
		return f.cfg.Margin
	}
	return float64(f.cfg.TrailLength) * f.cfg.Spacing
}

// Advance moves every column by dt seconds, speedMul scales fall speed (boost)
// Columns leaving the bottom restart above the top with a new random speed
func (f *Field) Advance(dt, speedMul float64) {
	if dt <= 0 {
		return
	}
	step := dt * ticksPerSecond * speedMul
	limit := f.height + f.margin()
	for i := range f.columns {
		c := &f.columns[i]
		c.Y += c.FallSpeed * step
		if c.Y > limit {
			c.Y = -vmath.Range(f.rng, 0, 0.4*f.height)
			c.FallSpeed = f.randomSpeed()
		}
	}
}

// GlyphSlots returns the head and trailing draw positions for column i at time t
func (f *Field) GlyphSlots(i int, t float64) []Slot {
	return f.AppendGlyphSlots(nil, i, t)
}

// AppendGlyphSlots appends column i's visible slots to dst, reusing its capacity
// Trailing glyphs fade linearly, slots fully off-field are skipped
func (f *Field) AppendGlyphSlots(dst []Slot, i int, t float64) []Slot {
	if i < 0 || i >= len(f.columns) {
		return dst
	}
	c := f.columns[i]
	sp := f.cfg.Spacing
	trail := f.cfg.TrailLength
	bucket := uint32(int64(math.Floor(t*f.cfg.FlickerRate + c.Phase)))

	for k := 0; k < trail; k++ {
		y := c.Y - float64(k)*sp
		if y < -sp || y > f.height+sp {
			continue
		}
		row := int(math.Floor(y / sp))
		dst = append(dst, Slot{
			X:     c.X,
			Y:     y,
			Row:   row,
			Trail: k,
			Alpha: 1 - float64(k)/float64(trail),
			Glyph: f.glyphAt(i, row, bucket),
		})
	}
	return dst
}

// glyphAt picks a glyph that stays put within a grid cell and flickers per time bucket
func (f *Field) glyphAt(col, row int, bucket uint32) rune {
	h := vmath.Hash32(uint32(col), uint32(row), bucket)
	return f.cfg.Alphabet[h%uint32(len(f.cfg.Alphabet))]
}

// ColorFor is the column-index form of the color model
func (f *Field) ColorFor(i int, t float64) palette.HSL {
	if i < 0 || i >= len(f.columns) {
		return palette.HSL{}
	}
	return palette.ColorFor(f.columns[i].Tone(), t)
}

// Count returns the current number of columns
func (f *Field) Count() int {
	return len(f.columns)
}

// Column returns a copy of column i, the zero Column when out of range
func (f *Field) Column(i int) Column {
	if i < 0 || i >= len(f.columns) {
		return Column{}
	}
	return f.columns[i]
}

// Spacing returns the effective column spacing
func (f *Field) Spacing() float64 {
	return f.cfg.Spacing
}

// Bounds returns the field geometry set by the last Rebuild
func (f *Field) Bounds() (width, height float64) {
	return f.width, f.height
}

// ColumnAt maps an x coordinate to its column index, -1 when outside
func (f *Field) ColumnAt(x float64) int {
	i := int(math.Floor(x / f.cfg.Spacing))
	if i < 0 || i >= len(f.columns) {
		return -1
	}
	return i
}
