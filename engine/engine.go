// Package engine orchestrates the rain field, text reveal and subliminal overlay per tick
package engine

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/lixenwraith/rainfield/field"
	"github.com/lixenwraith/rainfield/mask"
	"github.com/lixenwraith/rainfield/palette"
	"github.com/lixenwraith/rainfield/render"
	"github.com/lixenwraith/rainfield/reveal"
	"github.com/lixenwraith/rainfield/subliminal"
	"github.com/lixenwraith/rainfield/vmath"
)

// Engine is the single owner of all animation state
// Not safe for concurrent use, hosts serialize calls through a Runner
type Engine struct {
	opts Options
	rng  *vmath.FastRand

	surface  render.Surface
	field    *field.Field
	builder  *mask.Builder
	timeline *reveal.Timeline
	subs     *subliminal.Scheduler

	viewport      Viewport
	viewportValid bool
	scale         float64
	reduced       bool
	lines         []string

	// Masks are swapped whole, nil entries sample as 0
	masks        []*mask.TextMask
	maskPending  bool
	maskDueAt    float64
	readbackWarn bool

	elapsed      float64
	revealOrigin float64

	boostStart float64
	boostDur   float64

	idleReported float64
	idleAt       float64
	idleKnown    bool // False until the host sends its first idle signal

	visible     bool
	dimPending  bool
	staticDone  bool
	initialized bool
	paints      int
	presentErr  bool

	slots     []field.Slot
	strengths []float64
}

// New creates an engine, call Init before ticking
func New(opts Options) (*Engine, error) {
	rng := vmath.NewFastRand(opts.Seed)
	subs, err := subliminal.New(opts.Subliminal, opts.Catalog, rng)
	if err != nil {
		return nil, fmt.Errorf("engine: subliminal scheduler: %w", err)
	}
	if opts.MaxDelta <= 0 {
		opts.MaxDelta = DefaultOptions().MaxDelta
	}
	if opts.BoostPeak < 1 {
		opts.BoostPeak = 1
	}

	e := &Engine{
		opts:    opts,
		rng:     rng,
		field:   field.New(opts.Field, rng),
		subs:    subs,
		scale:   MinScale,
		visible: true,
	}
	if opts.Canvas != nil {
		e.builder = mask.NewBuilder(opts.Canvas, opts.Layout)
	}
	return e, nil
}

// NormalizeLines trims lines, drops blanks and falls back to DefaultLines
func NormalizeLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), DefaultLines...)
	}
	return out
}

// ClampScale bounds the device pixel ratio to [MinScale, MaxScale]
func ClampScale(scale float64) float64 {
	if math.IsNaN(scale) {
		return MinScale
	}
	return vmath.Clamp(scale, MinScale, MaxScale)
}

// Init binds the surface and starts a fresh session, callable again to restart
func (e *Engine) Init(surface render.Surface, viewport Viewport, scale float64, reducedMotion bool, lines []string) {
	if surface == nil {
		Logger().Warn("init without surface ignored")
		return
	}
	e.surface = surface
	e.reduced = reducedMotion
	e.lines = NormalizeLines(lines)
	e.elapsed = 0
	e.revealOrigin = 0
	e.boostDur = 0
	e.idleReported, e.idleAt, e.idleKnown = 0, 0, false
	e.visible = true
	e.dimPending = false
	e.staticDone = false
	e.paints = 0
	e.subs.Reset()
	e.timeline = reveal.New(e.opts.Reveal, e.lines, e.reduced)
	e.strengths = make([]float64, len(e.lines))
	e.initialized = true

	e.applyGeometry(viewport, scale)
	e.rebuildMasks()

	Logger().Info("engine initialized",
		"width", e.viewport.Width,
		"height", e.viewport.Height,
		"scale", e.scale,
		"reduced_motion", e.reduced,
		"lines", len(e.lines),
		"columns", e.field.Count())
}

// applyGeometry rebuilds columns and the surface for a new viewport, masks are dropped
func (e *Engine) applyGeometry(viewport Viewport, scale float64) {
	e.viewportValid = viewport.valid()
	if !e.viewportValid {
		Logger().Warn("invalid viewport clamped", "width", viewport.Width, "height", viewport.Height)
	}
	e.viewport = viewport.clamped()
	e.scale = ClampScale(scale)

	e.field.Rebuild(float64(e.viewport.Width), float64(e.viewport.Height), e.opts.Field.Spacing)
	e.subs.SetRowPitch(e.field.Spacing())
	e.subs.Clamp(e.field.Count())

	dw, dh := mask.DeviceSize(e.viewport.Width, e.viewport.Height, e.scale)
	e.surface.Resize(max(1, dw), max(1, dh), e.opts.Background)

	e.masks = mask.Disabled(len(e.lines))
}

// OnResize rebuilds columns immediately and schedules a debounced mask rebuild
func (e *Engine) OnResize(viewport Viewport, scale float64) {
	if !e.initialized {
		return
	}
	e.applyGeometry(viewport, scale)
	e.maskPending = true
	e.maskDueAt = e.elapsed + e.opts.MaskDebounce.Seconds()
	// The resized surface is cleared, reduced motion repaints its static frame once
	e.staticDone = false
	Logger().Debug("resize",
		"width", e.viewport.Width,
		"height", e.viewport.Height,
		"scale", e.scale,
		"columns", e.field.Count())
}

// OnVisibilityChange pauses ticking while hidden, one dimmed frame is painted on loss
func (e *Engine) OnVisibilityChange(visible bool) {
	if e.visible == visible {
		return
	}
	e.visible = visible
	e.dimPending = !visible
}

// OnIdleSignal records the host's viewer inactivity, in seconds
// Until the first signal after Init the viewer counts as active
func (e *Engine) OnIdleSignal(idleSeconds float64) {
	if math.IsNaN(idleSeconds) || idleSeconds < 0 {
		idleSeconds = 0
	}
	e.idleReported = idleSeconds
	e.idleAt = e.elapsed
	e.idleKnown = true
}

// IdleSeconds is the last reported inactivity extended by the time since the report
// 0 when the host has not reported since Init
func (e *Engine) IdleSeconds() float64 {
	if !e.idleKnown {
		return 0
	}
	return e.idleReported + (e.elapsed - e.idleAt)
}

// OnTextChange replaces the revealed text, restarting the reveal sequence
func (e *Engine) OnTextChange(lines []string) {
	if !e.initialized {
		return
	}
	e.lines = NormalizeLines(lines)
	e.timeline = reveal.New(e.opts.Reveal, e.lines, e.reduced)
	e.strengths = make([]float64, len(e.lines))
	e.revealOrigin = e.elapsed
	e.masks = mask.Disabled(len(e.lines))
	e.rebuildMasks()
	Logger().Info("text changed", "lines", len(e.lines))
}

// rebuildMasks builds into fresh buffers and swaps them in whole
func (e *Engine) rebuildMasks() {
	e.maskPending = false
	if e.builder == nil || !e.viewportValid {
		e.masks = mask.Disabled(len(e.lines))
		return
	}

	masks, err := e.builder.Build(e.lines, e.viewport.Width, e.viewport.Height, e.scale)
	switch {
	case errors.Is(err, mask.ErrReadbackDenied):
		if !e.readbackWarn {
			Logger().Warn("pixel readback denied, reveal disabled")
			e.readbackWarn = true
		}
	case err != nil:
		Logger().Warn("mask build failed", "error", err)
	}
	e.masks = masks
}

// Tick advances the animation by dt seconds and paints one frame
// Returns false when the host should stop requesting ticks
func (e *Engine) Tick(dt float64) bool {
	if !e.initialized {
		return false
	}

	if e.reduced {
		if !e.staticDone {
			e.paint()
			e.staticDone = true
		}
		return false
	}

	if !e.visible {
		if e.dimPending {
			e.surface.Fade(e.opts.Background, e.opts.HiddenDim)
			e.present()
			e.dimPending = false
		}
		return false
	}

	if math.IsNaN(dt) || dt < 0 {
		dt = 0
	}
	dt = math.Min(dt, e.opts.MaxDelta.Seconds())
	e.elapsed += dt

	e.field.Advance(dt, e.BoostMultiplier())

	if e.maskPending && e.elapsed >= e.maskDueAt {
		e.rebuildMasks()
	}

	if n := e.subs.MaybeSpawn(e.elapsed, e.IdleSeconds(), e.field.Count()); n > 0 {
		Logger().Debug("subliminal spawned", "messages", n, "live", e.subs.Live())
	}
	e.subs.Advance(dt, float64(e.viewport.Height))

	e.surface.Fade(e.opts.Background, e.opts.FadeAlpha)
	e.paint()
	return true
}

// paint composites every visible glyph slot and presents the frame
func (e *Engine) paint() {
	t := e.elapsed
	rt := t - e.revealOrigin
	for i := range e.strengths {
		e.strengths[i] = e.timeline.StrengthAt(i, rt) * e.timeline.BreathAt(i, rt)
	}

	boost := e.boostFraction()
	brighten := 1 + e.opts.BoostBrightness*boost
	size := e.field.Spacing() * e.scale

	for i := 0; i < e.field.Count(); i++ {
		base := e.field.ColorFor(i, t)
		e.slots = e.field.AppendGlyphSlots(e.slots[:0], i, t)

		for _, s := range e.slots {
			dx, dy := s.X*e.scale, s.Y*e.scale

			influence := 0.0
			for li, m := range e.masks {
				if a := mask.Sample(m, dx, dy); a > 0 {
					influence = math.Max(influence, float64(a)/255*e.strengths[li])
				}
			}

			col := base
			alpha := s.Alpha
			if influence > 0 {
				col = col.Highlight(influence)
				alpha = vmath.Lerp(alpha, 1, influence)
			}
			if boost > 0 {
				col = col.Brighten(brighten)
			}

			glyph := s.Glyph
			if g, a, ok := e.subs.GlyphAt(i, s.Row, t); ok {
				glyph, alpha = g, a
			}

			e.surface.DrawGlyph(render.Glyph{
				Rune:  glyph,
				X:     dx,
				Y:     dy,
				Size:  size,
				Color: col.RGB(),
				Alpha: alpha,
			})
		}
	}
	e.present()
}

// present flushes the surface, failures are logged once per streak
func (e *Engine) present() {
	e.paints++
	if err := e.surface.Present(); err != nil {
		if !e.presentErr {
			Logger().Warn("present failed", "error", err)
			e.presentErr = true
		}
		return
	}
	e.presentErr = false
}

// Compile-time check
var _ Scheduler = (*Engine)(nil)

// Elapsed returns the animation time in seconds
func (e *Engine) Elapsed() float64 {
	return e.elapsed
}

// Paints returns the number of frames presented since Init
func (e *Engine) Paints() int {
	return e.paints
}

// Columns returns the current column count
func (e *Engine) Columns() int {
	return e.field.Count()
}

// Scale returns the effective device pixel ratio
func (e *Engine) Scale() float64 {
	return e.scale
}

// Lines returns the text currently revealed
func (e *Engine) Lines() []string {
	return append([]string(nil), e.lines...)
}

// Timeline returns the active reveal schedule
func (e *Engine) Timeline() *reveal.Timeline {
	return e.timeline
}

// RevealStrength returns a line's current reveal strength
func (e *Engine) RevealStrength(line int) float64 {
	if e.timeline == nil {
		return 0
	}
	return e.timeline.StrengthAt(line, e.elapsed-e.revealOrigin)
}

// RevealPhase returns a line's current reveal phase
func (e *Engine) RevealPhase(line int) reveal.Phase {
	if e.timeline == nil {
		return reveal.Idle
	}
	return e.timeline.StateAt(line, e.elapsed-e.revealOrigin).Phase
}

// Masks returns the current mask set, nil entries are disabled
func (e *Engine) Masks() []*mask.TextMask {
	return append([]*mask.TextMask(nil), e.masks...)
}

// MaskPending reports whether a debounced rebuild is outstanding
func (e *Engine) MaskPending() bool {
	return e.maskPending
}

// Subliminal exposes the overlay scheduler for status reporting
func (e *Engine) Subliminal() *subliminal.Scheduler {
	return e.subs
}

// ColumnColor returns column i's color at the current time
func (e *Engine) ColumnColor(i int) palette.HSL {
	return e.field.ColorFor(i, e.elapsed)
}
