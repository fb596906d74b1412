// Package subliminal injects rare, short-lived phrases into the rain grid
package subliminal

import (
	"fmt"
	"math"
	"time"

	"github.com/lixenwraith/rainfield/vmath"
	"github.com/lixenwraith/rainfield/weighted"
)

// ticksPerSecond matches the field's normalized speed unit
const ticksPerSecond = 60.0

// Config tunes spawning, placement and the pulse envelope
type Config struct {
	Cap           int
	IdleThreshold time.Duration // Viewer inactivity required before spawning or showing
	SideBias      float64       // Probability of peripheral placement

	EarlyWindow      time.Duration // Session age using the early interval range
	EarlyIntervalMin time.Duration
	EarlyIntervalMax time.Duration
	IntervalMin      time.Duration
	IntervalMax      time.Duration

	BaseAlpha     float64
	PulseAlpha    float64
	PulseDelayMin time.Duration // Offset of the pulse peak after birth
	PulseDelayMax time.Duration
	PulseWidth    time.Duration // Full width of the triangular pulse

	DescendMin float64 // Pixels per normalized tick, slower than rain
	DescendMax float64
	RowPitch   float64 // Vertical distance between stacked chunks, matches field spacing
	Margin     float64 // Distance past the bottom edge before removal
}

// DefaultConfig returns the stock scheduler tuning
func DefaultConfig() Config {
	return Config{
		Cap:              3,
		IdleThreshold:    4 * time.Second,
		SideBias:         0.7,
		EarlyWindow:      60 * time.Second,
		EarlyIntervalMin: 8 * time.Second,
		EarlyIntervalMax: 18 * time.Second,
		IntervalMin:      25 * time.Second,
		IntervalMax:      70 * time.Second,
		BaseAlpha:        0.10,
		PulseAlpha:       0.55,
		PulseDelayMin:    1 * time.Second,
		PulseDelayMax:    3 * time.Second,
		PulseWidth:       900 * time.Millisecond,
		DescendMin:       1.0,
		DescendMax:       1.5,
		RowPitch:         14,
		Margin:           40,
	}
}

// Placed is one message glyph bound to a field column
type Placed struct {
	Column int
	Glyph  rune
}

// Message is a live phrase chunk descending through the field
type Message struct {
	Glyphs       []Placed
	Y            float64
	DescendSpeed float64
	BaseAlpha    float64
	PulseAlpha   float64
	PulseAt      float64
	BornAt       float64
	Tier         string
	Text         string
}

// AlphaAt returns the triangular pulse envelope at time t
func (m *Message) AlphaAt(t, pulseWidth float64) float64 {
	if pulseWidth <= 0 {
		return m.BaseAlpha
	}
	k := vmath.Triangle((t - m.PulseAt) / (pulseWidth / 2))
	return m.BaseAlpha + (m.PulseAlpha-m.BaseAlpha)*k
}

// Span returns the first column and the number of columns the message covers
func (m *Message) Span() (start, n int) {
	if len(m.Glyphs) == 0 {
		return 0, 0
	}
	return m.Glyphs[0].Column, len(m.Glyphs)
}

// Scheduler owns the live message list, not safe for concurrent use
type Scheduler struct {
	cfg     Config
	catalog Catalog
	tiers   *weighted.Choice[int]
	rng     vmath.Source

	live       []Message
	nextSpawn  float64
	viewerIdle float64
	spawned    int
}

// New creates a scheduler, the first spawn is drawn from the early interval
func New(cfg Config, catalog Catalog, rng vmath.Source) (*Scheduler, error) {
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	items := make([]weighted.Item[int], len(catalog.Tiers))
	for i, t := range catalog.Tiers {
		items[i] = weighted.Item[int]{Value: i, Weight: t.Weight}
	}
	tiers, err := weighted.New(items)
	if err != nil {
		return nil, fmt.Errorf("subliminal: tier weights: %w", err)
	}

	s := &Scheduler{
		cfg:     sanitize(cfg),
		catalog: catalog.trimmed(),
		tiers:   tiers,
		rng:     rng,
	}
	s.nextSpawn = s.interval(0)
	return s, nil
}

func sanitize(cfg Config) Config {
	cfg.Cap = max(0, cfg.Cap)
	cfg.SideBias = vmath.Clamp01(cfg.SideBias)
	cfg.EarlyIntervalMax = max(cfg.EarlyIntervalMin, cfg.EarlyIntervalMax)
	cfg.IntervalMax = max(cfg.IntervalMin, cfg.IntervalMax)
	cfg.PulseDelayMax = max(cfg.PulseDelayMin, cfg.PulseDelayMax)
	cfg.BaseAlpha = vmath.Clamp01(cfg.BaseAlpha)
	cfg.PulseAlpha = vmath.Clamp01(cfg.PulseAlpha)
	if cfg.DescendMax < cfg.DescendMin {
		cfg.DescendMin, cfg.DescendMax = cfg.DescendMax, cfg.DescendMin
	}
	if cfg.RowPitch <= 0 {
		cfg.RowPitch = DefaultConfig().RowPitch
	}
	cfg.Margin = max(0, cfg.Margin)
	return cfg
}

// interval draws the next spawn delay, shorter during the early window
func (s *Scheduler) interval(t float64) float64 {
	if t < s.cfg.EarlyWindow.Seconds() {
		return vmath.Range(s.rng, s.cfg.EarlyIntervalMin.Seconds(), s.cfg.EarlyIntervalMax.Seconds())
	}
	return vmath.Range(s.rng, s.cfg.IntervalMin.Seconds(), s.cfg.IntervalMax.Seconds())
}

// SetRowPitch updates the vertical grid step after a field rebuild
func (s *Scheduler) SetRowPitch(pitch float64) {
	if pitch > 0 {
		s.cfg.RowPitch = pitch
	}
}

// MaybeSpawn spawns a phrase when the timer elapsed and the viewer is idle
// Returns the number of messages created, 0 at cap
func (s *Scheduler) MaybeSpawn(t, idleSeconds float64, columnCount int) int {
	s.viewerIdle = idleSeconds
	room := s.cfg.Cap - len(s.live)
	if room <= 0 || t < s.nextSpawn || columnCount < 1 {
		return 0
	}
	if idleSeconds < s.cfg.IdleThreshold.Seconds() {
		return 0
	}

	tierIdx := s.tiers.Pick(s.rng)
	tier := s.catalog.Tiers[tierIdx]
	phrase := tier.Phrases[s.rng.Intn(len(tier.Phrases))]

	chunks := Chunk(phrase, columnCount)
	if len(chunks) > room {
		chunks = chunks[:room]
	}

	widest := 0
	for _, c := range chunks {
		widest = max(widest, len([]rune(c)))
	}
	start := s.placement(columnCount, widest)

	speed := vmath.Range(s.rng, s.cfg.DescendMin, s.cfg.DescendMax)
	pulseAt := t + vmath.Range(s.rng, s.cfg.PulseDelayMin.Seconds(), s.cfg.PulseDelayMax.Seconds())
	bottom := -s.cfg.RowPitch

	for k, c := range chunks {
		runes := []rune(c)
		m := Message{
			Glyphs:       make([]Placed, len(runes)),
			Y:            bottom - float64(len(chunks)-1-k)*s.cfg.RowPitch,
			DescendSpeed: speed,
			BaseAlpha:    s.cfg.BaseAlpha,
			PulseAlpha:   s.cfg.PulseAlpha,
			PulseAt:      pulseAt,
			BornAt:       t,
			Tier:         tier.Name,
			Text:         c,
		}
		for j, r := range runes {
			m.Glyphs[j] = Placed{Column: start + j, Glyph: r}
		}
		s.live = append(s.live, m)
	}

	s.spawned += len(chunks)
	s.nextSpawn = t + s.interval(t)
	return len(chunks)
}

// placement picks the first column for a span, peripheral with SideBias else center weighted
func (s *Scheduler) placement(columns, span int) int {
	maxStart := max(0, columns-span)
	var center float64
	if vmath.Chance(s.rng, s.cfg.SideBias) {
		third := float64(columns) / 3
		if s.rng.Float64() < 0.5 {
			center = vmath.Range(s.rng, 0, third)
		} else {
			center = vmath.Range(s.rng, float64(columns)-third, float64(columns))
		}
	} else {
		center = (s.rng.Float64() + s.rng.Float64()) / 2 * float64(columns)
	}
	start := int(math.Round(center - float64(span)/2))
	return min(max(start, 0), maxStart)
}

// Advance moves messages down and drops those past the bottom margin
func (s *Scheduler) Advance(dt, height float64) {
	if dt <= 0 {
		return
	}
	limit := height + s.cfg.Margin
	kept := s.live[:0]
	for _, m := range s.live {
		m.Y += m.DescendSpeed * dt * ticksPerSecond
		if m.Y <= limit {
			kept = append(kept, m)
		}
	}
	clear(s.live[len(kept):])
	s.live = kept
}

// Clamp drops glyphs beyond a shrunken column count and removes emptied messages
func (s *Scheduler) Clamp(columnCount int) {
	kept := s.live[:0]
	for _, m := range s.live {
		n := 0
		for _, g := range m.Glyphs {
			if g.Column < columnCount {
				n++
			}
		}
		m.Glyphs = m.Glyphs[:n]
		if n > 0 {
			kept = append(kept, m)
		}
	}
	clear(s.live[len(kept):])
	s.live = kept
}

// Hidden reports whether overlays are suppressed because the viewer is active
func (s *Scheduler) Hidden() bool {
	return s.viewerIdle < s.cfg.IdleThreshold.Seconds()
}

// GlyphAt returns the overlay glyph and alpha for a column and grid row at time t
// Spaces stay transparent, nothing is returned while the viewer is active
func (s *Scheduler) GlyphAt(column, row int, t float64) (rune, float64, bool) {
	if s.Hidden() {
		return 0, 0, false
	}
	for i := range s.live {
		m := &s.live[i]
		if int(math.Floor(m.Y/s.cfg.RowPitch)) != row {
			continue
		}
		start, n := m.Span()
		j := column - start
		if j < 0 || j >= n {
			continue
		}
		if g := m.Glyphs[j].Glyph; g != ' ' {
			return g, m.AlphaAt(t, s.cfg.PulseWidth.Seconds()), true
		}
	}
	return 0, 0, false
}

// Live returns the current message count
func (s *Scheduler) Live() int {
	return len(s.live)
}

// Messages returns a copy of the live messages
func (s *Scheduler) Messages() []Message {
	out := make([]Message, len(s.live))
	copy(out, s.live)
	return out
}

// NextSpawn returns the scheduled spawn time in seconds
func (s *Scheduler) NextSpawn() float64 {
	return s.nextSpawn
}

// Spawned returns the total number of messages created
func (s *Scheduler) Spawned() int {
	return s.spawned
}

// Reset drops every live message and redraws the first spawn from the early interval
// Spawned keeps counting across resets
func (s *Scheduler) Reset() {
	clear(s.live)
	s.live = s.live[:0]
	s.nextSpawn = s.interval(0)
}
