package terminal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/sync/errgroup"

	"github.com/lixenwraith/rainfield/audio"
	"github.com/lixenwraith/rainfield/core"
	"github.com/lixenwraith/rainfield/engine"
)

// errQuit unwinds the host goroutines on a quit key
var errQuit = errors.New("terminal: quit")

// Sounder plays interaction cues
type Sounder interface {
	Play(sound audio.SoundType) bool
}

type silent struct{}

func (silent) Play(audio.SoundType) bool { return false }

// HostConfig controls the interactive terminal host
type HostConfig struct {
	FPS           int
	CellSize      float64 // Device pixels per cell, match the field spacing
	ColorMode     ColorMode
	ReducedMotion bool
	Mouse         bool
	BoostMs       float64
	IdleInterval  time.Duration // Cadence of idle reports to the engine
	Lines         []string
}

// DefaultHostConfig returns the stock host settings
func DefaultHostConfig() HostConfig {
	return HostConfig{
		FPS:          30,
		CellSize:     14,
		BoostMs:      500,
		IdleInterval: 250 * time.Millisecond,
	}
}

// Host runs an engine on a tcell screen, translating terminal events into engine signals
type Host struct {
	screen  tcell.Screen
	eng     *engine.Engine
	runner  *engine.Runner
	surface *Surface
	sound   Sounder
	idle    *IdleTracker
	cfg     HostConfig
	ready   chan struct{}

	// Owned by the runner goroutine
	spawned int
}

// NewHost wires eng to screen, sound may be nil
func NewHost(screen tcell.Screen, eng *engine.Engine, cfg HostConfig, sound Sounder, clock engine.Clock) *Host {
	def := DefaultHostConfig()
	if cfg.FPS <= 0 {
		cfg.FPS = def.FPS
	}
	if cfg.CellSize < 1 {
		cfg.CellSize = def.CellSize
	}
	if cfg.IdleInterval <= 0 {
		cfg.IdleInterval = def.IdleInterval
	}
	if sound == nil {
		sound = silent{}
	}
	if clock == nil {
		clock = engine.NewTimeProvider()
	}
	return &Host{
		screen: screen,
		eng:    eng,
		runner: engine.NewRunner(eng, clock, cfg.FPS),
		sound:  sound,
		idle:   NewIdleTracker(clock),
		cfg:    cfg,
		ready:  make(chan struct{}),
	}
}

// Started is closed once the engine is initialized and ticking
func (h *Host) Started() <-chan struct{} {
	return h.ready
}

// viewport converts the screen grid to device pixels
func (h *Host) viewport() engine.Viewport {
	cols, rows := h.screen.Size()
	return engine.Viewport{
		Width:  int(float64(cols) * h.cfg.CellSize),
		Height: int(float64(rows) * h.cfg.CellSize),
	}
}

// SetLines replaces the revealed text, safe from any goroutine
func (h *Host) SetLines(lines []string) {
	h.runner.Do(func() { h.eng.OnTextChange(lines) })
}

// Run initializes the screen and blocks until a quit key or ctx cancellation
func (h *Host) Run(ctx context.Context) error {
	if err := h.screen.Init(); err != nil {
		return fmt.Errorf("terminal: init screen: %w", err)
	}
	core.SetCrashHook(h.screen.Fini)
	defer func() {
		core.SetCrashHook(nil)
		h.screen.Fini()
	}()

	h.screen.HideCursor()
	h.screen.EnableFocus()
	if h.cfg.Mouse {
		h.screen.EnableMouse(tcell.MouseMotionEvents)
	}

	h.surface = NewSurface(h.screen, h.cfg.CellSize, h.cfg.ColorMode)
	engine.Logger().Info("terminal host started",
		"color_mode", h.surface.Mode().String(),
		"fps", h.cfg.FPS)

	vp := h.viewport()
	h.runner.Do(func() {
		h.eng.Init(h.surface, vp, engine.MinScale, h.cfg.ReducedMotion, h.cfg.Lines)
	})
	h.runner.Start()
	defer h.runner.Stop()
	close(h.ready)

	g, gctx := errgroup.WithContext(ctx)
	events := make(chan tcell.Event, 64)
	quit := make(chan struct{})

	g.Go(guarded(func() error {
		h.screen.ChannelEvents(events, quit)
		return nil
	}))
	g.Go(guarded(func() error {
		<-gctx.Done()
		close(quit)
		return nil
	}))
	g.Go(guarded(func() error {
		return h.dispatch(gctx, events)
	}))

	if err := g.Wait(); err != nil && !errors.Is(err, errQuit) {
		return err
	}
	return nil
}

// dispatch routes screen events and reports idle time until ctx ends
func (h *Host) dispatch(ctx context.Context, events <-chan tcell.Event) error {
	ticker := time.NewTicker(h.cfg.IdleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if h.handle(ev) {
				return errQuit
			}
		case <-ticker.C:
			h.reportIdle()
		}
	}
}

// handle applies one event and reports whether the host should quit
func (h *Host) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if isQuit(ev) {
			return true
		}
		h.idle.Touch()
		h.runner.Do(func() {
			h.eng.OnIdleSignal(0)
			h.eng.TriggerBoost(h.cfg.BoostMs)
		})
		h.sound.Play(audio.SoundChime)

	case *tcell.EventResize:
		h.runner.Do(func() {
			h.screen.Sync()
			h.eng.OnResize(h.viewport(), engine.MinScale)
		})

	case *tcell.EventFocus:
		if ev.Focused {
			h.idle.Touch()
		}
		h.runner.Do(func() { h.eng.OnVisibilityChange(ev.Focused) })

	case *tcell.EventMouse:
		h.idle.Touch()
		h.runner.Do(func() { h.eng.OnIdleSignal(0) })
	}
	return false
}

// reportIdle forwards idle time and sounds a whisper for each new subliminal spawn
func (h *Host) reportIdle() {
	secs := h.idle.Seconds()
	h.runner.Do(func() {
		h.eng.OnIdleSignal(secs)
		if n := h.eng.Subliminal().Spawned(); n > h.spawned {
			h.spawned = n
			h.sound.Play(audio.SoundWhisper)
		}
	})
}

func isQuit(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return ev.Rune() == 'q' || ev.Rune() == 'Q'
	}
	return false
}

// guarded restores the terminal before reporting a panic in fn
func guarded(fn func() error) func() error {
	return func() error {
		defer func() {
			if r := recover(); r != nil {
				core.HandleCrash(r)
			}
		}()
		return fn()
	}
}
