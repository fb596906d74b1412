package terminal

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/rainfield/audio"
	"github.com/lixenwraith/rainfield/engine"
	"github.com/lixenwraith/rainfield/field"
	"github.com/lixenwraith/rainfield/render/raster"
)

// MockSounder counts requested cues
type MockSounder struct {
	mu    sync.Mutex
	plays map[audio.SoundType]int
}

func (m *MockSounder) Play(s audio.SoundType) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.plays == nil {
		m.plays = make(map[audio.SoundType]int)
	}
	m.plays[s]++
	return true
}

func (m *MockSounder) count(s audio.SoundType) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.plays[s]
}

type hostHarness struct {
	host   *Host
	eng    *engine.Engine
	screen tcell.SimulationScreen
	sound  *MockSounder
	cancel context.CancelFunc
	done   chan error
}

// startHost runs a host on a simulation screen and waits until it ticks
func startHost(t *testing.T, opts engine.Options, cfg HostConfig) *hostHarness {
	t.Helper()
	eng, err := engine.New(opts)
	require.NoError(t, err)

	screen := tcell.NewSimulationScreen("UTF-8")
	sound := &MockSounder{}
	h := NewHost(screen, eng, cfg, sound, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Run(ctx) }()

	select {
	case <-h.Started():
	case err := <-done:
		cancel()
		t.Fatalf("host exited early: %v", err)
	case <-time.After(2 * time.Second):
		cancel()
		t.Fatal("host did not start")
	}

	hh := &hostHarness{host: h, eng: eng, screen: screen, sound: sound, cancel: cancel, done: done}
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
		}
	})
	return hh
}

// inspect runs fn on the engine's loop goroutine
func (hh *hostHarness) inspect(fn func(e *engine.Engine)) {
	ch := make(chan struct{})
	hh.host.runner.Do(func() {
		fn(hh.eng)
		close(ch)
	})
	<-ch
}

func (hh *hostHarness) wait(t *testing.T) error {
	t.Helper()
	select {
	case err := <-hh.done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("host did not stop")
		return nil
	}
}

func hostOptions() engine.Options {
	opts := engine.DefaultOptions()
	opts.Seed = 7
	opts.Canvas = raster.NewCanvasFactory(nil)
	return opts
}

func fastHost() HostConfig {
	cfg := DefaultHostConfig()
	cfg.FPS = 120
	cfg.ColorMode = ColorModeTrueColor
	cfg.IdleInterval = 10 * time.Millisecond
	return cfg
}

func TestHostQuitKeys(t *testing.T) {
	keys := []struct {
		name string
		key  tcell.Key
		r    rune
	}{
		{"q", tcell.KeyRune, 'q'},
		{"Q", tcell.KeyRune, 'Q'},
		{"escape", tcell.KeyEscape, 0},
		{"ctrl-c", tcell.KeyCtrlC, 0},
	}
	for _, k := range keys {
		t.Run(k.name, func(t *testing.T) {
			hh := startHost(t, hostOptions(), fastHost())
			hh.screen.InjectKey(k.key, k.r, tcell.ModNone)
			assert.NoError(t, hh.wait(t))
		})
	}
}

func TestHostContextCancel(t *testing.T) {
	hh := startHost(t, hostOptions(), fastHost())
	hh.cancel()
	assert.NoError(t, hh.wait(t))
}

// TestHostInitializesEngineFromScreen verifies the viewport follows the cell grid
func TestHostInitializesEngineFromScreen(t *testing.T) {
	hh := startHost(t, hostOptions(), fastHost())
	cols, _ := hh.screen.Size()

	var columns int
	hh.inspect(func(e *engine.Engine) { columns = e.Columns() })
	assert.Equal(t, field.ColumnCount(float64(cols)*14, 14), columns)
}

func TestHostPaintsRain(t *testing.T) {
	hh := startHost(t, hostOptions(), fastHost())

	require.Eventually(t, func() bool {
		cells, _, _ := hh.screen.GetContents()
		for _, c := range cells {
			if len(c.Runes) > 0 && c.Runes[0] != ' ' {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
}

// TestHostKeyTriggersBoost checks a non-quit key boosts the engine and plays a chime
func TestHostKeyTriggersBoost(t *testing.T) {
	cfg := fastHost()
	cfg.BoostMs = 2000
	hh := startHost(t, hostOptions(), cfg)

	hh.screen.InjectKey(tcell.KeyRune, 'x', tcell.ModNone)
	require.Eventually(t, func() bool { return hh.sound.count(audio.SoundChime) == 1 }, time.Second, 5*time.Millisecond)

	var boost float64
	hh.inspect(func(e *engine.Engine) { boost = e.BoostMultiplier() })
	assert.Greater(t, boost, 1.0)
}

func TestHostResizeRebuildsColumns(t *testing.T) {
	hh := startHost(t, hostOptions(), fastHost())

	hh.screen.SetSize(40, 10)
	require.NoError(t, hh.screen.PostEvent(tcell.NewEventResize(40, 10)))

	want := field.ColumnCount(40*14, 14)
	require.Eventually(t, func() bool {
		var columns int
		hh.inspect(func(e *engine.Engine) { columns = e.Columns() })
		return columns == want
	}, 2*time.Second, 10*time.Millisecond)

	var cols, rows int
	hh.inspect(func(*engine.Engine) { cols, rows = hh.host.surface.Grid() })
	assert.Equal(t, 40, cols)
	assert.Equal(t, 10, rows)
}

// TestHostFocusLossPauses verifies painting stops while unfocused and resumes on focus
func TestHostFocusLossPauses(t *testing.T) {
	hh := startHost(t, hostOptions(), fastHost())
	paints := func() int {
		var n int
		hh.inspect(func(e *engine.Engine) { n = e.Paints() })
		return n
	}

	require.NoError(t, hh.screen.PostEvent(tcell.NewEventFocus(false)))
	require.Eventually(t, func() bool {
		before := paints()
		time.Sleep(50 * time.Millisecond)
		return paints() == before
	}, 2*time.Second, 10*time.Millisecond)

	paused := paints()
	require.NoError(t, hh.screen.PostEvent(tcell.NewEventFocus(true)))
	require.Eventually(t, func() bool { return paints() > paused }, 2*time.Second, 10*time.Millisecond)
}

// TestHostWhispersOnSubliminalSpawn forces immediate spawning and expects a whisper cue
func TestHostWhispersOnSubliminalSpawn(t *testing.T) {
	opts := hostOptions()
	opts.Subliminal.IdleThreshold = 0
	opts.Subliminal.EarlyIntervalMin = 10 * time.Millisecond
	opts.Subliminal.EarlyIntervalMax = 20 * time.Millisecond
	hh := startHost(t, opts, fastHost())

	require.Eventually(t, func() bool { return hh.sound.count(audio.SoundWhisper) > 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Zero(t, hh.sound.count(audio.SoundChime))
}

func TestHostReducedMotionStillQuits(t *testing.T) {
	cfg := fastHost()
	cfg.ReducedMotion = true
	hh := startHost(t, hostOptions(), cfg)

	var paints int
	require.Eventually(t, func() bool {
		hh.inspect(func(e *engine.Engine) { paints = e.Paints() })
		return paints == 1
	}, time.Second, 5*time.Millisecond)

	hh.screen.InjectKey(tcell.KeyEscape, 0, tcell.ModNone)
	assert.NoError(t, hh.wait(t))
	assert.Equal(t, 1, paints)
}

func TestIdleTracker(t *testing.T) {
	clock := engine.NewMockTimeProvider(time.Unix(50, 0))
	idle := NewIdleTracker(clock)

	clock.Advance(1500 * time.Millisecond)
	assert.InDelta(t, 1.5, idle.Seconds(), 1e-9)

	idle.Touch()
	assert.Zero(t, idle.Seconds())
	clock.Advance(time.Second)
	assert.InDelta(t, 1.0, idle.Seconds(), 1e-9)
}
