package reveal

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLines = []string{"COLOR ARRIVES BEFORE WORDS.", "SAIREN COLOR ARCHIVE."}

// phaseRuns samples a line at a fixed step and collapses consecutive equal phases
func phaseRuns(tl *Timeline, line int, until, step float64) []Phase {
	var runs []Phase
	for t := 0.0; t < until; t += step {
		p := tl.StateAt(line, t).Phase
		if len(runs) == 0 || runs[len(runs)-1] != p {
			runs = append(runs, p)
		}
	}
	return runs
}

// TestPhaseOrderNeverSkips verifies every line cycles Idle, Revealing, Holding, FadingOut in order
func TestPhaseOrderNeverSkips(t *testing.T) {
	tl := New(DefaultConfig(), testLines, false)
	cycle := []Phase{Idle, Revealing, Holding, FadingOut}

	for line := range testLines {
		got := phaseRuns(tl, line, 3*tl.Cycle(), 0.005)
		require.NotEmpty(t, got)

		want := make([]Phase, len(got))
		for i := range want {
			want[i] = cycle[i%len(cycle)]
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("line %d phase sequence mismatch (-want +got):\n%s", line, diff)
		}
		assert.GreaterOrEqual(t, len(got), 12, "expected at least three full cycles")
	}
}

// TestStrengthBoundedAndMonotonic checks strength stays in [0,1] and moves one way per phase
func TestStrengthBoundedAndMonotonic(t *testing.T) {
	tl := New(DefaultConfig(), testLines, false)

	for line := range testLines {
		prev := tl.StateAt(line, 0)
		for ts := 0.002; ts < 2*tl.Cycle(); ts += 0.002 {
			s := tl.StateAt(line, ts)
			require.GreaterOrEqual(t, s.Strength, 0.0)
			require.LessOrEqual(t, s.Strength, 1.0)

			if s.Phase == prev.Phase {
				switch s.Phase {
				case Revealing:
					require.GreaterOrEqual(t, s.Strength, prev.Strength, "t=%v", ts)
				case FadingOut:
					require.LessOrEqual(t, s.Strength, prev.Strength, "t=%v", ts)
				case Holding:
					require.Equal(t, 1.0, s.Strength)
				case Idle:
					require.Equal(t, 0.0, s.Strength)
				}
			}
			prev = s
		}
	}
}

// TestFirstLineMidReveal covers the staggered two-line start
func TestFirstLineMidReveal(t *testing.T) {
	tl := New(DefaultConfig(), testLines, false)
	ts := tl.Start(0) + tl.Reveal(0)/2

	assert.InDelta(t, 0.875, tl.StrengthAt(0, ts), 1e-9)
	assert.Equal(t, 0.0, tl.StrengthAt(1, ts))
	assert.Equal(t, Idle, tl.StateAt(1, ts).Phase)
}

func TestLineStagger(t *testing.T) {
	cfg := DefaultConfig()
	tl := New(cfg, testLines, false)

	assert.InDelta(t, cfg.StartDelay.Seconds(), tl.Start(0), 1e-12)
	want := tl.Start(0) + tl.Reveal(0) + cfg.Hold.Seconds() + cfg.LeadGap.Seconds()
	assert.InDelta(t, want, tl.Start(1), 1e-12)

	lastEnd := tl.Start(1) + tl.Reveal(1) + cfg.Hold.Seconds() + cfg.Fade.Seconds()
	assert.InDelta(t, lastEnd+cfg.Gap.Seconds(), tl.Cycle(), 1e-12)
}

func TestRevealDurationProportional(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 27*cfg.PerRune, RevealDuration(cfg, 27))
	assert.Equal(t, cfg.MinReveal, RevealDuration(cfg, 1))
	assert.Equal(t, cfg.MaxReveal, RevealDuration(cfg, 500))
	assert.Less(t, RevealDuration(cfg, 15), RevealDuration(cfg, 30))
}

func TestReducedMotionStaysIdle(t *testing.T) {
	tl := New(DefaultConfig(), testLines, true)
	assert.True(t, tl.ReducedMotion())
	for ts := 0.0; ts < 2*tl.Cycle(); ts += 0.25 {
		for line := range testLines {
			assert.Equal(t, State{Phase: Idle}, tl.StateAt(line, ts))
			assert.Equal(t, 1.0, tl.BreathAt(line, ts))
		}
	}
}

func TestStateAtInvalidInput(t *testing.T) {
	tl := New(DefaultConfig(), testLines, false)
	assert.Equal(t, State{Phase: Idle}, tl.StateAt(-1, 5))
	assert.Equal(t, State{Phase: Idle}, tl.StateAt(2, 5))
	assert.Equal(t, State{Phase: Idle}, tl.StateAt(0, -1))
	assert.Equal(t, State{Phase: Idle}, tl.StateAt(0, math.NaN()))
	assert.Equal(t, State{Phase: Idle}, tl.StateAt(0, math.Inf(1)))
}

func TestBreathOnlyWhileHolding(t *testing.T) {
	cfg := DefaultConfig()
	tl := New(cfg, testLines, false)
	holdStart := tl.Start(0) + tl.Reveal(0)

	for ts := holdStart + 0.01; ts < holdStart+cfg.Hold.Seconds(); ts += 0.05 {
		b := tl.BreathAt(0, ts)
		assert.GreaterOrEqual(t, b, 1-cfg.BreathAmplitude-1e-12)
		assert.LessOrEqual(t, b, 1.0)
	}
	assert.Equal(t, 1.0, tl.BreathAt(0, tl.Start(0)+0.1))
	assert.Equal(t, 1.0, tl.BreathAt(0, 0))
}

func TestZeroTimingsAreClamped(t *testing.T) {
	tl := New(Config{}, []string{"A"}, false)
	require.Greater(t, tl.Cycle(), 0.0)
	got := phaseRuns(tl, 0, 3*tl.Cycle(), tl.Cycle()/400)
	assert.Contains(t, got, Holding)
	assert.Contains(t, got, FadingOut)
	assert.Equal(t, time.Duration(0), RevealDuration(Config{}, 0))
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "revealing", Revealing.String())
	assert.Equal(t, "unknown", Phase(9).String())
}
