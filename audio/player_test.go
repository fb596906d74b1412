package audio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestPlayerGracefulDegradation verifies every operation is safe without a speaker
func TestPlayerGracefulDegradation(t *testing.T) {
	p := NewPlayer(nil)
	assert.NotPanics(t, func() {
		assert.False(t, p.Play(SoundChime))
		assert.False(t, p.Play(SoundWhisper))
		assert.Zero(t, p.Pending())
		p.Cleanup()
	})
}

func TestPlayerDisabled(t *testing.T) {
	p := NewPlayer(DefaultConfig())
	assert.ErrorIs(t, p.Initialize(), ErrDisabled)
	assert.False(t, p.Play(SoundChime))
}

// TestPlayerInitialization tolerates hosts without an audio device
func TestPlayerInitialization(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = true
	p := NewPlayer(cfg)

	if err := p.Initialize(); err != nil {
		t.Logf("speaker unavailable: %v", err)
		return
	}
	assert.NoError(t, p.Initialize(), "second Initialize is a no-op")
	p.Cleanup()
}

// fakePlayer returns a player that mixes without opening the speaker
func fakePlayer(clock *time.Time) *Player {
	p := NewPlayer(DefaultConfig())
	p.initialized = true
	p.now = func() time.Time { return *clock }
	return p
}

func TestPlayerRateLimit(t *testing.T) {
	now := time.Unix(100, 0)
	p := fakePlayer(&now)

	assert.True(t, p.Play(SoundChime))
	assert.False(t, p.Play(SoundChime), "repeat inside MinInterval")
	assert.True(t, p.Play(SoundWhisper), "limits are per sound")

	now = now.Add(p.cfg.MinInterval)
	assert.True(t, p.Play(SoundChime))
	assert.Equal(t, 3, p.Pending())
	assert.Equal(t, 2, p.step, "each chime advances the scale")
}

func TestPlayerRejectsUnknownSound(t *testing.T) {
	now := time.Unix(100, 0)
	p := fakePlayer(&now)
	assert.False(t, p.Play(soundTypeCount))
	assert.False(t, p.Play(SoundType(-2)))
	assert.Zero(t, p.Pending())
}

func TestPlayerCleanupClearsMixer(t *testing.T) {
	now := time.Unix(100, 0)
	p := fakePlayer(&now)
	p.Play(SoundChime)
	p.Play(SoundWhisper)

	p.Cleanup()
	assert.Zero(t, p.Pending())
	assert.False(t, p.Play(SoundChime), "cleaned up player is inert")
}
