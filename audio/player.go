package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// Player owns the speaker and mixes one-shot cues
// Every method is safe on an uninitialized Player
type Player struct {
	mu          sync.Mutex
	cfg         *Config
	mixer       *beep.Mixer
	initialized bool
	step        int
	last        [soundTypeCount]time.Time
	now         func() time.Time
}

// NewPlayer creates a player, nil cfg uses defaults
func NewPlayer(cfg *Config) *Player {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Player{
		cfg:   cfg,
		mixer: &beep.Mixer{},
		now:   time.Now,
	}
}

// Initialize opens the speaker, a disabled config reports ErrDisabled
func (p *Player) Initialize() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}
	if !p.cfg.Enabled {
		return ErrDisabled
	}

	rate := beep.SampleRate(p.cfg.SampleRate)
	if err := speaker.Init(rate, rate.N(100*time.Millisecond)); err != nil {
		return err
	}

	speaker.Play(p.mixer)
	p.initialized = true
	return nil
}

// Cleanup silences pending cues and detaches from the speaker
func (p *Player) Cleanup() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}

	speaker.Lock()
	p.mixer.Clear()
	speaker.Unlock()
	p.initialized = false
}

// Play queues sound and reports whether it was accepted
// Repeats inside MinInterval are dropped
func (p *Player) Play(sound SoundType) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized || sound < 0 || sound >= soundTypeCount {
		return false
	}

	now := p.now()
	if last := p.last[sound]; !last.IsZero() && now.Sub(last) < p.cfg.MinInterval {
		return false
	}
	p.last[sound] = now

	streamer := GetSoundEffect(sound, p.cfg, p.step)
	if sound == SoundChime {
		p.step++
	}

	speaker.Lock()
	p.mixer.Add(streamer)
	speaker.Unlock()
	return true
}

// Pending returns the number of cues still sounding
func (p *Player) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	speaker.Lock()
	defer speaker.Unlock()
	return p.mixer.Len()
}
