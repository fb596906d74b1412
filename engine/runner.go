package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/rainfield/core"
)

// Scheduler is anything driven by a per-frame tick
// Tick returns false when no further ticks should be requested
type Scheduler interface {
	Tick(dt float64) bool
}

// commandBuffer bounds queued host signals before Do blocks
const commandBuffer = 64

// Runner drives a Scheduler on a fixed interval from one goroutine
// Host signals are queued with Do and executed on that goroutine between ticks
// Once Tick returns false the loop sleeps until the next command arrives
type Runner struct {
	sched    Scheduler
	clock    Clock
	interval time.Duration

	cmds chan func()

	ticks atomic.Uint64

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	running  atomic.Bool
}

// NewRunner creates a runner ticking at fps frames per second
func NewRunner(sched Scheduler, clock Clock, fps int) *Runner {
	if fps <= 0 {
		fps = 60
	}
	if clock == nil {
		clock = NewTimeProvider()
	}
	return &Runner{
		sched:    sched,
		clock:    clock,
		interval: time.Second / time.Duration(fps),
		cmds:     make(chan func(), commandBuffer),
		stopChan: make(chan struct{}),
	}
}

// Start begins the loop
func (r *Runner) Start() {
	if r.running.CompareAndSwap(false, true) {
		r.wg.Add(1)
		core.Go(r.loop)
	}
}

// Stop halts the loop and waits for it to exit
func (r *Runner) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopChan)
		if r.running.Load() {
			r.wg.Wait()
		}
	})
}

// Do queues fn to run on the loop goroutine, dropped once stopped
// Before Start fn runs synchronously on the caller
func (r *Runner) Do(fn func()) {
	if !r.running.Load() {
		select {
		case <-r.stopChan:
		default:
			fn()
		}
		return
	}
	select {
	case r.cmds <- fn:
	case <-r.stopChan:
	}
}

// Ticks returns the number of ticks executed
func (r *Runner) Ticks() uint64 {
	return r.ticks.Load()
}

// Interval returns the target tick interval
func (r *Runner) Interval() time.Duration {
	return r.interval
}

func (r *Runner) loop() {
	defer r.wg.Done()

	timer := time.NewTimer(r.interval)
	defer timer.Stop()

	last := r.clock.Now()
	active := true

	for {
		var tickC <-chan time.Time
		if active {
			tickC = timer.C
		}

		select {
		case <-r.stopChan:
			return

		case fn := <-r.cmds:
			fn()
			if !active {
				// Resume: the previous tick drained the timer
				active = true
				last = r.clock.Now()
				timer.Reset(r.interval)
			}

		case <-tickC:
			now := r.clock.Now()
			dt := now.Sub(last).Seconds()
			last = now

			active = r.sched.Tick(dt)
			r.ticks.Add(1)

			if active {
				spent := r.clock.Now().Sub(now)
				timer.Reset(max(0, r.interval-spent))
			}
		}
	}
}
