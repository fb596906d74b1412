package engine

import "math"

// TriggerBoost starts a transient speed and brightness boost lasting durationMs
// A new trigger restarts the decay from the peak
func (e *Engine) TriggerBoost(durationMs float64) {
	if math.IsNaN(durationMs) || durationMs <= 0 {
		return
	}
	e.boostStart = e.elapsed
	e.boostDur = durationMs / 1000
}

// boostFraction returns the remaining share of the boost in [0,1], 0 once expired
func (e *Engine) boostFraction() float64 {
	return e.boostFractionAt(e.elapsed)
}

func (e *Engine) boostFractionAt(t float64) float64 {
	if e.boostDur <= 0 {
		return 0
	}
	remaining := e.boostStart + e.boostDur - t
	if remaining <= 0 {
		return 0
	}
	return math.Min(1, remaining/e.boostDur)
}

// BoostMultiplier returns the current fall speed multiplier, exactly 1 outside a boost
func (e *Engine) BoostMultiplier() float64 {
	return e.BoostAt(e.elapsed)
}

// BoostAt returns the multiplier at animation time t, decaying linearly from the peak
func (e *Engine) BoostAt(t float64) float64 {
	f := e.boostFractionAt(t)
	if f == 0 {
		return 1
	}
	return 1 + (e.opts.BoostPeak-1)*f
}
