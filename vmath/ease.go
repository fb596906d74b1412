package vmath

// Easing curves take t in [0,1] and return [0,1], input is clamped

// EaseOutCubic decelerates into 1: 1-(1-t)^3
func EaseOutCubic(t float64) float64 {
	t = Clamp01(t)
	u := 1 - t
	return 1 - u*u*u
}

// EaseInOutCubic accelerates then decelerates, symmetric around 0.5
func EaseInOutCubic(t float64) float64 {
	t = Clamp01(t)
	if t < 0.5 {
		return 4 * t * t * t
	}
	u := -2*t + 2
	return 1 - u*u*u/2
}
