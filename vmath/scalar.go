package vmath

import "math"

// GoldenAngle spreads successive indices evenly around a circle
const GoldenAngle = math.Pi * (3 - 2.2360679774997896) // π(3-√5)

// Clamp limits v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampInt limits v to [lo, hi]
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 limits v to [0, 1], NaN maps to 0
func Clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return Clamp(v, 0, 1)
}

// Lerp interpolates a→b by t without clamping t
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Approach moves v toward target by at most step, never overshooting
func Approach(v, target, step float64) float64 {
	if v < target {
		return math.Min(v+step, target)
	}
	return math.Max(v-step, target)
}

// FadeIn returns opacity ramping 0→1 over durMs of age
func FadeIn(ageMs, durMs float64) float64 {
	if durMs <= 0 {
		return 1
	}
	return Clamp01(ageMs / durMs)
}

// FadeOut decrements opacity for dtMs given a full fade duration, floored at 0
func FadeOut(opacity, dtMs, durMs float64) float64 {
	if durMs <= 0 {
		return 0
	}
	return math.Max(0, opacity-dtMs/durMs)
}
