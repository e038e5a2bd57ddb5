package stats

import "math"

// round rounds half up, like JavaScript's Math.round.
func round(x float64) int {
	return int(math.Floor(x + 0.5))
}

func clamp01(x float64) float64 {
	if math.IsNaN(x) || x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
