// Package scoring holds the deterministic evaluators used when the model's
// answer is missing or unusable, and the normalization applied to the
// model's numbers when it is not.
package scoring

import "math"

// Round rounds half away from zero for non-negative values, the way the
// score formulas have always been computed.
func Round(x float64) int {
	return int(math.Floor(x + 0.5))
}

// Clamp rounds v and bounds it to [0,100]. NaN becomes 0.
func Clamp(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	r := Round(v)
	switch {
	case r < 0:
		return 0
	case r > 100:
		return 100
	}
	return r
}

// Mean3 is round(mean(a, b, c)).
func Mean3(a, b, c int) int {
	return Round(float64(a+b+c) / 3)
}
