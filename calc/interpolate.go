// Package calc implements the electrical-installation calculators: two
// illumination sizing methods and conductor sizing, together with the
// reference tables and rounding helpers they share.
//
// Every calculator is a pure function of its input. Degenerate input
// (zero dimensions, negative heights) is not rejected; it propagates as
// NaN or ±Inf through the result. Table lookups never fail hard: a miss
// is reported through a Found flag on the result.
package calc

// Interpolate returns the value at x on the line through (x1, y1) and
// (x2, y2). x may lie outside [x1, x2]. When x1 == x2 the result is y1.
func Interpolate(x1, y1, x2, y2, x float64) float64 {
	if x2 == x1 {
		return y1
	}
	return y1 + (x-x1)*(y2-y1)/(x2-x1)
}
