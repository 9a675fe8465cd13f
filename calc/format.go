package calc

import (
	"math"
	"strconv"
	"strings"
)

// RoundHalfUp rounds to the nearest integer, with halves going toward
// positive infinity (so -2.5 rounds to -2).
func RoundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

// RoundTo rounds x to the given number of decimal places using RoundHalfUp.
func RoundTo(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return RoundHalfUp(x*p) / p
}

// Fixed formats x with exactly places decimals.
func Fixed(x float64, places int) string {
	if s, ok := nonFinite(x); ok {
		return s
	}
	return strconv.FormatFloat(x, 'f', places, 64)
}

// Short rounds x to at most places decimals and formats it without
// trailing zeros: Short(2.5000, 4) is "2.5".
func Short(x float64, places int) string {
	return Num(RoundTo(x, places))
}

// Num formats x in its shortest decimal form.
func Num(x float64) string {
	if s, ok := nonFinite(x); ok {
		return s
	}
	return strconv.FormatFloat(x, 'f', -1, 64)
}

// FormatSig3 formats x with three significant figures. Magnitudes outside
// [1e-3, 1e6) switch to exponential notation with two decimals.
func FormatSig3(x float64) string {
	if x == 0 {
		return "0"
	}
	if s, ok := nonFinite(x); ok {
		return s
	}

	mag := magnitude(x)
	if mag > 5 || mag < -3 {
		return exponential(x, 2)
	}

	factor := math.Pow(10, 2-mag)
	rounded := RoundHalfUp(x*factor) / factor
	return Fixed(rounded, int(math.Max(0, 2-mag)))
}

// magnitude returns floor(log10(|x|)), corrected for the rounding error
// math.Log10 shows near exact powers of ten.
func magnitude(x float64) float64 {
	ax := math.Abs(x)
	mag := math.Floor(math.Log10(ax))
	if math.Pow(10, mag+1) <= ax {
		mag++
	} else if math.Pow(10, mag) > ax {
		mag--
	}
	return mag
}

// exponential renders x as d.dde+N, without the zero padding strconv adds
// to single-digit exponents.
func exponential(x float64, places int) string {
	s := strconv.FormatFloat(x, 'e', places, 64)
	mantissa, exp, ok := strings.Cut(s, "e")
	if !ok {
		return s
	}
	sign := exp[:1]
	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mantissa + "e" + sign + digits
}

func nonFinite(x float64) (string, bool) {
	switch {
	case math.IsNaN(x):
		return "NaN", true
	case math.IsInf(x, 1):
		return "Infinity", true
	case math.IsInf(x, -1):
		return "-Infinity", true
	}
	return "", false
}

func allFinite(xs ...float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
