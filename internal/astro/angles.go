package astro

import "math"

// WrapThreshold is the jump size, in degrees, beyond which a longitude
// difference is treated as a crossing of the 0/360 boundary.
const WrapThreshold = 300.0

// NormalizeDegrees normalizes an angle to [0, 360).
func NormalizeDegrees(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	// math.Mod of a tiny negative value plus 360 rounds to exactly 360.
	if a >= 360 {
		a = 0
	}
	return a
}

// UnwrapDelta removes a 0/360 discontinuity from a longitude difference.
// A delta beyond +/-WrapThreshold is shifted by a full turn; anything
// smaller is returned as-is.
func UnwrapDelta(d float64) float64 {
	switch {
	case d > WrapThreshold:
		return d - 360
	case d < -WrapThreshold:
		return d + 360
	default:
		return d
	}
}

// Separation returns the shortest angular distance between two
// longitudes, in degrees within [0, 180].
func Separation(a, b float64) float64 {
	d := math.Abs(NormalizeDegrees(a) - NormalizeDegrees(b))
	if d > 180 {
		d = 360 - d
	}
	return d
}

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
