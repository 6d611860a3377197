// Package astro provides coordinate primitives and angle math shared by the
// ephemeris and jyotish packages.
package astro

import (
	"math"
)

// Vec3 represents a 3D vector in any reference frame.
type Vec3 struct {
	X, Y, Z float64
}

// Sub returns the difference of two vectors.
func (v Vec3) Sub(u Vec3) Vec3 {
	return Vec3{X: v.X - u.X, Y: v.Y - u.Y, Z: v.Z - u.Z}
}

// FromEcliptic builds a vector from ecliptic longitude/latitude (degrees)
// and a radial distance in any unit.
func FromEcliptic(lonDeg, latDeg, r float64) Vec3 {
	lon := DegToRad(lonDeg)
	lat := DegToRad(latDeg)
	cosB := math.Cos(lat)
	return Vec3{
		X: r * cosB * math.Cos(lon),
		Y: r * cosB * math.Sin(lon),
		Z: r * math.Sin(lat),
	}
}

// FromOrbit returns the heliocentric ecliptic position of a body on an
// elliptical orbit. Angles in degrees: mean anomaly m, argument of
// perihelion w, ascending node node, inclination inc. a is the semimajor
// axis and e the eccentricity; the result is in the units of a.
func FromOrbit(a, e, m, w, node, inc float64) Vec3 {
	ecc := SolveKepler(e, DegToRad(m))

	// True anomaly and radius vector
	nu := math.Atan2(math.Sqrt(1-e*e)*math.Sin(ecc), math.Cos(ecc)-e)
	r := a * (1 - e*math.Cos(ecc))

	u := nu + DegToRad(w)
	om := DegToRad(node)
	i := DegToRad(inc)

	cosU, sinU := math.Cos(u), math.Sin(u)
	cosO, sinO := math.Cos(om), math.Sin(om)
	cosI := math.Cos(i)

	return Vec3{
		X: r * (cosO*cosU - sinO*sinU*cosI),
		Y: r * (sinO*cosU + cosO*sinU*cosI),
		Z: r * sinU * math.Sin(i),
	}
}

// SolveKepler solves E - e*sin(E) = M for the eccentric anomaly E
// (radians) by Newton iteration.
func SolveKepler(e, m float64) float64 {
	m = math.Mod(m, 2*math.Pi)
	ecc := m
	if e > 0.8 {
		ecc = math.Pi
	}
	for i := 0; i < 30; i++ {
		d := (ecc - e*math.Sin(ecc) - m) / (1 - e*math.Cos(ecc))
		ecc -= d
		if math.Abs(d) < 1e-12 {
			break
		}
	}
	return ecc
}

// EclipticLongitude returns the ecliptic longitude in degrees for a vector,
// normalized to [0, 360).
func EclipticLongitude(v Vec3) float64 {
	return NormalizeDegrees(RadToDeg(math.Atan2(v.Y, v.X)))
}
