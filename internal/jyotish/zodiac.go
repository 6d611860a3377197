// Package jyotish derives sidereal signs, nakshatras, tithis, lunar phase,
// planetary dignity and retrograde status from ephemeris longitudes.
package jyotish

import (
	"fmt"
	"math"

	"github.com/litescript/ls-cosmos/internal/astro"
)

// LahiriAyanamsa is the tropical-to-sidereal offset in degrees.
// It is fixed for the current epoch and does not model precession drift
// (about 50" per year).
const LahiriAyanamsa = 24.2

// SignWidth is the span of one zodiac sign in degrees.
const SignWidth = 30.0

// Sidereal converts a tropical longitude to sidereal, normalized to [0, 360).
func Sidereal(tropical float64) float64 {
	return astro.NormalizeDegrees(tropical - LahiriAyanamsa)
}

// Sign is one of the twelve zodiac signs, Aries = 0.
type Sign int

const (
	Aries Sign = iota
	Taurus
	Gemini
	Cancer
	Leo
	Virgo
	Libra
	Scorpio
	Sagittarius
	Capricorn
	Aquarius
	Pisces
)

var signNames = [12]string{
	"Aries", "Taurus", "Gemini", "Cancer", "Leo", "Virgo",
	"Libra", "Scorpio", "Sagittarius", "Capricorn", "Aquarius", "Pisces",
}

// String returns the sign name.
func (s Sign) String() string {
	if s < Aries || s > Pisces {
		return "unknown"
	}
	return signNames[s]
}

// MarshalText encodes the sign by name.
func (s Sign) MarshalText() ([]byte, error) {
	if s < Aries || s > Pisces {
		return nil, fmt.Errorf("invalid sign %d", int(s))
	}
	return []byte(signNames[s]), nil
}

// UnmarshalText decodes a sign name.
func (s *Sign) UnmarshalText(b []byte) error {
	for i, name := range signNames {
		if name == string(b) {
			*s = Sign(i)
			return nil
		}
	}
	return fmt.Errorf("unknown sign %q", string(b))
}

// SignOf returns the sign containing a sidereal longitude.
func SignOf(sidereal float64) Sign {
	idx := int(math.Floor(astro.NormalizeDegrees(sidereal) / SignWidth))
	if idx > int(Pisces) {
		idx = int(Pisces)
	}
	return Sign(idx)
}

// DegreeInSign returns the offset of a sidereal longitude within its sign.
func DegreeInSign(sidereal float64) float64 {
	return math.Mod(astro.NormalizeDegrees(sidereal), SignWidth)
}
