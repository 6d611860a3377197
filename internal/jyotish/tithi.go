package jyotish

import (
	"math"

	"github.com/litescript/ls-cosmos/internal/astro"
)

// TithiWidth is the Moon-Sun elongation covered by one lunar day.
const TithiWidth = 12.0

// Paksha is a lunar fortnight.
type Paksha string

const (
	ShuklaPaksha  Paksha = "Shukla Paksha"  // waxing
	KrishnaPaksha Paksha = "Krishna Paksha" // waning
)

// Tithi is a lunar day, index 1-30.
type Tithi struct {
	Name   string `json:"name"`
	Index  int    `json:"index"`
	Paksha Paksha `json:"paksha"`
}

var tithiNames = [14]string{
	"Pratipada", "Dwitiya", "Tritiya", "Chaturthi", "Panchami",
	"Shashthi", "Saptami", "Ashtami", "Navami", "Dashami",
	"Ekadashi", "Dwadashi", "Trayodashi", "Chaturdashi",
}

// Elongation returns the Moon's angular distance east of the Sun,
// normalized to [0, 360). Argument order matters: swapping them inverts
// waxing and waning.
func Elongation(moonLon, sunLon float64) float64 {
	return astro.NormalizeDegrees(moonLon - sunLon)
}

// TithiOf returns the tithi for the given Moon and Sun longitudes. Either
// tropical or sidereal longitudes work as long as both use the same frame.
func TithiOf(moonLon, sunLon float64) Tithi {
	return tithiFromIndex(int(math.Floor(Elongation(moonLon, sunLon)/TithiWidth)) + 1)
}

func tithiFromIndex(idx int) Tithi {
	if idx < 1 {
		idx = 1
	}
	if idx > 30 {
		idx = 30
	}

	t := Tithi{Index: idx, Paksha: ShuklaPaksha}
	switch {
	case idx == 15:
		t.Name = "Purnima"
	case idx == 30:
		t.Name = "Amavasya"
		t.Paksha = KrishnaPaksha
	case idx < 15:
		t.Name = tithiNames[idx-1]
	default:
		t.Name = tithiNames[idx-16]
		t.Paksha = KrishnaPaksha
	}
	return t
}

// Moon phase labels.
const (
	PhaseNewMoon        = "New Moon"
	PhaseWaxingCrescent = "Waxing Crescent"
	PhaseFirstQuarter   = "First Quarter"
	PhaseWaxingGibbous  = "Waxing Gibbous"
	PhaseFullMoon       = "Full Moon"
	PhaseWaningGibbous  = "Waning Gibbous"
	PhaseLastQuarter    = "Last Quarter"
	PhaseWaningCrescent = "Waning Crescent"
)

// PhaseLabel names the visual lunar phase for a Moon-Sun elongation.
// It is a coarse window per phase, independent of tithi naming, so the two
// can disagree near a boundary (e.g. tithi 14 at 167.9° is still gibbous).
func PhaseLabel(elongation float64) string {
	e := astro.NormalizeDegrees(elongation)
	switch {
	case e < 12 || e >= 348:
		return PhaseNewMoon
	case e < 84:
		return PhaseWaxingCrescent
	case e < 96:
		return PhaseFirstQuarter
	case e < 168:
		return PhaseWaxingGibbous
	case e < 192:
		return PhaseFullMoon
	case e < 264:
		return PhaseWaningGibbous
	case e < 276:
		return PhaseLastQuarter
	default:
		return PhaseWaningCrescent
	}
}
