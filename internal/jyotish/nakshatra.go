package jyotish

import (
	"math"

	"github.com/litescript/ls-cosmos/internal/astro"
)

// NakshatraWidth is the span of one lunar mansion: 13°20'.
const NakshatraWidth = 360.0 / 27

// Nakshatra is one of the 27 lunar mansions of the sidereal zodiac.
type Nakshatra struct {
	Index   int    `json:"index"`
	Name    string `json:"name"`
	Ruler   string `json:"ruler"`
	Meaning string `json:"meaning"`
}

var nakshatras = [27]Nakshatra{
	{0, "Ashwini", "Ketu", "Horse woman"},
	{1, "Bharani", "Venus", "Bearer"},
	{2, "Krittika", "Sun", "The cutters"},
	{3, "Rohini", "Moon", "The red one"},
	{4, "Mrigashira", "Mars", "Deer's head"},
	{5, "Ardra", "Rahu", "The moist one"},
	{6, "Punarvasu", "Jupiter", "Return of the light"},
	{7, "Pushya", "Saturn", "Nourisher"},
	{8, "Ashlesha", "Mercury", "The embracer"},
	{9, "Magha", "Ketu", "The great one"},
	{10, "Purva Phalguni", "Venus", "Former red one"},
	{11, "Uttara Phalguni", "Sun", "Latter red one"},
	{12, "Hasta", "Moon", "The hand"},
	{13, "Chitra", "Mars", "The bright one"},
	{14, "Swati", "Rahu", "The independent one"},
	{15, "Vishakha", "Jupiter", "Forked branch"},
	{16, "Anuradha", "Saturn", "Following Radha"},
	{17, "Jyeshtha", "Mercury", "The eldest"},
	{18, "Mula", "Ketu", "The root"},
	{19, "Purva Ashadha", "Venus", "Early victory"},
	{20, "Uttara Ashadha", "Sun", "Latter victory"},
	{21, "Shravana", "Moon", "Hearing"},
	{22, "Dhanishta", "Mars", "Most famous"},
	{23, "Shatabhisha", "Rahu", "Hundred physicians"},
	{24, "Purva Bhadrapada", "Jupiter", "Former lucky feet"},
	{25, "Uttara Bhadrapada", "Saturn", "Latter lucky feet"},
	{26, "Revati", "Mercury", "The wealthy"},
}

// NakshatraOf returns the nakshatra containing a sidereal longitude.
func NakshatraOf(sidereal float64) Nakshatra {
	idx := int(math.Floor(astro.NormalizeDegrees(sidereal) / NakshatraWidth))
	if idx > 26 {
		idx = 26
	}
	return nakshatras[idx]
}

// Pada returns the quarter (1-4) of the nakshatra a sidereal longitude falls in.
func Pada(sidereal float64) int {
	off := math.Mod(astro.NormalizeDegrees(sidereal), NakshatraWidth)
	p := int(off/(NakshatraWidth/4)) + 1
	if p > 4 {
		p = 4
	}
	return p
}

// Nakshatras returns a copy of the fixed nakshatra table.
func Nakshatras() []Nakshatra {
	out := make([]Nakshatra, len(nakshatras))
	copy(out, nakshatras[:])
	return out
}
