package jyotish

import (
	"github.com/litescript/ls-cosmos/internal/astro"
	"github.com/litescript/ls-cosmos/internal/ephem"
)

// combustOrb is the distance from the Sun, in degrees, inside which a body
// is combust (asta). Mercury and Venus use a tighter orb when retrograde.
type combustOrb struct {
	direct, retro float64
}

var combustOrbs = map[ephem.Body]combustOrb{
	ephem.Moon:    {12, 12},
	ephem.Mars:    {17, 17},
	ephem.Mercury: {14, 12},
	ephem.Jupiter: {11, 11},
	ephem.Venus:   {10, 8},
	ephem.Saturn:  {15, 15},
}

// IsCombust reports whether a body at lon is within its combustion orb of
// the Sun at sunLon. The Sun and the nodes are never combust.
func IsCombust(body ephem.Body, lon, sunLon float64, retro bool) bool {
	orb, ok := combustOrbs[body]
	if !ok {
		return false
	}
	limit := orb.direct
	if retro {
		limit = orb.retro
	}
	return astro.Separation(lon, sunLon) < limit
}

func markCombust(b *PlanetaryBody, sun PlanetaryBody) {
	b.Combust = IsCombust(b.Body, b.Longitude, sun.Longitude, b.IsRetro)
}
