package jyotish

import "github.com/litescript/ls-cosmos/internal/ephem"

// Dignity classifies a body's strength by sign placement.
// The zero value means no special dignity.
type Dignity string

const (
	Exalted     Dignity = "Exalted"
	Debilitated Dignity = "Debilitated"
)

type dignityRule struct {
	exalted     Sign
	debilitated Sign
}

var dignityRules = map[ephem.Body]dignityRule{
	ephem.Sun:     {Aries, Libra},
	ephem.Moon:    {Taurus, Scorpio},
	ephem.Mars:    {Capricorn, Cancer},
	ephem.Mercury: {Virgo, Pisces},
	ephem.Jupiter: {Cancer, Capricorn},
	ephem.Venus:   {Pisces, Virgo},
	ephem.Saturn:  {Libra, Aries},
	ephem.Rahu:    {Taurus, Scorpio},
	ephem.Ketu:    {Scorpio, Taurus},
}

// DignityOf returns the dignity of a body placed in a sign, or "" if none.
func DignityOf(body ephem.Body, sign Sign) Dignity {
	rule, ok := dignityRules[body]
	if !ok {
		return ""
	}
	switch sign {
	case rule.exalted:
		return Exalted
	case rule.debilitated:
		return Debilitated
	default:
		return ""
	}
}
