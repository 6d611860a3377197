package jyotish

import (
	"fmt"
	"math"
	"time"

	"github.com/litescript/ls-cosmos/internal/astro"
	"github.com/litescript/ls-cosmos/internal/ephem"
)

const (
	// PlanetRetroLookback is the sampling interval used for the five
	// visible planets when deciding retrograde motion.
	PlanetRetroLookback = time.Hour

	// DefaultRetroLookback is used by IsRetrograde when no interval is given.
	DefaultRetroLookback = 24 * time.Hour

	// maxQuarterHops bounds the walk over quarter events to one lunation.
	maxQuarterHops = 4
)

// PlanetaryBody is the computed placement of one body.
type PlanetaryBody struct {
	Name      string     `json:"name"`
	Body      ephem.Body `json:"body"`
	Sign      Sign       `json:"sign"`
	Nakshatra Nakshatra  `json:"nakshatra"`
	IsRetro   bool       `json:"is_retro"`
	Longitude float64    `json:"longitude"` // sidereal, [0, 360)
	Tropical  float64    `json:"tropical_longitude"`
	Dignity   Dignity    `json:"dignity,omitempty"`
	Combust   bool       `json:"combust,omitempty"`
}

// LunarEvent is an upcoming full or new moon and where the Moon will stand.
type LunarEvent struct {
	Time      time.Time `json:"time"`
	Sign      Sign      `json:"sign"`
	Nakshatra Nakshatra `json:"nakshatra"`
}

// CosmicData is the full result of one calculation.
type CosmicData struct {
	Time time.Time `json:"time"`

	Sun  PlanetaryBody `json:"sun"`
	Moon PlanetaryBody `json:"moon"`

	SunSign       Sign      `json:"sun_sign"`
	MoonSign      Sign      `json:"moon_sign"`
	SunDignity    Dignity   `json:"sun_dignity,omitempty"`
	MoonDignity   Dignity   `json:"moon_dignity,omitempty"`
	MoonNakshatra Nakshatra `json:"moon_nakshatra"`

	Tithi        Tithi   `json:"tithi"`
	Elongation   float64 `json:"elongation"`
	MoonPhase    string  `json:"moon_phase"`
	Illumination float64 `json:"illumination"` // percent, 0-100

	NextFullMoon LunarEvent `json:"next_full_moon"`
	NextNewMoon  LunarEvent `json:"next_new_moon"`

	Planets []PlanetaryBody `json:"planets"` // Mercury, Venus, Mars, Jupiter, Saturn
	Nodes   []PlanetaryBody `json:"nodes"`   // Rahu, Ketu
}

// Rahu returns the ascending node record.
func (d CosmicData) Rahu() PlanetaryBody {
	return d.node(ephem.Rahu)
}

// Ketu returns the descending node record.
func (d CosmicData) Ketu() PlanetaryBody {
	return d.node(ephem.Ketu)
}

func (d CosmicData) node(b ephem.Body) PlanetaryBody {
	for _, n := range d.Nodes {
		if n.Body == b {
			return n
		}
	}
	return PlanetaryBody{}
}

// Bodies returns all nine bodies in order: Sun, Moon, planets, nodes.
func (d CosmicData) Bodies() []PlanetaryBody {
	out := make([]PlanetaryBody, 0, 2+len(d.Planets)+len(d.Nodes))
	out = append(out, d.Sun, d.Moon)
	out = append(out, d.Planets...)
	return append(out, d.Nodes...)
}

// Calculator computes CosmicData from an ephemeris provider.
// It holds no mutable state and is safe for concurrent use.
type Calculator struct {
	provider ephem.Provider
}

// NewCalculator creates a calculator. A nil provider selects the Meeus provider.
func NewCalculator(p ephem.Provider) *Calculator {
	if p == nil {
		p = ephem.NewMeeusProvider()
	}
	return &Calculator{provider: p}
}

// Provider returns the underlying ephemeris provider.
func (c *Calculator) Provider() ephem.Provider {
	return c.provider
}

var defaultCalculator = NewCalculator(nil)

// Calculate computes CosmicData with the default provider.
// A zero time means now.
func Calculate(t time.Time) (CosmicData, error) {
	return defaultCalculator.Calculate(t)
}

// MustCalculate is like Calculate but panics on error.
func MustCalculate(t time.Time) CosmicData {
	data, err := Calculate(t)
	if err != nil {
		panic(err)
	}
	return data
}

// Now computes CosmicData for the current instant.
func Now() (CosmicData, error) {
	return defaultCalculator.Calculate(time.Now())
}

// Calculate computes CosmicData for t. A zero time means now.
// Provider errors are returned wrapped; there is no partial result.
func (c *Calculator) Calculate(t time.Time) (CosmicData, error) {
	if t.IsZero() {
		t = time.Now()
	}

	sun, err := c.position(ephem.Sun, t)
	if err != nil {
		return CosmicData{}, err
	}
	moon, err := c.position(ephem.Moon, t)
	if err != nil {
		return CosmicData{}, err
	}

	planets := make([]PlanetaryBody, 0, len(ephem.Planets))
	for _, b := range ephem.Planets {
		pb, err := c.position(b, t)
		if err != nil {
			return CosmicData{}, err
		}
		markCombust(&pb, sun)
		planets = append(planets, pb)
	}
	markCombust(&moon, sun)

	nodes, err := c.nodes(t)
	if err != nil {
		return CosmicData{}, err
	}

	illum, err := c.provider.MoonIllumination(t)
	if err != nil {
		return CosmicData{}, fmt.Errorf("moon illumination: %w", err)
	}

	full, err := c.nextLunation(t, ephem.QuarterFull)
	if err != nil {
		return CosmicData{}, err
	}
	newMoon, err := c.nextLunation(t, ephem.QuarterNew)
	if err != nil {
		return CosmicData{}, err
	}

	elong := Elongation(moon.Tropical, sun.Tropical)

	return CosmicData{
		Time:          t,
		Sun:           sun,
		Moon:          moon,
		SunSign:       sun.Sign,
		MoonSign:      moon.Sign,
		SunDignity:    sun.Dignity,
		MoonDignity:   moon.Dignity,
		MoonNakshatra: moon.Nakshatra,
		Tithi:         TithiOf(moon.Tropical, sun.Tropical),
		Elongation:    elong,
		MoonPhase:     PhaseLabel(elong),
		Illumination:  illuminationPercent(illum),
		NextFullMoon:  full,
		NextNewMoon:   newMoon,
		Planets:       planets,
		Nodes:         nodes,
	}, nil
}

// position resolves Sun, Moon or one of the five planets.
func (c *Calculator) position(b ephem.Body, t time.Time) (PlanetaryBody, error) {
	lon, err := c.provider.EclipticLongitude(b, t)
	if err != nil {
		return PlanetaryBody{}, fmt.Errorf("%s longitude: %w", b, err)
	}

	retro := false
	if b != ephem.Sun && b != ephem.Moon {
		prev, err := c.provider.EclipticLongitude(b, t.Add(-PlanetRetroLookback))
		if err != nil {
			return PlanetaryBody{}, fmt.Errorf("%s longitude: %w", b, err)
		}
		retro = isBackward(prev, lon)
	}

	return newBody(b, lon, retro), nil
}

// nodes returns Rahu and Ketu. Ketu is always opposite Rahu and its sign and
// nakshatra come from its own longitude.
func (c *Calculator) nodes(t time.Time) ([]PlanetaryBody, error) {
	rahu, err := c.provider.MeanNode(t)
	if err != nil {
		return nil, fmt.Errorf("lunar node: %w", err)
	}
	rahu = astro.NormalizeDegrees(rahu)
	ketu := astro.NormalizeDegrees(rahu + 180)

	return []PlanetaryBody{
		newBody(ephem.Rahu, rahu, true),
		newBody(ephem.Ketu, ketu, true),
	}, nil
}

// nextLunation walks forward over quarter events from t until it reaches q.
// Each call starts from t, so the full and new moon searches are independent.
func (c *Calculator) nextLunation(t time.Time, q ephem.Quarter) (LunarEvent, error) {
	mq, err := c.provider.SearchMoonQuarter(t)
	if err != nil {
		return LunarEvent{}, fmt.Errorf("search %s moon: %w", q, err)
	}
	for hops := 0; mq.Quarter != q; hops++ {
		if hops >= maxQuarterHops {
			return LunarEvent{}, fmt.Errorf("search %s moon: not found within one lunation of %s", q, t.Format(time.RFC3339))
		}
		mq, err = c.provider.NextMoonQuarter(mq)
		if err != nil {
			return LunarEvent{}, fmt.Errorf("search %s moon: %w", q, err)
		}
	}

	lon, err := c.provider.EclipticLongitude(ephem.Moon, mq.Time)
	if err != nil {
		return LunarEvent{}, fmt.Errorf("%s moon position: %w", q, err)
	}
	sid := Sidereal(lon)

	return LunarEvent{
		Time:      mq.Time,
		Sign:      SignOf(sid),
		Nakshatra: NakshatraOf(sid),
	}, nil
}

// NextFullMoon returns the first full moon strictly after t.
func (c *Calculator) NextFullMoon(t time.Time) (LunarEvent, error) {
	return c.nextLunation(t, ephem.QuarterFull)
}

// NextNewMoon returns the first new moon strictly after t.
func (c *Calculator) NextNewMoon(t time.Time) (LunarEvent, error) {
	return c.nextLunation(t, ephem.QuarterNew)
}

// IsRetrograde reports whether a body's longitude decreased over the
// lookback interval ending at t. Nodes are always retrograde and the
// luminaries never are. A non-positive lookback uses DefaultRetroLookback.
func IsRetrograde(p ephem.Provider, b ephem.Body, t time.Time, lookback time.Duration) (bool, error) {
	switch {
	case b.IsNode():
		return true, nil
	case b == ephem.Sun || b == ephem.Moon:
		return false, nil
	}
	if lookback <= 0 {
		lookback = DefaultRetroLookback
	}

	now, err := p.EclipticLongitude(b, t)
	if err != nil {
		return false, fmt.Errorf("%s longitude: %w", b, err)
	}
	prev, err := p.EclipticLongitude(b, t.Add(-lookback))
	if err != nil {
		return false, fmt.Errorf("%s longitude: %w", b, err)
	}
	return isBackward(prev, now), nil
}

// isBackward reports negative motion from prev to now after unwrapping a
// 0/360 crossing.
func isBackward(prev, now float64) bool {
	return astro.UnwrapDelta(now-prev) < 0
}

func newBody(b ephem.Body, tropical float64, retro bool) PlanetaryBody {
	tropical = astro.NormalizeDegrees(tropical)
	sid := Sidereal(tropical)
	sign := SignOf(sid)
	return PlanetaryBody{
		Name:      b.String(),
		Body:      b,
		Sign:      sign,
		Nakshatra: NakshatraOf(sid),
		IsRetro:   retro,
		Longitude: sid,
		Tropical:  tropical,
		Dignity:   DignityOf(b, sign),
	}
}

func illuminationPercent(fraction float64) float64 {
	return math.Max(0, math.Min(100, fraction*100))
}
