package ephem

import (
	"fmt"
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/moonillum"
	"github.com/soniakeys/meeus/v3/moonphase"
	"github.com/soniakeys/meeus/v3/moonposition"
	"github.com/soniakeys/meeus/v3/planetelements"
	"github.com/soniakeys/meeus/v3/solar"

	"github.com/litescript/ls-cosmos/internal/astro"
)

const (
	// deltaT approximates TT - UTC for the 2020s. Meeus algorithms take
	// Julian Ephemeris Days.
	deltaT = 69 * time.Second

	// lunationsPerYear is the mean number of synodic months per Julian year.
	lunationsPerYear = 12.3685

	// maxQuarterSteps bounds the half-lunation stepping in nextQuarter.
	maxQuarterSteps = 16
)

// planetIndex maps bodies to planetelements constants.
var planetIndex = map[Body]int{
	Mercury: planetelements.Mercury,
	Venus:   planetelements.Venus,
	Mars:    planetelements.Mars,
	Jupiter: planetelements.Jupiter,
	Saturn:  planetelements.Saturn,
}

// quarterFuncs return the JDE of the quarter event nearest a decimal year,
// indexed by Quarter.
var quarterFuncs = [4]func(year float64) float64{
	QuarterNew:   moonphase.New,
	QuarterFirst: moonphase.First,
	QuarterFull:  moonphase.Full,
	QuarterLast:  moonphase.Last,
}

// MeeusProvider computes positions locally with the algorithms from
// Meeus, "Astronomical Algorithms". It needs no data files or network.
//
// The Sun and Moon use the full series from the solar and moonposition
// packages. Planets use mean orbital elements of date, solved as Kepler
// orbits and differenced against the Earth, which is accurate to a
// fraction of a degree for the visible planets.
type MeeusProvider struct{}

// NewMeeusProvider creates a new Meeus-backed provider.
func NewMeeusProvider() *MeeusProvider {
	return &MeeusProvider{}
}

// Name implements Provider.
func (p *MeeusProvider) Name() string {
	return "Meeus"
}

// EclipticLongitude implements Provider.
func (p *MeeusProvider) EclipticLongitude(body Body, t time.Time) (float64, error) {
	jde := toJDE(t)

	switch body {
	case Sun:
		s, _ := solar.True(base.J2000Century(jde))
		return astro.NormalizeDegrees(s.Deg()), nil
	case Moon:
		lon, _, _ := moonposition.Position(jde)
		return astro.NormalizeDegrees(lon.Deg()), nil
	}

	idx, ok := planetIndex[body]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedBody, body)
	}

	var el planetelements.Elements
	planetelements.Mean(idx, jde, &el)

	lon := el.Lon.Deg()
	peri := el.Peri.Deg()
	node := el.Node.Deg()

	helio := astro.FromOrbit(el.Axis, el.Ecc, lon-peri, peri-node, node, el.Inc.Deg())
	return astro.EclipticLongitude(helio.Sub(earthPosition(jde))), nil
}

// earthPosition returns the Earth's heliocentric ecliptic position in AU,
// taken as the opposite of the Sun's geocentric position.
func earthPosition(jde float64) astro.Vec3 {
	T := base.J2000Century(jde)
	s, _ := solar.True(T)
	return astro.FromEcliptic(s.Deg()+180, 0, solar.Radius(T))
}

// MeanNode implements Provider.
func (p *MeeusProvider) MeanNode(t time.Time) (float64, error) {
	return astro.NormalizeDegrees(moonposition.Node(toJDE(t)).Deg()), nil
}

// MoonIllumination implements Provider.
func (p *MeeusProvider) MoonIllumination(t time.Time) (float64, error) {
	i := moonillum.PhaseAngle3(toJDE(t))
	k := (1 + math.Cos(i.Rad())) / 2
	return math.Max(0, math.Min(1, k)), nil
}

// SearchMoonQuarter implements Provider.
func (p *MeeusProvider) SearchMoonQuarter(after time.Time) (MoonQuarter, error) {
	var best MoonQuarter
	for q := QuarterNew; q <= QuarterLast; q++ {
		t, err := nextQuarter(after, q)
		if err != nil {
			return MoonQuarter{}, err
		}
		if best.Time.IsZero() || t.Before(best.Time) {
			best = MoonQuarter{Quarter: q, Time: t}
		}
	}
	return best, nil
}

// NextMoonQuarter implements Provider.
func (p *MeeusProvider) NextMoonQuarter(prev MoonQuarter) (MoonQuarter, error) {
	// Quarters are ~7 days apart; the offset keeps prev from matching itself
	// after the JDE round trip.
	return p.SearchMoonQuarter(prev.Time.Add(time.Minute))
}

// nextQuarter returns the first event of quarter q strictly after t.
// moonphase works from a decimal year, so start a lunation and a half early
// and advance by half lunations; each step moves at most one event forward.
func nextQuarter(after time.Time, q Quarter) (time.Time, error) {
	target := toJDE(after)
	y := decimalYear(after) - 1.5/lunationsPerYear

	for i := 0; i < maxQuarterSteps; i++ {
		jde := quarterFuncs[q](y)
		if jde > target {
			return fromJDE(jde), nil
		}
		y += 0.5 / lunationsPerYear
	}
	return time.Time{}, fmt.Errorf("no %s moon found after %s", q, after.Format(time.RFC3339))
}

func decimalYear(t time.Time) float64 {
	t = t.UTC()
	dayFrac := float64(t.Hour()*3600+t.Minute()*60+t.Second()) / 86400
	return float64(t.Year()) + (float64(t.YearDay()-1)+dayFrac)/365.25
}

func toJDE(t time.Time) float64 {
	return julian.TimeToJD(t.UTC().Add(deltaT))
}

func fromJDE(jde float64) time.Time {
	return julian.JDToTime(jde).Add(-deltaT).UTC()
}
