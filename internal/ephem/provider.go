// Package ephem provides geocentric positions of the Sun, Moon and the
// visible planets, plus lunar phase events.
package ephem

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnsupportedBody is returned when a provider cannot position a body.
var ErrUnsupportedBody = errors.New("unsupported body")

// Body identifies a celestial body tracked by the calculator.
type Body int

const (
	Sun Body = iota
	Moon
	Mercury
	Venus
	Mars
	Jupiter
	Saturn
	Rahu
	Ketu
)

// Planets lists the five visible planets in traditional order.
var Planets = []Body{Mercury, Venus, Mars, Jupiter, Saturn}

// String returns the body name.
func (b Body) String() string {
	switch b {
	case Sun:
		return "Sun"
	case Moon:
		return "Moon"
	case Mercury:
		return "Mercury"
	case Venus:
		return "Venus"
	case Mars:
		return "Mars"
	case Jupiter:
		return "Jupiter"
	case Saturn:
		return "Saturn"
	case Rahu:
		return "Rahu"
	case Ketu:
		return "Ketu"
	default:
		return "unknown"
	}
}

// ParseBody parses a body name, case-sensitive as returned by String.
func ParseBody(s string) (Body, bool) {
	for b := Sun; b <= Ketu; b++ {
		if b.String() == s {
			return b, true
		}
	}
	return 0, false
}

// MarshalText encodes the body by name.
func (b Body) MarshalText() ([]byte, error) {
	if b < Sun || b > Ketu {
		return nil, fmt.Errorf("invalid body %d", int(b))
	}
	return []byte(b.String()), nil
}

// UnmarshalText decodes a body name.
func (b *Body) UnmarshalText(text []byte) error {
	parsed, ok := ParseBody(string(text))
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedBody, string(text))
	}
	*b = parsed
	return nil
}

// IsNode reports whether the body is one of the lunar nodes.
func (b Body) IsNode() bool {
	return b == Rahu || b == Ketu
}

// Quarter is a lunar quarter phase index.
type Quarter int

const (
	QuarterNew   Quarter = 0
	QuarterFirst Quarter = 1
	QuarterFull  Quarter = 2
	QuarterLast  Quarter = 3
)

// String returns the quarter name.
func (q Quarter) String() string {
	switch q {
	case QuarterNew:
		return "new"
	case QuarterFirst:
		return "first quarter"
	case QuarterFull:
		return "full"
	case QuarterLast:
		return "third quarter"
	default:
		return "unknown"
	}
}

// MoonQuarter is a single lunar quarter event.
type MoonQuarter struct {
	Quarter Quarter
	Time    time.Time
}

// Provider defines the interface for ephemeris sources.
type Provider interface {
	// Name returns the provider name for display/logging.
	Name() string

	// EclipticLongitude returns the geocentric tropical ecliptic longitude
	// of a body in degrees, normalized to [0, 360).
	// Only Sun, Moon and the five planets are supported.
	EclipticLongitude(body Body, t time.Time) (float64, error)

	// MeanNode returns the longitude of the Moon's mean ascending node.
	MeanNode(t time.Time) (float64, error)

	// MoonIllumination returns the illuminated fraction of the Moon's disk (0..1).
	MoonIllumination(t time.Time) (float64, error)

	// SearchMoonQuarter returns the first quarter event of any kind
	// strictly after t.
	SearchMoonQuarter(after time.Time) (MoonQuarter, error)

	// NextMoonQuarter returns the quarter event following prev.
	NextMoonQuarter(prev MoonQuarter) (MoonQuarter, error)
}
