package jyotish

import (
	"testing"

	"github.com/litescript/ls-cosmos/internal/ephem"
)

func TestIsCombust(t *testing.T) {
	tests := []struct {
		name  string
		body  ephem.Body
		lon   float64
		sun   float64
		retro bool
		want  bool
	}{
		{"moon near new", ephem.Moon, 5, 0, false, true},
		{"moon past orb", ephem.Moon, 13, 0, false, false},
		{"mars across zero", ephem.Mars, 350, 5, false, true},
		{"mercury direct inside 14", ephem.Mercury, 13, 0, false, true},
		{"mercury retro outside 12", ephem.Mercury, 13, 0, true, false},
		{"venus retro inside 8", ephem.Venus, 352, 359, true, true},
		{"saturn far", ephem.Saturn, 180, 0, false, false},
		{"sun never", ephem.Sun, 0, 0, false, false},
		{"node never", ephem.Rahu, 1, 0, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsCombust(tt.body, tt.lon, tt.sun, tt.retro); got != tt.want {
				t.Errorf("IsCombust(%v, %v, %v, %v) = %v, want %v", tt.body, tt.lon, tt.sun, tt.retro, got, tt.want)
			}
		})
	}
}
