package astro

import (
	"math"
	"testing"
)

func TestNormalizeDegrees(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{359.5, 359.5},
		{360, 0},
		{725, 5},
		{-10, 350},
		{-370, 350},
		{-1e-15, 0},
	}

	for _, tt := range tests {
		got := NormalizeDegrees(tt.in)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("NormalizeDegrees(%v) = %v, want %v", tt.in, got, tt.want)
		}
		if got < 0 || got >= 360 {
			t.Errorf("NormalizeDegrees(%v) = %v, out of [0, 360)", tt.in, got)
		}
	}
}

func TestUnwrapDelta(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"small forward", 0.5, 0.5},
		{"small backward", -0.2, -0.2},
		{"backward across zero", 359.5 - 0.3, -0.8},
		{"forward across zero", 0.4 - 359.8, 0.6},
		{"at threshold stays", 300, 300},
		{"large negative", -359, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UnwrapDelta(tt.in)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("UnwrapDelta(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSeparation(t *testing.T) {
	tests := []struct {
		a, b, want float64
	}{
		{0, 0, 0},
		{10, 20, 10},
		{350, 10, 20},
		{0, 180, 180},
		{90, 270, 180},
		{-30, 30, 60},
	}

	for _, tt := range tests {
		got := Separation(tt.a, tt.b)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Separation(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
