package jyotish

import "testing"

func TestNakshatraOf(t *testing.T) {
	tests := []struct {
		lon  float64
		want string
	}{
		{0, "Ashwini"},
		{13.33, "Ashwini"},
		{13.34, "Bharani"},
		{41, "Rohini"},
		{121, "Magha"},
		{180, "Chitra"},
		{359.99, "Revati"},
		{360, "Ashwini"},
	}

	for _, tt := range tests {
		got := NakshatraOf(tt.lon)
		if got.Name != tt.want {
			t.Errorf("NakshatraOf(%v) = %q, want %q", tt.lon, got.Name, tt.want)
		}
	}
}

func TestNakshatraOf_IndexRange(t *testing.T) {
	for lon := 0.0; lon < 360; lon += 0.5 {
		n := NakshatraOf(lon)
		if n.Index < 0 || n.Index > 26 {
			t.Fatalf("NakshatraOf(%v).Index = %d, out of [0, 26]", lon, n.Index)
		}
		want := int(lon / NakshatraWidth)
		if n.Index != want {
			t.Fatalf("NakshatraOf(%v).Index = %d, want %d", lon, n.Index, want)
		}
	}

	if got := NakshatraOf(359.99).Index; got != 26 {
		t.Errorf("NakshatraOf(359.99).Index = %d, want 26", got)
	}
}

func TestNakshatraTable(t *testing.T) {
	table := Nakshatras()
	if len(table) != 27 {
		t.Fatalf("table has %d entries, want 27", len(table))
	}

	// Rulers repeat in the Vimshottari sequence every nine mansions.
	for i, n := range table {
		if n.Index != i {
			t.Errorf("entry %d has Index %d", i, n.Index)
		}
		if n.Name == "" || n.Ruler == "" || n.Meaning == "" {
			t.Errorf("entry %d is incomplete: %+v", i, n)
		}
		if i >= 9 && n.Ruler != table[i-9].Ruler {
			t.Errorf("%s ruler = %s, want %s", n.Name, n.Ruler, table[i-9].Ruler)
		}
	}

	// Mutating the copy must not affect lookups.
	table[0].Name = "changed"
	if NakshatraOf(0).Name != "Ashwini" {
		t.Error("Nakshatras() returned the backing table")
	}
}

func TestPada(t *testing.T) {
	tests := []struct {
		lon  float64
		want int
	}{
		{0, 1},
		{3.4, 2},
		{6.7, 3},
		{10.1, 4},
		{13.3, 4},
		{13.34, 1},
	}

	for _, tt := range tests {
		if got := Pada(tt.lon); got != tt.want {
			t.Errorf("Pada(%v) = %d, want %d", tt.lon, got, tt.want)
		}
	}
}
