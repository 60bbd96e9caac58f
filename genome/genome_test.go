package genome

import (
	"math/rand"
	"testing"
)

func TestRandomDeterministic(t *testing.T) {
	a := Random(118, rand.New(rand.NewSource(42)))
	b := Random(118, rand.New(rand.NewSource(42)))

	if !a.Equal(b) {
		t.Error("same seed should produce identical genomes")
	}

	c := Random(118, rand.New(rand.NewSource(43)))
	if a.Equal(c) {
		t.Error("different seeds should produce different genomes")
	}
}

func TestRandomLength(t *testing.T) {
	for _, length := range []int{0, 1, 63, 64, 65, 118, 128} {
		g := Random(length, rand.New(rand.NewSource(1)))
		if g.Len() != length {
			t.Errorf("Len() = %d, want %d", g.Len(), length)
		}
	}
}

func TestWithBitImmutable(t *testing.T) {
	g := New(10)
	h := g.WithBit(3, 1)

	if g.Bit(3) != 0 {
		t.Error("WithBit mutated the receiver")
	}
	if h.Bit(3) != 1 {
		t.Error("WithBit did not set the bit in the result")
	}

	// Clearing works too
	i := h.WithBit(3, 0)
	if i.Bit(3) != 0 {
		t.Error("WithBit did not clear the bit")
	}
}

func TestBitOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for out-of-range index")
		}
	}()
	New(8).Bit(8)
}

func TestFlipBits(t *testing.T) {
	g := Random(100, rand.New(rand.NewSource(7)))
	positions := []int{0, 17, 63, 64, 99}
	h := g.FlipBits(positions)

	if g.HammingDistance(h) != len(positions) {
		t.Errorf("HammingDistance = %d, want %d", g.HammingDistance(h), len(positions))
	}
	for _, p := range positions {
		if g.Bit(p) == h.Bit(p) {
			t.Errorf("bit %d was not flipped", p)
		}
	}

	// Flipping the same positions again restores the original
	if !h.FlipBits(positions).Equal(g) {
		t.Error("double flip should restore the original genome")
	}
}

func TestField(t *testing.T) {
	// Set bits 2,3 and 64 -> field [2,4) = 3, field [62,66) = 0b0100
	g := New(70).WithBit(2, 1).WithBit(3, 1).WithBit(64, 1)

	if got := g.Field(2, 2); got != 3 {
		t.Errorf("Field(2,2) = %d, want 3", got)
	}
	if got := g.Field(62, 4); got != 4 {
		t.Errorf("Field(62,4) = %d, want 4 (word-boundary crossing)", got)
	}
	if got := g.Field(0, 2); got != 0 {
		t.Errorf("Field(0,2) = %d, want 0", got)
	}
}

func TestEqual(t *testing.T) {
	a := Random(50, rand.New(rand.NewSource(3)))
	b := a.WithBit(0, a.Bit(0)) // no-op copy

	if !a.Equal(b) {
		t.Error("identical genomes should be equal")
	}
	if a.Equal(New(51)) {
		t.Error("different lengths should not be equal")
	}
}

func TestMarshalRoundtrip(t *testing.T) {
	for _, length := range []int{0, 7, 8, 64, 118} {
		g := Random(length, rand.New(rand.NewSource(11)))

		text, err := g.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText: %v", err)
		}

		var h Genome
		if err := h.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", text, err)
		}
		if !g.Equal(h) {
			t.Errorf("roundtrip mismatch for length %d", length)
		}
	}
}

func TestUnmarshalMalformed(t *testing.T) {
	cases := []string{"", "nolength", "10:zz", "10:00", "-1:00"}
	for _, c := range cases {
		var g Genome
		if err := g.UnmarshalText([]byte(c)); err == nil {
			t.Errorf("UnmarshalText(%q) should fail", c)
		}
	}
}

func TestString(t *testing.T) {
	g := New(4).WithBit(1, 1).WithBit(3, 1)
	if got := g.String(); got != "0101" {
		t.Errorf("String() = %q, want %q", got, "0101")
	}
}
