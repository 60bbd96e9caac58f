// Package genome implements the fixed-length bit vector that encodes one
// individual's heritable traits.
package genome

import (
	"encoding/hex"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
)

const wordBits = 64

// Genome is an immutable fixed-length bit vector. All transforms return new
// values, so concurrently breeding individuals never race on shared bits.
type Genome struct {
	length int
	words  []uint64
}

// New returns an all-zero genome of the given length.
func New(length int) Genome {
	if length < 0 {
		panic(fmt.Sprintf("genome: negative length %d", length))
	}
	return Genome{length: length, words: make([]uint64, wordsFor(length))}
}

// Random returns a genome of the given length with each bit drawn
// independently from rng.
func Random(length int, rng *rand.Rand) Genome {
	g := New(length)
	for i := range g.words {
		g.words[i] = rng.Uint64()
	}
	g.maskTail()
	return g
}

// Len returns the number of bits.
func (g Genome) Len() int { return g.length }

// Bit returns the bit at position i. Panics if i is outside [0, Len).
func (g Genome) Bit(i int) uint8 {
	g.check(i)
	return uint8((g.words[i/wordBits] >> (uint(i) % wordBits)) & 1)
}

// WithBit returns a copy with bit i set to v (0 or 1). Panics if i is
// outside [0, Len).
func (g Genome) WithBit(i int, v uint8) Genome {
	g.check(i)
	out := g.clone()
	mask := uint64(1) << (uint(i) % wordBits)
	if v == 0 {
		out.words[i/wordBits] &^= mask
	} else {
		out.words[i/wordBits] |= mask
	}
	return out
}

// FlipBits returns a copy with every listed position inverted. Positions must
// be in range. A duplicated position flips twice and cancels out, so callers
// that need an exact flip count must pass distinct positions.
func (g Genome) FlipBits(positions []int) Genome {
	out := g.clone()
	for _, i := range positions {
		g.check(i)
		out.words[i/wordBits] ^= uint64(1) << (uint(i) % wordBits)
	}
	return out
}

// Field extracts the bit subrange [offset, offset+width) as an unsigned
// integer, lowest position first. width must be at most 64.
func (g Genome) Field(offset, width int) uint64 {
	if width < 0 || width > 64 {
		panic(fmt.Sprintf("genome: field width %d out of range", width))
	}
	if offset < 0 || offset+width > g.length {
		panic(fmt.Sprintf("genome: field [%d,%d) outside genome of length %d", offset, offset+width, g.length))
	}
	var v uint64
	for i := 0; i < width; i++ {
		pos := offset + i
		bit := (g.words[pos/wordBits] >> (uint(pos) % wordBits)) & 1
		v |= bit << uint(i)
	}
	return v
}

// Equal reports whether two genomes have identical length and bits.
func (g Genome) Equal(other Genome) bool {
	if g.length != other.length {
		return false
	}
	for i := range g.words {
		if g.words[i] != other.words[i] {
			return false
		}
	}
	return true
}

// HammingDistance returns the number of bit positions where the genomes
// differ. Panics if the lengths differ.
func (g Genome) HammingDistance(other Genome) int {
	if g.length != other.length {
		panic(fmt.Sprintf("genome: length mismatch %d vs %d", g.length, other.length))
	}
	d := 0
	for i := range g.words {
		x := g.words[i] ^ other.words[i]
		for x != 0 {
			x &= x - 1
			d++
		}
	}
	return d
}

// String renders the genome as '0'/'1' characters, position 0 first.
func (g Genome) String() string {
	var sb strings.Builder
	sb.Grow(g.length)
	for i := 0; i < g.length; i++ {
		if g.Bit(i) == 0 {
			sb.WriteByte('0')
		} else {
			sb.WriteByte('1')
		}
	}
	return sb.String()
}

// MarshalText encodes the genome as "<length>:<hex>" where each byte packs
// eight consecutive positions, lowest position in the lowest bit.
func (g Genome) MarshalText() ([]byte, error) {
	bytes := make([]byte, (g.length+7)/8)
	for i := 0; i < g.length; i++ {
		if g.Bit(i) == 1 {
			bytes[i/8] |= 1 << (uint(i) % 8)
		}
	}
	return []byte(fmt.Sprintf("%d:%s", g.length, hex.EncodeToString(bytes))), nil
}

// UnmarshalText decodes the format produced by MarshalText.
func (g *Genome) UnmarshalText(text []byte) error {
	s := string(text)
	sep := strings.IndexByte(s, ':')
	if sep < 0 {
		return fmt.Errorf("genome: malformed text %q", s)
	}
	length, err := strconv.Atoi(s[:sep])
	if err != nil || length < 0 {
		return fmt.Errorf("genome: malformed length in %q", s)
	}
	bytes, err := hex.DecodeString(s[sep+1:])
	if err != nil {
		return fmt.Errorf("genome: malformed hex in %q: %w", s, err)
	}
	if len(bytes) != (length+7)/8 {
		return fmt.Errorf("genome: %d hex bytes for length %d", len(bytes), length)
	}
	out := New(length)
	for i := 0; i < length; i++ {
		if bytes[i/8]>>(uint(i)%8)&1 == 1 {
			out.words[i/wordBits] |= 1 << (uint(i) % wordBits)
		}
	}
	*g = out
	return nil
}

func (g Genome) clone() Genome {
	words := make([]uint64, len(g.words))
	copy(words, g.words)
	return Genome{length: g.length, words: words}
}

func (g Genome) check(i int) {
	if i < 0 || i >= g.length {
		panic(fmt.Sprintf("genome: bit index %d out of range [0,%d)", i, g.length))
	}
}

// maskTail zeroes the unused bits of the last word so Equal and
// HammingDistance can compare whole words.
func (g Genome) maskTail() {
	rem := g.length % wordBits
	if rem != 0 && len(g.words) > 0 {
		g.words[len(g.words)-1] &= (1 << uint(rem)) - 1
	}
}

func wordsFor(length int) int {
	return (length + wordBits - 1) / wordBits
}
