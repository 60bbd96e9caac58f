// Package vehicle decodes genomes into simulatable vehicle definitions.
package vehicle

import (
	"fmt"
	"math/bits"
)

// Range bounds a decoded numeric field.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Schema fixes the genome's bit layout and the numeric range of every decoded
// field. Field boundaries and bit order never change within a run; the genome
// length is the sum of all field widths.
type Schema struct {
	BodyPoints int // polygon vertex count
	Wheels     int

	BodyBits    int // width of each body-point distance field
	RadiusBits  int
	DensityBits int
	TorqueBits  int
	SpeedBits   int

	BodyDistance Range
	WheelRadius  Range
	WheelDensity Range
	Torque       Range
	Speed        Range
}

// DefaultSchema returns the standard car layout: an 8-vertex body with two
// wheels, 8-bit numeric fields.
func DefaultSchema() Schema {
	return Schema{
		BodyPoints:  8,
		Wheels:      2,
		BodyBits:    8,
		RadiusBits:  8,
		DensityBits: 8,
		TorqueBits:  8,
		SpeedBits:   8,
		BodyDistance: Range{Min: 0.5, Max: 4.0},
		WheelRadius:  Range{Min: 0.2, Max: 1.0},
		WheelDensity: Range{Min: 0.5, Max: 2.0},
		Torque:       Range{Min: 10, Max: 100},
		Speed:        Range{Min: 5, Max: 50},
	}
}

// IndexBits returns the width of a wheel attachment index field: enough bits
// to address every body point. Raw values beyond BodyPoints wrap via modulo.
func (s Schema) IndexBits() int {
	return bits.Len(uint(s.BodyPoints - 1))
}

// GenomeLength returns the total bit count a genome must have for this schema.
func (s Schema) GenomeLength() int {
	return s.BodyPoints*s.BodyBits +
		s.Wheels*(s.IndexBits()+s.RadiusBits+s.DensityBits) +
		s.TorqueBits + s.SpeedBits
}

// Validate rejects layouts that cannot produce a well-formed definition.
func (s Schema) Validate() error {
	if s.BodyPoints < 3 {
		return fmt.Errorf("vehicle: body needs at least 3 points, got %d", s.BodyPoints)
	}
	if s.Wheels < 1 {
		return fmt.Errorf("vehicle: need at least 1 wheel, got %d", s.Wheels)
	}
	for _, w := range []int{s.BodyBits, s.RadiusBits, s.DensityBits, s.TorqueBits, s.SpeedBits} {
		if w < 1 || w > 32 {
			return fmt.Errorf("vehicle: field width %d outside [1,32]", w)
		}
	}
	for _, r := range []Range{s.BodyDistance, s.WheelRadius, s.WheelDensity, s.Torque, s.Speed} {
		if r.Min > r.Max {
			return fmt.Errorf("vehicle: range min %g above max %g", r.Min, r.Max)
		}
	}
	return nil
}
