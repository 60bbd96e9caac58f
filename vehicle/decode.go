package vehicle

import (
	"errors"
	"fmt"
	"math"

	"github.com/pthm-cable/motorpool/genome"
)

// ErrInvalidGenomeLength reports a genome whose length does not match the
// decoder's schema. This is an internal invariant violation: every genome in
// a run is constructed at schema length.
var ErrInvalidGenomeLength = errors.New("vehicle: genome length does not match schema")

// Wheel is one decoded wheel.
type Wheel struct {
	Attachment int     `json:"attachment"` // index into BodyDistances
	Radius     float64 `json:"radius"`
	Density    float64 `json:"density"`
}

// Definition is the decoded phenotype handed to the simulation harness.
// Every field lies within its schema range.
type Definition struct {
	BodyDistances []float64 `json:"body_distances"`
	Wheels        []Wheel   `json:"wheels"`
	Torque        float64   `json:"torque"`
	Speed         float64   `json:"speed"`
}

// Decoder maps genomes to vehicle definitions. Decoding is total: any genome
// of schema length produces an in-range definition, by construction.
type Decoder struct {
	schema Schema
}

// NewDecoder creates a decoder for the given schema.
func NewDecoder(s Schema) Decoder {
	return Decoder{schema: s}
}

// Schema returns the decoder's bit layout.
func (d Decoder) Schema() Schema { return d.schema }

// Decode converts a genome into a vehicle definition. It is a pure function
// of the genome: no hidden state, no randomness.
func (d Decoder) Decode(g genome.Genome) (Definition, error) {
	s := d.schema
	if g.Len() != s.GenomeLength() {
		return Definition{}, fmt.Errorf("%w: got %d bits, schema needs %d",
			ErrInvalidGenomeLength, g.Len(), s.GenomeLength())
	}

	offset := 0
	next := func(width int) uint64 {
		v := g.Field(offset, width)
		offset += width
		return v
	}

	def := Definition{
		BodyDistances: make([]float64, s.BodyPoints),
		Wheels:        make([]Wheel, s.Wheels),
	}

	for i := range def.BodyDistances {
		def.BodyDistances[i] = mapLinear(next(s.BodyBits), s.BodyBits, s.BodyDistance)
	}

	indexBits := s.IndexBits()
	for i := range def.Wheels {
		def.Wheels[i] = Wheel{
			// Index fields wrap via modulo so every raw value lands on a
			// real body point even when BodyPoints is not a power of two.
			Attachment: int(next(indexBits) % uint64(s.BodyPoints)),
			Radius:     mapLinear(next(s.RadiusBits), s.RadiusBits, s.WheelRadius),
			Density:    mapRoot(next(s.DensityBits), s.DensityBits, s.WheelDensity),
		}
	}

	def.Torque = mapLinear(next(s.TorqueBits), s.TorqueBits, s.Torque)
	def.Speed = mapLinear(next(s.SpeedBits), s.SpeedBits, s.Speed)

	return def, nil
}

// mapLinear maps a raw field value onto [r.Min, r.Max].
func mapLinear(raw uint64, width int, r Range) float64 {
	maxRaw := float64(uint64(1)<<uint(width) - 1)
	if maxRaw == 0 {
		return r.Min
	}
	return clamp(r.Min+(r.Max-r.Min)*float64(raw)/maxRaw, r)
}

// mapRoot maps a raw field value through a square-root curve onto
// [r.Min, r.Max], biasing decoded values toward the upper end. Wheel density
// uses this so small raw changes near zero matter more.
func mapRoot(raw uint64, width int, r Range) float64 {
	maxRaw := float64(uint64(1)<<uint(width) - 1)
	if maxRaw == 0 {
		return r.Min
	}
	u := math.Sqrt(float64(raw) / maxRaw)
	return clamp(r.Min+(r.Max-r.Min)*u, r)
}

// clamp re-bounds a mapped value; floating point rounding can land a hair
// outside the range.
func clamp(v float64, r Range) float64 {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}
