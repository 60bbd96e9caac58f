// Package main provides CMA-ES tuning for evolution engine parameters.
package main

import (
	"math"

	"github.com/pthm-cable/motorpool/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all tunable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of tunable evolution parameters.
// Population size is locked; the quotas and operator knobs move.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "crossover_rate", Path: "evolution.crossover_rate", Min: 0.05, Max: 0.95, Default: 0.4},
			{Name: "mutation_flips", Path: "evolution.mutation_flip_count", Min: 1, Max: 10, Default: 3},
			{Name: "tournament_size", Path: "evolution.tournament_size", Min: 2, Max: 6, Default: 3},
			{Name: "clone_count", Path: "evolution.clone_count", Min: 0, Max: 5, Default: 2},
			{Name: "random_count", Path: "evolution.random_count", Min: 0, Max: 5, Default: 2},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := v[i]
		if val < spec.Min {
			val = spec.Min
		}
		if val > spec.Max {
			val = spec.Max
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct. Integer knobs
// round to the nearest value; quotas are capped so they never exceed the
// population.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)

	cfg.Evolution.CrossoverRate = clamped[0]
	cfg.Evolution.MutationFlipCount = int(math.Round(clamped[1]))
	cfg.Evolution.TournamentSize = int(math.Round(clamped[2]))
	cfg.Evolution.CloneCount = int(math.Round(clamped[3]))
	cfg.Evolution.RandomCount = int(math.Round(clamped[4]))

	p := cfg.Evolution.PopulationSize
	if cfg.Evolution.CloneCount+cfg.Evolution.RandomCount > p {
		over := cfg.Evolution.CloneCount + cfg.Evolution.RandomCount - p
		cfg.Evolution.RandomCount -= over
		if cfg.Evolution.RandomCount < 0 {
			cfg.Evolution.CloneCount += cfg.Evolution.RandomCount
			cfg.Evolution.RandomCount = 0
		}
	}
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Evolution.CrossoverRate,
		float64(cfg.Evolution.MutationFlipCount),
		float64(cfg.Evolution.TournamentSize),
		float64(cfg.Evolution.CloneCount),
		float64(cfg.Evolution.RandomCount),
	}
}
