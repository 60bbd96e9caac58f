package main

import (
	"context"
	"log/slog"

	"github.com/pthm-cable/motorpool/config"
	"github.com/pthm-cable/motorpool/harness"
	"github.com/pthm-cable/motorpool/runner"
	"github.com/pthm-cable/motorpool/storage"
)

// FitnessEvaluator runs short evolution runs with candidate parameters and
// scores them by the best distance achieved, averaged over seeds.
type FitnessEvaluator struct {
	params      *ParamVector
	generations int
	seeds       []int64
	baseCfg     *config.Config

	lastBest float64
}

// NewFitnessEvaluator creates a fitness evaluator.
func NewFitnessEvaluator(params *ParamVector, generations int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		generations: generations,
		seeds:       seeds,
		baseCfg:     baseCfg,
	}
}

// Evaluate runs the candidate parameters over all seeds and returns the
// negated mean best fitness, since the optimizer minimizes.
func (fe *FitnessEvaluator) Evaluate(raw []float64) float64 {
	cfg := *fe.baseCfg
	fe.params.ApplyToConfig(&cfg, raw)
	if err := cfg.Validate(); err != nil {
		// Out-of-range combinations score as useless rather than aborting
		// the search.
		slog.Warn("candidate rejected", "error", err)
		return 0
	}

	total := 0.0
	for _, seed := range fe.seeds {
		track := harness.NewTrack(cfg.Track, seed)
		r, err := runner.New(&cfg, harness.NewRollout(track), storage.NewMemoryStore(), runner.Options{
			Seed:        seed,
			Generations: fe.generations,
		})
		if err != nil {
			slog.Error("candidate run failed to start", "error", err)
			return 0
		}
		summary, err := r.Run(context.Background())
		if err != nil {
			slog.Error("candidate run failed", "error", err)
			return 0
		}
		total += summary.Best.Fitness
	}

	mean := total / float64(len(fe.seeds))
	fe.lastBest = mean
	return -mean
}

// LastBest returns the mean best fitness of the most recent evaluation.
func (fe *FitnessEvaluator) LastBest() float64 {
	return fe.lastBest
}
