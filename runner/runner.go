package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pthm-cable/motorpool/config"
	"github.com/pthm-cable/motorpool/evolve"
	"github.com/pthm-cable/motorpool/harness"
	"github.com/pthm-cable/motorpool/storage"
	"github.com/pthm-cable/motorpool/telemetry"
	"github.com/pthm-cable/motorpool/vehicle"
)

// Options carries per-run settings that come from the CLI rather than the
// config file.
type Options struct {
	Seed        int64
	Generations int
	OutputDir   string
	LogStats    bool
}

// Summary is the headline result of a completed run.
type Summary struct {
	RunID       string
	Generations int
	Best        telemetry.Entry
	Elapsed     time.Duration
}

// Runner drives the full evolution loop: decode each individual, score it on
// the harness, report fitness, record telemetry, advance, repeat.
type Runner struct {
	cfg     *config.Config
	opts    Options
	manager *evolve.Manager
	decoder vehicle.Decoder
	harness harness.Harness
	scores  *telemetry.HighScores
	output  *telemetry.OutputManager
	store   storage.Store
	runID   string
}

// New wires a runner from config, harness, and archive store.
func New(cfg *config.Config, h harness.Harness, store storage.Store, opts Options) (*Runner, error) {
	schema := cfg.Vehicle.Schema()
	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("validating schema: %w", err)
	}
	decoder := vehicle.NewDecoder(schema)

	ops, err := evolve.NewOperators(cfg.Evolution.Operators)
	if err != nil {
		// A missing operator set is a recoverable misconfiguration.
		slog.Warn("falling back to builtin operators", "error", err)
		ops = evolve.Builtin{}
	}

	scores := telemetry.NewHighScores(cfg.HighScores.Capacity)
	hooks := evolve.Hooks{
		OnChampion: func(generation, individualID int, fitness float64) {
			slog.Info("new high score",
				"generation", generation,
				"individual", individualID,
				"fitness", fitness)
		},
	}

	manager, err := evolve.NewManager(cfg.Evolution, schema.GenomeLength(), opts.Seed, evolve.ManagerOptions{
		Operators: ops,
		Ledger:    scores,
		Hooks:     hooks,
	})
	if err != nil {
		return nil, fmt.Errorf("building manager: %w", err)
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := output.WriteConfig(cfg); err != nil {
		return nil, err
	}

	return &Runner{
		cfg:     cfg,
		opts:    opts,
		manager: manager,
		decoder: decoder,
		harness: h,
		scores:  scores,
		output:  output,
		store:   store,
		runID:   uuid.NewString(),
	}, nil
}

// RunID returns the unique id assigned to this run.
func (r *Runner) RunID() string {
	return r.runID
}

// Run executes the configured number of generations. The context cancels
// between generations; partial results up to that point are archived.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	started := time.Now()
	defer r.output.Close()

	if err := r.store.Init(ctx); err != nil {
		return Summary{}, fmt.Errorf("initializing store: %w", err)
	}
	run := storage.RunRecord{
		ID:        r.runID,
		Seed:      r.opts.Seed,
		StartedAt: started.UTC(),
	}
	if err := r.store.SaveRun(ctx, run); err != nil {
		return Summary{}, fmt.Errorf("registering run: %w", err)
	}

	slog.Info("run starting",
		"run_id", r.runID,
		"seed", r.opts.Seed,
		"generations", r.opts.Generations,
		"population", r.cfg.Evolution.PopulationSize)

	completed := 0
	for gen := 0; gen < r.opts.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			slog.Warn("run cancelled", "generation", gen)
			break
		}

		if err := r.runGeneration(ctx); err != nil {
			return Summary{}, fmt.Errorf("generation %d: %w", gen, err)
		}
		completed++
	}

	if err := r.archiveHighScores(ctx); err != nil {
		return Summary{}, err
	}

	best, _ := r.scores.Best()
	run.Generations = completed
	run.BestFitness = best.Fitness
	if err := r.store.SaveRun(ctx, run); err != nil {
		return Summary{}, fmt.Errorf("finalizing run: %w", err)
	}

	return Summary{
		RunID:       r.runID,
		Generations: completed,
		Best:        best,
		Elapsed:     time.Since(started),
	}, nil
}

// runGeneration evaluates every individual, records telemetry, and advances.
func (r *Runner) runGeneration(ctx context.Context) error {
	generation := r.manager.Generation()

	for _, ind := range r.manager.Population() {
		def, err := r.decoder.Decode(ind.Genome)
		if err != nil {
			return fmt.Errorf("decoding individual %d: %w", ind.ID, err)
		}
		if err := r.manager.ReportFitness(ind.ID, r.harness.Evaluate(def)); err != nil {
			return err
		}
	}

	evaluated := r.manager.Population()
	stats := telemetry.ComputeGenerationStats(generation, evaluated, r.cfg.Telemetry.DiversitySample)
	if r.opts.LogStats {
		slog.Info("generation complete", "stats", stats)
	}
	if err := r.output.WriteGeneration(stats); err != nil {
		slog.Error("failed to write generation stats", "error", err)
	}

	champion := championOf(evaluated)
	text, err := champion.Genome.MarshalText()
	if err != nil {
		return err
	}
	rec := storage.GenerationRecord{
		RunID:          r.runID,
		Generation:     generation,
		BestFitness:    stats.Best,
		MeanFitness:    stats.Mean,
		Diversity:      stats.Diversity,
		ChampionGenome: string(text),
	}
	if err := r.store.SaveGeneration(ctx, rec); err != nil {
		slog.Error("failed to archive generation", "error", err)
	}

	return r.manager.Advance()
}

// archiveHighScores mirrors the in-memory table to JSON and the store.
func (r *Runner) archiveHighScores(ctx context.Context) error {
	if err := r.output.WriteHighScores(r.scores); err != nil {
		slog.Error("failed to write high scores", "error", err)
	}

	entries := r.scores.Entries()
	records := make([]storage.HighScoreRecord, len(entries))
	for i, e := range entries {
		records[i] = storage.HighScoreRecord{
			RunID:        r.runID,
			Rank:         e.Rank,
			Generation:   e.Generation,
			IndividualID: e.IndividualID,
			Fitness:      e.Fitness,
		}
	}
	if err := r.store.SaveHighScores(ctx, r.runID, records); err != nil {
		return fmt.Errorf("archiving high scores: %w", err)
	}
	return nil
}

// championOf returns the best evaluated individual, ties to the lowest id.
func championOf(pop evolve.Population) evolve.Individual {
	best := pop[0]
	for _, ind := range pop[1:] {
		if ind.Fitness > best.Fitness {
			best = ind
		}
	}
	return best
}
