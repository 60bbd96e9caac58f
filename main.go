package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/pthm-cable/motorpool/config"
	"github.com/pthm-cable/motorpool/harness"
	"github.com/pthm-cable/motorpool/runner"
	"github.com/pthm-cable/motorpool/storage"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	generations := flag.Int("generations", 100, "Number of generations to evolve")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, high scores, and config snapshot")
	storePath := flag.String("store", "", "SQLite archive path (empty = use config, in-memory if unset there too)")
	logStats := flag.Bool("log-stats", false, "Output per-generation stats via slog")

	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	archivePath := cfg.Storage.Path
	if *storePath != "" {
		archivePath = *storePath
	}
	store := storage.New(archivePath)
	defer store.Close()

	track := harness.NewTrack(cfg.Track, rngSeed)
	rollout := harness.NewRollout(track)

	r, err := runner.New(cfg, rollout, store, runner.Options{
		Seed:        rngSeed,
		Generations: *generations,
		OutputDir:   *outputDir,
		LogStats:    *logStats || cfg.Telemetry.LogStats,
	})
	if err != nil {
		slog.Error("failed to build runner", "error", err)
		os.Exit(1)
	}

	// Stop cleanly between generations on Ctrl-C.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := r.Run(ctx)
	if err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}

	slog.Info("run complete",
		"run_id", summary.RunID,
		"generations", humanize.Comma(int64(summary.Generations)),
		"individuals_evaluated", humanize.Comma(int64(summary.Generations*cfg.Evolution.PopulationSize)),
		"best_fitness", summary.Best.Fitness,
		"best_generation", summary.Best.Generation,
		"elapsed", summary.Elapsed.Round(time.Millisecond).String(),
	)
}
