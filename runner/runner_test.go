package runner

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/motorpool/config"
	"github.com/pthm-cable/motorpool/harness"
	"github.com/pthm-cable/motorpool/storage"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	cfg.Evolution.PopulationSize = 10
	cfg.Evolution.CloneCount = 1
	cfg.Evolution.RandomCount = 1
	cfg.Track.Length = 100
	return cfg
}

func testHarness(cfg *config.Config, seed int64) harness.Harness {
	return harness.NewRollout(harness.NewTrack(cfg.Track, seed))
}

func TestRunnerCompletesRun(t *testing.T) {
	cfg := testConfig(t)
	store := storage.NewMemoryStore()
	r, err := New(cfg, testHarness(cfg, 42), store, Options{Seed: 42, Generations: 3})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	summary, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if summary.Generations != 3 {
		t.Errorf("completed %d generations, want 3", summary.Generations)
	}
	if summary.RunID == "" {
		t.Error("run id is empty")
	}
	if summary.Best.Fitness <= 0 {
		t.Errorf("best fitness = %g, expected forward progress", summary.Best.Fitness)
	}

	ctx := context.Background()
	run, ok, err := store.GetRun(ctx, summary.RunID)
	if err != nil || !ok {
		t.Fatalf("run not archived: ok=%v err=%v", ok, err)
	}
	if run.Generations != 3 || run.BestFitness != summary.Best.Fitness {
		t.Errorf("archived run = %+v", run)
	}

	recs, err := store.GetGenerations(ctx, summary.RunID)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 3 {
		t.Fatalf("archived %d generations, want 3", len(recs))
	}
	for i, rec := range recs {
		if rec.Generation != i {
			t.Errorf("record %d has generation %d", i, rec.Generation)
		}
		if !strings.HasPrefix(rec.ChampionGenome, "118:") {
			t.Errorf("champion genome %q lacks the length prefix", rec.ChampionGenome)
		}
	}

	scores, err := store.GetHighScores(ctx, summary.RunID)
	if err != nil {
		t.Fatal(err)
	}
	if len(scores) == 0 {
		t.Error("no high scores archived")
	}
	if scores[0].Fitness != summary.Best.Fitness {
		t.Errorf("top archived score %g, summary best %g", scores[0].Fitness, summary.Best.Fitness)
	}
}

func TestRunnerDeterministic(t *testing.T) {
	run := func() Summary {
		cfg := testConfig(t)
		r, err := New(cfg, testHarness(cfg, 7), storage.NewMemoryStore(), Options{Seed: 7, Generations: 3})
		if err != nil {
			t.Fatal(err)
		}
		summary, err := r.Run(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		return summary
	}

	a := run()
	b := run()
	if a.Best.Fitness != b.Best.Fitness ||
		a.Best.Generation != b.Best.Generation ||
		a.Best.IndividualID != b.Best.IndividualID {
		t.Errorf("same seed produced different champions: %+v vs %+v", a.Best, b.Best)
	}
}

func TestRunnerWritesOutput(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()
	r, err := New(cfg, testHarness(cfg, 1), storage.NewMemoryStore(), Options{
		Seed: 1, Generations: 2, OutputDir: dir,
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"generations.csv", "high_scores.json", "config.yaml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing output file %s: %v", name, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "generations.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Errorf("generations.csv has %d lines, want header plus 2 rows", len(lines))
	}
}

func TestRunnerCancellation(t *testing.T) {
	cfg := testConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, err := New(cfg, testHarness(cfg, 1), storage.NewMemoryStore(), Options{Seed: 1, Generations: 100})
	if err != nil {
		t.Fatal(err)
	}
	summary, err := r.Run(ctx)
	if err != nil {
		t.Fatalf("cancelled run should still finalize: %v", err)
	}
	if summary.Generations != 0 {
		t.Errorf("completed %d generations under a cancelled context", summary.Generations)
	}
}

func TestRunnerFallsBackOnUnknownOperators(t *testing.T) {
	cfg := testConfig(t)
	cfg.Evolution.Operators = "no-such-ops"
	r, err := New(cfg, testHarness(cfg, 1), storage.NewMemoryStore(), Options{Seed: 1, Generations: 1})
	if err != nil {
		t.Fatalf("unknown operator set should fall back to builtin: %v", err)
	}
	if _, err := r.Run(context.Background()); err != nil {
		t.Errorf("Run with fallback operators: %v", err)
	}
}
