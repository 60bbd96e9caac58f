package telemetry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/motorpool/evolve"
)

var _ evolve.ChampionLedger = (*HighScores)(nil)

func TestHighScoresOrdering(t *testing.T) {
	hs := NewHighScores(10)

	hs.Record(0, 3, 12.0)
	hs.Record(1, 7, 30.0)
	hs.Record(2, 1, 21.0)

	entries := hs.Entries()
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	wantFitness := []float64{30.0, 21.0, 12.0}
	for i, e := range entries {
		if e.Fitness != wantFitness[i] {
			t.Errorf("rank %d fitness = %g, want %g", i+1, e.Fitness, wantFitness[i])
		}
		if e.Rank != i+1 {
			t.Errorf("entry %d rank = %d, want %d", i, e.Rank, i+1)
		}
	}
}

func TestHighScoresTieKeepsEarlierGeneration(t *testing.T) {
	hs := NewHighScores(10)
	hs.Record(5, 0, 10.0)
	hs.Record(2, 0, 10.0)

	entries := hs.Entries()
	if entries[0].Generation != 2 || entries[1].Generation != 5 {
		t.Errorf("tie order = generations [%d, %d], want earlier generation first",
			entries[0].Generation, entries[1].Generation)
	}
}

func TestHighScoresCapacity(t *testing.T) {
	hs := NewHighScores(3)
	for gen := 0; gen < 10; gen++ {
		hs.Record(gen, 0, float64(gen))
	}

	if hs.Len() != 3 {
		t.Fatalf("len = %d, want 3", hs.Len())
	}
	best, ok := hs.Best()
	if !ok || best.Fitness != 9.0 {
		t.Errorf("best = %+v, want fitness 9", best)
	}
	entries := hs.Entries()
	if entries[2].Fitness != 7.0 {
		t.Errorf("cutoff fitness = %g, want 7", entries[2].Fitness)
	}
}

func TestHighScoresRecordBelowCutoff(t *testing.T) {
	hs := NewHighScores(2)
	hs.Record(0, 0, 5.0)
	hs.Record(1, 0, 4.0)

	if hs.Record(2, 0, 1.0) {
		t.Error("entry below a full table's cutoff should be rejected")
	}
	if hs.Record(3, 0, 4.5) != true {
		t.Error("entry above the cutoff should be accepted")
	}
	if hs.Len() != 2 {
		t.Errorf("len = %d, want 2", hs.Len())
	}
}

func TestHighScoresReset(t *testing.T) {
	hs := NewHighScores(5)
	hs.Record(0, 0, 1.0)
	hs.Reset()

	if hs.Len() != 0 {
		t.Errorf("len after reset = %d, want 0", hs.Len())
	}
	if _, ok := hs.Best(); ok {
		t.Error("Best should report empty after reset")
	}
}

func TestHighScoresJSONRoundtrip(t *testing.T) {
	hs := NewHighScores(5)
	hs.Record(3, 14, 42.5)
	hs.Record(7, 2, 13.0)

	path := filepath.Join(t.TempDir(), "high_scores.json")
	data, err := hs.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadHighScores(path, 5)
	if err != nil {
		t.Fatalf("LoadHighScores: %v", err)
	}
	got := loaded.Entries()
	want := hs.Entries()
	if len(got) != len(want) {
		t.Fatalf("loaded %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestLoadHighScoresMissingFile(t *testing.T) {
	if _, err := LoadHighScores(filepath.Join(t.TempDir(), "nope.json"), 5); err == nil {
		t.Error("missing file should fail")
	}
}
