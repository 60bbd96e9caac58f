package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}
	if om != nil {
		t.Fatal("empty dir should disable output")
	}

	// All methods are nil-safe.
	if err := om.WriteGeneration(GenerationStats{}); err != nil {
		t.Errorf("WriteGeneration on nil: %v", err)
	}
	if err := om.WriteHighScores(NewHighScores(1)); err != nil {
		t.Errorf("WriteHighScores on nil: %v", err)
	}
	if om.Dir() != "" {
		t.Errorf("Dir on nil = %q", om.Dir())
	}
	if err := om.Close(); err != nil {
		t.Errorf("Close on nil: %v", err)
	}
}

func TestOutputManagerGenerationsCSV(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	if err := om.WriteGeneration(GenerationStats{Generation: 0, Best: 5.5, Mean: 2.0}); err != nil {
		t.Fatalf("WriteGeneration: %v", err)
	}
	if err := om.WriteGeneration(GenerationStats{Generation: 1, Best: 7.25, Mean: 3.0}); err != nil {
		t.Fatalf("WriteGeneration: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "generations.csv"))
	if err != nil {
		t.Fatalf("reading generations.csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header plus 2 rows:\n%s", len(lines), data)
	}
	if !strings.HasPrefix(lines[0], "generation,best") {
		t.Errorf("unexpected header: %q", lines[0])
	}
	if strings.Count(string(data), "generation,best") != 1 {
		t.Error("header should be written exactly once")
	}
	if !strings.HasPrefix(lines[2], "1,7.25") {
		t.Errorf("unexpected second row: %q", lines[2])
	}
}

func TestOutputManagerHighScoresJSON(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer om.Close()

	hs := NewHighScores(5)
	hs.Record(2, 4, 88.0)
	if err := om.WriteHighScores(hs); err != nil {
		t.Fatalf("WriteHighScores: %v", err)
	}

	loaded, err := LoadHighScores(filepath.Join(dir, "high_scores.json"), 5)
	if err != nil {
		t.Fatalf("LoadHighScores: %v", err)
	}
	best, ok := loaded.Best()
	if !ok || best.Fitness != 88.0 || best.Generation != 2 || best.IndividualID != 4 {
		t.Errorf("loaded best = %+v", best)
	}
}
