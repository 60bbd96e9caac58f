package storage

import (
	"context"
	"time"
)

// RunRecord identifies one evolution run and its headline result.
type RunRecord struct {
	ID          string
	Seed        int64
	StartedAt   time.Time
	Generations int
	BestFitness float64
}

// GenerationRecord is one archived generation summary. ChampionGenome holds
// the champion's textual genome encoding so runs can be inspected offline.
type GenerationRecord struct {
	RunID          string
	Generation     int
	BestFitness    float64
	MeanFitness    float64
	Diversity      float64
	ChampionGenome string
}

// HighScoreRecord is one archived high-score table row.
type HighScoreRecord struct {
	RunID        string
	Rank         int
	Generation   int
	IndividualID int
	Fitness      float64
}

// Store defines persistence operations for run archives.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run RunRecord) error
	GetRun(ctx context.Context, id string) (RunRecord, bool, error)
	SaveGeneration(ctx context.Context, rec GenerationRecord) error
	GetGenerations(ctx context.Context, runID string) ([]GenerationRecord, error)
	SaveHighScores(ctx context.Context, runID string, scores []HighScoreRecord) error
	GetHighScores(ctx context.Context, runID string) ([]HighScoreRecord, error)
	Close() error
}
