package storage

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps run archives in process memory. It backs tests and runs
// where no archive path is configured.
type MemoryStore struct {
	mu          sync.RWMutex
	runs        map[string]RunRecord
	generations map[string][]GenerationRecord
	highScores  map[string][]HighScoreRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs:        make(map[string]RunRecord),
		generations: make(map[string][]GenerationRecord),
		highScores:  make(map[string][]HighScoreRecord),
	}
}

func (s *MemoryStore) Init(ctx context.Context) error { return nil }

func (s *MemoryStore) SaveRun(ctx context.Context, run RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) GetRun(ctx context.Context, id string) (RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	return run, ok, nil
}

func (s *MemoryStore) SaveGeneration(ctx context.Context, rec GenerationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs := s.generations[rec.RunID]
	for i := range recs {
		if recs[i].Generation == rec.Generation {
			recs[i] = rec
			return nil
		}
	}
	s.generations[rec.RunID] = append(recs, rec)
	return nil
}

func (s *MemoryStore) GetGenerations(ctx context.Context, runID string) ([]GenerationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := s.generations[runID]
	out := make([]GenerationRecord, len(recs))
	copy(out, recs)
	sort.Slice(out, func(i, j int) bool { return out[i].Generation < out[j].Generation })
	return out, nil
}

func (s *MemoryStore) SaveHighScores(ctx context.Context, runID string, scores []HighScoreRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]HighScoreRecord, len(scores))
	copy(out, scores)
	s.highScores[runID] = out
	return nil
}

func (s *MemoryStore) GetHighScores(ctx context.Context, runID string) ([]HighScoreRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	scores := s.highScores[runID]
	out := make([]HighScoreRecord, len(scores))
	copy(out, scores)
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }
