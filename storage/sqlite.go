package storage

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLiteStore archives runs in a single SQLite file.
type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run RunRecord) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO runs (id, seed, started_at, generations, best_fitness)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			generations = excluded.generations,
			best_fitness = excluded.best_fitness
	`, run.ID, run.Seed, run.StartedAt.UTC(), run.Generations, run.BestFitness)
	return err
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (RunRecord, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return RunRecord{}, false, err
	}

	var run RunRecord
	err = db.QueryRowContext(ctx, `
		SELECT id, seed, started_at, generations, best_fitness
		FROM runs WHERE id = ?
	`, id).Scan(&run.ID, &run.Seed, &run.StartedAt, &run.Generations, &run.BestFitness)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RunRecord{}, false, nil
		}
		return RunRecord{}, false, err
	}
	return run, true, nil
}

func (s *SQLiteStore) SaveGeneration(ctx context.Context, rec GenerationRecord) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO generations (run_id, generation, best_fitness, mean_fitness, diversity, champion_genome)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, generation) DO UPDATE SET
			best_fitness = excluded.best_fitness,
			mean_fitness = excluded.mean_fitness,
			diversity = excluded.diversity,
			champion_genome = excluded.champion_genome
	`, rec.RunID, rec.Generation, rec.BestFitness, rec.MeanFitness, rec.Diversity, rec.ChampionGenome)
	return err
}

func (s *SQLiteStore) GetGenerations(ctx context.Context, runID string) ([]GenerationRecord, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT run_id, generation, best_fitness, mean_fitness, diversity, champion_genome
		FROM generations WHERE run_id = ? ORDER BY generation
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GenerationRecord
	for rows.Next() {
		var rec GenerationRecord
		if err := rows.Scan(&rec.RunID, &rec.Generation, &rec.BestFitness,
			&rec.MeanFitness, &rec.Diversity, &rec.ChampionGenome); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) SaveHighScores(ctx context.Context, runID string, scores []HighScoreRecord) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM high_scores WHERE run_id = ?`, runID); err != nil {
		return err
	}
	for _, hs := range scores {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO high_scores (run_id, rank, generation, individual_id, fitness)
			VALUES (?, ?, ?, ?, ?)
		`, runID, hs.Rank, hs.Generation, hs.IndividualID, hs.Fitness); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) GetHighScores(ctx context.Context, runID string) ([]HighScoreRecord, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT run_id, rank, generation, individual_id, fitness
		FROM high_scores WHERE run_id = ? ORDER BY rank
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HighScoreRecord
	for rows.Next() {
		var hs HighScoreRecord
		if err := rows.Scan(&hs.RunID, &hs.Rank, &hs.Generation, &hs.IndividualID, &hs.Fitness); err != nil {
			return nil, err
		}
		out = append(out, hs)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			seed INTEGER NOT NULL,
			started_at TIMESTAMP NOT NULL,
			generations INTEGER NOT NULL,
			best_fitness REAL NOT NULL
		);
		CREATE TABLE IF NOT EXISTS generations (
			run_id TEXT NOT NULL,
			generation INTEGER NOT NULL,
			best_fitness REAL NOT NULL,
			mean_fitness REAL NOT NULL,
			diversity REAL NOT NULL,
			champion_genome TEXT NOT NULL,
			PRIMARY KEY (run_id, generation)
		);
		CREATE TABLE IF NOT EXISTS high_scores (
			run_id TEXT NOT NULL,
			rank INTEGER NOT NULL,
			generation INTEGER NOT NULL,
			individual_id INTEGER NOT NULL,
			fitness REAL NOT NULL,
			PRIMARY KEY (run_id, rank)
		);
	`)
	return err
}
