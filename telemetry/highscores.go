package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Entry is one high-score record: which individual of which generation
// achieved the fitness, and its current rank in the table.
type Entry struct {
	Rank         int     `json:"rank" csv:"rank"`
	Generation   int     `json:"generation" csv:"generation"`
	IndividualID int     `json:"individual_id" csv:"individual_id"`
	Fitness      float64 `json:"fitness" csv:"fitness"`
}

// HighScores keeps the best fitness results of a run in a bounded table,
// sorted descending by fitness. Ties keep the earlier generation first.
type HighScores struct {
	entries  []Entry
	capacity int
}

// NewHighScores creates an empty table holding at most capacity entries.
func NewHighScores(capacity int) *HighScores {
	if capacity < 1 {
		capacity = 1
	}
	return &HighScores{
		entries:  make([]Entry, 0, capacity),
		capacity: capacity,
	}
}

// Record offers a result to the table. It returns true if the result made
// the table, false if it fell below the current cutoff.
func (hs *HighScores) Record(generation, individualID int, fitness float64) bool {
	if len(hs.entries) >= hs.capacity && fitness <= hs.entries[len(hs.entries)-1].Fitness {
		return false
	}

	hs.entries = append(hs.entries, Entry{
		Generation:   generation,
		IndividualID: individualID,
		Fitness:      fitness,
	})
	sort.SliceStable(hs.entries, func(i, j int) bool {
		if hs.entries[i].Fitness != hs.entries[j].Fitness {
			return hs.entries[i].Fitness > hs.entries[j].Fitness
		}
		return hs.entries[i].Generation < hs.entries[j].Generation
	})
	if len(hs.entries) > hs.capacity {
		hs.entries = hs.entries[:hs.capacity]
	}
	for i := range hs.entries {
		hs.entries[i].Rank = i + 1
	}
	return true
}

// Entries returns a copy of the table in rank order.
func (hs *HighScores) Entries() []Entry {
	out := make([]Entry, len(hs.entries))
	copy(out, hs.entries)
	return out
}

// Best returns the top entry, or false when the table is empty.
func (hs *HighScores) Best() (Entry, bool) {
	if len(hs.entries) == 0 {
		return Entry{}, false
	}
	return hs.entries[0], true
}

// Len returns the number of entries currently in the table.
func (hs *HighScores) Len() int {
	return len(hs.entries)
}

// Reset clears the table for a new run.
func (hs *HighScores) Reset() {
	hs.entries = hs.entries[:0]
}

// MarshalJSON serializes the table as a rank-ordered array.
func (hs *HighScores) MarshalJSON() ([]byte, error) {
	return json.MarshalIndent(hs.entries, "", "  ")
}

// LoadHighScores reads a previously exported table from a JSON file.
// Entries are re-ranked on load, so hand-edited files stay consistent.
func LoadHighScores(path string, capacity int) (*HighScores, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading high scores: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing high scores JSON: %w", err)
	}

	hs := NewHighScores(capacity)
	for _, e := range entries {
		hs.Record(e.Generation, e.IndividualID, e.Fitness)
	}
	return hs, nil
}
