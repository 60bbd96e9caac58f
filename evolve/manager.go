package evolve

import (
	"fmt"
	"log/slog"
	"math/rand"
	"runtime"
	"sort"
	"sync"

	"github.com/pthm-cable/motorpool/config"
	"github.com/pthm-cable/motorpool/genome"
)

// parallelThreshold is the minimum bred-slot count for parallel breeding.
// Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 64

// state tracks where the manager is in its generation cycle.
type state uint8

const (
	stateEvaluating state = iota // waiting on fitness reports from the harness
	stateAdvancing               // assembling the next population
)

func (s state) String() string {
	if s == stateAdvancing {
		return "advancing"
	}
	return "evaluating"
}

// ChampionLedger records generation champions. Satisfied by
// telemetry.HighScores; the manager depends only on this contract.
type ChampionLedger interface {
	// Record inserts an entry and reports whether it made the ledger.
	Record(generation, individualID int, fitness float64) bool
	Reset()
}

// Hooks receive engine events for the presentation layer. Nil fields are
// skipped. Hooks run outside the manager's lock, so they may call back into
// its accessors.
type Hooks struct {
	OnGenerationAdvanced func(generation int, individuals []Individual)
	OnChampion           func(generation, individualID int, fitness float64)
}

// ManagerOptions configures optional manager collaborators.
type ManagerOptions struct {
	Operators Operators      // nil = builtin
	Ledger    ChampionLedger // nil = no high-score recording
	Hooks     Hooks
}

// Manager owns the ordered population of the current generation. It cycles
// between two states: evaluating (fitness reports arrive from the harness)
// and advancing (the next population is assembled from quotas and operator
// outputs). The generation counter increments only when a full-size next
// population has been constructed.
type Manager struct {
	cfg      config.EvolutionConfig
	length   int // genome length, fixed for the run
	ops      Operators
	fallback Operators
	ledger   ChampionLedger
	hooks    Hooks

	mu            sync.Mutex
	seed          int64
	generation    int
	pop           Population
	pending       int // individuals without a fitness value
	state         state
	lastFallbacks int // operator fallback count from the last assembly
}

// NewManager creates a manager and seeds generation 0 with random
// individuals. cfg must already have passed config validation; quota sums
// are re-checked here as a guard against hand-built configs.
func NewManager(cfg config.EvolutionConfig, genomeLength int, seed int64, opts ManagerOptions) (*Manager, error) {
	if cfg.PopulationSize < 1 {
		return nil, &config.ConfigurationError{Field: "evolution.population_size", Reason: "must be positive"}
	}
	if cfg.CloneCount < 0 || cfg.RandomCount < 0 || cfg.CloneCount+cfg.RandomCount > cfg.PopulationSize {
		return nil, &config.ConfigurationError{Field: "evolution", Reason: fmt.Sprintf(
			"quotas clone=%d random=%d incompatible with population %d",
			cfg.CloneCount, cfg.RandomCount, cfg.PopulationSize)}
	}
	if cfg.TournamentSize < 1 {
		return nil, &config.ConfigurationError{Field: "evolution.tournament_size", Reason: "must be at least 1"}
	}
	if genomeLength < 1 {
		return nil, &config.ConfigurationError{Field: "vehicle", Reason: "genome length must be positive"}
	}

	ops := opts.Operators
	if ops == nil {
		ops = Builtin{}
	}

	m := &Manager{
		cfg:      cfg,
		length:   genomeLength,
		ops:      ops,
		fallback: Builtin{},
		ledger:   opts.Ledger,
		hooks:    opts.Hooks,
		seed:     seed,
	}
	m.initPopulation()
	return m, nil
}

// Generation returns the current generation number, starting at 0.
func (m *Manager) Generation() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generation
}

// Population returns a copy of the current generation's ordered individuals
// with their origin tags and ids.
func (m *Manager) Population() Population {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(Population, len(m.pop))
	copy(out, m.pop)
	return out
}

// Pending returns how many individuals still await a fitness report.
func (m *Manager) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending
}

// State reports which half of the generation cycle the manager is in,
// "evaluating" or "advancing".
func (m *Manager) State() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.String()
}

// OperatorFallbacks returns how many breeding attempts fell back to the
// built-in operators during the last assembly.
func (m *Manager) OperatorFallbacks() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastFallbacks
}

// ReportFitness attaches a fitness value to one individual. Each individual
// accepts exactly one report per generation.
func (m *Manager) ReportFitness(id int, fitness float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id < 0 || id >= len(m.pop) {
		return fmt.Errorf("%w: id %d, population size %d", ErrUnknownIndividual, id, len(m.pop))
	}
	if m.pop[id].Evaluated {
		return fmt.Errorf("%w: id %d", ErrAlreadyEvaluated, id)
	}
	m.pop[id].Fitness = fitness
	m.pop[id].Evaluated = true
	m.pending--
	return nil
}

// Advance builds the next generation. It fails with ErrIncompleteGeneration
// while any fitness value is unreported; the engine never reads partial
// generations.
func (m *Manager) Advance() error {
	m.mu.Lock()

	if m.pending > 0 {
		err := fmt.Errorf("%w: %d of %d pending", ErrIncompleteGeneration, m.pending, len(m.pop))
		m.mu.Unlock()
		return err
	}

	m.state = stateAdvancing
	ranked := m.ranked()

	// Record the generation champion before the population is replaced.
	champ := ranked[0]
	champGen := m.generation
	recorded := m.ledger != nil && m.ledger.Record(champGen, champ.ID, champ.Fitness)

	next, fallbacks := m.assemble(ranked)
	if fallbacks > 0 {
		slog.Warn("breeding fell back to builtin operators",
			"generation", champGen+1, "attempts", fallbacks)
	}

	m.pop = next
	m.generation++
	m.pending = len(next)
	m.lastFallbacks = fallbacks
	m.state = stateEvaluating
	newGen := m.generation

	var snapshot Population
	if m.hooks.OnGenerationAdvanced != nil {
		snapshot = make(Population, len(next))
		copy(snapshot, next)
	}
	m.mu.Unlock()

	// Hooks fire after the lock is released so they can read the manager.
	if recorded && m.hooks.OnChampion != nil {
		m.hooks.OnChampion(champGen, champ.ID, champ.Fitness)
	}
	if m.hooks.OnGenerationAdvanced != nil {
		m.hooks.OnGenerationAdvanced(newGen, snapshot)
	}
	return nil
}

// Reset discards the current run and reinitializes generation 0 from a new
// seed. The ledger is cleared along with the population.
func (m *Manager) Reset(seed int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seed = seed
	m.generation = 0
	m.lastFallbacks = 0
	if m.ledger != nil {
		m.ledger.Reset()
	}
	m.initPopulation()
}

// initPopulation fills generation 0 with random individuals. Callers hold
// the lock (or own the manager exclusively during construction).
func (m *Manager) initPopulation() {
	pop := make(Population, m.cfg.PopulationSize)
	for slot := range pop {
		pop[slot] = Individual{
			ID:     slot,
			Genome: genome.Random(m.length, slotRand(m.seed, 0, slot)),
			Origin: OriginRandom,
		}
	}
	m.pop = pop
	m.pending = len(pop)
	m.state = stateEvaluating
}

// ranked returns the current population sorted descending by fitness, ties
// broken by lowest id. Stable and deterministic.
func (m *Manager) ranked() Population {
	ranked := make(Population, len(m.pop))
	copy(ranked, m.pop)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Fitness != ranked[j].Fitness {
			return ranked[i].Fitness > ranked[j].Fitness
		}
		return ranked[i].ID < ranked[j].ID
	})
	return ranked
}

// assemble builds the next population from the ranked current one: clone
// quota first, then random injections, then bred offspring for the rest.
func (m *Manager) assemble(ranked Population) (Population, int) {
	p := m.cfg.PopulationSize
	c := m.cfg.CloneCount
	r := m.cfg.RandomCount
	gen := m.generation + 1

	next := make(Population, p)

	// Clones copy genomes verbatim from the top performers; if the quota
	// exceeds the population the top of the ranking is reused.
	for slot := 0; slot < c; slot++ {
		next[slot] = Individual{
			ID:     slot,
			Genome: ranked[slot%len(ranked)].Genome,
			Origin: OriginCloned,
		}
	}

	for slot := c; slot < c+r; slot++ {
		next[slot] = Individual{
			ID:     slot,
			Genome: genome.Random(m.length, slotRand(m.seed, gen, slot)),
			Origin: OriginRandom,
		}
	}

	fallbacks := m.breedRange(next, ranked, c+r, p, gen)
	return next, fallbacks
}

// breedRange fills slots [start, end) with bred offspring. Slots are
// independent: each consumes its own derived RNG stream, so the work is
// chunked across workers without affecting determinism.
func (m *Manager) breedRange(next, ranked Population, start, end, gen int) int {
	n := end - start
	if n <= 0 {
		return 0
	}

	breed := func(lo, hi int) int {
		fallbacks := 0
		for slot := lo; slot < hi; slot++ {
			g, fellBack := m.breedSlot(ranked, gen, slot)
			if fellBack {
				fallbacks++
			}
			next[slot] = Individual{ID: slot, Genome: g, Origin: OriginBred}
		}
		return fallbacks
	}

	if n < parallelThreshold {
		return breed(start, end)
	}

	workers := runtime.GOMAXPROCS(0)
	chunk := (n + workers - 1) / workers
	counts := make([]int, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := start + w*chunk
		hi := lo + chunk
		if hi > end {
			hi = end
		}
		if lo >= hi {
			continue
		}
		wg.Add(1)
		go func(w, lo, hi int) {
			defer wg.Done()
			counts[w] = breed(lo, hi)
		}(w, lo, hi)
	}
	wg.Wait()

	total := 0
	for _, c := range counts {
		total += c
	}
	return total
}

// breedSlot selects two parents by tournament and applies crossover then
// mutation. A failing configured operator is retried once with the builtin
// fallback; the builtin set cannot fail on schema-length parents.
func (m *Manager) breedSlot(ranked Population, gen, slot int) (genome.Genome, bool) {
	rng := slotRand(m.seed, gen, slot)
	a := ranked[tournamentSelect(len(ranked), m.cfg.TournamentSize, rng)].Genome
	b := ranked[tournamentSelect(len(ranked), m.cfg.TournamentSize, rng)].Genome

	child, err := m.breedOnce(m.ops, a, b, rng)
	if err == nil {
		return child, false
	}
	slog.Warn("operator failure, retrying with builtin", "slot", slot, "error", err)

	child, err = m.breedOnce(m.fallback, a, b, rng)
	if err != nil {
		panic(fmt.Sprintf("evolve: builtin operators failed: %v", err))
	}
	return child, true
}

// breedOnce runs one crossover+mutation attempt and validates the offspring
// length; malformed output counts as an operator failure.
func (m *Manager) breedOnce(ops Operators, a, b genome.Genome, rng *rand.Rand) (genome.Genome, error) {
	child, err := ops.Crossover(a, b, m.cfg.CrossoverRate, rng)
	if err != nil {
		return genome.Genome{}, &OperatorError{Op: "crossover", Err: err}
	}
	if child.Len() != m.length {
		return genome.Genome{}, &OperatorError{Op: "crossover",
			Err: fmt.Errorf("offspring length %d, want %d", child.Len(), m.length)}
	}
	child, err = ops.Mutate(child, m.cfg.MutationFlipCount, rng)
	if err != nil {
		return genome.Genome{}, &OperatorError{Op: "mutate", Err: err}
	}
	if child.Len() != m.length {
		return genome.Genome{}, &OperatorError{Op: "mutate",
			Err: fmt.Errorf("offspring length %d, want %d", child.Len(), m.length)}
	}
	return child, nil
}
