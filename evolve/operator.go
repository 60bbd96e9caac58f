// Package evolve implements the genetic evolution engine: operators,
// individuals, and the per-generation population manager.
package evolve

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"github.com/pthm-cable/motorpool/genome"
)

// Operators breeds genomes. Implementations must be pure: the same inputs and
// RNG stream always produce the same offspring, and no shared mutable state
// may be touched.
type Operators interface {
	// Crossover combines two parent genomes into one offspring. rate is the
	// probability of switching source strand between consecutive bit
	// positions; rate 0 must yield an exact copy of a.
	Crossover(a, b genome.Genome, rate float64, rng *rand.Rand) (genome.Genome, error)

	// Mutate flips exactly min(flips, length) distinct bit positions.
	Mutate(g genome.Genome, flips int, rng *rand.Rand) (genome.Genome, error)
}

// OperatorError wraps a failure from a pluggable operator implementation.
// The manager recovers by retrying the breeding attempt with the built-in
// operators.
type OperatorError struct {
	Op  string // "crossover" or "mutate"
	Err error
}

func (e *OperatorError) Error() string {
	return fmt.Sprintf("operator %s failed: %v", e.Op, e.Err)
}

func (e *OperatorError) Unwrap() error { return e.Err }

var (
	registryMu sync.RWMutex
	registry   = map[string]func() Operators{}
)

// Register binds a named operator implementation. Typically called from an
// implementation package's init.
func Register(name string, factory func() Operators) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// NewOperators resolves a registered implementation by name. An unknown name
// is a non-fatal configuration error: callers fall back to the built-in
// operators and report the failure upward.
func NewOperators(name string) (Operators, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("evolve: no operators registered under %q (registered: %v)", name, registeredNames())
	}
	return factory(), nil
}

func registeredNames() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	Register("builtin", func() Operators { return Builtin{} })
}

// Builtin is the default operator set. Crossover walks both parents in
// parallel, switching source strand between bit positions with the given
// probability; mutation flips a distinct random subset of positions.
type Builtin struct{}

// Crossover implements strand-switching crossover. The offspring starts on
// strand a; one coin is tossed per gap regardless of bit values, so the RNG
// stream length depends only on the genome length.
func (Builtin) Crossover(a, b genome.Genome, rate float64, rng *rand.Rand) (genome.Genome, error) {
	if a.Len() != b.Len() {
		return genome.Genome{}, fmt.Errorf("parent lengths differ: %d vs %d", a.Len(), b.Len())
	}
	if rate < 0 || rate > 1 {
		return genome.Genome{}, fmt.Errorf("crossover rate %g outside [0,1]", rate)
	}

	var flips []int
	onB := false
	for i := 0; i < a.Len(); i++ {
		if i > 0 && rng.Float64() < rate {
			onB = !onB
		}
		if onB && a.Bit(i) != b.Bit(i) {
			flips = append(flips, i)
		}
	}
	return a.FlipBits(flips), nil
}

// Mutate flips min(flips, length) distinct positions, chosen by a partial
// Fisher-Yates shuffle so no position is ever flipped twice.
func (Builtin) Mutate(g genome.Genome, flips int, rng *rand.Rand) (genome.Genome, error) {
	if flips < 0 {
		return genome.Genome{}, fmt.Errorf("negative flip count %d", flips)
	}
	n := flips
	if n > g.Len() {
		n = g.Len()
	}
	if n == 0 {
		return g, nil
	}

	idx := make([]int, g.Len())
	for i := range idx {
		idx[i] = i
	}
	for j := 0; j < n; j++ {
		k := j + rng.Intn(len(idx)-j)
		idx[j], idx[k] = idx[k], idx[j]
	}
	return g.FlipBits(idx[:n]), nil
}
