package evolve

import "math/rand"

// tournamentSelect picks a parent index from a population ranked descending
// by fitness: k slots are sampled uniformly and the best-ranked one wins.
// With the population sorted, the best rank is simply the lowest index.
//
// Tournament selection was chosen over roulette because it is deterministic
// given the RNG stream, insensitive to fitness scaling, and its pressure is
// tunable through a single integer.
func tournamentSelect(n, k int, rng *rand.Rand) int {
	best := rng.Intn(n)
	for i := 1; i < k; i++ {
		if idx := rng.Intn(n); idx < best {
			best = idx
		}
	}
	return best
}
