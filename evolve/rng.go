package evolve

import "math/rand"

// splitmix64 mixes a 64-bit value into a well-distributed output. Used to
// derive independent RNG streams from the run seed.
func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// slotRand returns the RNG for one population slot of one generation. Each
// slot consumes a disjoint stream deterministically derived from the run
// seed, so concurrent and sequential assembly build identical populations.
func slotRand(seed int64, generation, slot int) *rand.Rand {
	x := splitmix64(uint64(seed))
	x = splitmix64(x ^ uint64(generation)<<32)
	x = splitmix64(x ^ uint64(slot))
	return rand.New(rand.NewSource(int64(x)))
}
