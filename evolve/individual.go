package evolve

import "github.com/pthm-cable/motorpool/genome"

// Origin classifies how an individual entered its generation.
type Origin uint8

const (
	OriginBred Origin = iota
	OriginCloned
	OriginRandom
)

func (o Origin) String() string {
	switch o {
	case OriginBred:
		return "bred"
	case OriginCloned:
		return "cloned"
	case OriginRandom:
		return "random"
	default:
		return "unknown"
	}
}

// Individual pairs a genome with its generation-scoped metadata. Fitness is
// attached once the simulation harness reports it.
type Individual struct {
	ID        int
	Genome    genome.Genome
	Origin    Origin
	Fitness   float64
	Evaluated bool
}

// Population is one generation's ordered set of individuals. Ownership is
// exclusive to the manager; advancing replaces it wholesale.
type Population []Individual
