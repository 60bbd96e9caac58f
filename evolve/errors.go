package evolve

import "errors"

var (
	// ErrIncompleteGeneration rejects an advance attempt while any
	// individual's fitness is still unreported.
	ErrIncompleteGeneration = errors.New("evolve: generation has unevaluated individuals")

	// ErrUnknownIndividual reports a fitness delivery for an id outside the
	// current population.
	ErrUnknownIndividual = errors.New("evolve: unknown individual id")

	// ErrAlreadyEvaluated reports a duplicate fitness delivery, which
	// indicates a harness bug.
	ErrAlreadyEvaluated = errors.New("evolve: fitness already reported")
)
