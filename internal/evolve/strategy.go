// Package evolve trains flappy bird controllers by neuro-evolution: a NEAT
// population of goNEAT genomes, each flown as one bird, with round credit as
// fitness.
package evolve

// Strategy is a population-based optimizer. The trainer flies one bird per
// organism, writes Fitness back into each organism and then calls Evolve.
type Strategy interface {
	// Organisms returns the current generation.
	Organisms() []*Organism

	// Evolve breeds the next generation from the current fitness values.
	Evolve() error

	// SpeciesCount returns the number of species in the current generation.
	SpeciesCount() int
}
