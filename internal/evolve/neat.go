package evolve

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/yaricom/goNEAT/v4/neat"
	"github.com/yaricom/goNEAT/v4/neat/genetics"

	"github.com/vovakirdan/flappy-evo/internal/brain"
	"github.com/vovakirdan/flappy-evo/internal/config"
)

// NEAT is the speciated NEAT strategy.
type NEAT struct {
	cfg  config.TrainConfig
	opts *neat.Options
	rng  *rand.Rand
	inn  *Innovations

	organisms   []*Organism
	species     []*Species
	nextSpecies int
	generation  int
}

// NewNEAT creates a random initial population.
func NewNEAT(cfg config.TrainConfig, rng *rand.Rand) *NEAT {
	n := &NEAT{
		cfg:         cfg,
		opts:        NEATOptions(cfg),
		rng:         rng,
		inn:         NewInnovations(),
		nextSpecies: 1,
		generation:  1,
	}

	n.organisms = make([]*Organism, cfg.Population)
	for i := range n.organisms {
		n.organisms[i] = &Organism{Genome: brain.NewGenome(n.inn.NextGenomeID(), cfg.InitialConnectionProb, rng)}
	}
	n.species = speciate(nil, n.organisms, n.opts, &n.nextSpecies)
	return n
}

// Organisms returns the current generation.
func (n *NEAT) Organisms() []*Organism { return n.organisms }

// SpeciesCount returns the number of live species.
func (n *NEAT) SpeciesCount() int { return len(n.species) }

// Species returns the live species.
func (n *NEAT) Species() []*Species { return n.species }

// Generation returns the 1-based generation number of the current organisms.
func (n *NEAT) Generation() int { return n.generation }

// Seed replaces the first organism with a copy of genome, e.g. a champion
// loaded from disk.
func (n *NEAT) Seed(genome *genetics.Genome) error {
	clone, err := Clone(genome, n.inn.NextGenomeID())
	if err != nil {
		return err
	}
	n.organisms[0] = &Organism{Genome: clone}
	n.species = speciate(n.species, n.organisms, n.opts, &n.nextSpecies)
	return nil
}

// Evolve breeds the next generation. Elites are copied unchanged; the rest
// of the slots are shared between species by average adjusted fitness.
func (n *NEAT) Evolve() error {
	if len(n.organisms) == 0 {
		return fmt.Errorf("evolve: empty population")
	}

	champion := n.organisms[0]
	minFitness := math.Inf(1)
	for _, org := range n.organisms {
		if org.Fitness > champion.Fitness {
			champion = org
		}
		minFitness = min(minFitness, org.Fitness)
	}

	// Species bookkeeping, then drop stale species but never the champion's
	alive := n.species[:0]
	for _, sp := range n.species {
		sp.Age++
		if best := sp.bestMember(); best != nil && best.Fitness > sp.BestFitness {
			sp.BestFitness = best.Fitness
			sp.Staleness = 0
		} else {
			sp.Staleness++
		}
		if sp.Staleness < n.opts.DropOffAge || sp.ID == champion.Species {
			alive = append(alive, sp)
		}
	}
	clear(n.species[len(alive):])
	n.species = alive

	next := make([]*Organism, 0, n.cfg.Population)

	elites := n.sortedByFitness()
	for i := 0; i < n.cfg.NEAT.Elitism && i < len(elites); i++ {
		clone, err := Clone(elites[i].Genome, n.inn.NextGenomeID())
		if err != nil {
			return err
		}
		next = append(next, &Organism{Genome: clone})
	}

	// Explicit fitness sharing on fitness shifted to be positive
	shares := make([]float64, len(n.species))
	for i, sp := range n.species {
		sum := 0.0
		for _, m := range sp.Members {
			sum += m.Fitness - minFitness + 1e-3
		}
		shares[i] = sum / float64(len(sp.Members))
	}

	counts := allocate(n.cfg.Population-len(next), shares)
	for i, sp := range n.species {
		parents := n.parents(sp)
		for c := 0; c < counts[i]; c++ {
			child, err := n.breed(parents)
			if err != nil {
				return err
			}
			next = append(next, &Organism{Genome: child})
		}
	}

	n.organisms = next
	n.species = speciate(n.species, n.organisms, n.opts, &n.nextSpecies)
	n.generation++
	return nil
}

func (n *NEAT) sortedByFitness() []*Organism {
	sorted := make([]*Organism, len(n.organisms))
	copy(sorted, n.organisms)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Fitness > sorted[j].Fitness })
	return sorted
}

// parents returns the top SurvivalThresh share of a species, at least one.
func (n *NEAT) parents(sp *Species) []*Organism {
	sorted := make([]*Organism, len(sp.Members))
	copy(sorted, sp.Members)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Fitness > sorted[j].Fitness })

	keep := int(math.Ceil(n.opts.SurvivalThresh * float64(len(sorted))))
	keep = max(1, min(keep, len(sorted)))
	return sorted[:keep]
}

func (n *NEAT) breed(parents []*Organism) (*genetics.Genome, error) {
	id := n.inn.NextGenomeID()
	mom := parents[n.rng.Intn(len(parents))]

	if len(parents) == 1 || n.rng.Float64() < n.opts.MutateOnlyProb {
		child, err := Clone(mom.Genome, id)
		if err != nil {
			return nil, err
		}
		if _, err := Mutate(child, n.opts, n.inn, n.rng); err != nil {
			return nil, err
		}
		return child, nil
	}

	dad := parents[n.rng.Intn(len(parents))]
	child, err := Crossover(mom.Genome, dad.Genome, mom.Fitness, dad.Fitness, id, n.rng)
	if err != nil {
		return nil, err
	}
	if n.rng.Float64() >= n.opts.MateOnlyProb {
		if _, err := Mutate(child, n.opts, n.inn, n.rng); err != nil {
			return nil, err
		}
	}
	return child, nil
}

// allocate splits total slots proportionally to shares using the largest
// remainder method, so the counts always sum to total.
func allocate(total int, shares []float64) []int {
	counts := make([]int, len(shares))
	if total <= 0 || len(shares) == 0 {
		return counts
	}

	sum := 0.0
	for _, s := range shares {
		sum += s
	}

	type rem struct {
		i    int
		frac float64
	}
	rems := make([]rem, len(shares))
	given := 0
	for i, s := range shares {
		exact := float64(total) / float64(len(shares))
		if sum > 0 {
			exact = float64(total) * s / sum
		}
		counts[i] = int(math.Floor(exact))
		given += counts[i]
		rems[i] = rem{i: i, frac: exact - float64(counts[i])}
	}

	sort.SliceStable(rems, func(a, b int) bool { return rems[a].frac > rems[b].frac })
	for k := 0; given < total; k++ {
		counts[rems[k%len(rems)].i]++
		given++
	}
	return counts
}
