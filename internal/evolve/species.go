package evolve

import (
	"github.com/yaricom/goNEAT/v4/neat"
	"github.com/yaricom/goNEAT/v4/neat/genetics"
)

// Organism is one member of the population.
type Organism struct {
	Genome  *genetics.Genome
	Fitness float64
	Species int
}

// Species groups genetically similar organisms.
type Species struct {
	ID             int
	Representative *genetics.Genome
	Members        []*Organism
	BestFitness    float64
	Age            int // generations since the species appeared
	Staleness      int // generations without improving BestFitness
}

// speciate assigns every organism to the first species whose representative
// is within the compatibility threshold, creating species as needed.
// Species left without members are dropped and representatives refreshed.
func speciate(species []*Species, organisms []*Organism, opts *neat.Options, nextID *int) []*Species {
	for _, sp := range species {
		sp.Members = sp.Members[:0]
	}

	for _, org := range organisms {
		var home *Species
		for _, sp := range species {
			if Compatibility(org.Genome, sp.Representative, opts) < opts.CompatThreshold {
				home = sp
				break
			}
		}
		if home == nil {
			home = &Species{ID: *nextID, Representative: org.Genome}
			*nextID++
			species = append(species, home)
		}
		home.Members = append(home.Members, org)
		org.Species = home.ID
	}

	active := species[:0]
	for _, sp := range species {
		if len(sp.Members) > 0 {
			sp.Representative = sp.Members[0].Genome
			active = append(active, sp)
		}
	}
	clear(species[len(active):])
	return active
}

// bestMember returns the fittest organism of the species.
func (sp *Species) bestMember() *Organism {
	var best *Organism
	for _, m := range sp.Members {
		if best == nil || m.Fitness > best.Fitness {
			best = m
		}
	}
	return best
}
