package evolve

import (
	"errors"
	"math"
	"math/rand"
	"sort"

	"github.com/yaricom/goNEAT/v4/neat"
	"github.com/yaricom/goNEAT/v4/neat/genetics"
	"github.com/yaricom/goNEAT/v4/neat/network"

	"github.com/vovakirdan/flappy-evo/internal/brain"
	"github.com/vovakirdan/flappy-evo/internal/config"
)

// Mutation constants
const (
	perturbProb         = 0.9 // probability of perturbing vs replacing a weight
	maxConnectionWeight = 8.0
	maxLinkAttempts     = 20
	disableInheritProb  = 0.75 // child gene stays disabled if either parent disabled it
)

var errNilGenome = errors.New("evolve: nil genome")

// NEATOptions converts the configured subset into goNEAT options.
func NEATOptions(cfg config.TrainConfig) *neat.Options {
	return &neat.Options{
		WeightMutPower:         cfg.NEAT.WeightMutPower,
		MutateAddNodeProb:      cfg.NEAT.MutateAddNodeProb,
		MutateAddLinkProb:      cfg.NEAT.MutateAddLinkProb,
		MutateToggleEnableProb: cfg.NEAT.MutateToggleEnable,
		MutateLinkWeightsProb:  cfg.NEAT.MutateLinkWeightsProb,
		MutateOnlyProb:         cfg.NEAT.MutateOnlyProb,
		MateOnlyProb:           cfg.NEAT.MateOnlyProb,
		CompatThreshold:        cfg.NEAT.CompatThreshold,
		DisjointCoeff:          cfg.NEAT.DisjointCoeff,
		ExcessCoeff:            cfg.NEAT.ExcessCoeff,
		MutdiffCoeff:           cfg.NEAT.MutdiffCoeff,
		DropOffAge:             cfg.NEAT.DropOffAge,
		SurvivalThresh:         cfg.NEAT.SurvivalThresh,
		PopSize:                cfg.Population,
	}
}

// Innovations hands out genome IDs, node IDs and innovation numbers. The
// same structural change gets the same numbers wherever it appears.
type Innovations struct {
	nextGenome int
	nextNode   int
	nextInnov  int64
	links      map[[2]int]int64
	splits     map[int64]nodeSplit
}

type nodeSplit struct {
	node    int
	in, out int64
}

// NewInnovations starts numbering after the initial genome layout.
func NewInnovations() *Innovations {
	return &Innovations{
		nextGenome: 1,
		nextNode:   brain.Inputs + brain.Outputs + 1,
		nextInnov:  brain.FirstInnovation,
		links:      make(map[[2]int]int64),
		splits:     make(map[int64]nodeSplit),
	}
}

// NextGenomeID returns a fresh genome ID.
func (in *Innovations) NextGenomeID() int {
	id := in.nextGenome
	in.nextGenome++
	return id
}

func (in *Innovations) link(from, to int) int64 {
	key := [2]int{from, to}
	if n, ok := in.links[key]; ok {
		return n
	}
	n := in.nextInnov
	in.nextInnov++
	in.links[key] = n
	return n
}

func (in *Innovations) split(gene int64, taken func(int) bool) nodeSplit {
	if s, ok := in.splits[gene]; ok && !taken(s.node) {
		return s
	}
	s := nodeSplit{node: in.nextNode}
	in.nextNode++
	s.in = in.nextInnov
	s.out = in.nextInnov + 1
	in.nextInnov += 2
	if _, ok := in.splits[gene]; !ok {
		in.splits[gene] = s
	}
	return s
}

// Crossover performs NEAT crossover, aligning genes by innovation number.
// The fitter parent contributes its disjoint and excess genes.
func Crossover(parent1, parent2 *genetics.Genome, fitness1, fitness2 float64, childID int, rng *rand.Rand) (*genetics.Genome, error) {
	if parent1 == nil || parent2 == nil {
		return nil, errNilGenome
	}

	primary, secondary := parent1, parent2
	if fitness2 > fitness1 {
		primary, secondary = parent2, parent1
	}

	primaryGenes := make(map[int64]*genetics.Gene, len(primary.Genes))
	for _, g := range primary.Genes {
		primaryGenes[g.InnovationNum] = g
	}
	secondaryGenes := make(map[int64]*genetics.Gene, len(secondary.Genes))
	for _, g := range secondary.Genes {
		secondaryGenes[g.InnovationNum] = g
	}

	innovations := make([]int64, 0, len(primaryGenes)+len(secondaryGenes))
	for n := range primaryGenes {
		innovations = append(innovations, n)
	}
	for n := range secondaryGenes {
		if _, ok := primaryGenes[n]; !ok {
			innovations = append(innovations, n)
		}
	}
	sort.Slice(innovations, func(i, j int) bool { return innovations[i] < innovations[j] })

	nodes := make(map[int]*network.NNode)
	for _, n := range primary.Nodes {
		nodes[n.Id] = copyNode(n)
	}
	for _, n := range secondary.Nodes {
		if _, ok := nodes[n.Id]; !ok {
			nodes[n.Id] = copyNode(n)
		}
	}

	genes := make([]*genetics.Gene, 0, len(innovations))
	for _, innov := range innovations {
		p, s := primaryGenes[innov], secondaryGenes[innov]

		var selected *genetics.Gene
		enabled := true
		switch {
		case p != nil && s != nil:
			selected = p
			if rng.Float64() < 0.5 {
				selected = s
			}
			enabled = selected.IsEnabled
			if !p.IsEnabled || !s.IsEnabled {
				enabled = rng.Float64() >= disableInheritProb
			}
		case p != nil:
			selected = p
			enabled = p.IsEnabled
		case fitness1 == fitness2 && rng.Float64() < 0.5:
			selected = s
			enabled = s.IsEnabled
		}
		if selected == nil {
			continue
		}

		in, out := nodes[selected.Link.InNode.Id], nodes[selected.Link.OutNode.Id]
		if in == nil || out == nil {
			continue
		}
		gene := genetics.NewGeneWithTrait(nil, selected.Link.ConnectionWeight, in, out,
			selected.Link.IsRecurrent, selected.InnovationNum, selected.MutationNum)
		gene.IsEnabled = enabled
		genes = append(genes, gene)
	}

	return genetics.NewGenome(childID, nil, sortedNodes(nodes), genes), nil
}

// Clone returns a deep copy of genome with a new ID.
func Clone(genome *genetics.Genome, newID int) (*genetics.Genome, error) {
	if genome == nil {
		return nil, errNilGenome
	}

	nodes := make(map[int]*network.NNode, len(genome.Nodes))
	for _, n := range genome.Nodes {
		nodes[n.Id] = copyNode(n)
	}

	genes := make([]*genetics.Gene, 0, len(genome.Genes))
	for _, g := range genome.Genes {
		in, out := nodes[g.Link.InNode.Id], nodes[g.Link.OutNode.Id]
		if in == nil || out == nil {
			continue
		}
		gene := genetics.NewGeneWithTrait(nil, g.Link.ConnectionWeight, in, out,
			g.Link.IsRecurrent, g.InnovationNum, g.MutationNum)
		gene.IsEnabled = g.IsEnabled
		genes = append(genes, gene)
	}

	return genetics.NewGenome(newID, nil, sortedNodes(nodes), genes), nil
}

func copyNode(node *network.NNode) *network.NNode {
	n := network.NewNNode(node.Id, node.NeuronType)
	n.ActivationType = node.ActivationType
	return n
}

func sortedNodes(m map[int]*network.NNode) []*network.NNode {
	out := make([]*network.NNode, 0, len(m))
	for _, n := range m {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id < out[j].Id })
	return out
}

// Mutate applies weight and structural mutations with the probabilities in
// opts. It reports whether anything changed.
func Mutate(genome *genetics.Genome, opts *neat.Options, inn *Innovations, rng *rand.Rand) (bool, error) {
	if genome == nil {
		return false, errNilGenome
	}

	mutated := false
	if rng.Float64() < opts.MutateAddNodeProb && addNode(genome, inn, rng) {
		mutated = true
	}
	if rng.Float64() < opts.MutateAddLinkProb && addLink(genome, inn, rng) {
		mutated = true
	}
	if rng.Float64() < opts.MutateLinkWeightsProb {
		mutateWeights(genome, opts.WeightMutPower, rng)
		mutated = true
	}
	if rng.Float64() < opts.MutateToggleEnableProb && toggleEnable(genome, rng) {
		mutated = true
	}
	return mutated, nil
}

func mutateWeights(genome *genetics.Genome, power float64, rng *rand.Rand) {
	for _, g := range genome.Genes {
		if rng.Float64() < perturbProb {
			g.Link.ConnectionWeight += (rng.Float64()*2 - 1) * power
		} else {
			g.Link.ConnectionWeight = rng.Float64()*4 - 2
		}
		g.Link.ConnectionWeight = math.Max(-maxConnectionWeight, math.Min(maxConnectionWeight, g.Link.ConnectionWeight))
	}
}

// addNode splits an enabled link with a new hidden node.
func addNode(genome *genetics.Genome, inn *Innovations, rng *rand.Rand) bool {
	enabled := make([]*genetics.Gene, 0, len(genome.Genes))
	for _, g := range genome.Genes {
		if g.IsEnabled {
			enabled = append(enabled, g)
		}
	}
	if len(enabled) == 0 {
		return false
	}

	target := enabled[rng.Intn(len(enabled))]
	s := inn.split(target.InnovationNum, func(id int) bool { return hasNode(genome, id) })
	target.IsEnabled = false

	node := network.NewNNode(s.node, network.HiddenNeuron)
	node.ActivationType = brain.OutputActivation

	genome.Nodes = append(genome.Nodes, node)
	genome.Genes = append(genome.Genes,
		genetics.NewGeneWithTrait(nil, 1.0, target.Link.InNode, node, false, s.in, 0),
		genetics.NewGeneWithTrait(nil, target.Link.ConnectionWeight, node, target.Link.OutNode, false, s.out, 0),
	)
	return true
}

// addLink connects two unconnected nodes, keeping the network feed-forward.
func addLink(genome *genetics.Genome, inn *Innovations, rng *rand.Rand) bool {
	var sources, targets []*network.NNode
	for _, n := range genome.Nodes {
		switch n.NeuronType {
		case network.InputNeuron, network.BiasNeuron:
			sources = append(sources, n)
		case network.OutputNeuron:
			targets = append(targets, n)
		case network.HiddenNeuron:
			sources = append(sources, n)
			targets = append(targets, n)
		}
	}
	if len(sources) == 0 || len(targets) == 0 {
		return false
	}

	existing := make(map[[2]int]bool, len(genome.Genes))
	for _, g := range genome.Genes {
		existing[[2]int{g.Link.InNode.Id, g.Link.OutNode.Id}] = true
	}

	for attempt := 0; attempt < maxLinkAttempts; attempt++ {
		src := sources[rng.Intn(len(sources))]
		dst := targets[rng.Intn(len(targets))]
		if src.Id == dst.Id || existing[[2]int{src.Id, dst.Id}] || reaches(genome, dst.Id, src.Id) {
			continue
		}
		genome.Genes = append(genome.Genes, genetics.NewGeneWithTrait(
			nil, rng.Float64()*4-2, src, dst, false, inn.link(src.Id, dst.Id), 0,
		))
		return true
	}
	return false
}

// reaches reports whether a path from -> to exists through any gene.
func reaches(genome *genetics.Genome, from, to int) bool {
	next := make(map[int][]int)
	for _, g := range genome.Genes {
		next[g.Link.InNode.Id] = append(next[g.Link.InNode.Id], g.Link.OutNode.Id)
	}
	seen := map[int]bool{from: true}
	stack := []int{from}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == to {
			return true
		}
		for _, m := range next[n] {
			if !seen[m] {
				seen[m] = true
				stack = append(stack, m)
			}
		}
	}
	return false
}

// toggleEnable flips a random gene, refusing to cut the output off.
func toggleEnable(genome *genetics.Genome, rng *rand.Rand) bool {
	if len(genome.Genes) == 0 {
		return false
	}
	g := genome.Genes[rng.Intn(len(genome.Genes))]
	g.IsEnabled = !g.IsEnabled

	if !g.IsEnabled {
		out := g.Link.OutNode.Id
		for _, other := range genome.Genes {
			if other.IsEnabled && other.Link.OutNode.Id == out {
				return true
			}
		}
		g.IsEnabled = true
		return false
	}
	return true
}

func hasNode(genome *genetics.Genome, id int) bool {
	for _, n := range genome.Nodes {
		if n.Id == id {
			return true
		}
	}
	return false
}

// Compatibility is the NEAT distance between two genomes.
func Compatibility(g1, g2 *genetics.Genome, opts *neat.Options) float64 {
	if g1 == nil || g2 == nil {
		return math.MaxFloat64
	}

	genes1 := make(map[int64]*genetics.Gene, len(g1.Genes))
	var max1 int64
	for _, g := range g1.Genes {
		genes1[g.InnovationNum] = g
		max1 = max(max1, g.InnovationNum)
	}
	genes2 := make(map[int64]*genetics.Gene, len(g2.Genes))
	var max2 int64
	for _, g := range g2.Genes {
		genes2[g.InnovationNum] = g
		max2 = max(max2, g.InnovationNum)
	}

	matching, disjoint, excess := 0, 0, 0
	weightDiff := 0.0
	for n, a := range genes1 {
		if b, ok := genes2[n]; ok {
			matching++
			weightDiff += math.Abs(a.Link.ConnectionWeight - b.Link.ConnectionWeight)
		} else if n > max2 {
			excess++
		} else {
			disjoint++
		}
	}
	for n := range genes2 {
		if _, ok := genes1[n]; ok {
			continue
		}
		if n > max1 {
			excess++
		} else {
			disjoint++
		}
	}

	// Small genomes are not normalised
	size := float64(max(len(g1.Genes), len(g2.Genes)))
	if size < 20 {
		size = 1
	}
	avgDiff := 0.0
	if matching > 0 {
		avgDiff = weightDiff / float64(matching)
	}
	return (opts.ExcessCoeff*float64(excess)+opts.DisjointCoeff*float64(disjoint))/size + opts.MutdiffCoeff*avgDiff
}
