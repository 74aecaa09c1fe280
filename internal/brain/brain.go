// Package brain turns goNEAT genomes into flappy bird decision sources and
// persists them.
package brain

import (
	"fmt"
	"math/rand"

	"github.com/yaricom/goNEAT/v4/neat/genetics"
	neatmath "github.com/yaricom/goNEAT/v4/neat/math"
	"github.com/yaricom/goNEAT/v4/neat/network"

	"github.com/vovakirdan/flappy-evo/internal/game"
)

// Inputs is the number of sensor nodes: the three observation values and a
// constant bias input.
const Inputs = 4

// Outputs is the number of output nodes: the jump signal.
const Outputs = 1

// OutputActivation is the activation used for the output and new hidden nodes.
const OutputActivation = neatmath.TanhActivation

// biasInput is fed to the last sensor node.
const biasInput = 1.0

// Controller wraps a goNEAT network and implements game.Policy.
type Controller struct {
	Genome  *genetics.Genome
	network *network.Network
	inputs  []float64
}

// NewController builds the network for genome.
func NewController(genome *genetics.Genome) (*Controller, error) {
	phenotype, err := genome.Genesis(genome.Id)
	if err != nil {
		return nil, fmt.Errorf("brain: build network for genome %d: %w", genome.Id, err)
	}
	return &Controller{
		Genome:  genome,
		network: phenotype,
		inputs:  make([]float64, Inputs),
	}, nil
}

// Activate feeds the observation through the network and returns the jump
// signal in (-1, 1).
func (c *Controller) Activate(obs game.Observation) (float64, error) {
	c.inputs[0] = obs.Y
	c.inputs[1] = obs.GapTopDist
	c.inputs[2] = obs.GapBottomDist
	c.inputs[3] = biasInput

	if err := c.network.LoadSensors(c.inputs); err != nil {
		return 0, fmt.Errorf("brain: load sensors: %w", err)
	}

	// Activate once per layer so the signal reaches the output
	depth, err := c.network.MaxActivationDepth()
	if err != nil || depth < 1 {
		depth = 5
	}
	for i := 0; i < depth; i++ {
		if _, err := c.network.Activate(); err != nil {
			return 0, fmt.Errorf("brain: activate: %w", err)
		}
	}

	outputs := c.network.ReadOutputs()
	if _, err := c.network.Flush(); err != nil {
		return 0, fmt.Errorf("brain: flush: %w", err)
	}
	if len(outputs) != Outputs {
		return 0, fmt.Errorf("brain: expected %d outputs, got %d", Outputs, len(outputs))
	}
	return outputs[0], nil
}

// NodeCount returns the number of nodes in the network.
func (c *Controller) NodeCount() int {
	return c.network.NodeCount()
}

// LinkCount returns the number of links in the network.
func (c *Controller) LinkCount() int {
	return c.network.LinkCount()
}

// NewGenome creates a genome with every sensor wired to the output with
// probability connectionProb. At least one link is always present.
// Innovation numbers 1..Inputs*Outputs are reserved for these links.
func NewGenome(id int, connectionProb float64, rng *rand.Rand) *genetics.Genome {
	nodes := make([]*network.NNode, 0, Inputs+Outputs)

	// Sensor nodes (IDs 1 to Inputs)
	for i := 1; i <= Inputs; i++ {
		node := network.NewNNode(i, network.InputNeuron)
		node.ActivationType = neatmath.LinearActivation
		nodes = append(nodes, node)
	}

	// Output nodes (IDs Inputs+1 onward)
	for i := 1; i <= Outputs; i++ {
		node := network.NewNNode(Inputs+i, network.OutputNeuron)
		node.ActivationType = OutputActivation
		nodes = append(nodes, node)
	}

	genes := make([]*genetics.Gene, 0, Inputs*Outputs)
	innov := int64(1)
	for i := 0; i < Inputs; i++ {
		for j := 0; j < Outputs; j++ {
			current := innov
			innov++
			if rng.Float64() < connectionProb {
				genes = append(genes, genetics.NewGeneWithTrait(
					nil, rng.Float64()*4-2, nodes[i], nodes[Inputs+j], false, current, 0,
				))
			}
		}
	}

	if len(genes) == 0 {
		i := rng.Intn(Inputs)
		genes = append(genes, genetics.NewGeneWithTrait(
			nil, rng.Float64()*2-1, nodes[i], nodes[Inputs], false, int64(i*Outputs+1), 0,
		))
	}

	return genetics.NewGenome(id, nil, nodes, genes)
}

// FirstInnovation is the first innovation number free for structural
// mutations.
const FirstInnovation = int64(Inputs*Outputs + 1)
