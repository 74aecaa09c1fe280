package brain

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/yaricom/goNEAT/v4/neat/genetics"
	neatmath "github.com/yaricom/goNEAT/v4/neat/math"
	"github.com/yaricom/goNEAT/v4/neat/network"
	"gopkg.in/yaml.v3"
)

// ErrInvalidGenome is returned when a decoded genome is structurally broken.
var ErrInvalidGenome = errors.New("invalid genome")

// GenomeFile is the YAML form of a genome.
type GenomeFile struct {
	ID      int        `yaml:"id"`
	Fitness float64    `yaml:"fitness,omitempty"`
	Nodes   []NodeSpec `yaml:"nodes"`
	Genes   []GeneSpec `yaml:"genes"`
}

// NodeSpec describes one neuron.
type NodeSpec struct {
	ID         int    `yaml:"id"`
	Type       string `yaml:"type"`
	Activation string `yaml:"activation"`
}

// GeneSpec describes one link.
type GeneSpec struct {
	In         int     `yaml:"in"`
	Out        int     `yaml:"out"`
	Weight     float64 `yaml:"weight"`
	Enabled    bool    `yaml:"enabled"`
	Recurrent  bool    `yaml:"recurrent,omitempty"`
	Innovation int64   `yaml:"innovation"`
	Mutation   float64 `yaml:"mutation,omitempty"`
}

var neuronTypes = map[network.NodeNeuronType]string{
	network.InputNeuron:  "input",
	network.BiasNeuron:   "bias",
	network.HiddenNeuron: "hidden",
	network.OutputNeuron: "output",
}

var activations = map[neatmath.NodeActivationType]string{
	neatmath.LinearActivation:           "linear",
	neatmath.SigmoidSteepenedActivation: "sigmoid",
	neatmath.TanhActivation:             "tanh",
	neatmath.GaussianBipolarActivation:  "gauss",
	neatmath.SineActivation:             "sin",
}

func lookup[K comparable](m map[K]string, name string) (K, bool) {
	for k, v := range m {
		if v == name {
			return k, true
		}
	}
	var zero K
	return zero, false
}

// ToFile converts a genome to its serialisable form.
func ToFile(genome *genetics.Genome, fitness float64) (GenomeFile, error) {
	f := GenomeFile{ID: genome.Id, Fitness: fitness}

	for _, n := range genome.Nodes {
		typ, ok := neuronTypes[n.NeuronType]
		if !ok {
			return f, fmt.Errorf("brain: node %d: %w: neuron type %v", n.Id, ErrInvalidGenome, n.NeuronType)
		}
		act, ok := activations[n.ActivationType]
		if !ok {
			return f, fmt.Errorf("brain: node %d: %w: activation %v", n.Id, ErrInvalidGenome, n.ActivationType)
		}
		f.Nodes = append(f.Nodes, NodeSpec{ID: n.Id, Type: typ, Activation: act})
	}

	for _, g := range genome.Genes {
		f.Genes = append(f.Genes, GeneSpec{
			In:         g.Link.InNode.Id,
			Out:        g.Link.OutNode.Id,
			Weight:     g.Link.ConnectionWeight,
			Enabled:    g.IsEnabled,
			Recurrent:  g.Link.IsRecurrent,
			Innovation: g.InnovationNum,
			Mutation:   g.MutationNum,
		})
	}
	sort.Slice(f.Genes, func(i, j int) bool { return f.Genes[i].Innovation < f.Genes[j].Innovation })
	return f, nil
}

// Genome rebuilds the goNEAT genome.
func (f GenomeFile) Genome() (*genetics.Genome, error) {
	nodes := make([]*network.NNode, 0, len(f.Nodes))
	byID := make(map[int]*network.NNode, len(f.Nodes))
	sensors, outputs := 0, 0

	for _, spec := range f.Nodes {
		typ, ok := lookup(neuronTypes, spec.Type)
		if !ok {
			return nil, fmt.Errorf("brain: node %d: %w: unknown type %q", spec.ID, ErrInvalidGenome, spec.Type)
		}
		act, ok := lookup(activations, spec.Activation)
		if !ok {
			return nil, fmt.Errorf("brain: node %d: %w: unknown activation %q", spec.ID, ErrInvalidGenome, spec.Activation)
		}
		if _, dup := byID[spec.ID]; dup {
			return nil, fmt.Errorf("brain: %w: duplicate node %d", ErrInvalidGenome, spec.ID)
		}

		node := network.NewNNode(spec.ID, typ)
		node.ActivationType = act
		nodes = append(nodes, node)
		byID[spec.ID] = node

		switch typ {
		case network.InputNeuron, network.BiasNeuron:
			sensors++
		case network.OutputNeuron:
			outputs++
		}
	}
	if sensors != Inputs || outputs != Outputs {
		return nil, fmt.Errorf("brain: %w: need %d sensors and %d outputs, got %d and %d",
			ErrInvalidGenome, Inputs, Outputs, sensors, outputs)
	}

	genes := make([]*genetics.Gene, 0, len(f.Genes))
	for _, spec := range f.Genes {
		in, out := byID[spec.In], byID[spec.Out]
		if in == nil || out == nil {
			return nil, fmt.Errorf("brain: %w: gene %d links unknown node", ErrInvalidGenome, spec.Innovation)
		}
		gene := genetics.NewGeneWithTrait(nil, spec.Weight, in, out, spec.Recurrent, spec.Innovation, spec.Mutation)
		gene.IsEnabled = spec.Enabled
		genes = append(genes, gene)
	}

	return genetics.NewGenome(f.ID, nil, nodes, genes), nil
}

// Encode serialises a genome to YAML.
func Encode(genome *genetics.Genome, fitness float64) ([]byte, error) {
	f, err := ToFile(genome, fitness)
	if err != nil {
		return nil, err
	}
	data, err := yaml.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("brain: encode genome %d: %w", genome.Id, err)
	}
	return data, nil
}

// Decode parses YAML produced by Encode.
func Decode(data []byte) (*genetics.Genome, float64, error) {
	var f GenomeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, 0, fmt.Errorf("brain: decode genome: %w", err)
	}
	genome, err := f.Genome()
	if err != nil {
		return nil, 0, err
	}
	return genome, f.Fitness, nil
}

// Save writes a genome to path.
func Save(path string, genome *genetics.Genome, fitness float64) error {
	data, err := Encode(genome, fitness)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("brain: save %s: %w", path, err)
	}
	return nil
}

// Load reads a genome saved by Save.
func Load(path string) (*genetics.Genome, float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("brain: load %s: %w", path, err)
	}
	return Decode(data)
}
