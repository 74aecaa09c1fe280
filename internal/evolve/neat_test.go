package evolve

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/vovakirdan/flappy-evo/internal/brain"
	"github.com/vovakirdan/flappy-evo/internal/config"
)

func testTrainConfig() config.TrainConfig {
	cfg := config.DefaultConfig().Train
	cfg.Population = 20
	cfg.Generations = 3
	cfg.MaxTicks = 400
	return cfg
}

func TestAllocate(t *testing.T) {
	tests := []struct {
		name   string
		total  int
		shares []float64
	}{
		{"even", 10, []float64{1, 1}},
		{"uneven", 10, []float64{3, 1, 1}},
		{"zero shares", 7, []float64{0, 0, 0}},
		{"single", 5, []float64{2}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			counts := allocate(tc.total, tc.shares)
			sum := 0
			for _, c := range counts {
				if c < 0 {
					t.Errorf("negative count %d", c)
				}
				sum += c
			}
			if sum != tc.total {
				t.Errorf("counts %v sum to %d, expected %d", counts, sum, tc.total)
			}
		})
	}

	if counts := allocate(10, []float64{3, 1, 1}); counts[0] != 6 {
		t.Errorf("largest share should get 6 slots, got %v", counts)
	}
	if counts := allocate(0, []float64{1}); counts[0] != 0 {
		t.Errorf("no slots to allocate, got %v", counts)
	}
}

func TestNEATInitialPopulation(t *testing.T) {
	cfg := testTrainConfig()
	n := NewNEAT(cfg, rand.New(rand.NewSource(1)))

	if got := len(n.Organisms()); got != cfg.Population {
		t.Errorf("expected %d organisms, got %d", cfg.Population, got)
	}
	if n.Generation() != 1 {
		t.Errorf("expected generation 1, got %d", n.Generation())
	}
	if n.SpeciesCount() < 1 {
		t.Error("population should have at least one species")
	}

	members := 0
	for _, sp := range n.Species() {
		members += len(sp.Members)
	}
	if members != cfg.Population {
		t.Errorf("species hold %d members, expected %d", members, cfg.Population)
	}
}

func TestNEATEvolveKeepsPopulationSize(t *testing.T) {
	cfg := testTrainConfig()
	rng := rand.New(rand.NewSource(2))
	n := NewNEAT(cfg, rng)

	for gen := 0; gen < 5; gen++ {
		for _, org := range n.Organisms() {
			org.Fitness = rng.Float64()*20 - 1
		}
		if err := n.Evolve(); err != nil {
			t.Fatalf("generation %d: %v", gen, err)
		}
		if got := len(n.Organisms()); got != cfg.Population {
			t.Fatalf("generation %d: expected %d organisms, got %d", gen, cfg.Population, got)
		}
	}
	if n.Generation() != 6 {
		t.Errorf("expected generation 6, got %d", n.Generation())
	}
}

func TestNEATElitesSurvive(t *testing.T) {
	cfg := testTrainConfig()
	n := NewNEAT(cfg, rand.New(rand.NewSource(3)))

	for i, org := range n.Organisms() {
		org.Fitness = float64(i)
	}
	best := n.Organisms()[cfg.Population-1].Genome
	if err := n.Evolve(); err != nil {
		t.Fatal(err)
	}

	elite := n.Organisms()[0].Genome
	if d := Compatibility(best, elite, NEATOptions(cfg)); d != 0 {
		t.Errorf("best genome should be copied unchanged, distance %f", d)
	}
}

func TestNEATSeed(t *testing.T) {
	n := NewNEAT(testTrainConfig(), rand.New(rand.NewSource(4)))
	champion := brain.NewGenome(500, 1.0, rand.New(rand.NewSource(5)))

	if err := n.Seed(champion); err != nil {
		t.Fatal(err)
	}
	seeded := n.Organisms()[0].Genome
	if seeded == champion {
		t.Error("Seed should store a copy")
	}
	if d := Compatibility(champion, seeded, NEATOptions(testTrainConfig())); d != 0 {
		t.Errorf("seeded genome differs from champion, distance %f", d)
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{4, 1, 3, 2})

	if s.Best != 4 {
		t.Errorf("Best = %f, expected 4", s.Best)
	}
	if s.Mean != 2.5 {
		t.Errorf("Mean = %f, expected 2.5", s.Mean)
	}
	if s.Median != 2 {
		t.Errorf("Median = %f, expected 2", s.Median)
	}
	if expected := math.Sqrt(5.0 / 3.0); math.Abs(s.StdDev-expected) > 1e-9 {
		t.Errorf("StdDev = %f, expected %f", s.StdDev, expected)
	}

	if (Summarize(nil) != FitnessSummary{}) {
		t.Error("empty input should summarise to zeros")
	}
	if one := Summarize([]float64{-1}); one.Mean != -1 || one.StdDev != 0 {
		t.Errorf("single value summary = %+v", one)
	}
}

func TestGenerationDuration(t *testing.T) {
	s := GenerationStats{DurationMS: 1500}
	if got := s.Duration(); got != 1500*time.Millisecond {
		t.Errorf("Duration: got %v, expected 1.5s", got)
	}
}
