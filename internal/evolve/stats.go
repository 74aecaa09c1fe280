package evolve

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// GenerationStats summarises one evaluated generation. The csv tags define
// the history export format.
type GenerationStats struct {
	Generation int     `csv:"generation"`
	Population int     `csv:"population"`
	Species    int     `csv:"species"`
	Best       float64 `csv:"best_fitness"`
	Mean       float64 `csv:"mean_fitness"`
	StdDev     float64 `csv:"stddev_fitness"`
	Median     float64 `csv:"median_fitness"`
	Score      int     `csv:"score"`
	Ticks      int     `csv:"ticks"`
	BestNodes  int     `csv:"best_nodes"`
	BestLinks  int     `csv:"best_links"`
	EndReason  string  `csv:"end_reason"`
	DurationMS int64   `csv:"duration_ms"`
}

// Duration returns the wall-clock evaluation time.
func (s GenerationStats) Duration() time.Duration {
	return time.Duration(s.DurationMS) * time.Millisecond
}

// FitnessSummary holds the distribution of fitness values.
type FitnessSummary struct {
	Best, Mean, StdDev, Median float64
}

// Summarize computes the fitness distribution. An empty slice yields zeros.
func Summarize(fitness []float64) FitnessSummary {
	if len(fitness) == 0 {
		return FitnessSummary{}
	}

	sorted := make([]float64, len(fitness))
	copy(sorted, fitness)
	sort.Float64s(sorted)

	var s FitnessSummary
	s.Best = floats.Max(sorted)
	if len(sorted) > 1 {
		s.Mean, s.StdDev = stat.MeanStdDev(sorted, nil)
	} else {
		s.Mean = sorted[0]
	}
	s.Median = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	return s
}
