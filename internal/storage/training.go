package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vovakirdan/flappy-evo/internal/evolve"
)

var (
	// ErrNoChampion is returned when no champion genome has been stored.
	ErrNoChampion = errors.New("storage: no champion stored")
	// ErrNoRun is returned when a training run does not exist.
	ErrNoRun = errors.New("storage: no such run")
)

// Run is one training session.
type Run struct {
	ID          int64
	Seed        int64
	Population  int
	Generations int
	BestFitness float64
	Reached     bool
	StartedAt   time.Time
	FinishedAt  time.Time // zero while running or if interrupted
}

// Champion is a stored genome document, encoded by the brain package.
type Champion struct {
	ID        int64
	RunID     int64
	Fitness   float64
	Genome    []byte
	CreatedAt time.Time
}

// StartRun records the start of a training session and returns its ID.
func (s *Store) StartRun(seed int64, population, generations int) (int64, error) {
	res, err := s.db.Exec(
		"INSERT INTO runs (seed, population, generations) VALUES (?, ?, ?)",
		seed, population, generations,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot start run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}
	return id, nil
}

// FinishRun stores the outcome of a training session.
func (s *Store) FinishRun(runID int64, bestFitness float64, reached bool) error {
	_, err := s.db.Exec(
		"UPDATE runs SET best_fitness = ?, reached = ?, finished_at = CURRENT_TIMESTAMP WHERE id = ?",
		bestFitness, reached, runID,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot finish run %d: %w", runID, err)
	}
	return nil
}

// Runs returns the most recent training sessions, newest first.
func (s *Store) Runs(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, seed, population, generations, best_fitness, reached, started_at, finished_at
		 FROM runs
		 ORDER BY id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var best sql.NullFloat64
		var startedAt, finishedAt any
		if err := rows.Scan(&r.ID, &r.Seed, &r.Population, &r.Generations, &best, &r.Reached, &startedAt, &finishedAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.BestFitness = best.Float64
		r.StartedAt = parseTime(startedAt)
		r.FinishedAt = parseTime(finishedAt)
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return runs, nil
}

// Run returns one training session.
func (s *Store) Run(runID int64) (Run, error) {
	r := Run{ID: runID}
	var best sql.NullFloat64
	var startedAt, finishedAt any
	err := s.db.QueryRow(
		"SELECT seed, population, generations, best_fitness, reached, started_at, finished_at FROM runs WHERE id = ?",
		runID,
	).Scan(&r.Seed, &r.Population, &r.Generations, &best, &r.Reached, &startedAt, &finishedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNoRun
	}
	if err != nil {
		return Run{}, fmt.Errorf("storage: cannot query run %d: %w", runID, err)
	}
	r.BestFitness = best.Float64
	r.StartedAt = parseTime(startedAt)
	r.FinishedAt = parseTime(finishedAt)
	return r, nil
}

// SaveGeneration records the stats of one evaluated generation.
func (s *Store) SaveGeneration(runID int64, g evolve.GenerationStats) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO generations
		 (run_id, generation, population, species, best, mean, stddev, median,
		  score, ticks, best_nodes, best_links, end_reason, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, g.Generation, g.Population, g.Species, g.Best, g.Mean, g.StdDev, g.Median,
		g.Score, g.Ticks, g.BestNodes, g.BestLinks, g.EndReason, g.DurationMS,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save generation %d: %w", g.Generation, err)
	}
	return nil
}

// Generations returns the history of a run in generation order.
func (s *Store) Generations(runID int64) ([]evolve.GenerationStats, error) {
	rows, err := s.db.Query(
		`SELECT generation, population, species, best, mean, stddev, median,
		        score, ticks, best_nodes, best_links, end_reason, duration_ms
		 FROM generations
		 WHERE run_id = ?
		 ORDER BY generation`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query generations: %w", err)
	}
	defer rows.Close()

	var history []evolve.GenerationStats
	for rows.Next() {
		var g evolve.GenerationStats
		if err := rows.Scan(
			&g.Generation, &g.Population, &g.Species, &g.Best, &g.Mean, &g.StdDev, &g.Median,
			&g.Score, &g.Ticks, &g.BestNodes, &g.BestLinks, &g.EndReason, &g.DurationMS,
		); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		history = append(history, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return history, nil
}

// SaveChampion stores an encoded genome. runID may be 0 for genomes that
// did not come from a recorded run.
func (s *Store) SaveChampion(runID int64, fitness float64, genome []byte) (int64, error) {
	var run sql.NullInt64
	if runID > 0 {
		run = sql.NullInt64{Int64: runID, Valid: true}
	}

	res, err := s.db.Exec(
		"INSERT INTO champions (run_id, fitness, genome) VALUES (?, ?, ?)",
		run, fitness, genome,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save champion: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}
	return id, nil
}

// BestChampion returns the fittest stored genome.
func (s *Store) BestChampion() (*Champion, error) {
	return s.champion(
		`SELECT id, run_id, fitness, genome, created_at
		 FROM champions
		 ORDER BY fitness DESC, id DESC
		 LIMIT 1`,
	)
}

// RunChampion returns the champion stored for a run.
func (s *Store) RunChampion(runID int64) (*Champion, error) {
	return s.champion(
		`SELECT id, run_id, fitness, genome, created_at
		 FROM champions
		 WHERE run_id = ?
		 ORDER BY fitness DESC, id DESC
		 LIMIT 1`,
		runID,
	)
}

func (s *Store) champion(query string, args ...any) (*Champion, error) {
	var c Champion
	var run sql.NullInt64
	var createdAt any

	err := s.db.QueryRow(query, args...).Scan(&c.ID, &run, &c.Fitness, &c.Genome, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoChampion
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query champion: %w", err)
	}

	c.RunID = run.Int64
	c.CreatedAt = parseTime(createdAt)
	return &c, nil
}
