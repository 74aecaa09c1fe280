package game

// BirdView is the read-only view of a bird.
type BirdView struct {
	ID     BirdID  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Tilt   float64 `json:"tilt"`
	Passes int     `json:"passes"`
}

// PipeView is the read-only view of a pipe.
type PipeView struct {
	ID        PipeID  `json:"id"`
	X         float64 `json:"x"`
	GapTop    int     `json:"gap_top"`
	GapBottom int     `json:"gap_bottom"`
	Width     int     `json:"width"`
	Passed    bool    `json:"passed"`
}

// BaseView is the read-only view of the ground.
type BaseView struct {
	X1 float64 `json:"x1"`
	X2 float64 `json:"x2"`
	Y  float64 `json:"y"`
}

// Snapshot is an immutable copy of the round state for renderers and
// spectators. Generation is left zero by the round; trainers fill it in.
type Snapshot struct {
	Tick       int        `json:"tick"`
	State      string     `json:"state"`
	Score      int        `json:"score"`
	Generation int        `json:"generation"`
	Alive      int        `json:"alive"`
	Birds      []BirdView `json:"birds"`
	Pipes      []PipeView `json:"pipes"`
	Base       BaseView   `json:"base"`
	Width      int        `json:"width"`
	Height     int        `json:"height"`
}

// Snapshot copies the current state.
func (r *Round) Snapshot() Snapshot {
	s := Snapshot{
		Tick:   r.tick,
		State:  r.state.String(),
		Score:  r.score,
		Alive:  len(r.alive),
		Birds:  make([]BirdView, 0, len(r.alive)),
		Pipes:  make([]PipeView, 0, len(r.pipes)),
		Base:   BaseView{X1: r.base.X1, X2: r.base.X2, Y: r.base.Y},
		Width:  r.cfg.Playfield.Width,
		Height: r.cfg.Playfield.Height,
	}
	for _, b := range r.alive {
		s.Birds = append(s.Birds, BirdView{ID: b.ID, X: b.X, Y: b.Y, Tilt: b.Tilt, Passes: b.Passes})
	}
	for _, p := range r.pipes {
		s.Pipes = append(s.Pipes, PipeView{
			ID:        p.ID,
			X:         p.X,
			GapTop:    p.GapTop,
			GapBottom: p.GapBottom,
			Width:     p.Width,
			Passed:    p.Passed,
		})
	}
	return s
}
