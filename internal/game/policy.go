package game

// Observation is what a decision source sees each tick: the bird height and
// its vertical distance to both edges of the next pipe gap.
type Observation struct {
	Y             float64 `json:"y"`
	GapTopDist    float64 `json:"gap_top_dist"`
	GapBottomDist float64 `json:"gap_bottom_dist"`
}

// Inputs returns the observation as a network input vector.
func (o Observation) Inputs() []float64 {
	return []float64{o.Y, o.GapTopDist, o.GapBottomDist}
}

// Policy supplies the jump decision for one bird. The bird jumps when the
// returned value exceeds the configured threshold (0.5 by default).
type Policy interface {
	Activate(obs Observation) (float64, error)
}

// PolicyFunc adapts a plain function to Policy.
type PolicyFunc func(obs Observation) (float64, error)

// Activate calls f.
func (f PolicyFunc) Activate(obs Observation) (float64, error) {
	return f(obs)
}

// Pilot is the human decision source. Flap queues one jump that is consumed
// by the next activation.
type Pilot struct {
	pending bool
}

// Flap requests a jump on the next tick.
func (p *Pilot) Flap() {
	p.pending = true
}

// Activate returns 1 once per queued flap, 0 otherwise.
func (p *Pilot) Activate(Observation) (float64, error) {
	if p.pending {
		p.pending = false
		return 1, nil
	}
	return 0, nil
}
