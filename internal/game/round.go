package game

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/vovakirdan/flappy-evo/internal/config"
)

// State is the round lifecycle state.
type State int

const (
	StateWaiting State = iota // interactive only: terrain scrolls, nothing else moves
	StateRunning
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateWaiting:
		return "waiting"
	case StateRunning:
		return "running"
	case StateEnded:
		return "ended"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// EndReason explains why a round reached StateEnded.
type EndReason int

const (
	ReasonNone EndReason = iota
	ReasonAllEliminated
	ReasonScoreReached
	ReasonQuit
)

func (r EndReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonAllEliminated:
		return "all eliminated"
	case ReasonScoreReached:
		return "score reached"
	case ReasonQuit:
		return "quit"
	default:
		return fmt.Sprintf("EndReason(%d)", int(r))
	}
}

// Cause is why a bird left the round.
type Cause int

const (
	CauseCollision Cause = iota
	CauseFloor
	CauseCeiling
	CausePolicyError
)

func (c Cause) String() string {
	switch c {
	case CauseCollision:
		return "collision"
	case CauseFloor:
		return "floor"
	case CauseCeiling:
		return "ceiling"
	case CausePolicyError:
		return "policy error"
	default:
		return fmt.Sprintf("Cause(%d)", int(c))
	}
}

// Event records one elimination.
type Event struct {
	Bird  BirdID
	Cause Cause
	Tick  int
	Err   error // set for CausePolicyError
}

// Options selects the round variant.
type Options struct {
	Credit       bool // accumulate fitness credit (training)
	Ceiling      bool // eliminate birds that fly off the top (AI rounds)
	WaitForStart bool // start in StateWaiting until Start is called
	StopScore    int  // end with ReasonScoreReached at this score, 0 disables
}

// TickResult summarises one Step.
type TickResult struct {
	Tick   int
	Passed bool // a pipe was passed this tick
	Events []Event
	State  State
}

// Round is one play-through: a set of birds, each driven by its own policy,
// flying through a shared stream of pipes. It is not safe for concurrent use.
type Round struct {
	cfg     config.GameConfig
	opts    Options
	rng     *rand.Rand
	sprites *Sprites

	birds    []*Bird // every bird, indexed by ID
	policies []Policy
	alive    []*Bird
	pipes    []*Pipe
	base     *Base
	nextPipe PipeID

	score  int
	tick   int
	state  State
	reason EndReason
}

// NewRound creates a round with one bird per policy. Bird IDs follow the
// order of policies.
func NewRound(cfg config.GameConfig, opts Options, rng *rand.Rand, policies []Policy) *Round {
	r := &Round{
		cfg:      cfg,
		opts:     opts,
		rng:      rng,
		sprites:  NewSprites(cfg),
		policies: policies,
		base:     NewBase(cfg.Playfield.FloorY, cfg.Terrain),
		state:    StateRunning,
	}
	if opts.WaitForStart {
		r.state = StateWaiting
	}

	r.birds = make([]*Bird, len(policies))
	r.alive = make([]*Bird, len(policies))
	for i := range policies {
		b := NewBird(BirdID(i), cfg.Bird, cfg.Physics)
		r.birds[i] = b
		r.alive[i] = b
	}
	r.spawnPipe(cfg.Pipes.FirstX)

	if len(r.alive) == 0 {
		r.end(ReasonAllEliminated)
	}
	return r
}

// Step advances the round by one tick. It is a no-op once the round ended.
func (r *Round) Step() TickResult {
	res := TickResult{Tick: r.tick, State: r.state}
	if r.state == StateEnded {
		return res
	}

	// Only the ground moves until Start; policies are not consulted.
	if r.state == StateWaiting {
		r.base.Advance()
		return res
	}

	// Decisions are taken on the pre-advance positions.
	jumps := r.decide(&res)

	r.tick++
	res.Tick = r.tick

	for i, b := range r.alive {
		if jumps[i] {
			b.Jump()
		}
	}

	for _, b := range r.alive {
		if b.dead {
			continue
		}
		b.Advance()
		if r.opts.Credit {
			b.Credit += r.cfg.Credit.PerTick
		}
	}
	r.base.Advance()
	for _, p := range r.pipes {
		p.Advance()
	}

	// Collision scan: mark, then compact once every pair was tested.
	for _, p := range r.pipes {
		for _, b := range r.alive {
			if b.dead || !r.sprites.Collides(b, p) {
				continue
			}
			if r.opts.Credit {
				b.Credit += r.cfg.Credit.CollisionPenalty
			}
			r.kill(b, CauseCollision, nil, &res)
		}
	}
	r.compact()

	if len(r.alive) > 0 {
		ref := r.alive[0]
		for _, p := range r.pipes {
			if !p.Passed && p.X < ref.X {
				p.Passed = true
				res.Passed = true
			}
		}
	}

	if res.Passed {
		r.score++
		for _, b := range r.alive {
			b.Passes++
			if r.opts.Credit {
				b.Credit += r.cfg.Credit.PassBonus
			}
		}
		r.spawnPipe(float64(r.cfg.Playfield.Width))
	}

	kept := r.pipes[:0]
	for _, p := range r.pipes {
		if !p.OffScreen() {
			kept = append(kept, p)
		}
	}
	clear(r.pipes[len(kept):])
	r.pipes = kept

	for _, b := range r.alive {
		switch {
		case b.Y+float64(r.cfg.Bird.Height)-r.cfg.Playfield.FloorSlack >= r.cfg.Playfield.FloorY:
			r.kill(b, CauseFloor, nil, &res)
		case r.opts.Ceiling && b.Y < r.cfg.Playfield.CeilingY:
			r.kill(b, CauseCeiling, nil, &res)
		}
	}
	r.compact()

	switch {
	case len(r.alive) == 0:
		r.end(ReasonAllEliminated)
	case r.opts.StopScore > 0 && r.score >= r.opts.StopScore:
		r.end(ReasonScoreReached)
	}

	res.State = r.state
	return res
}

// decide asks each alive bird's policy for a decision. Birds whose policy
// fails are marked dead; their slot reports no jump.
func (r *Round) decide(res *TickResult) []bool {
	jumps := make([]bool, len(r.alive))
	for i, b := range r.alive {
		out, err := r.policies[b.ID].Activate(r.Observe(b))
		if err != nil {
			r.kill(b, CausePolicyError, err, res)
			continue
		}
		jumps[i] = out > r.cfg.Rules.JumpThreshold
	}
	return jumps
}

// Start leaves StateWaiting. The interactive game calls it on the player's
// first flap.
func (r *Round) Start() {
	if r.state == StateWaiting {
		r.state = StateRunning
	}
}

// Quit ends the round immediately.
func (r *Round) Quit() {
	if r.state != StateEnded {
		r.end(ReasonQuit)
	}
}

func (r *Round) end(reason EndReason) {
	r.state = StateEnded
	r.reason = reason
}

func (r *Round) kill(b *Bird, cause Cause, err error, res *TickResult) {
	if b.dead {
		return
	}
	b.dead = true
	res.Events = append(res.Events, Event{Bird: b.ID, Cause: cause, Tick: r.tick, Err: err})
}

// compact drops dead birds from the alive list, keeping order.
func (r *Round) compact() {
	kept := r.alive[:0]
	for _, b := range r.alive {
		if !b.dead {
			kept = append(kept, b)
		}
	}
	clear(r.alive[len(kept):])
	r.alive = kept
}

func (r *Round) spawnPipe(x float64) {
	r.pipes = append(r.pipes, NewPipe(r.nextPipe, x, r.cfg.Pipes, r.rng))
	r.nextPipe++
}

// NextPipe returns the first pipe whose trailing edge has not passed b, or
// nil if there is none.
func (r *Round) NextPipe(b *Bird) *Pipe {
	for _, p := range r.pipes {
		if p.TrailingEdge() >= b.X {
			return p
		}
	}
	return nil
}

// Observe builds the observation for b. Without a pipe ahead the gap is
// assumed centered in the playfield.
func (r *Round) Observe(b *Bird) Observation {
	top := float64(r.cfg.Pipes.GapCenterMin+r.cfg.Pipes.GapCenterMax)/2 - float64(r.cfg.Pipes.Gap)/2
	bottom := top + float64(r.cfg.Pipes.Gap)
	if p := r.NextPipe(b); p != nil {
		top, bottom = float64(p.GapTop), float64(p.GapBottom)
	}
	return Observation{
		Y:             b.Y,
		GapTopDist:    math.Abs(b.Y - top),
		GapBottomDist: math.Abs(b.Y - bottom),
	}
}

// Birds returns the birds still alive, in ID order.
func (r *Round) Birds() []*Bird { return r.alive }

// Bird returns the bird with the given ID, alive or not.
func (r *Round) Bird(id BirdID) *Bird {
	if id < 0 || int(id) >= len(r.birds) {
		return nil
	}
	return r.birds[id]
}

// Alive reports whether bird id is still in the round.
func (r *Round) Alive(id BirdID) bool {
	b := r.Bird(id)
	return b != nil && !b.dead
}

// Credits returns the accumulated credit of every bird, indexed by ID.
func (r *Round) Credits() []float64 {
	out := make([]float64, len(r.birds))
	for i, b := range r.birds {
		out[i] = b.Credit
	}
	return out
}

// Pipes returns the active pipes, oldest first.
func (r *Round) Pipes() []*Pipe { return r.pipes }

// Base returns the ground.
func (r *Round) Base() *Base { return r.base }

// Score returns the number of pass events so far.
func (r *Round) Score() int { return r.score }

// Tick returns the number of running ticks so far.
func (r *Round) Tick() int { return r.tick }

// State returns the lifecycle state.
func (r *Round) State() State { return r.state }

// Reason returns why the round ended, ReasonNone while it runs.
func (r *Round) Reason() EndReason { return r.reason }

// Config returns the game configuration the round was built with.
func (r *Round) Config() config.GameConfig { return r.cfg }
