package game

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/vovakirdan/flappy-evo/internal/config"
)

// testConfig returns a forgiving configuration: a wide gap whose center
// barely moves, so the hover policy never crashes.
func testConfig() config.GameConfig {
	cfg := config.DefaultGameConfig()
	cfg.Pipes.Gap = 300
	cfg.Pipes.GapCenterMin = 340
	cfg.Pipes.GapCenterMax = 360
	return cfg
}

// hover jumps once the bird sinks a little below the gap center. It only
// looks at the observation: (top - bottom) / 2 is Y minus the gap center
// while the bird is inside the gap.
var hover = PolicyFunc(func(obs Observation) (float64, error) {
	if (obs.GapTopDist-obs.GapBottomDist)/2 > 12 {
		return 1, nil
	}
	return 0, nil
})

var neverJump = PolicyFunc(func(Observation) (float64, error) { return 0, nil })

func newTestRound(cfg config.GameConfig, opts Options, policies ...Policy) *Round {
	return NewRound(cfg, opts, rand.New(rand.NewSource(7)), policies)
}

func TestRoundStartsRunning(t *testing.T) {
	r := newTestRound(testConfig(), Options{}, hover)

	if r.State() != StateRunning {
		t.Errorf("State() = %v, expected running", r.State())
	}
	if len(r.Pipes()) != 1 || r.Pipes()[0].X != 700 {
		t.Errorf("round should start with one pipe at x=700, got %d pipes", len(r.Pipes()))
	}
}

func TestRoundWithoutBirdsEnds(t *testing.T) {
	r := newTestRound(testConfig(), Options{})
	if r.State() != StateEnded || r.Reason() != ReasonAllEliminated {
		t.Errorf("empty round should be ended, got %v / %v", r.State(), r.Reason())
	}
}

func TestScoreAndPassedFlag(t *testing.T) {
	cfg := testConfig()
	r := newTestRound(cfg, Options{}, hover)

	passed := map[PipeID]bool{}
	prevScore := 0
	for i := 0; i < 600; i++ {
		res := r.Step()
		if res.State != StateRunning {
			t.Fatalf("tick %d: hover bird should survive, state %v events %+v", i, res.State, res.Events)
		}

		for _, p := range r.Pipes() {
			if p.Gap() != cfg.Pipes.Gap {
				t.Fatalf("pipe %d gap = %d, expected %d", p.ID, p.Gap(), cfg.Pipes.Gap)
			}
			if p.Passed && !passed[p.ID] {
				// First tick with the flag set must be the first tick past the bird
				if !(p.X < cfg.Bird.StartX && p.X+cfg.Pipes.Velocity >= cfg.Bird.StartX) {
					t.Errorf("pipe %d marked passed late at x=%v", p.ID, p.X)
				}
				passed[p.ID] = true
			}
			if !p.Passed && passed[p.ID] {
				t.Errorf("pipe %d passed flag went back to false", p.ID)
			}
		}

		delta := r.Score() - prevScore
		if delta < 0 || delta > 1 {
			t.Fatalf("tick %d: score changed by %d", i, delta)
		}
		if (delta == 1) != res.Passed {
			t.Fatalf("tick %d: score delta %d but Passed=%v", i, delta, res.Passed)
		}
		prevScore = r.Score()
	}

	if r.Score() < 5 {
		t.Errorf("Score() = %d after 600 ticks, expected at least 5", r.Score())
	}
}

func TestPassSpawnsPipeAtRightEdge(t *testing.T) {
	r := newTestRound(testConfig(), Options{}, hover)

	for r.Score() == 0 {
		if res := r.Step(); res.State != StateRunning {
			t.Fatal("round ended before the first pass")
		}
	}

	pipes := r.Pipes()
	if len(pipes) != 2 {
		t.Fatalf("expected 2 pipes after the first pass, got %d", len(pipes))
	}
	if pipes[1].X != 600 {
		t.Errorf("new pipe at x=%v, expected 600", pipes[1].X)
	}
}

func TestPipeRetirement(t *testing.T) {
	cfg := testConfig()
	cfg.Pipes.Width = 80
	r := newTestRound(cfg, Options{}, hover)
	r.spawnPipe(600)
	second := r.Pipes()[1].ID

	has := func(id PipeID) bool {
		for _, p := range r.Pipes() {
			if p.ID == id {
				return true
			}
		}
		return false
	}

	for i := 0; i < 136; i++ {
		r.Step()
	}
	if !has(second) {
		t.Fatal("pipe spawned at 600 should still be visible after 136 ticks")
	}

	for i := 136; i < 140; i++ {
		r.Step()
	}
	if has(second) {
		t.Error("pipe spawned at 600 should be retired after 140 ticks")
	}
	if first := r.Pipes()[0]; first.X != 0 {
		t.Errorf("pipe spawned at 700 should be at x=0, got %v", first.X)
	}
	if r.State() != StateRunning {
		t.Errorf("round should still run, got %v", r.State())
	}
}

func TestFloorEliminatesOnlyThatBird(t *testing.T) {
	cfg := testConfig()
	r := newTestRound(cfg, Options{}, neverJump, hover)

	for i := 0; i < 100; i++ {
		faller := r.Bird(0)
		res := r.Step()
		if len(res.Events) == 0 {
			continue
		}

		ev := res.Events[0]
		if ev.Bird != 0 || ev.Cause != CauseFloor {
			t.Fatalf("unexpected elimination %+v", ev)
		}
		if faller.Y+float64(cfg.Bird.Height)-cfg.Playfield.FloorSlack < cfg.Playfield.FloorY {
			t.Errorf("bird removed above the floor at y=%v", faller.Y)
		}
		if r.Alive(0) || len(r.Birds()) != 1 || r.Birds()[0].ID != 1 {
			t.Error("only the falling bird should be removed")
		}
		if res.State != StateRunning {
			t.Errorf("round should continue, got %v", res.State)
		}
		return
	}
	t.Fatal("falling bird never hit the floor")
}

func TestLastEliminationEndsRoundSameTick(t *testing.T) {
	r := newTestRound(testConfig(), Options{}, neverJump)

	for i := 0; i < 100; i++ {
		res := r.Step()
		if len(res.Events) > 0 {
			if res.State != StateEnded {
				t.Errorf("State = %v on the elimination tick, expected ended", res.State)
			}
			if r.Reason() != ReasonAllEliminated {
				t.Errorf("Reason() = %v, expected all eliminated", r.Reason())
			}
			return
		}
	}
	t.Fatal("bird never eliminated")
}

func TestCeilingOnlyInAIRounds(t *testing.T) {
	alwaysJump := PolicyFunc(func(Observation) (float64, error) { return 1, nil })

	ai := newTestRound(testConfig(), Options{Ceiling: true}, alwaysJump)
	human := newTestRound(testConfig(), Options{}, alwaysJump)

	for i := 0; i < 60; i++ {
		ai.Step()
		human.Step()
	}

	if ai.State() != StateEnded {
		t.Error("AI bird flying off the top should be eliminated")
	}
	if human.State() != StateRunning {
		t.Error("without the ceiling rule the bird stays alive")
	}
}

func TestCollisionCreditAndRemoval(t *testing.T) {
	cfg := testConfig()
	cfg.Pipes.FirstX = 240
	cfg.Pipes.GapCenterMin = 600
	cfg.Pipes.GapCenterMax = 601
	r := newTestRound(cfg, Options{Credit: true}, neverJump)

	res := r.Step()

	if len(res.Events) != 1 || res.Events[0].Cause != CauseCollision {
		t.Fatalf("expected one collision, got %+v", res.Events)
	}
	want := cfg.Credit.PerTick + cfg.Credit.CollisionPenalty
	if got := r.Credits()[0]; math.Abs(got-want) > 1e-9 {
		t.Errorf("credit = %v, expected %v", got, want)
	}
}

func TestCreditAccumulation(t *testing.T) {
	cfg := testConfig()
	r := newTestRound(cfg, Options{Credit: true}, hover)

	for i := 0; i < 300; i++ {
		r.Step()
	}

	want := float64(r.Tick())*cfg.Credit.PerTick + float64(r.Score())*cfg.Credit.PassBonus
	if got := r.Credits()[0]; math.Abs(got-want) > 1e-6 {
		t.Errorf("credit = %v, expected %v", got, want)
	}
}

func TestNoCreditOutsideTraining(t *testing.T) {
	r := newTestRound(testConfig(), Options{}, hover)
	for i := 0; i < 200; i++ {
		r.Step()
	}
	if r.Credits()[0] != 0 {
		t.Errorf("credit = %v, expected 0 without credit mode", r.Credits()[0])
	}
}

func TestStopScore(t *testing.T) {
	r := newTestRound(testConfig(), Options{StopScore: 2}, hover)

	for i := 0; i < 1000 && r.State() == StateRunning; i++ {
		r.Step()
	}

	if r.Reason() != ReasonScoreReached || r.Score() != 2 {
		t.Errorf("got %v with score %d, expected score reached at 2", r.Reason(), r.Score())
	}
}

func TestQuit(t *testing.T) {
	r := newTestRound(testConfig(), Options{}, hover)
	r.Step()
	r.Quit()

	if r.State() != StateEnded || r.Reason() != ReasonQuit {
		t.Fatalf("after Quit() got %v / %v", r.State(), r.Reason())
	}

	tick, x := r.Tick(), r.Pipes()[0].X
	r.Step()
	if r.Tick() != tick || r.Pipes()[0].X != x {
		t.Error("Step after the round ended should be a no-op")
	}
}

func TestPolicyErrorEliminatesBird(t *testing.T) {
	boom := errors.New("boom")
	broken := PolicyFunc(func(Observation) (float64, error) { return 0, boom })
	r := newTestRound(testConfig(), Options{}, broken, hover)

	res := r.Step()

	if len(res.Events) != 1 || res.Events[0].Cause != CausePolicyError || !errors.Is(res.Events[0].Err, boom) {
		t.Fatalf("expected a policy error event, got %+v", res.Events)
	}
	if r.Alive(0) || !r.Alive(1) {
		t.Error("only the bird with the failing policy should be removed")
	}
}

func TestWaitForStart(t *testing.T) {
	cfg := testConfig()
	pilot := &Pilot{}
	eager := PolicyFunc(func(Observation) (float64, error) { return 1, nil })
	r := newTestRound(cfg, Options{WaitForStart: true}, pilot, eager)

	x1 := r.Base().X1
	for i := 0; i < 10; i++ {
		r.Step()
	}
	if r.State() != StateWaiting || r.Tick() != 0 {
		t.Fatalf("round should wait, got %v at tick %d", r.State(), r.Tick())
	}
	if r.Pipes()[0].X != cfg.Pipes.FirstX || r.Bird(0).Y != cfg.Bird.StartY {
		t.Error("nothing but the ground should move while waiting")
	}
	if r.Bird(1).Y != cfg.Bird.StartY {
		t.Error("an eager policy should not move its bird while waiting")
	}
	if r.Base().X1 == x1 {
		t.Error("ground should scroll while waiting")
	}

	pilot.Flap()
	r.Step()
	if r.State() != StateWaiting {
		t.Fatalf("a queued flap alone should not start the round, got %v", r.State())
	}

	r.Start()
	r.Step()

	if r.State() != StateRunning || r.Tick() != 1 {
		t.Fatalf("flap should start the round, got %v at tick %d", r.State(), r.Tick())
	}
	if r.Bird(0).Y >= cfg.Bird.StartY {
		t.Error("first flap should make the bird jump")
	}
}

func TestObservation(t *testing.T) {
	r := newTestRound(testConfig(), Options{}, hover)
	b := r.Bird(0)
	p := r.NextPipe(b)

	obs := r.Observe(b)
	if obs.Y != b.Y {
		t.Errorf("obs.Y = %v, expected %v", obs.Y, b.Y)
	}
	if obs.GapTopDist != math.Abs(b.Y-float64(p.GapTop)) || obs.GapBottomDist != math.Abs(b.Y-float64(p.GapBottom)) {
		t.Errorf("observation %+v does not match gap %d..%d", obs, p.GapTop, p.GapBottom)
	}
}

func TestNextPipeSkipsPassedTrailingEdge(t *testing.T) {
	r := newTestRound(testConfig(), Options{}, hover)
	r.spawnPipe(900)
	b := r.Bird(0)

	r.pipes[0].X = b.X - float64(r.pipes[0].Width)
	if r.NextPipe(b) != r.pipes[0] {
		t.Error("pipe whose trailing edge is at the bird is still next")
	}

	r.pipes[0].X--
	if r.NextPipe(b) != r.pipes[1] {
		t.Error("pipe whose trailing edge passed the bird should be skipped")
	}
}

func TestRoundDeterminism(t *testing.T) {
	run := func() (int, int, []int) {
		r := newTestRound(testConfig(), Options{}, hover, neverJump)
		var centers []int
		for i := 0; i < 400; i++ {
			r.Step()
		}
		for _, p := range r.Pipes() {
			centers = append(centers, p.GapCenter)
		}
		return r.Score(), r.Tick(), centers
	}

	s1, t1, c1 := run()
	s2, t2, c2 := run()
	if s1 != s2 || t1 != t2 || len(c1) != len(c2) {
		t.Fatalf("runs differ: score %d/%d tick %d/%d", s1, s2, t1, t2)
	}
	for i := range c1 {
		if c1[i] != c2[i] {
			t.Errorf("pipe %d gap center differs: %d vs %d", i, c1[i], c2[i])
		}
	}
}

func TestSnapshot(t *testing.T) {
	r := newTestRound(testConfig(), Options{}, hover, neverJump)
	r.Step()

	s := r.Snapshot()
	if s.Alive != 2 || len(s.Birds) != 2 || len(s.Pipes) != 1 {
		t.Fatalf("unexpected snapshot %+v", s)
	}
	if s.State != "running" || s.Tick != 1 {
		t.Errorf("snapshot state %q tick %d", s.State, s.Tick)
	}

	s.Birds[0].Y = -1000
	if r.Bird(0).Y == -1000 {
		t.Error("snapshot must not alias round state")
	}
}

func TestPassesCountOnlyLivingBirds(t *testing.T) {
	r := newTestRound(testConfig(), Options{}, hover, neverJump)

	for i := 0; r.Score() < 2; i++ {
		if i > 2000 {
			t.Fatal("hover bird should pass two pipes")
		}
		r.Step()
	}

	if r.Alive(1) {
		t.Fatal("the falling bird should be out before the first pass")
	}
	if got := r.Bird(0).Passes; got != r.Score() {
		t.Errorf("survivor passes: got %d, expected %d", got, r.Score())
	}
	if got := r.Bird(1).Passes; got != 0 {
		t.Errorf("fallen bird passes: got %d, expected 0", got)
	}
}
