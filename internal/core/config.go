package core

// RuntimeConfig is passed to Game.Reset: the terminal size, the tick rate
// and the seed pipes are drawn from. A zero Seed means the platform picks one.
type RuntimeConfig struct {
	ScreenW  int   // Screen width in characters
	ScreenH  int   // Screen height in characters
	TickRate int   // Simulation ticks per second
	Seed     int64 // RNG seed for deterministic gameplay
}

// GameState is what the platform needs to know about a game after a tick.
type GameState struct {
	Score      int  // Current score
	GameOver   bool // Whether the game has ended
	Paused     bool // Whether the game is paused
	Waiting    bool // Whether the game waits for the first flap
	Alive      int  // Birds still in the round
	Generation int  // Training generation, 0 outside training
}

// StepResult is returned by Game.Step.
type StepResult struct {
	State GameState
}
