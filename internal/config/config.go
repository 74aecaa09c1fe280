// Package config provides YAML-based configuration loading for the game
// simulation and the training harness.
package config

// Config is the full runtime configuration.
type Config struct {
	Game  GameConfig  `yaml:"game"`
	Train TrainConfig `yaml:"train"`
}

// GameConfig contains everything the simulation needs. All distances are in
// playfield pixels and all speeds in pixels per tick.
type GameConfig struct {
	Playfield Playfield `yaml:"playfield"`
	Bird      BirdSpec  `yaml:"bird"`
	Physics   Physics   `yaml:"physics"`
	Pipes     Pipes     `yaml:"pipes"`
	Terrain   Terrain   `yaml:"terrain"`
	Rules     Rules     `yaml:"rules"`
	Credit    Credit    `yaml:"credit"`
}

// Playfield defines the world bounds.
type Playfield struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	FloorY     float64 `yaml:"floor_y"`
	FloorSlack float64 `yaml:"floor_slack"` // pixels of the bird allowed to sink into the floor
	CeilingY   float64 `yaml:"ceiling_y"`
}

// BirdSpec defines the spawn point and sprite size of a bird.
type BirdSpec struct {
	StartX float64 `yaml:"start_x"`
	StartY float64 `yaml:"start_y"`
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
}

// Physics defines bird kinematics.
type Physics struct {
	Gravity          float64 `yaml:"gravity"`
	JumpImpulse      float64 `yaml:"jump_impulse"`
	TerminalVelocity float64 `yaml:"terminal_velocity"`
	AscentBias       float64 `yaml:"ascent_bias"`
	MaxRotation      float64 `yaml:"max_rotation"`
	RotationVelocity float64 `yaml:"rotation_velocity"`
	MinTilt          float64 `yaml:"min_tilt"`
	TiltMargin       float64 `yaml:"tilt_margin"`
}

// Pipes defines obstacle geometry and spawning.
type Pipes struct {
	Gap          int     `yaml:"gap"`
	Velocity     float64 `yaml:"velocity"`
	Width        int     `yaml:"width"`
	Height       int     `yaml:"height"`
	GapCenterMin int     `yaml:"gap_center_min"`
	GapCenterMax int     `yaml:"gap_center_max"` // exclusive
	FirstX       float64 `yaml:"first_x"`
	LipHeight    int     `yaml:"lip_height"`
	LipInset     int     `yaml:"lip_inset"`
}

// Terrain defines the scrolling base.
type Terrain struct {
	Velocity  float64 `yaml:"velocity"`
	TileWidth int     `yaml:"tile_width"`
}

// Rules defines round termination and decision parameters.
type Rules struct {
	JumpThreshold float64 `yaml:"jump_threshold"`
	StopScore     int     `yaml:"stop_score"` // 0 disables
}

// Credit defines fitness contributions during training rounds.
type Credit struct {
	PerTick          float64 `yaml:"per_tick"`
	PassBonus        float64 `yaml:"pass_bonus"`
	CollisionPenalty float64 `yaml:"collision_penalty"`
}

// TrainConfig contains the evolutionary search parameters.
type TrainConfig struct {
	Population            int        `yaml:"population"`
	Generations           int        `yaml:"generations"`
	FitnessThreshold      float64    `yaml:"fitness_threshold"`
	InitialConnectionProb float64    `yaml:"initial_connection_prob"`
	MaxTicks              int        `yaml:"max_ticks"` // safety cap per round, 0 disables
	NEAT                  NEATConfig `yaml:"neat"`
}

// NEATConfig mirrors the subset of goNEAT options the trainer uses.
type NEATConfig struct {
	CompatThreshold       float64 `yaml:"compat_threshold"`
	DisjointCoeff         float64 `yaml:"disjoint_coeff"`
	ExcessCoeff           float64 `yaml:"excess_coeff"`
	MutdiffCoeff          float64 `yaml:"mutdiff_coeff"`
	WeightMutPower        float64 `yaml:"weight_mut_power"`
	MutateLinkWeightsProb float64 `yaml:"mutate_link_weights_prob"`
	MutateAddNodeProb     float64 `yaml:"mutate_add_node_prob"`
	MutateAddLinkProb     float64 `yaml:"mutate_add_link_prob"`
	MutateToggleEnable    float64 `yaml:"mutate_toggle_enable_prob"`
	MutateOnlyProb        float64 `yaml:"mutate_only_prob"`
	MateOnlyProb          float64 `yaml:"mate_only_prob"`
	DropOffAge            int     `yaml:"drop_off_age"`
	SurvivalThresh        float64 `yaml:"survival_thresh"`
	Elitism               int     `yaml:"elitism"`
}
