package config

import (
	_ "embed"
)

//go:embed defaults/flappy.yaml
var defaultYAML []byte

// DefaultConfig returns the built-in configuration. It matches
// defaults/flappy.yaml and is used when the embedded file cannot be parsed.
func DefaultConfig() Config {
	return Config{
		Game: DefaultGameConfig(),
		Train: TrainConfig{
			Population:            50,
			Generations:           25,
			FitnessThreshold:      100,
			InitialConnectionProb: 1.0,
			MaxTicks:              20000,
			NEAT: NEATConfig{
				CompatThreshold:       3.0,
				DisjointCoeff:         1.0,
				ExcessCoeff:           1.0,
				MutdiffCoeff:          0.5,
				WeightMutPower:        0.5,
				MutateLinkWeightsProb: 0.8,
				MutateAddNodeProb:     0.2,
				MutateAddLinkProb:     0.5,
				MutateToggleEnable:    0.01,
				MutateOnlyProb:        0.25,
				MateOnlyProb:          0.2,
				DropOffAge:            20,
				SurvivalThresh:        0.2,
				Elitism:               2,
			},
		},
	}
}

// DefaultGameConfig returns the default simulation parameters.
func DefaultGameConfig() GameConfig {
	return GameConfig{
		Playfield: Playfield{
			Width:      600,
			Height:     800,
			FloorY:     730,
			FloorSlack: 10,
			CeilingY:   -50,
		},
		Bird: BirdSpec{
			StartX: 230,
			StartY: 350,
			Width:  68,
			Height: 48,
		},
		Physics: Physics{
			Gravity:          3,
			JumpImpulse:      -10.5,
			TerminalVelocity: 16,
			AscentBias:       2,
			MaxRotation:      25,
			RotationVelocity: 20,
			MinTilt:          -90,
			TiltMargin:       50,
		},
		Pipes: Pipes{
			Gap:          160,
			Velocity:     5,
			Width:        104,
			Height:       640,
			GapCenterMin: 130,
			GapCenterMax: 530,
			FirstX:       700,
			LipHeight:    48,
			LipInset:     4,
		},
		Terrain: Terrain{
			Velocity:  5,
			TileWidth: 672,
		},
		Rules: Rules{
			JumpThreshold: 0.5,
			StopScore:     25,
		},
		Credit: Credit{
			PerTick:          0.1,
			PassBonus:        5,
			CollisionPenalty: -1,
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultYAML
}
