package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load loads the configuration.
// Search order: customPath -> ~/.flappy/flappy.yaml -> ./configs/flappy.yaml -> embedded default.
// Files are overlaid on the defaults, so a partial file only overrides the
// keys it names. The result is validated before it is returned.
func Load(customPath string) (Config, error) {
	cfg := defaults()

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", customPath, err)
		}
		return cfg, cfg.Validate()
	}

	// Try user config directory
	if userCfgPath := userConfigPath("flappy.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("config: parse %s: %w", userCfgPath, err)
			}
			return cfg, cfg.Validate()
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", "flappy.yaml")); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse configs/flappy.yaml: %w", err)
		}
	}

	return cfg, cfg.Validate()
}

// Parse decodes YAML data over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := defaults()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse: %w", err)
	}
	return cfg, cfg.Validate()
}

// defaults returns the embedded default YAML decoded, falling back to the
// hardcoded values if the embed is unusable.
func defaults() Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		return DefaultConfig()
	}
	return cfg
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".flappy", filename)
}

// Validate checks every field and returns all problems joined together.
func (c Config) Validate() error {
	return errors.Join(c.Game.Validate(), c.Train.Validate())
}

// Validate checks the simulation parameters.
func (g GameConfig) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("config: "+format, args...))
		}
	}

	check(g.Playfield.Width > 0, "playfield.width must be positive, got %d", g.Playfield.Width)
	check(g.Playfield.Height > 0, "playfield.height must be positive, got %d", g.Playfield.Height)
	check(g.Playfield.FloorY > 0 && g.Playfield.FloorY <= float64(g.Playfield.Height),
		"playfield.floor_y must be within (0, height], got %v", g.Playfield.FloorY)
	check(g.Playfield.CeilingY <= 0, "playfield.ceiling_y must not be below the top edge, got %v", g.Playfield.CeilingY)

	check(g.Bird.Width > 0 && g.Bird.Height > 0, "bird size must be positive, got %dx%d", g.Bird.Width, g.Bird.Height)
	check(g.Bird.StartY >= 0 && g.Bird.StartY < g.Playfield.FloorY,
		"bird.start_y must be above the floor, got %v", g.Bird.StartY)

	check(g.Physics.Gravity > 0, "physics.gravity must be positive, got %v", g.Physics.Gravity)
	check(g.Physics.JumpImpulse < 0, "physics.jump_impulse must be negative (upward), got %v", g.Physics.JumpImpulse)
	check(g.Physics.TerminalVelocity > 0, "physics.terminal_velocity must be positive, got %v", g.Physics.TerminalVelocity)
	check(g.Physics.AscentBias >= 0, "physics.ascent_bias must not be negative, got %v", g.Physics.AscentBias)

	check(g.Pipes.Gap > 0, "pipes.gap must be positive, got %d", g.Pipes.Gap)
	check(g.Pipes.Velocity > 0, "pipes.velocity must be positive, got %v", g.Pipes.Velocity)
	check(g.Pipes.Width > 0 && g.Pipes.Height > 0, "pipe size must be positive, got %dx%d", g.Pipes.Width, g.Pipes.Height)
	check(g.Pipes.GapCenterMin < g.Pipes.GapCenterMax,
		"pipes.gap_center_min (%d) must be below gap_center_max (%d)", g.Pipes.GapCenterMin, g.Pipes.GapCenterMax)
	check(g.Pipes.LipHeight >= 0 && g.Pipes.LipHeight <= g.Pipes.Height,
		"pipes.lip_height must be within [0, height], got %d", g.Pipes.LipHeight)
	check(g.Pipes.LipInset >= 0 && 2*g.Pipes.LipInset < g.Pipes.Width,
		"pipes.lip_inset must leave a shaft, got %d", g.Pipes.LipInset)

	check(g.Terrain.TileWidth > 0, "terrain.tile_width must be positive, got %d", g.Terrain.TileWidth)
	check(g.Terrain.Velocity >= 0, "terrain.velocity must not be negative, got %v", g.Terrain.Velocity)

	check(g.Rules.StopScore >= 0, "rules.stop_score must not be negative, got %d", g.Rules.StopScore)

	return errors.Join(errs...)
}

// Validate checks the training parameters.
func (t TrainConfig) Validate() error {
	var errs []error
	if t.Population < 1 {
		errs = append(errs, fmt.Errorf("config: train.population must be at least 1, got %d", t.Population))
	}
	if t.Generations < 1 {
		errs = append(errs, fmt.Errorf("config: train.generations must be at least 1, got %d", t.Generations))
	}
	if t.InitialConnectionProb < 0 || t.InitialConnectionProb > 1 {
		errs = append(errs, fmt.Errorf("config: train.initial_connection_prob must be within [0, 1], got %v", t.InitialConnectionProb))
	}
	if t.MaxTicks < 0 {
		errs = append(errs, fmt.Errorf("config: train.max_ticks must not be negative, got %d", t.MaxTicks))
	}
	if t.NEAT.CompatThreshold <= 0 {
		errs = append(errs, fmt.Errorf("config: train.neat.compat_threshold must be positive, got %v", t.NEAT.CompatThreshold))
	}
	if t.NEAT.SurvivalThresh <= 0 || t.NEAT.SurvivalThresh > 1 {
		errs = append(errs, fmt.Errorf("config: train.neat.survival_thresh must be within (0, 1], got %v", t.NEAT.SurvivalThresh))
	}
	if t.NEAT.Elitism < 0 || t.NEAT.Elitism > t.Population {
		errs = append(errs, fmt.Errorf("config: train.neat.elitism must be within [0, population], got %d", t.NEAT.Elitism))
	}
	return errors.Join(errs...)
}
