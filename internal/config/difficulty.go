package config

import (
	"errors"
	"fmt"
)

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
)

// ErrUnknownPreset is returned for a preset name that is not recognised.
var ErrUnknownPreset = errors.New("unknown difficulty preset")

// Presets lists the presets in increasing difficulty.
func Presets() []DifficultyPreset {
	return []DifficultyPreset{DifficultyEasy, DifficultyNormal, DifficultyHard}
}

// ParsePreset converts a flag value into a preset. The empty string means normal.
func ParsePreset(s string) (DifficultyPreset, error) {
	switch DifficultyPreset(s) {
	case "", DifficultyNormal:
		return DifficultyNormal, nil
	case DifficultyEasy:
		return DifficultyEasy, nil
	case DifficultyHard:
		return DifficultyHard, nil
	default:
		return "", fmt.Errorf("config: %w: %q", ErrUnknownPreset, s)
	}
}

// ApplyPreset modifies the game config based on a difficulty preset.
// Normal leaves the loaded values untouched.
func ApplyPreset(cfg *GameConfig, preset DifficultyPreset) {
	switch preset {
	case DifficultyEasy:
		cfg.Pipes.Gap = 200
		cfg.Pipes.Velocity = 4
		cfg.Terrain.Velocity = 4
	case DifficultyHard:
		cfg.Pipes.Gap = 130
		cfg.Pipes.Velocity = 6
		cfg.Terrain.Velocity = 6
	}
}
