package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Messages are the player-facing texts of a level.
type Messages struct {
	Welcome   string `json:"welcome" yaml:"welcome"`
	Moved     string `json:"moved,omitempty" yaml:"moved,omitempty"`
	Blocked   string `json:"blocked,omitempty" yaml:"blocked,omitempty"`
	Collected string `json:"collected,omitempty" yaml:"collected,omitempty"`
	Won       string `json:"won" yaml:"won"`
	Lost      string `json:"lost" yaml:"lost"`
	GameOver  string `json:"game_over,omitempty" yaml:"game_over,omitempty"`
}

// LevelConfig is a level document as authored in the levels directory.
type LevelConfig struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Layout      [][]int  `json:"layout" yaml:"layout"`
	Rules       Rules    `json:"rules" yaml:"rules"`
	Messages    Messages `json:"messages" yaml:"messages"`
}

var defaultMessages = Messages{
	Welcome:   "Find your way to the burrow!",
	Moved:     "Hop.",
	Blocked:   "Something is in the way.",
	Collected: "Crunch! Carrots eaten: %d",
	Won:       "You reached the burrow!",
	Lost:      "Ouch! The spikes got you.",
	GameOver:  "The game is over, reset to play again.",
}

// WithDefaults returns a copy of m with empty texts filled in.
func (m Messages) WithDefaults() Messages {
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&m.Welcome, defaultMessages.Welcome)
	fill(&m.Moved, defaultMessages.Moved)
	fill(&m.Blocked, defaultMessages.Blocked)
	fill(&m.Collected, defaultMessages.Collected)
	fill(&m.Won, defaultMessages.Won)
	fill(&m.Lost, defaultMessages.Lost)
	fill(&m.GameOver, defaultMessages.GameOver)
	return m
}

// ValidateLevelConfig validates a level for correctness. Building the grid
// is part of validation, so malformed layouts surface as ErrMalformedLevel.
func ValidateLevelConfig(config *LevelConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: level is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	height := len(config.Layout)
	if height < MinGridSize || height > MaxGridSize {
		return fmt.Errorf("config validation: %w: layout must have between %d and %d rows, got %d",
			ErrMalformedLevel, MinGridSize, MaxGridSize, height)
	}
	if width := len(config.Layout[0]); width < MinGridSize || width > MaxGridSize {
		return fmt.Errorf("config validation: %w: layout must have between %d and %d columns, got %d",
			ErrMalformedLevel, MinGridSize, MaxGridSize, width)
	}

	if _, err := NewGrid(config.Layout); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	if config.Messages.Collected != "" && !strings.Contains(config.Messages.Collected, "%d") {
		return fmt.Errorf("config validation: messages.collected must contain %%d for the carrot count")
	}

	return nil
}

// ParseLevelConfig decodes a level document. format is "json" or "yaml".
func ParseLevelConfig(data []byte, format string) (*LevelConfig, error) {
	var config LevelConfig

	switch strings.ToLower(format) {
	case "json":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse level: %w", err)
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse level: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported level format %q", format)
	}

	if err := ValidateLevelConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// FormatFromPath returns the level format implied by a file extension.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

// LoadLevelConfig loads and validates a level from a JSON or YAML file.
func LoadLevelConfig(filename string) (*LevelConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return ParseLevelConfig(data, FormatFromPath(filename))
}

// DefaultLevelConfig returns the built-in first level.
func DefaultLevelConfig() *LevelConfig {
	return &LevelConfig{
		Name:        "First Steps",
		Description: "Eat the carrots, ride the belts and mind the spikes on the way to the burrow.",
		Layout: [][]int{
			{3, 3, 3, 3, 3, 3, 3, 3, 3},
			{3, 14, 1, 1, 4, 1, 16, 1, 3},
			{3, 2, 2, 1, 2, 2, 2, 1, 3},
			{3, 16, 9, 9, 1, 11, 1, 1, 3},
			{3, 1, 2, 2, 7, 2, 2, 4, 3},
			{3, 1, 1, 16, 8, 8, 1, 15, 3},
			{3, 3, 3, 3, 3, 3, 3, 3, 3},
		},
		Messages: defaultMessages,
	}
}
