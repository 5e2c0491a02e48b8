package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"rota-engine/internal/models"
	"rota-engine/internal/schedule"
)

// Config holds all rota generator configuration.
type Config struct {
	// Input documents
	RulesPath     string `yaml:"rules_path"`
	OverridesPath string `yaml:"overrides_path"`

	// Where published artifacts live; also the continuity source.
	OutputDir string `yaml:"output_dir"`

	// Solve budget as a duration string, e.g. "90s".
	SolveBudget string `yaml:"solve_budget"`

	// Objective weights
	Weights WeightsConfig `yaml:"weights"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// WeightsConfig tunes the soft-preference objective.
type WeightsConfig struct {
	Preference     int64 `yaml:"preference"`
	WeekendFull    int64 `yaml:"weekend_full"`
	WeekendPartial int64 `yaml:"weekend_partial"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	w := schedule.DefaultWeights()
	return &Config{
		RulesPath:     "rules.json",
		OverridesPath: "overrides.json",
		OutputDir:     "rotas",
		SolveBudget:   "2m",
		Weights: WeightsConfig{
			Preference:     w.Preference,
			WeekendFull:    w.WeekendFull,
			WeekendPartial: w.WeekendPartial,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, &models.ConfigurationError{Reason: "reading config file", Err: err}
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, &models.ConfigurationError{Reason: "malformed config file", Err: err}
	}
	return cfg, nil
}

// GetSolveBudget returns the solve budget as a duration.
func (c *Config) GetSolveBudget() time.Duration {
	d, err := time.ParseDuration(c.SolveBudget)
	if err != nil || d <= 0 {
		return schedule.DefaultBudget
	}
	return d
}

// GetWeights converts the configured weights, filling zeroes with the
// defaults so partial configs stay sane.
func (c *Config) GetWeights() schedule.Weights {
	w := schedule.DefaultWeights()
	if c.Weights.Preference > 0 {
		w.Preference = c.Weights.Preference
	}
	if c.Weights.WeekendFull > 0 {
		w.WeekendFull = c.Weights.WeekendFull
	}
	if c.Weights.WeekendPartial > 0 {
		w.WeekendPartial = c.Weights.WeekendPartial
	}
	return w
}
