package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the complete ripple configuration
type Config struct {
	Version  int    `json:"version" mapstructure:"version"`
	RepoRoot string `json:"repoRoot" mapstructure:"repoRoot"`

	Propagation PropagationConfig `json:"propagation" mapstructure:"propagation"`
	Evidence    EvidenceConfig    `json:"evidence" mapstructure:"evidence"`
	Effort      EffortConfig      `json:"effort" mapstructure:"effort"`
	Scan        ScanConfig        `json:"scan" mapstructure:"scan"`
	Logging     LoggingConfig     `json:"logging" mapstructure:"logging"`
}

// PropagationConfig contains traversal tuning constants.
// These are empirical defaults, not correctness constraints; risk thresholds
// and the helper bump are fixed and deliberately not configurable.
type PropagationConfig struct {
	// MaxDepth bounds both call-graph and dependency-graph traversal
	MaxDepth int `json:"maxDepth" mapstructure:"maxDepth"`
	// Decay is the per-hop attenuation applied to call-graph contributions
	Decay float64 `json:"decay" mapstructure:"decay"`
}

// EvidenceConfig contains dependency-evidence tuning constants
type EvidenceConfig struct {
	// ImportNormalization divides the scanned import count before clamping
	// to 1.0
	ImportNormalization float64 `json:"importNormalization" mapstructure:"importNormalization"`
	// LayerScore is the fixed evidence for an adjacent-layer pair
	LayerScore float64 `json:"layerScore" mapstructure:"layerScore"`
}

// EffortConfig contains effort estimation constants
type EffortConfig struct {
	BaseHoursPerRepo float64 `json:"baseHoursPerRepo" mapstructure:"baseHoursPerRepo"`
}

// ScanConfig contains source scanning configuration
type ScanConfig struct {
	// IgnoreDirs are directory names skipped during repository walks
	IgnoreDirs []string `json:"ignoreDirs" mapstructure:"ignoreDirs"`
	// MaxFileSizeBytes caps the size of files handed to scanners
	MaxFileSizeBytes int `json:"maxFileSizeBytes" mapstructure:"maxFileSizeBytes"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:  1,
		RepoRoot: ".",
		Propagation: PropagationConfig{
			MaxDepth: 3,
			Decay:    0.7,
		},
		Evidence: EvidenceConfig{
			ImportNormalization: 10,
			LayerScore:          0.6,
		},
		Effort: EffortConfig{
			BaseHoursPerRepo: 4.0,
		},
		Scan: ScanConfig{
			IgnoreDirs: []string{
				".git", "node_modules", "__pycache__", ".venv", "venv",
				"dist", "build", "vendor", ".eggs",
			},
			MaxFileSizeBytes: 1000000,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from .ripple/config.json under root.
// A missing config file is not an error; defaults are returned.
func LoadConfig(root string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(root, ".ripple"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to .ripple/config.json under root
func (c *Config) Save(root string) error {
	dir := filepath.Join(root, ".ripple")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks if the configuration is usable
func (c *Config) Validate() error {
	if c.Propagation.MaxDepth <= 0 {
		return &ConfigError{Field: "propagation.maxDepth", Message: "must be positive"}
	}
	if c.Propagation.Decay <= 0 || c.Propagation.Decay >= 1 {
		return &ConfigError{Field: "propagation.decay", Message: "must be in (0,1)"}
	}
	if c.Evidence.ImportNormalization <= 0 {
		return &ConfigError{Field: "evidence.importNormalization", Message: "must be positive"}
	}
	if c.Effort.BaseHoursPerRepo < 0 {
		return &ConfigError{Field: "effort.baseHoursPerRepo", Message: "must be non-negative"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
