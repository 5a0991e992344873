package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"ripple/internal/config"
	"ripple/internal/engine"
	"ripple/internal/logging"
	"ripple/internal/manifest"
	"ripple/internal/version"
)

var (
	// rootFlag is the ecosystem root directory (config, manifest, history)
	rootFlag string
	// manifestFlag overrides the manifest path
	manifestFlag string
	// formatFlag selects json or human output
	formatFlag string
	// verboseFlag enables debug logging
	verboseFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "ripple",
	Short: "Ripple - multi-repository change impact analysis",
	Long: `Ripple analyzes how a code change in one repository propagates through
a multi-repository ecosystem. It scans working copies into function
registries and call graphs, maintains a weighted dependency graph from
declared, scanned, and inferred evidence, and scores the impact of a
commit on every reachable repository.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("ripple version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", ".",
		"Ecosystem root directory (holds ripple.toml and .ripple/)")
	rootCmd.PersistentFlags().StringVar(&manifestFlag, "manifest", "",
		"Manifest path (default: <root>/ripple.toml)")
	rootCmd.PersistentFlags().StringVar(&formatFlag, "format", "json",
		"Output format (json, human)")
	rootCmd.PersistentFlags().BoolVar(&verboseFlag, "verbose", false,
		"Enable debug logging")
}

func newLogger(cfg *config.Config) *logging.Logger {
	level := logging.LogLevel(cfg.Logging.Level)
	if verboseFlag {
		level = logging.DebugLevel
	}
	return logging.NewLogger(logging.Config{
		Format: logging.Format(cfg.Logging.Format),
		Level:  level,
	})
}

func manifestPath() string {
	if manifestFlag != "" {
		return manifestFlag
	}
	return filepath.Join(rootFlag, "ripple.toml")
}

// mustEngine loads configuration and manifest, builds the engine, and
// scans every working copy. Any failure is fatal for a CLI run.
func mustEngine(ctx context.Context) (*engine.Engine, *config.Config, *logging.Logger) {
	cfg, err := config.LoadConfig(rootFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)

	man, err := manifest.Load(manifestPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading manifest: %v\n", err)
		os.Exit(1)
	}

	eng := engine.New(cfg, logger, man)
	if err := eng.ScanAll(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error scanning repositories: %v\n", err)
		os.Exit(1)
	}
	return eng, cfg, logger
}

func printJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}
