package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ripple/internal/config"
	"ripple/internal/manifest"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config and manifest skeleton",
	Args:  cobra.NoArgs,
	Run:   runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) {
	cfg := config.DefaultConfig()
	if err := cfg.Save(rootFlag); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing config: %v\n", err)
		os.Exit(1)
	}

	path := manifestPath()
	if _, err := os.Stat(path); err == nil {
		fmt.Printf("Manifest already exists at %s, leaving it untouched\n", path)
		return
	}

	skeleton := &manifest.Manifest{
		Name: "my-ecosystem",
		Repos: []manifest.RepoEntry{
			{Name: "example-core", Language: "python", Layer: "core", Path: "../example-core"},
			{Name: "example-api", Language: "python", Layer: "api", DependsOn: []string{"example-core"}, Path: "../example-api"},
		},
	}
	if err := skeleton.Save(path); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing manifest: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Initialized ripple config under %s and manifest at %s\n", rootFlag, path)
}
