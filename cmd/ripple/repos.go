package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"ripple/internal/manifest"
)

var reposCmd = &cobra.Command{
	Use:   "repos",
	Short: "List the repositories in the manifest",
	Args:  cobra.NoArgs,
	Run:   runRepos,
}

func init() {
	rootCmd.AddCommand(reposCmd)
}

func runRepos(cmd *cobra.Command, args []string) {
	man, err := manifest.Load(manifestPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading manifest: %v\n", err)
		os.Exit(1)
	}

	if formatFlag == "human" {
		for _, r := range man.Repos {
			fmt.Printf("%-25s %-10s %-8s", r.Name, r.Language, r.Layer)
			if len(r.DependsOn) > 0 {
				fmt.Printf(" depends on %s", strings.Join(r.DependsOn, ", "))
			}
			if len(r.Components) > 0 {
				fmt.Printf(" [%s]", strings.Join(r.Components, ", "))
			}
			fmt.Println()
		}
		return
	}
	printJSON(man)
}
