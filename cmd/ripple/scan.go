package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan every working copy and report what was indexed",
	Long: `Walk the working copy of every repository in the manifest, index its
functions, and resolve its call graph. Useful as a health check before
running analyses.

Examples:
  ripple scan
  ripple scan --format=human --verbose`,
	Args: cobra.NoArgs,
	Run:  runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

// scanSummary is the per-repository scan result for CLI output
type scanSummary struct {
	Repository string `json:"repository"`
	Functions  int    `json:"functions"`
	CallEdges  int    `json:"callEdges"`
	Dangling   int    `json:"dangling"`
}

func runScan(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	eng, _, _ := mustEngine(ctx)

	snap := eng.DependencySnapshot()
	var out []scanSummary
	for _, name := range snap.Repositories() {
		reg, ok := eng.Registry(name)
		if !ok {
			continue
		}
		s := scanSummary{Repository: name, Functions: reg.Len()}
		if g, ok := eng.Forest().Graph(name); ok {
			s.CallEdges = g.NumEdges()
			s.Dangling = len(g.Dangling())
		}
		out = append(out, s)
	}

	if formatFlag == "human" {
		for _, s := range out {
			fmt.Printf("%-30s %5d functions %5d edges %4d unresolved\n",
				s.Repository, s.Functions, s.CallEdges, s.Dangling)
		}
		if diags := eng.Diagnostics(); len(diags) > 0 {
			fmt.Printf("\n%d diagnostics:\n", len(diags))
			for _, d := range diags {
				fmt.Printf("  [%s] %s: %s\n", d.Code, d.File, d.Message)
			}
		}
		return
	}
	printJSON(struct {
		Repositories []scanSummary `json:"repositories"`
		Diagnostics  interface{}   `json:"diagnostics,omitempty"`
	}{out, eng.Diagnostics()})
}
