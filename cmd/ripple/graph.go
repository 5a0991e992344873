package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"ripple/internal/depgraph"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Show the weighted dependency graph",
	Long: `Print every dependency edge with its combined weight and the evidence
signals behind it. Edges run in impact-flow direction: an edge from A
to B means B depends on A, so a change in A affects B.

Examples:
  ripple graph
  ripple graph --format=human`,
	Args: cobra.NoArgs,
	Run:  runGraph,
}

func init() {
	rootCmd.AddCommand(graphCmd)
}

// graphEdgeCLI is one dependency edge for CLI output
type graphEdgeCLI struct {
	Source   string             `json:"source"`
	Target   string             `json:"target"`
	Weight   float64            `json:"weight"`
	Evidence map[string]float64 `json:"evidence"`
}

func runGraph(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	eng, _, _ := mustEngine(ctx)
	snap := eng.DependencySnapshot()

	var edges []graphEdgeCLI
	for _, name := range snap.Repositories() {
		for _, e := range snap.OutEdges(name) {
			evidence := make(map[string]float64, len(e.Evidence))
			for sig, score := range e.Evidence {
				evidence[string(sig)] = score
			}
			edges = append(edges, graphEdgeCLI{
				Source:   e.Source,
				Target:   e.Target,
				Weight:   e.Weight,
				Evidence: evidence,
			})
		}
	}

	if formatFlag == "human" {
		for _, e := range edges {
			fmt.Printf("%-25s -> %-25s %.2f", e.Source, e.Target, e.Weight)
			for _, sig := range []depgraph.Signal{depgraph.SignalDeclared, depgraph.SignalImport, depgraph.SignalLayer} {
				if score, ok := e.Evidence[string(sig)]; ok {
					fmt.Printf("  %s=%.2f", sig, score)
				}
			}
			fmt.Println()
		}
		return
	}
	printJSON(struct {
		Repositories []string       `json:"repositories"`
		Edges        []graphEdgeCLI `json:"edges"`
	}{snap.Repositories(), edges})
}
