package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"ripple/internal/engine"
	"ripple/internal/report"
	"ripple/internal/store"
)

var (
	analyzeCommit    string
	analyzeFiles     []string
	analyzeFunctions []string
	analyzeSave      bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <repository>",
	Short: "Analyze the impact of a change in one repository",
	Long: `Propagate a change through the call graph and the dependency graph and
score every affected repository.

The changed set is the functions defined in the given files plus any
explicitly named functions.

Examples:
  ripple analyze billing-core --file src/charges.py
  ripple analyze billing-core --function Invoice.total --function _round_cents
  ripple analyze billing-core --commit 4f2a91c --save`,
	Args: cobra.ExactArgs(1),
	Run:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeCommit, "commit", "", "Commit id being analyzed")
	analyzeCmd.Flags().StringSliceVar(&analyzeFiles, "file", nil, "Changed file (repeatable, repo-relative)")
	analyzeCmd.Flags().StringSliceVar(&analyzeFunctions, "function", nil, "Changed function, optionally qualified (repeatable)")
	analyzeCmd.Flags().BoolVar(&analyzeSave, "save", false, "Persist the report to the analysis history")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	eng, _, logger := mustEngine(ctx)

	if analyzeSave {
		db, err := store.Open(rootFlag, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening analysis store: %v\n", err)
			os.Exit(1)
		}
		defer db.Close()
		eng.UseStore(db)
	}

	result, err := eng.Analyze(ctx, engine.AnalysisRequest{
		Repository: args[0],
		Commit:     analyzeCommit,
		Files:      analyzeFiles,
		Functions:  analyzeFunctions,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error analyzing change: %v\n", err)
		os.Exit(1)
	}

	if formatFlag == "human" {
		printReportHuman(result)
		return
	}
	printJSON(result)
}

func printReportHuman(r *report.ImpactReport) {
	fmt.Printf("Analysis %s\n", r.AnalysisID)
	fmt.Printf("Source: %s", r.SourceRepository)
	if r.SourceCommit != "" {
		fmt.Printf(" @ %s", r.SourceCommit)
	}
	fmt.Println()
	fmt.Printf("Changed: %d files, %d functions\n\n", len(r.ChangedFiles), len(r.ChangedFunctions))

	names := make([]string, 0, len(r.Scores))
	for name := range r.Scores {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if r.Scores[names[i]].Score != r.Scores[names[j]].Score {
			return r.Scores[names[i]].Score > r.Scores[names[j]].Score
		}
		return names[i] < names[j]
	})

	fmt.Println("Impact:")
	for _, name := range names {
		s := r.Scores[name]
		helper := ""
		if s.HelperMethodChanged {
			helper = " (helper)"
		}
		fmt.Printf("  %-30s %.2f %-8s %d functions, ~%.1fh%s\n",
			name, s.Score, s.Risk, len(s.ImpactedFunctions), s.EstimatedHours, helper)
	}

	if len(r.DeploymentOrder) > 0 {
		fmt.Println("\nDeployment order:")
		for i, name := range r.DeploymentOrder {
			fmt.Printf("  %d. %s\n", i+1, name)
		}
	}

	if len(r.Recommendations) > 0 {
		fmt.Println("\nTest recommendations:")
		for _, rec := range r.Recommendations {
			fmt.Printf("  [%s] %s (%s)\n", rec.Priority, rec.Function, rec.Reason)
		}
	}

	if len(r.DanglingCalls) > 0 {
		fmt.Printf("\nUnresolved calls: %d\n", len(r.DanglingCalls))
	}
	if len(r.Diagnostics) > 0 {
		fmt.Printf("Diagnostics: %d\n", len(r.Diagnostics))
	}
	fmt.Printf("\nTotal estimated effort: %.1fh\n", r.TotalEstimatedHours)
}
