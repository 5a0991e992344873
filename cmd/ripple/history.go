package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ripple/internal/config"
	"ripple/internal/store"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past analyses",
	Args:  cobra.NoArgs,
	Run:   runHistory,
}

var showCmd = &cobra.Command{
	Use:   "show <analysis-id>",
	Short: "Show a stored analysis report",
	Args:  cobra.ExactArgs(1),
	Run:   runShow,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of analyses to list (0 for all)")
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(showCmd)
}

func openHistory() *store.DB {
	cfg, err := config.LoadConfig(rootFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	db, err := store.Open(rootFlag, newLogger(cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening analysis store: %v\n", err)
		os.Exit(1)
	}
	return db
}

func runHistory(cmd *cobra.Command, args []string) {
	db := openHistory()
	defer db.Close()

	summaries, err := db.ListReports(historyLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing analyses: %v\n", err)
		os.Exit(1)
	}

	if formatFlag == "human" {
		for _, s := range summaries {
			fmt.Printf("%s  %-25s %-12s %2d repos  %-8s %s\n",
				s.AnalysisID, s.SourceRepo, s.SourceCommit, s.RepoCount,
				s.MaxRisk, s.CreatedAt.Format("2006-01-02 15:04"))
		}
		return
	}
	printJSON(summaries)
}

func runShow(cmd *cobra.Command, args []string) {
	db := openHistory()
	defer db.Close()

	r, err := db.GetReport(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading analysis: %v\n", err)
		os.Exit(1)
	}

	if formatFlag == "human" {
		printReportHuman(r)
		return
	}
	printJSON(r)
}
