package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dqbench/dqbench/pkg/stats"
)

var statsCmd = &cobra.Command{
	Use:   "show-stats <dataset.csv>",
	Short: "Show per-column statistics for a dataset",
	Long: `Profiles a sensor dataset before a benchmark run: row counts, null
rates, distinct counts, entropy and value ranges per column.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]
		if err := requireFile(input); err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()

		analyzer, err := stats.NewAnalyzer()
		if err != nil {
			return err
		}
		defer analyzer.Close()

		fs, err := analyzer.AnalyzeCSV(ctx, input)
		if err != nil {
			return err
		}

		fmt.Printf("File: %s\n", fs.Path)
		fmt.Printf("Rows: %d, Columns: %d (computed in %s)\n\n", fs.RowCount, fs.ColumnCount, fs.ComputeTime)
		fmt.Printf("%-16s %-10s %10s %8s %10s %8s  %-14s %-14s\n",
			"COLUMN", "TYPE", "NULLS", "NULL%", "DISTINCT", "ENTROPY", "MIN", "MAX")
		for _, col := range fs.Columns {
			fmt.Printf("%-16s %-10s %10d %7.2f%% %10d %8.3f  %-14s %-14s\n",
				col.Name, col.Type, col.NullCount, col.NullPct,
				col.DistinctCount, col.Entropy, truncate(col.MinValue, 14), truncate(col.MaxValue, 14))
		}
		return nil
	},
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
