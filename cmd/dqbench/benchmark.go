package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dqbench/dqbench/pkg/bench"
	"github.com/dqbench/dqbench/pkg/tui"
)

var benchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Analyze DSMS result files for latency and throughput",
}

var (
	compareCSVPath  string
	compareXLSXPath string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <result.csv>",
	Short: "Compute latency and throughput for one benchmark run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]
		if err := requireFile(input); err != nil {
			return err
		}

		stats, err := bench.Analyze(input)
		if err != nil {
			return err
		}

		tui.PrintLatencyStats(input, stats)
		return nil
	},
}

var compareCmd = &cobra.Command{
	Use:   "compare <result.csv>...",
	Short: "Compare latency and throughput across benchmark runs",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, path := range args {
			if err := requireFile(path); err != nil {
				return err
			}
		}

		runs, err := bench.CompareRuns(args)
		if err != nil {
			return err
		}

		for _, run := range runs {
			tui.PrintLatencyStats(run.Name, run.Stats)
			fmt.Println()
		}

		if compareCSVPath != "" {
			if err := bench.WriteComparisonCSV(compareCSVPath, runs); err != nil {
				return err
			}
			fmt.Printf("Appended %d run(s) to %s\n", len(runs), compareCSVPath)
		}
		if compareXLSXPath != "" {
			if err := bench.WriteComparisonXLSX(compareXLSXPath, runs); err != nil {
				return err
			}
			fmt.Printf("Wrote workbook %s\n", compareXLSXPath)
		}
		return nil
	},
}

func init() {
	compareCmd.Flags().StringVar(&compareCSVPath, "csv", "comparison.csv", "Append run summaries to this CSV file (empty to skip)")
	compareCmd.Flags().StringVar(&compareXLSXPath, "xlsx", "", "Write an Excel workbook with summary and latency sheets")

	benchmarkCmd.AddCommand(analyzeCmd)
	benchmarkCmd.AddCommand(compareCmd)
}
