// dqbench - benchmarking harness for data-quality-aware stream processing.
// Injects controlled quality defects into sensor datasets and verifies the
// DSMS's windowed quality metrics against an offline reference computation.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dqbench/dqbench/pkg/telemetry"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

// Global flags
var (
	verbose      bool
	otlpEndpoint string
)

var telemetryShutdown func(context.Context) error

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dqbench",
	Short: "dqbench - data quality benchmarking for stream processing engines",
	Long: `dqbench prepares sensor datasets with controlled data-quality defects
(outliers, missing values, delayed readings), recomputes the DSMS's windowed
accuracy/completeness/timeliness metrics offline, and verifies the DSMS's
streaming output against that reference.`,
	Version:       fmt.Sprintf("%s (%s)", version, commit),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		shutdown, err := telemetry.Init(cmd.Context(), otlpEndpoint, version)
		if err != nil {
			return err
		}
		telemetryShutdown = shutdown
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if telemetryShutdown != nil {
			return telemetryShutdown(context.Background())
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&otlpEndpoint, "otlp-endpoint", "", "OTLP/gRPC endpoint for trace export (disabled if empty)")

	rootCmd.AddCommand(preprocessCmd)
	rootCmd.AddCommand(dataQualityCmd)
	rootCmd.AddCommand(benchmarkCmd)
	rootCmd.AddCommand(statsCmd)
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupted, cleaning up...")
		cancel()
	}()

	return ctx, cancel
}

// requireFile errors when path does not exist.
func requireFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("input file does not exist: %s", path)
	}
	return nil
}
