package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/dqbench/dqbench/internal/model"
	"github.com/dqbench/dqbench/pkg/config"
	"github.com/dqbench/dqbench/pkg/dataset"
	"github.com/dqbench/dqbench/pkg/export"
	"github.com/dqbench/dqbench/pkg/metric"
	"github.com/dqbench/dqbench/pkg/storage/s3"
	"github.com/dqbench/dqbench/pkg/telemetry"
	"github.com/dqbench/dqbench/pkg/tui"
	"github.com/dqbench/dqbench/pkg/verify"
	"github.com/dqbench/dqbench/pkg/watch"
)

var dataQualityCmd = &cobra.Command{
	Use:   "data-quality",
	Short: "Compute and verify windowed data-quality metrics",
}

var (
	qualityWindowSize int
	qualityVolatility int64
	qualityChunkSize  int

	showOutputCSV     string
	showOutputParquet string

	verifyTolerance  float64
	verifyOrdinal    bool
	verifyWait       bool
	verifyRemoteURL  string
	verifyS3Region   string
	verifyS3Endpoint string
)

var showCmd = &cobra.Command{
	Use:   "show <dataset.csv>",
	Short: "Compute window metrics over a dataset and print them",
	Long: `Replays the windowed quality pipeline offline over a (degraded) dataset:
per tumbling window of window_size rows it computes accuracy via median/MAD
outlier thresholding, completeness via null counting, and timeliness via
bounded currency decay against the volatility horizon.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]
		if err := requireFile(input); err != nil {
			return err
		}
		if err := validateQualityFlags(); err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()

		result, skipped, err := measure(ctx, input, true)
		if err != nil {
			return err
		}

		tui.PrintMeasureSummary(result.Rows, len(result.Windows), result.Dropped, skipped)

		if showOutputCSV != "" {
			if err := metric.WriteCSV(showOutputCSV, result.Windows); err != nil {
				return err
			}
			fmt.Printf("Wrote %d windows to %s\n", len(result.Windows), showOutputCSV)
		}
		if showOutputParquet != "" {
			if err := export.WriteParquet(showOutputParquet, result.Windows); err != nil {
				return err
			}
			fmt.Printf("Wrote %d windows to %s\n", len(result.Windows), showOutputParquet)
		}
		return nil
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify <dataset.csv> <result.csv>",
	Short: "Verify the DSMS's metric output against an offline recomputation",
	Long: `Recomputes the window metrics over the degraded dataset, reads the
DSMS's result file, and compares them window by window within tolerance.
Exits non-zero when any window mismatches or is missing.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, resultPath := args[0], args[1]
		if err := requireFile(input); err != nil {
			return err
		}
		if err := validateQualityFlags(); err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()

		ctx, span := telemetry.StartSpan(ctx, "data-quality.verify",
			attribute.String("input", input),
			attribute.String("result", resultPath),
		)
		defer span.End()

		if verifyRemoteURL != "" {
			if err := downloadResult(ctx, resultPath); err != nil {
				return err
			}
		}
		if verifyWait {
			fmt.Printf("Waiting for %s...\n", resultPath)
			if err := watch.WaitForFile(ctx, resultPath); err != nil {
				return err
			}
		}
		if err := requireFile(resultPath); err != nil {
			return err
		}

		local, skipped, err := measure(ctx, input, verbose)
		if err != nil {
			return err
		}
		if skipped > 0 && verbose {
			fmt.Fprintf(os.Stderr, "skipped %d malformed rows\n", skipped)
		}

		dsms, err := verify.ReadResultCSV(resultPath, verify.DSMSColumns)
		if err != nil {
			return err
		}

		report := verify.Compare(local.Windows, dsms, verify.Options{
			Tolerance:  verifyTolerance,
			MatchByKey: !verifyOrdinal,
		})

		tui.PrintVerifyReport(report)
		if !report.OK() {
			return fmt.Errorf("verification failed: %d mismatches, %d missing windows",
				len(report.Mismatches), len(report.Missing))
		}
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{showCmd, verifyCmd} {
		cmd.Flags().IntVarP(&qualityWindowSize, "window_size", "w", 10000, "Rows per tumbling window")
		cmd.Flags().Int64VarP(&qualityVolatility, "volatility", "v", 2000, "Timeliness horizon in milliseconds")
		cmd.Flags().IntVar(&qualityChunkSize, "chunk-size", 30000, "Rows per processing chunk")
	}

	showCmd.Flags().StringVar(&showOutputCSV, "output", "", "Write window metrics to a CSV file")
	showCmd.Flags().StringVar(&showOutputParquet, "parquet", "", "Write window metrics to a Parquet file")

	verifyCmd.Flags().Float64Var(&verifyTolerance, "tolerance", verify.DefaultTolerance, "Maximum per-metric deviation")
	verifyCmd.Flags().BoolVar(&verifyOrdinal, "ordinal", false, "Match windows by position instead of value_id boundaries")
	verifyCmd.Flags().BoolVar(&verifyWait, "wait", false, "Wait for the result file to appear and settle")
	verifyCmd.Flags().StringVar(&verifyRemoteURL, "remote", "", "Download the result file from s3://bucket/key first")
	verifyCmd.Flags().StringVar(&verifyS3Region, "s3-region", "us-east-1", "S3 region for downloads")
	verifyCmd.Flags().StringVar(&verifyS3Endpoint, "s3-endpoint", "", "Custom S3 endpoint (e.g. MinIO)")

	dataQualityCmd.AddCommand(showCmd)
	dataQualityCmd.AddCommand(verifyCmd)
}

// validateQualityFlags rejects non-positive sizing flags before any file is
// opened, the same way config.Validate gates the prepare pipeline.
func validateQualityFlags() error {
	if qualityWindowSize <= 0 {
		return &config.RangeError{Field: "WINDOW_SIZE", Value: float64(qualityWindowSize), Bounds: "> 0"}
	}
	if qualityVolatility <= 0 {
		return &config.RangeError{Field: "VOLATILITY", Value: float64(qualityVolatility), Bounds: "> 0"}
	}
	if qualityChunkSize <= 0 {
		return &config.RangeError{Field: "CHUNK_SIZE", Value: float64(qualityChunkSize), Bounds: "> 0"}
	}
	return nil
}

// measure runs the windowed pipeline over a dataset file. stream controls
// whether each window is printed as it completes.
func measure(ctx context.Context, input string, stream bool) (*metric.Result, int64, error) {
	reader, err := dataset.Open(input, qualityChunkSize)
	if err != nil {
		return nil, 0, err
	}
	defer reader.Close()

	calc := metric.NewCalculator(qualityWindowSize, qualityVolatility)
	if stream {
		calc.OnWindow = func(wm model.WindowMetrics) { tui.PrintWindow(wm) }
	}

	result, err := calc.Run(ctx, reader)
	if err != nil {
		return nil, 0, err
	}
	return result, reader.Skipped(), nil
}

func downloadResult(ctx context.Context, localPath string) error {
	bucket, key, err := s3.ParseURL(verifyRemoteURL)
	if err != nil {
		return err
	}

	s3cfg := s3.DefaultConfig(verifyS3Region)
	s3cfg.Endpoint = verifyS3Endpoint
	s3cfg.UsePathStyle = verifyS3Endpoint != ""

	client, err := s3.NewClient(ctx, s3cfg)
	if err != nil {
		return err
	}

	if err := client.Download(ctx, bucket, key, localPath); err != nil {
		return err
	}
	fmt.Printf("Downloaded %s to %s\n", verifyRemoteURL, localPath)
	return nil
}
