package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/dqbench/dqbench/internal/pipe"
	"github.com/dqbench/dqbench/pkg/checkpoint"
	"github.com/dqbench/dqbench/pkg/config"
	"github.com/dqbench/dqbench/pkg/preprocess"
	"github.com/dqbench/dqbench/pkg/storage/s3"
	"github.com/dqbench/dqbench/pkg/telemetry"
)

var preprocessCmd = &cobra.Command{
	Use:   "preprocess",
	Short: "Prepare raw sensor datasets for benchmarking",
}

var (
	splitOutputDir string

	extractDays      int
	extractOutputDir string

	prepareOutputDir  string
	prepareConfigPath string
	prepareRedisAddr  string
	prepareUploadURL  string
	prepareS3Region   string
	prepareS3Endpoint string
)

var splitCmd = &cobra.Command{
	Use:   "split <dataset.csv>",
	Short: "Split a combined dataset into one file per sensor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]
		if err := requireFile(input); err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()

		result, err := preprocess.SplitBySensor(ctx, input, splitOutputDir)
		if err != nil {
			return err
		}

		fmt.Printf("Split %d rows into %d sensor files under %s\n",
			result.Rows, len(result.Sensors), splitOutputDir)
		return nil
	},
}

var extractCmd = &cobra.Command{
	Use:   "extract <sensor.csv>",
	Short: "Extract the first N days of a sensor dataset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]
		if err := requireFile(input); err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()

		output := filepath.Join(extractOutputDir, derivedName(input, "_original"))
		rows, err := preprocess.ExtractDays(ctx, input, output, extractDays)
		if err != nil {
			return err
		}

		fmt.Printf("Extracted %d rows (%d days) to %s\n", rows, extractDays, output)
		return nil
	},
}

var prepareCmd = &cobra.Command{
	Use:   "prepare <sensor.csv>",
	Short: "Inject data-quality defects and write the degraded dataset",
	Long: `Reads a sensor dataset chunk by chunk, injects reproducible outliers,
missing values and delayed readings according to the configuration, and writes
the degraded dataset for DSMS ingestion. With all defect percentages at zero
the output is byte-identical to the input.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]
		if err := requireFile(input); err != nil {
			return err
		}

		cfg, err := loadQualityConfig(prepareConfigPath)
		if err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()

		ctx, span := telemetry.StartSpan(ctx, "preprocess.prepare",
			attribute.String("input", input),
			attribute.Int64("seed", cfg.Seed),
		)
		defer span.End()

		store, err := checkpointStore(ctx, prepareRedisAddr)
		if err != nil {
			return err
		}

		output := filepath.Join(prepareOutputDir, derivedName(input, "_processed"))

		bar := progressbar.NewOptions64(-1,
			progressbar.OptionSetDescription("Injecting defects"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSetWidth(30),
		)

		result, err := pipe.Prepare(ctx, cfg, input, output, store, func(rows int64) {
			bar.Add64(rows)
		})
		bar.Finish()
		if err != nil {
			return err
		}

		fmt.Printf("Prepared %s: %d rows in %d chunks (run %s)\n",
			output, result.RowsWritten, result.Chunks, result.RunID)
		if result.Skipped > 0 {
			fmt.Printf("Skipped %d malformed rows\n", result.Skipped)
		}

		if prepareUploadURL != "" {
			if err := uploadResult(cmd, output); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	splitCmd.Flags().StringVarP(&splitOutputDir, "output", "o", ".", "Output directory for per-sensor files")

	extractCmd.Flags().IntVarP(&extractDays, "days", "d", 7, "Number of days to extract")
	extractCmd.Flags().StringVarP(&extractOutputDir, "output", "o", ".", "Output directory")

	prepareCmd.Flags().StringVarP(&prepareOutputDir, "output", "o", ".", "Output directory")
	prepareCmd.Flags().StringVarP(&prepareConfigPath, "config", "c", "", "Quality configuration file (YAML)")
	prepareCmd.Flags().StringVar(&prepareRedisAddr, "redis", "", "Redis address for checkpoint storage (file-based if empty)")
	prepareCmd.Flags().StringVar(&prepareUploadURL, "upload", "", "Upload the degraded dataset to s3://bucket/key after writing")
	prepareCmd.Flags().StringVar(&prepareS3Region, "s3-region", "us-east-1", "S3 region for uploads")
	prepareCmd.Flags().StringVar(&prepareS3Endpoint, "s3-endpoint", "", "Custom S3 endpoint (e.g. MinIO)")

	preprocessCmd.AddCommand(splitCmd)
	preprocessCmd.AddCommand(extractCmd)
	preprocessCmd.AddCommand(prepareCmd)
}

// loadQualityConfig loads the quality config, falling back to defaults when no
// file is given.
func loadQualityConfig(path string) (config.Quality, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// checkpointStore selects the checkpoint backend from flags.
func checkpointStore(ctx context.Context, redisAddr string) (checkpoint.Store, error) {
	if redisAddr == "" {
		return checkpoint.NewFileStore(), nil
	}
	return checkpoint.NewRedisStore(ctx, checkpoint.DefaultRedisConfig(redisAddr))
}

// derivedName produces "<base><suffix>.csv" from an input path.
func derivedName(input, suffix string) string {
	base := filepath.Base(input)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + suffix + ".csv"
}

func uploadResult(cmd *cobra.Command, localPath string) error {
	bucket, key, err := s3.ParseURL(prepareUploadURL)
	if err != nil {
		return err
	}

	s3cfg := s3.DefaultConfig(prepareS3Region)
	s3cfg.Endpoint = prepareS3Endpoint
	s3cfg.UsePathStyle = prepareS3Endpoint != ""

	client, err := s3.NewClient(cmd.Context(), s3cfg)
	if err != nil {
		return err
	}

	if err := client.Upload(cmd.Context(), localPath, bucket, key); err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	fmt.Printf("Uploaded %s to %s\n", localPath, prepareUploadURL)
	return nil
}
