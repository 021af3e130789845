package pipe

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dqbench/dqbench/internal/model"
	"github.com/dqbench/dqbench/pkg/checkpoint"
	"github.com/dqbench/dqbench/pkg/config"
	"github.com/dqbench/dqbench/pkg/dataset"
)

func testConfig() config.Quality {
	cfg := config.Default()
	cfg.ChunkSize = 37 // deliberately not dividing the row count
	cfg.Volatility = 2000
	cfg.Seed = 1
	return cfg
}

func writeInput(t *testing.T, dir string, n int) string {
	t.Helper()
	var sb strings.Builder
	sb.WriteString("value_id,sensor_id,timestamp,value,available_time\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "%d,7,%d,%g,%d\n", i, i*1000, 20.5+float64(i%4), i*1000)
	}
	path := filepath.Join(dir, "input.csv")
	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPreparePassThrough(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, 200)
	output := filepath.Join(dir, "output.csv")

	cfg := testConfig()
	cfg.OutlierPercentage = 0
	cfg.MissingPercentage = 0
	cfg.OutdatedPercentage = 0

	ctx := context.Background()
	store := checkpoint.NewFileStore()

	result, err := Prepare(ctx, cfg, input, output, store, nil)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if result.RowsWritten != 200 {
		t.Errorf("RowsWritten = %d, want 200", result.RowsWritten)
	}

	// Zero defect percentages and an existing available_time column: the
	// output must be byte-identical to the input.
	in, err := os.ReadFile(input)
	if err != nil {
		t.Fatal(err)
	}
	out, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if string(in) != string(out) {
		t.Error("pass-through run is not byte-identical")
	}

	if !checkpoint.IsComplete(ctx, store, output) {
		t.Error("checkpoint not complete after successful run")
	}
}

func TestPrepareWithDefects(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, 300)
	output := filepath.Join(dir, "output.csv")

	cfg := testConfig()
	ctx := context.Background()
	store := checkpoint.NewFileStore()

	var progressed int64
	result, err := Prepare(ctx, cfg, input, output, store, func(rows int64) {
		progressed += rows
	})
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	if result.RowsWritten != 300 {
		t.Errorf("RowsWritten = %d, want 300 (defects never drop rows)", result.RowsWritten)
	}
	if progressed != 300 {
		t.Errorf("progress callback saw %d rows, want 300", progressed)
	}
	wantChunks := int64(300/cfg.ChunkSize + 1)
	if result.Chunks != wantChunks {
		t.Errorf("Chunks = %d, want %d", result.Chunks, wantChunks)
	}

	cp, err := store.Load(ctx, output)
	if err != nil {
		t.Fatalf("Load checkpoint: %v", err)
	}
	if cp.RunID != result.RunID {
		t.Errorf("checkpoint RunID = %q, want %q", cp.RunID, result.RunID)
	}
	if cp.RowsWritten != 300 {
		t.Errorf("checkpoint RowsWritten = %d, want 300", cp.RowsWritten)
	}

	// The degraded output must contain some nulled values and keep identity
	// fields intact row for row.
	r, err := dataset.Open(output, cfg.ChunkSize)
	if err != nil {
		t.Fatalf("Open output: %v", err)
	}
	defer r.Close()

	var rows, nulls int
	var next int64
	for {
		chunk, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		for i := range chunk.Readings {
			reading := &chunk.Readings[i]
			if reading.ValueID != next {
				t.Fatalf("ValueID = %d, want %d (order broken)", reading.ValueID, next)
			}
			next++
			rows++
			if reading.IsNull(model.FieldValue) {
				nulls++
			}
		}
	}
	if rows != 300 {
		t.Errorf("output rows = %d, want 300", rows)
	}
	if nulls == 0 {
		t.Error("no nulled values despite MISSING_PERCENTAGE > 0")
	}
}

func TestPrepareReproducible(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, 250)
	cfg := testConfig()
	ctx := context.Background()

	out1 := filepath.Join(dir, "a.csv")
	out2 := filepath.Join(dir, "b.csv")
	store := checkpoint.NewFileStore()

	if _, err := Prepare(ctx, cfg, input, out1, store, nil); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := Prepare(ctx, cfg, input, out2, store, nil); err != nil {
		t.Fatalf("second run: %v", err)
	}

	a, err := os.ReadFile(out1)
	if err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(out2)
	if err != nil {
		t.Fatal(err)
	}
	if string(a) != string(b) {
		t.Error("two runs with the same seed produced different output")
	}
}

func TestPrepareMissingInput(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig()

	_, err := Prepare(context.Background(), cfg, filepath.Join(dir, "nope.csv"),
		filepath.Join(dir, "out.csv"), checkpoint.NewFileStore(), nil)
	if err == nil {
		t.Error("expected error for missing input")
	}
}
