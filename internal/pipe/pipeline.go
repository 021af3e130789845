// Package pipe wires the chunk reader, defect injector and dataset writer
// into the prepare pipeline.
package pipe

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/dqbench/dqbench/internal/model"
	"github.com/dqbench/dqbench/pkg/checkpoint"
	"github.com/dqbench/dqbench/pkg/config"
	"github.com/dqbench/dqbench/pkg/dataset"
	"github.com/dqbench/dqbench/pkg/inject"
)

// PrepareResult reports a completed prepare run.
type PrepareResult struct {
	RunID       string
	RowsWritten int64
	Chunks      int64

	// Skipped counts malformed input rows.
	Skipped int64
}

// Prepare runs the degradation pipeline: read chunks, inject defects, write
// the degraded dataset. Reading and injection+writing run as separate stages
// over a channel; writing stays sequential in chunk order so the output
// preserves the global row order.
//
// Progress on the checkpoint store is updated per chunk; the checkpoint is
// marked complete only after the output file is flushed and closed, so an
// interrupted run never looks finished.
func Prepare(ctx context.Context, cfg config.Quality, inputPath, outputPath string,
	store checkpoint.Store, progress func(rows int64)) (*PrepareResult, error) {

	reader, err := dataset.Open(inputPath, cfg.ChunkSize)
	if err != nil {
		return nil, fmt.Errorf("failed to open input %q: %w", inputPath, err)
	}
	defer reader.Close()

	writer, err := dataset.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create output %q: %w", outputPath, err)
	}

	injector := inject.New(cfg)
	injector.SynthesizeAvailability = !reader.HasAvailableTime()

	cp := checkpoint.New(inputPath, outputPath, cfg.Seed)
	if err := store.Save(ctx, cp); err != nil {
		writer.Close()
		return nil, fmt.Errorf("failed to save checkpoint: %w", err)
	}

	chunks := make(chan *model.Chunk, 2)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(chunks)
		for {
			chunk, err := reader.Next()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return err
			}
			select {
			case chunks <- chunk:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})

	g.Go(func() error {
		for chunk := range chunks {
			injector.Apply(chunk)
			if err := writer.WriteChunk(chunk); err != nil {
				return err
			}
			cp.Advance(int64(chunk.Len()))
			if err := store.Save(ctx, cp); err != nil {
				return err
			}
			if progress != nil {
				progress(int64(chunk.Len()))
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		writer.Close()
		return nil, err
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}

	cp.Complete()
	if err := store.Save(ctx, cp); err != nil {
		return nil, fmt.Errorf("failed to finalize checkpoint: %w", err)
	}

	return &PrepareResult{
		RunID:       cp.RunID,
		RowsWritten: writer.Rows(),
		Chunks:      cp.ChunksDone,
		Skipped:     reader.Skipped(),
	}, nil
}
