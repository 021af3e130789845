// Package metric replicates, offline, the windowed data-quality pipeline the
// DSMS executes: per-window accuracy (median/MAD thresholding), completeness
// (null counting) and timeliness (bounded decay), over count-based tumbling
// windows of the global row stream.
package metric

import (
	"context"
	"io"

	"github.com/dqbench/dqbench/internal/model"
	"github.com/dqbench/dqbench/pkg/config"
)

// ChunkSource is a lazy, ordered sequence of row chunks. Next returns io.EOF
// when the stream is exhausted.
type ChunkSource interface {
	Next() (*model.Chunk, error)
}

// Result is the outcome of one measurement run.
type Result struct {
	Windows []model.WindowMetrics

	// Rows is the total number of rows consumed.
	Rows int64

	// Dropped is the size of the trailing partial window, which is never
	// emitted.
	Dropped int
}

// Calculator runs the windowed pipeline over a chunk source.
type Calculator struct {
	windowSize int
	volatility int64

	// OnWindow, when set, is invoked for every completed window in order.
	// Used for streaming display.
	OnWindow func(model.WindowMetrics)
}

// NewCalculator creates a calculator. windowSize rows per tumbling window;
// volatility is the timeliness horizon in milliseconds.
func NewCalculator(windowSize int, volatility int64) *Calculator {
	return &Calculator{windowSize: windowSize, volatility: volatility}
}

// Run consumes the source to exhaustion and returns all window metrics.
// Non-positive window size or volatility is a fatal range error, reported
// before any rows are read.
func (c *Calculator) Run(ctx context.Context, src ChunkSource) (*Result, error) {
	if c.windowSize <= 0 {
		return nil, &config.RangeError{Field: "WINDOW_SIZE", Value: float64(c.windowSize), Bounds: "> 0"}
	}
	if c.volatility <= 0 {
		return nil, &config.RangeError{Field: "VOLATILITY", Value: float64(c.volatility), Bounds: "> 0"}
	}

	asm := NewAssembler(c.windowSize, c.volatility)
	res := &Result{}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		chunk, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		res.Rows += int64(chunk.Len())
		for _, wm := range asm.Add(chunk) {
			if c.OnWindow != nil {
				c.OnWindow(wm)
			}
			res.Windows = append(res.Windows, wm)
		}
	}

	res.Dropped = asm.Remainder()
	return res, nil
}
