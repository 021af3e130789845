// Package checkpoint records run progress and completion for prepared
// datasets. An output file without a completed checkpoint must be treated as
// partial: interrupted runs leave the checkpoint in phase "running".
package checkpoint

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Run phases.
const (
	PhaseRunning  = "running"
	PhaseComplete = "complete"
)

// Checkpoint tracks one prepare run.
type Checkpoint struct {
	RunID      string `json:"run_id"`
	InputPath  string `json:"input_path"`
	OutputPath string `json:"output_path"`
	Seed       int64  `json:"seed"`

	Phase       string `json:"phase"`
	ChunksDone  int64  `json:"chunks_done"`
	RowsWritten int64  `json:"rows_written"`

	StartedAt   time.Time  `json:"started_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// New creates a running checkpoint for a prepare run.
func New(inputPath, outputPath string, seed int64) *Checkpoint {
	now := time.Now().UTC()
	return &Checkpoint{
		RunID:      uuid.NewString(),
		InputPath:  inputPath,
		OutputPath: outputPath,
		Seed:       seed,
		Phase:      PhaseRunning,
		StartedAt:  now,
		UpdatedAt:  now,
	}
}

// Advance records one more written chunk.
func (c *Checkpoint) Advance(rows int64) {
	c.ChunksDone++
	c.RowsWritten += rows
	c.UpdatedAt = time.Now().UTC()
}

// Complete marks the run finished.
func (c *Checkpoint) Complete() {
	now := time.Now().UTC()
	c.Phase = PhaseComplete
	c.CompletedAt = &now
	c.UpdatedAt = now
}

// Store persists checkpoints keyed by output path.
type Store interface {
	Save(ctx context.Context, cp *Checkpoint) error
	Load(ctx context.Context, outputPath string) (*Checkpoint, error)
	Delete(ctx context.Context, outputPath string) error
}

// IsComplete reports whether outputPath has a completed checkpoint in store.
// Any load failure means not complete.
func IsComplete(ctx context.Context, store Store, outputPath string) bool {
	cp, err := store.Load(ctx, outputPath)
	return err == nil && cp.Phase == PhaseComplete
}
