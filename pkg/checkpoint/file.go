package checkpoint

import (
	"context"
	"encoding/json"
	"os"
)

// markerSuffix is appended to the output path to form the marker file.
const markerSuffix = ".run.json"

// FileStore keeps the checkpoint next to the output file, so a consumer of
// the dataset can check completion with no extra infrastructure.
type FileStore struct{}

// NewFileStore creates a file-backed checkpoint store.
func NewFileStore() *FileStore { return &FileStore{} }

// MarkerPath returns the marker file path for an output path.
func MarkerPath(outputPath string) string { return outputPath + markerSuffix }

func (s *FileStore) Save(ctx context.Context, cp *Checkpoint) error {
	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return err
	}

	// Write-then-rename so a crash mid-save cannot leave a truncated
	// marker that parses as complete.
	tmp := MarkerPath(cp.OutputPath) + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, MarkerPath(cp.OutputPath))
}

func (s *FileStore) Load(ctx context.Context, outputPath string) (*Checkpoint, error) {
	data, err := os.ReadFile(MarkerPath(outputPath))
	if err != nil {
		return nil, err
	}
	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

func (s *FileStore) Delete(ctx context.Context, outputPath string) error {
	err := os.Remove(MarkerPath(outputPath))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
