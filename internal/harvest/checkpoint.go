package harvest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrCheckpointCorrupt reports that a prior checkpoint exists but cannot be
// parsed. The run starts from empty state; it never crashes on bad state.
var ErrCheckpointCorrupt = errors.New("checkpoint corrupt")

// CheckpointFile persists run state as a single JSON document with an atomic
// write-temp-then-rename discipline, so a crash mid-write never leaves a
// half-written checkpoint observable by the next load.
type CheckpointFile struct {
	path string
}

// NewCheckpointFile creates the checkpoint directory if needed.
func NewCheckpointFile(dir, name string) (*CheckpointFile, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create checkpoint dir %s: %w", dir, err)
	}
	return &CheckpointFile{path: filepath.Join(dir, name)}, nil
}

// Path returns the checkpoint's location on disk.
func (c *CheckpointFile) Path() string {
	return c.path
}

// Load reads the previous checkpoint. A missing file yields empty state and
// no error; an unparseable file yields empty state and ErrCheckpointCorrupt
// so the caller can log the condition.
func (c *CheckpointFile) Load() (Checkpoint, error) {
	payload, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Checkpoint{}, nil
		}
		return Checkpoint{}, fmt.Errorf("%w: read %s: %v", ErrCheckpointCorrupt, c.path, err)
	}
	var cp Checkpoint
	if err := json.Unmarshal(payload, &cp); err != nil {
		return Checkpoint{}, fmt.Errorf("%w: parse %s: %v", ErrCheckpointCorrupt, c.path, err)
	}
	return cp, nil
}

// Write replaces the checkpoint atomically.
func (c *CheckpointFile) Write(cp Checkpoint) error {
	payload, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(c.path), ".checkpoint-*.tmp")
	if err != nil {
		return fmt.Errorf("create checkpoint temp: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write checkpoint temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("sync checkpoint temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close checkpoint temp: %w", err)
	}
	if err := os.Rename(tmpName, c.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace checkpoint %s: %w", c.path, err)
	}
	return nil
}
