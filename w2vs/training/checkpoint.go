package training

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// ErrNoCheckpoint is returned by LoadCheckpoint when the file does not exist.
var ErrNoCheckpoint = errors.New("no checkpoint")

// Checkpoint records where a training run stopped: the epoch in progress and
// the iterator cursor inside it.
type Checkpoint struct {
	RunID     string    `yaml:"run_id"`
	Epoch     int       `yaml:"epoch"`
	Cursor    int       `yaml:"cursor"`
	Total     int       `yaml:"total"`
	BatchSize int       `yaml:"batch_size"`
	UpdatedAt time.Time `yaml:"updated_at"`
}

// ID parses the checkpoint's run id.
func (c *Checkpoint) ID() (uuid.UUID, error) {
	return uuid.Parse(c.RunID)
}

// SaveCheckpoint writes cp to path atomically, creating directories as needed.
func SaveCheckpoint(path string, cp Checkpoint) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create checkpoint directory: %w", err)
	}
	data, err := yaml.Marshal(&cp)
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace checkpoint: %w", err)
	}
	return nil
}

// LoadCheckpoint reads a checkpoint written by SaveCheckpoint.
func LoadCheckpoint(path string) (*Checkpoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoCheckpoint
		}
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}
	var cp Checkpoint
	if err := yaml.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("decode checkpoint: %w", err)
	}
	if _, err := cp.ID(); err != nil {
		return nil, fmt.Errorf("decode checkpoint: invalid run id %q: %w", cp.RunID, err)
	}
	return &cp, nil
}
