package store

import (
	"context"
	"errors"
	"sort"
	"time"
)

// ErrCheckpointNotFound is returned by Load when no checkpoint has the given ID.
var ErrCheckpointNotFound = errors.New("checkpoint not found")

// Checkpoint is the state of a run captured after one step.
type Checkpoint struct {
	ID       string `json:"id"`
	RunID    string `json:"run_id"`
	NodeName string `json:"node_name"`
	// State is the full state snapshot. After a round trip through a
	// persistent store it is the generic JSON form (map[string]any).
	State     any            `json:"state"`
	Metadata  map[string]any `json:"metadata"`
	Timestamp time.Time      `json:"timestamp"`
	// Version is the 1-based step number within the run.
	Version int `json:"version"`
}

// CheckpointStore defines the interface for checkpoint persistence
type CheckpointStore interface {
	// Save stores a checkpoint, replacing any checkpoint with the same ID
	Save(ctx context.Context, checkpoint *Checkpoint) error

	// Load retrieves a checkpoint by ID
	Load(ctx context.Context, checkpointID string) (*Checkpoint, error)

	// List returns all checkpoints of a run ordered by version
	List(ctx context.Context, runID string) ([]*Checkpoint, error)

	// Delete removes a checkpoint
	Delete(ctx context.Context, checkpointID string) error

	// Clear removes all checkpoints of a run
	Clear(ctx context.Context, runID string) error
}

// SortByVersion orders checkpoints by step, oldest first.
func SortByVersion(checkpoints []*Checkpoint) {
	sort.SliceStable(checkpoints, func(i, j int) bool {
		return checkpoints[i].Version < checkpoints[j].Version
	})
}
