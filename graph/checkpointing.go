package graph

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/smallnest/dailyagent/log"
	"github.com/smallnest/dailyagent/store"
)

// CheckpointListener saves a checkpoint of the full state after every step.
// Save failures are logged and never abort the run.
type CheckpointListener[S any] struct {
	NoOpCallbackHandler

	store    store.CheckpointStore
	metadata func(state S) map[string]any
}

// NewCheckpointListener creates a listener writing to cs.
func NewCheckpointListener[S any](cs store.CheckpointStore) *CheckpointListener[S] {
	return &CheckpointListener[S]{store: cs}
}

// WithMetadata sets a function deriving checkpoint metadata from the state.
func (cl *CheckpointListener[S]) WithMetadata(fn func(state S) map[string]any) *CheckpointListener[S] {
	cl.metadata = fn
	return cl
}

// OnGraphStep is called after a step in the graph has completed and the state has been merged.
func (cl *CheckpointListener[S]) OnGraphStep(ctx context.Context, runID string, step int, node string, state any) {
	s, ok := state.(S)
	if !ok {
		log.Warn("checkpoint skipped for run %s: unexpected state type %T", runID, state)
		return
	}

	metadata := map[string]any{"step": step}
	if cl.metadata != nil {
		for k, v := range cl.metadata(s) {
			metadata[k] = v
		}
	}

	cp := &store.Checkpoint{
		ID:        uuid.NewString(),
		RunID:     runID,
		NodeName:  node,
		State:     s,
		Metadata:  metadata,
		Timestamp: time.Now(),
		Version:   step + 1,
	}
	if err := cl.store.Save(ctx, cp); err != nil {
		log.Error("failed to save checkpoint for run %s at %s: %v", runID, node, err)
	}
}
