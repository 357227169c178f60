package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/smallnest/dailyagent/store"
)

// MemoryCheckpointStore keeps checkpoints in process memory.
type MemoryCheckpointStore struct {
	mu          sync.RWMutex
	checkpoints map[string]*store.Checkpoint
	runs        map[string][]string
	order       []string // run IDs, oldest first
	maxRuns     int
}

var _ store.CheckpointStore = (*MemoryCheckpointStore)(nil)

// MemoryOption configures a MemoryCheckpointStore.
type MemoryOption func(*MemoryCheckpointStore)

// WithMaxRuns keeps at most n runs. Saving a checkpoint of a new run beyond
// the limit drops the oldest run. Zero keeps every run.
func WithMaxRuns(n int) MemoryOption {
	return func(m *MemoryCheckpointStore) {
		m.maxRuns = n
	}
}

// NewMemoryCheckpointStore creates an empty in-memory store.
func NewMemoryCheckpointStore(opts ...MemoryOption) *MemoryCheckpointStore {
	m := &MemoryCheckpointStore{
		checkpoints: make(map[string]*store.Checkpoint),
		runs:        make(map[string][]string),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Save stores a checkpoint
func (m *MemoryCheckpointStore) Save(_ context.Context, checkpoint *store.Checkpoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *checkpoint
	old, exists := m.checkpoints[cp.ID]
	if exists && old.RunID != cp.RunID {
		m.unindex(old.RunID, old.ID)
		exists = false
	}
	if !exists {
		if _, known := m.runs[cp.RunID]; !known {
			m.order = append(m.order, cp.RunID)
		}
		m.runs[cp.RunID] = append(m.runs[cp.RunID], cp.ID)
	}
	m.checkpoints[cp.ID] = &cp

	for m.maxRuns > 0 && len(m.order) > m.maxRuns {
		m.clear(m.order[0])
	}
	return nil
}

// Load retrieves a checkpoint by ID
func (m *MemoryCheckpointStore) Load(_ context.Context, checkpointID string) (*store.Checkpoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cp, ok := m.checkpoints[checkpointID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrCheckpointNotFound, checkpointID)
	}
	out := *cp
	return &out, nil
}

// List returns all checkpoints of a run ordered by version
func (m *MemoryCheckpointStore) List(_ context.Context, runID string) ([]*store.Checkpoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := m.runs[runID]
	result := make([]*store.Checkpoint, 0, len(ids))
	for _, id := range ids {
		cp := *m.checkpoints[id]
		result = append(result, &cp)
	}
	store.SortByVersion(result)
	return result, nil
}

// Delete removes a checkpoint
func (m *MemoryCheckpointStore) Delete(_ context.Context, checkpointID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp, ok := m.checkpoints[checkpointID]
	if !ok {
		return nil
	}
	delete(m.checkpoints, checkpointID)
	m.unindex(cp.RunID, checkpointID)
	return nil
}

// Clear removes all checkpoints of a run
func (m *MemoryCheckpointStore) Clear(_ context.Context, runID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.clear(runID)
	return nil
}

func (m *MemoryCheckpointStore) clear(runID string) {
	for _, id := range m.runs[runID] {
		delete(m.checkpoints, id)
	}
	m.forget(runID)
}

func (m *MemoryCheckpointStore) forget(runID string) {
	delete(m.runs, runID)
	m.order = slices.DeleteFunc(m.order, func(id string) bool { return id == runID })
}

func (m *MemoryCheckpointStore) unindex(runID, checkpointID string) {
	ids := m.runs[runID]
	for i, id := range ids {
		if id == checkpointID {
			m.runs[runID] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	if len(m.runs[runID]) == 0 {
		m.forget(runID)
	}
}
