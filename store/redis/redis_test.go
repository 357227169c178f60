package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/smallnest/dailyagent/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, ttl time.Duration) (*RedisCheckpointStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	s := NewRedisCheckpointStore(RedisOptions{Addr: mr.Addr(), TTL: ttl})
	t.Cleanup(func() { s.Close() })
	return s, mr
}

func TestRedisCheckpointStore(t *testing.T) {
	s, _ := newTestStore(t, 0)
	ctx := context.Background()

	cp := &store.Checkpoint{
		ID:        "cp-1",
		RunID:     "run-123",
		NodeName:  "search_agent",
		State:     map[string]any{"current_topic": "Technology"},
		Timestamp: time.Now(),
		Version:   3,
	}

	require.NoError(t, s.Save(ctx, cp))

	loaded, err := s.Load(ctx, "cp-1")
	require.NoError(t, err)
	assert.Equal(t, cp.ID, loaded.ID)
	assert.Equal(t, cp.RunID, loaded.RunID)
	assert.Equal(t, cp.NodeName, loaded.NodeName)
	state, ok := loaded.State.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Technology", state["current_topic"])

	list, err := s.List(ctx, "run-123")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, cp.ID, list[0].ID)

	require.NoError(t, s.Delete(ctx, "cp-1"))
	_, err = s.Load(ctx, "cp-1")
	assert.ErrorIs(t, err, store.ErrCheckpointNotFound)

	list, err = s.List(ctx, "run-123")
	require.NoError(t, err)
	assert.Len(t, list, 0)

	// deleting twice is not an error
	assert.NoError(t, s.Delete(ctx, "cp-1"))
}

func TestRedisCheckpointStore_ListOrderAndClear(t *testing.T) {
	s, _ := newTestStore(t, 0)
	ctx := context.Background()

	for _, cp := range []*store.Checkpoint{
		{ID: "cp-3", RunID: "run-1", Version: 3},
		{ID: "cp-1", RunID: "run-1", Version: 1},
		{ID: "cp-2", RunID: "run-1", Version: 2},
		{ID: "cp-x", RunID: "run-2", Version: 1},
	} {
		require.NoError(t, s.Save(ctx, cp))
	}

	list, err := s.List(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"cp-1", "cp-2", "cp-3"}, []string{list[0].ID, list[1].ID, list[2].ID})

	require.NoError(t, s.Clear(ctx, "run-1"))
	list, err = s.List(ctx, "run-1")
	require.NoError(t, err)
	assert.Len(t, list, 0)

	list, err = s.List(ctx, "run-2")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRedisCheckpointStore_TTL(t *testing.T) {
	s, mr := newTestStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, &store.Checkpoint{ID: "cp-1", RunID: "run-1", Version: 1}))
	assert.Equal(t, time.Hour, mr.TTL("dailyagent:checkpoint:cp-1"))
	assert.Equal(t, time.Hour, mr.TTL("dailyagent:run:run-1:checkpoints"))

	mr.FastForward(2 * time.Hour)

	list, err := s.List(ctx, "run-1")
	require.NoError(t, err)
	assert.Len(t, list, 0)
}
