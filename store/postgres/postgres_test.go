package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/smallnest/dailyagent/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columns = []string{"id", "run_id", "node_name", "state", "metadata", "timestamp", "version"}

func TestPostgresCheckpointStore_InitSchema(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	s := NewPostgresCheckpointStoreWithPool(mock, "")

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS checkpoints")).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	assert.NoError(t, s.InitSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCheckpointStore_Save(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	s := NewPostgresCheckpointStoreWithPool(mock, "checkpoints")

	cp := &store.Checkpoint{
		ID:        "cp-1",
		RunID:     "run-1",
		NodeName:  "input_parser",
		State:     map[string]any{"topics": []string{"Sports"}},
		Timestamp: time.Now(),
		Version:   1,
		Metadata:  map[string]any{"next": "supervisor"},
	}

	stateJSON, _ := json.Marshal(cp.State)
	metadataJSON, _ := json.Marshal(cp.Metadata)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO checkpoints")).
		WithArgs(cp.ID, cp.RunID, cp.NodeName, stateJSON, metadataJSON, cp.Timestamp, cp.Version).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	assert.NoError(t, s.Save(context.Background(), cp))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCheckpointStore_Save_MarshalError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	s := NewPostgresCheckpointStoreWithPool(mock, "checkpoints")

	err = s.Save(context.Background(), &store.Checkpoint{ID: "cp-1", State: make(chan int)})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to marshal state")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCheckpointStore_Load(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	s := NewPostgresCheckpointStoreWithPool(mock, "checkpoints")

	stateJSON, _ := json.Marshal(map[string]any{"current_topic": "Sports"})
	metadataJSON, _ := json.Marshal(map[string]any{"next": "search_agent"})
	ts := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, run_id, node_name, state, metadata, timestamp, version FROM checkpoints WHERE id = $1")).
		WithArgs("cp-1").
		WillReturnRows(pgxmock.NewRows(columns).AddRow("cp-1", "run-1", "supervisor", stateJSON, metadataJSON, ts, 2))

	loaded, err := s.Load(context.Background(), "cp-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", loaded.RunID)
	assert.Equal(t, "supervisor", loaded.NodeName)
	assert.Equal(t, 2, loaded.Version)
	assert.Equal(t, "search_agent", loaded.Metadata["next"])

	state, ok := loaded.State.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Sports", state["current_topic"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCheckpointStore_Load_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	s := NewPostgresCheckpointStoreWithPool(mock, "checkpoints")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, run_id, node_name")).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err = s.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrCheckpointNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCheckpointStore_Load_DBError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	s := NewPostgresCheckpointStoreWithPool(mock, "checkpoints")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, run_id, node_name")).
		WithArgs("cp-1").
		WillReturnError(errors.New("connection reset"))

	_, err = s.Load(context.Background(), "cp-1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, store.ErrCheckpointNotFound)
	assert.Contains(t, err.Error(), "failed to load checkpoint")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCheckpointStore_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	s := NewPostgresCheckpointStoreWithPool(mock, "checkpoints")

	stateJSON, _ := json.Marshal(map[string]any{})
	ts := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, run_id, node_name, state, metadata, timestamp, version FROM checkpoints WHERE run_id = $1 ORDER BY version ASC")).
		WithArgs("run-1").
		WillReturnRows(pgxmock.NewRows(columns).
			AddRow("cp-1", "run-1", "input_parser", stateJSON, []byte(nil), ts, 1).
			AddRow("cp-2", "run-1", "supervisor", stateJSON, []byte(nil), ts, 2))

	list, err := s.List(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "input_parser", list[0].NodeName)
	assert.Equal(t, "supervisor", list[1].NodeName)
	assert.Nil(t, list[0].Metadata)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCheckpointStore_DeleteClear(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	s := NewPostgresCheckpointStoreWithPool(mock, "checkpoints")

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM checkpoints WHERE id = $1")).
		WithArgs("cp-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM checkpoints WHERE run_id = $1")).
		WithArgs("run-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	assert.NoError(t, s.Delete(context.Background(), "cp-1"))
	assert.NoError(t, s.Clear(context.Background(), "run-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
