// Package store persists per-step checkpoints of a newspaper run.
//
// Every completed node produces one Checkpoint holding the full state
// snapshot, keyed by the run ID. Checkpoints are an audit trail: the
// history command and the HTTP API read them back, runs are never resumed
// from them.
//
// Implementations:
//
//   - store/memory: process-local map, the default
//   - store/sqlite: single file database (mattn/go-sqlite3)
//   - store/redis: keys with optional TTL (redis/go-redis)
//   - store/postgres: table in PostgreSQL (jackc/pgx)
//
// Example:
//
//	cps, err := sqlite.NewSqliteCheckpointStore(sqlite.SqliteOptions{Path: "./runs.db"})
//	if err != nil {
//	    return err
//	}
//	defer cps.Close()
//
//	listener := graph.NewCheckpointListener[newspaper.State](cps)
//	final, err := app.InvokeWithConfig(ctx, initial, &graph.Config{
//	    Callbacks: []graph.CallbackHandler{listener},
//	})
package store
