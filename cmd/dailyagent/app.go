package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/smallnest/dailyagent/config"
	"github.com/smallnest/dailyagent/graph"
	"github.com/smallnest/dailyagent/llm"
	"github.com/smallnest/dailyagent/metrics"
	"github.com/smallnest/dailyagent/newspaper"
	"github.com/smallnest/dailyagent/store"
	"github.com/smallnest/dailyagent/store/memory"
	"github.com/smallnest/dailyagent/store/postgres"
	"github.com/smallnest/dailyagent/store/redis"
	"github.com/smallnest/dailyagent/store/sqlite"
	"github.com/smallnest/dailyagent/tool"
)

// app holds everything a command needs to run the workflow.
type app struct {
	cfg      *config.Config
	runnable *graph.StateRunnable[newspaper.State]
	store    store.CheckpointStore
	metrics  *metrics.Metrics
	closers  []func() error
}

func (a *app) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// newApp validates the configuration and wires models, search, store and
// metrics into a compiled workflow.
func newApp(ctx context.Context, cfg *config.Config, reg prometheus.Registerer) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	mainModel, err := llm.NewChatModel(llm.ModelConfig{
		APIKey:  cfg.Credentials.GroqAPIKey,
		Model:   cfg.Models.Main,
		BaseURL: cfg.Models.BaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create model %s: %w", cfg.Models.Main, err)
	}
	newspaperModel, err := llm.NewChatModel(llm.ModelConfig{
		APIKey:  cfg.Credentials.GroqAPIKey,
		Model:   cfg.Models.Newspaper,
		BaseURL: cfg.Models.BaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create model %s: %w", cfg.Models.Newspaper, err)
	}

	apiKey, _ := cfg.SearchAPIKey()
	search, err := tool.NewSearchTool(tool.SearchConfig{
		Provider:   cfg.Search.Provider,
		APIKey:     apiKey,
		MaxResults: cfg.Search.MaxResults,
		Depth:      cfg.Search.Depth,
	})
	if err != nil {
		return nil, err
	}

	m, err := metrics.New(reg)
	if err != nil {
		return nil, err
	}

	runnable, err := newspaper.Compile(newspaper.Options{
		Model:           mainModel,
		NewspaperModel:  newspaperModel,
		Search:          m.InstrumentTool(search),
		DefaultTopics:   cfg.Topics.Default,
		MaxSearchRounds: cfg.Search.MaxRounds,
	})
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, runnable: runnable, metrics: m}
	a.store, err = openStore(ctx, cfg.Store, a)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// runConfig returns the graph config of one run.
func (a *app) runConfig(extra ...graph.CallbackHandler) *graph.Config {
	callbacks := []graph.CallbackHandler{
		a.metrics,
		graph.NewCheckpointListener[newspaper.State](a.store).WithMetadata(newspaper.CheckpointMetadata),
	}
	return &graph.Config{
		RecursionLimit: a.cfg.Graph.RecursionLimit,
		Callbacks:      append(callbacks, extra...),
	}
}

// openStore opens the checkpoint store selected by cfg and registers its
// cleanup with a.
func openStore(ctx context.Context, cfg config.StoreConfig, a *app) (store.CheckpointStore, error) {
	switch cfg.Driver {
	case "", config.DriverMemory:
		return memory.NewMemoryCheckpointStore(memory.WithMaxRuns(cfg.MaxRuns)), nil
	case config.DriverSQLite:
		s, err := sqlite.NewSqliteCheckpointStore(sqlite.SqliteOptions{Path: cfg.DSN})
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		a.closers = append(a.closers, s.Close)
		return s, nil
	case config.DriverRedis:
		opts, err := goredis.ParseURL(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("invalid redis dsn: %w", err)
		}
		s := redis.NewRedisCheckpointStore(redis.RedisOptions{
			Addr:     opts.Addr,
			Password: opts.Password,
			DB:       opts.DB,
		})
		a.closers = append(a.closers, s.Close)
		return s, nil
	case config.DriverPostgres:
		s, err := postgres.NewPostgresCheckpointStore(ctx, postgres.PostgresOptions{ConnString: cfg.DSN})
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres store: %w", err)
		}
		a.closers = append(a.closers, func() error { s.Close(); return nil })
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
