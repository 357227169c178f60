package graph

import "context"

// Config carries per-run settings.
type Config struct {
	// RecursionLimit caps the number of node activations in one run.
	// Zero means DefaultRecursionLimit.
	RecursionLimit int

	// ThreadID identifies the run. A random ID is generated when empty.
	ThreadID string

	// Callbacks are notified of graph and node lifecycle events.
	Callbacks []CallbackHandler
}

type configKey struct{}
type runIDKey struct{}

// WithConfig adds the config to the context.
func WithConfig(ctx context.Context, config *Config) context.Context {
	return context.WithValue(ctx, configKey{}, config)
}

// GetConfig retrieves the config from the context, or nil.
func GetConfig(ctx context.Context) *Config {
	if config, ok := ctx.Value(configKey{}).(*Config); ok {
		return config
	}
	return nil
}

// WithRunID adds the run identifier to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunIDFromContext returns the identifier of the run executing the current node.
func RunIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(runIDKey{}).(string); ok {
		return id
	}
	return ""
}

func (c *Config) recursionLimit() int {
	if c == nil || c.RecursionLimit <= 0 {
		return DefaultRecursionLimit
	}
	return c.RecursionLimit
}

func (c *Config) callbacks() []CallbackHandler {
	if c == nil {
		return nil
	}
	return c.Callbacks
}
