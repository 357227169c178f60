package graph

import (
	"context"
	"time"
)

// CallbackHandler receives lifecycle notifications from a running graph.
// Handlers are called synchronously on the goroutine executing the graph.
type CallbackHandler interface {
	OnGraphStart(ctx context.Context, runID string, state any)
	OnNodeStart(ctx context.Context, runID string, node string, state any)
	OnNodeEnd(ctx context.Context, runID string, node string, update any, err error, elapsed time.Duration)
	// OnGraphStep is called after a node's update has been merged into the state.
	OnGraphStep(ctx context.Context, runID string, step int, node string, state any)
	OnGraphEnd(ctx context.Context, runID string, state any)
	OnGraphError(ctx context.Context, runID string, err error)
}

// NoOpCallbackHandler implements every CallbackHandler method as a no-op.
// Embed it to implement only the methods you need.
type NoOpCallbackHandler struct{}

func (NoOpCallbackHandler) OnGraphStart(context.Context, string, any)                            {}
func (NoOpCallbackHandler) OnNodeStart(context.Context, string, string, any)                     {}
func (NoOpCallbackHandler) OnNodeEnd(context.Context, string, string, any, error, time.Duration) {}
func (NoOpCallbackHandler) OnGraphStep(context.Context, string, int, string, any)                {}
func (NoOpCallbackHandler) OnGraphEnd(context.Context, string, any)                              {}
func (NoOpCallbackHandler) OnGraphError(context.Context, string, error)                          {}

var _ CallbackHandler = NoOpCallbackHandler{}

// StepFunc adapts a plain function to a CallbackHandler that only observes steps.
type StepFunc func(ctx context.Context, runID string, step int, node string, state any)

type stepFuncHandler struct {
	NoOpCallbackHandler
	fn StepFunc
}

func (h stepFuncHandler) OnGraphStep(ctx context.Context, runID string, step int, node string, state any) {
	h.fn(ctx, runID, step, node, state)
}

// OnStep returns a CallbackHandler that calls fn after every step.
func OnStep(fn StepFunc) CallbackHandler {
	return stepFuncHandler{fn: fn}
}
