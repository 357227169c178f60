package graph

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// StreamEvent reports one completed step of a streaming run. The final event
// has Done set and carries the final state or the error that ended the run.
type StreamEvent[S any] struct {
	RunID     string
	Step      int
	NodeName  string
	Next      string
	State     S
	Error     error
	Done      bool
	Timestamp time.Time
}

// Stream executes the graph in a background goroutine and returns a channel
// of step events. The channel is closed after the Done event, or as soon as
// ctx is cancelled.
func (r *StateRunnable[S]) Stream(ctx context.Context, initialState S, config *Config) <-chan StreamEvent[S] {
	events := make(chan StreamEvent[S])

	cfg := Config{}
	if config != nil {
		cfg = *config
	}
	if cfg.ThreadID == "" {
		cfg.ThreadID = uuid.NewString()
	}

	go func() {
		defer close(events)

		send := func(ev StreamEvent[S]) bool {
			select {
			case events <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		state, err := r.run(ctx, initialState, &cfg, send)
		if err != nil && errors.Is(err, ctx.Err()) {
			// consumer is gone
			return
		}
		send(StreamEvent[S]{
			RunID:     cfg.ThreadID,
			State:     state,
			Error:     err,
			Done:      true,
			Timestamp: time.Now(),
		})
	}()

	return events
}
