// Package metrics records Prometheus metrics for workflow runs. Metrics
// observes a run as a graph.CallbackHandler and counts tool calls through
// InstrumentTool.
package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smallnest/dailyagent/graph"
	"github.com/tmc/langchaingo/tools"
)

const namespace = "dailyagent"

// Run outcomes.
const (
	OutcomeSuccess        = "success"
	OutcomeError          = "error"
	OutcomeRecursionLimit = "recursion_limit"
	OutcomeCancelled      = "cancelled"
)

// Metrics holds the collectors of one registry.
type Metrics struct {
	graph.NoOpCallbackHandler

	nodeActivations *prometheus.CounterVec
	nodeErrors      *prometheus.CounterVec
	nodeDuration    *prometheus.HistogramVec
	runs            *prometheus.CounterVec
	toolCalls       *prometheus.CounterVec
}

var _ graph.CallbackHandler = (*Metrics)(nil)

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		nodeActivations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "node_activations_total",
				Help:      "Number of times each workflow node ran.",
			},
			[]string{"node"},
		),
		nodeErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "node_errors_total",
				Help:      "Number of workflow node failures.",
			},
			[]string{"node"},
		),
		nodeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "node_duration_seconds",
				Help:      "Time spent in each workflow node.",
				Buckets:   prometheus.ExponentialBuckets(0.05, 4, 7),
			},
			[]string{"node"},
		),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Number of finished workflow runs by outcome.",
			},
			[]string{"outcome"},
		),
		toolCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tool_calls_total",
				Help:      "Number of tool calls by tool and status.",
			},
			[]string{"tool", "status"},
		),
	}

	for _, c := range []prometheus.Collector{m.nodeActivations, m.nodeErrors, m.nodeDuration, m.runs, m.toolCalls} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// OnNodeStart counts a node activation.
func (m *Metrics) OnNodeStart(_ context.Context, _ string, node string, _ any) {
	m.nodeActivations.WithLabelValues(node).Inc()
}

// OnNodeEnd records the node duration and failures.
func (m *Metrics) OnNodeEnd(_ context.Context, _ string, node string, _ any, err error, elapsed time.Duration) {
	m.nodeDuration.WithLabelValues(node).Observe(elapsed.Seconds())
	if err != nil {
		m.nodeErrors.WithLabelValues(node).Inc()
	}
}

// OnGraphEnd counts a successful run.
func (m *Metrics) OnGraphEnd(_ context.Context, _ string, _ any) {
	m.runs.WithLabelValues(OutcomeSuccess).Inc()
}

// OnGraphError counts a failed run.
func (m *Metrics) OnGraphError(_ context.Context, _ string, err error) {
	m.runs.WithLabelValues(Outcome(err)).Inc()
}

// Outcome classifies the error that ended a run.
func Outcome(err error) string {
	var recErr *graph.GraphRecursionError
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.As(err, &recErr):
		return OutcomeRecursionLimit
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCancelled
	default:
		return OutcomeError
	}
}

// InstrumentTool wraps t so every call is counted.
func (m *Metrics) InstrumentTool(t tools.Tool) tools.Tool {
	return &instrumentedTool{Tool: t, calls: m.toolCalls}
}

type instrumentedTool struct {
	tools.Tool
	calls *prometheus.CounterVec
}

func (t *instrumentedTool) Call(ctx context.Context, input string) (string, error) {
	out, err := t.Tool.Call(ctx, input)
	status := "ok"
	if err != nil {
		status = "error"
	}
	t.calls.WithLabelValues(t.Name(), status).Inc()
	return out, err
}
