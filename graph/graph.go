package graph

import (
	"context"
	"errors"
	"fmt"
)

// END is a special constant used to represent the end node in the graph.
const END = "END"

// DefaultRecursionLimit is the maximum number of node activations per run
// when the caller does not set Config.RecursionLimit.
const DefaultRecursionLimit = 25

var (
	// ErrEntryPointNotSet is returned when the entry point of the graph is not set.
	ErrEntryPointNotSet = errors.New("entry point not set")

	// ErrNodeNotFound is returned when a node is not found in the graph.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNoOutgoingEdge is returned when no outgoing edge is found for a node.
	ErrNoOutgoingEdge = errors.New("no outgoing edge found for node")

	// ErrMultipleOutgoingEdges is returned when a node has more than one way out.
	// Execution is strictly sequential, so every node has exactly one successor.
	ErrMultipleOutgoingEdges = errors.New("multiple outgoing edges for node")

	// ErrUnknownRoute is returned when a conditional edge routes to a target
	// that was not declared for it.
	ErrUnknownRoute = errors.New("conditional edge returned undeclared target")
)

// GraphRecursionError is returned when a run reaches its recursion limit
// before arriving at END.
type GraphRecursionError struct {
	// Limit is the configured maximum number of node activations
	Limit int
	// Node is the node that would have run next
	Node string
}

func (e *GraphRecursionError) Error() string {
	return fmt.Sprintf("recursion limit of %d reached without hitting END (next node: %s)", e.Limit, e.Node)
}

// TypedNode represents a typed node in the graph.
type TypedNode[S any] struct {
	// Name is the unique identifier for the node.
	Name string

	// Description describes the functionality of the node.
	Description string

	// Function receives a snapshot of the state and returns a partial update
	// which the runner merges through the graph schema.
	Function func(ctx context.Context, state S) (S, error)
}

// Edge represents an edge in the graph.
type Edge struct {
	// From is the name of the node from which the edge originates.
	From string

	// To is the name of the node to which the edge points.
	To string
}

// ConditionalEdge routes from a node to one of Targets, chosen at runtime.
type ConditionalEdge[S any] struct {
	From      string
	Condition func(ctx context.Context, state S) string
	// Targets lists the nodes the condition may return. Empty means any node.
	Targets []string
}
