package graph

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// StateGraph represents a generic state-based graph with compile-time type safety.
// The type parameter S represents the state type, which is typically a struct.
//
// Nodes return partial updates. The runner merges each update into the
// current state through the graph schema and then follows exactly one
// outgoing edge, so execution is strictly sequential.
//
// Example usage:
//
//	g := graph.NewStateGraph[MyState]()
//	g.AddNode("increment", "Increment counter", func(ctx context.Context, state MyState) (MyState, error) {
//	    return MyState{Count: state.Count + 1}, nil
//	})
//	g.AddEdge("increment", graph.END)
//	g.SetEntryPoint("increment")
type StateGraph[S any] struct {
	// nodes is a map of node names to their corresponding Node objects
	nodes map[string]TypedNode[S]

	// edges is a slice of Edge objects representing the static connections between nodes
	edges []Edge

	// conditionalEdges maps a "From" node to its runtime router
	conditionalEdges map[string]ConditionalEdge[S]

	// entryPoint is the name of the entry point node in the graph
	entryPoint string

	// schema defines the initial state and update logic
	schema StateSchema[S]
}

// NewStateGraph creates a new instance of StateGraph with type safety.
func NewStateGraph[S any]() *StateGraph[S] {
	return &StateGraph[S]{
		nodes:            make(map[string]TypedNode[S]),
		conditionalEdges: make(map[string]ConditionalEdge[S]),
	}
}

// AddNode adds a new node to the state graph with the given name, description and function.
func (g *StateGraph[S]) AddNode(name string, description string, fn func(ctx context.Context, state S) (S, error)) {
	g.nodes[name] = TypedNode[S]{
		Name:        name,
		Description: description,
		Function:    fn,
	}
}

// AddEdge adds a new edge to the state graph between the "from" and "to" nodes.
func (g *StateGraph[S]) AddEdge(from, to string) {
	g.edges = append(g.edges, Edge{
		From: from,
		To:   to,
	})
}

// AddConditionalEdge adds a conditional edge where the target node is determined at runtime.
// targets lists every node the condition may return; Compile checks they exist
// and the runner rejects any other return value.
//
// Example:
//
//	g.AddConditionalEdge("check", func(ctx context.Context, state MyState) string {
//	    if state.Count > 10 {
//	        return "high"
//	    }
//	    return "low"
//	}, "high", "low")
func (g *StateGraph[S]) AddConditionalEdge(from string, condition func(ctx context.Context, state S) string, targets ...string) {
	g.conditionalEdges[from] = ConditionalEdge[S]{
		From:      from,
		Condition: condition,
		Targets:   targets,
	}
}

// SetEntryPoint sets the entry point node name for the state graph.
func (g *StateGraph[S]) SetEntryPoint(name string) {
	g.entryPoint = name
}

// SetSchema sets the state schema for the graph.
func (g *StateGraph[S]) SetSchema(schema StateSchema[S]) {
	g.schema = schema
}

// Nodes returns the registered nodes sorted by name.
func (g *StateGraph[S]) Nodes() []TypedNode[S] {
	nodes := make([]TypedNode[S], 0, len(g.nodes))
	for _, n := range g.nodes {
		nodes = append(nodes, n)
	}
	slices.SortFunc(nodes, func(a, b TypedNode[S]) int {
		if a.Name < b.Name {
			return -1
		}
		if a.Name > b.Name {
			return 1
		}
		return 0
	})
	return nodes
}

// StateRunnable represents a compiled state graph that can be invoked with type safety.
type StateRunnable[S any] struct {
	graph *StateGraph[S]
}

// Compile validates the state graph and returns a StateRunnable instance.
func (g *StateGraph[S]) Compile() (*StateRunnable[S], error) {
	if g.entryPoint == "" {
		return nil, ErrEntryPointNotSet
	}
	if _, ok := g.nodes[g.entryPoint]; !ok {
		return nil, fmt.Errorf("entry point %s: %w", g.entryPoint, ErrNodeNotFound)
	}

	exists := func(name string) bool {
		if name == END {
			return true
		}
		_, ok := g.nodes[name]
		return ok
	}

	outgoing := make(map[string]int, len(g.nodes))
	for _, edge := range g.edges {
		if !exists(edge.From) {
			return nil, fmt.Errorf("edge source %s: %w", edge.From, ErrNodeNotFound)
		}
		if !exists(edge.To) {
			return nil, fmt.Errorf("edge target %s: %w", edge.To, ErrNodeNotFound)
		}
		outgoing[edge.From]++
	}
	for from, ce := range g.conditionalEdges {
		if !exists(from) {
			return nil, fmt.Errorf("conditional edge source %s: %w", from, ErrNodeNotFound)
		}
		for _, target := range ce.Targets {
			if !exists(target) {
				return nil, fmt.Errorf("conditional edge target %s: %w", target, ErrNodeNotFound)
			}
		}
		outgoing[from]++
	}

	for name := range g.nodes {
		switch outgoing[name] {
		case 0:
			return nil, fmt.Errorf("%w: %s", ErrNoOutgoingEdge, name)
		case 1:
		default:
			return nil, fmt.Errorf("%w: %s", ErrMultipleOutgoingEdges, name)
		}
	}

	return &StateRunnable[S]{graph: g}, nil
}

// Graph returns the graph this runnable was compiled from.
func (r *StateRunnable[S]) Graph() *StateGraph[S] {
	return r.graph
}

// Invoke executes the compiled state graph with the given input state.
func (r *StateRunnable[S]) Invoke(ctx context.Context, initialState S) (S, error) {
	return r.InvokeWithConfig(ctx, initialState, nil)
}

// InvokeWithConfig executes the compiled state graph with the given input state and config.
func (r *StateRunnable[S]) InvokeWithConfig(ctx context.Context, initialState S, config *Config) (S, error) {
	return r.run(ctx, initialState, config, nil)
}

// run drives the graph from the entry point to END. emit, when non-nil,
// receives one event per completed step and returns false to stop early.
func (r *StateRunnable[S]) run(ctx context.Context, initialState S, config *Config, emit func(StreamEvent[S]) bool) (S, error) {
	runID := ""
	if config != nil {
		runID = config.ThreadID
	}
	if runID == "" {
		runID = uuid.NewString()
	}
	ctx = WithRunID(ctx, runID)
	if config != nil {
		ctx = WithConfig(ctx, config)
	}
	callbacks := config.callbacks()
	limit := config.recursionLimit()

	state := initialState
	if r.graph.schema != nil {
		var err error
		state, err = r.graph.schema.Update(r.graph.schema.Init(), initialState)
		if err != nil {
			var zero S
			return zero, fmt.Errorf("failed to initialize state with schema: %w", err)
		}
	}

	fail := func(err error) (S, error) {
		for _, cb := range callbacks {
			cb.OnGraphError(ctx, runID, err)
		}
		return state, err
	}

	for _, cb := range callbacks {
		cb.OnGraphStart(ctx, runID, state)
	}

	current := r.graph.entryPoint
	for step := 0; current != END; step++ {
		if err := ctx.Err(); err != nil {
			return fail(err)
		}
		if step >= limit {
			return fail(&GraphRecursionError{Limit: limit, Node: current})
		}

		node, ok := r.graph.nodes[current]
		if !ok {
			return fail(fmt.Errorf("%w: %s", ErrNodeNotFound, current))
		}

		for _, cb := range callbacks {
			cb.OnNodeStart(ctx, runID, current, state)
		}
		start := time.Now()
		update, err := node.Function(ctx, state)
		elapsed := time.Since(start)
		for _, cb := range callbacks {
			cb.OnNodeEnd(ctx, runID, current, update, err, elapsed)
		}
		if err != nil {
			return fail(fmt.Errorf("error in node %s: %w", current, err))
		}

		if r.graph.schema != nil {
			state, err = r.graph.schema.Update(state, update)
			if err != nil {
				return fail(fmt.Errorf("failed to merge update from node %s: %w", current, err))
			}
		} else {
			state = update
		}

		for _, cb := range callbacks {
			cb.OnGraphStep(ctx, runID, step, current, state)
		}

		next, err := r.next(ctx, current, state)
		if err != nil {
			return fail(err)
		}

		if emit != nil && !emit(StreamEvent[S]{
			RunID:     runID,
			Step:      step,
			NodeName:  current,
			Next:      next,
			State:     state,
			Timestamp: time.Now(),
		}) {
			return fail(ctx.Err())
		}
		current = next
	}

	for _, cb := range callbacks {
		cb.OnGraphEnd(ctx, runID, state)
	}
	return state, nil
}

func (r *StateRunnable[S]) next(ctx context.Context, from string, state S) (string, error) {
	if ce, ok := r.graph.conditionalEdges[from]; ok {
		target := ce.Condition(ctx, state)
		if len(ce.Targets) > 0 && !slices.Contains(ce.Targets, target) {
			return "", fmt.Errorf("%w: %s -> %q", ErrUnknownRoute, from, target)
		}
		if target != END {
			if _, ok := r.graph.nodes[target]; !ok {
				return "", fmt.Errorf("%w: %s", ErrNodeNotFound, target)
			}
		}
		return target, nil
	}
	for _, edge := range r.graph.edges {
		if edge.From == from {
			return edge.To, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNoOutgoingEdge, from)
}
