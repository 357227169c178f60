// Package graph provides the state graph engine that drives the newspaper workflow.
//
// A StateGraph[S] holds named nodes, static edges and conditional edges.
// Each node receives a snapshot of the state and returns a partial update;
// the compiled runnable merges that update through the graph's StateSchema
// and then follows exactly one outgoing edge. Nodes never run concurrently.
//
// # Core Concepts
//
// ## Nodes and Edges
// Every node must have exactly one way out: a static edge or a conditional
// edge. Conditional edges declare their possible targets so Compile can
// check them and the Exporter can draw them.
//
// ## Recursion limit
// A run that performs more node activations than Config.RecursionLimit
// (DefaultRecursionLimit when unset) stops with *GraphRecursionError.
//
// ## Callbacks
// CallbackHandler implementations observe graph start, node start and end,
// each merged step, and the end or failure of the run. CheckpointListener
// persists a snapshot per step to a store.CheckpointStore.
//
// ## Streaming
// Stream runs the graph in a goroutine and delivers one StreamEvent per step,
// followed by a final event with Done set.
//
// # Example Usage
//
//	g := graph.NewStateGraph[State]()
//	g.AddNode("count", "Increment counter", func(ctx context.Context, s State) (State, error) {
//	    return State{Count: s.Count + 1}, nil
//	})
//	g.AddConditionalEdge("count", func(ctx context.Context, s State) string {
//	    if s.Count >= 3 {
//	        return graph.END
//	    }
//	    return "count"
//	}, "count", graph.END)
//	g.SetEntryPoint("count")
//	g.SetSchema(graph.NewStructSchema(State{}, nil))
//
//	app, err := g.Compile()
//	if err != nil {
//	    return err
//	}
//	final, err := app.InvokeWithConfig(ctx, State{}, &graph.Config{RecursionLimit: 10})
package graph
