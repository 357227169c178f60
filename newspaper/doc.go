// Package newspaper implements "The Daily Agent" workflow: a request is
// parsed into a worklist of topics, each topic is searched and summarized in
// turn, and the collected digests are written up as one newspaper edition.
//
// The workflow is a graph.StateGraph over State:
//
//	runnable, err := newspaper.Compile(newspaper.Options{
//	    Model:  model,
//	    Search: search,
//	})
//	final, err := runnable.InvokeWithConfig(ctx, newspaper.NewRequest("Generate today's newspaper"),
//	    &graph.Config{RecursionLimit: newspaper.DefaultRecursionLimit})
//	fmt.Println(final.FinalOutput)
package newspaper
