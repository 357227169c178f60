package newspaper

import (
	"fmt"
	"strings"

	"github.com/smallnest/dailyagent/graph"
	"github.com/smallnest/dailyagent/prebuilt"
	"github.com/tmc/langchaingo/tools"
)

// DefaultRecursionLimit is the step ceiling applications use for a run.
const DefaultRecursionLimit = 50

// NewGraph builds the newspaper workflow:
//
//	input_parser -> supervisor -> search_agent <-> tool_executor
//	                    ^              |
//	                    +-- summarizer <+
//	supervisor -> newspaper_creator -> END
func NewGraph(opts Options) (*graph.StateGraph[State], error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	w := &workflow{
		opts:     opts,
		toolNode: prebuilt.NewToolNode([]tools.Tool{opts.Search}),
	}

	g := graph.NewStateGraph[State]()
	g.SetSchema(graph.NewStructSchema(State{}, Merge))

	g.AddNode(NodeInputParser, "Turn the request into a topic worklist", w.parseInput)
	g.AddNode(NodeSupervisor, "Hand out the next topic or finish", w.supervise)
	g.AddNode(NodeSearchAgent, "Search the web for the current topic", w.search)
	g.AddNode(NodeToolExecutor, "Run the requested searches", w.executeTools)
	g.AddNode(NodeSummarizer, "Summarize the search results", w.summarize)
	g.AddNode(NodeNewspaperCreator, "Write the edition from all digests", w.createNewspaper)

	g.SetEntryPoint(NodeInputParser)
	g.AddEdge(NodeInputParser, NodeSupervisor)
	g.AddConditionalEdge(NodeSupervisor, routeSupervisor, NodeSearchAgent, NodeNewspaperCreator)
	g.AddConditionalEdge(NodeSearchAgent, routeSearch, NodeToolExecutor, NodeSummarizer)
	g.AddEdge(NodeToolExecutor, NodeSearchAgent)
	g.AddEdge(NodeSummarizer, NodeSupervisor)
	g.AddEdge(NodeNewspaperCreator, graph.END)

	return g, nil
}

// Compile builds and compiles the workflow.
func Compile(opts Options) (*graph.StateRunnable[State], error) {
	g, err := NewGraph(opts)
	if err != nil {
		return nil, err
	}
	return g.Compile()
}

// CheckpointMetadata summarizes a state for checkpoint listings.
func CheckpointMetadata(s State) map[string]any {
	return map[string]any{
		"current_topic":    s.CurrentTopic,
		"topics_remaining": len(s.Topics),
		"sections":         len(s.Digests),
		"phase":            string(s.Phase),
	}
}

// Describe returns a one-line progress description of a completed step.
func Describe(node string, s State) string {
	switch node {
	case NodeInputParser:
		return fmt.Sprintf("planned %d topics: %s", len(s.Topics), strings.Join(s.Topics, ", "))
	case NodeSupervisor:
		if s.Phase == PhaseComplete {
			return "all topics processed"
		}
		return fmt.Sprintf("researching %s (%d left)", s.CurrentTopic, len(s.Topics))
	case NodeSearchAgent:
		if prebuilt.HasToolCalls(s.Messages) {
			return fmt.Sprintf("searching the web for %s", s.CurrentTopic)
		}
		return fmt.Sprintf("search results gathered for %s", s.CurrentTopic)
	case NodeToolExecutor:
		return "search results received"
	case NodeSummarizer:
		return fmt.Sprintf("summarized %d articles on %s", len(s.Digests[s.CurrentTopic]), s.CurrentTopic)
	case NodeNewspaperCreator:
		return fmt.Sprintf("edition written from %d sections", len(s.Digests))
	default:
		return ""
	}
}
