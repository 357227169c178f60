package newspaper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/smallnest/dailyagent/graph"
	"github.com/smallnest/dailyagent/prebuilt"
	"github.com/smallnest/dailyagent/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

// scriptedModel plays every model role of the workflow. It tells the roles
// apart by the call options and the prompt it receives.
type scriptedModel struct {
	parsed    string
	summaries string
	runaway   bool
	parseErr  error

	toolRounds     int
	nudges         int
	summarizeCalls int
	newspaperCalls int
	newspaperInput string
}

func (m *scriptedModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	var opts llms.CallOptions
	for _, opt := range options {
		opt(&opts)
	}
	last := prebuilt.MessageText(messages[len(messages)-1])

	switch {
	case opts.JSONMode && strings.Contains(prebuilt.MessageText(messages[0]), "classify"):
		if m.parseErr != nil {
			return nil, m.parseErr
		}
		return reply(m.parsed), nil

	case opts.JSONMode:
		m.summarizeCalls++
		if m.summaries != "" {
			return reply(m.summaries), nil
		}
		return reply(`{"articles": [{"title": "Headline", "url": "https://example.com/a", "summary": "What happened."}]}`), nil

	case len(opts.Tools) > 0:
		m.toolRounds++
		if m.runaway || messages[len(messages)-1].Role == llms.ChatMessageTypeHuman {
			return &llms.ContentResponse{Choices: []*llms.ContentChoice{{
				ToolCalls: []llms.ToolCall{{
					ID:           fmt.Sprintf("call_%d", m.toolRounds),
					Type:         "function",
					FunctionCall: &llms.FunctionCall{Name: opts.Tools[0].Function.Name, Arguments: `{"query": "latest news"}`},
				}},
			}}}, nil
		}
		return reply("Collected results:\n" + last), nil

	case last == searchBudgetExhausted:
		m.nudges++
		return &llms.ContentResponse{Choices: []*llms.ContentChoice{{
			Content:   "Everything found so far.",
			ToolCalls: []llms.ToolCall{{ID: "late", Type: "function", FunctionCall: &llms.FunctionCall{Name: "fake_search"}}},
		}}}, nil

	default:
		m.newspaperCalls++
		m.newspaperInput = last
		return reply("# The Daily Agent\n\nToday's edition."), nil
	}
}

func (m *scriptedModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func reply(content string) *llms.ContentResponse {
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: content}}}
}

type fakeSearch struct {
	result string
	err    error
	calls  int
}

func (f *fakeSearch) Name() string        { return "fake_search" }
func (f *fakeSearch) Description() string { return "searches the web" }
func (f *fakeSearch) Call(ctx context.Context, input string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if f.result != "" {
		return f.result, nil
	}
	return "1. Title: Something happened\nURL: https://example.com/a\nContent: details\n\n", nil
}

var fixedNow = func() time.Time { return time.Date(2025, time.March, 7, 9, 0, 0, 0, time.UTC) }

func compile(t *testing.T, model *scriptedModel, search *fakeSearch, maxRounds int) *graph.StateRunnable[State] {
	t.Helper()
	runnable, err := Compile(Options{
		Model:           model,
		Search:          search,
		MaxSearchRounds: maxRounds,
		Now:             fixedNow,
	})
	require.NoError(t, err)
	return runnable
}

func TestWorkflow_GeneralNews(t *testing.T) {
	model := &scriptedModel{parsed: `{"includes_general_news": true, "specific_topics": []}`}
	search := &fakeSearch{}
	runnable := compile(t, model, search, 0)

	var remaining []int
	var supervisorRuns int
	record := graph.OnStep(func(_ context.Context, _ string, _ int, node string, state any) {
		if node != NodeSupervisor {
			return
		}
		supervisorRuns++
		remaining = append(remaining, len(state.(State).Topics))
	})

	final, err := runnable.InvokeWithConfig(context.Background(), NewRequest("Generate today's newspaper"), &graph.Config{
		RecursionLimit: DefaultRecursionLimit,
		Callbacks:      []graph.CallbackHandler{record},
	})
	require.NoError(t, err)

	assert.Equal(t, DefaultTopics, final.Processed)
	assert.Equal(t, DefaultTopics, final.Sections())
	assert.Len(t, final.Digests, 5)
	assert.Empty(t, final.Topics)
	assert.Equal(t, PhaseComplete, final.Phase)

	// one pop per topic, then the finishing run
	assert.Equal(t, 6, supervisorRuns)
	assert.Equal(t, []int{4, 3, 2, 1, 0, 0}, remaining)

	assert.Equal(t, 1, model.newspaperCalls)
	assert.Equal(t, 5, model.summarizeCalls)
	assert.Equal(t, 5, search.calls)
	assert.Equal(t, "# The Daily Agent\n\nToday's edition.", final.FinalOutput)

	assert.Contains(t, model.newspaperInput, "--- Section: World News ---")
	assert.Contains(t, model.newspaperInput, "Source: https://example.com/a")
	assert.Contains(t, model.newspaperInput, "March 07, 2025")
	assert.Contains(t, model.newspaperInput, "Generate today's newspaper")

	lastMsg := final.Messages[len(final.Messages)-1]
	assert.Equal(t, CompletionMessage, prebuilt.MessageText(lastMsg))
}

func TestWorkflow_SingleTopic(t *testing.T) {
	model := &scriptedModel{parsed: `{"includes_general_news": false, "specific_topics": ["Formula 1"]}`}
	runnable := compile(t, model, &fakeSearch{}, 0)

	final, err := runnable.Invoke(context.Background(), NewRequest("Tell me about Formula 1"))
	require.NoError(t, err)

	require.Len(t, final.Digests, 1)
	assert.Contains(t, final.Digests, "Formula 1")
	assert.Equal(t, "Formula 1", final.CurrentTopic)
	assert.Equal(t, 1, model.newspaperCalls)
	assert.Contains(t, model.newspaperInput, "--- Section: Formula 1 ---")
}

func TestWorkflow_NoIntentUsesDefaults(t *testing.T) {
	model := &scriptedModel{parsed: `{"includes_general_news": false, "specific_topics": []}`}
	runnable := compile(t, model, &fakeSearch{}, 0)

	final, err := runnable.InvokeWithConfig(context.Background(), NewRequest("hello"), &graph.Config{RecursionLimit: DefaultRecursionLimit})
	require.NoError(t, err)
	assert.ElementsMatch(t, DefaultTopics, final.Sections())
}

func TestWorkflow_NoResults(t *testing.T) {
	model := &scriptedModel{
		parsed:    `{"includes_general_news": false, "specific_topics": ["Quantum gardening"]}`,
		summaries: `{"articles": []}`,
	}
	runnable := compile(t, model, &fakeSearch{result: tool.NoResults}, 0)

	final, err := runnable.Invoke(context.Background(), NewRequest("Any quantum gardening news?"))
	require.NoError(t, err)

	require.Contains(t, final.Digests, "Quantum gardening")
	articles := final.Digests["Quantum gardening"]
	require.Len(t, articles, 1)
	assert.Equal(t, "Quantum gardening", articles[0].Title)
	assert.Equal(t, EmptyDigestSummary, articles[0].Summary)
	assert.Nil(t, articles[0].URL)
	assert.NotContains(t, model.newspaperInput, "Source:")
}

func TestWorkflow_SearchFailureKeepsEdition(t *testing.T) {
	model := &scriptedModel{
		parsed:    `{"includes_general_news": false, "specific_topics": ["Formula 1"]}`,
		summaries: `{"articles": []}`,
	}
	search := &fakeSearch{err: errors.New("tavily api returned status: 502")}
	runnable := compile(t, model, search, 0)

	final, err := runnable.Invoke(context.Background(), NewRequest("Tell me about Formula 1"))
	require.NoError(t, err)

	assert.Equal(t, 1, search.calls)
	require.Contains(t, final.Digests, "Formula 1")
	assert.Equal(t, EmptyDigestSummary, final.Digests["Formula 1"][0].Summary)
	assert.Equal(t, 1, model.newspaperCalls)
	assert.NotEmpty(t, final.FinalOutput)

	var toolText string
	for _, msg := range final.Messages {
		if msg.Role == llms.ChatMessageTypeTool {
			toolText = prebuilt.MessageText(msg)
		}
	}
	assert.Contains(t, toolText, "status: 502")
}

func TestWorkflow_RunawayToolCallsAreBounded(t *testing.T) {
	model := &scriptedModel{
		parsed:  `{"includes_general_news": false, "specific_topics": ["Formula 1"]}`,
		runaway: true,
	}
	search := &fakeSearch{}
	runnable := compile(t, model, search, 3)

	final, err := runnable.Invoke(context.Background(), NewRequest("Tell me about Formula 1"))
	require.NoError(t, err)

	assert.Equal(t, 3, model.toolRounds)
	assert.Equal(t, 3, search.calls)
	assert.Equal(t, 1, model.nudges)
	assert.Equal(t, 4, final.SearchRounds["Formula 1"])
	assert.Contains(t, final.Digests, "Formula 1")
	assert.Equal(t, 1, model.newspaperCalls)
}

func TestWorkflow_RecursionLimit(t *testing.T) {
	model := &scriptedModel{parsed: `{"includes_general_news": true, "specific_topics": []}`}
	runnable := compile(t, model, &fakeSearch{}, 0)

	_, err := runnable.InvokeWithConfig(context.Background(), NewRequest("Generate today's newspaper"), &graph.Config{RecursionLimit: 10})
	require.Error(t, err)

	var recErr *graph.GraphRecursionError
	require.True(t, errors.As(err, &recErr))
	assert.Equal(t, 10, recErr.Limit)
	assert.Zero(t, model.newspaperCalls)
}

func TestWorkflow_NodeError(t *testing.T) {
	model := &scriptedModel{parseErr: errors.New("rate limited")}
	runnable := compile(t, model, &fakeSearch{}, 0)

	_, err := runnable.Invoke(context.Background(), NewRequest("news"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error in node input_parser")
	assert.Contains(t, err.Error(), "rate limited")
}

func TestWorkflow_Stream(t *testing.T) {
	model := &scriptedModel{parsed: `{"includes_general_news": false, "specific_topics": ["Formula 1"]}`}
	runnable := compile(t, model, &fakeSearch{}, 0)

	var nodes []string
	var last graph.StreamEvent[State]
	for ev := range runnable.Stream(context.Background(), NewRequest("Tell me about Formula 1"), nil) {
		if ev.Done {
			last = ev
			continue
		}
		nodes = append(nodes, ev.NodeName)
	}

	require.NoError(t, last.Error)
	assert.Equal(t, []string{
		NodeInputParser,
		NodeSupervisor,
		NodeSearchAgent,
		NodeToolExecutor,
		NodeSearchAgent,
		NodeSummarizer,
		NodeSupervisor,
		NodeNewspaperCreator,
	}, nodes)
	assert.NotEmpty(t, last.State.FinalOutput)
}

func TestSupervisor_EmptyWorklistIsIdempotent(t *testing.T) {
	w := &workflow{opts: Options{Now: fixedNow}}
	s := State{
		CurrentTopic: "Sports",
		Digests:      map[string][]ArticleSummary{"Sports": {{Title: "t", Summary: "s"}}},
		Topics:       []string{},
	}

	for i := 0; i < 2; i++ {
		update, err := w.supervise(context.Background(), s)
		require.NoError(t, err)
		assert.Nil(t, update.Topics)
		assert.Equal(t, PhaseComplete, update.Phase)

		s, err = Merge(s, update)
		require.NoError(t, err)
		assert.Equal(t, "Sports", s.CurrentTopic)
		assert.Empty(t, s.Topics)
		assert.Len(t, s.Digests, 1)
		assert.Equal(t, NodeNewspaperCreator, routeSupervisor(context.Background(), s))
	}
	assert.Len(t, s.Messages, 2)
}

func TestSupervisor_PopsHead(t *testing.T) {
	w := &workflow{opts: Options{Now: fixedNow}}
	s := State{Topics: []string{"Technology", "Sports"}}

	update, err := w.supervise(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, "Technology", update.CurrentTopic)
	assert.Equal(t, []string{"Sports"}, update.Topics)
	assert.Equal(t, PhaseTopicsRemaining, update.Phase)

	require.Len(t, update.Messages, 1)
	text := prebuilt.MessageText(update.Messages[0])
	assert.Contains(t, text, "March 07, 2025")
	assert.Contains(t, text, "'Technology'")

	// the caller's worklist is untouched
	assert.Equal(t, []string{"Technology", "Sports"}, s.Topics)
}

func TestBuildWorklist(t *testing.T) {
	defaults := []string{"World News", "Sports"}

	tests := []struct {
		name   string
		parsed ParsedRequest
		want   []string
	}{
		{"no intent", ParsedRequest{}, []string{"World News", "Sports"}},
		{"general only", ParsedRequest{IncludesGeneralNews: true}, []string{"World News", "Sports"}},
		{"topics only", ParsedRequest{SpecificTopics: []string{"Formula 1", "AI"}}, []string{"Formula 1", "AI"}},
		{"general and topics", ParsedRequest{IncludesGeneralNews: true, SpecificTopics: []string{"Formula 1"}}, []string{"World News", "Sports", "Formula 1"}},
		{"duplicates and blanks", ParsedRequest{IncludesGeneralNews: true, SpecificTopics: []string{" sports ", "", "  ", "AI", "ai"}}, []string{"World News", "Sports", "AI"}},
		{"only blanks", ParsedRequest{SpecificTopics: []string{" "}}, []string{"World News", "Sports"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildWorklist(defaults, tt.parsed))
		})
	}

	got := BuildWorklist(defaults, ParsedRequest{})
	got[0] = "changed"
	assert.Equal(t, "World News", defaults[0])
}

func TestNewGraph_Validation(t *testing.T) {
	_, err := NewGraph(Options{Search: &fakeSearch{}})
	assert.Error(t, err)

	_, err = NewGraph(Options{Model: &scriptedModel{}})
	assert.Error(t, err)

	g, err := NewGraph(Options{Model: &scriptedModel{}, Search: &fakeSearch{}})
	require.NoError(t, err)
	assert.Len(t, g.Nodes(), 6)
}

func TestCheckpointMetadata(t *testing.T) {
	md := CheckpointMetadata(State{
		CurrentTopic: "Sports",
		Topics:       []string{"AI"},
		Digests:      map[string][]ArticleSummary{"Tech": nil},
		Phase:        PhaseTopicsRemaining,
	})
	assert.Equal(t, "Sports", md["current_topic"])
	assert.Equal(t, 1, md["topics_remaining"])
	assert.Equal(t, 1, md["sections"])
	assert.Equal(t, "topics_remaining", md["phase"])
}

func TestDescribe(t *testing.T) {
	s := State{
		Topics:       []string{"Sports"},
		CurrentTopic: "Technology",
		Digests:      map[string][]ArticleSummary{"Technology": {{Title: "a"}, {Title: "b"}}},
	}
	assert.Equal(t, "planned 1 topics: Sports", Describe(NodeInputParser, s))
	assert.Equal(t, "researching Technology (1 left)", Describe(NodeSupervisor, s))
	assert.Equal(t, "search results gathered for Technology", Describe(NodeSearchAgent, s))
	assert.Equal(t, "summarized 2 articles on Technology", Describe(NodeSummarizer, s))
	assert.Equal(t, "edition written from 1 sections", Describe(NodeNewspaperCreator, s))
	assert.Empty(t, Describe("unknown", s))

	s.Phase = PhaseComplete
	assert.Equal(t, "all topics processed", Describe(NodeSupervisor, s))
}
