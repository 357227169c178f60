package newspaper

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/smallnest/dailyagent/llm"
	"github.com/smallnest/dailyagent/log"
	"github.com/smallnest/dailyagent/prebuilt"
	"github.com/smallnest/dailyagent/tool"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/tools"
)

// Node names used for routing, streaming, checkpoints and metrics.
const (
	NodeInputParser      = "input_parser"
	NodeSupervisor       = "supervisor"
	NodeSearchAgent      = "search_agent"
	NodeToolExecutor     = "tool_executor"
	NodeSummarizer       = "summarizer"
	NodeNewspaperCreator = "newspaper_creator"
)

// DefaultMaxSearchRounds bounds the model invocations of the search step per topic.
const DefaultMaxSearchRounds = 5

// ErrNoCurrentTopic is returned by the summarizer when no topic is being processed.
var ErrNoCurrentTopic = errors.New("no current topic")

// Options configures the workflow.
type Options struct {
	// Model drives parsing, searching and summarizing.
	Model llms.Model

	// NewspaperModel writes the final edition. Defaults to Model.
	NewspaperModel llms.Model

	// Search is the single tool bound to the search step.
	Search tools.Tool

	// DefaultTopics is used for general requests and requests that name nothing.
	// Defaults to DefaultTopics.
	DefaultTopics []string

	// MaxSearchRounds defaults to DefaultMaxSearchRounds.
	MaxSearchRounds int

	// Now returns the current time for the dates in prompts. Defaults to time.Now.
	Now func() time.Time
}

func (o *Options) validate() error {
	if o.Model == nil {
		return errors.New("newspaper: model is required")
	}
	if o.Search == nil {
		return errors.New("newspaper: search tool is required")
	}
	if o.NewspaperModel == nil {
		o.NewspaperModel = o.Model
	}
	if len(o.DefaultTopics) == 0 {
		o.DefaultTopics = DefaultTopics
	}
	if o.MaxSearchRounds <= 0 {
		o.MaxSearchRounds = DefaultMaxSearchRounds
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return nil
}

// BuildWorklist combines the default topics, when general news is requested,
// with the explicitly named topics. Blank and duplicate topics are dropped;
// an empty result falls back to the defaults.
func BuildWorklist(defaults []string, parsed ParsedRequest) []string {
	var candidates []string
	if parsed.IncludesGeneralNews {
		candidates = append(candidates, defaults...)
	}
	candidates = append(candidates, parsed.SpecificTopics...)

	seen := make(map[string]bool, len(candidates))
	topics := make([]string, 0, len(candidates))
	for _, topic := range candidates {
		topic = strings.TrimSpace(topic)
		key := strings.ToLower(topic)
		if topic == "" || seen[key] {
			continue
		}
		seen[key] = true
		topics = append(topics, topic)
	}

	if len(topics) == 0 {
		return slices.Clone(defaults)
	}
	return topics
}

type workflow struct {
	opts     Options
	toolNode *prebuilt.ToolNode
}

func (w *workflow) date() string {
	return w.opts.Now().Format(DateLayout)
}

func (w *workflow) parseInput(ctx context.Context, s State) (State, error) {
	log.Info("--- parsing user request ---")

	request := latestHuman(s.Messages)
	parsed, err := llm.Extract[ParsedRequest](ctx, w.opts.Model, parserInstructions, request)
	if err != nil {
		return State{}, fmt.Errorf("failed to parse request: %w", err)
	}

	topics := BuildWorklist(w.opts.DefaultTopics, parsed)
	log.Info("topics to process: %s", strings.Join(topics, ", "))
	return State{Topics: topics}, nil
}

func (w *workflow) supervise(_ context.Context, s State) (State, error) {
	log.Info("--- supervisor ---")

	if len(s.Topics) == 0 {
		log.Info("all topics processed")
		return State{
			Messages: []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, CompletionMessage)},
			Phase:    PhaseComplete,
		}, nil
	}

	topic := s.Topics[0]
	log.Info("next topic: %s (%d remaining)", topic, len(s.Topics)-1)
	return State{
		Messages:     []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, topicInstruction(w.date(), topic))},
		Topics:       append([]string{}, s.Topics[1:]...),
		CurrentTopic: topic,
		Phase:        PhaseTopicsRemaining,
	}, nil
}

func (w *workflow) search(ctx context.Context, s State) (State, error) {
	rounds := s.SearchRounds[s.CurrentTopic]
	log.Info("--- search agent: %s (round %d) ---", s.CurrentTopic, rounds+1)

	messages := s.Messages
	var update State
	var options []llms.CallOption
	exhausted := rounds >= w.opts.MaxSearchRounds
	if exhausted {
		log.Warn("search budget of %d rounds exhausted for %s", w.opts.MaxSearchRounds, s.CurrentTopic)
		nudge := llms.TextParts(llms.ChatMessageTypeHuman, searchBudgetExhausted)
		messages = append(slices.Clip(messages), nudge)
		update.Messages = append(update.Messages, nudge)
	} else {
		options = append(options,
			llms.WithTools(w.toolNode.Definitions(tool.SearchParameters)),
			llms.WithToolChoice("auto"),
		)
	}

	resp, err := w.opts.Model.GenerateContent(ctx, messages, options...)
	if err != nil {
		return State{}, err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return State{}, llm.ErrEmptyResponse
	}

	choice := *resp.Choices[0]
	if exhausted {
		choice.ToolCalls = nil
	}
	log.Debug("search agent replied with %d characters and %d tool calls", len(choice.Content), len(choice.ToolCalls))

	update.Messages = append(update.Messages, prebuilt.AIMessage(&choice))
	update.SearchRounds = map[string]int{s.CurrentTopic: rounds + 1}
	return update, nil
}

func (w *workflow) executeTools(ctx context.Context, s State) (State, error) {
	log.Info("--- executing tools ---")
	out, err := w.toolNode.Invoke(ctx, s.Messages)
	if err != nil {
		return State{}, err
	}
	return State{Messages: out}, nil
}

func (w *workflow) summarize(ctx context.Context, s State) (State, error) {
	topic := s.CurrentTopic
	if topic == "" {
		return State{}, ErrNoCurrentTopic
	}
	log.Info("--- summarizing: %s ---", topic)

	var raw string
	if n := len(s.Messages); n > 0 {
		raw = prebuilt.MessageText(s.Messages[n-1])
	}
	log.Debug("summarizer input is %d characters", len(raw))

	out, err := llm.Extract[Summaries](ctx, w.opts.Model, summarizerInstructions, raw)
	if err != nil {
		return State{}, fmt.Errorf("failed to summarize %s: %w", topic, err)
	}

	articles := make([]ArticleSummary, 0, len(out.Articles))
	for _, a := range out.Articles {
		if a.URL != nil && strings.TrimSpace(*a.URL) == "" {
			a.URL = nil
		}
		articles = append(articles, a)
	}
	if len(articles) == 0 {
		log.Warn("no articles found for %s", topic)
		articles = append(articles, ArticleSummary{Title: topic, Summary: EmptyDigestSummary})
	}

	return State{
		Digests:   map[string][]ArticleSummary{topic: articles},
		Processed: []string{topic},
	}, nil
}

func (w *workflow) createNewspaper(ctx context.Context, s State) (State, error) {
	log.Info("--- creating newspaper from %d sections ---", len(s.Digests))

	prompt := newspaperPrompt(w.date(), s.Request(), FormatDigests(s))
	edition, err := llms.GenerateFromSinglePrompt(ctx, w.opts.NewspaperModel, prompt)
	if err != nil {
		return State{}, fmt.Errorf("failed to create newspaper: %w", err)
	}
	edition = strings.TrimSpace(edition)
	if edition == "" {
		return State{}, llm.ErrEmptyResponse
	}
	return State{FinalOutput: edition}, nil
}

func routeSupervisor(_ context.Context, s State) string {
	if s.Phase == PhaseComplete {
		return NodeNewspaperCreator
	}
	return NodeSearchAgent
}

func routeSearch(_ context.Context, s State) string {
	if prebuilt.HasToolCalls(s.Messages) {
		return NodeToolExecutor
	}
	return NodeSummarizer
}

func latestHuman(messages []llms.MessageContent) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == llms.ChatMessageTypeHuman {
			return prebuilt.MessageText(messages[i])
		}
	}
	return ""
}
