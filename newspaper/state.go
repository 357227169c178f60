package newspaper

import (
	"maps"
	"slices"

	"github.com/smallnest/dailyagent/prebuilt"
	"github.com/tmc/langchaingo/llms"
)

// Phase tells the router whether topics remain to be researched.
type Phase string

const (
	PhaseTopicsRemaining Phase = "topics_remaining"
	PhaseComplete        Phase = "complete"
)

// ArticleSummary is one summarized article. URL is nil when no source was found.
type ArticleSummary struct {
	Title   string  `json:"title"`
	URL     *string `json:"url"`
	Summary string  `json:"summary"`
}

// Summaries is the structured output of the summarizer.
type Summaries struct {
	Articles []ArticleSummary `json:"articles"`
}

// ParsedRequest is the structured output of the request parser.
type ParsedRequest struct {
	IncludesGeneralNews bool     `json:"includes_general_news"`
	SpecificTopics      []string `json:"specific_topics"`
}

// State is threaded through every node of the workflow.
//
// Nodes return partial updates that Merge folds into the current state:
// messages and processed topics are appended, digests and search rounds are
// upserted, and scalars are overwritten when set. A nil Topics slice leaves
// the worklist unchanged; an empty non-nil slice empties it.
type State struct {
	Messages     []llms.MessageContent       `json:"messages"`
	Topics       []string                    `json:"topics_to_process"`
	CurrentTopic string                      `json:"current_topic"`
	Digests      map[string][]ArticleSummary `json:"completed_digests"`
	Processed    []string                    `json:"processed_topics"`
	SearchRounds map[string]int              `json:"search_rounds"`
	Phase        Phase                       `json:"phase"`
	FinalOutput  string                      `json:"final_output"`
}

// NewRequest returns the initial state for a user request.
func NewRequest(text string) State {
	return State{
		Messages: []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, text)},
	}
}

// Merge folds a node's partial update into the current state. Maps are
// copied so earlier snapshots handed to callbacks never change.
func Merge(current, update State) (State, error) {
	if len(update.Messages) > 0 {
		current.Messages = append(slices.Clip(current.Messages), update.Messages...)
	}
	if update.Topics != nil {
		current.Topics = update.Topics
	}
	if update.CurrentTopic != "" {
		current.CurrentTopic = update.CurrentTopic
	}
	if len(update.Digests) > 0 {
		digests := make(map[string][]ArticleSummary, len(current.Digests)+len(update.Digests))
		maps.Copy(digests, current.Digests)
		maps.Copy(digests, update.Digests)
		current.Digests = digests
	}
	for _, topic := range update.Processed {
		if !slices.Contains(current.Processed, topic) {
			current.Processed = append(slices.Clip(current.Processed), topic)
		}
	}
	if len(update.SearchRounds) > 0 {
		rounds := make(map[string]int, len(current.SearchRounds)+len(update.SearchRounds))
		maps.Copy(rounds, current.SearchRounds)
		maps.Copy(rounds, update.SearchRounds)
		current.SearchRounds = rounds
	}
	if update.Phase != "" {
		current.Phase = update.Phase
	}
	if update.FinalOutput != "" {
		current.FinalOutput = update.FinalOutput
	}
	return current, nil
}

// Request returns the text of the first human message, the user's original request.
func (s State) Request() string {
	for _, msg := range s.Messages {
		if msg.Role == llms.ChatMessageTypeHuman {
			return prebuilt.MessageText(msg)
		}
	}
	return ""
}

// Sections returns the digest topics in the order they were summarized.
// Topics present in Digests but never recorded as processed follow, sorted.
func (s State) Sections() []string {
	sections := make([]string, 0, len(s.Digests))
	for _, topic := range s.Processed {
		if _, ok := s.Digests[topic]; ok {
			sections = append(sections, topic)
		}
	}
	var rest []string
	for topic := range s.Digests {
		if !slices.Contains(sections, topic) {
			rest = append(rest, topic)
		}
	}
	slices.Sort(rest)
	return append(sections, rest...)
}
