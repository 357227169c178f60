package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

// ErrEmptyResponse is returned when the model produced no choices.
var ErrEmptyResponse = errors.New("empty response from model")

// ParseError reports a structured-output reply that could not be decoded.
type ParseError struct {
	// Raw is the text the model returned
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse structured output: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Extract asks the model for a JSON object and decodes it into T.
// instructions is sent as the system message and should describe the
// expected fields; input is the human message.
func Extract[T any](ctx context.Context, model llms.Model, instructions, input string) (T, error) {
	var out T

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, instructions+"\n\nRespond with a single JSON object and nothing else."),
		llms.TextParts(llms.ChatMessageTypeHuman, input),
	}

	resp, err := model.GenerateContent(ctx, messages, llms.WithJSONMode())
	if err != nil {
		return out, err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return out, ErrEmptyResponse
	}

	raw := resp.Choices[0].Content
	if err := json.Unmarshal([]byte(CleanJSON(raw)), &out); err != nil {
		return out, &ParseError{Raw: raw, Err: err}
	}
	return out, nil
}

// CleanJSON strips Markdown code fences and any prose around the outermost JSON object.
func CleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}
