package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type mockModel struct {
	content  string
	err      error
	empty    bool
	messages []llms.MessageContent
	opts     llms.CallOptions
}

func (m *mockModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.messages = messages
	for _, opt := range options {
		opt(&m.opts)
	}
	if m.err != nil {
		return nil, m.err
	}
	if m.empty {
		return &llms.ContentResponse{}, nil
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: m.content}}}, nil
}

func (m *mockModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return "", nil
}

type parsed struct {
	IncludesGeneralNews bool     `json:"includes_general_news"`
	SpecificTopics      []string `json:"specific_topics"`
}

func TestExtract(t *testing.T) {
	m := &mockModel{content: "```json\n{\"includes_general_news\": true, \"specific_topics\": [\"Formula 1\"]}\n```"}

	out, err := Extract[parsed](context.Background(), m, "extract topics", "news and F1 please")
	require.NoError(t, err)
	assert.True(t, out.IncludesGeneralNews)
	assert.Equal(t, []string{"Formula 1"}, out.SpecificTopics)

	require.Len(t, m.messages, 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, m.messages[0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, m.messages[1].Role)
	assert.True(t, m.opts.JSONMode)
}

func TestExtract_ParseError(t *testing.T) {
	m := &mockModel{content: "I could not find any topics."}

	_, err := Extract[parsed](context.Background(), m, "extract", "x")
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "I could not find any topics.", perr.Raw)
}

func TestExtract_ModelError(t *testing.T) {
	boom := errors.New("503")
	_, err := Extract[parsed](context.Background(), &mockModel{err: boom}, "extract", "x")
	assert.ErrorIs(t, err, boom)

	_, err = Extract[parsed](context.Background(), &mockModel{empty: true}, "extract", "x")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestCleanJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, CleanJSON("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, CleanJSON("```\n{\"a\":1}```"))
	assert.Equal(t, `{"a":{"b":2}}`, CleanJSON(`Here you go: {"a":{"b":2}} hope it helps`))
	assert.Equal(t, "no json", CleanJSON("no json"))
}

func TestNewChatModel(t *testing.T) {
	_, err := NewChatModel(ModelConfig{Model: "moonshotai/kimi-k2-instruct"})
	assert.Error(t, err)

	m, err := NewChatModel(ModelConfig{APIKey: "k", Model: "openai/gpt-oss-120b"})
	require.NoError(t, err)
	assert.NotNil(t, m)
}
