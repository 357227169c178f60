package prebuilt

import (
	"context"
	"fmt"

	"github.com/smallnest/dailyagent/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/tools"
)

// ToolNode executes the tool calls requested by the most recent AI message.
type ToolNode struct {
	tools map[string]tools.Tool
	order []string
}

// NewToolNode creates a ToolNode for the given tools.
func NewToolNode(inputTools []tools.Tool) *ToolNode {
	tn := &ToolNode{tools: make(map[string]tools.Tool, len(inputTools))}
	for _, t := range inputTools {
		tn.tools[t.Name()] = t
		tn.order = append(tn.order, t.Name())
	}
	return tn
}

// Definitions returns the function definitions to bind the tools to a model call.
// Every tool takes a single "query" string argument.
func (tn *ToolNode) Definitions(parameters any) []llms.Tool {
	defs := make([]llms.Tool, 0, len(tn.order))
	for _, name := range tn.order {
		defs = append(defs, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        name,
				Description: tn.tools[name].Description(),
				Parameters:  parameters,
			},
		})
	}
	return defs
}

// Invoke runs every tool call of the last message in order and returns one
// tool message per call. A call naming an unknown tool or a tool that fails is
// answered with an error message so the model can correct itself or move on.
func (tn *ToolNode) Invoke(ctx context.Context, messages []llms.MessageContent) ([]llms.MessageContent, error) {
	calls := PendingToolCalls(messages)
	if len(calls) == 0 {
		return nil, fmt.Errorf("no tool calls in last message")
	}

	out := make([]llms.MessageContent, 0, len(calls))
	for _, tc := range calls {
		name := tc.FunctionCall.Name
		t, ok := tn.tools[name]
		if !ok {
			log.Warn("model requested unknown tool %q", name)
			out = append(out, toolResponse(tc, fmt.Sprintf("Error: %s is not a valid tool.", name)))
			continue
		}

		log.Debug("calling tool %s with %s", name, tc.FunctionCall.Arguments)
		result, err := t.Call(ctx, tc.FunctionCall.Arguments)
		if err != nil {
			log.Warn("tool %s failed: %v", name, err)
			out = append(out, toolResponse(tc, fmt.Sprintf("Error: %s failed: %v", name, err)))
			continue
		}
		out = append(out, toolResponse(tc, result))
	}
	return out, nil
}

func toolResponse(tc llms.ToolCall, content string) llms.MessageContent {
	return llms.MessageContent{
		Role: llms.ChatMessageTypeTool,
		Parts: []llms.ContentPart{
			llms.ToolCallResponse{
				ToolCallID: tc.ID,
				Name:       tc.FunctionCall.Name,
				Content:    content,
			},
		},
	}
}

// PendingToolCalls returns the tool calls carried by the last message when it is an AI message.
func PendingToolCalls(messages []llms.MessageContent) []llms.ToolCall {
	if len(messages) == 0 {
		return nil
	}
	last := messages[len(messages)-1]
	if last.Role != llms.ChatMessageTypeAI {
		return nil
	}
	var calls []llms.ToolCall
	for _, part := range last.Parts {
		if tc, ok := part.(llms.ToolCall); ok && tc.FunctionCall != nil {
			calls = append(calls, tc)
		}
	}
	return calls
}

// HasToolCalls reports whether the last message requests any tool calls.
func HasToolCalls(messages []llms.MessageContent) bool {
	return len(PendingToolCalls(messages)) > 0
}

// AIMessage converts a model choice into a conversation message, keeping its tool calls.
func AIMessage(choice *llms.ContentChoice) llms.MessageContent {
	msg := llms.MessageContent{Role: llms.ChatMessageTypeAI}
	if choice.Content != "" {
		msg.Parts = append(msg.Parts, llms.TextContent{Text: choice.Content})
	}
	for _, tc := range choice.ToolCalls {
		msg.Parts = append(msg.Parts, tc)
	}
	return msg
}

// MessageText concatenates the text of a message. Tool responses count as text.
func MessageText(msg llms.MessageContent) string {
	var text string
	for _, part := range msg.Parts {
		switch p := part.(type) {
		case llms.TextContent:
			text += p.Text
		case llms.ToolCallResponse:
			text += p.Content
		}
	}
	return text
}
