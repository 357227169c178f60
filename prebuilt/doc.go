// Package prebuilt provides reusable graph building blocks for tool-calling loops.
//
// ToolNode executes the tool calls found in the most recent AI message and
// answers each with a tool message; HasToolCalls is the routing condition
// that decides between running tools and moving on.
//
//	tn := prebuilt.NewToolNode([]tools.Tool{search})
//	resp, err := model.GenerateContent(ctx, messages, llms.WithTools(tn.Definitions(tool.SearchParameters)))
//	...
//	msg := prebuilt.AIMessage(resp.Choices[0])
//	if prebuilt.HasToolCalls([]llms.MessageContent{msg}) {
//	    toolMessages, err := tn.Invoke(ctx, append(messages, msg))
//	}
package prebuilt
