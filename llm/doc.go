// Package llm wires chat models and structured output for the newspaper workflow.
//
// NewChatModel builds a github.com/tmc/langchaingo/llms/openai model pointed
// at an OpenAI-compatible endpoint (Groq by default). Extract requests JSON
// mode, strips Markdown fences and decodes the reply into a Go struct; a reply
// that does not decode is reported as *ParseError carrying the raw text.
package llm
