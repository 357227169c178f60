// Daily Agent - a newspaper researched and written by language models
//
// Daily Agent turns a request such as "Generate today's newspaper" or "Tell me
// about Formula 1" into a complete Markdown edition of "The Daily Agent". The
// work is a graph of named nodes sharing one state record:
//
//	input_parser -> supervisor -> search_agent <-> tool_executor
//	                    ^              |
//	                    +-- summarizer <+
//	supervisor -> newspaper_creator -> END
//
// The parser turns the request into a worklist of topics. The supervisor
// hands the topics out one at a time, the search agent researches each with a
// web search tool, and the summarizer files a digest per topic. Once the
// worklist is empty the newspaper creator writes the edition from all
// digests.
//
// # Quick Start
//
// Set the credentials and run the CLI:
//
//	export GROQ_API_KEY=...
//	export TAVILY_API_KEY=...
//	go run ./cmd/dailyagent generate "Generate today's newspaper" --html today.html
//
// Or serve the HTTP API, which streams every step as Server-Sent Events:
//
//	go run ./cmd/dailyagent serve --addr :8080
//	curl -N -d '{"request":"Tell me about Formula 1"}' -H 'Content-Type: application/json' \
//		localhost:8080/api/newspapers
//
// # Packages
//
//   - graph: typed state graph runner with streaming, callbacks,
//     checkpointing and Mermaid export
//   - newspaper: the workflow nodes, state and prompts
//   - llm: chat model construction and structured JSON output
//   - tool: Tavily and Brave web search tools
//   - prebuilt: tool execution for model tool calls
//   - store: step checkpoints in memory, SQLite, Redis or PostgreSQL
//   - config: settings from dailyagent.yaml and the environment
//   - metrics: Prometheus metrics for runs, nodes and tools
//   - render: Markdown to sanitized HTML and terminal progress lines
//   - server: HTTP API
//   - log: leveled logging backed by golog
//
// # Configuration
//
// Settings are read from dailyagent.yaml, DAILYAGENT_ environment variables
// (DAILYAGENT_SEARCH_PROVIDER=brave) and the GROQ_API_KEY, TAVILY_API_KEY and
// BRAVE_API_KEY variables:
//
//	models:
//	  main: moonshotai/kimi-k2-instruct
//	  newspaper: openai/gpt-oss-120b
//	search:
//	  provider: tavily
//	  max_results: 3
//	  max_rounds: 5
//	graph:
//	  recursion_limit: 50
//	store:
//	  driver: sqlite
//	  dsn: dailyagent.db
package dailyagent // import "github.com/smallnest/dailyagent"
