// Package tool provides the web search tools the newspaper workflow binds to
// its search step.
//
// Both tools implement github.com/tmc/langchaingo/tools.Tool. The input is
// either a bare query or the function-call arguments {"query": "..."}; the
// output is a numbered list of Title, URL and Content blocks with HTML
// stripped from titles and snippets, or "No results found".
//
//   - TavilySearch: POST https://api.tavily.com/search, key from TAVILY_API_KEY
//   - BraveSearch: GET https://api.search.brave.com/res/v1/web/search, key from BRAVE_API_KEY
//
// Example:
//
//	search, err := tool.NewSearchTool(tool.SearchConfig{Provider: "tavily", MaxResults: 3})
//	if err != nil {
//	    return err
//	}
//	out, err := search.Call(ctx, `{"query": "Formula 1 news today"}`)
package tool
