package tool

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StripHTML returns the visible text of an HTML fragment with whitespace collapsed.
// Plain text passes through unchanged apart from whitespace.
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	doc.Find("script, style, noscript").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// SearchParameters is the JSON schema of the single argument search tools accept.
var SearchParameters = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"query": map[string]any{
			"type":        "string",
			"description": "The search query",
		},
	},
	"required": []string{"query"},
}

// ParseQuery extracts the query from tool input. Models send the function
// arguments as {"query": "..."}; anything else is taken as the query itself.
func ParseQuery(input string) string {
	trimmed := strings.TrimSpace(input)
	if strings.HasPrefix(trimmed, "{") {
		var args struct {
			Query string `json:"query"`
		}
		if err := json.Unmarshal([]byte(trimmed), &args); err == nil && args.Query != "" {
			return strings.TrimSpace(args.Query)
		}
	}
	return trimmed
}

// SearchResult is one hit returned by a search provider.
type SearchResult struct {
	Title   string
	URL     string
	Content string
}

// FormatResults renders results the way the search tools hand them to the model.
func FormatResults(results []SearchResult) string {
	var sb strings.Builder
	for i, r := range results {
		sb.WriteString(formatResult(i+1, r))
	}
	if sb.Len() == 0 {
		return NoResults
	}
	return sb.String()
}

// NoResults is returned by search tools when the provider found nothing.
const NoResults = "No results found"

func formatResult(n int, r SearchResult) string {
	return fmt.Sprintf("%d. Title: %s\nURL: %s\nContent: %s\n\n",
		n, StripHTML(r.Title), r.URL, StripHTML(r.Content))
}
