// Package render turns a newspaper edition into sanitized HTML and styles the
// progress lines printed while a run is in flight.
package render

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

func articlePolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		p.AllowURLSchemes("http", "https", "mailto")
		p.RequireParseableURLs(true)
		p.AddTargetBlankToFullyQualifiedLinks(true)
		policy = p
	})
	return policy
}

// HTML renders Markdown to an HTML fragment. Model output is untrusted, so
// the result is sanitized.
func HTML(md string) string {
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs
	p := parser.NewWithExtensions(extensions)
	doc := p.Parse([]byte(md))

	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	return string(articlePolicy().SanitizeBytes(markdown.Render(doc, renderer)))
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
<style>
body { max-width: 46rem; margin: 2rem auto; padding: 0 1rem; font-family: Georgia, serif; line-height: 1.6; color: #222; }
h1 { font-size: 2.6rem; text-align: center; border-bottom: 3px double #222; }
h2 { border-bottom: 1px solid #ccc; margin-top: 2.5rem; }
a { color: #1a4d8f; }
</style>
</head>
<body>
%s
</body>
</html>
`

// Page renders Markdown as a standalone HTML document.
func Page(title, md string) string {
	title = strings.TrimSpace(bluemonday.StrictPolicy().Sanitize(title))
	if title == "" {
		title = "The Daily Agent"
	}
	return fmt.Sprintf(pageTemplate, title, HTML(md))
}
