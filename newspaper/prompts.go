package newspaper

import (
	"fmt"
	"strings"
)

// DateLayout formats dates the way they appear in prompts, e.g. "March 07, 2025".
const DateLayout = "January 02, 2006"

// CompletionMessage is appended by the supervisor once every topic is processed.
const CompletionMessage = "All topics processed. Finishing."

// EmptyDigestSummary is stored for a topic whose search produced nothing usable.
const EmptyDigestSummary = "No reporting was available for this topic."

// DefaultTopics is the topic list used for general news requests.
var DefaultTopics = []string{
	"World News",
	"India National News",
	"Business & Economy",
	"Technology",
	"Sports",
}

const parserInstructions = `You read a user's request for a news digest and classify it.

Decide two things:
1. includes_general_news: true when the user asks for the news in general, for example "today's news" or "the daily paper".
2. specific_topics: every distinct topic the user names explicitly, for example "Formula 1" or "AI regulation", in the order mentioned. Use an empty list when none are named.

JSON shape: {"includes_general_news": bool, "specific_topics": [string]}`

func topicInstruction(date, topic string) string {
	return fmt.Sprintf(`Find news published on or around today's date, %s, about the topic: '%s'.

Search for the three or four most relevant articles from the last few days, then gather the results into one block of text for the summarizer.`, date, topic)
}

const searchBudgetExhausted = "The search budget for this topic is used up. Do not call any more tools; compile what you have found so far into one block of text."

const summarizerInstructions = `You are a news analyst. Turn the raw search results you are given into detailed article summaries.

For each article, extract its headline and source URL and write a summary of two or three paragraphs covering background, the event itself, and what it means.

Fidelity matters more than length. When the raw data is thin, write a single short paragraph from what is there. Never add facts that are not in the raw data. Use null for the url when none is given.

JSON shape: {"articles": [{"title": string, "url": string or null, "summary": string}]}`

// FormatDigests renders the digest sections the assembler hands to the newspaper model.
func FormatDigests(s State) string {
	var sb strings.Builder
	for _, topic := range s.Sections() {
		fmt.Fprintf(&sb, "--- Section: %s ---\n\n", topic)
		for _, article := range s.Digests[topic] {
			fmt.Fprintf(&sb, "Title: %s\n", article.Title)
			if article.URL != nil && *article.URL != "" {
				fmt.Fprintf(&sb, "Source: %s\n", *article.URL)
			}
			fmt.Fprintf(&sb, "Summary:\n%s\n\n", article.Summary)
		}
	}
	return sb.String()
}

func newspaperPrompt(date, request, digests string) string {
	return fmt.Sprintf(`You are the Editor-in-Chief of "The Daily Agent", a newspaper written by AI reporters.
Produce today's complete edition, dated %s, from the reporting notes below.
The reader asked for: "%s".

How to lay out the edition:

1. Masthead and lead. Open with the name "The Daily Agent" and the date, then a strong front-page headline and a lead story built on the biggest theme of the day.

2. Editor's note. Two or three paragraphs introducing the edition: its mood, its themes, what sets it apart.

3. Featured stories. If the reader named particular topics, put those first under the heading "Today's Featured Stories" and develop each into an article of three to five paragraphs.

4. Sections. Arrange everything else under clear section headings such as World News, Politics, Business & Economy, Technology, Science & Health, Culture & Entertainment, Sports, Opinion / Editorial and, when there is material, Lifestyle. Each section gets at least one or two complete articles of two to five paragraphs.

5. Articles. Treat every summary as a reporter's raw notes and write it up as a finished piece with context, analysis and narrative flow. Illustrative detail, expert commentary or public reaction may be added where it fits.

6. Voice. Professional and readable journalism with varied sentences. Stay objective, except in the Opinion pages and the editor's note.

Write the edition in Markdown.

REPORTING NOTES:
%s
Now write the full edition of "The Daily Agent".`, date, request, digests)
}
