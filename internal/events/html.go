package events

import (
	"regexp"
	"strings"
	"unicode/utf8"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"
)

const summaryRunes = 200

var (
	blankLines      = regexp.MustCompile(`\n\s*\n`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
	htmlTagRegex    = regexp.MustCompile(`<[^>]*>`)
)

// paragraphs wraps blank-line separated blocks in <p> so converters see the breaks
// the catalog author typed.
func paragraphs(s string) string {
	blocks := blankLines.Split(strings.TrimSpace(s), -1)
	var b strings.Builder
	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(block)
		b.WriteString("</p>")
	}
	return b.String()
}

// toMarkdown converts an event description to Markdown. The raw description is
// returned if conversion fails.
func toMarkdown(desc string) string {
	if strings.TrimSpace(desc) == "" {
		return ""
	}
	markdown, err := htmltomarkdown.ConvertString(paragraphs(desc))
	if err != nil {
		return desc
	}
	return strings.TrimSpace(markdown)
}

// plainText strips tags and collapses whitespace.
func plainText(s string) string {
	if s == "" {
		return ""
	}

	doc, err := html.Parse(strings.NewReader(paragraphs(s)))
	if err != nil {
		s = htmlTagRegex.ReplaceAllString(s, " ")
		return strings.TrimSpace(whitespaceRegex.ReplaceAllString(html.UnescapeString(s), " "))
	}

	var buf strings.Builder
	extractText(doc, &buf)
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(buf.String(), " "))
}

func extractText(n *html.Node, buf *strings.Builder) {
	if n.Type == html.TextNode {
		buf.WriteString(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		extractText(c, buf)
	}
	if n.Type == html.ElementNode {
		switch n.Data {
		case "p", "div", "br", "li", "h1", "h2", "h3", "h4", "h5", "h6":
			buf.WriteString(" ")
		}
	}
}

// summarize returns the first summaryRunes of text, cut at a word boundary.
func summarize(text string) string {
	if utf8.RuneCountInString(text) <= summaryRunes {
		return text
	}
	runes := []rune(text)
	cut := string(runes[:summaryRunes])
	if i := strings.LastIndexByte(cut, ' '); i > summaryRunes/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}
