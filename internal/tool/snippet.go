package tool

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/fpt/notice-cli/pkg/message"
)

// maxSnippetRunes bounds the text of one search result handed to the model.
const maxSnippetRunes = 1200

// nonContentTags never hold citable text.
var nonContentTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "svg": true,
	"iframe": true, "object": true, "embed": true,
}

// cleanSnippet turns a provider snippet (plain text or an HTML fragment)
// into a single line of text suitable for a citation.
func cleanSnippet(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return message.Truncate(collapseWhitespace(strings.TrimSpace(s)), maxSnippetRunes)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return message.Truncate(collapseWhitespace(html.UnescapeString(s)), maxSnippetRunes)
	}

	var b strings.Builder
	for _, n := range doc.Find("body").Nodes {
		writeText(&b, n)
	}
	return message.Truncate(collapseWhitespace(strings.TrimSpace(b.String())), maxSnippetRunes)
}

// writeText appends the visible text under n.
func writeText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		if nonContentTags[n.Data] {
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(b, c)
	}
	if n.Type == html.ElementNode && (n.Data == "p" || n.Data == "br" || n.Data == "li" || n.Data == "td") {
		b.WriteByte(' ')
	}
}

// collapseWhitespace replaces runs of whitespace (including newlines) with a single space.
func collapseWhitespace(s string) string {
	var b strings.Builder
	inSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\u00a0' {
			if !inSpace {
				b.WriteRune(' ')
				inSpace = true
			}
		} else {
			b.WriteRune(r)
			inSpace = false
		}
	}
	return strings.TrimSpace(b.String())
}
