// Package richtext turns stored announcement HTML into plain text for list
// previews, feeds and meta descriptions.
package richtext

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// skipped elements contribute no text.
var skipped = map[string]bool{
	"script": true,
	"style":  true,
	"head":   true,
}

// block elements are separated from their neighbours by whitespace.
var block = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "pre": true, "tr": true, "td": true, "th": true,
	"table": true, "hr": true, "figure": true, "figcaption": true,
}

// PlainText strips all markup from src, decodes entities and collapses runs
// of whitespace into single spaces.
func PlainText(src string) string {
	z := html.NewTokenizer(strings.NewReader(src))
	var b strings.Builder
	depth := 0
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF or malformed input; either way the text so far is kept.
			return collapse(b.String())
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if skipped[tag] && tt == html.StartTagToken {
				depth++
			}
			if block[tag] {
				b.WriteByte(' ')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if skipped[tag] && depth > 0 {
				depth--
			}
			if block[tag] {
				b.WriteByte(' ')
			}
		case html.TextToken:
			if depth == 0 {
				b.Write(z.Text())
			}
		}
	}
}

// Excerpt returns at most max runes of PlainText(src), cut on a word boundary
// when one is close and suffixed with an ellipsis when truncated.
func Excerpt(src string, max int) string {
	text := PlainText(src)
	runes := []rune(text)
	if max <= 0 || len(runes) <= max {
		return text
	}
	cut := max
	for i := max; i > max*3/4; i-- {
		if unicode.IsSpace(runes[i]) {
			cut = i
			break
		}
	}
	return strings.TrimRightFunc(string(runes[:cut]), unicode.IsSpace) + "…"
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
