// Package sanitize cleans untrusted HTML message bodies for display.
package sanitize

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

var (
	linkTarget = regexp.MustCompile(`^_(blank|self|parent|top)$`)
	policy     = newPolicy()

	// Elements whose text content is never displayed.
	hiddenElements = map[string]bool{
		"head":     true,
		"script":   true,
		"style":    true,
		"template": true,
		"title":    true,
	}

	// Elements that start a new line of text.
	blockElements = map[string]bool{
		"address": true, "article": true, "blockquote": true, "br": true, "div": true,
		"footer": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
		"header": true, "hr": true, "li": true, "ol": true, "p": true, "pre": true,
		"section": true, "table": true, "tr": true, "ul": true,
	}
)

func newPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "br", "strong", "em", "u", "a", "ul", "ol", "li", "h1", "h2", "h3")
	p.AllowAttrs("href").OnElements("a")
	p.AllowAttrs("target").Matching(linkTarget).OnElements("a")
	p.AllowStandardURLs()
	return p
}

// HTML sanitizes the provided html: only basic text formatting, lists, headings and links
// survive.
func HTML(input string) string {
	return policy.Sanitize(input)
}

// PlainText extracts the readable text of an HTML document.  Block elements become line breaks,
// runs of whitespace are collapsed and hidden elements such as script are skipped.
func PlainText(input string) string {
	var lines []string
	var line []string
	flush := func() {
		if len(line) > 0 {
			lines = append(lines, strings.Join(line, " "))
			line = line[:0]
		}
	}

	z := html.NewTokenizer(strings.NewReader(input))
	hidden := 0
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF, or the tokenizer gave up on malformed input; keep what was read.
			flush()
			return strings.Join(lines, "\n")
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if hiddenElements[tag] && tt == html.StartTagToken {
				hidden++
			}
			if blockElements[tag] {
				flush()
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if hiddenElements[tag] && hidden > 0 {
				hidden--
			}
			if blockElements[tag] {
				flush()
			}
		case html.TextToken:
			if hidden > 0 {
				continue
			}
			line = append(line, strings.Fields(string(z.Text()))...)
		}
	}
}
