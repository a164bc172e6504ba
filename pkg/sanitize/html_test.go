package sanitize_test

import (
	"testing"

	"github.com/instanttempmail/tempmail/pkg/sanitize"
	"github.com/stretchr/testify/assert"
)

// TestHTMLPassthrough tests plain text and allowed tags are unchanged.
func TestHTMLPassthrough(t *testing.T) {
	testStrings := []string{
		"",
		"plain string",
		"one &lt; two",
		"<p>paragraph</p>",
		"<p>line<br/>break</p>",
		"<em>emphasis</em>",
		"<strong>strong</strong>",
		"<u>underline</u>",
		"<ul><li>one</li></ul><ol><li>two</li></ol>",
		"<h1>one</h1><h2>two</h2><h3>three</h3>",
	}
	for _, ts := range testStrings {
		t.Run(ts, func(t *testing.T) {
			assert.Equal(t, ts, sanitize.HTML(ts))
		})
	}
}

// TestHTMLStripped tests elements and attributes outside the allowlist are removed.
func TestHTMLStripped(t *testing.T) {
	testCases := []struct {
		input, want string
	}{
		{`safe<script>nope</script>`, `safe`},
		{`<p onclick="alert(1)">click</p>`, `<p>click</p>`},
		{`<p style="color: red">red</p>`, `<p>red</p>`},
		{`<b>bold</b>`, `bold`},
		{`<div><span>text</span></div>`, `text`},
		{`<h4>small</h4>`, `small`},
		{`<img src="http://example.com/x.png">`, ``},
		{`<iframe src="http://example.com/"></iframe>`, ``},
	}
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.want, sanitize.HTML(tc.input))
		})
	}
}

func TestHTMLLinks(t *testing.T) {
	got := sanitize.HTML(`<a href="https://example.com/" target="_blank" class="x">link</a>`)
	assert.Contains(t, got, `href="https://example.com/"`)
	assert.Contains(t, got, `target="_blank"`)
	assert.NotContains(t, got, "class")

	got = sanitize.HTML(`<a href="javascript:alert(1)">link</a>`)
	assert.NotContains(t, got, "javascript")
	assert.Contains(t, got, "link")

	got = sanitize.HTML(`<a href="https://example.com/" target="evil">link</a>`)
	assert.NotContains(t, got, "target")
}

func TestPlainText(t *testing.T) {
	testCases := []struct {
		name, input, want string
	}{
		{"empty", "", ""},
		{"text", "just text", "just text"},
		{"inline", "<p>Hello <strong>there</strong></p>", "Hello there"},
		{"blocks", "<h1>Title</h1><p>First</p><p>Second</p>", "Title\nFirst\nSecond"},
		{"br", "one<br>two", "one\ntwo"},
		{"whitespace", "<p>  lots   of\n\n space </p>", "lots of space"},
		{"script", "<p>shown</p><script>var x = 1;</script>", "shown"},
		{"style", "<style>p { color: red }</style><p>shown</p>", "shown"},
		{"head", "<html><head><title>t</title></head><body>body</body></html>", "body"},
		{"entities", "<p>one &lt; two &amp; three</p>", "one < two & three"},
		{"list", "<ul><li>a</li><li>b</li></ul>", "a\nb"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, sanitize.PlainText(tc.input))
		})
	}
}
