package conv

import (
	"regexp"
	"strings"

	"github.com/inbucket/html2text"
)

var (
	htmlTag    = regexp.MustCompile(`<\s*/?\s*[a-zA-Z][^>]*>`)
	blankLines = regexp.MustCompile(`\n{3,}`)
)

// PlainText returns body as plain text. Rich-text bodies coming from the CMS are rendered
// with html2text; anything without markup is only trimmed.
func PlainText(body string) string {
	body = strings.TrimSpace(body)
	if !htmlTag.MatchString(body) {
		return body
	}

	text, err := html2text.FromString(body, html2text.Options{
		OmitLinks:    true,
		PrettyTables: false,
	})
	if err != nil {
		// Keep the raw body rather than losing the fragment
		return body
	}
	return strings.TrimSpace(blankLines.ReplaceAllString(text, "\n\n"))
}

const quoteChars = "\"'“”‘’«»"

// StripQuotes removes quotation marks a model wraps around its whole answer.
func StripQuotes(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, quoteChars)
	return strings.TrimSpace(s)
}
