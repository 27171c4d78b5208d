// Package htmlsanitize cleans the rich text of vacancy descriptions.
// It uses bluemonday to strip potentially dangerous HTML while preserving safe formatting.
package htmlsanitize

import (
	"html"
	"html/template"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// policy is the shared policy for vacancy rich text.
	policy     *bluemonday.Policy
	policyOnce sync.Once

	// strict removes every tag; used for plain-text excerpts.
	strict     *bluemonday.Policy
	strictOnce sync.Once
)

func getPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.UGCPolicy()
		policy.AllowElements("u", "s", "sub", "sup", "mark")
		policy.AddTargetBlankToFullyQualifiedLinks(true)
	})
	return policy
}

func getStrict() *bluemonday.Policy {
	strictOnce.Do(func() {
		strict = bluemonday.StrictPolicy()
	})
	return strict
}

// Sanitize cleans HTML input, removing scripts, event handlers and
// dangerous URLs while keeping formatting such as lists, links and emphasis.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return getPolicy().Sanitize(s)
}

// SanitizeToHTML sanitizes s and returns it as template.HTML.
func SanitizeToHTML(s string) template.HTML {
	return template.HTML(Sanitize(s))
}

// IsPlainText reports whether content has no HTML tags.
func IsPlainText(content string) bool {
	if content == "" {
		return true
	}
	// Valid tags need both characters.
	return !strings.Contains(content, "<") || !strings.Contains(content, ">")
}

// PlainTextToHTML escapes text and turns newlines into <br> inside a <p>.
func PlainTextToHTML(text string) string {
	if text == "" {
		return ""
	}
	escaped := template.HTMLEscapeString(text)
	escaped = strings.ReplaceAll(escaped, "\n", "<br>")
	return "<p>" + escaped + "</p>"
}

// PrepareForDisplay returns content ready for a template, converting plain
// text to HTML first.
func PrepareForDisplay(content string) template.HTML {
	if content == "" {
		return ""
	}
	if IsPlainText(content) {
		return template.HTML(PlainTextToHTML(content))
	}
	return SanitizeToHTML(content)
}

// Excerpt returns the text of content without markup, whitespace-collapsed
// and cut to at most n runes (plus an ellipsis when cut).
func Excerpt(content string, n int) string {
	if content == "" || n <= 0 {
		return ""
	}
	// Keep words in adjacent blocks apart once tags are gone.
	spaced := strings.ReplaceAll(content, "<", " <")
	text := html.UnescapeString(getStrict().Sanitize(spaced))
	text = strings.Join(strings.Fields(text), " ")

	if utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:n])) + "…"
}
