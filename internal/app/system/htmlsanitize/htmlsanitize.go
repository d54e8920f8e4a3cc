// Package htmlsanitize strips markup from user-supplied free text.
//
// The API accepts photo captions and location names as plain text; any HTML
// a client smuggles in is removed before storage so it can never reach
// another client's renderer.
package htmlsanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// policy is the shared bluemonday strict policy. It allows no elements
	// and no attributes; only the text content survives.
	policy     *bluemonday.Policy
	policyOnce sync.Once
)

func getPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return policy
}

// Text strips all HTML from s and returns the remaining plain text with
// surrounding whitespace trimmed. Entities introduced by the sanitizer
// (e.g. &amp;) are decoded back so stored text reads naturally.
func Text(s string) string {
	if s == "" {
		return ""
	}
	cleaned := getPolicy().Sanitize(s)
	return strings.TrimSpace(html.UnescapeString(cleaned))
}

// IsPlainText reports whether content contains no HTML tags. Valid tags need
// both '<' and '>', so if either is missing the content is treated as plain.
func IsPlainText(content string) bool {
	if content == "" {
		return true
	}
	return !strings.Contains(content, "<") || !strings.Contains(content, ">")
}
