package triage

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicyOnce sync.Once
	strictPolicy     *bluemonday.Policy
)

// strictHTMLPolicy returns a singleton bluemonday policy that strips every
// HTML element and attribute, so user messages are treated as plain text and
// script/style injections never reach the redactor or the backend.
func strictHTMLPolicy() *bluemonday.Policy {
	strictPolicyOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	return strictPolicy
}

// SanitizeMessage removes HTML from a raw user message and trims whitespace.
// The policy entity-escapes the surviving text, so the output is unescaped
// again: downstream keyword and phrase matching needs `can't`, not
// `can&#39;t`, and with every tag already stripped the unescape cannot
// reintroduce markup.
func SanitizeMessage(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strictHTMLPolicy().Sanitize(s)))
}
