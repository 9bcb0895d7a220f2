package assistant

import (
	"regexp"
	"strings"
)

var (
	boldPattern    = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	underPattern   = regexp.MustCompile(`__([^_]+)__`)
	italicPattern  = regexp.MustCompile(`\*([^*\n]+)\*`)
	codePattern    = regexp.MustCompile("`([^`]*)`")
	headingPattern = regexp.MustCompile(`(?m)^#{1,6}[ \t]*`)

	leadingGreetingPattern = regexp.MustCompile(`(?i)^(?:olá|ola|oi|hey|hello|bom dia|boa tarde|boa noite)(?:[,!.]+\s*|\s+|$)`)
)

// Sanitize strips markdown emphasis, inline code and heading markers, then
// drops a leading greeting, and trims the result. It is applied until the
// text stops changing, so Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(text string) string {
	for {
		next := sanitizeOnce(text)
		if next == text {
			return next
		}
		text = next
	}
}

func sanitizeOnce(text string) string {
	text = boldPattern.ReplaceAllString(text, "$1")
	text = underPattern.ReplaceAllString(text, "$1")
	text = italicPattern.ReplaceAllString(text, "$1")
	text = codePattern.ReplaceAllString(text, "$1")
	text = headingPattern.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)
	text = leadingGreetingPattern.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
