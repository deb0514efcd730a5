// Package redact strips credentials and other sensitive fragments from
// strings before they are logged or returned in error responses. Editor
// and SDK errors routinely embed request URLs, cookie headers and driver
// messages, so every error that reaches a log line goes through here.
package redact

import "regexp"

// Placeholders substituted for redacted fragments.
const (
	RedactionPlaceholder          = "[REDACTED]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedCookiePlaceholder     = "[REDACTED_COOKIE]"
	RedactedJWTPlaceholder        = "[REDACTED_JWT]"
	RedactedSQLPlaceholder        = "[REDACTED_SQL]"
	RedactedEmailPlaceholder      = "[REDACTED_EMAIL]"
	RedactedPathPlaceholder       = "[REDACTED_PATH]"
)

type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// Rules are applied in order; earlier rules win over overlapping later ones.
var rules = []rule{
	// user:password@ in connection strings
	{regexp.MustCompile(`(?i)(postgres(?:ql)?|mysql|redis)://[^@\s]+@`), "${1}://" + RedactedCredentialPlaceholder + "@"},
	{regexp.MustCompile(`(?i)(cookie|set-cookie)(["']?\s*[:=]\s*)[^\r\n"']+`), "${1}${2}" + RedactedCookiePlaceholder},
	{regexp.MustCompile(`(?i)(bearer\s+)[A-Za-z0-9_\-.~+/]+=*`), "${1}" + RedactionPlaceholder},
	{regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`), RedactedJWTPlaceholder},
	{regexp.MustCompile(`(?i)(password|passwd|pwd|secret|api[_-]?key|token)(["']?\s*[:=]\s*["']?)[^"'&\s,]{3,}`), "${1}${2}" + RedactedCredentialPlaceholder},
	{regexp.MustCompile(`(?i)\b(SELECT|INSERT|UPDATE|DELETE)\b[\s\S]*?\b(FROM|INTO|SET)\b[^;\n]*`), RedactedSQLPlaceholder},
	{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), RedactedEmailPlaceholder},
	{regexp.MustCompile(`(?:^|\s)(/(?:home|Users|var|etc|tmp)(?:/[\w.-]+)+)`), " " + RedactedPathPlaceholder},
}

// String redacts sensitive information from the input string.
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, r := range rules {
		result = r.pattern.ReplaceAllString(result, r.replacement)
	}
	return result
}

// Error redacts sensitive information from an error's Error() output.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
