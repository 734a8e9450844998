package validator

import "strings"

// secretContextKeywords must appear near a candidate for rules that require context.
var secretContextKeywords = []string{
	"key", "secret", "token", "password", "credential", "auth",
	"api", "bearer", "access", "jwt", "oauth", "session",
}

// lineBonusKeywords earn a candidate the context confidence bonus when
// present on the matched line itself.
var lineBonusKeywords = []string{"api", "key", "token", "secret", "password"}

// placeholderMarkers indicate a template value or an indirection rather than
// a literal credential.
var placeholderMarkers = []string{
	"YOUR_", "REPLACE_", "CHANGE_ME", "CHANGEME", "INSERT_", "<YOUR", "XXXXXXXX",
	"${", "{{", "PROCESS.ENV", "OS.GETENV", "OS.ENVIRON",
}

// HasSecretContext reports whether any secret keyword occurs, case-insensitively,
// in the concatenated context window.
func HasSecretContext(contextLines []string) bool {
	return containsAny(strings.ToLower(strings.Join(contextLines, "\n")), secretContextKeywords)
}

// HasLineKeyword reports whether line names a credential-like identifier.
func HasLineKeyword(line string) bool {
	return containsAny(strings.ToLower(line), lineBonusKeywords)
}

// IsPlaceholder reports whether value is a template placeholder or an
// environment lookup.
func IsPlaceholder(value string) bool {
	return containsAny(strings.ToUpper(value), placeholderMarkers)
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
