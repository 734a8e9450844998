package normalize

import (
	"strings"

	"github.com/m1rl0k/findingsengine/pkg/finding"
)

// Canonical categories.
const (
	CategorySQLInjection     = "sql-injection"
	CategoryXSS              = "xss"
	CategoryCommandInjection = "command-injection"
	CategoryCodeInjection    = "code-injection"
	CategoryPathTraversal    = "path-traversal"
	CategoryCrypto           = "crypto"
	CategoryDeserialization  = "deserialization"
	CategoryAuth             = "auth"
	CategoryMisconfiguration = "misconfiguration"
	CategorySecrets          = "secrets"
	CategoryCodeQuality      = "code-quality"
	CategorySecurity         = "security"
	CategoryOther            = "other"
)

// taxonomy is consulted in order; the first keyword hit wins.
var taxonomy = []struct {
	category string
	keywords []string
}{
	{CategorySQLInjection, []string{"sql", "cwe-89"}},
	{CategoryXSS, []string{"xss", "cross-site scripting", "cross site scripting", "innerhtml", "cwe-79"}},
	{CategoryCommandInjection, []string{"command", "child-process", "child_process", "shell", "os-exec", "cwe-78"}},
	{CategoryCodeInjection, []string{"code-injection", "code injection", "eval", "new-func", "cwe-94", "cwe-95"}},
	{CategoryPathTraversal, []string{"traversal", "non-literal-fs", "file-inclusion", "file inclusion", "cwe-22", "cwe-98"}},
	{CategoryDeserialization, []string{"deserializ", "pickle", "cwe-502"}},
	{CategoryCrypto, []string{"crypto", "hash", "md5", "sha1", "tls", "cipher", "random", "cwe-295", "cwe-327", "cwe-328", "cwe-338"}},
	{CategoryAuth, []string{"auth", "jwt", "session", "cwe-287", "cwe-321"}},
	{CategoryMisconfiguration, []string{"misconfig", "debug", "cwe-489"}},
}

var canonical = func() map[string]bool {
	m := map[string]bool{CategorySecrets: true, CategoryCodeQuality: true}
	for _, t := range taxonomy {
		m[t.category] = true
	}
	return m
}()

// Category maps a raw finding onto the canonical taxonomy. Secrets always
// map to "secrets". Quality findings keep their own sub-category
// (maintainability, readability...) or fall back to "code-quality". For
// vulnerabilities the tool's category is consulted first, then the rule
// id, CWE and message.
func Category(f finding.RawFinding) string {
	switch f.Kind {
	case finding.KindSecret:
		return CategorySecrets
	case finding.KindQuality:
		c := strings.ToLower(strings.TrimSpace(f.Category))
		if c == "" || c == "general" || c == "unknown" {
			return CategoryCodeQuality
		}
		return c
	}

	cat := strings.ToLower(strings.TrimSpace(f.Category))
	if canonical[cat] {
		return cat
	}
	fields := []string{cat, strings.ToLower(f.RuleID), strings.ToLower(f.CWE), strings.ToLower(f.Message)}
	for _, field := range fields {
		if c, ok := classify(field); ok {
			return c
		}
	}
	for _, field := range fields {
		if strings.Contains(field, CategorySecurity) {
			return CategorySecurity
		}
	}
	return CategoryOther
}

func classify(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	for _, t := range taxonomy {
		for _, k := range t.keywords {
			if strings.Contains(s, k) {
				return t.category, true
			}
		}
	}
	return "", false
}
