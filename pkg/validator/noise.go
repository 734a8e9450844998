package validator

import (
	"regexp"
	"strings"
)

// NoiseFilter holds the tunable false-positive heuristics. They are hand
// tuned and may both over- and under-suppress.
type NoiseFilter struct {
	MinifiedLineLength int      `json:"minified_line_length" yaml:"minified_line_length"`
	MinifiedMaxTokens  int      `json:"minified_max_tokens" yaml:"minified_max_tokens"`
	HashMinLength      int      `json:"hash_min_length" yaml:"hash_min_length"`
	ExcludeKeywords    []string `json:"exclude_keywords" yaml:"exclude_keywords"`
	LockfileKeys       []string `json:"lockfile_keys" yaml:"lockfile_keys"`
	PackageMarkers     []string `json:"package_markers" yaml:"package_markers"`
}

// DefaultNoiseFilter returns the stock heuristics.
func DefaultNoiseFilter() *NoiseFilter {
	return &NoiseFilter{
		MinifiedLineLength: 500,
		MinifiedMaxTokens:  3,
		HashMinLength:      32,
		ExcludeKeywords:    []string{"test", "mock", "example", "sample"},
		LockfileKeys:       []string{`"integrity":`, `"shasum":`, `"resolved":`, `"tarball":`},
		PackageMarkers:     []string{"package-lock.json", "integrity", "node_modules", "dependencies"},
	}
}

var defaultNoise = DefaultNoiseFilter()

// IsLikelyNoise applies the default heuristics to line.
func IsLikelyNoise(line string) bool {
	return defaultNoise.IsLikelyNoise(line)
}

// IsPackageMetadata applies the default package markers to a context window.
func IsPackageMetadata(window []string) bool {
	return defaultNoise.IsPackageMetadata(window)
}

// IsLikelyNoise reports whether a line should be skipped before any rule is
// evaluated: lockfile integrity fields, bare hashes, minified blobs and
// test/mock/example/sample data.
func (n *NoiseFilter) IsLikelyNoise(line string) bool {
	for _, k := range n.LockfileKeys {
		if strings.Contains(line, k) {
			return true
		}
	}

	trimmed := strings.TrimSpace(line)
	if len(trimmed) >= n.HashMinLength && (isHex(trimmed) || isBase64(trimmed)) {
		return true
	}

	if len(line) > n.MinifiedLineLength && len(strings.Fields(line)) < n.MinifiedMaxTokens {
		return true
	}

	return containsAny(strings.ToLower(line), n.ExcludeKeywords)
}

// IsPackageMetadata reports whether the context window looks like package
// manager metadata, which is never a secret even when a pattern matches.
func (n *NoiseFilter) IsPackageMetadata(window []string) bool {
	return containsAny(strings.ToLower(strings.Join(window, "\n")), n.PackageMarkers)
}

var regexDefinition = regexp.MustCompile("^`.*(?:\\(\\?i\\)|\\\\s|\\\\d|\\[|\\]|\\{|\\}|\\||\\^|\\$).*`")

// IsRegexDefinition reports whether line is a backtick-quoted regular
// expression, as found in rule tables. Such lines describe secrets rather
// than contain them.
func IsRegexDefinition(line string) bool {
	return regexDefinition.MatchString(strings.TrimLeft(line, " \t"))
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			return false
		}
	}
	return true
}

func isBase64(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || c == '+' || c == '/' || c == '=') {
			return false
		}
	}
	return true
}
