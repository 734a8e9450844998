// Package source prepares scan input: language detection, line splitting,
// context windows and simple source metrics.
package source

import (
	"path/filepath"
	"strings"
)

var extensions = map[string]string{
	".go":   "go",
	".py":   "python",
	".js":   "javascript",
	".jsx":  "javascript",
	".mjs":  "javascript",
	".cjs":  "javascript",
	".ts":   "typescript",
	".tsx":  "typescript",
	".java": "java",
	".php":  "php",
	".c":    "c",
	".cpp":  "cpp",
	".rs":   "rust",
	".rb":   "ruby",
	".sh":   "bash",
	".yaml": "yaml",
	".yml":  "yaml",
	".json": "json",
}

var aliases = map[string]string{
	"js":      "javascript",
	"node":    "javascript",
	"ts":      "typescript",
	"py":      "python",
	"python3": "python",
	"golang":  "go",
}

// Unknown is reported for files whose language cannot be detected.
const Unknown = "unknown"

// DetectLanguage maps a file path to a language identifier by extension.
func DetectLanguage(path string) string {
	if lang, ok := extensions[strings.ToLower(filepath.Ext(path))]; ok {
		return lang
	}
	return Unknown
}

// NormalizeLanguage lowercases a language identifier and resolves common
// short names.
func NormalizeLanguage(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if full, ok := aliases[lang]; ok {
		return full
	}
	return lang
}

// IsTestPath reports whether path looks like a test or spec file.
func IsTestPath(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	return strings.Contains(base, "_test.") ||
		strings.Contains(base, ".test.") ||
		strings.Contains(base, ".spec.") ||
		strings.HasPrefix(base, "test_")
}

// Lines splits text into lines. CRLF endings are accepted; a trailing
// newline does not produce an extra empty line.
func Lines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	return strings.Split(text, "\n")
}

// Window returns the lines within radius of index i (0-based), clipped to
// the input. The result shares storage with lines.
func Window(lines []string, i, radius int) []string {
	if i < 0 || i >= len(lines) {
		return nil
	}
	start := i - radius
	if start < 0 {
		start = 0
	}
	end := i + radius + 1
	if end > len(lines) {
		end = len(lines)
	}
	return lines[start:end]
}

// Metrics describes the scanned text.
type Metrics struct {
	Lines     int `json:"linesOfCode" yaml:"lines_of_code"`
	Chars     int `json:"characters" yaml:"characters"`
	Blank     int `json:"blankLines" yaml:"blank_lines"`
	Comments  int `json:"commentLines" yaml:"comment_lines"`
	Functions int `json:"functions" yaml:"functions"`
	Imports   int `json:"imports" yaml:"imports"`
}

// Measure computes Metrics for text using line heuristics.
func Measure(text string) Metrics {
	m := Metrics{Chars: len([]rune(text))}
	for _, line := range Lines(text) {
		m.Lines++
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			m.Blank++
			continue
		case isComment(trimmed):
			m.Comments++
			continue
		}

		if strings.Contains(trimmed, "func ") ||
			strings.Contains(trimmed, "def ") ||
			strings.Contains(trimmed, "function ") {
			m.Functions++
		}
		if strings.HasPrefix(trimmed, "import ") ||
			strings.HasPrefix(trimmed, "from ") ||
			strings.Contains(trimmed, "require(") {
			m.Imports++
		}
	}
	return m
}

func isComment(trimmed string) bool {
	for _, p := range []string{"//", "#", "/*", "*", "--"} {
		if strings.HasPrefix(trimmed, p) {
			return true
		}
	}
	return false
}
