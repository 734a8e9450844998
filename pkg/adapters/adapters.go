// Package adapters converts the JSON reports of external scanners into raw
// findings. Each tool keeps its own severity vocabulary on the finding; the
// normalizer maps it.
package adapters

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/m1rl0k/findingsengine/pkg/finding"
)

// ErrUnknownTool is returned for a tool with no adapter.
var ErrUnknownTool = errors.New("unknown tool")

// located pairs a finding with the file the tool reported it in.
type located struct {
	file    string
	finding finding.RawFinding
}

type parseFunc func([]byte) ([]located, error)

var parsers = map[string]parseFunc{
	"semgrep":    parseSemgrep,
	"eslint":     parseESLint,
	"gitleaks":   parseGitleaks,
	"trufflehog": parseTrufflehog,
	"trivy":      parseTrivy,
}

// Tools lists the supported tool names.
func Tools() []string {
	out := make([]string, 0, len(parsers))
	for name := range parsers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Target names the scanned file whose findings are wanted. Root is the
// directory a tree scan started from, empty for a single file.
type Target struct {
	Path string
	Root string
}

// Parse decodes a report produced by tool. When target is set only findings
// reported for that file are returned.
func Parse(tool string, b []byte, target string) ([]finding.RawFinding, error) {
	return ParseTarget(tool, b, Target{Path: target})
}

// ParseTarget decodes a report and keeps the findings reported for t. A
// report path matches when it equals t.Path relative to the working
// directory, relative to t.Root, or as an absolute path. Container mount
// prefixes such as /scan/ are ignored.
func ParseTarget(tool string, b []byte, t Target) ([]finding.RawFinding, error) {
	name := strings.ToLower(strings.TrimSpace(tool))
	parse, ok := parsers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, tool)
	}
	items, err := parse(b)
	if err != nil {
		return nil, fmt.Errorf("parse %s report: %w", name, err)
	}

	var names map[string]bool
	if t.Path != "" {
		names = t.names()
	}
	out := make([]finding.RawFinding, 0, len(items))
	for _, it := range items {
		if names != nil && it.file != "" && !names[normalizePath(it.file)] {
			continue
		}
		out = append(out, it.finding)
	}
	return out, nil
}

// ParseFile reads and decodes a report file.
func ParseFile(tool, reportPath, target string) ([]finding.RawFinding, error) {
	b, err := os.ReadFile(reportPath)
	if err != nil {
		return nil, err
	}
	return Parse(tool, b, target)
}

// normalizePath strips the prefixes container-based scanners put in front
// of mounted paths.
func normalizePath(p string) string {
	fp := filepath.ToSlash(strings.TrimSpace(p))
	for strings.HasPrefix(fp, "../") {
		fp = strings.TrimPrefix(fp, "../")
	}
	fp = strings.TrimPrefix(fp, "./")
	fp = strings.TrimPrefix(fp, "/scan/")
	fp = strings.TrimPrefix(fp, "scan/")
	return fp
}

// names lists the spellings of t.Path a report may use.
func (t Target) names() map[string]bool {
	p := filepath.Clean(t.Path)
	names := map[string]bool{normalizePath(p): true}
	if abs, err := filepath.Abs(p); err == nil {
		names[filepath.ToSlash(abs)] = true
	}
	if t.Root != "" {
		if rel, err := filepath.Rel(t.Root, p); err == nil && rel != ".." && !strings.HasPrefix(rel, "../") && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			names[normalizePath(rel)] = true
		}
	}
	return names
}

func safeLine(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

func safeColumn(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
