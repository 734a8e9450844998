// Package detect runs compiled rules over source text and produces raw
// findings: secrets, vulnerability patterns and code-quality issues.
//
// Detectors are stateless apart from their configuration and may be used
// from several goroutines at once.
package detect

import (
	"sort"

	"go.uber.org/zap"

	"github.com/m1rl0k/findingsengine/pkg/finding"
	"github.com/m1rl0k/findingsengine/pkg/rules"
)

// Source names attached to findings produced by this package.
const (
	SourcePatternMatcher = "pattern-matcher"
	SourceStaticAnalyzer = "static-analyzer"
)

// Context radii, in lines either side of the match.
const (
	DefaultContextRadius = 3
	reportContextRadius  = 2
	excludeRadius        = 2
	requireRadius        = 3
)

// maxMatchedText bounds the matched text carried on vulnerability and
// quality findings.
const maxMatchedText = 200

type match struct {
	start int
	end   int
	value string
	// valueStart is the byte offset of value, which differs from start when
	// the rule isolates a "secret" group.
	valueStart int
}

func findMatches(r rules.Rule, line string) []match {
	locs := r.Pattern.FindAllStringSubmatchIndex(line, -1)
	if len(locs) == 0 {
		return nil
	}
	g := r.SecretGroup()
	out := make([]match, 0, len(locs))
	for _, loc := range locs {
		m := match{start: loc[0], end: loc[1], value: line[loc[0]:loc[1]], valueStart: loc[0]}
		if g > 0 && loc[2*g] >= 0 {
			m.value = line[loc[2*g]:loc[2*g+1]]
			m.valueStart = loc[2*g]
		}
		if m.value == "" {
			continue
		}
		out = append(out, m)
	}
	return out
}

// evaluate runs fn for one rule on one line. A panic is logged and
// contained so one faulty rule cannot abort the scan.
func evaluate(logger *zap.Logger, r rules.Rule, line int, fn func()) {
	defer func() {
		if p := recover(); p != nil {
			logger.Warn("rule evaluation failed",
				zap.String("rule", r.ID),
				zap.Int("line", line),
				zap.Any("error", p))
		}
	}()
	fn()
}

func orNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func copyLines(lines []string) []string {
	if len(lines) == 0 {
		return nil
	}
	out := make([]string, len(lines))
	copy(out, lines)
	return out
}

// sortFindings orders by confidence, highest first, then by position.
func sortFindings(fs []finding.RawFinding) {
	sort.SliceStable(fs, func(i, j int) bool {
		a, b := fs[i], fs[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return a.RuleID < b.RuleID
	})
}
