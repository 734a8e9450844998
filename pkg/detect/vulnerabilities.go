package detect

import (
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/m1rl0k/findingsengine/pkg/finding"
	"github.com/m1rl0k/findingsengine/pkg/rules"
	"github.com/m1rl0k/findingsengine/pkg/source"
)

// Vulnerability confidence bonuses.
const (
	specificityBonus       = 0.1
	contextValidationBonus = 0.1
)

// VulnerabilityDetector applies language rules validated by surrounding
// context only.
type VulnerabilityDetector struct {
	Logger *zap.Logger
}

// DetectVulnerabilities scans text with the table's rules for language. An
// unknown language has no rules and yields no findings.
func DetectVulnerabilities(text, language string, table *rules.Table) []finding.RawFinding {
	var d VulnerabilityDetector
	return d.Detect(text, table.Vulnerabilities(language))
}

// Detect evaluates rs on every line of text. A match is dropped when an
// exclude pattern matches the ±2 line context or a require pattern fails
// to match the ±3 line context.
func (d *VulnerabilityDetector) Detect(text string, rs []rules.Rule) []finding.RawFinding {
	logger := orNop(d.Logger)
	if len(rs) == 0 {
		return nil
	}

	lines := source.Lines(text)
	var out []finding.RawFinding

	for i, line := range lines {
		lineNo := i + 1
		for _, r := range rs {
			evaluate(logger, r, lineNo, func() {
				matches := findMatches(r, line)
				if len(matches) == 0 || !contextAccepts(r, lines, i) {
					return
				}
				for _, m := range matches {
					out = append(out, finding.RawFinding{
						Source:         SourcePatternMatcher,
						Kind:           finding.KindVulnerability,
						RuleID:         r.ID,
						Category:       r.Category,
						Severity:       string(r.Severity),
						Message:        r.Message,
						Line:           lineNo,
						Column:         m.start + 1,
						MatchedText:    truncate(line[m.start:m.end], maxMatchedText),
						Confidence:     VulnerabilityConfidence(r),
						Context:        copyLines(source.Window(lines, i, reportContextRadius)),
						Recommendation: r.Recommendation,
						CWE:            r.CWE,
						OWASP:          r.OWASP,
					})
				}
			})
		}
	}

	sortFindings(out)
	logger.Debug("vulnerability detection finished", zap.Int("lines", len(lines)), zap.Int("findings", len(out)))
	return out
}

func contextAccepts(r rules.Rule, lines []string, i int) bool {
	if len(r.ExcludePatterns) > 0 {
		ctx := strings.Join(source.Window(lines, i, excludeRadius), "\n")
		for _, re := range r.ExcludePatterns {
			if re.MatchString(ctx) {
				return false
			}
		}
	}
	if len(r.RequirePatterns) > 0 {
		ctx := strings.Join(source.Window(lines, i, requireRadius), "\n")
		for _, re := range r.RequirePatterns {
			if !re.MatchString(ctx) {
				return false
			}
		}
	}
	return true
}

// VulnerabilityConfidence is the rule's base confidence plus 0.1 for a
// high-specificity pattern and 0.1 when the match was confirmed by required
// context, capped at 1.
func VulnerabilityConfidence(r rules.Rule) float64 {
	c := r.BaseConfidence
	if r.HighSpecificity {
		c += specificityBonus
	}
	if len(r.RequirePatterns) > 0 {
		c += contextValidationBonus
	}
	return math.Min(c, 1)
}
