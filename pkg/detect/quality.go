package detect

import (
	"go.uber.org/zap"

	"github.com/m1rl0k/findingsengine/pkg/finding"
	"github.com/m1rl0k/findingsengine/pkg/rules"
	"github.com/m1rl0k/findingsengine/pkg/source"
)

// QualityDetector reports code-quality issues, at most one per rule and line.
type QualityDetector struct {
	Logger *zap.Logger
}

// DetectQuality scans text with the table's quality rules for language,
// falling back to the generic rules.
func DetectQuality(text, language string, table *rules.Table) []finding.RawFinding {
	var d QualityDetector
	return d.Detect(text, table.Quality(language))
}

// Detect evaluates rs on every line of text, reporting the first match of a
// rule per line.
func (d *QualityDetector) Detect(text string, rs []rules.Rule) []finding.RawFinding {
	logger := orNop(d.Logger)
	lines := source.Lines(text)
	var out []finding.RawFinding

	for i, line := range lines {
		lineNo := i + 1
		for _, r := range rs {
			evaluate(logger, r, lineNo, func() {
				loc := r.Pattern.FindStringIndex(line)
				if loc == nil || !contextAccepts(r, lines, i) {
					return
				}
				out = append(out, finding.RawFinding{
					Source:         SourceStaticAnalyzer,
					Kind:           finding.KindQuality,
					RuleID:         r.ID,
					Category:       r.Category,
					Severity:       string(r.Severity),
					Message:        r.Message,
					Line:           lineNo,
					Column:         loc[0] + 1,
					MatchedText:    truncate(line[loc[0]:loc[1]], maxMatchedText),
					Confidence:     r.BaseConfidence,
					Recommendation: r.Recommendation,
					CWE:            r.CWE,
					OWASP:          r.OWASP,
				})
			})
		}
	}

	logger.Debug("quality analysis finished", zap.Int("lines", len(lines)), zap.Int("issues", len(out)))
	return out
}
