package detect

import (
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/m1rl0k/findingsengine/pkg/finding"
	"github.com/m1rl0k/findingsengine/pkg/rules"
	"github.com/m1rl0k/findingsengine/pkg/source"
	"github.com/m1rl0k/findingsengine/pkg/validator"
)

// Secret confidence bonuses.
const (
	entropyBonusDivisor = 6.0
	maxEntropyBonus     = 0.2
	lengthBonus         = 0.1
	keywordBonus        = 0.1
)

// SecretDetector applies secret rules with entropy and context validation.
// The zero value uses the default noise heuristics and a ±3 line window.
type SecretDetector struct {
	Noise         *validator.NoiseFilter
	ContextRadius int
	// Allowed reports values that must never be reported, such as
	// allowlisted test credentials.
	Allowed func(value string) bool
	Logger  *zap.Logger
}

// DetectSecrets scans text with the default detector settings.
func DetectSecrets(text string, rs []rules.Rule) []finding.RawFinding {
	var d SecretDetector
	return d.Detect(text, rs)
}

type secretKey struct {
	rule   string
	line   int
	column int
}

// Detect evaluates rs against every non-noise line of text. Results are
// unique per (rule, line, column), keeping the most confident candidate,
// and sorted by confidence.
func (d *SecretDetector) Detect(text string, rs []rules.Rule) []finding.RawFinding {
	logger := orNop(d.Logger)
	noise := d.Noise
	if noise == nil {
		noise = validator.DefaultNoiseFilter()
	}
	radius := d.ContextRadius
	if radius <= 0 {
		radius = DefaultContextRadius
	}

	lines := source.Lines(text)
	seen := make(map[secretKey]int)
	var out []finding.RawFinding

	for i, line := range lines {
		if noise.IsLikelyNoise(line) || validator.IsRegexDefinition(line) {
			continue
		}
		lineNo := i + 1

		for _, r := range rs {
			evaluate(logger, r, lineNo, func() {
				for _, m := range findMatches(r, line) {
					window := source.Window(lines, i, radius)
					if !d.accept(r, m.value, window, noise) {
						continue
					}

					f := finding.RawFinding{
						Source:         SourcePatternMatcher,
						Kind:           finding.KindSecret,
						RuleID:         r.ID,
						Category:       r.Category,
						Severity:       string(r.Severity),
						Message:        r.Message,
						Line:           lineNo,
						Column:         m.valueStart + 1,
						MatchedText:    finding.Mask(m.value),
						Confidence:     SecretConfidence(r, m.value, line),
						Context:        redact(source.Window(lines, i, reportContextRadius), m.value),
						Recommendation: r.Recommendation,
						CWE:            r.CWE,
						OWASP:          r.OWASP,
					}

					k := secretKey{rule: r.ID, line: lineNo, column: f.Column}
					if j, ok := seen[k]; ok {
						if f.Confidence > out[j].Confidence {
							out[j] = f
						}
						continue
					}
					seen[k] = len(out)
					out = append(out, f)
				}
			})
		}
	}

	sortFindings(out)
	logger.Debug("secret detection finished", zap.Int("lines", len(lines)), zap.Int("findings", len(out)))
	return out
}

func (d *SecretDetector) accept(r rules.Rule, value string, window []string, noise *validator.NoiseFilter) bool {
	if r.RequiresEntropy && validator.Entropy(value) < r.MinEntropy {
		return false
	}
	if r.RequiresContext && !validator.HasSecretContext(window) {
		return false
	}
	if noise.IsPackageMetadata(window) {
		return false
	}
	if len(r.ExcludePatterns) > 0 {
		joined := strings.Join(window, "\n")
		for _, re := range r.ExcludePatterns {
			if re.MatchString(joined) {
				return false
			}
		}
	}
	for _, re := range r.ExcludeValues {
		if re.MatchString(value) {
			return false
		}
	}
	if validator.IsPlaceholder(value) {
		return false
	}
	if d.Allowed != nil && d.Allowed(value) {
		return false
	}
	return true
}

// SecretConfidence scores a secret candidate: the rule's base confidence
// plus an entropy bonus (entropy/6, at most 0.2) for entropy-checked rules,
// a length bonus when the value reaches the rule's optimal length, and a
// keyword bonus when the line names a credential. The result is capped at 1.
func SecretConfidence(r rules.Rule, value, line string) float64 {
	c := r.BaseConfidence
	if r.RequiresEntropy {
		c += math.Min(validator.Entropy(value)/entropyBonusDivisor, maxEntropyBonus)
	}
	if len(value) >= r.OptimalLength {
		c += lengthBonus
	}
	if validator.HasLineKeyword(line) {
		c += keywordBonus
	}
	return math.Min(c, 1)
}

// redact copies window with every occurrence of value masked.
func redact(window []string, value string) []string {
	out := copyLines(window)
	masked := finding.Mask(value)
	for i := range out {
		out[i] = strings.ReplaceAll(out[i], value, masked)
	}
	return out
}
