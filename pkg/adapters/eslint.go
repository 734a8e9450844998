package adapters

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/m1rl0k/findingsengine/pkg/finding"
)

type eslintJSON []struct {
	FilePath string `json:"filePath"`
	Messages []struct {
		RuleID   string `json:"ruleId"`
		Severity int    `json:"severity"` // 0 off, 1 warn, 2 error
		Message  string `json:"message"`
		Line     int    `json:"line"`
		Column   int    `json:"column"`
	} `json:"messages"`
}

var eslintSecurityPrefixes = []string{
	"security/", "no-eval", "no-implied-eval", "no-new-func", "no-script-url",
	"sonarjs/no-duplicated-branches", "sonarjs/no-element-overwrite", "sonarjs/non-existent-operator",
}

var eslintRecommendations = map[string]string{
	"security/detect-object-injection":        "Validate object keys to prevent prototype pollution",
	"security/detect-unsafe-regex":            "Review regex patterns for ReDoS vulnerabilities",
	"security/detect-eval-with-expression":    "Replace eval() with safer alternatives like JSON.parse()",
	"security/detect-child-process":           "Validate and sanitize all inputs to child processes",
	"security/detect-non-literal-fs-filename": "Use path.resolve() and validate file paths",
	"no-eval":                                 "Replace eval() with JSON.parse() or Function constructor alternatives",
	"no-implied-eval":                         "Avoid setTimeout/setInterval with string arguments",
	"no-new-func":                             "Use regular functions instead of Function constructor",
	"sonarjs/cognitive-complexity":            "Break down complex functions into smaller, more manageable pieces",
	"sonarjs/no-duplicate-string":             "Extract repeated strings into constants",
	"sonarjs/no-identical-functions":          "Extract common logic into shared functions",
}

func parseESLint(b []byte) ([]located, error) {
	var doc eslintJSON
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}

	var out []located
	for _, file := range doc {
		for _, m := range file.Messages {
			kind, confidence := finding.KindQuality, 0.7
			if isESLintSecurityRule(m.RuleID) {
				kind, confidence = finding.KindVulnerability, 0.8
			}
			rec, ok := eslintRecommendations[m.RuleID]
			if !ok {
				rec = "Follow security best practices for this rule"
				if kind == finding.KindQuality {
					rec = "Improve code quality according to best practices"
				}
			}
			out = append(out, located{
				file: file.FilePath,
				finding: finding.RawFinding{
					Source:         "eslint",
					Kind:           kind,
					RuleID:         m.RuleID,
					Category:       eslintCategory(m.RuleID),
					Severity:       strconv.Itoa(m.Severity),
					Message:        m.Message,
					Line:           safeLine(m.Line),
					Column:         safeColumn(m.Column),
					Confidence:     confidence,
					Recommendation: rec,
				},
			})
		}
	}
	return out, nil
}

func isESLintSecurityRule(ruleID string) bool {
	for _, p := range eslintSecurityPrefixes {
		if strings.HasPrefix(ruleID, p) {
			return true
		}
	}
	return false
}

func eslintCategory(ruleID string) string {
	switch {
	case ruleID == "":
		return "unknown"
	case strings.HasPrefix(ruleID, "security/"):
		return "security"
	case strings.HasPrefix(ruleID, "sonarjs/"):
		return "code-quality"
	case ruleID == "no-eval" || ruleID == "no-implied-eval" || ruleID == "no-new-func":
		return "code-injection"
	}
	return "general"
}
