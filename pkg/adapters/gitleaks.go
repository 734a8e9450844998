package adapters

import (
	"encoding/json"

	"github.com/m1rl0k/findingsengine/pkg/finding"
)

type gitleaksJSON []struct {
	RuleID      string   `json:"RuleID"`
	Description string   `json:"Description"`
	Message     string   `json:"Message"`
	StartLine   int      `json:"StartLine"`
	StartColumn int      `json:"StartColumn"`
	Secret      string   `json:"Secret"`
	File        string   `json:"File"`
	Entropy     float64  `json:"Entropy"`
	Fingerprint string   `json:"Fingerprint"`
	Tags        []string `json:"Tags"`
}

var gitleaksHighConfidence = map[string]bool{
	"aws-access-token":    true,
	"github-pat":          true,
	"stripe-access-token": true,
	"rsa-private-key":     true,
}

func parseGitleaks(b []byte) ([]located, error) {
	var doc gitleaksJSON
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}

	out := make([]located, 0, len(doc))
	for _, g := range doc {
		confidence := 0.8
		if gitleaksHighConfidence[g.RuleID] {
			confidence = 0.95
		}
		out = append(out, located{
			file: g.File,
			finding: finding.RawFinding{
				Source:         "gitleaks",
				Kind:           finding.KindSecret,
				RuleID:         g.RuleID,
				Category:       "secrets",
				Severity:       string(finding.GitleaksSeverity(g.RuleID)),
				Message:        firstNonEmpty(g.Description, g.Message, "Secret detected"),
				Line:           safeLine(g.StartLine),
				Column:         safeColumn(g.StartColumn),
				MatchedText:    finding.Mask(g.Secret),
				Confidence:     confidence,
				Recommendation: "Rotate the credential and remove it from repository history",
			},
		})
	}
	return out, nil
}
