package adapters

import (
	"encoding/json"

	"github.com/m1rl0k/findingsengine/pkg/finding"
)

type trivyJSON struct {
	Results []struct {
		Target            string `json:"Target"`
		Misconfigurations []struct {
			ID            string   `json:"ID"`
			Title         string   `json:"Title"`
			Description   string   `json:"Description"`
			Resolution    string   `json:"Resolution"`
			Severity      string   `json:"Severity"`
			PrimaryURL    string   `json:"PrimaryURL"`
			References    []string `json:"References"`
			CauseMetadata struct {
				StartLine int `json:"StartLine"`
			} `json:"CauseMetadata"`
		} `json:"Misconfigurations"`
		Secrets []struct {
			RuleID    string `json:"RuleID"`
			Category  string `json:"Category"`
			Severity  string `json:"Severity"`
			Title     string `json:"Title"`
			StartLine int    `json:"StartLine"`
			Match     string `json:"Match"`
		} `json:"Secrets"`
	} `json:"Results"`
}

func parseTrivy(b []byte) ([]located, error) {
	var doc trivyJSON
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}

	var out []located
	for _, r := range doc.Results {
		for _, m := range r.Misconfigurations {
			rec := m.Resolution
			if rec == "" {
				rec = firstNonEmpty(m.PrimaryURL, firstRef(m.References))
			}
			out = append(out, located{
				file: r.Target,
				finding: finding.RawFinding{
					Source:         "trivy",
					Kind:           finding.KindVulnerability,
					RuleID:         m.ID,
					Category:       "misconfiguration",
					Severity:       m.Severity,
					Message:        firstNonEmpty(m.Description, m.Title),
					Line:           safeLine(m.CauseMetadata.StartLine),
					Confidence:     0.8,
					Recommendation: rec,
				},
			})
		}
		// Trivy redacts the secret inside Match itself.
		for _, s := range r.Secrets {
			out = append(out, located{
				file: r.Target,
				finding: finding.RawFinding{
					Source:      "trivy",
					Kind:        finding.KindSecret,
					RuleID:      s.RuleID,
					Category:    "secrets",
					Severity:    s.Severity,
					Message:     firstNonEmpty(s.Title, s.Category),
					Line:        safeLine(s.StartLine),
					MatchedText: s.Match,
					Confidence:  0.85,
				},
			})
		}
	}
	return out, nil
}

func firstRef(refs []string) string {
	if len(refs) == 0 {
		return ""
	}
	return refs[0]
}
