package adapters

import (
	"encoding/json"
	"strings"

	"github.com/m1rl0k/findingsengine/pkg/finding"
)

type semgrepJSON struct {
	Results []struct {
		CheckID string `json:"check_id"`
		Path    string `json:"path"`
		Start   struct {
			Line int `json:"line"`
			Col  int `json:"col"`
		} `json:"start"`
		Extra struct {
			Message  string `json:"message"`
			Severity string `json:"severity"` // INFO|WARNING|ERROR
			Lines    string `json:"lines"`
			Metadata struct {
				Cwe        interface{} `json:"cwe"`   // string | []string | null
				Owasp      interface{} `json:"owasp"` // string | []string | null
				Category   string      `json:"category"`
				Confidence string      `json:"confidence"`
				Subcat     []string    `json:"subcategory"`
				Class      []string    `json:"vulnerability_class"`
				Fix        string      `json:"fix"`
			} `json:"metadata"`
		} `json:"extra"`
	} `json:"results"`
}

func parseSemgrep(b []byte) ([]located, error) {
	var doc semgrepJSON
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}

	out := make([]located, 0, len(doc.Results))
	for _, r := range doc.Results {
		md := r.Extra.Metadata
		kind := finding.KindVulnerability
		if strings.EqualFold(md.Category, "secrets") || strings.Contains(strings.ToLower(r.CheckID), "secret") {
			kind = finding.KindSecret
		}
		category := md.Category
		if len(md.Class) > 0 {
			category = md.Class[0]
		}
		out = append(out, located{
			file: r.Path,
			finding: finding.RawFinding{
				Source:         "semgrep",
				Kind:           kind,
				RuleID:         r.CheckID,
				Category:       category,
				Severity:       r.Extra.Severity,
				Message:        strings.TrimSpace(r.Extra.Message),
				Line:           safeLine(r.Start.Line),
				Column:         safeColumn(r.Start.Col),
				MatchedText:    strings.TrimSpace(r.Extra.Lines),
				Confidence:     semgrepConfidence(md.Confidence),
				Recommendation: md.Fix,
				CWE:            first(toList(md.Cwe)),
				OWASP:          first(toList(md.Owasp)),
			},
		})
	}
	return out, nil
}

func semgrepConfidence(s string) float64 {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "HIGH":
		return 0.9
	case "MEDIUM":
		return 0.7
	case "LOW":
		return 0.5
	default:
		return 0.8
	}
}

func toList(v interface{}) []string {
	switch t := v.(type) {
	case string:
		if t != "" {
			return []string{t}
		}
	case []interface{}:
		out := []string{}
		for _, e := range t {
			if s, ok := e.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// first returns the leading identifier of the first entry, so
// "CWE-89: Improper Neutralization..." becomes "CWE-89".
func first(vals []string) string {
	if len(vals) == 0 {
		return ""
	}
	v := vals[0]
	if i := strings.Index(v, ":"); i > 0 {
		v = v[:i]
	}
	return strings.TrimSpace(v)
}
