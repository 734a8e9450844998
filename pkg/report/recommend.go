package report

import (
	"fmt"

	"github.com/m1rl0k/findingsengine/pkg/finding"
)

// Recommendations buckets remediation work by urgency.
type Recommendations struct {
	Immediate  []Action `json:"immediate" yaml:"immediate"`
	ShortTerm  []string `json:"shortTerm" yaml:"short_term"`
	LongTerm   []string `json:"longTerm" yaml:"long_term"`
	Preventive []string `json:"preventive" yaml:"preventive"`
}

// Action is an immediate fix for a critical finding.
type Action struct {
	Kind     string `json:"type" yaml:"type"`
	Action   string `json:"action" yaml:"action"`
	Location string `json:"location" yaml:"location"`
	Priority string `json:"priority" yaml:"priority"`
}

// Step is one entry of the next-steps action plan.
type Step struct {
	Priority int    `json:"priority" yaml:"priority"`
	Action   string `json:"action" yaml:"action"`
	Timeline string `json:"timeline" yaml:"timeline"`
	Impact   string `json:"impact" yaml:"impact"`
}

// PreventiveMeasures are recommended regardless of findings.
func PreventiveMeasures() []string {
	return []string{
		"Implement automated security scanning in CI/CD pipeline",
		"Set up secret scanning in repository",
		"Regular security training for development team",
		"Establish secure coding standards",
	}
}

func recommend(fs []finding.CanonicalFinding) Recommendations {
	r := Recommendations{
		Immediate:  []Action{},
		ShortTerm:  []string{},
		LongTerm:   []string{},
		Preventive: PreventiveMeasures(),
	}
	seenShort := make(map[string]bool)
	seenLong := make(map[string]bool)

	for _, f := range fs {
		switch f.Severity {
		case finding.SeverityCritical:
			r.Immediate = append(r.Immediate, Action{
				Kind:     string(f.Kind),
				Action:   "Fix " + f.Message,
				Location: f.Location(),
				Priority: "CRITICAL",
			})
		case finding.SeverityHigh:
			text := remediation(f)
			if !seenShort[text] {
				seenShort[text] = true
				r.ShortTerm = append(r.ShortTerm, text)
			}
		case finding.SeverityMedium, finding.SeverityLow:
			text := remediation(f)
			if !seenLong[text] {
				seenLong[text] = true
				r.LongTerm = append(r.LongTerm, text)
			}
		}
	}
	return r
}

func remediation(f finding.CanonicalFinding) string {
	if f.Recommendation != "" {
		return f.Recommendation
	}
	return fmt.Sprintf("Fix %s (%s)", f.Message, f.Location())
}

func nextSteps(c finding.SeverityCounts) []Step {
	var steps []Step
	if c.Critical > 0 {
		steps = append(steps, Step{
			Priority: 1,
			Action:   fmt.Sprintf("Address %d critical security issues immediately", c.Critical),
			Timeline: "Within 24 hours",
			Impact:   "Prevents potential security breaches",
		})
	}
	if c.High > 0 {
		steps = append(steps, Step{
			Priority: 2,
			Action:   fmt.Sprintf("Fix %d high-priority vulnerabilities", c.High),
			Timeline: "Within 1 week",
			Impact:   "Reduces attack surface significantly",
		})
	}
	return append(steps, Step{
		Priority: 3,
		Action:   "Implement security scanning in CI/CD pipeline",
		Timeline: "Within 2 weeks",
		Impact:   "Prevents future vulnerabilities",
	})
}
