// Package finding defines the finding shapes exchanged between detectors,
// the normalizer and the report builder.
package finding

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Kind discriminates what a detector found.
type Kind string

const (
	KindSecret        Kind = "secret"
	KindVulnerability Kind = "vulnerability"
	KindQuality       Kind = "quality"
)

// ParseKind accepts the canonical kind names plus the tool aliases seen in
// external detector output.
func ParseKind(raw string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "secret", "secrets":
		return KindSecret, true
	case "vulnerability", "security-vulnerability", "vuln":
		return KindVulnerability, true
	case "quality", "code-quality":
		return KindQuality, true
	}
	return "", false
}

// RawFinding is what every detector, internal or external, hands to the
// normalizer. Severity is kept in the producing tool's vocabulary; Line and
// Column are 1-based.
type RawFinding struct {
	Source         string   `json:"source"`
	Kind           Kind     `json:"kind"`
	RuleID         string   `json:"ruleId"`
	Category       string   `json:"category,omitempty"`
	Severity       string   `json:"severity"`
	Message        string   `json:"message"`
	Line           int      `json:"line"`
	Column         int      `json:"column"`
	MatchedText    string   `json:"matchedText,omitempty"`
	Confidence     float64  `json:"confidence"`
	Context        []string `json:"context,omitempty"`
	Recommendation string   `json:"recommendation,omitempty"`
	CWE            string   `json:"cwe,omitempty"`
	OWASP          string   `json:"owasp,omitempty"`
}

// Validate checks the producer contract.
func (r RawFinding) Validate() error {
	switch {
	case strings.TrimSpace(r.Source) == "":
		return &InputError{Field: "source", Reason: "empty"}
	case r.Kind != KindSecret && r.Kind != KindVulnerability && r.Kind != KindQuality:
		return &InputError{Field: "kind", Reason: fmt.Sprintf("unknown kind %q", r.Kind)}
	case r.Line < 1:
		return &InputError{Field: "line", Reason: fmt.Sprintf("must be 1-based, got %d", r.Line)}
	case r.Column < 0:
		return &InputError{Field: "column", Reason: fmt.Sprintf("negative column %d", r.Column)}
	case r.Confidence < 0 || r.Confidence > 1:
		return &InputError{Field: "confidence", Reason: fmt.Sprintf("%.2f outside [0,1]", r.Confidence)}
	case !utf8.ValidString(r.MatchedText):
		return &InputError{Field: "matchedText", Reason: "invalid UTF-8"}
	}
	return nil
}

// CanonicalFinding is one deduplicated issue after normalization. It is
// immutable once the normalizer returns it.
type CanonicalFinding struct {
	Key            string   `json:"key"`
	Kind           Kind     `json:"kind"`
	Category       string   `json:"category"`
	RuleIDs        []string `json:"ruleIds"`
	Severity       Severity `json:"severity"`
	Message        string   `json:"message"`
	Line           int      `json:"line"`
	Column         int      `json:"column"`
	MaskedValue    string   `json:"maskedValue,omitempty"`
	Confidence     float64  `json:"confidence"`
	Sources        []string `json:"sources"`
	Context        []string `json:"context,omitempty"`
	Recommendation string   `json:"recommendation,omitempty"`
	CWE            string   `json:"cwe,omitempty"`
	OWASP          string   `json:"owasp,omitempty"`
}

// Location renders the finding position for humans.
func (f CanonicalFinding) Location() string {
	if f.Column > 0 {
		return fmt.Sprintf("Line %d, Column %d", f.Line, f.Column)
	}
	return fmt.Sprintf("Line %d", f.Line)
}

// InputError reports malformed input to the engine.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
}
