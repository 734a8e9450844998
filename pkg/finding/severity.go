package finding

import (
	"strconv"
	"strings"
)

// Severity is the canonical severity vocabulary shared by every detector.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// Severities lists the canonical levels from most to least severe.
func Severities() []Severity {
	return []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo}
}

// Rank orders severities; higher is worse. Unknown values rank below info.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	case SeverityInfo:
		return 0
	default:
		return -1
	}
}

// Valid reports whether s is one of the canonical levels.
func (s Severity) Valid() bool {
	return s.Rank() >= 0
}

// MaxSeverity returns the more severe of a and b.
func MaxSeverity(a, b Severity) Severity {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// ParseSeverity maps the generic vocabulary (canonical names plus common
// aliases such as error/warning/note) onto a canonical Severity.
func ParseSeverity(raw string) (Severity, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "critical", "blocker", "fatal":
		return SeverityCritical, true
	case "high", "error", "major":
		return SeverityHigh, true
	case "medium", "moderate", "warning", "warn":
		return SeverityMedium, true
	case "low", "minor", "note":
		return SeverityLow, true
	case "info", "informational", "none", "unknown":
		return SeverityInfo, true
	}
	return "", false
}

// MapSeverity converts a tool-specific severity into the canonical vocabulary.
// The tool's own table is consulted first, then the generic vocabulary.
// ok is false when neither recognises raw.
func MapSeverity(tool, raw string) (Severity, bool) {
	var (
		sev Severity
		ok  bool
	)
	switch strings.ToLower(strings.TrimSpace(tool)) {
	case "eslint":
		sev, ok = eslintSeverity(raw)
	case "semgrep":
		sev, ok = semgrepSeverity(raw)
	case "trivy", "kics":
		sev, ok = trivySeverity(raw)
	case "trufflehog":
		sev, ok = trufflehogSeverity(raw)
	}
	if ok {
		return sev, true
	}
	return ParseSeverity(raw)
}

// ESLint reports 2 for errors, 1 for warnings and 0 for off.
func eslintSeverity(raw string) (Severity, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	switch n {
	case 2:
		return SeverityHigh, true
	case 1:
		return SeverityMedium, true
	case 0:
		return SeverityInfo, true
	}
	return "", false
}

func semgrepSeverity(raw string) (Severity, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "ERROR":
		return SeverityHigh, true
	case "WARNING":
		return SeverityMedium, true
	case "INFO":
		return SeverityLow, true
	}
	return "", false
}

func trivySeverity(raw string) (Severity, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "CRITICAL":
		return SeverityCritical, true
	case "HIGH":
		return SeverityHigh, true
	case "MEDIUM":
		return SeverityMedium, true
	case "LOW":
		return SeverityLow, true
	case "UNKNOWN", "INFO":
		return SeverityInfo, true
	}
	return "", false
}

// TruffleHog has no severity field; the adapter emits "verified" or "unverified".
func trufflehogSeverity(raw string) (Severity, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "verified":
		return SeverityHigh, true
	case "unverified":
		return SeverityMedium, true
	}
	return "", false
}

var (
	gitleaksHigh = map[string]bool{
		"aws-access-token": true, "aws-secret-key": true, "github-pat": true, "gitlab-pat": true,
		"stripe-access-token": true, "rsa-private-key": true, "ssh-private-key": true, "private-key": true,
	}
	gitleaksMedium = map[string]bool{
		"github-oauth": true, "slack-access-token": true, "discord-api-token": true,
		"twilio-api-key": true, "sendgrid-api-token": true, "jwt": true,
	}
)

// GitleaksSeverity rates a Gitleaks rule id. Gitleaks reports no severity of
// its own; unlisted rules are low.
func GitleaksSeverity(ruleID string) Severity {
	id := strings.ToLower(strings.TrimSpace(ruleID))
	switch {
	case gitleaksHigh[id]:
		return SeverityHigh
	case gitleaksMedium[id]:
		return SeverityMedium
	}
	return SeverityLow
}

// SeverityCounts buckets findings by canonical severity.
type SeverityCounts struct {
	Critical int `json:"critical" yaml:"critical"`
	High     int `json:"high" yaml:"high"`
	Medium   int `json:"medium" yaml:"medium"`
	Low      int `json:"low" yaml:"low"`
	Info     int `json:"info" yaml:"info"`
}

// Add increments the bucket for s. Unknown severities count as info.
func (c *SeverityCounts) Add(s Severity) {
	switch s {
	case SeverityCritical:
		c.Critical++
	case SeverityHigh:
		c.High++
	case SeverityMedium:
		c.Medium++
	case SeverityLow:
		c.Low++
	default:
		c.Info++
	}
}

// Get returns the count for s.
func (c SeverityCounts) Get(s Severity) int {
	switch s {
	case SeverityCritical:
		return c.Critical
	case SeverityHigh:
		return c.High
	case SeverityMedium:
		return c.Medium
	case SeverityLow:
		return c.Low
	default:
		return c.Info
	}
}

// Total is the number of findings across all buckets.
func (c SeverityCounts) Total() int {
	return c.Critical + c.High + c.Medium + c.Low + c.Info
}

// CountSeverities buckets a canonical finding set.
func CountSeverities(findings []CanonicalFinding) SeverityCounts {
	var c SeverityCounts
	for _, f := range findings {
		c.Add(f.Severity)
	}
	return c
}
