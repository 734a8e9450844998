// Package report turns a finished scan session into a read-only report:
// score, grade, risk, executive summary, categorized findings and a
// prioritized remediation plan.
package report

import (
	"sort"
	"time"

	"github.com/m1rl0k/findingsengine/pkg/finding"
	"github.com/m1rl0k/findingsengine/pkg/session"
)

// Report is the consumer-facing view of one scan.
type Report struct {
	Executive       Executive       `json:"executive" yaml:"executive"`
	Security        Security        `json:"security" yaml:"security"`
	Findings        Findings        `json:"findings" yaml:"findings"`
	Recommendations Recommendations `json:"recommendations" yaml:"recommendations"`
	NextSteps       []Step          `json:"nextSteps" yaml:"next_steps"`
	Metrics         Metrics         `json:"metrics" yaml:"metrics"`
}

type Executive struct {
	ScanID         string      `json:"scanId" yaml:"scan_id"`
	Timestamp      time.Time   `json:"timestamp" yaml:"timestamp"`
	Language       string      `json:"language" yaml:"language"`
	CodeMetrics    CodeMetrics `json:"codeMetrics" yaml:"code_metrics"`
	OverallRisk    Risk        `json:"overallRisk" yaml:"overall_risk"`
	TotalIssues    int         `json:"totalIssues" yaml:"total_issues"`
	Critical       int         `json:"criticalFindings" yaml:"critical_findings"`
	High           int         `json:"highFindings" yaml:"high_findings"`
	Status         string      `json:"status" yaml:"status"`
	Recommendation string      `json:"recommendation" yaml:"recommendation"`
}

type CodeMetrics struct {
	LinesOfCode  int   `json:"linesOfCode" yaml:"lines_of_code"`
	Characters   int   `json:"characters" yaml:"characters"`
	ScanDuration int64 `json:"scanDurationMs" yaml:"scan_duration_ms"`
}

type Security struct {
	Score                  ScoreCard                `json:"securityScore" yaml:"security_score"`
	VulnerabilityBreakdown map[string]CategoryCount `json:"vulnerabilityBreakdown" yaml:"vulnerability_breakdown"`
	Secrets                SecretsAnalysis          `json:"secretsAnalysis" yaml:"secrets_analysis"`
	CodeQuality            QualitySummary           `json:"codeQualityIssues" yaml:"code_quality_issues"`
	Compliance             Compliance               `json:"complianceCheck" yaml:"compliance_check"`
}

type ScoreCard struct {
	Score       int    `json:"score" yaml:"score"`
	Grade       string `json:"grade" yaml:"grade"`
	Description string `json:"description" yaml:"description"`
}

type CategoryCount struct {
	Count    int    `json:"count" yaml:"count"`
	Severity Counts `json:"severity" yaml:"severity"`
}

type SecretsAnalysis struct {
	Total      int            `json:"totalSecrets" yaml:"total_secrets"`
	ByType     map[string]int `json:"byType" yaml:"by_type"`
	BySeverity Counts         `json:"bySeverity" yaml:"by_severity"`
	HighRisk   int            `json:"highRiskSecrets" yaml:"high_risk_secrets"`
}

type QualitySummary struct {
	Total                int            `json:"totalIssues" yaml:"total_issues"`
	Categories           map[string]int `json:"categories" yaml:"categories"`
	MaintainabilityScore int            `json:"maintainabilityScore" yaml:"maintainability_score"`
}

type Compliance struct {
	OWASP   OWASPCompliance `json:"owasp" yaml:"owasp"`
	PCI     PCICompliance   `json:"pci" yaml:"pci"`
	Overall string          `json:"overall" yaml:"overall"`
}

type OWASPCompliance struct {
	Status     string   `json:"status" yaml:"status"`
	Issues     int      `json:"issues" yaml:"issues"`
	Categories []string `json:"categories" yaml:"categories"`
}

type PCICompliance struct {
	Status string   `json:"status" yaml:"status"`
	Issues []string `json:"issues" yaml:"issues"`
}

// Counts mirrors the session severity counts.
type Counts struct {
	Critical int `json:"critical" yaml:"critical"`
	High     int `json:"high" yaml:"high"`
	Medium   int `json:"medium" yaml:"medium"`
	Low      int `json:"low" yaml:"low"`
	Info     int `json:"info" yaml:"info"`
}

// Total is the sum of all buckets.
func (c Counts) Total() int {
	return c.Critical + c.High + c.Medium + c.Low + c.Info
}

func countsOf(c finding.SeverityCounts) Counts {
	return Counts{Critical: c.Critical, High: c.High, Medium: c.Medium, Low: c.Low, Info: c.Info}
}

// Findings groups canonical findings by kind, each group in ranked order.
type Findings struct {
	Vulnerabilities []Finding `json:"vulnerabilities" yaml:"vulnerabilities"`
	Secrets         []Finding `json:"secrets" yaml:"secrets"`
	CodeQuality     []Finding `json:"codeQuality" yaml:"code_quality"`
	Summary         Summary   `json:"summary" yaml:"summary"`
}

type Summary struct {
	Total      int            `json:"totalFindings" yaml:"total_findings"`
	ByCategory map[string]int `json:"findingsByCategory" yaml:"findings_by_category"`
	BySeverity Counts         `json:"findingsBySeverity" yaml:"findings_by_severity"`
}

// Finding is the serialized form of a canonical finding.
type Finding struct {
	Key            string   `json:"key" yaml:"key"`
	Kind           string   `json:"kind" yaml:"kind"`
	Category       string   `json:"category" yaml:"category"`
	RuleIDs        []string `json:"ruleIds" yaml:"rule_ids"`
	Severity       string   `json:"severity" yaml:"severity"`
	Message        string   `json:"message" yaml:"message"`
	Line           int      `json:"line" yaml:"line"`
	Column         int      `json:"column" yaml:"column"`
	Location       string   `json:"location" yaml:"location"`
	MaskedValue    string   `json:"maskedValue,omitempty" yaml:"masked_value,omitempty"`
	Confidence     float64  `json:"confidence" yaml:"confidence"`
	Sources        []string `json:"sources" yaml:"sources"`
	Context        []string `json:"context,omitempty" yaml:"context,omitempty"`
	Recommendation string   `json:"recommendation,omitempty" yaml:"recommendation,omitempty"`
	CWE            string   `json:"cwe,omitempty" yaml:"cwe,omitempty"`
	OWASP          string   `json:"owasp,omitempty" yaml:"owasp,omitempty"`
	Impact         string   `json:"impact,omitempty" yaml:"impact,omitempty"`
}

type Metrics struct {
	SeverityDistribution Counts         `json:"severityDistribution" yaml:"severity_distribution"`
	CategoryDistribution map[string]int `json:"categoryDistribution" yaml:"category_distribution"`
	RiskScore            int            `json:"riskScore" yaml:"risk_score"`
	Scan                 ScanMetrics    `json:"scanMetrics" yaml:"scan_metrics"`
}

type ScanMetrics struct {
	Duration     int64    `json:"durationMs" yaml:"duration_ms"`
	LinesScanned int      `json:"linesScanned" yaml:"lines_scanned"`
	ToolsUsed    []string `json:"toolsUsed" yaml:"tools_used"`
	Suppressed   int      `json:"suppressed" yaml:"suppressed"`
	Notes        []string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

var impacts = map[string]string{
	"sql-injection":     "Data breach, unauthorized access to database",
	"xss":               "Client-side code execution, session hijacking",
	"code-injection":    "Remote code execution, complete system compromise",
	"command-injection": "Remote code execution, complete system compromise",
	"path-traversal":    "Unauthorized file access, information disclosure",
	"deserialization":   "Remote code execution through crafted payloads",
	"crypto":            "Weakened confidentiality or integrity of protected data",
}

// Build freezes s and derives its report. Severity counts come from the
// session, never from a recount here.
func Build(s *session.Session) Report {
	s.Freeze()

	fs := s.Findings()
	counts := s.SeverityCounts()
	score := Score(counts)
	risk := RiskLevel(counts)
	total := counts.Total()
	metrics := s.Metrics()
	duration := s.Duration().Milliseconds()

	grouped := group(fs)
	byCategory := categoryDistribution(fs)

	return Report{
		Executive: Executive{
			ScanID:    s.ID(),
			Timestamp: s.Timestamp(),
			Language:  s.Language(),
			CodeMetrics: CodeMetrics{
				LinesOfCode:  metrics.Lines,
				Characters:   metrics.Chars,
				ScanDuration: duration,
			},
			OverallRisk:    risk,
			TotalIssues:    total,
			Critical:       counts.Critical,
			High:           counts.High,
			Status:         Status(risk, total),
			Recommendation: ExecutiveRecommendation(risk, total),
		},
		Security: Security{
			Score:                  ScoreCard{Score: score, Grade: Grade(score), Description: ScoreDescription(score)},
			VulnerabilityBreakdown: vulnerabilityBreakdown(fs),
			Secrets:                analyzeSecrets(fs),
			CodeQuality:            analyzeQuality(fs),
			Compliance:             compliance(fs, counts),
		},
		Findings: Findings{
			Vulnerabilities: grouped[finding.KindVulnerability],
			Secrets:         grouped[finding.KindSecret],
			CodeQuality:     grouped[finding.KindQuality],
			Summary: Summary{
				Total:      total,
				ByCategory: byCategory,
				BySeverity: countsOf(counts),
			},
		},
		Recommendations: recommend(fs),
		NextSteps:       nextSteps(counts),
		Metrics: Metrics{
			SeverityDistribution: countsOf(counts),
			CategoryDistribution: byCategory,
			RiskScore:            score,
			Scan: ScanMetrics{
				Duration:     duration,
				LinesScanned: metrics.Lines,
				ToolsUsed:    s.Tools(),
				Suppressed:   s.Suppressed(),
				Notes:        s.Notes(),
			},
		},
	}
}

func view(f finding.CanonicalFinding) Finding {
	out := Finding{
		Key:            f.Key,
		Kind:           string(f.Kind),
		Category:       f.Category,
		RuleIDs:        append([]string(nil), f.RuleIDs...),
		Severity:       string(f.Severity),
		Message:        f.Message,
		Line:           f.Line,
		Column:         f.Column,
		Location:       f.Location(),
		MaskedValue:    f.MaskedValue,
		Confidence:     f.Confidence,
		Sources:        append([]string(nil), f.Sources...),
		Context:        append([]string(nil), f.Context...),
		Recommendation: f.Recommendation,
		CWE:            f.CWE,
		OWASP:          f.OWASP,
	}
	if f.Kind == finding.KindVulnerability {
		out.Impact = impacts[f.Category]
		if out.Impact == "" {
			out.Impact = "Security risk requiring attention"
		}
	}
	return out
}

func group(fs []finding.CanonicalFinding) map[finding.Kind][]Finding {
	out := map[finding.Kind][]Finding{
		finding.KindVulnerability: {},
		finding.KindSecret:        {},
		finding.KindQuality:       {},
	}
	for _, f := range fs {
		out[f.Kind] = append(out[f.Kind], view(f))
	}
	return out
}

func categoryDistribution(fs []finding.CanonicalFinding) map[string]int {
	out := make(map[string]int)
	for _, f := range fs {
		out[categoryOf(f)]++
	}
	return out
}

func categoryOf(f finding.CanonicalFinding) string {
	if f.Category == "" {
		return "other"
	}
	return f.Category
}

func vulnerabilityBreakdown(fs []finding.CanonicalFinding) map[string]CategoryCount {
	out := make(map[string]CategoryCount)
	for _, f := range fs {
		if f.Kind != finding.KindVulnerability {
			continue
		}
		cat := categoryOf(f)
		cc := out[cat]
		cc.Count++
		cc.Severity = addCount(cc.Severity, f.Severity)
		out[cat] = cc
	}
	return out
}

func addCount(c Counts, s finding.Severity) Counts {
	sc := finding.SeverityCounts{Critical: c.Critical, High: c.High, Medium: c.Medium, Low: c.Low, Info: c.Info}
	sc.Add(s)
	return countsOf(sc)
}

func analyzeSecrets(fs []finding.CanonicalFinding) SecretsAnalysis {
	a := SecretsAnalysis{ByType: make(map[string]int)}
	for _, f := range fs {
		if f.Kind != finding.KindSecret {
			continue
		}
		a.Total++
		a.ByType[secretType(f)]++
		a.BySeverity = addCount(a.BySeverity, f.Severity)
		if f.Severity.Rank() >= finding.SeverityHigh.Rank() {
			a.HighRisk++
		}
	}
	return a
}

// secretType names a secret by its most specific rule. Rule IDs are sorted,
// so generic rules are skipped in favor of provider rules when both matched.
func secretType(f finding.CanonicalFinding) string {
	for _, id := range f.RuleIDs {
		if id != "generic-api-key" && id != "password-field" {
			return id
		}
	}
	if len(f.RuleIDs) > 0 {
		return f.RuleIDs[0]
	}
	return "unknown"
}

func analyzeQuality(fs []finding.CanonicalFinding) QualitySummary {
	q := QualitySummary{Categories: make(map[string]int)}
	for _, f := range fs {
		if f.Kind != finding.KindQuality {
			continue
		}
		q.Total++
		q.Categories[categoryOf(f)]++
	}
	q.MaintainabilityScore = MaintainabilityScore(q.Total)
	return q
}

func compliance(fs []finding.CanonicalFinding, counts finding.SeverityCounts) Compliance {
	tags := make(map[string]bool)
	owaspIssues := 0
	secrets := 0
	for _, f := range fs {
		switch f.Kind {
		case finding.KindVulnerability:
			if f.OWASP != "" {
				owaspIssues++
				tags[f.OWASP] = true
			}
		case finding.KindSecret:
			secrets++
		}
	}

	c := Compliance{
		OWASP: OWASPCompliance{Status: "compliant", Issues: owaspIssues, Categories: []string{}},
		PCI:   PCICompliance{Status: "compliant", Issues: []string{}},
	}
	if owaspIssues > 0 {
		c.OWASP.Status = "non-compliant"
		for tag := range tags {
			c.OWASP.Categories = append(c.OWASP.Categories, tag)
		}
		sort.Strings(c.OWASP.Categories)
	}
	if secrets > 0 {
		c.PCI.Status = "non-compliant"
		c.PCI.Issues = append(c.PCI.Issues, "Hardcoded secrets detected")
	}

	switch {
	case counts.Critical > 0 || counts.High > 0 || secrets > 0:
		c.Overall = "non-compliant"
	case counts.Medium > 0:
		c.Overall = "partial-compliance"
	default:
		c.Overall = "compliant"
	}
	return c
}
