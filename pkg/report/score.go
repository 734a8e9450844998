package report

import "github.com/m1rl0k/findingsengine/pkg/finding"

// Score deductions per finding.
const (
	MaxScore        = 100
	CriticalPenalty = 25
	HighPenalty     = 10
	MediumPenalty   = 5
	LowPenalty      = 2
)

// Risk is the overall risk level of a scan.
type Risk string

const (
	RiskCritical Risk = "critical"
	RiskHigh     Risk = "high"
	RiskMedium   Risk = "medium"
	RiskLow      Risk = "low"
	RiskMinimal  Risk = "minimal"
)

// Score subtracts severity penalties from MaxScore, clamped to [0, MaxScore].
// Info findings do not affect the score.
func Score(c finding.SeverityCounts) int {
	deductions := CriticalPenalty*c.Critical +
		HighPenalty*c.High +
		MediumPenalty*c.Medium +
		LowPenalty*c.Low
	score := MaxScore - deductions
	if score < 0 {
		return 0
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

// Grade maps a score to a letter.
func Grade(score int) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}

// ScoreDescription summarizes a score in one sentence.
func ScoreDescription(score int) string {
	switch {
	case score >= 90:
		return "Excellent security posture"
	case score >= 80:
		return "Good security with minor improvements needed"
	case score >= 70:
		return "Moderate security, several issues to address"
	case score >= 60:
		return "Poor security, significant improvements required"
	default:
		return "Critical security issues, immediate action required"
	}
}

// RiskLevel is the highest severity present, or minimal.
func RiskLevel(c finding.SeverityCounts) Risk {
	switch {
	case c.Critical > 0:
		return RiskCritical
	case c.High > 0:
		return RiskHigh
	case c.Medium > 0:
		return RiskMedium
	case c.Low > 0:
		return RiskLow
	default:
		return RiskMinimal
	}
}

// Status is the executive headline for a risk level and finding total.
func Status(risk Risk, total int) string {
	switch risk {
	case RiskCritical:
		return "IMMEDIATE ACTION REQUIRED"
	case RiskHigh:
		return "HIGH RISK - ACTION NEEDED"
	case RiskMedium:
		return "MODERATE RISK"
	case RiskLow:
		return "LOW RISK"
	}
	if total == 0 {
		return "SECURE"
	}
	return "REVIEW NEEDED"
}

var executiveAdvice = map[Risk]string{
	RiskCritical: "Suspend deployment and address critical vulnerabilities immediately. Security team intervention required.",
	RiskHigh:     "Prioritize security fixes before next deployment. Review and remediate high-risk issues within 48 hours.",
	RiskMedium:   "Plan security improvements in next sprint. Address medium-priority issues within 2 weeks.",
	RiskLow:      "Consider security enhancements as technical debt. Address in upcoming maintenance cycle.",
	RiskMinimal:  "Excellent security posture. Continue following security best practices.",
}

// ExecutiveRecommendation is the fixed advice for a risk level. Informational
// findings on an otherwise minimal scan ask for a review.
func ExecutiveRecommendation(risk Risk, total int) string {
	if risk == RiskMinimal && total > 0 {
		return "Review informational findings and implement appropriate security measures."
	}
	if advice, ok := executiveAdvice[risk]; ok {
		return advice
	}
	return "Review findings and implement appropriate security measures."
}

// MaintainabilityScore deducts two points per quality issue, at most 50.
func MaintainabilityScore(qualityIssues int) int {
	deduction := 2 * qualityIssues
	if deduction > 50 {
		deduction = 50
	}
	return MaxScore - deduction
}
