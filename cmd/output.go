package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/m1rl0k/findingsengine/pkg/report"
	"github.com/m1rl0k/findingsengine/pkg/sarif"
)

const (
	ResetColor    = "\033[0m"
	RedColor      = "\033[31m"
	GreenColor    = "\033[32m"
	YellowColor   = "\033[33m"
	SeparatorLine = "------------------------------------------------------------------------"
)

// fileReport is the serialized scan of one file.
type fileReport struct {
	Path   string        `json:"path" yaml:"path"`
	Report report.Report `json:"report" yaml:"report"`
}

func render(w io.Writer, format string, results []fileResult) error {
	switch strings.ToLower(format) {
	case "", "text":
		renderText(w, results)
		return nil
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(fileReports(results))
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(fileReports(results)); err != nil {
			return err
		}
		return enc.Close()
	case "sarif":
		files := make([]sarif.File, 0, len(results))
		for _, r := range results {
			files = append(files, sarif.File{Path: r.name(), Report: r.Result.Report})
		}
		return sarif.Encode(w, sarif.Build(files, "findingsengine", Version))
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func fileReports(results []fileResult) []fileReport {
	out := make([]fileReport, 0, len(results))
	for _, r := range results {
		out = append(out, fileReport{Path: r.name(), Report: r.Result.Report})
	}
	return out
}

func severityColor(s string) string {
	switch s {
	case "critical", "high":
		return RedColor
	case "medium", "low":
		return YellowColor
	default:
		return ResetColor
	}
}

func renderText(w io.Writer, results []fileResult) {
	total := 0
	for _, res := range results {
		r := res.Result.Report
		fs := allFindings(r.Findings)
		total += len(fs)
		if len(fs) == 0 && len(results) > 1 {
			continue
		}

		fmt.Fprintf(w, "\n%s%s%s\n", YellowColor, SeparatorLine, ResetColor)
		fmt.Fprintf(w, "%sFile:%s %s (%s)\n", YellowColor, ResetColor, res.name(), r.Executive.Language)
		fmt.Fprintf(w, "%sScore:%s %d (%s) %sRisk:%s %s %sStatus:%s %s\n",
			YellowColor, ResetColor, r.Security.Score.Score, r.Security.Score.Grade,
			YellowColor, ResetColor, r.Executive.OverallRisk,
			YellowColor, ResetColor, r.Executive.Status)

		for _, f := range fs {
			color := severityColor(f.Severity)
			fmt.Fprintf(w, "\n%s[%s]%s %s  %s\n", color, strings.ToUpper(f.Severity), ResetColor, f.Category, f.Location)
			fmt.Fprintf(w, "  %s\n", f.Message)
			if f.MaskedValue != "" {
				fmt.Fprintf(w, "  %sValue:%s %s\n", YellowColor, ResetColor, f.MaskedValue)
			}
			fmt.Fprintf(w, "  %sRules:%s %s  %sSources:%s %s  %sConfidence:%s %.2f\n",
				YellowColor, ResetColor, strings.Join(f.RuleIDs, ", "),
				YellowColor, ResetColor, strings.Join(f.Sources, ", "),
				YellowColor, ResetColor, f.Confidence)
			if f.Recommendation != "" {
				fmt.Fprintf(w, "  %sFix:%s %s\n", YellowColor, ResetColor, f.Recommendation)
			}
		}
		if n := r.Metrics.Scan.Suppressed; n > 0 {
			fmt.Fprintf(w, "\n%d baselined findings suppressed.\n", n)
		}
	}

	if total == 0 {
		fmt.Fprintf(w, "%sNo findings.%s\n", GreenColor, ResetColor)
		return
	}
	fmt.Fprintf(w, "%s%s\n", YellowColor, SeparatorLine)
	fmt.Fprintf(w, "%s%d findings. Please review and remediate them before committing your code.%s\n", RedColor, total, ResetColor)
}

func allFindings(fs report.Findings) []report.Finding {
	out := make([]report.Finding, 0, len(fs.Vulnerabilities)+len(fs.Secrets)+len(fs.CodeQuality))
	out = append(out, fs.Secrets...)
	out = append(out, fs.Vulnerabilities...)
	return append(out, fs.CodeQuality...)
}
