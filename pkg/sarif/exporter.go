// Package sarif renders scan reports as SARIF 2.1.0.
package sarif

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/m1rl0k/findingsengine/pkg/report"
)

const (
	Version = "2.1.0"
	Schema  = "https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json"
)

type Log struct {
	Version string `json:"version"`
	Schema  string `json:"$schema"`
	Runs    []Run  `json:"runs"`
}

type Run struct {
	Tool    Tool     `json:"tool"`
	Results []Result `json:"results"`
}

type Tool struct {
	Driver Driver `json:"driver"`
}

type Driver struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type Result struct {
	RuleID              string            `json:"ruleId"`
	Message             Message           `json:"message"`
	Level               string            `json:"level"` // error, warning, note
	Locations           []Location        `json:"locations"`
	PartialFingerprints map[string]string `json:"partialFingerprints,omitempty"`
	Properties          *Properties       `json:"properties,omitempty"`
}

type Message struct {
	Text string `json:"text"`
}

type Location struct {
	PhysicalLocation PhysicalLocation `json:"physicalLocation"`
}

type PhysicalLocation struct {
	ArtifactLocation ArtifactLocation `json:"artifactLocation"`
	Region           Region           `json:"region"`
}

type ArtifactLocation struct {
	URI string `json:"uri"`
}

type Region struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn,omitempty"`
}

type Properties struct {
	Category   string   `json:"category"`
	Confidence float64  `json:"confidence"`
	Sources    []string `json:"sources"`
	CWE        string   `json:"cwe,omitempty"`
	OWASP      string   `json:"owasp,omitempty"`
}

// File pairs a scanned path with its report.
type File struct {
	Path   string
	Report report.Report
}

// Build converts reports into one SARIF run. Results are ordered by file,
// line and rule.
func Build(files []File, toolName, toolVersion string) Log {
	results := make([]Result, 0)
	for _, file := range files {
		uri := toURI(file.Path)
		if uri == "" {
			uri = "UNKNOWN"
		}
		for _, f := range all(file.Report.Findings) {
			results = append(results, result(uri, f))
		}
	}
	sortResults(results)

	return Log{
		Version: Version,
		Schema:  Schema,
		Runs: []Run{{
			Tool:    Tool{Driver: Driver{Name: toolName, Version: toolVersion}},
			Results: results,
		}},
	}
}

// Encode writes log as indented JSON.
func Encode(w io.Writer, log Log) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(log); err != nil {
		return fmt.Errorf("marshal sarif: %w", err)
	}
	return nil
}

// WriteFile writes log to path, creating parent directories.
func WriteFile(path string, log Log) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create sarif dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create sarif file: %w", err)
	}
	if err := Encode(f, log); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func all(fs report.Findings) []report.Finding {
	out := make([]report.Finding, 0, len(fs.Vulnerabilities)+len(fs.Secrets)+len(fs.CodeQuality))
	out = append(out, fs.Vulnerabilities...)
	out = append(out, fs.Secrets...)
	return append(out, fs.CodeQuality...)
}

func result(uri string, f report.Finding) Result {
	ruleID := f.Category
	if len(f.RuleIDs) > 0 {
		ruleID = f.RuleIDs[0]
	}
	start := f.Line
	if start <= 0 {
		start = 1
	}
	text := strings.TrimSpace(f.Message)
	if f.MaskedValue != "" {
		text = fmt.Sprintf("%s (%s)", text, f.MaskedValue)
	}
	return Result{
		RuleID:  ruleID,
		Level:   sevToLevel(f.Severity),
		Message: Message{Text: text},
		Locations: []Location{{
			PhysicalLocation: PhysicalLocation{
				ArtifactLocation: ArtifactLocation{URI: uri},
				Region:           Region{StartLine: start, StartColumn: f.Column},
			},
		}},
		PartialFingerprints: map[string]string{"findingKey/v1": f.Key},
		Properties: &Properties{
			Category:   f.Category,
			Confidence: f.Confidence,
			Sources:    f.Sources,
			CWE:        f.CWE,
			OWASP:      f.OWASP,
		},
	}
}

func sortResults(rs []Result) {
	sort.SliceStable(rs, func(i, j int) bool {
		a, b := rs[i].Locations[0].PhysicalLocation, rs[j].Locations[0].PhysicalLocation
		if a.ArtifactLocation.URI != b.ArtifactLocation.URI {
			return a.ArtifactLocation.URI < b.ArtifactLocation.URI
		}
		if a.Region.StartLine != b.Region.StartLine {
			return a.Region.StartLine < b.Region.StartLine
		}
		return rs[i].RuleID < rs[j].RuleID
	})
}

func sevToLevel(s string) string {
	switch s {
	case "critical", "high":
		return "error"
	case "medium":
		return "warning"
	default:
		return "note"
	}
}

func toURI(p string) string {
	p = strings.TrimSpace(p)
	p = filepath.ToSlash(p)
	for strings.HasPrefix(p, "../") {
		p = strings.TrimPrefix(p, "../")
	}
	return strings.TrimPrefix(p, "./")
}
