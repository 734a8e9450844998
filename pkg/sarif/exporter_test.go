package sarif

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/m1rl0k/findingsengine/pkg/report"
)

func sampleFiles() []File {
	return []File{
		{Path: "./src/b.js", Report: report.Report{Findings: report.Findings{
			Secrets: []report.Finding{{Key: "k2", RuleIDs: []string{"stripe-live-key"}, Severity: "critical", Message: "Stripe key", Line: 3, Column: 17, MaskedValue: "sk_l****cdef", Category: "secrets"}},
		}}},
		{Path: "../src/a.js", Report: report.Report{Findings: report.Findings{
			Vulnerabilities: []report.Finding{
				{Key: "k1", RuleIDs: []string{"js-sql-injection"}, Severity: "medium", Message: "SQL injection", Line: 9, Category: "sql-injection"},
				{Key: "k3", Severity: "low", Message: "weak hash", Line: 0, Category: "crypto"},
			},
		}}},
	}
}

func TestBuild(t *testing.T) {
	log := Build(sampleFiles(), "findingsengine", "1.0.0")

	if log.Version != "2.1.0" || log.Schema != Schema || len(log.Runs) != 1 {
		t.Fatalf("log header = %+v", log)
	}
	rs := log.Runs[0].Results
	if len(rs) != 3 {
		t.Fatalf("results = %d, want 3", len(rs))
	}

	tests := []struct {
		ruleID string
		uri    string
		line   int
		level  string
	}{
		{"crypto", "src/a.js", 1, "note"},
		{"js-sql-injection", "src/a.js", 9, "warning"},
		{"stripe-live-key", "src/b.js", 3, "error"},
	}
	for i, tt := range tests {
		r := rs[i]
		loc := r.Locations[0].PhysicalLocation
		if r.RuleID != tt.ruleID || loc.ArtifactLocation.URI != tt.uri || loc.Region.StartLine != tt.line || r.Level != tt.level {
			t.Errorf("result %d = %s %s:%d %s, want %s %s:%d %s", i, r.RuleID, loc.ArtifactLocation.URI, loc.Region.StartLine, r.Level, tt.ruleID, tt.uri, tt.line, tt.level)
		}
	}
	if got := rs[2].Message.Text; got != "Stripe key (sk_l****cdef)" {
		t.Errorf("secret message = %q", got)
	}
	if rs[2].PartialFingerprints["findingKey/v1"] != "k2" {
		t.Errorf("fingerprints = %v", rs[2].PartialFingerprints)
	}
}

func TestEncodeAndWriteFile(t *testing.T) {
	log := Build(sampleFiles(), "findingsengine", "1.0.0")

	var buf bytes.Buffer
	if err := Encode(&buf, log); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded["$schema"] != Schema {
		t.Errorf("$schema = %v", decoded["$schema"])
	}

	path := filepath.Join(t.TempDir(), "out", "scan.sarif")
	if err := WriteFile(path, log); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, buf.Bytes()) {
		t.Error("file contents differ from Encode output")
	}
}

func TestEmptyResults(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, Build(nil, "findingsengine", "1.0.0")); err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"results": []`)) {
		t.Errorf("empty run should encode results as []: %s", buf.String())
	}
}
