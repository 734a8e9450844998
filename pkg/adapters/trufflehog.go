package adapters

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"

	"github.com/m1rl0k/findingsengine/pkg/finding"
)

// TruffleHog writes one JSON object per line.
type trufflehogLine struct {
	DetectorName   string `json:"DetectorName"`
	DecoderName    string `json:"DecoderName"`
	Verified       bool   `json:"Verified"`
	Raw            string `json:"Raw"`
	SourceMetadata struct {
		Data struct {
			Filesystem struct {
				File string `json:"file"`
				Line int    `json:"line"`
			} `json:"Filesystem"`
		} `json:"Data"`
	} `json:"SourceMetadata"`
}

func parseTrufflehog(b []byte) ([]located, error) {
	var out []located
	sc := bufio.NewScanner(bytes.NewReader(b))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var t trufflehogLine
		// Progress and log lines are interleaved with results.
		if err := json.Unmarshal([]byte(line), &t); err != nil || t.DetectorName == "" {
			continue
		}

		sev, confidence := "unverified", 0.7
		if t.Verified {
			sev, confidence = "verified", 0.95
		}
		fs := t.SourceMetadata.Data.Filesystem
		out = append(out, located{
			file: fs.File,
			finding: finding.RawFinding{
				Source:         "trufflehog",
				Kind:           finding.KindSecret,
				RuleID:         strings.ToLower(t.DetectorName),
				Category:       "secrets",
				Severity:       sev,
				Message:        t.DetectorName + " credential detected",
				Line:           safeLine(fs.Line),
				MatchedText:    finding.Mask(t.Raw),
				Confidence:     confidence,
				Recommendation: "Revoke the credential and rotate it",
			},
		})
	}
	return out, sc.Err()
}
