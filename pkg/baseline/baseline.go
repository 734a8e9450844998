// Package baseline tracks accepted findings so later scans can suppress them.
package baseline

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/m1rl0k/findingsengine/pkg/finding"
)

// DefaultBaselineFile is the default baseline file name.
const DefaultBaselineFile = ".scanengine-baseline.json"

// Entry is one accepted finding.
type Entry struct {
	Fingerprint  string   `json:"fingerprint"`
	FilePath     string   `json:"file"`
	LineNumber   int      `json:"line"` // informational; lines drift
	Kind         string   `json:"kind"`
	Category     string   `json:"category"`
	RuleIDs      []string `json:"rule_ids,omitempty"`
	EvidenceHash string   `json:"evidence_hash"`
	Reason       string   `json:"reason,omitempty"`
}

// Baseline holds all accepted findings.
type Baseline struct {
	Version string  `json:"version"`
	Entries []Entry `json:"entries"`

	lookup map[string]bool
}

func New() *Baseline {
	return &Baseline{
		Version: "1.0",
		Entries: []Entry{},
		lookup:  make(map[string]bool),
	}
}

// Load reads a baseline file. A missing file is an empty baseline.
func Load(path string) (*Baseline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, fmt.Errorf("read baseline: %w", err)
	}

	b := New()
	if err := json.Unmarshal(data, b); err != nil {
		return nil, fmt.Errorf("parse baseline %s: %w", path, err)
	}
	b.lookup = make(map[string]bool, len(b.Entries))
	for _, e := range b.Entries {
		b.lookup[e.Fingerprint] = true
	}
	return b, nil
}

// Save writes the baseline sorted by file and line.
func (b *Baseline) Save(path string) error {
	sort.Slice(b.Entries, func(i, j int) bool {
		if b.Entries[i].FilePath != b.Entries[j].FilePath {
			return b.Entries[i].FilePath < b.Entries[j].FilePath
		}
		if b.Entries[i].LineNumber != b.Entries[j].LineNumber {
			return b.Entries[i].LineNumber < b.Entries[j].LineNumber
		}
		return b.Entries[i].Fingerprint < b.Entries[j].Fingerprint
	})

	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Fingerprint identifies a finding without its line number, so it survives
// code moving up or down. Evidence is the flagged source line.
func Fingerprint(filePath string, kind finding.Kind, category, evidence string) string {
	h := sha256.New()
	h.Write([]byte(filePath))
	h.Write([]byte(":"))
	h.Write([]byte(kind))
	h.Write([]byte(":"))
	h.Write([]byte(category))
	h.Write([]byte(":"))
	h.Write([]byte(evidence))
	return hex.EncodeToString(h.Sum(nil))[:32]
}

// EvidenceHash hashes evidence so the baseline never stores secret values.
func EvidenceHash(evidence string) string {
	h := sha256.Sum256([]byte(evidence))
	return hex.EncodeToString(h[:])[:16]
}

// Evidence is the trimmed text of the finding's line, falling back to the
// masked value or message when the line is outside lines.
func Evidence(lines []string, f finding.CanonicalFinding) string {
	if f.Line >= 1 && f.Line <= len(lines) {
		return strings.TrimSpace(lines[f.Line-1])
	}
	if f.MaskedValue != "" {
		return f.MaskedValue
	}
	return f.Message
}

// CreateEntry builds an entry for f found in filePath.
func CreateEntry(filePath string, lines []string, f finding.CanonicalFinding, reason string) Entry {
	evidence := Evidence(lines, f)
	return Entry{
		Fingerprint:  Fingerprint(filePath, f.Kind, f.Category, evidence),
		FilePath:     filePath,
		LineNumber:   f.Line,
		Kind:         string(f.Kind),
		Category:     f.Category,
		RuleIDs:      append([]string(nil), f.RuleIDs...),
		EvidenceHash: EvidenceHash(evidence),
		Reason:       reason,
	}
}

// Add inserts entry unless its fingerprint is already present.
func (b *Baseline) Add(entry Entry) {
	if b.lookup == nil {
		b.lookup = make(map[string]bool)
	}
	if !b.lookup[entry.Fingerprint] {
		b.Entries = append(b.Entries, entry)
		b.lookup[entry.Fingerprint] = true
	}
}

func (b *Baseline) Contains(fingerprint string) bool {
	if b == nil || b.lookup == nil {
		return false
	}
	return b.lookup[fingerprint]
}

// IsBaselined reports whether f in filePath has been accepted.
func (b *Baseline) IsBaselined(filePath string, lines []string, f finding.CanonicalFinding) bool {
	return b.Contains(Fingerprint(filePath, f.Kind, f.Category, Evidence(lines, f)))
}

// Filter drops accepted findings from fs and returns how many it dropped.
// A nil baseline keeps everything.
func (b *Baseline) Filter(filePath string, lines []string, fs []finding.CanonicalFinding) ([]finding.CanonicalFinding, int) {
	if b == nil || b.Count() == 0 {
		return fs, 0
	}
	kept := make([]finding.CanonicalFinding, 0, len(fs))
	for _, f := range fs {
		if b.IsBaselined(filePath, lines, f) {
			continue
		}
		kept = append(kept, f)
	}
	return kept, len(fs) - len(kept)
}

func (b *Baseline) Count() int {
	if b == nil {
		return 0
	}
	return len(b.Entries)
}
