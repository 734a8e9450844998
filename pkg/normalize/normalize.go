// Package normalize merges raw findings from every detector into one
// canonical, deduplicated and ranked finding set.
//
// Findings of the same kind and category reported within one line of each
// other are treated as the same issue. Each resulting CanonicalFinding has a
// key no other finding in the set shares.
package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/m1rl0k/findingsengine/pkg/finding"
)

const (
	// LineTolerance is how far apart two findings may be and still collapse.
	LineTolerance = 1
	// CorroborationBonus is added per extra independent source.
	CorroborationBonus = 0.05
	keyLength          = 16
)

// Normalizer converts raw findings into canonical ones.
type Normalizer struct {
	Logger *zap.Logger
}

// Normalize runs a zero Normalizer.
func Normalize(raw []finding.RawFinding) ([]finding.CanonicalFinding, error) {
	var n Normalizer
	return n.Normalize(raw)
}

type entry struct {
	raw      finding.RawFinding
	severity finding.Severity
	category string
}

// Normalize validates, maps, deduplicates and ranks raw. Findings that fail
// validation are dropped and reported in the returned error; the canonical
// set built from the remaining findings is always returned.
func (n *Normalizer) Normalize(raw []finding.RawFinding) ([]finding.CanonicalFinding, error) {
	logger := n.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var errs []error
	entries := make([]entry, 0, len(raw))
	for i, r := range raw {
		if err := r.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("finding %d from %q: %w", i, r.Source, err))
			continue
		}
		sev, ok := finding.MapSeverity(r.Source, r.Severity)
		if !ok {
			logger.Warn("unmapped severity, using info",
				zap.String("source", r.Source),
				zap.String("rule", r.RuleID),
				zap.String("severity", r.Severity))
			sev = finding.SeverityInfo
		}
		entries = append(entries, entry{raw: r, severity: sev, category: Category(r)})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.raw.Kind != b.raw.Kind {
			return a.raw.Kind < b.raw.Kind
		}
		if a.category != b.category {
			return a.category < b.category
		}
		if a.raw.Line != b.raw.Line {
			return a.raw.Line < b.raw.Line
		}
		if a.raw.Column != b.raw.Column {
			return a.raw.Column < b.raw.Column
		}
		if a.raw.Source != b.raw.Source {
			return a.raw.Source < b.raw.Source
		}
		return a.raw.RuleID < b.raw.RuleID
	})

	var out []finding.CanonicalFinding
	for start := 0; start < len(entries); {
		anchor := entries[start]
		end := start + 1
		for end < len(entries) &&
			entries[end].raw.Kind == anchor.raw.Kind &&
			entries[end].category == anchor.category &&
			entries[end].raw.Line-anchor.raw.Line <= LineTolerance {
			end++
		}
		out = append(out, merge(entries[start:end]))
		start = end
	}

	Sort(out)
	logger.Debug("normalized findings",
		zap.Int("raw", len(raw)),
		zap.Int("rejected", len(errs)),
		zap.Int("canonical", len(out)))
	return out, errors.Join(errs...)
}

// Key derives the dedup key of a cluster from its kind, category and anchor line.
func Key(kind finding.Kind, category string, anchorLine int) string {
	sum := sha256.Sum256([]byte(string(kind) + "|" + category + "|" + strconv.Itoa(anchorLine)))
	return hex.EncodeToString(sum[:])[:keyLength]
}

// merge collapses one cluster. The most severe, then most confident, member
// supplies the position and text.
func merge(cluster []entry) finding.CanonicalFinding {
	anchor := cluster[0]
	best := anchor
	maxConfidence := 0.0
	sources := map[string]bool{}
	rules := map[string]bool{}
	for _, e := range cluster {
		if e.severity.Rank() > best.severity.Rank() ||
			e.severity == best.severity && e.raw.Confidence > best.raw.Confidence {
			best = e
		}
		maxConfidence = math.Max(maxConfidence, e.raw.Confidence)
		sources[e.raw.Source] = true
		if e.raw.RuleID != "" {
			rules[e.raw.RuleID] = true
		}
	}

	cf := finding.CanonicalFinding{
		Key:            Key(anchor.raw.Kind, anchor.category, anchor.raw.Line),
		Kind:           anchor.raw.Kind,
		Category:       anchor.category,
		RuleIDs:        sortedKeys(rules),
		Severity:       best.severity,
		Message:        best.raw.Message,
		Line:           best.raw.Line,
		Column:         best.raw.Column,
		Confidence:     Corroborate(maxConfidence, len(sources)),
		Sources:        sortedKeys(sources),
		Context:        append([]string(nil), best.raw.Context...),
		Recommendation: best.raw.Recommendation,
		CWE:            best.raw.CWE,
		OWASP:          best.raw.OWASP,
	}
	if cf.Kind == finding.KindSecret && best.raw.MatchedText != "" {
		cf.MaskedValue = finding.Mask(best.raw.MatchedText)
	}

	// Fill gaps from corroborating findings.
	for _, e := range cluster {
		if cf.Recommendation == "" {
			cf.Recommendation = e.raw.Recommendation
		}
		if cf.CWE == "" {
			cf.CWE = e.raw.CWE
		}
		if cf.OWASP == "" {
			cf.OWASP = e.raw.OWASP
		}
		if cf.MaskedValue == "" && cf.Kind == finding.KindSecret && e.raw.MatchedText != "" {
			cf.MaskedValue = finding.Mask(e.raw.MatchedText)
		}
	}
	return cf
}

// Corroborate boosts confidence by CorroborationBonus for each source
// beyond the first, capped at 1.
func Corroborate(confidence float64, sources int) float64 {
	if sources > 1 {
		confidence += CorroborationBonus * float64(sources-1)
	}
	return math.Min(confidence, 1)
}

// Sort orders findings by severity and confidence, highest first. Line and
// key break ties so the order is total.
func Sort(fs []finding.CanonicalFinding) {
	sort.SliceStable(fs, func(i, j int) bool {
		a, b := fs[i], fs[j]
		if a.Severity.Rank() != b.Severity.Rank() {
			return a.Severity.Rank() > b.Severity.Rank()
		}
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Key < b.Key
	})
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
