// Package session holds the state of one scan. Severity counts are
// maintained alongside the finding set and can only change with it.
package session

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/m1rl0k/findingsengine/pkg/finding"
	"github.com/m1rl0k/findingsengine/pkg/source"
)

var (
	// ErrFrozen is returned when a frozen session is modified.
	ErrFrozen = errors.New("session is frozen")
	// ErrDuplicateKey is returned when a finding's dedup key is already present.
	ErrDuplicateKey = errors.New("duplicate finding key")
)

// Session ties one scan together. It is safe for concurrent use.
type Session struct {
	id        string
	timestamp time.Time
	language  string
	metrics   source.Metrics

	mu         sync.Mutex
	findings   []finding.CanonicalFinding
	keys       map[string]bool
	counts     finding.SeverityCounts
	tools      map[string]bool
	notes      []string
	suppressed int
	duration   time.Duration
	frozen     bool
}

// New starts a session.
func New(id string, timestamp time.Time, language string, metrics source.Metrics) *Session {
	return &Session{
		id:        id,
		timestamp: timestamp,
		language:  language,
		metrics:   metrics,
		keys:      make(map[string]bool),
		tools:     make(map[string]bool),
	}
}

func (s *Session) ID() string              { return s.id }
func (s *Session) Timestamp() time.Time    { return s.timestamp }
func (s *Session) Language() string        { return s.language }
func (s *Session) Metrics() source.Metrics { return s.metrics }

// AddFindings appends canonical findings and updates the severity counts.
// Nothing is added when any finding repeats an existing key.
func (s *Session) AddFindings(fs ...finding.CanonicalFinding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frozen {
		return ErrFrozen
	}

	batch := make(map[string]bool, len(fs))
	for _, f := range fs {
		if s.keys[f.Key] || batch[f.Key] {
			return fmt.Errorf("%w: %s", ErrDuplicateKey, f.Key)
		}
		batch[f.Key] = true
	}
	for _, f := range fs {
		s.keys[f.Key] = true
		s.counts.Add(f.Severity)
		s.findings = append(s.findings, f)
	}
	return nil
}

// Findings returns a copy of the finding set.
func (s *Session) Findings() []finding.CanonicalFinding {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]finding.CanonicalFinding, len(s.findings))
	copy(out, s.findings)
	return out
}

// SeverityCounts returns the counts of the current finding set.
func (s *Session) SeverityCounts() finding.SeverityCounts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts
}

// AddTool records a detector that contributed to the scan. Like the other
// setters it fails only with ErrFrozen.
func (s *Session) AddTool(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frozen {
		return ErrFrozen
	}
	s.tools[name] = true
	return nil
}

// Tools lists contributing detectors, sorted.
func (s *Session) Tools() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.tools))
	for t := range s.tools {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// AddNote records a non-fatal observation, such as a source that produced
// no findings.
func (s *Session) AddNote(note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frozen {
		return ErrFrozen
	}
	s.notes = append(s.notes, note)
	return nil
}

// Notes returns the recorded observations in order.
func (s *Session) Notes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.notes...)
}

// SetSuppressed records how many findings a baseline or allowlist removed.
func (s *Session) SetSuppressed(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frozen {
		return ErrFrozen
	}
	s.suppressed = n
	return nil
}

// Suppressed is the number of findings removed before recording.
func (s *Session) Suppressed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.suppressed
}

// SetDuration records the wall time of the scan.
func (s *Session) SetDuration(d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frozen {
		return ErrFrozen
	}
	s.duration = d
	return nil
}

// Duration is the recorded wall time of the scan.
func (s *Session) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duration
}

// Freeze makes the session read-only. It is idempotent.
func (s *Session) Freeze() {
	s.mu.Lock()
	s.frozen = true
	s.mu.Unlock()
}

// Frozen reports whether Freeze has been called.
func (s *Session) Frozen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frozen
}
