// Package engine runs one scan end to end: internal detectors and external
// detector results are normalized into a canonical finding set, accepted
// findings are removed, and a report is built from the resulting session.
//
// An Engine holds no per-scan state. Scan may be called concurrently; the
// only shared value is the rule table, which is replaced atomically.
package engine

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/m1rl0k/findingsengine/pkg/baseline"
	"github.com/m1rl0k/findingsengine/pkg/detect"
	"github.com/m1rl0k/findingsengine/pkg/finding"
	"github.com/m1rl0k/findingsengine/pkg/normalize"
	"github.com/m1rl0k/findingsengine/pkg/report"
	"github.com/m1rl0k/findingsengine/pkg/rules"
	"github.com/m1rl0k/findingsengine/pkg/session"
	"github.com/m1rl0k/findingsengine/pkg/source"
	"github.com/m1rl0k/findingsengine/pkg/validator"
)

// DefaultMaxInputBytes bounds the text accepted by Scan.
const DefaultMaxInputBytes = 5 * 1024 * 1024

// Input is the text to scan. Language is optional when Path has a known
// extension.
type Input struct {
	Text     string
	Language string
	Path     string
}

// Source is the output of one external detector.
type Source struct {
	Name     string
	Findings []finding.RawFinding
}

// PartialSourceError records an external detector that produced nothing.
// It is kept as a session note and never fails a scan.
type PartialSourceError struct {
	Source string
}

func (e *PartialSourceError) Error() string {
	return fmt.Sprintf("source %s produced no findings", e.Source)
}

// Options configures an Engine. Zero values select defaults.
type Options struct {
	Registry      *rules.Registry
	Logger        *zap.Logger
	Noise         *validator.NoiseFilter
	ContextRadius int
	// Allowed suppresses allowlisted secret values.
	Allowed func(value string) bool
	// RuleDisabled drops external findings of disabled rules.
	RuleDisabled  func(ruleID string) bool
	Quality       bool
	Baseline      *baseline.Baseline
	MaxInputBytes int
	Now           func() time.Time
	NewID         func() string
}

// Result is the outcome of one scan.
type Result struct {
	Session *session.Session
	Report  report.Report
}

// Findings returns the canonical findings of the scan.
func (r *Result) Findings() []finding.CanonicalFinding {
	return r.Session.Findings()
}

type Engine struct {
	registry *rules.Registry
	logger   *zap.Logger
	opts     Options
}

func New(opts Options) *Engine {
	e := &Engine{registry: opts.Registry, logger: opts.Logger, opts: opts}
	if e.registry == nil {
		e.registry = rules.NewRegistry(rules.Default())
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if e.opts.MaxInputBytes <= 0 {
		e.opts.MaxInputBytes = DefaultMaxInputBytes
	}
	if e.opts.Now == nil {
		e.opts.Now = time.Now
	}
	if e.opts.NewID == nil {
		e.opts.NewID = uuid.NewString
	}
	return e
}

// Registry exposes the rule registry so callers can swap in a reloaded table.
func (e *Engine) Registry() *rules.Registry {
	return e.registry
}

// Scan runs the detectors over in, merges them with the external sources and
// builds the report. Only invalid input fails a scan.
func (e *Engine) Scan(in Input, sources ...Source) (*Result, error) {
	if !utf8.ValidString(in.Text) {
		return nil, &finding.InputError{Field: "text", Reason: "not valid UTF-8"}
	}
	if len(in.Text) > e.opts.MaxInputBytes {
		return nil, &finding.InputError{Field: "text", Reason: fmt.Sprintf("%d bytes exceeds limit of %d", len(in.Text), e.opts.MaxInputBytes)}
	}

	language := source.NormalizeLanguage(in.Language)
	if language == "" && in.Path != "" {
		language = source.DetectLanguage(in.Path)
	}
	if language == "" {
		language = source.Unknown
	}

	start := e.opts.Now()
	table := e.registry.Load()
	s := session.New(e.opts.NewID(), start, language, source.Measure(in.Text))
	logger := e.logger.With(zap.String("scan", s.ID()), zap.String("language", language))

	raw := e.detect(in.Text, language, table, logger)
	var record []error
	record = append(record, s.AddTool(detect.SourcePatternMatcher))
	if e.opts.Quality {
		record = append(record, s.AddTool(detect.SourceStaticAnalyzer))
	}

	for _, src := range sources {
		record = append(record, s.AddTool(src.Name))
		kept := e.external(src)
		if len(kept) == 0 {
			perr := &PartialSourceError{Source: src.Name}
			logger.Info("external source empty", zap.Error(perr))
			record = append(record, s.AddNote(perr.Error()))
			continue
		}
		raw = append(raw, kept...)
	}
	detect.NewRedactor(in.Text, table.Secrets(), logger).Apply(raw)

	n := normalize.Normalizer{Logger: logger}
	canonical, err := n.Normalize(raw)
	if err != nil {
		for _, dropped := range unwrapAll(err) {
			logger.Warn("dropped invalid finding", zap.Error(dropped))
			record = append(record, s.AddNote(dropped.Error()))
		}
	}

	lines := source.Lines(in.Text)
	canonical, suppressed := e.opts.Baseline.Filter(in.Path, lines, canonical)

	if err := s.AddFindings(canonical...); err != nil {
		return nil, fmt.Errorf("record findings: %w", err)
	}
	record = append(record,
		s.SetSuppressed(suppressed),
		s.SetDuration(e.opts.Now().Sub(start)),
	)
	if err := errors.Join(record...); err != nil {
		return nil, fmt.Errorf("record scan metadata: %w", err)
	}

	rep := report.Build(s)
	logger.Debug("scan finished",
		zap.Int("findings", rep.Executive.TotalIssues),
		zap.Int("suppressed", suppressed),
		zap.Int("score", rep.Security.Score.Score),
	)
	return &Result{Session: s, Report: rep}, nil
}

func (e *Engine) detect(text, language string, table *rules.Table, logger *zap.Logger) []finding.RawFinding {
	secrets := detect.SecretDetector{
		Noise:         e.opts.Noise,
		ContextRadius: e.opts.ContextRadius,
		Allowed:       e.opts.Allowed,
		Logger:        logger,
	}
	vulns := detect.VulnerabilityDetector{Logger: logger}

	raw := secrets.Detect(text, table.Secrets())
	raw = append(raw, vulns.Detect(text, table.Vulnerabilities(language))...)
	if e.opts.Quality {
		quality := detect.QualityDetector{Logger: logger}
		raw = append(raw, quality.Detect(text, table.Quality(language))...)
	}
	return raw
}

func (e *Engine) external(src Source) []finding.RawFinding {
	if e.opts.RuleDisabled == nil {
		return src.Findings
	}
	kept := make([]finding.RawFinding, 0, len(src.Findings))
	for _, f := range src.Findings {
		if e.opts.RuleDisabled(f.RuleID) {
			continue
		}
		kept = append(kept, f)
	}
	return kept
}

func unwrapAll(err error) []error {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		return joined.Unwrap()
	}
	return []error{err}
}
