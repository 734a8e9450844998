// Package rules compiles secret, vulnerability and quality rule definitions
// into an immutable Table that is shared read-only by every scan.
package rules

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/m1rl0k/findingsengine/pkg/finding"
)

// Default values applied to specs that leave them unset.
const (
	DefaultSecretConfidence  = 0.7
	DefaultVulnConfidence    = 0.8
	DefaultQualityConfidence = 0.6
	DefaultOptimalLength     = 20
	DefaultMinEntropy        = 3.0

	// GenericLanguage holds quality rules used when a language has none of its own.
	GenericLanguage = "generic"
	// SecretGroup is the named capture group that isolates a secret value
	// inside a larger match.
	SecretGroup = "secret"
)

// Spec is the serialisable definition of a rule, as written in rule files
// and configuration.
type Spec struct {
	ID              string   `json:"id" yaml:"id"`
	Name            string   `json:"name" yaml:"name"`
	Kind            string   `json:"kind" yaml:"kind"`
	Language        string   `json:"language,omitempty" yaml:"language,omitempty"`
	Pattern         string   `json:"pattern" yaml:"pattern"`
	Flags           string   `json:"flags,omitempty" yaml:"flags,omitempty"`
	Severity        string   `json:"severity" yaml:"severity"`
	Category        string   `json:"category,omitempty" yaml:"category,omitempty"`
	Message         string   `json:"message,omitempty" yaml:"message,omitempty"`
	RequiresEntropy bool     `json:"requires_entropy,omitempty" yaml:"requires_entropy,omitempty"`
	MinEntropy      float64  `json:"min_entropy,omitempty" yaml:"min_entropy,omitempty"`
	RequiresContext bool     `json:"requires_context,omitempty" yaml:"requires_context,omitempty"`
	RequirePatterns []string `json:"require_patterns,omitempty" yaml:"require_patterns,omitempty"`
	ExcludePatterns []string `json:"exclude_patterns,omitempty" yaml:"exclude_patterns,omitempty"`
	ExcludeValues   []string `json:"exclude_values,omitempty" yaml:"exclude_values,omitempty"`
	BaseConfidence  float64  `json:"base_confidence,omitempty" yaml:"base_confidence,omitempty"`
	OptimalLength   int      `json:"optimal_length,omitempty" yaml:"optimal_length,omitempty"`
	HighSpecificity bool     `json:"high_specificity,omitempty" yaml:"high_specificity,omitempty"`
	Recommendation  string   `json:"recommendation,omitempty" yaml:"recommendation,omitempty"`
	CWE             string   `json:"cwe,omitempty" yaml:"cwe,omitempty"`
	OWASP           string   `json:"owasp,omitempty" yaml:"owasp,omitempty"`
}

// Rule is a compiled Spec. Rules are values; their regexps are safe for
// concurrent use.
type Rule struct {
	ID              string
	Name            string
	Kind            finding.Kind
	Language        string
	Pattern         *regexp.Regexp
	Severity        finding.Severity
	Category        string
	Message         string
	RequiresEntropy bool
	MinEntropy      float64
	RequiresContext bool
	RequirePatterns []*regexp.Regexp
	ExcludePatterns []*regexp.Regexp
	ExcludeValues   []*regexp.Regexp
	BaseConfidence  float64
	OptimalLength   int
	HighSpecificity bool
	Recommendation  string
	CWE             string
	OWASP           string

	secretGroup int
}

// SecretGroup returns the submatch index of the "secret" group, or -1.
func (r Rule) SecretGroup() int {
	if r.Pattern == nil {
		return -1
	}
	return r.secretGroup
}

// RuleCompilationError reports a rule that cannot be compiled.
type RuleCompilationError struct {
	RuleID  string
	Pattern string
	Err     error
}

func (e *RuleCompilationError) Error() string {
	if e.Pattern == "" {
		return fmt.Sprintf("rule %q: %v", e.RuleID, e.Err)
	}
	return fmt.Sprintf("rule %q: pattern %q: %v", e.RuleID, e.Pattern, e.Err)
}

func (e *RuleCompilationError) Unwrap() error { return e.Err }

// CompileOptions tune defaults applied during compilation.
type CompileOptions struct {
	// MinEntropy is used by entropy-checked rules with no threshold of their own.
	MinEntropy float64
}

// Compile validates and compiles specs into a Table. Every failing rule is
// reported; no partial table is ever returned.
func Compile(specs []Spec, opts CompileOptions) (*Table, error) {
	if opts.MinEntropy <= 0 {
		opts.MinEntropy = DefaultMinEntropy
	}

	t := &Table{
		vulns:   make(map[string][]Rule),
		quality: make(map[string][]Rule),
	}
	seen := make(map[string]bool, len(specs))
	var errs []error

	for _, s := range specs {
		if seen[s.ID] && s.ID != "" {
			errs = append(errs, &RuleCompilationError{RuleID: s.ID, Err: errors.New("duplicate rule id")})
			continue
		}
		seen[s.ID] = true

		r, err := compileSpec(s, opts)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		switch r.Kind {
		case finding.KindSecret:
			t.secrets = append(t.secrets, r)
		case finding.KindVulnerability:
			t.vulns[r.Language] = append(t.vulns[r.Language], r)
		case finding.KindQuality:
			t.quality[r.Language] = append(t.quality[r.Language], r)
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return t, nil
}

// MustCompile is Compile for built-in tables; it panics on error.
func MustCompile(specs []Spec) *Table {
	t, err := Compile(specs, CompileOptions{})
	if err != nil {
		panic(err)
	}
	return t
}

func compileSpec(s Spec, opts CompileOptions) (Rule, error) {
	fail := func(pattern string, err error) (Rule, error) {
		return Rule{}, &RuleCompilationError{RuleID: s.ID, Pattern: pattern, Err: err}
	}

	if strings.TrimSpace(s.ID) == "" {
		return fail("", errors.New("missing id"))
	}

	kind, ok := finding.ParseKind(s.Kind)
	if !ok {
		return fail("", fmt.Errorf("unknown kind %q", s.Kind))
	}

	severity, ok := finding.ParseSeverity(s.Severity)
	if !ok {
		return fail("", fmt.Errorf("unknown severity %q", s.Severity))
	}

	lang := strings.ToLower(strings.TrimSpace(s.Language))
	if kind != finding.KindSecret && lang == "" {
		return fail("", fmt.Errorf("%s rules need a language", kind))
	}

	pattern, err := compileWithFlags(s.Pattern, s.Flags)
	if err != nil {
		return fail(s.Pattern, err)
	}
	if s.Pattern == "" {
		return fail("", errors.New("empty pattern"))
	}

	r := Rule{
		ID:              s.ID,
		Name:            s.Name,
		Kind:            kind,
		Language:        lang,
		Pattern:         pattern,
		Severity:        severity,
		Category:        strings.ToLower(strings.TrimSpace(s.Category)),
		Message:         s.Message,
		RequiresEntropy: s.RequiresEntropy,
		MinEntropy:      s.MinEntropy,
		RequiresContext: s.RequiresContext,
		BaseConfidence:  s.BaseConfidence,
		OptimalLength:   s.OptimalLength,
		HighSpecificity: s.HighSpecificity,
		Recommendation:  s.Recommendation,
		CWE:             s.CWE,
		OWASP:           s.OWASP,
		secretGroup:     pattern.SubexpIndex(SecretGroup),
	}
	if r.Name == "" {
		r.Name = r.ID
	}
	if r.Message == "" {
		r.Message = r.Name
	}
	if r.RequiresEntropy && r.MinEntropy <= 0 {
		r.MinEntropy = opts.MinEntropy
	}
	if r.OptimalLength <= 0 {
		r.OptimalLength = DefaultOptimalLength
	}
	if r.BaseConfidence <= 0 {
		switch kind {
		case finding.KindSecret:
			r.BaseConfidence = DefaultSecretConfidence
		case finding.KindVulnerability:
			r.BaseConfidence = DefaultVulnConfidence
		default:
			r.BaseConfidence = DefaultQualityConfidence
		}
	}
	if r.BaseConfidence > 1 {
		return fail("", fmt.Errorf("base confidence %.2f above 1", r.BaseConfidence))
	}
	if r.Category == "" && kind == finding.KindSecret {
		r.Category = "secrets"
	}

	// Context patterns are matched case-insensitively across line breaks.
	for _, p := range s.RequirePatterns {
		re, err := compileWithFlags(p, "im")
		if err != nil {
			return fail(p, err)
		}
		r.RequirePatterns = append(r.RequirePatterns, re)
	}
	for _, p := range s.ExcludePatterns {
		re, err := compileWithFlags(p, "im")
		if err != nil {
			return fail(p, err)
		}
		r.ExcludePatterns = append(r.ExcludePatterns, re)
	}
	for _, p := range s.ExcludeValues {
		re, err := regexp.Compile(p)
		if err != nil {
			return fail(p, err)
		}
		r.ExcludeValues = append(r.ExcludeValues, re)
	}

	return r, nil
}

// compileWithFlags turns JavaScript-style flags into an inline RE2 group.
// "g" is accepted and ignored: every match on a line is always reported.
func compileWithFlags(pattern, flags string) (*regexp.Regexp, error) {
	var inline []byte
	for _, f := range flags {
		switch f {
		case 'i', 'm', 's':
			inline = append(inline, byte(f))
		case 'g', 'u':
		default:
			return nil, fmt.Errorf("unsupported flag %q", f)
		}
	}
	if len(inline) > 0 {
		sort.Slice(inline, func(i, j int) bool { return inline[i] < inline[j] })
		pattern = "(?" + string(inline) + ")" + pattern
	}
	return regexp.Compile(pattern)
}
