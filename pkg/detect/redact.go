package detect

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/m1rl0k/findingsengine/pkg/finding"
	"github.com/m1rl0k/findingsengine/pkg/rules"
	"github.com/m1rl0k/findingsengine/pkg/source"
)

// Redactor masks secret candidates in text carried on findings. Candidates
// are every match of a secret rule, whether or not it passed validation.
type Redactor struct {
	values []string
}

// NewRedactor collects the secret candidates of text.
func NewRedactor(text string, rs []rules.Rule, logger *zap.Logger) *Redactor {
	logger = orNop(logger)
	seen := make(map[string]bool)
	for i, line := range source.Lines(text) {
		for _, r := range rs {
			evaluate(logger, r, i+1, func() {
				for _, m := range findMatches(r, line) {
					seen[m.value] = true
				}
			})
		}
	}

	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	// Longer values first so a candidate nested in another is masked with it.
	sort.Slice(values, func(i, j int) bool {
		if len(values[i]) != len(values[j]) {
			return len(values[i]) > len(values[j])
		}
		return values[i] < values[j]
	})
	return &Redactor{values: values}
}

// Line returns s with every candidate masked.
func (r *Redactor) Line(s string) string {
	if r == nil {
		return s
	}
	for _, v := range r.values {
		if strings.Contains(s, v) {
			s = strings.ReplaceAll(s, v, finding.Mask(v))
		}
	}
	return s
}

// Apply masks the context and matched text of fs in place.
func (r *Redactor) Apply(fs []finding.RawFinding) {
	if r == nil || len(r.values) == 0 {
		return
	}
	for i := range fs {
		fs[i].MatchedText = r.Line(fs[i].MatchedText)
		if len(fs[i].Context) == 0 {
			continue
		}
		ctx := make([]string, len(fs[i].Context))
		for j, line := range fs[i].Context {
			ctx[j] = r.Line(line)
		}
		fs[i].Context = ctx
	}
}
