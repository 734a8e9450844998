package rules

import (
	"sort"
	"strings"
	"sync/atomic"
)

// Table is an immutable, compiled rule set. Accessors return copies so no
// caller can mutate the shared rules.
type Table struct {
	secrets []Rule
	vulns   map[string][]Rule
	quality map[string][]Rule
}

// Secrets returns the secret rules.
func (t *Table) Secrets() []Rule {
	return cloneRules(t.secrets)
}

// Vulnerabilities returns the rules for language. An unknown language has
// no rules.
func (t *Table) Vulnerabilities(language string) []Rule {
	return cloneRules(t.vulns[strings.ToLower(strings.TrimSpace(language))])
}

// Quality returns the quality rules for language, falling back to the
// generic set when the language has none of its own.
func (t *Table) Quality(language string) []Rule {
	if rs, ok := t.quality[strings.ToLower(strings.TrimSpace(language))]; ok {
		return cloneRules(rs)
	}
	return cloneRules(t.quality[GenericLanguage])
}

// Languages lists the languages with vulnerability rules, sorted.
func (t *Table) Languages() []string {
	langs := make([]string, 0, len(t.vulns))
	for l := range t.vulns {
		langs = append(langs, l)
	}
	sort.Strings(langs)
	return langs
}

// All returns every rule, secrets first, then vulnerability and quality
// rules ordered by language.
func (t *Table) All() []Rule {
	out := cloneRules(t.secrets)
	for _, m := range []map[string][]Rule{t.vulns, t.quality} {
		langs := make([]string, 0, len(m))
		for l := range m {
			langs = append(langs, l)
		}
		sort.Strings(langs)
		for _, l := range langs {
			out = append(out, m[l]...)
		}
	}
	return out
}

// Len is the total number of rules.
func (t *Table) Len() int {
	n := len(t.secrets)
	for _, rs := range t.vulns {
		n += len(rs)
	}
	for _, rs := range t.quality {
		n += len(rs)
	}
	return n
}

func cloneRules(rs []Rule) []Rule {
	if len(rs) == 0 {
		return nil
	}
	out := make([]Rule, len(rs))
	copy(out, rs)
	return out
}

// Registry holds the current Table. Reloads swap a whole table atomically;
// scans already holding the previous table keep using it.
type Registry struct {
	current atomic.Pointer[Table]
}

// NewRegistry returns a registry serving t.
func NewRegistry(t *Table) *Registry {
	r := &Registry{}
	r.current.Store(t)
	return r
}

// Load returns the current table.
func (r *Registry) Load() *Table {
	return r.current.Load()
}

// Swap installs t and returns the previous table.
func (r *Registry) Swap(t *Table) *Table {
	return r.current.Swap(t)
}
