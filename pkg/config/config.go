// Package config loads scanner configuration from YAML or JSON.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/m1rl0k/findingsengine/pkg/baseline"
	"github.com/m1rl0k/findingsengine/pkg/rules"
	"github.com/m1rl0k/findingsengine/pkg/store"
	"github.com/m1rl0k/findingsengine/pkg/validator"
)

// DefaultConfigFile is looked for in the repo root, followed by the JSON
// variant.
const (
	DefaultConfigFile     = ".scanengine.yaml"
	DefaultJSONConfigFile = ".scanengine.json"
)

// Defaults.
const (
	defaultMinEntropy    = 3.0
	defaultMaxFileSize   = 5 * 1024 * 1024
	defaultContextRadius = 3
)

// Config represents the full scanner configuration.
type Config struct {
	General   GeneralConfig         `json:"general" yaml:"general"`
	Noise     validator.NoiseFilter `json:"noise" yaml:"noise"`
	Rules     []RuleConfig          `json:"rules" yaml:"rules"`
	RuleFiles []string              `json:"rule_files" yaml:"rule_files"`
	Allowlist AllowlistConfig       `json:"allowlist" yaml:"allowlist"`
	Baseline  BaselineConfig        `json:"baseline" yaml:"baseline"`
	Store     StoreConfig           `json:"store" yaml:"store"`
}

type GeneralConfig struct {
	MinEntropy    float64 `json:"min_entropy" yaml:"min_entropy"`       // used by rules without their own threshold
	MaxFileSize   int64   `json:"max_file_size" yaml:"max_file_size"`   // bytes
	ContextRadius int     `json:"context_radius" yaml:"context_radius"` // secret context window
	Quality       bool    `json:"quality" yaml:"quality"`               // run the quality rules
}

// RuleConfig is a custom rule. Disabled rules are ignored; a custom rule
// with a built-in ID replaces the built-in.
type RuleConfig struct {
	rules.Spec `yaml:",inline"`
	Enabled    bool `json:"enabled" yaml:"enabled"`
}

type AllowlistConfig struct {
	Paths       []string `json:"paths" yaml:"paths"`               // globs
	Secrets     []string `json:"secrets" yaml:"secrets"`           // exact values
	Regexes     []string `json:"regexes" yaml:"regexes"`           // value patterns
	RuleIDs     []string `json:"rule_ids" yaml:"rule_ids"`         // disabled rules
	PathRegexes []string `json:"path_regexes" yaml:"path_regexes"` // path patterns
	Files       []string `json:"files" yaml:"files"`               // exact file names
}

type BaselineConfig struct {
	Path string `json:"path" yaml:"path"`
}

type StoreConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	Path      string `json:"path" yaml:"path"`
	Ephemeral bool   `json:"ephemeral" yaml:"ephemeral"`
}

// CompiledConfig holds the compiled rule table and allowlist.
type CompiledConfig struct {
	Config           *Config
	Table            *rules.Table
	AllowlistRegexes []*regexp.Regexp
	PathRegexes      []*regexp.Regexp
	AllowedSecrets   map[string]bool
	DisabledRules    map[string]bool
}

func DefaultConfig() *Config {
	return &Config{
		General: GeneralConfig{
			MinEntropy:    defaultMinEntropy,
			MaxFileSize:   defaultMaxFileSize,
			ContextRadius: defaultContextRadius,
		},
		Noise:     *validator.DefaultNoiseFilter(),
		Rules:     []RuleConfig{},
		Allowlist: AllowlistConfig{},
		Baseline:  BaselineConfig{Path: baseline.DefaultBaselineFile},
		Store:     StoreConfig{Path: store.DefaultPath},
	}
}

// Load reads config from configPath, or from the default files in repoRoot.
// Defaults are returned when no file exists.
func Load(configPath, repoRoot string) (*Config, error) {
	if configPath != "" {
		return loadFromFile(configPath)
	}
	for _, name := range []string{DefaultConfigFile, DefaultJSONConfigFile} {
		p := filepath.Join(repoRoot, name)
		if _, err := os.Stat(p); err == nil {
			return loadFromFile(p)
		}
	}
	return DefaultConfig(), nil
}

func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, cfg)
	default:
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	base := filepath.Dir(path)
	for i, f := range cfg.RuleFiles {
		if !filepath.IsAbs(f) {
			cfg.RuleFiles[i] = filepath.Join(base, f)
		}
	}
	return cfg, nil
}

// Compile builds the rule table (built-ins, rule files and enabled custom
// rules, minus disabled IDs) and pre-compiles the allowlist. Any invalid
// pattern fails the whole compile.
func (c *Config) Compile() (*CompiledConfig, error) {
	cc := &CompiledConfig{
		Config:         c,
		AllowedSecrets: make(map[string]bool),
		DisabledRules:  make(map[string]bool),
	}

	for _, ruleID := range c.Allowlist.RuleIDs {
		cc.DisabledRules[ruleID] = true
	}
	for _, secret := range c.Allowlist.Secrets {
		cc.AllowedSecrets[secret] = true
	}

	for _, pattern := range c.Allowlist.Regexes {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("allowlist regex %q: %w", pattern, err)
		}
		cc.AllowlistRegexes = append(cc.AllowlistRegexes, re)
	}
	for _, pattern := range c.Allowlist.PathRegexes {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("allowlist path regex %q: %w", pattern, err)
		}
		cc.PathRegexes = append(cc.PathRegexes, re)
	}

	specs, err := c.specs()
	if err != nil {
		return nil, err
	}
	var kept []rules.Spec
	for _, s := range specs {
		if !cc.DisabledRules[s.ID] {
			kept = append(kept, s)
		}
	}
	table, err := rules.Compile(kept, rules.CompileOptions{MinEntropy: cc.GetMinEntropy()})
	if err != nil {
		return nil, fmt.Errorf("compile rules: %w", err)
	}
	cc.Table = table
	return cc, nil
}

// specs merges built-in, file and custom rules. Later sources replace
// earlier ones with the same ID.
func (c *Config) specs() ([]rules.Spec, error) {
	var ordered []string
	byID := make(map[string]rules.Spec)
	add := func(s rules.Spec) {
		if _, ok := byID[s.ID]; !ok {
			ordered = append(ordered, s.ID)
		}
		byID[s.ID] = s
	}

	for _, s := range rules.DefaultSpecs() {
		add(s)
	}
	for _, path := range c.RuleFiles {
		specs, err := rules.LoadFile(path)
		if err != nil {
			return nil, err
		}
		for _, s := range specs {
			add(s)
		}
	}
	for _, rc := range c.GetEnabledRules() {
		s := rc.Spec
		if s.Kind == "" {
			s.Kind = "secret"
		}
		if s.Severity == "" {
			s.Severity = "high"
		}
		add(s)
	}

	out := make([]rules.Spec, 0, len(ordered))
	for _, id := range ordered {
		out = append(out, byID[id])
	}
	return out, nil
}

// IsPathAllowed reports whether relPath should be scanned.
func (cc *CompiledConfig) IsPathAllowed(relPath string) bool {
	base := filepath.Base(relPath)
	for _, f := range cc.Config.Allowlist.Files {
		if f == base || f == relPath {
			return false
		}
	}

	for _, pattern := range cc.Config.Allowlist.Paths {
		if matched, _ := filepath.Match(pattern, relPath); matched {
			return false
		}
		if matched, _ := filepath.Match(pattern, base); matched {
			return false
		}
	}

	for _, re := range cc.PathRegexes {
		if re.MatchString(relPath) {
			return false
		}
	}
	return true
}

// IsSecretAllowed reports whether a secret value is allowlisted.
func (cc *CompiledConfig) IsSecretAllowed(secret string) bool {
	if cc.AllowedSecrets[secret] {
		return true
	}
	for _, re := range cc.AllowlistRegexes {
		if re.MatchString(secret) {
			return true
		}
	}
	return false
}

func (cc *CompiledConfig) IsRuleDisabled(ruleID string) bool {
	return cc.DisabledRules[ruleID]
}

func (cc *CompiledConfig) GetMinEntropy() float64 {
	if cc.Config.General.MinEntropy > 0 {
		return cc.Config.General.MinEntropy
	}
	return defaultMinEntropy
}

func (cc *CompiledConfig) GetMaxFileSize() int64 {
	if cc.Config.General.MaxFileSize > 0 {
		return cc.Config.General.MaxFileSize
	}
	return defaultMaxFileSize
}

func (cc *CompiledConfig) GetContextRadius() int {
	if cc.Config.General.ContextRadius > 0 {
		return cc.Config.General.ContextRadius
	}
	return defaultContextRadius
}

// GetNoiseFilter returns the configured noise heuristics, with defaults for
// unset thresholds.
func (cc *CompiledConfig) GetNoiseFilter() *validator.NoiseFilter {
	n := cc.Config.Noise
	d := validator.DefaultNoiseFilter()
	if n.MinifiedLineLength <= 0 {
		n.MinifiedLineLength = d.MinifiedLineLength
	}
	if n.MinifiedMaxTokens <= 0 {
		n.MinifiedMaxTokens = d.MinifiedMaxTokens
	}
	if n.HashMinLength <= 0 {
		n.HashMinLength = d.HashMinLength
	}
	if n.LockfileKeys == nil {
		n.LockfileKeys = d.LockfileKeys
	}
	if n.PackageMarkers == nil {
		n.PackageMarkers = d.PackageMarkers
	}
	if n.ExcludeKeywords == nil {
		n.ExcludeKeywords = d.ExcludeKeywords
	}
	return &n
}

// GetEnabledRules returns the enabled custom rules.
func (cc *CompiledConfig) GetEnabledRules() []RuleConfig {
	return cc.Config.GetEnabledRules()
}

func (c *Config) GetEnabledRules() []RuleConfig {
	var out []RuleConfig
	for _, rule := range c.Rules {
		if rule.Enabled {
			out = append(out, rule)
		}
	}
	return out
}
