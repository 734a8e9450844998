package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/m1rl0k/findingsengine/pkg/rules"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.General.MinEntropy != 3.0 {
		t.Errorf("expected min_entropy 3.0, got %f", cfg.General.MinEntropy)
	}
	if cfg.General.MaxFileSize != 5*1024*1024 {
		t.Errorf("expected max_file_size 5MB, got %d", cfg.General.MaxFileSize)
	}
	if cfg.General.ContextRadius != 3 || cfg.General.Quality {
		t.Errorf("general = %+v", cfg.General)
	}
	if cfg.Noise.MinifiedLineLength != 500 || len(cfg.Noise.ExcludeKeywords) == 0 {
		t.Errorf("noise defaults missing: %+v", cfg.Noise)
	}
	if len(cfg.Rules) != 0 {
		t.Errorf("expected no rules, got %d", len(cfg.Rules))
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scan.yaml")
	writeFile(t, path, `
general:
  min_entropy: 4.0
  quality: true
noise:
  minified_line_length: 800
  exclude_keywords: [fixture]
rules:
  - id: internal-token
    pattern: 'itk_[a-z0-9]{12}'
    severity: critical
    enabled: true
allowlist:
  paths: ["vendor/*"]
  secrets: ["secret123"]
store:
  enabled: true
  path: /tmp/history.db
`)

	cfg, err := Load(path, dir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.General.MinEntropy != 4.0 || !cfg.General.Quality {
		t.Errorf("general = %+v", cfg.General)
	}
	if cfg.General.MaxFileSize != 5*1024*1024 {
		t.Errorf("unset max_file_size should keep its default, got %d", cfg.General.MaxFileSize)
	}
	if cfg.Noise.MinifiedLineLength != 800 || len(cfg.Noise.ExcludeKeywords) != 1 {
		t.Errorf("noise = %+v", cfg.Noise)
	}
	if len(cfg.Noise.LockfileKeys) == 0 {
		t.Error("unset noise lists should keep their defaults")
	}
	if len(cfg.Rules) != 1 || cfg.Rules[0].ID != "internal-token" || !cfg.Rules[0].Enabled {
		t.Fatalf("rules = %+v", cfg.Rules)
	}
	if !cfg.Store.Enabled || cfg.Store.Path != "/tmp/history.db" {
		t.Errorf("store = %+v", cfg.Store)
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	writeFile(t, path, `{
		"general": {"min_entropy": 4.0, "max_file_size": 1048576},
		"rules": [{"id": "test-rule", "pattern": "test-[0-9]+", "enabled": true}],
		"allowlist": {"paths": ["vendor/*"], "secrets": ["secret123"], "rule_ids": ["jwt-token"]}
	}`)

	cfg, err := Load(path, dir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.General.MaxFileSize != 1048576 {
		t.Errorf("expected max_file_size 1MB, got %d", cfg.General.MaxFileSize)
	}
	if len(cfg.Rules) != 1 || cfg.Rules[0].Pattern != "test-[0-9]+" {
		t.Errorf("rules = %+v", cfg.Rules)
	}
	if len(cfg.Allowlist.Paths) != 1 || cfg.Allowlist.Paths[0] != "vendor/*" {
		t.Errorf("expected paths ['vendor/*'], got %v", cfg.Allowlist.Paths)
	}
}

func TestLoadDefaultFile(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"yaml", DefaultConfigFile, "general:\n  min_entropy: 5.0\n"},
		{"json", DefaultJSONConfigFile, `{"general": {"min_entropy": 5.0}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, filepath.Join(dir, tt.file), tt.content)

			cfg, err := Load("", dir)
			if err != nil {
				t.Fatalf("Load error: %v", err)
			}
			if cfg.General.MinEntropy != 5.0 {
				t.Errorf("expected min_entropy 5.0 from default file, got %f", cfg.General.MinEntropy)
			}
		})
	}
}

func TestLoadNoFile(t *testing.T) {
	cfg, err := Load("", t.TempDir())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.General.MinEntropy != 3.0 {
		t.Errorf("expected default min_entropy 3.0, got %f", cfg.General.MinEntropy)
	}
}

func TestLoadInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	writeFile(t, path, "{not json")
	if _, err := Load(path, dir); err == nil {
		t.Error("expected parse error")
	}
	if _, err := Load(filepath.Join(dir, "missing.yaml"), dir); err == nil {
		t.Error("expected error for missing explicit config")
	}
}

func TestCompiledConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.General.MinEntropy = 3.5
	cfg.Rules = []RuleConfig{
		{Spec: rules.Spec{ID: "custom-1", Pattern: "custom-[0-9]+"}, Enabled: true},
		{Spec: rules.Spec{ID: "custom-2", Pattern: "disabled-pattern"}, Enabled: false},
	}
	cfg.Allowlist = AllowlistConfig{
		Paths:       []string{"vendor/*"},
		Secrets:     []string{"allowed-secret"},
		Regexes:     []string{"(?i)example"},
		RuleIDs:     []string{"jwt-token"},
		PathRegexes: []string{`.*\.md$`},
	}

	cc, err := cfg.Compile()
	if err != nil {
		t.Fatalf("Compile error: %v", err)
	}

	ids := make(map[string]bool)
	for _, r := range cc.Table.Secrets() {
		ids[r.ID] = true
	}
	if !ids["custom-1"] || ids["custom-2"] {
		t.Errorf("only enabled custom rules should be compiled: %v", ids)
	}
	if ids["jwt-token"] {
		t.Error("disabled built-in rule still compiled")
	}
	if !ids["aws-access-key"] {
		t.Error("built-in rules missing")
	}
	if len(cc.GetEnabledRules()) != 1 {
		t.Errorf("expected 1 enabled rule, got %d", len(cc.GetEnabledRules()))
	}

	if cc.IsPathAllowed("vendor/foo.go") {
		t.Error("vendor/foo.go should NOT be allowed (matches vendor/*)")
	}
	if !cc.IsPathAllowed("src/main.go") {
		t.Error("src/main.go should be allowed")
	}
	if cc.IsPathAllowed("docs/README.md") {
		t.Error("docs/README.md should NOT be allowed (matches *.md regex)")
	}

	if !cc.IsSecretAllowed("allowed-secret") {
		t.Error("'allowed-secret' should be allowed (exact match)")
	}
	if !cc.IsSecretAllowed("this-is-example-key") {
		t.Error("'this-is-example-key' should be allowed (matches regex)")
	}
	if cc.IsSecretAllowed("real-secret-123") {
		t.Error("'real-secret-123' should NOT be allowed")
	}

	if !cc.IsRuleDisabled("jwt-token") || cc.IsRuleDisabled("aws-access-key") {
		t.Error("rule disable set is wrong")
	}
	if cc.GetMinEntropy() != 3.5 || cc.GetContextRadius() != 3 {
		t.Errorf("min entropy / radius = %v / %d", cc.GetMinEntropy(), cc.GetContextRadius())
	}
}

func TestCompileOverridesBuiltin(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rules = []RuleConfig{{
		Spec:    rules.Spec{ID: "npm-token", Kind: "secret", Pattern: `npm_[A-Za-z0-9]{36}`, Severity: "low"},
		Enabled: true,
	}}
	cc, err := cfg.Compile()
	if err != nil {
		t.Fatal(err)
	}
	count := 0
	for _, r := range cc.Table.Secrets() {
		if r.ID == "npm-token" {
			count++
			if r.Severity != "low" {
				t.Errorf("override not applied: severity %s", r.Severity)
			}
		}
	}
	if count != 1 {
		t.Errorf("npm-token compiled %d times", count)
	}
}

func TestCompileErrors(t *testing.T) {
	t.Run("bad allowlist regex", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Allowlist.Regexes = []string{"("}
		if _, err := cfg.Compile(); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("bad custom rule", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Rules = []RuleConfig{{Spec: rules.Spec{ID: "broken", Pattern: "(?<=x)y"}, Enabled: true}}
		_, err := cfg.Compile()
		var rce *rules.RuleCompilationError
		if !errors.As(err, &rce) || rce.RuleID != "broken" {
			t.Errorf("error = %v, want RuleCompilationError for broken", err)
		}
	})
}

func TestRuleFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "extra.yaml"), `
rules:
  - id: php-unserialize
    kind: vulnerability
    language: php
    pattern: 'unserialize\s*\(\s*\$_(GET|POST)'
    severity: high
    category: deserialization
`)
	cfgPath := filepath.Join(dir, "scan.yaml")
	writeFile(t, cfgPath, "rule_files: [extra.yaml]\n")

	cfg, err := Load(cfgPath, dir)
	if err != nil {
		t.Fatal(err)
	}
	cc, err := cfg.Compile()
	if err != nil {
		t.Fatalf("Compile error: %v", err)
	}
	found := false
	for _, r := range cc.Table.Vulnerabilities("php") {
		found = found || r.ID == "php-unserialize"
	}
	if !found {
		t.Error("rule file not loaded")
	}
}

func TestGetNoiseFilter(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Noise.MinifiedLineLength = 0
	cfg.Noise.ExcludeKeywords = []string{}
	cc, err := cfg.Compile()
	if err != nil {
		t.Fatal(err)
	}
	n := cc.GetNoiseFilter()
	if n.MinifiedLineLength != 500 {
		t.Errorf("zero threshold should fall back to default, got %d", n.MinifiedLineLength)
	}
	if len(n.ExcludeKeywords) != 0 {
		t.Errorf("explicit empty keyword list should be kept, got %v", n.ExcludeKeywords)
	}
	if n.IsLikelyNoise(`const fixture = "x"; // test`) {
		t.Error("keyword exclusion should be disabled")
	}
}
