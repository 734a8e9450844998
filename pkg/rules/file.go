package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk layout of a rule file.
type File struct {
	Rules []Spec `yaml:"rules" json:"rules"`
}

// LoadFile reads rule specs from a YAML (or JSON) file.
func LoadFile(path string) ([]Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSpecs(data)
}

// ParseSpecs decodes rule specs. JSON documents are valid YAML and decode too.
func ParseSpecs(data []byte) ([]Spec, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse rule file: %w", err)
	}
	return f.Rules, nil
}

// MarshalSpecs renders specs as a YAML rule file.
func MarshalSpecs(specs []Spec) ([]byte, error) {
	return yaml.Marshal(File{Rules: specs})
}
