package knowledge

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Seed is the on-disk shape of a default knowledge base.
type Seed struct {
	Diseases []Disease           `yaml:"diseases"`
	Symptoms []Symptom           `yaml:"symptoms"`
	Rules    map[string][]string `yaml:"rules"`
}

// LoadSeed reads a YAML knowledge-base seed from path.
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return &seed, nil
}

// Snapshot builds an in-memory snapshot directly from the seed, without a
// database. Used by tests and as a fallback when no store is configured.
func (s *Seed) Snapshot() *Snapshot {
	return NewSnapshot(s.Diseases, s.Symptoms, s.Rules)
}
