// Package issue holds the static per-category configuration: what extra
// data a grievance of a given category must collect, which department it
// belongs to, and the scoring weight tables. The tables are data, not code:
// compiled-in defaults live in config.yaml and can be overridden with an
// external file at startup.
package issue

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed config.yaml
var defaultConfig []byte

// Requirement describes what a single issue category needs on top of the
// grievance text and location.
type Requirement struct {
	PhotoRequired bool   `yaml:"photo_required"`
	ExtraPrompt   string `yaml:"extra_prompt"`
}

// Config is the full category table. Lookups by unknown category fall back
// to the Fallback category.
type Config struct {
	Fallback         string                 `yaml:"fallback"`
	Requirements     map[string]Requirement `yaml:"requirements"`
	Departments      map[string]string      `yaml:"departments"`
	KeywordWeights   map[string]float64     `yaml:"keyword_weights"`
	FrequencyWeights map[string]float64     `yaml:"frequency_weights"`
	DefaultFrequency float64                `yaml:"default_frequency"`
}

// Load parses the embedded defaults and, if path is non-empty, overlays the
// file on top of them.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultConfig, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse built-in issue config: %w", err)
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read issue config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse issue config %s: %w", path, err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Fallback == "" {
		return fmt.Errorf("issue config has no fallback category")
	}
	if _, ok := c.Requirements[c.Fallback]; !ok {
		return fmt.Errorf("fallback category %q is missing from requirements", c.Fallback)
	}
	for word, w := range c.KeywordWeights {
		if w < 0 || w > 1 {
			return fmt.Errorf("keyword %q has weight %v outside [0,1]", word, w)
		}
	}
	for cat, w := range c.FrequencyWeights {
		if w < 0 || w > 1 {
			return fmt.Errorf("category %q has frequency weight %v outside [0,1]", cat, w)
		}
	}
	return nil
}

// Valid reports whether the category is one of the configured ones.
func (c *Config) Valid(category string) bool {
	_, ok := c.Requirements[category]
	return ok
}

// RequirementFor looks up the category's requirement, falling back to the
// fallback category's requirement on miss.
func (c *Config) RequirementFor(category string) Requirement {
	if r, ok := c.Requirements[category]; ok {
		return r
	}
	return c.Requirements[c.Fallback]
}

// DepartmentFor maps a category to its responsible department.
func (c *Config) DepartmentFor(category string) string {
	if d, ok := c.Departments[category]; ok {
		return d
	}
	return "General Administration"
}

// Categories returns the configured category names in stable order.
func (c *Config) Categories() []string {
	cats := make([]string, 0, len(c.Requirements))
	for cat := range c.Requirements {
		cats = append(cats, cat)
	}
	sort.Strings(cats)
	return cats
}
