package rules

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Catalog is the ordered list of rules evaluated for every report
type Catalog struct {
	Version int     `yaml:"version"`
	Rules   []*Rule `yaml:"rules"`
}

// DefaultCatalog returns a fresh copy of the built-in rule catalog
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(bytes.NewReader(defaultCatalog))
}

// LoadCatalog reads and validates a catalog file
func LoadCatalog(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	return ParseCatalog(f)
}

// ParseCatalog decodes a YAML catalog and validates it.
// Unknown keys are rejected so that typos do not silently disable a rule.
func ParseCatalog(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var c Catalog
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	if err := ValidateCatalog(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Get returns the rule with the given ID
func (c *Catalog) Get(id string) (*Rule, error) {
	for _, r := range c.Rules {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, fmt.Errorf("rule with ID %s not found", id)
}
