package models

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// familyOverride is one family section of an overrides document.
//
//	anthropic:
//	  default: claude-3-5-sonnet-20241022
//	  models:
//	    claude-3-5-sonnet-20241022:
//	      max_tokens: 4096
//	    my-gateway-model:
//	      max_tokens: 8192
//	      supports_prompt_cache: true
type familyOverride struct {
	Default string               `yaml:"default"`
	Models  map[string]yaml.Node `yaml:"models"`
}

// LoadOverridesFile applies the overrides document at path.
func LoadOverridesFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening overrides: %w", err)
	}
	defer func() { _ = f.Close() }()

	return LoadOverrides(f)
}

// LoadOverrides reads a YAML document keyed by family and merges it into the
// registered catalogs. Fields of an existing model that the document does not
// mention keep their values; unknown models are added. Families not present in
// the document are left untouched.
//
// The document is validated as a whole before any catalog is replaced.
func LoadOverrides(r io.Reader) error {
	var doc map[Family]familyOverride
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("decoding overrides: %w", err)
	}

	updated := make([]Catalog, 0, len(doc))
	for family, ov := range doc {
		c, ok := Lookup(family)
		if !ok {
			c = Catalog{Family: family, Models: map[string]ModelInfo{}}
		}

		for id, node := range ov.Models {
			info := c.Models[id]
			if err := node.Decode(&info); err != nil {
				return fmt.Errorf("decoding %s model %q: %w", family, id, err)
			}
			c.Models[id] = info
		}

		if ov.Default != "" {
			c.Default = ov.Default
		}
		if !c.Has(c.Default) {
			return &DefaultNotInCatalogError{Family: family, Default: c.Default}
		}
		updated = append(updated, c)
	}

	for _, c := range updated {
		if err := Register(c); err != nil {
			return err
		}
	}
	return nil
}
