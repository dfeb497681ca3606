// Package models holds the static model catalogs for each backend family.
//
// A catalog maps a model identifier to its capability descriptor and declares a
// default identifier. Resolution never fails: unknown or empty identifiers resolve
// to the family default.
package models

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Family identifies a backend API surface.
type Family string

const (
	Anthropic Family = "anthropic"
	Vertex    Family = "vertex"
	Gemini    Family = "gemini"
	OpenAI    Family = "openai"
)

// ModelInfo describes the capabilities and pricing of a model.
// Prices are USD per million tokens.
type ModelInfo struct {
	MaxTokens           int     `yaml:"max_tokens"`
	ContextWindow       int     `yaml:"context_window"`
	SupportsImages      bool    `yaml:"supports_images"`
	SupportsPromptCache bool    `yaml:"supports_prompt_cache"`
	SupportsThinking    bool    `yaml:"supports_thinking"`
	InputPrice          float64 `yaml:"input_price"`
	OutputPrice         float64 `yaml:"output_price"`
	CacheWritesPrice    float64 `yaml:"cache_writes_price"`
	CacheReadsPrice     float64 `yaml:"cache_reads_price"`

	// InputIncludesCache is set for backends whose reported input token count
	// already contains the cached tokens.
	InputIncludesCache bool `yaml:"input_includes_cache"`

	Description string `yaml:"description"`
}

// Cost returns the USD cost of the given token counts.
func (m ModelInfo) Cost(inputTokens, outputTokens, cacheWriteTokens, cacheReadTokens int) float64 {
	if m.InputIncludesCache {
		inputTokens -= cacheWriteTokens + cacheReadTokens
		if inputTokens < 0 {
			inputTokens = 0
		}
	}
	return perMillion(m.InputPrice, inputTokens) +
		perMillion(m.OutputPrice, outputTokens) +
		perMillion(m.CacheWritesPrice, cacheWriteTokens) +
		perMillion(m.CacheReadsPrice, cacheReadTokens)
}

func perMillion(price float64, tokens int) float64 {
	return price / 1_000_000 * float64(tokens)
}

// Catalog is the model table of one family.
type Catalog struct {
	Family  Family
	Default string
	Models  map[string]ModelInfo
}

// Resolve returns requested and its info when it is in the catalog, and the
// default model otherwise.
func (c Catalog) Resolve(requested string) (string, ModelInfo) {
	if info, ok := c.Models[requested]; ok && requested != "" {
		return requested, info
	}
	return c.Default, c.Models[c.Default]
}

// Has reports whether id is a catalog member.
func (c Catalog) Has(id string) bool {
	_, ok := c.Models[id]
	return ok
}

// IDs returns the model identifiers in sorted order.
func (c Catalog) IDs() []string {
	return slices.Sorted(maps.Keys(c.Models))
}

func (c Catalog) clone() Catalog {
	c.Models = maps.Clone(c.Models)
	return c
}

var (
	mu       sync.RWMutex
	catalogs = map[Family]Catalog{
		Anthropic: anthropicCatalog,
		Vertex:    vertexCatalog,
		Gemini:    geminiCatalog,
		OpenAI:    openAICatalog,
	}
)

// Resolve resolves requested against the catalog of family.
// An unknown family yields an empty id and a zero ModelInfo.
func Resolve(family Family, requested string) (string, ModelInfo) {
	mu.RLock()
	c, ok := catalogs[family]
	mu.RUnlock()
	if !ok {
		return "", ModelInfo{}
	}
	return c.Resolve(requested)
}

// Lookup returns a copy of the catalog registered for family.
func Lookup(family Family) (Catalog, bool) {
	mu.RLock()
	defer mu.RUnlock()
	c, ok := catalogs[family]
	if !ok {
		return Catalog{}, false
	}
	return c.clone(), true
}

// Register installs c as the catalog of c.Family, replacing any previous one.
// The default identifier must be a member of c.Models.
func Register(c Catalog) error {
	if !c.Has(c.Default) {
		return &DefaultNotInCatalogError{Family: c.Family, Default: c.Default}
	}
	mu.Lock()
	defer mu.Unlock()
	catalogs[c.Family] = c.clone()
	return nil
}

// Families returns the registered family names in sorted order.
func Families() []Family {
	mu.RLock()
	defer mu.RUnlock()
	return slices.Sorted(maps.Keys(catalogs))
}

// DefaultNotInCatalogError is returned when a catalog declares a default that
// it does not contain.
type DefaultNotInCatalogError struct {
	Family  Family
	Default string
}

func (e *DefaultNotInCatalogError) Error() string {
	return fmt.Sprintf("models: default %q is not in the %s catalog", e.Default, e.Family)
}
