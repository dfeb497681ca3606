package models

// AnthropicDefault is the default model of the direct Anthropic API.
const AnthropicDefault = "claude-3-7-sonnet-20250219"

var anthropicCatalog = Catalog{
	Family:  Anthropic,
	Default: AnthropicDefault,
	Models: map[string]ModelInfo{
		"claude-3-7-sonnet-20250219": {
			MaxTokens:           8192,
			ContextWindow:       200_000,
			SupportsImages:      true,
			SupportsPromptCache: true,
			SupportsThinking:    true,
			InputPrice:          3.0,
			OutputPrice:         15.0,
			CacheWritesPrice:    3.75,
			CacheReadsPrice:     0.3,
		},
		"claude-3-5-sonnet-20241022": {
			MaxTokens:           8192,
			ContextWindow:       200_000,
			SupportsImages:      true,
			SupportsPromptCache: true,
			InputPrice:          3.0,
			OutputPrice:         15.0,
			CacheWritesPrice:    3.75,
			CacheReadsPrice:     0.3,
		},
		"claude-3-5-haiku-20241022": {
			MaxTokens:           8192,
			ContextWindow:       200_000,
			SupportsPromptCache: true,
			InputPrice:          0.8,
			OutputPrice:         4.0,
			CacheWritesPrice:    1.0,
			CacheReadsPrice:     0.08,
		},
		"claude-3-opus-20240229": {
			MaxTokens:           4096,
			ContextWindow:       200_000,
			SupportsImages:      true,
			SupportsPromptCache: true,
			InputPrice:          15.0,
			OutputPrice:         75.0,
			CacheWritesPrice:    18.75,
			CacheReadsPrice:     1.5,
		},
		"claude-3-haiku-20240307": {
			MaxTokens:           4096,
			ContextWindow:       200_000,
			SupportsImages:      true,
			SupportsPromptCache: true,
			InputPrice:          0.25,
			OutputPrice:         1.25,
			CacheWritesPrice:    0.3,
			CacheReadsPrice:     0.03,
		},
	},
}
