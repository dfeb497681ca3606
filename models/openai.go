package models

// OpenAIDefault is the default model of the OpenAI API.
const OpenAIDefault = "gpt-4o"

// OpenAI reports cached prompt tokens as a subset of prompt tokens and never
// reports cache writes.
var openAICatalog = Catalog{
	Family:  OpenAI,
	Default: OpenAIDefault,
	Models: map[string]ModelInfo{
		"gpt-4o": {
			MaxTokens:           16_384,
			ContextWindow:       128_000,
			SupportsImages:      true,
			SupportsPromptCache: true,
			InputPrice:          2.5,
			OutputPrice:         10.0,
			CacheReadsPrice:     1.25,
			InputIncludesCache:  true,
		},
		"gpt-4o-mini": {
			MaxTokens:           16_384,
			ContextWindow:       128_000,
			SupportsImages:      true,
			SupportsPromptCache: true,
			InputPrice:          0.15,
			OutputPrice:         0.6,
			CacheReadsPrice:     0.075,
			InputIncludesCache:  true,
		},
		"gpt-4.1": {
			MaxTokens:           32_768,
			ContextWindow:       1_047_576,
			SupportsImages:      true,
			SupportsPromptCache: true,
			InputPrice:          2.0,
			OutputPrice:         8.0,
			CacheReadsPrice:     0.5,
			InputIncludesCache:  true,
		},
		"o3-mini": {
			MaxTokens:           100_000,
			ContextWindow:       200_000,
			SupportsPromptCache: true,
			InputPrice:          1.1,
			OutputPrice:         4.4,
			CacheReadsPrice:     0.55,
			InputIncludesCache:  true,
		},
		"o1": {
			MaxTokens:           100_000,
			ContextWindow:       200_000,
			SupportsImages:      true,
			SupportsPromptCache: true,
			InputPrice:          15.0,
			OutputPrice:         60.0,
			CacheReadsPrice:     7.5,
			InputIncludesCache:  true,
		},
		"gpt-3.5-turbo": {
			MaxTokens:     4096,
			ContextWindow: 16_385,
			InputPrice:    0.5,
			OutputPrice:   1.5,
		},
	},
}
