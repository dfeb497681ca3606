package models

// VertexDefault is the default model on Vertex AI.
const VertexDefault = "claude-3-7-sonnet@20250219"

// Vertex serves both Claude and Gemini models. Claude ids carry an "@version"
// suffix; Gemini ids start with "gemini-".
var vertexCatalog = Catalog{
	Family:  Vertex,
	Default: VertexDefault,
	Models: map[string]ModelInfo{
		"claude-3-7-sonnet@20250219": {
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
		"claude-3-5-sonnet-v2@20241022": {
			MaxTokens:           8192,
			ContextWindow:       200_000,
			SupportsImages:      true,
			SupportsPromptCache: true,
			InputPrice:          3.0,
			OutputPrice:         15.0,
			CacheWritesPrice:    3.75,
			CacheReadsPrice:     0.3,
		},
		"claude-3-5-sonnet@20240620": {
			MaxTokens:           8192,
			ContextWindow:       200_000,
			SupportsImages:      true,
			SupportsPromptCache: true,
			InputPrice:          3.0,
			OutputPrice:         15.0,
			CacheWritesPrice:    3.75,
			CacheReadsPrice:     0.3,
		},
		"claude-3-5-haiku@20241022": {
			MaxTokens:           8192,
			ContextWindow:       200_000,
			SupportsPromptCache: true,
			InputPrice:          1.0,
			OutputPrice:         5.0,
			CacheWritesPrice:    1.25,
			CacheReadsPrice:     0.1,
		},
		"claude-3-opus@20240229": {
			MaxTokens:      4096,
			ContextWindow:  200_000,
			SupportsImages: true,
			InputPrice:     15.0,
			OutputPrice:    75.0,
		},
		"claude-3-haiku@20240307": {
			MaxTokens:      4096,
			ContextWindow:  200_000,
			SupportsImages: true,
			InputPrice:     0.25,
			OutputPrice:    1.25,
		},
		"gemini-2.0-flash-001": {
			MaxTokens:      8192,
			ContextWindow:  1_048_576,
			SupportsImages: true,
			InputPrice:     0.15,
			OutputPrice:    0.6,
		},
		"gemini-2.0-flash-lite-001": {
			MaxTokens:      8192,
			ContextWindow:  1_048_576,
			SupportsImages: true,
			InputPrice:     0.075,
			OutputPrice:    0.3,
		},
		"gemini-1.5-pro-002": {
			MaxTokens:      8192,
			ContextWindow:  2_097_152,
			SupportsImages: true,
			InputPrice:     1.25,
			OutputPrice:    5.0,
		},
	},
}
