package models

// GeminiDefault is the default model of the Gemini API.
const GeminiDefault = "gemini-2.0-flash-001"

var geminiCatalog = Catalog{
	Family:  Gemini,
	Default: GeminiDefault,
	Models: map[string]ModelInfo{
		"gemini-2.0-flash-001": {
			MaxTokens:      8192,
			ContextWindow:  1_048_576,
			SupportsImages: true,
			InputPrice:     0.1,
			OutputPrice:    0.4,
		},
		"gemini-2.0-flash-lite-001": {
			MaxTokens:      8192,
			ContextWindow:  1_048_576,
			SupportsImages: true,
			InputPrice:     0.075,
			OutputPrice:    0.3,
		},
		"gemini-2.5-pro-exp-03-25": {
			MaxTokens:      65_536,
			ContextWindow:  1_048_576,
			SupportsImages: true,
		},
		"gemini-1.5-pro-002": {
			MaxTokens:      8192,
			ContextWindow:  2_097_152,
			SupportsImages: true,
			InputPrice:     1.25,
			OutputPrice:    5.0,
		},
		"gemini-1.5-flash-002": {
			MaxTokens:      8192,
			ContextWindow:  1_048_576,
			SupportsImages: true,
			InputPrice:     0.075,
			OutputPrice:    0.3,
		},
	},
}
