package messagesapi

import "encoding/json"

// Request is an Anthropic Messages API streaming request.
type Request struct {
	Model            string    `json:"model,omitempty"`
	AnthropicVersion string    `json:"anthropic_version,omitempty"`
	Messages         []Message `json:"messages"`
	System           []Part    `json:"system,omitempty"`
	MaxTokens        int       `json:"max_tokens"`
	Temperature      *float64  `json:"temperature,omitempty"`
	Tools            []ToolDef `json:"tools,omitempty"`
	Thinking         *Thinking `json:"thinking,omitempty"`
	Stream           bool      `json:"stream"`
}

// Message represents a message in the conversation.
type Message struct {
	Role    string `json:"role"`
	Content []Part `json:"content"`
}

// Part represents a content block of a message or of the system prompt.
type Part struct {
	Type         string          `json:"type"`
	Text         string          `json:"text,omitempty"`
	Source       *ImageSource    `json:"source,omitempty"`
	ID           string          `json:"id,omitempty"`
	Name         string          `json:"name,omitempty"`
	Input        json.RawMessage `json:"input,omitempty"`
	ToolUseID    string          `json:"tool_use_id,omitempty"`
	Content      string          `json:"content,omitempty"` // For tool_result
	CacheControl *CacheControl   `json:"cache_control,omitempty"`
}

type ImageSource struct {
	Type      string `json:"type"` // "base64"
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

// CacheControl marks a prompt-cache breakpoint.
type CacheControl struct {
	Type string `json:"type"`
}

// ToolDef represents a tool definition.
type ToolDef struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"input_schema"`
}

type Thinking struct {
	Type         string `json:"type"`
	BudgetTokens int    `json:"budget_tokens"`
}

// Streaming event types
type streamEvent struct {
	Type  string `json:"type"`
	Index int    `json:"index"`
	Delta *delta `json:"delta,omitempty"`
	// For message_start
	Message *streamMessage `json:"message,omitempty"`
	// For content_block_start
	ContentBlock *contentBlock `json:"content_block,omitempty"`
	// For message_delta
	Usage *usage `json:"usage,omitempty"`
	// For error
	Error *apiError `json:"error,omitempty"`
}

type streamMessage struct {
	ID    string `json:"id"`
	Model string `json:"model"`
	Usage usage  `json:"usage"`
}

type contentBlock struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	Thinking string `json:"thinking,omitempty"`
	ID       string `json:"id,omitempty"`
	Name     string `json:"name,omitempty"`
}

type delta struct {
	Type        string `json:"type,omitempty"`
	Text        string `json:"text,omitempty"`
	Thinking    string `json:"thinking,omitempty"`
	PartialJSON string `json:"partial_json,omitempty"`
	StopReason  string `json:"stop_reason,omitempty"`
}

type usage struct {
	InputTokens              int  `json:"input_tokens"`
	OutputTokens             int  `json:"output_tokens"`
	CacheCreationInputTokens *int `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     *int `json:"cache_read_input_tokens"`
}

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
