package provider

import "encoding/json"

// Message is a single conversation turn. Handlers never modify messages.
type Message struct {
	Role      Role
	Content   string
	Images    []Image
	ToolCalls []ToolCall
	ToolID    string // When Role == RoleTool
}

// Role represents the message sender. The system prompt is passed separately.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Image is an inline image attached to a user message.
type Image struct {
	MediaType string // e.g. "image/png"
	Data      string // base64
}

// ToolCall represents a tool invocation requested by the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string // JSON string
}

// ToolDef defines a tool the model can use.
type ToolDef struct {
	Name        string
	Description string
	Parameters  json.RawMessage // JSON Schema
}

// LastUserIndexes returns the indexes of the last n user messages, oldest first.
func LastUserIndexes(messages []Message, n int) []int {
	var idx []int
	for i := len(messages) - 1; i >= 0 && len(idx) < n; i-- {
		if messages[i].Role == RoleUser {
			idx = append([]int{i}, idx...)
		}
	}
	return idx
}
