package llm

import "github.com/i2y/bridle/provider"

// Message is an alias for provider.Message for convenience.
type Message = provider.Message

// Role is an alias for provider.Role for convenience.
type Role = provider.Role

// ToolCall is an alias for provider.ToolCall for convenience.
type ToolCall = provider.ToolCall

// Role constants.
//
// Handlers take the system prompt separately; system messages in a history
// are joined into that prompt before the call.
const (
	RoleSystem    Role = "system"
	RoleUser           = provider.RoleUser
	RoleAssistant      = provider.RoleAssistant
	RoleTool           = provider.RoleTool
)

// SystemMessage creates a system message.
func SystemMessage(content string) Message {
	return Message{
		Role:    RoleSystem,
		Content: content,
	}
}

// UserMessage creates a user message.
func UserMessage(content string) Message {
	return Message{
		Role:    RoleUser,
		Content: content,
	}
}

// UserMessageWithImages creates a user message carrying inline images.
func UserMessageWithImages(content string, images ...provider.Image) Message {
	return Message{
		Role:    RoleUser,
		Content: content,
		Images:  images,
	}
}

// AssistantMessage creates an assistant message.
func AssistantMessage(content string) Message {
	return Message{
		Role:    RoleAssistant,
		Content: content,
	}
}

// AssistantMessageWithToolCalls creates an assistant message with tool calls.
func AssistantMessageWithToolCalls(content string, toolCalls []ToolCall) Message {
	return Message{
		Role:      RoleAssistant,
		Content:   content,
		ToolCalls: append([]ToolCall(nil), toolCalls...),
	}
}

// ToolMessage creates a tool result message.
func ToolMessage(toolCallID, content string) Message {
	return Message{
		Role:    RoleTool,
		Content: content,
		ToolID:  toolCallID,
	}
}

// splitSystem separates system messages from the conversation. Multiple
// system messages are joined with blank lines.
func splitSystem(system string, messages []Message) (string, []Message) {
	conv := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Role != RoleSystem {
			conv = append(conv, m)
			continue
		}
		if system != "" {
			system += "\n\n"
		}
		system += m.Content
	}
	return system, conv
}
