// Package messagesapi holds the Anthropic Messages wire format shared by the
// direct Anthropic API and Claude models on Vertex AI.
package messagesapi

import (
	"encoding/json"

	"github.com/i2y/bridle/models"
	"github.com/i2y/bridle/provider"
)

// PromptCachingBeta is the beta header value enabling cache_control on the
// direct API.
const PromptCachingBeta = "prompt-caching-2024-07-31"

// minThinkingBudget is the smallest budget the API accepts.
const minThinkingBudget = 1024

// Params are the inputs of BuildRequest.
type Params struct {
	// Model is sent in the body. Vertex carries it in the URL instead.
	Model            string
	AnthropicVersion string

	Info     models.ModelInfo
	System   string
	Messages []provider.Message
	Call     provider.CallOptions

	ThinkingBudget int
}

// BuildRequest converts a conversation to a streaming request. Cache
// breakpoints are placed only when the model supports prompt caching: on the
// system prompt and on the last block of the last two user turns.
func BuildRequest(p Params) *Request {
	req := &Request{
		Model:            p.Model,
		AnthropicVersion: p.AnthropicVersion,
		MaxTokens:        p.Call.MaxTokens,
		Temperature:      p.Call.Temperature,
		Stream:           true,
	}

	if p.System != "" {
		req.System = []Part{{Type: "text", Text: p.System}}
	}

	for _, msg := range p.Messages {
		wire := convertMessage(msg, p.Info.SupportsImages)
		if len(wire.Content) == 0 {
			continue
		}
		// Consecutive turns of one role, e.g. several tool results, share a message.
		if n := len(req.Messages); n > 0 && req.Messages[n-1].Role == wire.Role {
			req.Messages[n-1].Content = append(req.Messages[n-1].Content, wire.Content...)
			continue
		}
		req.Messages = append(req.Messages, wire)
	}

	for _, tool := range p.Call.Tools {
		schema := tool.Parameters
		if len(schema) == 0 {
			schema = json.RawMessage(`{"type":"object","properties":{}}`)
		}
		req.Tools = append(req.Tools, ToolDef{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: schema,
		})
	}

	if p.Info.SupportsPromptCache {
		addCacheBreakpoints(req)
	}

	if p.ThinkingBudget > 0 && p.Info.SupportsThinking {
		budget := p.ThinkingBudget
		if budget >= req.MaxTokens {
			budget = req.MaxTokens - 1
		}
		if budget >= minThinkingBudget {
			req.Thinking = &Thinking{Type: "enabled", BudgetTokens: budget}
			// Thinking requires the default temperature.
			req.Temperature = nil
		}
	}

	return req
}

func addCacheBreakpoints(req *Request) {
	ephemeral := &CacheControl{Type: "ephemeral"}

	if len(req.System) > 0 {
		req.System[len(req.System)-1].CacheControl = ephemeral
	}

	marked := 0
	for i := len(req.Messages) - 1; i >= 0 && marked < 2; i-- {
		m := &req.Messages[i]
		if m.Role != "user" {
			continue
		}
		m.Content[len(m.Content)-1].CacheControl = ephemeral
		marked++
	}
}

func convertMessage(msg provider.Message, images bool) Message {
	switch msg.Role {
	case provider.RoleTool:
		return Message{
			Role: "user",
			Content: []Part{{
				Type:      "tool_result",
				ToolUseID: msg.ToolID,
				Content:   msg.Content,
			}},
		}

	case provider.RoleAssistant:
		out := Message{Role: "assistant"}
		if msg.Content != "" {
			out.Content = append(out.Content, Part{Type: "text", Text: msg.Content})
		}
		for _, tc := range msg.ToolCalls {
			out.Content = append(out.Content, Part{
				Type:  "tool_use",
				ID:    tc.ID,
				Name:  tc.Name,
				Input: toolInput(tc.Arguments),
			})
		}
		return out

	default:
		out := Message{Role: "user"}
		if images {
			for _, img := range msg.Images {
				out.Content = append(out.Content, Part{
					Type: "image",
					Source: &ImageSource{
						Type:      "base64",
						MediaType: img.MediaType,
						Data:      img.Data,
					},
				})
			}
		}
		if msg.Content != "" {
			out.Content = append(out.Content, Part{Type: "text", Text: msg.Content})
		}
		return out
	}
}

// toolInput returns args when it is a JSON object and an empty object
// otherwise; the API rejects any other input.
func toolInput(args string) json.RawMessage {
	var obj map[string]json.RawMessage
	if args == "" || json.Unmarshal([]byte(args), &obj) != nil || obj == nil {
		return json.RawMessage(`{}`)
	}
	return json.RawMessage(args)
}
