// Package genaiapi holds the Gemini generateContent wire format shared by the
// Generative Language API and Gemini models on Vertex AI.
package genaiapi

import (
	"encoding/json"

	"github.com/i2y/bridle/models"
	"github.com/i2y/bridle/provider"
)

// BuildRequest converts a conversation to a streamGenerateContent request.
func BuildRequest(info models.ModelInfo, system string, messages []provider.Message, call provider.CallOptions) *Request {
	req := &Request{
		Contents: make([]Content, 0, len(messages)),
	}

	if system != "" {
		req.SystemInstruction = &Content{Parts: []Part{{Text: system}}}
	}
	if call.MaxTokens > 0 || call.Temperature != nil {
		req.GenerationConfig = &GenerationConfig{
			Temperature:     call.Temperature,
			MaxOutputTokens: call.MaxTokens,
		}
	}

	for _, msg := range messages {
		c := convertMessage(msg, info.SupportsImages)
		if len(c.Parts) == 0 {
			continue
		}
		if n := len(req.Contents); n > 0 && req.Contents[n-1].Role == c.Role {
			req.Contents[n-1].Parts = append(req.Contents[n-1].Parts, c.Parts...)
			continue
		}
		req.Contents = append(req.Contents, c)
	}

	if len(call.Tools) > 0 {
		decls := make([]FunctionDeclaration, 0, len(call.Tools))
		for _, tool := range call.Tools {
			decls = append(decls, FunctionDeclaration{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			})
		}
		req.Tools = []Tool{{FunctionDeclarations: decls}}
	}

	return req
}

func convertMessage(msg provider.Message, images bool) Content {
	switch msg.Role {
	case provider.RoleTool:
		// Function responses go in the user turn, matched to the call by name.
		var response any
		if err := json.Unmarshal([]byte(msg.Content), &response); err != nil || response == nil {
			response = map[string]any{"content": msg.Content}
		} else if _, isObject := response.(map[string]any); !isObject {
			response = map[string]any{"content": response}
		}
		return Content{
			Role: "user",
			Parts: []Part{{
				FunctionResponse: &FunctionResponse{Name: msg.ToolID, Response: response},
			}},
		}

	case provider.RoleAssistant:
		c := Content{Role: "model"}
		if msg.Content != "" {
			c.Parts = append(c.Parts, Part{Text: msg.Content})
		}
		for _, tc := range msg.ToolCalls {
			args := json.RawMessage(tc.Arguments)
			if !json.Valid(args) {
				args = json.RawMessage(`{}`)
			}
			c.Parts = append(c.Parts, Part{FunctionCall: &FunctionCall{Name: tc.Name, Args: args}})
		}
		return c

	default:
		c := Content{Role: "user"}
		if images {
			for _, img := range msg.Images {
				c.Parts = append(c.Parts, Part{InlineData: &InlineData{MimeType: img.MediaType, Data: img.Data}})
			}
		}
		if msg.Content != "" {
			c.Parts = append(c.Parts, Part{Text: msg.Content})
		}
		return c
	}
}
