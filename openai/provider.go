// Package openai provides the handler for the OpenAI Chat Completions API and
// compatible servers.
package openai

import (
	"context"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"
	"github.com/tidwall/gjson"

	"github.com/i2y/bridle/models"
	"github.com/i2y/bridle/provider"
)

// Name is the registry name of the family.
const Name = "openai"

func init() {
	provider.Register(Name, func(opts provider.Options) (provider.Handler, error) {
		return New(opts)
	})
}

// Handler streams completions through the openai-go SDK.
type Handler struct {
	opts   provider.Options
	model  provider.Model
	client *openai.Client
}

// New creates a handler. An empty APIKey falls back to OPENAI_API_KEY.
func New(opts provider.Options) (*Handler, error) {
	if opts.APIKey == "" {
		opts.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	id, info := models.Resolve(models.OpenAI, opts.APIModelID)
	return &Handler{
		opts:   opts,
		model:  provider.Model{ID: id, Info: info},
		client: newClient(opts),
	}, nil
}

// Name returns the family identifier.
func (h *Handler) Name() string {
	return Name
}

// Model returns the resolved model.
func (h *Handler) Model() provider.Model {
	return h.model
}

// CreateMessage implements provider.Handler.
func (h *Handler) CreateMessage(ctx context.Context, systemPrompt string, messages []provider.Message, opts ...provider.CallOption) provider.Stream {
	if len(messages) == 0 {
		return provider.NewErrorStream(Name, h.model.ID, provider.ErrEmptyConversation)
	}

	params := h.buildParams(systemPrompt, messages, provider.ApplyCallOptions(h.model, opts...))

	return provider.NewStream(ctx, provider.StreamConfig{
		Provider: Name,
		Model:    h.model.ID,
		Retry:    h.opts.RetryPolicy(),
		Logger:   h.opts.Log(),
		Open: func(ctx context.Context) (provider.EventSource, error) {
			stream := h.client.Chat.Completions.NewStreaming(ctx, params)
			if err := stream.Err(); err != nil {
				_ = stream.Close()
				return nil, convertError(err)
			}
			return &chunkSource{stream: stream, info: h.model.Info}, nil
		},
	})
}

func (h *Handler) buildParams(systemPrompt string, messages []provider.Message, call provider.CallOptions) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model:    openai.F(h.model.ID),
		Messages: openai.F(convertMessages(systemPrompt, messages, h.model.Info)),
		StreamOptions: openai.F(openai.ChatCompletionStreamOptionsParam{
			IncludeUsage: openai.Bool(true),
		}),
	}
	if call.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(call.MaxTokens))
	}
	if call.Temperature != nil {
		params.Temperature = openai.Float(*call.Temperature)
	}
	if len(call.Tools) > 0 {
		params.Tools = openai.F(convertTools(call.Tools))
	}
	return params
}

func convertMessages(systemPrompt string, messages []provider.Message, info models.ModelInfo) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)+1)
	if systemPrompt != "" {
		result = append(result, openai.SystemMessage(systemPrompt))
	}

	for _, msg := range messages {
		switch msg.Role {
		case provider.RoleUser:
			if len(msg.Images) == 0 || !info.SupportsImages {
				result = append(result, openai.UserMessage(msg.Content))
				continue
			}
			parts := make([]openai.ChatCompletionContentPartUnionParam, 0, len(msg.Images)+1)
			for _, img := range msg.Images {
				parts = append(parts, openai.ChatCompletionContentPartImageParam{
					ImageURL: openai.F(openai.ChatCompletionContentPartImageImageURLParam{
						URL: openai.String("data:" + img.MediaType + ";base64," + img.Data),
					}),
					Type: openai.F(openai.ChatCompletionContentPartImageTypeImageURL),
				})
			}
			if msg.Content != "" {
				parts = append(parts, openai.TextPart(msg.Content))
			}
			result = append(result, openai.UserMessageParts(parts...))

		case provider.RoleAssistant:
			if len(msg.ToolCalls) == 0 {
				result = append(result, openai.AssistantMessage(msg.Content))
				continue
			}
			calls := make([]openai.ChatCompletionMessageToolCallParam, len(msg.ToolCalls))
			for i, tc := range msg.ToolCalls {
				calls[i] = openai.ChatCompletionMessageToolCallParam{
					ID:   openai.String(tc.ID),
					Type: openai.F(openai.ChatCompletionMessageToolCallTypeFunction),
					Function: openai.F(openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      openai.String(tc.Name),
						Arguments: openai.String(tc.Arguments),
					}),
				}
			}
			param := openai.ChatCompletionMessageParam{
				Role:      openai.F(openai.ChatCompletionMessageParamRoleAssistant),
				ToolCalls: openai.F[any](calls),
			}
			if msg.Content != "" {
				param.Content = openai.F[any](msg.Content)
			}
			result = append(result, param)

		case provider.RoleTool:
			result = append(result, openai.ToolMessage(msg.ToolID, msg.Content))
		}
	}
	return result
}

func convertTools(tools []provider.ToolDef) []openai.ChatCompletionToolParam {
	result := make([]openai.ChatCompletionToolParam, len(tools))
	for i, t := range tools {
		params := map[string]any{"type": "object", "properties": map[string]any{}}
		if parsed, ok := gjson.ParseBytes(t.Parameters).Value().(map[string]any); ok {
			params = parsed
		}
		result[i] = openai.ChatCompletionToolParam{
			Type: openai.F(openai.ChatCompletionToolTypeFunction),
			Function: openai.F(openai.FunctionDefinitionParam{
				Name:        openai.String(t.Name),
				Description: openai.String(t.Description),
				Parameters:  openai.F(shared.FunctionParameters(params)),
			}),
		}
	}
	return result
}
