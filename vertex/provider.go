// Package vertex provides the handler for Claude and Gemini models served by
// Google Vertex AI.
package vertex

import (
	"context"
	"fmt"
	"net/url"

	"github.com/i2y/bridle/internal/genaiapi"
	"github.com/i2y/bridle/internal/messagesapi"
	"github.com/i2y/bridle/internal/transport"
	"github.com/i2y/bridle/models"
	"github.com/i2y/bridle/provider"
)

// Name is the registry name of the family.
const Name = "vertex"

func init() {
	provider.Register(Name, func(opts provider.Options) (provider.Handler, error) {
		return New(opts)
	})
}

// Handler streams completions from Vertex AI. Claude models use the
// Anthropic rawPredict surface and Gemini models use generateContent.
type Handler struct {
	opts     provider.Options
	model    provider.Model
	endpoint string
	gemini   bool
	client   *transport.Client
}

// New creates a handler. Credentials are not resolved until the first request.
// An empty VertexRegion selects us-east5.
func New(opts provider.Options) (*Handler, error) {
	if opts.VertexRegion == "" {
		opts.VertexRegion = defaultRegion
	}

	base := opts.BaseURL
	if base == "" {
		base = baseURL(opts.VertexRegion)
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("vertex: invalid base URL: %w", err)
	}

	id, info := models.Resolve(models.Vertex, opts.APIModelID)
	h := &Handler{
		opts:   opts,
		model:  provider.Model{ID: id, Info: info},
		gemini: isGemini(id),
		client: &transport.Client{
			Provider:   Name,
			HTTPClient: opts.HTTPClient,
			Authorize:  authorizer(tokenSource(opts.TokenSource)),
		},
	}
	if h.gemini {
		h.endpoint = modelURL(base, opts.VertexProjectID, opts.VertexRegion, "google", id, "streamGenerateContent") + "?alt=sse"
	} else {
		h.endpoint = modelURL(base, opts.VertexProjectID, opts.VertexRegion, "anthropic", id, "streamRawPredict")
	}
	return h, nil
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

	call := provider.ApplyCallOptions(h.model, opts...)

	var (
		body          any
		newTranslator func() transport.Translator
	)
	if h.gemini {
		body = genaiapi.BuildRequest(h.model.Info, systemPrompt, messages, call)
		newTranslator = func() transport.Translator { return genaiapi.NewTranslator(Name, h.model.Info) }
	} else {
		body = messagesapi.BuildRequest(messagesapi.Params{
			AnthropicVersion: vertexAnthropicVersion,
			Info:             h.model.Info,
			System:           systemPrompt,
			Messages:         messages,
			Call:             call,
			ThinkingBudget:   h.opts.ThinkingBudgetTokens,
		})
		newTranslator = func() transport.Translator { return messagesapi.NewTranslator(Name, h.model.Info) }
	}

	return provider.NewStream(ctx, provider.StreamConfig{
		Provider: Name,
		Model:    h.model.ID,
		Retry:    h.opts.RetryPolicy(),
		Logger:   h.opts.Log(),
		Open: func(ctx context.Context) (provider.EventSource, error) {
			r, err := h.client.PostStream(ctx, h.endpoint, nil, body)
			if err != nil {
				return nil, err
			}
			return transport.NewSource(r, newTranslator()), nil
		},
	})
}
