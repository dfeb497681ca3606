// Package anthropic provides the handler for the direct Anthropic Messages API.
package anthropic

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/i2y/bridle/internal/messagesapi"
	"github.com/i2y/bridle/internal/transport"
	"github.com/i2y/bridle/models"
	"github.com/i2y/bridle/provider"
)

// Name is the registry name of the family.
const Name = "anthropic"

func init() {
	provider.Register(Name, func(opts provider.Options) (provider.Handler, error) {
		return New(opts)
	})
}

// Handler streams completions from the Anthropic Messages API.
type Handler struct {
	opts     provider.Options
	model    provider.Model
	endpoint string
	client   *transport.Client
}

// New creates a handler. An empty APIKey falls back to ANTHROPIC_API_KEY; a
// missing key is reported by the API on the first request.
func New(opts provider.Options) (*Handler, error) {
	if opts.APIKey == "" {
		opts.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("anthropic: invalid base URL: %w", err)
	}

	id, info := models.Resolve(models.Anthropic, opts.APIModelID)
	return &Handler{
		opts:     opts,
		model:    provider.Model{ID: id, Info: info},
		endpoint: strings.TrimRight(baseURL, "/") + messagesPath,
		client:   newClient(opts.APIKey, opts.HTTPClient),
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

	req := messagesapi.BuildRequest(messagesapi.Params{
		Model:          h.model.ID,
		Info:           h.model.Info,
		System:         systemPrompt,
		Messages:       messages,
		Call:           provider.ApplyCallOptions(h.model, opts...),
		ThinkingBudget: h.opts.ThinkingBudgetTokens,
	})

	header := http.Header{}
	if h.model.Info.SupportsPromptCache {
		header.Set("Anthropic-Beta", messagesapi.PromptCachingBeta)
	}

	return provider.NewStream(ctx, provider.StreamConfig{
		Provider: Name,
		Model:    h.model.ID,
		Retry:    h.opts.RetryPolicy(),
		Logger:   h.opts.Log(),
		Open: func(ctx context.Context) (provider.EventSource, error) {
			r, err := h.client.PostStream(ctx, h.endpoint, header, req)
			if err != nil {
				return nil, err
			}
			return transport.NewSource(r, messagesapi.NewTranslator(Name, h.model.Info)), nil
		},
	})
}
