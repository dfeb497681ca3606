// Package gemini provides the handler for the Gemini Generative Language API.
package gemini

import (
	"context"
	"fmt"
	"net/url"
	"os"

	"github.com/i2y/bridle/internal/genaiapi"
	"github.com/i2y/bridle/internal/transport"
	"github.com/i2y/bridle/models"
	"github.com/i2y/bridle/provider"
)

// Name is the registry name of the family.
const Name = "gemini"

func init() {
	provider.Register(Name, func(opts provider.Options) (provider.Handler, error) {
		return New(opts)
	})
}

// Handler streams completions from the Gemini API.
type Handler struct {
	opts     provider.Options
	model    provider.Model
	endpoint string
	client   *transport.Client
}

// New creates a handler. An empty APIKey falls back to GEMINI_API_KEY.
func New(opts provider.Options) (*Handler, error) {
	if opts.APIKey == "" {
		opts.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("gemini: invalid base URL: %w", err)
	}

	id, info := models.Resolve(models.Gemini, opts.APIModelID)
	return &Handler{
		opts:     opts,
		model:    provider.Model{ID: id, Info: info},
		endpoint: streamURL(baseURL, id),
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

	req := genaiapi.BuildRequest(h.model.Info, systemPrompt, messages, provider.ApplyCallOptions(h.model, opts...))

	return provider.NewStream(ctx, provider.StreamConfig{
		Provider: Name,
		Model:    h.model.ID,
		Retry:    h.opts.RetryPolicy(),
		Logger:   h.opts.Log(),
		Open: func(ctx context.Context) (provider.EventSource, error) {
			r, err := h.client.PostStream(ctx, h.endpoint, nil, req)
			if err != nil {
				return nil, err
			}
			return transport.NewSource(r, genaiapi.NewTranslator(Name, h.model.Info)), nil
		},
	})
}
