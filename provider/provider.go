// Package provider defines the handler contract shared by every LLM backend
// family, the chunk protocol that handlers emit, and the usage accounting that
// normalizes backend token counts.
package provider

import (
	"context"
	"log/slog"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/i2y/bridle/models"
	"github.com/i2y/bridle/retry"
)

// Handler is the core abstraction for LLM backends.
// All backend families must satisfy this interface.
type Handler interface {
	// Name returns the family identifier (e.g., "anthropic", "vertex").
	Name() string

	// Model returns the resolved model. It never fails and always returns the
	// same value for a given handler.
	Model() Model

	// CreateMessage starts a streaming completion. No request is sent until
	// the first call to Next on the returned stream.
	CreateMessage(ctx context.Context, systemPrompt string, messages []Message, opts ...CallOption) Stream
}

// Model is a resolved catalog entry.
type Model struct {
	ID   string
	Info models.ModelInfo
}

// Stream is a pull iterator over the chunks of one completion.
// A Stream is not safe for concurrent use and cannot be restarted.
type Stream interface {
	// Next advances to the next chunk, returns false when done.
	Next() bool

	// Current returns the current chunk.
	Current() Chunk

	// Err returns the error that ended the stream, if any.
	Err() error

	// Close releases stream resources. It is safe to call more than once.
	Close() error
}

// Options configures a handler. It is copied at construction.
type Options struct {
	// APIModelID selects the model. Empty or unknown ids resolve to the
	// family default.
	APIModelID string

	// APIKey authenticates against the direct APIs. When empty the family's
	// environment variable is used.
	APIKey string

	// BaseURL overrides the backend endpoint.
	BaseURL string

	VertexProjectID string
	VertexRegion    string

	// TokenSource supplies bearer tokens for Vertex AI. When nil, application
	// default credentials are looked up on first use.
	TokenSource oauth2.TokenSource

	HTTPClient *http.Client

	// Retry governs the initiating request. Nil means retry.Default().
	Retry *retry.Policy

	// Logger receives debug diagnostics. Nil discards them.
	Logger *slog.Logger

	// ThinkingBudgetTokens enables extended thinking on models that support it.
	ThinkingBudgetTokens int
}

// RetryPolicy returns the configured policy or the default one.
func (o Options) RetryPolicy() retry.Policy {
	if o.Retry != nil {
		return *o.Retry
	}
	return retry.Default()
}

// Log returns the configured logger or one that discards everything.
func (o Options) Log() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// Client returns the configured HTTP client or http.DefaultClient.
func (o Options) Client() *http.Client {
	if o.HTTPClient != nil {
		return o.HTTPClient
	}
	return http.DefaultClient
}

// CallOptions holds per-call settings.
type CallOptions struct {
	MaxTokens   int
	Temperature *float64
	Tools       []ToolDef
}

// CallOption configures a single CreateMessage call.
type CallOption func(*CallOptions)

// WithMaxTokens caps the output length. Zero uses the model's MaxTokens.
func WithMaxTokens(n int) CallOption {
	return func(o *CallOptions) { o.MaxTokens = n }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) CallOption {
	return func(o *CallOptions) { o.Temperature = &t }
}

// WithTools makes tools available to the model.
func WithTools(tools ...ToolDef) CallOption {
	return func(o *CallOptions) { o.Tools = append(o.Tools, tools...) }
}

// ApplyCallOptions folds opts into a CallOptions with MaxTokens defaulted from
// the model.
func ApplyCallOptions(m Model, opts ...CallOption) CallOptions {
	var co CallOptions
	for _, opt := range opts {
		opt(&co)
	}
	if co.MaxTokens <= 0 {
		co.MaxTokens = m.Info.MaxTokens
	}
	return co
}
