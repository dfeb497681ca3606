package llm

import (
	"fmt"

	"github.com/i2y/bridle/provider"
)

// Option configures an LLM call.
type Option func(*callConfig)

// callConfig holds all configuration for a call.
type callConfig struct {
	providerName  string
	model         string
	handler       provider.Handler
	providerOpts  provider.Options
	temperature   *float64
	maxTokens     int
	systemMessage string
	tools         []Tool
	messages      []Message
}

func newCallConfig() *callConfig {
	return &callConfig{}
}

func (c *callConfig) apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// WithProvider sets the backend family (e.g., "anthropic", "vertex").
// The family package must be imported for its handler to be registered.
func WithProvider(name string) Option {
	return func(c *callConfig) {
		c.providerName = name
	}
}

// WithModel sets the model identifier. Unknown identifiers resolve to the
// family default.
func WithModel(name string) Option {
	return func(c *callConfig) {
		c.model = name
	}
}

// WithHandler uses h directly instead of building one from the registry.
// WithProvider, WithModel and WithProviderOptions are then ignored.
func WithHandler(h provider.Handler) Option {
	return func(c *callConfig) {
		c.handler = h
	}
}

// WithProviderOptions sets the handler construction options, such as
// credentials, endpoints and the retry policy.
func WithProviderOptions(opts provider.Options) Option {
	return func(c *callConfig) {
		c.providerOpts = opts
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(c *callConfig) {
		c.temperature = &t
	}
}

// WithMaxTokens sets the maximum tokens in the response.
func WithMaxTokens(n int) Option {
	return func(c *callConfig) {
		c.maxTokens = n
	}
}

// WithSystemMessage sets a system message.
func WithSystemMessage(msg string) Option {
	return func(c *callConfig) {
		c.systemMessage = msg
	}
}

// WithTools adds tools the model can use.
func WithTools(tools ...Tool) Option {
	return func(c *callConfig) {
		c.tools = append(c.tools, tools...)
	}
}

// WithMessages sets the conversation history.
// This is useful for multi-turn conversations with Call.
func WithMessages(msgs ...Message) Option {
	return func(c *callConfig) {
		c.messages = append(c.messages, msgs...)
	}
}

// resolveHandler returns the configured handler or builds one from the registry.
func (c *callConfig) resolveHandler() (provider.Handler, error) {
	if c.handler != nil {
		return c.handler, nil
	}
	if c.providerName == "" {
		return nil, ErrProviderRequired
	}

	opts := c.providerOpts
	if c.model != "" {
		opts.APIModelID = c.model
	}
	h, err := provider.New(c.providerName, opts)
	if err != nil {
		return nil, fmt.Errorf("getting provider: %w", err)
	}
	return h, nil
}

// callOptions converts the config into per-call handler options.
func (c *callConfig) callOptions() []provider.CallOption {
	var opts []provider.CallOption
	if c.maxTokens > 0 {
		opts = append(opts, provider.WithMaxTokens(c.maxTokens))
	}
	if c.temperature != nil {
		opts = append(opts, provider.WithTemperature(*c.temperature))
	}
	if len(c.tools) > 0 {
		opts = append(opts, provider.WithTools(toolDefs(c.tools)...))
	}
	return opts
}

// conversation builds the message list for a prompt: history first, then the
// prompt as a user turn when non-empty.
func (c *callConfig) conversation(prompt string) []Message {
	messages := make([]Message, 0, len(c.messages)+1)
	messages = append(messages, c.messages...)
	if prompt != "" {
		messages = append(messages, UserMessage(prompt))
	}
	return messages
}
