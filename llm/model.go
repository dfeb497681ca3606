package llm

import (
	"context"
	"encoding/json"
)

// Model represents a configured LLM model with default options.
// It provides a convenient way to reuse common configuration.
//
// Example:
//
//	model := llm.NewModel("anthropic", "claude-3-5-haiku-20241022",
//	    llm.WithTemperature(0.7),
//	)
//
//	resp, err := model.Call(ctx, "Tell me a joke")
type Model struct {
	providerName string
	modelName    string
	baseOpts     []Option
}

// NewModel creates a new Model with the given provider and model name.
// Additional options can be provided as default configuration.
func NewModel(providerName, modelName string, opts ...Option) *Model {
	return &Model{
		providerName: providerName,
		modelName:    modelName,
		baseOpts:     opts,
	}
}

// Call makes an LLM call using this model's configuration.
// Per-call options override the model's base options.
func (m *Model) Call(ctx context.Context, prompt string, opts ...Option) (Response[string], error) {
	return Call(ctx, prompt, m.mergeOptions(opts)...)
}

// CallStream makes a streaming LLM call using this model's configuration.
func (m *Model) CallStream(ctx context.Context, prompt string, opts ...Option) (*Stream, error) {
	return CallStream(ctx, prompt, m.mergeOptions(opts)...)
}

// CallMessages makes an LLM call with message history using this model.
func (m *Model) CallMessages(ctx context.Context, messages []Message, opts ...Option) (Response[string], error) {
	return CallMessages(ctx, messages, m.mergeOptions(opts)...)
}

// CallParse makes an LLM call with structured output and decodes it into
// target, which must be a pointer.
func (m *Model) CallParse(ctx context.Context, prompt string, target any, opts ...Option) error {
	// Model.CallParse cannot be generic, so the schema comes from the value.
	jsonSchema, err := schemaFromValue(target)
	if err != nil {
		return err
	}

	resp, err := Call(ctx, prompt, append(m.mergeOptions(opts), withSchemaInstruction(jsonSchema))...)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(extractJSON(resp.text)), target); err != nil {
		return &ParseError{Content: resp.text, Target: "response", Cause: err}
	}
	return nil
}

// mergeOptions combines base options with per-call options.
func (m *Model) mergeOptions(opts []Option) []Option {
	allOpts := make([]Option, 0, len(m.baseOpts)+len(opts)+2)
	allOpts = append(allOpts, WithProvider(m.providerName), WithModel(m.modelName))
	allOpts = append(allOpts, m.baseOpts...)
	allOpts = append(allOpts, opts...) // Per-call opts override base opts
	return allOpts
}
