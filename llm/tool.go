package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"regexp"
	"slices"

	"github.com/i2y/bridle/provider"
	"github.com/i2y/bridle/schema"
)

// Tool is a function the model may call. Definition is what is sent to the
// backend; Execute receives the arguments the model produced.
type Tool interface {
	Definition() provider.ToolDef
	Execute(ctx context.Context, args json.RawMessage) (any, error)
}

// toolName is the name shape every backend accepts.
var toolName = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// FuncTool is a Tool backed by a typed Go function. The parameter schema is
// reflected from In.
type FuncTool[In, Out any] struct {
	def provider.ToolDef
	fn  func(ctx context.Context, in In) (Out, error)
}

// NewTool wraps fn as a tool.
//
//	type WeatherInput struct {
//	    City string `json:"city" jsonschema:"required,description=City name"`
//	}
//
//	weather, err := llm.NewTool("get_weather", "Current weather for a city",
//	    func(ctx context.Context, in WeatherInput) (Weather, error) { ... })
func NewTool[In, Out any](name, description string, fn func(ctx context.Context, in In) (Out, error)) (*FuncTool[In, Out], error) {
	if !toolName.MatchString(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidToolName, name)
	}
	params, err := schema.Generate[In]()
	if err != nil {
		return nil, fmt.Errorf("tool %q: %w", name, err)
	}
	return &FuncTool[In, Out]{
		def: provider.ToolDef{Name: name, Description: description, Parameters: params},
		fn:  fn,
	}, nil
}

// MustNewTool is NewTool for package-level definitions; it panics on error.
func MustNewTool[In, Out any](name, description string, fn func(ctx context.Context, in In) (Out, error)) *FuncTool[In, Out] {
	t, err := NewTool(name, description, fn)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *FuncTool[In, Out]) Definition() provider.ToolDef {
	return t.def
}

// Execute decodes args into In. Empty arguments decode as an empty object.
func (t *FuncTool[In, Out]) Execute(ctx context.Context, args json.RawMessage) (any, error) {
	var in In
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, fmt.Errorf("decoding arguments: %w", err)
	}
	return t.fn(ctx, in)
}

// Call invokes the function directly.
func (t *FuncTool[In, Out]) Call(ctx context.Context, in In) (Out, error) {
	return t.fn(ctx, in)
}

// ToolRegistry holds tools by name.
type ToolRegistry struct {
	tools map[string]Tool
}

func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{tools: make(map[string]Tool)}
}

// Register adds tools. A name that is already taken is an error and leaves
// the registry unchanged.
func (r *ToolRegistry) Register(tools ...Tool) error {
	seen := make(map[string]bool, len(tools))
	for _, t := range tools {
		name := t.Definition().Name
		if _, ok := r.tools[name]; ok || seen[name] {
			return &DuplicateToolError{Name: name}
		}
		seen[name] = true
	}
	for _, t := range tools {
		r.tools[t.Definition().Name] = t
	}
	return nil
}

func (r *ToolRegistry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// All returns the tools sorted by name.
func (r *ToolRegistry) All() []Tool {
	out := make([]Tool, 0, len(r.tools))
	for _, name := range slices.Sorted(maps.Keys(r.tools)) {
		out = append(out, r.tools[name])
	}
	return out
}

// Execute runs one call and returns its tool message. A failing tool is
// reported to the model in the message content; only an unknown tool is an
// error.
func (r *ToolRegistry) Execute(ctx context.Context, call ToolCall) (Message, error) {
	t, ok := r.tools[call.Name]
	if !ok {
		return Message{}, &ToolNotFoundError{Name: call.Name}
	}

	result, err := t.Execute(ctx, json.RawMessage(call.Arguments))
	if err != nil {
		return ToolMessage(call.ID, "Error: "+(&ToolError{ToolName: call.Name, Cause: err}).Error()), nil
	}
	return ToolMessage(call.ID, toolOutput(result)), nil
}

// ExecuteToolCalls runs calls in order and returns one tool message per call.
func ExecuteToolCalls(ctx context.Context, calls []ToolCall, registry *ToolRegistry) ([]Message, error) {
	if len(calls) == 0 {
		return nil, nil
	}
	out := make([]Message, 0, len(calls))
	for _, call := range calls {
		msg, err := registry.Execute(ctx, call)
		if err != nil {
			return nil, err
		}
		out = append(out, msg)
	}
	return out, nil
}

// toolOutput renders a result as message content: strings verbatim,
// everything else as JSON.
func toolOutput(result any) string {
	switch v := result.(type) {
	case string:
		return v
	case json.RawMessage:
		return string(v)
	}
	b, err := json.Marshal(result)
	if err != nil {
		return fmt.Sprintf("Error: encoding result: %v", err)
	}
	return string(b)
}

func toolDefs(tools []Tool) []provider.ToolDef {
	defs := make([]provider.ToolDef, 0, len(tools))
	for _, t := range tools {
		defs = append(defs, t.Definition())
	}
	return defs
}
