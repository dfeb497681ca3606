package llm

import (
	"context"

	"github.com/i2y/bridle/provider"
)

// Response is the accumulated result of one call.
// T is the type of structured output expected from the LLM.
type Response[T any] struct {
	text      string
	reasoning string
	toolCalls []ToolCall
	usage     provider.Tally
	model     provider.Model
	parsed    T
	hasParsed bool
	parseErr  error
	messages  []Message   // Full conversation history
	config    *callConfig // Handler and options for Resume
}

// Text returns the concatenated text of the response.
func (r Response[T]) Text() string {
	return r.text
}

// Reasoning returns the concatenated reasoning text, if the model produced any.
func (r Response[T]) Reasoning() string {
	return r.reasoning
}

// Parsed returns the structured output with compile-time type safety.
// Returns ErrNotParsed if the response was not created via CallParse.
func (r Response[T]) Parsed() (T, error) {
	if r.parseErr != nil {
		return r.parsed, r.parseErr
	}
	if !r.hasParsed {
		return r.parsed, ErrNotParsed
	}
	return r.parsed, nil
}

// MustParse returns the parsed value or panics.
// Useful in tests or when you're certain parsing succeeded.
func (r Response[T]) MustParse() T {
	v, err := r.Parsed()
	if err != nil {
		panic(err)
	}
	return v
}

// HasToolCalls returns true if the response contains tool calls.
func (r Response[T]) HasToolCalls() bool {
	return len(r.toolCalls) > 0
}

// ToolCalls returns any tool calls made by the model.
func (r Response[T]) ToolCalls() []ToolCall {
	return append([]ToolCall(nil), r.toolCalls...)
}

// Usage returns the summed token usage of the call.
func (r Response[T]) Usage() provider.Tally {
	return r.usage
}

// Cost returns the USD cost of the call priced against the model catalog.
func (r Response[T]) Cost() float64 {
	return r.usage.Cost(r.model.Info)
}

// Model returns the model that served the call.
func (r Response[T]) Model() provider.Model {
	return r.model
}

// Messages returns the full conversation history including the assistant's response.
func (r Response[T]) Messages() []Message {
	return r.messages
}

// Resume continues the conversation with additional user content.
// It uses the same handler, system message and tools as the original call.
//
// Example:
//
//	resp, _ := llm.Call(ctx, "Recommend a book", opts...)
//	continuation, _ := resp.Resume(ctx, "Why did you recommend that one?")
//	fmt.Println(continuation.Text())
func (r Response[T]) Resume(ctx context.Context, content string, opts ...Option) (Response[string], error) {
	return r.resume(ctx, []Message{UserMessage(content)}, opts)
}

// ResumeWithToolOutputs continues the conversation with tool execution results.
// This is used after the LLM has requested tool calls.
//
// Example:
//
//	if resp.HasToolCalls() {
//	    toolMessages, _ := llm.ExecuteToolCalls(ctx, resp.ToolCalls(), registry)
//	    continuation, _ := resp.ResumeWithToolOutputs(ctx, toolMessages)
//	    fmt.Println(continuation.Text())
//	}
func (r Response[T]) ResumeWithToolOutputs(ctx context.Context, toolOutputs []Message, opts ...Option) (Response[string], error) {
	return r.resume(ctx, toolOutputs, opts)
}

func (r Response[T]) resume(ctx context.Context, next []Message, opts []Option) (Response[string], error) {
	if r.config == nil {
		return Response[string]{}, ErrNotResumable
	}

	cfg := *r.config
	cfg.tools = append([]Tool(nil), r.config.tools...)
	cfg.apply(opts...)

	messages := make([]Message, 0, len(r.messages)+len(next))
	messages = append(messages, r.messages...)
	messages = append(messages, next...)

	s, err := startStream(ctx, &cfg, messages)
	if err != nil {
		return Response[string]{}, err
	}
	return s.drain()
}
