package llm

import (
	"context"
	"iter"
	"strings"

	"github.com/i2y/bridle/provider"
)

// Stream represents a streaming response from an LLM.
type Stream struct {
	stream   provider.Stream
	model    provider.Model
	acc      accumulator
	err      error
	messages []Message
	config   *callConfig
}

// Chunks returns an iterator over the stream chunks.
// This uses Go 1.23+ range-over-func.
//
// Example:
//
//	stream, err := llm.CallStream(ctx, "Write a story", opts...)
//	if err != nil {
//	    return err
//	}
//	defer stream.Close()
//
//	for chunk := range stream.Chunks() {
//	    if text, ok := chunk.(provider.TextChunk); ok {
//	        fmt.Print(text.Text)
//	    }
//	}
func (s *Stream) Chunks() iter.Seq[provider.Chunk] {
	return func(yield func(provider.Chunk) bool) {
		for s.stream.Next() {
			chunk := s.stream.Current()
			s.acc.add(chunk)
			if !yield(chunk) {
				return
			}
		}
		s.err = s.stream.Err()
	}
}

// Err returns any error that occurred during streaming.
func (s *Stream) Err() error {
	return s.err
}

// Close closes the stream and releases resources.
func (s *Stream) Close() error {
	return s.stream.Close()
}

// Model returns the resolved model serving the stream.
func (s *Stream) Model() provider.Model {
	return s.model
}

// Response returns the accumulated response after streaming is complete.
// Should be called after iterating through all chunks.
func (s *Stream) Response() Response[string] {
	text := s.acc.text.String()
	resp := Response[string]{
		text:      text,
		reasoning: s.acc.reasoning.String(),
		toolCalls: s.acc.toolCalls(),
		usage:     s.acc.usage,
		model:     s.model,
		parsed:    text,
		hasParsed: true,
		config:    s.config,
	}
	resp.messages = appendAssistant(s.messages, resp.text, resp.toolCalls)
	return resp
}

// drain consumes the stream and returns the accumulated response.
func (s *Stream) drain() (Response[string], error) {
	defer func() { _ = s.Close() }()
	for range s.Chunks() {
	}
	return s.Response(), s.Err()
}

// accumulator folds chunks into a response.
type accumulator struct {
	text      strings.Builder
	reasoning strings.Builder
	calls     []ToolCall
	byIndex   map[int]int
	usage     provider.Tally
}

func (a *accumulator) add(chunk provider.Chunk) {
	switch c := chunk.(type) {
	case provider.TextChunk:
		a.text.WriteString(c.Text)
	case provider.ReasoningChunk:
		a.reasoning.WriteString(c.Reasoning)
	case provider.UsageChunk:
		a.usage.Add(c)
	case provider.ToolCallChunk:
		if a.byIndex == nil {
			a.byIndex = make(map[int]int)
		}
		i, ok := a.byIndex[c.Index]
		if !ok {
			i = len(a.calls)
			a.byIndex[c.Index] = i
			a.calls = append(a.calls, ToolCall{})
		}
		tc := &a.calls[i]
		if c.ID != "" {
			tc.ID = c.ID
		}
		if c.Name != "" {
			tc.Name = c.Name
		}
		tc.Arguments += c.ArgumentsDelta
	}
}

func (a *accumulator) toolCalls() []ToolCall {
	if len(a.calls) == 0 {
		return nil
	}
	calls := make([]ToolCall, len(a.calls))
	copy(calls, a.calls)
	for i := range calls {
		if calls[i].Arguments == "" {
			calls[i].Arguments = "{}"
		}
	}
	return calls
}

// CallStream makes a streaming LLM call.
//
// Example:
//
//	stream, err := llm.CallStream(ctx, "Write a short story",
//	    llm.WithProvider("anthropic"),
//	    llm.WithModel("claude-3-7-sonnet-20250219"),
//	)
//	if err != nil {
//	    return err
//	}
//	defer stream.Close()
//
//	for chunk := range stream.Chunks() {
//	    ...
//	}
//
//	if err := stream.Err(); err != nil {
//	    return err
//	}
func CallStream(ctx context.Context, prompt string, opts ...Option) (*Stream, error) {
	cfg := newCallConfig()
	cfg.apply(opts...)
	return startStream(ctx, cfg, cfg.conversation(prompt))
}

// CallMessagesStream makes a streaming LLM call with message history.
func CallMessagesStream(ctx context.Context, messages []Message, opts ...Option) (*Stream, error) {
	cfg := newCallConfig()
	cfg.apply(opts...)
	return startStream(ctx, cfg, append(cfg.conversation(""), messages...))
}

// startStream resolves the handler and creates the message stream. No request
// is sent until the stream is consumed.
func startStream(ctx context.Context, cfg *callConfig, messages []Message) (*Stream, error) {
	h, err := cfg.resolveHandler()
	if err != nil {
		return nil, err
	}

	system, conv := splitSystem(cfg.systemMessage, messages)
	s := h.CreateMessage(ctx, system, conv, cfg.callOptions()...)

	saved := *cfg
	saved.handler = h
	saved.messages = nil

	return &Stream{
		stream:   s,
		model:    h.Model(),
		messages: messages,
		config:   &saved,
	}, nil
}

func appendAssistant(messages []Message, text string, calls []ToolCall) []Message {
	history := make([]Message, 0, len(messages)+1)
	history = append(history, messages...)
	if len(calls) > 0 {
		return append(history, AssistantMessageWithToolCalls(text, calls))
	}
	return append(history, AssistantMessage(text))
}
