// Package llm provides the main API for making LLM calls on top of the
// provider handlers.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/i2y/bridle/schema"
)

// Call makes an LLM call and returns a text response.
// On a stream error the partial response is returned with the error.
//
// Example:
//
//	resp, err := llm.Call(ctx, "Recommend a fantasy book",
//	    llm.WithProvider("anthropic"),
//	    llm.WithModel("claude-3-7-sonnet-20250219"),
//	)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(resp.Text())
func Call(ctx context.Context, prompt string, opts ...Option) (Response[string], error) {
	s, err := CallStream(ctx, prompt, opts...)
	if err != nil {
		return Response[string]{}, err
	}
	return s.drain()
}

// CallMessages makes an LLM call with a full message history.
// This is useful for multi-turn conversations.
//
// Example:
//
//	messages := []llm.Message{
//	    llm.SystemMessage("You are a helpful assistant"),
//	    llm.UserMessage("Hello"),
//	    llm.AssistantMessage("Hi! How can I help?"),
//	    llm.UserMessage("Tell me a joke"),
//	}
//
//	resp, err := llm.CallMessages(ctx, messages, llm.WithProvider("gemini"))
func CallMessages(ctx context.Context, messages []Message, opts ...Option) (Response[string], error) {
	s, err := CallMessagesStream(ctx, messages, opts...)
	if err != nil {
		return Response[string]{}, err
	}
	return s.drain()
}

// CallParse makes an LLM call with structured output and parses the response into type T.
// The JSON schema is generated from T and appended to the system message.
//
// Example:
//
//	type Book struct {
//	    Title  string `json:"title" jsonschema:"required,description=Book title"`
//	    Author string `json:"author" jsonschema:"required"`
//	}
//
//	resp, err := llm.CallParse[Book](ctx, "Recommend a sci-fi book",
//	    llm.WithProvider("openai"),
//	)
//	if err != nil {
//	    return err
//	}
//	book := resp.MustParse()
//	fmt.Printf("%s by %s\n", book.Title, book.Author)
func CallParse[T any](ctx context.Context, prompt string, opts ...Option) (Response[T], error) {
	return callParse[T](func(opts []Option) (Response[string], error) {
		return Call(ctx, prompt, opts...)
	}, opts)
}

// CallMessagesParse makes an LLM call with messages and parses the response.
// Combines CallMessages with structured output parsing.
func CallMessagesParse[T any](ctx context.Context, messages []Message, opts ...Option) (Response[T], error) {
	return callParse[T](func(opts []Option) (Response[string], error) {
		return CallMessages(ctx, messages, opts...)
	}, opts)
}

func callParse[T any](call func([]Option) (Response[string], error), opts []Option) (Response[T], error) {
	jsonSchema, err := schema.Generate[T]()
	if err != nil {
		return Response[T]{}, fmt.Errorf("generating schema: %w", err)
	}

	var zero T
	typeName := reflect.TypeOf(zero).Name()
	if typeName == "" {
		typeName = "response"
	}

	resp, err := call(append(opts, withSchemaInstruction(jsonSchema)))
	if err != nil {
		return Response[T]{}, err
	}

	var parsed T
	parseErr := json.Unmarshal([]byte(extractJSON(resp.text)), &parsed)
	if parseErr != nil {
		parseErr = &ParseError{
			Content: resp.text,
			Target:  typeName,
			Cause:   parseErr,
		}
	}

	return Response[T]{
		text:      resp.text,
		reasoning: resp.reasoning,
		toolCalls: resp.toolCalls,
		usage:     resp.usage,
		model:     resp.model,
		parsed:    parsed,
		hasParsed: parseErr == nil,
		parseErr:  parseErr,
		messages:  resp.messages,
		config:    resp.config,
	}, nil
}

// withSchemaInstruction appends a JSON-only instruction to the system message.
func withSchemaInstruction(jsonSchema json.RawMessage) Option {
	return func(c *callConfig) {
		instruction := "Respond only with a JSON value matching this JSON Schema, without any other text:\n" + string(jsonSchema)
		if c.systemMessage != "" {
			c.systemMessage += "\n\n"
		}
		c.systemMessage += instruction
	}
}

// extractJSON strips surrounding whitespace and a Markdown code fence.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		text = text[nl+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

func schemaFromValue(v any) (json.RawMessage, error) {
	s, err := schema.GenerateFromValue(v)
	if err != nil {
		return nil, fmt.Errorf("generating schema: %w", err)
	}
	return s, nil
}
