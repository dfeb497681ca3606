package messagesapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/i2y/bridle/internal/sse"
	"github.com/i2y/bridle/models"
	"github.com/i2y/bridle/provider"
)

// Translator converts Messages API stream events to chunks. It is used for a
// single response.
type Translator struct {
	provider string
	info     models.ModelInfo

	// tool call ordinal per content block index
	tools map[int]int

	outputReported int
	stopped        bool
}

// NewTranslator returns a translator for one response of a model.
func NewTranslator(providerName string, info models.ModelInfo) *Translator {
	return &Translator{provider: providerName, info: info, tools: make(map[int]int)}
}

// Translate handles one event.
func (t *Translator) Translate(ev sse.Event) ([]provider.Chunk, error) {
	var event streamEvent
	if err := json.Unmarshal(ev.Data, &event); err != nil {
		return nil, fmt.Errorf("parsing event: %w", err)
	}

	switch event.Type {
	case "message_start":
		if event.Message == nil {
			return nil, nil
		}
		u := event.Message.Usage
		t.outputReported = u.OutputTokens
		return []provider.Chunk{provider.NormalizeUsage(t.info, provider.RawUsage{
			InputTokens:      u.InputTokens,
			OutputTokens:     u.OutputTokens,
			CacheWriteTokens: u.CacheCreationInputTokens,
			CacheReadTokens:  u.CacheReadInputTokens,
		})}, nil

	case "content_block_start":
		return t.blockStart(event.Index, event.ContentBlock), nil

	case "content_block_delta":
		return t.blockDelta(event.Index, event.Delta), nil

	case "message_delta":
		// output_tokens here is cumulative for the response.
		if event.Usage == nil || event.Usage.OutputTokens <= t.outputReported {
			return nil, nil
		}
		n := event.Usage.OutputTokens - t.outputReported
		t.outputReported = event.Usage.OutputTokens
		return []provider.Chunk{provider.NormalizeUsage(t.info, provider.RawUsage{OutputTokens: n})}, nil

	case "message_stop":
		t.stopped = true
		return nil, io.EOF

	case "error":
		return nil, t.streamError(event.Error)

	default:
		// ping, content_block_stop
		return nil, nil
	}
}

func (t *Translator) blockStart(index int, block *contentBlock) []provider.Chunk {
	if block == nil {
		return nil
	}
	switch block.Type {
	case "text":
		if block.Text != "" {
			return []provider.Chunk{provider.TextChunk{Text: block.Text}}
		}
	case "thinking":
		if block.Thinking != "" {
			return []provider.Chunk{provider.ReasoningChunk{Reasoning: block.Thinking}}
		}
	case "tool_use":
		ordinal := len(t.tools)
		t.tools[index] = ordinal
		return []provider.Chunk{provider.ToolCallChunk{Index: ordinal, ID: block.ID, Name: block.Name}}
	}
	return nil
}

func (t *Translator) blockDelta(index int, d *delta) []provider.Chunk {
	if d == nil {
		return nil
	}
	switch d.Type {
	case "text_delta":
		if d.Text != "" {
			return []provider.Chunk{provider.TextChunk{Text: d.Text}}
		}
	case "thinking_delta":
		if d.Thinking != "" {
			return []provider.Chunk{provider.ReasoningChunk{Reasoning: d.Thinking}}
		}
	case "input_json_delta":
		ordinal, ok := t.tools[index]
		if ok && d.PartialJSON != "" {
			return []provider.Chunk{provider.ToolCallChunk{Index: ordinal, ArgumentsDelta: d.PartialJSON}}
		}
	}
	return nil
}

func (t *Translator) streamError(e *apiError) error {
	apiErr := &provider.APIError{Provider: t.provider}
	if e != nil {
		apiErr.Type = e.Type
		apiErr.Message = e.Message
	}
	switch apiErr.Type {
	case "rate_limit_error":
		apiErr.StatusCode = http.StatusTooManyRequests
	case "overloaded_error":
		apiErr.StatusCode = 529
	case "api_error":
		apiErr.StatusCode = http.StatusInternalServerError
	}
	return apiErr
}

// Finish reports a stream that ended before message_stop.
func (t *Translator) Finish() ([]provider.Chunk, error) {
	if !t.stopped {
		return nil, io.ErrUnexpectedEOF
	}
	return nil, nil
}
