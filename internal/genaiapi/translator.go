package genaiapi

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/i2y/bridle/internal/sse"
	"github.com/i2y/bridle/models"
	"github.com/i2y/bridle/provider"
)

// Translator converts streamGenerateContent events to chunks. Usage is
// reported cumulatively by the backend, so a single usage chunk is emitted
// when the stream ends. A response without a finishReason is truncated.
type Translator struct {
	provider string
	info     models.ModelInfo

	toolCalls int
	usage     *usageMetadata
	finished  bool
}

// NewTranslator returns a translator for one response of a model.
func NewTranslator(providerName string, info models.ModelInfo) *Translator {
	return &Translator{provider: providerName, info: info}
}

// Translate handles one event.
func (t *Translator) Translate(ev sse.Event) ([]provider.Chunk, error) {
	var chunk streamChunk
	if err := json.Unmarshal(ev.Data, &chunk); err != nil {
		return nil, fmt.Errorf("parsing event: %w", err)
	}

	if chunk.Error != nil {
		return nil, &provider.APIError{
			Provider:   t.provider,
			StatusCode: chunk.Error.Code,
			Type:       chunk.Error.Status,
			Message:    chunk.Error.Message,
		}
	}

	if chunk.UsageMetadata != nil {
		t.usage = chunk.UsageMetadata
	}

	if len(chunk.Candidates) > 0 && chunk.Candidates[0].FinishReason != "" {
		t.finished = true
	}

	if len(chunk.Candidates) == 0 || chunk.Candidates[0].Content == nil {
		return nil, nil
	}

	var out []provider.Chunk
	for _, part := range chunk.Candidates[0].Content.Parts {
		switch {
		case part.FunctionCall != nil:
			args := string(part.FunctionCall.Args)
			if args == "" {
				args = "{}"
			}
			out = append(out, provider.ToolCallChunk{
				Index:          t.toolCalls,
				ID:             part.FunctionCall.Name, // Gemini uses name as ID
				Name:           part.FunctionCall.Name,
				ArgumentsDelta: args,
			})
			t.toolCalls++
		case part.Text == "":
		case part.Thought:
			out = append(out, provider.ReasoningChunk{Reasoning: part.Text})
		default:
			out = append(out, provider.TextChunk{Text: part.Text})
		}
	}
	return out, nil
}

// Finish emits the final usage, or io.ErrUnexpectedEOF when no candidate
// carried a finishReason.
func (t *Translator) Finish() ([]provider.Chunk, error) {
	if !t.finished {
		return nil, io.ErrUnexpectedEOF
	}
	if t.usage == nil {
		return nil, nil
	}
	return []provider.Chunk{provider.NormalizeUsage(t.info, provider.RawUsage{
		InputTokens:     t.usage.PromptTokenCount,
		OutputTokens:    t.usage.CandidatesTokenCount + t.usage.ThoughtsTokenCount,
		CacheReadTokens: t.usage.CachedContentTokenCount,
	})}, nil
}
