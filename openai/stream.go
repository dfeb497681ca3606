package openai

import (
	"io"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/packages/ssestream"
	"github.com/tidwall/gjson"

	"github.com/i2y/bridle/models"
	"github.com/i2y/bridle/provider"
)

// chunkSource adapts an SDK stream to provider.EventSource.
type chunkSource struct {
	stream *ssestream.Stream[openai.ChatCompletionChunk]
	info   models.ModelInfo
}

func (s *chunkSource) Recv() ([]provider.Chunk, error) {
	if !s.stream.Next() {
		if err := s.stream.Err(); err != nil {
			return nil, convertError(err)
		}
		return nil, io.EOF
	}
	return translate(s.stream.Current(), s.info), nil
}

func (s *chunkSource) Close() error {
	return s.stream.Close()
}

// translate converts one completion chunk. Fields the SDK does not model,
// such as reasoning_content from compatible servers and cached token
// details, are read from the raw JSON.
func translate(chunk openai.ChatCompletionChunk, info models.ModelInfo) []provider.Chunk {
	var out []provider.Chunk
	raw := chunk.JSON.RawJSON()

	if len(chunk.Choices) > 0 {
		delta := chunk.Choices[0].Delta

		if r := gjson.Get(raw, "choices.0.delta.reasoning_content"); r.Type == gjson.String && r.String() != "" {
			out = append(out, provider.ReasoningChunk{Reasoning: r.String()})
		}
		if delta.Content != "" {
			out = append(out, provider.TextChunk{Text: delta.Content})
		}
		for _, tc := range delta.ToolCalls {
			out = append(out, provider.ToolCallChunk{
				Index:          int(tc.Index),
				ID:             tc.ID,
				Name:           tc.Function.Name,
				ArgumentsDelta: tc.Function.Arguments,
			})
		}
	}

	if usage := gjson.Get(raw, "usage"); usage.IsObject() {
		rawUsage := provider.RawUsage{
			InputTokens:  int(usage.Get("prompt_tokens").Int()),
			OutputTokens: int(usage.Get("completion_tokens").Int()),
		}
		if cached := usage.Get("prompt_tokens_details.cached_tokens"); cached.Exists() && cached.Type != gjson.Null {
			rawUsage.CacheReadTokens = provider.Int(int(cached.Int()))
		}
		out = append(out, provider.NormalizeUsage(info, rawUsage))
	}

	return out
}
