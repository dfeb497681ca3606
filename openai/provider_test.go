package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/i2y/bridle/internal/ssetest"
	"github.com/i2y/bridle/models"
	"github.com/i2y/bridle/provider"
	"github.com/i2y/bridle/retry"
)

func fastRetry() *retry.Policy {
	p := retry.Default()
	p.Backoff = retry.ConstantBackoff(0)
	return &p
}

func newTestHandler(t *testing.T, server *ssetest.Server, modelID string) *Handler {
	t.Helper()
	h, err := New(provider.Options{
		APIModelID: modelID,
		APIKey:     "test-key",
		BaseURL:    server.URL + "/v1/",
		Retry:      fastRetry(),
	})
	require.NoError(t, err)
	return h
}

func helloStream() ssetest.Response {
	return ssetest.Stream(
		ssetest.Data(`{"id":"c1","object":"chat.completion.chunk","created":1,"model":"gpt-4o","choices":[{"index":0,"delta":{"role":"assistant","content":"Hello"}}]}`),
		ssetest.Data(`{"id":"c1","object":"chat.completion.chunk","created":1,"model":"gpt-4o","choices":[{"index":0,"delta":{"content":" there!"},"finish_reason":"stop"}]}`),
		ssetest.Data(`{"id":"c1","object":"chat.completion.chunk","created":1,"model":"gpt-4o","choices":[],"usage":{"prompt_tokens":30,"completion_tokens":20,"total_tokens":50,"prompt_tokens_details":{"cached_tokens":12}}}`),
		ssetest.Data(`[DONE]`),
	)
}

func userMessages(text string) []provider.Message {
	return []provider.Message{{Role: provider.RoleUser, Content: text}}
}

func TestNew_ModelResolution(t *testing.T) {
	for requested, want := range map[string]string{
		"":            models.OpenAIDefault,
		"gpt-9":       models.OpenAIDefault,
		"gpt-4o-mini": "gpt-4o-mini",
	} {
		h, err := New(provider.Options{APIModelID: requested})
		require.NoError(t, err)
		assert.Equal(t, want, h.Model().ID, "requested %q", requested)
	}
}

func TestCreateMessage_TextAndUsage(t *testing.T) {
	server := ssetest.New(t, helloStream())
	h := newTestHandler(t, server, "gpt-4o")

	chunks, err := provider.Collect(h.CreateMessage(context.Background(), "Be brief.", userMessages("Hi")))
	require.NoError(t, err)

	require.Len(t, chunks, 3)
	assert.Equal(t, provider.TextChunk{Text: "Hello"}, chunks[0])
	assert.Equal(t, provider.TextChunk{Text: " there!"}, chunks[1])
	assert.Equal(t, provider.UsageChunk{
		InputTokens:     30,
		OutputTokens:    20,
		CacheReadTokens: provider.Int(12),
	}, chunks[2])

	req := server.Last()
	assert.True(t, strings.HasSuffix(req.Path, "/chat/completions"), req.Path)
	assert.Equal(t, "Bearer test-key", req.Header.Get("Authorization"))

	body := gjson.ParseBytes(req.Body)
	assert.Equal(t, "gpt-4o", body.Get("model").String())
	assert.True(t, body.Get("stream").Bool())
	assert.True(t, body.Get("stream_options.include_usage").Bool())
	assert.Equal(t, "system", body.Get("messages.0.role").String())
	// The SDK sends system content as text parts.
	assert.Equal(t, "text", body.Get("messages.0.content.0.type").String())
	assert.Equal(t, "Be brief.", body.Get("messages.0.content.0.text").String())
	assert.Equal(t, "user", body.Get("messages.1.role").String())
	assert.Equal(t, int64(16_384), body.Get("max_completion_tokens").Int())
}

func TestCreateMessage_NoCacheFieldsForPlainModel(t *testing.T) {
	server := ssetest.New(t, helloStream())
	h := newTestHandler(t, server, "gpt-3.5-turbo")

	chunks, err := provider.Collect(h.CreateMessage(context.Background(), "", userMessages("Hi")))
	require.NoError(t, err)

	usage, ok := chunks[len(chunks)-1].(provider.UsageChunk)
	require.True(t, ok)
	assert.Nil(t, usage.CacheReadTokens)
	assert.Nil(t, usage.CacheWriteTokens)
}

func TestCreateMessage_ToolCalls(t *testing.T) {
	server := ssetest.New(t, ssetest.Stream(
		ssetest.Data(`{"id":"c1","object":"chat.completion.chunk","created":1,"model":"gpt-4o","choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"id":"call_1","type":"function","function":{"name":"get_weather","arguments":""}}]}}]}`),
		ssetest.Data(`{"id":"c1","object":"chat.completion.chunk","created":1,"model":"gpt-4o","choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"function":{"arguments":"{\"city\":\"Tokyo\"}"}}]}}]}`),
		ssetest.Data(`[DONE]`),
	))
	h := newTestHandler(t, server, "gpt-4o")

	tool := provider.ToolDef{
		Name:        "get_weather",
		Description: "Look up the weather",
		Parameters:  json.RawMessage(`{"type":"object","properties":{"city":{"type":"string"}}}`),
	}
	chunks, err := provider.Collect(h.CreateMessage(context.Background(), "", userMessages("Weather?"), provider.WithTools(tool)))
	require.NoError(t, err)

	require.Len(t, chunks, 2)
	assert.Equal(t, provider.ToolCallChunk{Index: 0, ID: "call_1", Name: "get_weather"}, chunks[0])
	assert.Equal(t, provider.ToolCallChunk{Index: 0, ArgumentsDelta: `{"city":"Tokyo"}`}, chunks[1])

	body := gjson.ParseBytes(server.Last().Body)
	assert.Equal(t, "function", body.Get("tools.0.type").String())
	assert.Equal(t, "get_weather", body.Get("tools.0.function.name").String())
	assert.Equal(t, "string", body.Get("tools.0.function.parameters.properties.city.type").String())
}

func TestCreateMessage_ConversationShape(t *testing.T) {
	server := ssetest.New(t, helloStream())
	h := newTestHandler(t, server, "gpt-4o")

	messages := []provider.Message{
		{Role: provider.RoleUser, Content: "Look", Images: []provider.Image{{MediaType: "image/png", Data: "AAAA"}}},
		{Role: provider.RoleAssistant, ToolCalls: []provider.ToolCall{{ID: "call_1", Name: "zoom", Arguments: `{"x":1}`}}},
		{Role: provider.RoleTool, ToolID: "call_1", Content: "zoomed"},
	}
	_, err := provider.Collect(h.CreateMessage(context.Background(), "", messages))
	require.NoError(t, err)

	body := gjson.ParseBytes(server.Last().Body)
	assert.Equal(t, "image_url", body.Get("messages.0.content.0.type").String())
	assert.Equal(t, "data:image/png;base64,AAAA", body.Get("messages.0.content.0.image_url.url").String())
	assert.Equal(t, "Look", body.Get("messages.0.content.1.text").String())
	assert.Equal(t, "assistant", body.Get("messages.1.role").String())
	assert.Equal(t, "zoom", body.Get("messages.1.tool_calls.0.function.name").String())
	assert.Equal(t, "tool", body.Get("messages.2.role").String())
	assert.Equal(t, "call_1", body.Get("messages.2.tool_call_id").String())
}

func TestCreateMessage_RetriesRateLimit(t *testing.T) {
	server := ssetest.New(t,
		ssetest.Error(http.StatusTooManyRequests, `{"error":{"message":"slow down","type":"rate_limit_error"}}`),
		helloStream(),
	)
	h := newTestHandler(t, server, "gpt-4o")

	chunks, err := provider.Collect(h.CreateMessage(context.Background(), "", userMessages("Hi")))
	require.NoError(t, err)
	assert.Len(t, chunks, 3)
	assert.Equal(t, 2, server.Calls())
}

func TestCreateMessage_NonTransientError(t *testing.T) {
	server := ssetest.New(t,
		ssetest.Error(http.StatusUnauthorized, `{"error":{"message":"bad key","type":"invalid_request_error"}}`),
	)
	h := newTestHandler(t, server, "gpt-4o")

	chunks, err := provider.Collect(h.CreateMessage(context.Background(), "", userMessages("Hi")))
	require.Error(t, err)
	assert.Empty(t, chunks)
	assert.Equal(t, 1, server.Calls())

	assert.ErrorIs(t, err, provider.ErrStreamInitiation)
	var apiErr *provider.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "openai", apiErr.Provider)
}

func TestCreateMessage_EmptyConversation(t *testing.T) {
	server := ssetest.New(t, helloStream())
	h := newTestHandler(t, server, "gpt-4o")

	_, err := provider.Collect(h.CreateMessage(context.Background(), "", nil))
	assert.ErrorIs(t, err, provider.ErrEmptyConversation)
	assert.Zero(t, server.Calls())
}

func TestTranslate_ReasoningContent(t *testing.T) {
	var chunk openai.ChatCompletionChunk
	require.NoError(t, json.Unmarshal([]byte(`{"id":"c1","object":"chat.completion.chunk","created":1,"model":"deepseek-reasoner","choices":[{"index":0,"delta":{"reasoning_content":"thinking...","content":""}}]}`), &chunk))

	got := translate(chunk, models.ModelInfo{})
	assert.Equal(t, []provider.Chunk{provider.ReasoningChunk{Reasoning: "thinking..."}}, got)
}

func TestTranslate_NullUsageIgnored(t *testing.T) {
	var chunk openai.ChatCompletionChunk
	require.NoError(t, json.Unmarshal([]byte(`{"id":"c1","object":"chat.completion.chunk","created":1,"model":"gpt-4o","choices":[{"index":0,"delta":{"content":"x"}}],"usage":null}`), &chunk))

	got := translate(chunk, models.ModelInfo{})
	assert.Equal(t, []provider.Chunk{provider.TextChunk{Text: "x"}}, got)
}
