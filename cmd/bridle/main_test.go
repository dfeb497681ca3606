package main

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/i2y/bridle/internal/ssetest"
	"github.com/i2y/bridle/provider"
)

type result struct {
	stdout string
	stderr string
	err    error
}

// run executes the CLI with a config file in a temp dir and no dotenv file.
func run(t *testing.T, stdin string, config string, args ...string) result {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(config), 0o600))

	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetArgs(append([]string{"--config", configPath, "--env-file", ""}, args...))
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&stdout)
	root.SetErr(&stderr)

	err := root.Execute()
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func anthropicHello() ssetest.Response {
	return ssetest.Stream(
		ssetest.Named("message_start", `{"type":"message_start","message":{"id":"msg_1","usage":{"input_tokens":10,"output_tokens":1,"cache_creation_input_tokens":5,"cache_read_input_tokens":2}}}`),
		ssetest.Named("content_block_start", `{"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}`),
		ssetest.Named("content_block_delta", `{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Hello "}}`),
		ssetest.Named("content_block_delta", `{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"there!"}}`),
		ssetest.Named("content_block_stop", `{"type":"content_block_stop","index":0}`),
		ssetest.Named("message_delta", `{"type":"message_delta","delta":{"stop_reason":"end_turn"},"usage":{"output_tokens":20}}`),
		ssetest.Named("message_stop", `{"type":"message_stop"}`),
	)
}

func TestChat_StreamsText(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	server := ssetest.New(t, anthropicHello())

	res := run(t, "", "", "chat", "-f", "anthropic", "--base-url", server.URL, "-s", "Be brief.", "Say", "hello")
	require.NoError(t, res.err, res.stderr)

	assert.Equal(t, "Hello there!", res.stdout)
	assert.Contains(t, res.stderr, "10 in, 20 out, 5 cache write, 2 cache read")

	body := gjson.ParseBytes(server.Last().Body)
	assert.Equal(t, "Be brief.", body.Get("system.0.text").String())
	assert.Equal(t, "Say hello", body.Get("messages.0.content.0.text").String())
}

func TestChat_JSONOutput(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	server := ssetest.New(t, anthropicHello())

	res := run(t, "", "", "chat", "--base-url", server.URL, "--json", "Hi")
	require.NoError(t, res.err, res.stderr)

	var chunks []provider.Chunk
	sc := bufio.NewScanner(strings.NewReader(res.stdout))
	for sc.Scan() {
		c, err := provider.UnmarshalChunk(sc.Bytes())
		require.NoError(t, err)
		chunks = append(chunks, c)
	}

	require.Len(t, chunks, 4)
	assert.Equal(t, provider.TextChunk{Text: "Hello "}, chunks[1])
	assert.Equal(t, provider.TextChunk{Text: "there!"}, chunks[2])
	assert.IsType(t, provider.UsageChunk{}, chunks[0])
	assert.IsType(t, provider.UsageChunk{}, chunks[3])
	assert.NotContains(t, res.stderr, "cache read")
}

func TestChat_PromptFromStdin(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	server := ssetest.New(t, anthropicHello())

	res := run(t, "  What is Go?\n", "", "chat", "--base-url", server.URL)
	require.NoError(t, res.err, res.stderr)

	body := gjson.ParseBytes(server.Last().Body)
	assert.Equal(t, "What is Go?", body.Get("messages.0.content.0.text").String())
}

func TestChat_EmptyPrompt(t *testing.T) {
	res := run(t, "   ", "", "chat", "-")
	assert.ErrorContains(t, res.err, "empty prompt")
}

func TestChat_ConfigFile(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	server := ssetest.New(t, anthropicHello())

	config := "family: anthropic\n" +
		"model: claude-3-5-haiku-20241022\n" +
		"system: From config.\n" +
		"max_tokens: 321\n" +
		"base_url: " + server.URL + "\n"

	res := run(t, "", config, "chat", "Hi")
	require.NoError(t, res.err, res.stderr)

	body := gjson.ParseBytes(server.Last().Body)
	assert.Equal(t, "claude-3-5-haiku-20241022", body.Get("model").String())
	assert.Equal(t, "From config.", body.Get("system.0.text").String())
	assert.Equal(t, int64(321), body.Get("max_tokens").Int())

	res = run(t, "", config, "chat", "--max-tokens", "99", "Hi")
	require.NoError(t, res.err, res.stderr)
	assert.Equal(t, int64(99), gjson.GetBytes(server.Last().Body, "max_tokens").Int())
}

func TestChat_Attachments(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	server := ssetest.New(t, anthropicHello())

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "notes.txt"), []byte("remember the milk"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pic.png"), []byte{0x89, 'P', 'N', 'G'}, 0o600))

	res := run(t, "", "", "chat", "--base-url", server.URL,
		"--attach", filepath.Join(dir, "**", "*.txt"),
		"--attach", filepath.Join(dir, "*.png"),
		"Summarize")
	require.NoError(t, res.err, res.stderr)

	content := gjson.GetBytes(server.Last().Body, "messages.0.content")
	assert.Equal(t, "image", content.Get("0.type").String())
	assert.Equal(t, "image/png", content.Get("0.source.media_type").String())
	text := content.Get("1.text").String()
	assert.Contains(t, text, "remember the milk")
	assert.True(t, strings.HasSuffix(text, "Summarize"))
}

func TestChat_UnknownFamily(t *testing.T) {
	res := run(t, "", "", "chat", "-f", "bedrock", "Hi")
	assert.ErrorContains(t, res.err, "bedrock")
}

func TestChat_NonTransientErrorReported(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	server := ssetest.New(t, ssetest.Error(400, `{"type":"error","error":{"type":"invalid_request_error","message":"bad"}}`))

	res := run(t, "", "", "chat", "--base-url", server.URL, "Hi")
	require.Error(t, res.err)
	assert.ErrorIs(t, res.err, provider.ErrStreamInitiation)
	assert.Equal(t, 1, server.Calls())
}

func TestModels(t *testing.T) {
	res := run(t, "", "", "models", "anthropic", "vertex")
	require.NoError(t, res.err)

	assert.Contains(t, res.stdout, "anthropic (default claude-3-7-sonnet-20250219)")
	assert.Contains(t, res.stdout, "claude-3-7-sonnet-20250219 *")
	assert.Contains(t, res.stdout, "claude-3-7-sonnet@20250219 *")
	assert.NotContains(t, res.stdout, "gpt-4o")
}

func TestModels_UnknownFamily(t *testing.T) {
	res := run(t, "", "", "models", "bedrock")
	assert.ErrorContains(t, res.err, `unknown family "bedrock"`)
}

func TestVersion(t *testing.T) {
	res := run(t, "", "", "version", "-o", "json")
	require.NoError(t, res.err)
	assert.True(t, gjson.Get(res.stdout, "version").Exists())

	res = run(t, "", "", "version", "-o", "yaml")
	assert.Error(t, res.err)
}

func TestLoadConfig(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yaml")

	cfg, err := loadConfig(missing, false)
	require.NoError(t, err)
	assert.Equal(t, "anthropic", cfg.Family)

	_, err = loadConfig(missing, true)
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("family: [unterminated"), 0o600))
	_, err = loadConfig(bad, true)
	assert.ErrorContains(t, err, "parsing config")
}

func TestConfig_RetryPolicy(t *testing.T) {
	var cfg Config
	cfg.Retry.MaxAttempts = 4
	cfg.Retry.StatusCodes = []int{429, 529}

	p := cfg.retryPolicy()
	assert.Equal(t, 4, p.MaxAttempts)
	assert.Equal(t, map[int]bool{429: true, 529: true}, p.StatusCodes)

	p = Config{}.retryPolicy()
	assert.Equal(t, 2, p.MaxAttempts)
}

func TestCollectAttachments_NoMatch(t *testing.T) {
	_, err := collectAttachments([]string{filepath.Join(t.TempDir(), "*.md")})
	assert.ErrorContains(t, err, "no files match")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := newLogger(&buf, "debug")
	require.NoError(t, err)
	log.Debug("hello")
	assert.Contains(t, buf.String(), "hello")

	_, err = newLogger(&buf, "loud")
	assert.Error(t, err)
}

func TestChat_WorkspaceToolLoop(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	toolUse := ssetest.Stream(
		ssetest.Named("message_start", `{"type":"message_start","message":{"id":"msg_1","usage":{"input_tokens":50,"output_tokens":1}}}`),
		ssetest.Named("content_block_start", `{"type":"content_block_start","index":0,"content_block":{"type":"tool_use","id":"toolu_1","name":"find_files","input":{}}}`),
		ssetest.Named("content_block_delta", `{"type":"content_block_delta","index":0,"delta":{"type":"input_json_delta","partial_json":"{\"pattern\":\"*.txt\"}"}}`),
		ssetest.Named("content_block_stop", `{"type":"content_block_stop","index":0}`),
		ssetest.Named("message_delta", `{"type":"message_delta","delta":{"stop_reason":"tool_use"},"usage":{"output_tokens":12}}`),
		ssetest.Named("message_stop", `{"type":"message_stop"}`),
	)
	server := ssetest.New(t, toolUse, anthropicHello())

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "todo.txt"), []byte("buy milk"), 0o600))

	res := run(t, "", "", "chat", "--base-url", server.URL, "--workspace", dir, "What files are there?")
	require.NoError(t, res.err, res.stderr)

	assert.Equal(t, "Hello there!", res.stdout)
	assert.Contains(t, res.stderr, "find_files")
	require.Equal(t, 2, server.Calls())

	first := gjson.ParseBytes(server.Requests()[0].Body)
	assert.Equal(t, 3, len(first.Get("tools").Array()))

	second := gjson.ParseBytes(server.Last().Body)
	assert.Equal(t, "tool_use", second.Get("messages.1.content.0.type").String())
	result := second.Get("messages.2.content.0")
	assert.Equal(t, "tool_result", result.Get("type").String())
	assert.Equal(t, "toolu_1", result.Get("tool_use_id").String())
	assert.Contains(t, result.Get("content").String(), "todo.txt")

	// Usage from both rounds is summed.
	assert.Contains(t, res.stderr, "60 in, 32 out")
}
