package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/i2y/bridle/provider"
)

type echoInput struct {
	Name  string `json:"name" jsonschema:"required,description=The name"`
	Count int    `json:"count,omitempty"`
}

type weatherInput struct {
	City string `json:"city" jsonschema:"required"`
}

type weatherReport struct {
	City    string  `json:"city"`
	Celsius float64 `json:"celsius"`
}

func echoTool() *FuncTool[echoInput, string] {
	return MustNewTool("echo", "Repeats the name",
		func(_ context.Context, in echoInput) (string, error) {
			if in.Count > 1 {
				return in.Name + " x" + strconv.Itoa(in.Count), nil
			}
			return in.Name, nil
		})
}

func weatherTool() *FuncTool[weatherInput, weatherReport] {
	return MustNewTool("get_weather", "Current weather",
		func(_ context.Context, in weatherInput) (weatherReport, error) {
			return weatherReport{City: in.City, Celsius: 21.5}, nil
		})
}

func failingTool() Tool {
	return MustNewTool("explode", "Always fails",
		func(context.Context, struct{}) (string, error) { return "", errors.New("boom") })
}

func TestNewTool_Definition(t *testing.T) {
	def := echoTool().Definition()

	assert.Equal(t, "echo", def.Name)
	assert.Equal(t, "Repeats the name", def.Description)

	params := gjson.ParseBytes(def.Parameters)
	assert.Equal(t, "object", params.Get("type").String())
	assert.Equal(t, "string", params.Get("properties.name.type").String())
	assert.Equal(t, "The name", params.Get("properties.name.description").String())
	assert.Equal(t, "integer", params.Get("properties.count.type").String())
	assert.Equal(t, `["name"]`, params.Get("required").Raw)
	assert.False(t, params.Get(`\$schema`).Exists())
	assert.False(t, params.Get(`\$id`).Exists())
}

func TestNewTool_InvalidName(t *testing.T) {
	fn := func(context.Context, echoInput) (string, error) { return "", nil }

	for _, name := range []string{"", "has space", "dots.not.allowed", "ünïcode", strings.Repeat("a", 65)} {
		t.Run(name, func(t *testing.T) {
			_, err := NewTool(name, "d", fn)
			assert.ErrorIs(t, err, ErrInvalidToolName)
		})
	}

	assert.Panics(t, func() { MustNewTool("bad name", "d", fn) })
}

func TestFuncTool_Execute(t *testing.T) {
	tool := echoTool()

	tests := []struct {
		name    string
		args    string
		want    any
		wantErr string
	}{
		{name: "arguments", args: `{"name":"kit","count":3}`, want: "kit x3"},
		{name: "empty arguments", args: ``, want: ""},
		{name: "empty object", args: `{}`, want: ""},
		{name: "malformed", args: `{"name":`, wantErr: "decoding arguments"},
		{name: "wrong type", args: `{"name":7}`, wantErr: "decoding arguments"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tool.Execute(context.Background(), json.RawMessage(tt.args))
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	direct, err := tool.Call(context.Background(), echoInput{Name: "kit"})
	require.NoError(t, err)
	assert.Equal(t, "kit", direct)
}

func TestToolRegistry_Register(t *testing.T) {
	r := NewToolRegistry()
	require.NoError(t, r.Register(weatherTool(), echoTool()))

	var names []string
	for _, tool := range r.All() {
		names = append(names, tool.Definition().Name)
	}
	assert.Equal(t, []string{"echo", "get_weather"}, names)

	err := r.Register(failingTool(), echoTool())
	var dup *DuplicateToolError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "echo", dup.Name)

	_, ok := r.Get("explode")
	assert.False(t, ok, "a rejected batch registers nothing")

	err = NewToolRegistry().Register(echoTool(), echoTool())
	assert.ErrorAs(t, err, &dup)
}

func TestExecuteToolCalls(t *testing.T) {
	r := NewToolRegistry()
	require.NoError(t, r.Register(echoTool(), weatherTool(), failingTool()))

	got, err := ExecuteToolCalls(context.Background(), []ToolCall{
		{ID: "call_1", Name: "echo", Arguments: `{"name":"kit"}`},
		{ID: "call_2", Name: "get_weather", Arguments: `{"city":"Oslo"}`},
		{ID: "call_3", Name: "explode", Arguments: `{}`},
		{ID: "call_4", Name: "echo", Arguments: `not json`},
	}, r)
	require.NoError(t, err)
	require.Len(t, got, 4)

	for _, m := range got {
		assert.Equal(t, RoleTool, m.Role)
	}
	assert.Equal(t, ToolMessage("call_1", "kit"), got[0])
	assert.Equal(t, "call_2", got[1].ToolID)
	assert.JSONEq(t, `{"city":"Oslo","celsius":21.5}`, got[1].Content)
	assert.Equal(t, `Error: tool "explode" execution failed: boom`, got[2].Content)
	assert.Contains(t, got[3].Content, `Error: tool "echo" execution failed: decoding arguments`)
}

func TestExecuteToolCalls_UnknownTool(t *testing.T) {
	r := NewToolRegistry()
	require.NoError(t, r.Register(echoTool()))

	_, err := ExecuteToolCalls(context.Background(), []ToolCall{
		{ID: "call_1", Name: "echo", Arguments: `{"name":"a"}`},
		{ID: "call_2", Name: "missing"},
	}, r)

	var notFound *ToolNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "missing", notFound.Name)
}

func TestExecuteToolCalls_None(t *testing.T) {
	got, err := ExecuteToolCalls(context.Background(), nil, NewToolRegistry())
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestToolOutput(t *testing.T) {
	assert.Equal(t, "plain", toolOutput("plain"))
	assert.Equal(t, `{"a":1}`, toolOutput(json.RawMessage(`{"a":1}`)))
	assert.Equal(t, `[1,2]`, toolOutput([]int{1, 2}))
	assert.Equal(t, `null`, toolOutput(nil))
	assert.Contains(t, toolOutput(make(chan int)), "Error: encoding result")
}

// A streamed tool call is assembled, executed, and its result sent back on
// the next turn together with the tool definitions.
func TestToolRoundTrip(t *testing.T) {
	h := newScriptedHandler(
		[]provider.Chunk{
			provider.ToolCallChunk{Index: 0, ID: "call_w", Name: "get_weather"},
			provider.ToolCallChunk{Index: 0, ArgumentsDelta: `{"ci`},
			provider.ToolCallChunk{Index: 0, ArgumentsDelta: `ty":"Lima"}`},
			provider.UsageChunk{InputTokens: 12, OutputTokens: 7},
		},
		textScript("It is mild in Lima."),
	)
	r := NewToolRegistry()
	require.NoError(t, r.Register(weatherTool()))

	resp, err := Call(context.Background(), "Weather in Lima?", WithHandler(h), WithTools(r.All()...))
	require.NoError(t, err)
	require.Equal(t, []ToolCall{{ID: "call_w", Name: "get_weather", Arguments: `{"city":"Lima"}`}}, resp.ToolCalls())

	outputs, err := ExecuteToolCalls(context.Background(), resp.ToolCalls(), r)
	require.NoError(t, err)

	final, err := resp.ResumeWithToolOutputs(context.Background(), outputs)
	require.NoError(t, err)
	assert.Equal(t, "It is mild in Lima.", final.Text())

	require.Len(t, h.calls, 2)
	for _, call := range h.calls {
		require.Len(t, call.options.Tools, 1)
		assert.Equal(t, weatherTool().Definition(), call.options.Tools[0])
	}
	sent := h.calls[1].messages
	require.Len(t, sent, 3)
	assert.Equal(t, provider.RoleAssistant, sent[1].Role)
	assert.Equal(t, provider.RoleTool, sent[2].Role)
	assert.Equal(t, "call_w", sent[2].ToolID)
	assert.JSONEq(t, `{"city":"Lima","celsius":21.5}`, sent[2].Content)
}
