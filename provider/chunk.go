package provider

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Chunk is one normalized output event. The concrete types are TextChunk,
// UsageChunk, ReasoningChunk and ToolCallChunk.
type Chunk interface {
	chunk()
}

// TextChunk carries a fragment of assistant text exactly as the backend sent it.
type TextChunk struct {
	Text string
}

// UsageChunk reports token counts. The cache fields are nil unless the model
// supports prompt caching and the backend reported them.
type UsageChunk struct {
	InputTokens      int
	OutputTokens     int
	CacheWriteTokens *int
	CacheReadTokens  *int
}

// ReasoningChunk carries a fragment of the model's thinking output.
type ReasoningChunk struct {
	Reasoning string
}

// ToolCallChunk is an incremental tool call. ID and Name are set on the first
// chunk of a call; later chunks with the same Index append to ArgumentsDelta.
type ToolCallChunk struct {
	Index          int
	ID             string
	Name           string
	ArgumentsDelta string
}

func (TextChunk) chunk()      {}
func (UsageChunk) chunk()     {}
func (ReasoningChunk) chunk() {}
func (ToolCallChunk) chunk()  {}

var (
	textJSON      = []byte(`{"type":"text"}`)
	usageJSON     = []byte(`{"type":"usage"}`)
	reasoningJSON = []byte(`{"type":"reasoning"}`)
	toolCallJSON  = []byte(`{"type":"tool_call"}`)
)

// MarshalChunk encodes c in its wire form, discriminated by a "type" field.
func MarshalChunk(c Chunk) ([]byte, error) {
	switch c := c.(type) {
	case TextChunk:
		return sjson.SetBytes(textJSON, "text", c.Text)
	case ReasoningChunk:
		return sjson.SetBytes(reasoningJSON, "reasoning", c.Reasoning)
	case UsageChunk:
		return c.MarshalJSON()
	case ToolCallChunk:
		return c.MarshalJSON()
	default:
		return nil, fmt.Errorf("unknown chunk type %T", c)
	}
}

// MarshalJSON implements custom JSON marshaling for TextChunk.
func (c TextChunk) MarshalJSON() ([]byte, error) { return MarshalChunk(c) }

// MarshalJSON implements custom JSON marshaling for ReasoningChunk.
func (c ReasoningChunk) MarshalJSON() ([]byte, error) { return MarshalChunk(c) }

// MarshalJSON implements custom JSON marshaling for UsageChunk.
// Absent cache fields are omitted rather than written as zero.
func (c UsageChunk) MarshalJSON() ([]byte, error) {
	result, err := sjson.SetBytes(usageJSON, "inputTokens", c.InputTokens)
	if err != nil {
		return nil, err
	}
	result, err = sjson.SetBytes(result, "outputTokens", c.OutputTokens)
	if err != nil {
		return nil, err
	}
	if c.CacheWriteTokens != nil {
		result, err = sjson.SetBytes(result, "cacheWriteTokens", *c.CacheWriteTokens)
		if err != nil {
			return nil, err
		}
	}
	if c.CacheReadTokens != nil {
		result, err = sjson.SetBytes(result, "cacheReadTokens", *c.CacheReadTokens)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// MarshalJSON implements custom JSON marshaling for ToolCallChunk.
func (c ToolCallChunk) MarshalJSON() ([]byte, error) {
	result, err := sjson.SetBytes(toolCallJSON, "index", c.Index)
	if err != nil {
		return nil, err
	}
	if c.ID != "" {
		if result, err = sjson.SetBytes(result, "id", c.ID); err != nil {
			return nil, err
		}
	}
	if c.Name != "" {
		if result, err = sjson.SetBytes(result, "name", c.Name); err != nil {
			return nil, err
		}
	}
	return sjson.SetBytes(result, "argumentsDelta", c.ArgumentsDelta)
}

// UnmarshalChunk decodes the wire form produced by MarshalChunk.
func UnmarshalChunk(data []byte) (Chunk, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid json: %s", data)
	}

	typ := gjson.GetBytes(data, "type")
	if !typ.Exists() {
		return nil, fmt.Errorf("missing required field 'type'")
	}

	switch typ.String() {
	case "text":
		text := gjson.GetBytes(data, "text")
		if !text.Exists() {
			return nil, fmt.Errorf("missing required field 'text'")
		}
		return TextChunk{Text: text.String()}, nil

	case "reasoning":
		r := gjson.GetBytes(data, "reasoning")
		if !r.Exists() {
			return nil, fmt.Errorf("missing required field 'reasoning'")
		}
		return ReasoningChunk{Reasoning: r.String()}, nil

	case "usage":
		fields := gjson.GetManyBytes(data, "inputTokens", "outputTokens", "cacheWriteTokens", "cacheReadTokens")
		if !fields[0].Exists() || !fields[1].Exists() {
			return nil, fmt.Errorf("usage chunk requires 'inputTokens' and 'outputTokens'")
		}
		u := UsageChunk{
			InputTokens:  int(fields[0].Int()),
			OutputTokens: int(fields[1].Int()),
		}
		if fields[2].Exists() {
			n := int(fields[2].Int())
			u.CacheWriteTokens = &n
		}
		if fields[3].Exists() {
			n := int(fields[3].Int())
			u.CacheReadTokens = &n
		}
		return u, nil

	case "tool_call":
		fields := gjson.GetManyBytes(data, "index", "id", "name", "argumentsDelta")
		return ToolCallChunk{
			Index:          int(fields[0].Int()),
			ID:             fields[1].String(),
			Name:           fields[2].String(),
			ArgumentsDelta: fields[3].String(),
		}, nil

	default:
		return nil, fmt.Errorf("unknown chunk type %q", typ.String())
	}
}
