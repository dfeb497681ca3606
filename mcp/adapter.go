// Package mcp exposes tools served over the Model Context Protocol as
// llm.Tool values and provider tool definitions.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/i2y/bridle/internal/version"
	"github.com/i2y/bridle/llm"
	"github.com/i2y/bridle/provider"
	"github.com/i2y/bridle/schema"
)

const defaultTimeout = 30 * time.Second

// Client is a connected MCP client session.
type Client struct {
	session *mcp.ClientSession
	timeout time.Duration
}

// Option configures the MCP client.
type Option func(*clientConfig)

type clientConfig struct {
	timeout time.Duration
}

// WithTimeout sets the timeout for tool execution.
func WithTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		c.timeout = d
	}
}

// NewStdioClient starts command and talks MCP to it over stdio.
//
// Example:
//
//	client, err := mcp.NewStdioClient(ctx, "./my-mcp-server", nil)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	tools, err := client.Tools(ctx)
func NewStdioClient(ctx context.Context, command string, args []string, opts ...Option) (*Client, error) {
	return Connect(ctx, &mcp.CommandTransport{Command: exec.Command(command, args...)}, opts...)
}

// Connect opens a client session over transport.
func Connect(ctx context.Context, transport mcp.Transport, opts ...Option) (*Client, error) {
	cfg := &clientConfig{timeout: defaultTimeout}
	for _, opt := range opts {
		opt(cfg)
	}

	mcpClient := mcp.NewClient(&mcp.Implementation{
		Name:    "bridle",
		Version: version.Version,
	}, nil)

	session, err := mcpClient.Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("connecting to MCP server: %w", err)
	}

	return &Client{session: session, timeout: cfg.timeout}, nil
}

// Tools lists the server's tools as llm.Tool values.
//
// Example:
//
//	tools, err := client.Tools(ctx)
//	if err != nil {
//	    return err
//	}
//
//	resp, err := llm.Call(ctx, "Use the tools to help",
//	    llm.WithProvider("anthropic"),
//	    llm.WithTools(tools...),
//	)
func (c *Client) Tools(ctx context.Context) ([]llm.Tool, error) {
	result, err := c.session.ListTools(ctx, &mcp.ListToolsParams{})
	if err != nil {
		return nil, fmt.Errorf("listing MCP tools: %w", err)
	}

	tools := make([]llm.Tool, 0, len(result.Tools))
	for _, tool := range result.Tools {
		tools = append(tools, &toolAdapter{client: c, name: tool.Name, def: definition(tool)})
	}
	return tools, nil
}

// ToolDefs lists the server's tools as provider tool definitions.
func (c *Client) ToolDefs(ctx context.Context) ([]provider.ToolDef, error) {
	tools, err := c.Tools(ctx)
	if err != nil {
		return nil, err
	}
	defs := make([]provider.ToolDef, 0, len(tools))
	for _, t := range tools {
		defs = append(defs, t.Definition())
	}
	return defs, nil
}

// Close closes the MCP client connection.
func (c *Client) Close() error {
	return c.session.Close()
}

// definition converts an MCP tool. The input schema is passed through with
// meta keys removed.
func definition(tool *mcp.Tool) provider.ToolDef {
	params := json.RawMessage(`{"type":"object"}`)
	if tool.InputSchema != nil {
		if raw, err := json.Marshal(tool.InputSchema); err == nil {
			if compact, err := schema.Compact(raw); err == nil {
				params = compact
			}
		}
	}
	return provider.ToolDef{Name: tool.Name, Description: tool.Description, Parameters: params}
}

// toolAdapter implements llm.Tool by calling the MCP server.
type toolAdapter struct {
	client *Client
	name   string
	def    provider.ToolDef
}

func (t *toolAdapter) Definition() provider.ToolDef {
	return t.def
}

func (t *toolAdapter) Execute(ctx context.Context, args json.RawMessage) (any, error) {
	ctx, cancel := context.WithTimeout(ctx, t.client.timeout)
	defer cancel()

	var arguments map[string]any
	if len(args) > 0 {
		if err := json.Unmarshal(args, &arguments); err != nil {
			return nil, fmt.Errorf("parsing arguments: %w", err)
		}
	}

	result, err := t.client.session.CallTool(ctx, &mcp.CallToolParams{
		Name:      t.name,
		Arguments: arguments,
	})
	if err != nil {
		return nil, fmt.Errorf("calling MCP tool: %w", err)
	}

	combined := processToolResult(result.Content)
	if result.IsError {
		return nil, fmt.Errorf("MCP tool error: %s", combined)
	}
	return combined, nil
}

// processToolResult flattens tool output to text, one line per content item.
// Non-text content is described rather than inlined.
func processToolResult(content []mcp.Content) string {
	var parts []string
	for _, c := range content {
		switch item := c.(type) {
		case *mcp.TextContent:
			parts = append(parts, item.Text)
		case *mcp.ImageContent:
			parts = append(parts, fmt.Sprintf("[Image: %s, %d bytes]", item.MIMEType, len(item.Data)))
		case *mcp.EmbeddedResource:
			if item.Resource != nil {
				parts = append(parts, fmt.Sprintf("[Resource: %s]", item.Resource.URI))
			} else {
				parts = append(parts, "[Resource: embedded]")
			}
		}
	}
	return strings.Join(parts, "\n")
}

// ToolsFromMCP starts an MCP server and returns its tools with a cleanup
// function that stops it.
//
// Example:
//
//	tools, cleanup, err := mcp.ToolsFromMCP(ctx, "./my-mcp-server", nil)
//	if err != nil {
//	    return err
//	}
//	defer cleanup()
//
//	resp, err := llm.Call(ctx, "Help me", llm.WithTools(tools...))
func ToolsFromMCP(ctx context.Context, command string, args []string, opts ...Option) ([]llm.Tool, func() error, error) {
	client, err := NewStdioClient(ctx, command, args, opts...)
	if err != nil {
		return nil, nil, err
	}

	tools, err := client.Tools(ctx)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return tools, client.Close, nil
}
