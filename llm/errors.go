package llm

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	// ErrProviderRequired is returned when neither WithProvider nor WithHandler is given.
	ErrProviderRequired = errors.New("provider is required: use WithProvider or WithHandler")

	// ErrNotParsed is returned when Parsed() is called but no parsing occurred.
	ErrNotParsed = errors.New("response was not parsed: use CallParse to get structured output")

	// ErrNotResumable is returned by Resume on a response that carries no call configuration.
	ErrNotResumable = errors.New("cannot resume: response was not produced by a call")

	// ErrInvalidToolName is returned by NewTool for names backends reject.
	ErrInvalidToolName = errors.New("tool names must be 1-64 letters, digits, '_' or '-'")
)

// ParseError represents a failure to parse the LLM response.
type ParseError struct {
	Content string
	Target  string
	Cause   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse response as %s: %v", e.Target, e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ToolError represents an error during tool execution.
type ToolError struct {
	ToolName string
	Cause    error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool %q execution failed: %v", e.ToolName, e.Cause)
}

func (e *ToolError) Unwrap() error {
	return e.Cause
}

// ToolNotFoundError is returned when a tool is not found.
type ToolNotFoundError struct {
	Name string
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("tool not found: %q", e.Name)
}

// DuplicateToolError is returned when a registry already holds a tool name.
type DuplicateToolError struct {
	Name string
}

func (e *DuplicateToolError) Error() string {
	return fmt.Sprintf("tool %q registered twice", e.Name)
}
