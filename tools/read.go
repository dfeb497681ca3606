package tools

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// ReadInput defines the input for the read_file tool.
type ReadInput struct {
	Path   string `json:"path" jsonschema:"required,description=File path relative to the workspace"`
	Offset int    `json:"offset,omitempty" jsonschema:"description=Line offset to start from (0-based)"`
	Limit  int    `json:"limit,omitempty" jsonschema:"description=Max lines to read (default: 0 = all)"`
}

// ReadOutput defines the output of the read_file tool.
type ReadOutput struct {
	Content   string `json:"content"`
	Lines     int    `json:"lines"`
	Truncated bool   `json:"truncated"`
}

func (w *Workspace) readFile(ctx context.Context, input ReadInput) (ReadOutput, error) {
	file, err := w.fsys.Open(clean(input.Path))
	if err != nil {
		return ReadOutput{}, fmt.Errorf("opening file: %w", err)
	}
	defer func() { _ = file.Close() }()

	scanner := bufio.NewScanner(file)
	var lines []string
	lineNum := 0
	truncated := false

	for scanner.Scan() {
		if lineNum < input.Offset {
			lineNum++
			continue
		}
		if input.Limit > 0 && len(lines) >= input.Limit {
			truncated = true
			break
		}
		lines = append(lines, scanner.Text())
		lineNum++
	}
	if err := scanner.Err(); err != nil {
		return ReadOutput{}, fmt.Errorf("reading file: %w", err)
	}

	return ReadOutput{
		Content:   strings.Join(lines, "\n"),
		Lines:     len(lines),
		Truncated: truncated,
	}, nil
}
