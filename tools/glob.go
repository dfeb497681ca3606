package tools

import (
	"context"
	"path"

	"github.com/bmatcuk/doublestar/v4"
)

// GlobInput defines the input for the find_files tool.
type GlobInput struct {
	Pattern string `json:"pattern" jsonschema:"required,description=Glob pattern (e.g. **/*.go for all Go files)"`
	Path    string `json:"path,omitempty" jsonschema:"description=Directory to search from, relative to the workspace"`
}

// GlobOutput defines the output of the find_files tool.
type GlobOutput struct {
	Files []string `json:"files"`
	Count int      `json:"count"`
}

func (w *Workspace) findFiles(ctx context.Context, input GlobInput) (GlobOutput, error) {
	base := clean(input.Path)
	matches, err := doublestar.Glob(w.fsys, path.Join(base, input.Pattern), doublestar.WithFilesOnly())
	if err != nil {
		return GlobOutput{}, err
	}
	return GlobOutput{Files: matches, Count: len(matches)}, nil
}
