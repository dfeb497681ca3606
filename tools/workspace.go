// Package tools provides read-only file tools confined to a workspace
// directory, for use in tool-calling loops.
package tools

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/i2y/bridle/llm"
)

// Workspace is a directory the model may inspect. Paths given by the model
// are resolved inside it and cannot escape it.
type Workspace struct {
	root *os.Root
	fsys fs.FS
}

// OpenWorkspace opens dir as a workspace.
func OpenWorkspace(dir string) (*Workspace, error) {
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("opening workspace: %w", err)
	}
	return &Workspace{root: root, fsys: root.FS()}, nil
}

// Close releases the workspace directory handle.
func (w *Workspace) Close() error {
	return w.root.Close()
}

// Tools returns the read_file, find_files and search_files tools.
func (w *Workspace) Tools() []llm.Tool {
	return []llm.Tool{
		llm.MustNewTool("read_file",
			"Read a file from the workspace. Supports reading a range of lines.",
			w.readFile),
		llm.MustNewTool("find_files",
			"Find workspace files matching a glob pattern. Supports ** for recursive matching.",
			w.findFiles),
		llm.MustNewTool("search_files",
			"Search workspace files for a regular expression. Returns matching lines with file and line number.",
			w.searchFiles),
	}
}

// clean maps a model-supplied path to an fs.FS path.
func clean(p string) string {
	if p == "" || p == "/" {
		return "."
	}
	for len(p) > 0 && (p[0] == '/' || p[0] == '\\') {
		p = p[1:]
	}
	return p
}
