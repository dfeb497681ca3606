package tools

import (
	"bufio"
	"context"
	"io/fs"
	"path"
	"regexp"

	"github.com/bmatcuk/doublestar/v4"
)

const defaultMaxMatches = 100

// GrepInput defines the input for the search_files tool.
type GrepInput struct {
	Pattern    string `json:"pattern" jsonschema:"required,description=Regular expression pattern to search for"`
	Path       string `json:"path,omitempty" jsonschema:"description=File or directory to search, relative to the workspace"`
	Glob       string `json:"glob,omitempty" jsonschema:"description=File pattern filter (e.g. **/*.go)"`
	MaxMatches int    `json:"max_matches,omitempty" jsonschema:"description=Maximum number of matches to return (default: 100)"`
}

// GrepOutput defines the output of the search_files tool.
type GrepOutput struct {
	Matches []GrepMatch `json:"matches"`
	Count   int         `json:"count"`
}

// GrepMatch represents a single match.
type GrepMatch struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Content string `json:"content"`
}

func (w *Workspace) searchFiles(ctx context.Context, input GrepInput) (GrepOutput, error) {
	re, err := regexp.Compile(input.Pattern)
	if err != nil {
		return GrepOutput{}, err
	}

	maxMatches := input.MaxMatches
	if maxMatches <= 0 {
		maxMatches = defaultMaxMatches
	}

	base := clean(input.Path)
	info, err := fs.Stat(w.fsys, base)
	if err != nil {
		return GrepOutput{}, err
	}

	files := []string{base}
	if info.IsDir() {
		pattern := input.Glob
		if pattern == "" {
			pattern = "**/*"
		}
		files, err = doublestar.Glob(w.fsys, path.Join(base, pattern), doublestar.WithFilesOnly())
		if err != nil {
			return GrepOutput{}, err
		}
	}

	out := GrepOutput{Matches: []GrepMatch{}}
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		if len(out.Matches) >= maxMatches {
			break
		}
		// Unreadable files are skipped.
		found, _ := w.searchFile(name, re, maxMatches-len(out.Matches))
		out.Matches = append(out.Matches, found...)
	}
	out.Count = len(out.Matches)
	return out, nil
}

func (w *Workspace) searchFile(name string, re *regexp.Regexp, limit int) ([]GrepMatch, error) {
	file, err := w.fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	var matches []GrepMatch
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		if line := scanner.Text(); re.MatchString(line) {
			matches = append(matches, GrepMatch{File: name, Line: lineNum, Content: line})
			if len(matches) >= limit {
				break
			}
		}
	}
	return matches, scanner.Err()
}
