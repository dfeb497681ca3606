package main

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/i2y/bridle/provider"
)

var imageTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// attachments holds the files matched by --attach patterns.
type attachments struct {
	images []provider.Image
	texts  []string // Fenced file contents
	files  []string
}

// collectAttachments expands glob patterns (with ** support) and loads each
// match once. Images are base64 encoded; other files are inlined as text.
func collectAttachments(patterns []string) (attachments, error) {
	var att attachments
	seen := make(map[string]bool)

	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return att, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return att, fmt.Errorf("no files match %q", pattern)
		}
		slices.Sort(matches)

		for _, path := range matches {
			if seen[path] {
				continue
			}
			seen[path] = true

			data, err := os.ReadFile(path)
			if err != nil {
				return att, fmt.Errorf("reading attachment: %w", err)
			}
			att.files = append(att.files, path)

			if mediaType, ok := imageTypes[strings.ToLower(filepath.Ext(path))]; ok {
				att.images = append(att.images, provider.Image{
					MediaType: mediaType,
					Data:      base64.StdEncoding.EncodeToString(data),
				})
				continue
			}
			att.texts = append(att.texts, fmt.Sprintf("<file path=%q>\n%s\n</file>", path, data))
		}
	}
	return att, nil
}

// prompt prepends the text attachments to p.
func (a attachments) prompt(p string) string {
	if len(a.texts) == 0 {
		return p
	}
	return strings.Join(a.texts, "\n\n") + "\n\n" + p
}
