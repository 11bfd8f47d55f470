// Package extract converts binary document formats into plain text.
//
// The extractor dispatches on file extension. Supported formats: PDF,
// DOCX, and plain text (.txt, .md). Anything else is reported with
// ErrUnsupported so a mixed corpus directory can skip past it.
package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupported indicates the file extension has no registered extractor.
var ErrUnsupported = errors.New("unsupported document format")

// extractors maps lowercased extensions to extraction functions.
var extractors = map[string]func(path string) (string, error){
	".pdf":  pdfText,
	".docx": docxText,
	".txt":  plainText,
	".md":   plainText,
}

// Supported reports whether path has an extension the extractor handles.
func Supported(path string) bool {
	_, ok := extractors[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Text extracts the full text of the document at path as a single stream.
// Returns ErrUnsupported for unknown extensions; other errors indicate an
// unreadable or malformed document.
func Text(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	fn, ok := extractors[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}

	text, err := fn(path)
	if err != nil {
		return "", fmt.Errorf("extracting %s: %w", filepath.Base(path), err)
	}
	return text, nil
}

func plainText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
