// Package native is the built-in document converter used when no
// external converter tool is installed. It extracts text from DOCX
// archives, strips HTML down to readable text, and passes textual
// formats through unchanged. Binary formats it cannot open, such as PDF
// and legacy XLS, are rejected as unsupported.
package native

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/docsmith-labs/docsort-cli/internal/core/domain"
	"github.com/docsmith-labs/docsort-cli/internal/core/ports/driven"
)

// Ensure Converter implements the interface.
var _ driven.Converter = (*Converter)(nil)

// Converter extracts text using only the Go standard library.
type Converter struct{}

// New creates a native converter.
func New() *Converter {
	return &Converter{}
}

// Name returns the converter name for logs and reports.
func (c *Converter) Name() string {
	return "native"
}

// Available always succeeds: the native converter has no external
// dependencies.
func (c *Converter) Available() error {
	return nil
}

// Convert extracts text from path based on its extension.
func (c *Converter) Convert(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".docx":
		return extractDocx(path)
	case ".html", ".htm":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading file: %w", err)
		}
		return stripHTML(string(data)), nil
	case ".csv", ".json", ".xml", ".txt", ".md":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading file: %w", err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("%w: no native extractor for %s", domain.ErrUnsupportedType, filepath.Ext(path))
	}
}
