// Package markitdown converts office documents to markdown by shelling
// out to the markitdown command line tool. It handles every format the
// tool does, so it is the preferred converter when the tool is installed.
package markitdown

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/docsmith-labs/docsort-cli/internal/core/ports/driven"
)

// Ensure Converter implements the interface.
var _ driven.Converter = (*Converter)(nil)

// DefaultCommand is the converter binary looked up on PATH.
const DefaultCommand = "markitdown"

// Converter shells out to markitdown for document conversion.
type Converter struct {
	command string
}

// New creates a markitdown converter. An empty command uses the default.
func New(command string) *Converter {
	if command == "" {
		command = DefaultCommand
	}
	return &Converter{command: command}
}

// Name returns the converter name for logs and reports.
func (c *Converter) Name() string {
	return c.command
}

// Available reports whether the converter binary is on PATH.
func (c *Converter) Available() error {
	if _, err := exec.LookPath(c.command); err != nil {
		return fmt.Errorf("%s not found on PATH: %w", c.command, err)
	}
	return nil
}

// Convert runs the converter on path and returns its stdout. The caller
// bounds execution time through ctx.
func (c *Converter) Convert(ctx context.Context, path string) (string, error) {
	cmd := exec.CommandContext(ctx, c.command, path)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%s timed out: %w", c.command, ctx.Err())
		}
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return "", fmt.Errorf("%s failed: %s", c.command, firstLine(detail))
	}

	return stdout.String(), nil
}

// firstLine trims a multi-line tool error down to its first line so
// ledger detail fields stay readable.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
