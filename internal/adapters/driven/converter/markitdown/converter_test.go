package markitdown

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeStub installs a fake converter script on PATH and returns its name.
func writeStub(t *testing.T, script string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "markitdown")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
	return "markitdown"
}

func TestConverter_Name(t *testing.T) {
	assert.Equal(t, "markitdown", New("").Name())
	assert.Equal(t, "pandoc", New("pandoc").Name())
}

func TestConverter_Available(t *testing.T) {
	cmd := writeStub(t, "exit 0")
	assert.NoError(t, New(cmd).Available())

	assert.Error(t, New("definitely-not-installed-tool").Available())
}

func TestConverter_Convert(t *testing.T) {
	cmd := writeStub(t, `echo "# Converted"; echo "from $1"`)

	text, err := New(cmd).Convert(context.Background(), "/docs/report.pdf")
	require.NoError(t, err)
	assert.Equal(t, "# Converted\nfrom /docs/report.pdf\n", text)
}

func TestConverter_ConvertFailure(t *testing.T) {
	cmd := writeStub(t, `echo "cannot open file" >&2; exit 1`)

	_, err := New(cmd).Convert(context.Background(), "/docs/report.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot open file")
}

func TestConverter_ConvertTimeout(t *testing.T) {
	cmd := writeStub(t, "sleep 10")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := New(cmd).Convert(ctx, "/docs/report.pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
