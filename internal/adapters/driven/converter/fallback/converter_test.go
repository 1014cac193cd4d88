package fallback

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsmith-labs/docsort-cli/internal/logger"
)

type fakeConverter struct {
	name      string
	availErr  error
	probes    int
	converted int
}

func (f *fakeConverter) Name() string { return f.name }

func (f *fakeConverter) Available() error {
	f.probes++
	return f.availErr
}

func (f *fakeConverter) Convert(ctx context.Context, path string) (string, error) {
	f.converted++
	return "text from " + f.name, nil
}

func TestPrefersPrimaryWhenAvailable(t *testing.T) {
	primary := &fakeConverter{name: "external"}
	secondary := &fakeConverter{name: "builtin"}
	conv := New(primary, secondary)

	assert.Equal(t, "external", conv.Name())

	text, err := conv.Convert(context.Background(), "/docs/a.pdf")
	require.NoError(t, err)
	assert.Equal(t, "text from external", text)
	assert.Zero(t, secondary.converted)
}

func TestFallsBackWhenPrimaryUnavailable(t *testing.T) {
	primary := &fakeConverter{name: "external", availErr: errors.New("not on PATH")}
	secondary := &fakeConverter{name: "builtin"}
	conv := New(primary, secondary)

	assert.Equal(t, "builtin", conv.Name())
	require.NoError(t, conv.Available())

	text, err := conv.Convert(context.Background(), "/docs/a.pdf")
	require.NoError(t, err)
	assert.Equal(t, "text from builtin", text)
	assert.Zero(t, primary.converted)
}

func TestProbesPrimaryOnce(t *testing.T) {
	primary := &fakeConverter{name: "external"}
	conv := New(primary, &fakeConverter{name: "builtin"})

	for i := 0; i < 3; i++ {
		_, err := conv.Convert(context.Background(), "/docs/a.pdf")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, primary.probes)
}

func TestFallbackNoticeRespectsVerbosity(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.SetVerbose(true)
	t.Cleanup(func() {
		logger.SetVerbose(false)
		logger.SetOutput(os.Stderr)
	})

	primary := &fakeConverter{name: "external", availErr: errors.New("not on PATH")}
	conv := New(primary, &fakeConverter{name: "builtin"})
	conv.Name()

	assert.Contains(t, buf.String(), "external unavailable, using builtin")
}
