package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsmith-labs/docsort-cli/internal/core/ports/driven"
)

func TestNewGenerator_Defaults(t *testing.T) {
	g := NewGenerator(Config{})
	assert.Equal(t, DefaultModel, g.ModelName())
	assert.NoError(t, g.Close())
}

func TestGenerator_Generate(t *testing.T) {
	var gotReq chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		resp := map[string]any{
			"message": map[string]string{
				"role":    "assistant",
				"content": "## Synopsis\n\nA quarterly report.",
			},
			"done": true,
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	g := NewGenerator(Config{BaseURL: server.URL, Model: "llama3.2"})

	result, err := g.Generate(context.Background(), driven.GenerateRequest{
		System:      "You summarise documents.",
		Prompt:      "Summarise this.",
		Temperature: 0.3,
		MaxTokens:   500,
	})
	require.NoError(t, err)

	assert.Equal(t, "## Synopsis\n\nA quarterly report.", result.Primary)
	assert.Empty(t, result.Secondary)
	assert.Equal(t, result.Primary, result.Text())

	// Request shape: system then user, non-streaming, options populated.
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Equal(t, "You summarise documents.", gotReq.Messages[0].Content)
	assert.Equal(t, "user", gotReq.Messages[1].Role)
	assert.False(t, gotReq.Stream)
	require.NotNil(t, gotReq.Options)
	assert.Equal(t, 500, gotReq.Options.NumPredict)
	assert.InDelta(t, 0.3, gotReq.Options.Temperature, 0.001)
}

func TestGenerator_Generate_ThinkingModel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"message": map[string]string{
				"role":     "assistant",
				"content":  "",
				"thinking": "The document discusses quarterly finances.",
			},
			"done": true,
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	g := NewGenerator(Config{BaseURL: server.URL})

	result, err := g.Generate(context.Background(), driven.GenerateRequest{Prompt: "Summarise."})
	require.NoError(t, err)

	// With an empty content channel the thinking channel carries the
	// usable text.
	assert.Empty(t, result.Primary)
	assert.Equal(t, "The document discusses quarterly finances.", result.Secondary)
	assert.Equal(t, result.Secondary, result.Text())
}

func TestGenerator_Generate_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	g := NewGenerator(Config{BaseURL: server.URL})

	_, err := g.Generate(context.Background(), driven.GenerateRequest{Prompt: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
	assert.Contains(t, err.Error(), "model not loaded")
}

func TestGenerator_Ping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tags", r.URL.Path)
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{"models": []any{}}))
	}))
	defer server.Close()

	g := NewGenerator(Config{BaseURL: server.URL})
	assert.NoError(t, g.Ping(context.Background()))
}

func TestGenerator_Ping_Unreachable(t *testing.T) {
	g := NewGenerator(Config{BaseURL: "http://127.0.0.1:1", Timeout: time.Second})
	assert.Error(t, g.Ping(context.Background()))
}

func TestGenerator_HasModel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"models": []map[string]string{
				{"name": "llama3.2:latest"},
				{"name": "qwen3:8b"},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	g := NewGenerator(Config{BaseURL: server.URL})
	ctx := context.Background()

	tests := []struct {
		model string
		want  bool
	}{
		{model: "llama3.2", want: true},
		{model: "llama3.2:latest", want: true},
		{model: "qwen3:8b", want: true},
		{model: "mistral", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			got, err := g.HasModel(ctx, tt.model)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRateLimitedGenerator_Throttles(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"content": "ok"},
			"done":    true,
		}))
	}))
	defer server.Close()

	// 60 requests per minute is one per second: the second call must wait.
	g := NewRateLimitedGenerator(NewGenerator(Config{BaseURL: server.URL}), 60)
	ctx := context.Background()

	start := time.Now()
	_, err := g.Generate(ctx, driven.GenerateRequest{Prompt: "one"})
	require.NoError(t, err)
	_, err = g.Generate(ctx, driven.GenerateRequest{Prompt: "two"})
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	assert.GreaterOrEqual(t, time.Since(start), 900*time.Millisecond)
}

func TestRateLimitedGenerator_Unlimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"content": "ok"},
			"done":    true,
		}))
	}))
	defer server.Close()

	g := NewRateLimitedGenerator(NewGenerator(Config{BaseURL: server.URL, Model: "llama3.2"}), 0)
	assert.Equal(t, "llama3.2", g.ModelName())

	start := time.Now()
	for i := 0; i < 5; i++ {
		_, err := g.Generate(context.Background(), driven.GenerateRequest{Prompt: "x"})
		require.NoError(t, err)
	}
	assert.Less(t, time.Since(start), time.Second)
}

func TestRateLimitedGenerator_CancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	g := NewRateLimitedGenerator(NewGenerator(Config{BaseURL: server.URL}), 1)
	ctx := context.Background()

	// Drain the single token, then cancel while waiting for the next.
	_, _ = g.Generate(ctx, driven.GenerateRequest{Prompt: "x"})

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err := g.Generate(cancelled, driven.GenerateRequest{Prompt: "y"})
	assert.ErrorIs(t, err, context.Canceled)
}
