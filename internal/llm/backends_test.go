package llm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakamo-wni/weathercomment/internal/apperrors"
	"github.com/sakamo-wni/weathercomment/internal/llm"
)

// TestOpenAIBackend_Generate_ParsesChoices exercises OpenAIBackend.Generate against a local
// httptest.Server by round-tripping a real *http.Client, reflecting the
// teacher's own httptest-based executor tests.
func TestOpenAIBackend_Generate_ParsesChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "Clear and mild"}},
			},
		})
	}))
	defer srv.Close()

	backend, err := llm.NewOpenAIBackend("test-key", "gpt-4o-mini", "gpt-4o-mini")
	require.NoError(t, err)
	llm.SetOpenAIBaseURLForTest(backend, srv.URL)

	reply, err := backend.Generate(context.Background(), "describe today", llm.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "Clear and mild", reply)
}

func TestOpenAIBackend_Generate_RateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "12")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	backend, err := llm.NewOpenAIBackend("test-key", "", "")
	require.NoError(t, err)
	llm.SetOpenAIBaseURLForTest(backend, srv.URL)

	_, err = backend.Generate(context.Background(), "prompt", llm.DefaultOptions())
	require.Error(t, err)
	var rl *apperrors.RateLimitError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, 12, rl.RetryAfterSec)
}

func TestAnthropicBackend_Generate_ParsesContentBlocks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{
				{"type": "text", "text": "Warm with light rain"},
			},
		})
	}))
	defer srv.Close()

	backend, err := llm.NewAnthropicBackend("test-key", "", "")
	require.NoError(t, err)
	llm.SetAnthropicBaseURLForTest(backend, srv.URL)

	reply, err := backend.Generate(context.Background(), "prompt", llm.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "Warm with light rain", reply)
}

func TestGeminiBackend_Generate_ParsesCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": "Cool breeze expected"}}}},
			},
		})
	}))
	defer srv.Close()

	backend, err := llm.NewGeminiBackend("test-key", "", "")
	require.NoError(t, err)
	llm.SetGeminiBaseURLForTest(backend, srv.URL)

	reply, err := backend.Generate(context.Background(), "prompt", llm.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "Cool breeze expected", reply)
}
