package llm_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakamo-wni/weathercomment/internal/apperrors"
	"github.com/sakamo-wni/weathercomment/internal/llm"
)

type fakeBackend struct {
	provider  llm.Provider
	calls     int
	responses []string
	errs      []error
}

func (f *fakeBackend) Provider() llm.Provider { return f.provider }

func (f *fakeBackend) Generate(_ context.Context, _ string, _ llm.Options) (string, error) {
	i := f.calls
	f.calls++
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	var resp string
	if i < len(f.responses) {
		resp = f.responses[i]
	}
	return resp, err
}

func TestAdapter_Generate_Success(t *testing.T) {
	backend := &fakeBackend{provider: llm.ProviderOpenAI, responses: []string{"sunny and warm"}}
	adapter := llm.NewAdapter(backend)

	reply, err := adapter.Generate(context.Background(), "describe the weather", llm.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "sunny and warm", reply)
	assert.Equal(t, 1, backend.calls)
}

func TestAdapter_Generate_RetriesTransientThenSucceeds(t *testing.T) {
	backend := &fakeBackend{
		provider:  llm.ProviderOpenAI,
		errs:      []error{&apperrors.LLMError{Provider: "openai", Kind: apperrors.LLMTimeout}},
		responses: []string{"", "recovered"},
	}
	adapter := llm.NewAdapter(backend)

	reply, err := adapter.Generate(context.Background(), "prompt", llm.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "recovered", reply)
	assert.Equal(t, 2, backend.calls)
}

func TestAdapter_Generate_AuthErrorFailsImmediately(t *testing.T) {
	backend := &fakeBackend{
		provider: llm.ProviderOpenAI,
		errs:     []error{&apperrors.LLMError{Provider: "openai", Kind: apperrors.LLMAuth}},
	}
	adapter := llm.NewAdapter(backend)

	_, err := adapter.Generate(context.Background(), "prompt", llm.DefaultOptions())
	require.Error(t, err)
	assert.Equal(t, 1, backend.calls)
}

func TestAdapter_Generate_RateLimitNotRetried(t *testing.T) {
	backend := &fakeBackend{
		provider: llm.ProviderOpenAI,
		errs:     []error{&apperrors.RateLimitError{Provider: "openai", RetryAfterSec: 5}},
	}
	adapter := llm.NewAdapter(backend)

	_, err := adapter.Generate(context.Background(), "prompt", llm.DefaultOptions())
	require.Error(t, err)
	var rl *apperrors.RateLimitError
	assert.ErrorAs(t, err, &rl)
	assert.Equal(t, 1, backend.calls)
}

func TestParseSelectionReply_PicksLastMatch(t *testing.T) {
	text := "Here is an example:\nweather: example only\nadvice: ignore this\n\nFinal answer:\nweather: Clear skies today\nadvice: Wear sunscreen"
	got := llm.ParseSelectionReply(text)
	assert.Equal(t, "Clear skies today", got.Weather)
	assert.Equal(t, "Wear sunscreen", got.Advice)
}

func TestParseSelectionReply_ToleratesProse(t *testing.T) {
	text := "I think the best description would be...\nweather:   Partly cloudy  \nadvice: Bring a light jacket\nThanks!"
	got := llm.ParseSelectionReply(text)
	assert.Equal(t, "Partly cloudy", got.Weather)
	assert.Equal(t, "Bring a light jacket", got.Advice)
}

func TestParseUnifiedReply_DirectJSON(t *testing.T) {
	got, err := llm.ParseUnifiedReply(`{"weather":"Sunny","advice":"Stay hydrated","confidence":0.92}`)
	require.NoError(t, err)
	assert.Equal(t, "Sunny", got.Weather)
	assert.Equal(t, "Stay hydrated", got.Advice)
	assert.InDelta(t, 0.92, got.Confidence, 0.001)
}

func TestParseUnifiedReply_EmbeddedInProse(t *testing.T) {
	text := "Sure, here's the result:\n```json\n{\"weather\": \"Rainy\", \"advice\": \"Carry an umbrella\", \"confidence\": 0.8}\n```\nLet me know if you need anything else."
	got, err := llm.ParseUnifiedReply(text)
	require.NoError(t, err)
	assert.Equal(t, "Rainy", got.Weather)
	assert.Equal(t, "Carry an umbrella", got.Advice)
	assert.InDelta(t, 0.8, got.Confidence, 0.001)
}

func TestParseUnifiedReply_NoJSONReturnsError(t *testing.T) {
	_, err := llm.ParseUnifiedReply("I'm not sure how to answer that.")
	require.Error(t, err)
}
