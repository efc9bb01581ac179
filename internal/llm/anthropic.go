package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sakamo-wni/weathercomment/internal/apperrors"
)

const defaultAnthropicBaseURL = "https://api.anthropic.com/v1"

// AnthropicBackend is the OpenAIBackend's sibling for the Messages API:
// same shape (build request, marshal, POST, map status to typed error,
// extract one text string), different auth header
// (x-api-key/anthropic-version) and response envelope (a "content" block
// array rather than "choices").
type AnthropicBackend struct {
	apiKey           string
	baseURL          string
	defaultModel     string
	performanceModel string
	client           *http.Client
}

// NewAnthropicBackend builds a backend. performanceModel is typically a
// "haiku" variant, selected when Options.PerformanceMode is set.
func NewAnthropicBackend(apiKey, defaultModel, performanceModel string) (*AnthropicBackend, error) {
	if apiKey == "" {
		return nil, &apperrors.ConfigError{Msg: "ANTHROPIC_API_KEY is required to construct the anthropic backend"}
	}
	if defaultModel == "" {
		defaultModel = "claude-3-5-sonnet-latest"
	}
	if performanceModel == "" {
		performanceModel = "claude-3-5-haiku-latest"
	}
	return &AnthropicBackend{
		apiKey:           apiKey,
		baseURL:          defaultAnthropicBaseURL,
		defaultModel:     defaultModel,
		performanceModel: performanceModel,
		client:           &http.Client{Timeout: 120 * time.Second},
	}, nil
}

func (b *AnthropicBackend) Provider() Provider { return ProviderAnthropic }

func (b *AnthropicBackend) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	model := opts.Model
	if model == "" {
		model = b.defaultModel
		if opts.PerformanceMode {
			model = b.performanceModel
		}
	}

	body := map[string]any{
		"model":      model,
		"max_tokens": opts.MaxTokens,
		"temperature": opts.Temperature,
		"messages": []map[string]any{
			{"role": "user", "content": prompt},
		},
	}
	jsonData, err := json.Marshal(body)
	if err != nil {
		return "", &apperrors.LLMError{Provider: string(ProviderAnthropic), Kind: apperrors.LLMInvalidResponse, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(opts.TimeoutSeconds)*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/messages", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("llm/anthropic: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", b.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := b.client.Do(req)
	if err != nil {
		return "", &apperrors.LLMError{Provider: string(ProviderAnthropic), Kind: apperrors.LLMTimeout, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &apperrors.LLMError{Provider: string(ProviderAnthropic), Kind: apperrors.LLMInvalidResponse, Err: err}
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", &apperrors.RateLimitError{Provider: string(ProviderAnthropic), RetryAfterSec: parseRetryAfter(resp.Header.Get("Retry-After"))}
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", &apperrors.LLMError{Provider: string(ProviderAnthropic), Kind: apperrors.LLMAuth, Err: fmt.Errorf("status %d: %s", resp.StatusCode, respBody)}
	}
	if resp.StatusCode >= 500 {
		return "", &apperrors.LLMError{Provider: string(ProviderAnthropic), Kind: apperrors.LLMTimeout, Err: fmt.Errorf("status %d: %s", resp.StatusCode, respBody)}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &apperrors.LLMError{Provider: string(ProviderAnthropic), Kind: apperrors.LLMInvalidResponse, Err: fmt.Errorf("status %d: %s", resp.StatusCode, respBody)}
	}

	var apiResp anthropicMessageResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", &apperrors.LLMError{Provider: string(ProviderAnthropic), Kind: apperrors.LLMInvalidResponse, Err: err}
	}
	for _, block := range apiResp.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}
	return "", &apperrors.LLMError{Provider: string(ProviderAnthropic), Kind: apperrors.LLMInvalidResponse, Err: fmt.Errorf("no text content block in response")}
}

type anthropicMessageResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}
