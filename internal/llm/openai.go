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

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIBackend calls the Chat Completions endpoint directly over HTTP,
// grounded on the teacher's pkg/executor/builtin/llm_openai.go
// (OpenAIProvider.Execute): request body builder, response struct shape
// and error-to-typed-error mapping are kept, generalized from the
// teacher's multimodal/tool-calling request to the single-prompt shape
// this adapter needs.
type OpenAIBackend struct {
	apiKey          string
	baseURL         string
	defaultModel    string
	performanceModel string
	client          *http.Client
}

// NewOpenAIBackend builds a backend. performanceModel is used instead of
// defaultModel when Options.PerformanceMode is set (spec §4.6 "performance
// mode ... selects cheaper models per provider").
func NewOpenAIBackend(apiKey, defaultModel, performanceModel string) (*OpenAIBackend, error) {
	if apiKey == "" {
		return nil, &apperrors.ConfigError{Msg: "OPENAI_API_KEY is required to construct the openai backend"}
	}
	if defaultModel == "" {
		defaultModel = "gpt-4o-mini"
	}
	if performanceModel == "" {
		performanceModel = "gpt-4o-mini"
	}
	return &OpenAIBackend{
		apiKey:           apiKey,
		baseURL:          defaultOpenAIBaseURL,
		defaultModel:     defaultModel,
		performanceModel: performanceModel,
		client:           &http.Client{Timeout: 120 * time.Second},
	}, nil
}

func (b *OpenAIBackend) Provider() Provider { return ProviderOpenAI }

func (b *OpenAIBackend) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	model := opts.Model
	if model == "" {
		model = b.defaultModel
		if opts.PerformanceMode {
			model = b.performanceModel
		}
	}

	body := map[string]any{
		"model": model,
		"messages": []map[string]any{
			{"role": "user", "content": prompt},
		},
		"max_tokens":  opts.MaxTokens,
		"temperature": opts.Temperature,
	}
	jsonData, err := json.Marshal(body)
	if err != nil {
		return "", &apperrors.LLMError{Provider: string(ProviderOpenAI), Kind: apperrors.LLMInvalidResponse, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(opts.TimeoutSeconds)*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("llm/openai: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.apiKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return "", &apperrors.LLMError{Provider: string(ProviderOpenAI), Kind: apperrors.LLMTimeout, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &apperrors.LLMError{Provider: string(ProviderOpenAI), Kind: apperrors.LLMInvalidResponse, Err: err}
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", &apperrors.RateLimitError{Provider: string(ProviderOpenAI), RetryAfterSec: parseRetryAfter(resp.Header.Get("Retry-After"))}
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", &apperrors.LLMError{Provider: string(ProviderOpenAI), Kind: apperrors.LLMAuth, Err: fmt.Errorf("status %d: %s", resp.StatusCode, respBody)}
	}
	if resp.StatusCode >= 500 {
		return "", &apperrors.LLMError{Provider: string(ProviderOpenAI), Kind: apperrors.LLMTimeout, Err: fmt.Errorf("status %d: %s", resp.StatusCode, respBody)}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &apperrors.LLMError{Provider: string(ProviderOpenAI), Kind: apperrors.LLMInvalidResponse, Err: fmt.Errorf("status %d: %s", resp.StatusCode, respBody)}
	}

	var apiResp openAIChatCompletionResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", &apperrors.LLMError{Provider: string(ProviderOpenAI), Kind: apperrors.LLMInvalidResponse, Err: err}
	}
	if len(apiResp.Choices) == 0 {
		return "", &apperrors.LLMError{Provider: string(ProviderOpenAI), Kind: apperrors.LLMInvalidResponse, Err: fmt.Errorf("no choices in response")}
	}
	return apiResp.Choices[0].Message.Content, nil
}

type openAIChatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}
