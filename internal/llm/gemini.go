package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sakamo-wni/weathercomment/internal/apperrors"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiBackend is the third OpenAIBackend sibling: Google's
// generateContent endpoint takes the API key as a query parameter and
// wraps content in "contents"/"parts", but the overall shape (build,
// marshal, POST, status-to-typed-error, extract text) matches its two
// siblings.
type GeminiBackend struct {
	apiKey           string
	baseURL          string
	defaultModel     string
	performanceModel string
	client           *http.Client
}

// NewGeminiBackend builds a backend. performanceModel is typically a
// "flash" variant, selected when Options.PerformanceMode is set.
func NewGeminiBackend(apiKey, defaultModel, performanceModel string) (*GeminiBackend, error) {
	if apiKey == "" {
		return nil, &apperrors.ConfigError{Msg: "GEMINI_API_KEY is required to construct the gemini backend"}
	}
	if defaultModel == "" {
		defaultModel = "gemini-1.5-pro"
	}
	if performanceModel == "" {
		performanceModel = "gemini-1.5-flash"
	}
	return &GeminiBackend{
		apiKey:           apiKey,
		baseURL:          defaultGeminiBaseURL,
		defaultModel:     defaultModel,
		performanceModel: performanceModel,
		client:           &http.Client{Timeout: 120 * time.Second},
	}, nil
}

func (b *GeminiBackend) Provider() Provider { return ProviderGemini }

func (b *GeminiBackend) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	model := opts.Model
	if model == "" {
		model = b.defaultModel
		if opts.PerformanceMode {
			model = b.performanceModel
		}
	}

	body := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]any{{"text": prompt}}},
		},
		"generationConfig": map[string]any{
			"temperature":     opts.Temperature,
			"maxOutputTokens": opts.MaxTokens,
		},
	}
	jsonData, err := json.Marshal(body)
	if err != nil {
		return "", &apperrors.LLMError{Provider: string(ProviderGemini), Kind: apperrors.LLMInvalidResponse, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(opts.TimeoutSeconds)*time.Second)
	defer cancel()

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", b.baseURL, model, url.QueryEscape(b.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("llm/gemini: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return "", &apperrors.LLMError{Provider: string(ProviderGemini), Kind: apperrors.LLMTimeout, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &apperrors.LLMError{Provider: string(ProviderGemini), Kind: apperrors.LLMInvalidResponse, Err: err}
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", &apperrors.RateLimitError{Provider: string(ProviderGemini), RetryAfterSec: parseRetryAfter(resp.Header.Get("Retry-After"))}
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", &apperrors.LLMError{Provider: string(ProviderGemini), Kind: apperrors.LLMAuth, Err: fmt.Errorf("status %d: %s", resp.StatusCode, respBody)}
	}
	if resp.StatusCode >= 500 {
		return "", &apperrors.LLMError{Provider: string(ProviderGemini), Kind: apperrors.LLMTimeout, Err: fmt.Errorf("status %d: %s", resp.StatusCode, respBody)}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &apperrors.LLMError{Provider: string(ProviderGemini), Kind: apperrors.LLMInvalidResponse, Err: fmt.Errorf("status %d: %s", resp.StatusCode, respBody)}
	}

	var apiResp geminiGenerateContentResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", &apperrors.LLMError{Provider: string(ProviderGemini), Kind: apperrors.LLMInvalidResponse, Err: err}
	}
	if len(apiResp.Candidates) == 0 || len(apiResp.Candidates[0].Content.Parts) == 0 {
		return "", &apperrors.LLMError{Provider: string(ProviderGemini), Kind: apperrors.LLMInvalidResponse, Err: fmt.Errorf("no candidates in response")}
	}
	return apiResp.Candidates[0].Content.Parts[0].Text, nil
}

type geminiGenerateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}
