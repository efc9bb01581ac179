// Package llm implements the provider-agnostic LLM adapter (spec §4.6,
// C6). The HTTP request/response plumbing is grounded directly on the
// teacher's pkg/executor/builtin/llm_openai.go (body builder, response
// struct, error mapping to a typed error); the Anthropic and Gemini
// backends are new siblings written in the same shape against their own
// endpoint/auth/body conventions.
package llm

import (
	"context"
	"strings"
)

// Provider is one of the three supported back-ends.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"
)

// Options configures a single generate call. Zero values mean "use the
// adapter's configured default".
type Options struct {
	Model           string
	Temperature     float64
	MaxTokens       int
	TimeoutSeconds  int
	PerformanceMode bool
}

// DefaultOptions matches spec §4.6's stated defaults.
func DefaultOptions() Options {
	return Options{Temperature: 0.7, MaxTokens: 1000, TimeoutSeconds: 30}
}

// clamp mirrors config's clamping so a caller-supplied Options also
// respects the documented bounds even outside of config.Load.
func (o Options) clamp() Options {
	if o.Temperature < 0 {
		o.Temperature = 0
	} else if o.Temperature > 2 {
		o.Temperature = 2
	}
	if o.MaxTokens < 100 {
		o.MaxTokens = 100
	} else if o.MaxTokens > 4000 {
		o.MaxTokens = 4000
	}
	if o.TimeoutSeconds <= 0 {
		o.TimeoutSeconds = 30
	}
	return o
}

// Backend is the interface each concrete provider HTTP client implements.
// Adapter wraps a Backend with retry/backoff, leaving the backend itself
// a thin, directly-testable HTTP mapper (mirrors the teacher's
// OpenAIProvider.Execute shape).
type Backend interface {
	Provider() Provider
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
}

// Adapter is the uniform generate(prompt, options) -> reply contract from
// spec §4.6, wrapping a Backend with the shared retry policy.
type Adapter struct {
	backend Backend
}

// NewAdapter wraps backend with the shared retry/backoff policy.
func NewAdapter(backend Backend) *Adapter {
	return &Adapter{backend: backend}
}

// Provider reports which backend this adapter wraps.
func (a *Adapter) Provider() Provider { return a.backend.Provider() }

// Generate runs the backend call under the shared retry policy
// (classifyRetryable), returning a reply string or a typed error
// (*apperrors.LLMError or *apperrors.RateLimitError).
func (a *Adapter) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	opts = opts.clamp()
	return generateWithRetry(ctx, a.backend, prompt, opts)
}

// SelectionReply is the parsed result of a "weather:"/"advice:" labeled
// response, tolerant of surrounding prose and picking the last matching
// pair of labels (spec §4.6 Parsing).
type SelectionReply struct {
	Weather string
	Advice  string
}

// ParseSelectionReply scans text line-by-line for "weather:" and
// "advice:" prefixed lines (case-insensitive), keeping the last value
// seen for each label so trailing restated answers win over any example
// text earlier in the prose.
func ParseSelectionReply(text string) SelectionReply {
	var out SelectionReply
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		lower := strings.ToLower(line)
		switch {
		case strings.HasPrefix(lower, "weather:"):
			out.Weather = strings.TrimSpace(line[len("weather:"):])
		case strings.HasPrefix(lower, "advice:"):
			out.Advice = strings.TrimSpace(line[len("advice:"):])
		}
	}
	return out
}
