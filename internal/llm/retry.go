package llm

import (
	"context"
	"errors"

	"github.com/sakamo-wni/weathercomment/internal/apperrors"
	"github.com/sakamo-wni/weathercomment/internal/retry"
)

// generateWithRetry drives backend.Generate through the shared backoff
// policy (internal/retry), reused verbatim from the Forecast Service
// adapter per SPEC_FULL.md §4.6 — a DRY generalization of the backoff
// logic the teacher otherwise inlines per call site.
func generateWithRetry(ctx context.Context, backend Backend, prompt string, opts Options) (string, error) {
	policy := retry.DefaultPolicy()
	var reply string
	err := retry.Do(ctx, policy, classifyRetryable, func(ctx context.Context, attempt int) error {
		r, err := backend.Generate(ctx, prompt, opts)
		if err != nil {
			return err
		}
		reply = r
		return nil
	})
	if err != nil {
		return "", err
	}
	return reply, nil
}

// classifyRetryable implements spec §4.6's retry rule: transport errors
// and 5xx/timeout/unknown failures retry; 4xx (invalid_response/auth) and
// quota errors do not (a RateLimitError is surfaced immediately with its
// advisory sleep hint rather than silently retried by this helper).
func classifyRetryable(err error) bool {
	var llmErr *apperrors.LLMError
	if errors.As(err, &llmErr) {
		switch llmErr.Kind {
		case apperrors.LLMTimeout, apperrors.LLMRateLimit:
			return true
		default:
			return false
		}
	}
	var rateLimit *apperrors.RateLimitError
	if errors.As(err, &rateLimit) {
		return false
	}
	// Unclassified (transport/network) errors are treated as retryable.
	return true
}
