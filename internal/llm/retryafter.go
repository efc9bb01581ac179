package llm

import "strconv"

// parseRetryAfter reads a Retry-After header value (seconds form only,
// which is what all three providers send on 429). Falls back to a fixed
// advisory hint when absent or unparsable.
func parseRetryAfter(header string) int {
	if header == "" {
		return 20
	}
	n, err := strconv.Atoi(header)
	if err != nil || n < 0 {
		return 20
	}
	return n
}
