// Package validator implements the Validator Pipeline (spec §4.3, C3): a
// short-circuiting chain of rule checkers over a (comment pair, weather,
// location, time) tuple, with three evaluation modes trading strictness
// for leniency. Checkers are plain Go string matching over
// already-parsed values; no example repo in the pack reaches for a
// rules-engine library for this shape of check (see DESIGN.md).
package validator

import (
	"strings"
	"time"

	"github.com/sakamo-wni/weathercomment/internal/domain"
)

// Checker is implemented by each of the 7 rule checks.
type Checker interface {
	Name() string
	Check(pair domain.CommentPair, forecast domain.WeatherForecast, loc domain.Location, t time.Time) (ok bool, reason string)
}

// containsAny reports whether text contains any of needles,
// case-insensitively, returning the first match found.
func containsAny(text string, needles ...string) (string, bool) {
	lower := strings.ToLower(text)
	for _, n := range needles {
		if n == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(n)) {
			return n, true
		}
	}
	return "", false
}
