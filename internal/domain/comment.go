package domain

import (
	"fmt"
	"strings"
)

// CommentType distinguishes weather-description phrases from advice phrases.
type CommentType string

const (
	CommentWeather CommentType = "weather"
	CommentAdvice  CommentType = "advice"
)

// MaxCommentLen is the corpus row length cap from spec §3 ("1 <= len(text) <= 200").
const MaxCommentLen = 200

// MaxEmittedLineLen is the final output line length cap from spec §4.3 checker 7.
const MaxEmittedLineLen = 15

// PastComment is one row of the historical corpus.
type PastComment struct {
	Text   string
	Type   CommentType
	Season Season
	Count  int
}

// NewPastComment trims and validates a raw corpus row, applying the spec §3
// rules: empty rows are dropped (ok=false), oversized text is truncated with
// a warning rather than rejected.
func NewPastComment(rawText string, typ CommentType, season Season, count int) (pc PastComment, truncated bool, ok bool) {
	text := strings.TrimSpace(rawText)
	if text == "" {
		return PastComment{}, false, false
	}
	if count < 0 {
		return PastComment{}, false, false
	}
	if len(text) > MaxCommentLen {
		text = text[:MaxCommentLen]
		truncated = true
	}
	return PastComment{Text: text, Type: typ, Season: season, Count: count}, truncated, true
}

// CommentPair is a validated (weather, advice) pair drawn from the corpus
// and possibly adapted by the LLM.
type CommentPair struct {
	Weather          PastComment
	Advice           PastComment
	SimilarityScore  float64
	AdaptationScore  float64
}

// Validate enforces the CommentPair invariant: same season, differing type.
func (p CommentPair) Validate() error {
	if p.Weather.Season != p.Advice.Season {
		return fmt.Errorf("domain: comment pair season mismatch: %s != %s", p.Weather.Season, p.Advice.Season)
	}
	if p.Weather.Type == p.Advice.Type {
		return fmt.Errorf("domain: comment pair must differ in type")
	}
	return nil
}
