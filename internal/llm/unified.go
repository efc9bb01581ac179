package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/itchyny/gojq"
)

// UnifiedReply is the single structured JSON object the unified
// select-and-generate path asks the LLM to return directly (spec's
// UnifiedSelectGenerate node), short-circuiting SelectPair +
// EvaluateCandidate + GenerateComment into one call.
type UnifiedReply struct {
	Weather    string  `json:"weather"`
	Advice     string  `json:"advice"`
	Confidence float64 `json:"confidence"`
}

var embeddedJSONObject = regexp.MustCompile(`(?s)\{.*\}`)

// ParseUnifiedReply first tries encoding/json directly (the LLM followed
// instructions and returned nothing but JSON); failing that, it falls
// back to github.com/itchyny/gojq to pull the three fields out of a JSON
// blob embedded in surrounding prose — a realistic LLM failure mode
// (SPEC_FULL.md §4.6). A result missing confidence, or one of weather and
// advice, is returned as is; an error is returned when no JSON object is
// found, the blob does not parse, or neither weather nor advice is present.
func ParseUnifiedReply(text string) (UnifiedReply, error) {
	text = strings.TrimSpace(text)

	var direct UnifiedReply
	if err := json.Unmarshal([]byte(text), &direct); err == nil {
		return direct, nil
	}

	blob := embeddedJSONObject.FindString(text)
	if blob == "" {
		return UnifiedReply{}, fmt.Errorf("llm: no JSON object found in unified reply")
	}

	var raw any
	if err := json.Unmarshal([]byte(blob), &raw); err != nil {
		return UnifiedReply{}, fmt.Errorf("llm: embedded JSON blob did not parse: %w", err)
	}

	out := UnifiedReply{}
	out.Weather = queryString(raw, ".weather")
	out.Advice = queryString(raw, ".advice")
	out.Confidence = queryFloat(raw, ".confidence")

	if out.Weather == "" && out.Advice == "" {
		return UnifiedReply{}, fmt.Errorf("llm: embedded JSON blob had neither weather nor advice field")
	}
	return out, nil
}

func queryString(input any, filter string) string {
	v, ok := runJQOne(input, filter)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func queryFloat(input any, filter string) float64 {
	v, ok := runJQOne(input, filter)
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

func runJQOne(input any, filter string) (any, bool) {
	query, err := gojq.Parse(filter)
	if err != nil {
		return nil, false
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, false
	}
	iter := code.Run(input)
	v, ok := iter.Next()
	if !ok {
		return nil, false
	}
	if _, isErr := v.(error); isErr {
		return nil, false
	}
	return v, true
}
