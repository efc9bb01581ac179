package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/sakamo-wni/weathercomment/internal/domain"
	"github.com/sakamo-wni/weathercomment/internal/llm"
)

// UnifiedSelectGenerateNode issues one compound LLM call carrying
// selection criteria, adaptation criteria and validation-aware
// instructions, replacing SelectPair + EvaluateCandidate + GenerateComment
// on the fast path (spec §4.2 UnifiedSelectGenerate).
type UnifiedSelectGenerateNode struct {
	Adapter *llm.Adapter
	Options llm.Options
}

func (UnifiedSelectGenerateNode) Name() NodeName { return NodeUnifiedSelectGenerate }

func (n *UnifiedSelectGenerateNode) Run(ctx context.Context, st *domain.GenerationState) error {
	if len(st.CorpusWeather) == 0 || len(st.CorpusAdvice) == 0 {
		return fmt.Errorf("unified_select_generate: corpus lists are empty for the resolved season")
	}

	prompt := buildUnifiedPrompt(st)
	reply, err := n.Adapter.Generate(ctx, prompt, n.Options)
	if err != nil {
		return err
	}

	parsed, err := llm.ParseUnifiedReply(reply)
	if err != nil {
		return err
	}

	selectedWeather, wOK := findByText(st.CorpusWeather, parsed.Weather)
	selectedAdvice, aOK := findByText(st.CorpusAdvice, parsed.Advice)
	if !wOK {
		selectedWeather = st.CorpusWeather[0]
		st.Metadata["fallback"] = "unified_selection"
	}
	if !aOK {
		selectedAdvice = st.CorpusAdvice[0]
		st.Metadata["fallback"] = "unified_selection"
	}

	st.Candidate = &domain.CommentPair{
		Weather:         selectedWeather,
		Advice:          selectedAdvice,
		AdaptationScore: parsed.Confidence,
	}
	st.Validation = domain.Validation{OK: true, Score: parsed.Confidence}

	finalWeather := strings.TrimSpace(parsed.Weather)
	finalAdvice := strings.TrimSpace(parsed.Advice)
	if finalWeather == "" {
		finalWeather = selectedWeather.Text
	}
	if finalAdvice == "" {
		finalAdvice = selectedAdvice.Text
	}
	st.FinalWeather = finalWeather
	st.FinalAdvice = finalAdvice
	return nil
}

func buildUnifiedPrompt(st *domain.GenerationState) string {
	var b strings.Builder
	b.WriteString("Select and adapt a weather/advice pair in a single response.\n")
	b.WriteString("Selection priority when conditions compete: thunder > snow > rain > heat-stroke (temp >= 35C) > others.\n")
	fmt.Fprintf(&b, "Each emitted line must be %d characters or fewer after trimming and must avoid any banned vocabulary.\n\n", domain.MaxEmittedLineLen)

	if st.ForecastAtTarget != nil {
		f := st.ForecastAtTarget
		fmt.Fprintf(&b, "Forecast at target time: condition=%s temp=%.1fC humidity=%.0f%% precipitation=%.1fmm\n\n",
			f.Condition.Normalize(), f.TemperatureC, f.HumidityPct, f.PrecipitationMM)
	}

	b.WriteString("Weather phrases:\n")
	for _, c := range st.CorpusWeather {
		fmt.Fprintf(&b, "- %s\n", c.Text)
	}
	b.WriteString("\nAdvice phrases:\n")
	for _, c := range st.CorpusAdvice {
		fmt.Fprintf(&b, "- %s\n", c.Text)
	}

	b.WriteString("\nRespond with a single JSON object: {\"weather\": \"...\", \"advice\": \"...\", \"confidence\": 0.0}\n")
	return b.String()
}
