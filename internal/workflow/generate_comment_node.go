package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/sakamo-wni/weathercomment/internal/domain"
	"github.com/sakamo-wni/weathercomment/internal/llm"
	"github.com/sakamo-wni/weathercomment/internal/validator"
)

// GenerateCommentNode asks the LLM to phrase the validated pair to the
// output style constraints, then re-validates the emitted text and falls
// back to the pre-LLM candidate on failure (spec §4.2 GenerateComment).
type GenerateCommentNode struct {
	Adapter  *llm.Adapter
	Options  llm.Options
	Pipeline *validator.Pipeline
	Mode     validator.Mode
}

func (GenerateCommentNode) Name() NodeName { return NodeGenerateComment }

func (n *GenerateCommentNode) Run(ctx context.Context, st *domain.GenerationState) error {
	if st.Candidate == nil {
		return fmt.Errorf("generate_comment: no candidate to adapt")
	}

	preLLMWeather := st.Candidate.Weather.Text
	preLLMAdvice := st.Candidate.Advice.Text

	prompt := buildGenerationPrompt(st)
	reply, err := n.Adapter.Generate(ctx, prompt, n.Options)
	if err != nil {
		st.FinalWeather = preLLMWeather
		st.FinalAdvice = preLLMAdvice
		st.Metadata["fallback"] = "generation"
		return nil
	}

	parsed := llm.ParseSelectionReply(reply)
	weatherText := strings.TrimSpace(parsed.Weather)
	adviceText := strings.TrimSpace(parsed.Advice)
	if weatherText == "" || adviceText == "" {
		st.FinalWeather = preLLMWeather
		st.FinalAdvice = preLLMAdvice
		st.Metadata["fallback"] = "generation"
		return nil
	}

	emitted := domain.CommentPair{
		Weather: domain.PastComment{Text: weatherText, Type: domain.CommentWeather, Season: st.Candidate.Weather.Season},
		Advice:  domain.PastComment{Text: adviceText, Type: domain.CommentAdvice, Season: st.Candidate.Advice.Season},
	}

	if st.Location != nil && st.ForecastAtTarget != nil {
		result := n.Pipeline.Evaluate(n.Mode, emitted, *st.ForecastAtTarget, *st.Location, st.TargetDatetime)
		if !result.OK {
			st.FinalWeather = preLLMWeather
			st.FinalAdvice = preLLMAdvice
			st.Metadata["fallback"] = "generation_revalidation"
			return nil
		}
	}

	st.FinalWeather = weatherText
	st.FinalAdvice = adviceText
	return nil
}

func buildGenerationPrompt(st *domain.GenerationState) string {
	var b strings.Builder
	b.WriteString("Rephrase the selected weather/advice pair to fit a short forecast comment.\n")
	fmt.Fprintf(&b, "Each line must be %d characters or fewer after trimming. Do not use any banned or offensive vocabulary.\n\n", domain.MaxEmittedLineLen)

	if st.Candidate != nil {
		fmt.Fprintf(&b, "Selected weather phrase: %s\n", st.Candidate.Weather.Text)
		fmt.Fprintf(&b, "Selected advice phrase: %s\n", st.Candidate.Advice.Text)
	}
	if st.ForecastAtTarget != nil {
		f := st.ForecastAtTarget
		fmt.Fprintf(&b, "Forecast: condition=%s temp=%.1fC humidity=%.0f%%\n", f.Condition.Normalize(), f.TemperatureC, f.HumidityPct)
	}

	b.WriteString("\nRespond with exactly two lines:\nweather: <final weather line>\nadvice: <final advice line>\n")
	return b.String()
}
