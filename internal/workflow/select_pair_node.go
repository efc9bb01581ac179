package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/sakamo-wni/weathercomment/internal/domain"
	"github.com/sakamo-wni/weathercomment/internal/llm"
)

// SelectPairNode asks the LLM to pick one weather phrase and one advice
// phrase from the retrieved corpus lists, honoring the condition priority
// order thunder > snow > rain > heat-stroke@temp>=35C > others (spec §4.2
// SelectPair).
type SelectPairNode struct {
	Adapter *llm.Adapter
	Options llm.Options
}

func (SelectPairNode) Name() NodeName { return NodeSelectPair }

func (n *SelectPairNode) Run(ctx context.Context, st *domain.GenerationState) error {
	if len(st.CorpusWeather) == 0 || len(st.CorpusAdvice) == 0 {
		return fmt.Errorf("select_pair: corpus lists are empty for the resolved season")
	}

	prompt := buildSelectionPrompt(st)
	reply, err := n.Adapter.Generate(ctx, prompt, n.Options)
	if err != nil {
		weather := st.CorpusWeather[0]
		advice := st.CorpusAdvice[0]
		st.Candidate = &domain.CommentPair{Weather: weather, Advice: advice}
		st.Metadata["fallback"] = "selection"
		return nil
	}

	parsed := llm.ParseSelectionReply(reply)
	weather, wOK := findByText(st.CorpusWeather, parsed.Weather)
	advice, aOK := findByText(st.CorpusAdvice, parsed.Advice)
	if !wOK || !aOK {
		weather = st.CorpusWeather[0]
		advice = st.CorpusAdvice[0]
		st.Metadata["fallback"] = "selection"
	}

	st.Candidate = &domain.CommentPair{Weather: weather, Advice: advice}
	return nil
}

func findByText(comments []domain.PastComment, text string) (domain.PastComment, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.PastComment{}, false
	}
	for _, c := range comments {
		if strings.EqualFold(c.Text, text) {
			return c, true
		}
	}
	return domain.PastComment{}, false
}

// buildSelectionPrompt presents the candidate lists, forecast summary and
// selection priority rules, grounded on spec §4.2's description of the
// node's instructions to the model.
func buildSelectionPrompt(st *domain.GenerationState) string {
	var b strings.Builder
	b.WriteString("Select one weather phrase and one advice phrase from the lists below.\n")
	b.WriteString("Priority when conditions compete: thunder > snow > rain > heat-stroke (temp >= 35C) > others.\n\n")

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

	b.WriteString("\nRespond with exactly two lines:\nweather: <chosen weather phrase>\nadvice: <chosen advice phrase>\n")
	return b.String()
}
