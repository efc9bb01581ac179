package workflow

import (
	"context"

	"github.com/sakamo-wni/weathercomment/internal/domain"
)

// OutputBuildNode serializes the final state into the result shape (spec
// §4.2 OutputBuild, §6). It runs even on a partial/failed pipeline so the
// caller always gets a populated ExecutedNodes/Errors snapshot.
type OutputBuildNode struct{}

func (OutputBuildNode) Name() NodeName { return NodeOutputBuild }

func (OutputBuildNode) Run(_ context.Context, st *domain.GenerationState) error {
	if st.FinalWeather == "" && st.Candidate != nil {
		st.FinalWeather = st.Candidate.Weather.Text
	}
	if st.FinalAdvice == "" && st.Candidate != nil {
		st.FinalAdvice = st.Candidate.Advice.Text
	}
	st.Success = len(st.Errors) == 0 && st.FinalWeather != "" && st.FinalAdvice != ""
	return nil
}
