package workflow

import (
	"context"
	"fmt"

	"github.com/sakamo-wni/weathercomment/internal/domain"
	"github.com/sakamo-wni/weathercomment/internal/validator"
)

// EvaluateCandidateNode runs the Validator Pipeline against the current
// candidate pair; it never calls the LLM (spec §4.2 EvaluateCandidate).
type EvaluateCandidateNode struct {
	Pipeline *validator.Pipeline
	Mode     validator.Mode
}

func (EvaluateCandidateNode) Name() NodeName { return NodeEvaluateCandidate }

func (n *EvaluateCandidateNode) Run(_ context.Context, st *domain.GenerationState) error {
	if st.Candidate == nil {
		return fmt.Errorf("evaluate_candidate: no candidate to validate")
	}
	if st.Location == nil || st.ForecastAtTarget == nil {
		return fmt.Errorf("evaluate_candidate: missing location or forecast")
	}

	result := n.Pipeline.Evaluate(n.Mode, *st.Candidate, *st.ForecastAtTarget, *st.Location, st.TargetDatetime)
	st.Validation = domain.Validation{OK: result.OK, Reasons: result.Reasons, Score: result.Score}
	return nil
}
