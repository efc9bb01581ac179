package workflow_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakamo-wni/weathercomment/internal/config"
	"github.com/sakamo-wni/weathercomment/internal/domain"
	"github.com/sakamo-wni/weathercomment/internal/validator"
	"github.com/sakamo-wni/weathercomment/internal/workflow"
)

func testThresholds() config.Thresholds {
	return config.Thresholds{
		HeatStrokeAdvisoryC: 34, HeatStrokeRequiredC: 35,
		HighTempForbidColdC: 30, LowTempForbidHotC: 12,
		ExtremeBandLowC: 10, ExtremeBandHighC: 30,
		HighHumidityPct: 80, LowHumidityPct: 30,
	}
}

func TestEvaluateCandidateNode_PassingCandidate(t *testing.T) {
	node := &workflow.EvaluateCandidateNode{Pipeline: validator.NewPipeline(testThresholds()), Mode: validator.ModeStrict}
	loc := domain.Location{ID: "tokyo", Name: "Tokyo", Prefecture: "Tokyo"}
	target := time.Date(2026, 7, 15, 9, 0, 0, 0, time.UTC)
	forecast := domain.WeatherForecast{LocationID: "tokyo", DatetimeUTC: target, Condition: domain.ConditionClear, TemperatureC: 20, HumidityPct: 50}

	st := domain.NewGenerationState("Tokyo", target, "")
	st.Location = &loc
	st.ForecastAtTarget = &forecast
	st.Candidate = &domain.CommentPair{
		Weather: domain.PastComment{Text: "clear skies", Type: domain.CommentWeather},
		Advice:  domain.PastComment{Text: "enjoy the day", Type: domain.CommentAdvice},
	}

	err := node.Run(context.Background(), st)

	require.NoError(t, err)
	assert.True(t, st.Validation.OK)
}

func TestEvaluateCandidateNode_FailingCandidate(t *testing.T) {
	node := &workflow.EvaluateCandidateNode{Pipeline: validator.NewPipeline(testThresholds()), Mode: validator.ModeStrict}
	loc := domain.Location{ID: "tokyo", Name: "Tokyo", Prefecture: "Tokyo"}
	target := time.Date(2026, 7, 15, 9, 0, 0, 0, time.UTC)
	forecast := domain.WeatherForecast{LocationID: "tokyo", DatetimeUTC: target, Condition: domain.ConditionClear, TemperatureC: 20, HumidityPct: 50}

	st := domain.NewGenerationState("Tokyo", target, "")
	st.Location = &loc
	st.ForecastAtTarget = &forecast
	st.Candidate = &domain.CommentPair{
		Weather: domain.PastComment{Text: "risk of death", Type: domain.CommentWeather},
		Advice:  domain.PastComment{Text: "stay safe", Type: domain.CommentAdvice},
	}

	err := node.Run(context.Background(), st)

	require.NoError(t, err)
	assert.False(t, st.Validation.OK)
	assert.NotEmpty(t, st.Validation.Reasons)
}

func TestEvaluateCandidateNode_MissingCandidateErrors(t *testing.T) {
	node := &workflow.EvaluateCandidateNode{Pipeline: validator.NewPipeline(testThresholds()), Mode: validator.ModeStrict}
	st := domain.NewGenerationState("Tokyo", time.Now(), "")

	err := node.Run(context.Background(), st)

	assert.Error(t, err)
}
