package workflow_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakamo-wni/weathercomment/internal/domain"
	"github.com/sakamo-wni/weathercomment/internal/llm"
	"github.com/sakamo-wni/weathercomment/internal/workflow"
)

func TestUnifiedSelectGenerateNode_SuccessfulJSONMatch(t *testing.T) {
	backend := &fakeBackend{provider: llm.ProviderOpenAI, replies: []string{
		`{"weather": "Clear skies tonight", "advice": "Wear sunscreen", "confidence": 0.9}`,
	}}
	node := &workflow.UnifiedSelectGenerateNode{Adapter: llm.NewAdapter(backend), Options: llm.DefaultOptions()}
	st := sampleCorpusState()

	err := node.Run(context.Background(), st)

	require.NoError(t, err)
	require.NotNil(t, st.Candidate)
	assert.Equal(t, "Clear skies tonight", st.FinalWeather)
	assert.Equal(t, "Wear sunscreen", st.FinalAdvice)
	assert.InDelta(t, 0.9, st.Validation.Score, 0.0001)
	assert.True(t, st.Validation.OK)
	assert.Nil(t, st.Metadata["fallback"])
}

func TestUnifiedSelectGenerateNode_PartialMatchFallsBackPerField(t *testing.T) {
	backend := &fakeBackend{provider: llm.ProviderOpenAI, replies: []string{
		`{"weather": "Clear skies tonight", "advice": "Something unrecognized", "confidence": 0.8}`,
	}}
	node := &workflow.UnifiedSelectGenerateNode{Adapter: llm.NewAdapter(backend), Options: llm.DefaultOptions()}
	st := sampleCorpusState()

	err := node.Run(context.Background(), st)

	require.NoError(t, err)
	require.NotNil(t, st.Candidate)
	assert.Equal(t, "Clear skies tonight", st.Candidate.Weather.Text)
	assert.Equal(t, "Stay hydrated", st.Candidate.Advice.Text)
	assert.Equal(t, "unified_selection", st.Metadata["fallback"])
}

func TestUnifiedSelectGenerateNode_AdapterErrorPropagates(t *testing.T) {
	backend := &fakeBackend{provider: llm.ProviderOpenAI, err: assertTestError}
	node := &workflow.UnifiedSelectGenerateNode{Adapter: llm.NewAdapter(backend), Options: llm.DefaultOptions()}
	st := sampleCorpusState()

	err := node.Run(context.Background(), st)

	assert.Error(t, err)
}

func TestUnifiedSelectGenerateNode_ParseErrorPropagates(t *testing.T) {
	backend := &fakeBackend{provider: llm.ProviderOpenAI, replies: []string{"not json at all"}}
	node := &workflow.UnifiedSelectGenerateNode{Adapter: llm.NewAdapter(backend), Options: llm.DefaultOptions()}
	st := sampleCorpusState()

	err := node.Run(context.Background(), st)

	assert.Error(t, err)
}

func TestUnifiedSelectGenerateNode_EmptyCorpusErrors(t *testing.T) {
	backend := &fakeBackend{provider: llm.ProviderOpenAI}
	node := &workflow.UnifiedSelectGenerateNode{Adapter: llm.NewAdapter(backend), Options: llm.DefaultOptions()}
	st := domain.NewGenerationState("Tokyo", time.Now(), "")

	err := node.Run(context.Background(), st)

	assert.Error(t, err)
}
