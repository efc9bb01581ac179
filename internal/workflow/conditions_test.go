package workflow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakamo-wni/weathercomment/internal/workflow"
)

func TestStaticEvaluator_LLMConfigured(t *testing.T) {
	e := workflow.NewStaticEvaluator()
	ok, err := e.Evaluate("llm_configured", map[string]any{"llm_provider_name": "openai"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.Evaluate("llm_configured", map[string]any{"llm_provider_name": ""})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStaticEvaluator_ShouldRetry(t *testing.T) {
	e := workflow.NewStaticEvaluator()
	ok, err := e.Evaluate("should_retry", map[string]any{"validation_ok": false, "retry_count": 1, "max_retries": 5})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.Evaluate("should_retry", map[string]any{"validation_ok": false, "retry_count": 5, "max_retries": 5})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = e.Evaluate("should_retry", map[string]any{"validation_ok": true, "retry_count": 0, "max_retries": 5})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStaticEvaluator_UnknownConditionErrors(t *testing.T) {
	e := workflow.NewStaticEvaluator()
	_, err := e.Evaluate("something_else", map[string]any{})
	assert.Error(t, err)
}

func TestExprEvaluator_CompilesAndCachesProgram(t *testing.T) {
	e := workflow.NewExprEvaluator(10)
	env := map[string]any{"retry_count": 2, "max_retries": 5, "validation_ok": false}

	ok, err := e.Evaluate("validation_ok == false && retry_count < max_retries", env)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.Evaluate("validation_ok == false && retry_count < max_retries", env)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestExprEvaluator_EmptyConditionIsTrue(t *testing.T) {
	e := workflow.NewExprEvaluator(10)
	ok, err := e.Evaluate("", map[string]any{})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestExprEvaluator_NonBooleanResultErrors(t *testing.T) {
	e := workflow.NewExprEvaluator(10)
	_, err := e.Evaluate("1 + 1", map[string]any{})
	assert.Error(t, err)
}
