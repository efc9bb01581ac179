package workflow_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sakamo-wni/weathercomment/internal/corpus"
	"github.com/sakamo-wni/weathercomment/internal/domain"
	"github.com/sakamo-wni/weathercomment/internal/workflow"
)

func newTestCorpusRepo(t *testing.T) *corpus.Repository {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "summer_weather_comment_enhanced100.csv"),
		[]byte("text,count\nHot sunny afternoon,10\nClear skies tonight,5\nExcluded phrase,1\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "summer_advice_enhanced100.csv"),
		[]byte("text,count\nStay hydrated,8\nWear sunscreen,3\n"), 0o644))

	repo, err := corpus.NewRepository(dir, zap.NewNop())
	require.NoError(t, err)
	return repo
}

func TestRetrieveCorpusNode_FiltersAndTruncates(t *testing.T) {
	node := &workflow.RetrieveCorpusNode{Repository: newTestCorpusRepo(t), Limit: 2}
	target := time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC)
	st := domain.NewGenerationState("Tokyo", target, "")
	st.ExcludePrevious["Excluded phrase"] = true

	err := node.Run(context.Background(), st)

	require.NoError(t, err)
	assert.Len(t, st.CorpusWeather, 2)
	assert.Len(t, st.CorpusAdvice, 2)
	for _, c := range st.CorpusWeather {
		assert.NotEqual(t, "Excluded phrase", c.Text)
	}
}

func TestRetrieveCorpusNode_DefaultLimitAppliesWhenUnset(t *testing.T) {
	node := &workflow.RetrieveCorpusNode{Repository: newTestCorpusRepo(t)}
	target := time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC)
	st := domain.NewGenerationState("Tokyo", target, "")

	err := node.Run(context.Background(), st)

	require.NoError(t, err)
	assert.Len(t, st.CorpusWeather, 3)
}
