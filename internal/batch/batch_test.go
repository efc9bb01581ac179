package batch_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sakamo-wni/weathercomment/internal/batch"
	"github.com/sakamo-wni/weathercomment/internal/domain"
	"github.com/sakamo-wni/weathercomment/internal/workflow"
)

type passNode struct{ name workflow.NodeName }

func (p passNode) Name() workflow.NodeName { return p.name }
func (passNode) Run(context.Context, *domain.GenerationState) error { return nil }

// fakeSelectNode stands in for the real SelectPair node: it fails, stalls,
// or succeeds per location name, and switches to a "retry-" prefixed pair
// once the prior attempt's text has been excluded, so tests can observe
// that Regenerate's exclusion set actually reaches the engine.
type fakeSelectNode struct {
	behavior  map[string]string
	slowDelay time.Duration
}

func (fakeSelectNode) Name() workflow.NodeName { return workflow.NodeSelectPair }

func (n fakeSelectNode) Run(ctx context.Context, st *domain.GenerationState) error {
	switch n.behavior[st.LocationName] {
	case "fail":
		return fmt.Errorf("fake select failure for %s", st.LocationName)
	case "slow":
		select {
		case <-time.After(n.slowDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	prefix := ""
	if len(st.ExcludePrevious) > 0 {
		prefix = "retry-"
	}
	st.Candidate = &domain.CommentPair{
		Weather: domain.PastComment{Text: prefix + "weather-" + st.LocationName, Type: domain.CommentWeather},
		Advice:  domain.PastComment{Text: prefix + "advice-" + st.LocationName, Type: domain.CommentAdvice},
	}
	return nil
}

type fakeGenerateNode struct{}

func (fakeGenerateNode) Name() workflow.NodeName { return workflow.NodeGenerateComment }

func (fakeGenerateNode) Run(_ context.Context, st *domain.GenerationState) error {
	if st.Candidate != nil {
		st.FinalWeather = st.Candidate.Weather.Text
		st.FinalAdvice = st.Candidate.Advice.Text
	}
	return nil
}

func newTestEngine(behavior map[string]string, slowDelay time.Duration) *workflow.Engine {
	nodes := []workflow.Node{
		passNode{workflow.NodeInput},
		passNode{workflow.NodeFetchForecast},
		passNode{workflow.NodeRetrieveCorpus},
		fakeSelectNode{behavior: behavior, slowDelay: slowDelay},
		fakeGenerateNode{},
		workflow.OutputBuildNode{},
	}
	return workflow.NewEngine(nodes, zap.NewNop())
}

func classicNoLLMOptions() workflow.Options {
	return workflow.Options{UseUnifiedPath: false, MaxRetries: 5}
}

func TestOrchestrator_RunProcessesAllItemsSuccessfully(t *testing.T) {
	engine := newTestEngine(nil, 0)
	o := batch.New(engine, batch.DefaultOptions(), zap.NewNop())

	inputs := []batch.Input{
		{LocationName: "tokyo", TargetDatetime: time.Now()},
		{LocationName: "osaka", TargetDatetime: time.Now()},
		{LocationName: "nagoya", TargetDatetime: time.Now()},
	}

	var mu sync.Mutex
	var callbackCount int
	results, stats := o.Run(context.Background(), inputs, classicNoLLMOptions(), func(r batch.Result) {
		mu.Lock()
		callbackCount++
		mu.Unlock()
	})

	require.Len(t, results, 3)
	for i, r := range results {
		assert.Equal(t, i, r.Index)
		assert.True(t, r.Success)
	}
	assert.Equal(t, 3, stats.Processed)
	assert.Equal(t, 3, stats.Succeeded)
	assert.Equal(t, 0, stats.Errored)
	assert.Equal(t, 3, callbackCount)
}

func TestOrchestrator_PreservesIndexOrderAcrossMultipleChunks(t *testing.T) {
	engine := newTestEngine(nil, 0)
	o := batch.New(engine, batch.Options{MaxParallelWorkers: 2, PerItemTimeout: time.Second, MaxParallelLocations: 20}, zap.NewNop())

	inputs := make([]batch.Input, 0, 6)
	for i := 0; i < 6; i++ {
		inputs = append(inputs, batch.Input{LocationName: fmt.Sprintf("loc%d", i), TargetDatetime: time.Now()})
	}

	results, stats := o.Run(context.Background(), inputs, classicNoLLMOptions(), nil)

	require.Len(t, results, 6)
	for i, r := range results {
		assert.Equal(t, i, r.Index)
		assert.Equal(t, fmt.Sprintf("loc%d", i), r.LocationName)
		assert.True(t, r.Success)
	}
	assert.Equal(t, 6, stats.Succeeded)
}

func TestOrchestrator_FailureIsolation(t *testing.T) {
	engine := newTestEngine(map[string]string{"osaka": "fail"}, 0)
	o := batch.New(engine, batch.DefaultOptions(), zap.NewNop())

	inputs := []batch.Input{
		{LocationName: "tokyo", TargetDatetime: time.Now()},
		{LocationName: "osaka", TargetDatetime: time.Now()},
		{LocationName: "nagoya", TargetDatetime: time.Now()},
	}

	results, stats := o.Run(context.Background(), inputs, classicNoLLMOptions(), nil)

	require.Len(t, results, 3)
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.NotEmpty(t, results[1].Error)
	assert.True(t, results[2].Success)
	assert.Equal(t, 1, stats.Errored)
	assert.Equal(t, 2, stats.Succeeded)
}

func TestOrchestrator_PerItemTimeoutMarksTimedOut(t *testing.T) {
	engine := newTestEngine(map[string]string{"slow-loc": "slow"}, 200*time.Millisecond)
	o := batch.New(engine, batch.Options{MaxParallelWorkers: 1, PerItemTimeout: 20 * time.Millisecond, MaxParallelLocations: 20}, zap.NewNop())

	inputs := []batch.Input{{LocationName: "slow-loc", TargetDatetime: time.Now()}}

	results, stats := o.Run(context.Background(), inputs, classicNoLLMOptions(), nil)

	require.Len(t, results, 1)
	assert.True(t, results[0].TimedOut)
	assert.False(t, results[0].Success)
	assert.Equal(t, 1, stats.TimedOut)
}

func TestOrchestrator_DowngradesToSerialAboveMaxParallelLocations(t *testing.T) {
	engine := newTestEngine(nil, 0)
	o := batch.New(engine, batch.Options{MaxParallelWorkers: 4, PerItemTimeout: time.Second, MaxParallelLocations: 2}, zap.NewNop())

	inputs := []batch.Input{
		{LocationName: "a", TargetDatetime: time.Now()},
		{LocationName: "b", TargetDatetime: time.Now()},
		{LocationName: "c", TargetDatetime: time.Now()},
	}

	results, stats := o.Run(context.Background(), inputs, classicNoLLMOptions(), nil)

	require.Len(t, results, 3)
	assert.Equal(t, 3, stats.Succeeded)
}

func TestOrchestrator_RegeneratePropagatesExcludePreviousAndKeepsIndex(t *testing.T) {
	engine := newTestEngine(nil, 0)
	o := batch.New(engine, batch.DefaultOptions(), zap.NewNop())

	inputs := []batch.Input{{LocationName: "tokyo", TargetDatetime: time.Now()}}
	results, _ := o.Run(context.Background(), inputs, classicNoLLMOptions(), nil)
	require.Equal(t, "weather-tokyo", results[0].FinalWeather)

	regenerated, err := o.Regenerate(context.Background(), 0)

	require.NoError(t, err)
	assert.Equal(t, 0, regenerated.Index)
	assert.Equal(t, "retry-weather-tokyo", regenerated.FinalWeather)
}

func TestOrchestrator_RegenerateOutOfRangeErrors(t *testing.T) {
	engine := newTestEngine(nil, 0)
	o := batch.New(engine, batch.DefaultOptions(), zap.NewNop())

	_, err := o.Regenerate(context.Background(), 0)

	assert.Error(t, err)
}
