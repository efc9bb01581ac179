// Package workflow implements the Workflow Engine (C1) and its eight node
// handlers (C2): a fixed, typed state machine with conditional edges and a
// bounded retry loop, grounded on the teacher's pkg/engine NodeExecutor /
// StandaloneExecutor / ConditionEvaluator shapes, narrowed from a general
// DAG runner to this system's closed eight-node pipeline.
package workflow

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sakamo-wni/weathercomment/internal/apperrors"
	"github.com/sakamo-wni/weathercomment/internal/domain"
)

// Input carries the fields the Input node needs (spec §4.2 Input).
type Input struct {
	LocationName    string
	TargetDatetime  time.Time
	LLMProviderName string

	// ExcludePrevious seeds the run's exclusion set, used by the Batch
	// Orchestrator's regenerate(index) to keep the prior attempt's
	// candidate texts out of the new run's corpus (spec §4.7).
	ExcludePrevious []string
}

// Options selects the unified-vs-classic path and retry bound (spec §4.1).
type Options struct {
	UseUnifiedPath   bool
	UseIndexedCorpus bool
	MaxRetries       int
}

// DefaultOptions matches spec §4.1's defaults (unified path on, 5 retries).
func DefaultOptions() Options {
	return Options{UseUnifiedPath: true, MaxRetries: 5}
}

// Result is the engine's return value: a completed GenerationState
// snapshot. Run never returns a handle to poll (spec §4.1: "the engine only
// ever runs standalone").
type Result struct {
	Success       bool
	FinalWeather  string
	FinalAdvice   string
	// SelectedWeather and SelectedAdvice hold the corpus phrase chosen by
	// SelectPair/UnifiedSelectGenerate before GenerateComment's LLM
	// rephrasing, i.e. domain.GenerationState.Candidate's texts (spec
	// §6.1 metadata.selected_weather_comment/selected_advice_comment).
	// They equal FinalWeather/FinalAdvice whenever GenerateComment falls
	// back to the pre-LLM candidate, and diverge whenever it doesn't.
	SelectedWeather string
	SelectedAdvice  string
	Validation      domain.Validation
	RetryCount      int
	Metadata        map[string]any
	Errors          []string
	ExecutedNodes   []string
}

// Engine owns the fixed node map and drives execution from Input to END.
type Engine struct {
	nodes      map[NodeName]Node
	conditions ConditionEvaluator
	notifier   ExecutionNotifier
	log        *zap.Logger
}

// EngineOption configures an Engine at construction.
type EngineOption func(*Engine)

// WithConditionEvaluator overrides the default StaticEvaluator.
func WithConditionEvaluator(ce ConditionEvaluator) EngineOption {
	return func(e *Engine) { e.conditions = ce }
}

// WithNotifier overrides the default NoOpNotifier.
func WithNotifier(n ExecutionNotifier) EngineOption {
	return func(e *Engine) { e.notifier = n }
}

// NewEngine builds an Engine from the eight required nodes, keyed by name.
func NewEngine(nodes []Node, log *zap.Logger, opts ...EngineOption) *Engine {
	m := make(map[NodeName]Node, len(nodes))
	for _, n := range nodes {
		m[n.Name()] = n
	}
	e := &Engine{
		nodes:      m,
		conditions: NewStaticEvaluator(),
		notifier:   NewNoOpNotifier(),
		log:        log,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes the state machine described in spec §4.1 and returns the
// serialized Output-node product. Run itself never returns a non-nil
// error: every node-level failure, including an unrecoverable
// *apperrors.WorkflowError for a required node missing from the map, is
// instead captured into state.Errors and surfaces as Result.Success=false
// and a populated Result.Errors, so callers always get a fully-built
// Output snapshot (spec §4.1 Failure semantics).
func (e *Engine) Run(ctx context.Context, in Input, opts Options) (*Result, error) {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultOptions().MaxRetries
	}

	st := domain.NewGenerationState(in.LocationName, in.TargetDatetime, in.LLMProviderName)
	st.UseUnifiedPath = opts.UseUnifiedPath
	st.UseIndexedCorpus = opts.UseIndexedCorpus
	for _, text := range in.ExcludePrevious {
		st.ExcludePrevious[text] = true
	}

	if err := e.runStage(ctx, st, NodeInput); err != nil {
		return e.finish(ctx, st)
	}
	if err := e.runStage(ctx, st, NodeFetchForecast); err != nil {
		return e.finish(ctx, st)
	}
	if err := e.runStage(ctx, st, NodeRetrieveCorpus); err != nil {
		return e.finish(ctx, st)
	}

	if st.UseUnifiedPath {
		if err := e.runStage(ctx, st, NodeUnifiedSelectGenerate); err != nil {
			st.UseUnifiedPath = false
			st.Metadata["unified_fallback"] = true
			if classicErr := e.runClassicPath(ctx, st, opts); classicErr != nil {
				return e.finish(ctx, st)
			}
		}
	} else {
		if err := e.runClassicPath(ctx, st, opts); err != nil {
			return e.finish(ctx, st)
		}
	}

	return e.finish(ctx, st)
}

// runClassicPath runs SelectPair -> EDGE_evaluate -> [EvaluateCandidate ->
// EDGE_retry loop] -> GenerateComment, per spec §4.1's classic-path state
// machine.
func (e *Engine) runClassicPath(ctx context.Context, st *domain.GenerationState, opts Options) error {
	if err := e.runStage(ctx, st, NodeSelectPair); err != nil {
		return err
	}

	llmConfigured, _ := e.conditions.Evaluate("llm_configured", evalEnv(st, opts))
	if !llmConfigured {
		return e.runStage(ctx, st, NodeGenerateComment)
	}

	for {
		if err := e.runStage(ctx, st, NodeEvaluateCandidate); err != nil {
			return err
		}
		shouldRetry, _ := e.conditions.Evaluate("should_retry", evalEnv(st, opts))
		if !shouldRetry {
			break
		}
		st.RetryCount++
		e.notifier.Notify(ctx, ExecutionEvent{Type: EventNodeRetrying, NodeName: string(NodeSelectPair), Timestamp: nowUTC()})
		if st.Candidate != nil {
			st.PreviousCandidateTexts = append(st.PreviousCandidateTexts, st.Candidate.Weather.Text, st.Candidate.Advice.Text)
			for _, t := range st.PreviousCandidateTexts {
				st.ExcludePrevious[t] = true
			}
		}
		if err := e.runStage(ctx, st, NodeRetrieveCorpus); err != nil {
			return err
		}
		if err := e.runStage(ctx, st, NodeSelectPair); err != nil {
			return err
		}
	}

	if !st.Validation.OK {
		st.Metadata["forced"] = true
	}
	return e.runStage(ctx, st, NodeGenerateComment)
}

func evalEnv(st *domain.GenerationState, opts Options) map[string]any {
	return map[string]any{
		"llm_provider_name": st.LLMProviderName,
		"validation_ok":     st.Validation.OK,
		"retry_count":       st.RetryCount,
		"max_retries":       opts.MaxRetries,
	}
}

// runStage runs one named node, recording timing/observability metadata
// and appending any failure to state.Errors rather than propagating it
// (spec §4.1 Failure semantics).
func (e *Engine) runStage(ctx context.Context, st *domain.GenerationState, name NodeName) error {
	node, ok := e.nodes[name]
	if !ok {
		err := &apperrors.WorkflowError{Stage: string(name), Err: fmt.Errorf("no node registered for %q", name)}
		st.AddError(string(name), err)
		return err
	}

	start := nowUTC()
	e.notifier.Notify(ctx, ExecutionEvent{Type: EventNodeStarted, NodeName: string(name), Timestamp: start})

	err := node.Run(ctx, st)

	elapsed := time.Since(start)
	st.MarkNodeExecuted(string(name))
	recordNodeTiming(st, string(name), elapsed)

	if err != nil {
		st.AddError(string(name), err)
		e.notifier.Notify(ctx, ExecutionEvent{Type: EventNodeFailed, NodeName: string(name), Err: err, DurationMs: elapsed.Milliseconds(), Timestamp: nowUTC()})
		return err
	}
	e.notifier.Notify(ctx, ExecutionEvent{Type: EventNodeCompleted, NodeName: string(name), DurationMs: elapsed.Milliseconds(), Timestamp: nowUTC()})
	return nil
}

func recordNodeTiming(st *domain.GenerationState, name string, d time.Duration) {
	raw, ok := st.Metadata["node_execution_times"]
	if !ok {
		raw = map[string]int64{}
	}
	times, ok := raw.(map[string]int64)
	if !ok {
		times = map[string]int64{}
	}
	times[name] = d.Milliseconds()
	st.Metadata["node_execution_times"] = times
}

func (e *Engine) finish(ctx context.Context, st *domain.GenerationState) (*Result, error) {
	_ = e.runStage(ctx, st, NodeOutputBuild)
	e.notifier.Notify(ctx, ExecutionEvent{Type: EventRunCompleted, Timestamp: nowUTC()})
	return e.buildResult(st), nil
}

func (e *Engine) buildResult(st *domain.GenerationState) *Result {
	r := &Result{
		Success:       st.Success,
		FinalWeather:  st.FinalWeather,
		FinalAdvice:   st.FinalAdvice,
		Validation:    st.Validation,
		RetryCount:    st.RetryCount,
		Metadata:      st.Metadata,
		Errors:        st.Errors,
		ExecutedNodes: st.ExecutedNodes,
	}
	if st.Candidate != nil {
		r.SelectedWeather = st.Candidate.Weather.Text
		r.SelectedAdvice = st.Candidate.Advice.Text
	}
	return r
}

// nowUTC is the engine's single time source, factored out so tests could
// substitute it if a deterministic clock were ever required.
func nowUTC() time.Time { return time.Now().UTC() }
