// Package batch implements the Batch Orchestrator (C7): chunked, bounded
// parallel fan-out of the Workflow Engine across many locations, with
// progressive per-item delivery, per-item timeout, and per-index
// regeneration (spec §4.7). The chunk-settle scheduling and
// context-cancellation propagation are grounded on the teacher's
// DAGExecutor.executeWave semaphore/WaitGroup pattern in
// backend/internal/application/engine/dag_executor.go, generalized from
// one wave of DAG nodes to one chunk of independent location requests.
package batch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sakamo-wni/weathercomment/internal/domain"
	"github.com/sakamo-wni/weathercomment/internal/workflow"
)

// Input is one location request inside a batch run (spec §4.7 BatchInput).
type Input struct {
	LocationName    string
	TargetDatetime  time.Time
	LLMProviderName string
}

// Result is one item's outcome (spec §4.7 BatchResult). Loading is true
// only in the (unused by this synchronous Run) streaming sense the spec
// names; Run only ever emits settled results to the callback.
type Result struct {
	Index        int
	LocationName string
	Success      bool
	FinalWeather string
	FinalAdvice  string
	Validation   domain.Validation
	Metadata     map[string]any
	Error        string
	TimedOut     bool
	Loading      bool
	DurationMs   int64
}

// Stats summarizes one Run call (spec §4.7 Stats).
type Stats struct {
	Processed    int
	Succeeded    int
	TimedOut     int
	Errored      int
	MeanLatencyMs float64
}

// Callback is invoked once per item as soon as its workflow settles, in
// completion order rather than index order (spec §4.7 Contract).
type Callback func(Result)

// Options configures fan-out width and per-item deadlines (spec §4.7
// Parameters; defaults match config.BatchConfig's env-derived defaults).
type Options struct {
	MaxParallelWorkers   int
	PerItemTimeout       time.Duration
	MaxParallelLocations int
}

// DefaultOptions matches spec §4.7's stated defaults.
func DefaultOptions() Options {
	return Options{MaxParallelWorkers: 4, PerItemTimeout: 30 * time.Second, MaxParallelLocations: 20}
}

// Orchestrator runs the Workflow Engine over a location list with bounded
// parallelism. It is safe for concurrent use across independent Run calls,
// but a single Orchestrator's last-run state (for Regenerate) is not
// shared across concurrent Run calls on the same instance.
type Orchestrator struct {
	engine *workflow.Engine
	opts   Options
	log    *zap.Logger

	mu          sync.Mutex
	lastInputs  []Input
	lastResults []Result
	lastWFOpts  workflow.Options
}

// New builds an Orchestrator over the given Engine.
func New(engine *workflow.Engine, opts Options, log *zap.Logger) *Orchestrator {
	if opts.MaxParallelWorkers <= 0 {
		opts.MaxParallelWorkers = DefaultOptions().MaxParallelWorkers
	}
	if opts.PerItemTimeout <= 0 {
		opts.PerItemTimeout = DefaultOptions().PerItemTimeout
	}
	if opts.MaxParallelLocations <= 0 {
		opts.MaxParallelLocations = DefaultOptions().MaxParallelLocations
	}
	return &Orchestrator{engine: engine, opts: opts, log: log}
}

// Run executes inputs in chunks of size MaxParallelWorkers, waiting for an
// entire chunk to settle before starting the next (spec §4.7 Scheduling).
// Above MaxParallelLocations items, fan-out downgrades to serial (chunk
// size 1) to bound the total burst against the LLM provider's rate limit.
func (o *Orchestrator) Run(ctx context.Context, inputs []Input, wfOpts workflow.Options, callback Callback) ([]Result, Stats) {
	chunkSize := o.opts.MaxParallelWorkers
	if len(inputs) > o.opts.MaxParallelLocations {
		chunkSize = 1
	}

	results := make([]Result, len(inputs))
	for start := 0; start < len(inputs); start += chunkSize {
		end := start + chunkSize
		if end > len(inputs) {
			end = len(inputs)
		}
		o.runChunk(ctx, inputs[start:end], start, wfOpts, results, callback)
	}

	o.mu.Lock()
	o.lastInputs = append([]Input(nil), inputs...)
	o.lastResults = append([]Result(nil), results...)
	o.lastWFOpts = wfOpts
	o.mu.Unlock()

	return results, computeStats(results)
}

// runChunk runs one chunk of items concurrently and blocks until every
// item in it has settled (succeeded, timed out, or errored).
func (o *Orchestrator) runChunk(ctx context.Context, chunk []Input, offset int, wfOpts workflow.Options, results []Result, callback Callback) {
	var wg sync.WaitGroup
	wg.Add(len(chunk))
	for i, in := range chunk {
		index := offset + i
		go func(index int, in Input) {
			defer wg.Done()
			result := o.runOne(ctx, index, in, wfOpts)
			results[index] = result
			if callback != nil {
				callback(result)
			}
		}(index, in)
	}
	wg.Wait()
}

// runOne runs a single item under its own per_item_timeout deadline,
// isolating its failure from the rest of the batch (spec §4.7 Failure
// isolation).
func (o *Orchestrator) runOne(ctx context.Context, index int, in Input, wfOpts workflow.Options) Result {
	return o.runOneWithExclusions(ctx, index, in, nil, wfOpts)
}

func (o *Orchestrator) runOneWithExclusions(ctx context.Context, index int, in Input, exclude []string, wfOpts workflow.Options) Result {
	itemCtx, cancel := context.WithTimeout(ctx, o.opts.PerItemTimeout)
	defer cancel()

	start := time.Now()
	out, err := o.engine.Run(itemCtx, workflow.Input{
		LocationName:    in.LocationName,
		TargetDatetime:  in.TargetDatetime,
		LLMProviderName: in.LLMProviderName,
		ExcludePrevious: exclude,
	}, wfOpts)
	elapsed := time.Since(start)

	result := Result{Index: index, LocationName: in.LocationName, DurationMs: elapsed.Milliseconds()}

	if err != nil {
		result.Success = false
		result.Error = err.Error()
		if itemCtx.Err() != nil {
			result.TimedOut = true
		}
		return result
	}

	result.Success = out.Success
	result.FinalWeather = out.FinalWeather
	result.FinalAdvice = out.FinalAdvice
	result.Validation = out.Validation
	result.Metadata = out.Metadata
	if !out.Success && len(out.Errors) > 0 {
		result.Error = out.Errors[len(out.Errors)-1]
	}
	if itemCtx.Err() != nil {
		result.TimedOut = true
	}
	return result
}

// Regenerate re-runs the item at index from the last Run call, excluding
// that attempt's final candidate texts, and preserves its index position
// in the returned slice (spec §4.7 "Retry of a single item").
func (o *Orchestrator) Regenerate(ctx context.Context, index int) (Result, error) {
	o.mu.Lock()
	if index < 0 || index >= len(o.lastInputs) {
		n := len(o.lastInputs)
		o.mu.Unlock()
		return Result{}, fmt.Errorf("batch: regenerate index %d out of range for last run of %d items", index, n)
	}
	in := o.lastInputs[index]
	prev := o.lastResults[index]
	wfOpts := o.lastWFOpts
	o.mu.Unlock()

	exclude := make([]string, 0, 2)
	if prev.FinalWeather != "" {
		exclude = append(exclude, prev.FinalWeather)
	}
	if prev.FinalAdvice != "" {
		exclude = append(exclude, prev.FinalAdvice)
	}

	result := o.runOneWithExclusions(ctx, index, in, exclude, wfOpts)

	o.mu.Lock()
	if index < len(o.lastResults) {
		o.lastResults[index] = result
	}
	o.mu.Unlock()

	return result, nil
}

func computeStats(results []Result) Stats {
	stats := Stats{Processed: len(results)}
	var totalMs int64
	for _, r := range results {
		totalMs += r.DurationMs
		switch {
		case r.TimedOut:
			stats.TimedOut++
		case r.Success:
			stats.Succeeded++
		default:
			stats.Errored++
		}
	}
	if stats.Processed > 0 {
		stats.MeanLatencyMs = float64(totalMs) / float64(stats.Processed)
	}
	return stats
}
