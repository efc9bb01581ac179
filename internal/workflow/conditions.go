package workflow

import (
	"container/list"
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ConditionEvaluator evaluates the two named conditional edges
// (EDGE_evaluate, EDGE_retry) against the current state, mirroring the
// teacher's engine.ConditionEvaluator interface comment: "Simple impl:
// string matching. Full impl: expr-lang with caching."
type ConditionEvaluator interface {
	Evaluate(condition string, env map[string]any) (bool, error)
}

// StaticEvaluator implements ConditionEvaluator with the engine's two
// fixed conditions evaluated as plain Go, used by default since the edge
// set here is closed (spec §4.1: only EDGE_evaluate and EDGE_retry exist).
type StaticEvaluator struct{}

// NewStaticEvaluator builds a StaticEvaluator.
func NewStaticEvaluator() *StaticEvaluator { return &StaticEvaluator{} }

// Evaluate resolves "llm_configured" and "should_retry" conditions
// directly from env, falling back to true for an empty/"true" condition
// and false for "false", matching the teacher's SimpleConditionEvaluator
// shape.
func (StaticEvaluator) Evaluate(condition string, env map[string]any) (bool, error) {
	switch condition {
	case "", "true":
		return true, nil
	case "false":
		return false, nil
	case "llm_configured":
		provider, _ := env["llm_provider_name"].(string)
		return provider != "", nil
	case "should_retry":
		ok, _ := env["validation_ok"].(bool)
		retryCount, _ := env["retry_count"].(int)
		maxRetries, _ := env["max_retries"].(int)
		return !ok && retryCount < maxRetries, nil
	default:
		return false, fmt.Errorf("workflow: unknown static condition %q", condition)
	}
}

// conditionCache is a thread-safe LRU cache of compiled expr programs,
// adapted from the teacher's pkg/engine/condition_cache.go verbatim
// structure (container/list + map), generalized from edge conditions over
// a node's arbitrary JSON output to this engine's env map.
type conditionCache struct {
	capacity int
	cache    map[string]*list.Element
	lruList  *list.List
	mu       sync.RWMutex
}

type conditionCacheEntry struct {
	key     string
	program *vm.Program
}

func newConditionCache(capacity int) *conditionCache {
	if capacity <= 0 {
		capacity = 100
	}
	return &conditionCache{
		capacity: capacity,
		cache:    make(map[string]*list.Element),
		lruList:  list.New(),
	}
}

func (cc *conditionCache) get(condition string) (*vm.Program, bool) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if el, ok := cc.cache[condition]; ok {
		cc.lruList.MoveToFront(el)
		return el.Value.(*conditionCacheEntry).program, true
	}
	return nil, false
}

func (cc *conditionCache) put(condition string, program *vm.Program) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if el, ok := cc.cache[condition]; ok {
		cc.lruList.MoveToFront(el)
		el.Value.(*conditionCacheEntry).program = program
		return
	}
	el := cc.lruList.PushFront(&conditionCacheEntry{key: condition, program: program})
	cc.cache[condition] = el
	if cc.lruList.Len() > cc.capacity {
		oldest := cc.lruList.Back()
		if oldest != nil {
			cc.lruList.Remove(oldest)
			delete(cc.cache, oldest.Value.(*conditionCacheEntry).key)
		}
	}
}

// ExprEvaluator implements ConditionEvaluator by compiling and caching
// expr-lang programs, realizing the "Full impl" half of the teacher's
// interface comment. Conditions are arbitrary boolean expressions over
// env, e.g. `validation_ok == false && retry_count < max_retries`.
type ExprEvaluator struct {
	cache *conditionCache
}

// NewExprEvaluator builds an ExprEvaluator with a compiled-program cache
// of the given capacity (teacher default: 100).
func NewExprEvaluator(cacheCapacity int) *ExprEvaluator {
	return &ExprEvaluator{cache: newConditionCache(cacheCapacity)}
}

// Evaluate compiles condition (or reuses a cached program) and runs it
// against env, requiring a boolean result.
func (e *ExprEvaluator) Evaluate(condition string, env map[string]any) (bool, error) {
	if condition == "" {
		return true, nil
	}
	program, ok := e.cache.get(condition)
	if !ok {
		compiled, err := expr.Compile(condition, expr.Env(env), expr.AsBool())
		if err != nil {
			return false, fmt.Errorf("workflow: failed to compile condition %q: %w", condition, err)
		}
		program = compiled
		e.cache.put(condition, program)
	}
	result, err := expr.Run(program, env)
	if err != nil {
		return false, fmt.Errorf("workflow: failed to evaluate condition %q: %w", condition, err)
	}
	b, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("workflow: condition %q did not return a boolean, got %T", condition, result)
	}
	return b, nil
}
