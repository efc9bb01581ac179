package forecast

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// breakerState is the circuit breaker state (closed, open, half-open),
// adapted from weather-alert-service/internal/circuitbreaker/circuitbreaker.go
// and renamed into this package since it protects exactly one external
// call site (the weather adapter) rather than being a shared library.
type breakerState int

const (
	breakerClosed breakerState = iota
	breakerOpen
	breakerHalfOpen
)

func (s breakerState) String() string {
	switch s {
	case breakerClosed:
		return "closed"
	case breakerOpen:
		return "open"
	case breakerHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// circuitBreaker opens after failureThreshold consecutive failures and
// probes again once timeout has elapsed, closing again after
// successThreshold consecutive probe successes.
type circuitBreaker struct {
	mu               sync.Mutex
	state            breakerState
	failureCount     int
	successCount     int
	lastFailureTime  time.Time
	failureThreshold int
	successThreshold int
	timeout          time.Duration
}

func newCircuitBreaker(failureThreshold, successThreshold int, timeout time.Duration) *circuitBreaker {
	if failureThreshold <= 0 {
		failureThreshold = 5
	}
	if successThreshold <= 0 {
		successThreshold = 2
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &circuitBreaker{
		state:            breakerClosed,
		failureThreshold: failureThreshold,
		successThreshold: successThreshold,
		timeout:          timeout,
	}
}

// call runs fn when the breaker allows it, returning an immediate
// "circuit open" error otherwise.
func (cb *circuitBreaker) call(_ context.Context, fn func() error) error {
	cb.mu.Lock()
	if cb.state == breakerOpen {
		if time.Since(cb.lastFailureTime) < cb.timeout {
			cb.mu.Unlock()
			return fmt.Errorf("forecast: circuit breaker open")
		}
		cb.state = breakerHalfOpen
		cb.successCount = 0
	}
	cb.mu.Unlock()

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		cb.failureCount++
		cb.lastFailureTime = time.Now()
		if cb.state == breakerHalfOpen || cb.failureCount >= cb.failureThreshold {
			cb.state = breakerOpen
			cb.failureCount = 0
		}
		return err
	}

	cb.successCount++
	cb.failureCount = 0
	if cb.state == breakerHalfOpen && cb.successCount >= cb.successThreshold {
		cb.state = breakerClosed
		cb.successCount = 0
	}
	return nil
}

func (cb *circuitBreaker) currentState() breakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}
