package safety

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrCircuitOpen is returned by Call while the breaker rejects calls
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreakerState is the position of a breaker. The numeric values are
// exported as a gauge, so their order is stable.
type CircuitBreakerState int

const (
	StateClosed CircuitBreakerState = iota
	StateOpen
	StateHalfOpen
)

func (s CircuitBreakerState) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// CircuitBreakerConfig tunes when an upstream is considered down
type CircuitBreakerConfig struct {
	FailureThreshold uint32        // consecutive failures that open the circuit
	SuccessThreshold uint32        // half-open successes that close it again
	Timeout          time.Duration // how long the circuit stays open

	// IsFailure decides which errors count against the upstream; nil counts every error
	IsFailure func(error) bool
}

// CircuitBreakerStats is a point-in-time view of a breaker
type CircuitBreakerStats struct {
	Name        string
	State       CircuitBreakerState
	Failures    uint32
	Rejected    uint64
	LastFailure error
	RetryAt     time.Time
}

// CircuitBreaker stops calling an upstream after repeated failures and probes
// it again once Timeout has passed.
type CircuitBreaker struct {
	name   string
	config CircuitBreakerConfig

	mu          sync.Mutex
	state       CircuitBreakerState
	failures    uint32
	probes      uint32
	rejected    uint64
	lastFailure error
	retryAt     time.Time
	onChange    func(from, to CircuitBreakerState)

	now func() time.Time
}

// NewCircuitBreaker creates a closed breaker. Zero config fields fall back to
// 5 failures, 1 probe and 30s.
func NewCircuitBreaker(name string, config CircuitBreakerConfig) *CircuitBreaker {
	if config.FailureThreshold == 0 {
		config.FailureThreshold = 5
	}
	if config.SuccessThreshold == 0 {
		config.SuccessThreshold = 1
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	return &CircuitBreaker{name: name, config: config, now: time.Now}
}

// SetStateChangeCallback registers fn for every transition. fn runs with the
// breaker locked and must not call back into it.
func (cb *CircuitBreaker) SetStateChangeCallback(fn func(from, to CircuitBreakerState)) {
	cb.mu.Lock()
	cb.onChange = fn
	cb.mu.Unlock()
}

// Call runs fn unless the circuit is open, in which case it fails fast with
// an error wrapping ErrCircuitOpen. Errors rejected by IsFailure are returned
// but count as a healthy upstream.
func (cb *CircuitBreaker) Call(fn func() error) error {
	if err := cb.admit(); err != nil {
		return err
	}

	err := fn()
	counts := err != nil && (cb.config.IsFailure == nil || cb.config.IsFailure(err))

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if counts {
		cb.onFailure(err)
	} else {
		cb.onSuccess()
	}
	return err
}

func (cb *CircuitBreaker) admit() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state != StateOpen {
		return nil
	}
	if cb.now().Before(cb.retryAt) {
		cb.rejected++
		return fmt.Errorf("%s: %w (retry after %s)", cb.name, ErrCircuitOpen, cb.retryAt.Format(time.RFC3339))
	}
	cb.transition(StateHalfOpen)
	return nil
}

func (cb *CircuitBreaker) onSuccess() {
	cb.failures = 0
	if cb.state != StateHalfOpen {
		return
	}
	cb.probes++
	if cb.probes >= cb.config.SuccessThreshold {
		cb.transition(StateClosed)
	}
}

// onFailure opens the circuit at the threshold, or at once while probing
func (cb *CircuitBreaker) onFailure(err error) {
	cb.failures++
	cb.lastFailure = err
	if cb.state == StateHalfOpen || cb.failures >= cb.config.FailureThreshold {
		cb.retryAt = cb.now().Add(cb.config.Timeout)
		cb.transition(StateOpen)
	}
}

func (cb *CircuitBreaker) transition(to CircuitBreakerState) {
	from := cb.state
	if from == to {
		return
	}
	cb.state = to
	cb.probes = 0
	if to == StateClosed {
		cb.failures = 0
		cb.lastFailure = nil
	}
	if cb.onChange != nil {
		cb.onChange(from, to)
	}
}

// GetState returns the current state
func (cb *CircuitBreaker) GetState() CircuitBreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Stats returns the breaker counters
func (cb *CircuitBreaker) Stats() CircuitBreakerStats {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return CircuitBreakerStats{
		Name:        cb.name,
		State:       cb.state,
		Failures:    cb.failures,
		Rejected:    cb.rejected,
		LastFailure: cb.lastFailure,
		RetryAt:     cb.retryAt,
	}
}

// Reset closes the breaker
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.transition(StateClosed)
	cb.failures = 0
	cb.lastFailure = nil
}
