// Package circuitbreaker stops calling a failing upstream for a while so
// callers fail fast instead of waiting on timeouts.
package circuitbreaker

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alorle/m3u8-editor/internal/metrics"
)

// State represents the current state of the circuit breaker
type State int

const (
	// StateClosed means the circuit is operating normally
	StateClosed State = iota
	// StateOpen means the circuit is blocking all requests
	StateOpen
	// StateHalfOpen means the circuit is testing if it can close
	StateHalfOpen
)

// String returns the string representation of a State
func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF-OPEN"
	default:
		return "UNKNOWN"
	}
}

// Config contains the configuration for a circuit breaker
type Config struct {
	Name             string           // Label for logs and metrics
	FailureThreshold int              // Number of consecutive failures before opening
	Timeout          time.Duration    // How long to wait in OPEN before transitioning to HALF-OPEN
	HalfOpenRequests int              // Number of test requests allowed in HALF-OPEN state
	Logger           *slog.Logger     // Logger for state changes (optional)
	Now              func() time.Time // Clock (optional, defaults to time.Now)
}

var (
	// ErrCircuitOpen is returned when the circuit breaker is in OPEN state
	ErrCircuitOpen = errors.New("circuit breaker is open")
	// ErrHalfOpenLimitReached is returned when too many requests are made in HALF-OPEN state
	ErrHalfOpenLimitReached = errors.New("circuit breaker half-open request limit reached")
)

// Breaker guards calls to one upstream.
type Breaker struct {
	config Config
	logger *slog.Logger
	mu     sync.Mutex

	state             State
	failureCount      int
	halfOpenRequests  int
	halfOpenSuccesses int
	openedAt          time.Time
}

// New creates a new circuit breaker with the given configuration
func New(cfg Config) *Breaker {
	if cfg.Name == "" {
		cfg.Name = "default"
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.HalfOpenRequests <= 0 {
		cfg.HalfOpenRequests = 1
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	metrics.SetCircuitBreakerState(cfg.Name, StateClosed.String())

	return &Breaker{
		config: cfg,
		logger: logger.With("breaker", cfg.Name),
		state:  StateClosed,
	}
}

// Execute runs fn if the circuit allows it. fn runs without the lock held.
func (b *Breaker) Execute(fn func() error) error {
	b.mu.Lock()
	b.advance()

	switch b.state {
	case StateOpen:
		b.mu.Unlock()
		return ErrCircuitOpen
	case StateHalfOpen:
		if b.halfOpenRequests >= b.config.HalfOpenRequests {
			b.mu.Unlock()
			return ErrHalfOpenLimitReached
		}
		b.halfOpenRequests++
	case StateClosed:
	default:
		state := b.state
		b.mu.Unlock()
		return fmt.Errorf("unknown circuit breaker state: %d", state)
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.record(err)
	return err
}

// advance moves an expired OPEN circuit to HALF-OPEN.
// Must be called with lock held
func (b *Breaker) advance() {
	if b.state == StateOpen && b.config.Now().Sub(b.openedAt) >= b.config.Timeout {
		b.transitionTo(StateHalfOpen)
	}
}

// record applies the outcome of a call.
// Must be called with lock held
func (b *Breaker) record(err error) {
	switch b.state {
	case StateHalfOpen:
		if err != nil {
			b.transitionTo(StateOpen)
			return
		}
		b.halfOpenSuccesses++
		if b.halfOpenSuccesses >= b.config.HalfOpenRequests {
			b.transitionTo(StateClosed)
		}
	case StateClosed:
		if err == nil {
			b.failureCount = 0
			return
		}
		b.failureCount++
		if b.failureCount >= b.config.FailureThreshold {
			b.transitionTo(StateOpen)
		}
	}
}

// State returns the current state of the circuit breaker
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.advance()
	return b.state
}

// Reset resets the circuit breaker to CLOSED state
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.transitionTo(StateClosed)
}

// transitionTo changes the circuit breaker state
// Must be called with lock held
func (b *Breaker) transitionTo(newState State) {
	if b.state == newState {
		return
	}

	oldState := b.state
	b.state = newState

	b.logger.Warn("circuit breaker state changed", "from", oldState.String(), "to", newState.String())
	metrics.SetCircuitBreakerState(b.config.Name, newState.String())

	switch newState {
	case StateClosed:
		b.failureCount = 0
		b.halfOpenRequests = 0
		b.halfOpenSuccesses = 0
		b.openedAt = time.Time{}

	case StateOpen:
		metrics.RecordCircuitBreakerTrip(b.config.Name)
		b.openedAt = b.config.Now()
		b.halfOpenRequests = 0
		b.halfOpenSuccesses = 0

	case StateHalfOpen:
		b.halfOpenRequests = 0
		b.halfOpenSuccesses = 0
	}
}
