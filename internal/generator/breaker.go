package generator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/geocoder89/mealmood/internal/domain/plan"
	"github.com/geocoder89/mealmood/internal/domain/user"
)

// ErrCircuitOpen is returned without calling the provider while the breaker
// is open. It also matches ErrGeneration.
var ErrCircuitOpen = fmt.Errorf("%w: provider circuit open", ErrGeneration)

// OpenCircuitError is what Protected returns while open. RetryAfter is the
// time left until the next trial call may be let through.
type OpenCircuitError struct {
	RetryAfter time.Duration
}

func (e *OpenCircuitError) Error() string { return ErrCircuitOpen.Error() }

func (e *OpenCircuitError) Unwrap() error { return ErrCircuitOpen }

type breakerState string

const (
	stateClosed   breakerState = "closed"
	stateOpen     breakerState = "open"
	stateHalfOpen breakerState = "half_open"
)

type BreakerConfig struct {
	FailureThreshold int           // consecutive provider failures that open the circuit
	Cooldown         time.Duration // time spent open before a trial call
	HalfOpenMaxCalls int           // concurrent trial calls allowed while half open
}

// Protected stops calling a failing provider for a cooldown period.
// Caller cancellations do not count as provider failures.
type Protected struct {
	next Generator
	cfg  BreakerConfig
	now  func() time.Time

	mu                  sync.Mutex
	state               breakerState
	consecutiveFailures int
	openedAt            time.Time
	halfOpenInFlight    int
}

func WithBreaker(next Generator, cfg BreakerConfig) *Protected {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}
	if cfg.HalfOpenMaxCalls <= 0 {
		cfg.HalfOpenMaxCalls = 1
	}

	return &Protected{
		next:  next,
		cfg:   cfg,
		now:   time.Now,
		state: stateClosed,
	}
}

func (p *Protected) Name() string { return p.next.Name() }

func (p *Protected) Generate(ctx context.Context, mood string, prefs user.Preferences) (plan.Content, error) {
	if wait, ok := p.allow(); !ok {
		return plan.Content{}, &OpenCircuitError{RetryAfter: wait}
	}

	out, err := p.next.Generate(ctx, mood, prefs)
	p.record(ctx, err)

	return out, err
}

// State reports the breaker position for logs and tests.
func (p *Protected) State() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return string(p.state)
}

// allow reports whether a call may reach the provider and, when it may not,
// how long the caller should wait.
func (p *Protected) allow() (time.Duration, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case stateOpen:
		if left := p.cfg.Cooldown - p.now().Sub(p.openedAt); left > 0 {
			return left, false
		}
		p.state = stateHalfOpen
		p.halfOpenInFlight = 1
		return 0, true
	case stateHalfOpen:
		if p.halfOpenInFlight >= p.cfg.HalfOpenMaxCalls {
			// a trial call is in flight.
			return time.Second, false
		}
		p.halfOpenInFlight++
		return 0, true
	default:
		return 0, true
	}
}

func (p *Protected) record(ctx context.Context, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == stateHalfOpen && p.halfOpenInFlight > 0 {
		p.halfOpenInFlight--
	}

	if err == nil {
		p.consecutiveFailures = 0
		p.state = stateClosed
		return
	}

	// The caller gave up, so whatever the provider returned says nothing
	// about its health. Deadlines still count as failures.
	if errors.Is(ctx.Err(), context.Canceled) {
		return
	}

	p.consecutiveFailures++

	if p.state == stateHalfOpen || p.consecutiveFailures >= p.cfg.FailureThreshold {
		p.state = stateOpen
		p.openedAt = p.now()
	}
}
