package breaker

import (
	"sync"
	"time"

	"github.com/sony/gobreaker"
)

// Config holds circuit breaker thresholds.
type Config struct {
	MaxRequests         uint32        // requests allowed while half-open
	Interval            time.Duration // closed-state count reset period
	Timeout             time.Duration // open-state duration before half-open
	ConsecutiveFailures uint32        // trips after this many failures in a row

	// IsSuccessful classifies errors that should not count as failures.
	// Nil counts only a nil error as success.
	IsSuccessful func(err error) bool
}

// Manager keeps one breaker per key.
type Manager struct {
	mu       sync.Mutex
	cfg      Config
	breakers map[string]*gobreaker.CircuitBreaker
	onChange func(name string, from, to gobreaker.State)
}

// New creates a Manager. ConsecutiveFailures of 0 defaults to 5.
func New(cfg Config) *Manager {
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = 5
	}
	return &Manager{cfg: cfg, breakers: make(map[string]*gobreaker.CircuitBreaker)}
}

// OnStateChange registers a callback for breaker transitions.
func (m *Manager) OnStateChange(fn func(name string, from, to gobreaker.State)) {
	m.mu.Lock()
	m.onChange = fn
	m.mu.Unlock()
}

func (m *Manager) get(name string) *gobreaker.CircuitBreaker {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cb, ok := m.breakers[name]; ok {
		return cb
	}
	threshold := m.cfg.ConsecutiveFailures
	onChange := m.onChange
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: m.cfg.MaxRequests,
		Interval:    m.cfg.Interval,
		Timeout:     m.cfg.Timeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= threshold
		},
		IsSuccessful: m.cfg.IsSuccessful,
		OnStateChange: func(name string, from, to gobreaker.State) {
			if onChange != nil {
				onChange(name, from, to)
			}
		},
	})
	m.breakers[name] = cb
	return cb
}

// Execute runs fn through the breaker for name. While the breaker is open
// fn is not called and gobreaker.ErrOpenState is returned.
func (m *Manager) Execute(name string, fn func() (interface{}, error)) (interface{}, error) {
	return m.get(name).Execute(fn)
}

// State reports the current state for name.
func (m *Manager) State(name string) gobreaker.State {
	return m.get(name).State()
}
