package mocks

import "sync"

// Metrics is an in-memory counter implementation of the domain Metrics
// interface for tests.
type Metrics struct {
	mu         sync.Mutex
	errors     map[string]int
	dropped    map[string]int
	decisions  map[string]int
	promotions map[string]int
	prices     map[string]float64
}

// NewMetrics returns empty counters.
func NewMetrics() *Metrics {
	return &Metrics{
		errors:     make(map[string]int),
		dropped:    make(map[string]int),
		decisions:  make(map[string]int),
		promotions: make(map[string]int),
		prices:     make(map[string]float64),
	}
}

func (m *Metrics) RecordMessageSent(string, string) {}
func (m *Metrics) RecordLatency(string, float64)    {}

func (m *Metrics) RecordError(kind string) {
	m.mu.Lock()
	m.errors[kind]++
	m.mu.Unlock()
}

func (m *Metrics) RecordLastPrice(symbol string, price float64) {
	m.mu.Lock()
	m.prices[symbol] = price
	m.mu.Unlock()
}

func (m *Metrics) RecordDropped(stage string) {
	m.mu.Lock()
	m.dropped[stage]++
	m.mu.Unlock()
}

func (m *Metrics) RecordDecision(outcome, _ string) {
	m.mu.Lock()
	m.decisions[outcome]++
	m.mu.Unlock()
}

func (m *Metrics) RecordPromotion(class string) {
	m.mu.Lock()
	m.promotions[class]++
	m.mu.Unlock()
}

// Errors returns the error count of kind.
func (m *Metrics) Errors(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errors[kind]
}

// Dropped returns the drop count of stage.
func (m *Metrics) Dropped(stage string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dropped[stage]
}

// Decisions returns the count of outcome.
func (m *Metrics) Decisions(outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.decisions[outcome]
}

// Promotions returns the promotion count of class.
func (m *Metrics) Promotions(class string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.promotions[class]
}

// LastPrice returns the last recorded price of symbol.
func (m *Metrics) LastPrice(symbol string) (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.prices[symbol]
	return p, ok
}
