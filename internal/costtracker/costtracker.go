package costtracker

import (
	"context"
	"sync"
	"time"
)

// CostEvent represents a single AI usage event and its cost.
type CostEvent struct {
	Operation    string // e.g., "classification"
	Provider     string
	Model        string
	InputTokens  int
	OutputTokens int
	AmountUSD    float64
	Timestamp    time.Time
}

// CostTracker provides methods to record and report costs.
type CostTracker interface {
	RecordCost(ctx context.Context, event CostEvent) error
	TotalCost(ctx context.Context) (float64, error)
}

// New returns a tracker that discards every event.
func New() CostTracker {
	return &noopCostTracker{}
}

type noopCostTracker struct{}

func (n *noopCostTracker) RecordCost(ctx context.Context, event CostEvent) error { return nil }
func (n *noopCostTracker) TotalCost(ctx context.Context) (float64, error)        { return 0, nil }

// MemoryTracker keeps cost events in memory for the lifetime of the process.
type MemoryTracker struct {
	mu     sync.Mutex
	events []CostEvent
	total  float64

	// OnRecord, when set, is called after each event is stored.
	OnRecord func(CostEvent)
}

func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{}
}

func (m *MemoryTracker) RecordCost(ctx context.Context, event CostEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	m.mu.Lock()
	m.events = append(m.events, event)
	m.total += event.AmountUSD
	hook := m.OnRecord
	m.mu.Unlock()

	if hook != nil {
		hook(event)
	}
	return nil
}

func (m *MemoryTracker) TotalCost(ctx context.Context) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.total, nil
}

// Events returns a copy of the recorded events in recording order.
func (m *MemoryTracker) Events() []CostEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CostEvent, len(m.events))
	copy(out, m.events)
	return out
}

// TokenCost prices a call from its token counts.
func TokenCost(inputTokens, outputTokens int, inputPerToken, outputPerToken float64) float64 {
	return float64(inputTokens)*inputPerToken + float64(outputTokens)*outputPerToken
}
