package kafka

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/Logitar/Identity-sub002/core/domain"
)

// StubPublisher records published events in memory. It is used in tests and
// in deployments that do not run a broker.
type StubPublisher struct {
	logger *zap.Logger

	mu     sync.Mutex
	events []domain.Event
}

// NewStubPublisher creates an in-memory publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

// Publish records the events.
func (p *StubPublisher) Publish(_ context.Context, events ...domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	for _, event := range events {
		p.logger.Debug("Event published (stub)",
			zap.String("kind", event.Kind()),
			zap.String("stream_id", event.StreamID()),
			zap.Int64("version", event.EventVersion()),
		)
	}
	return nil
}

// Events returns a copy of everything published so far.
func (p *StubPublisher) Events() []domain.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.Event, len(p.events))
	copy(out, p.events)
	return out
}

// Reset discards recorded events.
func (p *StubPublisher) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}
