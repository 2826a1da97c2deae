package port

import (
	"context"

	"github.com/Logitar/Identity-sub002/core/domain"
)

// EventPublisher hands committed events to downstream consumers (projections,
// audit, messaging). Publication is best-effort: managers log failures and
// never fail a completed save because of them.
type EventPublisher interface {
	Publish(ctx context.Context, events ...domain.Event) error
}
