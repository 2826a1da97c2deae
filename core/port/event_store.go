package port

import (
	"context"

	"github.com/Logitar/Identity-sub002/core/domain"
)

// ReadOptions bounds a stream read. Zero values mean "no bound".
type ReadOptions struct {
	FromVersion int64
	ToVersion   int64
}

// EventStore persists ordered, gap-free aggregate streams. Append must reject
// the batch with repository.ErrVersionConflict when the stream has advanced
// past expectedVersion, so optimistic concurrency can be detected at this
// boundary; the core never retries.
type EventStore interface {
	Append(ctx context.Context, streamID string, expectedVersion int64, events []domain.Event) error
	ReadStream(ctx context.Context, streamID string, opts ReadOptions) ([]domain.Event, error)
}
