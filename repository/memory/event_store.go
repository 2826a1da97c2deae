package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/Logitar/Identity-sub002/core/domain"
	"github.com/Logitar/Identity-sub002/core/port"
	"github.com/Logitar/Identity-sub002/repository"
)

// EventStore keeps streams in process memory. It backs tests and embedded
// setups, and is the reference implementation of the optimistic-concurrency
// contract: an Append whose expected version does not match the stream head is
// rejected with repository.ErrVersionConflict.
type EventStore struct {
	mu      sync.RWMutex
	streams map[string][]domain.Event
}

// NewEventStore returns an empty in-memory event store.
func NewEventStore() *EventStore {
	return &EventStore{streams: make(map[string][]domain.Event)}
}

// Append implements port.EventStore.
func (s *EventStore) Append(ctx context.Context, streamID string, expectedVersion int64, events []domain.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stream := s.streams[streamID]
	head := int64(len(stream))
	if head != expectedVersion {
		return fmt.Errorf("%w: stream %s is at version %d, expected %d",
			repository.ErrVersionConflict, streamID, head, expectedVersion)
	}
	for i, event := range events {
		if want := expectedVersion + int64(i) + 1; event.EventVersion() != want {
			return fmt.Errorf("append stream %s: event version %d out of sequence, want %d",
				streamID, event.EventVersion(), want)
		}
	}
	s.streams[streamID] = append(stream, events...)
	return nil
}

// ReadStream implements port.EventStore. An unknown stream yields an empty
// history, not an error; repositories translate that into ErrNotFound.
func (s *EventStore) ReadStream(ctx context.Context, streamID string, opts port.ReadOptions) ([]domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	stream := s.streams[streamID]
	out := make([]domain.Event, 0, len(stream))
	for _, event := range stream {
		if opts.FromVersion > 0 && event.EventVersion() < opts.FromVersion {
			continue
		}
		if opts.ToVersion > 0 && event.EventVersion() > opts.ToVersion {
			break
		}
		out = append(out, event)
	}
	return out, nil
}
