package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/Logitar/Identity-sub002/core/domain"
	"github.com/Logitar/Identity-sub002/core/port"
	"github.com/Logitar/Identity-sub002/repository"
)

func mustDisplayName(t *testing.T, value string) domain.DisplayName {
	t.Helper()
	name, err := domain.NewDisplayName(value)
	if err != nil {
		t.Fatalf("NewDisplayName(%q): %v", value, err)
	}
	return name
}

func TestEventStoreAppendAndRead(t *testing.T) {
	ctx := context.Background()
	store := NewEventStore()

	key := domain.NewApiKey(domain.NewApiKeyID(""), mustDisplayName(t, "Key"), nil, "admin")
	key.SetDisplayName(mustDisplayName(t, "Renamed"))
	key.Update("admin")

	if err := store.Append(ctx, key.StreamID(), 0, key.Changes()); err != nil {
		t.Fatalf("Append: %v", err)
	}

	events, err := store.ReadStream(ctx, key.StreamID(), port.ReadOptions{})
	if err != nil {
		t.Fatalf("ReadStream: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}

	bounded, err := store.ReadStream(ctx, key.StreamID(), port.ReadOptions{FromVersion: 2})
	if err != nil {
		t.Fatalf("ReadStream bounded: %v", err)
	}
	if len(bounded) != 1 || bounded[0].EventVersion() != 2 {
		t.Errorf("bounded read = %d events, want one at version 2", len(bounded))
	}
}

func TestEventStoreVersionConflict(t *testing.T) {
	ctx := context.Background()
	store := NewEventStore()

	key := domain.NewApiKey(domain.NewApiKeyID(""), mustDisplayName(t, "Key"), nil, "admin")
	if err := store.Append(ctx, key.StreamID(), 0, key.Changes()); err != nil {
		t.Fatalf("Append: %v", err)
	}

	// A second writer appending at the stale expected version must conflict.
	if err := store.Append(ctx, key.StreamID(), 0, key.Changes()); !errors.Is(err, repository.ErrVersionConflict) {
		t.Errorf("expected ErrVersionConflict, got %v", err)
	}
}

func TestEventStoreUnknownStreamIsEmpty(t *testing.T) {
	store := NewEventStore()
	events, err := store.ReadStream(context.Background(), "missing", port.ReadOptions{})
	if err != nil {
		t.Fatalf("ReadStream: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected empty history, got %d events", len(events))
	}
}
