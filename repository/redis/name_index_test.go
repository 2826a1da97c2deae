package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	red "github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*red.Client, *miniredis.Miniredis) {
	t.Helper()

	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := red.NewClient(&red.Options{Addr: server.Addr()})

	t.Cleanup(func() {
		_ = client.Close()
		server.Close()
	})

	return client, server
}

func TestNameIndexBindAndResolve(t *testing.T) {
	client, _ := newTestRedis(t)
	index := NewNameIndex(client, "", 5*time.Minute)

	ctx := context.Background()

	streamID, err := index.Resolve(ctx, "role", "acme", "member")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if streamID != "" {
		t.Errorf("expected a miss, got %q", streamID)
	}

	if err := index.Bind(ctx, "role", "acme", "member", "acme:role-1"); err != nil {
		t.Fatalf("Bind: %v", err)
	}

	streamID, err = index.Resolve(ctx, "role", "acme", "member")
	if err != nil {
		t.Fatalf("Resolve after bind: %v", err)
	}
	if streamID != "acme:role-1" {
		t.Errorf("Resolve = %q, want acme:role-1", streamID)
	}

	// Global scope and tenant scope do not share entries.
	streamID, err = index.Resolve(ctx, "role", "", "member")
	if err != nil {
		t.Fatalf("Resolve global: %v", err)
	}
	if streamID != "" {
		t.Errorf("global scope should miss, got %q", streamID)
	}
}

func TestNameIndexUnbind(t *testing.T) {
	client, _ := newTestRedis(t)
	index := NewNameIndex(client, "names", time.Minute)

	ctx := context.Background()
	if err := index.Bind(ctx, "user", "", "jean", "user-1"); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if err := index.Unbind(ctx, "user", "", "jean"); err != nil {
		t.Fatalf("Unbind: %v", err)
	}

	streamID, err := index.Resolve(ctx, "user", "", "jean")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if streamID != "" {
		t.Errorf("expected a miss after unbind, got %q", streamID)
	}
}

func TestNameIndexEntriesExpire(t *testing.T) {
	client, server := newTestRedis(t)
	index := NewNameIndex(client, "", time.Minute)

	ctx := context.Background()
	if err := index.Bind(ctx, "user", "", "jean", "user-1"); err != nil {
		t.Fatalf("Bind: %v", err)
	}

	server.FastForward(2 * time.Minute)

	streamID, err := index.Resolve(ctx, "user", "", "jean")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if streamID != "" {
		t.Errorf("expected the entry to expire, got %q", streamID)
	}
}
