package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/Logitar/Identity-sub002/infra/config"
	infraredis "github.com/Logitar/Identity-sub002/infra/redis"
)

const defaultNamePrefix = "identity:names"

// NameIndex caches unique-name resolutions so repeated by-name lookups skip
// the index table. Entries expire on their own; writers unbind stale names
// eagerly after a rename or delete.
type NameIndex struct {
	client *red.Client
	prefix string
	ttl    time.Duration
}

// NewNameIndex constructs a name cache with the provided key prefix and TTL.
func NewNameIndex(client *red.Client, keyPrefix string, ttl time.Duration) *NameIndex {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultNamePrefix
	}
	return &NameIndex{client: client, prefix: prefix, ttl: ttl}
}

// NewNameIndexFromClient builds a name cache on top of the managed connection,
// taking the entry TTL from configuration.
func NewNameIndexFromClient(client *infraredis.Client, cfg config.RedisSettings) *NameIndex {
	return NewNameIndex(client.Client(), defaultNamePrefix, cfg.IndexTTL)
}

// Resolve returns the cached stream id for a name, or empty on a miss.
func (i *NameIndex) Resolve(ctx context.Context, kind, tenant, name string) (string, error) {
	streamID, err := i.client.Get(ctx, i.key(kind, tenant, name)).Result()
	if err != nil {
		if errors.Is(err, red.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("resolve name: %w", err)
	}
	return streamID, nil
}

// Bind caches a name resolution.
func (i *NameIndex) Bind(ctx context.Context, kind, tenant, name, streamID string) error {
	if err := i.client.Set(ctx, i.key(kind, tenant, name), streamID, i.ttl).Err(); err != nil {
		return fmt.Errorf("bind name: %w", err)
	}
	return nil
}

// Unbind drops a cached resolution.
func (i *NameIndex) Unbind(ctx context.Context, kind, tenant, name string) error {
	if err := i.client.Del(ctx, i.key(kind, tenant, name)).Err(); err != nil {
		return fmt.Errorf("unbind name: %w", err)
	}
	return nil
}

func (i *NameIndex) key(kind, tenant, name string) string {
	if tenant == "" {
		tenant = "-"
	}
	return fmt.Sprintf("%s:%s:%s:%s", i.prefix, kind, tenant, name)
}
