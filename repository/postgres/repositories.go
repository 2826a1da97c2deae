package postgres

import (
	"go.uber.org/zap"

	"github.com/Logitar/Identity-sub002/core/port"
)

// Repositories groups the PostgreSQL repository implementations over one
// shared event store.
type Repositories struct {
	Store            *EventStore
	ApiKeys          *ApiKeyRepository
	Roles            *RoleRepository
	Sessions         *SessionRepository
	Users            *UserRepository
	OneTimePasswords *OneTimePasswordRepository
}

// NewRepositories wires all repositories backed by the provided pool. cache
// may be nil to skip the unique-name cache.
func NewRepositories(pool pgPool, hasher port.PasswordHasher, cache NameCache, logger *zap.Logger) *Repositories {
	store := NewEventStore(pool, NewCodec(hasher), logger)
	return &Repositories{
		Store:            store,
		ApiKeys:          NewApiKeyRepository(pool, store, logger),
		Roles:            NewRoleRepository(pool, store, cache, logger),
		Sessions:         NewSessionRepository(pool, store, logger),
		Users:            NewUserRepository(pool, store, cache, logger),
		OneTimePasswords: NewOneTimePasswordRepository(pool, store, logger),
	}
}
