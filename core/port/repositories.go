package port

import (
	"context"

	"github.com/Logitar/Identity-sub002/core/domain"
)

// Repositories load aggregates by replaying their streams and persist their
// pending changes. Load methods return repository.ErrNotFound for unknown or
// deleted aggregates; LoadBy* methods scoped to a tenant treat the empty
// TenantID as the global realm. Save accepts a batch so managers can persist
// dependents together, and must clear each saved aggregate's pending changes.

// ApiKeyRepository handles ApiKey streams.
type ApiKeyRepository interface {
	Load(ctx context.Context, id domain.ApiKeyID) (*domain.ApiKey, error)
	LoadByRole(ctx context.Context, roleID domain.RoleID) ([]*domain.ApiKey, error)
	Save(ctx context.Context, apiKeys ...*domain.ApiKey) error
}

// RoleRepository handles Role streams.
type RoleRepository interface {
	Load(ctx context.Context, id domain.RoleID) (*domain.Role, error)
	LoadByUniqueName(ctx context.Context, tenant domain.TenantID, name domain.UniqueName) (*domain.Role, error)
	Save(ctx context.Context, roles ...*domain.Role) error
}

// SessionRepository handles Session streams.
type SessionRepository interface {
	Load(ctx context.Context, id domain.SessionID) (*domain.Session, error)
	LoadByUser(ctx context.Context, userID domain.UserID) ([]*domain.Session, error)
	Save(ctx context.Context, sessions ...*domain.Session) error
}

// UserRepository handles User streams.
type UserRepository interface {
	Load(ctx context.Context, id domain.UserID) (*domain.User, error)
	LoadByUniqueName(ctx context.Context, tenant domain.TenantID, name domain.UniqueName) (*domain.User, error)
	LoadByRole(ctx context.Context, roleID domain.RoleID) ([]*domain.User, error)
	Save(ctx context.Context, users ...*domain.User) error
}

// OneTimePasswordRepository handles OneTimePassword streams.
type OneTimePasswordRepository interface {
	Load(ctx context.Context, id domain.OneTimePasswordID) (*domain.OneTimePassword, error)
	Save(ctx context.Context, passwords ...*domain.OneTimePassword) error
}
