package postgres

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Logitar/Identity-sub002/core/domain"
	"github.com/Logitar/Identity-sub002/core/port"
	"github.com/Logitar/Identity-sub002/repository"
)

// RoleRepository is the PostgreSQL port.RoleRepository.
type RoleRepository struct {
	streams
}

// NewRoleRepository constructs a PostgreSQL-backed role repository.
func NewRoleRepository(pool pgPool, store *EventStore, cache NameCache, logger *zap.Logger) *RoleRepository {
	return &RoleRepository{newStreams(pool, store, cache, logger)}
}

// Load replays a role stream.
func (r *RoleRepository) Load(ctx context.Context, id domain.RoleID) (*domain.Role, error) {
	return r.load(ctx, id.Value())
}

// LoadByUniqueName resolves a role through the unique-name index.
func (r *RoleRepository) LoadByUniqueName(ctx context.Context, tenant domain.TenantID, name domain.UniqueName) (*domain.Role, error) {
	streamID, err := r.resolveUniqueName(ctx, kindRole, tenant, name)
	if err != nil {
		return nil, err
	}
	return r.load(ctx, streamID)
}

// Save appends pending changes and keeps the unique-name index in step.
func (r *RoleRepository) Save(ctx context.Context, roles ...*domain.Role) error {
	aggs := make([]aggregate, len(roles))
	for i, role := range roles {
		aggs[i] = role
	}
	return r.save(ctx, r.index, aggs...)
}

func (r *RoleRepository) load(ctx context.Context, streamID string) (*domain.Role, error) {
	history, err := r.history(ctx, streamID)
	if err != nil {
		return nil, err
	}
	role, err := domain.LoadRole(history)
	if err != nil {
		return nil, fmt.Errorf("replay role %s: %w", streamID, err)
	}
	if role.IsDeleted() {
		return nil, fmt.Errorf("%w: role %s is deleted", repository.ErrNotFound, streamID)
	}
	return role, nil
}

func (r *RoleRepository) index(ctx context.Context, exec pgExecutor, event domain.Event) error {
	switch e := event.(type) {
	case *domain.RoleCreated:
		previous, err := r.upsertUniqueName(ctx, exec, kindRole, e.StreamID(), e.UniqueName)
		if err != nil {
			return err
		}
		r.invalidateName(ctx, kindRole, e.StreamID(), previous)
	case *domain.RoleUniqueNameChanged:
		previous, err := r.upsertUniqueName(ctx, exec, kindRole, e.StreamID(), e.UniqueName)
		if err != nil {
			return err
		}
		r.invalidateName(ctx, kindRole, e.StreamID(), previous)
	case *domain.RoleDeleted:
		previous, err := r.removeUniqueName(ctx, exec, kindRole, e.StreamID())
		if err != nil {
			return err
		}
		r.invalidateName(ctx, kindRole, e.StreamID(), previous)
	}
	return nil
}

var _ port.RoleRepository = (*RoleRepository)(nil)
