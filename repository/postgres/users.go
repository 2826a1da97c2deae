package postgres

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Logitar/Identity-sub002/core/domain"
	"github.com/Logitar/Identity-sub002/core/port"
	"github.com/Logitar/Identity-sub002/repository"
)

// UserRepository is the PostgreSQL port.UserRepository.
type UserRepository struct {
	streams
}

// NewUserRepository constructs a PostgreSQL-backed user repository.
func NewUserRepository(pool pgPool, store *EventStore, cache NameCache, logger *zap.Logger) *UserRepository {
	return &UserRepository{newStreams(pool, store, cache, logger)}
}

// Load replays a user stream.
func (r *UserRepository) Load(ctx context.Context, id domain.UserID) (*domain.User, error) {
	return r.load(ctx, id.Value())
}

// LoadByUniqueName resolves a user through the unique-name index.
func (r *UserRepository) LoadByUniqueName(ctx context.Context, tenant domain.TenantID, name domain.UniqueName) (*domain.User, error) {
	streamID, err := r.resolveUniqueName(ctx, kindUser, tenant, name)
	if err != nil {
		return nil, err
	}
	return r.load(ctx, streamID)
}

// LoadByRole returns every live user holding the role.
func (r *UserRepository) LoadByRole(ctx context.Context, roleID domain.RoleID) ([]*domain.User, error) {
	holders, err := r.holdersOf(ctx, roleID.Value(), kindUser)
	if err != nil {
		return nil, err
	}
	users := make([]*domain.User, 0, len(holders))
	for _, streamID := range holders {
		user, err := r.load(ctx, streamID)
		if err != nil {
			if repository.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// Save appends pending changes and keeps the name and role indexes in step.
func (r *UserRepository) Save(ctx context.Context, users ...*domain.User) error {
	aggs := make([]aggregate, len(users))
	for i, user := range users {
		aggs[i] = user
	}
	return r.save(ctx, r.index, aggs...)
}

func (r *UserRepository) load(ctx context.Context, streamID string) (*domain.User, error) {
	history, err := r.history(ctx, streamID)
	if err != nil {
		return nil, err
	}
	user, err := domain.LoadUser(history)
	if err != nil {
		return nil, fmt.Errorf("replay user %s: %w", streamID, err)
	}
	if user.IsDeleted() {
		return nil, fmt.Errorf("%w: user %s is deleted", repository.ErrNotFound, streamID)
	}
	return user, nil
}

func (r *UserRepository) index(ctx context.Context, exec pgExecutor, event domain.Event) error {
	switch e := event.(type) {
	case *domain.UserCreated:
		previous, err := r.upsertUniqueName(ctx, exec, kindUser, e.StreamID(), e.UniqueName)
		if err != nil {
			return err
		}
		r.invalidateName(ctx, kindUser, e.StreamID(), previous)
	case *domain.UserUniqueNameChanged:
		previous, err := r.upsertUniqueName(ctx, exec, kindUser, e.StreamID(), e.UniqueName)
		if err != nil {
			return err
		}
		r.invalidateName(ctx, kindUser, e.StreamID(), previous)
	case *domain.UserRoleAdded:
		return r.addRoleReference(ctx, exec, e.RoleID, kindUser, e.StreamID())
	case *domain.UserRoleRemoved:
		return r.removeRoleReference(ctx, exec, e.RoleID, kindUser, e.StreamID())
	case *domain.UserDeleted:
		previous, err := r.removeUniqueName(ctx, exec, kindUser, e.StreamID())
		if err != nil {
			return err
		}
		r.invalidateName(ctx, kindUser, e.StreamID(), previous)
		return r.removeHolderReferences(ctx, exec, kindUser, e.StreamID())
	}
	return nil
}

var _ port.UserRepository = (*UserRepository)(nil)
