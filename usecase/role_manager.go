package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Logitar/Identity-sub002/core/domain"
	"github.com/Logitar/Identity-sub002/core/port"
	"github.com/Logitar/Identity-sub002/repository"
)

// RoleManager coordinates every Role save. Roles live in their own streams, so
// invariants spanning other aggregates (unique-name collisions, holders of a
// role being deleted) are enforced here as an ordered pipeline of reads and
// writes issued immediately before the role itself is persisted.
type RoleManager struct {
	roles     port.RoleRepository
	apiKeys   port.ApiKeyRepository
	users     port.UserRepository
	publisher port.EventPublisher
	logger    *zap.Logger
}

// NewRoleManager constructs a RoleManager. The publisher may be nil.
func NewRoleManager(roles port.RoleRepository, apiKeys port.ApiKeyRepository, users port.UserRepository, publisher port.EventPublisher, logger *zap.Logger) *RoleManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoleManager{roles: roles, apiKeys: apiKeys, users: users, publisher: publisher, logger: logger}
}

// Save persists the role after enforcing cross-aggregate invariants:
//
//  1. The pending changes (not the full history) are classified by event type.
//  2. If the save is identity-changing (created or renamed), any existing role
//     with the same tenant and unique name aborts the save before any write.
//  3. If the save deletes the role, every ApiKey and User holding it drops the
//     reference and is persisted first, so a later failure leaves dependents
//     merely pointing at nothing that was deleted.
//  4. Only then is the role itself persisted.
func (m *RoleManager) Save(ctx context.Context, role *domain.Role, actorID string) error {
	if !role.HasChanges() {
		return nil
	}
	changes := role.Changes()

	var identityChanged, deleted bool
	for _, event := range changes {
		switch event.(type) {
		case *domain.RoleCreated, *domain.RoleUniqueNameChanged:
			identityChanged = true
		case *domain.RoleDeleted:
			deleted = true
		}
	}

	if identityChanged {
		tenant, _ := role.AggregateID().TenantID()
		if err := m.checkUniqueName(ctx, tenant, role); err != nil {
			return err
		}
	}

	if deleted {
		if err := m.removeFromDependents(ctx, role.ID(), actorID); err != nil {
			return err
		}
	}

	if err := m.roles.Save(ctx, role); err != nil {
		return fmt.Errorf("save role %s: %w", role.StreamID(), err)
	}

	publish(ctx, m.publisher, m.logger, changes)
	return nil
}

func (m *RoleManager) checkUniqueName(ctx context.Context, tenant domain.TenantID, role *domain.Role) error {
	existing, err := m.roles.LoadByUniqueName(ctx, tenant, role.UniqueName())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("lookup role by unique name: %w", err)
	}
	if existing != nil && !existing.AggregateID().Equal(role.AggregateID()) {
		return &UniqueNameConflictError{
			Tenant:        tenant,
			UniqueName:    role.UniqueName(),
			AttemptedID:   role.StreamID(),
			ConflictingID: existing.StreamID(),
		}
	}
	return nil
}

// removeFromDependents drops the role from every holder and persists the
// holders before the role itself is written.
func (m *RoleManager) removeFromDependents(ctx context.Context, roleID domain.RoleID, actorID string) error {
	apiKeys, err := m.apiKeys.LoadByRole(ctx, roleID)
	if err != nil {
		return fmt.Errorf("load api keys by role %s: %w", roleID.Value(), err)
	}
	dirtyKeys := make([]*domain.ApiKey, 0, len(apiKeys))
	for _, apiKey := range apiKeys {
		apiKey.RemoveRole(roleID, actorID)
		if apiKey.HasChanges() {
			dirtyKeys = append(dirtyKeys, apiKey)
		}
	}
	if len(dirtyKeys) > 0 {
		if err := m.apiKeys.Save(ctx, dirtyKeys...); err != nil {
			return fmt.Errorf("save api keys referencing role %s: %w", roleID.Value(), err)
		}
	}

	users, err := m.users.LoadByRole(ctx, roleID)
	if err != nil {
		return fmt.Errorf("load users by role %s: %w", roleID.Value(), err)
	}
	dirtyUsers := make([]*domain.User, 0, len(users))
	for _, user := range users {
		user.RemoveRole(roleID, actorID)
		if user.HasChanges() {
			dirtyUsers = append(dirtyUsers, user)
		}
	}
	if len(dirtyUsers) > 0 {
		if err := m.users.Save(ctx, dirtyUsers...); err != nil {
			return fmt.Errorf("save users referencing role %s: %w", roleID.Value(), err)
		}
	}

	m.logger.Info("role cascade applied",
		zap.String("role_id", roleID.Value()),
		zap.Int("api_keys", len(dirtyKeys)),
		zap.Int("users", len(dirtyUsers)))
	return nil
}
