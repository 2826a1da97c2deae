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

// UserManager coordinates every User save: unique-name enforcement on creation
// or rename, and the session cascade on deletion (a deleted user leaves no
// live sessions behind). Same pipeline shape as RoleManager, different
// dependent set.
type UserManager struct {
	users     port.UserRepository
	sessions  port.SessionRepository
	publisher port.EventPublisher
	logger    *zap.Logger
}

// NewUserManager constructs a UserManager. The publisher may be nil.
func NewUserManager(users port.UserRepository, sessions port.SessionRepository, publisher port.EventPublisher, logger *zap.Logger) *UserManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserManager{users: users, sessions: sessions, publisher: publisher, logger: logger}
}

// Save persists the user after enforcing cross-aggregate invariants; see
// RoleManager.Save for the pipeline contract. Dependent sessions are deleted
// and persisted before the user itself.
func (m *UserManager) Save(ctx context.Context, user *domain.User, actorID string) error {
	if !user.HasChanges() {
		return nil
	}
	changes := user.Changes()

	var identityChanged, deleted bool
	for _, event := range changes {
		switch event.(type) {
		case *domain.UserCreated, *domain.UserUniqueNameChanged:
			identityChanged = true
		case *domain.UserDeleted:
			deleted = true
		}
	}

	if identityChanged {
		tenant, _ := user.AggregateID().TenantID()
		if err := m.checkUniqueName(ctx, tenant, user); err != nil {
			return err
		}
	}

	if deleted {
		if err := m.deleteSessions(ctx, user.ID(), actorID); err != nil {
			return err
		}
	}

	if err := m.users.Save(ctx, user); err != nil {
		return fmt.Errorf("save user %s: %w", user.StreamID(), err)
	}

	publish(ctx, m.publisher, m.logger, changes)
	return nil
}

func (m *UserManager) checkUniqueName(ctx context.Context, tenant domain.TenantID, user *domain.User) error {
	existing, err := m.users.LoadByUniqueName(ctx, tenant, user.UniqueName())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("lookup user by unique name: %w", err)
	}
	if existing != nil && !existing.AggregateID().Equal(user.AggregateID()) {
		return &UniqueNameConflictError{
			Tenant:        tenant,
			UniqueName:    user.UniqueName(),
			AttemptedID:   user.StreamID(),
			ConflictingID: existing.StreamID(),
		}
	}
	return nil
}

func (m *UserManager) deleteSessions(ctx context.Context, userID domain.UserID, actorID string) error {
	sessions, err := m.sessions.LoadByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("load sessions for user %s: %w", userID.Value(), err)
	}
	dirty := make([]*domain.Session, 0, len(sessions))
	for _, session := range sessions {
		session.SignOut(actorID)
		session.Delete(actorID)
		if session.HasChanges() {
			dirty = append(dirty, session)
		}
	}
	if len(dirty) > 0 {
		if err := m.sessions.Save(ctx, dirty...); err != nil {
			return fmt.Errorf("save sessions for user %s: %w", userID.Value(), err)
		}
	}
	m.logger.Info("user session cascade applied",
		zap.String("user_id", userID.Value()),
		zap.Int("sessions", len(dirty)))
	return nil
}
