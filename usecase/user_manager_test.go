package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/Logitar/Identity-sub002/core/domain"
	"github.com/Logitar/Identity-sub002/repository"
)

type mockSessionRepo struct {
	log     *callLog
	byUser  []*domain.Session
	saveErr error
	saved   []*domain.Session
}

func (m *mockSessionRepo) Load(ctx context.Context, id domain.SessionID) (*domain.Session, error) {
	return nil, repository.ErrNotFound
}

func (m *mockSessionRepo) LoadByUser(ctx context.Context, userID domain.UserID) ([]*domain.Session, error) {
	return m.byUser, nil
}

func (m *mockSessionRepo) Save(ctx context.Context, sessions ...*domain.Session) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.log.record("sessions.Save")
	m.saved = append(m.saved, sessions...)
	return nil
}

func newUserManagerFixture() (*UserManager, *callLog, *mockUserRepo, *mockSessionRepo, *recordingPublisher) {
	log := &callLog{}
	users := &mockUserRepo{log: log, byName: map[string]*domain.User{}}
	sessions := &mockSessionRepo{log: log}
	publisher := &recordingPublisher{}
	manager := NewUserManager(users, sessions, publisher, nil)
	return manager, log, users, sessions, publisher
}

func TestUserManagerSave(t *testing.T) {
	ctx := context.Background()

	t.Run("conflicting unique name aborts before any write", func(t *testing.T) {
		manager, _, users, _, _ := newUserManagerFixture()
		existing := domain.NewUser(domain.NewUserID(""), mustName(t, "jean"), "admin")
		existing.ClearChanges()
		users.byName["/jean"] = existing

		user := domain.NewUser(domain.NewUserID(""), mustName(t, "JEAN"), "admin")

		var conflict *UniqueNameConflictError
		if err := manager.Save(ctx, user, "admin"); !errors.As(err, &conflict) {
			t.Fatalf("expected UniqueNameConflictError, got %v", err)
		}
		if len(users.saved) != 0 {
			t.Error("no write may happen after a uniqueness conflict")
		}
	})

	t.Run("tenant scoping separates namespaces", func(t *testing.T) {
		manager, _, users, _, _ := newUserManagerFixture()
		existing := domain.NewUser(domain.NewUserID(""), mustName(t, "jean"), "admin")
		existing.ClearChanges()
		users.byName["/jean"] = existing

		// Same name under a tenant does not collide with the global realm.
		tenant, err := domain.NewTenantID("acme")
		if err != nil {
			t.Fatalf("NewTenantID: %v", err)
		}
		user := domain.NewUser(domain.NewUserID(tenant), mustName(t, "jean"), "admin")
		if err := manager.Save(ctx, user, "admin"); err != nil {
			t.Fatalf("Save: %v", err)
		}
	})

	t.Run("delete cascades to sessions before the user is written", func(t *testing.T) {
		manager, log, _, sessions, _ := newUserManagerFixture()

		user := domain.NewUser(domain.NewUserID(""), mustName(t, "jean"), "admin")
		user.ClearChanges()

		active := domain.NewSession(domain.NewSessionID(""), user.ID(), nil, "")
		active.ClearChanges()
		inactive := domain.NewSession(domain.NewSessionID(""), user.ID(), nil, "")
		inactive.SignOut("")
		inactive.ClearChanges()
		sessions.byUser = []*domain.Session{active, inactive}

		user.Delete("admin")
		if err := manager.Save(ctx, user, "admin"); err != nil {
			t.Fatalf("Save: %v", err)
		}

		want := []string{"sessions.Save", "users.Save"}
		if len(log.calls) != len(want) || log.calls[0] != want[0] || log.calls[1] != want[1] {
			t.Fatalf("calls = %v, want %v", log.calls, want)
		}
		if len(sessions.saved) != 2 {
			t.Fatalf("expected both sessions persisted, got %d", len(sessions.saved))
		}
		for _, session := range sessions.saved {
			if !session.IsDeleted() {
				t.Error("cascaded session should be deleted")
			}
			if session.IsActive() {
				t.Error("cascaded session should be signed out")
			}
		}
	})

	t.Run("failed session save leaves the user unsaved", func(t *testing.T) {
		manager, _, users, sessions, _ := newUserManagerFixture()

		user := domain.NewUser(domain.NewUserID(""), mustName(t, "jean"), "admin")
		user.ClearChanges()

		session := domain.NewSession(domain.NewSessionID(""), user.ID(), nil, "")
		session.ClearChanges()
		sessions.byUser = []*domain.Session{session}
		sessions.saveErr = errors.New("storage down")

		user.Delete("admin")
		if err := manager.Save(ctx, user, "admin"); err == nil {
			t.Fatal("expected the dependent failure to surface")
		}
		if len(users.saved) != 0 {
			t.Error("the user must not be written after a dependent failure")
		}
	})

	t.Run("rename triggers the uniqueness check", func(t *testing.T) {
		manager, _, users, _, _ := newUserManagerFixture()
		other := domain.NewUser(domain.NewUserID(""), mustName(t, "paul"), "admin")
		other.ClearChanges()
		users.byName["/paul"] = other

		user := domain.NewUser(domain.NewUserID(""), mustName(t, "jean"), "admin")
		user.ClearChanges()
		user.SetUniqueName(mustName(t, "paul"), "admin")

		var conflict *UniqueNameConflictError
		if err := manager.Save(ctx, user, "admin"); !errors.As(err, &conflict) {
			t.Fatalf("expected UniqueNameConflictError, got %v", err)
		}
	})
}
