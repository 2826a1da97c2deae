package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/Logitar/Identity-sub002/core/domain"
	"github.com/Logitar/Identity-sub002/repository"
)

// callLog records repository writes in order so tests can assert that
// dependents are persisted before the primary aggregate.
type callLog struct {
	calls []string
}

func (l *callLog) record(name string) { l.calls = append(l.calls, name) }

type mockRoleRepo struct {
	log      *callLog
	byName   map[string]*domain.Role
	saveErr  error
	saved    []*domain.Role
	saveSeen int
}

func (m *mockRoleRepo) Load(ctx context.Context, id domain.RoleID) (*domain.Role, error) {
	return nil, repository.ErrNotFound
}

func (m *mockRoleRepo) LoadByUniqueName(ctx context.Context, tenant domain.TenantID, name domain.UniqueName) (*domain.Role, error) {
	role, ok := m.byName[string(tenant)+"/"+name.Normalized()]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return role, nil
}

func (m *mockRoleRepo) Save(ctx context.Context, roles ...*domain.Role) error {
	m.saveSeen++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.log.record("roles.Save")
	m.saved = append(m.saved, roles...)
	return nil
}

type mockApiKeyRepo struct {
	log     *callLog
	byRole  []*domain.ApiKey
	saveErr error
	saved   []*domain.ApiKey
}

func (m *mockApiKeyRepo) Load(ctx context.Context, id domain.ApiKeyID) (*domain.ApiKey, error) {
	return nil, repository.ErrNotFound
}

func (m *mockApiKeyRepo) LoadByRole(ctx context.Context, roleID domain.RoleID) ([]*domain.ApiKey, error) {
	return m.byRole, nil
}

func (m *mockApiKeyRepo) Save(ctx context.Context, apiKeys ...*domain.ApiKey) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.log.record("apiKeys.Save")
	m.saved = append(m.saved, apiKeys...)
	return nil
}

type mockUserRepo struct {
	log     *callLog
	byName  map[string]*domain.User
	byRole  []*domain.User
	saveErr error
	saved   []*domain.User
}

func (m *mockUserRepo) Load(ctx context.Context, id domain.UserID) (*domain.User, error) {
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) LoadByUniqueName(ctx context.Context, tenant domain.TenantID, name domain.UniqueName) (*domain.User, error) {
	user, ok := m.byName[string(tenant)+"/"+name.Normalized()]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return user, nil
}

func (m *mockUserRepo) LoadByRole(ctx context.Context, roleID domain.RoleID) ([]*domain.User, error) {
	return m.byRole, nil
}

func (m *mockUserRepo) Save(ctx context.Context, users ...*domain.User) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.log.record("users.Save")
	m.saved = append(m.saved, users...)
	return nil
}

type recordingPublisher struct {
	events []domain.Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, events ...domain.Event) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, events...)
	return nil
}

func mustName(t *testing.T, value string) domain.UniqueName {
	t.Helper()
	name, err := domain.NewUniqueName(value)
	if err != nil {
		t.Fatalf("NewUniqueName(%q): %v", value, err)
	}
	return name
}

func newRoleManagerFixture() (*RoleManager, *callLog, *mockRoleRepo, *mockApiKeyRepo, *mockUserRepo, *recordingPublisher) {
	log := &callLog{}
	roles := &mockRoleRepo{log: log, byName: map[string]*domain.Role{}}
	apiKeys := &mockApiKeyRepo{log: log}
	users := &mockUserRepo{log: log, byName: map[string]*domain.User{}}
	publisher := &recordingPublisher{}
	manager := NewRoleManager(roles, apiKeys, users, publisher, nil)
	return manager, log, roles, apiKeys, users, publisher
}

func TestRoleManagerSave(t *testing.T) {
	ctx := context.Background()

	t.Run("no pending changes is a no-op", func(t *testing.T) {
		manager, _, roles, _, _, _ := newRoleManagerFixture()
		role := domain.NewRole(domain.NewRoleID(""), mustName(t, "member"), "admin")
		role.ClearChanges()

		if err := manager.Save(ctx, role, "admin"); err != nil {
			t.Fatalf("Save: %v", err)
		}
		if roles.saveSeen != 0 {
			t.Error("repository must not be touched for a clean aggregate")
		}
	})

	t.Run("persists a new role and publishes its events", func(t *testing.T) {
		manager, _, roles, _, _, publisher := newRoleManagerFixture()
		role := domain.NewRole(domain.NewRoleID(""), mustName(t, "member"), "admin")

		if err := manager.Save(ctx, role, "admin"); err != nil {
			t.Fatalf("Save: %v", err)
		}
		if len(roles.saved) != 1 {
			t.Fatalf("expected role persisted, got %d", len(roles.saved))
		}
		if len(publisher.events) != 1 {
			t.Fatalf("expected 1 published event, got %d", len(publisher.events))
		}
		if _, ok := publisher.events[0].(*domain.RoleCreated); !ok {
			t.Errorf("expected *domain.RoleCreated, got %T", publisher.events[0])
		}
	})

	t.Run("conflicting unique name aborts before any write", func(t *testing.T) {
		manager, _, roles, _, _, publisher := newRoleManagerFixture()
		existing := domain.NewRole(domain.NewRoleID(""), mustName(t, "Member"), "admin")
		existing.ClearChanges()
		roles.byName["/member"] = existing

		// Uniqueness is case-insensitive: "MEMBER" collides with "Member".
		role := domain.NewRole(domain.NewRoleID(""), mustName(t, "MEMBER"), "admin")

		var conflict *UniqueNameConflictError
		err := manager.Save(ctx, role, "admin")
		if !errors.As(err, &conflict) {
			t.Fatalf("expected UniqueNameConflictError, got %v", err)
		}
		if conflict.ConflictingID != existing.StreamID() {
			t.Errorf("ConflictingID = %q, want %q", conflict.ConflictingID, existing.StreamID())
		}
		if roles.saveSeen != 0 {
			t.Error("no write may happen after a uniqueness conflict")
		}
		if len(publisher.events) != 0 {
			t.Error("nothing may be published after a uniqueness conflict")
		}
	})

	t.Run("saving the same aggregate under its own name is not a conflict", func(t *testing.T) {
		manager, _, roles, _, _, _ := newRoleManagerFixture()
		role := domain.NewRole(domain.NewRoleID(""), mustName(t, "member"), "admin")
		roles.byName["/member"] = role

		if err := manager.Save(ctx, role, "admin"); err != nil {
			t.Fatalf("Save: %v", err)
		}
	})

	t.Run("delete cascades to holders before the role is written", func(t *testing.T) {
		manager, log, roles, apiKeys, users, _ := newRoleManagerFixture()

		role := domain.NewRole(domain.NewRoleID(""), mustName(t, "member"), "admin")
		role.ClearChanges()

		holderKey := domain.NewApiKey(domain.NewApiKeyID(""), mustDisplay(t, "Key"), nil, "admin")
		if err := holderKey.AddRole(role, "admin"); err != nil {
			t.Fatalf("AddRole: %v", err)
		}
		holderKey.ClearChanges()
		apiKeys.byRole = []*domain.ApiKey{holderKey}

		holderUser := domain.NewUser(domain.NewUserID(""), mustName(t, "jean"), "admin")
		if err := holderUser.AddRole(role, "admin"); err != nil {
			t.Fatalf("AddRole: %v", err)
		}
		holderUser.ClearChanges()
		users.byRole = []*domain.User{holderUser}

		role.Delete("admin")
		if err := manager.Save(ctx, role, "admin"); err != nil {
			t.Fatalf("Save: %v", err)
		}

		want := []string{"apiKeys.Save", "users.Save", "roles.Save"}
		if len(log.calls) != len(want) {
			t.Fatalf("calls = %v, want %v", log.calls, want)
		}
		for i := range want {
			if log.calls[i] != want[i] {
				t.Fatalf("calls = %v, want %v", log.calls, want)
			}
		}
		if holderKey.HasRole(role.ID()) {
			t.Error("api key should have dropped the role")
		}
		if holderUser.HasRole(role.ID()) {
			t.Error("user should have dropped the role")
		}
		if len(roles.saved) != 1 {
			t.Error("role itself should be persisted last")
		}
	})

	t.Run("failed dependent save leaves the role unsaved", func(t *testing.T) {
		manager, _, roles, apiKeys, _, publisher := newRoleManagerFixture()

		role := domain.NewRole(domain.NewRoleID(""), mustName(t, "member"), "admin")
		role.ClearChanges()

		holder := domain.NewApiKey(domain.NewApiKeyID(""), mustDisplay(t, "Key"), nil, "admin")
		if err := holder.AddRole(role, "admin"); err != nil {
			t.Fatalf("AddRole: %v", err)
		}
		holder.ClearChanges()
		apiKeys.byRole = []*domain.ApiKey{holder}
		apiKeys.saveErr = errors.New("storage down")

		role.Delete("admin")
		if err := manager.Save(ctx, role, "admin"); err == nil {
			t.Fatal("expected the dependent failure to surface")
		}
		if roles.saveSeen != 0 {
			t.Error("the role must not be written after a dependent failure")
		}
		if len(publisher.events) != 0 {
			t.Error("nothing may be published after a failed save")
		}
	})

	t.Run("publication failure does not fail the save", func(t *testing.T) {
		manager, _, roles, _, _, publisher := newRoleManagerFixture()
		publisher.err = errors.New("broker down")

		role := domain.NewRole(domain.NewRoleID(""), mustName(t, "member"), "admin")
		if err := manager.Save(ctx, role, "admin"); err != nil {
			t.Fatalf("Save: %v", err)
		}
		if len(roles.saved) != 1 {
			t.Error("role should be persisted despite the publisher error")
		}
	})
}

func mustDisplay(t *testing.T, value string) domain.DisplayName {
	t.Helper()
	name, err := domain.NewDisplayName(value)
	if err != nil {
		t.Fatalf("NewDisplayName(%q): %v", value, err)
	}
	return name
}
