package domain

import (
	"errors"
	"testing"
)

func newTestUser(t *testing.T, name string) *User {
	t.Helper()
	return NewUser(NewUserID(""), mustUniqueName(t, name), "admin")
}

func TestUserAuthenticate(t *testing.T) {
	t.Run("no password wins over mismatch", func(t *testing.T) {
		user := newTestUser(t, "jean")
		if err := user.Authenticate("anything", ""); !errors.Is(err, ErrUserHasNoPassword) {
			t.Errorf("expected ErrUserHasNoPassword, got %v", err)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		user := newTestUser(t, "jean")
		user.SetPassword(plainSecret{"P@s$W0rD"}, "admin")
		version := user.Version()
		if err := user.Authenticate("wrong", ""); !errors.Is(err, ErrIncorrectUserPassword) {
			t.Fatalf("expected ErrIncorrectUserPassword, got %v", err)
		}
		if user.Version() != version {
			t.Error("failed authentication must not advance the version")
		}
	})

	t.Run("correct password", func(t *testing.T) {
		user := newTestUser(t, "jean")
		user.SetPassword(plainSecret{"P@s$W0rD"}, "admin")
		if err := user.Authenticate("P@s$W0rD", ""); err != nil {
			t.Fatalf("Authenticate: %v", err)
		}
		if user.AuthenticatedOn() == nil {
			t.Error("AuthenticatedOn should be set")
		}
		changes := user.Changes()
		last := changes[len(changes)-1]
		if last.ActorID() != user.StreamID() {
			t.Errorf("actor = %q, want the user itself", last.ActorID())
		}
	})
}

func TestUserRoles(t *testing.T) {
	tenant := mustTenant(t, "acme")
	user := NewUser(NewUserID(tenant), mustUniqueName(t, "jean"), "admin")
	role := NewRole(NewRoleID(tenant), mustUniqueName(t, "admin"), "admin")

	if err := user.AddRole(role, "admin"); err != nil {
		t.Fatalf("AddRole: %v", err)
	}
	if !user.HasRole(role.ID()) {
		t.Error("role should be associated")
	}

	foreign := NewRole(NewRoleID(""), mustUniqueName(t, "admin"), "admin")
	var mismatch *TenantMismatchError
	if err := user.AddRole(foreign, "admin"); !errors.As(err, &mismatch) {
		t.Errorf("expected TenantMismatchError, got %v", err)
	}

	user.RemoveRole(role.ID(), "admin")
	if user.HasRole(role.ID()) {
		t.Error("role should be removed")
	}
}

func TestUserSetUniqueNameRaisesImmediately(t *testing.T) {
	user := newTestUser(t, "jean")
	user.SetUniqueName(mustUniqueName(t, "jean.dupont"), "admin")
	changes := user.Changes()
	if _, ok := changes[len(changes)-1].(*UserUniqueNameChanged); !ok {
		t.Errorf("expected *UserUniqueNameChanged, got %T", changes[len(changes)-1])
	}

	version := user.Version()
	user.SetUniqueName(mustUniqueName(t, "jean.dupont"), "admin")
	if user.Version() != version {
		t.Error("same-name rename must be a no-op")
	}
}

func TestLoadUserReplays(t *testing.T) {
	user := newTestUser(t, "jean")
	user.SetPassword(plainSecret{"P@s$W0rD"}, "admin")
	display := mustDisplayName(t, "Jean Dupont")
	user.SetDisplayName(&display)
	user.Update("admin")

	replayed, err := LoadUser(user.Changes())
	if err != nil {
		t.Fatalf("LoadUser: %v", err)
	}
	if !replayed.HasPassword() {
		t.Error("replayed user should have a password")
	}
	if replayed.DisplayName() == nil || *replayed.DisplayName() != "Jean Dupont" {
		t.Error("replayed display name mismatch")
	}
	if err := replayed.Authenticate("P@s$W0rD", ""); err != nil {
		t.Errorf("replayed user should authenticate: %v", err)
	}
}
