package domain

import (
	"testing"
)

func TestRoleSetUniqueName(t *testing.T) {
	role := NewRole(NewRoleID(""), mustUniqueName(t, "member"), "admin")

	role.SetUniqueName(mustUniqueName(t, "admin"), "admin")
	if role.UniqueName() != "admin" {
		t.Errorf("UniqueName() = %q, want admin", role.UniqueName())
	}
	changes := role.Changes()
	if _, ok := changes[len(changes)-1].(*RoleUniqueNameChanged); !ok {
		t.Errorf("expected *RoleUniqueNameChanged, got %T", changes[len(changes)-1])
	}

	// Renaming to the current name raises nothing.
	version := role.Version()
	role.SetUniqueName(mustUniqueName(t, "admin"), "admin")
	if role.Version() != version {
		t.Error("same-name rename must be a no-op")
	}
}

func TestRoleUpdateBatchesChanges(t *testing.T) {
	role := NewRole(NewRoleID(""), mustUniqueName(t, "member"), "admin")
	role.ClearChanges()

	display := mustDisplayName(t, "Members")
	role.SetDisplayName(&display)
	desc := Description("regular members")
	role.SetDescription(&desc)
	role.Update("admin")

	changes := role.Changes()
	if len(changes) != 1 {
		t.Fatalf("expected a single batched event, got %d", len(changes))
	}
	updated, ok := changes[0].(*RoleUpdated)
	if !ok {
		t.Fatalf("expected *RoleUpdated, got %T", changes[0])
	}
	if updated.DisplayName == nil || updated.DisplayName.Value == nil || *updated.DisplayName.Value != "Members" {
		t.Error("display name diff missing")
	}

	// Clearing the display name is an explicit change carrying nil.
	role.SetDisplayName(nil)
	role.Update("admin")
	if role.DisplayName() != nil {
		t.Error("display name should be cleared")
	}
}

func TestLoadRoleReplays(t *testing.T) {
	role := NewRole(NewRoleID(mustTenant(t, "acme")), mustUniqueName(t, "member"), "admin")
	role.SetUniqueName(mustUniqueName(t, "admin"), "admin")

	replayed, err := LoadRole(role.Changes())
	if err != nil {
		t.Fatalf("LoadRole: %v", err)
	}
	if replayed.UniqueName() != "admin" {
		t.Errorf("replayed UniqueName = %q, want admin", replayed.UniqueName())
	}
	tenant, ok := replayed.AggregateID().TenantID()
	if !ok || tenant != "acme" {
		t.Errorf("replayed tenant = %q, %v", tenant, ok)
	}
}
