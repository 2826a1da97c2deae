package domain

// Event kind tags for the Role stream.
const (
	KindRoleCreated           = "role.created"
	KindRoleUniqueNameChanged = "role.unique_name_changed"
	KindRoleUpdated           = "role.updated"
	KindRoleDeleted           = "role.deleted"
)

// RoleCreated is the first event of every Role stream.
type RoleCreated struct {
	EventBase
	UniqueName UniqueName `json:"uniqueName"`
}

// Kind implements Event.
func (RoleCreated) Kind() string { return KindRoleCreated }

// RoleUniqueNameChanged is raised on its own, outside the update batch, so a
// manager can detect uniqueness-sensitive saves by event type alone.
type RoleUniqueNameChanged struct {
	EventBase
	UniqueName UniqueName `json:"uniqueName"`
}

// Kind implements Event.
func (RoleUniqueNameChanged) Kind() string { return KindRoleUniqueNameChanged }

// RoleUpdated batches display name, description and custom attribute diffs.
type RoleUpdated struct {
	EventBase
	DisplayName      *Change[*DisplayName] `json:"displayName,omitempty"`
	Description      *Change[*Description] `json:"description,omitempty"`
	CustomAttributes map[string]*string    `json:"customAttributes,omitempty"`
}

// Kind implements Event.
func (RoleUpdated) Kind() string { return KindRoleUpdated }

// HasChanges reports whether the patch carries any diff.
func (e RoleUpdated) HasChanges() bool {
	return e.DisplayName != nil || e.Description != nil || len(e.CustomAttributes) > 0
}

// RoleDeleted is the terminal event of a Role stream.
type RoleDeleted struct {
	EventBase
}

// Kind implements Event.
func (RoleDeleted) Kind() string { return KindRoleDeleted }
