package domain

// Event kind tags for the User stream.
const (
	KindUserCreated           = "user.created"
	KindUserUniqueNameChanged = "user.unique_name_changed"
	KindUserPasswordChanged   = "user.password_changed"
	KindUserSignedIn          = "user.signed_in"
	KindUserRoleAdded         = "user.role_added"
	KindUserRoleRemoved       = "user.role_removed"
	KindUserUpdated           = "user.updated"
	KindUserDeleted           = "user.deleted"
)

// UserCreated is the first event of every User stream.
type UserCreated struct {
	EventBase
	UniqueName UniqueName `json:"uniqueName"`
}

// Kind implements Event.
func (UserCreated) Kind() string { return KindUserCreated }

// UserUniqueNameChanged is raised on its own, outside the update batch, so a
// manager can detect uniqueness-sensitive saves by event type alone.
type UserUniqueNameChanged struct {
	EventBase
	UniqueName UniqueName `json:"uniqueName"`
}

// Kind implements Event.
func (UserUniqueNameChanged) Kind() string { return KindUserUniqueNameChanged }

// UserPasswordChanged replaces the user's password.
type UserPasswordChanged struct {
	EventBase
	Secret Password `json:"secret"`
}

// Kind implements Event.
func (UserPasswordChanged) Kind() string { return KindUserPasswordChanged }

// UserSignedIn records a successful password authentication.
type UserSignedIn struct {
	EventBase
}

// Kind implements Event.
func (UserSignedIn) Kind() string { return KindUserSignedIn }

// UserRoleAdded records a role association.
type UserRoleAdded struct {
	EventBase
	RoleID string `json:"roleId"`
}

// Kind implements Event.
func (UserRoleAdded) Kind() string { return KindUserRoleAdded }

// UserRoleRemoved records the removal of a role association.
type UserRoleRemoved struct {
	EventBase
	RoleID string `json:"roleId"`
}

// Kind implements Event.
func (UserRoleRemoved) Kind() string { return KindUserRoleRemoved }

// UserUpdated batches display name, description and custom attribute diffs.
type UserUpdated struct {
	EventBase
	DisplayName      *Change[*DisplayName] `json:"displayName,omitempty"`
	Description      *Change[*Description] `json:"description,omitempty"`
	CustomAttributes map[string]*string    `json:"customAttributes,omitempty"`
}

// Kind implements Event.
func (UserUpdated) Kind() string { return KindUserUpdated }

// HasChanges reports whether the patch carries any diff.
func (e UserUpdated) HasChanges() bool {
	return e.DisplayName != nil || e.Description != nil || len(e.CustomAttributes) > 0
}

// UserDeleted is the terminal event of a User stream.
type UserDeleted struct {
	EventBase
}

// Kind implements Event.
func (UserDeleted) Kind() string { return KindUserDeleted }
