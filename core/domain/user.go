package domain

import "time"

// User is the person (or service account) the other aggregates hang off: the
// owner of sessions, a holder of roles, and a uniqueness-bearing principal
// under its tenant.
type User struct {
	Root

	uniqueName       UniqueName
	displayName      *DisplayName
	description      *Description
	password         Password
	authenticatedOn  *time.Time
	roles            map[string]struct{}
	customAttributes map[string]string

	updated UserUpdated
}

// NewUser creates a User and raises its creation event.
func NewUser(id UserID, uniqueName UniqueName, actorID string) *User {
	u := &User{Root: newRoot(id.Identifier)}
	u.raise(u, &UserCreated{EventBase: u.nextBase(actorID), UniqueName: uniqueName})
	return u
}

// LoadUser reconstructs a User from its persisted history.
func LoadUser(history []Event) (*User, error) {
	u := &User{}
	if err := u.replay(u, history); err != nil {
		return nil, err
	}
	return u, nil
}

// ID returns the typed identifier.
func (u *User) ID() UserID { return UserID{u.AggregateID()} }

// UniqueName returns the current unique name.
func (u *User) UniqueName() UniqueName { return u.uniqueName }

// DisplayName returns the current display name, or nil.
func (u *User) DisplayName() *DisplayName { return u.displayName }

// Description returns the current description, or nil.
func (u *User) Description() *Description { return u.description }

// HasPassword reports whether a password is set.
func (u *User) HasPassword() bool { return u.password != nil }

// AuthenticatedOn returns the instant of the last successful sign-in, or nil.
func (u *User) AuthenticatedOn() *time.Time { return u.authenticatedOn }

// Roles returns the associated role identifiers.
func (u *User) Roles() []RoleID {
	out := make([]RoleID, 0, len(u.roles))
	for raw := range u.roles {
		id, err := ParseRoleID(raw)
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	return out
}

// HasRole reports whether the role is associated with this user.
func (u *User) HasRole(id RoleID) bool {
	_, ok := u.roles[id.Value()]
	return ok
}

// CustomAttributes returns a copy of the attribute map.
func (u *User) CustomAttributes() map[string]string { return copyAttributes(u.customAttributes) }

// SetUniqueName raises a UserUniqueNameChanged event immediately (not batched);
// setting the current name again is a no-op.
func (u *User) SetUniqueName(uniqueName UniqueName, actorID string) {
	if uniqueName == u.uniqueName {
		return
	}
	u.raise(u, &UserUniqueNameChanged{EventBase: u.nextBase(actorID), UniqueName: uniqueName})
}

// SetPassword replaces the password. The plaintext must already be hashed by
// the Password capability.
func (u *User) SetPassword(password Password, actorID string) {
	u.raise(u, &UserPasswordChanged{EventBase: u.nextBase(actorID), Secret: password})
}

// Authenticate verifies the supplied password. Guard order is fixed: a user
// without a password cannot sign in, then secret match. Success raises
// UserSignedIn, updating AuthenticatedOn.
func (u *User) Authenticate(password string, actorID string) error {
	if u.password == nil {
		return ErrUserHasNoPassword
	}
	if !u.password.IsMatch(password) {
		return ErrIncorrectUserPassword
	}
	u.raise(u, &UserSignedIn{EventBase: u.nextBase(actorID)})
	return nil
}

// AddRole associates a role with this user. The role must live under the same
// tenant. Adding an already-associated role is a no-op.
func (u *User) AddRole(role *Role, actorID string) error {
	if err := checkSameTenant(u.AggregateID(), role); err != nil {
		return err
	}
	if _, ok := u.roles[role.StreamID()]; ok {
		return nil
	}
	u.raise(u, &UserRoleAdded{EventBase: u.nextBase(actorID), RoleID: role.StreamID()})
	return nil
}

// RemoveRole drops a role association. Removing an absent role is a no-op.
func (u *User) RemoveRole(id RoleID, actorID string) {
	if _, ok := u.roles[id.Value()]; !ok {
		return
	}
	u.raise(u, &UserRoleRemoved{EventBase: u.nextBase(actorID), RoleID: id.Value()})
}

// SetDisplayName stages a display name change; nil clears it.
func (u *User) SetDisplayName(displayName *DisplayName) {
	if equalDisplayName(displayName, u.displayName) {
		u.updated.DisplayName = nil
		return
	}
	u.updated.DisplayName = NewChange(displayName)
}

// SetDescription stages a description change; nil clears it.
func (u *User) SetDescription(description *Description) {
	if equalDescription(description, u.description) {
		u.updated.Description = nil
		return
	}
	u.updated.Description = NewChange(description)
}

// SetCustomAttribute stages an attribute upsert.
func (u *User) SetCustomAttribute(key, value string) error {
	key, value, err := validateCustomAttribute(key, value)
	if err != nil {
		return err
	}
	if current, ok := u.customAttributes[key]; ok && current == value {
		delete(u.updated.CustomAttributes, key)
		return nil
	}
	if u.updated.CustomAttributes == nil {
		u.updated.CustomAttributes = map[string]*string{}
	}
	u.updated.CustomAttributes[key] = &value
	return nil
}

// RemoveCustomAttribute stages an attribute removal.
func (u *User) RemoveCustomAttribute(key string) error {
	key = trimKey(key)
	if err := validateCustomAttributeKey(key); err != nil {
		return err
	}
	if _, ok := u.customAttributes[key]; !ok {
		delete(u.updated.CustomAttributes, key)
		return nil
	}
	if u.updated.CustomAttributes == nil {
		u.updated.CustomAttributes = map[string]*string{}
	}
	u.updated.CustomAttributes[key] = nil
	return nil
}

// Update raises the accumulated patch, if it has net changes.
func (u *User) Update(actorID string) {
	if !u.updated.HasChanges() {
		return
	}
	event := u.updated
	event.EventBase = u.nextBase(actorID)
	u.raise(u, &event)
	u.updated = UserUpdated{}
}

// Delete raises the terminal deletion event. Deleting twice is a no-op.
func (u *User) Delete(actorID string) {
	if u.IsDeleted() {
		return
	}
	u.raise(u, &UserDeleted{EventBase: u.nextBase(actorID)})
}

func (u *User) apply(event Event) {
	switch e := event.(type) {
	case *UserCreated:
		u.uniqueName = e.UniqueName
		u.roles = map[string]struct{}{}
		u.customAttributes = map[string]string{}
	case *UserUniqueNameChanged:
		u.uniqueName = e.UniqueName
	case *UserPasswordChanged:
		u.password = e.Secret
	case *UserSignedIn:
		at := e.OccurredOn()
		u.authenticatedOn = &at
	case *UserRoleAdded:
		u.roles[e.RoleID] = struct{}{}
	case *UserRoleRemoved:
		delete(u.roles, e.RoleID)
	case *UserUpdated:
		if e.DisplayName != nil {
			u.displayName = e.DisplayName.Value
		}
		if e.Description != nil {
			u.description = e.Description.Value
		}
		for key, value := range e.CustomAttributes {
			if value == nil {
				delete(u.customAttributes, key)
			} else {
				u.customAttributes[key] = *value
			}
		}
	case *UserDeleted:
		u.markDeleted()
	default:
		panic(unhandledEvent("User", event))
	}
}
