package domain

// Role names a grant that ApiKeys and Users can hold. Its UniqueName is unique
// under its tenant; the RoleManager enforces that before persistence.
type Role struct {
	Root

	uniqueName       UniqueName
	displayName      *DisplayName
	description      *Description
	customAttributes map[string]string

	updated RoleUpdated
}

// NewRole creates a Role and raises its creation event.
func NewRole(id RoleID, uniqueName UniqueName, actorID string) *Role {
	r := &Role{Root: newRoot(id.Identifier)}
	r.raise(r, &RoleCreated{EventBase: r.nextBase(actorID), UniqueName: uniqueName})
	return r
}

// LoadRole reconstructs a Role from its persisted history.
func LoadRole(history []Event) (*Role, error) {
	r := &Role{}
	if err := r.replay(r, history); err != nil {
		return nil, err
	}
	return r, nil
}

// ID returns the typed identifier.
func (r *Role) ID() RoleID { return RoleID{r.AggregateID()} }

// UniqueName returns the current unique name.
func (r *Role) UniqueName() UniqueName { return r.uniqueName }

// DisplayName returns the current display name, or nil.
func (r *Role) DisplayName() *DisplayName { return r.displayName }

// Description returns the current description, or nil.
func (r *Role) Description() *Description { return r.description }

// CustomAttributes returns a copy of the attribute map.
func (r *Role) CustomAttributes() map[string]string { return copyAttributes(r.customAttributes) }

// SetUniqueName raises a RoleUniqueNameChanged event immediately (not batched);
// setting the current name again is a no-op.
func (r *Role) SetUniqueName(uniqueName UniqueName, actorID string) {
	if uniqueName == r.uniqueName {
		return
	}
	r.raise(r, &RoleUniqueNameChanged{EventBase: r.nextBase(actorID), UniqueName: uniqueName})
}

// SetDisplayName stages a display name change; nil clears it.
func (r *Role) SetDisplayName(displayName *DisplayName) {
	if equalDisplayName(displayName, r.displayName) {
		r.updated.DisplayName = nil
		return
	}
	r.updated.DisplayName = NewChange(displayName)
}

// SetDescription stages a description change; nil clears it.
func (r *Role) SetDescription(description *Description) {
	if equalDescription(description, r.description) {
		r.updated.Description = nil
		return
	}
	r.updated.Description = NewChange(description)
}

// SetCustomAttribute stages an attribute upsert.
func (r *Role) SetCustomAttribute(key, value string) error {
	key, value, err := validateCustomAttribute(key, value)
	if err != nil {
		return err
	}
	if current, ok := r.customAttributes[key]; ok && current == value {
		delete(r.updated.CustomAttributes, key)
		return nil
	}
	if r.updated.CustomAttributes == nil {
		r.updated.CustomAttributes = map[string]*string{}
	}
	r.updated.CustomAttributes[key] = &value
	return nil
}

// RemoveCustomAttribute stages an attribute removal.
func (r *Role) RemoveCustomAttribute(key string) error {
	key = trimKey(key)
	if err := validateCustomAttributeKey(key); err != nil {
		return err
	}
	if _, ok := r.customAttributes[key]; !ok {
		delete(r.updated.CustomAttributes, key)
		return nil
	}
	if r.updated.CustomAttributes == nil {
		r.updated.CustomAttributes = map[string]*string{}
	}
	r.updated.CustomAttributes[key] = nil
	return nil
}

// Update raises the accumulated patch, if it has net changes.
func (r *Role) Update(actorID string) {
	if !r.updated.HasChanges() {
		return
	}
	event := r.updated
	event.EventBase = r.nextBase(actorID)
	r.raise(r, &event)
	r.updated = RoleUpdated{}
}

// Delete raises the terminal deletion event. Deleting twice is a no-op.
func (r *Role) Delete(actorID string) {
	if r.IsDeleted() {
		return
	}
	r.raise(r, &RoleDeleted{EventBase: r.nextBase(actorID)})
}

func (r *Role) apply(event Event) {
	switch e := event.(type) {
	case *RoleCreated:
		r.uniqueName = e.UniqueName
		r.customAttributes = map[string]string{}
	case *RoleUniqueNameChanged:
		r.uniqueName = e.UniqueName
	case *RoleUpdated:
		if e.DisplayName != nil {
			r.displayName = e.DisplayName.Value
		}
		if e.Description != nil {
			r.description = e.Description.Value
		}
		for key, value := range e.CustomAttributes {
			if value == nil {
				delete(r.customAttributes, key)
			} else {
				r.customAttributes[key] = *value
			}
		}
	case *RoleDeleted:
		r.markDeleted()
	default:
		panic(unhandledEvent("Role", event))
	}
}

func equalDisplayName(a, b *DisplayName) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
