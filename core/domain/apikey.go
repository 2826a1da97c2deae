package domain

import "time"

// ApiKey is a long-lived credential issued to a machine caller. Its secret is
// opaque; authentication is gated by expiration first, then secret match.
type ApiKey struct {
	Root

	displayName      DisplayName
	description      *Description
	expiresOn        *time.Time
	authenticatedOn  *time.Time
	secret           Password
	roles            map[string]struct{}
	customAttributes map[string]string

	updated ApiKeyUpdated
}

// NewApiKey creates an ApiKey and raises its creation event. The secret must
// already be hashed by the Password capability; the plaintext is never stored.
func NewApiKey(id ApiKeyID, displayName DisplayName, secret Password, actorID string) *ApiKey {
	k := &ApiKey{Root: newRoot(id.Identifier)}
	k.raise(k, &ApiKeyCreated{EventBase: k.nextBase(actorID), DisplayName: displayName, Secret: secret})
	return k
}

// LoadApiKey reconstructs an ApiKey from its persisted history.
func LoadApiKey(history []Event) (*ApiKey, error) {
	k := &ApiKey{}
	if err := k.replay(k, history); err != nil {
		return nil, err
	}
	return k, nil
}

// ID returns the typed identifier.
func (k *ApiKey) ID() ApiKeyID { return ApiKeyID{k.AggregateID()} }

// DisplayName returns the current display name.
func (k *ApiKey) DisplayName() DisplayName { return k.displayName }

// Description returns the current description, or nil.
func (k *ApiKey) Description() *Description { return k.description }

// ExpiresOn returns the current expiration, or nil when the key never expires.
func (k *ApiKey) ExpiresOn() *time.Time { return k.expiresOn }

// AuthenticatedOn returns the instant of the last successful authentication, or nil.
func (k *ApiKey) AuthenticatedOn() *time.Time { return k.authenticatedOn }

// IsExpired reports whether the key is expired at the supplied moment.
func (k *ApiKey) IsExpired(at time.Time) bool {
	return k.expiresOn != nil && !k.expiresOn.After(at)
}

// Roles returns the associated role identifiers.
func (k *ApiKey) Roles() []RoleID {
	out := make([]RoleID, 0, len(k.roles))
	for raw := range k.roles {
		id, err := ParseRoleID(raw)
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	return out
}

// HasRole reports whether the role is associated with this key.
func (k *ApiKey) HasRole(id RoleID) bool {
	_, ok := k.roles[id.Value()]
	return ok
}

// CustomAttributes returns a copy of the attribute map.
func (k *ApiKey) CustomAttributes() map[string]string { return copyAttributes(k.customAttributes) }

// Authenticate verifies the supplied secret. Guard order is fixed: expiration
// first, then secret match; both failures are terminal and leave no state
// change. Success raises ApiKeyAuthenticated, updating AuthenticatedOn.
func (k *ApiKey) Authenticate(secret string, actorID string) error {
	if k.IsExpired(time.Now().UTC()) {
		return ErrApiKeyExpired
	}
	if k.secret == nil || !k.secret.IsMatch(secret) {
		return ErrIncorrectApiKeySecret
	}
	k.raise(k, &ApiKeyAuthenticated{EventBase: k.nextBase(actorID)})
	return nil
}

// SetExpiration stages a new expiration. The instant must be strictly in the
// future and, once an expiration exists, may only be brought forward or kept,
// never postponed or cleared.
func (k *ApiKey) SetExpiration(expiresOn time.Time) error {
	expiresOn = expiresOn.UTC()
	if !expiresOn.After(time.Now().UTC()) {
		return ErrExpirationNotInFuture
	}
	current := k.expiresOn
	if k.updated.ExpiresOn != nil {
		current = k.updated.ExpiresOn
	}
	if current != nil {
		if expiresOn.After(*current) {
			return ErrCannotExtendExpiration
		}
		if expiresOn.Equal(*current) {
			return nil
		}
	}
	k.updated.ExpiresOn = &expiresOn
	return nil
}

// SetDisplayName stages a display name change.
func (k *ApiKey) SetDisplayName(displayName DisplayName) {
	if displayName == k.displayName {
		k.updated.DisplayName = nil
		return
	}
	k.updated.DisplayName = &displayName
}

// SetDescription stages a description change; nil clears the description.
func (k *ApiKey) SetDescription(description *Description) {
	if equalDescription(description, k.description) {
		k.updated.Description = nil
		return
	}
	k.updated.Description = NewChange(description)
}

// SetCustomAttribute stages an attribute upsert.
func (k *ApiKey) SetCustomAttribute(key, value string) error {
	key, value, err := validateCustomAttribute(key, value)
	if err != nil {
		return err
	}
	if current, ok := k.customAttributes[key]; ok && current == value {
		delete(k.updated.CustomAttributes, key)
		return nil
	}
	if k.updated.CustomAttributes == nil {
		k.updated.CustomAttributes = map[string]*string{}
	}
	k.updated.CustomAttributes[key] = &value
	return nil
}

// RemoveCustomAttribute stages an attribute removal.
func (k *ApiKey) RemoveCustomAttribute(key string) error {
	key = trimKey(key)
	if err := validateCustomAttributeKey(key); err != nil {
		return err
	}
	if _, ok := k.customAttributes[key]; !ok {
		delete(k.updated.CustomAttributes, key)
		return nil
	}
	if k.updated.CustomAttributes == nil {
		k.updated.CustomAttributes = map[string]*string{}
	}
	k.updated.CustomAttributes[key] = nil
	return nil
}

// Update raises the accumulated patch as one ApiKeyUpdated event, if it has
// net changes, and resets the accumulator.
func (k *ApiKey) Update(actorID string) {
	if !k.updated.HasChanges() {
		return
	}
	event := k.updated
	event.EventBase = k.nextBase(actorID)
	k.raise(k, &event)
	k.updated = ApiKeyUpdated{}
}

// AddRole associates a role with this key. The role must live under the same
// tenant. Adding an already-associated role is a no-op.
func (k *ApiKey) AddRole(role *Role, actorID string) error {
	if err := checkSameTenant(k.AggregateID(), role); err != nil {
		return err
	}
	if _, ok := k.roles[role.StreamID()]; ok {
		return nil
	}
	k.raise(k, &ApiKeyRoleAdded{EventBase: k.nextBase(actorID), RoleID: role.StreamID()})
	return nil
}

// RemoveRole drops a role association. Removing an absent role is a no-op.
func (k *ApiKey) RemoveRole(id RoleID, actorID string) {
	if _, ok := k.roles[id.Value()]; !ok {
		return
	}
	k.raise(k, &ApiKeyRoleRemoved{EventBase: k.nextBase(actorID), RoleID: id.Value()})
}

// Delete raises the terminal deletion event. Deleting twice is a no-op.
func (k *ApiKey) Delete(actorID string) {
	if k.IsDeleted() {
		return
	}
	k.raise(k, &ApiKeyDeleted{EventBase: k.nextBase(actorID)})
}

func (k *ApiKey) apply(event Event) {
	switch e := event.(type) {
	case *ApiKeyCreated:
		k.displayName = e.DisplayName
		k.secret = e.Secret
		k.roles = map[string]struct{}{}
		k.customAttributes = map[string]string{}
	case *ApiKeyUpdated:
		if e.DisplayName != nil {
			k.displayName = *e.DisplayName
		}
		if e.Description != nil {
			k.description = e.Description.Value
		}
		if e.ExpiresOn != nil {
			at := *e.ExpiresOn
			k.expiresOn = &at
		}
		for key, value := range e.CustomAttributes {
			if value == nil {
				delete(k.customAttributes, key)
			} else {
				k.customAttributes[key] = *value
			}
		}
	case *ApiKeyRoleAdded:
		k.roles[e.RoleID] = struct{}{}
	case *ApiKeyRoleRemoved:
		delete(k.roles, e.RoleID)
	case *ApiKeyAuthenticated:
		at := e.OccurredOn()
		k.authenticatedOn = &at
	case *ApiKeyDeleted:
		k.markDeleted()
	default:
		panic(unhandledEvent("ApiKey", event))
	}
}

func equalDescription(a, b *Description) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// checkSameTenant enforces the cross-tenant association invariant.
func checkSameTenant(holder Identifier, role *Role) error {
	holderTenant, _ := holder.TenantID()
	roleTenant, _ := role.AggregateID().TenantID()
	if holderTenant != roleTenant {
		return &TenantMismatchError{
			AggregateID:     holder.Value(),
			AggregateTenant: holderTenant,
			RoleID:          role.StreamID(),
			RoleTenant:      roleTenant,
		}
	}
	return nil
}
