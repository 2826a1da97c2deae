package domain

import (
	"fmt"
	"strings"

	uuid "github.com/google/uuid"
)

// Separator joins the tenant and entity parts of an encoded identifier.
// Neither part may contain it.
const identifierSeparator = ":"

// TenantID is the optional namespace under which unique names are scoped.
// The empty value means the aggregate lives in the global (tenant-less) realm.
type TenantID string

// NewTenantID validates and returns a tenant identifier.
func NewTenantID(value string) (TenantID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%w: tenant id is empty", ErrMalformedIdentifier)
	}
	if strings.Contains(value, identifierSeparator) {
		return "", fmt.Errorf("%w: tenant id %q contains %q", ErrMalformedIdentifier, value, identifierSeparator)
	}
	return TenantID(value), nil
}

// EntityID is the per-aggregate part of a stream identifier.
type EntityID string

// NewEntityID returns a random entity identifier.
func NewEntityID() EntityID {
	return EntityID(uuid.NewString())
}

// ParseEntityID validates and returns an entity identifier.
func ParseEntityID(value string) (EntityID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%w: entity id is empty", ErrMalformedIdentifier)
	}
	if strings.Contains(value, identifierSeparator) {
		return "", fmt.Errorf("%w: entity id %q contains %q", ErrMalformedIdentifier, value, identifierSeparator)
	}
	return EntityID(value), nil
}

// Identifier addresses exactly one aggregate stream: an entity id, optionally
// scoped by a tenant. The encoded form is either "<entity>" or "<tenant>:<entity>".
type Identifier struct {
	tenant TenantID
	entity EntityID
}

// NewIdentifier composes a stream identifier. An empty tenant means global scope.
func NewIdentifier(tenant TenantID, entity EntityID) Identifier {
	return Identifier{tenant: tenant, entity: entity}
}

// ParseIdentifier decodes an encoded stream identifier. Strings containing more
// than one separator are ambiguous and rejected.
func ParseIdentifier(raw string) (Identifier, error) {
	parts := strings.Split(raw, identifierSeparator)
	switch len(parts) {
	case 1:
		entity, err := ParseEntityID(parts[0])
		if err != nil {
			return Identifier{}, err
		}
		return Identifier{entity: entity}, nil
	case 2:
		tenant, err := NewTenantID(parts[0])
		if err != nil {
			return Identifier{}, err
		}
		entity, err := ParseEntityID(parts[1])
		if err != nil {
			return Identifier{}, err
		}
		return Identifier{tenant: tenant, entity: entity}, nil
	default:
		return Identifier{}, fmt.Errorf("%w: %q contains %d separators", ErrMalformedIdentifier, raw, len(parts)-1)
	}
}

// TenantID returns the tenant part; ok is false for global-scope identifiers.
func (i Identifier) TenantID() (TenantID, bool) {
	return i.tenant, i.tenant != ""
}

// EntityID returns the entity part.
func (i Identifier) EntityID() EntityID {
	return i.entity
}

// Value returns the encoded stream identifier.
func (i Identifier) Value() string {
	if i.tenant == "" {
		return string(i.entity)
	}
	return string(i.tenant) + identifierSeparator + string(i.entity)
}

// Equal compares identifiers by value, not by reference.
func (i Identifier) Equal(other Identifier) bool {
	return i.tenant == other.tenant && i.entity == other.entity
}

// IsZero reports whether the identifier is the uninitialized value.
func (i Identifier) IsZero() bool {
	return i.entity == ""
}

// ApiKeyID identifies an ApiKey stream.
type ApiKeyID struct{ Identifier }

// NewApiKeyID mints a fresh ApiKey identifier under the given tenant.
func NewApiKeyID(tenant TenantID) ApiKeyID {
	return ApiKeyID{NewIdentifier(tenant, NewEntityID())}
}

// ParseApiKeyID decodes an encoded ApiKey identifier.
func ParseApiKeyID(raw string) (ApiKeyID, error) {
	id, err := ParseIdentifier(raw)
	if err != nil {
		return ApiKeyID{}, err
	}
	return ApiKeyID{id}, nil
}

// RoleID identifies a Role stream.
type RoleID struct{ Identifier }

// NewRoleID mints a fresh Role identifier under the given tenant.
func NewRoleID(tenant TenantID) RoleID {
	return RoleID{NewIdentifier(tenant, NewEntityID())}
}

// ParseRoleID decodes an encoded Role identifier.
func ParseRoleID(raw string) (RoleID, error) {
	id, err := ParseIdentifier(raw)
	if err != nil {
		return RoleID{}, err
	}
	return RoleID{id}, nil
}

// SessionID identifies a Session stream.
type SessionID struct{ Identifier }

// NewSessionID mints a fresh Session identifier under the given tenant.
func NewSessionID(tenant TenantID) SessionID {
	return SessionID{NewIdentifier(tenant, NewEntityID())}
}

// ParseSessionID decodes an encoded Session identifier.
func ParseSessionID(raw string) (SessionID, error) {
	id, err := ParseIdentifier(raw)
	if err != nil {
		return SessionID{}, err
	}
	return SessionID{id}, nil
}

// UserID identifies a User stream.
type UserID struct{ Identifier }

// NewUserID mints a fresh User identifier under the given tenant.
func NewUserID(tenant TenantID) UserID {
	return UserID{NewIdentifier(tenant, NewEntityID())}
}

// ParseUserID decodes an encoded User identifier.
func ParseUserID(raw string) (UserID, error) {
	id, err := ParseIdentifier(raw)
	if err != nil {
		return UserID{}, err
	}
	return UserID{id}, nil
}

// OneTimePasswordID identifies a OneTimePassword stream.
type OneTimePasswordID struct{ Identifier }

// NewOneTimePasswordID mints a fresh OneTimePassword identifier under the given tenant.
func NewOneTimePasswordID(tenant TenantID) OneTimePasswordID {
	return OneTimePasswordID{NewIdentifier(tenant, NewEntityID())}
}

// ParseOneTimePasswordID decodes an encoded OneTimePassword identifier.
func ParseOneTimePasswordID(raw string) (OneTimePasswordID, error) {
	id, err := ParseIdentifier(raw)
	if err != nil {
		return OneTimePasswordID{}, err
	}
	return OneTimePasswordID{id}, nil
}
