package domain

import "time"

// Event kind tags for the ApiKey stream.
const (
	KindApiKeyCreated       = "apikey.created"
	KindApiKeyUpdated       = "apikey.updated"
	KindApiKeyRoleAdded     = "apikey.role_added"
	KindApiKeyRoleRemoved   = "apikey.role_removed"
	KindApiKeyAuthenticated = "apikey.authenticated"
	KindApiKeyDeleted       = "apikey.deleted"
)

// ApiKeyCreated is the first event of every ApiKey stream.
type ApiKeyCreated struct {
	EventBase
	DisplayName DisplayName `json:"displayName"`
	Secret      Password    `json:"secret"`
}

// Kind implements Event.
func (ApiKeyCreated) Kind() string { return KindApiKeyCreated }

// ApiKeyUpdated batches field-level diffs accumulated by setters and emitted
// by one Update call. Custom attribute entries map keys to the new value, or
// to nil when the key is removed, so consumers can apply the patch as an
// idempotent upsert/delete.
type ApiKeyUpdated struct {
	EventBase
	DisplayName      *DisplayName            `json:"displayName,omitempty"`
	Description      *Change[*Description]   `json:"description,omitempty"`
	ExpiresOn        *time.Time              `json:"expiresOn,omitempty"`
	CustomAttributes map[string]*string      `json:"customAttributes,omitempty"`
}

// Kind implements Event.
func (ApiKeyUpdated) Kind() string { return KindApiKeyUpdated }

// HasChanges reports whether the patch carries any diff.
func (e ApiKeyUpdated) HasChanges() bool {
	return e.DisplayName != nil || e.Description != nil || e.ExpiresOn != nil || len(e.CustomAttributes) > 0
}

// ApiKeyRoleAdded records a role association.
type ApiKeyRoleAdded struct {
	EventBase
	RoleID string `json:"roleId"`
}

// Kind implements Event.
func (ApiKeyRoleAdded) Kind() string { return KindApiKeyRoleAdded }

// ApiKeyRoleRemoved records the removal of a role association.
type ApiKeyRoleRemoved struct {
	EventBase
	RoleID string `json:"roleId"`
}

// Kind implements Event.
func (ApiKeyRoleRemoved) Kind() string { return KindApiKeyRoleRemoved }

// ApiKeyAuthenticated records a successful authentication.
type ApiKeyAuthenticated struct {
	EventBase
}

// Kind implements Event.
func (ApiKeyAuthenticated) Kind() string { return KindApiKeyAuthenticated }

// ApiKeyDeleted is the terminal event of an ApiKey stream.
type ApiKeyDeleted struct {
	EventBase
}

// Kind implements Event.
func (ApiKeyDeleted) Kind() string { return KindApiKeyDeleted }
