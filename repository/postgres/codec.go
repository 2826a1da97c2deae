package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Logitar/Identity-sub002/core/domain"
	"github.com/Logitar/Identity-sub002/core/port"
)

// Codec maps stored rows back to concrete event types. Most payloads
// unmarshal directly; events carrying a secret go through a DTO so the hash
// is rebuilt with the configured hasher.
type Codec struct {
	hasher   port.PasswordHasher
	decoders map[string]func(payload []byte) (domain.Event, error)
}

// NewCodec builds the kind registry for every event type in the domain.
func NewCodec(hasher port.PasswordHasher) *Codec {
	c := &Codec{hasher: hasher}
	c.decoders = map[string]func([]byte) (domain.Event, error){
		domain.KindApiKeyCreated:       c.decodeApiKeyCreated,
		domain.KindApiKeyUpdated:       decodeInto[domain.ApiKeyUpdated],
		domain.KindApiKeyRoleAdded:     decodeInto[domain.ApiKeyRoleAdded],
		domain.KindApiKeyRoleRemoved:   decodeInto[domain.ApiKeyRoleRemoved],
		domain.KindApiKeyAuthenticated: decodeInto[domain.ApiKeyAuthenticated],
		domain.KindApiKeyDeleted:       decodeInto[domain.ApiKeyDeleted],

		domain.KindRoleCreated:           decodeInto[domain.RoleCreated],
		domain.KindRoleUniqueNameChanged: decodeInto[domain.RoleUniqueNameChanged],
		domain.KindRoleUpdated:           decodeInto[domain.RoleUpdated],
		domain.KindRoleDeleted:           decodeInto[domain.RoleDeleted],

		domain.KindSessionCreated:   c.decodeSessionCreated,
		domain.KindSessionRenewed:   c.decodeSessionRenewed,
		domain.KindSessionSignedOut: decodeInto[domain.SessionSignedOut],
		domain.KindSessionUpdated:   decodeInto[domain.SessionUpdated],
		domain.KindSessionDeleted:   decodeInto[domain.SessionDeleted],

		domain.KindOneTimePasswordCreated:             c.decodeOneTimePasswordCreated,
		domain.KindOneTimePasswordValidationFailed:    decodeInto[domain.OneTimePasswordValidationFailed],
		domain.KindOneTimePasswordValidationSucceeded: decodeInto[domain.OneTimePasswordValidationSucceeded],
		domain.KindOneTimePasswordUpdated:             decodeInto[domain.OneTimePasswordUpdated],
		domain.KindOneTimePasswordDeleted:             decodeInto[domain.OneTimePasswordDeleted],

		domain.KindUserCreated:           decodeInto[domain.UserCreated],
		domain.KindUserUniqueNameChanged: decodeInto[domain.UserUniqueNameChanged],
		domain.KindUserPasswordChanged:   c.decodeUserPasswordChanged,
		domain.KindUserSignedIn:          decodeInto[domain.UserSignedIn],
		domain.KindUserRoleAdded:         decodeInto[domain.UserRoleAdded],
		domain.KindUserRoleRemoved:       decodeInto[domain.UserRoleRemoved],
		domain.KindUserUpdated:           decodeInto[domain.UserUpdated],
		domain.KindUserDeleted:           decodeInto[domain.UserDeleted],
	}
	return c
}

// Encode serializes an event to its stored payload.
func (c *Codec) Encode(event domain.Event) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode event %s: %w", event.Kind(), err)
	}
	return payload, nil
}

// Decode rebuilds the concrete event for a stored row.
func (c *Codec) Decode(kind string, payload []byte) (domain.Event, error) {
	decode, ok := c.decoders[kind]
	if !ok {
		return nil, fmt.Errorf("decode event: unknown kind %q", kind)
	}
	event, err := decode(payload)
	if err != nil {
		return nil, fmt.Errorf("decode event %s: %w", kind, err)
	}
	return event, nil
}

func decodeInto[E any, PE interface {
	*E
	domain.Event
}](payload []byte) (domain.Event, error) {
	event := PE(new(E))
	if err := json.Unmarshal(payload, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (c *Codec) decodePassword(encoded string) (domain.Password, error) {
	if encoded == "" {
		return nil, nil
	}
	return c.hasher.Decode(encoded)
}

type apiKeyCreatedDTO struct {
	domain.EventBase
	DisplayName domain.DisplayName `json:"displayName"`
	Secret      string             `json:"secret"`
}

func (c *Codec) decodeApiKeyCreated(payload []byte) (domain.Event, error) {
	var dto apiKeyCreatedDTO
	if err := json.Unmarshal(payload, &dto); err != nil {
		return nil, err
	}
	secret, err := c.decodePassword(dto.Secret)
	if err != nil {
		return nil, err
	}
	return &domain.ApiKeyCreated{EventBase: dto.EventBase, DisplayName: dto.DisplayName, Secret: secret}, nil
}

type sessionCreatedDTO struct {
	domain.EventBase
	UserID string `json:"userId"`
	Secret string `json:"secret,omitempty"`
}

func (c *Codec) decodeSessionCreated(payload []byte) (domain.Event, error) {
	var dto sessionCreatedDTO
	if err := json.Unmarshal(payload, &dto); err != nil {
		return nil, err
	}
	secret, err := c.decodePassword(dto.Secret)
	if err != nil {
		return nil, err
	}
	return &domain.SessionCreated{EventBase: dto.EventBase, UserID: dto.UserID, Secret: secret}, nil
}

type sessionRenewedDTO struct {
	domain.EventBase
	Secret string `json:"secret"`
}

func (c *Codec) decodeSessionRenewed(payload []byte) (domain.Event, error) {
	var dto sessionRenewedDTO
	if err := json.Unmarshal(payload, &dto); err != nil {
		return nil, err
	}
	secret, err := c.decodePassword(dto.Secret)
	if err != nil {
		return nil, err
	}
	return &domain.SessionRenewed{EventBase: dto.EventBase, Secret: secret}, nil
}

type oneTimePasswordCreatedDTO struct {
	domain.EventBase
	Secret          string     `json:"secret"`
	ExpiresOn       *time.Time `json:"expiresOn,omitempty"`
	MaximumAttempts *int       `json:"maximumAttempts,omitempty"`
}

func (c *Codec) decodeOneTimePasswordCreated(payload []byte) (domain.Event, error) {
	var dto oneTimePasswordCreatedDTO
	if err := json.Unmarshal(payload, &dto); err != nil {
		return nil, err
	}
	secret, err := c.decodePassword(dto.Secret)
	if err != nil {
		return nil, err
	}
	return &domain.OneTimePasswordCreated{
		EventBase:       dto.EventBase,
		Secret:          secret,
		ExpiresOn:       dto.ExpiresOn,
		MaximumAttempts: dto.MaximumAttempts,
	}, nil
}

type userPasswordChangedDTO struct {
	domain.EventBase
	Secret string `json:"secret"`
}

func (c *Codec) decodeUserPasswordChanged(payload []byte) (domain.Event, error) {
	var dto userPasswordChangedDTO
	if err := json.Unmarshal(payload, &dto); err != nil {
		return nil, err
	}
	secret, err := c.decodePassword(dto.Secret)
	if err != nil {
		return nil, err
	}
	return &domain.UserPasswordChanged{EventBase: dto.EventBase, Secret: secret}, nil
}
