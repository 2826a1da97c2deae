package domain

import (
	"errors"
	"fmt"
)

// Validation errors, raised by constructors and setters before any event is raised.
var (
	// ErrMalformedIdentifier indicates a stream identifier could not be decoded.
	ErrMalformedIdentifier = errors.New("identity: malformed identifier")
	// ErrInvalidDisplayName indicates a display name failed validation.
	ErrInvalidDisplayName = errors.New("identity: invalid display name")
	// ErrInvalidUniqueName indicates a unique name failed validation.
	ErrInvalidUniqueName = errors.New("identity: invalid unique name")
	// ErrInvalidCustomAttribute indicates a custom attribute key or value failed validation.
	ErrInvalidCustomAttribute = errors.New("identity: invalid custom attribute")
	// ErrExpirationNotInFuture indicates an expiration instant at or before the current time.
	ErrExpirationNotInFuture = errors.New("identity: expiration is not in the future")
	// ErrCannotExtendExpiration indicates an attempt to postpone an existing expiration.
	ErrCannotExtendExpiration = errors.New("identity: expiration cannot be extended")
)

// Credential errors, raised by authentication state machines.
var (
	// ErrApiKeyExpired indicates the API key's expiration has passed.
	ErrApiKeyExpired = errors.New("identity: api key is expired")
	// ErrIncorrectApiKeySecret indicates the supplied API key secret does not match.
	ErrIncorrectApiKeySecret = errors.New("identity: incorrect api key secret")
	// ErrSessionNotActive indicates the session was already signed out.
	ErrSessionNotActive = errors.New("identity: session is not active")
	// ErrSessionNotPersistent indicates a renewal attempt on a session without a secret.
	ErrSessionNotPersistent = errors.New("identity: session is not persistent")
	// ErrIncorrectSessionSecret indicates the supplied session secret does not match.
	ErrIncorrectSessionSecret = errors.New("identity: incorrect session secret")
	// ErrOneTimePasswordAlreadyUsed indicates the one-time password was already validated.
	ErrOneTimePasswordAlreadyUsed = errors.New("identity: one-time password already used")
	// ErrOneTimePasswordExpired indicates the one-time password's expiration has passed.
	ErrOneTimePasswordExpired = errors.New("identity: one-time password is expired")
	// ErrMaximumAttemptsReached indicates the one-time password's attempt budget is exhausted.
	ErrMaximumAttemptsReached = errors.New("identity: maximum attempts reached")
	// ErrIncorrectOneTimePassword indicates the supplied one-time password does not match.
	ErrIncorrectOneTimePassword = errors.New("identity: incorrect one-time password")
	// ErrUserHasNoPassword indicates an authentication attempt against a password-less user.
	ErrUserHasNoPassword = errors.New("identity: user has no password")
	// ErrIncorrectUserPassword indicates the supplied user password does not match.
	ErrIncorrectUserPassword = errors.New("identity: incorrect user password")
)

// TenantMismatchError reports an attempt to associate a role with an aggregate
// living under a different tenant.
type TenantMismatchError struct {
	AggregateID     string
	AggregateTenant TenantID
	RoleID          string
	RoleTenant      TenantID
}

func (e *TenantMismatchError) Error() string {
	return fmt.Sprintf("identity: role %q (tenant %q) cannot be attached to %q (tenant %q)",
		e.RoleID, e.RoleTenant, e.AggregateID, e.AggregateTenant)
}
