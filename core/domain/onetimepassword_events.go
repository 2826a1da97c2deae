package domain

import "time"

// Event kind tags for the OneTimePassword stream.
const (
	KindOneTimePasswordCreated             = "otp.created"
	KindOneTimePasswordValidationFailed    = "otp.validation_failed"
	KindOneTimePasswordValidationSucceeded = "otp.validation_succeeded"
	KindOneTimePasswordUpdated             = "otp.updated"
	KindOneTimePasswordDeleted             = "otp.deleted"
)

// OneTimePasswordCreated is the first event of every OneTimePassword stream.
type OneTimePasswordCreated struct {
	EventBase
	Secret          Password   `json:"secret"`
	ExpiresOn       *time.Time `json:"expiresOn,omitempty"`
	MaximumAttempts *int       `json:"maximumAttempts,omitempty"`
}

// Kind implements Event.
func (OneTimePasswordCreated) Kind() string { return KindOneTimePasswordCreated }

// OneTimePasswordValidationFailed durably records a failed attempt; it is
// raised before the mismatch error is surfaced to the caller.
type OneTimePasswordValidationFailed struct {
	EventBase
}

// Kind implements Event.
func (OneTimePasswordValidationFailed) Kind() string { return KindOneTimePasswordValidationFailed }

// OneTimePasswordValidationSucceeded records the single successful validation.
type OneTimePasswordValidationSucceeded struct {
	EventBase
}

// Kind implements Event.
func (OneTimePasswordValidationSucceeded) Kind() string { return KindOneTimePasswordValidationSucceeded }

// OneTimePasswordUpdated batches custom attribute diffs.
type OneTimePasswordUpdated struct {
	EventBase
	CustomAttributes map[string]*string `json:"customAttributes,omitempty"`
}

// Kind implements Event.
func (OneTimePasswordUpdated) Kind() string { return KindOneTimePasswordUpdated }

// HasChanges reports whether the patch carries any diff.
func (e OneTimePasswordUpdated) HasChanges() bool { return len(e.CustomAttributes) > 0 }

// OneTimePasswordDeleted is the terminal event of a OneTimePassword stream.
type OneTimePasswordDeleted struct {
	EventBase
}

// Kind implements Event.
func (OneTimePasswordDeleted) Kind() string { return KindOneTimePasswordDeleted }
