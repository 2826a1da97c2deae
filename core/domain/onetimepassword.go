package domain

import "time"

// OneTimePassword is a single-use secret with an optional expiration and an
// optional attempt budget. Every validation attempt, successful or not, is
// durably counted.
type OneTimePassword struct {
	Root

	secret              Password
	expiresOn           *time.Time
	maximumAttempts     *int
	attemptCount        int
	validationSucceeded bool
	customAttributes    map[string]string

	updated OneTimePasswordUpdated
}

// NewOneTimePassword creates a OneTimePassword and raises its creation event.
// expiresOn and maximumAttempts are optional; nil disables the corresponding guard.
func NewOneTimePassword(id OneTimePasswordID, secret Password, expiresOn *time.Time, maximumAttempts *int, actorID string) *OneTimePassword {
	p := &OneTimePassword{Root: newRoot(id.Identifier)}
	p.raise(p, &OneTimePasswordCreated{
		EventBase:       p.nextBase(actorID),
		Secret:          secret,
		ExpiresOn:       expiresOn,
		MaximumAttempts: maximumAttempts,
	})
	return p
}

// LoadOneTimePassword reconstructs a OneTimePassword from its persisted history.
func LoadOneTimePassword(history []Event) (*OneTimePassword, error) {
	p := &OneTimePassword{}
	if err := p.replay(p, history); err != nil {
		return nil, err
	}
	return p, nil
}

// ID returns the typed identifier.
func (p *OneTimePassword) ID() OneTimePasswordID { return OneTimePasswordID{p.AggregateID()} }

// ExpiresOn returns the expiration, or nil when the password never expires.
func (p *OneTimePassword) ExpiresOn() *time.Time { return p.expiresOn }

// MaximumAttempts returns the attempt budget, or nil when unlimited.
func (p *OneTimePassword) MaximumAttempts() *int { return p.maximumAttempts }

// AttemptCount returns the number of validation attempts made so far.
func (p *OneTimePassword) AttemptCount() int { return p.attemptCount }

// HasValidationSucceeded reports whether the password has already been used.
func (p *OneTimePassword) HasValidationSucceeded() bool { return p.validationSucceeded }

// IsExpired reports whether the password is expired at the supplied moment.
func (p *OneTimePassword) IsExpired(at time.Time) bool {
	return p.expiresOn != nil && !p.expiresOn.After(at)
}

// CustomAttributes returns a copy of the attribute map.
func (p *OneTimePassword) CustomAttributes() map[string]string { return copyAttributes(p.customAttributes) }

// Validate checks the supplied plaintext. Guard order is fixed: already used,
// expired, attempt budget, then secret match. A mismatch raises a failure
// event (incrementing the attempt count) before the error is surfaced, so a
// failed attempt is still durably recorded. Success also counts as an attempt.
func (p *OneTimePassword) Validate(secret string, actorID string) error {
	if p.validationSucceeded {
		return ErrOneTimePasswordAlreadyUsed
	}
	if p.IsExpired(time.Now().UTC()) {
		return ErrOneTimePasswordExpired
	}
	if p.maximumAttempts != nil && p.attemptCount >= *p.maximumAttempts {
		return ErrMaximumAttemptsReached
	}
	if p.secret == nil || !p.secret.IsMatch(secret) {
		p.raise(p, &OneTimePasswordValidationFailed{EventBase: p.nextBase(actorID)})
		return ErrIncorrectOneTimePassword
	}
	p.raise(p, &OneTimePasswordValidationSucceeded{EventBase: p.nextBase(actorID)})
	return nil
}

// SetCustomAttribute stages an attribute upsert.
func (p *OneTimePassword) SetCustomAttribute(key, value string) error {
	key, value, err := validateCustomAttribute(key, value)
	if err != nil {
		return err
	}
	if current, ok := p.customAttributes[key]; ok && current == value {
		delete(p.updated.CustomAttributes, key)
		return nil
	}
	if p.updated.CustomAttributes == nil {
		p.updated.CustomAttributes = map[string]*string{}
	}
	p.updated.CustomAttributes[key] = &value
	return nil
}

// RemoveCustomAttribute stages an attribute removal.
func (p *OneTimePassword) RemoveCustomAttribute(key string) error {
	key = trimKey(key)
	if err := validateCustomAttributeKey(key); err != nil {
		return err
	}
	if _, ok := p.customAttributes[key]; !ok {
		delete(p.updated.CustomAttributes, key)
		return nil
	}
	if p.updated.CustomAttributes == nil {
		p.updated.CustomAttributes = map[string]*string{}
	}
	p.updated.CustomAttributes[key] = nil
	return nil
}

// Update raises the accumulated patch, if it has net changes.
func (p *OneTimePassword) Update(actorID string) {
	if !p.updated.HasChanges() {
		return
	}
	event := p.updated
	event.EventBase = p.nextBase(actorID)
	p.raise(p, &event)
	p.updated = OneTimePasswordUpdated{}
}

// Delete raises the terminal deletion event. Deleting twice is a no-op.
func (p *OneTimePassword) Delete(actorID string) {
	if p.IsDeleted() {
		return
	}
	p.raise(p, &OneTimePasswordDeleted{EventBase: p.nextBase(actorID)})
}

func (p *OneTimePassword) apply(event Event) {
	switch e := event.(type) {
	case *OneTimePasswordCreated:
		p.secret = e.Secret
		p.expiresOn = e.ExpiresOn
		p.maximumAttempts = e.MaximumAttempts
		p.customAttributes = map[string]string{}
	case *OneTimePasswordValidationFailed:
		p.attemptCount++
	case *OneTimePasswordValidationSucceeded:
		p.attemptCount++
		p.validationSucceeded = true
	case *OneTimePasswordUpdated:
		for key, value := range e.CustomAttributes {
			if value == nil {
				delete(p.customAttributes, key)
			} else {
				p.customAttributes[key] = *value
			}
		}
	case *OneTimePasswordDeleted:
		p.markDeleted()
	default:
		panic(unhandledEvent("OneTimePassword", event))
	}
}
