package domain

// Session is a signed-in presence of a User. A session holding a secret is
// persistent (renewable); one without is ephemeral. Session actions default
// their actor to the owning user.
type Session struct {
	Root

	userID           UserID
	secret           Password
	active           bool
	customAttributes map[string]string

	updated SessionUpdated
}

// NewSession creates a Session for the given user and raises its creation
// event. Pass a nil secret for an ephemeral session.
func NewSession(id SessionID, userID UserID, secret Password, actorID string) *Session {
	s := &Session{Root: newRoot(id.Identifier)}
	if actorID == "" {
		actorID = userID.Value()
	}
	s.raise(s, &SessionCreated{EventBase: s.nextBase(actorID), UserID: userID.Value(), Secret: secret})
	return s
}

// LoadSession reconstructs a Session from its persisted history.
func LoadSession(history []Event) (*Session, error) {
	s := &Session{}
	if err := s.replay(s, history); err != nil {
		return nil, err
	}
	return s, nil
}

// ID returns the typed identifier.
func (s *Session) ID() SessionID { return SessionID{s.AggregateID()} }

// UserID returns the owning user, immutable after creation.
func (s *Session) UserID() UserID { return s.userID }

// IsActive reports whether the session has not been signed out.
func (s *Session) IsActive() bool { return s.active }

// IsPersistent is derived, not stored: a session is persistent exactly when it
// holds a secret.
func (s *Session) IsPersistent() bool { return s.secret != nil }

// CustomAttributes returns a copy of the attribute map.
func (s *Session) CustomAttributes() map[string]string { return copyAttributes(s.customAttributes) }

// Renew verifies the current secret and rotates it. Guard order is fixed:
// activity, persistence, then secret match; all failures leave no state change.
func (s *Session) Renew(secret string, newSecret Password, actorID string) error {
	if !s.active {
		return ErrSessionNotActive
	}
	if s.secret == nil {
		return ErrSessionNotPersistent
	}
	if !s.secret.IsMatch(secret) {
		return ErrIncorrectSessionSecret
	}
	if actorID == "" {
		actorID = s.userID.Value()
	}
	s.raise(s, &SessionRenewed{EventBase: s.nextBase(actorID), Secret: newSecret})
	return nil
}

// SignOut deactivates the session. Signing out an inactive session is a no-op:
// no event is raised and the version does not advance.
func (s *Session) SignOut(actorID string) {
	if !s.active {
		return
	}
	if actorID == "" {
		actorID = s.userID.Value()
	}
	s.raise(s, &SessionSignedOut{EventBase: s.nextBase(actorID)})
}

// SetCustomAttribute stages an attribute upsert.
func (s *Session) SetCustomAttribute(key, value string) error {
	key, value, err := validateCustomAttribute(key, value)
	if err != nil {
		return err
	}
	if current, ok := s.customAttributes[key]; ok && current == value {
		delete(s.updated.CustomAttributes, key)
		return nil
	}
	if s.updated.CustomAttributes == nil {
		s.updated.CustomAttributes = map[string]*string{}
	}
	s.updated.CustomAttributes[key] = &value
	return nil
}

// RemoveCustomAttribute stages an attribute removal.
func (s *Session) RemoveCustomAttribute(key string) error {
	key = trimKey(key)
	if err := validateCustomAttributeKey(key); err != nil {
		return err
	}
	if _, ok := s.customAttributes[key]; !ok {
		delete(s.updated.CustomAttributes, key)
		return nil
	}
	if s.updated.CustomAttributes == nil {
		s.updated.CustomAttributes = map[string]*string{}
	}
	s.updated.CustomAttributes[key] = nil
	return nil
}

// Update raises the accumulated patch, if it has net changes.
func (s *Session) Update(actorID string) {
	if !s.updated.HasChanges() {
		return
	}
	if actorID == "" {
		actorID = s.userID.Value()
	}
	event := s.updated
	event.EventBase = s.nextBase(actorID)
	s.raise(s, &event)
	s.updated = SessionUpdated{}
}

// Delete raises the terminal deletion event. Deleting twice is a no-op.
func (s *Session) Delete(actorID string) {
	if s.IsDeleted() {
		return
	}
	if actorID == "" {
		actorID = s.userID.Value()
	}
	s.raise(s, &SessionDeleted{EventBase: s.nextBase(actorID)})
}

func (s *Session) apply(event Event) {
	switch e := event.(type) {
	case *SessionCreated:
		userID, err := ParseUserID(e.UserID)
		if err == nil {
			s.userID = userID
		}
		s.secret = e.Secret
		s.active = true
		s.customAttributes = map[string]string{}
	case *SessionRenewed:
		s.secret = e.Secret
	case *SessionSignedOut:
		s.active = false
	case *SessionUpdated:
		for key, value := range e.CustomAttributes {
			if value == nil {
				delete(s.customAttributes, key)
			} else {
				s.customAttributes[key] = *value
			}
		}
	case *SessionDeleted:
		s.markDeleted()
	default:
		panic(unhandledEvent("Session", event))
	}
}
