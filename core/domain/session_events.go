package domain

// Event kind tags for the Session stream.
const (
	KindSessionCreated   = "session.created"
	KindSessionRenewed   = "session.renewed"
	KindSessionSignedOut = "session.signed_out"
	KindSessionUpdated   = "session.updated"
	KindSessionDeleted   = "session.deleted"
)

// SessionCreated is the first event of every Session stream. Secret is nil for
// ephemeral sessions; its presence alone makes the session persistent.
type SessionCreated struct {
	EventBase
	UserID string   `json:"userId"`
	Secret Password `json:"secret,omitempty"`
}

// Kind implements Event.
func (SessionCreated) Kind() string { return KindSessionCreated }

// SessionRenewed records a successful renewal; the secret is rotated on every
// renewal and the previous one can never be used again.
type SessionRenewed struct {
	EventBase
	Secret Password `json:"secret"`
}

// Kind implements Event.
func (SessionRenewed) Kind() string { return KindSessionRenewed }

// SessionSignedOut deactivates the session; there is no way back.
type SessionSignedOut struct {
	EventBase
}

// Kind implements Event.
func (SessionSignedOut) Kind() string { return KindSessionSignedOut }

// SessionUpdated batches custom attribute diffs.
type SessionUpdated struct {
	EventBase
	CustomAttributes map[string]*string `json:"customAttributes,omitempty"`
}

// Kind implements Event.
func (SessionUpdated) Kind() string { return KindSessionUpdated }

// HasChanges reports whether the patch carries any diff.
func (e SessionUpdated) HasChanges() bool { return len(e.CustomAttributes) > 0 }

// SessionDeleted is the terminal event of a Session stream.
type SessionDeleted struct {
	EventBase
}

// Kind implements Event.
func (SessionDeleted) Kind() string { return KindSessionDeleted }
