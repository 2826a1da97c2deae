package domain

import (
	"fmt"
	"time"

	uuid "github.com/google/uuid"
)

// applier is implemented by every aggregate in this package. apply is the
// single state-transition point: it must recognize every event type the
// aggregate can emit and never fail. An unrecognized event is a programming
// error (a handler was not written for a new event type) and panics.
type applier interface {
	apply(Event)
}

// Root is the embeddable aggregate kernel. It tracks the stream identifier,
// the version of the last applied event, creation/update provenance, the
// terminal deletion flag and the ordered list of events raised since the last
// persistence (the pending changes), kept separate from replayed history.
type Root struct {
	id        Identifier
	version   int64
	createdBy string
	createdOn time.Time
	updatedBy string
	updatedOn time.Time
	deleted   bool
	changes   []Event
}

func newRoot(id Identifier) Root {
	return Root{id: id}
}

// AggregateID returns the stream identifier.
func (r *Root) AggregateID() Identifier { return r.id }

// StreamID returns the encoded stream identifier.
func (r *Root) StreamID() string { return r.id.Value() }

// Version returns the number of events applied so far. It starts at zero and
// increments once per event, so the storage boundary can detect concurrent
// writers by comparing it against the stream head.
func (r *Root) Version() int64 { return r.version }

// CreatedBy returns the actor of the first event.
func (r *Root) CreatedBy() string { return r.createdBy }

// CreatedOn returns the instant of the first event.
func (r *Root) CreatedOn() time.Time { return r.createdOn }

// UpdatedBy returns the actor of the latest event.
func (r *Root) UpdatedBy() string { return r.updatedBy }

// UpdatedOn returns the instant of the latest event.
func (r *Root) UpdatedOn() time.Time { return r.updatedOn }

// IsDeleted reports whether the aggregate reached its terminal deleted state.
func (r *Root) IsDeleted() bool { return r.deleted }

// Changes returns a copy of the pending (raised but not yet persisted) events.
func (r *Root) Changes() []Event {
	out := make([]Event, len(r.changes))
	copy(out, r.changes)
	return out
}

// HasChanges reports whether any events are pending persistence.
func (r *Root) HasChanges() bool { return len(r.changes) > 0 }

// ClearChanges resets the pending list. Callers invoke it after persisting.
func (r *Root) ClearChanges() { r.changes = nil }

// nextBase stamps provenance for a new event: a fresh event id, the stream id,
// the next sequence version, the actor (defaulting to the aggregate's own
// identifier for self-authenticated actions) and the current instant.
func (r *Root) nextBase(actorID string) EventBase {
	if actorID == "" {
		actorID = r.id.Value()
	}
	return EventBase{
		ID:      uuid.New(),
		Stream:  r.id.Value(),
		Version: r.version + 1,
		Actor:   actorID,
		At:      time.Now().UTC(),
	}
}

// raise appends the event to the pending list and immediately dispatches it to
// the aggregate's apply handler, so in-memory state reflects it before the
// behavior method returns. Business rules must have been validated before
// calling raise; applying never fails.
func (r *Root) raise(agg applier, event Event) {
	r.changes = append(r.changes, event)
	r.applyEvent(agg, event)
}

// applyEvent dispatches the event and advances version and provenance.
func (r *Root) applyEvent(agg applier, event Event) {
	agg.apply(event)
	r.version = event.EventVersion()
	if r.createdOn.IsZero() {
		r.createdBy = event.ActorID()
		r.createdOn = event.OccurredOn()
	}
	r.updatedBy = event.ActorID()
	r.updatedOn = event.OccurredOn()
}

// replay reconstructs state from persisted history: each event is applied
// exactly as raise would apply it, without re-appending to the pending list
// and without re-validating business rules. History is assumed valid and
// ordered; this is the only legal way to rebuild an aggregate from storage.
func (r *Root) replay(agg applier, history []Event) error {
	if len(history) == 0 {
		return fmt.Errorf("replay: empty history")
	}
	id, err := ParseIdentifier(history[0].StreamID())
	if err != nil {
		return fmt.Errorf("replay: %w", err)
	}
	r.id = id
	for _, event := range history {
		if event.EventVersion() != r.version+1 {
			return fmt.Errorf("replay: stream %s has version gap: expected %d, got %d",
				r.id.Value(), r.version+1, event.EventVersion())
		}
		r.applyEvent(agg, event)
	}
	return nil
}

// markDeleted records the terminal deletion; apply handlers call it for their
// deletion event. It is never reversed.
func (r *Root) markDeleted() { r.deleted = true }

func unhandledEvent(aggregate string, event Event) string {
	return fmt.Sprintf("identity: %s has no handler for event %T", aggregate, event)
}
