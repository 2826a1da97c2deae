package domain

import (
	"time"

	uuid "github.com/google/uuid"
)

// Event is an immutable, versioned fact describing a past state transition of
// one aggregate stream, carrying actor and timestamp provenance.
type Event interface {
	// EventID returns the event's globally unique identifier.
	EventID() uuid.UUID
	// Kind returns the stable type tag used by codecs and publishers.
	Kind() string
	// StreamID returns the encoded identifier of the owning stream.
	StreamID() string
	// EventVersion returns the stream version this event advanced the aggregate to.
	EventVersion() int64
	// ActorID returns the identifier of the actor the event is attributed to.
	ActorID() string
	// OccurredOn returns the instant the event was raised.
	OccurredOn() time.Time
}

// EventBase carries the provenance fields shared by every event. Aggregate
// event types embed it by value.
type EventBase struct {
	ID      uuid.UUID `json:"id"`
	Stream  string    `json:"stream"`
	Version int64     `json:"version"`
	Actor   string    `json:"actor"`
	At      time.Time `json:"at"`
}

// EventID implements Event.
func (e EventBase) EventID() uuid.UUID { return e.ID }

// StreamID implements Event.
func (e EventBase) StreamID() string { return e.Stream }

// EventVersion implements Event.
func (e EventBase) EventVersion() int64 { return e.Version }

// ActorID implements Event.
func (e EventBase) ActorID() string { return e.Actor }

// OccurredOn implements Event.
func (e EventBase) OccurredOn() time.Time { return e.At }
