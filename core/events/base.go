package events

import (
	"strings"
	"time"
)

// Kind identifies an event type. Kinds are dot-namespaced, "capture.started"
// or "playback.ended", so sinks can filter on the area before the dot.
type Kind string

// Namespace returns the area part of the kind, the text before the first
// dot. Kinds without a dot are their own namespace.
func (k Kind) Namespace() string {
	namespace, _, _ := strings.Cut(string(k), ".")
	return namespace
}

// Event is implemented by every pipeline lifecycle event. Events are
// immutable snapshots taken at emission time.
type Event interface {
	Kind() Kind
	Timestamp() time.Time
}

// Base carries the kind and emission time shared by all events. Embedded by
// value in every concrete event.
type Base struct {
	kind       Kind
	occurredAt time.Time
}

// NewBase stamps a Base with the current time. Called by the New*
// constructors, never directly by emitters.
func NewBase(kind Kind) Base {
	return Base{kind: kind, occurredAt: time.Now()}
}

func (b Base) Kind() Kind {
	return b.kind
}

// Timestamp reports when the event was emitted.
func (b Base) Timestamp() time.Time {
	return b.occurredAt
}
