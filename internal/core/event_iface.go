package core

import "github.com/dkeye/FrameBridge/internal/domain"

// EventMessage is the only event name a Channel listens on.
const EventMessage = "message"

// Event is an inbound message event as delivered by an EventSource.
type Event struct {
	Type   string
	Data   any
	Origin domain.Origin
	// Source is a handle back to the sender; nil when the sender cannot be replied to.
	Source Target
}

// Handler receives inbound events. It runs on the event source's dispatch path.
type Handler func(*Event)

// ListenerID is an opaque handle for one subscription.
type ListenerID uint64

// EventSource abstracts the ambient message-event source of a context.
// Unsubscribe must be a no-op for unknown or already removed IDs.
type EventSource interface {
	Subscribe(eventName string, h Handler) ListenerID
	Unsubscribe(eventName string, id ListenerID)
}
