package app

import (
	"github.com/dkeye/FrameBridge/internal/core"
	"github.com/dkeye/FrameBridge/internal/domain"
	"github.com/rs/zerolog/log"
)

// Window is an in-process messaging context with its own event source and loop.
type Window struct {
	Context *domain.Context
	Bus     *Bus
	Loop    *EventLoop
}

func NewWindow(meta *domain.Context, queueSize int) *Window {
	bus := NewBus()
	return &Window{
		Context: meta,
		Bus:     bus,
		Loop:    NewEventLoop(bus, queueSize),
	}
}

// Handle returns a target that posts into w on behalf of from.
// from may be nil for anonymous senders.
func (w *Window) Handle(from *Window) core.Target {
	return &windowHandle{to: w, from: from}
}

type windowHandle struct {
	to   *Window
	from *Window
}

func (h *windowHandle) ID() domain.ContextID { return h.to.Context.ID }

func (h *windowHandle) PostMessage(message any, targetOrigin string) {
	if !core.OriginAllowed(targetOrigin, h.to.Context.Origin) {
		log.Debug().
			Str("module", "app.window").
			Str("target_origin", targetOrigin).
			Str("origin", string(h.to.Context.Origin)).
			Msg("origin mismatch, message dropped")
		return
	}

	e := &core.Event{Type: core.EventMessage, Data: message}
	if h.from != nil {
		e.Origin = h.from.Context.Origin
		e.Source = h.from.Handle(h.to)
	}
	if err := h.to.Loop.Enqueue(e); err != nil {
		log.Warn().Err(err).Str("module", "app.window").Str("to", string(h.to.Context.ID)).Msg("post dropped")
	}
}
