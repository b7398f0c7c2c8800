package app

import (
	"context"
	"sync"
	"time"

	"github.com/dkeye/FrameBridge/internal/codec"
	"github.com/dkeye/FrameBridge/internal/core"
	"github.com/dkeye/FrameBridge/internal/domain"
	"github.com/rs/zerolog/log"
)

// identified is implemented by targets that know which context they point to.
type identified interface {
	ID() domain.ContextID
}

// Host is the page that embeds the frames. It owns a single Channel on its
// window's event source and relays addressed envelopes between frames.
type Host struct {
	Window       *Window
	Registry     *Registry
	Inbox        *Inbox
	TargetOrigin string

	channel *core.Channel
	start   sync.Once
}

func NewHost(win *Window, reg *Registry, inbox *Inbox, targetOrigin string) *Host {
	return &Host{
		Window:       win,
		Registry:     reg,
		Inbox:        inbox,
		TargetOrigin: targetOrigin,
		// Send-only until Start subscribes.
		channel:      core.NewChannel(nil, nil, core.WithTargetOrigin(targetOrigin)),
	}
}

// Start subscribes the host channel. Later calls are no-ops, including after Stop.
func (h *Host) Start() {
	h.start.Do(func() {
		h.channel = core.NewChannel(h.Window.Bus, h.onMessage, core.WithTargetOrigin(h.TargetOrigin))
		log.Info().Str("module", "app.host").Str("id", string(h.Window.Context.ID)).Str("target_origin", h.channel.TargetOrigin()).Msg("host listening")
	})
}

// Stop destroys the host listener and cancels the transport of every registered frame.
func (h *Host) Stop() {
	h.channel.DestroyListener()
	for _, s := range h.Registry.Targets() {
		h.Registry.Cancel(s.ID)
	}
	log.Info().Str("module", "app.host").Msg("host listener destroyed")
}

// Close waits for the host event loop to finish before calling Stop, so no
// host callback runs once Close returns. Stop runs even when ctx expires first.
func (h *Host) Close(ctx context.Context) error {
	var err error
	select {
	case <-h.Window.Loop.Done():
	case <-ctx.Done():
		err = ctx.Err()
		log.Warn().Err(err).Str("module", "app.host").Msg("event loop still running at close")
	}
	h.Stop()
	return err
}

// Disconnect cancels the transport of one frame. The transport unregisters it on exit.
func (h *Host) Disconnect(id domain.ContextID) error {
	if !h.Registry.Cancel(id) {
		return ErrUnknownContext
	}
	return nil
}

// Post queues data on the host's own event loop as an anonymous message,
// the same path a frame's post takes.
func (h *Host) Post(data any) {
	h.Window.Handle(nil).PostMessage(data, string(h.Window.Context.Origin))
}

func (h *Host) Channel() *core.Channel { return h.channel }

func (h *Host) onMessage(e *core.Event) {
	env, isEnvelope := e.Data.(*codec.Envelope)
	if isEnvelope && env.To != "" && env.To != h.Window.Context.ID {
		h.forward(e, env)
		return
	}

	entry := InboxEntry{At: time.Now(), Origin: e.Origin, Data: e.Data}
	if isEnvelope {
		entry.Data = env.Data
	}
	if src, ok := e.Source.(identified); ok {
		entry.From = src.ID()
	}
	h.Inbox.Add(entry)
	log.Debug().Str("module", "app.host").Str("from", string(entry.From)).Str("origin", string(e.Origin)).Msg("message for host")
}

func (h *Host) forward(e *core.Event, env *codec.Envelope) {
	target, ok := h.Registry.Target(env.To)
	if !ok {
		log.Warn().Str("module", "app.host").Str("to", string(env.To)).Msg("relay to unknown context")
		h.channel.Send(e.Source, map[string]any{
			"error": "unknown_context",
			"to":    env.To,
		})
		return
	}
	h.channel.Send(target, env.Data)
	log.Debug().Str("module", "app.host").Str("to", string(env.To)).Str("origin", string(e.Origin)).Msg("relayed")
}

// SendTo posts data to one registered context.
func (h *Host) SendTo(id domain.ContextID, data any) error {
	target, ok := h.Registry.Target(id)
	if !ok {
		return ErrUnknownContext
	}
	h.channel.Send(target, data)
	return nil
}

// Broadcast posts data to every registered context and returns how many were addressed.
func (h *Host) Broadcast(data any) int {
	snaps := h.Registry.Targets()
	for _, s := range snaps {
		h.channel.Send(s.Target, data)
	}
	return len(snaps)
}
