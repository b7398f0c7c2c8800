package signal

import (
	"github.com/dkeye/FrameBridge/internal/codec"
	"github.com/dkeye/FrameBridge/internal/core"
	"github.com/dkeye/FrameBridge/internal/domain"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handlePing(c *WsSignalConn) {
	ctl.sendJSON(c, codec.Envelope{Type: codec.TypePong})
}

// handlePost hands a frame's envelope to the host event loop as a "message" event.
func (ctl *SignalWSController) handlePost(
	meta *domain.Context,
	c *WsSignalConn,
	target *wsTarget,
	env *codec.Envelope,
) {
	if !ctl.Limiter.Allow(meta.ID) {
		log.Warn().Str("module", "signal").Str("id", string(meta.ID)).Msg("post rate limited")
		_ = c.TrySend(codec.ErrorFrame("rate_limited"))
		return
	}

	err := ctl.Host.Window.Loop.Enqueue(&core.Event{
		Type:   core.EventMessage,
		Data:   env,
		Origin: meta.Origin,
		Source: target,
	})
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("id", string(meta.ID)).Msg("host loop rejected post")
		_ = c.TrySend(codec.ErrorFrame("host_busy"))
	}
}

func (ctl *SignalWSController) handleWhoAmI(meta *domain.Context, c *WsSignalConn) {
	current := *meta
	if m, ok := ctl.Host.Registry.Get(meta.ID); ok {
		current = *m
	}
	resp := struct {
		Type   string           `json:"type"`
		ID     domain.ContextID `json:"id"`
		Name   string           `json:"name"`
		Origin domain.Origin    `json:"origin,omitempty"`
	}{
		Type:   codec.TypeWhoAmI,
		ID:     current.ID,
		Name:   current.Name,
		Origin: current.Origin,
	}
	ctl.sendJSON(c, resp)
}

func (ctl *SignalWSController) handleRename(meta *domain.Context, c *WsSignalConn, env *codec.Envelope) {
	if err := ctl.Host.Registry.Rename(meta.ID, env.Name); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("id", string(meta.ID)).Msg("rename rejected")
		_ = c.TrySend(codec.ErrorFrame("invalid_name"))
		return
	}
	ctl.handleWhoAmI(meta, c)
}
