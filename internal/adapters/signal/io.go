package signal

import (
	"context"
	"time"

	"github.com/dkeye/FrameBridge/internal/codec"
	"github.com/dkeye/FrameBridge/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const writeWait = 5 * time.Second

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	var tick <-chan time.Time
	if ctl.PingPeriod > 0 {
		ticker := time.NewTicker(ctl.PingPeriod)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			// Unblocks readPump's ReadMessage so it unregisters the frame.
			c.Close()
			return
		case <-tick:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump ping")
				return
			}
		case data, ok := <-c.send:
			if !ok {
				log.Info().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(
	ctx context.Context,
	cancel context.CancelFunc,
	meta *domain.Context,
	c *WsSignalConn,
	target *wsTarget,
) {
	defer func() {
		log.Info().Str("module", "signal").Str("id", string(meta.ID)).Msg("readPump closing")
		ctl.Host.Registry.Unregister(meta.ID)
		ctl.Limiter.Forget(meta.ID)
		cancel()
		c.Close()
	}()

	if ctl.ReadLimit > 0 {
		c.conn.SetReadLimit(ctl.ReadLimit)
	}
	if ctl.PingPeriod > 0 {
		pongWait := ctl.PingPeriod * 10 / 9
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		c.conn.SetPongHandler(func(string) error {
			return c.conn.SetReadDeadline(time.Now().Add(pongWait))
		})
	}

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("id", string(meta.ID)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Error().Err(err).Str("module", "signal").Str("id", string(meta.ID)).Msg("readPump read error")
				}
				return
			}
			ctl.handleSignal(meta, c, target, data)
		}
	}
}

func (ctl *SignalWSController) handleSignal(meta *domain.Context, c *WsSignalConn, target *wsTarget, data []byte) {
	env, err := codec.Decode(data)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("id", string(meta.ID)).Msg("bad envelope")
		_ = c.TrySend(codec.ErrorFrame("bad_payload"))
		return
	}

	switch env.Type {
	case codec.TypePost:
		ctl.handlePost(meta, c, target, env)
	case codec.TypePing:
		ctl.handlePing(c)
	case codec.TypeWhoAmI:
		ctl.handleWhoAmI(meta, c)
	case codec.TypeRename:
		ctl.handleRename(meta, c, env)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown signal")
		_ = c.TrySend(codec.ErrorFrame("unknown_type"))
	}
}

func (ctl *SignalWSController) sendJSON(c *WsSignalConn, v any) {
	b, err := codec.Encode(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}
