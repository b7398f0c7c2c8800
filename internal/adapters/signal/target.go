package signal

import (
	"errors"

	"github.com/dkeye/FrameBridge/internal/app"
	"github.com/dkeye/FrameBridge/internal/codec"
	"github.com/dkeye/FrameBridge/internal/core"
	"github.com/dkeye/FrameBridge/internal/domain"
	"github.com/rs/zerolog/log"
)

type frameSender interface {
	TrySend([]byte) error
	Close()
}

// wsTarget posts into a browser frame over its signal connection.
// Failures are logged and swallowed.
type wsTarget struct {
	meta   *domain.Context
	from   domain.Origin
	conn   frameSender
	policy app.Policy
	cancel func()
}

func (t *wsTarget) ID() domain.ContextID { return t.meta.ID }

func (t *wsTarget) PostMessage(message any, targetOrigin string) {
	if !core.OriginAllowed(targetOrigin, t.meta.Origin) {
		log.Debug().
			Str("module", "signal").
			Str("id", string(t.meta.ID)).
			Str("target_origin", targetOrigin).
			Msg("origin mismatch, message dropped")
		return
	}
	b, err := codec.Message(t.from, message)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("id", string(t.meta.ID)).Msg("message not serializable")
		return
	}
	err = t.conn.TrySend(b)
	if err == nil {
		return
	}
	log.Warn().Err(err).Str("module", "signal").Str("id", string(t.meta.ID)).Msg("post dropped")
	if errors.Is(err, ErrBackpressure) && t.policy != nil && t.policy.OnBackPressure(t.meta) == app.Disconnect {
		log.Info().Str("module", "signal").Str("id", string(t.meta.ID)).Msg("disconnecting slow frame")
		if t.cancel != nil {
			t.cancel()
		}
		t.conn.Close()
	}
}
