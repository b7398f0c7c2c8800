package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/dkeye/FrameBridge/internal/app"
	"github.com/dkeye/FrameBridge/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const sessionKeyPrefix = "frame:"

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

// WSConn is an indirection over *websocket.Conn to ease testing.
type WSConn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(mt int, data []byte) error
	SetWriteDeadline(t time.Time) error
	SetReadDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(appData string) error)
	Close() error
}

// SignalWSController accepts frame connections and bridges them to the host.
type SignalWSController struct {
	Host    *app.Host
	Policy  app.Policy
	Limiter *RateLimiter

	HostOrigin domain.Origin
	ReadLimit  int64
	PingPeriod time.Duration
	SendBuffer int
}

type WsSignalConn struct {
	conn WSConn
	send chan []byte

	mu     sync.RWMutex
	closed bool
}

func NewWsSignalConn(conn WSConn, buffer int) *WsSignalConn {
	if buffer <= 0 {
		buffer = 1
	}
	return &WsSignalConn{
		conn: conn,
		send: make(chan []byte, buffer),
	}
}

func (c *WsSignalConn) TrySend(b []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrConnClosed
	}
	select {
	case c.send <- b:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	// Origins are recorded on the context, not enforced at upgrade time.
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	name := c.DefaultQuery("name", "frame")
	origin := domain.Origin(c.GetHeader("Origin"))

	// A browser session keeps one ContextID per frame name across reconnects.
	sess := sessions.Default(c)
	key := sessionKeyPrefix + name
	prev, _ := sess.Get(key).(string)
	if _, live := ctl.Host.Registry.Get(domain.ContextID(prev)); live {
		prev = ""
	}
	meta, err := domain.RestoreContext(domain.ContextID(prev), name, origin)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess.Set(key, string(meta.ID))
	if err := sess.Save(); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("session save")
	}

	// The upgrade hijacks the connection, so cookies must travel in its response header.
	respHeader := http.Header{}
	for _, v := range c.Writer.Header().Values("Set-Cookie") {
		respHeader.Add("Set-Cookie", v)
	}
	ws, err := upgrader.Upgrade(c.Writer, c.Request, respHeader)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	log.Info().
		Str("module", "signal").
		Str("id", string(meta.ID)).
		Str("origin", string(origin)).
		Str("client_token", c.GetString("client_token")).
		Bool("resumed", prev != "").
		Msg("new frame connection")

	ctl.Serve(ctx, meta, ws)
}

// Serve binds an upgraded connection to meta and starts its pumps.
func (ctl *SignalWSController) Serve(ctx context.Context, meta *domain.Context, ws WSConn) {
	conn := NewWsSignalConn(ws, ctl.SendBuffer)
	ctx, cancel := context.WithCancel(ctx)
	target := &wsTarget{
		meta:   meta,
		from:   ctl.HostOrigin,
		conn:   conn,
		policy: ctl.Policy,
		cancel: cancel,
	}
	ctl.Host.Registry.Register(meta, target, cancel)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, meta, conn, target)
}
