package app

import (
	"context"
	"errors"
	"sync"

	"github.com/dkeye/FrameBridge/internal/core"
	"github.com/rs/zerolog/log"
)

var (
	ErrLoopFull    = errors.New("event loop queue full")
	ErrLoopStopped = errors.New("event loop stopped")
)

// EventLoop serializes inbound events of one context: each event is
// dispatched to completion before the next one is taken from the queue.
type EventLoop struct {
	bus   *Bus
	queue chan *core.Event
	done  chan struct{}

	mu      sync.RWMutex
	stopped bool
}

func NewEventLoop(bus *Bus, size int) *EventLoop {
	if size <= 0 {
		size = 1
	}
	return &EventLoop{
		bus:   bus,
		queue: make(chan *core.Event, size),
		done:  make(chan struct{}),
	}
}

// Enqueue never blocks.
func (l *EventLoop) Enqueue(e *core.Event) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.stopped {
		return ErrLoopStopped
	}
	select {
	case l.queue <- e:
		return nil
	default:
		return ErrLoopFull
	}
}

// Run dispatches queued events until ctx is done. Events still queued at
// that point are discarded.
func (l *EventLoop) Run(ctx context.Context) {
	defer func() {
		l.mu.Lock()
		l.stopped = true
		l.mu.Unlock()
		close(l.done)
		log.Info().Str("module", "app.loop").Int("discarded", len(l.queue)).Msg("event loop stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case e := <-l.queue:
			l.bus.Dispatch(e)
		}
	}
}

// Done is closed once Run has returned.
func (l *EventLoop) Done() <-chan struct{} { return l.done }
