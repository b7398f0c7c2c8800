package app

import (
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/dkeye/FrameBridge/internal/core"
	"github.com/rs/zerolog/log"
)

type listener struct {
	id      core.ListenerID
	handler core.Handler
}

// Bus is the in-process message-event source of one context.
// It implements core.EventSource.
type Bus struct {
	mu        sync.RWMutex
	listeners map[string][]listener // eventName -> listeners in registration order
	nextID    atomic.Uint64
}

func NewBus() *Bus {
	return &Bus{
		listeners: make(map[string][]listener),
	}
}

func (b *Bus) Subscribe(eventName string, h core.Handler) core.ListenerID {
	id := core.ListenerID(b.nextID.Add(1))
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners[eventName] = append(b.listeners[eventName], listener{id: id, handler: h})
	return id
}

// Unsubscribe removes a listener. Unknown IDs are ignored.
func (b *Bus) Unsubscribe(eventName string, id core.ListenerID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.listeners[eventName]
	for i, l := range subs {
		if l.id == id {
			// Copy so dispatch snapshots taken earlier stay intact.
			next := make([]listener, 0, len(subs)-1)
			next = append(next, subs[:i]...)
			next = append(next, subs[i+1:]...)
			if len(next) == 0 {
				delete(b.listeners, eventName)
			} else {
				b.listeners[eventName] = next
			}
			return
		}
	}
}

// Dispatch calls every listener of e.Type synchronously, in registration order.
// A panicking listener is reported and the remaining listeners still run.
func (b *Bus) Dispatch(e *core.Event) {
	b.mu.RLock()
	subs := b.listeners[e.Type]
	b.mu.RUnlock()

	for _, l := range subs {
		b.safeCall(l, e)
	}
}

func (b *Bus) safeCall(l listener, e *core.Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("module", "app.bus").
				Str("event", e.Type).
				Uint64("listener", uint64(l.id)).
				Str("panic", fmt.Sprint(r)).
				Bytes("stack", debug.Stack()).
				Msg("uncaught exception in listener")
		}
	}()
	l.handler(e)
}

func (b *Bus) ListenerCount(eventName string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners[eventName])
}
