package core

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

type ChannelState int

const (
	Unsubscribed ChannelState = iota
	Subscribed
)

func (s ChannelState) String() string {
	switch s {
	case Subscribed:
		return "subscribed"
	default:
		return "unsubscribed"
	}
}

type Option func(*Channel)

// WithTargetOrigin restricts Send to receivers loaded from origin.
// The default is WildcardOrigin.
func WithTargetOrigin(origin string) Option {
	return func(c *Channel) {
		if origin != "" {
			c.targetOrigin = origin
		}
	}
}

// Channel owns at most one "message" subscription on an EventSource and
// posts outbound messages to targets.
//
// Inbound events are passed to onMessage as-is: no filtering, no origin
// check and no recover. Teardown is explicit; a Channel that is dropped
// without DestroyListener leaks its subscription for the lifetime of source.
type Channel struct {
	source       EventSource
	onMessage    Handler
	targetOrigin string

	mu       sync.Mutex
	listener ListenerID
	active   atomic.Bool
}

// NewChannel subscribes onMessage to source immediately.
// With a nil onMessage (or nil source) the Channel is send-only.
func NewChannel(source EventSource, onMessage Handler, opts ...Option) *Channel {
	c := &Channel{
		source:       source,
		onMessage:    onMessage,
		targetOrigin: WildcardOrigin,
	}
	for _, opt := range opts {
		opt(c)
	}

	if onMessage == nil || source == nil {
		log.Debug().Str("module", "core.channel").Msg("send-only channel")
		return c
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.active.Store(true)
	c.listener = source.Subscribe(EventMessage, c.dispatch)
	log.Debug().Str("module", "core.channel").Uint64("listener", uint64(c.listener)).Msg("subscribed")
	return c
}

func (c *Channel) dispatch(e *Event) {
	// A source may still hold this listener in a dispatch snapshot taken before teardown.
	if !c.active.Load() {
		return
	}
	c.onMessage(e)
}

// Send posts message to target with the channel's destination policy.
func (c *Channel) Send(target Target, message any) {
	if target == nil {
		log.Debug().Str("module", "core.channel").Msg("send to nil target dropped")
		return
	}
	target.PostMessage(message, c.targetOrigin)
}

// DestroyListener releases the subscription. Safe to call any number of times.
func (c *Channel) DestroyListener() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active.Swap(false) {
		return
	}
	c.source.Unsubscribe(EventMessage, c.listener)
	log.Debug().Str("module", "core.channel").Uint64("listener", uint64(c.listener)).Msg("unsubscribed")
}

func (c *Channel) State() ChannelState {
	if c.active.Load() {
		return Subscribed
	}
	return Unsubscribed
}

func (c *Channel) TargetOrigin() string { return c.targetOrigin }
