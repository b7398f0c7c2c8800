package app

import (
	"testing"

	"github.com/dkeye/FrameBridge/internal/core"
)

func TestBus_SubscribeDispatch(t *testing.T) {
	bus := NewBus()

	var got []*core.Event
	id := bus.Subscribe(core.EventMessage, func(e *core.Event) {
		got = append(got, e)
	})
	if id == 0 {
		t.Error("Subscribe should return a non-zero ID")
	}
	if bus.ListenerCount(core.EventMessage) != 1 {
		t.Errorf("expected 1 listener, got %d", bus.ListenerCount(core.EventMessage))
	}

	e := &core.Event{Type: core.EventMessage, Data: "ping"}
	bus.Dispatch(e)

	if len(got) != 1 || got[0] != e {
		t.Fatalf("expected the dispatched event once, got %v", got)
	}
}

func TestBus_DispatchOtherEventName(t *testing.T) {
	bus := NewBus()
	bus.Subscribe("other", func(*core.Event) {
		t.Error("listener for another event name should not be called")
	})
	bus.Dispatch(&core.Event{Type: core.EventMessage})
}

func TestBus_RegistrationOrder(t *testing.T) {
	bus := NewBus()
	var order []int
	for i := 1; i <= 3; i++ {
		i := i
		bus.Subscribe(core.EventMessage, func(*core.Event) { order = append(order, i) })
	}
	bus.Dispatch(&core.Event{Type: core.EventMessage})

	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("order = %v, want [1 2 3]", order)
	}
}

func TestBus_UnsubscribeIdempotent(t *testing.T) {
	bus := NewBus()
	calls := 0
	id := bus.Subscribe(core.EventMessage, func(*core.Event) { calls++ })

	bus.Unsubscribe(core.EventMessage, id)
	bus.Unsubscribe(core.EventMessage, id)
	bus.Unsubscribe(core.EventMessage, core.ListenerID(999))
	bus.Unsubscribe("never-used", id)

	bus.Dispatch(&core.Event{Type: core.EventMessage})
	if calls != 0 {
		t.Errorf("unsubscribed listener called %d times", calls)
	}
	if bus.ListenerCount(core.EventMessage) != 0 {
		t.Errorf("expected 0 listeners, got %d", bus.ListenerCount(core.EventMessage))
	}
}

func TestBus_UnsubscribeKeepsOthers(t *testing.T) {
	bus := NewBus()
	var calls []string
	a := bus.Subscribe(core.EventMessage, func(*core.Event) { calls = append(calls, "a") })
	bus.Subscribe(core.EventMessage, func(*core.Event) { calls = append(calls, "b") })

	bus.Unsubscribe(core.EventMessage, a)
	bus.Dispatch(&core.Event{Type: core.EventMessage})

	if len(calls) != 1 || calls[0] != "b" {
		t.Errorf("calls = %v, want [b]", calls)
	}
}

func TestBus_PanicIsRecovered(t *testing.T) {
	bus := NewBus()
	called := false
	bus.Subscribe(core.EventMessage, func(*core.Event) { panic("listener failure") })
	bus.Subscribe(core.EventMessage, func(*core.Event) { called = true })

	bus.Dispatch(&core.Event{Type: core.EventMessage})

	if !called {
		t.Error("listener after a panicking one should still run")
	}
}

func TestBus_WithChannel(t *testing.T) {
	bus := NewBus()
	calls := 0
	ch := core.NewChannel(bus, func(*core.Event) { calls++ })

	bus.Dispatch(&core.Event{Type: core.EventMessage, Data: map[string]any{"data": "ping"}})
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}

	ch.DestroyListener()
	bus.Dispatch(&core.Event{Type: core.EventMessage})
	if calls != 1 {
		t.Errorf("expected still 1 call after teardown, got %d", calls)
	}
	if bus.ListenerCount(core.EventMessage) != 0 {
		t.Errorf("listener leaked: %d", bus.ListenerCount(core.EventMessage))
	}
}

func TestBus_DestroyDuringDispatch(t *testing.T) {
	bus := NewBus()
	var second *core.Channel
	secondCalls := 0

	core.NewChannel(bus, func(*core.Event) { second.DestroyListener() })
	second = core.NewChannel(bus, func(*core.Event) { secondCalls++ })

	bus.Dispatch(&core.Event{Type: core.EventMessage})
	if secondCalls != 0 {
		t.Errorf("listener removed earlier in the same dispatch ran %d times", secondCalls)
	}
}
