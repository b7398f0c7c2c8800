package app

import (
	"sync"
	"time"

	"github.com/dkeye/FrameBridge/internal/domain"
)

type InboxEntry struct {
	At     time.Time        `json:"at"`
	From   domain.ContextID `json:"from,omitempty"`
	Origin domain.Origin    `json:"origin,omitempty"`
	Data   any              `json:"data"`
}

// Inbox keeps the most recent messages addressed to the host.
type Inbox struct {
	mu      sync.Mutex
	entries []InboxEntry
	next    int
	full    bool
}

func NewInbox(size int) *Inbox {
	if size <= 0 {
		size = 1
	}
	return &Inbox{entries: make([]InboxEntry, size)}
}

func (in *Inbox) Add(e InboxEntry) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.entries[in.next] = e
	in.next = (in.next + 1) % len(in.entries)
	if in.next == 0 {
		in.full = true
	}
}

// Snapshot returns entries oldest first.
func (in *Inbox) Snapshot() []InboxEntry {
	in.mu.Lock()
	defer in.mu.Unlock()
	if !in.full {
		out := make([]InboxEntry, in.next)
		copy(out, in.entries[:in.next])
		return out
	}
	out := make([]InboxEntry, 0, len(in.entries))
	out = append(out, in.entries[in.next:]...)
	out = append(out, in.entries[:in.next]...)
	return out
}
