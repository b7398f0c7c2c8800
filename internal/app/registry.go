package app

import (
	"context"
	"errors"
	"sync"

	"github.com/dkeye/FrameBridge/internal/core"
	"github.com/dkeye/FrameBridge/internal/domain"
	"github.com/rs/zerolog/log"
)

var ErrUnknownContext = errors.New("unknown context")

type contextEntry struct {
	Meta   *domain.Context
	Target core.Target
	Cancel context.CancelFunc
}

// Registry tracks the frame contexts currently reachable from the host.
type Registry struct {
	mu       sync.RWMutex
	contexts map[domain.ContextID]*contextEntry
}

func NewRegistry() *Registry {
	return &Registry{
		contexts: make(map[domain.ContextID]*contextEntry),
	}
}

func (r *Registry) Register(meta *domain.Context, target core.Target, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contexts[meta.ID] = &contextEntry{Meta: meta, Target: target, Cancel: cancel}
	log.Info().Str("module", "app.registry").Str("id", string(meta.ID)).Str("origin", string(meta.Origin)).Msg("registered context")
}

func (r *Registry) Target(id domain.ContextID) (core.Target, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.contexts[id]; ok {
		return e.Target, true
	}
	return nil, false
}

func (r *Registry) Get(id domain.ContextID) (*domain.Context, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.contexts[id]; ok {
		return e.Meta, true
	}
	return nil, false
}

func (r *Registry) Rename(id domain.ContextID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.contexts[id]
	if !ok {
		return ErrUnknownContext
	}
	if err := e.Meta.SetName(name); err != nil {
		return err
	}
	log.Info().Str("module", "app.registry").Str("id", string(id)).Str("name", name).Msg("renamed context")
	return nil
}

func (r *Registry) Unregister(id domain.ContextID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.contexts, id)
	log.Info().Str("module", "app.registry").Str("id", string(id)).Msg("unregistered context")
}

func (r *Registry) List() []domain.Context {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Context, 0, len(r.contexts))
	for _, e := range r.contexts {
		out = append(out, *e.Meta)
	}
	return out
}

type regSnap struct {
	ID     domain.ContextID
	Target core.Target
}

func (r *Registry) Targets() []regSnap {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]regSnap, 0, len(r.contexts))
	for id, e := range r.contexts {
		out = append(out, regSnap{ID: id, Target: e.Target})
	}
	return out
}

// Cancel stops the transport bound to id.
func (r *Registry) Cancel(id domain.ContextID) bool {
	r.mu.RLock()
	e, ok := r.contexts[id]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("id", string(id)).Msg("canceled context")
	return true
}
