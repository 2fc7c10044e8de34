package service

import (
	"context"
	"sync"
	"sync/atomic"
)

// Session is one in-flight search of a caller session
type Session struct {
	id         string
	cancel     context.CancelFunc
	superseded atomic.Bool
}

// Superseded reports whether a newer search of the same session started
func (s *Session) Superseded() bool {
	return s.superseded.Load()
}

// SessionRegistry keeps the latest search per session id. Starting a search
// cancels the previous one of the same session so its adapter calls are
// abandoned.
type SessionRegistry struct {
	mu     sync.Mutex
	active map[string]*Session
}

// NewSessionRegistry creates an empty registry
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{active: make(map[string]*Session)}
}

// Begin registers a search and returns its context. An empty id is never
// superseded.
func (r *SessionRegistry) Begin(parent context.Context, id string) (context.Context, *Session) {
	ctx, cancel := context.WithCancel(parent)
	s := &Session{id: id, cancel: cancel}
	if id == "" {
		return ctx, s
	}

	r.mu.Lock()
	if prev := r.active[id]; prev != nil {
		prev.superseded.Store(true)
		prev.cancel()
	}
	r.active[id] = s
	r.mu.Unlock()

	return ctx, s
}

// End releases the search's context and forgets it if it is still the latest
func (r *SessionRegistry) End(s *Session) {
	if s.id != "" {
		r.mu.Lock()
		if r.active[s.id] == s {
			delete(r.active, s.id)
		}
		r.mu.Unlock()
	}
	s.cancel()
}

// Active returns the number of sessions with a search in flight
func (r *SessionRegistry) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.active)
}
