package anonymous

import (
	"context"
	"sync"
	"time"
)

// Scopes keeps one T per session id, built on first use. Entries idle longer
// than idle are dropped; everything they hold is persisted, so a later
// request rebuilds them.
type Scopes[T any] struct {
	mu      sync.Mutex
	build   func(ctx context.Context, sessionID string) (T, error)
	release func(T)
	idle    time.Duration
	now     func() time.Time
	entries map[string]*scopeEntry[T]
}

type scopeEntry[T any] struct {
	value    T
	lastUsed time.Time
}

// NewScopes builds a registry. release, when set, runs for every dropped
// entry and for every entry on Close.
func NewScopes[T any](build func(ctx context.Context, sessionID string) (T, error), release func(T), idle time.Duration) *Scopes[T] {
	return &Scopes[T]{
		build:   build,
		release: release,
		idle:    idle,
		now:     time.Now,
		entries: make(map[string]*scopeEntry[T]),
	}
}

func (s *Scopes[T]) Get(ctx context.Context, sessionID string) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)
	if e, ok := s.entries[sessionID]; ok {
		e.lastUsed = now
		return e.value, nil
	}
	v, err := s.build(ctx, sessionID)
	if err != nil {
		var zero T
		return zero, err
	}
	s.entries[sessionID] = &scopeEntry[T]{value: v, lastUsed: now}
	return v, nil
}

// Len reports the number of live entries.
func (s *Scopes[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Close releases every entry.
func (s *Scopes[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.entries {
		if s.release != nil {
			s.release(e.value)
		}
		delete(s.entries, id)
	}
}

func (s *Scopes[T]) sweep(now time.Time) {
	if s.idle <= 0 {
		return
	}
	for id, e := range s.entries {
		if now.Sub(e.lastUsed) > s.idle {
			if s.release != nil {
				s.release(e.value)
			}
			delete(s.entries, id)
		}
	}
}
