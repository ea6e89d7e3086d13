// Package session keeps one search controller per API client in memory.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"stocksearch/internal/search"
)

var ErrNotFound = errors.New("session: not found")

type entry struct {
	ctrl     *search.Controller
	lastSeen time.Time
}

// Store maps session IDs to controllers and forgets the ones idle longer than TTL.
type Store struct {
	newController func() *search.Controller
	ttl           time.Duration
	log           zerolog.Logger
	now           func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

func NewStore(newController func() *search.Controller, ttl time.Duration, log zerolog.Logger) *Store {
	return &Store{
		newController: newController,
		ttl:           ttl,
		log:           log,
		now:           time.Now,
		sessions:      make(map[string]*entry),
	}
}

// Create starts a session and returns its ID.
func (s *Store) Create() (string, *search.Controller) {
	id := uuid.NewString()
	ctrl := s.newController()

	s.mu.Lock()
	s.sessions[id] = &entry{ctrl: ctrl, lastSeen: s.now()}
	n := len(s.sessions)
	s.mu.Unlock()

	s.log.Debug().Str("session", id).Int("sessions", n).Msg("session created")
	return id, ctrl
}

// Get returns the controller for id and marks the session as used.
func (s *Store) Get(id string) (*search.Controller, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	e.lastSeen = s.now()
	return e.ctrl, nil
}

// Delete drops the session and cancels its in-flight work.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	e, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	e.ctrl.Close()
	return nil
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep removes sessions idle for longer than the TTL and returns how many.
func (s *Store) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.ttl)

	var expired []*entry
	s.mu.Lock()
	for id, e := range s.sessions {
		if e.lastSeen.Before(cutoff) {
			expired = append(expired, e)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, e := range expired {
		e.ctrl.Close()
	}
	if len(expired) > 0 {
		s.log.Info().Int("expired", len(expired)).Msg("idle sessions swept")
	}
	return len(expired)
}

// Run sweeps every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
