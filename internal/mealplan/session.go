package mealplan

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned by Registry.Get for an unknown session ID.
var ErrSessionNotFound = errors.New("session not found")

// Session owns one plan. Every action on the plan runs through Do, one at a time.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	plan     *Plan
	lastUsed time.Time
}

// Do runs fn with exclusive access to the session's plan.
func (s *Session) Do(fn func(p *Plan) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = time.Now()
	return fn(s.plan)
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// Registry keeps the live sessions of the process.
type Registry struct {
	mu       sync.RWMutex
	days     []string
	sessions map[string]*Session
	now      func() time.Time
}

// NewRegistry creates a registry whose sessions are initialized with days.
func NewRegistry(days []string) (*Registry, error) {
	if _, err := New(days); err != nil {
		return nil, err
	}
	return &Registry{
		days:     append([]string(nil), days...),
		sessions: make(map[string]*Session),
		now:      time.Now,
	}, nil
}

// Create starts a new session with an empty plan.
func (r *Registry) Create() (*Session, error) {
	plan, err := New(r.days)
	if err != nil {
		return nil, err
	}
	now := r.now()
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		plan:      plan,
		lastUsed:  now,
	}

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s, nil
}

// Get returns the session with the given ID.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Delete drops a session. Unknown IDs are ignored.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Expire drops every session idle for longer than maxIdle and returns how
// many were removed.
func (r *Registry) Expire(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)

	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, s := range r.sessions {
		if s.idleSince().Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
