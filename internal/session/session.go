package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a session ID is unknown or expired.
var ErrNotFound = errors.New("session not found")

// Status is the authentication snapshot of one conversation. A session
// starts logged out; only a successful signup or login flips it.
type Status struct {
	LoggedIn bool   `json:"logged_in"`
	UUID     string `json:"uuid,omitempty"`
}

type state struct {
	status    Status
	createdAt time.Time
}

// Store holds per-conversation state in memory. Sessions have no
// persistence; a process restart logs everyone out.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*state
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*state)}
}

// Create opens a new conversation session and returns its ID.
func (s *Store) Create() string {
	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = &state{createdAt: time.Now()}
	s.mu.Unlock()
	return id
}

// Status returns the authentication snapshot for the given session.
func (s *Store) Status(id string) (Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.sessions[id]
	if !ok {
		return Status{}, ErrNotFound
	}
	return st.status, nil
}

// Login marks the session as authenticated as the given user UUID. This is
// the sole mechanism establishing authentication for the conversation.
func (s *Store) Login(id, userUUID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}
	st.status = Status{LoggedIn: true, UUID: userUUID}
	return nil
}
