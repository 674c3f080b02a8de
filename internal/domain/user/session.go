// internal/domain/user/session.go
package user

import (
	"sync"
)

// SessionStore tracks the currently signed-in identity by consuming the
// auth event stream. It subscribes at construction and keeps the latest
// identity until a signed-out event clears it. Close releases the
// subscription; the store reports no identity afterwards.
//
// A SessionStore follows one session, so it belongs to a single-session
// consumer such as an embedded client. The HTTP layer derives identity per
// request from JWT claims and must not share one store across users.
type SessionStore struct {
	mu      sync.RWMutex
	current *User

	cancel func()
	done   chan struct{}
	once   sync.Once
}

// NewSessionStore creates a session store subscribed to the given stream
func NewSessionStore(stream *Stream) *SessionStore {
	events, cancel := stream.Subscribe()

	store := &SessionStore{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go store.run(events)

	return store
}

// Current returns the signed-in identity, or nil when signed out
func (s *SessionStore) Current() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// IsSignedIn reports whether an identity is present
func (s *SessionStore) IsSignedIn() bool {
	return s.Current() != nil
}

// IsAdmin reports whether the current identity carries the admin role
func (s *SessionStore) IsAdmin() bool {
	current := s.Current()
	return current != nil && current.IsAdmin()
}

// Close cancels the stream subscription and waits for the consumer to stop
func (s *SessionStore) Close() {
	s.once.Do(func() {
		s.cancel()
		<-s.done
	})
}

func (s *SessionStore) run(events <-chan Event) {
	defer close(s.done)

	for evt := range events {
		s.mu.Lock()
		switch evt.Type {
		case EventSignedIn:
			s.current = evt.User
		case EventSignedOut:
			s.current = nil
		}
		s.mu.Unlock()
	}

	// Stream closed underneath us; nothing is signed in anymore.
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}
