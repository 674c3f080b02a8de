// internal/domain/user/events.go
package user

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// EventType identifies an auth state transition
type EventType string

const (
	EventSignedIn  EventType = "signed_in"
	EventSignedOut EventType = "signed_out"
)

// Event represents an auth state change carried on the stream. Signed-in
// events carry the full identity; signed-out events carry only the ID of
// the identity whose session ended.
type Event struct {
	Type EventType
	User *User
}

// Stream is an explicit auth event stream. Subscribers receive events in
// publish order; the identity service publishes on every sign-in/out and
// OAuth completion. Subscriptions have a deterministic lifecycle: callers
// hold the returned cancel func and must call it on teardown.
type Stream struct {
	mu     sync.Mutex
	subs   map[int]chan Event
	nextID int
	closed bool
}

// NewStream creates a new auth event stream
func NewStream() *Stream {
	return &Stream{
		subs: make(map[int]chan Event),
	}
}

// Subscribe registers a subscriber and returns its channel plus a cancel
// func that removes the subscription and closes the channel.
func (s *Stream) Subscribe() (<-chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++

	ch := make(chan Event, 16)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	s.subs[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers an event to every subscriber. A subscriber that has
// fallen 16 events behind misses the event; a warning is logged and the
// next re-fetch driven by a later event reconverges state.
func (s *Stream) Publish(evt Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	for _, ch := range s.subs {
		select {
		case ch <- evt:
		default:
			logrus.WithField("event", evt.Type).Warn("auth event dropped for slow subscriber")
		}
	}
}

// Close shuts the stream down and closes all subscriber channels
func (s *Stream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}
