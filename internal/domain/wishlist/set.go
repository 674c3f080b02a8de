// internal/domain/wishlist/set.go
package wishlist

import (
	"context"
	"sync"

	"github.com/your-org/storefront/internal/domain/user"
)

// maxCachedReconcilers bounds the per-user reconciler cache. The database
// remains the source of truth; an evicted user re-fetches on the next
// request.
const maxCachedReconcilers = 4096

// ReconcilerSet hands out one wishlist reconciler per signed-in user and
// keeps it across requests, so membership checks stay in memory. Auth
// events evict the affected user; their next request re-fetches from the
// database.
type ReconcilerSet struct {
	service *Service

	mu     sync.Mutex
	byUser map[string]*Reconciler

	cancelAuth func()
	done       chan struct{}
	closeOnce  sync.Once
}

// NewReconcilerSet creates a set subscribed to the auth event stream
func NewReconcilerSet(service *Service, stream *user.Stream) *ReconcilerSet {
	s := &ReconcilerSet{
		service: service,
		byUser:  make(map[string]*Reconciler),
		done:    make(chan struct{}),
	}

	events, cancel := stream.Subscribe()
	s.cancelAuth = cancel
	go s.watchAuth(events)

	return s
}

// For returns the reconciler for a signed-in user, hydrating one on first
// use. Anonymous callers get ErrSignInRequired.
func (s *ReconcilerSet) For(ctx context.Context, userID string) (*Reconciler, error) {
	if userID == "" {
		return nil, ErrSignInRequired
	}

	s.mu.Lock()
	if r, ok := s.byUser[userID]; ok {
		s.mu.Unlock()
		return r, nil
	}
	s.mu.Unlock()

	r, err := NewReconciler(ctx, s.service, userID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.byUser[userID]; ok {
		return existing, nil
	}
	if len(s.byUser) >= maxCachedReconcilers {
		for evicted := range s.byUser {
			delete(s.byUser, evicted)
			break
		}
	}
	s.byUser[userID] = r
	return r, nil
}

// Close stops the auth event consumer
func (s *ReconcilerSet) Close() {
	s.closeOnce.Do(func() {
		s.cancelAuth()
		<-s.done
	})
}

// Private helper methods

func (s *ReconcilerSet) watchAuth(events <-chan user.Event) {
	defer close(s.done)

	for evt := range events {
		if evt.User == nil || evt.User.ID == "" {
			continue
		}
		s.mu.Lock()
		delete(s.byUser, evt.User.ID)
		s.mu.Unlock()
	}
}
