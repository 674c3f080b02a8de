// internal/domain/user/events_test.go
package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamDeliversInPublishOrder(t *testing.T) {
	stream := NewStream()
	defer stream.Close()

	events, cancel := stream.Subscribe()
	defer cancel()

	stream.Publish(Event{Type: EventSignedIn, User: &User{ID: "u1"}})
	stream.Publish(Event{Type: EventSignedOut, User: &User{ID: "u1"}})

	first := <-events
	second := <-events

	assert.Equal(t, EventSignedIn, first.Type)
	require.NotNil(t, first.User)
	assert.Equal(t, "u1", first.User.ID)
	assert.Equal(t, EventSignedOut, second.Type)
	require.NotNil(t, second.User)
	assert.Equal(t, "u1", second.User.ID)
}

func TestStreamCancelClosesChannel(t *testing.T) {
	stream := NewStream()
	defer stream.Close()

	events, cancel := stream.Subscribe()
	cancel()

	_, ok := <-events
	assert.False(t, ok)

	// Publishing after cancel must not panic
	stream.Publish(Event{Type: EventSignedOut})
}

func TestStreamCloseClosesAllSubscribers(t *testing.T) {
	stream := NewStream()

	a, cancelA := stream.Subscribe()
	b, cancelB := stream.Subscribe()
	defer cancelA()
	defer cancelB()

	stream.Close()

	_, okA := <-a
	_, okB := <-b
	assert.False(t, okA)
	assert.False(t, okB)

	// Subscribing after close yields a closed channel
	c, cancelC := stream.Subscribe()
	defer cancelC()
	_, okC := <-c
	assert.False(t, okC)
}

func TestStreamSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	stream := NewStream()
	defer stream.Close()

	_, cancel := stream.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		// More events than the subscriber buffer holds
		for i := 0; i < 100; i++ {
			stream.Publish(Event{Type: EventSignedOut})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestSessionStoreTracksAuthState(t *testing.T) {
	stream := NewStream()
	defer stream.Close()

	store := NewSessionStore(stream)
	defer store.Close()

	assert.Nil(t, store.Current())
	assert.False(t, store.IsSignedIn())

	stream.Publish(Event{Type: EventSignedIn, User: &User{ID: "u1", Role: RoleAdmin}})
	require.Eventually(t, store.IsSignedIn, time.Second, 10*time.Millisecond)
	assert.Equal(t, "u1", store.Current().ID)
	assert.True(t, store.IsAdmin())

	stream.Publish(Event{Type: EventSignedOut})
	require.Eventually(t, func() bool { return !store.IsSignedIn() }, time.Second, 10*time.Millisecond)
	assert.False(t, store.IsAdmin())
}

func TestSessionStoreCloseStopsTracking(t *testing.T) {
	stream := NewStream()
	defer stream.Close()

	store := NewSessionStore(stream)
	store.Close()

	// After Close the store no longer follows the stream
	stream.Publish(Event{Type: EventSignedIn, User: &User{ID: "u1"}})
	time.Sleep(50 * time.Millisecond)
	assert.Nil(t, store.Current())
}
