// internal/domain/analytics/watcher.go
package analytics

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/domain/order"
)

// Watcher keeps the dashboard summary warm by listening to order events
// on the Redis pub/sub channel and re-computing the stats on every event.
// The dashboard endpoint reads the cached copy instead of hitting the
// database per request.
type Watcher struct {
	service     *Service
	redisClient *redis.Client

	mu    sync.RWMutex
	stats *DashboardStats

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// NewWatcher creates a watcher over the given analytics service
func NewWatcher(service *Service, redisClient *redis.Client) *Watcher {
	return &Watcher{
		service:     service,
		redisClient: redisClient,
		done:        make(chan struct{}),
	}
}

// Start computes the initial stats and begins listening for order events
func (w *Watcher) Start(ctx context.Context) error {
	stats, err := w.service.GetStats(ctx)
	if err != nil {
		return err
	}
	w.setStats(stats)

	runCtx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel

	pubsub := w.redisClient.Subscribe(runCtx, order.EventsChannel)
	go w.run(runCtx, pubsub)

	return nil
}

// Stats returns the latest cached dashboard summary
func (w *Watcher) Stats() *DashboardStats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

// Close stops the watcher and releases the subscription
func (w *Watcher) Close() {
	w.once.Do(func() {
		if w.cancel != nil {
			w.cancel()
			<-w.done
		}
	})
}

// Private helper methods

func (w *Watcher) run(ctx context.Context, pubsub *redis.PubSub) {
	defer close(w.done)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			w.refresh(ctx, msg.Channel)
		}
	}
}

func (w *Watcher) refresh(ctx context.Context, channel string) {
	stats, err := w.service.GetStats(ctx)
	if err != nil {
		logrus.WithError(err).WithField("channel", channel).Warn("Failed to refresh dashboard stats")
		return
	}
	w.setStats(stats)
}

func (w *Watcher) setStats(stats *DashboardStats) {
	w.mu.Lock()
	w.stats = stats
	w.mu.Unlock()
}
