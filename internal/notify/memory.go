package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/cinex/seat-reservation-engine/internal/domain"
)

const subscriberBuffer = 64

// MemoryNotifier fans seat-status deltas out to in-process subscribers.
// A subscriber that falls behind its buffer loses events rather than
// blocking publishers; delivery is at-least-once only for subscribers that
// keep up, which is acceptable because consumers treat events as idempotent
// overwrites and can resubscribe for a fresh snapshot.
type MemoryNotifier struct {
	store  domain.SeatMapStore
	logger *slog.Logger

	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]chan domain.SeatEvent // showing ID -> subscriber ID -> channel
}

func NewMemoryNotifier(store domain.SeatMapStore, logger *slog.Logger) *MemoryNotifier {
	return &MemoryNotifier{
		store:  store,
		logger: logger,
		subs:   make(map[string]map[int]chan domain.SeatEvent),
	}
}

func (n *MemoryNotifier) Publish(ctx context.Context, events []domain.SeatEvent) error {
	for _, event := range events {
		n.mu.RLock()
		channels := make([]chan domain.SeatEvent, 0, len(n.subs[event.ShowingID]))
		for _, ch := range n.subs[event.ShowingID] {
			channels = append(channels, ch)
		}
		n.mu.RUnlock()

		for _, ch := range channels {
			select {
			case ch <- event:
			default:
				n.logger.Warn(
					"dropping seat event for slow subscriber",
					"showing_id", event.ShowingID,
					"seat_id", event.SeatID,
				)
			}
		}
	}

	return nil
}

func (n *MemoryNotifier) Subscribe(ctx context.Context, showingID string) (*domain.Subscription, error) {
	ch := make(chan domain.SeatEvent, subscriberBuffer)

	// Register before taking the snapshot: deltas racing the snapshot read
	// are delivered twice at worst, never lost.
	n.mu.Lock()
	if n.subs[showingID] == nil {
		n.subs[showingID] = make(map[int]chan domain.SeatEvent)
	}
	id := n.nextID
	n.nextID++
	n.subs[showingID][id] = ch
	n.mu.Unlock()

	unsubscribe := func() {
		n.mu.Lock()
		if _, ok := n.subs[showingID][id]; ok {
			delete(n.subs[showingID], id)
			close(ch)
		}
		n.mu.Unlock()
	}

	snapshot, err := n.store.GetSeatMap(ctx, showingID)
	if err != nil {
		unsubscribe()
		return nil, err
	}

	return domain.NewSubscription(snapshot, ch, unsubscribe), nil
}
