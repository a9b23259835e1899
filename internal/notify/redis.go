package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/cinex/seat-reservation-engine/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisNotifier publishes seat-status deltas on a per-showing Pub/Sub
// channel, giving cross-process fan-out with the same contract as the
// in-memory hub.
type RedisNotifier struct {
	client redis.UniversalClient
	store  domain.SeatMapStore
	logger *slog.Logger
}

func NewRedisNotifier(client redis.UniversalClient, store domain.SeatMapStore, logger *slog.Logger) *RedisNotifier {
	return &RedisNotifier{
		client: client,
		store:  store,
		logger: logger,
	}
}

func seatEventsChannel(showingID string) string {
	return fmt.Sprintf("seat_events:%s", showingID)
}

func (n *RedisNotifier) Publish(ctx context.Context, events []domain.SeatEvent) error {
	pipe := n.client.Pipeline()

	for _, event := range events {
		eventBytes, err := json.Marshal(event)
		if err != nil {
			return err
		}

		pipe.Publish(ctx, seatEventsChannel(event.ShowingID), eventBytes)
	}

	_, err := pipe.Exec(ctx)

	return err
}

func (n *RedisNotifier) Subscribe(ctx context.Context, showingID string) (*domain.Subscription, error) {
	pubsub := n.client.Subscribe(ctx, seatEventsChannel(showingID))

	// Force the subscription onto the wire before reading the snapshot,
	// so no delta committed after the snapshot can be missed.
	_, err := pubsub.Receive(ctx)
	if err != nil {
		pubsub.Close()
		return nil, err
	}

	snapshot, err := n.store.GetSeatMap(ctx, showingID)
	if err != nil {
		pubsub.Close()
		return nil, err
	}

	out := make(chan domain.SeatEvent, subscriberBuffer)

	go func() {
		defer close(out)

		for msg := range pubsub.Channel() {
			var event domain.SeatEvent

			err := json.Unmarshal([]byte(msg.Payload), &event)
			if err != nil {
				n.logger.Error("failed to unmarshal seat event", "error", err, "showing_id", showingID)
				continue
			}

			select {
			case out <- event:
			default:
				n.logger.Warn("dropping seat event for slow subscriber", "showing_id", showingID, "seat_id", event.SeatID)
			}
		}
	}()

	unsubscribe := func() {
		if err := pubsub.Close(); err != nil {
			n.logger.Error("failed to close pubsub subscription", "error", err, "showing_id", showingID)
		}
	}

	return domain.NewSubscription(snapshot, out, unsubscribe), nil
}
