package domain

import (
	"context"
	"time"
)

// SeatEvent is a seat-status delta published after every committed store
// transition. Delivery is at-least-once; consumers must treat events as
// idempotent overwrites keyed by SeatID.
type SeatEvent struct {
	ShowingID string     `json:"showingId"`
	SeatID    string     `json:"seatId"`
	OldStatus SeatStatus `json:"oldStatus"`
	NewStatus SeatStatus `json:"newStatus"`
	At        time.Time  `json:"at"`
}

// Subscription carries a point-in-time snapshot of the seat map followed by
// a live delta stream. The Events channel is closed when the subscription
// ends.
type Subscription struct {
	Snapshot *SeatMap
	Events   <-chan SeatEvent

	close func()
}

func NewSubscription(snapshot *SeatMap, events <-chan SeatEvent, close func()) *Subscription {
	return &Subscription{
		Snapshot: snapshot,
		Events:   events,
		close:    close,
	}
}

func (s *Subscription) Close() {
	if s.close != nil {
		s.close()
	}
}

type Notifier interface {
	Publish(ctx context.Context, events []SeatEvent) error
	Subscribe(ctx context.Context, showingID string) (*Subscription, error)
}
