package mocks

import (
	"context"
	"sync"

	"github.com/cinex/seat-reservation-engine/internal/domain"
)

// MockNotifier records published events. Subscribe can be overridden via
// SubscribeFunc; by default it fails, which is fine for handler tests that
// never stream.
type MockNotifier struct {
	SubscribeFunc func(ctx context.Context, showingID string) (*domain.Subscription, error)

	mu     sync.Mutex
	events []domain.SeatEvent
}

func (m *MockNotifier) Publish(ctx context.Context, events []domain.SeatEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = append(m.events, events...)

	return nil
}

func (m *MockNotifier) Subscribe(ctx context.Context, showingID string) (*domain.Subscription, error) {
	if m.SubscribeFunc != nil {
		return m.SubscribeFunc(ctx, showingID)
	}

	return nil, context.Canceled
}

func (m *MockNotifier) Events() []domain.SeatEvent {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.SeatEvent, len(m.events))
	copy(out, m.events)

	return out
}
