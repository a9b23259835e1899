package mocks

import (
	"context"
	"time"

	"github.com/cinex/seat-reservation-engine/internal/domain"
)

type MockSeatMapStore struct {
	GetSeatMapFunc      func(ctx context.Context, showingID string) (*domain.SeatMap, error)
	TransitionSeatsFunc func(ctx context.Context, showingID string, seatIDs []string, from, to domain.SeatStatus, token string, heldUntil time.Time) error
	ExtendHeldUntilFunc func(ctx context.Context, showingID string, seatIDs []string, token string, heldUntil time.Time) error
}

func (m *MockSeatMapStore) GetSeatMap(ctx context.Context, showingID string) (*domain.SeatMap, error) {
	return m.GetSeatMapFunc(ctx, showingID)
}

func (m *MockSeatMapStore) TransitionSeats(
	ctx context.Context,
	showingID string,
	seatIDs []string,
	from, to domain.SeatStatus,
	token string,
	heldUntil time.Time) error {

	return m.TransitionSeatsFunc(ctx, showingID, seatIDs, from, to, token, heldUntil)
}

func (m *MockSeatMapStore) ExtendHeldUntil(
	ctx context.Context,
	showingID string,
	seatIDs []string,
	token string,
	heldUntil time.Time) error {

	return m.ExtendHeldUntilFunc(ctx, showingID, seatIDs, token, heldUntil)
}
