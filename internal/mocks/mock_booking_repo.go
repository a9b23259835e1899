package mocks

import (
	"context"

	"github.com/cinex/seat-reservation-engine/internal/domain"
)

type MockBookingRepo struct {
	CreateFunc  func(ctx context.Context, booking *domain.Booking) error
	GetByIDFunc func(ctx context.Context, bookingID string) (*domain.Booking, error)
	CancelFunc  func(ctx context.Context, bookingID string) error
}

func (m *MockBookingRepo) Create(ctx context.Context, booking *domain.Booking) error {
	return m.CreateFunc(ctx, booking)
}

func (m *MockBookingRepo) GetByID(ctx context.Context, bookingID string) (*domain.Booking, error) {
	return m.GetByIDFunc(ctx, bookingID)
}

func (m *MockBookingRepo) Cancel(ctx context.Context, bookingID string) error {
	return m.CancelFunc(ctx, bookingID)
}
