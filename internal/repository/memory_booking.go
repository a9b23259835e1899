package repository

import (
	"context"
	"sync"

	"github.com/cinex/seat-reservation-engine/internal/domain"
)

type MemoryBookingRepository struct {
	mu       sync.RWMutex
	bookings map[string]*domain.Booking
}

func NewMemoryBookingRepository() *MemoryBookingRepository {
	return &MemoryBookingRepository{
		bookings: make(map[string]*domain.Booking),
	}
}

func (r *MemoryBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *booking
	copied.SeatIDs = append([]string(nil), booking.SeatIDs...)
	r.bookings[booking.ID] = &copied

	return nil
}

func (r *MemoryBookingRepository) GetByID(ctx context.Context, bookingID string) (*domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	booking, ok := r.bookings[bookingID]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}

	copied := *booking
	copied.SeatIDs = append([]string(nil), booking.SeatIDs...)

	return &copied, nil
}

func (r *MemoryBookingRepository) Cancel(ctx context.Context, bookingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	booking, ok := r.bookings[bookingID]
	if !ok {
		return domain.ErrBookingNotFound
	}

	booking.Status = domain.BookingCancelled

	return nil
}
