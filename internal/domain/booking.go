package domain

import (
	"context"
	"time"
)

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// Booking is created only as the atomic result of a successful commit.
// It is immutable afterwards, except for the cancellation transition.
type Booking struct {
	ID               string
	ShowingID        string
	SeatIDs          []string // immutable snapshot of the committed seats
	AmountCents      int64
	PaymentReference string
	Status           BookingStatus
	CreatedAt        time.Time
}

type BookingRepository interface {
	Create(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, bookingID string) (*Booking, error)

	// Cancel marks a confirmed booking as cancelled. Returns
	// ErrBookingNotFound for unknown IDs.
	Cancel(ctx context.Context, bookingID string) error
}
