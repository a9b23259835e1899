package domain

import (
	"context"
	"time"
)

type SeatStatus string

const (
	SeatAvailable SeatStatus = "available"
	SeatHeld      SeatStatus = "held"
	SeatBooked    SeatStatus = "booked"
)

type Seat struct {
	ID        string
	Row       string
	Number    int
	Status    SeatStatus
	HoldToken string     // set only while Status == SeatHeld
	HeldUntil *time.Time // set only while Status == SeatHeld
}

type SeatMap struct {
	ShowingID string
	Seats     []Seat // ordered by row, then seat number
}

// Counts returns the number of seats in each status. For any consistent
// seat map, available + held + booked equals the showing's total seats.
func (m *SeatMap) Counts() (available, held, booked int) {
	for _, seat := range m.Seats {
		switch seat.Status {
		case SeatAvailable:
			available++
		case SeatHeld:
			held++
		case SeatBooked:
			booked++
		}
	}

	return available, held, booked
}

// SeatMapStore is the single serialization point for seat status. All seat
// mutations go through TransitionSeats; no caller may read seat status and
// write it back outside of it.
type SeatMapStore interface {
	GetSeatMap(ctx context.Context, showingID string) (*SeatMap, error)

	// TransitionSeats atomically moves every seat in the batch from one
	// status to another. It returns ErrSeatConflict when any seat is not
	// currently in the from status, or, for transitions out of SeatHeld,
	// when the stored hold token doesn't match the supplied one. Either
	// all seats transition or none do. When to is SeatHeld the token and
	// heldUntil are recorded on the seats; otherwise both are cleared.
	TransitionSeats(
		ctx context.Context,
		showingID string,
		seatIDs []string,
		from, to SeatStatus,
		token string,
		heldUntil time.Time,
	) error

	// ExtendHeldUntil pushes the held-until timestamp of seats held under
	// the given token. Returns ErrSeatConflict if any seat is not held
	// under that token.
	ExtendHeldUntil(
		ctx context.Context,
		showingID string,
		seatIDs []string,
		token string,
		heldUntil time.Time,
	) error
}
