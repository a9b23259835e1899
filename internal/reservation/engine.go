package reservation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cinex/seat-reservation-engine/internal/domain"
	"github.com/google/uuid"
)

// Engine owns the seat state machine: available -> held -> booked, held ->
// available on release or expiry, and booked -> available only through
// explicit cancellation. No seat is ever committed that is not held under
// the token presented at commit time.
type Engine struct {
	store    domain.SeatMapStore
	holds    domain.HoldRepository
	bookings domain.BookingRepository
	showings domain.ShowingRepository
	notifier domain.Notifier
	logger   *slog.Logger

	now func() time.Time
}

func NewEngine(
	store domain.SeatMapStore,
	holds domain.HoldRepository,
	bookings domain.BookingRepository,
	showings domain.ShowingRepository,
	notifier domain.Notifier,
	logger *slog.Logger,
) *Engine {

	return &Engine{
		store:    store,
		holds:    holds,
		bookings: bookings,
		showings: showings,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Commit atomically turns a live hold into a confirmed booking. The hold
// must exist and be unexpired; the caller is expected to have validated it
// before capturing any funds.
func (e *Engine) Commit(ctx context.Context, token, paymentReference string) (*domain.Booking, error) {
	hold, err := e.holds.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if hold.Expired(e.now()) {
		return nil, domain.ErrHoldExpired
	}

	showing, err := e.showings.GetByID(ctx, hold.ShowingID)
	if err != nil {
		return nil, err
	}

	err = e.store.TransitionSeats(
		ctx,
		hold.ShowingID,
		hold.SeatIDs,
		domain.SeatHeld,
		domain.SeatBooked,
		token,
		time.Time{},
	)
	if err != nil {
		if errors.Is(err, domain.ErrSeatConflict) {
			// The token was exclusive, so a conflict here means the
			// store broke its serialization guarantee. Never retried.
			e.logger.Error(
				"commit conflict on exclusively held seats",
				"hold_token", token,
				"showing_id", hold.ShowingID,
				"seat_ids", hold.SeatIDs,
			)
			return nil, domain.ErrInternalConsistency
		}

		return nil, err
	}

	booking := &domain.Booking{
		ID:               uuid.New().String(),
		ShowingID:        hold.ShowingID,
		SeatIDs:          append([]string(nil), hold.SeatIDs...),
		AmountCents:      int64(len(hold.SeatIDs)) * showing.PriceCents,
		PaymentReference: paymentReference,
		Status:           domain.BookingConfirmed,
		CreatedAt:        e.now(),
	}

	err = e.bookings.Create(ctx, booking)
	if err != nil {
		// Restore the lease so the seats aren't booked without a
		// booking record behind them.
		restoreErr := e.store.TransitionSeats(
			ctx,
			hold.ShowingID,
			hold.SeatIDs,
			domain.SeatBooked,
			domain.SeatHeld,
			token,
			hold.ExpiresAt,
		)
		if restoreErr != nil {
			e.logger.Error(
				"failed to restore hold after booking persistence failure",
				"error", restoreErr,
				"hold_token", token,
			)
		}

		return nil, err
	}

	err = e.holds.Delete(ctx, token)
	if err != nil {
		// The hold is consumed; a dangling record is harmless because
		// release is a no-op once the seats are booked.
		e.logger.Warn("failed to delete committed hold", "error", err, "hold_token", token)
	}

	e.publish(ctx, hold.ShowingID, hold.SeatIDs, domain.SeatHeld, domain.SeatBooked)

	return booking, nil
}

// CancelBooking is a compensating action used only after an external
// payment reversal succeeds; it never runs automatically. Cancelling an
// already-cancelled booking is a no-op success.
func (e *Engine) CancelBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	booking, err := e.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.Status == domain.BookingCancelled {
		return booking, nil
	}

	err = e.store.TransitionSeats(
		ctx,
		booking.ShowingID,
		booking.SeatIDs,
		domain.SeatBooked,
		domain.SeatAvailable,
		"",
		time.Time{},
	)
	if err != nil {
		if errors.Is(err, domain.ErrSeatConflict) {
			e.logger.Error(
				"cancellation conflict on booked seats",
				"booking_id", bookingID,
				"showing_id", booking.ShowingID,
			)
			return nil, domain.ErrInternalConsistency
		}

		return nil, err
	}

	err = e.bookings.Cancel(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	booking.Status = domain.BookingCancelled

	e.publish(ctx, booking.ShowingID, booking.SeatIDs, domain.SeatBooked, domain.SeatAvailable)

	return booking, nil
}

func (e *Engine) publish(ctx context.Context, showingID string, seatIDs []string, from, to domain.SeatStatus) {
	events := make([]domain.SeatEvent, len(seatIDs))
	at := e.now()

	for i, seatID := range seatIDs {
		events[i] = domain.SeatEvent{
			ShowingID: showingID,
			SeatID:    seatID,
			OldStatus: from,
			NewStatus: to,
			At:        at,
		}
	}

	err := e.notifier.Publish(ctx, events)
	if err != nil {
		e.logger.Error("failed to publish seat events", "error", err, "showing_id", showingID)
	}
}
