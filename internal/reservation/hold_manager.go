package reservation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cinex/seat-reservation-engine/internal/domain"
	"github.com/google/uuid"
)

const (
	DefaultHoldTTL = 5 * time.Minute
	MaxHoldTTL     = 10 * time.Minute

	// PaymentResolutionWindow bounds how long a hold stays reserved for
	// a charge whose outcome is still unknown.
	PaymentResolutionWindow = time.Hour
)

// HoldManager grants short-lived exclusive holds on seats. Exclusivity is
// enforced by the seat map store's atomic transition, not by the hold
// records themselves: losing an overlapping request means re-reading the
// map and re-selecting. There is no queueing.
type HoldManager struct {
	store    domain.SeatMapStore
	holds    domain.HoldRepository
	notifier domain.Notifier
	logger   *slog.Logger

	now func() time.Time
}

func NewHoldManager(
	store domain.SeatMapStore,
	holds domain.HoldRepository,
	notifier domain.Notifier,
	logger *slog.Logger,
) *HoldManager {

	return &HoldManager{
		store:    store,
		holds:    holds,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

func clampTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultHoldTTL
	}
	if ttl > MaxHoldTTL {
		return MaxHoldTTL
	}

	return ttl
}

func (m *HoldManager) RequestHold(
	ctx context.Context,
	showingID string,
	seatIDs []string,
	ttl time.Duration,
) (*domain.Hold, error) {

	if len(seatIDs) == 0 {
		return nil, fmt.Errorf("seat ID list must not be empty")
	}

	seen := make(map[string]bool, len(seatIDs))
	for _, seatID := range seatIDs {
		if seen[seatID] {
			return nil, fmt.Errorf("seat ID %s appears more than once", seatID)
		}
		seen[seatID] = true
	}

	seatMap, err := m.store.GetSeatMap(ctx, showingID)
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(seatMap.Seats))
	for _, seat := range seatMap.Seats {
		known[seat.ID] = true
	}

	for _, seatID := range seatIDs {
		if !known[seatID] {
			return nil, fmt.Errorf("seat %s does not belong to showing %s: %w", seatID, showingID, domain.ErrSeatConflict)
		}
	}

	now := m.now()
	hold := &domain.Hold{
		Token:     uuid.New().String(),
		ShowingID: showingID,
		SeatIDs:   append([]string(nil), seatIDs...),
		CreatedAt: now,
		ExpiresAt: now.Add(clampTTL(ttl)),
	}

	err = m.store.TransitionSeats(
		ctx,
		showingID,
		seatIDs,
		domain.SeatAvailable,
		domain.SeatHeld,
		hold.Token,
		hold.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}

	err = m.holds.Create(ctx, hold)
	if err != nil {
		// Seats must not stay held without a lease behind them.
		m.rollbackSeats(ctx, hold)
		return nil, fmt.Errorf("failed to persist hold: %w", err)
	}

	m.publish(ctx, hold, domain.SeatAvailable, domain.SeatHeld)

	return hold, nil
}

func (m *HoldManager) rollbackSeats(ctx context.Context, hold *domain.Hold) {
	err := m.store.TransitionSeats(
		ctx,
		hold.ShowingID,
		hold.SeatIDs,
		domain.SeatHeld,
		domain.SeatAvailable,
		hold.Token,
		time.Time{},
	)
	if err != nil {
		m.logger.Error(
			"failed to roll back seat holds",
			"error", err,
			"showing_id", hold.ShowingID,
			"hold_token", hold.Token,
		)
	}
}

func (m *HoldManager) RenewHold(ctx context.Context, token string, ttl time.Duration) (*domain.Hold, error) {
	hold, err := m.holds.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if hold.Expired(m.now()) {
		return nil, domain.ErrHoldExpired
	}

	expiresAt := m.now().Add(clampTTL(ttl))

	err = m.store.ExtendHeldUntil(ctx, hold.ShowingID, hold.SeatIDs, token, expiresAt)
	if err != nil {
		if errors.Is(err, domain.ErrSeatConflict) {
			// A racing sweep or release may have freed the seats after
			// the expiry check; re-read the lease to tell that apart
			// from a genuine store/lease disagreement.
			current, lookupErr := m.holds.GetByToken(ctx, token)
			switch {
			case errors.Is(lookupErr, domain.ErrHoldNotFound):
				return nil, domain.ErrHoldNotFound
			case lookupErr != nil:
				return nil, lookupErr
			case current.Expired(m.now()):
				return nil, domain.ErrHoldExpired
			}

			m.logger.Error(
				"hold renewal hit inconsistent seat state",
				"hold_token", token,
				"showing_id", hold.ShowingID,
			)
			return nil, domain.ErrInternalConsistency
		}

		return nil, err
	}

	err = m.holds.UpdateExpiry(ctx, token, expiresAt)
	if err != nil {
		return nil, err
	}

	hold.ExpiresAt = expiresAt

	return hold, nil
}

// RetainForPayment shields a hold from expiry while a charge with an
// unknown outcome is being resolved. Releasing such a hold could hand a
// paid-for seat to someone else, so the lease and the seats stay held
// until ResolvePayment settles the charge.
func (m *HoldManager) RetainForPayment(ctx context.Context, token string) error {
	hold, err := m.holds.GetByToken(ctx, token)
	if err != nil {
		return err
	}

	expiresAt := m.now().Add(PaymentResolutionWindow)

	err = m.store.ExtendHeldUntil(ctx, hold.ShowingID, hold.SeatIDs, token, expiresAt)
	if err != nil {
		return err
	}

	return m.holds.MarkPaymentPending(ctx, token, expiresAt)
}

// ReleaseHold returns the hold's seats to available and destroys the
// lease. It is idempotent: releasing an unknown, already-released, or
// already-committed hold is a no-op success.
func (m *HoldManager) ReleaseHold(ctx context.Context, token string) error {
	hold, err := m.holds.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrHoldNotFound) {
			return nil
		}

		return err
	}

	released := true

	err = m.store.TransitionSeats(
		ctx,
		hold.ShowingID,
		hold.SeatIDs,
		domain.SeatHeld,
		domain.SeatAvailable,
		token,
		time.Time{},
	)
	if err != nil {
		if !errors.Is(err, domain.ErrSeatConflict) {
			return err
		}

		// The seats are no longer held under this token (committed, or
		// released by a racing sweep); only the record needs cleaning up.
		released = false
	}

	err = m.holds.Delete(ctx, token)
	if err != nil {
		return err
	}

	if released {
		m.publish(ctx, hold, domain.SeatHeld, domain.SeatAvailable)
	}

	return nil
}

func (m *HoldManager) publish(ctx context.Context, hold *domain.Hold, from, to domain.SeatStatus) {
	events := make([]domain.SeatEvent, len(hold.SeatIDs))
	at := m.now()

	for i, seatID := range hold.SeatIDs {
		events[i] = domain.SeatEvent{
			ShowingID: hold.ShowingID,
			SeatID:    seatID,
			OldStatus: from,
			NewStatus: to,
			At:        at,
		}
	}

	err := m.notifier.Publish(ctx, events)
	if err != nil {
		m.logger.Error("failed to publish seat events", "error", err, "showing_id", hold.ShowingID)
	}
}
