package domain

import (
	"context"
	"time"
)

// Hold is a time-bounded exclusive claim on a set of seats, not yet paid
// for. It is owned by the requesting session until committed or released,
// and is never shared.
type Hold struct {
	Token     string
	ShowingID string
	SeatIDs   []string // ordered, distinct
	CreatedAt time.Time
	ExpiresAt time.Time

	// PaymentPending shields the hold from the expiry sweep while a
	// charge with an unknown outcome is being resolved.
	PaymentPending bool
}

func (h *Hold) Expired(now time.Time) bool {
	return !h.ExpiresAt.After(now)
}

type HoldRepository interface {
	Create(ctx context.Context, hold *Hold) error
	GetByToken(ctx context.Context, token string) (*Hold, error)
	UpdateExpiry(ctx context.Context, token string, expiresAt time.Time) error

	// MarkPaymentPending flags the hold as awaiting a payment outcome
	// and pushes its expiry out to cover the resolution window. Flagged
	// holds are never returned by ExpiredBefore.
	MarkPaymentPending(ctx context.Context, token string, expiresAt time.Time) error

	// Delete is idempotent; deleting an unknown token is a no-op.
	Delete(ctx context.Context, token string) error

	// ExpiredBefore returns up to limit holds whose expiry has passed.
	// Used by the sweep to reclaim abandoned seats.
	ExpiredBefore(ctx context.Context, cutoff time.Time, limit int) ([]*Hold, error)
}
