package reservation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cinex/seat-reservation-engine/internal/domain"
)

const DefaultChargeTimeout = 30 * time.Second

// Coordinator ties a payment outcome to a set of held seats. The hold is
// validated before the gateway is invoked, so funds are never captured
// against a dead hold.
type Coordinator struct {
	engine  *Engine
	manager *HoldManager
	holds   domain.HoldRepository

	showings domain.ShowingRepository
	gateway  domain.PaymentGateway
	logger   *slog.Logger

	chargeTimeout time.Duration
	currency      string

	now func() time.Time
}

func NewCoordinator(
	engine *Engine,
	manager *HoldManager,
	holds domain.HoldRepository,
	showings domain.ShowingRepository,
	gateway domain.PaymentGateway,
	logger *slog.Logger,
	chargeTimeout time.Duration,
	currency string,
) *Coordinator {

	if chargeTimeout <= 0 {
		chargeTimeout = DefaultChargeTimeout
	}

	return &Coordinator{
		engine:        engine,
		manager:       manager,
		holds:         holds,
		showings:      showings,
		gateway:       gateway,
		logger:        logger,
		chargeTimeout: chargeTimeout,
		currency:      currency,
		now:           time.Now,
	}
}

// Checkout charges exactly seats x price for the hold's showing and, on
// success, commits the hold. A declined charge releases the hold
// immediately so the seats aren't blocked for the remaining TTL. An
// indeterminate outcome keeps the hold: releasing before the outcome is
// known risks a paid-for seat going to someone else. The caller resolves
// it later through ResolvePayment.
func (c *Coordinator) Checkout(ctx context.Context, token, paymentMethodRef string) (*domain.Booking, error) {
	hold, err := c.holds.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if hold.Expired(c.now()) {
		return nil, domain.ErrHoldExpired
	}

	showing, err := c.showings.GetByID(ctx, hold.ShowingID)
	if err != nil {
		return nil, err
	}

	amountCents := int64(len(hold.SeatIDs)) * showing.PriceCents

	chargeCtx, cancel := context.WithTimeout(ctx, c.chargeTimeout)
	defer cancel()

	result, err := c.gateway.Charge(chargeCtx, amountCents, c.currency, paymentMethodRef)
	if err != nil {
		// A transport error means the charge may have gone through.
		c.logger.Error(
			"payment outcome unknown",
			"error", err,
			"hold_token", token,
			"amount_cents", amountCents,
		)
		return nil, c.retainPending(ctx, token)
	}

	return c.settle(ctx, token, result)
}

// ResolvePayment applies the definitive outcome of a previously
// indeterminate charge, reported by a gateway callback or a poll.
func (c *Coordinator) ResolvePayment(ctx context.Context, token string, result domain.ChargeResult) (*domain.Booking, error) {
	if result.Status == domain.ChargeIndeterminate {
		return nil, fmt.Errorf("cannot resolve payment with an indeterminate outcome: %w", domain.ErrPaymentPending)
	}

	return c.settle(ctx, token, result)
}

func (c *Coordinator) settle(ctx context.Context, token string, result domain.ChargeResult) (*domain.Booking, error) {
	switch result.Status {
	case domain.ChargeSucceeded:
		return c.engine.Commit(ctx, token, result.Reference)

	case domain.ChargeDeclined:
		err := c.manager.ReleaseHold(ctx, token)
		if err != nil {
			c.logger.Error("failed to release hold after declined payment", "error", err, "hold_token", token)
		}

		return nil, domain.PaymentDeclinedError{Reason: result.DeclineReason}

	default:
		return nil, c.retainPending(ctx, token)
	}
}

// retainPending shields the hold from the expiry sweep until the charge
// outcome is known, then reports the pending state to the caller.
func (c *Coordinator) retainPending(ctx context.Context, token string) error {
	err := c.manager.RetainForPayment(ctx, token)
	if err != nil {
		c.logger.Error("failed to retain hold for pending payment", "error", err, "hold_token", token)
	}

	return domain.ErrPaymentPending
}
