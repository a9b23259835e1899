package payment

import (
	"context"
	"strings"

	"github.com/cinex/seat-reservation-engine/internal/domain"
	"github.com/google/uuid"
)

// MockGateway is a deterministic gateway for development and tests. The
// payment method reference selects the outcome: refs starting with
// "pm_declined" are declined, refs starting with "pm_pending" are
// indeterminate, and everything else succeeds.
type MockGateway struct{}

func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

func (g *MockGateway) Charge(
	ctx context.Context,
	amountCents int64,
	currency, paymentMethodRef string,
) (domain.ChargeResult, error) {

	switch {
	case strings.HasPrefix(paymentMethodRef, "pm_declined"):
		return domain.ChargeResult{
			Status:        domain.ChargeDeclined,
			DeclineReason: "card_declined",
		}, nil
	case strings.HasPrefix(paymentMethodRef, "pm_pending"):
		return domain.ChargeResult{Status: domain.ChargeIndeterminate}, nil
	default:
		return domain.ChargeResult{
			Status:    domain.ChargeSucceeded,
			Reference: "ch_" + uuid.New().String(),
		}, nil
	}
}
