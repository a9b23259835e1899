package mocks

import (
	"context"

	"github.com/cinex/seat-reservation-engine/internal/domain"
)

type MockPaymentGateway struct {
	ChargeFunc func(ctx context.Context, amountCents int64, currency, paymentMethodRef string) (domain.ChargeResult, error)
}

func (m *MockPaymentGateway) Charge(
	ctx context.Context,
	amountCents int64,
	currency, paymentMethodRef string) (domain.ChargeResult, error) {

	return m.ChargeFunc(ctx, amountCents, currency, paymentMethodRef)
}
