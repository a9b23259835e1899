package payment

import (
	"context"
	"errors"

	"github.com/cinex/seat-reservation-engine/internal/domain"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
)

// StripeGateway charges through Stripe PaymentIntents. Card declines map
// to a declined result; server-side and transport failures map to an
// indeterminate outcome because the charge may still have gone through.
type StripeGateway struct{}

func NewStripeGateway() *StripeGateway {
	return &StripeGateway{}
}

func (g *StripeGateway) Charge(
	ctx context.Context,
	amountCents int64,
	currency, paymentMethodRef string,
) (domain.ChargeResult, error) {

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(amountCents),
		Currency:      stripe.String(currency),
		PaymentMethod: stripe.String(paymentMethodRef),
		Confirm:       stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	params.Context = ctx

	intent, err := paymentintent.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) {
			if stripeErr.Type == stripe.ErrorTypeCard {
				return domain.ChargeResult{
					Status:        domain.ChargeDeclined,
					DeclineReason: string(stripeErr.Code),
				}, nil
			}

			if stripeErr.HTTPStatusCode < 500 {
				return domain.ChargeResult{
					Status:        domain.ChargeDeclined,
					DeclineReason: stripeErr.Msg,
				}, nil
			}
		}

		return domain.ChargeResult{Status: domain.ChargeIndeterminate}, err
	}

	switch intent.Status {
	case stripe.PaymentIntentStatusSucceeded:
		return domain.ChargeResult{
			Status:    domain.ChargeSucceeded,
			Reference: intent.ID,
		}, nil
	case stripe.PaymentIntentStatusCanceled:
		return domain.ChargeResult{
			Status:        domain.ChargeDeclined,
			DeclineReason: string(intent.Status),
		}, nil
	default:
		// requires_action, processing, etc: not settled yet.
		return domain.ChargeResult{
			Status:    domain.ChargeIndeterminate,
			Reference: intent.ID,
		}, nil
	}
}
