package domain

import "context"

type ChargeStatus string

const (
	ChargeSucceeded ChargeStatus = "succeeded"
	ChargeDeclined  ChargeStatus = "declined"

	// ChargeIndeterminate means the outcome is unknown: the charge may or
	// may not have gone through. Callers must not release held seats until
	// a definitive outcome arrives.
	ChargeIndeterminate ChargeStatus = "indeterminate"
)

type ChargeResult struct {
	Status        ChargeStatus
	Reference     string
	DeclineReason string
}

// PaymentGateway is the external payment collaborator. A transport-level
// error from Charge means the outcome is indeterminate, not failed.
type PaymentGateway interface {
	Charge(ctx context.Context, amountCents int64, currency, paymentMethodRef string) (ChargeResult, error)
}
