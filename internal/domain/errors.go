package domain

import (
	"errors"
	"fmt"
)

var (
	ErrSeatConflict        = errors.New("seat(s) are not in the expected status")
	ErrHoldNotFound        = errors.New("hold not found")
	ErrHoldExpired         = errors.New("hold has expired")
	ErrShowingNotFound     = errors.New("showing not found")
	ErrBookingNotFound     = errors.New("booking not found")
	ErrPaymentPending      = errors.New("payment outcome is not yet resolved")
	ErrInternalConsistency = errors.New("seat state diverged from hold ownership")
)

// PaymentDeclinedError reports a declined charge. It is distinct from the
// reservation errors above: it triggers an immediate hold release, never a
// retry of the reservation logic.
type PaymentDeclinedError struct {
	Reason string
}

func (e PaymentDeclinedError) Error() string {
	return fmt.Sprintf("payment declined: %s", e.Reason)
}
