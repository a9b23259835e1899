// Package api defines the request and response types of the seat
// reservation HTTP API.
package api

import (
	"time"

	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Message   string    `json:"message"`
	RequestId string    `json:"requestId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type ValidationErrorResponse struct {
	Message          string            `json:"message"`
	ValidationErrors []ValidationError `json:"validationErrors"`
	RequestId        string            `json:"requestId,omitempty"`
	Timestamp        time.Time         `json:"timestamp"`
}

type Seat struct {
	Id     string `json:"id"`
	Row    string `json:"row"`
	Number int    `json:"number"`
	Status string `json:"status"`
}

type SeatRow struct {
	Row   string `json:"row"`
	Seats []Seat `json:"seats"`
}

type SeatMapResponse struct {
	ShowingId string    `json:"showingId"`
	SeatRows  []SeatRow `json:"seatRows"`
}

type CreateHoldRequest struct {
	SeatIdList []string `json:"seatIdList" validate:"required,min=1,max=8,unique,dive,seat_id"`
	TtlSeconds int      `json:"ttlSeconds,omitempty" validate:"omitempty,min=30,max=600"`
}

type RenewHoldRequest struct {
	TtlSeconds int `json:"ttlSeconds,omitempty" validate:"omitempty,min=30,max=600"`
}

type HoldResponse struct {
	Hold Hold `json:"hold"`
}

type Hold struct {
	Token     string    `json:"token"`
	ShowingId string    `json:"showingId"`
	SeatIds   []string  `json:"seatIds"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type CheckoutRequest struct {
	PaymentMethodRef string `json:"paymentMethodRef" validate:"required"`
}

type ResolvePaymentRequest struct {
	HoldToken string `json:"holdToken" validate:"required"`
	Outcome   string `json:"outcome" validate:"required,oneof=succeeded declined"`
	Reference string `json:"reference,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

type PaymentPendingResponse struct {
	Message   string `json:"message"`
	HoldToken string `json:"holdToken"`
}

type BookingResponse struct {
	Booking Booking `json:"booking"`
}

type Booking struct {
	BookingId        string          `json:"bookingId"`
	ShowingId        string          `json:"showingId"`
	SeatIds          []string        `json:"seatIds"`
	AmountCents      int64           `json:"amountCents"`
	Amount           decimal.Decimal `json:"amount"`
	PaymentReference string          `json:"paymentReference"`
	Status           string          `json:"status"`
	CreatedAt        time.Time       `json:"createdAt"`
}

type SystemInfo struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type HealthcheckResponse struct {
	Status     string     `json:"status"`
	SystemInfo SystemInfo `json:"systemInfo"`
}
