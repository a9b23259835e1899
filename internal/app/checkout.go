package app

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/cinex/seat-reservation-engine/api"
	"github.com/cinex/seat-reservation-engine/internal/domain"
	"github.com/shopspring/decimal"
)

func (app *Application) CheckoutHandler(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	token := app.sessionManager.GetString(r.Context(), SessionKeyHoldToken.String())
	if token == "" {
		app.badRequestResponse(w, r, fmt.Errorf("no active hold in session"))
		return
	}

	var input api.CheckoutRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	booking, err := app.coordinator.Checkout(r.Context(), token, input.PaymentMethodRef)
	if err != nil {
		app.checkoutErrorResponse(w, r, token, err)
		return
	}

	app.sessionManager.Remove(r.Context(), SessionKeyHoldToken.String())

	err = app.writeJSON(w, http.StatusCreated, toBookingResponse(booking), nil)
	if err != nil {
		logger.Error("failed to write booking response", "booking_id", booking.ID, "error", err)
	}
}

// ResolvePaymentHandler settles a checkout that ended with an indeterminate
// charge. The caller reports the definitive outcome obtained out of band.
func (app *Application) ResolvePaymentHandler(w http.ResponseWriter, r *http.Request) {
	var input api.ResolvePaymentRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	result := domain.ChargeResult{
		Status:        domain.ChargeStatus(input.Outcome),
		Reference:     input.Reference,
		DeclineReason: input.Reason,
	}

	booking, err := app.coordinator.ResolvePayment(r.Context(), input.HoldToken, result)
	if err != nil {
		app.checkoutErrorResponse(w, r, input.HoldToken, err)
		return
	}

	if input.HoldToken == app.sessionManager.GetString(r.Context(), SessionKeyHoldToken.String()) {
		app.sessionManager.Remove(r.Context(), SessionKeyHoldToken.String())
	}

	err = app.writeJSON(w, http.StatusCreated, toBookingResponse(booking), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) checkoutErrorResponse(w http.ResponseWriter, r *http.Request, token string, err error) {
	logger := app.contextGetLogger(r)

	var declined domain.PaymentDeclinedError

	switch {
	case errors.Is(err, domain.ErrHoldNotFound):
		app.sessionManager.Remove(r.Context(), SessionKeyHoldToken.String())
		app.notFoundResponse(w, r)
	case errors.Is(err, domain.ErrHoldExpired):
		app.sessionManager.Remove(r.Context(), SessionKeyHoldToken.String())
		app.holdExpiredResponse(w, r)
	case errors.As(err, &declined):
		app.sessionManager.Remove(r.Context(), SessionKeyHoldToken.String())
		app.paymentDeclinedResponse(w, r, declined.Reason)
	case errors.Is(err, domain.ErrPaymentPending):
		// The hold stays alive until the outcome is known. 202 tells the
		// client to resolve the payment rather than retry the checkout.
		logger.Warn("payment outcome indeterminate, retaining hold", "hold_token", token)

		resp := api.PaymentPendingResponse{
			Message:   "Payment outcome is not yet known. Resolve the payment once it is.",
			HoldToken: token,
		}

		writeErr := app.writeJSON(w, http.StatusAccepted, resp, nil)
		if writeErr != nil {
			app.serverErrorResponse(w, r, writeErr)
		}
	default:
		app.serverErrorResponse(w, r, err)
	}
}

func toBookingResponse(booking *domain.Booking) api.BookingResponse {
	return api.BookingResponse{
		Booking: api.Booking{
			BookingId:        booking.ID,
			ShowingId:        booking.ShowingID,
			SeatIds:          booking.SeatIDs,
			AmountCents:      booking.AmountCents,
			Amount:           decimal.NewFromInt(booking.AmountCents).Div(decimal.NewFromInt(100)),
			PaymentReference: booking.PaymentReference,
			Status:           string(booking.Status),
			CreatedAt:        booking.CreatedAt,
		},
	}
}
