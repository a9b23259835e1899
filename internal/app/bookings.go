package app

import (
	"errors"
	"net/http"

	"github.com/cinex/seat-reservation-engine/internal/domain"
	"github.com/go-chi/chi/v5"
)

func (app *Application) GetBookingHandler(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "bookingID")

	booking, err := app.bookings.GetByID(r.Context(), bookingID)
	if err != nil {
		if errors.Is(err, domain.ErrBookingNotFound) {
			app.notFoundResponse(w, r)
			return
		}
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toBookingResponse(booking), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) CancelBookingHandler(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	bookingID := chi.URLParam(r, "bookingID")

	booking, err := app.engine.CancelBooking(r.Context(), bookingID)
	if err != nil {
		if errors.Is(err, domain.ErrBookingNotFound) {
			app.notFoundResponse(w, r)
			return
		}
		app.serverErrorResponse(w, r, err)
		return
	}

	logger.Info("booking cancelled", "booking_id", bookingID)

	err = app.writeJSON(w, http.StatusOK, toBookingResponse(booking), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
