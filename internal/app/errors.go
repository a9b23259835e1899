package app

import (
	"net/http"
	"time"

	"github.com/cinex/seat-reservation-engine/api"
	appvalidator "github.com/cinex/seat-reservation-engine/internal/validator"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

func (app *Application) logError(r *http.Request, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.Error(err.Error(), "method", method, "uri", uri)
}

// The errorResponse() method is a generic helper for sending JSON-formatted error
// messages to the client with a given status code.
func (app *Application) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	resp := api.ErrorResponse{
		Message:   message,
		RequestId: middleware.GetReqID(r.Context()),
		Timestamp: time.Now(),
	}

	err := app.writeJSON(w, status, resp, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(500)
	}
}

func (app *Application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)

	message := "The server encountered a problem and could not process your request"
	app.errorResponse(w, r, http.StatusInternalServerError, message)
}

func (app *Application) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	message := "The requested resource not found"
	app.errorResponse(w, r, http.StatusNotFound, message)
}

func (app *Application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

// seatConflictResponse reports that at least one requested seat was not in
// the state the operation required.
func (app *Application) seatConflictResponse(w http.ResponseWriter, r *http.Request) {
	message := "One or more of the requested seats are no longer available"
	app.errorResponse(w, r, http.StatusConflict, message)
}

func (app *Application) holdExpiredResponse(w http.ResponseWriter, r *http.Request) {
	message := "The hold has expired"
	app.errorResponse(w, r, http.StatusGone, message)
}

func (app *Application) paymentDeclinedResponse(w http.ResponseWriter, r *http.Request, reason string) {
	message := "Payment was declined"
	if reason != "" {
		message = "Payment was declined: " + reason
	}
	app.errorResponse(w, r, http.StatusPaymentRequired, message)
}

func (app *Application) failedValidationResponse(w http.ResponseWriter, r *http.Request, err error) {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		app.serverErrorResponse(w, r, err)
		return
	}

	errs := make([]api.ValidationError, 0, len(validationErrors))

	for _, fieldErr := range validationErrors {
		errs = append(errs, api.ValidationError{
			Field: fieldErr.Field(),
			Issue: appvalidator.ValidationMessage(fieldErr),
		})
	}

	resp := api.ValidationErrorResponse{
		Message:          "Validation failed",
		ValidationErrors: errs,
		RequestId:        middleware.GetReqID(r.Context()),
		Timestamp:        time.Now(),
	}

	writeErr := app.writeJSON(w, http.StatusUnprocessableEntity, resp, nil)
	if writeErr != nil {
		app.logError(r, writeErr)
		w.WriteHeader(500)
	}
}
