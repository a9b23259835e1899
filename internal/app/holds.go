package app

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cinex/seat-reservation-engine/api"
	"github.com/cinex/seat-reservation-engine/internal/domain"
	"github.com/go-chi/chi/v5"
)

func (app *Application) CreateHoldHandler(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	showingID := chi.URLParam(r, "showingID")

	var input api.CreateHoldRequest

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

	if app.sessionHasActiveHold(r) {
		app.badRequestResponse(w, r, fmt.Errorf("cannot create new hold if a hold already exists in session"))
		return
	}

	ttl := time.Duration(input.TtlSeconds) * time.Second

	hold, err := app.holdManager.RequestHold(r.Context(), showingID, input.SeatIdList, ttl)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrShowingNotFound):
			app.notFoundResponse(w, r)
		case errors.Is(err, domain.ErrSeatConflict):
			logger.Info("hold request lost seat contention", "showing_id", showingID)
			app.seatConflictResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	app.sessionManager.Put(r.Context(), SessionKeyHoldToken.String(), hold.Token)

	err = app.writeJSON(w, http.StatusCreated, toHoldResponse(hold), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) RenewHoldHandler(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	if !app.sessionOwnsHold(r, token) {
		app.notFoundResponse(w, r)
		return
	}

	var input api.RenewHoldRequest

	if r.ContentLength > 0 {
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
	}

	ttl := time.Duration(input.TtlSeconds) * time.Second

	hold, err := app.holdManager.RenewHold(r.Context(), token, ttl)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrHoldNotFound):
			app.sessionManager.Remove(r.Context(), SessionKeyHoldToken.String())
			app.notFoundResponse(w, r)
		case errors.Is(err, domain.ErrHoldExpired):
			app.sessionManager.Remove(r.Context(), SessionKeyHoldToken.String())
			app.holdExpiredResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, toHoldResponse(hold), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) ReleaseHoldHandler(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	if !app.sessionOwnsHold(r, token) {
		app.notFoundResponse(w, r)
		return
	}

	err := app.holdManager.ReleaseHold(r.Context(), token)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.sessionManager.Remove(r.Context(), SessionKeyHoldToken.String())

	w.WriteHeader(http.StatusNoContent)
}

// sessionHasActiveHold reports whether the session's hold token still maps
// to a live hold. A stale token is dropped from the session on the way.
func (app *Application) sessionHasActiveHold(r *http.Request) bool {
	token := app.sessionManager.GetString(r.Context(), SessionKeyHoldToken.String())
	if token == "" {
		return false
	}

	hold, err := app.holds.GetByToken(r.Context(), token)
	if err != nil || hold.Expired(time.Now()) {
		app.sessionManager.Remove(r.Context(), SessionKeyHoldToken.String())
		return false
	}

	return true
}

func (app *Application) sessionOwnsHold(r *http.Request, token string) bool {
	sessionToken := app.sessionManager.GetString(r.Context(), SessionKeyHoldToken.String())

	return sessionToken != "" && sessionToken == token
}

func toHoldResponse(hold *domain.Hold) api.HoldResponse {
	return api.HoldResponse{
		Hold: api.Hold{
			Token:     hold.Token,
			ShowingId: hold.ShowingID,
			SeatIds:   hold.SeatIDs,
			ExpiresAt: hold.ExpiresAt,
		},
	}
}
