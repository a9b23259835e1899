package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/cinex/seat-reservation-engine/api"
	"github.com/cinex/seat-reservation-engine/internal/domain"
	"github.com/go-chi/chi/v5"
)

func (app *Application) GetSeatMapHandler(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	showingID := chi.URLParam(r, "showingID")

	seatMap, err := app.store.GetSeatMap(r.Context(), showingID)
	if err != nil {
		if errors.Is(err, domain.ErrShowingNotFound) {
			logger.Warn("seat map not found for showing", "showing_id", showingID)
			app.notFoundResponse(w, r)
			return
		}
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := toSeatMapResponse(seatMap, time.Now())

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toSeatMapResponse(seatMap *domain.SeatMap, now time.Time) api.SeatMapResponse {
	return api.SeatMapResponse{
		ShowingId: seatMap.ShowingID,
		SeatRows:  toSeatRows(seatMap.Seats, now),
	}
}

func toSeatRows(seats []domain.Seat, now time.Time) []api.SeatRow {
	// Seats are pre-sorted by Row,Number (ascending).
	// This allows us to process them in a single pass without additional sorting or mapping.

	if len(seats) == 0 {
		return nil
	}

	var seatRows []api.SeatRow
	currentRow := api.SeatRow{Row: seats[0].Row}

	for _, v := range seats {
		if v.Row != currentRow.Row {
			seatRows = append(seatRows, currentRow)
			currentRow = api.SeatRow{Row: v.Row}
		}

		currentRow.Seats = append(currentRow.Seats, api.Seat{
			Id:     v.ID,
			Row:    v.Row,
			Number: v.Number,
			Status: string(presentedStatus(v, now)),
		})
	}

	seatRows = append(seatRows, currentRow)

	return seatRows
}

// presentedStatus maps a lapsed hold to available so clients never see a
// hold the sweep simply hasn't reclaimed yet.
func presentedStatus(seat domain.Seat, now time.Time) domain.SeatStatus {
	if seat.Status == domain.SeatHeld && seat.HeldUntil != nil && !seat.HeldUntil.After(now) {
		return domain.SeatAvailable
	}

	return seat.Status
}
