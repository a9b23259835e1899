package app

import (
	"net/http"

	"github.com/cinex/seat-reservation-engine/internal/jsonutil"
)

func (app *Application) writeJSON(w http.ResponseWriter, status int, data any, headers http.Header) error {
	return jsonutil.WriteJSON(w, status, data, headers)
}

func (app *Application) readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	return jsonutil.ReadJSON(w, r, dst)
}
