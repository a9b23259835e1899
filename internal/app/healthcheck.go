package app

import (
	"net/http"

	"github.com/cinex/seat-reservation-engine/api"
)

func (app *Application) GetHealth(w http.ResponseWriter, r *http.Request) {
	resp := api.HealthcheckResponse{
		Status: "available",
		SystemInfo: api.SystemInfo{
			Version:     version,
			Environment: app.config.Env,
		},
	}

	app.writeJSON(w, http.StatusOK, resp, nil)
}
